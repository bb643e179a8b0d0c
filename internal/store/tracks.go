package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lawnchairsociety/roadgen/internal/catalog"
	"github.com/lawnchairsociety/roadgen/internal/geom"
	"github.com/lawnchairsociety/roadgen/internal/road"
)

var (
	// ErrTrackNotFound is returned when no track matches the lookup.
	ErrTrackNotFound = errors.New("track not found")

	// ErrDuplicateTrack is returned when an identical road is already stored.
	ErrDuplicateTrack = errors.New("track with the same fingerprint already exists")
)

// Track is a stored road. Placements is nil in listings.
type Track struct {
	ID               string
	Name             string
	Catalog          string
	ClipLength       float64
	GeneratedSeconds float64
	Seed             int64
	CellSize         geom.Vec2
	Fingerprint      string
	CreatedAt        time.Time
	Placements       []road.Placement
}

// TrackFromResult builds an unsaved Track from a completed generation.
func TrackFromResult(name, catalogName string, cellSize geom.Vec2, res *road.Result) *Track {
	return &Track{
		Name:             name,
		Catalog:          catalogName,
		ClipLength:       res.ClipLength,
		GeneratedSeconds: res.GeneratedSeconds,
		Seed:             res.Seed,
		CellSize:         cellSize,
		Fingerprint:      res.Fingerprint,
		Placements:       res.Placements,
	}
}

// createdLayout sorts lexically in time order.
const createdLayout = "2006-01-02 15:04:05.000000"

const trackColumns = `id, name, catalog, clip_length, generated_seconds, seed, cell_x, cell_y, fingerprint, created_at`

// SaveTrack stores t with its placements in one transaction and fills in ID
// and CreatedAt.
func (s *Store) SaveTrack(t *Track) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()
	createdAt := time.Now().UTC().Truncate(time.Microsecond)

	_, err = tx.Exec(s.qb.Build(`
		INSERT INTO tracks (`+trackColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		id, t.Name, t.Catalog, t.ClipLength, t.GeneratedSeconds, t.Seed,
		t.CellSize.X, t.CellSize.Y, t.Fingerprint, createdAt.Format(createdLayout))
	if err != nil {
		if s.dialect.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateTrack, t.Fingerprint)
		}
		return fmt.Errorf("failed to insert track: %w", err)
	}

	insert := s.qb.Build(`
		INSERT INTO placements (track_id, seq, kind, role, category, tile_index, name, asset,
			x, y, rotation, mirrored, shape, exit_x, exit_y, end_direction, duration)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	for _, p := range t.Placements {
		shape, err := json.Marshal(p.Shape)
		if err != nil {
			return fmt.Errorf("failed to encode shape of placement %d: %w", p.Seq, err)
		}
		mirrored := 0
		if p.Mirrored {
			mirrored = 1
		}
		_, err = tx.Exec(insert,
			id, p.Seq, p.Kind.String(), int(p.Tile.Role), p.Tile.Category, p.Tile.Index, p.Name, p.Asset,
			p.Position.X, p.Position.Y, p.Rotation, mirrored, string(shape),
			p.Exit.X, p.Exit.Y, p.EndDirection.String(), p.Duration)
		if err != nil {
			return fmt.Errorf("failed to insert placement %d: %w", p.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	t.ID = id
	t.CreatedAt = createdAt
	return nil
}

// GetTrack loads a track and its placements.
func (s *Store) GetTrack(id string) (*Track, error) {
	row := s.db.QueryRow(s.qb.Build(`SELECT `+trackColumns+` FROM tracks WHERE id = ?`), id)
	t, err := scanTrack(row)
	if err != nil {
		return nil, err
	}
	if t.Placements, err = s.loadPlacements(t.ID); err != nil {
		return nil, err
	}
	return t, nil
}

// FindByFingerprint returns the stored track with the given fingerprint.
func (s *Store) FindByFingerprint(fingerprint string) (*Track, error) {
	row := s.db.QueryRow(s.qb.Build(`SELECT `+trackColumns+` FROM tracks WHERE fingerprint = ?`), fingerprint)
	t, err := scanTrack(row)
	if err != nil {
		return nil, err
	}
	if t.Placements, err = s.loadPlacements(t.ID); err != nil {
		return nil, err
	}
	return t, nil
}

// ListTracks returns the newest tracks first, without placements. A limit of
// zero or less returns all tracks.
func (s *Store) ListTracks(limit int) ([]Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks ORDER BY created_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(s.qb.Build(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, *t)
	}
	return tracks, rows.Err()
}

// DeleteTrack removes a track and its placements.
func (s *Store) DeleteTrack(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// foreign_keys is per connection in SQLite; the cascade may not fire.
	if _, err := tx.Exec(s.qb.Build(`DELETE FROM placements WHERE track_id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete placements: %w", err)
	}
	result, err := tx.Exec(s.qb.Build(`DELETE FROM tracks WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete track: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return ErrTrackNotFound
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrack(row rowScanner) (*Track, error) {
	var t Track
	var createdAt string
	err := row.Scan(&t.ID, &t.Name, &t.Catalog, &t.ClipLength, &t.GeneratedSeconds, &t.Seed,
		&t.CellSize.X, &t.CellSize.Y, &t.Fingerprint, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTrackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}
	if t.CreatedAt, err = time.Parse(createdLayout, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at of track %s: %w", t.ID, err)
	}
	return &t, nil
}

func (s *Store) loadPlacements(trackID string) ([]road.Placement, error) {
	rows, err := s.db.Query(s.qb.Build(`
		SELECT seq, kind, role, category, tile_index, name, asset, x, y, rotation, mirrored,
			shape, exit_x, exit_y, end_direction, duration
		FROM placements
		WHERE track_id = ?
		ORDER BY seq`), trackID)
	if err != nil {
		return nil, fmt.Errorf("failed to query placements: %w", err)
	}
	defer rows.Close()

	var placements []road.Placement
	for rows.Next() {
		var p road.Placement
		var kind, shape, end string
		var role, mirrored int
		err := rows.Scan(&p.Seq, &kind, &role, &p.Tile.Category, &p.Tile.Index, &p.Name, &p.Asset,
			&p.Position.X, &p.Position.Y, &p.Rotation, &mirrored, &shape, &p.Exit.X, &p.Exit.Y, &end, &p.Duration)
		if err != nil {
			return nil, fmt.Errorf("failed to scan placement: %w", err)
		}

		var ok bool
		if p.Kind, ok = road.ParseKind(kind); !ok {
			return nil, fmt.Errorf("placement %d has unknown kind %q", p.Seq, kind)
		}
		if p.EndDirection, ok = geom.ParseDirection(end); !ok {
			return nil, fmt.Errorf("placement %d has unknown end direction %q", p.Seq, end)
		}
		if err := json.Unmarshal([]byte(shape), &p.Shape); err != nil {
			return nil, fmt.Errorf("failed to decode shape of placement %d: %w", p.Seq, err)
		}
		p.Tile.Role = catalog.Role(role)
		p.Mirrored = mirrored != 0
		placements = append(placements, p)
	}
	return placements, rows.Err()
}
