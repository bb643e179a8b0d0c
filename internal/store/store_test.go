package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/lawnchairsociety/roadgen/internal/audio"
	"github.com/lawnchairsociety/roadgen/internal/catalog"
	"github.com/lawnchairsociety/roadgen/internal/config"
	"github.com/lawnchairsociety/roadgen/internal/geom"
	"github.com/lawnchairsociety/roadgen/internal/road"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "tracks.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// generateTrack runs the shipped catalog over a flat clip of the given length.
func generateTrack(t *testing.T, seconds int) *Track {
	t.Helper()
	cat, err := catalog.Load(filepath.Join("..", "..", "data", "catalog.yaml"))
	if err != nil {
		t.Fatalf("catalog.Load() = %v", err)
	}
	opts := road.DefaultOptions()
	g, err := road.NewGenerator(cat, opts)
	if err != nil {
		t.Fatalf("NewGenerator() = %v", err)
	}

	values := make([]float64, seconds)
	for i := range values {
		values[i] = float64(i%20) / 20
	}
	analysis := audio.NewSegmenter().AnalyzeTimeline(audio.Rescale(values), float64(seconds))
	res, err := g.Generate(context.Background(), analysis, nil)
	if err != nil && !errors.Is(err, road.ErrCollisionUnresolved) {
		t.Fatalf("Generate() = %v", err)
	}
	return TrackFromResult("track-"+strconv.Itoa(seconds), cat.Name, opts.CellSize, res)
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "tracks.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() = %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
	for _, table := range []string{"tracks", "placements"} {
		var count int
		if err := s.DB().QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			t.Errorf("failed to query %s: %v", table, err)
		}
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracks.db")
	for i := 0; i < 2; i++ {
		s, err := Open(config.DatabaseConfig{Driver: "sqlite", SQLitePath: path})
		if err != nil {
			t.Fatalf("Open() #%d = %v", i, err)
		}
		s.Close()
	}
}

func TestSaveAndGetTrack(t *testing.T) {
	s := openTestStore(t)
	track := generateTrack(t, 40)

	if err := s.SaveTrack(track); err != nil {
		t.Fatalf("SaveTrack() = %v", err)
	}
	if track.ID == "" || track.CreatedAt.IsZero() {
		t.Fatalf("SaveTrack() left ID %q CreatedAt %v", track.ID, track.CreatedAt)
	}

	got, err := s.GetTrack(track.ID)
	if err != nil {
		t.Fatalf("GetTrack() = %v", err)
	}
	if got.Name != track.Name || got.Catalog != track.Catalog || got.Fingerprint != track.Fingerprint {
		t.Errorf("GetTrack() = %+v", got)
	}
	if got.CellSize != geom.V(20, 20) || got.Seed != track.Seed || got.GeneratedSeconds != track.GeneratedSeconds {
		t.Errorf("numbers differ: %+v", got)
	}
	if !got.CreatedAt.Equal(track.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, track.CreatedAt)
	}
	if !reflect.DeepEqual(got.Placements, track.Placements) {
		t.Errorf("placements differ after round trip:\n got %+v\nwant %+v", got.Placements, track.Placements)
	}
	if road.Fingerprint(got.Placements) != track.Fingerprint {
		t.Error("stored placements no longer match the fingerprint")
	}
}

func TestSaveDuplicateTrack(t *testing.T) {
	s := openTestStore(t)
	track := generateTrack(t, 15)
	if err := s.SaveTrack(track); err != nil {
		t.Fatalf("SaveTrack() = %v", err)
	}

	again := *track
	again.ID = ""
	if err := s.SaveTrack(&again); !errors.Is(err, ErrDuplicateTrack) {
		t.Errorf("second SaveTrack() = %v, want ErrDuplicateTrack", err)
	}
}

func TestFindByFingerprint(t *testing.T) {
	s := openTestStore(t)
	track := generateTrack(t, 25)
	if err := s.SaveTrack(track); err != nil {
		t.Fatalf("SaveTrack() = %v", err)
	}

	got, err := s.FindByFingerprint(track.Fingerprint)
	if err != nil {
		t.Fatalf("FindByFingerprint() = %v", err)
	}
	if got.ID != track.ID || len(got.Placements) != len(track.Placements) {
		t.Errorf("FindByFingerprint() = %+v", got)
	}

	if _, err := s.FindByFingerprint("nope"); !errors.Is(err, ErrTrackNotFound) {
		t.Errorf("FindByFingerprint(nope) = %v, want ErrTrackNotFound", err)
	}
}

func TestGetTrackNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.GetTrack("missing"); !errors.Is(err, ErrTrackNotFound) {
		t.Errorf("GetTrack() = %v, want ErrTrackNotFound", err)
	}
}

func TestGetTrackRejectsCorruptTimestamp(t *testing.T) {
	s := openTestStore(t)
	track := generateTrack(t, 12)
	if err := s.SaveTrack(track); err != nil {
		t.Fatalf("SaveTrack() = %v", err)
	}
	if _, err := s.DB().Exec(`UPDATE tracks SET created_at = 'yesterday' WHERE id = ?`, track.ID); err != nil {
		t.Fatalf("failed to corrupt created_at: %v", err)
	}

	_, err := s.GetTrack(track.ID)
	if err == nil || errors.Is(err, ErrTrackNotFound) {
		t.Fatalf("GetTrack() = %v, want a parse error", err)
	}
	if !strings.Contains(err.Error(), "created_at") {
		t.Errorf("error %q does not mention created_at", err)
	}
}

func TestListTracks(t *testing.T) {
	s := openTestStore(t)
	for _, seconds := range []int{10, 20, 30} {
		if err := s.SaveTrack(generateTrack(t, seconds)); err != nil {
			t.Fatalf("SaveTrack(%d) = %v", seconds, err)
		}
	}

	all, err := s.ListTracks(0)
	if err != nil {
		t.Fatalf("ListTracks(0) = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("ListTracks(0) returned %d tracks, want 3", len(all))
	}
	for _, tr := range all {
		if tr.Placements != nil {
			t.Errorf("listing of %s carries placements", tr.Name)
		}
	}

	limited, err := s.ListTracks(2)
	if err != nil {
		t.Fatalf("ListTracks(2) = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("ListTracks(2) returned %d tracks", len(limited))
	}
}

func TestDeleteTrack(t *testing.T) {
	s := openTestStore(t)
	track := generateTrack(t, 12)
	if err := s.SaveTrack(track); err != nil {
		t.Fatalf("SaveTrack() = %v", err)
	}

	if err := s.DeleteTrack(track.ID); err != nil {
		t.Fatalf("DeleteTrack() = %v", err)
	}
	if _, err := s.GetTrack(track.ID); !errors.Is(err, ErrTrackNotFound) {
		t.Errorf("GetTrack() after delete = %v", err)
	}

	var count int
	s.DB().QueryRow("SELECT COUNT(*) FROM placements WHERE track_id = ?", track.ID).Scan(&count)
	if count != 0 {
		t.Errorf("%d placements left after delete", count)
	}
	if err := s.DeleteTrack(track.ID); !errors.Is(err, ErrTrackNotFound) {
		t.Errorf("second DeleteTrack() = %v, want ErrTrackNotFound", err)
	}
}
