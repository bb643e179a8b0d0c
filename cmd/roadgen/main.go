package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lawnchairsociety/roadgen/internal/audio"
	"github.com/lawnchairsociety/roadgen/internal/catalog"
	"github.com/lawnchairsociety/roadgen/internal/config"
	"github.com/lawnchairsociety/roadgen/internal/geom"
	"github.com/lawnchairsociety/roadgen/internal/logger"
	"github.com/lawnchairsociety/roadgen/internal/road"
	"github.com/lawnchairsociety/roadgen/internal/store"
	"github.com/lawnchairsociety/roadgen/internal/stream"
)

func main() {
	audioFile := flag.String("audio", "", "Path to a .wav or .mp3 file")
	timeline := flag.String("timeline", "", "Comma separated amplitude values, one per second (instead of -audio)")
	catalogFile := flag.String("catalog", "data/catalog.yaml", "Path to tile catalog YAML file")
	configFile := flag.String("config", "data/config.yaml", "Path to generator config YAML file")
	loggingConfig := flag.String("logging", "data/logging.yaml", "Path to logging config YAML file")
	name := flag.String("name", "", "Track name (default: audio file name)")
	save := flag.Bool("save", false, "Store the generated track in the database")
	list := flag.Bool("list", false, "List stored tracks and exit")
	showMap := flag.Bool("map", true, "Print an ASCII map of the road")
	showLegend := flag.Bool("legend", true, "Show legend")
	serverURL := flag.String("server", "", "Request the road from a running roadserver (e.g. ws://localhost:4443/ws)")
	flag.Parse()

	logConfig, _ := logger.LoadConfig(*loggingConfig)
	logger.Initialize(logConfig)

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if *list {
		listTracks(cfg.Database)
		return
	}

	if *serverURL != "" {
		remote(*serverURL, *audioFile, *timeline, *name, *save, cfg.Generator.CellSize)
		return
	}

	cat, err := catalog.Load(*catalogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		os.Exit(1)
	}

	segmenter := audio.Segmenter{
		GroupMinSeconds: cfg.Generator.GroupMinSeconds,
		MinChangeRate:   cfg.Generator.MinChangeRate,
	}
	analysis, trackName, err := analyze(segmenter, *audioFile, *timeline)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *name != "" {
		trackName = *name
	}

	gen, err := road.NewGenerator(cat, road.OptionsFromConfig(cfg.Generator))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	res, err := gen.Generate(context.Background(), analysis, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generation failed: %v\n", err)
		if res != nil && *showMap {
			fmt.Print(road.RenderMap(res.Placements, nil, gen.Options().CellSize))
		}
		os.Exit(1)
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("Road for %s (catalog: %s, seed: %d)\n", trackName, cat.Name, res.Seed))
	output.WriteString(fmt.Sprintf("Tiles: %d, generated %.1fs for a %.1fs clip\n",
		len(res.Placements), res.GeneratedSeconds, res.ClipLength))
	output.WriteString(fmt.Sprintf("Fingerprint: %s\n", res.Fingerprint))
	output.WriteString(strings.Repeat("=", 60) + "\n\n")
	if *showMap {
		output.WriteString(road.RenderMap(res.Placements, res.Decorations, gen.Options().CellSize))
		output.WriteString("\n")
	}
	if *showLegend {
		output.WriteString(road.Legend())
	}
	fmt.Print(output.String())

	if *save {
		saveTrack(cfg.Database, store.TrackFromResult(trackName, cat.Name, gen.Options().CellSize, res))
	}
}

// analyze reads the audio file or parses the inline timeline.
func analyze(segmenter audio.Segmenter, audioFile, timeline string) (audio.Analysis, string, error) {
	switch {
	case audioFile != "" && timeline != "":
		return audio.Analysis{}, "", errors.New("use either -audio or -timeline, not both")
	case audioFile != "":
		clip, err := audio.Decode(audioFile)
		if err != nil {
			return audio.Analysis{}, "", err
		}
		logger.Info("Audio decoded", "file", audioFile, "seconds", clip.Length(), "sample_rate", clip.SampleRate())
		return segmenter.Analyze(clip), clip.Name, nil
	case timeline != "":
		values, err := parseTimeline(timeline)
		if err != nil {
			return audio.Analysis{}, "", err
		}
		return segmenter.AnalyzeTimeline(audio.Rescale(values), float64(len(values))), "timeline", nil
	default:
		return audio.Analysis{}, "", errors.New("one of -audio or -timeline is required")
	}
}

func parseTimeline(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid timeline value %q: %w", part, err)
		}
		values = append(values, v)
	}
	return values, nil
}

func saveTrack(cfg config.DatabaseConfig, track *store.Track) {
	db, err := store.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.SaveTrack(track); err != nil {
		if errors.Is(err, store.ErrDuplicateTrack) {
			existing, findErr := db.FindByFingerprint(track.Fingerprint)
			if findErr == nil {
				fmt.Printf("Identical road already stored as %s (%s)\n", existing.ID, existing.Name)
				return
			}
		}
		fmt.Fprintf(os.Stderr, "Error: Failed to save track: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Track saved as %s\n", track.ID)
}

func listTracks(cfg config.DatabaseConfig) {
	db, err := store.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	tracks, err := db.ListTracks(50)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to list tracks: %v\n", err)
		os.Exit(1)
	}
	if len(tracks) == 0 {
		fmt.Println("No stored tracks.")
		return
	}
	for _, t := range tracks {
		fmt.Printf("%s  %-24s %-10s %6.1fs  %s\n",
			t.ID, t.Name, t.Catalog, t.GeneratedSeconds, t.CreatedAt.Format("2006-01-02 15:04:05"))
	}
}

// remote asks a roadserver for the road and prints what it streamed back.
// Audio files are resolved inside the server's audio directory.
func remote(url, audioFile, timeline, name string, save bool, cellSize [2]float64) {
	req := stream.Request{Name: name, Save: save}
	if audioFile != "" {
		req.Audio = filepath.Base(audioFile)
	}
	if timeline != "" {
		values, err := parseTimeline(timeline)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		req.Timeline = values
	}

	client, err := stream.Dial(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	events, err := client.Generate(req)
	var placements []road.Placement
	var decorations []geom.Vec2
	for _, ev := range events {
		switch {
		case ev.Type == stream.EventPlacement && ev.Placement != nil:
			placements = append(placements, *ev.Placement)
		case ev.Type == stream.EventDecorations:
			decorations = ev.Decorations
		case ev.Type == stream.EventError:
			fmt.Fprintf(os.Stderr, "Server error (%s): %s\n", ev.Code, ev.Error)
		}
	}
	if len(placements) > 0 {
		fmt.Print(road.RenderMap(placements, decorations, geom.V(cellSize[0], cellSize[1])))
	}
	if err != nil {
		os.Exit(1)
	}

	summary := events[len(events)-1]
	fmt.Printf("Tiles: %d, generated %.1fs for a %.1fs clip\n", len(placements), summary.GeneratedSeconds, summary.ClipLength)
	fmt.Printf("Fingerprint: %s\n", summary.Fingerprint)
	if summary.TrackID != "" {
		fmt.Printf("Track saved as %s\n", summary.TrackID)
	}
}
