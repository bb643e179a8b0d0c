package store

import (
	"fmt"
	"os"
	"testing"

	"github.com/lawnchairsociety/roadgen/internal/config"
)

// getPostgresTestConfig returns a PostgreSQL config when ROADGEN_TEST_POSTGRES
// is set. Connection details come from:
//
//	ROADGEN_TEST_POSTGRES_HOST (default: localhost)
//	ROADGEN_TEST_POSTGRES_PORT (default: 5432)
//	ROADGEN_TEST_POSTGRES_USER (default: roadgen)
//	ROADGEN_TEST_POSTGRES_PASSWORD (default: roadgen)
//	ROADGEN_TEST_POSTGRES_DATABASE (default: roadgen_test)
func getPostgresTestConfig(t *testing.T) config.DatabaseConfig {
	t.Helper()
	if os.Getenv("ROADGEN_TEST_POSTGRES") == "" {
		t.Skip("Skipping PostgreSQL test: ROADGEN_TEST_POSTGRES not set")
	}

	env := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}

	port := 5432
	fmt.Sscanf(env("ROADGEN_TEST_POSTGRES_PORT", "5432"), "%d", &port)

	return config.DatabaseConfig{
		Driver: "postgres",
		Postgres: config.PostgresConfig{
			Host:     env("ROADGEN_TEST_POSTGRES_HOST", "localhost"),
			Port:     port,
			User:     env("ROADGEN_TEST_POSTGRES_USER", "roadgen"),
			Password: env("ROADGEN_TEST_POSTGRES_PASSWORD", "roadgen"),
			Database: env("ROADGEN_TEST_POSTGRES_DATABASE", "roadgen_test"),
			SSLMode:  "disable",
		},
	}
}

func TestPostgresRoundTrip(t *testing.T) {
	s, err := Open(getPostgresTestConfig(t))
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	defer s.Close()

	track := generateTrack(t, 33)
	if existing, err := s.FindByFingerprint(track.Fingerprint); err == nil {
		s.DeleteTrack(existing.ID)
	}

	if err := s.SaveTrack(track); err != nil {
		t.Fatalf("SaveTrack() = %v", err)
	}
	defer s.DeleteTrack(track.ID)

	got, err := s.GetTrack(track.ID)
	if err != nil {
		t.Fatalf("GetTrack() = %v", err)
	}
	if len(got.Placements) != len(track.Placements) {
		t.Errorf("got %d placements, want %d", len(got.Placements), len(track.Placements))
	}
	if err := s.SaveTrack(track); err == nil {
		t.Error("expected duplicate error on second save")
	}
}
