// Package iotesting provides shared test utilities.
// This is an internal package for test infrastructure only.
package iotesting

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gnames/gitmo/pkg/config"
)

const (
	// TestDatabaseName is the PostgreSQL database used by integration
	// tests. Tests never touch the configured production database.
	TestDatabaseName = "gitmo_test"
)

// MemoryConfig returns a configuration with a transient in-memory
// SQLite database. Extra options are applied after it.
func MemoryConfig(opts ...config.Option) *config.Config {
	cfg := config.New()
	cfg.Update([]config.Option{config.OptDatabasePath(":memory:")})
	cfg.Update(opts)
	return cfg
}

// PostgresConfig returns a configuration for the PostgreSQL test server
// described by GITMO_TEST_PG_HOST and optional GITMO_TEST_PG_PORT,
// GITMO_TEST_PG_USER, GITMO_TEST_PG_PASSWORD. The test is skipped in
// short mode or when no host is given.
//
// Usage in integration tests:
//
//	func TestSomething(t *testing.T) {
//	    cfg := iotesting.PostgresConfig(t)
//	    // ... use cfg for database operations
//	}
func PostgresConfig(t *testing.T) *config.Config {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	host := os.Getenv("GITMO_TEST_PG_HOST")
	if host == "" {
		t.Skip("GITMO_TEST_PG_HOST is not set")
	}

	opts := []config.Option{
		config.OptDatabaseDriver("postgres"),
		config.OptDatabaseHost(host),
		config.OptDatabaseDatabase(TestDatabaseName),
	}
	if p, err := strconv.Atoi(os.Getenv("GITMO_TEST_PG_PORT")); err == nil {
		opts = append(opts, config.OptDatabasePort(p))
	}
	if u := os.Getenv("GITMO_TEST_PG_USER"); u != "" {
		opts = append(opts, config.OptDatabaseUser(u))
	}
	if pw := os.Getenv("GITMO_TEST_PG_PASSWORD"); pw != "" {
		opts = append(opts, config.OptDatabasePassword(pw))
	}

	cfg := config.New()
	cfg.Update(opts)
	return cfg
}

// WriteCSV writes content to a file in a temporary directory that is
// removed when the test finishes, and returns its path.
//
// Usage:
//
//	path := iotesting.WriteCSV(t, "countries.csv", "Yemen,YE\n")
func WriteCSV(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	err := os.WriteFile(path, []byte(content), 0644)
	if err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}
