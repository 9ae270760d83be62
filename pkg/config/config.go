// Package config provides configuration management for gitmo.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - Database: driver, path, host, port, user, password, database, ssl_mode
//   - Import: encoding, on_decode_error, atomic
//   - Server: host, port
//   - Log: level, format, destination
//
// Runtime-only fields:
//   - HomeDir (set once at startup)
//   - Import.Progress (set by the import command)
//
// # Environment Variables
//
// Use GITMO_ prefix with underscores for nesting:
//
//	GITMO_DATABASE_DRIVER=sqlite
//	GITMO_DATABASE_PATH=/var/lib/gitmo/detainees.db
//	GITMO_IMPORT_ATOMIC=false
//	GITMO_SERVER_PORT=8080
//	GITMO_LOG_LEVEL=info
package config

// Config represents the complete gitmo configuration.
type Config struct {
	// Database contains storage connection settings.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Import contains settings of the CSV importer.
	Import ImportConfig `mapstructure:"import" yaml:"import"`

	// Server contains settings of the web views.
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// HomeDir determines where config, data and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string `yaml:"-"`
}

// DatabaseConfig contains storage connection parameters.
type DatabaseConfig struct {
	// Driver selects the storage backend.
	// Valid values: "sqlite", "postgres".
	Driver string `mapstructure:"driver" yaml:"driver"`

	// Path is the SQLite database file. Relative paths are resolved
	// from the working directory, ":memory:" creates a transient database.
	Path string `mapstructure:"path" yaml:"path"`

	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the PostgreSQL SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`
}

// ImportConfig contains settings of the CSV importer.
type ImportConfig struct {
	// Encoding is the character set of source CSV files as a WHATWG
	// label ("utf-8", "windows-1252", "iso-8859-1", ...).
	Encoding string `mapstructure:"encoding" yaml:"encoding"`

	// OnDecodeError decides what happens to bytes that cannot be decoded:
	// "ignore" drops them, "replace" substitutes U+FFFD.
	OnDecodeError string `mapstructure:"on_decode_error" yaml:"on_decode_error"`

	// Atomic wraps the table truncation and all inserts into one
	// transaction. When false, a failed import leaves the table truncated
	// with only the rows inserted before the failure.
	Atomic bool `mapstructure:"atomic" yaml:"atomic"`

	// Progress shows a progress bar on the terminal during import.
	// Runtime-only, set by CLI.
	Progress bool `mapstructure:"-" yaml:"-"`
}

// ServerConfig contains settings of the HTTP server.
type ServerConfig struct {
	// Host is the interface to listen on, empty means all interfaces.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the TCP port to listen on.
	Port int `mapstructure:"port" yaml:"port"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json' or 'text'.
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Database: DatabaseConfig{
			Driver:   "sqlite",
			Path:     "detainees.db",
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			Database: "gitmo",
			SSLMode:  "disable",
		},
		Import: ImportConfig{
			Encoding:      "utf-8",
			OnDecodeError: "ignore",
			Atomic:        true,
		},
		Server: ServerConfig{
			Port: 5000,
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
			// for now file is rewritten every time the log starts
			Destination: "file",
		},
	}

	return res
}

// Redacted returns a copy of the config that is safe to print.
func (c *Config) Redacted() Config {
	res := *c
	if res.Database.Password != "" {
		res.Database.Password = "********"
	}
	return res
}
