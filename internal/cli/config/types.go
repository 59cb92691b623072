// Package config provides configuration management for the dailyflow CLI.
//
// Values are layered from defaults, a dailyflow.yaml file, DAILYFLOW_ environment
// variables and explicitly set command-line flags, in increasing precedence.
package config

// IngestConfig holds the cleaning policy applied by the ingest command.
type IngestConfig struct {
	Mode          string `koanf:"mode"`
	BadAction     string `koanf:"bad_action"`
	QuarantineDir string `koanf:"quarantine_dir"`
}

// Config holds all CLI configuration options.
type Config struct {
	StatePath    string       `koanf:"state_path"`
	DataDir      string       `koanf:"data_dir"`
	AutoMigrate  bool         `koanf:"auto_migrate"`
	LogLevel     string       `koanf:"log_level"`
	LogFormat    string       `koanf:"log_format"`
	Verbose      bool         `koanf:"verbose"`
	OutputFormat string       `koanf:"output"`
	Ingest       IngestConfig `koanf:"ingest"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultStateFile = "data/app.db"
	DefaultDataDir   = "data"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultMode      = "train"
	DefaultBadAction = "quarantine"
)

// configFileNames are searched in order in the project root.
var configFileNames = []string{"dailyflow.yaml", "dailyflow.yml"}
