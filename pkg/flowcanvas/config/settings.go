package config

import (
	"fmt"
	"time"
)

// Settings is the resolved canvas client configuration.
type Settings struct {
	// BackendURL is the base URL of the compile/execute/persistence backend.
	BackendURL string

	// FilesURL is the base URL of the file storage API. Defaults to
	// BackendURL when unset.
	FilesURL string

	// RequestTimeout bounds single backend calls.
	RequestTimeout time.Duration

	// UploadParallelism bounds concurrent file uploads.
	UploadParallelism int

	// ProceedOnWarnings runs workflows even when the compiler reports
	// warning diagnostics.
	ProceedOnWarnings bool

	// HistoryPath is the SQLite file for local workflow history. Empty
	// selects the in-memory store.
	HistoryPath string
}

// Default returns the settings used when no config file is present.
func Default() Settings {
	return Settings{
		BackendURL:        "http://localhost:8080",
		RequestTimeout:    60 * time.Second,
		UploadParallelism: 4,
	}
}

// FromConfig resolves Settings from raw config values, filling gaps with
// defaults.
func FromConfig(c Config) Settings {
	def := Default()
	s := Settings{
		BackendURL:        c.String("backend_url", def.BackendURL),
		FilesURL:          c.String("files_url", ""),
		RequestTimeout:    c.Duration("request_timeout", def.RequestTimeout),
		UploadParallelism: c.Int("upload_parallelism", def.UploadParallelism),
		ProceedOnWarnings: c.Bool("proceed_on_warnings", def.ProceedOnWarnings),
		HistoryPath:       c.String("history_path", ""),
	}
	if s.FilesURL == "" {
		s.FilesURL = s.BackendURL
	}
	return s
}

// Load reads a config file and resolves it into Settings.
func Load(path string) (Settings, error) {
	cfg, err := FromFile(path)
	if err != nil {
		return Settings{}, err
	}
	s := FromConfig(cfg)
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the settings for values that cannot work.
func (s Settings) Validate() error {
	if s.BackendURL == "" {
		return fmt.Errorf("backend_url must not be empty")
	}
	if s.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", s.RequestTimeout)
	}
	if s.UploadParallelism < 1 {
		return fmt.Errorf("upload_parallelism must be at least 1, got %d", s.UploadParallelism)
	}
	return nil
}
