package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Environment variables read by FromEnv.
const (
	EnvRawDir       = "JUMPLAB_RAW_DIR"
	EnvProcessedDir = "JUMPLAB_PROCESSED_DIR"
	EnvLabelsDir    = "JUMPLAB_LABELS_DIR"
	EnvLogLevel     = "JUMPLAB_LOG_LEVEL"
	EnvReportFormat = "JUMPLAB_REPORT_FORMAT"
)

// LoadDotEnv loads a .env file into the process environment. Variables that
// are already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return &ParseError{Path: path, Err: err}
	}
	return nil
}

// FromEnv returns the layer set by JUMPLAB_* variables, or nil when none
// is set.
func FromEnv() *Config {
	var cfg Config
	set := false
	for name, dst := range map[string]*string{
		EnvRawDir:       &cfg.RawDir,
		EnvProcessedDir: &cfg.ProcessedDir,
		EnvLabelsDir:    &cfg.LabelsDir,
		EnvLogLevel:     &cfg.LogLevel,
		EnvReportFormat: &cfg.ReportFormat,
	} {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*dst = v
			set = true
		}
	}
	if !set {
		return nil
	}
	return &cfg
}

// Load resolves the full configuration for dir: defaults, global JSON,
// project YAML, then .env and the environment.
func Load(dir string) (Config, error) {
	global, err := LoadGlobal()
	if err != nil {
		return Config{}, err
	}
	project, err := LoadProject(dir)
	if err != nil {
		return Config{}, err
	}
	if err := LoadDotEnv(filepath.Join(dir, ".env")); err != nil {
		return Config{}, err
	}
	return Merge(global, project, FromEnv()), nil
}
