package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fakeyudi/jumplab/internal/features"
	"github.com/fakeyudi/jumplab/internal/segment"
	"github.com/fakeyudi/jumplab/internal/smooth"
)

// ProjectFile is the per-directory config file name.
const ProjectFile = ".jumplab.yaml"

// Config holds all configurable jumplab settings.
type Config struct {
	RawDir       string `json:"raw_dir" yaml:"raw_dir"`
	ProcessedDir string `json:"processed_dir" yaml:"processed_dir"`
	LabelsDir    string `json:"labels_dir" yaml:"labels_dir"`
	ReportFormat string `json:"report_format" yaml:"report_format"` // "markdown" | "json"
	LogLevel     string `json:"log_level" yaml:"log_level"`
	LogFormat    string `json:"log_format" yaml:"log_format"` // "text" | "json"

	Smoothing Smoothing `json:"smoothing" yaml:"smoothing"`
	Segment   Segment   `json:"segment" yaml:"segment"`
	Features  Features  `json:"features" yaml:"features"`
}

// Smoothing configures the processing pass. Order ["none"] disables it.
type Smoothing struct {
	MedianWindow int      `json:"median_window" yaml:"median_window"`
	MeanWindow   int      `json:"mean_window" yaml:"mean_window"`
	Order        []string `json:"order" yaml:"order"`
}

// Segment configures jump detection. The numeric settings are pointers so
// a layer can set them to zero; nil leaves the lower layer's value.
type Segment struct {
	EventType   string    `json:"event_type" yaml:"event_type"`
	Fields      []string  `json:"fields" yaml:"fields"`
	Threshold   *float64  `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	MinDuration *Duration `json:"min_duration,omitempty" yaml:"min_duration,omitempty"`
	MaxDuration *Duration `json:"max_duration,omitempty" yaml:"max_duration,omitempty"`
}

// Features configures dataset extraction and training.
type Features struct {
	EventType    string   `json:"event_type" yaml:"event_type"`
	Axes         []string `json:"axes" yaml:"axes"`
	WindowSize   int      `json:"window_size" yaml:"window_size"`
	Stride       int      `json:"stride" yaml:"stride"`
	Order        string   `json:"order" yaml:"order"`
	TestFraction float64  `json:"test_fraction" yaml:"test_fraction"`
	Seed         uint64   `json:"seed" yaml:"seed"`
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	sm := smooth.DefaultConfig()
	seg := segment.DefaultConfig()
	feat := features.DefaultOptions()
	split := features.DefaultSplit()
	order := make([]string, len(sm.Order))
	for i, st := range sm.Order {
		order[i] = string(st)
	}
	return Config{
		RawDir:       filepath.Join("data", "raw"),
		ProcessedDir: filepath.Join("data", "processed"),
		LabelsDir:    filepath.Join("data", "labeled"),
		ReportFormat: "markdown",
		LogLevel:     "info",
		LogFormat:    "text",
		Smoothing: Smoothing{
			MedianWindow: sm.MedianWindow,
			MeanWindow:   sm.MeanWindow,
			Order:        order,
		},
		Segment: Segment{
			EventType:   "accelerometer",
			Fields:      []string{"x", "y", "z"},
			Threshold:   &seg.Threshold,
			MinDuration: &Duration{seg.MinDuration},
		},
		Features: Features{
			EventType:    "accelerometer",
			Axes:         feat.Axes,
			WindowSize:   feat.WindowSize,
			Stride:       feat.Stride,
			Order:        string(feat.Order),
			TestFraction: split.TestFraction,
			Seed:         split.Seed,
		},
	}
}

// GlobalPath is ~/.config/jumplab/config.json.
func GlobalPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "jumplab", "config.json"), nil
}

// LoadGlobal reads ~/.config/jumplab/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	path, err := GlobalPath()
	if err != nil {
		return nil, err
	}
	cfg, err := loadFile(path, json.Unmarshal)
	if err != nil || cfg != nil {
		return cfg, err
	}
	d := Defaults()
	return &d, nil
}

// LoadProject reads .jumplab.yaml in dir.
// Returns nil (no error) if the file is absent.
func LoadProject(dir string) (*Config, error) {
	return loadFile(filepath.Join(dir, ProjectFile), yaml.Unmarshal)
}

// loadFile reads and decodes a config file, returning nil when it is absent.
func loadFile(path string, unmarshal func([]byte, any) error) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge layers configs over Defaults, later ones taking precedence. A field
// is taken from a layer only when it is set there; nil layers are skipped.
func Merge(layers ...*Config) Config {
	result := Defaults()
	for _, l := range layers {
		if l == nil {
			continue
		}
		setString(&result.RawDir, l.RawDir)
		setString(&result.ProcessedDir, l.ProcessedDir)
		setString(&result.LabelsDir, l.LabelsDir)
		setString(&result.ReportFormat, l.ReportFormat)
		setString(&result.LogLevel, l.LogLevel)
		setString(&result.LogFormat, l.LogFormat)

		setInt(&result.Smoothing.MedianWindow, l.Smoothing.MedianWindow)
		setInt(&result.Smoothing.MeanWindow, l.Smoothing.MeanWindow)
		setStrings(&result.Smoothing.Order, l.Smoothing.Order)

		setString(&result.Segment.EventType, l.Segment.EventType)
		setStrings(&result.Segment.Fields, l.Segment.Fields)
		setPtr(&result.Segment.Threshold, l.Segment.Threshold)
		setPtr(&result.Segment.MinDuration, l.Segment.MinDuration)
		setPtr(&result.Segment.MaxDuration, l.Segment.MaxDuration)

		setString(&result.Features.EventType, l.Features.EventType)
		setStrings(&result.Features.Axes, l.Features.Axes)
		setInt(&result.Features.WindowSize, l.Features.WindowSize)
		setInt(&result.Features.Stride, l.Features.Stride)
		setString(&result.Features.Order, l.Features.Order)
		setFloat(&result.Features.TestFraction, l.Features.TestFraction)
		if l.Features.Seed != 0 {
			result.Features.Seed = l.Features.Seed
		}
	}
	return result
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setFloat(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}

func setPtr[T any](dst **T, v *T) {
	if v != nil {
		c := *v
		*dst = &c
	}
}

func setStrings(dst *[]string, v []string) {
	if len(v) > 0 {
		*dst = append([]string(nil), v...)
	}
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	switch c.ReportFormat {
	case "markdown", "json":
	default:
		return fmt.Errorf("report_format %q: want markdown or json", c.ReportFormat)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format %q: want text or json", c.LogFormat)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	sm, err := c.SmoothConfig()
	if err != nil {
		return err
	}
	if err := sm.Validate(); err != nil {
		return fmt.Errorf("smoothing: %w", err)
	}
	if err := c.SegmentConfig().Validate(); err != nil {
		return fmt.Errorf("segment: %w", err)
	}
	if len(c.Segment.Fields) == 0 {
		return errors.New("segment.fields must name at least one field")
	}
	if c.Features.WindowSize < 1 || c.Features.Stride < 1 {
		return fmt.Errorf("features: %w", features.ErrInvalidWindow)
	}
	switch features.Order(c.Features.Order) {
	case features.TimeMajor, features.AxisMajor:
	default:
		return fmt.Errorf("features.order %q: want time-major or axis-major", c.Features.Order)
	}
	if c.Features.TestFraction <= 0 || c.Features.TestFraction >= 1 {
		return fmt.Errorf("features.test_fraction %v must be in (0, 1)", c.Features.TestFraction)
	}
	return nil
}

// SmoothConfig converts the smoothing section.
func (c Config) SmoothConfig() (smooth.Config, error) {
	order, err := smooth.ParseOrder(strings.Join(c.Smoothing.Order, ","))
	if err != nil {
		return smooth.Config{}, fmt.Errorf("smoothing.order: %w", err)
	}
	return smooth.Config{
		MedianWindow: c.Smoothing.MedianWindow,
		MeanWindow:   c.Smoothing.MeanWindow,
		Order:        order,
	}, nil
}

// SegmentConfig converts the segment section.
func (c Config) SegmentConfig() segment.Config {
	var seg segment.Config
	if c.Segment.Threshold != nil {
		seg.Threshold = *c.Segment.Threshold
	}
	if c.Segment.MinDuration != nil {
		seg.MinDuration = c.Segment.MinDuration.Duration
	}
	if c.Segment.MaxDuration != nil {
		seg.MaxDuration = c.Segment.MaxDuration.Duration
	}
	return seg
}

// FeatureOptions converts the features section.
func (c Config) FeatureOptions() (features.Options, features.SplitOptions) {
	return features.Options{
			WindowSize: c.Features.WindowSize,
			Stride:     c.Features.Stride,
			Axes:       append([]string(nil), c.Features.Axes...),
			Order:      features.Order(c.Features.Order),
		}, features.SplitOptions{
			TestFraction: c.Features.TestFraction,
			Seed:         c.Features.Seed,
		}
}

// Duration reads "150ms"-style strings, or a bare number of seconds.
type Duration struct {
	time.Duration
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(strings.TrimSpace(s))
}

func (d Duration) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

func (d *Duration) UnmarshalJSON(data []byte) error {
	var secs float64
	if err := json.Unmarshal(data, &secs); err == nil {
		d.Duration = time.Duration(secs * float64(time.Second))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string or seconds: %w", err)
	}
	v, err := parseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalYAML() (any, error) { return d.String(), nil }

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var secs float64
	if err := node.Decode(&secs); err == nil {
		d.Duration = time.Duration(secs * float64(time.Second))
		return nil
	}
	v, err := parseDuration(node.Value)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
