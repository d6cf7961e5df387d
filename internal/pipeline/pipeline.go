// Package pipeline runs the batch processing pass over a raw recording
// directory: load, smooth per event type, merge and write the processed
// session next to the others.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/fakeyudi/jumplab/internal/demux"
	"github.com/fakeyudi/jumplab/internal/label"
	"github.com/fakeyudi/jumplab/internal/recording"
	"github.com/fakeyudi/jumplab/internal/sensor"
	"github.com/fakeyudi/jumplab/internal/smooth"
)

// Options configures a processing run.
type Options struct {
	RawDir       string
	ProcessedDir string
	Smoothing    smooth.Config
	// Renderer writes processed sessions; nil means the object format.
	Renderer recording.SessionRenderer
}

func (o Options) renderer() recording.SessionRenderer {
	if o.Renderer == nil {
		return &recording.ObjectRenderer{}
	}
	return o.Renderer
}

// FileResult describes one processed recording.
type FileResult struct {
	Source         string   `json:"source"`
	Output         string   `json:"output"`
	Events         int      `json:"events"`
	Types          []string `json:"types"`
	SkippedRecords int      `json:"skipped_records"`
}

// FileIssue is a file that was skipped or failed, with the reason.
type FileIssue struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Summary is the outcome of a batch run.
type Summary struct {
	RunID        string        `json:"run_id"`
	StartedAt    time.Time     `json:"started_at"`
	Elapsed      time.Duration `json:"elapsed_ns"`
	RawDir       string        `json:"raw_dir"`
	ProcessedDir string        `json:"processed_dir"`
	Smoothing    string        `json:"smoothing"`
	Processed    []FileResult  `json:"processed"`
	Skipped      []FileIssue   `json:"skipped_files"`
	Failed       []FileIssue   `json:"failed_files"`
}

// SkippedRecords totals the records dropped across processed files.
func (s Summary) SkippedRecords() int {
	var n int
	for _, f := range s.Processed {
		n += f.SkippedRecords
	}
	return n
}

// OK reports whether every recording was processed.
func (s Summary) OK() bool { return len(s.Failed) == 0 }

// SmoothSession splits s by event type, smooths every series with cfg and
// merges the result back into one session.
func SmoothSession(s sensor.Session, cfg smooth.Config) (sensor.Session, error) {
	byType, err := demux.Map(demux.Split(s), func(cs sensor.ChannelSeries) (sensor.ChannelSeries, error) {
		return smooth.Apply(cs, cfg)
	})
	if err != nil {
		return sensor.Session{}, err
	}
	return demux.Merge(byType), nil
}

// OutputPath is where the processed copy of a raw recording goes.
func OutputPath(processedDir, rawPath string) string {
	return filepath.Join(processedDir, label.SourceID(rawPath)+recording.Ext)
}

// ProcessFile loads, smooths and writes a single recording. Malformed
// records are logged and counted, not fatal.
func ProcessFile(path string, opts Options) (FileResult, error) {
	res, err := recording.Load(path)
	if err != nil {
		return FileResult{}, err
	}
	for _, skipped := range res.Skipped {
		slog.Warn("skipping record", "path", path, "index", skipped.Index, "reason", skipped.Reason)
	}
	out, err := SmoothSession(res.Session, opts.Smoothing)
	if err != nil {
		return FileResult{}, fmt.Errorf("smoothing %s: %w", path, err)
	}
	dst := OutputPath(opts.ProcessedDir, path)
	if err := recording.Write(dst, out, opts.renderer()); err != nil {
		return FileResult{}, err
	}
	return FileResult{
		Source:         path,
		Output:         dst,
		Events:         out.Len(),
		Types:          out.Types(),
		SkippedRecords: len(res.Skipped),
	}, nil
}

// Run processes every recording in opts.RawDir. Only an unreadable raw
// directory or cancellation aborts the run; per-file problems end up in
// the Summary.
func Run(ctx context.Context, opts Options) (Summary, error) {
	if err := opts.Smoothing.Validate(); err != nil {
		return Summary{}, err
	}
	sum := Summary{
		RunID:        uuid.NewString(),
		StartedAt:    time.Now(),
		RawDir:       opts.RawDir,
		ProcessedDir: opts.ProcessedDir,
		Smoothing:    opts.Smoothing.String(),
	}
	log := slog.With("run_id", sum.RunID)

	scan, err := recording.Scan(opts.RawDir)
	if err != nil {
		return Summary{}, err
	}
	for _, u := range scan.Unsupported {
		log.Warn("skipping file", "path", u.Path, "reason", u.Error())
		sum.Skipped = append(sum.Skipped, FileIssue{Path: u.Path, Reason: u.Error()})
	}

	for _, path := range scan.Files {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		fr, err := ProcessFile(path, opts)
		if err != nil {
			log.Warn("file failed", "path", path, "err", err)
			sum.Failed = append(sum.Failed, FileIssue{Path: path, Reason: err.Error()})
			continue
		}
		log.Info("processed", "path", path, "output", fr.Output, "events", fr.Events, "skipped", fr.SkippedRecords)
		sum.Processed = append(sum.Processed, fr)
	}
	sum.Elapsed = time.Since(sum.StartedAt)
	return sum, nil
}
