package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/fakeyudi/jumplab/internal/demux"
	"github.com/fakeyudi/jumplab/internal/features"
	"github.com/fakeyudi/jumplab/internal/label"
	"github.com/fakeyudi/jumplab/internal/labelstore"
	"github.com/fakeyudi/jumplab/internal/recording"
	"github.com/fakeyudi/jumplab/internal/segment"
	"github.com/fakeyudi/jumplab/internal/sensor"
)

// DetectJumps runs segmentation on the eventType channel of s. A session
// without that event type has no jumps.
func DetectJumps(s sensor.Session, eventType string, fields []string, cfg segment.Config) ([]label.Interval, error) {
	series, ok := demux.Split(s)[sensor.CanonicalType(eventType)]
	if !ok {
		return nil, nil
	}
	return segment.DetectSeries(series, fields, cfg)
}

// DatasetOptions selects the channel windows are cut from.
type DatasetOptions struct {
	ProcessedDir string
	EventType    string
	Features     features.Options
}

// DatasetSummary tells which recordings went into a dataset.
type DatasetSummary struct {
	Sources []string    `json:"sources"`
	Windows int         `json:"windows"`
	Skipped []FileIssue `json:"skipped"`
}

// BuildDataset extracts labeled windows from every processed recording that
// has a label set in store. A recording that cannot be used is reported in
// the summary and left out.
func BuildDataset(store labelstore.LabelStore, opts DatasetOptions) (features.Dataset, DatasetSummary, error) {
	var (
		ds  features.Dataset
		sum DatasetSummary
	)
	ids, err := store.List()
	if err != nil {
		return ds, sum, err
	}
	skip := func(path string, err error) {
		slog.Warn("leaving recording out of dataset", "path", path, "err", err)
		sum.Skipped = append(sum.Skipped, FileIssue{Path: path, Reason: err.Error()})
	}
	for _, id := range ids {
		ls, err := store.Load(id)
		if err != nil {
			skip(store.Path(id), err)
			continue
		}
		path := OutputPath(opts.ProcessedDir, id)
		res, err := recording.Load(path)
		if err != nil {
			skip(path, err)
			continue
		}
		series, ok := demux.Split(res.Session)[sensor.CanonicalType(opts.EventType)]
		if !ok {
			skip(path, fmt.Errorf("no %s events", opts.EventType))
			continue
		}
		ws, err := features.Extract(series, ls, opts.Features)
		if err != nil {
			skip(path, err)
			continue
		}
		ds.Append(ws)
		sum.Sources = append(sum.Sources, id)
		sum.Windows += len(ws)
	}
	return ds, sum, nil
}
