// Package report turns the outcome of a command into a document that can be
// printed, saved and read back.
package report

import (
	"time"

	"github.com/fakeyudi/jumplab/internal/label"
	"github.com/fakeyudi/jumplab/internal/pipeline"
)

// Kinds of document.
const (
	KindProcess = "process"
	KindSegment = "segment"
	KindTrain   = "train"
)

// Document is the complete, renderable outcome of one command run. Exactly
// one of the section fields is set, matching Kind.
type Document struct {
	Kind        string            `json:"kind"`
	GeneratedAt time.Time         `json:"generated_at"`
	Process     *pipeline.Summary `json:"process,omitempty"`
	Segments    []Segmentation    `json:"segments,omitempty"`
	Training    *Training         `json:"training,omitempty"`
	// Failed lists recordings a segment run could not finish.
	Failed []pipeline.FileIssue `json:"failed,omitempty"`
}

// Segmentation holds the jumps detected in one recording.
type Segmentation struct {
	Source    string           `json:"source"`
	EventType string           `json:"event_type"`
	Jumps     []label.Interval `json:"jumps"`
	// Saved is the label file written for the recording, if any.
	Saved string `json:"saved,omitempty"`
}

// Training describes a fitted classifier and the data behind it.
type Training struct {
	Dataset   pipeline.DatasetSummary `json:"dataset"`
	Positives int                     `json:"positives"`
	TrainSize int                     `json:"train_size"`
	TestSize  int                     `json:"test_size"`
	Accuracy  float64                 `json:"accuracy"`
	Depth     int                     `json:"depth"`
	Report    string                  `json:"report"`
}

func Process(sum pipeline.Summary) *Document {
	return &Document{Kind: KindProcess, GeneratedAt: time.Now().UTC(), Process: &sum}
}

func Segments(segs ...Segmentation) *Document {
	return &Document{Kind: KindSegment, GeneratedAt: time.Now().UTC(), Segments: segs}
}

func Train(t Training) *Document {
	return &Document{Kind: KindTrain, GeneratedAt: time.Now().UTC(), Training: &t}
}
