// Package labelstore persists label sets as <source_id>_labels.json files
// under one directory.
package labelstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/fakeyudi/jumplab/internal/atomicfile"
	"github.com/fakeyudi/jumplab/internal/label"
)

// FileSuffix follows the source base name in a label file name.
const FileSuffix = "_labels.json"

// ErrLabelSetNotFound is returned by Load when no file exists for a source.
var ErrLabelSetNotFound = errors.New("label set not found")

// CorruptLabelError reports a label file that does not hold valid intervals.
// Index is the offending interval, or -1 when the file itself is unreadable.
type CorruptLabelError struct {
	Path   string
	Index  int
	Reason string
}

func (e *CorruptLabelError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("corrupt label file %s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("corrupt label file %s: interval %d: %s", e.Path, e.Index, e.Reason)
}

// LabelStore saves and loads label sets by source id.
type LabelStore interface {
	Save(ls label.LabelSet) (string, error)
	Load(sourceID string) (label.LabelSet, error) // ErrLabelSetNotFound if absent
	List() ([]string, error)
	Path(sourceID string) string
}

// diskStore keeps one JSON file per source in dir.
type diskStore struct {
	dir string
}

// New returns a LabelStore rooted at dir. The directory is created on the
// first Save.
func New(dir string) LabelStore {
	return &diskStore{dir: dir}
}

func (d *diskStore) Path(sourceID string) string {
	return filepath.Join(d.dir, sourceID+FileSuffix)
}

// Save replaces the file for ls.SourceID and returns its path. Intervals
// are normalised first; an interval without extent fails the whole save.
func (d *diskStore) Save(ls label.LabelSet) (string, error) {
	if ls.SourceID == "" {
		return "", errors.New("saving labels: empty source id")
	}
	out := make([]label.Interval, 0, len(ls.Intervals))
	for i, iv := range ls.Intervals {
		norm, err := label.NewInterval(iv.Start, iv.End)
		if err != nil {
			return "", fmt.Errorf("saving labels for %s: interval %d: %w", ls.SourceID, i, err)
		}
		out = append(out, norm)
	}
	data, err := json.MarshalIndent(out, "", "    ")
	if err != nil {
		return "", fmt.Errorf("saving labels for %s: %w", ls.SourceID, err)
	}
	path := d.Path(ls.SourceID)
	if err := atomicfile.Write(path, append(data, '\n')); err != nil {
		return "", fmt.Errorf("saving labels for %s: %w", ls.SourceID, err)
	}
	return path, nil
}

// Load reads the label set for sourceID and validates every interval again.
func (d *diskStore) Load(sourceID string) (label.LabelSet, error) {
	path := d.Path(sourceID)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return label.LabelSet{}, fmt.Errorf("%s: %w", path, ErrLabelSetNotFound)
		}
		return label.LabelSet{}, fmt.Errorf("reading labels: %w", err)
	}

	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return label.LabelSet{}, &CorruptLabelError{Path: path, Index: -1, Reason: err.Error()}
	}
	ls := label.LabelSet{SourceID: sourceID, Intervals: make([]label.Interval, 0, len(raw))}
	for i, obj := range raw {
		start, err := endpoint(obj, "start")
		if err != nil {
			return label.LabelSet{}, &CorruptLabelError{Path: path, Index: i, Reason: err.Error()}
		}
		end, err := endpoint(obj, "end")
		if err != nil {
			return label.LabelSet{}, &CorruptLabelError{Path: path, Index: i, Reason: err.Error()}
		}
		iv, err := label.NewInterval(start, end)
		if err != nil {
			return label.LabelSet{}, &CorruptLabelError{Path: path, Index: i, Reason: err.Error()}
		}
		ls.Intervals = append(ls.Intervals, iv)
	}
	return ls, nil
}

func endpoint(obj map[string]json.RawMessage, key string) (float64, error) {
	raw, ok := obj[key]
	if !ok {
		return 0, fmt.Errorf("missing %q", key)
	}
	s := string(bytes.TrimSpace(raw))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is %s, not a number", key, s)
	}
	return v, nil
}

// List returns the source ids that have a label file, sorted.
func (d *diskStore) List() ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing labels: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), FileSuffix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), FileSuffix))
	}
	sort.Strings(ids)
	return ids, nil
}
