package recording

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fakeyudi/jumplab/internal/atomicfile"
	"github.com/fakeyudi/jumplab/internal/sensor"
)

// Ext is the only recording extension the loader reads.
const Ext = ".json"

// UnsupportedFileFormatError is returned for a file whose extension is not
// a recording format.
type UnsupportedFileFormatError struct {
	Path string
	Ext  string
}

func (e *UnsupportedFileFormatError) Error() string {
	ext := e.Ext
	if ext == "" {
		ext = "no extension"
	}
	return fmt.Sprintf("unsupported file format %s: %s", ext, e.Path)
}

// unsupported returns nil for a path with the recording extension.
func unsupported(path string) *UnsupportedFileFormatError {
	ext := filepath.Ext(path)
	if !strings.EqualFold(ext, Ext) {
		return &UnsupportedFileFormatError{Path: path, Ext: ext}
	}
	return nil
}

// Load reads and parses one recording in either input format.
func Load(path string) (Result, error) {
	if u := unsupported(path); u != nil {
		return Result{}, u
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("reading recording: %w", err)
	}
	res, err := (&AutoParser{}).Parse(data)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// Write renders s and replaces path with it in one step.
func Write(path string, s sensor.Session, r SessionRenderer) error {
	data, err := r.Render(s)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	return atomicfile.Write(path, data)
}

// ScanResult lists the regular files of a directory split by whether they
// are recordings.
type ScanResult struct {
	Files       []string
	Unsupported []*UnsupportedFileFormatError
}

// Scan lists dir without descending into subdirectories. Hidden files and
// temp files are ignored. Paths are sorted.
func Scan(dir string) (ScanResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ScanResult{}, fmt.Errorf("scanning %s: %w", dir, err)
	}
	var res ScanResult
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		path := filepath.Join(dir, name)
		if u := unsupported(path); u != nil {
			res.Unsupported = append(res.Unsupported, u)
			continue
		}
		res.Files = append(res.Files, path)
	}
	return res, nil
}
