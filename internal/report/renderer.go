package report

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fakeyudi/jumplab/internal/pipeline"
)

const (
	versionSentinel = "<!-- jumplab-report-version: 1 -->"
	dataPrefix      = "<!-- jumplab-data: "
	dataSuffix      = " -->"
)

// Renderer serializes a Document to bytes.
type Renderer interface {
	Render(doc *Document) ([]byte, error)
}

// JSONRenderer renders a Document as indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// MarkdownRenderer renders a Document as readable Markdown with an embedded
// base64 JSON payload so the file can be parsed back losslessly.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(doc *Document) ([]byte, error) {
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(versionSentinel + "\n")
	fmt.Fprintf(&sb, "%s%s%s\n\n", dataPrefix, base64.StdEncoding.EncodeToString(jsonBytes), dataSuffix)
	fmt.Fprintf(&sb, "# jumplab %s, %s\n\n", doc.Kind, doc.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	switch doc.Kind {
	case KindProcess:
		if doc.Process != nil {
			writeProcess(&sb, doc)
		}
	case KindSegment:
		writeSegments(&sb, doc)
	case KindTrain:
		if doc.Training != nil {
			writeTraining(&sb, doc.Training)
		}
	default:
		return nil, fmt.Errorf("unknown report kind %q", doc.Kind)
	}
	return []byte(sb.String()), nil
}

func writeProcess(sb *strings.Builder, doc *Document) {
	s := doc.Process
	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(sb, "- Run: %s\n", s.RunID)
	fmt.Fprintf(sb, "- Raw dir: %s\n", s.RawDir)
	fmt.Fprintf(sb, "- Processed dir: %s\n", s.ProcessedDir)
	fmt.Fprintf(sb, "- Smoothing: %s\n", s.Smoothing)
	fmt.Fprintf(sb, "- Elapsed: %s\n", s.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(sb, "- Files: %d processed, %d skipped, %d failed\n", len(s.Processed), len(s.Skipped), len(s.Failed))
	fmt.Fprintf(sb, "- Skipped records: %d\n", s.SkippedRecords())
	sb.WriteString("\n")

	sb.WriteString("## Processed\n\n")
	if len(s.Processed) == 0 {
		sb.WriteString("_No recordings processed._\n")
	} else {
		sb.WriteString("| Source | Output | Events | Skipped records |\n")
		sb.WriteString("|--------|--------|--------|-----------------|\n")
		for _, f := range s.Processed {
			fmt.Fprintf(sb, "| %s | %s | %d | %d |\n", f.Source, f.Output, f.Events, f.SkippedRecords)
		}
	}
	sb.WriteString("\n")

	sb.WriteString("## Skipped\n\n")
	writeIssues(sb, s.Skipped, "_No files skipped._\n")
	sb.WriteString("\n")

	sb.WriteString("## Failed\n\n")
	writeIssues(sb, s.Failed, "_No failures._\n")
	sb.WriteString("\n")
}

func writeIssues(sb *strings.Builder, issues []pipeline.FileIssue, empty string) {
	if len(issues) == 0 {
		sb.WriteString(empty)
		return
	}
	for _, is := range issues {
		fmt.Fprintf(sb, "- %s: %s\n", is.Path, is.Reason)
	}
}

func writeSegments(sb *strings.Builder, doc *Document) {
	if len(doc.Segments) == 0 {
		sb.WriteString("_No recordings segmented._\n\n")
	}
	for _, seg := range doc.Segments {
		fmt.Fprintf(sb, "## %s\n\n", seg.Source)
		fmt.Fprintf(sb, "- Channel: %s\n", seg.EventType)
		fmt.Fprintf(sb, "- Jumps: %d\n", len(seg.Jumps))
		if seg.Saved != "" {
			fmt.Fprintf(sb, "- Labels: %s\n", seg.Saved)
		}
		sb.WriteString("\n")
		if len(seg.Jumps) == 0 {
			sb.WriteString("_No jumps detected._\n\n")
			continue
		}
		sb.WriteString("| # | Start | End | Air time |\n")
		sb.WriteString("|---|-------|-----|----------|\n")
		for i, iv := range seg.Jumps {
			fmt.Fprintf(sb, "| %d | %.0f | %.0f | %s |\n", i+1, iv.Start, iv.End, airTime(iv.Duration()))
		}
		sb.WriteString("\n")
	}
	if len(doc.Failed) > 0 {
		sb.WriteString("## Failed\n\n")
		writeIssues(sb, doc.Failed, "")
		sb.WriteString("\n")
	}
}

func writeTraining(sb *strings.Builder, t *Training) {
	sb.WriteString("## Dataset\n\n")
	fmt.Fprintf(sb, "- Recordings: %d\n", len(t.Dataset.Sources))
	fmt.Fprintf(sb, "- Windows: %d (%d labeled as jumps)\n", t.Dataset.Windows, t.Positives)
	for _, src := range t.Dataset.Sources {
		fmt.Fprintf(sb, "  - %s\n", src)
	}
	sb.WriteString("\n")
	if len(t.Dataset.Skipped) > 0 {
		sb.WriteString("### Left out\n\n")
		writeIssues(sb, t.Dataset.Skipped, "")
		sb.WriteString("\n")
	}

	sb.WriteString("## Model\n\n")
	fmt.Fprintf(sb, "- Train/test: %d/%d\n", t.TrainSize, t.TestSize)
	fmt.Fprintf(sb, "- Accuracy: %.4f\n", t.Accuracy)
	fmt.Fprintf(sb, "- Tree depth: %d\n", t.Depth)
	sb.WriteString("\n")

	sb.WriteString("## Classification report\n\n")
	sb.WriteString("```\n")
	sb.WriteString(t.Report)
	if !strings.HasSuffix(t.Report, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("```\n")
}

// airTime formats a nanosecond duration.
func airTime(ns float64) string {
	return time.Duration(ns).Round(time.Millisecond).String()
}

// ForFormat returns the renderer for a report_format value. Anything other
// than "json" renders Markdown.
func ForFormat(format string) Renderer {
	if strings.EqualFold(format, "json") {
		return &JSONRenderer{}
	}
	return &MarkdownRenderer{}
}
