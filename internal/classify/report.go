package classify

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// ClassMetrics are the scores of one class.
type ClassMetrics struct {
	Class     int
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Metrics returns per-class scores for every class seen in yTrue or yPred,
// ordered by class. Undefined ratios are 0.
func Metrics(yTrue, yPred []int) []ClassMetrics {
	classes := make(map[int]bool)
	for _, c := range yTrue {
		classes[c] = true
	}
	for _, c := range yPred {
		classes[c] = true
	}
	keys := make([]int, 0, len(classes))
	for c := range classes {
		keys = append(keys, c)
	}
	sort.Ints(keys)

	out := make([]ClassMetrics, 0, len(keys))
	for _, c := range keys {
		var tp, fp, fn int
		for i := range yTrue {
			switch {
			case yPred[i] == c && yTrue[i] == c:
				tp++
			case yPred[i] == c:
				fp++
			case yTrue[i] == c:
				fn++
			}
		}
		m := ClassMetrics{Class: c, Support: tp + fn}
		m.Precision = ratio(tp, tp+fp)
		m.Recall = ratio(tp, tp+fn)
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		out = append(out, m)
	}
	return out
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

// Report renders precision, recall, f1 and support per class plus accuracy
// and macro and support-weighted averages.
func Report(yTrue, yPred []int) string {
	ms := Metrics(yTrue, yPred)
	var b strings.Builder
	fmt.Fprintf(&b, "%12s %9s %9s %9s %9s\n\n", "", "precision", "recall", "f1-score", "support")
	if len(ms) == 0 {
		return b.String()
	}

	var prec, rec, f1, weights []float64
	total := 0
	for _, m := range ms {
		fmt.Fprintf(&b, "%12s %9.2f %9.2f %9.2f %9d\n", strconv.Itoa(m.Class), m.Precision, m.Recall, m.F1, m.Support)
		prec = append(prec, m.Precision)
		rec = append(rec, m.Recall)
		f1 = append(f1, m.F1)
		weights = append(weights, float64(m.Support))
		total += m.Support
	}

	var hits int
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			hits++
		}
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "%12s %9s %9s %9.2f %9d\n", "accuracy", "", "", ratio(hits, len(yTrue)), total)
	fmt.Fprintf(&b, "%12s %9.2f %9.2f %9.2f %9d\n", "macro avg",
		stat.Mean(prec, nil), stat.Mean(rec, nil), stat.Mean(f1, nil), total)
	if total > 0 {
		fmt.Fprintf(&b, "%12s %9.2f %9.2f %9.2f %9d\n", "weighted avg",
			stat.Mean(prec, weights), stat.Mean(rec, weights), stat.Mean(f1, weights), total)
	}
	return b.String()
}
