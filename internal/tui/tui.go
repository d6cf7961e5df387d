// Package tui provides a Bubble Tea program for marking air time intervals
// on a chart of one recording channel.
package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/stat"

	"github.com/fakeyudi/jumplab/internal/label"
)

// ── Styles ────────────

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	// Colour A: a start waiting for its end.
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	// Colour B: a closed interval.
	closedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("237"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)
)

const (
	chartHeight = 12
	// title, axis, status line and hint bar around the chart.
	fixedRows = chartHeight + 4
	fastStep  = 10
)

// Outcome is how the user left the program.
type Outcome struct {
	// Accepted is false when the recording was skipped.
	Accepted bool
	Labels   label.LabelSet
}

// Model is the root Bubble Tea model. The cursor is a sample index.
type Model struct {
	labeler    *label.Labeler
	title      string
	timestamps []int64
	values     []float64
	cursor     int
	width      int
	height     int
	ready      bool
	list       viewport.Model
	status     string
	outcome    Outcome
}

// New creates a model over one scalar channel. timestamps and values must
// have the same length.
func New(sourceID, channel string, timestamps []int64, values []float64) Model {
	n := min(len(timestamps), len(values))
	return Model{
		labeler:    label.NewLabeler(sourceID),
		title:      sourceID + "  " + channel,
		timestamps: timestamps[:n],
		values:     values[:n],
		width:      80,
		status:     "pick the start of a jump",
	}
}

// Outcome returns the result once the program has quit.
func (m Model) Outcome() Outcome { return m.outcome }

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.outcome = Outcome{}
			return m, tea.Quit
		case "a":
			m.outcome = Outcome{Accepted: true, Labels: m.labeler.Commit()}
			return m, tea.Quit
		case "left", "h":
			m.move(-1)
		case "right", "l":
			m.move(1)
		case "H", "shift+left":
			m.move(-fastStep)
		case "L", "shift+right":
			m.move(fastStep)
		case "home", "g":
			m.cursor = 0
		case "end", "G":
			m.cursor = max(len(m.timestamps)-1, 0)
		case " ", "enter":
			m.pick()
		case "r":
			m.labeler.Discard()
			m.status = "picks cleared"
			m.refreshList()
		default:
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.list = viewport.New(m.width, max(m.height-fixedRows, 1))
		m.refreshList()
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}
	title := titleStyle.Width(m.width).Render("  jumplab label  " + m.title)
	hint := "  ←/→ move  H/L fast  space pick  r redo  a accept  q skip"
	statusBar := statusBarStyle.Width(m.width).Render(hint)
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.renderChart(),
		m.renderAxis(),
		"  "+m.status,
		m.list.View(),
		statusBar,
	)
}

// ── Actions ───────────────────────

// move shifts the cursor by whole chart columns.
func (m *Model) move(columns int) {
	n := len(m.timestamps)
	if n == 0 {
		return
	}
	step := max(n/m.columns(), 1)
	m.cursor = min(max(m.cursor+columns*step, 0), n-1)
}

func (m *Model) pick() {
	if len(m.timestamps) == 0 {
		return
	}
	ts := float64(m.timestamps[m.cursor])
	mark, err := m.labeler.Pick(label.Pick{Timestamp: ts, Region: label.RegionChart})
	switch {
	case err != nil:
		m.status = "pick ignored: " + err.Error()
	case mark == label.MarkStart:
		m.status = fmt.Sprintf("start at %s, pick the landing", m.seconds(ts))
	default:
		ivs := m.labeler.Intervals()
		iv := ivs[len(ivs)-1]
		m.status = fmt.Sprintf("added %s to %s", m.seconds(iv.Start), m.seconds(iv.End))
	}
	m.refreshList()
}

func (m *Model) refreshList() {
	m.list.SetContent(m.renderIntervals())
	m.list.GotoBottom()
}

// ── Rendering ─────────────────────

func (m Model) columns() int {
	return max(min(m.width-2, len(m.timestamps)), 1)
}

// bucket is the sample range [lo, hi) drawn in column c.
func (m Model) bucket(c int) (lo, hi int) {
	n, cols := len(m.timestamps), m.columns()
	lo, hi = c*n/cols, (c+1)*n/cols
	return lo, max(hi, lo+1)
}

// renderChart draws the channel downsampled to the terminal width, one
// dot per column at the bucket mean.
func (m Model) renderChart() string {
	cols := m.columns()
	if len(m.timestamps) == 0 {
		return dimStyle.Render("  (no samples)") + strings.Repeat("\n", chartHeight-1)
	}
	levels := make([]int, cols)
	lo, hi := math.Inf(1), math.Inf(-1)
	means := make([]float64, cols)
	for c := range cols {
		a, b := m.bucket(c)
		means[c] = bucketMean(m.values[a:b])
		if !math.IsNaN(means[c]) {
			lo, hi = math.Min(lo, means[c]), math.Max(hi, means[c])
		}
	}
	for c, v := range means {
		switch {
		case math.IsNaN(v):
			levels[c] = -1
		case hi > lo:
			levels[c] = int(math.Round((v - lo) / (hi - lo) * (chartHeight - 1)))
		}
	}

	cursorCol := m.cursor * cols / len(m.timestamps)
	rows := make([]string, chartHeight)
	for r := range chartHeight {
		level := chartHeight - 1 - r
		var sb strings.Builder
		sb.WriteString("  ")
		for c := range cols {
			cell := " "
			if levels[c] == level {
				cell = "•"
			}
			style, styled := m.columnStyle(c)
			switch {
			case c == cursorCol:
				if cell == " " {
					cell = "│"
				}
				sb.WriteString(cursorStyle.Render(cell))
			case styled:
				if cell == " " && level == 0 {
					cell = "▁"
				}
				sb.WriteString(style.Render(cell))
			default:
				sb.WriteString(cell)
			}
		}
		rows[r] = sb.String()
	}
	return strings.Join(rows, "\n")
}

// columnStyle colours a column holding the pending start or falling inside
// a closed interval.
func (m Model) columnStyle(c int) (lipgloss.Style, bool) {
	a, b := m.bucket(c)
	first, last := float64(m.timestamps[a]), float64(m.timestamps[b-1])
	if p, ok := m.labeler.Pending(); ok && p >= first && p <= last {
		return pendingStyle, true
	}
	for _, iv := range m.labeler.Intervals() {
		if iv.Start <= last && iv.End >= first {
			return closedStyle, true
		}
	}
	return lipgloss.Style{}, false
}

func (m Model) renderAxis() string {
	if len(m.timestamps) == 0 {
		return ""
	}
	left := m.seconds(float64(m.timestamps[0]))
	right := m.seconds(float64(m.timestamps[len(m.timestamps)-1]))
	cur := "cursor " + m.seconds(float64(m.timestamps[m.cursor]))
	pad := m.columns() - len(left) - len(right) - len(cur)
	if pad < 2 {
		return "  " + cur
	}
	return "  " + dimStyle.Render(left) + strings.Repeat(" ", pad/2) + timeStyle.Render(cur) +
		strings.Repeat(" ", pad-pad/2) + dimStyle.Render(right)
}

func (m Model) renderIntervals() string {
	var sb strings.Builder
	ivs := m.labeler.Intervals()
	sb.WriteString(sectionHeader.Render(fmt.Sprintf("  Intervals (%d)", len(ivs))) + "\n")
	if p, ok := m.labeler.Pending(); ok {
		sb.WriteString(pendingStyle.Render("  ● ") + "start " + m.seconds(p) + ", waiting for the end\n")
	}
	if len(ivs) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}
	for i, iv := range ivs {
		sb.WriteString(fmt.Sprintf("%s %3d.  %s → %s  %s\n",
			closedStyle.Render("  ■"), i+1, m.seconds(iv.Start), m.seconds(iv.End),
			dimStyle.Render(fmt.Sprintf("(%.0f ms)", iv.Duration()/1e6))))
	}
	return sb.String()
}

// seconds formats a timestamp relative to the first sample.
func (m Model) seconds(ts float64) string {
	if len(m.timestamps) == 0 {
		return "0.000s"
	}
	return fmt.Sprintf("%.3fs", (ts-float64(m.timestamps[0]))/1e9)
}

func bucketMean(vs []float64) float64 {
	present := make([]float64, 0, len(vs))
	for _, v := range vs {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return math.NaN()
	}
	return stat.Mean(present, nil)
}

// Run starts the program and blocks until the user accepts or skips.
func Run(sourceID, channel string, timestamps []int64, values []float64) (Outcome, error) {
	p := tea.NewProgram(New(sourceID, channel, timestamps, values), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return Outcome{}, err
	}
	return final.(Model).Outcome(), nil
}
