// Package ui renders stress run progress as a Bubble Tea program.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"provmap/internal/stress"
)

type progressModel struct {
	title      string
	events     <-chan stress.Event
	spinner    spinner.Model
	prog       progress.Model
	workers    []workerItem
	stageLabel string
	width      int
	done       bool
}

type workerItem struct {
	name   string
	status string
	done   int
	total  int
}

type eventMsg stress.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders per-worker
// progress of a stress run. It quits once events is closed.
func NewProgressModel(title string, workers int, events <-chan stress.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]workerItem, workers)
	for i := range items {
		items[i] = workerItem{name: fmt.Sprintf("worker %d", i), status: "queued"}
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		workers: items,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(stress.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.workers) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.stageLabel != "" {
		header = fmt.Sprintf("%s (%s)", header, m.stageLabel)
	}
	if m.done {
		header = fmt.Sprintf("done: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-12-16, 12)
	for _, w := range m.workers {
		statusStyled := styleStatus(w.status).Render(fmt.Sprintf("%12s", w.status))
		counts := ""
		if w.total > 0 {
			counts = fmt.Sprintf("%d/%d", w.done, w.total)
		}
		fmt.Fprintf(&b, "  %s %s %s\n", statusStyled, pad(truncate(w.name, nameWidth), nameWidth), counts)
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev stress.Event) tea.Cmd {
	label := statusLabel(ev.Stage, ev.Status)
	if ev.Worker < 0 || ev.Worker >= len(m.workers) {
		if label != "" {
			m.stageLabel = label
		}
		return nil
	}
	w := &m.workers[ev.Worker]
	if label != "" {
		w.status = label
	}
	if ev.Total > 0 {
		w.done, w.total = ev.Done, ev.Total
	}
	return m.prog.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if len(m.workers) == 0 {
		return 0
	}
	total := 0.0
	for _, w := range m.workers {
		switch {
		case w.status == "done" || w.status == "error":
			total += 1.0
		case w.total > 0:
			total += float64(w.done) / float64(w.total)
		}
	}
	return total / float64(len(m.workers))
}

func statusLabel(stage stress.Stage, status stress.Status) string {
	switch status {
	case stress.StatusQueued:
		return "queued"
	case stress.StatusDone:
		if stage == stress.StageValidate {
			return "validated"
		}
		return "done"
	case stress.StatusError:
		return "error"
	case stress.StatusWorking:
		return stageLabel(stage)
	default:
		return ""
	}
}

func stageLabel(stage stress.Stage) string {
	switch stage {
	case stress.StageOps:
		return "running"
	case stress.StageValidate:
		return "validating"
	default:
		return ""
	}
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done", "validated":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "error":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "running", "validating":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func pad(value string, width int) string {
	if n := runewidth.StringWidth(value); n < width {
		return value + strings.Repeat(" ", width-n)
	}
	return value
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
