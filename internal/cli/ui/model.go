// Package ui renders live progress for multi-input runs in the terminal.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stackvity/json2csv/pkg/converter"
)

const listHeightMargin = 5 // header, progress, footer and padding

// StatusMsg signals a change in an input's processing status.
type StatusMsg struct {
	Path     string
	Status   converter.Status
	Message  string
	Duration time.Duration
}

// DoneMsg signals the end of the run. The program exits after rendering it.
type DoneMsg struct{ Report converter.Report }

// Model is the bubbletea model for a batch conversion.
type Model struct {
	list     list.Model
	spinner  spinner.Model
	progress progress.Model

	width       int
	height      int
	initialized bool

	items   []listItem
	itemMap map[string]int // path to index in items

	summary    Summary
	version    string
	phase      string
	fatalError string
	done       bool
	quitting   bool

	// onQuit runs when the user quits before the run ends.
	onQuit func()
}

type listItem struct {
	path     string
	status   converter.Status
	message  string
	duration time.Duration
}

// Summary holds the counts displayed in the footer.
type Summary struct {
	Total     int
	Converted int
	Skipped   int
	Failed    int
	Rows      int
	StartTime time.Time
}

// NewModel creates a model tracking paths, all pending. onQuit may be nil.
func NewModel(version string, paths []string, onQuit func()) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = StatusStyleProcessing

	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)
	delegate.ShowDescription = true
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(ColorSelectedFg).
		Background(ColorSelectedBg).
		Bold(true).
		Padding(0, 0, 0, 1)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(ColorSelectedDescFg).
		Background(ColorSelectedBg).
		Padding(0, 0, 0, 1)
	delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.
		Foreground(ColorNormalFg).Padding(0, 0, 0, 1)
	delegate.Styles.NormalDesc = delegate.Styles.NormalDesc.
		Foreground(ColorNormalDescFg).Padding(0, 0, 0, 1)

	m := &Model{
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		items:    make([]listItem, 0, len(paths)),
		itemMap:  make(map[string]int, len(paths)),
		summary:  Summary{Total: len(paths), StartTime: time.Now()},
		version:  version,
		phase:    "Initializing...",
		onQuit:   onQuit,
	}
	listItems := make([]list.Item, 0, len(paths))
	for _, p := range paths {
		if _, dup := m.itemMap[p]; dup {
			continue
		}
		it := listItem{path: p, status: converter.StatusPending}
		m.itemMap[p] = len(m.items)
		m.items = append(m.items, it)
		listItems = append(listItems, it)
	}
	m.summary.Total = len(m.items)

	l := list.New(listItems, delegate, 0, 0)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowTitle(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	m.list = l
	return m
}

// Init starts the spinner.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles terminal events and run status messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		listHeight := m.height - listHeightMargin
		if listHeight < 1 {
			listHeight = 1
		}
		m.list.SetSize(m.width, listHeight)
		m.progress.Width = max(m.width-2, 10)
		m.initialized = true
		return m, nil

	case tea.KeyMsg:
		if m.quitting {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			if m.onQuit != nil && !m.done {
				m.onQuit()
			}
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)

	case spinner.TickMsg:
		if m.quitting || m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case StatusMsg:
		cmds = append(cmds, m.applyStatus(msg))
		if msg.Status == converter.StatusProcessing && !m.done {
			m.phase = "Converting..."
		}

	case DoneMsg:
		m.done = true
		m.phase = "Complete"
		m.summary.Converted = msg.Report.Summary.ProcessedCount
		m.summary.Failed = msg.Report.Summary.ErrorCount
		m.summary.Rows = msg.Report.Summary.RowCount
		if msg.Report.Summary.FatalErrorOccurred {
			m.fatalError = "Run stopped after a failed input."
			for _, e := range msg.Report.Errors {
				if e.IsFatal {
					m.fatalError = fmt.Sprintf("Stopped: %s (%s)", e.Error, e.Path)
					break
				}
			}
		}
		return m, tea.Quit
	}

	return m, tea.Batch(cmds...)
}

// applyStatus records an input's new status and returns the list update.
func (m *Model) applyStatus(msg StatusMsg) tea.Cmd {
	idx, ok := m.itemMap[msg.Path]
	if !ok {
		m.items = append(m.items, listItem{path: msg.Path})
		idx = len(m.items) - 1
		m.itemMap[msg.Path] = idx
		m.summary.Total++
	}
	item := &m.items[idx]
	wasFinal := item.status.Final()
	isFinal := msg.Status.Final()
	if isFinal && !wasFinal {
		m.incrementSummaryCount(msg.Status)
	}
	item.status = msg.Status
	item.message = msg.Message
	if msg.Duration > 0 {
		item.duration = msg.Duration
	}
	if !ok {
		return m.list.InsertItem(idx, *item)
	}
	return m.list.SetItem(idx, *item)
}

// View renders header, progress bar, input list and footer.
func (m *Model) View() string {
	if m.quitting && !m.done {
		return "Cancelling...\n"
	}
	if !m.initialized {
		return "Initializing..."
	}

	headerLeft := fmt.Sprintf("json2csv %s", m.version)
	headerRight := m.phase
	if !m.done && m.phase != "Initializing..." {
		headerRight = m.spinner.View() + " " + m.phase
	}
	headerCenter := ""
	if gap := m.width - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight) - 2; gap > 0 {
		headerCenter = strings.Repeat(" ", gap)
	}
	header := HeaderStyle.Width(m.width).Render(headerLeft + headerCenter + headerRight)

	bar := m.progress.ViewAs(m.fraction())

	footerLeft := fmt.Sprintf(
		"Converted: %d | Skipped: %d | Failed: %d | Total: %d | Elapsed: %s",
		m.summary.Converted,
		m.summary.Skipped,
		m.summary.Failed,
		m.summary.Total,
		time.Since(m.summary.StartTime).Round(time.Millisecond),
	)
	if m.done {
		footerLeft += fmt.Sprintf(" | Rows: %d", m.summary.Rows)
	}
	footerRight := "q: quit"
	footerCenter := ""
	if gap := m.width - lipgloss.Width(footerLeft) - lipgloss.Width(footerRight) - 2; gap > 0 {
		footerCenter = strings.Repeat(" ", gap)
	}
	footer := FooterStyle.Width(m.width).Render(footerLeft + footerCenter + footerRight)

	parts := []string{header, bar, m.list.View()}
	if m.fatalError != "" {
		parts = append(parts, StatusStyleFailed.Render(m.fatalError))
	}
	parts = append(parts, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// fraction returns the share of inputs in a final state.
func (m *Model) fraction() float64 {
	if m.summary.Total == 0 {
		return 0
	}
	finished := m.summary.Converted + m.summary.Skipped + m.summary.Failed
	return float64(finished) / float64(m.summary.Total)
}

func (m *Model) incrementSummaryCount(status converter.Status) {
	switch status {
	case converter.StatusSuccess:
		m.summary.Converted++
	case converter.StatusSkipped:
		m.summary.Skipped++
	case converter.StatusFailed:
		m.summary.Failed++
	}
}

// FilterValue implements list.Item.
func (i listItem) FilterValue() string { return i.path }

// Title implements list.DefaultItem.
func (i listItem) Title() string { return i.path }

// Description implements list.DefaultItem.
func (i listItem) Description() string {
	var style lipgloss.Style
	icon := " "
	switch i.status {
	case converter.StatusSuccess:
		style, icon = StatusStyleSuccess, "✓"
	case converter.StatusFailed:
		style, icon = StatusStyleFailed, "✗"
	case converter.StatusSkipped:
		style, icon = StatusStyleSkipped, "S"
	case converter.StatusProcessing:
		style, icon = StatusStyleProcessing, "…"
	default:
		style = StatusStylePending
	}

	details := ""
	switch i.status {
	case converter.StatusFailed, converter.StatusSkipped:
		details = i.message
	case converter.StatusSuccess:
		details = i.message
		if d := formatDuration(i.duration); d != "" {
			details += " in " + d
		}
	}
	return fmt.Sprintf("%s %s", style.Render("["+icon+"]"), details)
}

func formatDuration(d time.Duration) string {
	switch {
	case d == 0:
		return ""
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}

const (
	ColorHeaderFg = lipgloss.Color("252")
	ColorHeaderBg = lipgloss.Color("62")

	ColorFooterFg = lipgloss.Color("252")
	ColorFooterBg = lipgloss.Color("56")

	ColorNormalFg     = lipgloss.Color("250")
	ColorNormalDescFg = lipgloss.Color("244")

	ColorSelectedFg     = lipgloss.Color("255")
	ColorSelectedBg     = lipgloss.Color("56")
	ColorSelectedDescFg = lipgloss.Color("248")

	ColorStatusSuccess    = lipgloss.Color("40")
	ColorStatusFailed     = lipgloss.Color("196")
	ColorStatusSkipped    = lipgloss.Color("214")
	ColorStatusPending    = lipgloss.Color("244")
	ColorStatusProcessing = lipgloss.Color("205")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorHeaderFg).
			Background(ColorHeaderBg).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorFooterFg).
			Background(ColorFooterBg).
			Padding(0, 1)

	StatusStyleSuccess    = lipgloss.NewStyle().Foreground(ColorStatusSuccess)
	StatusStyleFailed     = lipgloss.NewStyle().Foreground(ColorStatusFailed)
	StatusStyleSkipped    = lipgloss.NewStyle().Foreground(ColorStatusSkipped)
	StatusStylePending    = lipgloss.NewStyle().Foreground(ColorStatusPending)
	StatusStyleProcessing = lipgloss.NewStyle().Foreground(ColorStatusProcessing)
)
