package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"studymate/internal/domain"
)

// SessionPort is the TUI-facing subset of the learning session.
type SessionPort interface {
	Load(path string) (*domain.Document, error)
	Chat(ctx context.Context, message string) (string, error)
	Summarize(ctx context.Context) (string, error)
	Review(ctx context.Context) (string, error)
	Progress() (domain.ProgressReport, error)
}

type entryKind int

const (
	entryUser entryKind = iota
	entryAssistant
	entrySystem
	entryError
)

type entry struct {
	kind entryKind
	text string
}

type loadedMsg struct {
	doc *domain.Document
	err error
}

type replyMsg struct {
	kind domain.RequestKind
	text string
	err  error
}

type progressMsg struct {
	report domain.ProgressReport
	err    error
}

// Model is the Bubble Tea model for the study chat.
// Only one session command runs at a time.
type Model struct {
	session  SessionPort
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	entries  []entry
	status   string
	docName  string
	initPath string
	busy     bool
	ready    bool
}

// New creates a new TUI model instance.
func New(session SessionPort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question, or /load <path>"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		session:  session,
		input:    ti,
		viewport: vp,
		spinner:  sp,
		status:   "No document. Use /load <path>.",
	}
}

// StartWith makes the model load path as soon as the program starts.
func (m Model) StartWith(path string) Model {
	m.initPath = path
	m.busy = true
	m.status = "Loading " + path + "..."
	return m
}

// Init starts the cursor blink and any initial load.
func (m Model) Init() tea.Cmd {
	if m.initPath == "" {
		return textinput.Blink
	}
	return tea.Batch(textinput.Blink, m.spinner.Tick, loadCmd(m.session, m.initPath))
}

// Update handles key, window and session events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, lh := logBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + ih + 1 // header, status, input box, input line
		vh := msg.Height - reserved - lh
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, vh)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			return m.submit()
		case "ctrl+s":
			return m.start("Summarizing...", summarizeCmd(m.session))
		case "ctrl+r":
			return m.start("Preparing review...", reviewCmd(m.session))
		case "ctrl+p":
			return m.start("", progressCmd(m.session))
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case loadedMsg:
		m.busy = false
		if msg.err != nil {
			m.addEntry(entryError, "Load failed: "+msg.err.Error())
			m.status = "Load failed."
			return m, nil
		}
		m.docName = msg.doc.FileName
		m.addEntry(entrySystem, fmt.Sprintf("Loaded %s (%d chunks).", msg.doc.FileName, msg.doc.ChunkCount))
		m.status = "Ready."
		return m, nil

	case replyMsg:
		m.busy = false
		if msg.err != nil {
			m.addEntry(entryError, describeError(msg.err))
			m.status = msg.kind.String() + " failed."
			return m, nil
		}
		m.addEntry(entryAssistant, msg.text)
		m.status = "Ready."
		return m, nil

	case progressMsg:
		m.busy = false
		if msg.err != nil {
			m.addEntry(entryError, describeError(msg.err))
			return m, nil
		}
		m.addEntry(entrySystem, formatProgress(msg.report))
		m.status = "Ready."
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	if m.busy {
		m.status = "Still working, please wait."
		return m, nil
	}
	m.input.SetValue("")
	if path, ok := strings.CutPrefix(text, "/load"); ok {
		path = strings.TrimSpace(path)
		if path == "" {
			m.status = "Usage: /load <path>"
			return m, nil
		}
		return m.start("Loading "+path+"...", loadCmd(m.session, path))
	}
	m.addEntry(entryUser, text)
	return m.start("Thinking...", chatCmd(m.session, text))
}

func (m Model) start(status string, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if m.busy {
		m.status = "Still working, please wait."
		return m, nil
	}
	m.busy = true
	if status != "" {
		m.status = status
	}
	return m, tea.Batch(m.spinner.Tick, cmd)
}

func (m *Model) addEntry(kind entryKind, text string) {
	m.entries = append(m.entries, entry{kind: kind, text: text})
	m.refresh()
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderLog())
	m.viewport.GotoBottom()
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	title := "StudyMate"
	if m.docName != "" {
		title += " · " + m.docName
	}
	header := headerStyle.Render(title)
	status := m.status
	if m.busy {
		status = m.spinner.View() + " " + status
	}
	help := helpStyle.Render("enter send · ctrl+s summary · ctrl+r review · ctrl+p progress · ctrl+c quit")
	return header + "\n" +
		logBoxStyle.Render(m.viewport.View()) + "\n" +
		inputBoxStyle.Render(m.input.View()) + "\n" +
		statusStyle.Render(status) + "  " + help
}

func (m Model) renderLog() string {
	if len(m.entries) == 0 {
		return helpStyle.Render("Nothing here yet.")
	}
	width := max(10, m.viewport.Width-2)
	body := lipgloss.NewStyle().Width(width)
	parts := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		var label string
		switch e.kind {
		case entryUser:
			label = userStyle.Render("You")
		case entryAssistant:
			label = assistantStyle.Render("Tutor")
		case entrySystem:
			label = systemStyle.Render("Info")
		case entryError:
			label = errorStyle.Render("Error")
		}
		parts = append(parts, label+"\n"+body.Render(e.text))
	}
	return strings.Join(parts, "\n\n")
}

func describeError(err error) string {
	var ge *domain.GenerationError
	switch {
	case errors.Is(err, domain.ErrNoDocument):
		return "Load a document first with /load <path>."
	case errors.Is(err, domain.ErrNothingToReview):
		return "Nothing has been read yet. Ask a few questions first."
	case errors.As(err, &ge) && ge.Retryable:
		return err.Error() + " (try again)"
	default:
		return err.Error()
	}
}

func formatProgress(p domain.ProgressReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d/%d chunks read (%.2f%%)\n", p.FileName, p.ReadChunks, p.TotalChunks, p.ProgressPercentage)
	fmt.Fprintf(&b, "Questions asked: %d · Summaries: %d\n", p.QuestionsAsked, p.SummariesCount)
	fmt.Fprintf(&b, "Started: %s", p.StartTime.Format("2006-01-02 15:04"))
	if p.LastSummaryTime != nil {
		fmt.Fprintf(&b, "\nLast summary: %s", p.LastSummaryTime.Format("2006-01-02 15:04"))
	}
	if p.LastReviewTime != nil {
		fmt.Fprintf(&b, "\nLast review: %s", p.LastReviewTime.Format("2006-01-02 15:04"))
	}
	return b.String()
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	logBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	systemStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)
