// Package tui is an interactive terminal chat against the dialogue core.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/poiesic/civicfaq/core"
)

// TurnHandler is the TUI-facing subset of the dialogue orchestrator.
type TurnHandler interface {
	HandleTurn(ctx context.Context, sessionID, message string) (core.TurnResult, error)
}

// turnTimeout bounds a single turn so a hung provider cannot freeze the UI.
const turnTimeout = 60 * time.Second

type exchange struct {
	question string
	result   core.TurnResult
	err      error
}

type turnMsg struct {
	question string
	result   core.TurnResult
	err      error
}

// Model is the Bubble Tea model for the chat UI.
type Model struct {
	turns     TurnHandler
	sessionID string
	input     textinput.Model
	viewport  viewport.Model
	history   []exchange
	status    string
	waiting   bool
	details   bool
	ready     bool
}

// New creates a chat model for sessionID.
func New(turns TurnHandler, sessionID string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about council tax, bins, benefits or schools"
	ti.Focus()
	ti.CharLimit = 500
	return Model{
		turns:     turns,
		sessionID: sessionID,
		input:     ti,
		viewport:  viewport.New(0, 0),
		status:    "Enter to send, Tab for match details, Ctrl+C to quit.",
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and turn result events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, fh := transcriptStyle.GetFrameSize()
		_, ih := inputStyle.GetFrameSize()
		reserved := 1 + 1 + ih + 1 // header, input line, frame, status
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-reserved-fh)
		m.refresh()
		return m, nil

	case turnMsg:
		m.waiting = false
		m.history = append(m.history, exchange(msg))
		switch {
		case msg.err != nil:
			m.status = "Error: " + msg.err.Error()
		case msg.result.Degraded:
			m.status = "Embedding provider unavailable."
		default:
			m.status = fmt.Sprintf("Topic: %s  score=%.3f", msg.result.Topic, msg.result.Score)
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.Type {
		case tea.KeyEnter:
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.waiting {
				return m, nil
			}
			m.input.SetValue("")
			m.waiting = true
			m.status = "Thinking..."
			return m, m.ask(q)
		case tea.KeyTab:
			m.details = !m.details
			m.refresh()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(question string) tea.Cmd {
	turns, sessionID := m.turns, m.sessionID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
		defer cancel()
		result, err := turns.HandleTurn(ctx, sessionID, question)
		return turnMsg{question: question, result: result, err: err}
	}
}

// View renders the transcript, input and status line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Council services assistant")
	transcript := transcriptStyle.Render(m.viewport.View())
	input := inputStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	if len(m.history) == 0 {
		return mutedStyle.Render("Say hi to see what I can help with.")
	}

	var b strings.Builder
	for i, ex := range m.history {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(userStyle.Render("You: "))
		b.WriteString(ex.question)
		b.WriteString("\n")

		if ex.err != nil {
			b.WriteString(errorStyle.Render("Error: " + ex.err.Error()))
			b.WriteString("\n")
			continue
		}

		b.WriteString(topicStyle.Render("[" + ex.result.Topic + "] "))
		b.WriteString(ex.result.Reply)
		b.WriteString("\n")
		if ex.result.NextStepsURL != "" {
			b.WriteString(linkStyle.Render("Next steps: " + ex.result.NextStepsURL))
			b.WriteString("\n")
		}
		if m.details {
			b.WriteString(m.renderDetails(ex.result))
		}
	}
	return b.String()
}

func (m Model) renderDetails(r core.TurnResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  score=%.3f lexical=%d", r.Score, r.LexicalScore)
	if r.Degraded {
		b.WriteString(" degraded")
	}
	b.WriteString("\n")
	for i, alt := range r.Alternatives {
		fmt.Fprintf(&b, "  %d. %.3f  %s / %s\n", i+1, alt.Score, alt.FAQ.Service, alt.FAQ.Title)
	}
	return mutedStyle.Render(b.String())
}

var (
	headerStyle     = lipgloss.NewStyle().Bold(true)
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	mutedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	userStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	topicStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	linkStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Underline(true)
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)
