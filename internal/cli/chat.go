package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/raphaelgruber/parley/internal/session"
)

const (
	sidebarWidth = 26
	inputHeight  = 3
)

// Theme holds the color scheme for the chat UI.
type Theme struct {
	User      lipgloss.Color
	Assistant lipgloss.Color
	Accent    lipgloss.Color
	Error     lipgloss.Color
	Hint      lipgloss.Color
}

var defaultTheme = Theme{
	User:      lipgloss.Color("#5FAFD7"), // light blue
	Assistant: lipgloss.Color("#00D787"), // green
	Accent:    lipgloss.Color("#AF87FF"), // violet
	Error:     lipgloss.Color("#FF005F"), // red
	Hint:      lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) userStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.User).Bold(true)
}

func (t Theme) assistantStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Assistant).Bold(true)
}

func (t Theme) accentStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// spinnerFrames animate the in-flight send indicator.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// tickMsg advances the spinner while a send is in flight.
type tickMsg time.Time

// sendDoneMsg reports that a send finished, success or not.
type sendDoneMsg struct{}

// chatModel is the bubbletea model for the interactive chat UI.
type chatModel struct {
	ctrl     *session.Controller
	input    textarea.Model
	viewport viewport.Model
	theme    Theme
	greet    greeting

	width        int
	height       int
	spinnerFrame int
	quitting     bool
}

// newChatModel creates the chat model.
func newChatModel(ctrl *session.Controller) chatModel {
	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.Prompt = "│ "
	ta.SetHeight(inputHeight - 1)
	ta.Focus()

	return chatModel{
		ctrl:     ctrl,
		input:    ta,
		viewport: viewport.New(),
		theme:    defaultTheme,
		greet:    timeBasedGreeting(time.Now()),
	}
}

// Init returns the initial command.
func (m chatModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and returns the updated model.
func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.SetWidth(m.transcriptWidth())
		m.viewport.SetHeight(m.transcriptHeight())
		m.input.SetWidth(m.transcriptWidth())
		m.refreshTranscript()
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			return m.submit()
		case "ctrl+n":
			m.ctrl.NewChat()
			m.refreshTranscript()
			return m, nil
		case "ctrl+p":
			m.cycleThread(-1)
			return m, nil
		case "ctrl+o":
			m.cycleThread(1)
			return m, nil
		case "ctrl+d":
			if id := m.ctrl.ActiveID(); id != "" {
				m.ctrl.Delete(id)
				m.refreshTranscript()
			}
			return m, nil
		case "ctrl+l":
			m.ctrl.Clear()
			m.refreshTranscript()
			return m, nil
		}

	case sendDoneMsg:
		m.refreshTranscript()
		return m, nil

	case tickMsg:
		if !m.ctrl.Sending() {
			return m, nil
		}
		m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerFrames)
		return m, spinnerTick()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the current input through the controller.
func (m chatModel) submit() (tea.Model, tea.Cmd) {
	if m.ctrl.Sending() {
		return m, nil
	}

	text := m.input.Value()
	m.input.Reset()

	// No active thread: create one, then resubmit the same text against
	// it. The controller's send protocol would otherwise stop after the
	// implicit creation and the typed text would be lost.
	if m.ctrl.ActiveID() == "" {
		if _, err := m.ctrl.NewChat(); err != nil {
			m.refreshTranscript()
			return m, nil
		}
	}

	ctrl := m.ctrl
	send := func() tea.Msg {
		ctrl.Send(context.Background(), text)
		return sendDoneMsg{}
	}

	m.refreshTranscript()
	return m, tea.Batch(send, spinnerTick())
}

// cycleThread switches the active thread by offset within the list.
func (m *chatModel) cycleThread(offset int) {
	threads := m.ctrl.Threads()
	if len(threads) == 0 {
		return
	}

	active := m.ctrl.ActiveID()
	idx := 0
	for i, t := range threads {
		if t.ID == active {
			idx = i
			break
		}
	}
	next := (idx + offset + len(threads)) % len(threads)
	m.ctrl.Switch(threads[next].ID)
	m.refreshTranscript()
}

// refreshTranscript rebuilds the viewport content from the active thread.
func (m *chatModel) refreshTranscript() {
	active, ok := m.ctrl.Active()
	if !ok || len(active.Messages) == 0 {
		title := m.theme.accentStyle().Bold(true).Render(m.greet.Title)
		subtitle := m.theme.hintStyle().Render(m.greet.Subtitle)
		m.viewport.SetContent("\n" + title + "\n" + subtitle + "\n")
		return
	}

	wrap := lipgloss.NewStyle().Width(m.transcriptWidth())
	var b strings.Builder
	for _, msg := range active.Messages {
		label := m.theme.assistantStyle().Render("AI")
		if msg.Sender == "user" {
			label = m.theme.userStyle().Render("You")
		}
		b.WriteString(label + "  " + m.theme.hintStyle().Render(formatTimestamp(msg.Timestamp, time.Now())) + "\n")
		b.WriteString(wrap.Render(msg.Text) + "\n\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// View renders the UI.
func (m chatModel) View() tea.View {
	if m.quitting || m.width == 0 {
		return tea.NewView("")
	}

	main := lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.statusLine(),
		m.input.View(),
	)
	return tea.NewView(lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar(), main))
}

// sidebar renders the thread list, most recent first.
func (m chatModel) sidebar() string {
	border := lipgloss.NewStyle().
		Width(sidebarWidth).
		Height(m.height).
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(m.theme.Hint)

	var b strings.Builder
	b.WriteString(m.theme.accentStyle().Bold(true).Render("Chats") + "\n\n")

	active := m.ctrl.ActiveID()
	for _, t := range m.ctrl.Threads() {
		line := previewText(t.Title, sidebarWidth-4)
		if t.ID == active {
			b.WriteString(m.theme.accentStyle().Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	return border.Render(b.String())
}

// statusLine renders the spinner, the last error, or the key help.
func (m chatModel) statusLine() string {
	switch {
	case m.ctrl.Sending():
		frame := spinnerFrames[m.spinnerFrame]
		return m.theme.accentStyle().Render(frame + " Thinking...")
	case m.ctrl.LastError() != "":
		return m.theme.errorStyle().Render("✗ " + m.ctrl.LastError())
	default:
		return m.theme.hintStyle().Render(
			"enter send · ctrl+n new · ctrl+p/ctrl+o switch · ctrl+d delete · ctrl+l clear · esc quit")
	}
}

func (m chatModel) transcriptWidth() int {
	w := m.width - sidebarWidth - 2
	if w < 20 {
		w = 20
	}
	return w
}

func (m chatModel) transcriptHeight() int {
	h := m.height - inputHeight - 1
	if h < 5 {
		h = 5
	}
	return h
}

func spinnerTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// runChat runs the interactive chat UI against the controller.
func runChat(ctrl *session.Controller) error {
	p := tea.NewProgram(newChatModel(ctrl))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat UI error: %w", err)
	}
	return nil
}
