package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	braintrust "github.com/makeXnow/BrainTrust-AI"
	"github.com/makeXnow/BrainTrust-AI/core"
	"github.com/makeXnow/BrainTrust-AI/session"
)

const helpLine = "enter send · tab use suggestion · /continue · /reset · /dismiss · /topics · /quit"

type stateMsg session.State

type workflowDoneMsg struct{ err error }

type chatStyles struct {
	header      lipgloss.Style
	user        lipgloss.Style
	title       lipgloss.Style
	placeholder lipgloss.Style
	muted       lipgloss.Style
	err         lipgloss.Style
}

func newChatStyles() chatStyles {
	return chatStyles{
		header:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f5f5f5")).Background(lipgloss.Color("#3b3f5c")).Padding(0, 1),
		user:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#05ffa1")),
		title:       lipgloss.NewStyle().Foreground(lipgloss.Color("#8a8fa8")),
		placeholder: lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#8a8fa8")),
		muted:       lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086")),
		err:         lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff5f87")),
	}
}

type chatModel struct {
	bt          *braintrust.BrainTrust
	sessionID   string
	updates     <-chan session.State
	unsubscribe func()

	state      session.State
	statusLine string
	width      int
	height     int

	input    textinput.Model
	timeline viewport.Model
	spinner  spinner.Model
	styles   chatStyles
}

func newChatModel(bt *braintrust.BrainTrust, sessionID string) chatModel {
	input := textinput.New()
	input.Prompt = "❯ "
	input.CharLimit = 4000
	input.Placeholder = "Enter a topic to assemble a panel"
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#05ffa1"))

	timeline := viewport.New(80, 20)
	timeline.MouseWheelEnabled = true

	updates, unsubscribe := bt.Subscribe(sessionID)
	return chatModel{
		bt:          bt,
		sessionID:   sessionID,
		updates:     updates,
		unsubscribe: unsubscribe,
		statusLine:  "ready",
		width:       80,
		height:      24,
		input:       input,
		timeline:    timeline,
		spinner:     sp,
		styles:      newChatStyles(),
	}
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		textinput.Blink,
		waitState(m.updates),
	)
}

// waitState delivers the next session snapshot as a stateMsg.
func waitState(ch <-chan session.State) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return nil
		}
		return stateMsg(st)
	}
}

func waitDone(done <-chan error) tea.Cmd {
	return func() tea.Msg {
		return workflowDoneMsg{err: <-done}
	}
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.render()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	case stateMsg:
		m.state = session.State(msg)
		if len(m.state.Personas) > 0 {
			m.input.Placeholder = "Reply to the panel"
		} else {
			m.input.Placeholder = "Enter a topic to assemble a panel"
		}
		m.render()
		cmds = append(cmds, waitState(m.updates))
	case workflowDoneMsg:
		if msg.err != nil {
			m.statusLine = "failed: " + msg.err.Error()
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if text == "" {
				return m, nil
			}
			if cmd := m.handleInput(text); cmd != nil {
				cmds = append(cmds, cmd)
			}
			return m, tea.Batch(cmds...)
		case "tab":
			if m.input.Value() == "" && m.state.Suggestion != "" {
				m.input.SetValue(m.state.Suggestion)
				m.input.CursorEnd()
			}
			return m, nil
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.timeline, cmd = m.timeline.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.timeline, cmd = m.timeline.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// handleInput runs a slash command or submits text to the session.
func (m *chatModel) handleInput(text string) tea.Cmd {
	if !strings.HasPrefix(text, "/") {
		done, err := m.bt.Submit(m.sessionID, text)
		if err != nil {
			m.statusLine = err.Error()
			return nil
		}
		m.statusLine = "sent"
		return waitDone(done)
	}

	switch cmd := strings.Fields(text)[0]; cmd {
	case "/quit", "/exit":
		return tea.Quit
	case "/reset":
		m.bt.Reset(m.sessionID)
		m.statusLine = "session reset"
	case "/continue":
		done, err := m.bt.Continue(m.sessionID)
		if err != nil {
			m.statusLine = err.Error()
			return nil
		}
		m.statusLine = "continuing"
		return waitDone(done)
	case "/dismiss":
		m.bt.DismissError(m.sessionID)
		m.statusLine = "error dismissed"
	case "/topics":
		m.statusLine = "try: " + strings.Join(m.bt.Suggestions(3), " | ")
	default:
		m.statusLine = fmt.Sprintf("unknown command %s", cmd)
	}
	return nil
}

func (m *chatModel) resize() {
	h := m.height - 4
	if h < 3 {
		h = 3
	}
	m.timeline.Width = m.width
	m.timeline.Height = h
	m.input.Width = m.width - 4
}

func (m *chatModel) render() {
	atBottom := m.timeline.AtBottom()
	m.timeline.SetContent(renderTimeline(m.state, m.width, m.styles))
	if atBottom {
		m.timeline.GotoBottom()
	}
}

func (m chatModel) View() string {
	header := m.styles.header.Render(m.headerText())
	status := m.statusLine
	if busy(m.state.Status) {
		status = m.spinner.View() + " " + statusLabel(m.state.Status)
	}
	footer := m.styles.muted.Render(status + "  ·  " + helpLine)
	return lipgloss.JoinVertical(lipgloss.Left, header, m.timeline.View(), m.input.View(), footer)
}

func (m chatModel) headerText() string {
	if m.state.Topic == "" {
		return "BrainTrust"
	}
	return fmt.Sprintf("BrainTrust · %s · %s mode", m.state.Topic, m.state.Mode)
}

func busy(s core.Status) bool {
	switch s {
	case core.StatusGeneratingPanelists, core.StatusIntroductions, core.StatusDiscussion, core.StatusGeneratingAutoResponse:
		return true
	}
	return false
}

func statusLabel(s core.Status) string {
	switch s {
	case core.StatusGeneratingPanelists:
		return "assembling the panel..."
	case core.StatusIntroductions:
		return "panelists are joining..."
	case core.StatusDiscussion:
		return "discussing..."
	case core.StatusGeneratingAutoResponse:
		return "drafting a reply for you..."
	}
	return s.String()
}

// renderTimeline formats the display log of st for a terminal of the given
// width. Persona names use their assigned palette color.
func renderTimeline(st session.State, width int, styles chatStyles) string {
	if width < 20 {
		width = 20
	}
	body := lipgloss.NewStyle().Width(width - 2).PaddingLeft(2)

	var b strings.Builder
	if len(st.Display) == 0 && st.Error == "" {
		b.WriteString(styles.muted.Render("Enter a topic to assemble a panel of experts."))
		b.WriteString("\n")
	}
	for _, msg := range st.Display {
		switch {
		case msg.Role == core.RoleUser:
			b.WriteString(styles.user.Render(msg.SenderName))
		case msg.IsThinking:
			b.WriteString(styles.placeholder.Render(msg.Content))
			b.WriteString("\n\n")
			continue
		default:
			name := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(msg.Color)).Render(msg.SenderName)
			b.WriteString(name)
			if msg.SenderTitle != "" {
				b.WriteString(" " + styles.title.Render(msg.SenderTitle))
			}
		}
		b.WriteString("\n")
		b.WriteString(body.Render(msg.Content))
		b.WriteString("\n\n")
	}
	if st.Error != "" {
		b.WriteString(styles.err.Render("! " + st.Error + " (/dismiss)"))
		b.WriteString("\n")
	}
	if st.Suggestion != "" && st.Status == core.StatusWaitingForUser {
		b.WriteString(styles.muted.Render("suggested: " + st.Suggestion + " (tab to use)"))
		b.WriteString("\n")
	}
	return b.String()
}
