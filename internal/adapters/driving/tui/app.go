// Package tui provides the interactive chat terminal UI. It follows
// the Elm architecture via Bubbletea: one model, messages for every
// pipeline event, a pure view over the transcript.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/raglite/raglite/internal/core/domain"
	"github.com/raglite/raglite/internal/core/ports/driving"
)

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// Pipeline events delivered from the streaming goroutine.
type (
	// stageMsg announces a pipeline stage transition.
	stageMsg struct {
		stage domain.Stage
		note  string
	}

	// deltaMsg carries one generated text fragment.
	deltaMsg struct {
		text string
	}

	// streamDoneMsg signals a completed answer.
	streamDoneMsg struct{}

	// streamFailedMsg signals a failed answer; the partial text is
	// discarded, matching what was committed to history (nothing).
	streamFailedMsg struct {
		err error
	}
)

// entry is one transcript line pair.
type entry struct {
	role string
	text string
}

// App is the chat TUI application.
type App struct {
	chat      driving.ChatService
	ctx       context.Context
	sessionID string

	styles   *Styles
	input    textinput.Model
	viewport viewport.Model

	transcript []entry
	streaming  bool
	stage      string
	err        error

	events chan tea.Msg

	width  int
	height int
	ready  bool
}

// NewApp creates a chat TUI over the given chat service. Each App runs
// one fresh session.
func NewApp(chat driving.ChatService) (*App, error) {
	if chat == nil {
		return nil, fmt.Errorf("chat service is required")
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about your documents..."
	ti.Focus()
	ti.CharLimit = 0

	return &App{
		chat:      chat,
		ctx:       context.Background(),
		sessionID: uuid.NewString(),
		styles:    DefaultStyles(),
		input:     ti,
		viewport:  viewport.New(0, 0),
	}, nil
}

// WithContext sets the context used for chat requests.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// SessionID returns the conversation session identifier.
func (a *App) SessionID() string {
	return a.sessionID
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tea.SetWindowTitle("raglite chat"),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.resize()
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "enter":
			return a, a.submit()
		case "ctrl+l":
			return a, a.clearSession()
		}
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd

	case stageMsg:
		a.stage = string(msg.stage)
		if msg.note != "" {
			a.stage += ": " + msg.note
		}
		return a, a.waitEvent()

	case deltaMsg:
		a.appendToAnswer(msg.text)
		a.refreshTranscript()
		return a, a.waitEvent()

	case streamDoneMsg:
		a.streaming = false
		a.stage = ""
		return a, nil

	case streamFailedMsg:
		a.streaming = false
		a.stage = ""
		a.err = msg.err
		a.dropPendingAnswer()
		a.refreshTranscript()
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	title := a.styles.Title.Render("raglite chat")
	transcript := a.styles.Transcript.Render(a.viewport.View())
	input := a.styles.InputBox.Render(a.input.View())

	status := a.statusLine()

	return title + "\n" + transcript + "\n" + input + "\n" + status
}

// Run starts the TUI application and blocks until exit.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Streaming reports whether an answer is currently being generated.
func (a *App) Streaming() bool {
	return a.streaming
}

// Transcript returns the rendered conversation text.
func (a *App) Transcript() string {
	return a.renderTranscript()
}

// Err returns the last error shown to the user.
func (a *App) Err() error {
	return a.err
}

// submit starts the pipeline for the typed question.
func (a *App) submit() tea.Cmd {
	if a.streaming {
		return nil
	}
	query := strings.TrimSpace(a.input.Value())
	if query == "" {
		return nil
	}

	a.input.Reset()
	a.err = nil
	a.streaming = true
	a.transcript = append(a.transcript,
		entry{role: domain.RoleUser, text: query},
		entry{role: domain.RoleAssistant},
	)
	a.refreshTranscript()

	events := make(chan tea.Msg, 64)
	a.events = events

	go func() {
		handler := driving.StreamHandler{
			OnStage: func(stage domain.Stage, note string) {
				if stage != domain.StageDone && stage != domain.StageError {
					events <- stageMsg{stage: stage, note: note}
				}
			},
			OnDelta: func(text string) {
				events <- deltaMsg{text: text}
			},
		}

		if err := a.chat.StreamChat(a.ctx, a.sessionID, query, handler); err != nil {
			events <- streamFailedMsg{err: err}
		} else {
			events <- streamDoneMsg{}
		}
		close(events)
	}()

	return a.waitEvent()
}

// waitEvent delivers the next pipeline event as a tea.Msg.
func (a *App) waitEvent() tea.Cmd {
	events := a.events
	return func() tea.Msg {
		return <-events
	}
}

// clearSession discards the conversation, client and server side.
func (a *App) clearSession() tea.Cmd {
	if a.streaming {
		return nil
	}
	if err := a.chat.ClearSession(a.ctx, a.sessionID); err != nil {
		a.err = err
		return nil
	}
	a.transcript = nil
	a.err = nil
	a.refreshTranscript()
	return nil
}

// appendToAnswer extends the pending assistant entry.
func (a *App) appendToAnswer(text string) {
	if len(a.transcript) == 0 {
		return
	}
	last := &a.transcript[len(a.transcript)-1]
	if last.role == domain.RoleAssistant {
		last.text += text
	}
}

// dropPendingAnswer removes an unfinished assistant entry after a
// failed stream.
func (a *App) dropPendingAnswer() {
	if len(a.transcript) == 0 {
		return
	}
	last := a.transcript[len(a.transcript)-1]
	if last.role == domain.RoleAssistant {
		a.transcript = a.transcript[:len(a.transcript)-1]
	}
}

func (a *App) resize() {
	transcriptFrameW, transcriptFrameH := a.styles.Transcript.GetFrameSize()
	_, inputFrameH := a.styles.InputBox.GetFrameSize()

	// title + input box + status line
	reserved := 1 + 1 + inputFrameH + 1
	vh := a.height - reserved - transcriptFrameH
	if vh < 3 {
		vh = 3
	}
	vw := a.width - transcriptFrameW
	if vw < 20 {
		vw = 20
	}

	a.viewport.Width = vw
	a.viewport.Height = vh
	a.input.Width = vw
	a.refreshTranscript()
}

func (a *App) refreshTranscript() {
	a.viewport.SetContent(a.renderTranscript())
	a.viewport.GotoBottom()
}

func (a *App) renderTranscript() string {
	if len(a.transcript) == 0 {
		return "Ask a question to get started."
	}

	wrap := lipgloss.NewStyle()
	if a.viewport.Width > 0 {
		wrap = wrap.Width(a.viewport.Width)
	}

	var sb strings.Builder
	for i, e := range a.transcript {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		switch e.role {
		case domain.RoleUser:
			sb.WriteString(a.styles.UserLabel.Render("You"))
		default:
			sb.WriteString(a.styles.AssistantLabel.Render("raglite"))
		}
		sb.WriteString("\n")
		sb.WriteString(wrap.Render(e.text))
	}
	return sb.String()
}

func (a *App) statusLine() string {
	switch {
	case a.err != nil:
		return a.styles.Error.Render("error: " + a.err.Error())
	case a.streaming && a.stage != "":
		return a.styles.Status.Render("thinking [" + a.stage + "]")
	case a.streaming:
		return a.styles.Status.Render("thinking")
	default:
		return a.styles.Status.Render("enter to send, ctrl+l to clear, ctrl+c to quit")
	}
}
