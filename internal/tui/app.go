// Package tui is the full-screen terminal interface of docassist.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AndreyKorzunin/projectassist/internal/chatbot"
	"github.com/AndreyKorzunin/projectassist/internal/render"
	"github.com/AndreyKorzunin/projectassist/internal/session"
)

// HealthInterval is how often the service status is refreshed.
const HealthInterval = 30 * time.Second

// App is the TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	bot    *chatbot.ChatBot
	ctx    context.Context
	styles *render.Styles
	keymap *KeyMap
	help   help.Model

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	// loading is the overlay text while an upload or query runs.
	loading string
	// alert is a blocking error that must be dismissed with esc.
	alert string
	// notice is a one-line message above the input.
	notice string

	rendered int // transcript length at the last viewport refresh

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a TUI over bot.
func NewApp(bot *chatbot.ChatBot) (*App, error) {
	if bot == nil {
		return nil, errors.New("creating app: chatbot is required")
	}

	s := render.DefaultStyles()

	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = chatbot.MaxQueryLength
	ti.Width = 60

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = s.Loading

	a := &App{
		bot:      bot,
		ctx:      context.Background(),
		styles:   s,
		keymap:   DefaultKeyMap(),
		help:     help.New(),
		input:    ti,
		viewport: viewport.New(80, 20),
		spinner:  sp,
		width:    80,
		height:   24,
	}
	a.syncInput()
	return a, nil
}

// WithContext sets the context for backend calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("docassist"),
		textinput.Blink,
		a.checkHealth(true),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		a.ready = true
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case UploadCompleted:
		a.loading = ""
		if msg.Err != nil {
			a.alert = "Upload failed: " + msg.Err.Error()
			return a, nil
		}
		a.notice = ""
		a.input.Reset()
		a.syncInput()
		a.refresh()
		return a, nil

	case QueryCompleted:
		a.loading = ""
		if msg.Err != nil && notSent(msg.Err) {
			a.notice = msg.Err.Error()
		}
		a.refresh()
		return a, nil

	case HealthChecked:
		// Only the periodic probe re-arms the timer, so there is one chain.
		if !msg.Scheduled {
			return a, nil
		}
		return a, tea.Tick(HealthInterval, func(t time.Time) tea.Msg { return healthTick(t) })

	case healthTick:
		return a, a.checkHealth(true)

	case spinner.TickMsg:
		if a.loading == "" {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		a.refresh()
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	a.viewport, cmd = a.viewport.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

// handleKeyMsg processes keyboard input.
func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keymap.Quit) {
		return a, tea.Quit
	}

	// An alert blocks everything until it is dismissed.
	if a.alert != "" {
		if key.Matches(msg, a.keymap.Back, a.keymap.Submit) {
			a.alert = ""
		}
		return a, nil
	}

	// Input is disabled while a request is outstanding.
	if a.loading != "" {
		return a, nil
	}

	chat := a.bot.View() == session.ViewDocumentChat

	switch {
	case key.Matches(msg, a.keymap.Submit):
		return a, a.submit()

	case key.Matches(msg, a.keymap.Health):
		return a, a.checkHealth(false)

	case chat && key.Matches(msg, a.keymap.Back):
		a.bot.Back(a.ctx)
		a.reset()
		return a, nil

	case chat && key.Matches(msg, a.keymap.NewSession):
		a.bot.NewSession(a.ctx)
		a.reset()
		return a, nil

	case chat && key.Matches(msg, a.keymap.NextTask):
		a.cycleTask()
		return a, nil

	case chat && key.Matches(msg, a.keymap.Quick):
		i := int(msg.String()[len(msg.String())-1] - '1')
		return a, a.startQuery(LoadingFor(a.bot.QuickReplies()[i].TaskType), func(ctx context.Context) error {
			_, err := a.bot.SendQuickReply(ctx, i)
			return err
		})

	case chat && key.Matches(msg, a.keymap.ScrollUp, a.keymap.ScrollDown):
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// submit uploads the typed path or sends the typed query.
func (a *App) submit() tea.Cmd {
	text := strings.TrimSpace(a.input.Value())
	a.notice = ""

	if a.bot.View() == session.ViewUpload {
		if text == "" {
			a.notice = "Enter the path of a document."
			return nil
		}
		path := expandHome(text)
		a.loading = "Uploading " + filepath.Base(path) + "..."
		return tea.Batch(a.spinner.Tick, func() tea.Msg {
			sess, err := a.bot.UploadFile(a.ctx, path)
			return UploadCompleted{Session: sess, Err: err}
		})
	}

	if text == "" {
		return nil
	}
	a.input.Reset()
	return a.startQuery(LoadingFor(a.bot.TaskType()), func(ctx context.Context) error {
		_, err := a.bot.SendMessage(ctx, text)
		return err
	})
}

func (a *App) startQuery(text string, fn func(ctx context.Context) error) tea.Cmd {
	a.loading = text
	return tea.Batch(a.spinner.Tick, func() tea.Msg {
		return QueryCompleted{Err: fn(a.ctx)}
	})
}

// checkHealth probes the service. scheduled marks the periodic probe.
func (a *App) checkHealth(scheduled bool) tea.Cmd {
	return func() tea.Msg {
		h, err := a.bot.CheckHealth(a.ctx)
		return HealthChecked{Health: h, Err: err, Scheduled: scheduled}
	}
}

func (a *App) cycleTask() {
	i := slices.Index(session.TaskTypes, a.bot.TaskType())
	next := session.TaskTypes[(i+1)%len(session.TaskTypes)]
	if err := a.bot.SetTaskType(next); err != nil {
		a.notice = err.Error()
	}
}

// reset returns the screen to the upload state.
func (a *App) reset() {
	a.notice = ""
	a.rendered = 0
	a.input.Reset()
	a.syncInput()
	a.viewport.SetContent("")
}

func (a *App) syncInput() {
	if a.bot.View() == session.ViewUpload {
		a.input.Placeholder = "Path to a document (.docx, .xlsx, .xls, .pdf)"
		a.input.CharLimit = 4096
		return
	}
	a.input.Placeholder = "Ask about the document..."
	a.input.CharLimit = chatbot.MaxQueryLength
}

// refresh re-renders the transcript into the viewport, following the
// bottom when new messages arrived.
func (a *App) refresh() {
	msgs := a.bot.Messages()
	parts := make([]string, 0, len(msgs))
	wrap := lipgloss.NewStyle().Width(max(a.viewport.Width-2, 20))
	for _, m := range msgs {
		if m.Kind == session.KindLoading {
			parts = append(parts, a.spinner.View()+" "+render.Message(m, a.styles))
			continue
		}
		parts = append(parts, wrap.Render(render.Message(m, a.styles)))
	}
	a.viewport.SetContent(strings.Join(parts, "\n\n"))
	if len(msgs) != a.rendered {
		a.viewport.GotoBottom()
		a.rendered = len(msgs)
	}
}

// SetDimensions sets the terminal size.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.input.Width = max(width-8, 10)
	a.viewport.Width = width
	// Header, quick replies, input box, notice and status bar.
	a.viewport.Height = max(height-9, 3)
	a.refresh()
}

// Loading returns the overlay text, or "" when idle.
func (a *App) Loading() string { return a.loading }

// Alert returns the blocking error, or "".
func (a *App) Alert() string { return a.alert }

// Notice returns the inline notice, or "".
func (a *App) Notice() string { return a.notice }

// LoadingFor returns the overlay text of a query with the given task type.
func LoadingFor(t session.TaskType) string {
	switch t {
	case session.TaskGrammarCheck:
		return "Checking grammar..."
	case session.TaskFindRepeats:
		return "Looking for repeats..."
	case session.TaskStructureAnalysis:
		return "Analyzing structure..."
	default:
		return chatbot.LoadingText
	}
}

func notSent(err error) bool {
	for _, sentinel := range []error{chatbot.ErrEmptyQuery, chatbot.ErrNoSession, chatbot.ErrBusy, chatbot.ErrSessionClosed} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func expandHome(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return strings.Trim(path, `"'`)
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(a.renderHeader())
	b.WriteString("\n")

	if a.bot.View() == session.ViewUpload {
		b.WriteString(a.renderUpload())
	} else {
		b.WriteString(a.viewport.View())
		b.WriteString("\n")
		b.WriteString(a.renderQuickReplies())
	}
	b.WriteString("\n")

	if a.notice != "" {
		b.WriteString(a.styles.Error.Render(a.notice))
	}
	b.WriteString("\n")
	b.WriteString(a.styles.Input.Render(a.input.View()))
	b.WriteString("\n")
	b.WriteString(a.renderStatus())

	screen := b.String()
	switch {
	case a.alert != "":
		return a.overlay(a.styles.Error.Render(a.alert) + "\n\n" + a.styles.Muted.Render("press esc to close"))
	case a.loading != "":
		return a.overlay(a.spinner.View() + " " + a.loading)
	}
	return screen
}

func (a *App) overlay(content string) string {
	box := a.styles.Overlay.Render(content)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, box)
}

func (a *App) renderHeader() string {
	title := a.styles.Title.UnsetMarginBottom().Render("docassist")
	h := a.bot.Health()
	status := a.styles.Offline.Render("● " + h.String())
	if h.Online {
		status = a.styles.Online.Render("● " + h.String())
	}

	left := title
	if sess := a.bot.Session(); sess != nil {
		left += "  " + a.styles.Bold.Render(sess.Filename) + a.styles.Muted.Render(" ("+sess.DocType.Label()+")")
	}
	padding := max(a.width-lipgloss.Width(left)-lipgloss.Width(status), 1)
	return left + strings.Repeat(" ", padding) + status
}

func (a *App) renderUpload() string {
	st := a.bot.Stats()
	lines := []string{
		"",
		"Upload a document to start: type its path and press enter.",
		a.styles.Muted.Render("Supported formats: " + strings.Join(a.bot.Config().Extensions, ", ")),
		"",
		a.styles.Muted.Render(fmt.Sprintf("Documents analyzed: %d   Queries answered: %d", st.Documents, st.Queries)),
	}
	body := strings.Join(lines, "\n")
	return lipgloss.NewStyle().Height(max(a.height-7, len(lines))).Render(body)
}

func (a *App) renderQuickReplies() string {
	var parts []string
	for i, q := range a.bot.QuickReplies() {
		parts = append(parts, a.styles.Muted.Render(fmt.Sprintf("alt+%d", i+1))+" "+q.Label)
	}
	task := a.styles.Bold.Render("task: " + a.bot.TaskType().Label())
	return task + "   " + strings.Join(parts, "  ")
}

func (a *App) renderStatus() string {
	bindings := a.keymap.UploadHelp()
	if a.bot.View() == session.ViewDocumentChat {
		bindings = a.keymap.ChatHelp()
	}
	return a.styles.StatusBar.Render(a.help.ShortHelpView(bindings))
}
