package ui

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/sylfinder/internal/history"
	"github.com/abelbrown/sylfinder/internal/logging"
	"github.com/abelbrown/sylfinder/internal/model"
	"github.com/abelbrown/sylfinder/internal/ranking"
	"github.com/abelbrown/sylfinder/internal/session"
	"github.com/abelbrown/sylfinder/internal/submission"
	"github.com/abelbrown/sylfinder/internal/view"
)

// Lines used by the title, controls and help bar around the results.
const chromeHeight = 7

// AppConfig wires the App to the rest of the program. The controllers
// hold state; the funcs perform I/O and report back with a message.
type AppConfig struct {
	Session    *session.Store
	Submission *submission.Controller
	History    *history.Controller
	Metric     ranking.Metric
	StartDir   string

	// Authenticate performs a login or sign-up and reports LoginDone.
	Authenticate func(t session.Ticket) tea.Cmd
	// Upload sends the ticket's document and reports UploadDone.
	Upload func(token string, t submission.Ticket) tea.Cmd
	// FetchHistory reports HistoryLoaded.
	FetchHistory func(token string, t history.Ticket) tea.Cmd
	// LoadSnapshot reports SnapshotLoaded.
	LoadSnapshot func(token string, epoch uint64) tea.Cmd
	// SaveSnapshot stores fetched history and reports SnapshotSaved.
	SaveSnapshot func(token string, entries []model.HistoryEntry) tea.Cmd
	// Inspect sniffs a picked file and reports FileInspected.
	Inspect func(path string) tea.Cmd
}

type focus int

const (
	focusEmail focus = iota
	focusPassword
)

// App is the root Bubble Tea model.
// Network calls and file reads happen in the commands returned by
// AppConfig funcs and arrive back as messages. The only I/O on the update
// path is the session's credential slot write on login and logout.
type App struct {
	cfg        AppConfig
	session    *session.Store
	submission *submission.Controller
	history    *history.Controller
	metric     ranking.Metric

	email    textinput.Model
	password textinput.Model
	focus    focus

	picker  filepicker.Model
	picking bool

	spinner spinner.Model
	results viewport.Model
	help    help.Model

	loginKeys  loginKeyMap
	mainKeys   mainKeyMap
	pickerKeys pickerKeyMap

	width  int
	height int
	ready  bool
}

// NewApp creates the App. Session, Submission and History must be set.
func NewApp(cfg AppConfig) App {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 254
	email.Width = 40
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.Width = 40

	fp := filepicker.New()
	fp.CurrentDirectory = cfg.StartDir
	if fp.CurrentDirectory == "" {
		fp.CurrentDirectory = "."
	}

	return App{
		cfg:        cfg,
		session:    cfg.Session,
		submission: cfg.Submission,
		history:    cfg.History,
		metric:     cfg.Metric,
		email:      email,
		password:   password,
		picker:     fp,
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		results:    viewport.New(80, 20),
		help:       help.New(),
		loginKeys:  defaultLoginKeys(),
		mainKeys:   defaultMainKeys(),
		pickerKeys: defaultPickerKeys(),
	}
}

// Init starts the spinner and, for a resumed session, the history load.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spinner.Tick, textinput.Blink}
	if a.session.State() == session.Authenticated {
		cmds = append(cmds, a.startSession()...)
	}
	return tea.Batch(cmds...)
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	a, cmd := a.update(msg)
	a.syncResults()
	return a, cmd
}

func (a App) update(msg tea.Msg) (App, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.results.Width = msg.Width
		a.results.Height = max(msg.Height-chromeHeight, 3)
		a.help.Width = msg.Width
		a.ready = true
		var cmd tea.Cmd
		a.picker, cmd = a.picker.Update(msg)
		return a, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case LoginDone:
		if a.session.Complete(msg.Seq, msg.Token, msg.Err) {
			a.password.Reset()
			return a, tea.Batch(a.startSession()...)
		}
		return a, nil

	case UploadDone:
		if a.submission.Complete(msg.Seq, msg.Result, msg.Err) {
			a.results.GotoTop()
			return a, a.refreshHistory()
		}
		return a, nil

	case HistoryLoaded:
		if a.history.Complete(msg.Ticket, msg.Entries, msg.Err) {
			return a, a.saveSnapshot()
		}
		return a, nil

	case SnapshotLoaded:
		if msg.Err != nil {
			logging.Warn("failed to load history snapshot", "err", msg.Err)
			return a, nil
		}
		a.history.Restore(msg.Epoch, msg.Entries, msg.FetchedAt)
		return a, nil

	case SnapshotSaved:
		if msg.Err != nil {
			logging.Warn("failed to save history snapshot", "err", msg.Err)
		}
		return a, nil

	case FileInspected:
		a.submission.SelectFile(msg.Doc, msg.Err)
		if a.submission.Snapshot().File != nil {
			// An accepted file starts over with a clean error line.
			a.history.ClearError()
		}
		return a, nil
	}

	// Everything else belongs to the bubbles: directory listings for the
	// picker, cursor blinks for the inputs.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.picker, cmd = a.picker.Update(msg)
	cmds = append(cmds, cmd)
	if a.session.State() == session.Anonymous {
		a.email, cmd = a.email.Update(msg)
		cmds = append(cmds, cmd)
		a.password, cmd = a.password.Update(msg)
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

// handleKeyMsg routes keyboard input to the active screen.
func (a App) handleKeyMsg(msg tea.KeyMsg) (App, tea.Cmd) {
	if key.Matches(msg, forceQuit) {
		return a, tea.Quit
	}

	switch {
	case a.session.State() == session.Anonymous:
		return a.handleLoginKey(msg)
	case a.picking:
		return a.handlePickerKey(msg)
	default:
		return a.handleMainKey(msg)
	}
}

func (a App) handleLoginKey(msg tea.KeyMsg) (App, tea.Cmd) {
	switch {
	case key.Matches(msg, a.loginKeys.Submit):
		ticket, err := a.session.BeginLogin(session.Credentials{
			Email:    a.email.Value(),
			Password: a.password.Value(),
		})
		if err != nil || a.cfg.Authenticate == nil {
			return a, nil
		}
		return a, a.cfg.Authenticate(ticket)

	case key.Matches(msg, a.loginKeys.Toggle):
		a.session.ToggleMode()
		return a, nil

	case key.Matches(msg, a.loginKeys.Next):
		if a.focus == focusEmail {
			return a, a.setFocus(focusPassword)
		}
		return a, a.setFocus(focusEmail)
	}

	var cmd tea.Cmd
	if a.focus == focusEmail {
		a.email, cmd = a.email.Update(msg)
	} else {
		a.password, cmd = a.password.Update(msg)
	}
	return a, cmd
}

func (a App) handlePickerKey(msg tea.KeyMsg) (App, tea.Cmd) {
	if key.Matches(msg, a.pickerKeys.Cancel) {
		a.picking = false
		return a, nil
	}

	var cmd tea.Cmd
	a.picker, cmd = a.picker.Update(msg)
	if ok, path := a.picker.DidSelectFile(msg); ok {
		a.picking = false
		a.submission.BeginValidation()
		if a.cfg.Inspect == nil {
			a.submission.SelectFile(model.Document{Path: path}, errors.New("no inspector configured"))
			return a, cmd
		}
		return a, tea.Batch(cmd, a.cfg.Inspect(path))
	}
	return a, cmd
}

func (a App) handleMainKey(msg tea.KeyMsg) (App, tea.Cmd) {
	switch {
	case key.Matches(msg, a.mainKeys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.mainKeys.Open):
		a.picking = true
		return a, a.picker.Init()

	case key.Matches(msg, a.mainKeys.Language):
		a.submission.SetLanguage(a.submission.Language().Next())
		return a, nil

	case key.Matches(msg, a.mainKeys.Metric):
		a.metric = a.metric.Toggle()
		return a, nil

	case key.Matches(msg, a.mainKeys.Submit):
		return a, a.submit()

	case key.Matches(msg, a.mainKeys.Refresh):
		return a, a.refreshHistory()

	case key.Matches(msg, a.mainKeys.Logout):
		return a, a.logout()

	case key.Matches(msg, a.mainKeys.Help):
		a.help.ShowAll = !a.help.ShowAll
		return a, nil
	}

	var cmd tea.Cmd
	a.results, cmd = a.results.Update(msg)
	return a, cmd
}

func (a *App) submit() tea.Cmd {
	token, ok := a.session.Token()
	if !ok {
		return nil
	}
	ticket, err := a.submission.Submit()
	if err != nil {
		logging.Debug("submit refused", "err", err)
		return nil
	}
	if a.cfg.Upload == nil {
		return nil
	}
	return a.cfg.Upload(token, ticket)
}

// startSession loads the saved history snapshot and refreshes from the
// service.
func (a *App) startSession() []tea.Cmd {
	token, ok := a.session.Token()
	if !ok {
		return nil
	}
	var cmds []tea.Cmd
	if a.cfg.LoadSnapshot != nil {
		cmds = append(cmds, a.cfg.LoadSnapshot(token, a.history.Epoch()))
	}
	return append(cmds, a.refreshHistory())
}

func (a *App) refreshHistory() tea.Cmd {
	token, ok := a.session.Token()
	if !ok || a.cfg.FetchHistory == nil {
		return nil
	}
	return a.cfg.FetchHistory(token, a.history.Begin())
}

func (a *App) saveSnapshot() tea.Cmd {
	token, ok := a.session.Token()
	if !ok || a.cfg.SaveSnapshot == nil {
		return nil
	}
	return a.cfg.SaveSnapshot(token, a.history.Snapshot().Entries)
}

// logout ends the session and drops everything that belonged to it.
func (a *App) logout() tea.Cmd {
	// Logout already logged a slot failure; the session is over either way.
	_ = a.session.Logout()
	a.submission.Reset()
	a.history.Reset()
	a.picking = false
	a.email.Reset()
	a.password.Reset()
	a.results.GotoTop()
	return a.setFocus(focusEmail)
}

func (a *App) setFocus(f focus) tea.Cmd {
	a.focus = f
	if f == focusEmail {
		a.password.Blur()
		return a.email.Focus()
	}
	a.email.Blur()
	return a.password.Focus()
}

// Screen derives the current screen state.
func (a App) Screen() view.ScreenState {
	return view.Compose(a.session.Snapshot(), a.submission.Snapshot(), a.history.Snapshot(), a.metric)
}

func (a *App) syncResults() {
	state := a.Screen()
	if state.Screen != view.Main {
		a.results.SetContent("")
		return
	}
	a.results.SetContent(RenderResults(state.Main, time.Now()))
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	state := a.Screen()
	if state.Screen == view.Login {
		return renderLogin(state.Login, a.email.View(), a.password.View()) +
			"\n" + HelpStyle.Render(a.help.View(a.loginKeys))
	}

	out := TitleBar.Width(a.width).Render(appTitle) + "\n"
	out += renderControls(state.Main, a.spinner.View())
	if a.picking {
		out += a.picker.View() + "\n"
		out += HelpStyle.Render(a.help.View(a.pickerKeys))
		return out
	}
	out += a.results.View() + "\n"
	out += HelpStyle.Render(a.help.View(a.mainKeys))
	return out
}

// Metric returns the active ranking metric (for testing).
func (a App) Metric() ranking.Metric {
	return a.metric
}
