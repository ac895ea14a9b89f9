package ui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/sylfinder/internal/history"
	"github.com/abelbrown/sylfinder/internal/model"
	"github.com/abelbrown/sylfinder/internal/ranking"
	"github.com/abelbrown/sylfinder/internal/session"
	"github.com/abelbrown/sylfinder/internal/submission"
	"github.com/abelbrown/sylfinder/internal/view"
)

type memSlot struct{ token string }

func (m *memSlot) LoadToken() (string, bool, error) { return m.token, m.token != "", nil }
func (m *memSlot) SaveToken(token string) error      { m.token = token; return nil }
func (m *memSlot) ClearToken() error                 { m.token = ""; return nil }

func sampleUpload() model.UploadResult {
	return model.UploadResult{
		Topics: []string{"Intro"},
		VideoLinks: []model.TopicResult{{
			Topic: "Intro",
			Videos: []model.Video{
				{Title: "Video A", Link: "a", LikeCount: model.KnownCount(5), ViewCount: model.KnownCount(100)},
				{Title: "Video B", Link: "b", LikeCount: model.KnownCount(20), ViewCount: model.KnownCount(1)},
				{Title: "Video C", Link: "c", LikeCount: model.KnownCount(20), ViewCount: model.KnownCount(50)},
			},
		}},
	}
}

func sampleHistory() []model.HistoryEntry {
	return []model.HistoryEntry{{
		Timestamp:  time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
		Language:   model.Spanish,
		Topics:     []string{"Past topic"},
		VideoLinks: sampleUpload().VideoLinks,
	}}
}

// mockCmd records calls made by the App and answers with canned messages.
type mockCmd struct {
	auth          []session.Ticket
	uploads       []submission.Ticket
	fetches       []history.Ticket
	snapshotLoads int
	saved         int
	inspected     []string
}

func (m *mockCmd) config() AppConfig {
	return AppConfig{
		Authenticate: func(t session.Ticket) tea.Cmd {
			m.auth = append(m.auth, t)
			return func() tea.Msg { return LoginDone{Seq: t.Seq, Token: "T"} }
		},
		Upload: func(token string, t submission.Ticket) tea.Cmd {
			m.uploads = append(m.uploads, t)
			return func() tea.Msg { return UploadDone{Seq: t.Seq, Result: sampleUpload()} }
		},
		FetchHistory: func(token string, t history.Ticket) tea.Cmd {
			m.fetches = append(m.fetches, t)
			return func() tea.Msg { return HistoryLoaded{Ticket: t, Entries: sampleHistory()} }
		},
		LoadSnapshot: func(token string, epoch uint64) tea.Cmd {
			m.snapshotLoads++
			return func() tea.Msg { return SnapshotLoaded{Epoch: epoch} }
		},
		SaveSnapshot: func(token string, entries []model.HistoryEntry) tea.Cmd {
			m.saved++
			return func() tea.Msg { return SnapshotSaved{} }
		},
		Inspect: func(path string) tea.Cmd {
			m.inspected = append(m.inspected, path)
			return func() tea.Msg { return FileInspected{Doc: docFor(path)} }
		},
	}
}

func docFor(path string) model.Document {
	doc := model.Document{Name: filepath.Base(path), Path: path, MediaType: "image/jpeg"}
	if strings.HasSuffix(path, ".pdf") {
		doc.MediaType = model.PDFMediaType
	}
	return doc
}

func newTestApp(t *testing.T, token string) (App, *mockCmd, *memSlot) {
	t.Helper()
	slot := &memSlot{token: token}
	sess, err := session.Open(slot)
	if err != nil {
		t.Fatalf("session.Open failed: %v", err)
	}

	mock := &mockCmd{}
	cfg := mock.config()
	cfg.Session = sess
	cfg.Submission = submission.New(model.English)
	cfg.History = history.New()
	cfg.Metric = ranking.ByLikes
	cfg.StartDir = t.TempDir()

	app := NewApp(cfg)
	app = send(t, app, tea.WindowSizeMsg{Width: 100, Height: 40})
	return app, mock, slot
}

func send(t *testing.T, app App, msg tea.Msg) App {
	t.Helper()
	app, _ = sendCmd(t, app, msg)
	return app
}

func sendCmd(t *testing.T, app App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	model, cmd := app.Update(msg)
	updated, ok := model.(App)
	if !ok {
		t.Fatalf("Update returned %T", model)
	}
	return updated, cmd
}

// drain runs cmd (which must come from mockCmd) and feeds every resulting
// message back into the App.
func drain(t *testing.T, app App, cmd tea.Cmd) App {
	t.Helper()
	if cmd == nil {
		return app
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			app = drain(t, app, c)
		}
		return app
	default:
		next, _ := sendCmd(t, app, msg)
		return next
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var enter = tea.KeyMsg{Type: tea.KeyEnter}

func login(t *testing.T, app App) (App, tea.Cmd) {
	t.Helper()
	app = send(t, app, keyRunes("a@b.com"))
	app = send(t, app, tea.KeyMsg{Type: tea.KeyTab})
	app = send(t, app, keyRunes("pw"))
	return sendCmd(t, app, enter)
}

func TestAnonymousShowsLogin(t *testing.T) {
	app, mock, _ := newTestApp(t, "")
	app.Init()

	if app.Screen().Screen != view.Login {
		t.Fatal("anonymous session must show the login screen")
	}
	if !strings.Contains(app.View(), "Sign In") {
		t.Error("expected sign in form")
	}
	if len(mock.fetches) != 0 {
		t.Error("no history fetch without a session")
	}
}

func TestLoginFlow(t *testing.T) {
	app, mock, slot := newTestApp(t, "")

	app, cmd := login(t, app)
	if len(mock.auth) != 1 {
		t.Fatalf("expected one auth call, got %d", len(mock.auth))
	}
	if got := mock.auth[0].Credentials; got.Email != "a@b.com" || got.Password != "pw" {
		t.Errorf("unexpected credentials %+v", got)
	}
	if !strings.Contains(app.View(), "Please wait...") {
		t.Error("expected pending indicator")
	}

	// LoginDone schedules the snapshot load and a history refresh.
	app, cmd = sendCmd(t, app, cmd())
	if app.Screen().Screen != view.Main {
		t.Fatal("expected main screen after login")
	}
	if slot.token != "T" {
		t.Errorf("expected token persisted, got %q", slot.token)
	}
	if len(mock.fetches) != 1 || mock.snapshotLoads != 1 {
		t.Errorf("expected history refresh, got fetches=%d loads=%d", len(mock.fetches), mock.snapshotLoads)
	}

	app = drain(t, app, cmd)
	if got := app.history.Snapshot().Entries; len(got) != 1 {
		t.Errorf("expected history loaded, got %d entries", len(got))
	}
	if mock.saved != 1 {
		t.Errorf("expected snapshot saved once, got %d", mock.saved)
	}
	if !strings.Contains(app.View(), "Past topic") {
		t.Error("expected history rendered")
	}
}

func TestLoginValidationIssuesNoCommand(t *testing.T) {
	app, mock, _ := newTestApp(t, "")

	app, cmd := sendCmd(t, app, enter)
	if cmd != nil {
		t.Error("invalid credentials must not issue a command")
	}
	if len(mock.auth) != 0 {
		t.Error("invalid credentials must not reach the service")
	}
	if !strings.Contains(app.View(), "Please enter a valid email address.") {
		t.Error("expected validation message")
	}
}

func TestToggleMode(t *testing.T) {
	app, mock, _ := newTestApp(t, "")
	app = send(t, app, tea.KeyMsg{Type: tea.KeyCtrlT})
	if !strings.Contains(app.View(), "Sign Up") {
		t.Error("expected sign up form")
	}

	login(t, app)
	if len(mock.auth) != 1 || mock.auth[0].Mode != session.SignUp {
		t.Errorf("expected sign up attempt, got %+v", mock.auth)
	}
}

func TestQOnLoginScreenIsTyped(t *testing.T) {
	app, _, _ := newTestApp(t, "")
	app = send(t, app, keyRunes("q"))
	if app.email.Value() != "q" {
		t.Errorf("expected q in email field, got %q", app.email.Value())
	}
}

func TestCtrlCQuits(t *testing.T) {
	app, _, _ := newTestApp(t, "")
	_, cmd := sendCmd(t, app, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestResumedSessionRefreshesOnInit(t *testing.T) {
	app, mock, _ := newTestApp(t, "T")
	if app.Screen().Screen != view.Main {
		t.Fatal("stored token must resume the session")
	}

	app.Init()
	if len(mock.fetches) != 1 || mock.snapshotLoads != 1 {
		t.Errorf("expected snapshot load and refresh, got fetches=%d loads=%d", len(mock.fetches), mock.snapshotLoads)
	}
}

func TestSnapshotRestoreShowsStaleHistory(t *testing.T) {
	app, _, _ := newTestApp(t, "T")
	app = send(t, app, SnapshotLoaded{
		Epoch:     app.history.Epoch(),
		Entries:   sampleHistory(),
		FetchedAt: time.Now().Add(-time.Hour),
	})

	m := app.Screen().Main
	if !m.HistoryStale || len(m.RankedHistory) != 1 {
		t.Errorf("expected stale history, got %+v", m)
	}
	if !strings.Contains(app.View(), "saved") {
		t.Error("expected stale marker in view")
	}
}

func TestSubmitWithoutFileIssuesNoCommand(t *testing.T) {
	app, mock, _ := newTestApp(t, "T")

	app, cmd := sendCmd(t, app, enter)
	if cmd != nil {
		t.Error("submit without a file must not issue a command")
	}
	if len(mock.uploads) != 0 {
		t.Error("submit without a file must not upload")
	}
	if !strings.Contains(app.View(), "Please upload a valid PDF file.") {
		t.Error("expected missing file message")
	}
}

func TestSelectNonPDF(t *testing.T) {
	app, mock, _ := newTestApp(t, "T")
	app = send(t, app, FileInspected{Doc: docFor("/tmp/photo.jpg")})

	if app.Screen().Main.FileName != "" {
		t.Error("non-PDF must not become the pending file")
	}
	if app.Screen().Main.ErrorText != "Please upload a valid PDF file." {
		t.Errorf("unexpected error %q", app.Screen().Main.ErrorText)
	}

	send(t, app, enter)
	if len(mock.uploads) != 0 {
		t.Error("rejected file must not be uploaded")
	}
}

func TestUploadFlow(t *testing.T) {
	app, mock, _ := newTestApp(t, "T")
	app = send(t, app, keyRunes("l"))
	app = send(t, app, FileInspected{Doc: docFor("/tmp/syllabus.pdf")})
	if !strings.Contains(app.View(), "Selected: syllabus.pdf") {
		t.Error("expected selected file name")
	}

	app, cmd := sendCmd(t, app, enter)
	if len(mock.uploads) != 1 {
		t.Fatalf("expected one upload, got %d", len(mock.uploads))
	}
	if mock.uploads[0].Language != model.Hindi {
		t.Errorf("expected Hindi, got %v", mock.uploads[0].Language)
	}
	if !strings.Contains(app.View(), "Processing...") {
		t.Error("expected loading label")
	}

	// A second submit while loading is refused.
	send(t, app, enter)
	if len(mock.uploads) != 1 {
		t.Error("duplicate submit while loading")
	}

	fetchesBefore := len(mock.fetches)
	app, cmd = sendCmd(t, app, cmd())
	if len(mock.fetches) != fetchesBefore+1 {
		t.Error("successful upload must refresh history")
	}
	app = drain(t, app, cmd)

	m := app.Screen().Main
	if m.Loading || m.SubmitLabel() != "Get Videos" {
		t.Error("expected idle after upload")
	}
	if len(m.RankedCurrent) != 1 || len(m.RankedCurrent[0].Videos) != 2 {
		t.Errorf("expected top two per topic, got %+v", m.RankedCurrent)
	}
	out := app.View()
	for _, want := range []string{"Intro", "Video B", "Likes 20"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestMetricToggleReranks(t *testing.T) {
	app, _, _ := newTestApp(t, "T")
	app = send(t, app, FileInspected{Doc: docFor("/tmp/syllabus.pdf")})
	app, cmd := sendCmd(t, app, enter)
	app = send(t, app, cmd())

	links := func(a App) []string {
		var out []string
		for _, v := range a.Screen().Main.RankedCurrent[0].Videos {
			out = append(out, v.Link)
		}
		return out
	}

	if got := strings.Join(links(app), ","); got != "b,c" {
		t.Errorf("likes: expected b,c got %s", got)
	}
	app = send(t, app, keyRunes("m"))
	if app.Metric() != ranking.ByViews {
		t.Fatal("m should switch to views")
	}
	if got := strings.Join(links(app), ","); got != "a,c" {
		t.Errorf("views: expected a,c got %s", got)
	}
}

func TestLogoutClearsState(t *testing.T) {
	app, mock, slot := newTestApp(t, "T")
	app = drain(t, app, app.Init())
	app = send(t, app, FileInspected{Doc: docFor("/tmp/syllabus.pdf")})
	app, upload := sendCmd(t, app, enter)
	done := upload()

	app = send(t, app, keyRunes("X"))
	if app.Screen().Screen != view.Login {
		t.Fatal("expected login screen after logout")
	}
	if slot.token != "" {
		t.Error("expected durable slot cleared")
	}
	sub := app.submission.Snapshot()
	if sub.File != nil || sub.Results != nil || sub.Topics != nil {
		t.Errorf("expected submission cleared, got %+v", sub)
	}
	if app.history.Snapshot().Entries != nil {
		t.Error("expected history cleared")
	}

	// The upload from the ended session lands after logout.
	app = send(t, app, done)
	if app.submission.Snapshot().Results != nil {
		t.Error("result from the ended session leaked")
	}

	// Log back in; nothing from the previous session is visible.
	app, cmd := login(t, app)
	app = send(t, app, cmd())
	m := app.Screen().Main
	if m.FileName != "" || len(m.RankedCurrent) != 0 || len(m.RankedHistory) != 0 {
		t.Errorf("previous session leaked into the new one: %+v", m)
	}
	if len(mock.auth) != 1 {
		t.Errorf("expected one auth call, got %d", len(mock.auth))
	}
}

func TestLogoutDuringUploadFreesNextSession(t *testing.T) {
	app, mock, _ := newTestApp(t, "T")
	app = send(t, app, FileInspected{Doc: docFor("/tmp/syllabus.pdf")})
	app, upload := sendCmd(t, app, enter)
	done := upload()

	app = send(t, app, keyRunes("X"))
	app, cmd := login(t, app)
	app = send(t, app, cmd())

	// The old upload has not settled yet.
	m := app.Screen().Main
	if m.Loading || m.SubmitLabel() != "Get Videos" {
		t.Fatalf("new session started busy: loading=%v label=%q", m.Loading, m.SubmitLabel())
	}

	app = send(t, app, FileInspected{Doc: docFor("/tmp/notes.pdf")})
	app, next := sendCmd(t, app, enter)
	if next == nil || len(mock.uploads) != 2 {
		t.Fatalf("submit in new session refused, uploads=%d", len(mock.uploads))
	}

	app = send(t, app, done)
	if !app.Screen().Main.Loading {
		t.Error("old outcome must not settle the new upload")
	}
	if app.submission.Snapshot().Results != nil {
		t.Error("old outcome leaked into the new session")
	}

	app = send(t, app, next())
	if len(app.Screen().Main.RankedCurrent) != 1 {
		t.Error("expected results of the new upload")
	}
}

func TestValidFileClearsHistoryError(t *testing.T) {
	app, _, _ := newTestApp(t, "T")
	ticket := app.history.Begin()
	app = send(t, app, HistoryLoaded{Ticket: ticket, Err: &model.ValidationError{}})
	if app.Screen().Main.ErrorText == "" {
		t.Fatal("expected history error before selecting")
	}

	app = send(t, app, FileInspected{Doc: docFor("/tmp/syllabus.pdf")})
	if got := app.Screen().Main.ErrorText; got != "" {
		t.Errorf("accepted file should clear the error line, got %q", got)
	}
}

func TestRejectedFileShowsPDFError(t *testing.T) {
	app, _, _ := newTestApp(t, "T")
	ticket := app.history.Begin()
	app = send(t, app, HistoryLoaded{Ticket: ticket, Err: &model.ValidationError{}})

	app = send(t, app, FileInspected{Doc: docFor("/tmp/photo.jpg")})
	if got := app.Screen().Main.ErrorText; got != model.MsgInvalidPDF {
		t.Errorf("expected %q, got %q", model.MsgInvalidPDF, got)
	}
}

func TestManualHistoryRefresh(t *testing.T) {
	app, mock, _ := newTestApp(t, "T")
	_, cmd := sendCmd(t, app, keyRunes("r"))
	if cmd == nil || len(mock.fetches) != 1 {
		t.Errorf("expected refresh, got %d fetches", len(mock.fetches))
	}
}

func TestHistoryErrorShownWithoutSubmissionError(t *testing.T) {
	app, _, _ := newTestApp(t, "T")
	ticket := app.history.Begin()
	app = send(t, app, HistoryLoaded{Ticket: ticket, Err: &model.ValidationError{}})
	if got := app.Screen().Main.ErrorText; got != model.MsgHistoryFailed {
		t.Errorf("expected history fallback, got %q", got)
	}
}

func TestPickerOpenAndCancel(t *testing.T) {
	app, _, _ := newTestApp(t, "T")

	app, cmd := sendCmd(t, app, keyRunes("o"))
	if !app.picking {
		t.Fatal("o should open the file picker")
	}
	if cmd == nil {
		t.Error("opening the picker should read the directory")
	}

	app, cmd = sendCmd(t, app, keyRunes("q"))
	if app.picking {
		t.Error("q should close the picker")
	}
	if cmd != nil {
		if _, quit := cmd().(tea.QuitMsg); quit {
			t.Error("q in the picker must not quit")
		}
	}
}

func TestLanguageCycles(t *testing.T) {
	app, _, _ := newTestApp(t, "T")
	want := []model.Language{model.Hindi, model.Spanish, model.Telugu, model.English}
	for _, lang := range want {
		app = send(t, app, keyRunes("l"))
		if got := app.Screen().Main.Language; got != lang {
			t.Errorf("expected %v, got %v", lang, got)
		}
	}
}
