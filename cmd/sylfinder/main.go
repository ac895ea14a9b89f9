package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/sylfinder/internal/backend"
	"github.com/abelbrown/sylfinder/internal/config"
	"github.com/abelbrown/sylfinder/internal/history"
	"github.com/abelbrown/sylfinder/internal/logging"
	"github.com/abelbrown/sylfinder/internal/model"
	"github.com/abelbrown/sylfinder/internal/session"
	"github.com/abelbrown/sylfinder/internal/store"
	"github.com/abelbrown/sylfinder/internal/submission"
	"github.com/abelbrown/sylfinder/internal/ui"
)

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "sylfinder: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	// Context for in-flight requests; cancelled on quit.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fatal("%v", err)
	}

	// Data directory: ~/.sylfinder/ unless configured.
	dataDir, err := cfg.DataDir()
	if err != nil {
		fatal("%v", err)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		fatal("failed to create data directory: %v", err)
	}

	if err := logging.Init(dataDir, cfg.Log.Level); err != nil {
		fatal("failed to initialise logging: %v", err)
	}
	defer logging.Close()

	dbPath, err := cfg.DBPath()
	if err != nil {
		fatal("%v", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		fatal("failed to open database: %v", err)
	}
	defer st.Close()

	client, err := backend.New(cfg.Backend())
	if err != nil {
		fatal("%v", err)
	}

	sess, err := session.Open(st)
	if err != nil {
		fatal("%v", err)
	}

	startDir := cfg.UI.StartDir
	if startDir == "" {
		if wd, err := os.Getwd(); err == nil {
			startDir = wd
		}
	}

	// Create UI app with dependency injection
	app := ui.NewApp(ui.AppConfig{
		Session:    sess,
		Submission: submission.New(cfg.Language()),
		History:    history.New(),
		Metric:     cfg.Metric(),
		StartDir:   startDir,

		Authenticate: func(t session.Ticket) tea.Cmd {
			return func() tea.Msg {
				auth := client.Login
				if t.Mode == session.SignUp {
					auth = client.Register
				}
				token, err := auth(ctx, t.Credentials.Email, t.Credentials.Password)
				return ui.LoginDone{Seq: t.Seq, Token: token, Err: err}
			}
		},
		Upload: func(token string, t submission.Ticket) tea.Cmd {
			return func() tea.Msg {
				result, err := client.Upload(ctx, token, t.Document, t.Language)
				return ui.UploadDone{Seq: t.Seq, Result: result, Err: err}
			}
		},
		FetchHistory: func(token string, t history.Ticket) tea.Cmd {
			return func() tea.Msg {
				entries, err := client.History(ctx, token)
				return ui.HistoryLoaded{Ticket: t, Entries: entries, Err: err}
			}
		},
		LoadSnapshot: func(token string, epoch uint64) tea.Cmd {
			return func() tea.Msg {
				entries, fetchedAt, err := st.LoadHistory(token)
				return ui.SnapshotLoaded{Epoch: epoch, Entries: entries, FetchedAt: fetchedAt, Err: err}
			}
		},
		SaveSnapshot: func(token string, entries []model.HistoryEntry) tea.Cmd {
			return func() tea.Msg {
				err := st.SaveHistory(token, entries)
				if errors.Is(err, store.ErrSessionEnded) {
					logging.Debug("skipped history snapshot for ended session")
					err = nil
				}
				return ui.SnapshotSaved{Err: err}
			}
		},
		Inspect: func(path string) tea.Cmd {
			return func() tea.Msg {
				doc, err := submission.Inspect(path)
				return ui.FileInspected{Doc: doc, Err: err}
			}
		},
	})

	program := tea.NewProgram(app, tea.WithAltScreen())

	// Run UI (blocks until quit)
	if _, err := program.Run(); err != nil {
		logging.Error("error running program", "err", err)
		fmt.Fprintf(os.Stderr, "sylfinder: %v\n", err)
	}
}
