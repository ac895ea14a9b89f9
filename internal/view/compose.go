// Package view derives what the screen should show from controller state.
//
// Compose is pure: it reads snapshots, ranks through the ranking package
// and returns a ScreenState. Rendering that state is the ui package's job.
package view

import (
	"time"

	"github.com/abelbrown/sylfinder/internal/history"
	"github.com/abelbrown/sylfinder/internal/model"
	"github.com/abelbrown/sylfinder/internal/ranking"
	"github.com/abelbrown/sylfinder/internal/session"
	"github.com/abelbrown/sylfinder/internal/submission"
)

// Screen selects which top-level screen is active.
type Screen int

const (
	Login Screen = iota
	Main
)

// Button labels for the submit control.
const (
	SubmitIdle    = "Get Videos"
	SubmitLoading = "Processing..."
)

// LoginScreen is shown whenever the session is anonymous.
type LoginScreen struct {
	Mode    session.Mode
	Pending bool
	Error   string
}

// HistoryItem is one past submission with its videos ranked.
type HistoryItem struct {
	Timestamp time.Time
	Language  model.Language
	Topics    []string
	Ranked    []model.RankedTopicResult
}

// MainScreen is shown whenever the session is authenticated.
type MainScreen struct {
	FileName   string // empty when no file is pending
	Language   model.Language
	Loading    bool
	Validating bool
	ErrorText  string
	Metric     ranking.Metric

	// ShowResults is set once an upload has succeeded, even with no topics.
	ShowResults   bool
	Topics        []string
	RankedCurrent []model.RankedTopicResult

	RankedHistory    []HistoryItem
	HistoryLoading   bool
	HistoryStale     bool
	HistoryFetchedAt time.Time
}

// SubmitLabel is the text of the submit control.
func (m MainScreen) SubmitLabel() string {
	if m.Loading {
		return SubmitLoading
	}
	return SubmitIdle
}

// ScreenState is exactly one of Login or Main, selected by Screen.
type ScreenState struct {
	Screen Screen
	Login  LoginScreen
	Main   MainScreen
}

// Compose builds the screen state. An anonymous session always yields the
// login screen, whatever the other controllers hold.
func Compose(sess session.Snapshot, sub submission.Snapshot, hist history.Snapshot, metric ranking.Metric) ScreenState {
	if sess.State != session.Authenticated {
		return ScreenState{
			Screen: Login,
			Login: LoginScreen{
				Mode:    sess.Mode,
				Pending: sess.Pending,
				Error:   sess.Error,
			},
		}
	}

	ms := MainScreen{
		Language:         sub.Language,
		Loading:          sub.Loading(),
		Validating:       sub.State == submission.Validating,
		Metric:           metric,
		ShowResults:      sub.State == submission.Success || len(sub.Results) > 0,
		Topics:           sub.Topics,
		RankedCurrent:    ranking.Rank(sub.Results, metric, ranking.DefaultK),
		RankedHistory:    rankHistory(hist.Entries, metric),
		HistoryLoading:   hist.Loading,
		HistoryStale:     hist.Stale,
		HistoryFetchedAt: hist.FetchedAt,
	}
	if sub.File != nil {
		ms.FileName = sub.File.Name
	}

	// One error line; the submission's own error wins.
	ms.ErrorText = sub.Error
	if ms.ErrorText == "" {
		ms.ErrorText = hist.Error
	}

	return ScreenState{Screen: Main, Main: ms}
}

func rankHistory(entries []model.HistoryEntry, metric ranking.Metric) []HistoryItem {
	items := make([]HistoryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, HistoryItem{
			Timestamp: e.Timestamp,
			Language:  e.Language,
			Topics:    e.Topics,
			Ranked:    ranking.Rank(e.VideoLinks, metric, ranking.DefaultK),
		})
	}
	return items
}
