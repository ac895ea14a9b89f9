// Package ui provides the Bubble Tea TUI for sylfinder.
package ui

import (
	"time"

	"github.com/abelbrown/sylfinder/internal/history"
	"github.com/abelbrown/sylfinder/internal/model"
)

// LoginDone is sent when a login or sign-up call settles.
type LoginDone struct {
	Seq   uint64
	Token string
	Err   error
}

// UploadDone is sent when an upload settles.
type UploadDone struct {
	Seq    uint64
	Result model.UploadResult
	Err    error
}

// HistoryLoaded is sent when a history fetch settles.
type HistoryLoaded struct {
	Ticket  history.Ticket
	Entries []model.HistoryEntry
	Err     error
}

// SnapshotLoaded carries the locally saved history for the session that
// was current at Epoch. Entries is nil when nothing was saved.
type SnapshotLoaded struct {
	Epoch     uint64
	Entries   []model.HistoryEntry
	FetchedAt time.Time
	Err       error
}

// SnapshotSaved is sent after a fetched history was written locally.
type SnapshotSaved struct {
	Err error
}

// FileInspected is sent when a picked file has been sniffed.
type FileInspected struct {
	Doc model.Document
	Err error
}
