package model

import "time"

// HistoryEntry is one past submission as recorded by the service.
// Entries are immutable once received.
type HistoryEntry struct {
	Timestamp  time.Time
	Language   Language
	Topics     []string
	VideoLinks []TopicResult
}
