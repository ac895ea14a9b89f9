// Package history caches the user's past submissions.
//
// The cache is replaced wholesale by each successful fetch and never
// edited in place. A failed fetch keeps whatever was there before.
package history

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/abelbrown/sylfinder/internal/logging"
	"github.com/abelbrown/sylfinder/internal/model"
)

// Ticket identifies one refresh. Only the most recent ticket of the
// current epoch is applied.
type Ticket struct {
	Epoch uint64
	Seq   uint64
}

// Snapshot is the read-only view of the cache.
type Snapshot struct {
	Entries   []model.HistoryEntry
	FetchedAt time.Time
	// Stale is set while the entries come from the local snapshot rather
	// than a fetch made in this run.
	Stale   bool
	Loading bool
	Error   string
}

// Controller owns the history cache. It is not safe for concurrent use.
type Controller struct {
	entries   []model.HistoryEntry
	fetchedAt time.Time
	stale     bool
	fetched   bool // a fetch has landed in this epoch

	epoch    uint64
	seq      uint64
	expected uint64 // seq of the refresh to apply, 0 when none pending

	err string
	log *log.Logger
}

// New returns an empty controller.
func New() *Controller {
	return &Controller{log: logging.WithPrefix("history")}
}

// Epoch identifies the current session. It changes on Reset.
func (c *Controller) Epoch() uint64 { return c.epoch }

// Begin starts a refresh. Any earlier refresh still on the wire is
// superseded.
func (c *Controller) Begin() Ticket {
	c.seq++
	c.expected = c.seq
	return Ticket{Epoch: c.epoch, Seq: c.seq}
}

// Complete applies the outcome of t. It reports whether the cache was
// replaced.
func (c *Controller) Complete(t Ticket, entries []model.HistoryEntry, err error) bool {
	if t.Epoch != c.epoch || t.Seq == 0 || t.Seq != c.expected {
		c.log.Debug("dropping stale history outcome", "epoch", t.Epoch, "seq", t.Seq)
		return false
	}
	c.expected = 0

	if err != nil {
		c.err = model.UserMessage(err, model.MsgHistoryFailed)
		c.log.Warn("history refresh failed", "err", err, "cached", len(c.entries))
		return false
	}

	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	c.entries = entries
	c.fetchedAt = time.Now()
	c.stale = false
	c.fetched = true
	c.err = ""
	c.log.Info("history refreshed", "entries", len(entries))
	return true
}

// Restore seeds the cache from a locally stored snapshot taken at
// fetchedAt. It is ignored once a fetch has landed or when epoch is no
// longer current.
func (c *Controller) Restore(epoch uint64, entries []model.HistoryEntry, fetchedAt time.Time) bool {
	if epoch != c.epoch || c.fetched || entries == nil {
		return false
	}
	c.entries = entries
	c.fetchedAt = fetchedAt
	c.stale = true
	c.log.Debug("restored history snapshot", "entries", len(entries), "fetched_at", fetchedAt)
	return true
}

// ClearError hides the last refresh failure. The cache is untouched.
func (c *Controller) ClearError() { c.err = "" }

// Reset empties the cache and starts a new epoch, so every outstanding
// ticket is dropped on arrival.
func (c *Controller) Reset() {
	c.entries = nil
	c.fetchedAt = time.Time{}
	c.stale = false
	c.fetched = false
	c.expected = 0
	c.err = ""
	c.epoch++
}

// Snapshot returns the current view of the cache.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		Entries:   c.entries,
		FetchedAt: c.fetchedAt,
		Stale:     c.stale,
		Loading:   c.expected != 0,
		Error:     c.err,
	}
}
