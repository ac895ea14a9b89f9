// Package submission drives a syllabus upload from file selection to
// displayed results.
//
// The Controller does no I/O of its own. Submit hands out a Ticket, the
// caller performs the upload, and Complete applies the outcome if the
// ticket is still the expected one. One upload is in flight at a time.
package submission

import (
	"errors"

	"github.com/charmbracelet/log"

	"github.com/abelbrown/sylfinder/internal/logging"
	"github.com/abelbrown/sylfinder/internal/model"
)

// State is the lifecycle state of the controller.
type State int

const (
	Idle State = iota
	Validating
	Loading
	Success
	Failed
)

func (s State) String() string {
	switch s {
	case Validating:
		return "validating"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

var (
	// ErrBusy is returned by Submit while an upload is in flight.
	ErrBusy = errors.New("submission: upload already in flight")
	// ErrValidating is returned by Submit while a picked file is being inspected.
	ErrValidating = errors.New("submission: file is being validated")
)

// Ticket is one upload the caller should perform.
type Ticket struct {
	Seq      uint64
	Document model.Document
	Language model.Language
}

// Snapshot is the read-only view of the controller used for rendering.
type Snapshot struct {
	State    State
	File     *model.Document
	Language model.Language
	Topics   []string
	Results  []model.TopicResult
	Error    string
}

// Loading reports whether an upload is in flight.
func (s Snapshot) Loading() bool { return s.State == Loading }

// Controller is the submission state machine. It is not safe for
// concurrent use.
type Controller struct {
	file       *model.Document
	language   model.Language
	status     State // Idle, Success or Failed
	validating bool

	seq      uint64
	inflight uint64 // seq of the upload on the wire, 0 when none
	expected uint64 // seq whose outcome will be applied

	topics  []string
	results []model.TopicResult
	err     string

	log *log.Logger
}

// New returns an idle controller using lang for submissions.
func New(lang model.Language) *Controller {
	if !lang.Valid() {
		lang = model.English
	}
	return &Controller{
		language: lang,
		log:      logging.WithPrefix("submission"),
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	switch {
	case c.inflight != 0:
		return Loading
	case c.validating:
		return Validating
	default:
		return c.status
	}
}

// BeginValidation marks a picked file as under inspection. Submit is
// refused until SelectFile reports the outcome.
func (c *Controller) BeginValidation() {
	c.validating = true
}

// SelectFile applies the outcome of inspecting a picked file. inspectErr
// and non-PDF documents both reject the candidate.
func (c *Controller) SelectFile(doc model.Document, inspectErr error) {
	c.validating = false

	if c.inflight != 0 {
		// The upload on the wire is for a different file now.
		c.expected = 0
	}

	if inspectErr != nil || !doc.IsPDF() {
		c.file = nil
		c.err = model.MsgInvalidPDF
		c.status = Failed
		c.log.Info("rejected file", "name", doc.Name, "type", doc.MediaType, "err", inspectErr)
		return
	}

	c.file = &doc
	c.topics = nil
	c.results = nil
	c.err = ""
	c.status = Idle
	c.log.Debug("selected file", "name", doc.Name, "size", doc.Size)
}

// SetLanguage sets the language for the next submission. Invalid values
// are ignored.
func (c *Controller) SetLanguage(lang model.Language) {
	if lang.Valid() {
		c.language = lang
	}
}

// Language returns the language for the next submission.
func (c *Controller) Language() model.Language { return c.language }

// Submit starts an upload of the pending file. With no pending file the
// controller fails locally and returns a *model.ValidationError.
func (c *Controller) Submit() (Ticket, error) {
	if c.inflight != 0 {
		return Ticket{}, ErrBusy
	}
	if c.validating {
		return Ticket{}, ErrValidating
	}
	if c.file == nil {
		c.status = Failed
		c.err = model.MsgInvalidPDF
		return Ticket{}, &model.ValidationError{Field: "file", Message: model.MsgInvalidPDF}
	}

	c.seq++
	c.inflight = c.seq
	c.expected = c.seq
	c.err = ""
	c.log.Info("submitting", "seq", c.seq, "file", c.file.Name, "language", c.language)

	return Ticket{Seq: c.seq, Document: *c.file, Language: c.language}, nil
}

// Complete applies the outcome of the upload tagged seq and reports
// whether new results were stored. Outcomes of superseded uploads only
// release the in-flight slot.
func (c *Controller) Complete(seq uint64, result model.UploadResult, err error) bool {
	if seq == 0 || seq != c.inflight {
		c.log.Debug("dropping unknown upload outcome", "seq", seq)
		return false
	}
	c.inflight = 0

	if seq != c.expected {
		c.log.Info("discarding superseded upload outcome", "seq", seq, "err", err)
		return false
	}

	if err != nil {
		c.status = Failed
		c.err = model.UserMessage(err, model.MsgUploadFailed)
		c.log.Warn("upload failed", "seq", seq, "err", err)
		return false
	}

	c.topics = result.Topics
	c.results = result.VideoLinks
	c.status = Success
	c.err = ""
	c.log.Info("upload succeeded", "seq", seq, "topics", len(result.Topics))
	return true
}

// Reset discards the pending file and displayed results. An upload still
// on the wire is forgotten: the controller is Idle at once and the late
// outcome is dropped as unknown.
func (c *Controller) Reset() {
	c.file = nil
	c.topics = nil
	c.results = nil
	c.err = ""
	c.status = Idle
	c.validating = false
	c.inflight = 0
	c.expected = 0
}

// Snapshot returns the current view of the controller.
func (c *Controller) Snapshot() Snapshot {
	var file *model.Document
	if c.file != nil {
		f := *c.file
		file = &f
	}
	return Snapshot{
		State:    c.State(),
		File:     file,
		Language: c.language,
		Topics:   c.topics,
		Results:  c.results,
		Error:    c.err,
	}
}
