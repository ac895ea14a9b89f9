// Package session owns the authentication state of the client.
//
// A Store is either Anonymous or Authenticated(token). The token is kept in
// memory and in a durable Slot, so a restart resumes the session. The Store
// is not safe for concurrent use; it is driven from the UI event loop.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/abelbrown/sylfinder/internal/logging"
	"github.com/abelbrown/sylfinder/internal/model"
	"github.com/abelbrown/sylfinder/internal/validation"
)

// State is the authentication state.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Mode selects between signing in to an existing account and creating one.
type Mode int

const (
	SignIn Mode = iota
	SignUp
)

func (m Mode) String() string {
	if m == SignUp {
		return "sign up"
	}
	return "sign in"
}

// Messages for credentials rejected before any network call.
const (
	MsgInvalidEmail     = "Please enter a valid email address."
	MsgPasswordRequired = "Password is required."
)

var (
	// ErrAuthenticated is returned by BeginLogin when a session already exists.
	ErrAuthenticated = errors.New("session: already authenticated")
	// ErrPending is returned by BeginLogin while another attempt is in flight.
	ErrPending = errors.New("session: login already in progress")
)

// Slot is the durable home of the session token.
type Slot interface {
	LoadToken() (token string, ok bool, err error)
	SaveToken(token string) error
	ClearToken() error
}

// Credentials are what the user types on the login screen.
type Credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Ticket describes one login attempt. The UI performs the call and hands
// the outcome back with the same Seq.
type Ticket struct {
	Seq         uint64
	Mode        Mode
	Credentials Credentials
}

// Snapshot is the read-only view of a Store used for rendering.
type Snapshot struct {
	State   State
	Mode    Mode
	Pending bool
	Error   string
}

// Store holds the session.
type Store struct {
	slot    Slot
	token   string
	mode    Mode
	seq     uint64
	pending uint64 // seq of the attempt in flight, 0 when idle
	err     string
	log     *log.Logger
}

// Open derives the initial state from the slot: a stored token resumes the
// session, an empty slot starts anonymous.
func Open(slot Slot) (*Store, error) {
	token, ok, err := slot.LoadToken()
	if err != nil {
		return nil, fmt.Errorf("session: read credential slot: %w", err)
	}

	s := &Store{slot: slot, log: logging.WithPrefix("session")}
	if ok && token != "" {
		s.token = token
		s.log.Info("resumed stored session")
	}
	return s, nil
}

// State returns the current authentication state.
func (s *Store) State() State {
	if s.token != "" {
		return Authenticated
	}
	return Anonymous
}

// Token returns the session token. ok is false when anonymous.
func (s *Store) Token() (token string, ok bool) {
	return s.token, s.token != ""
}

// Mode returns the login form mode.
func (s *Store) Mode() Mode { return s.mode }

// ToggleMode flips between sign in and sign up and clears the last error.
func (s *Store) ToggleMode() {
	if s.mode == SignIn {
		s.mode = SignUp
	} else {
		s.mode = SignIn
	}
	s.err = ""
}

// BeginLogin validates creds and starts an attempt. Invalid credentials
// return a *model.ValidationError and no ticket.
func (s *Store) BeginLogin(creds Credentials) (Ticket, error) {
	if s.State() == Authenticated {
		return Ticket{}, ErrAuthenticated
	}
	if s.pending != 0 {
		return Ticket{}, ErrPending
	}

	creds.Email = strings.TrimSpace(creds.Email)
	if verr := validateCredentials(creds); verr != nil {
		s.err = verr.Message
		return Ticket{}, verr
	}

	s.seq++
	s.pending = s.seq
	s.err = ""
	return Ticket{Seq: s.seq, Mode: s.mode, Credentials: creds}, nil
}

// Complete applies the outcome of the attempt tagged seq. It reports
// whether the session just became Authenticated. Outcomes of attempts that
// are no longer current are dropped.
func (s *Store) Complete(seq uint64, token string, err error) bool {
	if seq == 0 || seq != s.pending {
		s.log.Debug("dropping stale login outcome", "seq", seq, "pending", s.pending)
		return false
	}
	s.pending = 0

	if err == nil && token == "" {
		err = errors.New("empty token")
	}
	if err != nil {
		s.err = model.UserMessage(err, model.MsgAuthFailed)
		s.log.Info("login failed", "mode", s.mode, "err", err)
		return false
	}

	s.token = token
	s.err = ""
	if perr := s.slot.SaveToken(token); perr != nil {
		// The session still works; it just won't survive a restart.
		s.log.Warn("failed to persist session token", "err", perr)
	}
	s.log.Info("session started", "mode", s.mode)
	return true
}

// Logout ends the session unconditionally. The returned error only reports
// a failure to clear the durable slot; the in-memory state is anonymous
// either way.
func (s *Store) Logout() error {
	s.token = ""
	s.seq++
	s.pending = 0
	s.err = ""
	s.mode = SignIn

	if err := s.slot.ClearToken(); err != nil {
		s.log.Error("failed to clear credential slot", "err", err)
		return fmt.Errorf("session: clear credential slot: %w", err)
	}
	s.log.Info("session ended")
	return nil
}

// Snapshot returns the state needed to render the login screen.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		State:   s.State(),
		Mode:    s.mode,
		Pending: s.pending != 0,
		Error:   s.err,
	}
}

func validateCredentials(creds Credentials) *model.ValidationError {
	err := validation.Struct(creds)
	if err == nil {
		return nil
	}
	tags := validation.FailedTags(err)
	if _, bad := tags["Email"]; bad {
		return &model.ValidationError{Field: "email", Message: MsgInvalidEmail}
	}
	return &model.ValidationError{Field: "password", Message: MsgPasswordRequired}
}
