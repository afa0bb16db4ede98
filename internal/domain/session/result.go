package session

import (
	"fmt"

	"github.com/GriffinCanCode/erpshell/internal/shared/types"
)

// ConflictAction tells the backend how to resolve a concurrent login.
type ConflictAction string

const (
	ConflictNone               ConflictAction = ""
	ConflictNewSession         ConflictAction = "new_session"
	ConflictInvalidatePrevious ConflictAction = "invalidate_previous"
)

// Valid reports whether a is one of the known actions.
func (a ConflictAction) Valid() bool {
	switch a {
	case ConflictNone, ConflictNewSession, ConflictInvalidatePrevious:
		return true
	}
	return false
}

// Outcome discriminates LoginResult.
type Outcome int

const (
	OutcomeSuccess Outcome = iota + 1
	OutcomeConflict
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeConflict:
		return "conflict"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// MarshalText renders the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText parses an outcome name.
func (o *Outcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "success":
		*o = OutcomeSuccess
	case "conflict":
		*o = OutcomeConflict
	case "failure":
		*o = OutcomeFailure
	default:
		return fmt.Errorf("unknown login outcome %q", text)
	}
	return nil
}

// LoginResult is the answer to a login attempt. Exactly one branch applies:
//   - OutcomeSuccess: User and Token are set and the store adopted them
//   - OutcomeConflict: ActiveSessions is set; retry with a ConflictAction
//   - OutcomeFailure: Message explains the rejection
//
// Conflict and failure leave the store untouched.
type LoginResult struct {
	Kind           Outcome     `json:"kind"`
	User           *types.User `json:"user,omitempty"`
	Token          string      `json:"-"`
	ActiveSessions int         `json:"activeSessions,omitempty"`
	Message        string      `json:"message,omitempty"`
}

// Success reports whether the login was adopted.
func (r LoginResult) Success() bool { return r.Kind == OutcomeSuccess }

// Conflict reports whether the backend found another active session.
func (r LoginResult) Conflict() bool { return r.Kind == OutcomeConflict }

func success(user *types.User, token string) LoginResult {
	return LoginResult{Kind: OutcomeSuccess, User: user, Token: token}
}

func conflict(active int) LoginResult {
	return LoginResult{
		Kind:           OutcomeConflict,
		ActiveSessions: active,
		Message:        fmt.Sprintf("%d active session(s) found for this user", active),
	}
}

func failure(message string) LoginResult {
	return LoginResult{Kind: OutcomeFailure, Message: message}
}
