package membership

import (
	"errors"
	"strings"
)

// Outcomes of the membership rules. All of them are recoverable and are
// returned before anything is written.
var (
	ErrNotAuthorized      = errors.New("not authorized")
	ErrAlreadyRequested   = errors.New("already requested to join this game")
	ErrAlreadyParticipant = errors.New("already a participant of this game")
	ErrGameFull           = errors.New("game is full")
	ErrGameExpired        = errors.New("game date has passed")
	ErrRequestNotPending  = errors.New("request is not pending")
	ErrAlreadyRated       = errors.New("player already rated for this game")

	ErrInviteCancelled = errors.New("game was cancelled")
	ErrInviteNotFound  = errors.New("game not found")
	ErrRequestNotFound = errors.New("request not found")
	ErrNotParticipant  = errors.New("not a participant of this game")
	ErrGameNotPlayed   = errors.New("game hasn't been played yet")
	ErrEditLocked      = errors.New("schedule, place and level can't change after other players joined")
	ErrInvalidInvite   = errors.New("invalid game invite")
	ErrInvalidInput    = errors.New("invalid input")
)

// ValidationError lists every field that failed, so callers can show all of them at once
type ValidationError struct {
	Kind   error
	Fields []string
}

func (e *ValidationError) Error() string {
	return e.Kind.Error() + ": " + strings.Join(e.Fields, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == e.Kind || target == ErrInvalidInput
}

type fieldErrors struct {
	kind   error
	fields []string
}

func (f *fieldErrors) add(msg string) {
	f.fields = append(f.fields, msg)
}

func (f *fieldErrors) err() error {
	if len(f.fields) == 0 {
		return nil
	}
	return &ValidationError{Kind: f.kind, Fields: f.fields}
}
