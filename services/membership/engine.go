package membership

import (
	game_constants "PlayFinder/constants/game"
	"PlayFinder/models"
	"time"

	"github.com/google/uuid"
)

// Engine decides which invite and request transitions are legal. It keeps
// no state: every call gets snapshots loaded from the stores and returns new
// values, the inputs are never modified.
type Engine struct {
	Now      func() time.Time
	Location *time.Location
	NewID    func() string
}

// NewEngine returns an engine reading invite dates in loc
func NewEngine(loc *time.Location) *Engine {
	return &Engine{Now: time.Now, Location: loc, NewID: uuid.NewString}
}

func (e *Engine) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// CurrentTime is the engine's clock, shared by the services built on it
func (e *Engine) CurrentTime() time.Time {
	return e.now()
}

// GenerateID returns a fresh record id from the engine's generator
func (e *Engine) GenerateID() string {
	return e.newID()
}

func (e *Engine) location() *time.Location {
	if e.Location == nil {
		return time.Local
	}
	return e.Location
}

func (e *Engine) newID() string {
	if e.NewID == nil {
		return uuid.NewString()
	}
	return e.NewID()
}

// CapacityOf is the number of players a game type seats. Unknown types seat nobody.
func CapacityOf(gameType string) int {
	switch gameType {
	case game_constants.GAME_TYPE_SINGLES:
		return game_constants.CAPACITY_SINGLES
	case game_constants.GAME_TYPE_DOUBLES:
		return game_constants.CAPACITY_DOUBLES
	}
	return 0
}

func IsFull(g models.GameInvite) bool {
	return len(g.Participants) >= CapacityOf(g.GameType)
}

// DerivedStatus is the status shown to users: open, full or cancelled
func DerivedStatus(g models.GameInvite) string {
	if g.Status == models.INVITE_STATUS_CANCELLED {
		return models.INVITE_STATUS_CANCELLED
	}
	if IsFull(g) {
		return models.INVITE_STATUS_FULL
	}
	return models.INVITE_STATUS_OPEN
}

// RequestJoin creates a pending request of user for the invite
func (e *Engine) RequestJoin(invite models.GameInvite, requests []models.JoinRequest, user models.UserRef, message string) (models.JoinRequest, error) {
	if user.ID == "" || user.ID == invite.CreatorID {
		return models.JoinRequest{}, ErrNotAuthorized
	}
	if invite.HasParticipant(user.ID) {
		return models.JoinRequest{}, ErrAlreadyParticipant
	}
	if _, ok := activeRequest(invite.ID, requests, user.ID); ok {
		return models.JoinRequest{}, ErrAlreadyRequested
	}
	if invite.Status == models.INVITE_STATUS_CANCELLED {
		return models.JoinRequest{}, ErrInviteCancelled
	}
	if e.IsPast(invite) {
		return models.JoinRequest{}, ErrGameExpired
	}
	if IsFull(invite) {
		return models.JoinRequest{}, ErrGameFull
	}
	if len([]rune(message)) > game_constants.MaxRequestMsgLength {
		return models.JoinRequest{}, &ValidationError{Kind: ErrInvalidInput, Fields: []string{"message: too long"}}
	}

	return models.JoinRequest{
		ID:        e.newID(),
		GameID:    invite.ID,
		UserID:    user.ID,
		UserName:  user.Name,
		Message:   message,
		Status:    models.REQUEST_STATUS_PENDING,
		CreatedAt: e.now(),
	}, nil
}

// AcceptRequest moves a pending request to accepted and appends the requester
// to the participants. The capacity check here only sees the snapshot: the
// caller must commit the returned invite with a compare-and-swap.
func (e *Engine) AcceptRequest(invite models.GameInvite, requests []models.JoinRequest, requestID, actingUserID string) (models.JoinRequest, models.GameInvite, error) {
	if actingUserID != invite.CreatorID {
		return models.JoinRequest{}, models.GameInvite{}, ErrNotAuthorized
	}
	req, ok := findRequest(invite.ID, requests, requestID)
	if !ok {
		return models.JoinRequest{}, models.GameInvite{}, ErrRequestNotFound
	}
	if req.Status != models.REQUEST_STATUS_PENDING {
		return models.JoinRequest{}, models.GameInvite{}, ErrRequestNotPending
	}
	if invite.Status == models.INVITE_STATUS_CANCELLED {
		return models.JoinRequest{}, models.GameInvite{}, ErrInviteCancelled
	}
	if invite.HasParticipant(req.UserID) {
		return models.JoinRequest{}, models.GameInvite{}, ErrAlreadyParticipant
	}
	if IsFull(invite) {
		return models.JoinRequest{}, models.GameInvite{}, ErrGameFull
	}

	now := e.now()
	req.Status = models.REQUEST_STATUS_ACCEPTED
	req.RespondedAt = &now

	invite.Participants = appendParticipant(invite.Participants, req.UserID)
	invite.ParticipantNames = withName(invite.ParticipantNames, req.UserID, req.UserName)
	invite.UpdatedAt = now
	return req, invite, nil
}

// RejectRequest moves a pending request to rejected. Participants don't change.
func (e *Engine) RejectRequest(invite models.GameInvite, requests []models.JoinRequest, requestID, actingUserID string) (models.JoinRequest, error) {
	if actingUserID != invite.CreatorID {
		return models.JoinRequest{}, ErrNotAuthorized
	}
	req, ok := findRequest(invite.ID, requests, requestID)
	if !ok {
		return models.JoinRequest{}, ErrRequestNotFound
	}
	if req.Status != models.REQUEST_STATUS_PENDING {
		return models.JoinRequest{}, ErrRequestNotPending
	}

	now := e.now()
	req.Status = models.REQUEST_STATUS_REJECTED
	req.RespondedAt = &now
	return req, nil
}

// LeaveGame removes userID from the participants. The creator can't leave,
// they cancel the game instead.
func (e *Engine) LeaveGame(invite models.GameInvite, userID string) (models.GameInvite, error) {
	if userID == invite.CreatorID {
		return models.GameInvite{}, ErrNotAuthorized
	}
	if !invite.HasParticipant(userID) {
		return models.GameInvite{}, ErrNotParticipant
	}

	participants := make([]string, 0, len(invite.Participants)-1)
	for _, id := range invite.Participants {
		if id != userID {
			participants = append(participants, id)
		}
	}
	invite.Participants = participants

	if invite.ParticipantNames != nil {
		names := make(map[string]string, len(invite.ParticipantNames))
		for id, name := range invite.ParticipantNames {
			if id != userID {
				names[id] = name
			}
		}
		invite.ParticipantNames = names
	}
	invite.UpdatedAt = e.now()
	return invite, nil
}

// DeleteInvite cancels the invite and rejects every pending request on it.
// Only the requests that changed are returned.
func (e *Engine) DeleteInvite(invite models.GameInvite, requests []models.JoinRequest, actingUserID string) (models.GameInvite, []models.JoinRequest, error) {
	if actingUserID != invite.CreatorID {
		return models.GameInvite{}, nil, ErrNotAuthorized
	}
	if invite.Status == models.INVITE_STATUS_CANCELLED {
		return models.GameInvite{}, nil, ErrInviteCancelled
	}

	now := e.now()
	invite.Status = models.INVITE_STATUS_CANCELLED
	invite.UpdatedAt = now

	var cancelled []models.JoinRequest
	for _, r := range requests {
		if r.GameID != invite.ID || r.Status != models.REQUEST_STATUS_PENDING {
			continue
		}
		r.Status = models.REQUEST_STATUS_REJECTED
		r.RespondedAt = &now
		cancelled = append(cancelled, r)
	}
	return invite, cancelled, nil
}

func activeRequest(gameID string, requests []models.JoinRequest, userID string) (models.JoinRequest, bool) {
	for _, r := range requests {
		if r.GameID == gameID && r.UserID == userID && r.IsActive() {
			return r, true
		}
	}
	return models.JoinRequest{}, false
}

func findRequest(gameID string, requests []models.JoinRequest, requestID string) (models.JoinRequest, bool) {
	for _, r := range requests {
		if r.ID == requestID && r.GameID == gameID {
			return r, true
		}
	}
	return models.JoinRequest{}, false
}

// appendParticipant never writes into the backing array of the snapshot
func appendParticipant(participants []string, userID string) []string {
	out := make([]string, len(participants), len(participants)+1)
	copy(out, participants)
	return append(out, userID)
}

func withName(names map[string]string, userID, name string) map[string]string {
	out := make(map[string]string, len(names)+1)
	for id, n := range names {
		out[id] = n
	}
	out[userID] = name
	return out
}
