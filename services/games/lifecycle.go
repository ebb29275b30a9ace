package games

import (
	"PlayFinder/models"
	"PlayFinder/services/membership"
	"PlayFinder/services/store"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// requestKey numbers a user's requests on a game. Two concurrent requests of
// the same user compute the same key and the store only lets one of them in.
// The key is a name-based uuid so it fits the id column whatever the input ids are.
func requestKey(gameID, userID string, n int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s:%s:%d", gameID, userID, n))).String()
}

// RequestJoin files a pending request of user on the invite and tells the creator
func (s *Service) RequestJoin(ctx context.Context, inviteID string, user models.UserRef, message string) (models.JoinRequest, error) {
	g, err := s.loadInvite(ctx, inviteID)
	if err != nil {
		return models.JoinRequest{}, err
	}
	requests, err := s.requestsFor(ctx, inviteID)
	if err != nil {
		return models.JoinRequest{}, err
	}

	req, err := s.engine.RequestJoin(g, requests, user, message)
	if err != nil {
		return models.JoinRequest{}, err
	}

	n := 1
	for _, r := range requests {
		if r.UserID == user.ID {
			n++
		}
	}
	req.ID = requestKey(inviteID, user.ID, n)

	req, err = s.requests.Create(ctx, req)
	if errors.Is(err, store.ErrDuplicate) {
		return models.JoinRequest{}, membership.ErrAlreadyRequested
	}
	if err != nil {
		return models.JoinRequest{}, err
	}

	// The invite may have been deleted while the request was being filed
	if cur, err := s.loadInvite(ctx, inviteID); err == nil && cur.Status == models.INVITE_STATUS_CANCELLED {
		if _, err := s.requests.Update(ctx, req.ID, func(r models.JoinRequest) (models.JoinRequest, error) {
			r.Status = models.REQUEST_STATUS_REJECTED
			return r, nil
		}); err != nil {
			return models.JoinRequest{}, err
		}
		return models.JoinRequest{}, membership.ErrInviteCancelled
	}

	s.log.WithFields(logrus.Fields{"invite_id": inviteID, "request_id": req.ID, "user_id": user.ID}).Info("join requested")
	s.notify(ctx, models.EVENT_REQUEST_CREATED, inviteID, g.CreatorID)
	return req, nil
}

func (s *Service) loadRequest(ctx context.Context, id string) (models.JoinRequest, error) {
	req, err := s.requests.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return req, membership.ErrRequestNotFound
	}
	return req, err
}

// AcceptRequest adds the requester to the game. The capacity check runs again
// inside the invite's compare-and-swap, so two accepts racing for the last
// place can't both get in: the loser gets ErrGameFull and its request stays pending.
// The request is read again right before the swap, so one rejected meanwhile
// fails with ErrRequestNotPending without taking the place.
func (s *Service) AcceptRequest(ctx context.Context, requestID, actingUserID string) (models.JoinRequest, models.GameInvite, error) {
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return models.JoinRequest{}, models.GameInvite{}, err
	}
	g, err := s.loadInvite(ctx, req.GameID)
	if err != nil {
		return models.JoinRequest{}, models.GameInvite{}, err
	}
	requests, err := s.requestsFor(ctx, req.GameID)
	if err != nil {
		return models.JoinRequest{}, models.GameInvite{}, err
	}
	if _, _, err := s.engine.AcceptRequest(g, requests, requestID, actingUserID); err != nil {
		return models.JoinRequest{}, models.GameInvite{}, err
	}

	// the snapshot may be stale by now: a request answered meanwhile must not take a place
	fresh, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return models.JoinRequest{}, models.GameInvite{}, err
	}
	g, err = s.updateInvite(ctx, req.GameID, func(cur models.GameInvite) (models.GameInvite, error) {
		_, next, err := s.engine.AcceptRequest(cur, []models.JoinRequest{fresh}, requestID, actingUserID)
		return next, err
	})
	if err != nil {
		return models.JoinRequest{}, models.GameInvite{}, err
	}

	accepted, err := s.requests.Update(ctx, requestID, func(cur models.JoinRequest) (models.JoinRequest, error) {
		if cur.Status != models.REQUEST_STATUS_PENDING {
			return cur, membership.ErrRequestNotPending
		}
		now := s.engine.CurrentTime()
		cur.Status = models.REQUEST_STATUS_ACCEPTED
		cur.RespondedAt = &now
		return cur, nil
	})
	if err != nil {
		// the request was answered meanwhile: give the place back
		s.undoAccept(ctx, req)
		return models.JoinRequest{}, models.GameInvite{}, err
	}

	s.log.WithFields(logrus.Fields{"invite_id": g.ID, "request_id": requestID, "user_id": req.UserID}).Info("request accepted")
	s.notify(ctx, models.EVENT_REQUEST_ACCEPTED, g.ID, req.UserID)
	return accepted, g, nil
}

func (s *Service) undoAccept(ctx context.Context, req models.JoinRequest) {
	_, err := s.updateInvite(ctx, req.GameID, func(cur models.GameInvite) (models.GameInvite, error) {
		return s.engine.LeaveGame(cur, req.UserID)
	})
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"invite_id": req.GameID, "user_id": req.UserID}).Error("could not undo accepted request")
	}
}

// RejectRequest answers a pending request with a no
func (s *Service) RejectRequest(ctx context.Context, requestID, actingUserID string) (models.JoinRequest, error) {
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return models.JoinRequest{}, err
	}
	g, err := s.loadInvite(ctx, req.GameID)
	if err != nil {
		return models.JoinRequest{}, err
	}

	rejected, err := s.requests.Update(ctx, requestID, func(cur models.JoinRequest) (models.JoinRequest, error) {
		return s.engine.RejectRequest(g, []models.JoinRequest{cur}, requestID, actingUserID)
	})
	if err != nil {
		return models.JoinRequest{}, err
	}

	s.log.WithFields(logrus.Fields{"invite_id": g.ID, "request_id": requestID, "user_id": req.UserID}).Info("request rejected")
	s.notify(ctx, models.EVENT_REQUEST_REJECTED, g.ID, req.UserID)
	return rejected, nil
}

// LeaveGame takes the user out of the game and forgets their requests on it,
// so they can ask to join again later
func (s *Service) LeaveGame(ctx context.Context, inviteID, userID string) (models.GameInvite, error) {
	g, err := s.updateInvite(ctx, inviteID, func(cur models.GameInvite) (models.GameInvite, error) {
		return s.engine.LeaveGame(cur, userID)
	})
	if err != nil {
		return models.GameInvite{}, err
	}

	mine, err := store.QueryBy(ctx, s.requests, "game_id", inviteID, func(r models.JoinRequest) bool {
		return r.GameID == inviteID && r.UserID == userID
	})
	if err != nil {
		return g, err
	}
	for _, r := range mine {
		if err := s.requests.Remove(ctx, r.ID); err != nil {
			return g, err
		}
	}

	s.log.WithFields(logrus.Fields{"invite_id": inviteID, "user_id": userID}).Info("participant left")
	return g, nil
}

// DeleteInvite cancels the invite and rejects its pending requests. Everybody
// who played in it or was waiting for an answer gets an invite_deleted event.
// Deleting an invite that is already cancelled finishes the cascade of a
// delete that failed halfway, so the caller can simply retry.
func (s *Service) DeleteInvite(ctx context.Context, inviteID, actingUserID string) (models.GameInvite, error) {
	requests, err := s.requestsFor(ctx, inviteID)
	if err != nil {
		return models.GameInvite{}, err
	}
	g, err := s.updateInvite(ctx, inviteID, func(cur models.GameInvite) (models.GameInvite, error) {
		next, _, err := s.engine.DeleteInvite(cur, requests, actingUserID)
		return next, err
	})
	switch {
	case errors.Is(err, membership.ErrInviteCancelled):
		if g, err = s.loadInvite(ctx, inviteID); err != nil {
			return models.GameInvite{}, err
		}
		if g.CreatorID != actingUserID {
			return models.GameInvite{}, membership.ErrNotAuthorized
		}
	case err != nil:
		return models.GameInvite{}, err
	default:
		for _, id := range g.Participants {
			if id != actingUserID {
				s.notify(ctx, models.EVENT_INVITE_DELETED, inviteID, id)
			}
		}
		s.log.WithFields(logrus.Fields{"invite_id": inviteID, "user_id": actingUserID}).Info("invite cancelled")
	}

	// Requests filed between the snapshot and the commit are caught by reading again
	requests, err = s.requestsFor(ctx, inviteID)
	if err != nil {
		return g, err
	}
	for _, r := range requests {
		if r.Status != models.REQUEST_STATUS_PENDING {
			continue
		}
		swept := false
		_, err := s.requests.Update(ctx, r.ID, func(cur models.JoinRequest) (models.JoinRequest, error) {
			swept = cur.Status == models.REQUEST_STATUS_PENDING
			if swept {
				now := s.engine.CurrentTime()
				cur.Status = models.REQUEST_STATUS_REJECTED
				cur.RespondedAt = &now
			}
			return cur, nil
		})
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return g, err
		}
		if swept {
			s.notify(ctx, models.EVENT_INVITE_DELETED, inviteID, r.UserID)
		}
	}
	return g, nil
}
