package games

import (
	"PlayFinder/models"
	"PlayFinder/services/membership"
	"PlayFinder/services/notify"
	"PlayFinder/services/store"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// Service runs the invite lifecycle: it loads snapshots from the stores,
// asks the membership engine, commits what the engine returned and only
// then tells the notification sink.
type Service struct {
	invites  store.Collection[models.GameInvite]
	requests store.Collection[models.JoinRequest]
	engine   *membership.Engine
	sink     notify.Sink
	log      logrus.FieldLogger
}

func NewService(stores *store.Set, engine *membership.Engine, sink notify.Sink, log logrus.FieldLogger) *Service {
	return &Service{
		invites:  stores.Invites,
		requests: stores.Requests,
		engine:   engine,
		sink:     sink,
		log:      log,
	}
}

// Detail is an invite as seen by one user
type Detail struct {
	Invite     models.GameInvite    `json:"invite"`
	Status     string               `json:"status"`
	Capacity   int                  `json:"capacity"`
	ClassLabel string               `json:"class_label"`
	IsPast     bool                 `json:"is_past"`
	UserStatus membership.Status    `json:"user_status,omitempty"`
	Requests   []models.JoinRequest `json:"requests,omitempty"`
}

func (s *Service) loadInvite(ctx context.Context, id string) (models.GameInvite, error) {
	g, err := s.invites.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return g, membership.ErrInviteNotFound
	}
	if err != nil {
		return g, err
	}
	return models.NormalizeInvite(g), nil
}

func (s *Service) loadInvites(ctx context.Context, match func(models.GameInvite) bool) ([]models.GameInvite, error) {
	all, err := s.invites.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.GameInvite, 0, len(all))
	for _, g := range all {
		g = models.NormalizeInvite(g)
		if match(g) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *Service) requestsFor(ctx context.Context, gameID string) ([]models.JoinRequest, error) {
	reqs, err := store.QueryBy(ctx, s.requests, "game_id", gameID, func(r models.JoinRequest) bool { return r.GameID == gameID })
	if err != nil {
		return nil, err
	}
	sortRequests(reqs)
	return reqs, nil
}

// updateInvite commits fn through the store's compare-and-swap
func (s *Service) updateInvite(ctx context.Context, id string, fn func(models.GameInvite) (models.GameInvite, error)) (models.GameInvite, error) {
	g, err := s.invites.Update(ctx, id, func(cur models.GameInvite) (models.GameInvite, error) {
		return fn(models.NormalizeInvite(cur))
	})
	if errors.Is(err, store.ErrNotFound) {
		return g, membership.ErrInviteNotFound
	}
	return g, err
}

func (s *Service) notify(ctx context.Context, kind, inviteID, userID string) {
	ev := models.Event{Kind: kind, InviteID: inviteID, UserID: userID, At: s.engine.CurrentTime()}
	if err := s.sink.Notify(ctx, ev); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"event": kind, "invite_id": inviteID}).Warn("notification failed")
	}
}

func (s *Service) detail(g models.GameInvite, requests []models.JoinRequest, viewerID string) Detail {
	d := Detail{
		Invite:     g,
		Status:     membership.DerivedStatus(g),
		Capacity:   membership.CapacityOf(g.GameType),
		ClassLabel: membership.FormatClassRange(g.ClassMin, g.ClassMax),
		IsPast:     s.engine.IsPast(g),
		UserStatus: membership.StatusNotRequested,
	}
	if viewerID != "" {
		d.UserStatus = membership.ComputeUserStatus(g, requests, viewerID)
	}
	if viewerID == g.CreatorID {
		d.Requests = requests
	}
	return d
}

// Summaries describes invites without a viewer, for listings
func (s *Service) Summaries(invites []models.GameInvite) []Detail {
	out := make([]Detail, 0, len(invites))
	for _, g := range invites {
		d := s.detail(g, nil, "")
		d.UserStatus = ""
		out = append(out, d)
	}
	return out
}

// CreateInvite publishes a new invite with the creator as first participant
func (s *Service) CreateInvite(ctx context.Context, creator models.UserRef, in models.InviteCreation) (models.GameInvite, error) {
	g, err := s.engine.NewInvite(creator, in)
	if err != nil {
		return g, err
	}
	if g, err = s.invites.Create(ctx, g); err != nil {
		return g, err
	}
	s.log.WithFields(logrus.Fields{"invite_id": g.ID, "user_id": creator.ID}).Info("invite created")
	return g, nil
}

func (s *Service) UpdateInvite(ctx context.Context, id, actingUserID string, ch models.InviteChanges) (models.GameInvite, error) {
	return s.updateInvite(ctx, id, func(cur models.GameInvite) (models.GameInvite, error) {
		return s.engine.EditInvite(cur, actingUserID, ch)
	})
}

// GetInvite returns the invite with the viewer's status. Only the creator gets the request list.
func (s *Service) GetInvite(ctx context.Context, id, viewerID string) (Detail, error) {
	g, err := s.loadInvite(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	requests, err := s.requestsFor(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	return s.detail(g, requests, viewerID), nil
}

// ListAvailable returns open, future, not full invites matching f, nearest first
func (s *Service) ListAvailable(ctx context.Context, f membership.Filter) ([]models.GameInvite, error) {
	all, err := s.loadInvites(ctx, func(models.GameInvite) bool { return true })
	if err != nil {
		return nil, err
	}
	return s.engine.FilterAvailable(all, f), nil
}

// ListCreatedBy returns the user's own invites that weren't cancelled
func (s *Service) ListCreatedBy(ctx context.Context, userID string) ([]models.GameInvite, error) {
	mine, err := s.loadInvites(ctx, func(g models.GameInvite) bool {
		return g.CreatorID == userID && g.Status != models.INVITE_STATUS_CANCELLED
	})
	if err != nil {
		return nil, err
	}
	return membership.SortBySchedule(mine), nil
}

// ListParticipating returns invites of other creators the user plays in
func (s *Service) ListParticipating(ctx context.Context, userID string) ([]models.GameInvite, error) {
	joined, err := s.loadInvites(ctx, func(g models.GameInvite) bool {
		return g.CreatorID != userID && g.HasParticipant(userID)
	})
	if err != nil {
		return nil, err
	}
	return membership.SortBySchedule(joined), nil
}

// ListRequestsBy returns the user's requests, newest first
func (s *Service) ListRequestsBy(ctx context.Context, userID string) ([]models.JoinRequest, error) {
	reqs, err := store.QueryBy(ctx, s.requests, "user_id", userID, func(r models.JoinRequest) bool { return r.UserID == userID })
	if err != nil {
		return nil, err
	}
	sortRequests(reqs)
	reverse(reqs)
	return reqs, nil
}

// CreatorInbox returns the pending requests on the creator's live invites, oldest first
func (s *Service) CreatorInbox(ctx context.Context, creatorID string) ([]models.JoinRequest, error) {
	mine, err := s.loadInvites(ctx, func(g models.GameInvite) bool {
		return g.CreatorID == creatorID && g.Status != models.INVITE_STATUS_CANCELLED
	})
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool, len(mine))
	for _, g := range mine {
		ids[g.ID] = true
	}

	reqs, err := store.QueryBy(ctx, s.requests, "status", models.REQUEST_STATUS_PENDING, func(r models.JoinRequest) bool {
		return ids[r.GameID] && r.Status == models.REQUEST_STATUS_PENDING
	})
	if err != nil {
		return nil, err
	}
	sortRequests(reqs)
	return reqs, nil
}

// NormalizeLegacy rewrites invites stored under an older schema. It returns how many changed.
func (s *Service) NormalizeLegacy(ctx context.Context) (int, error) {
	all, err := s.invites.List(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, g := range all {
		if models.NormalizeInvite(g).SchemaVersion == g.SchemaVersion {
			continue
		}
		if _, err := s.updateInvite(ctx, g.ID, func(cur models.GameInvite) (models.GameInvite, error) { return cur, nil }); err != nil {
			return n, fmt.Errorf("normalizing invite %s: %w", g.ID, err)
		}
		n++
	}
	return n, nil
}

func sortRequests(reqs []models.JoinRequest) {
	sort.SliceStable(reqs, func(i, j int) bool { return reqs[i].CreatedAt.Before(reqs[j].CreatedAt) })
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
