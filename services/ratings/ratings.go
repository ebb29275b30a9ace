package ratings

import (
	game_constants "PlayFinder/constants/game"
	"PlayFinder/models"
	"PlayFinder/services/membership"
	"PlayFinder/services/store"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// Service records what players thought of each other after a game
type Service struct {
	invites store.Collection[models.GameInvite]
	ratings store.Collection[models.PlayerRating]
	engine  *membership.Engine
	log     logrus.FieldLogger
}

func NewService(stores *store.Set, engine *membership.Engine, log logrus.FieldLogger) *Service {
	return &Service{
		invites: stores.Invites,
		ratings: stores.Ratings,
		engine:  engine,
		log:     log,
	}
}

// Summary is a player's average over Count ratings
type Summary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
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

func validate(rater models.UserRef, in models.RatingCreation) error {
	var fields []string
	if in.Stars < game_constants.MinStars || in.Stars > game_constants.MaxStars {
		fields = append(fields, fmt.Sprintf("stars: must be between %d and %d", game_constants.MinStars, game_constants.MaxStars))
	}
	if len([]rune(strings.TrimSpace(in.Comment))) > game_constants.MaxCommentLength {
		fields = append(fields, fmt.Sprintf("comment: at most %d characters", game_constants.MaxCommentLength))
	}
	if in.RatedUserID == "" {
		fields = append(fields, "rated_user_id: required")
	} else if in.RatedUserID == rater.ID {
		fields = append(fields, "rated_user_id: players can't rate themselves")
	}
	if len(fields) > 0 {
		return &membership.ValidationError{Kind: membership.ErrInvalidInput, Fields: fields}
	}
	return nil
}

// Rate stores the rater's rating of another participant once the game was played.
// A second rating of the same player for the same game fails with ErrAlreadyRated.
func (s *Service) Rate(ctx context.Context, gameID string, rater models.UserRef, in models.RatingCreation) (models.PlayerRating, error) {
	if err := validate(rater, in); err != nil {
		return models.PlayerRating{}, err
	}
	g, err := s.loadInvite(ctx, gameID)
	if err != nil {
		return models.PlayerRating{}, err
	}
	if g.Status == models.INVITE_STATUS_CANCELLED {
		return models.PlayerRating{}, membership.ErrInviteCancelled
	}
	if !g.HasParticipant(rater.ID) || !g.HasParticipant(in.RatedUserID) {
		return models.PlayerRating{}, membership.ErrNotParticipant
	}
	if !s.engine.IsPast(g) {
		return models.PlayerRating{}, membership.ErrGameNotPlayed
	}

	r, err := s.ratings.Create(ctx, models.PlayerRating{
		ID:            models.RatingID(gameID, rater.ID, in.RatedUserID),
		GameID:        gameID,
		RaterID:       rater.ID,
		RaterName:     rater.Name,
		RatedUserID:   in.RatedUserID,
		RatedUserName: g.ParticipantNames[in.RatedUserID],
		Stars:         in.Stars,
		Comment:       strings.TrimSpace(in.Comment),
		CreatedAt:     s.engine.CurrentTime(),
	})
	if errors.Is(err, store.ErrDuplicate) {
		return models.PlayerRating{}, membership.ErrAlreadyRated
	}
	if err != nil {
		return models.PlayerRating{}, err
	}

	s.log.WithFields(logrus.Fields{"invite_id": gameID, "user_id": rater.ID, "rated_user_id": in.RatedUserID}).Info("player rated")
	return r, nil
}

// HasRated reports whether rater already rated rated for the game
func (s *Service) HasRated(ctx context.Context, gameID, raterID, ratedID string) (bool, error) {
	_, err := s.ratings.Get(ctx, models.RatingID(gameID, raterID, ratedID))
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// ForUser returns the ratings the user received, newest first
func (s *Service) ForUser(ctx context.Context, userID string) ([]models.PlayerRating, error) {
	rs, err := store.QueryBy(ctx, s.ratings, "rated_user_id", userID, func(r models.PlayerRating) bool { return r.RatedUserID == userID })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].CreatedAt.After(rs[j].CreatedAt) })
	return rs, nil
}

// Average is zero valued when the user has no ratings
func (s *Service) Average(ctx context.Context, userID string) (Summary, error) {
	rs, err := store.QueryBy(ctx, s.ratings, "rated_user_id", userID, func(r models.PlayerRating) bool { return r.RatedUserID == userID })
	if err != nil || len(rs) == 0 {
		return Summary{}, err
	}
	sum := 0
	for _, r := range rs {
		sum += r.Stars
	}
	return Summary{Average: float64(sum) / float64(len(rs)), Count: len(rs)}, nil
}

// Recent returns the last limit ratings the user received (RecentRatingsLimit when limit <= 0)
func (s *Service) Recent(ctx context.Context, userID string, limit int) ([]models.PlayerRating, error) {
	if limit <= 0 {
		limit = game_constants.RecentRatingsLimit
	}
	rs, err := s.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(rs) > limit {
		rs = rs[:limit]
	}
	return rs, nil
}

func (s *Service) ForGame(ctx context.Context, gameID string) ([]models.PlayerRating, error) {
	rs, err := store.QueryBy(ctx, s.ratings, "game_id", gameID, func(r models.PlayerRating) bool { return r.GameID == gameID })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].CreatedAt.Before(rs[j].CreatedAt) })
	return rs, nil
}

// GamesToRate returns the played, not cancelled games of the user where some
// other participant is still waiting for the user's rating
func (s *Service) GamesToRate(ctx context.Context, userID string) ([]models.GameInvite, error) {
	all, err := s.invites.List(ctx)
	if err != nil {
		return nil, err
	}
	given, err := store.QueryBy(ctx, s.ratings, "rater_id", userID, func(r models.PlayerRating) bool { return r.RaterID == userID })
	if err != nil {
		return nil, err
	}
	rated := make(map[string]bool, len(given))
	for _, r := range given {
		rated[r.ID] = true
	}

	var out []models.GameInvite
	for _, g := range all {
		g = models.NormalizeInvite(g)
		if g.Status == models.INVITE_STATUS_CANCELLED || !g.HasParticipant(userID) || !s.engine.IsPast(g) {
			continue
		}
		for _, other := range g.Participants {
			if other != userID && !rated[models.RatingID(g.ID, userID, other)] {
				out = append(out, g)
				break
			}
		}
	}
	return membership.SortBySchedule(out), nil
}
