package chat

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
	"time"

	"github.com/sirupsen/logrus"
)

// Service keeps the game chat and the direct messages with a game's creator.
// Both logs are append only; clients poll List/Conversation for new lines.
type Service struct {
	invites  store.Collection[models.GameInvite]
	requests store.Collection[models.JoinRequest]
	messages store.Collection[models.ChatMessage]
	directs  store.Collection[models.DirectMessage]
	engine   *membership.Engine
	log      logrus.FieldLogger
}

func NewService(stores *store.Set, engine *membership.Engine, log logrus.FieldLogger) *Service {
	return &Service{
		invites:  stores.Invites,
		requests: stores.Requests,
		messages: stores.Messages,
		directs:  stores.Directs,
		engine:   engine,
		log:      log,
	}
}

// Conversation is the last line exchanged between the creator and one user
type Conversation struct {
	UserID          string    `json:"user_id"`
	UserName        string    `json:"user_name"`
	LastMessage     string    `json:"last_message"`
	LastMessageTime time.Time `json:"last_message_time"`
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

func checkContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	switch {
	case content == "":
		return "", &membership.ValidationError{Kind: membership.ErrInvalidInput, Fields: []string{"content: required"}}
	case len([]rune(content)) > game_constants.MaxMessageLength:
		return "", &membership.ValidationError{
			Kind:   membership.ErrInvalidInput,
			Fields: []string{fmt.Sprintf("content: at most %d characters", game_constants.MaxMessageLength)},
		}
	}
	return content, nil
}

// Post appends a line to the game chat. Only participants can write.
func (s *Service) Post(ctx context.Context, gameID string, sender models.UserRef, content string) (models.ChatMessage, error) {
	content, err := checkContent(content)
	if err != nil {
		return models.ChatMessage{}, err
	}
	g, err := s.loadInvite(ctx, gameID)
	if err != nil {
		return models.ChatMessage{}, err
	}
	if !g.HasParticipant(sender.ID) {
		return models.ChatMessage{}, membership.ErrNotParticipant
	}
	if g.Status == models.INVITE_STATUS_CANCELLED {
		return models.ChatMessage{}, membership.ErrInviteCancelled
	}

	msg, err := s.messages.Create(ctx, models.ChatMessage{
		ID:         s.engine.GenerateID(),
		GameID:     gameID,
		SenderID:   sender.ID,
		SenderName: sender.Name,
		Content:    content,
		CreatedAt:  s.engine.CurrentTime(),
	})
	if err != nil {
		return models.ChatMessage{}, err
	}
	s.log.WithFields(logrus.Fields{"invite_id": gameID, "user_id": sender.ID}).Debug("chat message posted")
	return msg, nil
}

// List returns the chat lines created after since (zero for all), oldest first
func (s *Service) List(ctx context.Context, gameID, viewerID string, since time.Time) ([]models.ChatMessage, error) {
	g, err := s.loadInvite(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !g.HasParticipant(viewerID) {
		return nil, membership.ErrNotParticipant
	}

	msgs, err := store.QueryBy(ctx, s.messages, "game_id", gameID, func(m models.ChatMessage) bool {
		return m.GameID == gameID && m.CreatedAt.After(since)
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].CreatedAt.Before(msgs[j].CreatedAt) })
	return msgs, nil
}

// counterpart finds who the creator may write to: players, requesters and
// anybody who wrote to the creator first
func (s *Service) counterpart(ctx context.Context, g models.GameInvite, userID string) (string, bool, error) {
	if g.HasParticipant(userID) {
		return g.ParticipantNames[userID], true, nil
	}
	reqs, err := store.QueryBy(ctx, s.requests, "game_id", g.ID, func(r models.JoinRequest) bool {
		return r.GameID == g.ID && r.UserID == userID
	})
	if err != nil {
		return "", false, err
	}
	if len(reqs) > 0 {
		return reqs[0].UserName, true, nil
	}
	prior, err := store.QueryBy(ctx, s.directs, "game_id", g.ID, func(m models.DirectMessage) bool {
		return m.GameID == g.ID && m.SenderID == userID && m.ReceiverID == g.CreatorID
	})
	if err != nil {
		return "", false, err
	}
	if len(prior) > 0 {
		return prior[0].SenderName, true, nil
	}
	return "", false, nil
}

// SendDirect writes a private line between the game's creator and another user.
// Anybody may write to the creator about the game.
func (s *Service) SendDirect(ctx context.Context, gameID string, sender models.UserRef, receiverID, content string) (models.DirectMessage, error) {
	content, err := checkContent(content)
	if err != nil {
		return models.DirectMessage{}, err
	}
	g, err := s.loadInvite(ctx, gameID)
	if err != nil {
		return models.DirectMessage{}, err
	}
	if sender.ID == receiverID || (sender.ID != g.CreatorID && receiverID != g.CreatorID) {
		return models.DirectMessage{}, membership.ErrNotAuthorized
	}

	receiverName := g.CreatorName
	if sender.ID == g.CreatorID {
		name, ok, err := s.counterpart(ctx, g, receiverID)
		if err != nil {
			return models.DirectMessage{}, err
		}
		if !ok {
			return models.DirectMessage{}, membership.ErrNotAuthorized
		}
		receiverName = name
	}

	dm, err := s.directs.Create(ctx, models.DirectMessage{
		ID:           s.engine.GenerateID(),
		GameID:       gameID,
		SenderID:     sender.ID,
		SenderName:   sender.Name,
		ReceiverID:   receiverID,
		ReceiverName: receiverName,
		Content:      content,
		CreatedAt:    s.engine.CurrentTime(),
	})
	if err != nil {
		return models.DirectMessage{}, err
	}
	s.log.WithFields(logrus.Fields{"invite_id": gameID, "user_id": sender.ID}).Debug("direct message sent")
	return dm, nil
}

// ConversationWith returns the lines between viewer and other on the game, oldest first
func (s *Service) ConversationWith(ctx context.Context, gameID, viewerID, otherID string) ([]models.DirectMessage, error) {
	if _, err := s.loadInvite(ctx, gameID); err != nil {
		return nil, err
	}
	msgs, err := store.QueryBy(ctx, s.directs, "game_id", gameID, func(m models.DirectMessage) bool {
		return m.GameID == gameID && m.Between(viewerID, otherID)
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].CreatedAt.Before(msgs[j].CreatedAt) })
	return msgs, nil
}

// Conversations groups the creator's direct messages by the other user, latest first
func (s *Service) Conversations(ctx context.Context, gameID, creatorID string) ([]Conversation, error) {
	g, err := s.loadInvite(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if creatorID != g.CreatorID {
		return nil, membership.ErrNotAuthorized
	}

	msgs, err := store.QueryBy(ctx, s.directs, "game_id", gameID, func(m models.DirectMessage) bool { return m.GameID == gameID })
	if err != nil {
		return nil, err
	}

	byUser := make(map[string]Conversation)
	for _, m := range msgs {
		other, name := m.SenderID, m.SenderName
		if m.SenderID == creatorID {
			other, name = m.ReceiverID, m.ReceiverName
		}
		if other == creatorID {
			continue
		}
		if cur, ok := byUser[other]; !ok || m.CreatedAt.After(cur.LastMessageTime) {
			byUser[other] = Conversation{UserID: other, UserName: name, LastMessage: m.Content, LastMessageTime: m.CreatedAt}
		}
	}

	out := make([]Conversation, 0, len(byUser))
	for _, c := range byUser {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastMessageTime.Equal(out[j].LastMessageTime) {
			return out[i].UserID < out[j].UserID
		}
		return out[i].LastMessageTime.After(out[j].LastMessageTime)
	})
	return out, nil
}
