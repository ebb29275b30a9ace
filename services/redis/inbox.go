package redis

import (
	game_constants "PlayFinder/constants/game"
	"PlayFinder/models"
	redis_utils "PlayFinder/services/redis/utils"
	"PlayFinder/services/store"
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Inbox keeps the latest events of every user in a capped list and publishes
// each one on the user's channel for whoever is listening.
// Key format: "inbox:{user}", channel "events:{user}"
// TTL: 7 days since the last event
type Inbox struct {
	rc *RedisClient
}

func NewInbox(rc *RedisClient) *Inbox {
	return &Inbox{rc: rc}
}

func (i *Inbox) Notify(ctx context.Context, ev models.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("error marshaling event: %w", err)
	}

	key := redis_utils.FormatInboxKey(ev.UserID)
	_, err = i.rc.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, data)
		pipe.LTrim(ctx, key, 0, game_constants.InboxLimit-1)
		pipe.Expire(ctx, key, game_constants.InboxTTL)
		return nil
	})
	if err != nil {
		return store.Unavailable("inbox", "notify", err)
	}

	if err := i.rc.Client.Publish(ctx, redis_utils.FormatEventsChannel(ev.UserID), data).Err(); err != nil {
		return store.Unavailable("inbox", "publish", err)
	}
	return nil
}

// List returns the user's events, newest first
func (i *Inbox) List(ctx context.Context, userID string) ([]models.Event, error) {
	raw, err := i.rc.Client.LRange(ctx, redis_utils.FormatInboxKey(userID), 0, -1).Result()
	if err != nil {
		return nil, store.Unavailable("inbox", "list", err)
	}

	events := make([]models.Event, 0, len(raw))
	for _, item := range raw {
		var ev models.Event
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			return nil, fmt.Errorf("error unmarshaling event: %w", err)
		}
		events = append(events, ev)
	}
	return events, nil
}

// Clear empties the user's inbox
func (i *Inbox) Clear(ctx context.Context, userID string) error {
	if err := i.rc.CleanupKeys(ctx, redis_utils.FormatInboxKey(userID)); err != nil {
		return store.Unavailable("inbox", "clear", err)
	}
	return nil
}
