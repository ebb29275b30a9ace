package redis

import (
	"PlayFinder/models"
	"PlayFinder/services/store"
)

// NewSet keeps every collection as a blob in redis
func NewSet(rc *RedisClient) *store.Set {
	return &store.Set{
		Invites:  NewCollection[models.GameInvite](rc, models.GameInvite{}.TableName()),
		Requests: NewCollection[models.JoinRequest](rc, models.JoinRequest{}.TableName()),
		Messages: NewCollection[models.ChatMessage](rc, models.ChatMessage{}.TableName()),
		Directs:  NewCollection[models.DirectMessage](rc, models.DirectMessage{}.TableName()),
		Ratings:  NewCollection[models.PlayerRating](rc, models.PlayerRating{}.TableName()),
		Accounts: NewCollection[models.Account](rc, models.Account{}.TableName()),
		Profiles: NewCollection[models.PlayerProfile](rc, models.PlayerProfile{}.TableName()),
	}
}
