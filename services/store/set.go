package store

import (
	"PlayFinder/models"

	"gorm.io/gorm"
)

// Set groups the collections the application works with
type Set struct {
	Invites  Collection[models.GameInvite]
	Requests Collection[models.JoinRequest]
	Messages Collection[models.ChatMessage]
	Directs  Collection[models.DirectMessage]
	Ratings  Collection[models.PlayerRating]
	Accounts Collection[models.Account]
	Profiles Collection[models.PlayerProfile]
}

func NewMemorySet() *Set {
	return &Set{
		Invites:  NewMemory[models.GameInvite]("game_invites"),
		Requests: NewMemory[models.JoinRequest]("join_requests"),
		Messages: NewMemory[models.ChatMessage]("messages"),
		Directs:  NewMemory[models.DirectMessage]("direct_messages"),
		Ratings:  NewMemory[models.PlayerRating]("ratings"),
		Accounts: NewMemory[models.Account]("accounts"),
		Profiles: NewMemory[models.PlayerProfile]("player_profiles"),
	}
}

// NewGormSet expects the tables to be migrated already
func NewGormSet(db *gorm.DB) *Set {
	return &Set{
		Invites:  NewGorm[models.GameInvite](db),
		Requests: NewGorm[models.JoinRequest](db),
		Messages: NewGorm[models.ChatMessage](db),
		Directs:  NewGorm[models.DirectMessage](db),
		Ratings:  NewGorm[models.PlayerRating](db),
		Accounts: NewGorm[models.Account](db),
		Profiles: NewGorm[models.PlayerProfile](db),
	}
}
