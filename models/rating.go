package models

import (
	"fmt"
	"time"
)

// PlayerRating is what a participant thought of another one after the game
type PlayerRating struct {
	ID            string    `gorm:"primaryKey;size:200" json:"id"`
	GameID        string    `gorm:"size:64;not null;uniqueIndex:idx_rating_triple" json:"game_id"`
	RaterID       string    `gorm:"size:64;not null;uniqueIndex:idx_rating_triple" json:"rater_id"`
	RaterName     string    `gorm:"size:100" json:"rater_name"`
	RatedUserID   string    `gorm:"size:64;not null;uniqueIndex:idx_rating_triple;index" json:"rated_user_id"`
	RatedUserName string    `gorm:"size:100" json:"rated_user_name"`
	Stars         int       `gorm:"not null" json:"stars"`
	Comment       string    `gorm:"size:500" json:"comment,omitempty"`
	Version       int64     `gorm:"not null;default:0" json:"version"`
	CreatedAt     time.Time `json:"created_at"`
}

func (PlayerRating) TableName() string { return "ratings" }

func (r PlayerRating) RecordID() string     { return r.ID }
func (r PlayerRating) RecordVersion() int64 { return r.Version }
func (r PlayerRating) WithVersion(v int64) PlayerRating {
	r.Version = v
	return r
}

// RatingID is the key of the only rating allowed for the triple
func RatingID(gameID, raterID, ratedUserID string) string {
	return fmt.Sprintf("%s:%s:%s", gameID, raterID, ratedUserID)
}
