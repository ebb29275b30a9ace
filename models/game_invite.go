package models

import (
	game_constants "PlayFinder/constants/game"
	"time"
)

// Stored invite statuses. "full" is never stored, it is derived from the
// participant count (see membership.DerivedStatus).
const (
	INVITE_STATUS_OPEN      = "open"
	INVITE_STATUS_FULL      = "full"
	INVITE_STATUS_CANCELLED = "cancelled"
)

/*
 * 'GameInvite' is a game-seeking post created by an organizer. Participants
 * keeps the join order and always starts with the creator.
 */
type GameInvite struct {
	ID           string `gorm:"primaryKey;size:64" json:"id"`
	CreatorID    string `gorm:"size:64;not null;index" json:"creator_id"`
	CreatorName  string `gorm:"size:100" json:"creator_name"`
	Title        string `gorm:"size:100;not null" json:"title"`
	GameType     string `gorm:"size:16;not null" json:"game_type"`
	ClassMin     int    `gorm:"not null" json:"class_min"`
	ClassMax     int    `gorm:"not null" json:"class_max"`
	Location     string `gorm:"size:100" json:"location,omitempty"`
	City         string `gorm:"size:100;index" json:"city,omitempty"`
	Neighborhood string `gorm:"size:100" json:"neighborhood,omitempty"`
	CourtName    string `gorm:"size:200" json:"court_name,omitempty"`
	CourtAddress string `gorm:"size:300" json:"court_address,omitempty"`
	Date         string `gorm:"size:10;not null;index" json:"date"`
	Time         string `gorm:"size:5" json:"time,omitempty"`
	TimeSlot     string `gorm:"size:8" json:"time_slot,omitempty"`
	Description  string `gorm:"size:500" json:"description,omitempty"`

	Participants     []string          `gorm:"type:text;serializer:json" json:"participants"`
	ParticipantNames map[string]string `gorm:"type:text;serializer:json" json:"participant_names,omitempty"`

	Status        string    `gorm:"size:16;not null" json:"status"`
	SchemaVersion int       `gorm:"not null;default:0" json:"schema_version"`
	Version       int64     `gorm:"not null;default:0" json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Fields written by older clients, only read by NormalizeInvite
	Sport         string `gorm:"-" json:"sport,omitempty"`
	MaxPlayers    int    `gorm:"-" json:"max_players,omitempty"`
	DesiredLevel  int    `gorm:"-" json:"desired_level,omitempty"`
	LevelRangeMin int    `gorm:"-" json:"level_range_min,omitempty"`
	LevelRangeMax int    `gorm:"-" json:"level_range_max,omitempty"`
	Notes         string `gorm:"-" json:"notes,omitempty"`
}

func (GameInvite) TableName() string { return "game_invites" }

func (g GameInvite) RecordID() string     { return g.ID }
func (g GameInvite) RecordVersion() int64 { return g.Version }
func (g GameInvite) WithVersion(v int64) GameInvite {
	g.Version = v
	return g
}

// HasParticipant reports whether userID already plays in the invite
func (g GameInvite) HasParticipant(userID string) bool {
	for _, id := range g.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// NormalizeInvite upgrades a record written under an older schema so the
// membership rules only ever see the tagged game_type/class range shape.
func NormalizeInvite(g GameInvite) GameInvite {
	if g.SchemaVersion >= game_constants.InviteSchemaVersion {
		return g
	}

	if g.GameType == "" {
		if g.MaxPlayers > game_constants.CAPACITY_SINGLES {
			g.GameType = game_constants.GAME_TYPE_DOUBLES
		} else {
			g.GameType = game_constants.GAME_TYPE_SINGLES
		}
	}

	if g.ClassMin == 0 && g.ClassMax == 0 {
		switch {
		case g.LevelRangeMin > 0 && g.LevelRangeMax > 0:
			g.ClassMin, g.ClassMax = g.LevelRangeMin, g.LevelRangeMax
		case g.DesiredLevel > 0:
			// The desired_level lineage accepted one level either side
			g.ClassMin, g.ClassMax = g.DesiredLevel-1, g.DesiredLevel+1
		default:
			g.ClassMin, g.ClassMax = game_constants.MinClass, game_constants.MaxClass
		}
	}
	g.ClassMin = clampClass(g.ClassMin)
	g.ClassMax = clampClass(g.ClassMax)
	if g.ClassMin > g.ClassMax {
		g.ClassMin, g.ClassMax = g.ClassMax, g.ClassMin
	}

	if g.Description == "" {
		g.Description = g.Notes
	}
	if g.Title == "" {
		g.Title = g.Sport
	}
	// matched/completed from older clients are plain open invites now,
	// fullness and expiry are derived
	if g.Status != INVITE_STATUS_CANCELLED {
		g.Status = INVITE_STATUS_OPEN
	}
	if !g.HasParticipant(g.CreatorID) {
		g.Participants = append([]string{g.CreatorID}, g.Participants...)
	}

	g.Sport, g.MaxPlayers, g.DesiredLevel = "", 0, 0
	g.LevelRangeMin, g.LevelRangeMax, g.Notes = 0, 0, ""
	g.SchemaVersion = game_constants.InviteSchemaVersion
	return g
}

func clampClass(c int) int {
	if c < game_constants.MinClass {
		return game_constants.MinClass
	}
	if c > game_constants.MaxClass {
		return game_constants.MaxClass
	}
	return c
}
