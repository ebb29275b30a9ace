package models

import (
	"time"

	"gorm.io/datatypes"
)

// UserRef is the identity every operation acts on, whatever provider resolved it
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

/*
 * 'Account' is an email/password identity. Anonymous users identified by
 * name only never get an Account.
 */
type Account struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	Email        string    `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	PasswordHash string    `gorm:"size:255;not null" json:"password_hash"`
	Version      int64     `gorm:"not null;default:0" json:"version"`
	CreatedAt    time.Time `json:"member_since"`
}

func (Account) TableName() string { return "accounts" }

func (a Account) RecordID() string     { return a.ID }
func (a Account) RecordVersion() int64 { return a.Version }
func (a Account) WithVersion(v int64) Account {
	a.Version = v
	return a
}

func (a Account) Ref() UserRef { return UserRef{ID: a.ID, Name: a.Name} }

// Availability is one weekday with the time slots a player can usually play in
type Availability struct {
	Day   string   `json:"day" binding:"required,weekday"`
	Slots []string `json:"slots" binding:"required,min=1,dive,timeslot"`
}

// PlayerProfile is the public tennis profile of a user. ID is the user id.
type PlayerProfile struct {
	ID              string         `gorm:"primaryKey;size:64" json:"id"`
	Name            string         `gorm:"size:100;not null" json:"name"`
	City            string         `gorm:"size:100" json:"city,omitempty"`
	Neighborhood    string         `gorm:"size:100" json:"neighborhood,omitempty"`
	Class           int            `json:"class,omitempty"`
	DominantHand    string         `gorm:"size:16" json:"dominant_hand,omitempty"`
	Frequency       string         `gorm:"size:16" json:"frequency,omitempty"`
	YearsPlaying    *int           `json:"years_playing,omitempty"`
	MaxTravelRadius int            `json:"max_travel_radius,omitempty"`
	Availability    datatypes.JSON `json:"availability,omitempty"`
	Version         int64          `gorm:"not null;default:0" json:"version"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (PlayerProfile) TableName() string { return "player_profiles" }

func (p PlayerProfile) RecordID() string     { return p.ID }
func (p PlayerProfile) RecordVersion() int64 { return p.Version }
func (p PlayerProfile) WithVersion(v int64) PlayerProfile {
	p.Version = v
	return p
}
