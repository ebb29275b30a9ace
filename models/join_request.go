package models

import "time"

const (
	REQUEST_STATUS_PENDING  = "pending"
	REQUEST_STATUS_ACCEPTED = "accepted"
	REQUEST_STATUS_REJECTED = "rejected"
)

/*
 * 'JoinRequest' is a non-creator's application to play in a GameInvite.
 * Accepted and rejected are terminal, a rejected user asks again with a new record.
 */
type JoinRequest struct {
	ID          string     `gorm:"primaryKey;size:64" json:"id"`
	GameID      string     `gorm:"size:64;not null;index" json:"game_id"`
	UserID      string     `gorm:"size:64;not null;index" json:"user_id"`
	UserName    string     `gorm:"size:100" json:"user_name"`
	Message     string     `gorm:"size:500" json:"message,omitempty"`
	Status      string     `gorm:"size:16;not null;index" json:"status"`
	Version     int64      `gorm:"not null;default:0" json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

func (JoinRequest) TableName() string { return "join_requests" }

func (r JoinRequest) RecordID() string     { return r.ID }
func (r JoinRequest) RecordVersion() int64 { return r.Version }
func (r JoinRequest) WithVersion(v int64) JoinRequest {
	r.Version = v
	return r
}

// IsActive is true for pending and accepted requests
func (r JoinRequest) IsActive() bool {
	return r.Status == REQUEST_STATUS_PENDING || r.Status == REQUEST_STATUS_ACCEPTED
}
