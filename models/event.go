package models

import "time"

// Lifecycle events handed to the notification sink
const (
	EVENT_REQUEST_CREATED  = "request_created"
	EVENT_REQUEST_ACCEPTED = "request_accepted"
	EVENT_REQUEST_REJECTED = "request_rejected"
	EVENT_INVITE_DELETED   = "invite_deleted"
)

// Event tells UserID that something happened on InviteID
type Event struct {
	Kind     string    `json:"kind"`
	InviteID string    `json:"invite_id"`
	UserID   string    `json:"user_id"`
	At       time.Time `json:"at"`
}
