package models

import "time"

// ChatMessage is a line in the chat every participant of a game can read
type ChatMessage struct {
	ID         string    `gorm:"primaryKey;size:64" json:"id"`
	GameID     string    `gorm:"size:64;not null;index" json:"game_id"`
	SenderID   string    `gorm:"size:64;not null" json:"sender_id"`
	SenderName string    `gorm:"size:100" json:"sender_name"`
	Content    string    `gorm:"size:2000;not null" json:"content"`
	Version    int64     `gorm:"not null;default:0" json:"version"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (ChatMessage) TableName() string { return "messages" }

func (m ChatMessage) RecordID() string     { return m.ID }
func (m ChatMessage) RecordVersion() int64 { return m.Version }
func (m ChatMessage) WithVersion(v int64) ChatMessage {
	m.Version = v
	return m
}

// DirectMessage is a private line between the creator of a game and another user
type DirectMessage struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	GameID       string    `gorm:"size:64;not null;index" json:"game_id"`
	SenderID     string    `gorm:"size:64;not null;index" json:"sender_id"`
	SenderName   string    `gorm:"size:100" json:"sender_name"`
	ReceiverID   string    `gorm:"size:64;not null;index" json:"receiver_id"`
	ReceiverName string    `gorm:"size:100" json:"receiver_name"`
	Content      string    `gorm:"size:2000;not null" json:"content"`
	Version      int64     `gorm:"not null;default:0" json:"version"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

func (DirectMessage) TableName() string { return "direct_messages" }

func (m DirectMessage) RecordID() string     { return m.ID }
func (m DirectMessage) RecordVersion() int64 { return m.Version }
func (m DirectMessage) WithVersion(v int64) DirectMessage {
	m.Version = v
	return m
}

// Between reports whether the message belongs to the (a, b) conversation, in either direction
func (m DirectMessage) Between(a, b string) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}
