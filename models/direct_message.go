package models

import (
	"time"
)

// DirectMessage is a private message between two distinct users.
// Only IsRead changes after creation.
type DirectMessage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SenderID   uint      `gorm:"not null;index" json:"sender_id"`
	ReceiverID uint      `gorm:"not null;index" json:"receiver_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`
	IsRead     bool      `gorm:"not null;default:false" json:"is_read"`
}

// Peer returns the other participant of the message from userID's point of view.
func (m DirectMessage) Peer(userID uint) uint {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}
