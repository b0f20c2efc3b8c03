package models

import (
	"time"
)

// Message is an immutable room message.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RoomID    uint      `gorm:"not null;index:idx_message_room_created,priority:1" json:"room_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"not null;index:idx_message_room_created,priority:2" json:"created_at"`
}
