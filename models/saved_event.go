package models

import "time"

type SavedEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_saved_user_event" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	EventID   uint      `gorm:"not null;uniqueIndex:idx_saved_user_event" json:"event_id"`
	Event     Event     `gorm:"foreignKey:EventID" json:"-"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
