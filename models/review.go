package models

import "time"

type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   uint      `gorm:"not null;index;uniqueIndex:idx_review_event_user" json:"event_id"`
	Event     Event     `gorm:"foreignKey:EventID" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_review_event_user" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Rating    int       `gorm:"not null" json:"rating"` // 1-5
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
