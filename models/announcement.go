package models

import "time"

// Announcement adalah pesan broadcast dari organizer ke peserta sebuah event.
type Announcement struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	EventID     *uint      `gorm:"index" json:"event_id,omitempty"`
	Event       *Event     `gorm:"foreignKey:EventID" json:"-"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Message     string     `gorm:"type:text;not null" json:"message"`
	Status      string     `gorm:"type:varchar(20);not null;default:'Draft'" json:"status"` // Draft, Scheduled, Sent
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
	CreatedBy   uint       `gorm:"not null" json:"created_by"`
	Creator     User       `gorm:"foreignKey:CreatedBy" json:"-"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

// AnnouncementView adalah proyeksi read-only hasil agregasi notifications
// (group by event, title, message). Dipakai untuk listing karena dispatch
// lama bisa saja terjadi sebelum tabel announcements ada.
type AnnouncementView struct {
	EventID     *uint      `json:"event_id,omitempty"`
	EventTitle  string     `json:"event_title,omitempty"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	Status      string     `json:"status"`
	Recipients  int64      `json:"recipients"`
	CreatedAt   time.Time  `json:"created_at"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
}
