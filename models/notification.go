package models

import "time"

// Tipe channel notifikasi. Hanya in-app yang dipakai saat ini.
const NotificationTypeInApp = "in-app"

// Notification adalah satu record delivery per penerima. Fan-out sebuah
// announcement menghasilkan satu baris per user yang terdaftar di event.
type Notification struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	User        User       `gorm:"foreignKey:UserID" json:"-"`
	EventID     *uint      `gorm:"index" json:"event_id,omitempty"`
	Event       *Event     `gorm:"foreignKey:EventID" json:"-"`
	Type        string     `gorm:"type:varchar(20);not null;default:'in-app'" json:"type"`
	Title       string     `gorm:"type:varchar(255)" json:"title"`
	Message     string     `gorm:"type:text;not null" json:"message"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"` // pending, scheduled, sent
	IsRead      bool       `gorm:"not null;default:false" json:"is_read"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	CreatedBy   *uint      `json:"created_by,omitempty"`
	Attempts    int        `gorm:"not null;default:0" json:"attempts"`
	LastError   string     `gorm:"type:text" json:"last_error,omitempty"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}
