package models

import "time"

// Status registrasi
const (
	RegistrationStatusConfirmed  = "confirmed"
	RegistrationStatusWaitlisted = "waitlisted"
	RegistrationStatusCancelled  = "cancelled"
)

type Registration struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   uint      `gorm:"not null;index" json:"event_id"`
	Event     Event     `gorm:"foreignKey:EventID" json:"-"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Status    string    `gorm:"type:varchar(20);not null;default:'confirmed'" json:"status"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
