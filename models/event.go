package models

import "time"

type Event struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Location    string     `gorm:"type:varchar(255)" json:"location"`
	Capacity    int        `gorm:"not null;default:0" json:"capacity"` // 0 = tanpa batas
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	OrganizerID uint       `gorm:"not null;index" json:"organizer_id"`
	Organizer   User       `gorm:"foreignKey:OrganizerID" json:"-"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}
