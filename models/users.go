package models

import "time"

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255); not null" json:"name"`
	Email     string    `gorm:"type:varchar(255); unique;not null" json:"email"`
	Password  string    `gorm:"type:varchar(255); not null" json:"-"`
	Role      string    `gorm:"type:varchar(50); not null;default:'attendee'" json:"role"` // attendee, organizer, admin
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
