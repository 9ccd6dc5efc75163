package models

import "time"

type Ticket struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	RegistrationID uint         `gorm:"not null;uniqueIndex" json:"registration_id"`
	Registration   Registration `gorm:"foreignKey:RegistrationID" json:"-"`
	Code           string       `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	CheckedInAt    *time.Time   `json:"checked_in_at,omitempty"`
	CreatedAt      time.Time    `gorm:"not null" json:"created_at"`
}
