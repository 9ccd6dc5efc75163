package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evenzahq/evenza-backend/models"
)

// RegistrationService menangani registrasi event, kapasitas, waitlist,
// dan penerbitan tiket.
type RegistrationService struct {
	db *gorm.DB
}

func NewRegistrationService(db *gorm.DB) *RegistrationService {
	return &RegistrationService{db: db}
}

// Register mendaftarkan user ke sebuah event. Event yang sudah penuh
// menempatkan user di waitlist. Registrasi confirmed langsung dapat tiket.
func (s *RegistrationService) Register(eventID, userID uint) (*models.Registration, *models.Ticket, error) {
	var reg models.Registration
	var ticket *models.Ticket

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, eventID).Error; err != nil {
			return err
		}

		// Tolak pendaftaran ganda (registrasi cancelled boleh daftar ulang)
		var existing models.Registration
		err := tx.Where("event_id = ? AND user_id = ? AND status <> ?",
			eventID, userID, models.RegistrationStatusCancelled).
			First(&existing).Error
		if err == nil {
			return fmt.Errorf("user %d already registered for event %d", userID, eventID)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		status := models.RegistrationStatusConfirmed
		if event.Capacity > 0 {
			var confirmed int64
			if err := tx.Model(&models.Registration{}).
				Where("event_id = ? AND status = ?", eventID, models.RegistrationStatusConfirmed).
				Count(&confirmed).Error; err != nil {
				return err
			}
			if confirmed >= int64(event.Capacity) {
				status = models.RegistrationStatusWaitlisted
			}
		}

		reg = models.Registration{
			EventID: eventID,
			UserID:  userID,
			Status:  status,
		}
		if err := tx.Create(&reg).Error; err != nil {
			return err
		}

		if status == models.RegistrationStatusConfirmed {
			t, err := issueTicket(tx, reg.ID)
			if err != nil {
				return err
			}
			ticket = t
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &reg, ticket, nil
}

// Cancel membatalkan registrasi dan mempromosikan waitlist paling awal.
// User yang dipromosikan menerima notifikasi in-app.
func (s *RegistrationService) Cancel(regID, userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var reg models.Registration
		if err := tx.First(&reg, regID).Error; err != nil {
			return err
		}
		if reg.UserID != userID {
			return fmt.Errorf("registration %d does not belong to user %d", regID, userID)
		}
		if reg.Status == models.RegistrationStatusCancelled {
			return nil
		}

		wasConfirmed := reg.Status == models.RegistrationStatusConfirmed

		reg.Status = models.RegistrationStatusCancelled
		if err := tx.Save(&reg).Error; err != nil {
			return err
		}

		if wasConfirmed {
			if err := promoteFromWaitlist(tx, reg.EventID); err != nil {
				// Promosi gagal tidak membatalkan cancel-nya
				log.Printf("Error promoting waitlist for event %d: %v", reg.EventID, err)
			}
		}

		return nil
	})
}

// promoteFromWaitlist mengambil registrasi waitlist tertua, meng-confirm,
// menerbitkan tiket, dan mengirim notifikasi ke user tersebut.
func promoteFromWaitlist(tx *gorm.DB, eventID uint) error {
	var waiting models.Registration
	err := tx.Where("event_id = ? AND status = ?", eventID, models.RegistrationStatusWaitlisted).
		Order("created_at ASC").
		First(&waiting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	waiting.Status = models.RegistrationStatusConfirmed
	if err := tx.Save(&waiting).Error; err != nil {
		return err
	}

	if _, err := issueTicket(tx, waiting.ID); err != nil {
		return err
	}

	var event models.Event
	if err := tx.First(&event, eventID).Error; err != nil {
		return err
	}

	now := time.Now()
	notif := models.Notification{
		UserID:   waiting.UserID,
		EventID:  &eventID,
		Type:     models.NotificationTypeInApp,
		Title:    "You're in!",
		Message:  fmt.Sprintf("A spot opened up for %s and your registration is now confirmed.", event.Title),
		Status:   models.StatusSent.NotificationValue(),
		Attempts: 1,
		SentAt:   &now,
	}
	if err := tx.Create(&notif).Error; err != nil {
		return err
	}

	log.Printf("Promoted user %d from waitlist for event %d", waiting.UserID, eventID)
	return nil
}

func issueTicket(tx *gorm.DB, regID uint) (*models.Ticket, error) {
	ticket := models.Ticket{
		RegistrationID: regID,
		Code:           uuid.NewString(),
	}
	if err := tx.Create(&ticket).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}
