package services

import (
	"errors"
	"log"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/evenzahq/evenza-backend/models"
	"github.com/evenzahq/evenza-backend/utils"
)

// AnnouncementService memegang state machine draft -> scheduled -> sent
// dan fan-out ke notification per penerima.
type AnnouncementService struct {
	db *gorm.DB
}

func NewAnnouncementService(db *gorm.DB) *AnnouncementService {
	return &AnnouncementService{db: db}
}

// DispatchResult adalah hasil satu kali fan-out.
type DispatchResult struct {
	Inserted  int `json:"inserted"`
	Requested int `json:"requested"`
}

type CreateAnnouncementInput struct {
	EventID     *uint  `json:"event_id"`
	EventTitle  string `json:"event_title"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	Status      string `json:"status"`
	ScheduledAt string `json:"scheduled_at"`
	MarkSent    bool   `json:"mark_sent"`
}

type UpdateAnnouncementInput struct {
	EventID     *uint   `json:"event_id"`
	Title       *string `json:"title"`
	Message     *string `json:"message"`
	Status      *string `json:"status"`
	ScheduledAt *string `json:"scheduled_at"`
}

type SendNowInput struct {
	EventID    *uint  `json:"event_id"`
	EventTitle string `json:"event_title"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	MarkSent   *bool  `json:"mark_sent"`
}

// Hasil lookup find-or-materialize untuk jalur upgrade notification lama.
type LookupResult int

const (
	LookupFound LookupResult = iota
	LookupMaterialized
	LookupMissing
)

// CreateAnnouncement membuat announcement baru. Jika status efektifnya Sent
// (eksplisit atau lewat flag mark_sent), fan-out dijalankan sinkron dalam
// satu transaksi sebelum return.
func (s *AnnouncementService) CreateAnnouncement(creatorID uint, in CreateAnnouncementInput) (*models.Announcement, *DispatchResult, error) {
	if in.Title == "" || in.Message == "" {
		return nil, nil, utils.NewValidationError("title and message are required")
	}

	status, err := models.ParseLifecycleStatus(in.Status)
	if err != nil {
		return nil, nil, utils.NewValidationError("invalid status %q", in.Status)
	}
	if in.MarkSent {
		status = models.StatusSent
	}

	var scheduledAt *time.Time
	if status == models.StatusScheduled {
		scheduledAt, err = parseScheduleTime(in.ScheduledAt)
		if err != nil {
			return nil, nil, err
		}
	} else if in.ScheduledAt != "" {
		// scheduled_at boleh ikut tersimpan walau status masih draft
		if t, perr := parseScheduleTime(in.ScheduledAt); perr == nil {
			scheduledAt = t
		}
	}

	eventID, err := s.ResolveEventID(in.EventID, in.EventTitle)
	if err != nil {
		return nil, nil, err
	}

	ann := models.Announcement{
		EventID:     eventID,
		Title:       in.Title,
		Message:     in.Message,
		Status:      status.AnnouncementValue(),
		ScheduledAt: scheduledAt,
		CreatedBy:   creatorID,
	}

	if status != models.StatusSent {
		if err := s.db.Create(&ann).Error; err != nil {
			return nil, nil, err
		}
		return &ann, nil, nil
	}

	// Status sent -> buat row + fan-out dalam satu transaksi
	var result DispatchResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		ann.SentAt = &now
		if err := tx.Create(&ann).Error; err != nil {
			return err
		}

		res, derr := s.fanOut(tx, ann.EventID, ann.Title, ann.Message, creatorID, models.StatusSent)
		if derr != nil {
			return derr
		}
		result = *res
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &ann, &result, nil
}

// UpdateAnnouncement menerapkan field yang dikirim saja. Jika id bukan
// announcement tapi cocok dengan notification lama, row announcement
// di-materialize dulu dari notification tersebut (upgrade satu kali).
// Seluruhnya berjalan dalam satu transaksi: validasi yang gagal juga
// me-rollback row hasil materialisasi.
func (s *AnnouncementService) UpdateAnnouncement(id uint, updaterID uint, in UpdateAnnouncementInput) (*models.Announcement, *DispatchResult, error) {
	var ann *models.Announcement
	var result *DispatchResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		found, lookup, err := s.findOrMaterialize(tx, id, updaterID)
		if err != nil {
			return err
		}
		if lookup == LookupMissing {
			return utils.NewNotFoundError("announcement %d not found", id)
		}

		prevStatus, err := models.ParseLifecycleStatus(found.Status)
		if err != nil {
			// row lama dengan status tak dikenal dianggap draft
			prevStatus = models.StatusDraft
		}

		newStatus := prevStatus
		if in.Status != nil {
			newStatus, err = models.ParseLifecycleStatus(*in.Status)
			if err != nil {
				return utils.NewValidationError("invalid status %q", *in.Status)
			}
		}

		// Sent bersifat terminal: tidak ada transisi keluar
		if prevStatus == models.StatusSent && newStatus != models.StatusSent {
			return utils.NewValidationError("announcement %d already sent", id)
		}

		if in.Title != nil {
			if *in.Title == "" {
				return utils.NewValidationError("title cannot be empty")
			}
			found.Title = *in.Title
		}
		if in.Message != nil {
			if *in.Message == "" {
				return utils.NewValidationError("message cannot be empty")
			}
			found.Message = *in.Message
		}
		if in.EventID != nil {
			eventID, rerr := resolveEventID(tx, in.EventID, "")
			if rerr != nil {
				return rerr
			}
			found.EventID = eventID
		}
		if in.ScheduledAt != nil {
			t, perr := parseScheduleTime(*in.ScheduledAt)
			if perr != nil {
				return perr
			}
			found.ScheduledAt = t
		}

		if newStatus == models.StatusScheduled && found.ScheduledAt == nil {
			return utils.NewValidationError("scheduled status requires scheduled_at")
		}

		found.Status = newStatus.AnnouncementValue()

		// Transisi ke sent memicu fan-out tepat satu kali. Update berulang
		// pada announcement yang sudah sent tidak mengirim ulang (idempotent).
		if newStatus == models.StatusSent && prevStatus != models.StatusSent {
			now := time.Now()
			found.SentAt = &now
			if err := tx.Save(found).Error; err != nil {
				return err
			}

			res, derr := s.fanOut(tx, found.EventID, found.Title, found.Message, updaterID, models.StatusSent)
			if derr != nil {
				return derr
			}
			result = res
			ann = found
			return nil
		}

		if err := tx.Save(found).Error; err != nil {
			return err
		}
		ann = found
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return ann, result, nil
}

// SendNow mengirim notifikasi ke semua peserta sebuah event tanpa perlu
// row announcement. Event dicari berdasarkan id atau judul.
func (s *AnnouncementService) SendNow(senderID uint, in SendNowInput) (*DispatchResult, error) {
	if in.Title == "" || in.Message == "" {
		return nil, utils.NewValidationError("title and message are required")
	}

	markSent := true
	if in.MarkSent != nil {
		markSent = *in.MarkSent
	}

	eventID, err := s.ResolveEventID(in.EventID, in.EventTitle)
	if err != nil {
		return nil, err
	}

	status := models.StatusSent
	if !markSent {
		status = models.StatusDraft // tersimpan sebagai notification "pending"
	}

	var result DispatchResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		res, derr := s.fanOut(tx, eventID, in.Title, in.Message, senderID, status)
		if derr != nil {
			return derr
		}
		result = *res
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// ListAnnouncements mengembalikan proyeksi announcement hasil agregasi
// notifications in-app, di-group per (event, title, message). Status agregat
// adalah severity tertinggi anggota group (sent > scheduled > draft).
func (s *AnnouncementService) ListAnnouncements() ([]models.AnnouncementView, error) {
	type row struct {
		EventID     *uint
		EventTitle  *string
		Title       string
		Message     string
		Severity    int
		Recipients  int64
		CreatedAt   time.Time
		ScheduledAt *time.Time
		SentAt      *time.Time
	}

	var rows []row
	err := s.db.Table("notifications").
		Select(`notifications.event_id AS event_id,
			events.title AS event_title,
			notifications.title AS title,
			notifications.message AS message,
			MAX(CASE notifications.status WHEN 'sent' THEN 2 WHEN 'scheduled' THEN 1 ELSE 0 END) AS severity,
			COUNT(*) AS recipients,
			MIN(notifications.created_at) AS created_at,
			MAX(notifications.scheduled_at) AS scheduled_at,
			MAX(notifications.sent_at) AS sent_at`).
		Joins("LEFT JOIN events ON events.id = notifications.event_id").
		Where("notifications.type = ?", models.NotificationTypeInApp).
		Group("notifications.event_id, events.title, notifications.title, notifications.message").
		Order("MIN(notifications.created_at) DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	views := make([]models.AnnouncementView, 0, len(rows))
	for _, r := range rows {
		status := models.StatusDraft
		switch r.Severity {
		case 2:
			status = models.StatusSent
		case 1:
			status = models.StatusScheduled
		}

		view := models.AnnouncementView{
			EventID:     r.EventID,
			Title:       r.Title,
			Message:     r.Message,
			Status:      status.String(),
			Recipients:  r.Recipients,
			CreatedAt:   r.CreatedAt,
			ScheduledAt: r.ScheduledAt,
			SentAt:      r.SentAt,
		}
		if r.EventTitle != nil {
			view.EventTitle = *r.EventTitle
		}
		views = append(views, view)
	}

	return views, nil
}

// MarkRead menandai satu notification milik user sebagai sudah dibaca.
// Idempotent: menandai yang sudah terbaca tetap sukses.
func (s *AnnouncementService) MarkRead(notifID uint, userID uint) error {
	var notif models.Notification
	if err := s.db.First(&notif, notifID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewNotFoundError("notification %d not found", notifID)
		}
		return err
	}

	if notif.UserID != userID {
		return utils.NewForbiddenError("notification %d does not belong to you", notifID)
	}

	if notif.IsRead {
		return nil
	}

	return s.db.Model(&notif).Update("is_read", true).Error
}

// ClearAnnouncements menghapus semua row announcement (operasi admin).
func (s *AnnouncementService) ClearAnnouncements() (int64, error) {
	res := s.db.Where("1 = 1").Delete(&models.Announcement{})
	return res.RowsAffected, res.Error
}

// ClearNotifications menghapus semua notification (operasi admin).
func (s *AnnouncementService) ClearNotifications() (int64, error) {
	res := s.db.Where("1 = 1").Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

// ResolveEventID mencari event berdasarkan id (prioritas) atau judul persis.
// Judul yang berupa angka dianggap id. Mengembalikan nil jika tidak ketemu:
// fan-out ke event yang tak dikenal berarti recipient set kosong, bukan error.
func (s *AnnouncementService) ResolveEventID(id *uint, title string) (*uint, error) {
	return resolveEventID(s.db, id, title)
}

func resolveEventID(tx *gorm.DB, id *uint, title string) (*uint, error) {
	if id != nil {
		var event models.Event
		if err := tx.First(&event, *id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return &event.ID, nil
	}

	if title == "" {
		return nil, nil
	}

	var event models.Event
	err := tx.Where("title = ?", title).First(&event).Error
	if err == nil {
		return &event.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Fallback: judul yang terlihat seperti angka dicoba sebagai id
	if n, perr := strconv.ParseUint(title, 10, 32); perr == nil {
		eid := uint(n)
		return resolveEventID(tx, &eid, "")
	}

	return nil, nil
}

// GetRecipientsForEvent mengembalikan user id unik yang punya registrasi
// apa pun untuk event tersebut. eventID nil -> kosong.
func (s *AnnouncementService) GetRecipientsForEvent(eventID *uint) ([]uint, error) {
	return recipientsForEvent(s.db, eventID)
}

func recipientsForEvent(tx *gorm.DB, eventID *uint) ([]uint, error) {
	if eventID == nil {
		return nil, nil
	}

	var userIDs []uint
	err := tx.Model(&models.Registration{}).
		Distinct("user_id").
		Where("event_id = ?", *eventID).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, utils.NewDispatchError(err, "failed to resolve recipients for event %d", *eventID)
	}
	return userIDs, nil
}

// fanOut membuat satu notification per penerima. Penerima yang sudah punya
// notification dari dispatch yang sama (event+title+message) dilewati supaya
// pengiriman ulang tidak menduplikasi baris.
func (s *AnnouncementService) fanOut(tx *gorm.DB, eventID *uint, title, message string, senderID uint, status models.LifecycleStatus) (*DispatchResult, error) {
	recipients, err := recipientsForEvent(tx, eventID)
	if err != nil {
		return nil, err
	}

	result := DispatchResult{Requested: len(recipients)}
	if len(recipients) == 0 {
		return &result, nil
	}

	// Cek penerima mana yang sudah pernah menerima dispatch ini
	existing := make([]uint, 0)
	q := tx.Model(&models.Notification{}).
		Where("title = ? AND message = ? AND type = ?", title, message, models.NotificationTypeInApp)
	if eventID != nil {
		q = q.Where("event_id = ?", *eventID)
	} else {
		q = q.Where("event_id IS NULL")
	}
	if err := q.Pluck("user_id", &existing).Error; err != nil {
		return nil, utils.NewDispatchError(err, "failed to check existing notifications")
	}

	seen := make(map[uint]bool, len(existing))
	for _, id := range existing {
		seen[id] = true
	}

	now := time.Now()

	// Baris pending/scheduled dari dispatch yang sama dipromosikan ke sent,
	// bukan dilewati: penerima yang sudah punya row tetap mencapai delivery.
	if status == models.StatusSent && len(existing) > 0 {
		promote := tx.Model(&models.Notification{}).
			Where("title = ? AND message = ? AND type = ? AND status <> ?",
				title, message, models.NotificationTypeInApp, models.StatusSent.NotificationValue())
		if eventID != nil {
			promote = promote.Where("event_id = ?", *eventID)
		} else {
			promote = promote.Where("event_id IS NULL")
		}
		if err := promote.Updates(map[string]interface{}{
			"status":   models.StatusSent.NotificationValue(),
			"sent_at":  now,
			"attempts": gorm.Expr("attempts + 1"),
		}).Error; err != nil {
			return nil, utils.NewDispatchError(err, "failed to promote pending notifications")
		}
	}

	notifs := make([]models.Notification, 0, len(recipients))
	for _, userID := range recipients {
		if seen[userID] {
			continue
		}

		notif := models.Notification{
			UserID:    userID,
			EventID:   eventID,
			Type:      models.NotificationTypeInApp,
			Title:     title,
			Message:   message,
			Status:    status.NotificationValue(),
			CreatedBy: &senderID,
		}
		if status == models.StatusSent {
			notif.SentAt = &now
			notif.Attempts = 1
		}
		notifs = append(notifs, notif)
	}

	if len(notifs) > 0 {
		if err := tx.Create(&notifs).Error; err != nil {
			return nil, utils.NewDispatchError(err, "failed to insert notifications")
		}
	}

	result.Inserted = len(notifs)
	return &result, nil
}

// findOrMaterialize mencari announcement by id; jika tidak ada tapi id cocok
// dengan notification lama, row announcement baru dibuat dari field
// notification itu (jalur upgrade data lama). Berjalan di dalam transaksi
// caller sehingga materialisasi ikut ter-rollback bila update-nya gagal.
func (s *AnnouncementService) findOrMaterialize(tx *gorm.DB, id uint, updaterID uint) (*models.Announcement, LookupResult, error) {
	var ann models.Announcement
	err := tx.First(&ann, id).Error
	if err == nil {
		return &ann, LookupFound, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, LookupMissing, err
	}

	var notif models.Notification
	err = tx.First(&notif, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, LookupMissing, nil
		}
		return nil, LookupMissing, err
	}

	status, serr := models.ParseLifecycleStatus(notif.Status)
	if serr != nil {
		status = models.StatusDraft
	}

	createdBy := updaterID
	if notif.CreatedBy != nil {
		createdBy = *notif.CreatedBy
	}

	title := notif.Title
	if title == "" {
		title = notif.Message
	}

	materialized := models.Announcement{
		EventID:     notif.EventID,
		Title:       title,
		Message:     notif.Message,
		Status:      status.AnnouncementValue(),
		ScheduledAt: notif.ScheduledAt,
		SentAt:      notif.SentAt,
		CreatedBy:   createdBy,
	}
	if err := tx.Create(&materialized).Error; err != nil {
		return nil, LookupMissing, err
	}

	log.Printf("Materialized announcement %d from legacy notification %d", materialized.ID, notif.ID)
	return &materialized, LookupMaterialized, nil
}

// parseScheduleTime menerima RFC3339 atau "YYYY-MM-DD HH:MM:SS" dan menolak
// waktu lampau.
func parseScheduleTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, utils.NewValidationError("scheduled_at is required for scheduled status")
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		t, err = time.ParseInLocation("2006-01-02 15:04:05", raw, time.Local)
	}
	if err != nil {
		return nil, utils.NewValidationError("invalid scheduled_at %q", raw)
	}

	if t.Before(time.Now().Add(-time.Minute)) {
		return nil, utils.NewValidationError("scheduled_at must not be in the past")
	}

	return &t, nil
}
