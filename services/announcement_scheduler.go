package services

import (
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/evenzahq/evenza-backend/models"
)

// SweepMetrics menyimpan metrik scheduler announcement
type SweepMetrics struct {
	Ticks          int64
	Promoted       int64
	FailedDispatch int64
}

// AnnouncementScheduler mempromosikan announcement Scheduled yang sudah
// jatuh tempo menjadi Sent lewat satu timer per proses. Tick tidak pernah
// overlap: sweep yang lambat hanya menunda tick berikutnya.
type AnnouncementScheduler struct {
	DB       *gorm.DB
	StopChan chan struct{}
	Interval time.Duration

	service *AnnouncementService
	metrics SweepMetrics
	mutex   sync.Mutex
}

func NewAnnouncementScheduler(db *gorm.DB) *AnnouncementScheduler {
	return &AnnouncementScheduler{
		DB:       db,
		StopChan: make(chan struct{}),
		Interval: 60 * time.Second,
		service:  NewAnnouncementService(db),
	}
}

func (as *AnnouncementScheduler) Start() {
	go func() {
		ticker := time.NewTicker(as.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				as.Sweep()
			case <-as.StopChan:
				return
			}
		}
	}()
	log.Println("Announcement scheduler started")
}

func (as *AnnouncementScheduler) Stop() {
	close(as.StopChan)
}

// Sweep menjalankan satu kali scan: semua announcement Scheduled dengan
// scheduled_at <= now dipromosikan ke Sent + fan-out. Tiap announcement
// diproses independen; kegagalan satu item dilog dan tidak menghentikan
// sisanya — item gagal tetap Scheduled dan dicoba lagi di tick berikutnya.
func (as *AnnouncementScheduler) Sweep() {
	as.mutex.Lock()
	as.metrics.Ticks++
	as.mutex.Unlock()

	var due []models.Announcement
	err := as.DB.
		Where("status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?",
			models.StatusScheduled.AnnouncementValue(), time.Now()).
		Find(&due).Error
	if err != nil {
		log.Printf("Error fetching due announcements: %v", err)
		return
	}

	if len(due) == 0 {
		return
	}

	log.Printf("Found %d due announcements", len(due))

	for i := range due {
		if err := as.dispatchDue(&due[i]); err != nil {
			log.Printf("Error dispatching announcement %d: %v", due[i].ID, err)
			as.mutex.Lock()
			as.metrics.FailedDispatch++
			as.mutex.Unlock()
			continue
		}

		as.mutex.Lock()
		as.metrics.Promoted++
		as.mutex.Unlock()
	}
}

// dispatchDue memproses satu announcement jatuh tempo dalam satu transaksi:
// fan-out + update status. Rollback membuat item tetap Scheduled.
func (as *AnnouncementScheduler) dispatchDue(ann *models.Announcement) error {
	return as.DB.Transaction(func(tx *gorm.DB) error {
		res, err := as.service.fanOut(tx, ann.EventID, ann.Title, ann.Message, ann.CreatedBy, models.StatusSent)
		if err != nil {
			return err
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":  models.StatusSent.AnnouncementValue(),
			"sent_at": now,
		}
		if err := tx.Model(&models.Announcement{}).Where("id = ?", ann.ID).Updates(updates).Error; err != nil {
			return err
		}

		log.Printf("Promoted announcement %d to sent (%d/%d recipients)", ann.ID, res.Inserted, res.Requested)
		return nil
	})
}

// GetMetrics mengembalikan metrik sweep saat ini
func (as *AnnouncementScheduler) GetMetrics() SweepMetrics {
	as.mutex.Lock()
	defer as.mutex.Unlock()
	return as.metrics
}
