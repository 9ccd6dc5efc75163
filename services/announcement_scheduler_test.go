package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/evenzahq/evenza-backend/models"
)

func TestSweepPromotesOnlyDueAnnouncements(t *testing.T) {
	db := setupServiceDB(t)
	event, _ := seedEventWithRegistrants(t, db, 2)

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(24 * time.Hour)

	// Tiga jatuh tempo, satu belum
	due := []models.Announcement{
		{EventID: &event.ID, Title: "Due 1", Message: "m1", Status: "Scheduled", ScheduledAt: &past, CreatedBy: 1},
		{EventID: &event.ID, Title: "Due 2", Message: "m2", Status: "Scheduled", ScheduledAt: &past, CreatedBy: 1},
		{EventID: &event.ID, Title: "Due 3", Message: "m3", Status: "Scheduled", ScheduledAt: &past, CreatedBy: 1},
	}
	notDue := models.Announcement{
		EventID: &event.ID, Title: "Future", Message: "mf", Status: "Scheduled", ScheduledAt: &future, CreatedBy: 1,
	}
	for i := range due {
		assert.NoError(t, db.Create(&due[i]).Error)
	}
	assert.NoError(t, db.Create(&notDue).Error)

	scheduler := NewAnnouncementScheduler(db)
	scheduler.Sweep()

	var sentCount int64
	db.Model(&models.Announcement{}).Where("status = ?", "Sent").Count(&sentCount)
	assert.Equal(t, int64(3), sentCount)

	var stillScheduled models.Announcement
	assert.NoError(t, db.First(&stillScheduled, notDue.ID).Error)
	assert.Equal(t, "Scheduled", stillScheduled.Status)
	assert.Nil(t, stillScheduled.SentAt)

	// Fan-out: 3 announcement x 2 penerima
	var notifCount int64
	db.Model(&models.Notification{}).Count(&notifCount)
	assert.Equal(t, int64(6), notifCount)

	// Semua yang terkirim punya sent_at
	var sent []models.Announcement
	assert.NoError(t, db.Where("status = ?", "Sent").Find(&sent).Error)
	for _, a := range sent {
		assert.NotNil(t, a.SentAt)
	}

	metrics := scheduler.GetMetrics()
	assert.Equal(t, int64(1), metrics.Ticks)
	assert.Equal(t, int64(3), metrics.Promoted)
	assert.Equal(t, int64(0), metrics.FailedDispatch)
}

func TestSweepEmptyQueueIsNoOp(t *testing.T) {
	db := setupServiceDB(t)

	scheduler := NewAnnouncementScheduler(db)
	scheduler.Sweep()

	metrics := scheduler.GetMetrics()
	assert.Equal(t, int64(1), metrics.Ticks)
	assert.Equal(t, int64(0), metrics.Promoted)
}

func TestSweepRetriesOnNextTick(t *testing.T) {
	db := setupServiceDB(t)
	event, _ := seedEventWithRegistrants(t, db, 1)

	past := time.Now().Add(-time.Minute)
	ann := models.Announcement{
		EventID: &event.ID, Title: "Retry me", Message: "m", Status: "Scheduled", ScheduledAt: &past, CreatedBy: 1,
	}
	assert.NoError(t, db.Create(&ann).Error)

	scheduler := NewAnnouncementScheduler(db)

	// Tick pertama mengirim; item sudah Sent tidak terpilih lagi di tick kedua
	scheduler.Sweep()
	scheduler.Sweep()

	var notifCount int64
	db.Model(&models.Notification{}).Count(&notifCount)
	assert.Equal(t, int64(1), notifCount)

	metrics := scheduler.GetMetrics()
	assert.Equal(t, int64(2), metrics.Ticks)
	assert.Equal(t, int64(1), metrics.Promoted)
}

func TestSweepFailedItemDoesNotBlockOthers(t *testing.T) {
	db := setupServiceDB(t)
	event, _ := seedEventWithRegistrants(t, db, 1)

	// Trigger yang menggagalkan insert notification untuk satu judul,
	// mensimulasikan kegagalan dispatch satu item saja
	assert.NoError(t, db.Exec(`CREATE TRIGGER reject_broken_title BEFORE INSERT ON notifications
		WHEN NEW.title = 'Broken' BEGIN SELECT RAISE(ABORT, 'insert rejected'); END`).Error)

	past := time.Now().Add(-time.Minute)
	anns := []models.Announcement{
		{EventID: &event.ID, Title: "Fine 1", Message: "m", Status: "Scheduled", ScheduledAt: &past, CreatedBy: 1},
		{EventID: &event.ID, Title: "Broken", Message: "m", Status: "Scheduled", ScheduledAt: &past, CreatedBy: 1},
		{EventID: &event.ID, Title: "Fine 2", Message: "m", Status: "Scheduled", ScheduledAt: &past, CreatedBy: 1},
	}
	for i := range anns {
		assert.NoError(t, db.Create(&anns[i]).Error)
	}

	scheduler := NewAnnouncementScheduler(db)
	scheduler.Sweep()

	// Item lain tetap terkirim
	var sentCount int64
	db.Model(&models.Announcement{}).Where("status = ?", "Sent").Count(&sentCount)
	assert.Equal(t, int64(2), sentCount)

	// Item gagal tetap Scheduled tanpa notification yang tertinggal
	var failed models.Announcement
	assert.NoError(t, db.First(&failed, anns[1].ID).Error)
	assert.Equal(t, "Scheduled", failed.Status)
	assert.Nil(t, failed.SentAt)

	var notifCount int64
	db.Model(&models.Notification{}).Count(&notifCount)
	assert.Equal(t, int64(2), notifCount)

	metrics := scheduler.GetMetrics()
	assert.Equal(t, int64(2), metrics.Promoted)
	assert.Equal(t, int64(1), metrics.FailedDispatch)

	// Setelah penyebab gagalnya hilang, tick berikutnya mengirim ulang
	assert.NoError(t, db.Exec("DROP TRIGGER reject_broken_title").Error)
	scheduler.Sweep()

	assert.NoError(t, db.First(&failed, anns[1].ID).Error)
	assert.Equal(t, "Sent", failed.Status)
	assert.NotNil(t, failed.SentAt)

	metrics = scheduler.GetMetrics()
	assert.Equal(t, int64(3), metrics.Promoted)
	assert.Equal(t, int64(1), metrics.FailedDispatch)
}

func TestSchedulerStartStop(t *testing.T) {
	db := setupServiceDB(t)

	scheduler := NewAnnouncementScheduler(db)
	scheduler.Interval = 10 * time.Millisecond
	scheduler.Start()

	time.Sleep(35 * time.Millisecond)
	scheduler.Stop()

	metrics := scheduler.GetMetrics()
	assert.GreaterOrEqual(t, metrics.Ticks, int64(1))
}
