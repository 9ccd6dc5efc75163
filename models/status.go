package models

import (
	"fmt"
	"strings"
)

// LifecycleStatus adalah status internal untuk announcement dan notification.
// Tabel announcements menyimpan "Draft/Scheduled/Sent", tabel notifications
// menyimpan "pending/scheduled/sent" — dua vocabulary lama yang dipetakan
// ke satu enum di sini.
type LifecycleStatus int

const (
	StatusDraft LifecycleStatus = iota
	StatusScheduled
	StatusSent
)

func (s LifecycleStatus) String() string {
	switch s {
	case StatusScheduled:
		return "scheduled"
	case StatusSent:
		return "sent"
	default:
		return "draft"
	}
}

// AnnouncementValue mengembalikan representasi kolom announcements.status.
func (s LifecycleStatus) AnnouncementValue() string {
	switch s {
	case StatusScheduled:
		return "Scheduled"
	case StatusSent:
		return "Sent"
	default:
		return "Draft"
	}
}

// NotificationValue mengembalikan representasi kolom notifications.status.
func (s LifecycleStatus) NotificationValue() string {
	switch s {
	case StatusScheduled:
		return "scheduled"
	case StatusSent:
		return "sent"
	default:
		return "pending"
	}
}

// ParseLifecycleStatus menerima vocabulary dari kedua tabel maupun input
// request ("Draft"/"draft"/"" semuanya menjadi StatusDraft).
func ParseLifecycleStatus(raw string) (LifecycleStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "draft", "pending":
		return StatusDraft, nil
	case "scheduled":
		return StatusScheduled, nil
	case "sent":
		return StatusSent, nil
	}
	return StatusDraft, fmt.Errorf("unknown status %q", raw)
}
