package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLifecycleStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want LifecycleStatus
	}{
		{"", StatusDraft},
		{"draft", StatusDraft},
		{"Draft", StatusDraft},
		{"DRAFT", StatusDraft},
		{"pending", StatusDraft}, // vocabulary tabel notifications
		{"scheduled", StatusScheduled},
		{"Scheduled", StatusScheduled},
		{"sent", StatusSent},
		{"Sent", StatusSent},
		{"  sent  ", StatusSent},
	}

	for _, tc := range cases {
		got, err := ParseLifecycleStatus(tc.raw)
		assert.NoError(t, err, "raw=%q", tc.raw)
		assert.Equal(t, tc.want, got, "raw=%q", tc.raw)
	}

	_, err := ParseLifecycleStatus("bogus")
	assert.Error(t, err)
}

func TestStatusTableMappings(t *testing.T) {
	// Dua tabel punya vocabulary berbeda untuk status yang sama
	assert.Equal(t, "Draft", StatusDraft.AnnouncementValue())
	assert.Equal(t, "Scheduled", StatusScheduled.AnnouncementValue())
	assert.Equal(t, "Sent", StatusSent.AnnouncementValue())

	assert.Equal(t, "pending", StatusDraft.NotificationValue())
	assert.Equal(t, "scheduled", StatusScheduled.NotificationValue())
	assert.Equal(t, "sent", StatusSent.NotificationValue())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "draft", StatusDraft.String())
	assert.Equal(t, "scheduled", StatusScheduled.String())
	assert.Equal(t, "sent", StatusSent.String())
}
