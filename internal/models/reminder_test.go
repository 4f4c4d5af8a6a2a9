package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminder_NormalizeTimes(t *testing.T) {
	r := Reminder{Times: []string{"20:00", "08:00", "12:30"}}
	r.NormalizeTimes()
	assert.Equal(t, []string{"08:00", "12:30", "20:00"}, r.Times)
}

func TestReminder_Validate(t *testing.T) {
	valid := Reminder{
		ID:           "r1",
		MedicineName: "Metformin",
		Frequency:    FrequencyTwiceDaily,
		Times:        []string{"08:00", "20:00"},
		StartDate:    "2026-01-15",
		IsActive:     true,
	}
	require.NoError(t, valid.Validate())

	t.Run("missing name", func(t *testing.T) {
		r := valid
		r.MedicineName = "   "
		assert.Error(t, r.Validate())
	})

	t.Run("unknown frequency", func(t *testing.T) {
		r := valid
		r.Frequency = "fortnightly"
		assert.Error(t, r.Validate())
	})

	t.Run("no times", func(t *testing.T) {
		r := valid
		r.Times = nil
		assert.Error(t, r.Validate())
	})

	t.Run("bad time format", func(t *testing.T) {
		r := valid
		r.Times = []string{"8am"}
		assert.Error(t, r.Validate())
	})

	t.Run("missing start date", func(t *testing.T) {
		r := valid
		r.StartDate = ""
		assert.Error(t, r.Validate())
	})

	t.Run("optional end date", func(t *testing.T) {
		r := valid
		r.EndDate = "2026-02-15"
		assert.NoError(t, r.Validate())

		r.EndDate = "soon"
		assert.Error(t, r.Validate())
	})
}

func TestReminder_IsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("past end date and active", func(t *testing.T) {
		r := Reminder{EndDate: "2020-01-01", IsActive: true}
		assert.True(t, r.IsOverdue(now))
	})

	t.Run("paused is never overdue", func(t *testing.T) {
		r := Reminder{EndDate: "2020-01-01", IsActive: false}
		assert.False(t, r.IsOverdue(now))
	})

	t.Run("open ended is never overdue", func(t *testing.T) {
		r := Reminder{IsActive: true, Times: []string{"09:00"}}
		assert.False(t, r.IsOverdue(now))
	})

	t.Run("end date today is not overdue", func(t *testing.T) {
		r := Reminder{EndDate: "2026-03-10", IsActive: true}
		assert.False(t, r.IsOverdue(now))
	})
}

func TestFrequency_DisplayText(t *testing.T) {
	assert.Equal(t, "Once a Day", FrequencyDaily.DisplayText())
	assert.Equal(t, "Twice a Day (BID)", FrequencyTwiceDaily.DisplayText())
	assert.Equal(t, "Three Times a Day (TID)", FrequencyThreeTimes.DisplayText())
	assert.Equal(t, "Once a Week", FrequencyWeekly.DisplayText())
	assert.Equal(t, "Custom", Frequency("monthly").DisplayText())
}

func TestReminder_Clone(t *testing.T) {
	r := Reminder{ID: "r1", Times: []string{"08:00"}}
	c := r.Clone()
	c.Times[0] = "09:00"
	assert.Equal(t, "08:00", r.Times[0])
}
