package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for StartDate and EndDate.
const DateLayout = "2006-01-02"

// TimeLayout is the time-of-day format used for entries in Times.
const TimeLayout = "15:04"

// Frequency is a display label describing how often a medicine is taken.
// It does not drive scheduling; the Times slots do.
type Frequency string

const (
	FrequencyDaily      Frequency = "daily"
	FrequencyTwiceDaily Frequency = "twice-daily"
	FrequencyThreeTimes Frequency = "three-times"
	FrequencyWeekly     Frequency = "weekly"
)

// Frequencies lists the accepted frequency labels in display order.
var Frequencies = []Frequency{
	FrequencyDaily,
	FrequencyTwiceDaily,
	FrequencyThreeTimes,
	FrequencyWeekly,
}

// Valid reports whether f is one of the accepted labels.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyTwiceDaily, FrequencyThreeTimes, FrequencyWeekly:
		return true
	default:
		return false
	}
}

// DisplayText returns the human-readable label for a frequency.
func (f Frequency) DisplayText() string {
	switch f {
	case FrequencyDaily:
		return "Once a Day"
	case FrequencyTwiceDaily:
		return "Twice a Day (BID)"
	case FrequencyThreeTimes:
		return "Three Times a Day (TID)"
	case FrequencyWeekly:
		return "Once a Week"
	default:
		return "Custom"
	}
}

// Reminder is a persisted medication reminder. The JSON field names are the
// stored layout and must not change.
type Reminder struct {
	ID           string    `json:"id"`
	MedicineName string    `json:"medicineName"`
	Dosage       string    `json:"dosage"`
	Frequency    Frequency `json:"frequency"`
	Times        []string  `json:"times"`
	StartDate    string    `json:"startDate"`
	EndDate      string    `json:"endDate"`
	Notes        string    `json:"notes"`
	IsActive     bool      `json:"isActive"`
}

// NormalizeTimes sorts the time slots ascending. Zero-padded HH:MM strings
// sort lexicographically in chronological order.
func (r *Reminder) NormalizeTimes() {
	sort.Strings(r.Times)
}

// Validate checks the invariants a stored reminder must hold.
func (r *Reminder) Validate() error {
	if strings.TrimSpace(r.MedicineName) == "" {
		return fmt.Errorf("medicine name is required")
	}
	if !r.Frequency.Valid() {
		return fmt.Errorf("unknown frequency %q", r.Frequency)
	}
	if len(r.Times) == 0 {
		return fmt.Errorf("at least one reminder time is required")
	}
	for _, ts := range r.Times {
		if _, err := time.Parse(TimeLayout, ts); err != nil {
			return fmt.Errorf("invalid time %q: %w", ts, err)
		}
	}
	if r.StartDate == "" {
		return fmt.Errorf("start date is required")
	}
	if _, err := time.Parse(DateLayout, r.StartDate); err != nil {
		return fmt.Errorf("invalid start date %q: %w", r.StartDate, err)
	}
	if r.EndDate != "" {
		if _, err := time.Parse(DateLayout, r.EndDate); err != nil {
			return fmt.Errorf("invalid end date %q: %w", r.EndDate, err)
		}
	}
	return nil
}

// IsOverdue reports whether the reminder's course has ended: an end date is
// set, it is strictly before today, and the reminder is still active.
func (r *Reminder) IsOverdue(now time.Time) bool {
	if r.EndDate == "" || !r.IsActive {
		return false
	}
	return r.EndDate < now.Format(DateLayout)
}

// EndedBefore reports whether the reminder's end date, if any, falls strictly
// before the given calendar date.
func (r *Reminder) EndedBefore(date time.Time) bool {
	if r.EndDate == "" {
		return false
	}
	return r.EndDate < date.Format(DateLayout)
}

// Clone returns a deep copy so callers can mutate without aliasing the
// stored collection.
func (r Reminder) Clone() Reminder {
	out := r
	out.Times = append([]string(nil), r.Times...)
	return out
}

// CloneAll deep-copies a collection.
func CloneAll(rs []Reminder) []Reminder {
	out := make([]Reminder, len(rs))
	for i := range rs {
		out[i] = rs[i].Clone()
	}
	return out
}
