// Package form turns user input into a valid reminder record.
package form

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dosewatch/internal/models"
)

// ErrLastTimeSlot is returned when removing the only remaining time slot.
var ErrLastTimeSlot = errors.New("at least one time slot is required")

// DefaultTimeSlot is the initial slot proposed for a new reminder.
const DefaultTimeSlot = "09:00"

// Form collects draft input for a reminder. EditingID is empty when creating.
type Form struct {
	EditingID    string
	MedicineName string
	Dosage       string
	Frequency    models.Frequency
	Times        []string
	StartDate    string
	EndDate      string
	Notes        string

	now func() time.Time
}

// New returns a blank form with today's date and one default time slot.
func New() *Form {
	f := &Form{now: time.Now}
	f.reset()
	return f
}

// NewForEdit returns a form pre-filled from an existing reminder.
func NewForEdit(r models.Reminder) *Form {
	return &Form{
		EditingID:    r.ID,
		MedicineName: r.MedicineName,
		Dosage:       r.Dosage,
		Frequency:    r.Frequency,
		Times:        append([]string(nil), r.Times...),
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		Notes:        r.Notes,
		now:          time.Now,
	}
}

func (f *Form) reset() {
	f.EditingID = ""
	f.MedicineName = ""
	f.Dosage = ""
	f.Frequency = models.FrequencyDaily
	f.Times = []string{DefaultTimeSlot}
	f.StartDate = f.now().Format(models.DateLayout)
	f.EndDate = ""
	f.Notes = ""
}

// SetTime replaces the slot at index i and keeps the list sorted.
func (f *Form) SetTime(i int, value string) error {
	if i < 0 || i >= len(f.Times) {
		return fmt.Errorf("time slot index %d out of range", i)
	}
	if _, err := time.Parse(models.TimeLayout, value); err != nil {
		return fmt.Errorf("invalid time %q: %w", value, err)
	}
	f.Times[i] = value
	f.sortTimes()
	return nil
}

// AddTimeSlot appends a proposed slot one hour after the current last slot,
// wrapping past midnight, then re-sorts.
func (f *Form) AddTimeSlot() {
	if len(f.Times) == 0 {
		f.Times = []string{DefaultTimeSlot}
		return
	}

	last := f.Times[len(f.Times)-1]
	parsed, err := time.Parse(models.TimeLayout, last)
	if err != nil {
		f.Times = append(f.Times, DefaultTimeSlot)
		f.sortTimes()
		return
	}

	hour := parsed.Hour() + 1
	if hour >= 24 {
		hour -= 24
	}
	f.Times = append(f.Times, fmt.Sprintf("%02d:%02d", hour, parsed.Minute()))
	f.sortTimes()
}

// RemoveTimeSlot deletes the slot at index i. The last remaining slot cannot
// be removed.
func (f *Form) RemoveTimeSlot(i int) error {
	if len(f.Times) <= 1 {
		return ErrLastTimeSlot
	}
	if i < 0 || i >= len(f.Times) {
		return fmt.Errorf("time slot index %d out of range", i)
	}
	f.Times = append(f.Times[:i], f.Times[i+1:]...)
	return nil
}

func (f *Form) sortTimes() {
	r := models.Reminder{Times: f.Times}
	r.NormalizeTimes()
	f.Times = r.Times
}

// Validate checks the required fields. End date ordering and the slot count
// implied by the frequency label are intentionally not checked.
func (f *Form) Validate() error {
	if strings.TrimSpace(f.MedicineName) == "" {
		return fmt.Errorf("medicine name is required")
	}
	if !f.Frequency.Valid() {
		return fmt.Errorf("unknown frequency %q", f.Frequency)
	}
	if len(f.Times) == 0 {
		return fmt.Errorf("at least one reminder time is required")
	}
	if f.StartDate == "" {
		return fmt.Errorf("start date is required")
	}
	return nil
}

// Build produces the reminder record. Creating mints a new time-ordered ID;
// editing reuses the existing one. The result is always active, matching the
// original behavior of reactivating a paused reminder on edit.
func (f *Form) Build() (models.Reminder, error) {
	if f.StartDate == "" {
		f.StartDate = f.now().Format(models.DateLayout)
	}
	if err := f.Validate(); err != nil {
		return models.Reminder{}, err
	}

	id := f.EditingID
	if id == "" {
		v7, err := uuid.NewV7()
		if err != nil {
			return models.Reminder{}, fmt.Errorf("mint reminder id: %w", err)
		}
		id = v7.String()
	}

	r := models.Reminder{
		ID:           id,
		MedicineName: strings.TrimSpace(f.MedicineName),
		Dosage:       strings.TrimSpace(f.Dosage),
		Frequency:    f.Frequency,
		Times:        append([]string(nil), f.Times...),
		StartDate:    f.StartDate,
		EndDate:      f.EndDate,
		Notes:        strings.TrimSpace(f.Notes),
		IsActive:     true,
	}
	r.NormalizeTimes()

	if err := r.Validate(); err != nil {
		return models.Reminder{}, err
	}
	return r, nil
}
