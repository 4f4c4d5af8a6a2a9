// Package scheduler arms one timer per reminder time slot, delivers a
// notification when it fires, and re-arms the slot for the next day. Pausing
// or deleting a reminder cancels its timers.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"dosewatch/internal/metrics"
	"dosewatch/internal/models"
)

// Sink receives a due reminder slot.
type Sink interface {
	Deliver(ctx context.Context, r models.Reminder, slot string)
}

// Scheduler manages the armed timers for the reminder collection.
type Scheduler struct {
	sink     Sink
	location *time.Location
	logger   *zerolog.Logger

	mu     sync.Mutex
	timers map[string]map[string]*time.Timer // reminder ID -> slot -> timer

	// gen invalidates in-flight fires: Arm and Cancel bump the reminder's
	// generation, and a fire whose captured generation is stale must not
	// deliver or re-arm. Entries are kept after Cancel so a later Arm can
	// never reissue a generation an old timer still holds.
	gen map[string]uint64

	now       func() time.Time
	afterFunc func(d time.Duration, f func()) *time.Timer
}

// New creates a scheduler delivering to sink in the given location.
func New(sink Sink, location *time.Location, logger *zerolog.Logger) *Scheduler {
	if location == nil {
		location = time.Local
	}
	return &Scheduler{
		sink:      sink,
		location:  location,
		logger:    logger,
		timers:    make(map[string]map[string]*time.Timer),
		gen:       make(map[string]uint64),
		now:       time.Now,
		afterFunc: time.AfterFunc,
	}
}

// NextOccurrence computes the next future instant for an HH:MM slot: today at
// that time, or tomorrow if that instant is not strictly in the future.
func NextOccurrence(now time.Time, slot string) (time.Time, error) {
	parsed, err := time.Parse(models.TimeLayout, slot)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse slot %q: %w", slot, err)
	}
	next := time.Date(now.Year(), now.Month(), now.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next, nil
}

// Arm replaces any armed timers for the reminder with a fresh set, one per
// time slot. Paused reminders and slots past the end date are not armed.
func (s *Scheduler) Arm(ctx context.Context, r models.Reminder) {
	s.Cancel(r.ID)

	if !r.IsActive {
		s.logger.Debug().Str("id", r.ID).Msg("reminder paused, not arming")
		return
	}

	r = r.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, slot := range r.Times {
		s.armSlotLocked(ctx, r, slot)
	}
	s.updateGaugeLocked()
}

// armSlotLocked arms one slot. Caller holds s.mu.
func (s *Scheduler) armSlotLocked(ctx context.Context, r models.Reminder, slot string) {
	now := s.now().In(s.location)
	next, err := NextOccurrence(now, slot)
	if err != nil {
		s.logger.Warn().Err(err).Str("id", r.ID).Msg("skipping unparsable time slot")
		return
	}
	if r.EndedBefore(next) {
		s.logger.Debug().Str("id", r.ID).Str("slot", slot).
			Msg("reminder course ended, not arming slot")
		return
	}

	delay := next.Sub(now)
	gen := s.gen[r.ID]
	timer := s.afterFunc(delay, func() {
		s.fire(ctx, r, slot, gen)
	})

	if s.timers[r.ID] == nil {
		s.timers[r.ID] = make(map[string]*time.Timer)
	}
	s.timers[r.ID][slot] = timer

	s.logger.Debug().Str("id", r.ID).Str("medicine", r.MedicineName).
		Str("slot", slot).Time("next", next).Msg("armed notification timer")
}

// fire delivers the notification and re-arms the slot for the next day. A
// stale generation means the reminder was cancelled or re-armed after this
// timer was set; delivery is long enough (retry backoff) for that to happen
// mid-flight, so the generation is rechecked before the re-arm too.
func (s *Scheduler) fire(ctx context.Context, r models.Reminder, slot string, gen uint64) {
	s.mu.Lock()
	if s.gen[r.ID] != gen {
		s.mu.Unlock()
		return
	}
	delete(s.timers[r.ID], slot)
	s.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	s.sink.Deliver(ctx, r, slot)

	s.mu.Lock()
	if s.gen[r.ID] == gen {
		s.armSlotLocked(ctx, r, slot)
		s.updateGaugeLocked()
	}
	s.mu.Unlock()
}

// Cancel stops and removes all timers for a reminder and invalidates any
// fire still in flight.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked(id)
	s.updateGaugeLocked()
}

func (s *Scheduler) cancelLocked(id string) {
	s.gen[id]++
	for slot, timer := range s.timers[id] {
		timer.Stop()
		delete(s.timers[id], slot)
	}
	delete(s.timers, id)
}

// RearmAll recomputes timers for the whole collection, dropping timers of
// reminders no longer present. Used at startup and when the store file
// changes on disk.
func (s *Scheduler) RearmAll(ctx context.Context, reminders []models.Reminder) {
	s.mu.Lock()
	for id := range s.timers {
		s.cancelLocked(id)
	}
	s.mu.Unlock()

	armed := 0
	for _, r := range reminders {
		s.Arm(ctx, r)
		if r.IsActive {
			armed++
		}
	}

	s.logger.Info().Int("reminders", len(reminders)).Int("active", armed).
		Msg("rearmed notification timers")
}

// Stop cancels every armed timer.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.timers {
		s.cancelLocked(id)
	}
	s.updateGaugeLocked()
	s.logger.Info().Msg("scheduler stopped")
}

// ArmedCount returns the number of currently armed timers.
func (s *Scheduler) ArmedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armedCountLocked()
}

func (s *Scheduler) armedCountLocked() int {
	n := 0
	for _, slots := range s.timers {
		n += len(slots)
	}
	return n
}

func (s *Scheduler) updateGaugeLocked() {
	metrics.SetTimersArmed(s.armedCountLocked())
}
