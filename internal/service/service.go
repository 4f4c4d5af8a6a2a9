// Package service owns the reminder lifecycle: every mutation rewrites the
// whole persisted collection, then arms or cancels notification timers.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"dosewatch/internal/events"
	"dosewatch/internal/form"
	"dosewatch/internal/metrics"
	"dosewatch/internal/models"
	"dosewatch/internal/store"
)

// ErrNotFound is returned when a reminder id is not in the collection.
var ErrNotFound = errors.New("reminder not found")

// Scheduler is the timer surface the service drives.
type Scheduler interface {
	Arm(ctx context.Context, r models.Reminder)
	Cancel(id string)
	RearmAll(ctx context.Context, reminders []models.Reminder)
}

// Service coordinates the store, the scheduler and the event bus.
type Service struct {
	store  store.Store
	sched  Scheduler
	bus    *events.Bus
	logger *zerolog.Logger
	now    func() time.Time
}

// New creates the reminder service.
func New(st store.Store, sched Scheduler, bus *events.Bus, logger *zerolog.Logger) *Service {
	return &Service{
		store:  st,
		sched:  sched,
		bus:    bus,
		logger: logger,
		now:    time.Now,
	}
}

// List returns the persisted collection.
func (s *Service) List(ctx context.Context) ([]models.Reminder, error) {
	return s.store.Load(ctx)
}

// Get returns one reminder by id.
func (s *Service) Get(ctx context.Context, id string) (models.Reminder, error) {
	reminders, err := s.store.Load(ctx)
	if err != nil {
		return models.Reminder{}, err
	}
	for _, r := range reminders {
		if r.ID == id {
			return r, nil
		}
	}
	return models.Reminder{}, ErrNotFound
}

// Submit builds the record from the form and persists it: a new record when
// the form is in create mode, an in-place overwrite when editing. On success
// the record's timers are (re)armed.
func (s *Service) Submit(ctx context.Context, f *form.Form) (models.Reminder, error) {
	editing := f.EditingID != ""

	r, err := f.Build()
	if err != nil {
		return models.Reminder{}, err
	}

	_, err = store.Mutate(ctx, s.store, func(reminders []models.Reminder) ([]models.Reminder, error) {
		if !editing {
			return append(reminders, r), nil
		}
		for i := range reminders {
			if reminders[i].ID == r.ID {
				reminders[i] = r
				return reminders, nil
			}
		}
		return nil, ErrNotFound
	})
	if errors.Is(err, ErrNotFound) {
		return models.Reminder{}, ErrNotFound
	}
	if err != nil {
		return models.Reminder{}, fmt.Errorf("persist reminder: %w", err)
	}

	s.sched.Arm(ctx, r)
	s.updateActiveGauge(ctx)

	eventType := events.ReminderCreated
	if editing {
		eventType = events.ReminderUpdated
	}
	s.bus.Publish(events.Event{Type: eventType, Reminder: r})

	s.logger.Info().Str("id", r.ID).Str("medicine", r.MedicineName).
		Bool("edit", editing).Strs("times", r.Times).Msg("reminder saved")
	return r, nil
}

// Delete removes a reminder and cancels its timers.
func (s *Service) Delete(ctx context.Context, id string) error {
	var deleted *models.Reminder
	_, err := store.Mutate(ctx, s.store, func(reminders []models.Reminder) ([]models.Reminder, error) {
		out := reminders[:0]
		for _, r := range reminders {
			if r.ID == id {
				r := r
				deleted = &r
				continue
			}
			out = append(out, r)
		}
		if deleted == nil {
			return nil, ErrNotFound
		}
		return out, nil
	})
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}

	s.sched.Cancel(id)
	s.updateActiveGauge(ctx)
	s.bus.Publish(events.Event{Type: events.ReminderDeleted, Reminder: *deleted})

	s.logger.Info().Str("id", id).Str("medicine", deleted.MedicineName).Msg("reminder deleted")
	return nil
}

// Toggle flips a reminder between active and paused, persists immediately,
// and arms or cancels its timers accordingly.
func (s *Service) Toggle(ctx context.Context, id string) (models.Reminder, error) {
	var toggled *models.Reminder
	_, err := store.Mutate(ctx, s.store, func(reminders []models.Reminder) ([]models.Reminder, error) {
		for i := range reminders {
			if reminders[i].ID == id {
				reminders[i].IsActive = !reminders[i].IsActive
				r := reminders[i]
				toggled = &r
				return reminders, nil
			}
		}
		return nil, ErrNotFound
	})
	if errors.Is(err, ErrNotFound) {
		return models.Reminder{}, ErrNotFound
	}
	if err != nil {
		return models.Reminder{}, fmt.Errorf("toggle reminder: %w", err)
	}

	if toggled.IsActive {
		s.sched.Arm(ctx, *toggled)
	} else {
		s.sched.Cancel(id)
	}
	s.updateActiveGauge(ctx)
	s.bus.Publish(events.Event{Type: events.ReminderToggled, Reminder: *toggled})

	s.logger.Info().Str("id", id).Bool("active", toggled.IsActive).Msg("reminder toggled")
	return *toggled, nil
}

// Reload re-reads the persisted collection and recomputes every timer. Used
// at startup and when the store file changes on disk.
func (s *Service) Reload(ctx context.Context) error {
	reminders, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("reload reminders: %w", err)
	}
	s.sched.RearmAll(ctx, reminders)
	s.updateActiveGauge(ctx)
	return nil
}

// View is a reminder plus its derived display state.
type View struct {
	models.Reminder
	Overdue bool
}

// Grouped partitions the collection for display.
type Grouped struct {
	Active []View
	Paused []View
}

// Grouped returns the derived list-view state: active/paused partitions with
// per-reminder overdue flags.
func (s *Service) Grouped(ctx context.Context) (Grouped, error) {
	reminders, err := s.store.Load(ctx)
	if err != nil {
		return Grouped{}, err
	}

	now := s.now()
	var g Grouped
	for _, r := range reminders {
		v := View{Reminder: r, Overdue: r.IsOverdue(now)}
		if r.IsActive {
			g.Active = append(g.Active, v)
		} else {
			g.Paused = append(g.Paused, v)
		}
	}
	return g, nil
}

// ActiveCount returns the number of active reminders.
func (s *Service) ActiveCount(ctx context.Context) (int, error) {
	reminders, err := s.store.Load(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, r := range reminders {
		if r.IsActive {
			count++
		}
	}
	return count, nil
}

func (s *Service) updateActiveGauge(ctx context.Context) {
	if count, err := s.ActiveCount(ctx); err == nil {
		metrics.SetRemindersActive(count)
	}
}
