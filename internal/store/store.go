// Package store persists the reminder collection. The whole collection is the
// unit of persistence: every mutation rewrites it under a single named slot
// (a JSON file, or one Redis key).
package store

import (
	"context"

	"dosewatch/internal/models"
)

// Store is the injected repository for the reminder collection.
type Store interface {
	// Load returns the persisted collection. Missing or unparsable content
	// loads as an empty collection; an error means the backend itself is
	// unreachable.
	Load(ctx context.Context) ([]models.Reminder, error)

	// Save serializes and overwrites the entire persisted collection.
	Save(ctx context.Context, reminders []models.Reminder) error
}

// Mutate loads the collection, applies fn, saves the result and returns it.
// An error from fn aborts the mutation: nothing is saved and the error is
// returned as is.
func Mutate(ctx context.Context, s Store, fn func([]models.Reminder) ([]models.Reminder, error)) ([]models.Reminder, error) {
	reminders, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	reminders, err = fn(reminders)
	if err != nil {
		return nil, err
	}
	if err := s.Save(ctx, reminders); err != nil {
		return nil, err
	}
	return reminders, nil
}
