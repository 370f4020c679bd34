// Package repository persists saved searches.
package repository

import (
	"context"
	"time"

	"github.com/okian/jobscout/internal/domain/model"
)

// Store provides read/write access to saved searches.
type Store interface {
	// Create validates s, assigns ID and CreatedAt, and stores it as active.
	Create(ctx context.Context, s model.SavedSearch) (model.SavedSearch, error)

	// ListActive returns active saved searches, oldest first.
	ListActive(ctx context.Context) ([]model.SavedSearch, error)

	// RecordRun stores the outcome of a scheduled re-run.
	// Returns ErrNotFound if the id is unknown.
	RecordRun(ctx context.Context, id string, total, newJobs int, at time.Time) error

	// Close releases resources held by the store.
	Close()
}
