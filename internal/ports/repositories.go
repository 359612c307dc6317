package ports

import (
	"context"

	"github.com/studyplanner/core/internal/domain/entities"
)

// DocumentStore defines the interface for schedule document persistence.
// Every write replaces the whole document.
type DocumentStore interface {
	Load(ctx context.Context) (*entities.Document, error)
	Save(ctx context.Context, doc *entities.Document) error
	// Update loads the document, applies fn and saves the result when fn
	// reports a change. The load-apply-save sequence is serialized per store.
	Update(ctx context.Context, fn func(doc *entities.Document) (bool, error)) error
	// Seed creates the document with the given subjects if none exists yet.
	Seed(ctx context.Context, subjects map[string]entities.Subject) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}

// StoreObserver receives store activity for metrics
type StoreObserver interface {
	ObserveOperation(operation string, err error)
	ObserveRecovery(reason string)
}

// NopObserver discards all observations
type NopObserver struct{}

func (NopObserver) ObserveOperation(string, error) {}

func (NopObserver) ObserveRecovery(string) {}
