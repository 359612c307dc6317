package repository

import (
	"fmt"

	"github.com/studyplanner/core/internal/infrastructure/config"
	"github.com/studyplanner/core/internal/infrastructure/database"
	"github.com/studyplanner/core/internal/infrastructure/logger"
	"github.com/studyplanner/core/internal/ports"
)

// NewStore builds the document store selected by cfg.Store.Driver
func NewStore(cfg *config.Config, appLogger *logger.Logger, observer ports.StoreObserver) (ports.DocumentStore, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverFile:
		return NewFileStore(cfg.Store.Path, appLogger, observer), nil
	case config.StoreDriverPostgres:
		db, err := database.New(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect document database: %w", err)
		}
		return NewPostgresStore(db, cfg.Store.DocumentID, appLogger, observer), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
