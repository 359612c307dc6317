package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/studyplanner/core/internal/domain/entities"
	"github.com/studyplanner/core/internal/infrastructure/database"
	"github.com/studyplanner/core/internal/infrastructure/logger"
	"github.com/studyplanner/core/internal/ports"
)

const (
	selectDocumentQuery = `
		SELECT body FROM schedule_documents WHERE id = $1`

	selectDocumentForUpdateQuery = selectDocumentQuery + ` FOR UPDATE`

	upsertDocumentQuery = `
		INSERT INTO schedule_documents (id, body, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()`

	insertDocumentQuery = `
		INSERT INTO schedule_documents (id, body, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO NOTHING`
)

// PostgresStore keeps the schedule document as one JSONB row.
type PostgresStore struct {
	db         *database.DB
	documentID string
	mu         sync.Mutex
	logger     *logger.Logger
	observer   ports.StoreObserver
}

// NewPostgresStore creates a store for the row keyed by documentID
func NewPostgresStore(db *database.DB, documentID string, appLogger *logger.Logger, observer ports.StoreObserver) *PostgresStore {
	if observer == nil {
		observer = ports.NopObserver{}
	}
	return &PostgresStore{
		db:         db,
		documentID: documentID,
		logger:     appLogger.WithComponent("postgres_store"),
		observer:   observer,
	}
}

func (s *PostgresStore) Load(ctx context.Context) (*entities.Document, error) {
	return s.load(ctx, s.db.DB, selectDocumentQuery)
}

func (s *PostgresStore) Save(ctx context.Context, doc *entities.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(ctx, s.db.DB, doc)
}

func (s *PostgresStore) Update(ctx context.Context, fn func(doc *entities.Document) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		doc, err := s.load(ctx, tx, selectDocumentForUpdateQuery)
		if err != nil {
			return err
		}

		changed, err := fn(doc)
		if err != nil || !changed {
			return err
		}

		return s.save(ctx, tx, doc)
	})
}

func (s *PostgresStore) Seed(ctx context.Context, subjects map[string]entities.Subject) (bool, error) {
	doc := entities.NewDocument()
	for name, subject := range subjects {
		doc.Subjects[name] = subject
	}

	body, err := EncodeDocument(doc)
	if err != nil {
		return false, err
	}

	result, err := s.db.DB.ExecContext(ctx, insertDocumentQuery, s.documentID, string(body))
	if err != nil {
		return false, fmt.Errorf("seed schedule document: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("seed schedule document: %w", err)
	}

	if rows > 0 {
		s.logger.Infow("Created schedule document", "document_id", s.documentID, "subjects", len(subjects))
	}
	return rows > 0, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) load(ctx context.Context, q sqlx.QueryerContext, query string) (*entities.Document, error) {
	start := time.Now()

	var body []byte
	err := sqlx.GetContext(ctx, q, &body, query, s.documentID)
	if errors.Is(err, sql.ErrNoRows) {
		s.observer.ObserveOperation("load", nil)
		return entities.NewDocument(), nil
	}
	if err != nil {
		err = fmt.Errorf("select schedule document: %w", err)
		s.observer.ObserveOperation("load", err)
		s.logger.LogStoreOperation("load", elapsedMs(start), err)
		return nil, err
	}

	s.observer.ObserveOperation("load", nil)
	s.logger.LogStoreOperation("load", elapsedMs(start), nil)

	doc, err := DecodeDocument(body)
	if err != nil {
		return recoverDocument(s.logger, s.observer, s.documentID, body, err, func(raw []byte) (string, error) {
			return s.keepCorrupt(ctx, raw)
		})
	}

	return doc, nil
}

// keepCorrupt stores an unreadable body under a sibling document id. It runs
// outside any open transaction so the copy survives a rollback.
func (s *PostgresStore) keepCorrupt(ctx context.Context, body []byte) (string, error) {
	id := s.documentID + CorruptSuffix
	if _, err := s.db.DB.ExecContext(ctx, upsertDocumentQuery, id, string(body)); err != nil {
		return "", fmt.Errorf("upsert %s: %w", id, err)
	}
	return id, nil
}

func (s *PostgresStore) save(ctx context.Context, e sqlx.ExecerContext, doc *entities.Document) (err error) {
	start := time.Now()
	defer func() {
		s.observer.ObserveOperation("save", err)
		s.logger.LogStoreOperation("save", elapsedMs(start), err)
	}()

	body, err := EncodeDocument(doc)
	if err != nil {
		return err
	}

	if _, err := e.ExecContext(ctx, upsertDocumentQuery, s.documentID, string(body)); err != nil {
		return fmt.Errorf("upsert schedule document: %w", err)
	}

	return nil
}
