package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"portfolio-app/internal/domain/catalog"
)

// Store is the record store. Construct one per process with New and pass
// it to the handlers that need it.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Ping checks the underlying connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return storeErr("ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return storeErr("ping", err)
	}
	return nil
}

// storeErr classifies gorm errors into the catalog sentinels.
func storeErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, catalog.ErrConflict),
		errors.Is(err, catalog.ErrValidation),
		errors.Is(err, catalog.ErrStore):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", catalog.ErrNotFound, op)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %s: duplicate key", catalog.ErrConflict, op)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %s: %v", catalog.ErrStore, op, err)
	}
}
