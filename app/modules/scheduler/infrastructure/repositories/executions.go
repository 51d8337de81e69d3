package schedulerdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// ErrNotFound indicates no execution has ever been recorded for the job.
var ErrNotFound = errors.New("job execution record not found")

// Repository is the job execution ledger contract.
type Repository interface {
	// RecordExecution upserts the ledger row for name and increments its
	// execution counter.
	RecordExecution(ctx context.Context, db bun.IDB, name string, status JobStatus, lastError string, at time.Time) error

	// GetByName returns the ledger row for name, or ErrNotFound.
	GetByName(ctx context.Context, db bun.IDB, name string) (*JobExecution, error)
}

// Impl is the bun-backed ledger.
type Impl struct {
	DB *bun.DB
}

var _ Repository = (*Impl)(nil)

// RecordExecution upserts the ledger row keyed by job name. The row is
// never replaced: the counter accumulates across the job's lifetime.
func (r *Impl) RecordExecution(ctx context.Context, db bun.IDB, name string, status JobStatus, lastError string, at time.Time) error {
	if db == nil {
		db = r.DB
	}
	record := &JobExecution{
		Name:           name,
		LastExecution:  at,
		LastStatus:     status,
		LastError:      lastError,
		ExecutionCount: 1,
	}
	_, err := db.NewInsert().
		Model(record).
		On("CONFLICT (name) DO UPDATE").
		Set("last_execution = EXCLUDED.last_execution").
		Set("last_status = EXCLUDED.last_status").
		Set("last_error = EXCLUDED.last_error").
		Set("execution_count = je.execution_count + 1").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("schedulerdb.RecordExecution: %w", err)
	}
	return nil
}

// GetByName returns the ledger row for name.
func (r *Impl) GetByName(ctx context.Context, db bun.IDB, name string) (*JobExecution, error) {
	if db == nil {
		db = r.DB
	}
	record := &JobExecution{}
	err := db.NewSelect().
		Model(record).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("schedulerdb.GetByName: %w", err)
	}
	return record, nil
}
