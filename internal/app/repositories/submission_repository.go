package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/yigit/engageportal/internal/app/models"
	"github.com/yigit/engageportal/internal/pkg/apperrors"
	"github.com/yigit/engageportal/internal/pkg/dberrors"
)

const submissionLedgerTable = "submission_ledger"

// SubmissionLedger records the outcome of each successful submission under its
// idempotency key
type SubmissionLedger interface {
	// FindByKey returns apperrors.ErrResourceNotFound when the key is unknown
	FindByKey(ctx context.Context, key string) (*models.SubmissionRecord, error)
	// Save returns apperrors.ErrConflict when the key is already recorded
	Save(ctx context.Context, record *models.SubmissionRecord) error
	// DeleteOlderThan purges records created before cutoff
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// SubmissionRepository is the PostgreSQL SubmissionLedger
type SubmissionRepository struct {
	db     *pgxpool.Pool
	sb     squirrel.StatementBuilderType
	logger zerolog.Logger
}

// NewSubmissionRepository creates a new SubmissionRepository
func NewSubmissionRepository(db *pgxpool.Pool, logger zerolog.Logger) *SubmissionRepository {
	return &SubmissionRepository{
		db:     db,
		sb:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		logger: logger,
	}
}

// FindByKey implements SubmissionLedger
func (r *SubmissionRepository) FindByKey(ctx context.Context, key string) (*models.SubmissionRecord, error) {
	sql, args, err := r.sb.Select("idempotency_key", "survey_id", "user_id", "response_id", "response_payload", "created_at").
		From(submissionLedgerTable).
		Where(squirrel.Eq{"idempotency_key": key}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build find submission query: %w", err)
	}

	var rec models.SubmissionRecord
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&rec.IdempotencyKey, &rec.SurveyID, &rec.UserID, &rec.ResponseID, &rec.Payload, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("no submission recorded for this idempotency key")
		}
		r.logger.Error().Err(err).Str("key", key).Msg("Error scanning submission ledger row")
		return nil, fmt.Errorf("error retrieving submission: %w", err)
	}
	return &rec, nil
}

// Save implements SubmissionLedger
func (r *SubmissionRepository) Save(ctx context.Context, record *models.SubmissionRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	sql, args, err := r.sb.Insert(submissionLedgerTable).
		Columns("idempotency_key", "survey_id", "user_id", "response_id", "response_payload", "created_at").
		Values(record.IdempotencyKey, record.SurveyID, record.UserID, record.ResponseID, record.Payload, record.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build save submission query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.NewConflictError("submission already recorded for this idempotency key")
		}
		r.logger.Error().Err(err).Str("key", record.IdempotencyKey).Msg("Error saving submission ledger row")
		return fmt.Errorf("error saving submission: %w", err)
	}
	return nil
}

// DeleteOlderThan implements SubmissionLedger
func (r *SubmissionRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	sql, args, err := r.sb.Delete(submissionLedgerTable).
		Where(squirrel.Lt{"created_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build purge submissions query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error purging submissions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// MemorySubmissionLedger keeps the ledger in process memory, for deployments
// without a database. Records do not survive a restart.
type MemorySubmissionLedger struct {
	mu      sync.RWMutex
	records map[string]models.SubmissionRecord
}

// NewMemorySubmissionLedger creates an empty in-memory ledger
func NewMemorySubmissionLedger() *MemorySubmissionLedger {
	return &MemorySubmissionLedger{records: make(map[string]models.SubmissionRecord)}
}

// FindByKey implements SubmissionLedger
func (l *MemorySubmissionLedger) FindByKey(_ context.Context, key string) (*models.SubmissionRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rec, ok := l.records[key]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("no submission recorded for this idempotency key")
	}
	return &rec, nil
}

// Save implements SubmissionLedger
func (l *MemorySubmissionLedger) Save(_ context.Context, record *models.SubmissionRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.records[record.IdempotencyKey]; exists {
		return apperrors.NewConflictError("submission already recorded for this idempotency key")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	l.records[record.IdempotencyKey] = *record
	return nil
}

// DeleteOlderThan implements SubmissionLedger
func (l *MemorySubmissionLedger) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var removed int64
	for key, rec := range l.records {
		if rec.CreatedAt.Before(cutoff) {
			delete(l.records, key)
			removed++
		}
	}
	return removed, nil
}
