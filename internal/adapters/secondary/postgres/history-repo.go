package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"diagnostic-imaging-service/internal/core/domain"
	ports "diagnostic-imaging-service/internal/core/ports/output"
)

type historyRepo struct {
	pool *pgxpool.Pool
}

func NewHistoryRepository(pool *pgxpool.Pool) ports.HistoryRepository {
	return &historyRepo{pool: pool}
}

func (r *historyRepo) Create(ctx context.Context, rec *domain.HistoryRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", domain.ErrTransactionAborted, err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO history_record
			(id, user_id, patient_name, label, confidence,
			 original_key, annotated_key, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`
	_, err = tx.Exec(ctx, query,
		rec.ID, rec.UserID, rec.PatientName,
		rec.Result.Label, rec.Result.Confidence,
		rec.OriginalKey, rec.AnnotatedKey, rec.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23") {
			return fmt.Errorf("%w: %v", domain.ErrConstraintViolation, err)
		}
		return fmt.Errorf("create history record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", domain.ErrTransactionAborted, err)
	}
	return nil
}

func (r *historyRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.HistoryRecord, error) {
	query := `
		SELECT id, user_id, patient_name, label, confidence,
			   original_key, annotated_key, created_at
		FROM history_record
		WHERE id = $1
	`
	rec, err := scanRecord(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get history record by id: %w", err)
	}
	return rec, nil
}

func (r *historyRepo) List(ctx context.Context, filter ports.HistoryListFilter) ([]*domain.HistoryRecord, int, error) {
	conditions := []string{}
	args := []interface{}{}
	argPos := 1

	if filter.UserID != uuid.Nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argPos))
		args = append(args, filter.UserID)
		argPos++
	}
	if filter.PatientName != "" {
		conditions = append(conditions, fmt.Sprintf("patient_name ILIKE $%d", argPos))
		args = append(args, "%"+filter.PatientName+"%")
		argPos++
	}

	whereClause := "1=1"
	if len(conditions) > 0 {
		whereClause = strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM history_record WHERE %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count history records: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, patient_name, label, confidence,
			   original_key, annotated_key, created_at
		FROM history_record
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list history records: %w", err)
	}
	defer rows.Close()

	var records []*domain.HistoryRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan history record row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate history record rows: %w", err)
	}

	return records, total, nil
}

func (r *historyRepo) Stats(ctx context.Context, userID uuid.UUID) (*domain.HistoryStats, error) {
	whereClause := "1=1"
	args := []interface{}{}
	if userID != uuid.Nil {
		whereClause = "user_id = $1"
		args = append(args, userID)
	}

	stats := &domain.HistoryStats{ByLabel: map[string]int{}}

	query := fmt.Sprintf(
		"SELECT COUNT(*), COALESCE(AVG(confidence), 0) FROM history_record WHERE %s",
		whereClause,
	)
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&stats.Total, &stats.AverageConfidence); err != nil {
		return nil, fmt.Errorf("history stats totals: %w", err)
	}

	byLabelQuery := fmt.Sprintf(
		"SELECT label, COUNT(*) FROM history_record WHERE %s GROUP BY label",
		whereClause,
	)
	rows, err := r.pool.Query(ctx, byLabelQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("history stats by label: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, fmt.Errorf("scan history stats row: %w", err)
		}
		stats.ByLabel[label] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history stats rows: %w", err)
	}

	return stats, nil
}

// DeleteWithArtifacts locks the row, removes the stored artifacts through the
// injected remover and deletes the row, committing only if everything
// succeeded. The row lock serializes concurrent deletes of the same record:
// the loser of the race sees no row and reports ErrRecordNotFound.
func (r *historyRepo) DeleteWithArtifacts(ctx context.Context, id uuid.UUID, remove ports.ArtifactRemover) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", domain.ErrTransactionAborted, err)
	}
	defer tx.Rollback(ctx)

	var originalKey, annotatedKey string
	err = tx.QueryRow(ctx,
		"SELECT original_key, annotated_key FROM history_record WHERE id = $1 FOR UPDATE",
		id,
	).Scan(&originalKey, &annotatedKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrRecordNotFound
		}
		return fmt.Errorf("lock history record: %w", err)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM history_record WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete history record: %w", err)
	}

	if remove != nil {
		if err := remove(ctx, originalKey, annotatedKey); err != nil {
			// Deliberate rollback via the deferred tx.Rollback: the record
			// stays intact alongside its artifacts and the caller may retry.
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", domain.ErrTransactionAborted, err)
	}
	return nil
}

func scanRecord(row pgx.Row) (*domain.HistoryRecord, error) {
	rec := &domain.HistoryRecord{}
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.PatientName,
		&rec.Result.Label, &rec.Result.Confidence,
		&rec.OriginalKey, &rec.AnnotatedKey, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}
