package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Training-Layers/sequence-marketing-automation-sub000/internal/runlog"
)

// RunEventRepo — репозиторий событий выполнения.
//
// Реализует runlog.Sink: вторичный durable-уровень логирования.
type RunEventRepo struct {
	pool *pgxpool.Pool
}

// NewRunEventRepo создаёт новый RunEventRepo.
func NewRunEventRepo(pool *pgxpool.Pool) *RunEventRepo {
	return &RunEventRepo{pool: pool}
}

// Write записывает событие выполнения в run_events.
func (r *RunEventRepo) Write(ctx context.Context, e runlog.Event) error {
	var attrsJSON []byte
	if e.Attrs != nil {
		var err error
		attrsJSON, err = json.Marshal(e.Attrs)
		if err != nil {
			return fmt.Errorf("marshal attrs: %w", err)
		}
	}

	query := `
		INSERT INTO run_events (run_id, scope, name, status, message,
		                        tenant_id, project_id, user_id, attrs, at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		e.RunID,
		e.Scope,
		e.Name,
		e.Status,
		e.Message,
		e.TenantID,
		e.ProjectID,
		nullString(e.UserID),
		attrsJSON,
		e.At,
	)
	if err != nil {
		return fmt.Errorf("insert run event: %w", err)
	}
	return nil
}

// ListByRun возвращает события запуска в хронологическом порядке.
func (r *RunEventRepo) ListByRun(ctx context.Context, runID string) ([]runlog.Event, error) {
	query := `
		SELECT run_id, scope, name, status, message,
		       tenant_id, project_id, user_id, attrs, at
		FROM run_events
		WHERE run_id = $1
		ORDER BY at ASC
	`
	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("list run events: %w", err)
	}
	defer rows.Close()

	var events []runlog.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// LastByRun возвращает последнее событие запуска.
func (r *RunEventRepo) LastByRun(ctx context.Context, runID string) (*runlog.Event, error) {
	query := `
		SELECT run_id, scope, name, status, message,
		       tenant_id, project_id, user_id, attrs, at
		FROM run_events
		WHERE run_id = $1
		ORDER BY at DESC
		LIMIT 1
	`
	e, err := scanEvent(r.pool.QueryRow(ctx, query, runID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// scanEvent сканирует одну строку в Event.
func scanEvent(row pgx.Row) (*runlog.Event, error) {
	var e runlog.Event
	var userID *string
	var attrsJSON []byte

	err := row.Scan(
		&e.RunID,
		&e.Scope,
		&e.Name,
		&e.Status,
		&e.Message,
		&e.TenantID,
		&e.ProjectID,
		&userID,
		&attrsJSON,
		&e.At,
	)
	if err != nil {
		return nil, err
	}

	if userID != nil {
		e.UserID = *userID
	}
	if attrsJSON != nil {
		if err := json.Unmarshal(attrsJSON, &e.Attrs); err != nil {
			return nil, fmt.Errorf("unmarshal attrs: %w", err)
		}
	}
	return &e, nil
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
