package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/SunilBaghel002/SankalpAlarm/internal/models"
)

// WakeEventRepository keeps the append-only wake history in PostgreSQL. The
// table is capacity-bounded: inserting beyond the cap prunes the oldest rows.
type WakeEventRepository struct {
	db     *sql.DB
	cap    int
	logger *zap.Logger
}

// NewWakeEventRepository creates the repository with the given capacity.
func NewWakeEventRepository(db *sql.DB, cap int, logger *zap.Logger) *WakeEventRepository {
	return &WakeEventRepository{
		db:     db,
		cap:    cap,
		logger: logger,
	}
}

// CreateWakeEvent appends one wake record and evicts the oldest rows beyond
// the capacity bound.
func (r *WakeEventRepository) CreateWakeEvent(ctx context.Context, event *models.WakeEvent) error {
	if event == nil {
		return fmt.Errorf("event is required")
	}
	if event.EventID == "" {
		return fmt.Errorf("event_id is required")
	}
	if event.AlarmID == "" {
		return fmt.Errorf("alarm_id is required")
	}
	if event.Date == "" {
		return fmt.Errorf("date is required")
	}

	insert := `
		INSERT INTO wake_events (
			event_id,
			alarm_id,
			date,
			steps_walked,
			success,
			woke_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	if _, err := r.db.ExecContext(ctx, insert,
		event.EventID,
		event.AlarmID,
		event.Date,
		event.StepsWalked,
		event.Success,
		event.WokeAt,
	); err != nil {
		return fmt.Errorf("failed to create wake event: %w", err)
	}

	prune := `
		DELETE FROM wake_events
		WHERE event_id NOT IN (
			SELECT event_id FROM wake_events
			ORDER BY woke_at DESC
			LIMIT $1
		)
	`

	result, err := r.db.ExecContext(ctx, prune, r.cap)
	if err != nil {
		return fmt.Errorf("failed to prune wake events: %w", err)
	}

	if pruned, err := result.RowsAffected(); err == nil && pruned > 0 {
		r.logger.Debug("Evicted oldest wake events",
			zap.Int64("pruned", pruned),
			zap.Int("cap", r.cap),
		)
	}

	return nil
}

// ListWakeEvents returns the most recent wake records, newest first.
func (r *WakeEventRepository) ListWakeEvents(ctx context.Context, limit int) ([]*models.WakeEvent, error) {
	if limit <= 0 || limit > r.cap {
		limit = r.cap
	}

	query := `
		SELECT
			event_id,
			alarm_id,
			date,
			steps_walked,
			success,
			woke_at
		FROM wake_events
		ORDER BY woke_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query wake events: %w", err)
	}
	defer rows.Close()

	events := []*models.WakeEvent{}
	for rows.Next() {
		var event models.WakeEvent
		var wokeAt time.Time
		if err := rows.Scan(
			&event.EventID,
			&event.AlarmID,
			&event.Date,
			&event.StepsWalked,
			&event.Success,
			&wokeAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan wake event: %w", err)
		}
		event.WokeAt = wokeAt
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wake events: %w", err)
	}
	return events, nil
}

// CountSuccessfulWakes reports how many of the retained wake records ended
// with the step target reached.
func (r *WakeEventRepository) CountSuccessfulWakes(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM wake_events WHERE success = true`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count successful wakes: %w", err)
	}
	return count, nil
}
