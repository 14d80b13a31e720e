package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/mars-command/internal/domain"
	"github.com/rs/zerolog"
)

// Repository appends and reads history records in history.db.
// Records are never updated; only retention removes them.
type Repository struct {
	db  *sql.DB        // history.db - history_records table
	log zerolog.Logger // Structured logger
}

// NewRepository creates a new history repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "history").Logger(),
	}
}

// Append adds rec to session. The session exists as soon as it has a record.
func (r *Repository) Append(ctx context.Context, session string, rec Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO history_records (
			id, session, robot_id, origin_x, origin_y, origin_orientation,
			command, user, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		session,
		rec.RobotID,
		rec.Origin.X,
		rec.Origin.Y,
		string(rec.Origin.Orientation),
		rec.Command,
		rec.User,
		rec.Timestamp.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to append history record to session %s: %w", session, err)
	}
	return nil
}

// List returns the records of session in insertion order
func (r *Repository) List(ctx context.Context, session string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session, robot_id, origin_x, origin_y, origin_orientation,
		       command, user, timestamp
		FROM history_records
		WHERE session = ?
		ORDER BY seq
	`, session)
	if err != nil {
		return nil, fmt.Errorf("failed to query session %s: %w", session, err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var (
			rec         Record
			orientation string
			ts          int64
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.Session,
			&rec.RobotID,
			&rec.Origin.X,
			&rec.Origin.Y,
			&orientation,
			&rec.Command,
			&rec.User,
			&ts,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		rec.Origin.Orientation = domain.Orientation(orientation)
		rec.Timestamp = time.UnixMilli(ts).UTC()
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history records: %w", err)
	}
	return records, nil
}

// Sessions summarizes every session, most recently active first
func (r *Repository) Sessions(ctx context.Context) ([]SessionSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT session, COUNT(*), MIN(timestamp), MAX(timestamp)
		FROM history_records
		GROUP BY session
		ORDER BY MAX(seq) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]SessionSummary, 0)
	for rows.Next() {
		var (
			s           SessionSummary
			first, last int64
		)
		if err := rows.Scan(&s.Session, &s.Records, &first, &last); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s.FirstSeen = time.UnixMilli(first).UTC()
		s.LastSeen = time.UnixMilli(last).UTC()
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}
	return sessions, nil
}

// DeleteBefore removes records older than cutoff and returns how many were removed
func (r *Repository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM history_records WHERE timestamp < ?", cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to delete history before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted history records: %w", err)
	}

	r.log.Debug().
		Int64("deleted", deleted).
		Time("cutoff", cutoff).
		Msg("Deleted old history records")
	return deleted, nil
}
