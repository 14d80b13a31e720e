package robots

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/mars-command/internal/domain"
	"github.com/rs/zerolog"
)

// Repository stores the current position of each robot in state.db.
// Unknown robot ids are reported as ErrRobotNotFound; nothing is created
// on read.
type Repository struct {
	db  *sql.DB        // state.db - robot_state table
	log zerolog.Logger // Structured logger
}

// RobotState is a stored position together with its last write time
type RobotState struct {
	RobotID   string          `json:"robotId"`
	Position  domain.Position `json:"currentPosition"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// NewRepository creates a new robot state repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "robot_state").Logger(),
	}
}

// Get returns the stored position for robotID
func (r *Repository) Get(ctx context.Context, robotID string) (domain.Position, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM robot_state WHERE robot_id = ?", robotID).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Position{}, &RobotNotFoundError{RobotID: robotID}
	}
	if err != nil {
		return domain.Position{}, fmt.Errorf("failed to get robot %s: %w", robotID, err)
	}

	var pos domain.Position
	if err := json.Unmarshal([]byte(value), &pos); err != nil {
		return domain.Position{}, fmt.Errorf("failed to decode position of robot %s: %w", robotID, err)
	}
	return pos, nil
}

// Set overwrites the stored position for robotID. No bounds checks happen here.
func (r *Repository) Set(ctx context.Context, robotID string, pos domain.Position) error {
	value, err := json.Marshal(pos)
	if err != nil {
		return fmt.Errorf("failed to encode position of robot %s: %w", robotID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO robot_state (robot_id, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(robot_id) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, robotID, string(value), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to set robot %s: %w", robotID, err)
	}
	return nil
}

// List returns every stored robot ordered by id
func (r *Repository) List(ctx context.Context) ([]RobotState, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT robot_id, value, updated_at FROM robot_state ORDER BY robot_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list robots: %w", err)
	}
	defer rows.Close()

	result := make([]RobotState, 0)
	for rows.Next() {
		var (
			id        string
			value     string
			updatedAt int64
		)
		if err := rows.Scan(&id, &value, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan robot row: %w", err)
		}

		var pos domain.Position
		if err := json.Unmarshal([]byte(value), &pos); err != nil {
			r.log.Warn().Err(err).Str("robot_id", id).Msg("Skipping robot with undecodable position")
			continue
		}
		result = append(result, RobotState{
			RobotID:   id,
			Position:  pos,
			UpdatedAt: time.UnixMilli(updatedAt).UTC(),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating robots: %w", err)
	}
	return result, nil
}
