package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/career-portal/internal/types"
)

// InsertActivity stores one activity event.
func (db *DB) InsertActivity(ctx context.Context, a *types.Activity) error {
	metadata, err := json.Marshal(a.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode activity metadata: %w", err)
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO activity_logs (id, user_id, activity_type, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.UserID, string(a.Type), metadata, a.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

// ListActivities returns the user's newest events first.
func (db *DB) ListActivities(ctx context.Context, userID uuid.UUID, limit int) ([]types.Activity, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, activity_type, metadata, created_at
		 FROM activity_logs WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var activities []types.Activity
	for rows.Next() {
		var a types.Activity
		var kind string
		var metadata []byte
		if err := rows.Scan(&a.ID, &a.UserID, &kind, &metadata, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		a.Type = types.ActivityType(kind)
		if err := json.Unmarshal(metadata, &a.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode activity metadata: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, nil
}
