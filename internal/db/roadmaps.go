package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/career-portal/internal/types"
)

// GetRoadmap retrieves the user's stored roadmap. Returns (nil, nil) when
// none was generated.
func (db *DB) GetRoadmap(ctx context.Context, userID uuid.UUID) (*types.StoredRoadmap, error) {
	var r types.StoredRoadmap
	var payload []byte
	err := db.pool.QueryRow(ctx,
		`SELECT user_id, career_title, payload, generated_at FROM roadmaps WHERE user_id = $1`,
		userID,
	).Scan(&r.UserID, &r.CareerTitle, &payload, &r.GeneratedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get roadmap: %w", err)
	}
	if err := json.Unmarshal(payload, &r.Payload); err != nil {
		return nil, fmt.Errorf("failed to decode roadmap: %w", err)
	}
	return &r, nil
}

// UpsertRoadmap stores the user's roadmap, replacing any previous one.
func (db *DB) UpsertRoadmap(ctx context.Context, userID uuid.UUID, careerTitle string, payload types.CareerRoadmap) (*types.StoredRoadmap, error) {
	return upsertRoadmap(ctx, db.pool, userID, careerTitle, payload)
}

func upsertRoadmap(ctx context.Context, q querier, userID uuid.UUID, careerTitle string, payload types.CareerRoadmap) (*types.StoredRoadmap, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode roadmap: %w", err)
	}

	r := types.StoredRoadmap{UserID: userID, CareerTitle: careerTitle, Payload: payload}
	err = q.QueryRow(ctx,
		`INSERT INTO roadmaps (user_id, career_title, payload)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET career_title = $2, payload = $3, generated_at = NOW()
		 RETURNING generated_at`,
		userID, careerTitle, raw,
	).Scan(&r.GeneratedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save roadmap: %w", err)
	}
	return &r, nil
}
