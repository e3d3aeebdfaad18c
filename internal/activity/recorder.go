// Package activity records user activity events and serves the recent-event
// feed shown on the dashboard.
package activity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-portal/internal/types"
	"go.uber.org/zap"
)

// DefaultListLimit is used when List is called without a positive limit.
const DefaultListLimit = 20

// MaxListLimit caps List queries.
const MaxListLimit = 200

// RecentCapacity is the number of events kept per user in the recent feed.
const RecentCapacity = 50

// Policy controls what happens when an event cannot be recorded.
type Policy string

// Policies
const (
	// PolicyBestEffort logs recording failures and never fails the caller.
	PolicyBestEffort Policy = "best_effort"
	// PolicyStrict returns recording failures to the caller.
	PolicyStrict Policy = "strict"
)

// ErrUnknownType is returned for activity types the portal does not define.
var ErrUnknownType = errors.New("unknown activity type")

// Store persists activity events.
type Store interface {
	InsertActivity(ctx context.Context, a *types.Activity) error
	// ListActivities returns the user's events, newest first.
	ListActivities(ctx context.Context, userID uuid.UUID, limit int) ([]types.Activity, error)
}

// RecentEvent is one entry of the per-user recent feed.
type RecentEvent struct {
	Type      types.ActivityType `json:"type"`
	Metadata  map[string]any     `json:"metadata"`
	Timestamp time.Time          `json:"timestamp"`
}

// RecentCache keeps the newest RecentCapacity events per user.
type RecentCache interface {
	Push(ctx context.Context, userID uuid.UUID, event RecentEvent) error
	// Recent returns the cached events, newest first.
	Recent(ctx context.Context, userID uuid.UUID) ([]RecentEvent, error)
}

// Recorder writes events to the store and the recent cache.
type Recorder struct {
	store  Store
	cache  RecentCache
	policy Policy
	logger *zap.Logger
	now    func() time.Time
}

// NewRecorder creates a Recorder. cache may be nil to disable the recent feed.
// An empty policy means PolicyBestEffort.
func NewRecorder(store Store, cache RecentCache, policy Policy, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy == "" {
		policy = PolicyBestEffort
	}
	return &Recorder{
		store:  store,
		cache:  cache,
		policy: policy,
		logger: logger,
		now:    time.Now,
	}
}

// Policy returns the recorder's failure policy.
func (r *Recorder) Policy() Policy {
	return r.policy
}

// Record stores one event. Unknown types and nil user ids are rejected under
// every policy; storage failures are only returned under PolicyStrict.
func (r *Recorder) Record(ctx context.Context, userID uuid.UUID, activityType types.ActivityType, metadata map[string]any) error {
	if userID == uuid.Nil {
		return fmt.Errorf("activity user id is required")
	}
	if !activityType.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownType, activityType)
	}
	if metadata == nil {
		metadata = map[string]any{}
	}

	event := &types.Activity{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      activityType,
		Metadata:  metadata,
		Timestamp: r.now().UTC(),
	}

	var errs []error
	if err := r.store.InsertActivity(ctx, event); err != nil {
		errs = append(errs, fmt.Errorf("failed to store activity: %w", err))
	}
	if r.cache != nil {
		recent := RecentEvent{Type: event.Type, Metadata: event.Metadata, Timestamp: event.Timestamp}
		if err := r.cache.Push(ctx, userID, recent); err != nil {
			errs = append(errs, fmt.Errorf("failed to cache activity: %w", err))
		}
	}
	if len(errs) == 0 {
		return nil
	}

	err := errors.Join(errs...)
	if r.policy == PolicyStrict {
		return err
	}
	r.logger.Warn("activity not recorded",
		zap.String("user_id", userID.String()),
		zap.String("activity_type", string(activityType)),
		zap.Error(err),
	)
	return nil
}

// Recent returns the user's cached recent events, newest first. Without a
// cache the newest RecentCapacity stored events are returned instead.
func (r *Recorder) Recent(ctx context.Context, userID uuid.UUID) ([]RecentEvent, error) {
	if r.cache != nil {
		events, err := r.cache.Recent(ctx, userID)
		if err == nil {
			return events, nil
		}
		r.logger.Warn("recent activity cache unavailable, reading store",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}

	stored, err := r.List(ctx, userID, RecentCapacity)
	if err != nil {
		return nil, err
	}
	events := make([]RecentEvent, len(stored))
	for i, a := range stored {
		events[i] = RecentEvent{Type: a.Type, Metadata: a.Metadata, Timestamp: a.Timestamp}
	}
	return events, nil
}

// List returns stored events newest first. limit <= 0 selects
// DefaultListLimit; larger values are capped at MaxListLimit.
func (r *Recorder) List(ctx context.Context, userID uuid.UUID, limit int) ([]types.Activity, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	activities, err := r.store.ListActivities(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	if activities == nil {
		activities = []types.Activity{}
	}
	return activities, nil
}
