package activity

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-portal/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memStore struct {
	mu         sync.Mutex
	activities []types.Activity
	insertErr  error
	listErr    error
	lastLimit  int
}

func (s *memStore) InsertActivity(_ context.Context, a *types.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	s.activities = append(s.activities, *a)
	return nil
}

func (s *memStore) ListActivities(_ context.Context, userID uuid.UUID, limit int) ([]types.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastLimit = limit
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []types.Activity
	for _, a := range s.activities {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type failingCache struct{ err error }

func (c failingCache) Push(context.Context, uuid.UUID, RecentEvent) error { return c.err }
func (c failingCache) Recent(context.Context, uuid.UUID) ([]RecentEvent, error) {
	return nil, c.err
}

func fixedClock() func() time.Time {
	t := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestRecorder(store Store, cache RecentCache, policy Policy) *Recorder {
	r := NewRecorder(store, cache, policy, zap.NewNop())
	r.now = fixedClock()
	return r
}

func TestRecord_StoresAndCaches(t *testing.T) {
	store := &memStore{}
	cache := NewMemoryCache(10)
	r := newTestRecorder(store, cache, "")
	ctx := context.Background()
	user := uuid.New()

	require.NoError(t, r.Record(ctx, user, types.ActivityLogin, nil))
	require.NoError(t, r.Record(ctx, user, types.ActivityAssessmentStart, map[string]any{"retake": false}))

	require.Len(t, store.activities, 2)
	assert.Equal(t, types.ActivityLogin, store.activities[0].Type)
	assert.NotNil(t, store.activities[0].Metadata)
	assert.NotEqual(t, uuid.Nil, store.activities[0].ID)

	recent, err := r.Recent(ctx, user)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, types.ActivityAssessmentStart, recent[0].Type)
	assert.Equal(t, false, recent[0].Metadata["retake"])
	assert.Equal(t, types.ActivityLogin, recent[1].Type)
	assert.Equal(t, PolicyBestEffort, r.Policy())
}

func TestRecord_RejectsInvalidInput(t *testing.T) {
	store := &memStore{}
	r := newTestRecorder(store, nil, PolicyBestEffort)
	ctx := context.Background()

	err := r.Record(ctx, uuid.New(), types.ActivityType("DANCE"), nil)
	assert.True(t, errors.Is(err, ErrUnknownType))

	err = r.Record(ctx, uuid.Nil, types.ActivityLogin, nil)
	assert.Error(t, err)

	assert.Empty(t, store.activities)
}

func TestRecord_Policy(t *testing.T) {
	storeDown := errors.New("db down")
	cacheDown := errors.New("redis down")

	tests := []struct {
		name      string
		policy    Policy
		insertErr error
		cache     RecentCache
		wantErr   error
	}{
		{"best effort swallows store failure", PolicyBestEffort, storeDown, nil, nil},
		{"best effort swallows cache failure", PolicyBestEffort, nil, failingCache{cacheDown}, nil},
		{"strict returns store failure", PolicyStrict, storeDown, nil, storeDown},
		{"strict returns cache failure", PolicyStrict, nil, failingCache{cacheDown}, cacheDown},
		{"strict succeeds when healthy", PolicyStrict, nil, NewMemoryCache(1), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{insertErr: tt.insertErr}
			r := newTestRecorder(store, tt.cache, tt.policy)

			err := r.Record(context.Background(), uuid.New(), types.ActivityLogout, nil)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr))
		})
	}
}

func TestRecent_FallsBackToStore(t *testing.T) {
	store := &memStore{}
	ctx := context.Background()
	user := uuid.New()

	writer := newTestRecorder(store, nil, PolicyStrict)
	for i := 0; i < RecentCapacity+5; i++ {
		require.NoError(t, writer.Record(ctx, user, types.ActivityChatMessage, map[string]any{"n": i}))
	}

	reader := newTestRecorder(store, failingCache{errors.New("redis down")}, PolicyBestEffort)
	recent, err := reader.Recent(ctx, user)
	require.NoError(t, err)
	require.Len(t, recent, RecentCapacity)
	assert.Equal(t, RecentCapacity+4, recent[0].Metadata["n"])
	assert.Equal(t, RecentCapacity, store.lastLimit)
}

func TestList_Limits(t *testing.T) {
	tests := []struct {
		limit int
		want  int
	}{
		{0, DefaultListLimit},
		{-1, DefaultListLimit},
		{5, 5},
		{MaxListLimit + 1, MaxListLimit},
	}

	for _, tt := range tests {
		store := &memStore{}
		r := newTestRecorder(store, nil, PolicyBestEffort)
		activities, err := r.List(context.Background(), uuid.New(), tt.limit)
		require.NoError(t, err)
		assert.NotNil(t, activities)
		assert.Equal(t, tt.want, store.lastLimit)
	}
}

func TestList_StoreError(t *testing.T) {
	store := &memStore{listErr: errors.New("db down")}
	r := newTestRecorder(store, nil, PolicyBestEffort)

	_, err := r.List(context.Background(), uuid.New(), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list activities")
}
