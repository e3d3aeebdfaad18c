package assessment

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-portal/internal/types"
)

// memStore is an in-memory UserDirectory, SessionStore and RoadmapReader.
// Writes made through the SessionTx are staged and applied only when the
// mutator succeeds, mirroring the transactional store.
type memStore struct {
	mu        sync.Mutex
	users     map[string]*types.User
	sessions  map[uuid.UUID]*types.AssessmentSession
	roadmaps  map[uuid.UUID]*types.StoredRoadmap
	completed map[uuid.UUID]bool

	roadmapErr error
	getErr     error
	upserts    int
}

func newMemStore() *memStore {
	return &memStore{
		users:     make(map[string]*types.User),
		sessions:  make(map[uuid.UUID]*types.AssessmentSession),
		roadmaps:  make(map[uuid.UUID]*types.StoredRoadmap),
		completed: make(map[uuid.UUID]bool),
	}
}

func (m *memStore) addUser(legacyID int64) *types.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &types.User{ID: uuid.New(), LegacyID: legacyID, Name: "Test Student", Role: types.UserRoleStudent}
	m.users[u.ID.String()] = u
	if legacyID > 0 {
		m.users[strconv.FormatInt(legacyID, 10)] = u
	}
	return u
}

func (m *memStore) ResolveUser(_ context.Context, identifier string) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[identifier]
	if !ok {
		return nil, nil
	}
	cp := *u
	cp.AssessmentCompleted = m.completed[u.ID]
	return &cp, nil
}

func (m *memStore) GetSession(_ context.Context, userID uuid.UUID) (*types.AssessmentSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	s, ok := m.sessions[userID]
	if !ok {
		return nil, nil
	}
	cp := cloneSession(s)
	return &cp, nil
}

func (m *memStore) GetRoadmap(_ context.Context, userID uuid.UUID) (*types.StoredRoadmap, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.roadmaps[userID]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) UpsertSession(_ context.Context, userID uuid.UUID, mutate MutateFunc) (*types.AssessmentSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++

	cur, found := m.sessions[userID]
	var s types.AssessmentSession
	if found {
		s = cloneSession(cur)
	} else {
		s = types.AssessmentSession{ID: uuid.New(), UserID: userID, CreatedAt: time.Now()}
		s.Normalize()
	}

	tx := &memTx{store: m, roadmaps: map[uuid.UUID]*types.StoredRoadmap{}, flags: map[uuid.UUID]bool{}}
	if err := mutate(tx, &s, found); err != nil {
		return nil, err
	}

	for id, r := range tx.roadmaps {
		m.roadmaps[id] = r
	}
	for id, v := range tx.flags {
		m.completed[id] = v
	}
	s.UpdatedAt = time.Now()
	stored := cloneSession(&s)
	m.sessions[userID] = &stored
	out := cloneSession(&s)
	return &out, nil
}

func (m *memStore) session(userID uuid.UUID) *types.AssessmentSession {
	s, _ := m.GetSession(context.Background(), userID)
	return s
}

type memTx struct {
	store    *memStore
	roadmaps map[uuid.UUID]*types.StoredRoadmap
	flags    map[uuid.UUID]bool
}

func (tx *memTx) UpsertRoadmap(_ context.Context, userID uuid.UUID, careerTitle string, payload types.CareerRoadmap) error {
	if tx.store.roadmapErr != nil {
		return tx.store.roadmapErr
	}
	tx.roadmaps[userID] = &types.StoredRoadmap{
		UserID:      userID,
		CareerTitle: careerTitle,
		Payload:     payload,
		GeneratedAt: time.Now().UTC(),
	}
	return nil
}

func (tx *memTx) SetAssessmentCompleted(_ context.Context, userID uuid.UUID, completed bool) error {
	tx.flags[userID] = completed
	return nil
}

func cloneSession(s *types.AssessmentSession) types.AssessmentSession {
	cp := *s
	cp.Answers = append([]types.QAPair(nil), s.Answers...)
	cp.ConversationHistory = append([]types.HistoryMessage(nil), s.ConversationHistory...)
	if s.Result != nil {
		r := *s.Result
		cp.Result = &r
	}
	cp.Normalize()
	return cp
}

type recordedEvent struct {
	userID   uuid.UUID
	kind     types.ActivityType
	metadata map[string]any
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
	// failOn limits err to a single activity type when set.
	failOn types.ActivityType
}

func (r *fakeRecorder) Record(_ context.Context, userID uuid.UUID, activityType types.ActivityType, metadata map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil && (r.failOn == "" || r.failOn == activityType) {
		return r.err
	}
	r.events = append(r.events, recordedEvent{userID: userID, kind: activityType, metadata: metadata})
	return nil
}

func (r *fakeRecorder) kinds() []types.ActivityType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.ActivityType, len(r.events))
	for i, e := range r.events {
		out[i] = e.kind
	}
	return out
}

func (r *fakeRecorder) last(kind types.ActivityType) (recordedEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].kind == kind {
			return r.events[i], true
		}
	}
	return recordedEvent{}, false
}

var errStoreDown = errors.New("store unavailable")
