package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-portal/internal/activity"
	"github.com/jonathan/career-portal/internal/catalog"
	"github.com/jonathan/career-portal/internal/config"
	"github.com/jonathan/career-portal/internal/db"
	"github.com/jonathan/career-portal/internal/server/ratelimit"
	"github.com/jonathan/career-portal/internal/types"
	"github.com/stretchr/testify/require"
)

// memDB is an in-memory DBClient.
type memDB struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*db.User
	nextID    int64
	roadmaps  map[uuid.UUID]*types.StoredRoadmap
	questions map[uuid.UUID]*types.Question
	answers   map[uuid.UUID]*types.Answer
	pingErr   error
	failAll   error
}

func newMemDB() *memDB {
	return &memDB{
		users:     make(map[uuid.UUID]*db.User),
		roadmaps:  make(map[uuid.UUID]*types.StoredRoadmap),
		questions: make(map[uuid.UUID]*types.Question),
		answers:   make(map[uuid.UUID]*types.Answer),
	}
}

func (m *memDB) Ping(context.Context) error { return m.pingErr }

func (m *memDB) CreateUser(_ context.Context, in db.CreateUserInput) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}
	email := strings.ToLower(in.Email)
	for _, u := range m.users {
		if u.PhoneNumber == in.PhoneNumber || (email != "" && u.Email == email) {
			return nil, db.ErrDuplicate
		}
	}
	role := in.Role
	if role == "" {
		role = types.UserRoleStudent
	}
	m.nextID++
	now := time.Now().UTC()
	u := &db.User{
		ID:                uuid.New(),
		LegacyID:          m.nextID,
		Name:              in.Name,
		Email:             email,
		PhoneNumber:       in.PhoneNumber,
		PasswordHash:      in.PasswordHash,
		Role:              role,
		RollNumber:        in.RollNumber,
		PreferredLanguage: "en",
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	m.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (m *memDB) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memDB) GetUserByIdentifier(ctx context.Context, identifier string) (*db.User, error) {
	if id, err := uuid.Parse(identifier); err == nil {
		return m.GetUser(ctx, id)
	}
	legacyID, err := strconv.ParseInt(identifier, 10, 64)
	if err != nil {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}
	for _, u := range m.users {
		if u.LegacyID == legacyID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memDB) FindUserForLogin(_ context.Context, identifier string) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}
	for _, u := range m.users {
		if u.PhoneNumber == identifier || u.Email == strings.ToLower(identifier) ||
			(u.RollNumber != "" && u.RollNumber == identifier) || strconv.FormatInt(u.LegacyID, 10) == identifier {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memDB) ListUsers(_ context.Context, limit int) ([]db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}
	out := make([]db.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LegacyID > out[j].LegacyID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memDB) TouchLastLogin(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		now := time.Now().UTC()
		u.LastLoginAt = &now
	}
	return nil
}

func (m *memDB) GetRoadmap(_ context.Context, userID uuid.UUID) (*types.StoredRoadmap, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}
	r, ok := m.roadmaps[userID]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *memDB) CreateQuestion(_ context.Context, q *types.Question) (*types.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *q
	cp.ID = uuid.New()
	if cp.Type == "" {
		cp.Type = "text"
	}
	if cp.Language == "" {
		cp.Language = "en"
	}
	cp.Status = types.QuestionPending
	cp.CreatedAt = time.Now().UTC()
	m.questions[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memDB) GetQuestion(_ context.Context, id uuid.UUID) (*types.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[id]
	if !ok {
		return nil, nil
	}
	cp := *q
	return &cp, nil
}

func (m *memDB) ListQuestions(_ context.Context, filters db.QuestionFilters) ([]types.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.Question
	for _, q := range m.questions {
		if filters.UserID != uuid.Nil && q.UserID != filters.UserID {
			continue
		}
		if filters.Status != "" && q.Status != filters.Status {
			continue
		}
		out = append(out, *q)
	}
	return out, nil
}

func (m *memDB) UpdateQuestionStatus(_ context.Context, id uuid.UUID, status string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[id]
	if !ok {
		return false, nil
	}
	q.Status = status
	return true, nil
}

func (m *memDB) DeleteQuestion(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.questions[id]; !ok {
		return false, nil
	}
	delete(m.questions, id)
	return true, nil
}

func (m *memDB) CreateAnswer(_ context.Context, a *types.Answer) (*types.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[a.QuestionID]
	if !ok {
		return nil, nil
	}
	q.Status = types.QuestionAnswered
	cp := *a
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now().UTC()
	m.answers[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memDB) ListAnswers(_ context.Context, questionID uuid.UUID) ([]types.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.Answer
	for _, a := range m.answers {
		if a.QuestionID == questionID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memDB) MarkAnswerHelpful(_ context.Context, id uuid.UUID) (*types.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.answers[id]
	if !ok {
		return nil, nil
	}
	a.HelpfulVotes++
	cp := *a
	return &cp, nil
}

// fakeEngine records calls and returns canned results.
type fakeEngine struct {
	mu       sync.Mutex
	calls    []string
	progress *types.AssessmentProgress
	err      error
}

func (e *fakeEngine) call(name string) (*types.AssessmentProgress, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, name)
	if e.err != nil {
		return nil, e.err
	}
	if e.progress != nil {
		return e.progress, nil
	}
	return &types.AssessmentProgress{
		AssessmentStarted:   true,
		AssessmentStep:      1,
		TotalQuestions:      types.TotalQuestions,
		CurrentQuestion:     types.FirstQuestion,
		Answers:             []types.QAPair{},
		ConversationHistory: []types.HistoryMessage{{Role: types.RoleAssistant, Content: types.FirstQuestion}},
	}, nil
}

func (e *fakeEngine) Start(_ context.Context, identifier string) (*types.AssessmentProgress, error) {
	return e.call("start:" + identifier)
}

func (e *fakeEngine) SubmitAnswer(_ context.Context, identifier, answer string) (*types.AssessmentProgress, error) {
	return e.call("answer:" + identifier + ":" + answer)
}

func (e *fakeEngine) GetStatus(_ context.Context, identifier string) (*types.AssessmentProgress, error) {
	return e.call("status:" + identifier)
}

// fakeActivity keeps recorded events in memory.
type fakeActivity struct {
	mu     sync.Mutex
	events []types.Activity
	err    error
}

func (a *fakeActivity) Record(_ context.Context, userID uuid.UUID, activityType types.ActivityType, metadata map[string]any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.events = append([]types.Activity{{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      activityType,
		Metadata:  metadata,
		Timestamp: time.Now().UTC(),
	}}, a.events...)
	return nil
}

func (a *fakeActivity) Recent(_ context.Context, userID uuid.UUID) ([]activity.RecentEvent, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := []activity.RecentEvent{}
	for _, e := range a.events {
		if e.UserID == userID {
			out = append(out, activity.RecentEvent{Type: e.Type, Metadata: e.Metadata, Timestamp: e.Timestamp})
		}
	}
	return out, nil
}

func (a *fakeActivity) List(_ context.Context, userID uuid.UUID, limit int) ([]types.Activity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := []types.Activity{}
	for _, e := range a.events {
		if e.UserID == userID && (limit <= 0 || len(out) < limit) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (a *fakeActivity) kinds(userID uuid.UUID) []types.ActivityType {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []types.ActivityType
	for _, e := range a.events {
		if e.UserID == userID {
			out = append(out, e.Type)
		}
	}
	return out
}

type testServer struct {
	*Server
	db       *memDB
	engine   *fakeEngine
	activity *fakeActivity
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithLimits(t, &ratelimit.Config{Enabled: false})
}

func newTestServerWithLimits(t *testing.T, limits *ratelimit.Config) *testServer {
	t.Helper()
	store := newMemDB()
	engine := &fakeEngine{}
	log := &fakeActivity{}
	s, err := New(Config{Port: 0}, Deps{
		DB:       store,
		Engine:   engine,
		Activity: log,
		Catalog:  catalog.MustDefault(),
		JWT: &config.JWTConfig{
			Secret:          testJWTSecret,
			ExpirationHours: 24,
			Issuer:          config.DefaultIssuer,
		},
		Password:  &config.PasswordConfig{BcryptCost: 10},
		RateLimit: limits,
	})
	require.NoError(t, err)
	return &testServer{Server: s, db: store, engine: engine, activity: log}
}

// do sends a request through the full middleware chain.
func (ts *testServer) do(t *testing.T, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)
	return w
}

// addUser registers a user with password "secret1" directly in the store.
func (ts *testServer) addUser(t *testing.T, name, phone string) *db.User {
	t.Helper()
	hash, err := (&config.PasswordConfig{BcryptCost: 10}).HashPassword("secret1")
	require.NoError(t, err)
	u, err := ts.db.CreateUser(context.Background(), db.CreateUserInput{
		Name:         name,
		PhoneNumber:  phone,
		Email:        strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		PasswordHash: hash,
	})
	require.NoError(t, err)
	return u
}

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response {
	t.Helper()
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var r response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r), w.Body.String())
	return r
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, dst any) response {
	t.Helper()
	r := decode(t, w)
	require.True(t, r.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(r.Data, dst))
	return r
}
