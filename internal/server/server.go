package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/career-portal/internal/activity"
	"github.com/jonathan/career-portal/internal/catalog"
	"github.com/jonathan/career-portal/internal/config"
	"github.com/jonathan/career-portal/internal/db"
	"github.com/jonathan/career-portal/internal/server/middleware"
	"github.com/jonathan/career-portal/internal/server/ratelimit"
	"github.com/jonathan/career-portal/internal/types"
	"go.uber.org/zap"
)

// DBClient is the storage surface used by the HTTP handlers. *db.DB
// implements it.
type DBClient interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, in db.CreateUserInput) (*db.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	GetUserByIdentifier(ctx context.Context, identifier string) (*db.User, error)
	FindUserForLogin(ctx context.Context, identifier string) (*db.User, error)
	ListUsers(ctx context.Context, limit int) ([]db.User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID) error

	GetRoadmap(ctx context.Context, userID uuid.UUID) (*types.StoredRoadmap, error)

	CreateQuestion(ctx context.Context, q *types.Question) (*types.Question, error)
	GetQuestion(ctx context.Context, id uuid.UUID) (*types.Question, error)
	ListQuestions(ctx context.Context, filters db.QuestionFilters) ([]types.Question, error)
	UpdateQuestionStatus(ctx context.Context, id uuid.UUID, status string) (bool, error)
	DeleteQuestion(ctx context.Context, id uuid.UUID) (bool, error)
	CreateAnswer(ctx context.Context, a *types.Answer) (*types.Answer, error)
	ListAnswers(ctx context.Context, questionID uuid.UUID) ([]types.Answer, error)
	MarkAnswerHelpful(ctx context.Context, id uuid.UUID) (*types.Answer, error)
}

// AssessmentEngine runs assessment conversations. *assessment.Engine
// implements it.
type AssessmentEngine interface {
	Start(ctx context.Context, identifier string) (*types.AssessmentProgress, error)
	SubmitAnswer(ctx context.Context, identifier, answer string) (*types.AssessmentProgress, error)
	GetStatus(ctx context.Context, identifier string) (*types.AssessmentProgress, error)
}

// ActivityLog records and lists user activity. *activity.Recorder
// implements it.
type ActivityLog interface {
	Record(ctx context.Context, userID uuid.UUID, activityType types.ActivityType, metadata map[string]any) error
	Recent(ctx context.Context, userID uuid.UUID) ([]activity.RecentEvent, error)
	List(ctx context.Context, userID uuid.UUID, limit int) ([]types.Activity, error)
}

// Config holds server configuration.
type Config struct {
	Port int
}

// Deps are the collaborators the server routes requests to.
type Deps struct {
	DB        DBClient
	Engine    AssessmentEngine
	Activity  ActivityLog
	Catalog   *catalog.Catalog
	JWT       *config.JWTConfig
	Password  *config.PasswordConfig
	RateLimit *ratelimit.Config
	Logger    *zap.Logger
}

// Server represents the HTTP server.
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	db          DBClient
	engine      AssessmentEngine
	activity    ActivityLog
	catalog     *catalog.Catalog
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler
	validate    *validator.Validate
	logger      *zap.Logger
}

// New creates a server and registers its routes.
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.DB == nil || deps.Engine == nil || deps.Activity == nil || deps.Catalog == nil {
		return nil, fmt.Errorf("server requires db, engine, activity and catalog")
	}
	if deps.JWT == nil || deps.Password == nil {
		return nil, fmt.Errorf("server requires JWT and password configuration")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		db:          deps.DB,
		engine:      deps.Engine,
		activity:    deps.Activity,
		catalog:     deps.Catalog,
		rateLimiter: ratelimit.NewLimiter(deps.RateLimit),
		jwtService:  NewJWTService(deps.JWT),
		validate:    types.NewValidator(),
		logger:      logger,
	}
	s.userService = NewUserService(deps.DB, deps.Password)
	s.authHandler = NewAuthHandler(s)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Assessment
	mux.HandleFunc("POST /career-assessment", s.handleAssessmentAction)
	mux.HandleFunc("GET /career-assessment", s.handleAssessmentStatus)

	// Users and authentication
	mux.HandleFunc("POST /users", s.authHandler.Register)
	mux.HandleFunc("GET /users", s.handleListUsers)
	mux.HandleFunc("GET /users/{id}", s.handleGetUser)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	requireAuth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	mux.Handle("GET /auth/me", requireAuth(http.HandlerFunc(s.authHandler.Me)))
	mux.Handle("POST /auth/logout", requireAuth(http.HandlerFunc(s.authHandler.Logout)))

	// Activity
	mux.HandleFunc("POST /activity", s.handleRecordActivity)
	mux.HandleFunc("GET /activity", s.handleListActivity)
	mux.HandleFunc("GET /activity/recent", s.handleRecentActivity)

	// Roadmaps and catalog
	mux.HandleFunc("GET /roadmaps/{user_id}", s.handleGetRoadmap)
	mux.HandleFunc("GET /roles", s.handleListRoles)
	mux.HandleFunc("GET /roles/resolve", s.handleResolveRole)

	// Questions and answers
	mux.HandleFunc("POST /questions", s.handleCreateQuestion)
	mux.HandleFunc("GET /questions", s.handleListQuestions)
	mux.HandleFunc("GET /questions/{id}", s.handleGetQuestion)
	mux.HandleFunc("PATCH /questions/{id}/status", s.handleUpdateQuestionStatus)
	mux.HandleFunc("DELETE /questions/{id}", s.handleDeleteQuestion)
	mux.HandleFunc("POST /questions/{id}/answers", s.handleCreateAnswer)
	mux.HandleFunc("GET /questions/{id}/answers", s.handleListAnswers)
	mux.HandleFunc("POST /answers/{id}/helpful", s.handleMarkHelpful)

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects requests over their tier's budget with 429.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging logs one line per request.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// handleHealth reports liveness and database reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.db.Ping(ctx); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": "unreachable"})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
}

// envelope is the body of every portal API response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// dataResponse writes a success envelope around data.
func (s *Server) dataResponse(w http.ResponseWriter, status int, data any, message string) {
	s.jsonResponse(w, status, envelope{Success: true, Data: data, Message: message})
}

// errorResponse writes a failure envelope.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, envelope{Success: false, Error: message})
}

// failure maps err to a status and writes it. Server errors are logged and
// reported to the client as fallback.
func (s *Server) failure(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(fallback,
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		s.errorResponse(w, status, fallback)
		return
	}
	s.errorResponse(w, status, clientMessage(err))
}

// decodeJSON reads the request body into dst.
func (s *Server) decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &ErrValidation{Field: "body", Message: "Invalid request body"}
	}
	return nil
}

// validateStruct runs the validator and converts the first failure.
func (s *Server) validateStruct(v any) error {
	if err := s.validate.Struct(v); err != nil {
		return validationError(err)
	}
	return nil
}

// resolveUser looks a user up by UUID or legacy id.
func (s *Server) resolveUser(ctx context.Context, identifier string) (*db.User, error) {
	user, err := s.db.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	if user == nil {
		return nil, &ErrUserNotFound{Identifier: identifier}
	}
	return user, nil
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ErrValidation{Field: name, Message: fmt.Sprintf("Invalid %s", name)}
	}
	return n, nil
}

// pathUUID parses a UUID path parameter.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: name, Message: "Invalid " + name}
	}
	return id, nil
}

// extractClientID uses the IP address from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	if info.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(info.RetryAfter.Seconds()+0.5)))
	}
	s.logger.Warn("rate limit exceeded",
		zap.String("client", s.extractClientID(r)),
		zap.String("tier", info.Tier),
		zap.Int("limit", info.Limit),
		zap.Time("reset_at", info.ResetTime),
	)
	s.errorResponse(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
}
