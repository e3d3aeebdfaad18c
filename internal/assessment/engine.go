// Package assessment drives the fixed-length career assessment conversation.
//
// The Engine owns the per-user state machine (not started, in progress,
// completed). Storage, user lookup and activity logging are collaborators
// injected through the interfaces below; role resolution is delegated to the
// read-only catalog.
package assessment

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/career-portal/internal/catalog"
	"github.com/jonathan/career-portal/internal/logger"
	"github.com/jonathan/career-portal/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// UserDirectory resolves request identifiers to users.
type UserDirectory interface {
	// ResolveUser accepts a UUID or a numeric legacy id and returns
	// (nil, nil) when no user matches.
	ResolveUser(ctx context.Context, identifier string) (*types.User, error)
}

// SessionTx exposes the writes that must commit together with a session
// update.
type SessionTx interface {
	UpsertRoadmap(ctx context.Context, userID uuid.UUID, careerTitle string, payload types.CareerRoadmap) error
	SetAssessmentCompleted(ctx context.Context, userID uuid.UUID, completed bool) error
}

// MutateFunc edits a session in place. found is false when the store created
// a blank session for the call. Returning an error discards every change made
// through s and tx.
type MutateFunc func(tx SessionTx, s *types.AssessmentSession, found bool) error

// SessionStore persists one assessment session per user.
type SessionStore interface {
	// GetSession returns (nil, nil) when the user has no session.
	GetSession(ctx context.Context, userID uuid.UUID) (*types.AssessmentSession, error)
	// UpsertSession runs mutate as one atomic read-modify-write and returns
	// the committed session. A concurrent first creation for the same user
	// is retried once as an update.
	UpsertSession(ctx context.Context, userID uuid.UUID, mutate MutateFunc) (*types.AssessmentSession, error)
}

// RoadmapReader loads a user's stored roadmap.
type RoadmapReader interface {
	// GetRoadmap returns (nil, nil) when no roadmap was generated.
	GetRoadmap(ctx context.Context, userID uuid.UUID) (*types.StoredRoadmap, error)
}

// ActivityRecorder records user activity events.
type ActivityRecorder interface {
	Record(ctx context.Context, userID uuid.UUID, activityType types.ActivityType, metadata map[string]any) error
}

// Engine runs assessment conversations.
type Engine struct {
	users    UserDirectory
	sessions SessionStore
	roadmaps RoadmapReader
	activity ActivityRecorder
	catalog  *catalog.Catalog
	logger   *zap.Logger
}

// NewEngine creates an Engine. A nil logger is replaced with a no-op logger.
func NewEngine(users UserDirectory, sessions SessionStore, roadmaps RoadmapReader, activity ActivityRecorder, cat *catalog.Catalog, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		users:    users,
		sessions: sessions,
		roadmaps: roadmaps,
		activity: activity,
		catalog:  cat,
		logger:   log,
	}
}

// Start resets the user's assessment to the first question. Calling it on an
// existing session is a retake.
func (e *Engine) Start(ctx context.Context, identifier string) (*types.AssessmentProgress, error) {
	user, err := e.resolveUser(ctx, identifier)
	if err != nil {
		return nil, err
	}

	var retake bool
	session, err := e.sessions.UpsertSession(ctx, user.ID, func(tx SessionTx, s *types.AssessmentSession, found bool) error {
		retake = user.AssessmentCompleted || (found && (s.IsCompleted || len(s.Answers) > 0))
		s.Reset()
		if err := tx.SetAssessmentCompleted(ctx, user.ID, false); err != nil {
			return err
		}
		return e.record(ctx, user.ID, types.ActivityAssessmentStart, map[string]any{
			"assessmentStep": s.Step,
			"retake":         retake,
		})
	})
	if err != nil {
		return nil, wrapPersistence("start assessment", err)
	}

	e.logger.Info("assessment started",
		zap.String("user_id", user.ID.String()),
		zap.Bool("retake", retake),
	)

	return progressOf(session), nil
}

// completion carries what the completion step produced for the
// ROADMAP_GENERATED event.
type completion struct {
	roadmap  types.CareerRoadmap
	match    catalog.MatchKind
	category Category
}

// SubmitAnswer records an answer to the current question. The sixth answer
// completes the assessment: the first answer is resolved to a roadmap, the
// roadmap is stored and the user is flagged complete in the same commit as
// the session. Events are recorded before that commit, so a strict recorder
// failure leaves the session untouched and the answer can be resubmitted.
func (e *Engine) SubmitAnswer(ctx context.Context, identifier, answer string) (*types.AssessmentProgress, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, invalidInput("missing answer text")
	}

	user, err := e.resolveUser(ctx, identifier)
	if err != nil {
		return nil, err
	}

	session, err := e.sessions.UpsertSession(ctx, user.ID, func(tx SessionTx, s *types.AssessmentSession, found bool) error {
		s.Normalize()
		if !found || len(s.ConversationHistory) == 0 {
			s.Reset()
		}
		if s.IsCompleted {
			return invalidInput("assessment already completed; start a retake")
		}

		if len(s.Answers) < types.TotalQuestions {
			question := s.CurrentQuestion
			if question == "" {
				question = types.FirstQuestion
			}
			s.Answers = append(s.Answers, types.QAPair{Question: question, Answer: answer})
			s.ConversationHistory = append(s.ConversationHistory, types.HistoryMessage{Role: types.RoleUser, Content: answer})

			step := len(s.Answers)
			if err := e.record(ctx, user.ID, types.ActivityQuestionAnswered, map[string]any{
				"step":     step,
				"question": question,
				"answer":   answer,
			}); err != nil {
				return err
			}

			if step < types.TotalQuestions {
				next, substituted := NextQuestionWithoutDuplicates(answer, step, s.ConversationHistory, s.Answers)
				s.ConversationHistory = append(s.ConversationHistory, types.HistoryMessage{Role: types.RoleAssistant, Content: next})
				s.Step = step + 1
				s.CurrentQuestion = next
				if substituted {
					s.FallbackQuestionUsed = true
				}
				return nil
			}
		}

		done, err := e.complete(ctx, tx, user.ID, s)
		if err != nil {
			return err
		}
		return e.record(ctx, user.ID, types.ActivityRoadmapGenerated, map[string]any{
			"persona":         done.roadmap.CareerPersona,
			"suggestedCareer": done.roadmap.RecommendedCareer,
			"canonicalRole":   done.roadmap.CanonicalRole,
			"category":        string(done.category),
			"match":           string(done.match),
			"mode":            "rule_based",
		})
	})
	if err != nil {
		return nil, wrapPersistence("submit answer", err)
	}

	return progressOf(session), nil
}

// complete resolves the first answer to a roadmap and moves s to the
// completed state. Writes go through tx so they commit with the session.
func (e *Engine) complete(ctx context.Context, tx SessionTx, userID uuid.UUID, s *types.AssessmentSession) (*completion, error) {
	interest := strings.TrimSpace(s.Answers[0].Answer)
	category := DetectCategory(interest)
	roadmap, match := e.catalog.RoadmapWithMatch(interest)

	e.logger.Info("resolved career interest",
		zap.String("user_id", userID.String()),
		zap.String("interest", logger.Truncate(interest, 80)),
		zap.String("match", string(match)),
		zap.String("canonical_role", roadmap.CanonicalRole),
		zap.String("category", string(category)),
	)

	if err := tx.UpsertRoadmap(ctx, userID, roadmap.RecommendedCareer, roadmap); err != nil {
		return nil, &UpstreamError{Op: "store roadmap", Err: err}
	}
	if err := tx.SetAssessmentCompleted(ctx, userID, true); err != nil {
		return nil, &PersistenceError{Op: "mark assessment completed", Err: err}
	}

	s.Result = &types.AssessmentResult{
		StrengthProfile:     roadmap.StrengthProfile,
		CareerPersona:       roadmap.CareerPersona,
		SuggestedCareerPath: roadmap.RecommendedCareer,
		CanonicalRole:       roadmap.CanonicalRole,
		Roadmap:             roadmap,
		SkillGapPreview:     roadmap.SkillGapPreview,
	}
	s.IsCompleted = true
	s.Step = types.TotalQuestions
	s.CurrentQuestion = ""

	return &completion{roadmap: roadmap, match: match, category: category}, nil
}

// GetStatus returns the user's progress without changing it. Reading a
// completed assessment records a SKILL_GAP_CHECK event.
func (e *Engine) GetStatus(ctx context.Context, identifier string) (*types.AssessmentProgress, error) {
	user, err := e.resolveUser(ctx, identifier)
	if err != nil {
		return nil, err
	}

	var (
		session *types.AssessmentSession
		stored  *types.StoredRoadmap
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := e.sessions.GetSession(gCtx, user.ID)
		session = s
		return err
	})
	g.Go(func() error {
		r, err := e.roadmaps.GetRoadmap(gCtx, user.ID)
		stored = r
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, &PersistenceError{Op: "load assessment", Err: err}
	}

	if session == nil {
		return &types.AssessmentProgress{
			AssessmentCompleted: user.AssessmentCompleted,
			AssessmentStarted:   false,
			AssessmentStep:      0,
			TotalQuestions:      types.TotalQuestions,
			CurrentQuestion:     types.FirstQuestion,
			Answers:             []types.QAPair{},
			ConversationHistory: []types.HistoryMessage{},
		}, nil
	}

	session.Normalize()
	progress := progressOf(session)
	if !session.IsCompleted || session.Result == nil {
		progress.AssessmentCompleted = user.AssessmentCompleted
		return progress, nil
	}

	if err := e.record(ctx, user.ID, types.ActivitySkillGapCheck, map[string]any{
		"source": "assessment_fetch",
	}); err != nil {
		return nil, err
	}

	updatedAt := session.UpdatedAt
	if stored != nil {
		updatedAt = stored.GeneratedAt
	}
	progress.UpdatedAt = &updatedAt
	return progress, nil
}

func (e *Engine) resolveUser(ctx context.Context, identifier string) (*types.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, invalidInput("missing userId")
	}
	user, err := e.users.ResolveUser(ctx, identifier)
	if err != nil {
		return nil, &PersistenceError{Op: "resolve user", Err: err}
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func (e *Engine) record(ctx context.Context, userID uuid.UUID, activityType types.ActivityType, metadata map[string]any) error {
	if e.activity == nil {
		return nil
	}
	if err := e.activity.Record(ctx, userID, activityType, metadata); err != nil {
		return &PersistenceError{Op: "record " + string(activityType), Err: err}
	}
	return nil
}

// progressOf builds the response payload for a session.
func progressOf(s *types.AssessmentSession) *types.AssessmentProgress {
	p := &types.AssessmentProgress{
		Completed:           s.IsCompleted,
		AssessmentCompleted: s.IsCompleted,
		AssessmentStarted:   true,
		AssessmentStep:      s.Step,
		TotalQuestions:      types.TotalQuestions,
		CurrentQuestion:     s.CurrentQuestion,
		Answers:             s.Answers,
		ConversationHistory: s.ConversationHistory,
	}
	if s.IsCompleted {
		p.Result = s.Result
	}
	if p.Answers == nil {
		p.Answers = []types.QAPair{}
	}
	if p.ConversationHistory == nil {
		p.ConversationHistory = []types.HistoryMessage{}
	}
	return p
}
