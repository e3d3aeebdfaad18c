package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/career-portal/internal/assessment"
	"github.com/jonathan/career-portal/internal/types"
)

const sessionColumns = `id, user_id, answers, conversation_history, assessment_step, current_question,
	is_completed, fallback_question_used, result, created_at, updated_at`

func scanSession(row pgx.Row) (*types.AssessmentSession, error) {
	var s types.AssessmentSession
	var answers, history, result []byte
	err := row.Scan(&s.ID, &s.UserID, &answers, &history, &s.Step, &s.CurrentQuestion,
		&s.IsCompleted, &s.FallbackQuestionUsed, &result, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answers, &s.Answers); err != nil {
		return nil, fmt.Errorf("failed to decode answers: %w", err)
	}
	if err := json.Unmarshal(history, &s.ConversationHistory); err != nil {
		return nil, fmt.Errorf("failed to decode conversation history: %w", err)
	}
	if len(result) > 0 {
		var r types.AssessmentResult
		if err := json.Unmarshal(result, &r); err != nil {
			return nil, fmt.Errorf("failed to decode assessment result: %w", err)
		}
		s.Result = &r
	}
	s.Normalize()
	return &s, nil
}

// GetSession retrieves the user's assessment session. Returns (nil, nil)
// when the user has none.
func (db *DB) GetSession(ctx context.Context, userID uuid.UUID) (*types.AssessmentSession, error) {
	s, err := scanSession(db.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM assessment_sessions WHERE user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get assessment session: %w", err)
	}
	return s, nil
}

// UpsertSession locks the user's session row, applies mutate and writes the
// result in one transaction. Writes mutate makes through its SessionTx join
// the same transaction. When two first submissions race to insert, the loser
// retries once and then sees the winner's row.
func (db *DB) UpsertSession(ctx context.Context, userID uuid.UUID, mutate assessment.MutateFunc) (*types.AssessmentSession, error) {
	s, err := db.upsertSessionOnce(ctx, userID, mutate)
	if err != nil && isUniqueViolation(err) {
		s, err = db.upsertSessionOnce(ctx, userID, mutate)
	}
	return s, err
}

func (db *DB) upsertSessionOnce(ctx context.Context, userID uuid.UUID, mutate assessment.MutateFunc) (*types.AssessmentSession, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	s, err := scanSession(tx.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM assessment_sessions WHERE user_id = $1 FOR UPDATE`, userID))
	found := err == nil
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to lock assessment session: %w", err)
	}
	if !found {
		s = &types.AssessmentSession{UserID: userID}
		s.Normalize()
	}

	if err := mutate(&sessionTx{tx: tx}, s, found); err != nil {
		return nil, err
	}

	answers, err := json.Marshal(s.Answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}
	history, err := json.Marshal(s.ConversationHistory)
	if err != nil {
		return nil, fmt.Errorf("failed to encode conversation history: %w", err)
	}
	var result []byte
	if s.Result != nil {
		if result, err = json.Marshal(s.Result); err != nil {
			return nil, fmt.Errorf("failed to encode assessment result: %w", err)
		}
	}

	var saved *types.AssessmentSession
	if found {
		saved, err = scanSession(tx.QueryRow(ctx,
			`UPDATE assessment_sessions
			 SET answers = $2, conversation_history = $3, assessment_step = $4, current_question = $5,
			     is_completed = $6, fallback_question_used = $7, result = $8, updated_at = NOW()
			 WHERE user_id = $1
			 RETURNING `+sessionColumns,
			userID, answers, history, s.Step, s.CurrentQuestion, s.IsCompleted, s.FallbackQuestionUsed, result,
		))
	} else {
		saved, err = scanSession(tx.QueryRow(ctx,
			`INSERT INTO assessment_sessions
			   (user_id, answers, conversation_history, assessment_step, current_question,
			    is_completed, fallback_question_used, result)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING `+sessionColumns,
			userID, answers, history, s.Step, s.CurrentQuestion, s.IsCompleted, s.FallbackQuestionUsed, result,
		))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save assessment session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit assessment session: %w", err)
	}
	return saved, nil
}

// sessionTx routes completion writes through the session transaction.
type sessionTx struct {
	tx pgx.Tx
}

func (t *sessionTx) UpsertRoadmap(ctx context.Context, userID uuid.UUID, careerTitle string, payload types.CareerRoadmap) error {
	_, err := upsertRoadmap(ctx, t.tx, userID, careerTitle, payload)
	return err
}

func (t *sessionTx) SetAssessmentCompleted(ctx context.Context, userID uuid.UUID, completed bool) error {
	return setAssessmentCompleted(ctx, t.tx, userID, completed)
}
