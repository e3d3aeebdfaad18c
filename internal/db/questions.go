package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/career-portal/internal/types"
)

const questionColumns = `id, user_id, subject_id, question_text, question_type, image_url, audio_url,
	language, response_language, status, created_at`

func scanQuestion(row pgx.Row) (*types.Question, error) {
	var q types.Question
	var imageURL, audioURL *string
	err := row.Scan(&q.ID, &q.UserID, &q.SubjectID, &q.Text, &q.Type, &imageURL, &audioURL,
		&q.Language, &q.ResponseLanguage, &q.Status, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	q.ImageURL = deref(imageURL)
	q.AudioURL = deref(audioURL)
	return &q, nil
}

// CreateQuestion stores a new pending question.
func (db *DB) CreateQuestion(ctx context.Context, q *types.Question) (*types.Question, error) {
	qType := q.Type
	if qType == "" {
		qType = "text"
	}
	lang := q.Language
	if lang == "" {
		lang = "en"
	}
	respLang := q.ResponseLanguage
	if respLang == "" {
		respLang = lang
	}

	saved, err := scanQuestion(db.pool.QueryRow(ctx,
		`INSERT INTO questions (user_id, subject_id, question_text, question_type, image_url, audio_url,
		                        language, response_language)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+questionColumns,
		q.UserID, q.SubjectID, q.Text, qType, nullable(q.ImageURL), nullable(q.AudioURL), lang, respLang,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	return saved, nil
}

// GetQuestion retrieves a question by ID. Returns (nil, nil) when absent.
func (db *DB) GetQuestion(ctx context.Context, id uuid.UUID) (*types.Question, error) {
	q, err := scanQuestion(db.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return q, nil
}

// QuestionFilters holds optional filters for listing questions
type QuestionFilters struct {
	UserID uuid.UUID
	Status string
	Limit  int
}

// ListQuestions retrieves questions newest first with optional filters
func (db *DB) ListQuestions(ctx context.Context, filters QuestionFilters) ([]types.Question, error) {
	if filters.Limit <= 0 {
		filters.Limit = 50
	}

	query := `SELECT ` + questionColumns + ` FROM questions WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.UserID != uuid.Nil {
		query += fmt.Sprintf(" AND user_id = $%d", argNum)
		args = append(args, filters.UserID)
		argNum++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filters.Status)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	questions := []types.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

// UpdateQuestionStatus sets a question's status. Returns false when the
// question does not exist.
func (db *DB) UpdateQuestionStatus(ctx context.Context, id uuid.UUID, status string) (bool, error) {
	result, err := db.pool.Exec(ctx, `UPDATE questions SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return false, fmt.Errorf("failed to update question status: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// DeleteQuestion deletes a question and its answers (via cascade). Returns
// false when the question does not exist.
func (db *DB) DeleteQuestion(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := db.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete question: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

const answerColumns = `id, question_id, answer_text, answer_type, teacher_id, confidence_score,
	helpful_votes, created_at`

func scanAnswer(row pgx.Row) (*types.Answer, error) {
	var a types.Answer
	err := row.Scan(&a.ID, &a.QuestionID, &a.Text, &a.Type, &a.TeacherID, &a.ConfidenceScore,
		&a.HelpfulVotes, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAnswer stores an answer and marks its question answered in one
// transaction. Returns (nil, nil) when the question does not exist.
func (db *DB) CreateAnswer(ctx context.Context, a *types.Answer) (*types.Answer, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	result, err := tx.Exec(ctx, `UPDATE questions SET status = $2 WHERE id = $1`, a.QuestionID, types.QuestionAnswered)
	if err != nil {
		return nil, fmt.Errorf("failed to mark question answered: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, nil
	}

	saved, err := scanAnswer(tx.QueryRow(ctx,
		`INSERT INTO answers (question_id, answer_text, answer_type, teacher_id, confidence_score)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+answerColumns,
		a.QuestionID, a.Text, a.Type, a.TeacherID, a.ConfidenceScore,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create answer: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit answer: %w", err)
	}
	return saved, nil
}

// ListAnswers returns a question's answers oldest first.
func (db *DB) ListAnswers(ctx context.Context, questionID uuid.UUID) ([]types.Answer, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+answerColumns+` FROM answers WHERE question_id = $1 ORDER BY created_at ASC`,
		questionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	defer rows.Close()

	answers := []types.Answer{}
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		answers = append(answers, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	return answers, nil
}

// MarkAnswerHelpful increments an answer's helpful vote count and returns
// the updated answer. Returns (nil, nil) when absent.
func (db *DB) MarkAnswerHelpful(ctx context.Context, id uuid.UUID) (*types.Answer, error) {
	a, err := scanAnswer(db.pool.QueryRow(ctx,
		`UPDATE answers SET helpful_votes = helpful_votes + 1 WHERE id = $1 RETURNING `+answerColumns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to mark answer helpful: %w", err)
	}
	return a, nil
}
