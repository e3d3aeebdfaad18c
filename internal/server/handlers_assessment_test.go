package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/jonathan/career-portal/internal/assessment"
	"github.com/jonathan/career-portal/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssessmentAction(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantError  string
		wantCall   string
	}{
		{"start with uuid", map[string]any{"userId": "7f1c2a52-6f0b-4e4b-9d59-1d8f3c8a9b10", "action": "start"}, http.StatusOK, "", "start:7f1c2a52-6f0b-4e4b-9d59-1d8f3c8a9b10"},
		{"start with numeric legacy id", map[string]any{"userId": 42, "action": "start"}, http.StatusOK, "", "start:42"},
		{"answer", map[string]any{"userId": "42", "action": "answer", "answer": "Frontend Developer"}, http.StatusOK, "", "answer:42:Frontend Developer"},
		{"missing user", map[string]any{"action": "start"}, http.StatusBadRequest, "Missing userId or action", ""},
		{"missing action", map[string]any{"userId": "42"}, http.StatusBadRequest, "Missing userId or action", ""},
		{"blank answer", map[string]any{"userId": "42", "action": "answer", "answer": "   "}, http.StatusBadRequest, "Missing answer text", ""},
		{"unknown action", map[string]any{"userId": "42", "action": "skip"}, http.StatusBadRequest, "Invalid action", ""},
		{"padded action", map[string]any{"userId": " 42 ", "action": " start "}, http.StatusOK, "", "start:42"},
		{"blank user", map[string]any{"userId": "   ", "action": "start"}, http.StatusBadRequest, "Missing userId or action", ""},
		{"malformed body", "{not json", http.StatusBadRequest, "Invalid request body", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			w := ts.do(t, http.MethodPost, "/career-assessment", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)

			resp := decode(t, w)
			if tt.wantError != "" {
				assert.False(t, resp.Success)
				assert.Equal(t, tt.wantError, resp.Error)
				assert.Empty(t, ts.engine.calls)
				return
			}
			assert.True(t, resp.Success)
			assert.Equal(t, []string{tt.wantCall}, ts.engine.calls)

			var progress types.AssessmentProgress
			require.NoError(t, json.Unmarshal(resp.Data, &progress))
			assert.Equal(t, types.TotalQuestions, progress.TotalQuestions)
		})
	}
}

func TestAssessmentAction_EngineErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"unknown user", assessment.ErrNotFound, http.StatusNotFound, "User not found"},
		{"completed session", fmt.Errorf("%w: assessment already completed; start a retake", assessment.ErrInvalidInput), http.StatusBadRequest, "Assessment already completed; start a retake"},
		{"store failure", &assessment.PersistenceError{Op: "submit answer", Err: assert.AnError}, http.StatusInternalServerError, "Failed to process assessment"},
		{"roadmap failure", &assessment.UpstreamError{Op: "store roadmap", Err: assert.AnError}, http.StatusInternalServerError, "Failed to process assessment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.engine.err = tt.err

			w := ts.do(t, http.MethodPost, "/career-assessment", map[string]any{"userId": "42", "action": "answer", "answer": "x"})
			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.NotContains(t, w.Body.String(), assert.AnError.Error())
		})
	}
}

func TestAssessmentStatus(t *testing.T) {
	t.Run("missing user_id", func(t *testing.T) {
		ts := newTestServer(t)
		w := ts.do(t, http.MethodGet, "/career-assessment", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Missing user_id", decode(t, w).Error)
	})

	t.Run("completed", func(t *testing.T) {
		ts := newTestServer(t)
		generated := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		ts.engine.progress = &types.AssessmentProgress{
			Completed:           true,
			AssessmentCompleted: true,
			AssessmentStarted:   true,
			AssessmentStep:      types.TotalQuestions,
			TotalQuestions:      types.TotalQuestions,
			Answers:             []types.QAPair{},
			ConversationHistory: []types.HistoryMessage{},
			Result:              &types.AssessmentResult{CareerPersona: "Interface-Focused Builder"},
			UpdatedAt:           &generated,
		}

		w := ts.do(t, http.MethodGet, "/career-assessment?user_id=42", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var progress types.AssessmentProgress
		decodeData(t, w, &progress)
		assert.True(t, progress.AssessmentCompleted)
		require.NotNil(t, progress.Result)
		assert.Equal(t, "Interface-Focused Builder", progress.Result.CareerPersona)
		require.NotNil(t, progress.UpdatedAt)
		assert.True(t, generated.Equal(*progress.UpdatedAt))
		assert.Equal(t, []string{"status:42"}, ts.engine.calls)
	})

	t.Run("unknown user", func(t *testing.T) {
		ts := newTestServer(t)
		ts.engine.err = assessment.ErrNotFound
		w := ts.do(t, http.MethodGet, "/career-assessment?user_id=999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "User not found", decode(t, w).Error)
	})

	t.Run("store failure", func(t *testing.T) {
		ts := newTestServer(t)
		ts.engine.err = &assessment.PersistenceError{Op: "load assessment", Err: assert.AnError}
		w := ts.do(t, http.MethodGet, "/career-assessment?user_id=42", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Failed to fetch assessment", decode(t, w).Error)
	})
}
