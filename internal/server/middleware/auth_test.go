package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticClaims uuid.UUID

func (c staticClaims) GetUserID() uuid.UUID { return uuid.UUID(c) }

type mapValidator map[string]uuid.UUID

func (m mapValidator) ValidateToken(token string) (UserIDGetter, error) {
	id, ok := m[token]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return staticClaims(id), nil
}

func serve(t *testing.T, validator TokenValidator, header string) (*httptest.ResponseRecorder, uuid.UUID, bool) {
	t.Helper()
	var (
		called bool
		got    uuid.UUID
	)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		id, err := GetUserID(r)
		require.NoError(t, err)
		got = id
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	AuthMiddleware(validator)(next).ServeHTTP(w, req)
	return w, got, called
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	userID := uuid.New()
	validator := mapValidator{"good-token": userID}

	for _, header := range []string{"Bearer good-token", "bearer good-token", "BeArEr  good-token"} {
		t.Run(header, func(t *testing.T) {
			w, got, called := serve(t, validator, header)
			assert.True(t, called)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, userID, got)
		})
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	validator := mapValidator{"good-token": uuid.New()}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"missing scheme", "good-token"},
		{"only scheme", "Bearer"},
		{"basic scheme", "Basic good-token"},
		{"extra parts", "Bearer good-token extra"},
		{"unknown token", "Bearer not.a.valid.jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _, called := serve(t, validator, tt.header)
			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, "Unauthorized", body["error"])
		})
	}
}

func TestGetUserID(t *testing.T) {
	userID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, err := GetUserID(req)
	assert.ErrorContains(t, err, "user ID not found")

	got, err := GetUserID(req.WithContext(WithUserID(req.Context(), userID)))
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	wrongType := req.WithContext(context.WithValue(req.Context(), userIDKey, "not-a-uuid"))
	got, err = GetUserID(wrongType)
	assert.Error(t, err)
	assert.Equal(t, uuid.Nil, got)
}
