package server

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/career-portal/internal/server/middleware"
	"github.com/jonathan/career-portal/internal/types"
	"go.uber.org/zap"
)

// AuthHandler handles registration, login and session endpoints.
type AuthHandler struct {
	server      *Server
	userService *UserService
	jwtService  *JWTService
}

// NewAuthHandler creates an AuthHandler writing responses through s.
func NewAuthHandler(s *Server) *AuthHandler {
	return &AuthHandler{
		server:      s,
		userService: s.userService,
		jwtService:  s.jwtService,
	}
}

// Register handles POST /users.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.CreateUserRequest
	if err := h.server.decodeJSON(r, &req); err != nil {
		h.server.failure(w, r, err, "Internal server error")
		return
	}
	if err := h.server.validateStruct(&req); err != nil {
		h.server.failure(w, r, err, "Internal server error")
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		h.server.failure(w, r, err, "Internal server error")
		return
	}

	h.server.logger.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.Role),
	)
	h.server.dataResponse(w, http.StatusCreated, user, "User created successfully")
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := h.server.decodeJSON(r, &req); err != nil {
		h.server.failure(w, r, err, "Internal server error")
		return
	}
	if err := h.server.validateStruct(&req); err != nil {
		h.server.errorResponse(w, http.StatusBadRequest, "Missing login credentials")
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		var invalid *ErrInvalidCredentials
		if errors.As(err, &invalid) {
			h.server.logger.Warn("login rejected", zap.String("identifier", req.Identifier))
		}
		h.server.failure(w, r, err, "Internal server error")
		return
	}

	if err := h.server.activity.Record(r.Context(), user.ID, types.ActivityLogin, map[string]any{
		"loginIdentifier": req.Identifier,
		"role":            user.Role,
	}); err != nil {
		h.server.failure(w, r, err, "Internal server error")
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID, user.Role)
	if err != nil {
		h.server.failure(w, r, err, "Failed to generate token")
		return
	}

	h.server.dataResponse(w, http.StatusOK, types.LoginResponse{User: user, Token: token}, "Login successful")
}

// Me handles GET /auth/me. It runs behind AuthMiddleware.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		h.server.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.server.db.GetUser(r.Context(), userID)
	if err != nil {
		h.server.failure(w, r, err, "Internal server error")
		return
	}
	if user == nil {
		h.server.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	h.server.dataResponse(w, http.StatusOK, user.Public(), "")
}

// Logout handles POST /auth/logout. Tokens are stateless, so logout only
// records the event.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		h.server.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := h.server.activity.Record(r.Context(), userID, types.ActivityLogout, map[string]any{}); err != nil {
		h.server.failure(w, r, err, "Internal server error")
		return
	}
	h.server.dataResponse(w, http.StatusOK, nil, "Logged out")
}

// validationError converts the first validator failure into an ErrValidation
// with a client-facing message.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ErrValidation{Field: "body", Message: "Invalid request body"}
	}

	fe := fieldErrs[0]
	field := fe.Field()
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "Missing required field: " + field
	case "personname":
		msg = "Invalid name format"
	case "phone":
		msg = "Invalid phone number format"
	case "email":
		msg = "Invalid email format"
	case "min":
		if field == "password" {
			msg = "Password must be at least " + fe.Param() + " characters"
		} else {
			msg = field + " must be at least " + fe.Param() + " characters"
		}
	case "oneof":
		msg = "Invalid " + field + ": must be one of " + fe.Param()
	default:
		msg = "Invalid " + field
	}
	return &ErrValidation{Field: field, Message: msg}
}
