//nolint:revive // types is a standard Go package name pattern
package types

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// User roles
const (
	UserRoleStudent = "student"
	UserRoleTeacher = "teacher"
	UserRoleAdmin   = "admin"
)

var (
	namePattern  = regexp.MustCompile(`^[A-Za-z\s'.-]{2,80}$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9\-\s()]{7,20}$`)
	nonDigit     = regexp.MustCompile(`\D`)
)

// CreateUserRequest represents the request to register a new portal user.
type CreateUserRequest struct {
	Name              string `json:"name" validate:"required,personname"`
	PhoneNumber       string `json:"phone_number" validate:"required,phone"`
	Email             string `json:"email,omitempty" validate:"omitempty,email"`
	Password          string `json:"password" validate:"required,min=6"`
	Role              string `json:"role,omitempty" validate:"omitempty,oneof=student teacher admin"`
	RollNumber        string `json:"roll_number,omitempty"`
	PreferredLanguage string `json:"preferred_language,omitempty"`
	Location          string `json:"location,omitempty"`
	EducationLevel    string `json:"education_level,omitempty"`
}

// LoginRequest represents the login request. Identifier may be a phone
// number, email, roll number or legacy numeric id.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// User represents a user profile for API responses (avoids import cycle with db package).
type User struct {
	ID                  uuid.UUID  `json:"id"`
	LegacyID            int64      `json:"legacyId,omitempty"`
	Name                string     `json:"name"`
	Email               string     `json:"email,omitempty"`
	PhoneNumber         string     `json:"phone_number,omitempty"`
	Role                string     `json:"role"`
	RollNumber          string     `json:"roll_number,omitempty"`
	AssessmentCompleted bool       `json:"assessmentCompleted"`
	LastLoginAt         *time.Time `json:"lastLoginAt"`
	PreferredLanguage   string     `json:"preferred_language"`
	Location            string     `json:"location"`
	EducationLevel      string     `json:"education_level"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// LoginResponse represents the login/register response with user data and authentication token.
type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// NewValidator returns a validator with the portal's custom tags registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return namePattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return ValidPhone(fl.Field().String())
	})
	return v
}

// ValidPhone accepts 10-15 digit numbers with common separators.
func ValidPhone(phone string) bool {
	phone = strings.TrimSpace(phone)
	if !phonePattern.MatchString(phone) {
		return false
	}
	digits := nonDigit.ReplaceAllString(phone, "")
	return len(digits) >= 10 && len(digits) <= 15
}

// Validate validates the CreateUserRequest using the validator.
func (r *CreateUserRequest) Validate() error {
	return NewValidator().Struct(r)
}

// Validate validates the LoginRequest using the validator.
func (r *LoginRequest) Validate() error {
	return NewValidator().Struct(r)
}
