package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-portal/internal/types"
)

// User is a row of the users table.
type User struct {
	ID                  uuid.UUID  `json:"id"`
	LegacyID            int64      `json:"legacy_id"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	PhoneNumber         string     `json:"phone_number"`
	PasswordHash        string     `json:"-" db:"password_hash"` // Never serialize to JSON
	Role                string     `json:"role"`
	RollNumber          string     `json:"roll_number,omitempty"`
	PreferredLanguage   string     `json:"preferred_language"`
	Location            string     `json:"location"`
	EducationLevel      string     `json:"education_level"`
	AssessmentCompleted bool       `json:"assessment_completed"`
	LastLoginAt         *time.Time `json:"last_login_at"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Public returns the API view of the user, without credentials.
func (u *User) Public() *types.User {
	if u == nil {
		return nil
	}
	return &types.User{
		ID:                  u.ID,
		LegacyID:            u.LegacyID,
		Name:                u.Name,
		Email:               u.Email,
		PhoneNumber:         u.PhoneNumber,
		Role:                u.Role,
		RollNumber:          u.RollNumber,
		AssessmentCompleted: u.AssessmentCompleted,
		LastLoginAt:         u.LastLoginAt,
		PreferredLanguage:   u.PreferredLanguage,
		Location:            u.Location,
		EducationLevel:      u.EducationLevel,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}

// CreateUserInput holds the fields of a new user. PasswordHash must already
// be hashed.
type CreateUserInput struct {
	Name              string
	Email             string
	PhoneNumber       string
	PasswordHash      string
	Role              string
	RollNumber        string
	PreferredLanguage string
	Location          string
	EducationLevel    string
}
