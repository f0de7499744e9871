package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/elimu/core"
)

// Roles
const (
	RoleStudent    = "student"
	RoleTeacher    = "teacher"
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
)

var AllRoles = []string{RoleStudent, RoleTeacher, RoleAdmin, RoleInstructor}

type (
	User struct {
		ID              primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
		ClerkID         string               `json:"clerk_id" bson:"clerk_id"`
		Email           string               `json:"email" bson:"email"`
		Role            string               `json:"role" bson:"role"`
		FirstName       string               `json:"first_name" bson:"first_name"`
		LastName        string               `json:"last_name" bson:"last_name"`
		EnrolledCourses []primitive.ObjectID `json:"enrolled_courses" bson:"enrolled_courses,omitempty"`
		TeachingCourses []primitive.ObjectID `json:"teaching_courses" bson:"teaching_courses,omitempty"`
		Preferences     Preferences          `json:"preferences" bson:"preferences,omitempty"`
		CreatedAt       time.Time            `json:"created_at" bson:"created_at"` // UTC
		UpdatedAt       time.Time            `json:"updated_at" bson:"updated_at"` // UTC
	}

	Preferences struct {
		LearningStyle   string   `json:"learning_style" bson:"learning_style,omitempty"`
		DifficultyLevel string   `json:"difficulty_level" bson:"difficulty_level,omitempty"`
		Topics          []string `json:"topics" bson:"topics,omitempty"`
	}
)

func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u *User) IsStudent() bool { return u.Role == RoleStudent }

// IsTeacher is true for both the legacy "teacher" and the newer "instructor" role.
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher || u.Role == RoleInstructor }

func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	ClerkID   string `json:"clerk_id" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Role      string `json:"role" validate:"omitempty,oneof=student teacher admin instructor"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc ServiceInterface) error {
	nu.ClerkID = core.CleanString(nu.ClerkID)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	if nu.Role == "" {
		nu.Role = RoleStudent
	}

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(nu.ClerkID, nu.Email)
}

// SyncedUser is the user payload mirrored from the identity provider's
// lifecycle events; it bypasses API validation on purpose since the
// provider is the source of truth.
type SyncedUser struct {
	ClerkID   string
	Email     string
	FirstName string
	LastName  string
}
