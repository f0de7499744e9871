package assignment

import (
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/elimu/core"
)

// Types
const (
	TypeEssay   = "essay"
	TypeCoding  = "coding"
	TypeQuiz    = "quiz"
	TypeProject = "project"
	TypeOther   = "other"
)

// Statuses
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusClosed    = "closed"
)

// Submission statuses
const (
	SubmissionSubmitted = "submitted"
	SubmissionGraded    = "graded"
	SubmissionReturned  = "returned"
)

type (
	Assignment struct {
		ID          primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
		Title       string              `json:"title" bson:"title"`
		Description string              `json:"description" bson:"description"`
		Course      primitive.ObjectID  `json:"course" bson:"course"`
		Lesson      *primitive.ObjectID `json:"lesson,omitempty" bson:"lesson,omitempty"`
		Type        string              `json:"type" bson:"type"`
		DueDate     time.Time           `json:"due_date" bson:"due_date"`
		TotalPoints int                 `json:"total_points" bson:"total_points"`
		Attachments []Attachment        `json:"attachments" bson:"attachments,omitempty"`
		Submissions []Submission        `json:"submissions" bson:"submissions"`
		Rubric      []RubricCriterion   `json:"rubric" bson:"rubric,omitempty"`
		AISettings  AISettings          `json:"ai_settings" bson:"ai_settings"`
		Status      string              `json:"status" bson:"status"`
		CreatedBy   string              `json:"created_by" bson:"created_by"`
		CreatedAt   time.Time           `json:"created_at" bson:"created_at"` // UTC
		UpdatedAt   time.Time           `json:"updated_at" bson:"updated_at"` // UTC
	}

	Submission struct {
		ID          primitive.ObjectID `json:"id" bson:"_id"`
		StudentID   string             `json:"student_id" bson:"student_id"`
		Content     string             `json:"content" bson:"content"`
		Attachments []Attachment       `json:"attachments" bson:"attachments,omitempty"`
		SubmittedAt time.Time          `json:"submitted_at" bson:"submitted_at"`
		Grade       *Grade             `json:"grade,omitempty" bson:"grade,omitempty"`
		Status      string             `json:"status" bson:"status"`
	}

	// Grade is the single source of truth for a graded submission.
	Grade struct {
		Score    float64   `json:"score" bson:"score"` // 0 - 100
		Feedback string    `json:"feedback" bson:"feedback"`
		GraderID string    `json:"grader_id" bson:"grader_id"`
		GradedAt time.Time `json:"graded_at" bson:"graded_at"`
	}

	RubricCriterion struct {
		Criterion   string  `json:"criterion" bson:"criterion"`
		Description string  `json:"description" bson:"description"`
		Points      float64 `json:"points" bson:"points"`
		Weight      float64 `json:"weight" bson:"weight"`
	}

	AISettings struct {
		AutoGrade          bool   `json:"auto_grade" bson:"auto_grade"`
		PlagiarismCheck    bool   `json:"plagiarism_check" bson:"plagiarism_check"`
		GradingModel       string `json:"grading_model" bson:"grading_model"`
		CustomInstructions string `json:"custom_instructions,omitempty" bson:"custom_instructions,omitempty"`
	}

	Attachment struct {
		Filename string `json:"filename" bson:"filename"`
		URL      string `json:"url" bson:"url"`
		Type     string `json:"type" bson:"type"`
	}
)

// SubmissionBy returns the student's submission, if any; at most one exists
// per student.
func (a *Assignment) SubmissionBy(studentID string) (*Submission, bool) {
	for i := range a.Submissions {
		if a.Submissions[i].StudentID == studentID {
			return &a.Submissions[i], true
		}
	}
	return nil, false
}

func (a *Assignment) submissionIndex(id primitive.ObjectID) int {
	for i := range a.Submissions {
		if a.Submissions[i].ID == id {
			return i
		}
	}
	return -1
}

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	Title       string            `json:"title" validate:"required"`
	Description string            `json:"description" validate:"required"`
	Course      string            `json:"course" validate:"required"`
	Lesson      string            `json:"lesson"`
	Type        string            `json:"type" validate:"required,oneof=essay coding quiz project other"`
	DueDate     time.Time         `json:"due_date" validate:"required"`
	TotalPoints int               `json:"total_points" validate:"omitempty,min=1"`
	Rubric      []RubricCriterion `json:"rubric"`
	AISettings  AISettings        `json:"ai_settings"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	if na.TotalPoints == 0 {
		na.TotalPoints = 100
	}
	if na.AISettings.GradingModel == "" {
		na.AISettings.GradingModel = "basic"
	}
	return validate.Struct(na)
}

// UpdateAssignment defines what information may be provided to modify an
// existing Assignment.
type UpdateAssignment struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Type        string            `json:"type" validate:"omitempty,oneof=essay coding quiz project other"`
	DueDate     *time.Time        `json:"due_date"`
	TotalPoints int               `json:"total_points" validate:"omitempty,min=1"`
	Rubric      []RubricCriterion `json:"rubric"`
	Status      string            `json:"status" validate:"omitempty,oneof=draft published closed"`
	AISettings  *AISettings       `json:"ai_settings"`
}

func (ua *UpdateAssignment) Validate(validate *validator.Validate) error {
	ua.Title = core.CleanString(ua.Title)
	ua.Description = core.CleanString(ua.Description)
	return validate.Struct(ua)
}

func (ua *UpdateAssignment) Apply(a *Assignment) {
	if ua.Title != "" {
		a.Title = ua.Title
	}
	if ua.Description != "" {
		a.Description = ua.Description
	}
	if ua.Type != "" {
		a.Type = ua.Type
	}
	if ua.DueDate != nil {
		a.DueDate = *ua.DueDate
	}
	if ua.TotalPoints != 0 {
		a.TotalPoints = ua.TotalPoints
	}
	if ua.Rubric != nil {
		a.Rubric = ua.Rubric
	}
	if ua.Status != "" {
		a.Status = ua.Status
	}
	if ua.AISettings != nil {
		a.AISettings = *ua.AISettings
	}
}

// NewSubmission is the payload for submitting an assignment.
type NewSubmission struct {
	Content     string       `json:"content" validate:"required"`
	Attachments []Attachment `json:"attachments"`
}

func (ns *NewSubmission) Validate(validate *validator.Validate) error {
	ns.Content = core.CleanString(ns.Content)
	return validate.Struct(ns)
}

// GradeInput is the payload for grading a submission.
type GradeInput struct {
	Score    float64 `json:"score" validate:"min=0,max=100"`
	Feedback string  `json:"feedback"`
	// UseAI asks the advisory grader for a score/feedback proposal when the
	// assignment allows it; its failure never fails the grading call.
	UseAI bool `json:"use_ai"`
}

func (gi *GradeInput) Validate(validate *validator.Validate) error {
	gi.Feedback = core.CleanString(gi.Feedback)
	return validate.Struct(gi)
}

// StudentSubmission is a student's submission projected with its assignment
// context.
type StudentSubmission struct {
	AssignmentID primitive.ObjectID `json:"assignment_id"`
	Title        string             `json:"title"`
	Course       primitive.ObjectID `json:"course"`
	Submission   Submission         `json:"submission"`
}
