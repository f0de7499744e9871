package course

import (
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/elimu/core"
)

// Levels
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// Statuses
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Lesson content types
const (
	ContentText       = "text"
	ContentVideo      = "video"
	ContentQuiz       = "quiz"
	ContentAssignment = "assignment"
	ContentMixed      = "mixed"
)

// Text formats
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatPlain    = "plain"
)

type (
	Course struct {
		ID               primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
		Title            string               `json:"title" bson:"title"`
		Description      string               `json:"description" bson:"description"`
		ImageURL         string               `json:"image_url,omitempty" bson:"image_url,omitempty"`
		Instructor       string               `json:"instructor" bson:"instructor"` // identity-provider id
		Category         string               `json:"category" bson:"category"`
		Level            string               `json:"level" bson:"level"`
		Lessons          []Lesson             `json:"lessons" bson:"lessons"`
		Assignments      []primitive.ObjectID `json:"assignments" bson:"assignments,omitempty"`
		EnrolledStudents []EnrolledStudent    `json:"enrolled_students" bson:"enrolled_students"`
		Prerequisites    []primitive.ObjectID `json:"prerequisites" bson:"prerequisites,omitempty"`
		Tags             []string             `json:"tags" bson:"tags,omitempty"`
		Ratings          []Rating             `json:"ratings" bson:"ratings"`
		AverageRating    float64              `json:"average_rating" bson:"average_rating"`
		Status           string               `json:"status" bson:"status"`
		CreatedAt        time.Time            `json:"created_at" bson:"created_at"` // UTC
		UpdatedAt        time.Time            `json:"updated_at" bson:"updated_at"` // UTC
	}

	Lesson struct {
		ID        primitive.ObjectID `json:"id" bson:"_id"`
		Title     string             `json:"title" bson:"title"`
		Content   Content            `json:"content" bson:"content"`
		Duration  int                `json:"duration" bson:"duration"` // minutes
		Order     int                `json:"order" bson:"order"`
		CreatedAt time.Time          `json:"created_at" bson:"created_at"`
		UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
	}

	// Content is a tagged union keyed by Type; only the variant matching
	// Type is populated.
	Content struct {
		Type  string        `json:"type" bson:"type"`
		Text  *TextContent  `json:"text,omitempty" bson:"text,omitempty"`
		Video *VideoContent `json:"video,omitempty" bson:"video,omitempty"`
		Quiz  *QuizContent  `json:"quiz,omitempty" bson:"quiz,omitempty"`
	}

	TextContent struct {
		Content string `json:"content" bson:"content"`
		Format  string `json:"format" bson:"format"`
	}

	VideoContent struct {
		URL      string `json:"url" bson:"url"`
		Duration int    `json:"duration" bson:"duration"`
		Provider string `json:"provider" bson:"provider"`
	}

	QuizContent struct {
		Questions    []QuizQuestion `json:"questions" bson:"questions"`
		PassingScore int            `json:"passing_score" bson:"passing_score"`
		TimeLimit    int            `json:"time_limit" bson:"time_limit"`
	}

	QuizQuestion struct {
		Question      string      `json:"question" bson:"question"`
		Type          string      `json:"type" bson:"type"`
		Options       []string    `json:"options" bson:"options,omitempty"`
		CorrectAnswer interface{} `json:"correct_answer" bson:"correct_answer,omitempty"`
		Explanation   string      `json:"explanation" bson:"explanation,omitempty"`
		Points        int         `json:"points" bson:"points"`
	}

	EnrolledStudent struct {
		StudentID        string               `json:"student_id" bson:"student_id"`
		Progress         float64              `json:"progress" bson:"progress"` // 0 - 100
		CompletedLessons []primitive.ObjectID `json:"completed_lessons" bson:"completed_lessons"`
		LastAccessed     time.Time            `json:"last_accessed" bson:"last_accessed"`
		CompletionDate   *time.Time           `json:"completion_date" bson:"completion_date,omitempty"`
	}

	Rating struct {
		User   string    `json:"user" bson:"user"`
		Rating int       `json:"rating" bson:"rating"` // 1 - 5
		Review string    `json:"review,omitempty" bson:"review,omitempty"`
		Date   time.Time `json:"date" bson:"date"`
	}
)

// UnmarshalBSONValue adapts legacy lessons whose content was stored as a
// plain string into the text variant of the union.
func (c *Content) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t == bsontype.String {
		var s string
		if err := (bson.RawValue{Type: t, Value: data}).Unmarshal(&s); err != nil {
			return err
		}
		*c = Content{Type: ContentText, Text: &TextContent{Content: s, Format: FormatMarkdown}}
		return nil
	}

	type plain Content
	var p plain
	if err := bson.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Content(p)
	return nil
}

// Enrollment returns the enrollment record of the given student, if any.
func (c *Course) Enrollment(studentID string) (*EnrolledStudent, bool) {
	for i := range c.EnrolledStudents {
		if c.EnrolledStudents[i].StudentID == studentID {
			return &c.EnrolledStudents[i], true
		}
	}
	return nil, false
}

func (c *Course) IsEnrolled(studentID string) bool {
	_, ok := c.Enrollment(studentID)
	return ok
}

// RecomputeAverageRating recalculates the arithmetic mean of all ratings;
// 0 when there are none.
func (c *Course) RecomputeAverageRating() {
	if len(c.Ratings) == 0 {
		c.AverageRating = 0
		return
	}
	var sum int
	for _, r := range c.Ratings {
		sum += r.Rating
	}
	c.AverageRating = float64(sum) / float64(len(c.Ratings))
}

// CompleteLesson marks a lesson as completed for the student and refreshes
// progress. A lesson completed twice is a no-op. CompletionDate is stamped
// the first time progress reaches 100 and never overwritten.
func (es *EnrolledStudent) CompleteLesson(lessonID primitive.ObjectID, totalLessons int, now time.Time) bool {
	for _, id := range es.CompletedLessons {
		if id == lessonID {
			return false
		}
	}

	es.CompletedLessons = append(es.CompletedLessons, lessonID)
	if totalLessons > 0 {
		es.Progress = float64(len(es.CompletedLessons)) / float64(totalLessons) * 100
	}
	es.LastAccessed = now
	if es.Progress == 100 && es.CompletionDate == nil {
		es.CompletionDate = &now
	}
	return true
}

// NewCourse contains information needed to create a new Course.
// Instructor is only honored on the API-key authentication path; bearer
// callers always author their own courses.
type NewCourse struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	ImageURL    string   `json:"image_url" validate:"omitempty,url"`
	Instructor  string   `json:"instructor"`
	Category    string   `json:"category" validate:"required"`
	Level       string   `json:"level" validate:"required,oneof=beginner intermediate advanced"`
	Tags        []string `json:"tags"`
	Status      string   `json:"status" validate:"omitempty,oneof=draft published archived"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	nc.Category = core.CleanString(nc.Category, true /* lower */)
	if nc.Status == "" {
		nc.Status = StatusDraft
	}
	return validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
type UpdateCourse struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url" validate:"omitempty,url"`
	Category    string   `json:"category"`
	Level       string   `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Tags        []string `json:"tags"`
	Status      string   `json:"status" validate:"omitempty,oneof=draft published archived"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	uc.Title = core.CleanString(uc.Title)
	uc.Description = core.CleanString(uc.Description)
	uc.Category = core.CleanString(uc.Category, true /* lower */)
	return validate.Struct(uc)
}

// Apply merges the provided fields onto the course.
func (uc *UpdateCourse) Apply(c *Course) {
	if uc.Title != "" {
		c.Title = uc.Title
	}
	if uc.Description != "" {
		c.Description = uc.Description
	}
	if uc.ImageURL != "" {
		c.ImageURL = uc.ImageURL
	}
	if uc.Category != "" {
		c.Category = uc.Category
	}
	if uc.Level != "" {
		c.Level = uc.Level
	}
	if uc.Tags != nil {
		c.Tags = uc.Tags
	}
	if uc.Status != "" {
		c.Status = uc.Status
	}
}

// LessonInput is the payload for adding or editing a lesson. The populated
// payload fields depend on ContentType; see Validate.
type LessonInput struct {
	Title       string       `json:"title" validate:"required"`
	ContentType string       `json:"content_type" validate:"required,oneof=text video quiz assignment mixed"`
	Content     string       `json:"content"`
	VideoURL    string       `json:"video_url"`
	Quiz        *QuizContent `json:"quiz"`
	Duration    int          `json:"duration" validate:"omitempty,min=1"`
}

const defaultLessonDuration = 30 // minutes

func (li *LessonInput) Validate(validate *validator.Validate) error {
	li.Title = core.CleanString(li.Title)
	li.Content = core.CleanString(li.Content)
	li.VideoURL = core.CleanString(li.VideoURL)
	if li.Duration == 0 {
		li.Duration = defaultLessonDuration
	}

	if err := validate.Struct(li); err != nil {
		return err
	}

	switch li.ContentType {
	case ContentText:
		if li.Content == "" {
			return core.NewValidationError(nil, core.FieldError{Field: "content", Error: "lesson content is required for text lessons"})
		}
	case ContentVideo:
		if li.VideoURL == "" {
			return core.NewValidationError(nil, core.FieldError{Field: "video_url", Error: "video url is required for video lessons"})
		}
	}
	return nil
}

// content builds the union value for the submitted type; payloads of any
// other type are dropped, not merged.
func (li *LessonInput) content() Content {
	switch li.ContentType {
	case ContentText:
		return Content{Type: ContentText, Text: &TextContent{Content: li.Content, Format: FormatMarkdown}}
	case ContentVideo:
		return Content{Type: ContentVideo, Video: &VideoContent{URL: li.VideoURL, Duration: li.Duration, Provider: "youtube"}}
	case ContentQuiz:
		if li.Quiz != nil {
			return Content{Type: ContentQuiz, Quiz: li.Quiz}
		}
	}
	return Content{Type: li.ContentType}
}

// NewRating is the payload for rating a course.
type NewRating struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Review string `json:"review"`
}

func (nr *NewRating) Validate(validate *validator.Validate) error {
	nr.Review = core.CleanString(nr.Review)
	return validate.Struct(nr)
}

// Certificate is the completion certificate data handed to the document
// renderer; the rendering itself is an external collaborator.
type Certificate struct {
	Serial         string    `json:"serial"`
	StudentName    string    `json:"student_name"`
	CourseTitle    string    `json:"course_title"`
	CompletionDate time.Time `json:"completion_date"`
}

// EnrolledSummary is the per-course progress line of a student's dashboard.
type EnrolledSummary struct {
	CourseID         primitive.ObjectID `json:"course_id"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	CompletedLessons int                `json:"completed_lessons"`
	TotalLessons     int                `json:"total_lessons"`
	AverageGrade     *float64           `json:"average_grade"` // nil when nothing graded yet
}
