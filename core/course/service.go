package course

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/elimu/core"
)

var (
	// errors
	ErrNotFound        = core.NewNotFoundError("course not found")
	ErrLessonNotFound  = core.NewNotFoundError("lesson not found in course")
	ErrNotInstructor   = core.NewPermissionError("not the instructor of this course")
	ErrNotCompleted    = core.NewPermissionError("course not completed or not enrolled")
	ErrAlreadyEnrolled = core.NewValidationError(errors.New("already enrolled in this course"))
	ErrNotEnrolled     = core.NewValidationError(errors.New("not enrolled in this course"))
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, c Course) (Course, error)
		// QueryAllCourses returns all courses with lesson content projected out.
		QueryAllCourses(ctx context.Context) ([]Course, error)
		GetCourseByID(ctx context.Context, id primitive.ObjectID) (Course, error)
		// QueryCoursesByStudent returns the courses a student is enrolled in,
		// with lesson content projected out.
		QueryCoursesByStudent(ctx context.Context, studentID string) ([]Course, error)
		// SaveCourse replaces the whole document; embedded lessons and ratings
		// share the course's persistence transaction.
		SaveCourse(ctx context.Context, c Course) (Course, error)
		DeleteCourse(ctx context.Context, id primitive.ObjectID) error
		// AddStudent atomically appends the enrollment unless the student is
		// already present; ErrAlreadyEnrolled otherwise.
		AddStudent(ctx context.Context, courseID primitive.ObjectID, es EnrolledStudent) error
		// SaveStudentProgress overwrites the student's enrollment record in place.
		SaveStudentProgress(ctx context.Context, courseID primitive.ObjectID, es EnrolledStudent) error
		AttachAssignment(ctx context.Context, courseID, assignmentID primitive.ObjectID) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, instructorID string, nc NewCourse) (Course, error)
		QueryAll(ctx context.Context) ([]Course, error)
		GetByID(ctx context.Context, id primitive.ObjectID) (Course, error)
		QueryByStudent(ctx context.Context, studentID string) ([]Course, error)
		Update(ctx context.Context, id primitive.ObjectID, callerID string, uc UpdateCourse) (Course, error)
		Delete(ctx context.Context, id primitive.ObjectID, callerID string) error
		Enroll(ctx context.Context, id primitive.ObjectID, studentID string) error
		CompleteLesson(ctx context.Context, id primitive.ObjectID, studentID string, lessonID primitive.ObjectID) (EnrolledStudent, error)
		AddLesson(ctx context.Context, id primitive.ObjectID, callerID string, li LessonInput) (Lesson, error)
		UpdateLesson(ctx context.Context, id primitive.ObjectID, callerID string, lessonID primitive.ObjectID, li LessonInput) (Lesson, error)
		DeleteLesson(ctx context.Context, id primitive.ObjectID, callerID string, lessonID primitive.ObjectID) error
		Rate(ctx context.Context, id primitive.ObjectID, studentID string, nr NewRating) (Course, error)
		Certificate(ctx context.Context, id primitive.ObjectID, studentID, studentName string) (Certificate, error)
		AttachAssignment(ctx context.Context, courseID, assignmentID primitive.ObjectID) error
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, instructorID string, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	c := Course{
		Title:            nc.Title,
		Description:      nc.Description,
		ImageURL:         nc.ImageURL,
		Instructor:       instructorID,
		Category:         nc.Category,
		Level:            nc.Level,
		Tags:             nc.Tags,
		Status:           nc.Status,
		Lessons:          []Lesson{},
		EnrolledStudents: []EnrolledStudent{},
		Ratings:          []Rating{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	c, err := svc.repo.CreateCourse(ctx, c)
	return c, errors.Wrap(err, "creating course")
}

func (svc *Service) QueryAll(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id primitive.ObjectID) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) QueryByStudent(ctx context.Context, studentID string) ([]Course, error) {
	return svc.repo.QueryCoursesByStudent(ctx, studentID)
}

func (svc *Service) Update(ctx context.Context, id primitive.ObjectID, callerID string, uc UpdateCourse) (Course, error) {
	c, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if c.Instructor != callerID {
		return Course{}, ErrNotInstructor
	}

	uc.Apply(&c)
	return svc.save(ctx, c)
}

func (svc *Service) Delete(ctx context.Context, id primitive.ObjectID, callerID string) error {
	c, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return err
	}
	if c.Instructor != callerID {
		return ErrNotInstructor
	}
	return errors.Wrap(svc.repo.DeleteCourse(ctx, id), "deleting course")
}

func (svc *Service) Enroll(ctx context.Context, id primitive.ObjectID, studentID string) error {
	c, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return err
	}
	if c.IsEnrolled(studentID) {
		return ErrAlreadyEnrolled
	}

	es := EnrolledStudent{
		StudentID:        studentID,
		Progress:         0,
		CompletedLessons: []primitive.ObjectID{},
		LastAccessed:     time.Now().UTC(),
	}
	return errors.Wrap(svc.repo.AddStudent(ctx, id, es), "enrolling student")
}

func (svc *Service) CompleteLesson(ctx context.Context, id primitive.ObjectID, studentID string, lessonID primitive.ObjectID) (EnrolledStudent, error) {
	c, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return EnrolledStudent{}, err
	}
	es, ok := c.Enrollment(studentID)
	if !ok {
		return EnrolledStudent{}, ErrNotEnrolled
	}

	if changed := es.CompleteLesson(lessonID, len(c.Lessons), time.Now().UTC()); !changed {
		return *es, nil
	}
	if err = svc.repo.SaveStudentProgress(ctx, id, *es); err != nil {
		return EnrolledStudent{}, errors.Wrap(err, "saving progress")
	}
	return *es, nil
}

func (svc *Service) AddLesson(ctx context.Context, id primitive.ObjectID, callerID string, li LessonInput) (Lesson, error) {
	c, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Lesson{}, err
	}
	if c.Instructor != callerID {
		return Lesson{}, ErrNotInstructor
	}

	now := time.Now().UTC()
	lesson := Lesson{
		ID:        primitive.NewObjectID(),
		Title:     li.Title,
		Content:   li.content(),
		Duration:  li.Duration,
		Order:     len(c.Lessons),
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.Lessons = append(c.Lessons, lesson)

	if _, err = svc.save(ctx, c); err != nil {
		return Lesson{}, err
	}
	return lesson, nil
}

func (svc *Service) UpdateLesson(ctx context.Context, id primitive.ObjectID, callerID string, lessonID primitive.ObjectID, li LessonInput) (Lesson, error) {
	c, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Lesson{}, err
	}
	if c.Instructor != callerID {
		return Lesson{}, ErrNotInstructor
	}

	idx := c.lessonIndex(lessonID)
	if idx < 0 {
		return Lesson{}, ErrLessonNotFound
	}

	lesson := &c.Lessons[idx]
	lesson.Title = li.Title
	lesson.Duration = li.Duration
	lesson.Content = li.content() // replaces the union wholesale
	lesson.UpdatedAt = time.Now().UTC()

	if _, err = svc.save(ctx, c); err != nil {
		return Lesson{}, err
	}
	return *lesson, nil
}

func (svc *Service) DeleteLesson(ctx context.Context, id primitive.ObjectID, callerID string, lessonID primitive.ObjectID) error {
	c, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return err
	}
	if c.Instructor != callerID {
		return ErrNotInstructor
	}

	idx := c.lessonIndex(lessonID)
	if idx < 0 {
		return ErrLessonNotFound
	}
	c.Lessons = append(c.Lessons[:idx], c.Lessons[idx+1:]...)

	_, err = svc.save(ctx, c)
	return err
}

// Rate records the student's rating, one per student; rating a course again
// replaces the previous value.
func (svc *Service) Rate(ctx context.Context, id primitive.ObjectID, studentID string, nr NewRating) (Course, error) {
	c, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if !c.IsEnrolled(studentID) {
		return Course{}, ErrNotEnrolled
	}

	rating := Rating{User: studentID, Rating: nr.Rating, Review: nr.Review, Date: time.Now().UTC()}
	var replaced bool
	for i := range c.Ratings {
		if c.Ratings[i].User == studentID {
			c.Ratings[i] = rating
			replaced = true
			break
		}
	}
	if !replaced {
		c.Ratings = append(c.Ratings, rating)
	}

	return svc.save(ctx, c)
}

func (svc *Service) Certificate(ctx context.Context, id primitive.ObjectID, studentID, studentName string) (Certificate, error) {
	c, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Certificate{}, err
	}
	es, ok := c.Enrollment(studentID)
	if !ok || es.CompletionDate == nil {
		return Certificate{}, ErrNotCompleted
	}

	return Certificate{
		Serial:         uuid.NewString(),
		StudentName:    studentName,
		CourseTitle:    c.Title,
		CompletionDate: *es.CompletionDate,
	}, nil
}

func (svc *Service) AttachAssignment(ctx context.Context, courseID, assignmentID primitive.ObjectID) error {
	return errors.Wrap(svc.repo.AttachAssignment(ctx, courseID, assignmentID), "attaching assignment")
}

// save refreshes the bookkeeping fields maintained on every write and
// persists the document.
func (svc *Service) save(ctx context.Context, c Course) (Course, error) {
	c.RecomputeAverageRating()
	c.UpdatedAt = time.Now().UTC()
	c, err := svc.repo.SaveCourse(ctx, c)
	return c, errors.Wrap(err, "saving course")
}

func (c *Course) lessonIndex(lessonID primitive.ObjectID) int {
	for i := range c.Lessons {
		if c.Lessons[i].ID == lessonID {
			return i
		}
	}
	return -1
}
