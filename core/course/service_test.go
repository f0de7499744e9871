package course_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/elimu/core/course"
	inmemdb "github.com/trezcool/elimu/storage/inmem"
)

const (
	instructorID = "user_instructor"
	studentID    = "user_student"
)

func newTestService(t *testing.T) *course.Service {
	t.Helper()
	db, err := inmemdb.Open()
	require.NoError(t, err)
	return course.NewService(inmemdb.NewCourseRepository(db))
}

func createCourse(t *testing.T, svc *course.Service) course.Course {
	t.Helper()
	c, err := svc.Create(context.Background(), instructorID, course.NewCourse{
		Title:       "Intro to Go",
		Description: "From zero to gopher",
		Category:    "programming",
		Level:       course.LevelBeginner,
		Status:      course.StatusPublished,
	})
	require.NoError(t, err)
	return c
}

func addLesson(t *testing.T, svc *course.Service, courseID primitive.ObjectID, title string) course.Lesson {
	t.Helper()
	lesson, err := svc.AddLesson(context.Background(), courseID, instructorID, course.LessonInput{
		Title:       title,
		ContentType: course.ContentText,
		Content:     "some content",
		Duration:    10,
	})
	require.NoError(t, err)
	return lesson
}

func TestService_Enroll(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	c := createCourse(t, svc)

	require.NoError(t, svc.Enroll(ctx, c.ID, studentID))

	got, err := svc.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.IsEnrolled(studentID))

	// enrolling twice fails
	err = svc.Enroll(ctx, c.ID, studentID)
	assert.Equal(t, course.ErrAlreadyEnrolled, errors.Cause(err))

	err = svc.Enroll(ctx, primitive.NewObjectID(), studentID)
	assert.Equal(t, course.ErrNotFound, errors.Cause(err))
}

func TestService_CompleteLesson(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	c := createCourse(t, svc)
	l1 := addLesson(t, svc, c.ID, "Lesson 1")
	l2 := addLesson(t, svc, c.ID, "Lesson 2")

	_, err := svc.CompleteLesson(ctx, c.ID, studentID, l1.ID)
	assert.Equal(t, course.ErrNotEnrolled, errors.Cause(err))

	require.NoError(t, svc.Enroll(ctx, c.ID, studentID))

	es, err := svc.CompleteLesson(ctx, c.ID, studentID, l1.ID)
	require.NoError(t, err)
	assert.InDelta(t, 50, es.Progress, 1e-9)
	assert.Nil(t, es.CompletionDate)

	// completing the same lesson again changes nothing
	es, err = svc.CompleteLesson(ctx, c.ID, studentID, l1.ID)
	require.NoError(t, err)
	assert.InDelta(t, 50, es.Progress, 1e-9)
	assert.Len(t, es.CompletedLessons, 1)

	es, err = svc.CompleteLesson(ctx, c.ID, studentID, l2.ID)
	require.NoError(t, err)
	assert.InDelta(t, 100, es.Progress, 1e-9)
	require.NotNil(t, es.CompletionDate)
	completedAt := *es.CompletionDate

	// the stamped completion date survives further calls
	es, err = svc.CompleteLesson(ctx, c.ID, studentID, l2.ID)
	require.NoError(t, err)
	assert.Equal(t, completedAt, *es.CompletionDate)
}

func TestService_lessonEditing(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	c := createCourse(t, svc)

	_, err := svc.AddLesson(ctx, c.ID, "user_rando", course.LessonInput{
		Title:       "Sneaky",
		ContentType: course.ContentText,
		Content:     "nope",
	})
	assert.Equal(t, course.ErrNotInstructor, errors.Cause(err))

	lesson := addLesson(t, svc, c.ID, "Lesson 1")
	assert.Equal(t, 0, lesson.Order)
	require.NotNil(t, lesson.Content.Text)

	// switching content type replaces the union wholesale
	updated, err := svc.UpdateLesson(ctx, c.ID, instructorID, lesson.ID, course.LessonInput{
		Title:       "Lesson 1 (video)",
		ContentType: course.ContentVideo,
		VideoURL:    "https://youtu.be/abc",
		Duration:    15,
	})
	require.NoError(t, err)
	assert.Equal(t, course.ContentVideo, updated.Content.Type)
	assert.Nil(t, updated.Content.Text)
	require.NotNil(t, updated.Content.Video)
	assert.Equal(t, "https://youtu.be/abc", updated.Content.Video.URL)

	_, err = svc.UpdateLesson(ctx, c.ID, instructorID, primitive.NewObjectID(), course.LessonInput{
		Title:       "Ghost",
		ContentType: course.ContentText,
		Content:     "boo",
	})
	assert.Equal(t, course.ErrLessonNotFound, errors.Cause(err))

	err = svc.DeleteLesson(ctx, c.ID, "user_rando", lesson.ID)
	assert.Equal(t, course.ErrNotInstructor, errors.Cause(err))

	require.NoError(t, svc.DeleteLesson(ctx, c.ID, instructorID, lesson.ID))
	got, err := svc.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Lessons)
}

func TestService_Rate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	c := createCourse(t, svc)

	_, err := svc.Rate(ctx, c.ID, studentID, course.NewRating{Rating: 5})
	assert.Equal(t, course.ErrNotEnrolled, errors.Cause(err))

	require.NoError(t, svc.Enroll(ctx, c.ID, studentID))
	require.NoError(t, svc.Enroll(ctx, c.ID, "user_student2"))

	got, err := svc.Rate(ctx, c.ID, studentID, course.NewRating{Rating: 4, Review: "solid"})
	require.NoError(t, err)
	assert.InDelta(t, 4, got.AverageRating, 1e-9)

	got, err = svc.Rate(ctx, c.ID, "user_student2", course.NewRating{Rating: 2})
	require.NoError(t, err)
	assert.InDelta(t, 3, got.AverageRating, 1e-9)

	// rating again replaces, never appends
	got, err = svc.Rate(ctx, c.ID, studentID, course.NewRating{Rating: 2})
	require.NoError(t, err)
	assert.Len(t, got.Ratings, 2)
	assert.InDelta(t, 2, got.AverageRating, 1e-9)
}

func TestService_Certificate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	c := createCourse(t, svc)
	lesson := addLesson(t, svc, c.ID, "Only lesson")

	_, err := svc.Certificate(ctx, c.ID, studentID, "Jane Doe")
	assert.Equal(t, course.ErrNotCompleted, errors.Cause(err))

	require.NoError(t, svc.Enroll(ctx, c.ID, studentID))
	_, err = svc.Certificate(ctx, c.ID, studentID, "Jane Doe")
	assert.Equal(t, course.ErrNotCompleted, errors.Cause(err), "enrolled but not completed")

	_, err = svc.CompleteLesson(ctx, c.ID, studentID, lesson.ID)
	require.NoError(t, err)

	cert, err := svc.Certificate(ctx, c.ID, studentID, "Jane Doe")
	require.NoError(t, err)
	assert.NotEmpty(t, cert.Serial)
	assert.Equal(t, "Jane Doe", cert.StudentName)
	assert.Equal(t, c.Title, cert.CourseTitle)
	assert.False(t, cert.CompletionDate.IsZero())
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	c := createCourse(t, svc)

	_, err := svc.Update(ctx, c.ID, "user_rando", course.UpdateCourse{Title: "Hijacked"})
	assert.Equal(t, course.ErrNotInstructor, errors.Cause(err))

	got, err := svc.Update(ctx, c.ID, instructorID, course.UpdateCourse{
		Title:  "Intro to Go, 2nd ed.",
		Status: course.StatusArchived,
	})
	require.NoError(t, err)
	assert.Equal(t, "Intro to Go, 2nd ed.", got.Title)
	assert.Equal(t, course.StatusArchived, got.Status)
	assert.Equal(t, c.Description, got.Description, "unset fields stay put")
}
