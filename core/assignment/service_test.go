package assignment_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/assignment"
	"github.com/trezcool/elimu/core/course"
	"github.com/trezcool/elimu/core/notification"
	inmemdb "github.com/trezcool/elimu/storage/inmem"
)

const (
	instructorID = "user_instructor"
	studentID    = "user_student"
)

// fakeGrader returns a canned proposal, or an error when set.
type fakeGrader struct {
	score    float64
	feedback string
	err      error
	calls    int
}

func (g *fakeGrader) GradeSubmission(_ context.Context, _ string, _ []assignment.RubricCriterion, _ string) (float64, string, error) {
	g.calls++
	return g.score, g.feedback, g.err
}

type testEnv struct {
	svc       *assignment.Service
	courseSvc *course.Service
	notifSvc  *notification.Service
	grader    *fakeGrader
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	db, err := inmemdb.Open()
	require.NoError(t, err)

	courseSvc := course.NewService(inmemdb.NewCourseRepository(db))
	notifSvc := notification.NewService(inmemdb.NewNotificationRepository(db))
	grader := &fakeGrader{}
	svc := assignment.NewService(inmemdb.NewAssignmentRepository(db), courseSvc, notifSvc, grader, core.NopLogger{})
	return testEnv{svc: svc, courseSvc: courseSvc, notifSvc: notifSvc, grader: grader}
}

func (env testEnv) createCourse(t *testing.T) course.Course {
	t.Helper()
	c, err := env.courseSvc.Create(context.Background(), instructorID, course.NewCourse{
		Title:       "Intro to Go",
		Description: "From zero to gopher",
		Category:    "programming",
		Level:       course.LevelBeginner,
	})
	require.NoError(t, err)
	return c
}

func (env testEnv) createAssignment(t *testing.T, courseID primitive.ObjectID) assignment.Assignment {
	t.Helper()
	a, err := env.svc.Create(context.Background(), instructorID, assignment.NewAssignment{
		Title:       "Essay 1",
		Description: "Write about interfaces",
		Course:      courseID.Hex(),
		Type:        assignment.TypeEssay,
		DueDate:     time.Now().UTC().Add(7 * 24 * time.Hour),
		TotalPoints: 100,
	})
	require.NoError(t, err)
	return a
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c := env.createCourse(t)

	_, err := env.svc.Create(ctx, "user_rando", assignment.NewAssignment{
		Title:       "Sneaky",
		Description: "nope",
		Course:      c.ID.Hex(),
		Type:        assignment.TypeEssay,
		DueDate:     time.Now().UTC(),
	})
	assert.Equal(t, assignment.ErrNotInstructor, errors.Cause(err))

	a := env.createAssignment(t, c.ID)
	assert.Equal(t, assignment.StatusPublished, a.Status)
	assert.Equal(t, instructorID, a.CreatedBy)

	// the course gains a back-reference
	got, err := env.courseSvc.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Contains(t, got.Assignments, a.ID)
}

func TestService_Submit(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c := env.createCourse(t)
	a := env.createAssignment(t, c.ID)

	_, err := env.svc.Submit(ctx, a.ID, studentID, assignment.NewSubmission{Content: "my essay"})
	assert.Equal(t, assignment.ErrNotEnrolled, errors.Cause(err))

	require.NoError(t, env.courseSvc.Enroll(ctx, c.ID, studentID))

	sub, err := env.svc.Submit(ctx, a.ID, studentID, assignment.NewSubmission{Content: "my essay"})
	require.NoError(t, err)
	assert.Equal(t, assignment.SubmissionSubmitted, sub.Status)
	assert.False(t, sub.ID.IsZero())

	// resubmitting updates in place
	resub, err := env.svc.Submit(ctx, a.ID, studentID, assignment.NewSubmission{Content: "my better essay"})
	require.NoError(t, err)
	assert.Equal(t, sub.ID, resub.ID)
	assert.Equal(t, "my better essay", resub.Content)
	assert.True(t, resub.SubmittedAt.After(sub.SubmittedAt) || resub.SubmittedAt.Equal(sub.SubmittedAt))

	got, err := env.svc.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, got.Submissions, 1)
}

func TestService_Submit_closed(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c := env.createCourse(t)
	a := env.createAssignment(t, c.ID)
	require.NoError(t, env.courseSvc.Enroll(ctx, c.ID, studentID))

	_, err := env.svc.Update(ctx, a.ID, instructorID, assignment.UpdateAssignment{Status: assignment.StatusClosed})
	require.NoError(t, err)

	_, err = env.svc.Submit(ctx, a.ID, studentID, assignment.NewSubmission{Content: "too late"})
	assert.Equal(t, assignment.ErrClosed, errors.Cause(err))
}

func TestService_Grade(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c := env.createCourse(t)
	a := env.createAssignment(t, c.ID)
	require.NoError(t, env.courseSvc.Enroll(ctx, c.ID, studentID))
	sub, err := env.svc.Submit(ctx, a.ID, studentID, assignment.NewSubmission{Content: "my essay"})
	require.NoError(t, err)

	_, err = env.svc.Grade(ctx, a.ID, sub.ID, "user_rando", assignment.GradeInput{Score: 80})
	assert.Equal(t, assignment.ErrNotInstructor, errors.Cause(err))

	_, err = env.svc.Grade(ctx, a.ID, primitive.NewObjectID(), instructorID, assignment.GradeInput{Score: 80})
	assert.Equal(t, assignment.ErrSubmissionNotFound, errors.Cause(err))

	graded, err := env.svc.Grade(ctx, a.ID, sub.ID, instructorID, assignment.GradeInput{Score: 87.5, Feedback: "good"})
	require.NoError(t, err)
	assert.Equal(t, assignment.SubmissionGraded, graded.Status)
	require.NotNil(t, graded.Grade)
	assert.InDelta(t, 87.5, graded.Grade.Score, 1e-9)
	assert.Equal(t, "good", graded.Grade.Feedback)
	assert.Equal(t, instructorID, graded.Grade.GraderID)

	// grading notifies the student
	notifs, err := env.notifSvc.QueryByUser(ctx, studentID)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, notification.TypeAssignmentGraded, notifs[0].Type)
	assert.Equal(t, a.ID, notifs[0].SourceID)
}

func TestService_Grade_advisory(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c := env.createCourse(t)

	a, err := env.svc.Create(ctx, instructorID, assignment.NewAssignment{
		Title:       "Essay ai",
		Description: "auto graded",
		Course:      c.ID.Hex(),
		Type:        assignment.TypeEssay,
		DueDate:     time.Now().UTC().Add(24 * time.Hour),
		AISettings:  assignment.AISettings{AutoGrade: true},
	})
	require.NoError(t, err)
	require.NoError(t, env.courseSvc.Enroll(ctx, c.ID, studentID))
	sub, err := env.svc.Submit(ctx, a.ID, studentID, assignment.NewSubmission{Content: "my essay"})
	require.NoError(t, err)

	// the proposal fills in what the grader left blank
	env.grader.score, env.grader.feedback = 72, "decent structure"
	graded, err := env.svc.Grade(ctx, a.ID, sub.ID, instructorID, assignment.GradeInput{UseAI: true})
	require.NoError(t, err)
	assert.InDelta(t, 72, graded.Grade.Score, 1e-9)
	assert.Equal(t, "decent structure", graded.Grade.Feedback)

	// explicit values win over the proposal
	graded, err = env.svc.Grade(ctx, a.ID, sub.ID, instructorID, assignment.GradeInput{Score: 90, Feedback: "great", UseAI: true})
	require.NoError(t, err)
	assert.InDelta(t, 90, graded.Grade.Score, 1e-9)
	assert.Equal(t, "great", graded.Grade.Feedback)

	// a failing proposal never fails the grading call
	env.grader.err = errors.New("model unavailable")
	graded, err = env.svc.Grade(ctx, a.ID, sub.ID, instructorID, assignment.GradeInput{Score: 60, UseAI: true})
	require.NoError(t, err)
	assert.InDelta(t, 60, graded.Grade.Score, 1e-9)
}

func TestService_Grade_scoreClamped(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c := env.createCourse(t)
	a, err := env.svc.Create(ctx, instructorID, assignment.NewAssignment{
		Title:       "Essay clamp",
		Description: "clamped",
		Course:      c.ID.Hex(),
		Type:        assignment.TypeEssay,
		DueDate:     time.Now().UTC().Add(24 * time.Hour),
		AISettings:  assignment.AISettings{AutoGrade: true},
	})
	require.NoError(t, err)
	require.NoError(t, env.courseSvc.Enroll(ctx, c.ID, studentID))
	sub, err := env.svc.Submit(ctx, a.ID, studentID, assignment.NewSubmission{Content: "my essay"})
	require.NoError(t, err)

	// an out-of-range proposal is clamped into [0, 100]
	env.grader.score = 140
	graded, err := env.svc.Grade(ctx, a.ID, sub.ID, instructorID, assignment.GradeInput{UseAI: true})
	require.NoError(t, err)
	assert.InDelta(t, 100, graded.Grade.Score, 1e-9)
}

func TestService_StudentSubmissionsAndAverages(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c1 := env.createCourse(t)
	c2, err := env.courseSvc.Create(ctx, instructorID, course.NewCourse{
		Title:       "Advanced Go",
		Description: "Beyond the basics",
		Category:    "programming",
		Level:       course.LevelAdvanced,
	})
	require.NoError(t, err)

	a1 := env.createAssignment(t, c1.ID)
	a2 := env.createAssignment(t, c1.ID)
	a3 := env.createAssignment(t, c2.ID)

	require.NoError(t, env.courseSvc.Enroll(ctx, c1.ID, studentID))
	require.NoError(t, env.courseSvc.Enroll(ctx, c2.ID, studentID))

	s1, err := env.svc.Submit(ctx, a1.ID, studentID, assignment.NewSubmission{Content: "one"})
	require.NoError(t, err)
	s2, err := env.svc.Submit(ctx, a2.ID, studentID, assignment.NewSubmission{Content: "two"})
	require.NoError(t, err)
	_, err = env.svc.Submit(ctx, a3.ID, studentID, assignment.NewSubmission{Content: "three"})
	require.NoError(t, err)

	subs, err := env.svc.StudentSubmissions(ctx, studentID)
	require.NoError(t, err)
	assert.Len(t, subs, 3)

	// only graded submissions count towards the average
	_, err = env.svc.Grade(ctx, a1.ID, s1.ID, instructorID, assignment.GradeInput{Score: 80})
	require.NoError(t, err)
	_, err = env.svc.Grade(ctx, a2.ID, s2.ID, instructorID, assignment.GradeInput{Score: 90})
	require.NoError(t, err)

	averages, err := env.svc.StudentCourseAverages(ctx, studentID)
	require.NoError(t, err)
	require.Contains(t, averages, c1.ID)
	assert.InDelta(t, 85, averages[c1.ID], 1e-9)
	assert.NotContains(t, averages, c2.ID, "nothing graded yet")
}
