package assignment

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/course"
	"github.com/trezcool/elimu/core/notification"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("assignment not found")
	ErrSubmissionNotFound = core.NewNotFoundError("submission not found")
	ErrNotInstructor      = core.NewPermissionError("not the instructor of this course")
	ErrNotEnrolled        = core.NewPermissionError("not enrolled in this course")
	ErrClosed             = core.NewValidationError(errors.New("assignment is closed"))
)

type (
	Repository interface {
		CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		GetAssignmentByID(ctx context.Context, id primitive.ObjectID) (Assignment, error)
		QueryAssignmentsByCourse(ctx context.Context, courseID primitive.ObjectID) ([]Assignment, error)
		// QueryAssignmentsByStudent returns assignments holding a submission
		// authored by the student.
		QueryAssignmentsByStudent(ctx context.Context, studentID string) ([]Assignment, error)
		SaveAssignment(ctx context.Context, a Assignment) (Assignment, error)
		DeleteAssignment(ctx context.Context, id primitive.ObjectID) error
	}

	// AIGrader proposes a grade for a submission; advisory only.
	AIGrader interface {
		GradeSubmission(ctx context.Context, content string, rubric []RubricCriterion, instructions string) (score float64, feedback string, err error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, callerID string, na NewAssignment) (Assignment, error)
		GetByID(ctx context.Context, id primitive.ObjectID) (Assignment, error)
		QueryByCourse(ctx context.Context, courseID primitive.ObjectID) ([]Assignment, error)
		Update(ctx context.Context, id primitive.ObjectID, callerID string, ua UpdateAssignment) (Assignment, error)
		Delete(ctx context.Context, id primitive.ObjectID, callerID string) error
		Submit(ctx context.Context, id primitive.ObjectID, studentID string, ns NewSubmission) (Submission, error)
		Grade(ctx context.Context, id, submissionID primitive.ObjectID, graderID string, gi GradeInput) (Submission, error)
		StudentSubmissions(ctx context.Context, studentID string) ([]StudentSubmission, error)
		// StudentCourseAverages returns, per course, the mean score of the
		// student's graded submissions; courses with none graded are absent.
		StudentCourseAverages(ctx context.Context, studentID string) (map[primitive.ObjectID]float64, error)
	}

	Service struct {
		repo      Repository
		courseSvc course.ServiceInterface
		notifSvc  notification.ServiceInterface
		grader    AIGrader
		logger    core.Logger
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(
	repo Repository,
	courseSvc course.ServiceInterface,
	notifSvc notification.ServiceInterface,
	grader AIGrader,
	logger core.Logger,
) *Service {
	return &Service{
		repo:      repo,
		courseSvc: courseSvc,
		notifSvc:  notifSvc,
		grader:    grader,
		logger:    logger,
	}
}

func (svc *Service) Create(ctx context.Context, callerID string, na NewAssignment) (Assignment, error) {
	courseID, err := primitive.ObjectIDFromHex(na.Course)
	if err != nil {
		return Assignment{}, core.NewValidationError(nil, core.FieldError{Field: "course", Error: "invalid course id"})
	}
	crs, err := svc.courseSvc.GetByID(ctx, courseID)
	if err != nil {
		return Assignment{}, err
	}
	if crs.Instructor != callerID {
		return Assignment{}, ErrNotInstructor
	}

	now := time.Now().UTC()
	a := Assignment{
		Title:       na.Title,
		Description: na.Description,
		Course:      courseID,
		Type:        na.Type,
		DueDate:     na.DueDate,
		TotalPoints: na.TotalPoints,
		Rubric:      na.Rubric,
		AISettings:  na.AISettings,
		Submissions: []Submission{},
		Status:      StatusPublished,
		CreatedBy:   callerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if na.Lesson != "" {
		lessonID, lerr := primitive.ObjectIDFromHex(na.Lesson)
		if lerr != nil {
			return Assignment{}, core.NewValidationError(nil, core.FieldError{Field: "lesson", Error: "invalid lesson id"})
		}
		a.Lesson = &lessonID
	}

	a, err = svc.repo.CreateAssignment(ctx, a)
	if err != nil {
		return Assignment{}, errors.Wrap(err, "creating assignment")
	}
	if err = svc.courseSvc.AttachAssignment(ctx, courseID, a.ID); err != nil {
		svc.logger.Error("attaching assignment to course", err)
	}
	return a, nil
}

func (svc *Service) GetByID(ctx context.Context, id primitive.ObjectID) (Assignment, error) {
	return svc.repo.GetAssignmentByID(ctx, id)
}

func (svc *Service) QueryByCourse(ctx context.Context, courseID primitive.ObjectID) ([]Assignment, error) {
	return svc.repo.QueryAssignmentsByCourse(ctx, courseID)
}

func (svc *Service) Update(ctx context.Context, id primitive.ObjectID, callerID string, ua UpdateAssignment) (Assignment, error) {
	a, err := svc.repo.GetAssignmentByID(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	if err = svc.checkInstructor(ctx, a, callerID); err != nil {
		return Assignment{}, err
	}

	ua.Apply(&a)
	return svc.save(ctx, a)
}

func (svc *Service) Delete(ctx context.Context, id primitive.ObjectID, callerID string) error {
	a, err := svc.repo.GetAssignmentByID(ctx, id)
	if err != nil {
		return err
	}
	if err = svc.checkInstructor(ctx, a, callerID); err != nil {
		return err
	}
	return errors.Wrap(svc.repo.DeleteAssignment(ctx, id), "deleting assignment")
}

// Submit records the student's submission; a re-submission updates the
// existing one in place.
func (svc *Service) Submit(ctx context.Context, id primitive.ObjectID, studentID string, ns NewSubmission) (Submission, error) {
	a, err := svc.repo.GetAssignmentByID(ctx, id)
	if err != nil {
		return Submission{}, err
	}
	if a.Status == StatusClosed {
		return Submission{}, ErrClosed
	}

	crs, err := svc.courseSvc.GetByID(ctx, a.Course)
	if err != nil {
		return Submission{}, err
	}
	if !crs.IsEnrolled(studentID) {
		return Submission{}, ErrNotEnrolled
	}

	now := time.Now().UTC()
	sub, ok := a.SubmissionBy(studentID)
	if ok {
		sub.Content = ns.Content
		if ns.Attachments != nil {
			sub.Attachments = ns.Attachments
		}
		sub.SubmittedAt = now
		sub.Status = SubmissionSubmitted
	} else {
		a.Submissions = append(a.Submissions, Submission{
			ID:          primitive.NewObjectID(),
			StudentID:   studentID,
			Content:     ns.Content,
			Attachments: ns.Attachments,
			SubmittedAt: now,
			Status:      SubmissionSubmitted,
		})
		sub = &a.Submissions[len(a.Submissions)-1]
	}

	if _, err = svc.save(ctx, a); err != nil {
		return Submission{}, err
	}
	return *sub, nil
}

func (svc *Service) Grade(ctx context.Context, id, submissionID primitive.ObjectID, graderID string, gi GradeInput) (Submission, error) {
	a, err := svc.repo.GetAssignmentByID(ctx, id)
	if err != nil {
		return Submission{}, err
	}
	if err = svc.checkInstructor(ctx, a, graderID); err != nil {
		return Submission{}, err
	}

	idx := a.submissionIndex(submissionID)
	if idx < 0 {
		return Submission{}, ErrSubmissionNotFound
	}
	sub := &a.Submissions[idx]

	score, feedback := gi.Score, gi.Feedback
	if gi.UseAI && a.AISettings.AutoGrade && svc.grader != nil {
		if aiScore, aiFeedback, aiErr := svc.grader.GradeSubmission(ctx, sub.Content, a.Rubric, a.AISettings.CustomInstructions); aiErr != nil {
			svc.logger.Warn("advisory grading failed", aiErr)
		} else {
			if feedback == "" {
				feedback = aiFeedback
			}
			if score == 0 {
				score = aiScore
			}
		}
	}
	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}

	sub.Grade = &Grade{
		Score:    score,
		Feedback: feedback,
		GraderID: graderID,
		GradedAt: time.Now().UTC(),
	}
	sub.Status = SubmissionGraded

	if _, err = svc.save(ctx, a); err != nil {
		return Submission{}, err
	}

	svc.notify(ctx, a, *sub)
	return *sub, nil
}

func (svc *Service) StudentSubmissions(ctx context.Context, studentID string) ([]StudentSubmission, error) {
	assignments, err := svc.repo.QueryAssignmentsByStudent(ctx, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments by student")
	}

	subs := make([]StudentSubmission, 0, len(assignments))
	for _, a := range assignments {
		if sub, ok := a.SubmissionBy(studentID); ok {
			subs = append(subs, StudentSubmission{
				AssignmentID: a.ID,
				Title:        a.Title,
				Course:       a.Course,
				Submission:   *sub,
			})
		}
	}
	return subs, nil
}

func (svc *Service) StudentCourseAverages(ctx context.Context, studentID string) (map[primitive.ObjectID]float64, error) {
	assignments, err := svc.repo.QueryAssignmentsByStudent(ctx, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments by student")
	}

	sums := make(map[primitive.ObjectID]float64)
	counts := make(map[primitive.ObjectID]int)
	for _, a := range assignments {
		if sub, ok := a.SubmissionBy(studentID); ok && sub.Grade != nil {
			sums[a.Course] += sub.Grade.Score
			counts[a.Course]++
		}
	}

	averages := make(map[primitive.ObjectID]float64, len(sums))
	for courseID, sum := range sums {
		averages[courseID] = sum / float64(counts[courseID])
	}
	return averages, nil
}

func (svc *Service) checkInstructor(ctx context.Context, a Assignment, callerID string) error {
	crs, err := svc.courseSvc.GetByID(ctx, a.Course)
	if err != nil {
		return err
	}
	if crs.Instructor != callerID {
		return ErrNotInstructor
	}
	return nil
}

func (svc *Service) save(ctx context.Context, a Assignment) (Assignment, error) {
	a.UpdatedAt = time.Now().UTC()
	a, err := svc.repo.SaveAssignment(ctx, a)
	return a, errors.Wrap(err, "saving assignment")
}

// notify is best-effort; a failed notification never fails grading.
func (svc *Service) notify(ctx context.Context, a Assignment, sub Submission) {
	if svc.notifSvc == nil {
		return
	}
	err := svc.notifSvc.Notify(ctx, notification.NewNotification{
		UserID:     sub.StudentID,
		Type:       notification.TypeAssignmentGraded,
		SourceID:   a.ID,
		SourceType: notification.SourceAssignment,
		Message:    "Your submission for \"" + a.Title + "\" has been graded",
		Link:       "/assignments/" + a.ID.Hex(),
	})
	if err != nil {
		svc.logger.Error("sending graded notification", err)
	}
}
