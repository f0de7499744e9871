package discussion

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
	ErrNotFound      = core.NewNotFoundError("thread not found")
	ErrReplyNotFound = core.NewNotFoundError("reply not found")
	ErrNotAuthor     = core.NewPermissionError("not the author")
	ErrNotEnrolled   = core.NewPermissionError("not enrolled in this course")
	ErrLocked        = core.NewValidationError(errors.New("thread is locked"))
)

type (
	Repository interface {
		CreateThread(ctx context.Context, t Thread) (Thread, error)
		GetThreadByID(ctx context.Context, id primitive.ObjectID) (Thread, error)
		// QueryThreadsByCourse returns the course's threads, pinned first,
		// then most recent activity first.
		QueryThreadsByCourse(ctx context.Context, courseID primitive.ObjectID) ([]Thread, error)
		SaveThread(ctx context.Context, t Thread) (Thread, error)
		DeleteThread(ctx context.Context, id primitive.ObjectID) error
		// IncrementViews bumps the view counter without touching the
		// activity timestamps.
		IncrementViews(ctx context.Context, id primitive.ObjectID) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, callerID string, nt NewThread) (Thread, error)
		// GetByID returns the thread and counts the view.
		GetByID(ctx context.Context, id primitive.ObjectID) (Thread, error)
		QueryByCourse(ctx context.Context, courseID primitive.ObjectID) ([]Thread, error)
		Update(ctx context.Context, id primitive.ObjectID, callerID string, ut UpdateThread) (Thread, error)
		Delete(ctx context.Context, id primitive.ObjectID, callerID string) error
		Reply(ctx context.Context, id primitive.ObjectID, callerID string, nr NewReply) (Thread, error)
		UpdateReply(ctx context.Context, id, replyID primitive.ObjectID, callerID string, nr NewReply) (Thread, error)
		DeleteReply(ctx context.Context, id, replyID primitive.ObjectID, callerID string) (Thread, error)
		React(ctx context.Context, id, replyID primitive.ObjectID, callerID string, ri ReactionInput) (Thread, error)
		AcceptAnswer(ctx context.Context, id, replyID primitive.ObjectID, callerID string) (Thread, error)
	}

	Service struct {
		repo      Repository
		courseSvc course.ServiceInterface
		notifSvc  notification.ServiceInterface
		logger    core.Logger
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(
	repo Repository,
	courseSvc course.ServiceInterface,
	notifSvc notification.ServiceInterface,
	logger core.Logger,
) *Service {
	return &Service{repo: repo, courseSvc: courseSvc, notifSvc: notifSvc, logger: logger}
}

func (svc *Service) Create(ctx context.Context, callerID string, nt NewThread) (Thread, error) {
	courseID, err := primitive.ObjectIDFromHex(nt.Course)
	if err != nil {
		return Thread{}, core.NewValidationError(nil, core.FieldError{Field: "course", Error: "invalid course id"})
	}
	if err = svc.checkParticipant(ctx, courseID, callerID); err != nil {
		return Thread{}, err
	}

	now := time.Now().UTC()
	t := Thread{
		Title:        nt.Title,
		Content:      nt.Content,
		Author:       callerID,
		Course:       courseID,
		Tags:         nt.Tags,
		Category:     nt.Category,
		Replies:      []Reply{},
		LastActivity: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	t, err = svc.repo.CreateThread(ctx, t)
	return t, errors.Wrap(err, "creating thread")
}

func (svc *Service) GetByID(ctx context.Context, id primitive.ObjectID) (Thread, error) {
	t, err := svc.repo.GetThreadByID(ctx, id)
	if err != nil {
		return Thread{}, err
	}

	// every detail fetch counts, no deduplication by viewer
	if err = svc.repo.IncrementViews(ctx, id); err != nil {
		svc.logger.Error("incrementing thread views", err)
	} else {
		t.Views++
	}
	return t, nil
}

func (svc *Service) QueryByCourse(ctx context.Context, courseID primitive.ObjectID) ([]Thread, error) {
	return svc.repo.QueryThreadsByCourse(ctx, courseID)
}

func (svc *Service) Update(ctx context.Context, id primitive.ObjectID, callerID string, ut UpdateThread) (Thread, error) {
	t, err := svc.repo.GetThreadByID(ctx, id)
	if err != nil {
		return Thread{}, err
	}
	if t.Author != callerID {
		return Thread{}, ErrNotAuthor
	}

	ut.Apply(&t)
	return svc.save(ctx, t)
}

func (svc *Service) Delete(ctx context.Context, id primitive.ObjectID, callerID string) error {
	t, err := svc.repo.GetThreadByID(ctx, id)
	if err != nil {
		return err
	}
	if t.Author != callerID {
		return ErrNotAuthor
	}
	return errors.Wrap(svc.repo.DeleteThread(ctx, id), "deleting thread")
}

func (svc *Service) Reply(ctx context.Context, id primitive.ObjectID, callerID string, nr NewReply) (Thread, error) {
	t, err := svc.repo.GetThreadByID(ctx, id)
	if err != nil {
		return Thread{}, err
	}
	if t.IsLocked {
		return Thread{}, ErrLocked
	}
	if err = svc.checkParticipant(ctx, t.Course, callerID); err != nil {
		return Thread{}, err
	}

	now := time.Now().UTC()
	t.Replies = append(t.Replies, Reply{
		ID:          primitive.NewObjectID(),
		Author:      callerID,
		Content:     nr.Content,
		Attachments: nr.Attachments,
		Reactions:   []Reaction{},
		CreatedAt:   now,
		UpdatedAt:   now,
	})

	t, err = svc.save(ctx, t)
	if err != nil {
		return Thread{}, err
	}

	if callerID != t.Author {
		svc.notifyAuthor(ctx, t)
	}
	return t, nil
}

func (svc *Service) UpdateReply(ctx context.Context, id, replyID primitive.ObjectID, callerID string, nr NewReply) (Thread, error) {
	t, err := svc.repo.GetThreadByID(ctx, id)
	if err != nil {
		return Thread{}, err
	}

	idx := t.replyIndex(replyID)
	if idx < 0 {
		return Thread{}, ErrReplyNotFound
	}
	reply := &t.Replies[idx]
	if reply.Author != callerID {
		return Thread{}, ErrNotAuthor
	}

	reply.Content = nr.Content
	if nr.Attachments != nil {
		reply.Attachments = nr.Attachments
	}
	reply.UpdatedAt = time.Now().UTC()

	return svc.save(ctx, t)
}

func (svc *Service) DeleteReply(ctx context.Context, id, replyID primitive.ObjectID, callerID string) (Thread, error) {
	t, err := svc.repo.GetThreadByID(ctx, id)
	if err != nil {
		return Thread{}, err
	}

	idx := t.replyIndex(replyID)
	if idx < 0 {
		return Thread{}, ErrReplyNotFound
	}
	if t.Replies[idx].Author != callerID {
		return Thread{}, ErrNotAuthor
	}
	t.Replies = append(t.Replies[:idx], t.Replies[idx+1:]...)

	return svc.save(ctx, t)
}

func (svc *Service) React(ctx context.Context, id, replyID primitive.ObjectID, callerID string, ri ReactionInput) (Thread, error) {
	t, err := svc.repo.GetThreadByID(ctx, id)
	if err != nil {
		return Thread{}, err
	}

	idx := t.replyIndex(replyID)
	if idx < 0 {
		return Thread{}, ErrReplyNotFound
	}
	t.Replies[idx].ToggleReaction(callerID, ri.Type)

	return svc.save(ctx, t)
}

// AcceptAnswer marks the reply as the thread's accepted answer, clearing any
// previously accepted one.
func (svc *Service) AcceptAnswer(ctx context.Context, id, replyID primitive.ObjectID, callerID string) (Thread, error) {
	t, err := svc.repo.GetThreadByID(ctx, id)
	if err != nil {
		return Thread{}, err
	}
	if t.Author != callerID {
		return Thread{}, ErrNotAuthor
	}

	idx := t.replyIndex(replyID)
	if idx < 0 {
		return Thread{}, ErrReplyNotFound
	}
	for i := range t.Replies {
		t.Replies[i].IsAcceptedAnswer = false
	}
	t.Replies[idx].IsAcceptedAnswer = true

	return svc.save(ctx, t)
}

// checkParticipant allows enrolled students and the course instructor.
func (svc *Service) checkParticipant(ctx context.Context, courseID primitive.ObjectID, callerID string) error {
	crs, err := svc.courseSvc.GetByID(ctx, courseID)
	if err != nil {
		return err
	}
	if !crs.IsEnrolled(callerID) && crs.Instructor != callerID {
		return ErrNotEnrolled
	}
	return nil
}

// save refreshes the activity timestamps and persists the document.
func (svc *Service) save(ctx context.Context, t Thread) (Thread, error) {
	now := time.Now().UTC()
	t.LastActivity = now
	t.UpdatedAt = now
	t, err := svc.repo.SaveThread(ctx, t)
	return t, errors.Wrap(err, "saving thread")
}

// notifyAuthor is best-effort; a failed notification never fails the reply.
func (svc *Service) notifyAuthor(ctx context.Context, t Thread) {
	if svc.notifSvc == nil {
		return
	}
	err := svc.notifSvc.Notify(ctx, notification.NewNotification{
		UserID:     t.Author,
		Type:       notification.TypeNewReply,
		SourceID:   t.ID,
		SourceType: notification.SourceDiscussion,
		Message:    "New reply in \"" + t.Title + "\"",
		Link:       "/discussions/" + t.ID.Hex(),
	})
	if err != nil {
		svc.logger.Error("sending reply notification", err)
	}
}
