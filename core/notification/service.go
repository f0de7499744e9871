package notification

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/elimu/core"
)

var ErrNotFound = core.NewNotFoundError("notification not found")

type (
	Repository interface {
		CreateNotification(ctx context.Context, n Notification) (Notification, error)
		// QueryNotificationsByUser returns the user's notifications sorted by
		// CreatedAt descending.
		QueryNotificationsByUser(ctx context.Context, userID string) ([]Notification, error)
		// MarkNotificationRead sets IsRead on the user's own notification;
		// ErrNotFound when the id does not exist or belongs to someone else.
		MarkNotificationRead(ctx context.Context, id primitive.ObjectID, userID string) (Notification, error)
	}

	ServiceInterface interface {
		Notify(ctx context.Context, nn NewNotification) error
		QueryByUser(ctx context.Context, userID string) ([]Notification, error)
		MarkRead(ctx context.Context, id primitive.ObjectID, userID string) (Notification, error)
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Notify(ctx context.Context, nn NewNotification) error {
	n := Notification{
		UserID:     nn.UserID,
		Type:       nn.Type,
		SourceID:   nn.SourceID,
		SourceType: nn.SourceType,
		Message:    nn.Message,
		Link:       nn.Link,
		CreatedAt:  time.Now().UTC(),
	}
	_, err := svc.repo.CreateNotification(ctx, n)
	return errors.Wrap(err, "creating notification")
}

func (svc *Service) QueryByUser(ctx context.Context, userID string) ([]Notification, error) {
	return svc.repo.QueryNotificationsByUser(ctx, userID)
}

func (svc *Service) MarkRead(ctx context.Context, id primitive.ObjectID, userID string) (Notification, error) {
	return svc.repo.MarkNotificationRead(ctx, id, userID)
}
