package contact

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/elimu/core"
)

type (
	Repository interface {
		CreateMessage(ctx context.Context, m Message) (Message, error)
	}

	ServiceInterface interface {
		Submit(ctx context.Context, nm NewMessage) (Message, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, mailSvc: mailSvc}
}

// Submit stores the lead and sends an acknowledgement; the email is
// fire-and-forget.
func (svc *Service) Submit(ctx context.Context, nm NewMessage) (Message, error) {
	m := Message{
		Name:      nm.Name,
		Email:     nm.Email,
		Message:   nm.Message,
		CreatedAt: time.Now().UTC(),
	}
	m, err := svc.repo.CreateMessage(ctx, m)
	if err != nil {
		return Message{}, errors.Wrap(err, "creating contact message")
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:          []mail.Address{{Name: m.Name, Address: m.Email}},
		Subject:     "We received your message",
		TextContent: "Thank you for reaching out, " + m.Name + ". We will contact you soon.",
	})
	return m, nil
}
