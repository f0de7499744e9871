package clerksvc

import (
	"net/http"

	"github.com/pkg/errors"
	svix "github.com/svix/svix-webhooks/go"

	"github.com/trezcool/elimu/core"
)

// WebhookVerifier authenticates webhook deliveries against the shared
// signing secret.
type WebhookVerifier interface {
	Verify(payload []byte, headers http.Header) error
}

type webhookVerifier struct {
	wh *svix.Webhook
}

var _ WebhookVerifier = (*webhookVerifier)(nil)

func NewWebhookVerifier(conf *core.Config) (*webhookVerifier, error) {
	wh, err := svix.NewWebhook(conf.Clerk.WebhookSecret)
	if err != nil {
		return nil, errors.Wrap(err, "initializing webhook verifier")
	}
	return &webhookVerifier{wh: wh}, nil
}

func (v *webhookVerifier) Verify(payload []byte, headers http.Header) error {
	return v.wh.Verify(payload, headers)
}
