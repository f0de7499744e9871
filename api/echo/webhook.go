package echoapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/user"
	clerksvc "github.com/trezcool/elimu/services/clerk"
)

// maxWebhookBody caps deliveries from the identity provider.
const maxWebhookBody = 1 << 20 // 1 MiB

var errBadSignature = echo.NewHTTPError(http.StatusBadRequest, "invalid webhook signature")

type webhookApi struct {
	verifier clerksvc.WebhookVerifier
	service  user.ServiceInterface
	logger   core.Logger
}

func registerWebhookAPI(g *echo.Group, deps *Deps) {
	api := webhookApi{
		verifier: deps.WebhookVerifier,
		service:  deps.UserSvc,
		logger:   deps.Logger,
	}
	g.POST("/webhook", api.handleEvent)
}

type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		ID             string `json:"id"`
		FirstName      string `json:"first_name"`
		LastName       string `json:"last_name"`
		EmailAddresses []struct {
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
	} `json:"data"`
}

func (e *webhookEvent) primaryEmail() string {
	if len(e.Data.EmailAddresses) > 0 {
		return e.Data.EmailAddresses[0].EmailAddress
	}
	return ""
}

func (e *webhookEvent) syncedUser() user.SyncedUser {
	return user.SyncedUser{
		ClerkID:   e.Data.ID,
		Email:     e.primaryEmail(),
		FirstName: e.Data.FirstName,
		LastName:  e.Data.LastName,
	}
}

// handleEvent mirrors identity-provider user lifecycle events. Re-delivery of
// the same event is safe; store failures return 500 so the sender retries.
func (api *webhookApi) handleEvent(ctx echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(ctx.Request().Body, maxWebhookBody))
	if err != nil {
		return err
	}
	if err = api.verifier.Verify(payload, ctx.Request().Header); err != nil {
		return errBadSignature
	}

	var event webhookEvent
	if err = json.Unmarshal(payload, &event); err != nil {
		return errBadSignature
	}

	reqCtx := ctx.Request().Context()
	switch event.Type {
	case "user.created":
		err = api.service.SyncCreated(reqCtx, event.syncedUser())
	case "user.updated":
		err = api.service.SyncUpdated(reqCtx, event.syncedUser())
	case "user.deleted":
		err = api.service.SyncDeleted(reqCtx, event.Data.ID)
	default:
		api.logger.Warn(fmt.Sprintf("unhandled webhook event type: %s", event.Type))
	}
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, echo.Map{"success": true})
}
