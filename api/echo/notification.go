package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/elimu/core/notification"
)

type notificationApi struct {
	service notification.ServiceInterface
}

func registerNotificationAPI(g *echo.Group, auth echo.MiddlewareFunc, deps *Deps) {
	api := notificationApi{service: deps.NotificationSvc}

	ng := g.Group("/notifications", auth)

	ng.GET("", api.notificationQuery)
	ng.PUT("/:id/read", api.notificationMarkRead)
}

// Handlers

func (api *notificationApi) notificationQuery(ctx echo.Context) error {
	notifs, err := api.service.QueryByUser(ctx.Request().Context(), Caller(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, notifs)
}

func (api *notificationApi) notificationMarkRead(ctx echo.Context) error {
	id, err := objectIDParam(ctx, "id")
	if err != nil {
		return err
	}
	n, err := api.service.MarkRead(ctx.Request().Context(), id, Caller(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, n)
}
