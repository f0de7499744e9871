package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/elimu/core/discussion"
)

type discussionApi struct {
	validate *validator.Validate
	service  discussion.ServiceInterface
}

func registerDiscussionAPI(g *echo.Group, auth echo.MiddlewareFunc, deps *Deps) {
	api := discussionApi{validate: deps.Validate, service: deps.DiscussionSvc}

	dg := g.Group("/discussions", auth)

	dg.POST("", api.threadCreate)
	dg.GET("/course/:courseId", api.threadQueryByCourse)
	dg.GET("/:id", api.threadRetrieve)
	dg.PUT("/:id", api.threadUpdate)
	dg.DELETE("/:id", api.threadDestroy)
	dg.POST("/:id/replies", api.replyCreate)
	dg.PUT("/:id/replies/:replyId", api.replyUpdate)
	dg.DELETE("/:id/replies/:replyId", api.replyDestroy)
	dg.POST("/:id/replies/:replyId/reactions", api.replyReact)
	dg.POST("/:id/replies/:replyId/accept", api.replyAccept)
}

// Handlers

func (api *discussionApi) threadCreate(ctx echo.Context) error {
	data := new(discussion.NewThread)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	t, err := api.service.Create(ctx.Request().Context(), Caller(ctx), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *discussionApi) threadQueryByCourse(ctx echo.Context) error {
	courseID, err := objectIDParam(ctx, "courseId")
	if err != nil {
		return err
	}
	threads, err := api.service.QueryByCourse(ctx.Request().Context(), courseID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, threads)
}

func (api *discussionApi) threadRetrieve(ctx echo.Context) error {
	id, err := objectIDParam(ctx, "id")
	if err != nil {
		return err
	}
	t, err := api.service.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *discussionApi) threadUpdate(ctx echo.Context) error {
	id, err := objectIDParam(ctx, "id")
	if err != nil {
		return err
	}
	data := new(discussion.UpdateThread)
	if err = ctx.Bind(data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	t, err := api.service.Update(ctx.Request().Context(), id, Caller(ctx), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *discussionApi) threadDestroy(ctx echo.Context) error {
	id, err := objectIDParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.service.Delete(ctx.Request().Context(), id, Caller(ctx)); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *discussionApi) replyCreate(ctx echo.Context) error {
	id, err := objectIDParam(ctx, "id")
	if err != nil {
		return err
	}
	data := new(discussion.NewReply)
	if err = ctx.Bind(data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	t, err := api.service.Reply(ctx.Request().Context(), id, Caller(ctx), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *discussionApi) replyUpdate(ctx echo.Context) error {
	id, err := objectIDParam(ctx, "id")
	if err != nil {
		return err
	}
	replyID, err := objectIDParam(ctx, "replyId")
	if err != nil {
		return err
	}
	data := new(discussion.NewReply)
	if err = ctx.Bind(data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	t, err := api.service.UpdateReply(ctx.Request().Context(), id, replyID, Caller(ctx), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *discussionApi) replyDestroy(ctx echo.Context) error {
	id, err := objectIDParam(ctx, "id")
	if err != nil {
		return err
	}
	replyID, err := objectIDParam(ctx, "replyId")
	if err != nil {
		return err
	}
	t, err := api.service.DeleteReply(ctx.Request().Context(), id, replyID, Caller(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *discussionApi) replyReact(ctx echo.Context) error {
	id, err := objectIDParam(ctx, "id")
	if err != nil {
		return err
	}
	replyID, err := objectIDParam(ctx, "replyId")
	if err != nil {
		return err
	}
	data := new(discussion.ReactionInput)
	if err = ctx.Bind(data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	t, err := api.service.React(ctx.Request().Context(), id, replyID, Caller(ctx), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *discussionApi) replyAccept(ctx echo.Context) error {
	id, err := objectIDParam(ctx, "id")
	if err != nil {
		return err
	}
	replyID, err := objectIDParam(ctx, "replyId")
	if err != nil {
		return err
	}
	t, err := api.service.AcceptAnswer(ctx.Request().Context(), id, replyID, Caller(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}
