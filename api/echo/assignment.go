package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/elimu/core/assignment"
)

type assignmentApi struct {
	validate *validator.Validate
	service  assignment.ServiceInterface
}

func registerAssignmentAPI(g *echo.Group, auth echo.MiddlewareFunc, deps *Deps) {
	api := assignmentApi{validate: deps.Validate, service: deps.AssignmentSvc}

	ag := g.Group("/assignments", auth)

	ag.POST("", api.assignmentCreate)
	ag.GET("/course/:courseId", api.assignmentQueryByCourse)
	ag.GET("/student/submissions", api.assignmentStudentSubmissions)
	ag.GET("/:id", api.assignmentRetrieve)
	ag.PUT("/:id", api.assignmentUpdate)
	ag.DELETE("/:id", api.assignmentDestroy)
	ag.POST("/:id/submit", api.assignmentSubmit)
	ag.POST("/:id/submissions/:submissionId/grade", api.assignmentGrade)
}

// Handlers

func (api *assignmentApi) assignmentCreate(ctx echo.Context) error {
	data := new(assignment.NewAssignment)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.service.Create(ctx.Request().Context(), Caller(ctx), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *assignmentApi) assignmentQueryByCourse(ctx echo.Context) error {
	courseID, err := objectIDParam(ctx, "courseId")
	if err != nil {
		return err
	}
	assigs, err := api.service.QueryByCourse(ctx.Request().Context(), courseID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, assigs)
}

func (api *assignmentApi) assignmentRetrieve(ctx echo.Context) error {
	id, err := objectIDParam(ctx, "id")
	if err != nil {
		return err
	}
	a, err := api.service.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) assignmentUpdate(ctx echo.Context) error {
	id, err := objectIDParam(ctx, "id")
	if err != nil {
		return err
	}
	data := new(assignment.UpdateAssignment)
	if err = ctx.Bind(data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.service.Update(ctx.Request().Context(), id, Caller(ctx), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) assignmentDestroy(ctx echo.Context) error {
	id, err := objectIDParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.service.Delete(ctx.Request().Context(), id, Caller(ctx)); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *assignmentApi) assignmentSubmit(ctx echo.Context) error {
	id, err := objectIDParam(ctx, "id")
	if err != nil {
		return err
	}
	data := new(assignment.NewSubmission)
	if err = ctx.Bind(data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	sub, err := api.service.Submit(ctx.Request().Context(), id, Caller(ctx), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *assignmentApi) assignmentGrade(ctx echo.Context) error {
	id, err := objectIDParam(ctx, "id")
	if err != nil {
		return err
	}
	submissionID, err := objectIDParam(ctx, "submissionId")
	if err != nil {
		return err
	}
	data := new(assignment.GradeInput)
	if err = ctx.Bind(data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	sub, err := api.service.Grade(ctx.Request().Context(), id, submissionID, Caller(ctx), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *assignmentApi) assignmentStudentSubmissions(ctx echo.Context) error {
	subs, err := api.service.StudentSubmissions(ctx.Request().Context(), Caller(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, subs)
}
