package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/elimu/core/user"
)

type userApi struct {
	validate *validator.Validate
	service  user.ServiceInterface
}

func registerUserAPI(g *echo.Group, auth echo.MiddlewareFunc, deps *Deps) {
	api := userApi{validate: deps.Validate, service: deps.UserSvc}

	ug := g.Group("/users")

	ug.POST("", api.userCreate)
	ug.GET("/me", api.userMe, auth)
	ug.GET("/:clerkId", api.userRetrieve)
}

// Handlers

func (api *userApi) userCreate(ctx echo.Context) error {
	data := new(user.NewUser)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate, api.service); err != nil {
		return err
	}

	usr, err := api.service.Create(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) userRetrieve(ctx echo.Context) error {
	usr, err := api.service.GetByClerkID(ctx.Request().Context(), ctx.Param("clerkId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

// userMe returns the caller's mirrored record; 404 until the webhook sync has
// seen them.
func (api *userApi) userMe(ctx echo.Context) error {
	usr, err := api.service.GetByClerkID(ctx.Request().Context(), Caller(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}
