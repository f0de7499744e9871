package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/elimu/core/contact"
)

type contactApi struct {
	validate *validator.Validate
	service  contact.ServiceInterface
}

func registerContactAPI(g *echo.Group, deps *Deps) {
	api := contactApi{validate: deps.Validate, service: deps.ContactSvc}

	// the one unauthenticated write in the system
	g.POST("/contact", api.contactSubmit)
}

func (api *contactApi) contactSubmit(ctx echo.Context) error {
	data := new(contact.NewMessage)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	msg, err := api.service.Submit(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, msg)
}
