package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/push"
)

type pushApi struct {
	svc *push.Service
}

func registerPushAPI(g *echo.Group, svc *push.Service) {
	api := pushApi{svc: svc}

	ng := g.Group("/notifications/subscriptions")
	ng.POST("", api.subscribe)
	ng.DELETE("", api.unsubscribe)
}

func (api *pushApi) subscribe(ctx echo.Context) error {
	var data push.NewSubscription
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubscription")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	sub, err := api.svc.Subscribe(ctx.Request().Context(), data, usr.ID)
	if err != nil {
		return errors.Wrap(err, "subscribing")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *pushApi) unsubscribe(ctx echo.Context) error {
	var data UnsubscribeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UnsubscribeRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Unsubscribe(ctx.Request().Context(), usr.ID, data.Endpoint); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
