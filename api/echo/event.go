package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/event"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/push"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/user"
)

type eventApi struct {
	svc     *event.Service
	pushSvc *push.Service
}

func registerEventAPI(g *echo.Group, svc *event.Service, pushSvc *push.Service) {
	api := eventApi{svc: svc, pushSvc: pushSvc}

	manageEvents := manageMiddleware(func(p user.SecretaryPermissions) bool { return p.CanManageEvents })

	eg := g.Group("/events")
	eg.POST("", api.create, manageEvents)
	eg.GET("", api.query)
	eg.GET("/:id", api.retrieve)
	eg.PUT("/:id", api.update, manageEvents)
	eg.DELETE("/:id", api.destroy, manageEvents)
}

func (api *eventApi) create(ctx echo.Context) error {
	var data event.NewEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvent")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	creator, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	ev, err := api.svc.Create(ctx.Request().Context(), data, creator, getContextSchoolID(ctx))
	if err != nil {
		return errors.Wrap(err, "creating event")
	}

	// user-scoped events trigger a push to the targeted users
	if ev.Audience.Scope == event.ScopeUsers && len(ev.Audience.UserIDs) > 0 {
		api.pushSvc.NotifyUsers(ctx.Request().Context(), push.Notification{
			Title: ev.Title,
			Body:  ev.Description,
		}, ev.Audience.UserIDs...)
	}
	return ctx.JSON(http.StatusCreated, ev)
}

func (api *eventApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	events, err := api.svc.QueryVisible(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "querying events")
	}
	if events == nil {
		events = []event.Event{}
	}
	return ctx.JSON(http.StatusOK, events)
}

func (api *eventApi) retrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	ev, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"), getContextSchoolID(ctx))
	if err != nil {
		return err
	}
	// invisible events read as absent
	if !usr.IsAdmin() && !ev.Audience.Targets(usr) && ev.CreatorID != usr.ID {
		return event.ErrNotFound
	}
	return ctx.JSON(http.StatusOK, ev)
}

func (api *eventApi) update(ctx echo.Context) error {
	var data event.UpdateEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEvent")
	}

	orig, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"), getContextSchoolID(ctx))
	if err != nil {
		return err
	}
	if err := data.Validate(orig); err != nil {
		return err
	}

	ev, err := api.svc.Update(ctx.Request().Context(), orig, data)
	if err != nil {
		return errors.Wrap(err, "updating event")
	}
	return ctx.JSON(http.StatusOK, ev)
}

func (api *eventApi) destroy(ctx echo.Context) error {
	orig, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"), getContextSchoolID(ctx))
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), orig); err != nil {
		return errors.Wrap(err, "deleting event")
	}
	return ctx.NoContent(http.StatusNoContent)
}
