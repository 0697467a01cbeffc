package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/maintenance"
)

type maintenanceApi struct {
	svc *maintenance.Service
}

func registerMaintenanceAPI(g *echo.Group, svc *maintenance.Service) {
	api := maintenanceApi{svc: svc}

	mg := g.Group("/system/maintenance")
	mg.GET("", api.retrieve)
	mg.PUT("", api.set, roleMiddleware()) // superadmin only
}

func (api *maintenanceApi) retrieve(ctx echo.Context) error {
	m, err := api.svc.Get(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "loading maintenance state")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *maintenanceApi) set(ctx echo.Context) error {
	var data maintenance.SetMaintenance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetMaintenance")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	m, err := api.svc.Set(ctx.Request().Context(), data, usr)
	if err != nil {
		return errors.Wrap(err, "updating maintenance state")
	}
	return ctx.JSON(http.StatusOK, m)
}
