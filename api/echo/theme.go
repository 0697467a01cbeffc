package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/theme"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/user"
)

type themeApi struct {
	svc *theme.Service
}

func registerThemeAPI(g *echo.Group, svc *theme.Service) {
	api := themeApi{svc: svc}

	admins := roleMiddleware(user.RoleAdmin)

	tg := g.Group("/themes")
	tg.POST("", api.create, admins)
	tg.GET("", api.query)
	tg.GET("/:id", api.retrieve)
	tg.PUT("/:id", api.update, admins)
	tg.DELETE("/:id", api.destroy, admins)
}

func (api *themeApi) create(ctx echo.Context) error {
	var data theme.NewTheme
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTheme")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	schoolID := getContextSchoolID(ctx)
	if schoolID == "" {
		return errSchoolContextMissing
	}

	t, err := api.svc.Create(ctx.Request().Context(), data, schoolID)
	if err != nil {
		return errors.Wrap(err, "creating theme")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *themeApi) query(ctx echo.Context) error {
	themes, err := api.svc.Query(ctx.Request().Context(), getContextSchoolID(ctx))
	if err != nil {
		return errors.Wrap(err, "querying themes")
	}
	if themes == nil {
		themes = []theme.Theme{}
	}
	return ctx.JSON(http.StatusOK, themes)
}

func (api *themeApi) retrieve(ctx echo.Context) error {
	t, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"), getContextSchoolID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *themeApi) update(ctx echo.Context) error {
	var data theme.UpdateTheme
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTheme")
	}

	orig, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"), getContextSchoolID(ctx))
	if err != nil {
		return err
	}

	t, err := api.svc.Update(ctx.Request().Context(), orig, data)
	if err != nil {
		return errors.Wrap(err, "updating theme")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *themeApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), getContextSchoolID(ctx)); err != nil {
		return errors.Wrap(err, "deleting theme")
	}
	return ctx.NoContent(http.StatusNoContent)
}
