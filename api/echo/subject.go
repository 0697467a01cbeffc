package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/subject"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/user"
)

type subjectApi struct {
	svc *subject.Service
}

func registerSubjectAPI(g *echo.Group, svc *subject.Service) {
	api := subjectApi{svc: svc}

	manageSubjects := manageMiddleware(func(p user.SecretaryPermissions) bool { return p.CanManageSubjects })

	sg := g.Group("/subjects")
	sg.POST("", api.create, manageSubjects)
	sg.GET("", api.query)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update, manageSubjects)
	sg.DELETE("/:id", api.destroy, manageSubjects)
}

func (api *subjectApi) create(ctx echo.Context) error {
	var data subject.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	schoolID := getContextSchoolID(ctx)
	if schoolID == "" {
		return errSchoolContextMissing
	}
	if err := data.Validate(api.svc, schoolID); err != nil {
		return err
	}

	sub, err := api.svc.Create(ctx.Request().Context(), data, schoolID)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *subjectApi) query(ctx echo.Context) error {
	subjects, err := api.svc.Query(ctx.Request().Context(), getContextSchoolID(ctx))
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	if subjects == nil {
		subjects = []subject.Subject{}
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *subjectApi) retrieve(ctx echo.Context) error {
	sub, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"), getContextSchoolID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *subjectApi) update(ctx echo.Context) error {
	var data subject.UpdateSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSubject")
	}

	orig, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"), getContextSchoolID(ctx))
	if err != nil {
		return err
	}
	if err := data.Validate(orig, api.svc); err != nil {
		return err
	}

	sub, err := api.svc.Update(ctx.Request().Context(), orig, data)
	if err != nil {
		return errors.Wrap(err, "updating subject")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *subjectApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), getContextSchoolID(ctx)); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.NoContent(http.StatusNoContent)
}
