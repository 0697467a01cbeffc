package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/class"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/user"
)

type classApi struct {
	svc *class.Service
}

func registerClassAPI(g *echo.Group, svc *class.Service) {
	api := classApi{svc: svc}

	manageClasses := manageMiddleware(func(p user.SecretaryPermissions) bool { return p.CanManageClasses })

	cg := g.Group("/classes")
	cg.POST("", api.create, manageClasses)
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update, manageClasses)
	cg.DELETE("/:id", api.destroy, manageClasses)
}

func (api *classApi) create(ctx echo.Context) error {
	var data class.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	schoolID := getContextSchoolID(ctx)
	if schoolID == "" {
		return errSchoolContextMissing
	}
	if err := data.Validate(api.svc, schoolID); err != nil {
		return err
	}

	cls, err := api.svc.Create(ctx.Request().Context(), data, schoolID)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, cls)
}

// query narrows results to the caller's own classes for teachers, students
// and parents; managers see the whole school.
func (api *classApi) query(ctx echo.Context) error {
	filter := new(class.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []class.Class{})
	}
	filter.SchoolID = getContextSchoolID(ctx)

	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	switch {
	case usr.IsTeacher():
		filter.TeacherID = usr.ID
	case usr.IsStudent():
		filter.StudentID = usr.ID
	case usr.IsParent():
		if !containsID(usr.StudentIDs, filter.StudentID) {
			return ctx.JSON(http.StatusOK, []class.Class{})
		}
	}

	classes, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	if classes == nil {
		classes = []class.Class{}
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *classApi) retrieve(ctx echo.Context) error {
	cls, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"), getContextSchoolID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *classApi) update(ctx echo.Context) error {
	var data class.UpdateClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClass")
	}

	orig, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"), getContextSchoolID(ctx))
	if err != nil {
		return err
	}
	if err := data.Validate(orig, api.svc); err != nil {
		return err
	}

	cls, err := api.svc.Update(ctx.Request().Context(), orig, data)
	if err != nil {
		return errors.Wrap(err, "updating class")
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *classApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), getContextSchoolID(ctx)); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
