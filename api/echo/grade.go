package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/grade"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/user"
)

type gradeApi struct {
	svc *grade.Service
}

func registerGradeAPI(g *echo.Group, svc *grade.Service, gate echo.MiddlewareFunc) {
	api := gradeApi{svc: svc}

	graders := roleMiddleware(user.RoleAdmin, user.RoleSecretary, user.RoleTeacher)

	gg := g.Group("/grades", gate)
	gg.POST("", api.create, graders)
	gg.GET("", api.query, graders)
	gg.GET("/:id", api.retrieve, graders)
	gg.PUT("/:id", api.update, graders)
	gg.DELETE("/:id", api.destroy, graders)
	gg.GET("/student/:id", api.queryByStudent)
	gg.GET("/stats/student/:id", api.studentStats)
}

func (api *gradeApi) create(ctx echo.Context) error {
	var data grade.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	grader, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	gr, err := api.svc.Create(ctx.Request().Context(), data, grader, getContextSchoolID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, gr)
}

// query returns the school's grades for managers; teachers only see grades
// they authored.
func (api *gradeApi) query(ctx echo.Context) error {
	filter := new(grade.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []grade.Grade{})
	}
	filter.SchoolID = getContextSchoolID(ctx)

	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if usr.IsTeacher() {
		filter.TeacherID = usr.ID
	}

	grades, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	if grades == nil {
		grades = []grade.Grade{}
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *gradeApi) retrieve(ctx echo.Context) error {
	gr, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"), getContextSchoolID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, gr)
}

func (api *gradeApi) update(ctx echo.Context) error {
	var data grade.UpdateGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGrade")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	orig, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"), getContextSchoolID(ctx))
	if err != nil {
		return err
	}
	grader, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	gr, err := api.svc.Update(ctx.Request().Context(), orig, data, grader)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, gr)
}

func (api *gradeApi) destroy(ctx echo.Context) error {
	orig, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"), getContextSchoolID(ctx))
	if err != nil {
		return err
	}
	grader, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), orig, grader); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *gradeApi) queryByStudent(ctx echo.Context) error {
	studentID := ctx.Param("id")
	if err := api.checkStudentAccess(ctx, studentID); err != nil {
		return err
	}

	grades, err := api.svc.QueryByStudent(ctx.Request().Context(), studentID, getContextSchoolID(ctx))
	if err != nil {
		return errors.Wrap(err, "querying student grades")
	}
	if grades == nil {
		grades = []grade.Grade{}
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *gradeApi) studentStats(ctx echo.Context) error {
	studentID := ctx.Param("id")
	if err := api.checkStudentAccess(ctx, studentID); err != nil {
		return err
	}

	stats, err := api.svc.StudentStats(ctx.Request().Context(), studentID, getContextSchoolID(ctx))
	if err != nil {
		return errors.Wrap(err, "computing student stats")
	}
	if stats == nil {
		stats = []grade.SubjectStats{}
	}
	return ctx.JSON(http.StatusOK, stats)
}

// checkStudentAccess admits the student themselves, their linked parents,
// and staff.
func (api *gradeApi) checkStudentAccess(ctx echo.Context, studentID string) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	switch {
	case usr.ID == studentID:
		return nil
	case usr.IsParent() && containsID(usr.StudentIDs, studentID):
		return nil
	case usr.IsTeacher(), usr.IsAdmin(), usr.IsSecretary():
		return nil
	}
	return errHTTPForbidden
}
