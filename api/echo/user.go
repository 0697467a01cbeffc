package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/user"
)

// auth endpoints live on the server: they run before any tenant context
// exists.

func (s *server) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, pair, err := s.deps.AuthSvc.Login(ctx.Request().Context(), data.Email, data.Password, ctx.RealIP())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"user":          usr,
		"token":         pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"expires_at":    pair.ExpiresAt,
	})
}

func (s *server) refreshToken(ctx echo.Context) error {
	var data RefreshRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RefreshRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	pair, err := s.deps.AuthSvc.Refresh(ctx.Request().Context(), data.RefreshToken)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, pair)
}

func (s *server) logout(ctx echo.Context) error {
	var data LogoutRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LogoutRequest")
	}
	if err := s.deps.AuthSvc.Logout(ctx.Request().Context(), data.RefreshToken); err != nil {
		return errors.Wrap(err, "logging out")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "logged out"})
}

type userApi struct {
	svc *user.Service
}

func registerUserAPI(g *echo.Group, svc *user.Service) {
	api := userApi{svc: svc}

	manageUsers := manageMiddleware(func(p user.SecretaryPermissions) bool { return p.CanManageUsers })

	ug := g.Group("/users")
	ug.POST("", api.create, manageUsers)
	ug.GET("", api.query, manageUsers)
	ug.GET("/roles", api.queryRoles, manageUsers)

	dg := ug.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, manageUsers)
	dg.DELETE("", api.destroy, manageUsers)
	dg.POST("/students", api.linkStudents, manageUsers)
	dg.DELETE("/students/:sid", api.unlinkStudent, manageUsers)
}

func (api *userApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}

	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	// tenants only create within their own school, and nobody grants a role
	// above their own
	if schoolID := getContextSchoolID(ctx); schoolID != "" {
		data.SchoolID = schoolID
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}
	if user.RolePriority(data.Role) > user.RolePriority(ctxUsr.Role) {
		return errHTTPForbidden
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) query(ctx echo.Context) error {
	filter := new(user.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []user.User{})
	}
	filter.Clean()
	filter.SchoolID = getContextSchoolID(ctx)

	users, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, user.Roles)
}

// retrieve allows self-access, linked parents, and user managers.
func (api *userApi) retrieve(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	id := ctx.Param("id")

	allowed := ctxUsr.ID == id ||
		ctxUsr.CanManage(func(p user.SecretaryPermissions) bool { return p.CanManageUsers })
	if !allowed && ctxUsr.IsParent() {
		for _, sid := range ctxUsr.StudentIDs {
			if sid == id {
				allowed = true
				break
			}
		}
	}
	if !allowed {
		return errHTTPForbidden
	}

	usr, err := api.getTenantUser(ctx, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) update(ctx echo.Context) error {
	var data user.UpdateUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}

	orig, err := api.getTenantUser(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}
	if err := data.Validate(orig, api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Update(ctx.Request().Context(), orig, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) destroy(ctx echo.Context) error {
	usr, err := api.getTenantUser(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), usr.ID); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) linkStudents(ctx echo.Context) error {
	var data LinkStudentsRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LinkStudentsRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	parent, err := api.getTenantUser(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}
	if err := api.svc.LinkStudents(ctx.Request().Context(), parent.ID, data.StudentIDs...); err != nil {
		return errors.Wrap(err, "linking students")
	}

	parent, err = api.svc.GetByID(ctx.Request().Context(), parent.ID)
	if err != nil {
		return errors.Wrap(err, "reloading parent")
	}
	return ctx.JSON(http.StatusOK, parent)
}

func (api *userApi) unlinkStudent(ctx echo.Context) error {
	parent, err := api.getTenantUser(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}
	if err := api.svc.UnlinkStudents(ctx.Request().Context(), parent.ID, ctx.Param("sid")); err != nil {
		return errors.Wrap(err, "unlinking student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// getTenantUser loads a user and hides other tenants' users behind not-found.
func (api *userApi) getTenantUser(ctx echo.Context, id string) (user.User, error) {
	usr, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return user.User{}, err
	}
	if schoolID := getContextSchoolID(ctx); schoolID != "" && usr.SchoolID != schoolID {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}
