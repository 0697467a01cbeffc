package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/auth"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/school"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/user"
)

const (
	contextClaimsKey   = "claims"
	contextUserKey     = "user"
	contextSchoolKey   = "school"
	contextSchoolIDKey = "schoolID"
)

func getContextClaims(ctx echo.Context) (auth.Claims, error) {
	if claims, ok := ctx.Get(contextClaimsKey).(auth.Claims); ok {
		return claims, nil
	}
	return auth.Claims{}, errUnauthorized
}

func getContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errUnauthorized
}

// getContextSchoolID returns the request tenant. Empty for superadmin.
func getContextSchoolID(ctx echo.Context) string {
	if id, ok := ctx.Get(contextSchoolIDKey).(string); ok {
		return id
	}
	return ""
}

// jwtMiddleware authenticates requests off the Authorization bearer token.
func (s *server) jwtMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		header := ctx.Request().Header.Get(echo.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return errUnauthorized
		}
		claims, err := s.deps.AuthSvc.VerifyAccess(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return errUnauthorized
		}
		ctx.Set(contextClaimsKey, claims)
		return next(ctx)
	}
}

// tenancyMiddleware resolves the request tenant from the authenticated user.
// Superadmins get an empty school context. For everyone else a missing
// schoolId is recovered by matching the user's email domain to a school and
// persisting the result back onto the user.
func (s *server) tenancyMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}
		reqCtx := ctx.Request().Context()

		usr, err := s.deps.UserSvc.GetByID(reqCtx, claims.Subject)
		if err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				return errUnauthorized
			}
			return errors.Wrap(err, "loading request user")
		}
		if !usr.IsActive {
			return echo.NewHTTPError(http.StatusForbidden, auth.ErrAccountDisabled.Error())
		}

		if usr.IsSuperAdmin() {
			ctx.Set(contextUserKey, usr)
			ctx.Set(contextSchoolIDKey, "")
			return next(ctx)
		}

		if usr.SchoolID == "" {
			sch, err := s.deps.SchoolSvc.GetByEmailDomain(reqCtx, core.EmailDomain(usr.Email))
			if err != nil {
				if errors.Cause(err) == school.ErrNotFound {
					return errSchoolContextMissing
				}
				return errors.Wrap(err, "recovering school context")
			}
			if usr, err = s.deps.UserSvc.SetSchool(reqCtx, usr, sch.ID); err != nil {
				return errors.Wrap(err, "persisting recovered school")
			}
		}

		sch, err := s.deps.SchoolSvc.GetByID(reqCtx, usr.SchoolID)
		if err != nil {
			if errors.Cause(err) == school.ErrNotFound {
				return errHTTPNotFound
			}
			return errors.Wrap(err, "loading school")
		}
		if !sch.IsActive {
			return errSchoolInactive
		}

		ctx.Set(contextUserKey, usr)
		ctx.Set(contextSchoolKey, sch)
		ctx.Set(contextSchoolIDKey, sch.ID)
		return next(ctx)
	}
}

// maintenanceMiddleware returns 503 to roles not allowed through while
// maintenance mode is on. Superadmins always pass.
func (s *server) maintenanceMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}
		m, err := s.deps.MaintenanceSvc.Get(ctx.Request().Context())
		if err != nil {
			return errors.Wrap(err, "loading maintenance state")
		}
		if !m.Allows(claims.Role) {
			msg := m.Message
			if msg == "" {
				msg = "the system is under maintenance"
			}
			return echo.NewHTTPError(http.StatusServiceUnavailable, msg)
		}
		return next(ctx)
	}
}

// roleMiddleware limits a route group to the given roles. Superadmins pass
// every gate.
func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx)
			if err != nil {
				return err
			}
			if usr.IsSuperAdmin() {
				return next(ctx)
			}
			for _, role := range roles {
				if usr.Role == role {
					return next(ctx)
				}
			}
			return errHTTPForbidden
		}
	}
}

// manageMiddleware admits admins, and secretaries holding the given
// permission.
func manageMiddleware(perm func(user.SecretaryPermissions) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx)
			if err != nil {
				return err
			}
			if usr.CanManage(perm) {
				return next(ctx)
			}
			return errHTTPForbidden
		}
	}
}

// featureMiddleware gates a route group on a named feature toggle. Toggles
// are not enforced yet: every request passes, skips are only logged so
// rollouts can be observed first.
func (s *server) featureMiddleware(feature string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			s.deps.Logger.Debug("feature gate passed: " + feature)
			return next(ctx)
		}
	}
}
