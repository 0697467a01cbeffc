package echoapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/auth"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/class"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/contact"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/event"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/grade"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/maintenance"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/push"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/school"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/subject"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/theme"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	errHTTPForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHTTPNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
	errSchoolContextMissing = echo.NewHTTPError(http.StatusBadRequest, "school context missing")
	errSchoolInactive       = echo.NewHTTPError(http.StatusForbidden, "school deactivated")
)

type errorBody struct {
	Message   interface{} `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Stack     string      `json:"stack,omitempty"`
}

func notFoundErr(err error) bool {
	switch err {
	case user.ErrNotFound, school.ErrNotFound, class.ErrNotFound, subject.ErrNotFound,
		grade.ErrNotFound, event.ErrNotFound, contact.ErrNotFound, theme.ErrNotFound,
		push.ErrNotFound, maintenance.ErrNotFound:
		return true
	}
	return false
}

func conflictErr(err error) bool {
	switch err {
	case grade.ErrDuplicate, class.ErrNameExists, subject.ErrNameExists,
		user.ErrEmailExists, school.ErrDomainExists, contact.ErrBadTransition:
		return true
	}
	return false
}

// newAppHTTPErrorHandler maps application errors to transport ones.
// Cross-tenant access comes through as a not-found sentinel already, so it
// never leaks the existence of another school's records.
// signalShutdown is called whenever a shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(core.Translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *auth.TooManyAttemptsError:
			code = http.StatusTooManyRequests
			message = origErr.Error()
			ctx.Response().Header().Set("Retry-After", strconv.Itoa(int(origErr.RetryAfter.Seconds())))
		default:
			switch {
			case cause == auth.ErrInvalidCredentials:
				code = http.StatusUnauthorized
				message = cause.Error()
			case cause == auth.ErrInvalidToken || cause == auth.ErrInvalidRefreshToken:
				code = http.StatusUnauthorized
				message = cause.Error()
			case cause == auth.ErrAccountDisabled:
				code = http.StatusForbidden
				message = cause.Error()
			case cause == grade.ErrNoSharedClass:
				code = http.StatusForbidden
				message = cause.Error()
			case cause == contact.ErrTooManySubmissions:
				code = http.StatusTooManyRequests
				message = cause.Error()
			case notFoundErr(cause):
				code = http.StatusNotFound
				message = cause.Error()
			case conflictErr(cause):
				code = http.StatusBadRequest
				message = cause.Error()
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				req := ctx.Request()
				logArgs := []interface{}{
					errors.Wrap(err, msg),
					map[string]interface{}{"path": req.URL.Path, "method": req.Method},
				}
				if usr, uErr := getContextUser(ctx); uErr == nil {
					logArgs = append(logArgs, usr)
				}
				logger.Error(msg, logArgs...)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		// bodies on 401 responses must never reach the logs
		if code == http.StatusUnauthorized {
			ctx.Set("redactBody", true)
		}

		body := errorBody{
			Message:   message,
			RequestID: ctx.Response().Header().Get(echo.HeaderXRequestID),
		}
		if ctx.Echo().Debug && code >= http.StatusInternalServerError {
			body.Stack = fmt.Sprintf("%+v", err)
		}

		if !ctx.Response().Committed {
			var werr error
			if ctx.Request().Method == http.MethodHead {
				werr = ctx.NoContent(code)
			} else {
				werr = ctx.JSON(code, body)
			}
			if werr != nil {
				ctx.Echo().Logger.Error(werr)
			}
		}
	}
}
