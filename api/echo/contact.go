package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/contact"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/user"
)

// submitPublicContact is the only un-authed mutation in the API; it lives on
// the server so it escapes the JWT middleware and is rate-limited per IP by
// the service.
func (s *server) submitPublicContact(ctx echo.Context) error {
	var data contact.NewPublicContact
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPublicContact")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	c, err := s.deps.ContactSvc.SubmitPublic(
		ctx.Request().Context(), data, ctx.RealIP(), ctx.Request().UserAgent())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, c)
}

type contactApi struct {
	svc *contact.Service
}

func registerContactAPI(g *echo.Group, svc *contact.Service) {
	api := contactApi{svc: svc}

	replyContacts := manageMiddleware(func(p user.SecretaryPermissions) bool { return p.CanReplyContacts })

	cg := g.Group("/contact")
	cg.POST("", api.submit)
	cg.GET("", api.query, replyContacts)
	cg.GET("/:id", api.retrieve, replyContacts)
	cg.PUT("/:id/read", api.markRead, replyContacts)
	cg.PUT("/:id/reply", api.reply, replyContacts)
	cg.PUT("/:id/close", api.close, replyContacts)
}

func (api *contactApi) submit(ctx echo.Context) error {
	var data contact.NewContact
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewContact")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sender, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	c, err := api.svc.Submit(ctx.Request().Context(), data, sender)
	if err != nil {
		return errors.Wrap(err, "submitting contact message")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *contactApi) query(ctx echo.Context) error {
	contacts, err := api.svc.Query(ctx.Request().Context(), getContextSchoolID(ctx), ctx.QueryParam("status"))
	if err != nil {
		return errors.Wrap(err, "querying contact messages")
	}
	if contacts == nil {
		contacts = []contact.Contact{}
	}
	return ctx.JSON(http.StatusOK, contacts)
}

func (api *contactApi) retrieve(ctx echo.Context) error {
	c, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"), getContextSchoolID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *contactApi) markRead(ctx echo.Context) error {
	c, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"), getContextSchoolID(ctx))
	if err != nil {
		return err
	}
	if c, err = api.svc.MarkRead(ctx.Request().Context(), c); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *contactApi) reply(ctx echo.Context) error {
	var data contact.Reply
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Reply")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	c, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"), getContextSchoolID(ctx))
	if err != nil {
		return err
	}
	if c, err = api.svc.Reply(ctx.Request().Context(), c, data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *contactApi) close(ctx echo.Context) error {
	c, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"), getContextSchoolID(ctx))
	if err != nil {
		return err
	}
	if c, err = api.svc.Close(ctx.Request().Context(), c); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}
