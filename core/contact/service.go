package contact

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/user"
)

// Public submissions are capped per client IP.
const (
	PublicRateLimit  = 5
	PublicRateWindow = time.Hour
)

var (
	// errors
	ErrNotFound          = errors.New("contact message not found")
	ErrBadTransition     = errors.New("invalid status transition")
	ErrTooManySubmissions = errors.New("too many messages; try again later")
)

type (
	Repository interface {
		CreateContact(ctx context.Context, c Contact) (Contact, error)
		GetContactByID(ctx context.Context, id, schoolID string) (Contact, error)
		// QueryContacts filters by school and optionally by status.
		QueryContacts(ctx context.Context, schoolID, status string) ([]Contact, error)
		UpdateContact(ctx context.Context, c Contact) (Contact, error)
	}

	// RateStore counts public submissions per client IP inside a window.
	RateStore interface {
		// Allow records a hit and reports whether the IP stays within limit.
		Allow(ctx context.Context, ip string, limit int, window time.Duration) (bool, error)
	}

	Service struct {
		repo    Repository
		rate    RateStore
		mailSvc core.EmailService
	}
)

func NewService(repo Repository, rate RateStore, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, rate: rate, mailSvc: mailSvc}
}

// Submit records a message from an authenticated user to their school's admins.
func (svc *Service) Submit(ctx context.Context, nc NewContact, sender user.User) (Contact, error) {
	now := time.Now().UTC()
	c := Contact{
		ID:          uuid.NewString(),
		SenderID:    sender.ID,
		SenderName:  sender.Name,
		SenderEmail: sender.Email,
		Subject:     nc.Subject,
		Message:     nc.Message,
		Status:      StatusNew,
		SchoolID:    sender.SchoolID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateContact(ctx, c)
}

// SubmitPublic records an anonymous message, keeping client IP and user agent
// for abuse mitigation, and rate-limits per IP.
func (svc *Service) SubmitPublic(ctx context.Context, nc NewPublicContact, clientIP, userAgent string) (Contact, error) {
	if ok, err := svc.rate.Allow(ctx, clientIP, PublicRateLimit, PublicRateWindow); err != nil {
		return Contact{}, pkgerrors.Wrap(err, "checking contact rate limit")
	} else if !ok {
		return Contact{}, ErrTooManySubmissions
	}

	now := time.Now().UTC()
	c := Contact{
		ID:          uuid.NewString(),
		SenderName:  nc.Name,
		SenderEmail: nc.Email,
		Subject:     nc.Subject,
		Message:     nc.Message,
		Status:      StatusNew,
		IsPublic:    true,
		ClientIP:    clientIP,
		UserAgent:   userAgent,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateContact(ctx, c)
}

func (svc *Service) GetByID(ctx context.Context, id, schoolID string) (Contact, error) {
	return svc.repo.GetContactByID(ctx, id, schoolID)
}

func (svc *Service) Query(ctx context.Context, schoolID, status string) ([]Contact, error) {
	return svc.repo.QueryContacts(ctx, schoolID, status)
}

func (svc *Service) MarkRead(ctx context.Context, c Contact) (Contact, error) {
	return svc.transition(ctx, c, StatusRead)
}

func (svc *Service) Close(ctx context.Context, c Contact) (Contact, error) {
	return svc.transition(ctx, c, StatusClosed)
}

// Reply stores the admin reply, moves the message to replied and emails the
// sender. The email is fire-and-forget: its failure never fails the mutation.
func (svc *Service) Reply(ctx context.Context, c Contact, r Reply) (Contact, error) {
	if !CanTransition(c.Status, StatusReplied) {
		return Contact{}, ErrBadTransition
	}
	c.ReplyText = r.Text
	c.RepliedAt = time.Now().UTC()
	c.Status = StatusReplied
	c.UpdatedAt = c.RepliedAt

	c, err := svc.repo.UpdateContact(ctx, c)
	if err != nil {
		return Contact{}, err
	}
	svc.sendReplyEmail(c)
	return c, nil
}

func (svc *Service) transition(ctx context.Context, c Contact, to string) (Contact, error) {
	if !CanTransition(c.Status, to) {
		return Contact{}, ErrBadTransition
	}
	c.Status = to
	c.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateContact(ctx, c)
}

func (svc *Service) sendReplyEmail(c Contact) {
	if svc.mailSvc == nil || c.SenderEmail == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: c.SenderName, Address: c.SenderEmail}},
		Subject:      "Re: " + c.Subject,
		TemplateName: "contact-reply",
		TemplateData: c,
	})
}
