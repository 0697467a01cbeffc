package school

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core"
)

var (
	// errors
	ErrNotFound     = errors.New("school not found")
	ErrDomainExists = errors.New("a school with this email domain already exists")
)

type (
	Repository interface {
		CreateSchool(ctx context.Context, sch School) (School, error)
		GetSchoolByID(ctx context.Context, id string) (School, error)
		GetSchoolByEmailDomain(ctx context.Context, domain string) (School, error)
		QueryAllSchools(ctx context.Context) ([]School, error)
		UpdateSchool(ctx context.Context, sch School, isActive *bool) (School, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkDomainUniqueness(domain string) error {
	if _, err := svc.repo.GetSchoolByEmailDomain(context.Background(), domain); err == nil {
		return core.NewValidationError(ErrDomainExists, core.FieldError{Field: "email_domain", Error: ErrDomainExists.Error()})
	} else if err != ErrNotFound {
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ns NewSchool) (School, error) {
	now := time.Now().UTC()
	sch := School{
		ID:          uuid.NewString(),
		Name:        ns.Name,
		EmailDomain: ns.EmailDomain,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateSchool(ctx, sch)
}

func (svc *Service) GetByID(ctx context.Context, id string) (School, error) {
	return svc.repo.GetSchoolByID(ctx, id)
}

func (svc *Service) GetByEmailDomain(ctx context.Context, domain string) (School, error) {
	return svc.repo.GetSchoolByEmailDomain(ctx, core.CleanString(domain, true /* lower */))
}

func (svc *Service) QueryAll(ctx context.Context) ([]School, error) {
	return svc.repo.QueryAllSchools(ctx)
}

func (svc *Service) Update(ctx context.Context, orig School, us UpdateSchool) (School, error) {
	sch := orig
	sch.Name = us.Name
	sch.EmailDomain = us.EmailDomain
	sch.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSchool(ctx, sch, us.IsActive)
}
