package theme

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core"
)

var ErrNotFound = errors.New("theme not found")

type (
	// Theme is a named set of CSS color variables scoped to a school.
	Theme struct {
		ID        string            `json:"id"`
		Name      string            `json:"name"`
		Colors    map[string]string `json:"colors"`
		SchoolID  string            `json:"school_id"`
		IsDefault bool              `json:"is_default"`
		CreatedAt time.Time         `json:"created_at"`
		UpdatedAt time.Time         `json:"updated_at"`
	}

	NewTheme struct {
		Name      string            `json:"name" validate:"required"`
		Colors    map[string]string `json:"colors" validate:"required,min=1"`
		IsDefault bool              `json:"is_default"`
	}

	UpdateTheme struct {
		Name      string            `json:"name"`
		Colors    map[string]string `json:"colors"`
		IsDefault *bool             `json:"is_default"`
	}

	Repository interface {
		CreateTheme(ctx context.Context, t Theme) (Theme, error)
		GetThemeByID(ctx context.Context, id, schoolID string) (Theme, error)
		QueryThemes(ctx context.Context, schoolID string) ([]Theme, error)
		UpdateTheme(ctx context.Context, t Theme) (Theme, error)
		DeleteTheme(ctx context.Context, id, schoolID string) error
		// ClearDefault unsets IsDefault on every theme of the school.
		ClearDefault(ctx context.Context, schoolID string) error
	}

	Service struct {
		repo Repository
	}
)

func (nt *NewTheme) Validate() error {
	nt.Name = core.CleanString(nt.Name)
	return core.Validate.Struct(nt)
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nt NewTheme, schoolID string) (Theme, error) {
	if nt.IsDefault {
		if err := svc.repo.ClearDefault(ctx, schoolID); err != nil {
			return Theme{}, err
		}
	}
	now := time.Now().UTC()
	t := Theme{
		ID:        uuid.NewString(),
		Name:      nt.Name,
		Colors:    nt.Colors,
		SchoolID:  schoolID,
		IsDefault: nt.IsDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateTheme(ctx, t)
}

func (svc *Service) GetByID(ctx context.Context, id, schoolID string) (Theme, error) {
	return svc.repo.GetThemeByID(ctx, id, schoolID)
}

func (svc *Service) Query(ctx context.Context, schoolID string) ([]Theme, error) {
	return svc.repo.QueryThemes(ctx, schoolID)
}

func (svc *Service) Update(ctx context.Context, orig Theme, ut UpdateTheme) (Theme, error) {
	t := orig
	if name := core.CleanString(ut.Name); name != "" {
		t.Name = name
	}
	if ut.Colors != nil {
		t.Colors = ut.Colors
	}
	if ut.IsDefault != nil {
		if *ut.IsDefault && !t.IsDefault {
			if err := svc.repo.ClearDefault(ctx, t.SchoolID); err != nil {
				return Theme{}, err
			}
		}
		t.IsDefault = *ut.IsDefault
	}
	t.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTheme(ctx, t)
}

func (svc *Service) Delete(ctx context.Context, id, schoolID string) error {
	return svc.repo.DeleteTheme(ctx, id, schoolID)
}
