package maintenance

import (
	"context"
	"errors"
	"time"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/user"
)

var ErrNotFound = errors.New("maintenance state not found")

type (
	// Maintenance is a singleton: there is exactly one per deployment.
	Maintenance struct {
		Enabled      bool      `json:"enabled"`
		Message      string    `json:"message,omitempty"`
		AllowedRoles []string  `json:"allowed_roles,omitempty"` // roles that bypass the gate
		History      []Change  `json:"history,omitempty"`       // append-only
		UpdatedAt    time.Time `json:"updated_at"`
	}

	Change struct {
		By      string    `json:"by"`
		Enabled bool      `json:"enabled"`
		Message string    `json:"message,omitempty"`
		At      time.Time `json:"at"`
	}

	SetMaintenance struct {
		Enabled      bool     `json:"enabled"`
		Message      string   `json:"message"`
		AllowedRoles []string `json:"allowed_roles"`
	}

	Repository interface {
		GetMaintenance(ctx context.Context) (Maintenance, error)
		SaveMaintenance(ctx context.Context, m Maintenance) (Maintenance, error)
	}

	Service struct {
		repo Repository
	}
)

func (sm *SetMaintenance) Validate() error {
	sm.Message = core.CleanString(sm.Message)
	for _, r := range sm.AllowedRoles {
		if !user.IsValidRole(r) {
			return core.NewValidationError(nil, core.FieldError{Field: "allowed_roles", Error: "unknown role: " + r})
		}
	}
	return nil
}

// Allows reports whether the given role may bypass maintenance mode.
// Superadmin always may.
func (m Maintenance) Allows(role string) bool {
	if !m.Enabled || role == user.RoleSuperAdmin {
		return true
	}
	for _, r := range m.AllowedRoles {
		if r == role {
			return true
		}
	}
	return false
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the singleton state; a missing document reads as disabled.
func (svc *Service) Get(ctx context.Context) (Maintenance, error) {
	m, err := svc.repo.GetMaintenance(ctx)
	if err == ErrNotFound {
		return Maintenance{}, nil
	}
	return m, err
}

// Set updates the state and appends to the history log.
func (svc *Service) Set(ctx context.Context, sm SetMaintenance, by user.User) (Maintenance, error) {
	m, err := svc.Get(ctx)
	if err != nil {
		return Maintenance{}, err
	}
	now := time.Now().UTC()
	m.Enabled = sm.Enabled
	m.Message = sm.Message
	m.AllowedRoles = sm.AllowedRoles
	m.UpdatedAt = now
	m.History = append(m.History, Change{
		By:      by.ID,
		Enabled: sm.Enabled,
		Message: sm.Message,
		At:      now,
	})
	return svc.repo.SaveMaintenance(ctx, m)
}
