package school

import (
	"time"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core"
)

// School is the tenant boundary: nearly every document is scoped by its ID.
type School struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	EmailDomain string    `json:"email_domain"` // routes registration/login, lowercase
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

type NewSchool struct {
	Name        string `json:"name" validate:"required"`
	EmailDomain string `json:"email_domain" validate:"required,fqdn"`
}

func (ns *NewSchool) Validate(svc *Service) error {
	ns.Name = core.CleanString(ns.Name)
	ns.EmailDomain = core.CleanString(ns.EmailDomain, true /* lower */)

	if err := core.Validate.Struct(ns); err != nil {
		return err
	}
	return svc.checkDomainUniqueness(ns.EmailDomain)
}

type UpdateSchool struct {
	Name        string `json:"name"`
	EmailDomain string `json:"email_domain" validate:"omitempty,fqdn"`
	IsActive    *bool  `json:"is_active"`
}

func (us *UpdateSchool) Validate(orig School, svc *Service) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	if domain := core.CleanString(us.EmailDomain, true /* lower */); domain != "" {
		us.EmailDomain = domain
	} else {
		us.EmailDomain = orig.EmailDomain
	}

	if err := core.Validate.Struct(us); err != nil {
		return err
	}
	if us.EmailDomain != orig.EmailDomain {
		return svc.checkDomainUniqueness(us.EmailDomain)
	}
	return nil
}
