package subject

import (
	"time"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core"
)

type Subject struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	SchoolID   string    `json:"school_id"`
	TeacherIDs []string  `json:"teacher_ids"`
	Directions []string  `json:"directions"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

type NewSubject struct {
	Name       string   `json:"name" validate:"required"`
	TeacherIDs []string `json:"teachers"`
	Directions []string `json:"directions"`
}

func (ns *NewSubject) Validate(svc *Service, schoolID string) error {
	ns.Name = core.CleanString(ns.Name)
	if err := core.Validate.Struct(ns); err != nil {
		return err
	}
	return svc.checkNameUniqueness(ns.Name, schoolID)
}

type UpdateSubject struct {
	Name       string   `json:"name"`
	TeacherIDs []string `json:"teachers"`
	Directions []string `json:"directions"`
}

func (us *UpdateSubject) Validate(orig Subject, svc *Service) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	if err := core.Validate.Struct(us); err != nil {
		return err
	}
	if us.Name != orig.Name {
		return svc.checkNameUniqueness(us.Name, orig.SchoolID)
	}
	return nil
}
