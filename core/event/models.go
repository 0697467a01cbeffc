package event

import (
	"time"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/user"
)

// Audience scopes
const (
	ScopeAll        = "all"
	ScopeAdmins     = "admins"
	ScopeTeachers   = "teachers"
	ScopeStudents   = "students"
	ScopeUsers      = "users"
	ScopeSchools    = "schools"
	ScopeDirections = "directions"
)

type Audience struct {
	Scope      string   `json:"scope" validate:"required,oneof=all admins teachers students users schools directions"`
	UserIDs    []string `json:"user_ids,omitempty"`
	SchoolIDs  []string `json:"school_ids,omitempty"`
	Directions []string `json:"directions,omitempty"`
}

// Targets reports whether the audience includes the given user.
func (a Audience) Targets(usr user.User) bool {
	switch a.Scope {
	case ScopeAll:
		return true
	case ScopeAdmins:
		return usr.IsAdmin() || usr.IsSecretary()
	case ScopeTeachers:
		return usr.IsTeacher()
	case ScopeStudents:
		return usr.IsStudent() || usr.IsParent()
	case ScopeUsers:
		return contains(a.UserIDs, usr.ID)
	case ScopeSchools:
		return contains(a.SchoolIDs, usr.SchoolID)
	case ScopeDirections:
		// direction membership is resolved by the caller via class lookups;
		// the model alone cannot answer it
		return false
	}
	return false
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at,omitempty"`
	Audience    Audience  `json:"audience"`
	CreatorID   string    `json:"creator_id"`
	SchoolID    string    `json:"school_id"`
	IsActive    bool      `json:"is_active"` // soft delete flag
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type NewEvent struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"omitempty,gtefield=StartsAt"`
	Audience    Audience  `json:"audience" validate:"required"`
}

func (ne *NewEvent) Validate() error {
	ne.Title = core.CleanString(ne.Title)
	return core.Validate.Struct(ne)
}

type UpdateEvent struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	Audience    *Audience  `json:"audience"`
}

func (ue *UpdateEvent) Validate(orig Event) error {
	if title := core.CleanString(ue.Title); title != "" {
		ue.Title = title
	} else {
		ue.Title = orig.Title
	}
	if ue.Audience != nil {
		if err := core.Validate.Struct(ue.Audience); err != nil {
			return err
		}
	}
	return core.Validate.Struct(ue)
}
