package user

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core"
)

// Roles
const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
	RoleSecretary  = "secretary"
	RoleTeacher    = "teacher"
	RoleStudent    = "student"
	RoleParent     = "parent"
)

var (
	AllRoles = []string{RoleSuperAdmin, RoleAdmin, RoleSecretary, RoleTeacher, RoleStudent, RoleParent}

	rolePriorities = map[string]int{
		RoleSuperAdmin: 60,
		RoleAdmin:      50,
		RoleSecretary:  40,
		RoleTeacher:    30,
		RoleStudent:    20,
		RoleParent:     10,
	}

	Roles = []Role{
		{Name: "Parent", Value: RoleParent},
		{Name: "Student", Value: RoleStudent},
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Secretary", Value: RoleSecretary},
		{Name: "Admin", Value: RoleAdmin},
		{Name: "Super Admin", Value: RoleSuperAdmin},
	}
)

func RolePriority(role string) int {
	return rolePriorities[role]
}

func IsValidRole(role string) bool {
	_, ok := rolePriorities[role]
	return ok
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SecretaryPermissions narrows a secretary's access below full admin.
type SecretaryPermissions struct {
	CanManageGrades   bool `json:"can_manage_grades"`
	CanManageUsers    bool `json:"can_manage_users"`
	CanManageClasses  bool `json:"can_manage_classes"`
	CanManageSubjects bool `json:"can_manage_subjects"`
	CanManageEvents   bool `json:"can_manage_events"`
	CanReplyContacts  bool `json:"can_reply_contacts"`
}

type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash []byte `json:"-"`
	Role         string `json:"role"`
	SchoolID     string `json:"school_id,omitempty"` // empty for superadmin only
	IsActive     bool   `json:"is_active"`

	SecretaryPermissions    SecretaryPermissions `json:"secretary_permissions"`
	CanSendNotifications    bool                 `json:"can_send_notifications"`
	CanAddGradeDescriptions bool                 `json:"can_add_grade_descriptions"`

	FirstLogin            bool `json:"first_login"`
	RequirePasswordChange bool `json:"require_password_change"`

	// parent <-> student many-to-many link; both sides are kept in sync
	StudentIDs []string `json:"student_ids,omitempty"` // set on parents
	ParentIDs  []string `json:"parent_ids,omitempty"`  // set on students

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
	LastLogin time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsSuperAdmin() bool { return u.Role == RoleSuperAdmin }
func (u *User) IsAdmin() bool      { return u.Role == RoleAdmin || u.Role == RoleSuperAdmin }
func (u *User) IsSecretary() bool  { return u.Role == RoleSecretary }
func (u *User) IsTeacher() bool    { return u.Role == RoleTeacher }
func (u *User) IsStudent() bool    { return u.Role == RoleStudent }
func (u *User) IsParent() bool     { return u.Role == RoleParent }

// CanManage reports whether the user may manage the given resource:
// admins always, secretaries per their permission bag.
func (u *User) CanManage(perm func(SecretaryPermissions) bool) bool {
	if u.IsAdmin() {
		return true
	}
	if u.IsSecretary() {
		return perm(u.SecretaryPermissions)
	}
	return false
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"required"`
	SchoolID        string `json:"school_id"`

	SecretaryPermissions    SecretaryPermissions `json:"secretary_permissions"`
	CanSendNotifications    bool                 `json:"can_send_notifications"`
	CanAddGradeDescriptions bool                 `json:"can_add_grade_descriptions"`
}

func (nu *NewUser) Validate(ctx Validator) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role, true /* lower */)

	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	if !IsValidRole(nu.Role) {
		return core.NewValidationError(nil, core.FieldError{Field: "role", Error: "unknown role"})
	}
	if nu.Role == RoleSuperAdmin && nu.SchoolID != "" {
		return core.NewValidationError(nil, core.FieldError{Field: "school_id", Error: "superadmin cannot belong to a school"})
	}
	if nu.Role != RoleSuperAdmin && nu.SchoolID == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "school_id", Error: "this field is required"})
	}
	return ctx.CheckEmailUniqueness(nu.Email, nu.SchoolID)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name            string `json:"name"`
	Email           string `json:"email" validate:"omitempty,email"`
	IsActive        *bool  `json:"is_active"`
	Password        string `json:"password" validate:"omitempty,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`

	SecretaryPermissions    *SecretaryPermissions `json:"secretary_permissions"`
	CanSendNotifications    *bool                 `json:"can_send_notifications"`
	CanAddGradeDescriptions *bool                 `json:"can_add_grade_descriptions"`
	RequirePasswordChange   *bool                 `json:"require_password_change"`
}

func (uu *UpdateUser) Validate(origUsr User, ctx Validator) error {
	if name := core.CleanString(uu.Name); name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}
	if email := core.CleanString(uu.Email, true /* lower */); email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	if err := core.Validate.Struct(uu); err != nil {
		return err
	}
	return ctx.CheckEmailUniqueness(uu.Email, origUsr.SchoolID, origUsr)
}

// Validator is satisfied by *Service; it lets DTOs run uniqueness checks
// without reaching into the repository themselves.
type Validator interface {
	CheckEmailUniqueness(email, schoolID string, exclUsers ...User) error
}

type QueryFilter struct {
	Search   string   `query:"search"`
	Roles    []string `query:"role"`
	IsActive *bool    `query:"is_active"`
	SchoolID string   `query:"-"` // always set from the request tenant context
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Roles == nil && qf.IsActive == nil && qf.SchoolID == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
