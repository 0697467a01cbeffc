package user

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		// CheckEmailUniqueness enforces the (email, schoolID) pair invariant.
		CheckEmailUniqueness(ctx context.Context, email, schoolID string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		// GetUserByEmail looks a user up within a tenant. An empty schoolID
		// matches accounts with no school attached: superadmins, and users
		// whose school link awaits recovery.
		GetUserByEmail(ctx context.Context, email, schoolID string) (User, error)
		// FilterUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on User.Name or User.Email.
		FilterUsers(ctx context.Context, filter QueryFilter) ([]User, error)
		UpdateUser(ctx context.Context, usr User, isActive *bool) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...string) error
		// LinkStudents adds the link on both sides (parent.StudentIDs and
		// student.ParentIDs) atomically; UnlinkStudents removes it likewise.
		LinkStudents(ctx context.Context, parentID string, studentIDs ...string) error
		UnlinkStudents(ctx context.Context, parentID string, studentIDs ...string) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

func NewService(repo Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, mailSvc: mailSvc}
}

func (svc *Service) CheckEmailUniqueness(email, schoolID string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, schoolID, exclUsers...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		ID:                      uuid.NewString(),
		Name:                    nu.Name,
		Email:                   nu.Email,
		Role:                    nu.Role,
		SchoolID:                nu.SchoolID,
		IsActive:                true,
		SecretaryPermissions:    nu.SecretaryPermissions,
		CanSendNotifications:    nu.CanSendNotifications,
		CanAddGradeDescriptions: nu.CanAddGradeDescriptions,
		FirstLogin:              true,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}
	svc.sendWelcomeEmail(usr)
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email, schoolID string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */), schoolID)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]User, error) {
	filter.Clean()
	return svc.repo.FilterUsers(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, orig User, uu UpdateUser) (User, error) {
	usr := orig
	usr.Name = uu.Name
	usr.Email = uu.Email
	usr.UpdatedAt = time.Now().UTC()
	if uu.SecretaryPermissions != nil {
		usr.SecretaryPermissions = *uu.SecretaryPermissions
	}
	if uu.CanSendNotifications != nil {
		usr.CanSendNotifications = *uu.CanSendNotifications
	}
	if uu.CanAddGradeDescriptions != nil {
		usr.CanAddGradeDescriptions = *uu.CanAddGradeDescriptions
	}
	if uu.RequirePasswordChange != nil {
		usr.RequirePasswordChange = *uu.RequirePasswordChange
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, err
		}
		usr.RequirePasswordChange = false
	}
	return svc.repo.UpdateUser(ctx, usr, uu.IsActive)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteUsersByID(ctx, ids...)
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	usr.FirstLogin = false
	return svc.repo.UpdateUser(ctx, usr, nil)
}

// SetSchool persists a recovered school association onto the user.
func (svc *Service) SetSchool(ctx context.Context, usr User, schoolID string) (User, error) {
	usr.SchoolID = schoolID
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr, nil)
}

// LinkStudents links a parent with students; both link arrays are kept in
// sync in a single repository operation. All users must share the parent's
// school and carry the expected roles.
func (svc *Service) LinkStudents(ctx context.Context, parentID string, studentIDs ...string) error {
	parent, err := svc.repo.GetUserByID(ctx, parentID)
	if err != nil {
		return err
	}
	if !parent.IsParent() {
		return core.NewValidationError(nil, core.FieldError{Field: "id", Error: "user is not a parent"})
	}
	for _, sid := range studentIDs {
		student, err := svc.repo.GetUserByID(ctx, sid)
		if err != nil {
			return err
		}
		if !student.IsStudent() || student.SchoolID != parent.SchoolID {
			// cross-tenant links read as absent
			return ErrNotFound
		}
	}
	return svc.repo.LinkStudents(ctx, parentID, studentIDs...)
}

func (svc *Service) UnlinkStudents(ctx context.Context, parentID string, studentIDs ...string) error {
	if _, err := svc.repo.GetUserByID(ctx, parentID); err != nil {
		return err
	}
	return svc.repo.UnlinkStudents(ctx, parentID, studentIDs...)
}

func (svc *Service) sendWelcomeEmail(usr User) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Welcome to " + core.Conf.AppName,
		TemplateName: "welcome",
		TemplateData: usr,
	})
}
