package main

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/user"
)

// addUser updates or creates a user. Non-superadmin users need a school
// matching their email domain to already exist.
func (cli *commandLine) addUser(name, email, pwd string, isSuper bool) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	role := user.RoleAdmin
	schoolID := ""
	if isSuper {
		role = user.RoleSuperAdmin
	} else {
		sch, err := cli.schRepo.GetSchoolByEmailDomain(ctx, core.EmailDomain(email))
		if err != nil {
			return err
		}
		schoolID = sch.ID
	}

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email, schoolID)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		now := time.Now().UTC()
		usr = user.User{
			ID:        uuid.NewString(),
			Name:      name,
			Email:     email,
			Role:      role,
			SchoolID:  schoolID,
			CreatedAt: now,
		}
		if err := usr.SetPassword(pwd); err != nil {
			return err
		}
		usr.IsActive = true
		usr.UpdatedAt = now
		_, err = cli.usrRepo.CreateUser(ctx, usr)
		return err
	}

	usr.Name = name
	usr.Role = role
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	active := true
	_, err = cli.usrRepo.UpdateUser(ctx, usr, &active)
	return err
}
