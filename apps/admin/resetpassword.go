package main

import (
	"context"
	"time"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/school"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/user"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	// superadmins carry no school; everyone else is found via their domain
	usr, err := cli.usrRepo.GetUserByEmail(ctx, email, "")
	if err == user.ErrNotFound {
		sch, serr := cli.schRepo.GetSchoolByEmailDomain(ctx, core.EmailDomain(email))
		if serr != nil {
			if serr == school.ErrNotFound {
				return user.ErrNotFound
			}
			return serr
		}
		usr, err = cli.usrRepo.GetUserByEmail(ctx, email, sch.ID)
	}
	if err != nil {
		return err
	}

	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.RequirePasswordChange = false
	usr.UpdatedAt = time.Now().UTC()
	_, err = cli.usrRepo.UpdateUser(ctx, usr, nil)
	return err
}
