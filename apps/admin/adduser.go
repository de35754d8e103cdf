package main

import (
	"context"
	"fmt"
	"time"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/user"
)

// addUser updates or creates a user.User under the given organisation.
func (cli *commandLine) addUser(orgSlug, name, uname, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	name = core.CleanString(name)
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	o, err := cli.orgRepo.GetOrganisationBySlug(ctx, orgSlug)
	if err != nil {
		return err
	}

	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}

		now := time.Now().UTC()
		usr = user.User{
			OrgID:     o.ID,
			Name:      name,
			Username:  uname,
			Email:     email,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if isAdmin {
			usr.Roles = user.AllRoles
		}
		if err = usr.SetPassword(pwd); err != nil {
			return err
		}
		if usr, err = cli.usrRepo.CreateUser(ctx, usr); err != nil {
			return err
		}
		fmt.Printf("user %q created (id=%d)\n", usr.Email, usr.ID)
		return nil
	}

	if usr.OrgID != o.ID {
		return fmt.Errorf("user %q belongs to another organisation", usr.Email)
	}
	usr.Name = name
	if uname != "" {
		usr.Username = uname
	}
	if isAdmin {
		usr.Roles = user.AllRoles
	}
	usr.UpdatedAt = time.Now().UTC()
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	isActive := true
	if usr, err = cli.usrRepo.UpdateUser(ctx, usr, &isActive); err != nil {
		return err
	}
	fmt.Printf("user %q updated (id=%d)\n", usr.Email, usr.ID)
	return nil
}
