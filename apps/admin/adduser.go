package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/labasprak/asprak/core"
	"github.com/labasprak/asprak/core/pengguna"
	"github.com/labasprak/asprak/core/rbac"
)

func (cli *commandLine) addUserCommand() *cobra.Command {
	var email, name, role string
	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a pengguna, or reactivate it with a new password and role. The password is prompted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || name == "" {
				_ = cmd.Usage()
				return errHelp
			}
			pwd, err := cli.promptPassword(cmd)
			if err != nil {
				return err
			}
			p, err := cli.addUser(name, email, pwd, role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cli.writer(), "pengguna %s (%s) saved\n", p.Email, p.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "the pengguna's email")
	cmd.Flags().StringVar(&name, "name", "", "the pengguna's full name")
	cmd.Flags().StringVar(&role, "role", rbac.RoleAdmin, "one of ADMIN, ASLAB, ASPRAK_KOOR")
	return cmd
}

// addUser updates or creates a pengguna.Pengguna
func (cli *commandLine) addUser(name, email, pwd, role string) (pengguna.Pengguna, error) {
	ctx := context.Background()
	role = core.CleanUpper(role)
	if !rbac.IsValidRole(role) {
		return pengguna.Pengguna{}, fmt.Errorf("invalid role %q", role)
	}

	p, err := cli.penggunaSvc.GetByEmail(ctx, email)
	if err != nil {
		if !core.IsNotFound(err) {
			return pengguna.Pengguna{}, err
		}
		return cli.penggunaSvc.Create(ctx, pengguna.NewPengguna{
			NamaLengkap: core.CleanString(name),
			Email:       core.CleanString(email, true /* lower */),
			Password:    pwd,
			Role:        role,
		})
	}

	active := true
	name = core.CleanString(name)
	return cli.penggunaSvc.Update(ctx, p.ID, pengguna.UpdatePengguna{
		NamaLengkap: &name,
		Role:        &role,
		IsActive:    &active,
		Password:    pwd,
	})
}
