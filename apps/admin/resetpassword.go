package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func (cli *commandLine) resetPasswordCommand() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "resetpassword",
		Short: "Reset a pengguna's password. The password is prompted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				_ = cmd.Usage()
				return errHelp
			}
			pwd, err := cli.promptPassword(cmd)
			if err != nil {
				return err
			}
			if err := cli.resetPassword(email, pwd); err != nil {
				return err
			}
			fmt.Fprintln(cli.writer(), "password updated")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "the pengguna's email")
	return cmd
}

func (cli *commandLine) resetPassword(email, pwd string) error {
	_, err := cli.penggunaSvc.SetPassword(context.Background(), email, pwd)
	return err
}
