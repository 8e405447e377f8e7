package commands

import (
	"errors"
	"fmt"

	"github.com/aussiebroadwan/lectern/pkg/cryptox"
	"github.com/spf13/cobra"
)

var errWeakPassword = errors.New("password rejected")

func newGenPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "gen-password",
		Args:  cobra.NoArgs,
		Short: "Generate a random password that passes the strength rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := cryptox.GeneratePassword()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), pw)
			return nil
		},
	}
}

func newCheckPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check-password [password]",
		Args:  cobra.MaximumNArgs(1),
		Short: "Check a password against the strength rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := valueArg(cmd, args)
			if err != nil {
				return err
			}
			if s := cryptox.CheckPasswordStrength(pw); !s.Valid {
				return fmt.Errorf("%w: %s", errWeakPassword, s.Message)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func newHashPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Args:  cobra.MaximumNArgs(1),
		Short: "Print the bcrypt hash of a password",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := valueArg(cmd, args)
			if err != nil {
				return err
			}
			hash, err := cryptox.HashPassword(pw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
