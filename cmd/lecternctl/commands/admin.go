package commands

import (
	"fmt"
	"os"

	"github.com/aussiebroadwan/lectern/internal/platform/service"
	"github.com/aussiebroadwan/lectern/internal/platform/store/drivers/sqlite"
	"github.com/aussiebroadwan/lectern/pkg/cryptox"
	"github.com/spf13/cobra"
)

func newCreateAdminCommand() *cobra.Command {
	var (
		dbFile   string
		email    string
		name     string
		password string
	)

	cmd := &cobra.Command{
		Use:   "create-admin",
		Args:  cobra.NoArgs,
		Short: "Create an administrator account",
		Long: `Create an administrator directly in the database. Admins cannot be
self-registered over HTTP. Without --password a strong one is generated and
printed once.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			generated := password == ""
			if generated {
				pw, err := cryptox.GeneratePassword()
				if err != nil {
					return err
				}
				password = pw
			}

			st, err := sqlite.NewStore(dbFile)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.ApplyMigrations(); err != nil {
				return fmt.Errorf("apply migrations: %w", err)
			}

			auth := &service.AuthService{Store: st}
			u, err := auth.CreateAdmin(cmd.Context(), email, name, password)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "created admin %s (%s)\n", u.Email, u.ID)
			if generated {
				fmt.Fprintf(out, "password: %s\n", password)
			}
			return nil
		},
	}

	dbDefault := os.Getenv("LECTERN_DATABASE_FILE")
	if dbDefault == "" {
		dbDefault = "lectern.db"
	}

	cmd.Flags().StringVar(&dbFile, "db", dbDefault, "SQLite database file (default $LECTERN_DATABASE_FILE)")
	cmd.Flags().StringVarP(&email, "email", "e", "", "admin email address")
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "initial password (generated when empty)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
