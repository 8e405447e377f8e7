package commands

import (
	"fmt"
	"os"

	"github.com/aussiebroadwan/lectern/pkg/cryptox"
	"github.com/spf13/cobra"
)

func newKeygenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Args:  cobra.NoArgs,
		Short: "Generate fresh token secrets and an encryption key",
		Long: `Print ACCESS_SECRET, REFRESH_SECRET and ENCRYPTION_KEY lines suitable for an
env file. The two token secrets are always distinct.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			access, err := cryptox.GenerateSecret()
			if err != nil {
				return err
			}
			refresh, err := cryptox.GenerateSecret()
			if err != nil {
				return err
			}
			key, err := cryptox.GenerateKeyHex()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ACCESS_SECRET=%s\n", access)
			fmt.Fprintf(out, "REFRESH_SECRET=%s\n", refresh)
			fmt.Fprintf(out, "ENCRYPTION_KEY=%s\n", key)
			return nil
		},
	}
}

func newEncryptCommand() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "encrypt [plaintext]",
		Args:  cobra.MaximumNArgs(1),
		Short: "Seal a value with the encryption key",
		RunE: func(cmd *cobra.Command, args []string) error {
			plaintext, err := valueArg(cmd, args)
			if err != nil {
				return err
			}
			sealed, err := cryptox.NewSecretBox(key).Encrypt(plaintext)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sealed)
			return nil
		},
	}

	cmd.Flags().StringVarP(&key, "key", "k", os.Getenv("ENCRYPTION_KEY"), "64 hex character key (default $ENCRYPTION_KEY)")
	return cmd
}

func newDecryptCommand() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "decrypt [iv:tag:ciphertext]",
		Args:  cobra.MaximumNArgs(1),
		Short: "Open a value sealed with the encryption key",
		RunE: func(cmd *cobra.Command, args []string) error {
			sealed, err := valueArg(cmd, args)
			if err != nil {
				return err
			}
			plaintext, err := cryptox.NewSecretBox(key).Decrypt(sealed)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), plaintext)
			return nil
		},
	}

	cmd.Flags().StringVarP(&key, "key", "k", os.Getenv("ENCRYPTION_KEY"), "64 hex character key (default $ENCRYPTION_KEY)")
	return cmd
}

func newFingerprintCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint [token]",
		Args:  cobra.MaximumNArgs(1),
		Short: "Print the log fingerprint of a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := valueArg(cmd, args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cryptox.FingerprintToken(token))
			return nil
		},
	}
}
