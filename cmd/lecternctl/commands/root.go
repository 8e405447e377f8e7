package commands

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the lecternctl root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lecternctl",
		Short:         "Operator tooling for Lectern secrets and accounts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newKeygenCommand(),
		newGenPasswordCommand(),
		newCheckPasswordCommand(),
		newHashPasswordCommand(),
		newEncryptCommand(),
		newDecryptCommand(),
		newFingerprintCommand(),
		newCreateAdminCommand(),
	)

	return rootCmd
}

// valueArg returns the single positional argument, or the first line of
// stdin when there is none. Reading stdin keeps secrets out of shell history.
func valueArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("no value given on the command line or stdin")
	}
	return line, nil
}
