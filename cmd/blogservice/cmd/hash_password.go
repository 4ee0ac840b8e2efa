package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/mlbahja/01-blog/internal/config"
	"github.com/mlbahja/01-blog/pkg/password"
	"github.com/mlbahja/01-blog/pkg/validator"

	"github.com/spf13/cobra"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [plaintext]",
	Short: "Print a password hash for seeding accounts",
	Long: `Hashes a password with the configured PASSWORD_ALGORITHM and BCRYPT_COST.
The plaintext is read from the first argument, or from the first line of stdin
when no argument is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plaintext, err := readPlaintext(cmd, args)
		if err != nil {
			return err
		}

		if err := validator.Password(plaintext); err != nil {
			return fmt.Errorf("password: %w", err)
		}

		cfg := config.LoadPassword()
		hasher, err := password.New(cfg.Algorithm, cfg.BcryptCost)
		if err != nil {
			return err
		}

		hash, err := hasher.Hash(plaintext)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func readPlaintext(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", errors.New("no password given")
	}
	return strings.TrimRight(scanner.Text(), "\r"), nil
}
