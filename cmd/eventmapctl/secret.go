package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

func newHashSecretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-secret [secret]",
		Short: "Print the bcrypt hash to put in ADMIN_SECRET_HASH",
		Long:  "Hashes the admin secret given as an argument, or read from the first line of stdin.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var secret string
			if len(args) == 1 {
				secret = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading secret: %w", err)
				}
				secret = strings.TrimRight(line, "\r\n")
			}
			if secret == "" {
				return fmt.Errorf("secret must not be empty")
			}

			cost, _ := cmd.Flags().GetInt("cost")
			hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}
	cmd.Flags().Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}
