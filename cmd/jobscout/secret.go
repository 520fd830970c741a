package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"jobscout-engine/internal/secrets"
)

func newSecretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage secrets in the OS keychain",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set-imap",
		Short: "Store the IMAP password for the email-alerts source",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			account := secrets.IMAPKeyringAccount(cfg)

			fmt.Fprintf(os.Stderr, "password for %s: ", account)
			raw, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return err
			}
			password := strings.TrimSpace(string(raw))
			if password == "" {
				return errors.New("empty password")
			}

			if err := secrets.SetIMAPPassword(account, password); err != nil {
				return err
			}
			fmt.Println("stored")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete-imap",
		Short: "Remove the stored IMAP password",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			return secrets.DeleteIMAPPassword(secrets.IMAPKeyringAccount(cfg))
		},
	})

	return cmd
}
