package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/outreach-agent/internal/mailer"
)

var gmailAuthCmd = &cobra.Command{
	Use:   "gmail-auth",
	Short: "Authorize Gmail sending and store the OAuth token",
	Long:  "Prints a consent URL for the OAuth client in GMAIL_CREDENTIALS_FILE, reads the authorization code and writes the token to GMAIL_TOKEN_FILE.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return mailer.AuthorizeGmail(cmd.Context(), cfg.Mail.CredentialsFile, cfg.Mail.TokenFile, os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(gmailAuthCmd)
}
