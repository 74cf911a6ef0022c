package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var checkTransportCmd = &cobra.Command{
	Use:   "check-transport",
	Short: "Verify mail credentials and print the sending account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		transport, err := newTransport(cmd.Context())
		if err != nil {
			return err
		}
		account, err := transport.Check(cmd.Context())
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(os.Stdout, "Transport: %s\nAccount:   %s\n", cfg.Mail.Transport, account)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkTransportCmd)
}
