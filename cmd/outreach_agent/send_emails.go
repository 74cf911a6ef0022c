package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/outreach-agent/internal/dispatch"
	"github.com/jonathan/outreach-agent/internal/logging"
	"github.com/jonathan/outreach-agent/internal/mailer"
	"github.com/jonathan/outreach-agent/internal/observability"
	"github.com/jonathan/outreach-agent/internal/ratelimit"
)

var sendEmailsCmd = &cobra.Command{
	Use:   "send-emails",
	Short: "Send generated emails (dry run unless --live)",
	Long: "Sends the rows of a generated-emails CSV in order, spaced to the configured emails-per-minute budget, " +
		"and writes a JSON summary plus a per-row results CSV to data/email_results.",
	RunE: runSendEmails,
}

var (
	sendEmailsFile string
	sendLive       bool
	sendMax        int
	sendStart      int
	sendHTML       bool
)

func init() {
	sendEmailsCmd.Flags().StringVarP(&sendEmailsFile, "emails", "i", "", "Generated emails CSV (default newest data/internship_emails_*.csv)")
	sendEmailsCmd.Flags().BoolVar(&sendLive, "live", false, "Actually send; without it nothing leaves the machine")
	sendEmailsCmd.Flags().IntVarP(&sendMax, "max", "n", dispatch.DefaultGeneratedMax, "Maximum rows to process (0 sends every row)")
	sendEmailsCmd.Flags().IntVar(&sendStart, "start", 0, "Rows to skip from the top of the file")
	sendEmailsCmd.Flags().BoolVar(&sendHTML, "html", false, "Add an HTML part derived from the plain-text body")

	rootCmd.AddCommand(sendEmailsCmd)
}

func runSendEmails(cmd *cobra.Command, _ []string) error {
	if sendStart < 0 || sendMax < 0 {
		return fmt.Errorf("--start and --max must not be negative")
	}
	ctx := cmd.Context()

	var transport mailer.Transport
	if sendLive {
		t, err := newTransport(ctx)
		if err != nil {
			return err
		}
		transport = t
	}

	pacer := ratelimit.PerMinute(cfg.Mail.EmailsPerMinute)
	logging.Info(ctx, "send pacing", zap.Int("per_minute", cfg.Mail.EmailsPerMinute), zap.Duration("interval", pacer.Interval()))

	d := dispatch.New(dispatch.Config{
		Transport: transport,
		Sender:    cfg.SenderProfile(),
		Pacer:     pacer,
		DataDir:   cfg.DataDir,
	})

	summary, paths, err := d.SendGenerated(ctx, sendEmailsFile, dispatch.Options{
		DryRun:      !sendLive,
		MaxCount:    sendMax,
		StartOffset: sendStart,
		HTML:        sendHTML,
	})
	if summary == nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintDispatchSummary(summary)
	if paths.Summary != "" {
		_, _ = fmt.Fprintf(os.Stdout, "Summary: %s\nResults: %s\n", paths.Summary, paths.Results)
	}
	if !sendLive {
		_, _ = fmt.Fprintln(os.Stdout, "Dry run: no emails were sent. Re-run with --live to send.")
	}
	return err
}
