package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/outreach-agent/internal/composer"
	"github.com/jonathan/outreach-agent/internal/llm"
	"github.com/jonathan/outreach-agent/internal/logging"
	"github.com/jonathan/outreach-agent/internal/observability"
	"github.com/jonathan/outreach-agent/internal/ratelimit"
	"github.com/jonathan/outreach-agent/internal/store"
	"github.com/jonathan/outreach-agent/internal/types"
)

var writeEmailsCmd = &cobra.Command{
	Use:   "write-emails",
	Short: "Draft a personalized internship email for each contact",
	Long:  "Reads a contacts CSV, drafts one email per contact with the Gemini API and writes the drafts to a CSV file ready for send-emails.",
	RunE:  runWriteEmails,
}

var (
	writeContactsFile   string
	writeEmailType      string
	writeInternshipType string
	writeOutputFile     string
)

func init() {
	writeEmailsCmd.Flags().StringVarP(&writeContactsFile, "contacts", "i", "", "Path to contacts CSV (required)")
	writeEmailsCmd.Flags().StringVarP(&writeEmailType, "email-type", "t", types.EmailTypeApplication, "internship_application or internship_inquiry")
	writeEmailsCmd.Flags().StringVar(&writeInternshipType, "internship-type", composer.DefaultInternshipType, "Role to ask for")
	writeEmailsCmd.Flags().StringVarP(&writeOutputFile, "out", "o", "", "Output CSV path (default data/internship_emails_<ts>.csv)")

	if err := writeEmailsCmd.MarkFlagRequired("contacts"); err != nil {
		panic(fmt.Sprintf("failed to mark contacts flag as required: %v", err))
	}

	rootCmd.AddCommand(writeEmailsCmd)
}

func runWriteEmails(cmd *cobra.Command, _ []string) error {
	if writeEmailType != types.EmailTypeApplication && writeEmailType != types.EmailTypeInquiry {
		return fmt.Errorf("invalid --email-type %q (use %s or %s)", writeEmailType, types.EmailTypeApplication, types.EmailTypeInquiry)
	}
	if err := cfg.RequireGeneration(); err != nil {
		return err
	}
	ctx := cmd.Context()

	found, err := store.ReadContacts(writeContactsFile)
	if err != nil {
		return err
	}
	directory, err := loadDirectory()
	if err != nil {
		return err
	}

	llmConfig := llm.DefaultConfig().WithModel(llm.TierStandard, cfg.Generation.Model)
	llmConfig.Timeout = cfg.Generation.Timeout
	client, err := llm.NewClient(ctx, llmConfig, cfg.Generation.APIKey)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	comp := composer.New(client, directory, cfg.SenderProfile(), composer.Options{
		Pacer: ratelimit.Every(cfg.Generation.Interval),
	})

	logging.Info(ctx, "drafting emails", zap.Int("contacts", len(found)), zap.String("model", client.GetModel(llm.TierStandard)))
	emails, genErr := comp.GenerateBulk(ctx, found, composer.BulkOptions{
		EmailType:      writeEmailType,
		InternshipType: writeInternshipType,
	})
	if len(emails) == 0 {
		_, _ = fmt.Fprintln(os.Stdout, "No emails generated")
		return genErr
	}

	dir, filename := outputTarget(writeOutputFile)
	path, err := store.WriteGeneratedEmails(dir, filename, emails)
	if err != nil {
		return err
	}

	if verbose {
		printer := observability.NewPrinter(os.Stdout)
		for i := 0; i < min(len(emails), 3); i++ {
			printer.PrintGeneratedEmail(emails[i])
		}
	}

	fallbacks := 0
	for _, e := range emails {
		if e.Error != "" {
			fallbacks++
		}
	}
	_, _ = fmt.Fprintf(os.Stdout, "Generated %d emails (%d from the fallback template)\n", len(emails), fallbacks)
	_, _ = fmt.Fprintf(os.Stdout, "Output: %s\n", path)
	return genErr
}
