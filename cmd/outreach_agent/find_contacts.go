package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/outreach-agent/internal/contacts"
	"github.com/jonathan/outreach-agent/internal/fetch"
	"github.com/jonathan/outreach-agent/internal/logging"
	"github.com/jonathan/outreach-agent/internal/observability"
	"github.com/jonathan/outreach-agent/internal/ratelimit"
	"github.com/jonathan/outreach-agent/internal/search"
	"github.com/jonathan/outreach-agent/internal/store"
)

var findContactsCmd = &cobra.Command{
	Use:   "find-contacts",
	Short: "Discover HR and recruiting contacts at the target companies",
	Long: "Runs web search, careers-page scraping, professional-network search and job-posting search " +
		"for each target company and writes the discovered contacts to a CSV file.",
	RunE: runFindContacts,
}

var (
	findMaxCompanies         int
	findOutputFile           string
	findIncludeUndeliverable bool
	findUseBrowser           bool
)

func init() {
	findContactsCmd.Flags().IntVarP(&findMaxCompanies, "max-companies", "m", 6, "Number of companies to process (0 for all)")
	findContactsCmd.Flags().StringVarP(&findOutputFile, "out", "o", "", "Output CSV path (default data/real_hr_contacts_<unix>.csv)")
	findContactsCmd.Flags().BoolVar(&findIncludeUndeliverable, "include-undeliverable", false, "Also save profile contacts that have no email address")
	findContactsCmd.Flags().BoolVar(&findUseBrowser, "use-browser", false, "Render careers pages with headless Chrome when the HTML is mostly script")

	rootCmd.AddCommand(findContactsCmd)
}

func runFindContacts(cmd *cobra.Command, _ []string) error {
	if err := cfg.RequireSearch(); err != nil {
		return err
	}
	ctx := cmd.Context()

	directory, err := loadDirectory()
	if err != nil {
		return err
	}

	google, err := search.NewGoogle(ctx, search.GoogleOptions{
		APIKey:  cfg.Search.APIKey,
		CX:      cfg.Search.CSEID,
		Timeout: cfg.Search.Timeout,
	})
	if err != nil {
		return err
	}

	extractor := contacts.NewExtractor(
		search.NewThrottled(google, ratelimit.Every(cfg.Search.Interval)),
		fetch.NewFetcher(cfg.Targets.PageTimeout, findUseBrowser),
		contacts.Options{
			Locale:       cfg.Search.Locale,
			Country:      cfg.Targets.Country,
			Industry:     cfg.Targets.Industry,
			PagePacer:    ratelimit.Every(cfg.Targets.PageInterval),
			CompanyPacer: ratelimit.Every(cfg.Targets.CompanyInterval),
		},
	)

	targets := directory.Companies(findMaxCompanies)
	logging.Info(ctx, "starting contact discovery", zap.Int("companies", len(targets)))
	report := extractor.Run(ctx, targets)

	toSave := report.Deliverable()
	if findIncludeUndeliverable {
		toSave = report.Contacts
	}

	if verbose {
		printer := observability.NewPrinter(os.Stdout)
		printer.PrintOutcomes(report)
		printer.PrintContacts(toSave)
	}

	dir, filename := outputTarget(findOutputFile)
	path, err := store.WriteContacts(dir, filename, toSave)
	if errors.Is(err, store.ErrNothingToWrite) {
		logging.Warn(ctx, "no contacts to save")
		_, _ = fmt.Fprintln(os.Stdout, "No contacts found")
		return ctx.Err()
	}
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Found %d contacts (%d with an address)\n", len(report.Contacts), len(report.Deliverable()))
	_, _ = fmt.Fprintf(os.Stdout, "Output: %s\n", path)
	return ctx.Err()
}
