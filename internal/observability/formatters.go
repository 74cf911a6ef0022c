// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/outreach-agent/internal/contacts"
	"github.com/jonathan/outreach-agent/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintContacts outputs the discovered contacts grouped by confidence.
func (p *Printer) PrintContacts(found []types.Contact) {
	if len(found) == 0 {
		p.printBox("DISCOVERED CONTACTS", "No contacts found")
		return
	}

	var sb strings.Builder
	deliverable := len(types.Deliverable(found))
	sb.WriteString(fmt.Sprintf("Total: %d (%d with an address)\n", len(found), deliverable))

	bySource := map[string]int{}
	for _, c := range found {
		bySource[c.Source]++
	}
	sources := make([]string, 0, len(bySource))
	for s := range bySource {
		sources = append(sources, s)
	}
	sort.Strings(sources)
	for _, s := range sources {
		sb.WriteString(fmt.Sprintf("  %-12s %d\n", s, bySource[s]))
	}
	sb.WriteString("\n")

	count := min(len(found), maxItemsToShow)
	for i := 0; i < count; i++ {
		c := found[i]
		email := c.Email
		if email == "" {
			email = "(no address)"
		}
		sb.WriteString(fmt.Sprintf("• %s  [%s]\n", email, c.Confidence))
		sb.WriteString(fmt.Sprintf("  %s, %s\n", c.Recipient(), c.Company))
	}
	if len(found) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more", len(found)-maxItemsToShow))
	}

	p.printBox("DISCOVERED CONTACTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintOutcomes outputs per-method counts and any method failures.
func (p *Printer) PrintOutcomes(report contacts.RunReport) {
	if len(report.Outcomes) == 0 {
		return
	}

	found := map[contacts.Method]int{}
	order := []contacts.Method{}
	for _, o := range report.Outcomes {
		if _, ok := found[o.Method]; !ok {
			order = append(order, o.Method)
		}
		found[o.Method] += len(o.Contacts)
	}

	var sb strings.Builder
	for _, m := range order {
		sb.WriteString(fmt.Sprintf("%-12s %d contacts\n", m, found[m]))
	}

	if failures := report.Failures(); len(failures) > 0 {
		sb.WriteString(fmt.Sprintf("\n%d method failures:\n", len(failures)))
		for _, f := range failures {
			sb.WriteString(fmt.Sprintf("⚠ %s / %s: %s\n", f.Company, f.Method, f.Failure))
		}
	}

	p.printBox("DISCOVERY METHODS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintGeneratedEmail outputs one drafted email.
func (p *Printer) PrintGeneratedEmail(email types.GeneratedEmail) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("To:         %s <%s>\n", email.Recipient, email.Email))
	sb.WriteString(fmt.Sprintf("Company:    %s\n", email.Company))
	sb.WriteString(fmt.Sprintf("Subject:    %s\n", email.Subject))
	sb.WriteString(fmt.Sprintf("Confidence: %.1f\n", email.ConfidenceScore))
	if email.Error != "" {
		sb.WriteString(fmt.Sprintf("Template used: %s\n", email.Error))
	}
	sb.WriteString("\n")

	lines := strings.Split(email.Body, "\n")
	count := min(len(lines), 8)
	for i := 0; i < count; i++ {
		sb.WriteString(lines[i] + "\n")
	}
	if len(lines) > count {
		sb.WriteString("...")
	}

	p.printBox("GENERATED EMAIL", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDispatchSummary outputs the totals of a bulk run and its failures.
func (p *Printer) PrintDispatchSummary(summary *types.DispatchSummary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	mode := "LIVE"
	if summary.DryRun {
		mode = "DRY RUN"
	}
	sb.WriteString(fmt.Sprintf("Mode:       %s\n", mode))
	sb.WriteString(fmt.Sprintf("Run:        %s\n", summary.RunID))
	sb.WriteString(fmt.Sprintf("Processed:  %d\n", summary.TotalProcessed))
	sb.WriteString(fmt.Sprintf("Successful: %d\n", summary.SuccessfulSends))
	sb.WriteString(fmt.Sprintf("Failed:     %d\n", summary.FailedSends))
	sb.WriteString(fmt.Sprintf("Rate:       %.1f%%\n", summary.SuccessRate))

	var failed []types.SendResult
	for _, r := range summary.Results {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	if len(failed) > 0 {
		sb.WriteString("\n")
		count := min(len(failed), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("✗ %s\n", failed[i].Recipient))
			sb.WriteString(fmt.Sprintf("  %s\n", failed[i].Error))
		}
		if len(failed) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("... and %d more failures", len(failed)-maxItemsToShow))
		}
	}

	p.printBox("SENDING SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}
