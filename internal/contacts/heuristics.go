package contacts

import (
	"strings"

	"github.com/jonathan/outreach-agent/internal/classify"
	"github.com/jonathan/outreach-agent/internal/fetch"
	"github.com/jonathan/outreach-agent/internal/types"
)

// profilePathMarker identifies professional-network profile URLs.
const profilePathMarker = "linkedin.com/in"

func mailtoAddresses(page *fetch.Page) []string {
	if page.Doc == nil {
		return nil
	}
	return classify.MailtoAddresses(page.Doc)
}

func detailsOnPage(page *fetch.Page, email string) classify.Details {
	if page.Doc == nil {
		return classify.DetailsNear(page.Text, email)
	}
	d := classify.DetailsOnPage(page.Doc, email)
	if d.Name == "" && d.Title == "" {
		d = classify.DetailsNear(page.Text, email)
	}
	return d
}

// accept reports whether email qualifies for company and was not seen before,
// recording it when it is accepted.
func accept(email string, company types.Company, seen *SeenSet) bool {
	if !classify.IsQualifyingHREmail(email, company.Domain) {
		return false
	}
	return seen.Add(email)
}

func belongsOrQualifies(email string, company types.Company) bool {
	return classify.BelongsTo(email, company.Domain) || classify.IsQualifyingHREmail(email, company.Domain)
}

func isProfileURL(link string) bool {
	return strings.Contains(strings.ToLower(link), profilePathMarker)
}

// ProfileName derives a display name from a profile result title such as
// "Priya Sharma - Talent Acquisition - Razorpay | LinkedIn".
func ProfileName(title string) string {
	name := strings.ReplaceAll(title, " - LinkedIn", "")
	name = strings.ReplaceAll(name, " | LinkedIn", "")
	if i := strings.Index(name, " - "); i >= 0 {
		name = name[:i]
	}
	if i := strings.Index(name, " | "); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

// dedupe removes case-insensitive duplicates, keeping the first spelling.
func dedupe(emails []string) []string {
	seen := make(map[string]bool, len(emails))
	out := emails[:0:0]
	for _, e := range emails {
		k := strings.ToLower(e)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return out
}
