package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jonathan/outreach-agent/internal/types"
)

// ContactColumns is the fixed header of the contacts CSV.
var ContactColumns = []string{
	"company", "company_domain", "industry", "country", "name", "email",
	"title", "linkedin_url", "source", "source_url", "confidence", "company_website",
}

// ErrNothingToWrite is returned when there are no rows to persist.
var ErrNothingToWrite = errors.New("nothing to write")

// ContactsFilename returns the default contacts file name for t.
func ContactsFilename(t time.Time) string {
	return fmt.Sprintf("real_hr_contacts_%d.csv", t.Unix())
}

// WriteContacts writes contacts to dir/filename and returns the path.
// An empty filename uses ContactsFilename(now). No file is created for an empty list.
func WriteContacts(dir, filename string, contacts []types.Contact) (string, error) {
	if len(contacts) == 0 {
		return "", ErrNothingToWrite
	}
	if filename == "" {
		filename = ContactsFilename(time.Now())
	}
	path := filepath.Join(dir, filename)

	rows := make([][]string, 0, len(contacts))
	for _, c := range contacts {
		rows = append(rows, []string{
			c.Company, c.CompanyDomain, c.Industry, c.Country, c.Name, c.Email,
			c.Title, c.LinkedInURL, c.Source, c.SourceURL, string(c.Confidence), c.CompanyWebsite,
		})
	}
	if err := writeTable(path, ContactColumns, rows); err != nil {
		return "", err
	}
	return path, nil
}

// ReadContacts reads a contacts CSV. Only the email column is required.
func ReadContacts(path string) ([]types.Contact, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if missing := t.missing("email"); len(missing) > 0 {
		return nil, &ValidationError{Path: path, Missing: missing}
	}

	out := make([]types.Contact, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, types.Contact{
			Company:        t.get(row, "company"),
			CompanyDomain:  t.get(row, "company_domain"),
			Industry:       t.get(row, "industry"),
			Country:        t.get(row, "country"),
			Name:           t.get(row, "name"),
			Email:          t.get(row, "email"),
			Title:          t.get(row, "title"),
			LinkedInURL:    t.get(row, "linkedin_url"),
			Source:         t.get(row, "source"),
			SourceURL:      t.get(row, "source_url"),
			Confidence:     types.Confidence(t.get(row, "confidence")),
			CompanyWebsite: t.get(row, "company_website"),
		})
	}
	return out, nil
}
