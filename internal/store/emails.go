package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/outreach-agent/internal/types"
)

// GeneratedEmailColumns is the header of the generated-emails CSV.
var GeneratedEmailColumns = []string{
	"email", "name", "company", "title", "linkedin_url", "recipient", "subject", "body",
	"generated_at", "email_type", "internship_type", "confidence_score", "error",
}

// RequiredOutgoingColumns must be present in any file handed to the dispatcher.
var RequiredOutgoingColumns = []string{"email", "subject", "body"}

const generatedPrefix = "internship_emails_"

// GeneratedEmailsFilename returns the default generated-emails file name for t.
func GeneratedEmailsFilename(t time.Time) string {
	return generatedPrefix + t.Format(TimestampLayout) + ".csv"
}

// WriteGeneratedEmails writes emails to dir/filename and returns the path.
// An empty filename uses GeneratedEmailsFilename(now).
func WriteGeneratedEmails(dir, filename string, emails []types.GeneratedEmail) (string, error) {
	if filename == "" {
		filename = GeneratedEmailsFilename(time.Now())
	}
	path := filepath.Join(dir, filename)

	rows := make([][]string, 0, len(emails))
	for _, e := range emails {
		rows = append(rows, []string{
			e.Email, e.Name, e.Company, e.Title, e.LinkedInURL, e.Recipient, e.Subject, e.Body,
			e.GeneratedAt.Format(time.RFC3339), e.EmailType, e.InternshipType,
			strconv.FormatFloat(e.ConfidenceScore, 'f', 2, 64), e.Error,
		})
	}
	if err := writeTable(path, GeneratedEmailColumns, rows); err != nil {
		return "", err
	}
	return path, nil
}

// ReadOutgoing loads dispatcher rows in file order. It fails before returning
// any row when a required column is absent.
func ReadOutgoing(path string) ([]types.OutgoingEmail, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if missing := t.missing(RequiredOutgoingColumns...); len(missing) > 0 {
		return nil, &ValidationError{Path: path, Missing: missing}
	}

	out := make([]types.OutgoingEmail, 0, len(t.rows))
	for _, row := range t.rows {
		name := t.get(row, "name")
		if name == "" {
			name = t.get(row, "recipient")
		}
		out = append(out, types.OutgoingEmail{
			Email:   strings.TrimSpace(t.get(row, "email")),
			Name:    name,
			Company: t.get(row, "company"),
			Subject: t.get(row, "subject"),
			Body:    t.get(row, "body"),
		})
	}
	return out, nil
}

// LatestGeneratedEmails returns the newest generated-emails file in dir.
// Timestamped names sort chronologically.
func LatestGeneratedEmails(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, generatedPrefix+"*.csv"))
	if err != nil {
		return "", fmt.Errorf("failed to list %s: %w", dir, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no generated email files in %s: %w", dir, os.ErrNotExist)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}
