package types

import "strings"

// Confidence grades how likely a contact's address reaches a person involved in hiring.
type Confidence string

// Confidence levels attached to discovered contacts.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Source labels identifying which discovery method produced a contact.
const (
	SourceSearch     = "search"
	SourceCareers    = "scrape"
	SourceLinkedIn   = "linkedin"
	SourceJobPosting = "job_posting"
)

// Contact is one discovered recruiter or HR contact.
// Email is unique within a run; it may be empty only for professional-network contacts.
type Contact struct {
	Company        string     `json:"company"`
	CompanyDomain  string     `json:"company_domain"`
	Industry       string     `json:"industry"`
	Country        string     `json:"country"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Title          string     `json:"title"`
	LinkedInURL    string     `json:"linkedin_url"`
	Source         string     `json:"source"`
	SourceURL      string     `json:"source_url"`
	Confidence     Confidence `json:"confidence"`
	CompanyWebsite string     `json:"company_website"`
}

// Deliverable reports whether the contact carries a usable address.
func (c Contact) Deliverable() bool {
	return c.Email != "" && strings.Contains(c.Email, "@")
}

// Recipient returns the name to greet, falling back to a generic salutation.
func (c Contact) Recipient() string {
	if strings.TrimSpace(c.Name) == "" {
		return "Hiring Manager"
	}
	return c.Name
}

// Deliverable filters contacts down to those with a usable address.
func Deliverable(contacts []Contact) []Contact {
	out := make([]Contact, 0, len(contacts))
	for _, c := range contacts {
		if c.Deliverable() {
			out = append(out, c)
		}
	}
	return out
}
