package types

import "time"

// Email types accepted by the composer.
const (
	EmailTypeApplication = "internship_application"
	EmailTypeInquiry     = "internship_inquiry"
)

// GeneratedEmail is a drafted outreach email for one contact.
type GeneratedEmail struct {
	Subject         string    `json:"subject"`
	Body            string    `json:"body"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	Company         string    `json:"company"`
	Title           string    `json:"title"`
	LinkedInURL     string    `json:"linkedin_url"`
	Recipient       string    `json:"recipient"`
	GeneratedAt     time.Time `json:"generated_at"`
	EmailType       string    `json:"email_type"`
	InternshipType  string    `json:"internship_type"`
	ConfidenceScore float64   `json:"confidence_score"`
	Error           string    `json:"error,omitempty"`
}

// OutgoingEmail is one row handed to the dispatcher.
type OutgoingEmail struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Company string `json:"company"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SendStatus is the outcome of one dispatch attempt.
type SendStatus string

// Send statuses.
const (
	StatusSent   SendStatus = "sent"
	StatusFailed SendStatus = "failed"
	StatusDryRun SendStatus = "dry_run"
)

// SendResult records a single send attempt.
type SendResult struct {
	Success       bool       `json:"success"`
	Recipient     string     `json:"recipient"`
	RecipientName string     `json:"recipient_name"`
	Company       string     `json:"company"`
	Subject       string     `json:"subject"`
	MessageID     string     `json:"message_id,omitempty"`
	Error         string     `json:"error,omitempty"`
	Timestamp     time.Time  `json:"timestamp"`
	Status        SendStatus `json:"status"`
}

// DispatchSummary aggregates a bulk dispatch run.
type DispatchSummary struct {
	RunID           string       `json:"run_id"`
	TotalProcessed  int          `json:"total_processed"`
	SuccessfulSends int          `json:"successful_sends"`
	FailedSends     int          `json:"failed_sends"`
	SuccessRate     float64      `json:"success_rate"`
	DryRun          bool         `json:"dry_run"`
	Results         []SendResult `json:"results"`
	ProcessedAt     time.Time    `json:"processed_at"`
}

// Record appends a result and keeps the counters in step.
func (s *DispatchSummary) Record(r SendResult) {
	s.Results = append(s.Results, r)
	s.TotalProcessed++
	if r.Success {
		s.SuccessfulSends++
	} else {
		s.FailedSends++
	}
	s.SuccessRate = float64(s.SuccessfulSends) / float64(s.TotalProcessed) * 100
}
