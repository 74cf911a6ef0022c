package composer

import (
	"strings"
	"unicode/utf8"

	"github.com/jonathan/outreach-agent/internal/llm"
)

// DefaultSubject is used when a response yields no subject line.
const DefaultSubject = "Software Development Internship Application"

// MinBodyLength is the shortest generated body kept before the template takes over.
const MinBodyLength = 50

const maxFallbackSubjectLength = 100

var (
	internshipWords   = []string{"intern", "learning", "student", "academic", "project", "course"}
	callToActionWords = []string{"discuss", "chat", "connect", "meeting", "opportunity"}
)

// Parsed is the subject and body recovered from a model response.
type Parsed struct {
	Subject string
	Body    string
}

// ParseEmailResponse splits a response written in the SUBJECT/BODY format.
//
// When either label is missing, the first non-empty line becomes the subject
// if it is shorter than 100 characters and the rest becomes the body.
// Emphasis markers are removed. The body is not checked for length here.
func ParseEmailResponse(text string) Parsed {
	lines := strings.Split(strings.TrimSpace(text), "\n")

	var subject string
	var bodyLines []string
	subjectFound, bodyFound := false, false

	for i, line := range lines {
		line = strings.TrimSpace(line)
		upper := strings.ToUpper(line)

		if strings.HasPrefix(upper, "SUBJECT:") {
			subject = strings.TrimSpace(line[len("SUBJECT:"):])
			subjectFound = true
			continue
		}
		if strings.HasPrefix(upper, "BODY:") {
			bodyFound = true
			bodyLines = nonEmptyLines(lines[i+1:])
			break
		}
	}

	if !subjectFound || !bodyFound {
		subject = ""
		bodyLines = nil
		all := nonEmptyLines(lines)
		if len(all) > 0 {
			if utf8.RuneCountInString(all[0]) < maxFallbackSubjectLength {
				subject = all[0]
				bodyLines = all[1:]
			} else {
				subject = DefaultSubject
				bodyLines = all
			}
		}
	}

	subject = strings.Trim(llm.StripEmphasis(subject), `"'`)
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = DefaultSubject
	}

	return Parsed{
		Subject: subject,
		Body:    llm.StripEmphasis(strings.Join(bodyLines, "\n\n")),
	}
}

func nonEmptyLines(lines []string) []string {
	var out []string
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// ConfidenceScore grades a drafted email between 0.5 and 1.0.
// The score is advisory and gates nothing.
func ConfidenceScore(subject, body string) float64 {
	// Tenths keep the sum exact.
	tenths := 5

	words := len(strings.Fields(body))
	switch {
	case words >= 120 && words <= 250:
		tenths += 2
	case words >= 80 && words <= 300:
		tenths++
	}

	if n := utf8.RuneCountInString(subject); n >= 10 && n <= 80 {
		tenths++
	}

	lower := strings.ToLower(body)
	if containsAny(lower, internshipWords) {
		tenths++
	}
	if containsAny(lower, callToActionWords) {
		tenths++
	}

	if tenths > 10 {
		tenths = 10
	}
	return float64(tenths) / 10
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
