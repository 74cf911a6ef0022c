package classify

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxTitleLength caps titles lifted from surrounding text.
const maxTitleLength = 100

// DefaultProfileTitle is used when a profile snippet names no recognizable role.
const DefaultProfileTitle = "HR Professional"

// HRKeywords are role terms that mark text as being about a hiring contact.
var HRKeywords = []string{
	"recruiter", "talent acquisition", "hr", "human resources", "hiring manager",
	"talent sourcer", "recruitment consultant", "talent partner", "people operations",
	"head of talent", "hr manager", "hr director", "people lead", "talent lead",
	"recruitment", "staffing", "talent management", "campus placement",
}

var (
	emailPattern    = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	namePattern     = regexp.MustCompile(`\b[A-Z][a-z]+ [A-Z][a-z]+\b`)
	sentenceBreak   = regexp.MustCompile(`[.!?]\s+`)
	hrKeywordRegexp = buildKeywordRegexp(HRKeywords)

	profileTitlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(HR Manager|Talent Acquisition|Recruiter|Hiring Manager)`),
		regexp.MustCompile(`(?i)(Head of Talent|People Operations|HR Director)`),
		regexp.MustCompile(`(?i)(Recruitment|Staffing|Human Resources)`),
	}
)

func buildKeywordRegexp(keywords []string) *regexp.Regexp {
	quoted := make([]string, len(keywords))
	for i, k := range keywords {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)`)
}

// ExtractEmails returns the distinct email-shaped strings in text, in order of first appearance.
// Distinctness is case-insensitive; the first spelling wins.
func ExtractEmails(text string) []string {
	matches := emailPattern.FindAllString(text, -1)
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimRight(m, ".")
		key := strings.ToLower(m)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m)
	}
	return out
}

// MailtoAddresses returns the distinct addresses referenced by mailto: links in doc.
func MailtoAddresses(doc *goquery.Document) []string {
	var raw []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if addr := MailtoAddress(s.AttrOr("href", "")); addr != "" {
			raw = append(raw, addr)
		}
	})
	return ExtractEmails(strings.Join(raw, " "))
}

// MailtoAddress extracts the address from a mailto: href, or returns "".
func MailtoAddress(href string) string {
	href = strings.TrimSpace(href)
	if len(href) < len("mailto:") || !strings.EqualFold(href[:len("mailto:")], "mailto:") {
		return ""
	}
	addr := href[len("mailto:"):]
	if i := strings.IndexByte(addr, '?'); i >= 0 {
		addr = addr[:i]
	}
	if unescaped, err := url.PathUnescape(addr); err == nil {
		addr = unescaped
	}
	return strings.TrimSpace(addr)
}

// ContainsHRKeyword reports whether text mentions an HR role term. Terms must start a
// word but may run on, so plurals and compounds such as "Recruiters" and "HRBP" count.
func ContainsHRKeyword(text string) bool {
	return hrKeywordRegexp.MatchString(text)
}

// NameCandidate returns the first capitalized two-word sequence in text that is
// not itself a role term, or "".
func NameCandidate(text string) string {
	for _, m := range namePattern.FindAllString(text, -1) {
		if !ContainsHRKeyword(m) {
			return m
		}
	}
	return ""
}

// TitleCandidate returns text trimmed to a title length when it mentions an HR role term.
func TitleCandidate(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if !ContainsHRKeyword(text) {
		return ""
	}
	return truncate(text, maxTitleLength)
}

// Details is the best-effort name and title found near an address.
type Details struct {
	Name  string
	Title string
}

// DetailsNear scans the sentences of text that mention email and returns the
// first name and title candidates found. Missing values are empty.
func DetailsNear(text, email string) Details {
	var d Details
	lowerEmail := strings.ToLower(email)
	for _, sentence := range sentenceBreak.Split(text, -1) {
		if !strings.Contains(strings.ToLower(sentence), lowerEmail) {
			continue
		}
		if d.Name == "" {
			d.Name = NameCandidate(sentence)
		}
		if d.Title == "" {
			d.Title = TitleCandidate(sentence)
		}
		if d.Name != "" && d.Title != "" {
			break
		}
	}
	return d
}

// TitleFromProfileSnippet picks a role label out of a professional-network snippet.
func TitleFromProfileSnippet(snippet string) string {
	for _, p := range profileTitlePatterns {
		if m := p.FindStringSubmatch(snippet); m != nil {
			return m[1]
		}
	}
	return DefaultProfileTitle
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
