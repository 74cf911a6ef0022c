// Package classify decides whether an address is a plausible, organization-owned
// HR contact and pulls addresses, names and titles out of free text and HTML.
package classify

import (
	"strings"
)

// excludedPatterns are generic role mailboxes that never reach a person.
var excludedPatterns = []string{
	"noreply@", "no-reply@", "donotreply@",
	"support@", "info@", "admin@", "webmaster@",
	"hello@", "contact@", "sales@",
}

// personalDomains are public consumer mail providers.
var personalDomains = []string{
	"gmail.com", "yahoo.com", "hotmail.com", "outlook.com",
}

// hrPatterns are local parts that indicate a hiring mailbox.
var hrPatterns = []string{
	"hr@", "careers@", "jobs@", "talent@", "recruiting@", "recruitment@",
}

// IsQualifyingHREmail reports whether email is worth contacting for companyDomain.
// Exclusions are checked first and always win over inclusion.
func IsQualifyingHREmail(email, companyDomain string) bool {
	addr := strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(addr, "@")
	if at <= 0 || at == len(addr)-1 {
		return false
	}

	for _, p := range excludedPatterns {
		if strings.Contains(addr, p) {
			return false
		}
	}

	domain := addr[at+1:]
	if IsPersonalDomain(domain) {
		return false
	}

	companyDomain = strings.ToLower(strings.TrimSpace(companyDomain))
	if companyDomain != "" && strings.Contains(domain, companyDomain) {
		return true
	}
	for _, p := range hrPatterns {
		if strings.Contains(addr, p) {
			return true
		}
	}
	return false
}

// IsPersonalDomain reports whether domain is, or is a subdomain of, a consumer mail provider.
func IsPersonalDomain(domain string) bool {
	domain = strings.ToLower(strings.TrimSpace(domain))
	for _, p := range personalDomains {
		if domain == p || strings.HasSuffix(domain, "."+p) {
			return true
		}
	}
	return false
}

// BelongsTo reports whether the address domain contains companyDomain.
func BelongsTo(email, companyDomain string) bool {
	addr := strings.ToLower(email)
	at := strings.LastIndex(addr, "@")
	if at < 0 || companyDomain == "" {
		return false
	}
	return strings.Contains(addr[at+1:], strings.ToLower(companyDomain))
}
