package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsQualifyingHREmail(t *testing.T) {
	tests := []struct {
		name   string
		email  string
		domain string
		want   bool
	}{
		{"company address", "priya.sharma@razorpay.com", "razorpay.com", true},
		{"company subdomain", "talent@in.razorpay.com", "razorpay.com", true},
		{"hr mailbox on other domain", "careers@razorpay-jobs.in", "razorpay.com", true},
		{"recruitment mailbox", "Recruitment@hiringpartner.io", "paytm.com", true},
		{"mixed case company", "Priya@RazorPay.com", "razorpay.com", true},
		{"unrelated domain", "someone@example.org", "razorpay.com", false},
		{"noreply on company domain", "noreply@razorpay.com", "razorpay.com", false},
		{"support on company domain", "support@razorpay.com", "razorpay.com", false},
		{"info on company domain", "INFO@razorpay.com", "razorpay.com", false},
		{"hello on company domain", "hello@razorpay.com", "razorpay.com", false},
		{"personal hr", "hr@gmail.com", "razorpay.com", false},
		{"personal careers", "careers@outlook.com", "razorpay.com", false},
		{"personal subdomain", "jobs@mail.yahoo.com", "razorpay.com", false},
		{"personal matching company domain", "recruiter@gmail.com", "gmail.com", false},
		{"not an address", "razorpay.com", "razorpay.com", false},
		{"empty", "", "razorpay.com", false},
		{"no company domain hr", "jobs@startup.io", "", true},
		{"no company domain plain", "amit@startup.io", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsQualifyingHREmail(tt.email, tt.domain))
		})
	}
}

func TestIsQualifyingHREmail_ExclusionAlwaysWins(t *testing.T) {
	for _, p := range excludedPatterns {
		email := p + "razorpay.com"
		assert.False(t, IsQualifyingHREmail(email, "razorpay.com"), email)
	}
}

func TestIsQualifyingHREmail_PersonalAlwaysRejected(t *testing.T) {
	for _, d := range personalDomains {
		for _, p := range hrPatterns {
			email := p + d
			assert.False(t, IsQualifyingHREmail(email, d), email)
		}
	}
}

func TestPatternListsDoNotOverlap(t *testing.T) {
	for _, ex := range excludedPatterns {
		for _, hr := range hrPatterns {
			assert.NotEqual(t, ex, hr)
		}
	}
}

func TestBelongsTo(t *testing.T) {
	assert.True(t, BelongsTo("a@razorpay.com", "razorpay.com"))
	assert.True(t, BelongsTo("a@mail.razorpay.com", "RAZORPAY.COM"))
	assert.False(t, BelongsTo("a@paytm.com", "razorpay.com"))
	assert.False(t, BelongsTo("a@razorpay.com", ""))
	assert.False(t, BelongsTo("no-at-sign", "razorpay.com"))
}
