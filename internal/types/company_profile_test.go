package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompany_Validate(t *testing.T) {
	tests := []struct {
		name    string
		company Company
		wantErr bool
	}{
		{"valid", Company{Name: "Razorpay", Domain: "razorpay.com", Website: "https://razorpay.com"}, false},
		{"missing name", Company{Domain: "razorpay.com", Website: "https://razorpay.com"}, true},
		{"bad domain", Company{Name: "X", Domain: "not a domain", Website: "https://x.com"}, true},
		{"bad website", Company{Name: "X", Domain: "x.com", Website: "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.company.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSenderProfile_Validate(t *testing.T) {
	p := SenderProfile{Name: "Asha", Email: "asha@example.com"}
	assert.NoError(t, p.Validate())

	p.Email = "not-an-email"
	assert.Error(t, p.Validate())
}
