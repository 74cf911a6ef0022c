package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContact_Deliverable(t *testing.T) {
	assert.True(t, Contact{Email: "hr@razorpay.com"}.Deliverable())
	assert.False(t, Contact{Email: ""}.Deliverable())
	assert.False(t, Contact{Email: "not-an-address"}.Deliverable())
}

func TestContact_Recipient(t *testing.T) {
	assert.Equal(t, "Priya Sharma", Contact{Name: "Priya Sharma"}.Recipient())
	assert.Equal(t, "Hiring Manager", Contact{Name: "  "}.Recipient())
}

func TestDeliverable_Filters(t *testing.T) {
	in := []Contact{
		{Email: "a@x.com"},
		{Name: "No Address"},
		{Email: "b@x.com"},
	}
	out := Deliverable(in)
	assert.Len(t, out, 2)
	assert.Equal(t, "a@x.com", out[0].Email)
	assert.Equal(t, "b@x.com", out[1].Email)
}
