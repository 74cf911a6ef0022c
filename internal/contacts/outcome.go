package contacts

import (
	"github.com/jonathan/outreach-agent/internal/types"
)

// Method names a discovery method.
type Method string

// Discovery methods, in the order they run for each company.
const (
	MethodSearch     Method = "search"
	MethodCareers    Method = "careers"
	MethodLinkedIn   Method = "linkedin"
	MethodJobPosting Method = "job_posting"
)

// FailureReason explains why a method produced nothing.
type FailureReason string

// Failure reasons.
const (
	FailureNone              FailureReason = ""
	FailureSearchUnavailable FailureReason = "search_unavailable"
	FailurePagesUnreachable  FailureReason = "pages_unreachable"
	FailureCancelled         FailureReason = "cancelled"
	FailurePanic             FailureReason = "panic"
)

// MethodOutcome is the result of one discovery method for one company.
// A zero-contact outcome with no Failure means the method ran and found nothing.
type MethodOutcome struct {
	Method   Method
	Company  string
	Contacts []types.Contact
	Failure  FailureReason
	Err      error
}

// Failed reports whether the method errored rather than finding nothing.
func (o MethodOutcome) Failed() bool {
	return o.Failure != FailureNone
}

// RunReport is the aggregate result of a discovery run.
type RunReport struct {
	Contacts []types.Contact
	Outcomes []MethodOutcome
}

// Deliverable returns the contacts that carry a usable address.
func (r RunReport) Deliverable() []types.Contact {
	return types.Deliverable(r.Contacts)
}

// Failures returns the outcomes that errored.
func (r RunReport) Failures() []MethodOutcome {
	var out []MethodOutcome
	for _, o := range r.Outcomes {
		if o.Failed() {
			out = append(out, o)
		}
	}
	return out
}
