package composer

import "fmt"

// GenerationError represents a failed call to the generative-text service.
type GenerationError struct {
	Company string
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation failed for %s: %s: %v", e.Company, e.Message, e.Cause)
	}
	return fmt.Sprintf("generation failed for %s: %s", e.Company, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}
