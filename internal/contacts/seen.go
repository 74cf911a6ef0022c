package contacts

import "strings"

// SeenSet records addresses already accepted in a run. Keys are case-insensitive.
// It is owned by the caller of Run and is not safe for concurrent use.
type SeenSet struct {
	emails map[string]struct{}
}

// NewSeenSet returns an empty set.
func NewSeenSet() *SeenSet {
	return &SeenSet{emails: make(map[string]struct{})}
}

func key(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Has reports whether email was already accepted.
func (s *SeenSet) Has(email string) bool {
	_, ok := s.emails[key(email)]
	return ok
}

// Add records email and reports whether it was new. Empty addresses are never recorded.
func (s *SeenSet) Add(email string) bool {
	k := key(email)
	if k == "" {
		return false
	}
	if _, ok := s.emails[k]; ok {
		return false
	}
	s.emails[k] = struct{}{}
	return true
}

// Len returns the number of recorded addresses.
func (s *SeenSet) Len() int {
	return len(s.emails)
}
