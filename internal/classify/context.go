package classify

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxAncestorLevels bounds how far up the tree context is searched.
const maxAncestorLevels = 3

// DetailsOnPage looks for the elements of doc that mention email, either in their
// own text or through a mailto link, and scans up to three ancestor levels for a
// name and a title. The first match of each wins.
func DetailsOnPage(doc *goquery.Document, email string) Details {
	var d Details
	lowerEmail := strings.ToLower(email)

	doc.Find("body *").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !mentions(s, lowerEmail) {
			return true
		}
		current := s
		for level := 0; level < maxAncestorLevels && current.Length() > 0; level++ {
			text := strings.TrimSpace(current.Text())
			if d.Name == "" {
				d.Name = NameCandidate(text)
			}
			if d.Title == "" {
				d.Title = TitleCandidate(text)
			}
			current = current.Parent()
		}
		return d.Name == "" || d.Title == ""
	})
	return d
}

// mentions reports whether the element's own text nodes or its mailto href contain email.
func mentions(s *goquery.Selection, lowerEmail string) bool {
	if href, ok := s.Attr("href"); ok && strings.ToLower(MailtoAddress(href)) == lowerEmail {
		return true
	}
	found := false
	s.Contents().EachWithBreak(func(_ int, c *goquery.Selection) bool {
		if goquery.NodeName(c) == "#text" && strings.Contains(strings.ToLower(c.Text()), lowerEmail) {
			found = true
			return false
		}
		return true
	})
	return found
}
