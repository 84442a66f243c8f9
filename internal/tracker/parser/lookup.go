package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Form 4 documents mix lowerCamelCase and PascalCase tag names. The
// lenient HTML parse folds element names to lowercase, so looking up the
// case-folded variant of a name covers both spellings.

// findTag returns the first descendant with the given tag name, or nil
// when no casing variant of it is present.
func findTag(s *goquery.Selection, name string) *goquery.Selection {
	sel := s.Find(strings.ToLower(name)).First()
	if sel.Length() == 0 {
		return nil
	}
	return sel
}

// tagText returns the trimmed text of the named descendant, or "" when it
// is absent.
func tagText(s *goquery.Selection, name string) string {
	sel := findTag(s, name)
	if sel == nil {
		return ""
	}
	return strings.TrimSpace(sel.Text())
}

// tagBool reports whether the named descendant holds a truthy flag.
func tagBool(s *goquery.Selection, name string) bool {
	switch tagText(s, name) {
	case "1", "true", "True":
		return true
	}
	return false
}

// valueOf returns the trimmed text of the <value> element nested under
// the named descendant, or "" when either level is absent.
func valueOf(s *goquery.Selection, name string) string {
	sel := findTag(s, name)
	if sel == nil {
		return ""
	}
	return tagText(sel, "value")
}
