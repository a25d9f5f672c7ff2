package textclean

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Clean collapses every whitespace run (newlines included) into a single space and trims the result.
func Clean(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// StripMarkup returns the text content of s when it looks like an HTML fragment.
// Plain text is returned untouched.
func StripMarkup(s string) string {
	if !looksLikeMarkup(s) {
		return s
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return doc.Find("body").Text()
}

func looksLikeMarkup(s string) bool {
	open := strings.IndexByte(s, '<')
	if open < 0 {
		return false
	}
	closeIdx := strings.IndexByte(s[open:], '>')
	if closeIdx < 2 {
		return false
	}
	next := s[open+1]
	return next == '/' || next == '!' || (next >= 'a' && next <= 'z') || (next >= 'A' && next <= 'Z')
}
