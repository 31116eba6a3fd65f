package at

import "strings"

// Matcher recognises a single result-code keyword on a complete line.
// A Matcher is immutable and safe to share.
type Matcher struct {
	keyword string
}

var (
	// OKMatcher matches the final "OK" result code.
	OKMatcher = NewMatcher(OK)
	// ErrorMatcher matches the final "ERROR" result code.
	ErrorMatcher = NewMatcher(ERROR)
)

// NewMatcher returns a Matcher for keyword.
func NewMatcher(keyword string) Matcher {
	return Matcher{keyword: strings.TrimSpace(keyword)}
}

// Keyword returns the keyword the matcher looks for.
func (m Matcher) Keyword() string {
	return m.keyword
}

// Match reports whether line, with its surrounding whitespace removed, equals
// the keyword ignoring case. Lines that merely contain the keyword do not
// match.
func (m Matcher) Match(line string) bool {
	return strings.EqualFold(strings.TrimSpace(line), m.keyword)
}
