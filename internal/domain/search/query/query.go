package query

import "strings"

// Query is a normalized free-text search query.
type Query struct {
	text  string
	terms []string
}

// Parse trims surrounding whitespace and splits the text into lowercase terms.
func Parse(raw string) Query {
	text := strings.TrimSpace(raw)
	return Query{
		text:  text,
		terms: strings.Fields(strings.ToLower(text)),
	}
}

// Text returns the trimmed query text (sent to the embedder as is).
func (q Query) Text() string { return q.text }

// Terms returns lowercase whitespace-separated tokens.
func (q Query) Terms() []string { return q.terms }

// IsEmpty reports a query without any terms.
func (q Query) IsEmpty() bool { return len(q.terms) == 0 }

// Matches reports whether every term is a substring of name or description.
// Case-insensitive; an empty query matches nothing.
func (q Query) Matches(name, description string) bool {
	if q.IsEmpty() {
		return false
	}
	name = strings.ToLower(name)
	description = strings.ToLower(description)
	for _, t := range q.terms {
		if !strings.Contains(name, t) && !strings.Contains(description, t) {
			return false
		}
	}
	return true
}
