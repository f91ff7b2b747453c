package core

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher is the search capability: does this document match this query?
// The query arrives trimmed and lower-cased; matchers lower-case the fields
// they inspect so every strategy is case-insensitive.
type Matcher interface {
	Match(doc Document, query string) bool
	Name() string
}

// TitleMatcher matches on a title substring.
type TitleMatcher struct{}

func (TitleMatcher) Match(doc Document, query string) bool {
	return strings.Contains(strings.ToLower(doc.Title), query)
}

func (TitleMatcher) Name() string { return "title" }

// AuthorMatcher matches on an author substring.
type AuthorMatcher struct{}

func (AuthorMatcher) Match(doc Document, query string) bool {
	return strings.Contains(strings.ToLower(doc.Author), query)
}

func (AuthorMatcher) Name() string { return "author" }

// IDMatcher matches the document id exactly.
type IDMatcher struct{}

func (IDMatcher) Match(doc Document, query string) bool {
	return strings.EqualFold(doc.ID, query)
}

func (IDMatcher) Name() string { return "id" }

// AnyMatcher matches the union of title, author, and id.
type AnyMatcher struct{}

func (AnyMatcher) Match(doc Document, query string) bool {
	return TitleMatcher{}.Match(doc, query) ||
		AuthorMatcher{}.Match(doc, query) ||
		strings.Contains(strings.ToLower(doc.ID), query)
}

func (AnyMatcher) Name() string { return "any" }

// GlobMatcher matches title or author against a glob pattern ("dune*",
// "*herbert*"). An invalid pattern matches nothing.
type GlobMatcher struct{}

func (GlobMatcher) Match(doc Document, query string) bool {
	if ok, err := doublestar.Match(query, strings.ToLower(doc.Title)); err == nil && ok {
		return true
	}
	ok, err := doublestar.Match(query, strings.ToLower(doc.Author))
	return err == nil && ok
}

func (GlobMatcher) Name() string { return "glob" }

// MatcherNamed resolves a strategy by name, for callers that select one from
// user input.
func MatcherNamed(name string) (Matcher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "title":
		return TitleMatcher{}, nil
	case "author":
		return AuthorMatcher{}, nil
	case "id":
		return IDMatcher{}, nil
	case "any":
		return AnyMatcher{}, nil
	case "glob":
		return GlobMatcher{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown search strategy %q", ErrInvalidParams, name)
	}
}
