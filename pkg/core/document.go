// Package core holds the lending domain: catalog entities, the keyed
// registries, the loan lifecycle rules, and the coordination service that
// ties them to a snapshot store and an observer broadcaster.
package core

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used in persisted files and user input.
const DateLayout = "2006-01-02"

// Kind identifies a document variant. The set is closed: every Kind has its
// own detail struct and exactly one of the detail pointers is set.
type Kind string

const (
	KindBook     Kind = "BOOK"
	KindMagazine Kind = "MAGAZINE"
)

// ParseKind maps a stored or user-supplied string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindBook:
		return KindBook, nil
	case KindMagazine:
		return KindMagazine, nil
	default:
		return "", fmt.Errorf("%w: unknown document kind %q", ErrInvalidParams, s)
	}
}

// Document represents a catalog entry.
// Availability is denormalized: it is flipped only by loan creation and
// return, never recomputed from the loan registry on read paths.
type Document struct {
	ID              string
	Title           string
	Author          string
	PublicationDate time.Time
	Available       bool
	Kind            Kind
	Book            *BookDetails
	Magazine        *MagazineDetails
}

// BookDetails holds the fields specific to KindBook.
type BookDetails struct {
	ISBN  string
	Pages int
	Genre string
}

// MagazineDetails holds the fields specific to KindMagazine.
type MagazineDetails struct {
	IssueNumber int
	Publisher   string
	Frequency   string
}

func (d Document) String() string {
	return fmt.Sprintf("Document[id=%s, kind=%s, title=%s, available=%t]",
		d.ID, d.Kind, d.Title, d.Available)
}

// DateOnly truncates a timestamp to its calendar date in UTC.
// All persisted dates go through this so that a save/load round trip
// preserves equality.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
