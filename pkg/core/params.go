package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DocumentParams is the sealed set of per-kind creation parameters accepted
// by Service.AddDocument. Each variant validates itself before construction;
// no string-keyed lookup happens at consumption time.
type DocumentParams interface {
	Kind() Kind
	Validate() error

	// build assumes Validate has passed.
	build() Document
}

// BookParams describes a book to be added to the catalog.
type BookParams struct {
	ID              string
	Title           string
	Author          string
	PublicationDate time.Time
	ISBN            string
	Pages           int
	Genre           string
}

// Kind implements DocumentParams.
func (BookParams) Kind() Kind { return KindBook }

// Validate implements DocumentParams.
func (p BookParams) Validate() error {
	if err := validateCommon(p.ID, p.Title, p.Author, p.PublicationDate); err != nil {
		return err
	}
	if strings.TrimSpace(p.ISBN) == "" {
		return fmt.Errorf("%w: isbn is required", ErrInvalidParams)
	}
	if p.Pages <= 0 {
		return fmt.Errorf("%w: pages must be positive, got %d", ErrInvalidParams, p.Pages)
	}
	if strings.TrimSpace(p.Genre) == "" {
		return fmt.Errorf("%w: genre is required", ErrInvalidParams)
	}
	return fieldsFitRecord(map[string]string{"isbn": p.ISBN, "genre": p.Genre})
}

func (p BookParams) build() Document {
	return Document{
		ID:              p.ID,
		Title:           p.Title,
		Author:          p.Author,
		PublicationDate: DateOnly(p.PublicationDate),
		Available:       true,
		Kind:            KindBook,
		Book:            &BookDetails{ISBN: p.ISBN, Pages: p.Pages, Genre: p.Genre},
	}
}

// MagazineParams describes a magazine to be added to the catalog.
type MagazineParams struct {
	ID              string
	Title           string
	Author          string
	PublicationDate time.Time
	IssueNumber     int
	Publisher       string
	Frequency       string
}

// Kind implements DocumentParams.
func (MagazineParams) Kind() Kind { return KindMagazine }

// Validate implements DocumentParams.
func (p MagazineParams) Validate() error {
	if err := validateCommon(p.ID, p.Title, p.Author, p.PublicationDate); err != nil {
		return err
	}
	if p.IssueNumber <= 0 {
		return fmt.Errorf("%w: issue number must be positive, got %d", ErrInvalidParams, p.IssueNumber)
	}
	if strings.TrimSpace(p.Publisher) == "" {
		return fmt.Errorf("%w: publisher is required", ErrInvalidParams)
	}
	if strings.TrimSpace(p.Frequency) == "" {
		return fmt.Errorf("%w: frequency is required", ErrInvalidParams)
	}
	return fieldsFitRecord(map[string]string{"publisher": p.Publisher, "frequency": p.Frequency})
}

func (p MagazineParams) build() Document {
	return Document{
		ID:              p.ID,
		Title:           p.Title,
		Author:          p.Author,
		PublicationDate: DateOnly(p.PublicationDate),
		Available:       true,
		Kind:            KindMagazine,
		Magazine:        &MagazineDetails{IssueNumber: p.IssueNumber, Publisher: p.Publisher, Frequency: p.Frequency},
	}
}

func validateCommon(id, title, author string, pubDate time.Time) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: document id is required", ErrInvalidParams)
	}
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidParams)
	}
	if strings.TrimSpace(author) == "" {
		return fmt.Errorf("%w: author is required", ErrInvalidParams)
	}
	if pubDate.IsZero() {
		return fmt.Errorf("%w: publication date is required", ErrInvalidParams)
	}
	return fieldsFitRecord(map[string]string{
		"document id": id,
		"title":       title,
		"author":      author,
	})
}

// fieldsFitRecord rejects values that cannot survive the persisted line
// format: the field delimiter would shift every following column and the
// whole record would be dropped as malformed on the next load.
func fieldsFitRecord(fields map[string]string) error {
	for name, value := range fields {
		if strings.Contains(value, RecordDelimiter) {
			return fmt.Errorf("%w: %s must not contain %q", ErrInvalidParams, name, RecordDelimiter)
		}
	}
	return nil
}

// PositiveInt parses a numeric field supplied as text (CLI flags, prompts).
// Unparseable or non-positive input is an invalid-parameter failure, not a
// panic or a silent zero.
func PositiveInt(field, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not a number: %q", ErrInvalidParams, field, value)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidParams, field, n)
	}
	return n, nil
}

// ParseDate parses a calendar date supplied as text.
func ParseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s is not a date (want %s): %q", ErrInvalidParams, field, DateLayout, value)
	}
	return t, nil
}
