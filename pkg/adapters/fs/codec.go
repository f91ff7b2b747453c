package fs

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"biblio/pkg/core"
)

// Delimiter joins record fields on a line. Entity validation rejects field
// values containing it, so accepted records always round-trip.
const Delimiter = core.RecordDelimiter

// loanListSeparator joins the document ids inside a user's held-loans field.
const loanListSeparator = ","

// ---- documents ----

// encodeDocument renders one catalog entry:
//
//	kind|id|title|author|publicationDate|available|<kind-specific fields>
//
// Book appends isbn|pages|genre, Magazine appends issue|publisher|frequency.
func encodeDocument(d core.Document) string {
	fields := []string{
		string(d.Kind),
		d.ID,
		d.Title,
		d.Author,
		d.PublicationDate.Format(core.DateLayout),
		strconv.FormatBool(d.Available),
	}
	switch d.Kind {
	case core.KindBook:
		fields = append(fields, d.Book.ISBN, strconv.Itoa(d.Book.Pages), d.Book.Genre)
	case core.KindMagazine:
		fields = append(fields, strconv.Itoa(d.Magazine.IssueNumber), d.Magazine.Publisher, d.Magazine.Frequency)
	}
	return strings.Join(fields, Delimiter)
}

func parseDocument(line string) (core.Document, error) {
	parts := strings.Split(line, Delimiter)
	if len(parts) != 9 {
		return core.Document{}, fmt.Errorf("document record has %d fields, want 9", len(parts))
	}

	kind, err := core.ParseKind(parts[0])
	if err != nil {
		return core.Document{}, err
	}
	pubDate, err := parseDate("publication date", parts[4])
	if err != nil {
		return core.Document{}, err
	}
	available, err := strconv.ParseBool(parts[5])
	if err != nil {
		return core.Document{}, fmt.Errorf("bad availability flag %q", parts[5])
	}

	doc := core.Document{
		ID:              parts[1],
		Title:           parts[2],
		Author:          parts[3],
		PublicationDate: pubDate,
		Available:       available,
		Kind:            kind,
	}

	switch kind {
	case core.KindBook:
		pages, err := strconv.Atoi(parts[7])
		if err != nil {
			return core.Document{}, fmt.Errorf("bad page count %q", parts[7])
		}
		doc.Book = &core.BookDetails{ISBN: parts[6], Pages: pages, Genre: parts[8]}
	case core.KindMagazine:
		issue, err := strconv.Atoi(parts[6])
		if err != nil {
			return core.Document{}, fmt.Errorf("bad issue number %q", parts[6])
		}
		doc.Magazine = &core.MagazineDetails{IssueNumber: issue, Publisher: parts[7], Frequency: parts[8]}
	}
	return doc, nil
}

// ---- users ----

// encodeUser renders one borrower:
//
//	id|name|email|phone|registrationDate|type|commaJoinedHeldDocumentIds
func encodeUser(u core.User) string {
	fields := []string{
		u.ID,
		u.Name,
		u.Email,
		u.Phone,
		u.RegistrationDate.Format(core.DateLayout),
		string(u.Type),
		strings.Join(u.CurrentLoans, loanListSeparator),
	}
	return strings.Join(fields, Delimiter)
}

func parseUser(line string) (core.User, error) {
	parts := strings.Split(line, Delimiter)
	if len(parts) != 7 {
		return core.User{}, fmt.Errorf("user record has %d fields, want 7", len(parts))
	}

	regDate, err := parseDate("registration date", parts[4])
	if err != nil {
		return core.User{}, err
	}
	userType, err := core.ParseUserType(parts[5])
	if err != nil {
		return core.User{}, err
	}

	var held []string
	if parts[6] != "" {
		held = strings.Split(parts[6], loanListSeparator)
	}

	return core.User{
		ID:               parts[0],
		Name:             parts[1],
		Email:            parts[2],
		Phone:            parts[3],
		RegistrationDate: regDate,
		Type:             userType,
		CurrentLoans:     held,
	}, nil
}

// ---- loans ----

// encodeLoan renders one loan:
//
//	id|userId|documentId|loanDate|dueDate|returnDateOrEmpty|status
func encodeLoan(l core.Loan) string {
	returnDate := ""
	if l.ReturnDate != nil {
		returnDate = l.ReturnDate.Format(core.DateLayout)
	}
	fields := []string{
		l.ID,
		l.UserID,
		l.DocumentID,
		l.LoanDate.Format(core.DateLayout),
		l.DueDate.Format(core.DateLayout),
		returnDate,
		string(l.Status),
	}
	return strings.Join(fields, Delimiter)
}

func parseLoan(line string) (core.Loan, error) {
	parts := strings.Split(line, Delimiter)
	if len(parts) != 7 {
		return core.Loan{}, fmt.Errorf("loan record has %d fields, want 7", len(parts))
	}

	loanDate, err := parseDate("loan date", parts[3])
	if err != nil {
		return core.Loan{}, err
	}
	dueDate, err := parseDate("due date", parts[4])
	if err != nil {
		return core.Loan{}, err
	}
	status, err := core.ParseLoanStatus(parts[6])
	if err != nil {
		return core.Loan{}, err
	}

	loan := core.Loan{
		ID:         parts[0],
		UserID:     parts[1],
		DocumentID: parts[2],
		LoanDate:   loanDate,
		DueDate:    dueDate,
		Status:     status,
	}
	if parts[5] != "" {
		returned, err := parseDate("return date", parts[5])
		if err != nil {
			return core.Loan{}, err
		}
		loan.ReturnDate = &returned
	}
	return loan, nil
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(core.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad %s %q", field, value)
	}
	return t, nil
}
