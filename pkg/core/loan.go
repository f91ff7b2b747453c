package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LoanPeriodDays is the fixed lending period: due date = loan date + 14 days.
const LoanPeriodDays = 14

// LoanStatus is the persisted state of a loan.
type LoanStatus string

const (
	LoanActive   LoanStatus = "ACTIVE"
	LoanOverdue  LoanStatus = "OVERDUE"
	LoanReturned LoanStatus = "RETURNED"
)

// ParseLoanStatus maps a stored string to a LoanStatus.
func ParseLoanStatus(s string) (LoanStatus, error) {
	switch LoanStatus(s) {
	case LoanActive:
		return LoanActive, nil
	case LoanOverdue:
		return LoanOverdue, nil
	case LoanReturned:
		return LoanReturned, nil
	default:
		return "", fmt.Errorf("%w: unknown loan status %q", ErrInvalidParams, s)
	}
}

// Loan records one lending of one document to one user. Cross-references are
// by id only.
//
// The stored Status is not authoritative for overdue-ness: a loan past its
// due date is overdue whether or not Status was ever rewritten to OVERDUE.
// Use OverdueAt for the live check.
type Loan struct {
	ID         string
	UserID     string
	DocumentID string
	LoanDate   time.Time
	DueDate    time.Time
	ReturnDate *time.Time
	Status     LoanStatus
}

// OverdueAt reports whether the loan is overdue at the given instant.
// Returned loans are never overdue.
func (l Loan) OverdueAt(now time.Time) bool {
	if l.Status == LoanReturned {
		return false
	}
	return DateOnly(now).After(l.DueDate)
}

// DaysOverdue returns how many whole days past due the loan is at now,
// or zero if it is not overdue.
func (l Loan) DaysOverdue(now time.Time) int {
	if !l.OverdueAt(now) {
		return 0
	}
	return int(DateOnly(now).Sub(l.DueDate).Hours() / 24)
}

func (l Loan) String() string {
	return fmt.Sprintf("Loan[id=%s, user=%s, document=%s, status=%s]",
		l.ID, l.UserID, l.DocumentID, l.Status)
}

// FormatLoanID renders a sequence number as a loan id. The width is a display
// minimum, not a cap: sequences past 9999 keep growing and stay unique.
func FormatLoanID(seq int) string {
	return fmt.Sprintf("L%04d", seq)
}

// loanSequence extracts the sequence number from a loan id. The second return
// is false for ids that do not carry one, such as hand-edited file entries.
func loanSequence(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, "L")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
