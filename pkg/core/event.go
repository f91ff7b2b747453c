package core

import (
	"fmt"
	"time"
)

// EventKind identifies a loan lifecycle event.
type EventKind string

const (
	EventLoanCreated  EventKind = "loan_created"
	EventLoanReturned EventKind = "loan_returned"
	EventLoanOverdue  EventKind = "loan_overdue"
)

// Event is broadcast to observers after a lifecycle transition has committed.
type Event struct {
	Kind        EventKind `json:"kind"`
	LoanID      string    `json:"loan_id"`
	UserID      string    `json:"user_id"`
	DocumentID  string    `json:"document_id"`
	DaysOverdue int       `json:"days_overdue,omitempty"`
	At          time.Time `json:"at"`
}

// Message renders the human-readable notification text.
func (e Event) Message() string {
	switch e.Kind {
	case EventLoanCreated:
		return fmt.Sprintf("New loan %s created - user: %s, document: %s", e.LoanID, e.UserID, e.DocumentID)
	case EventLoanReturned:
		return fmt.Sprintf("Loan %s returned - user: %s, document: %s", e.LoanID, e.UserID, e.DocumentID)
	case EventLoanOverdue:
		return fmt.Sprintf("OVERDUE loan %s - user: %s, document: %s (%d days overdue)",
			e.LoanID, e.UserID, e.DocumentID, e.DaysOverdue)
	default:
		return fmt.Sprintf("Loan event %s - loan: %s", e.Kind, e.LoanID)
	}
}

// Broadcaster fans an event out to observers. Delivery is best-effort and
// must never fail the transition that produced the event; implementations
// swallow observer errors.
type Broadcaster interface {
	Broadcast(e Event)
}

// ChangeEvent signals that a persisted registry file changed on disk outside
// the running service, for example a hand edit or another process.
type ChangeEvent struct {
	Registry string
	At       time.Time
}

func (e ChangeEvent) String() string {
	return fmt.Sprintf("registry %s changed at %s", e.Registry, e.At.Format(time.RFC3339))
}

// Registry names used by Snapshot stores and ChangeEvents.
const (
	RegistryDocuments = "documents"
	RegistryUsers     = "users"
	RegistryLoans     = "loans"
)
