package core

import (
	"fmt"
	"time"
)

// UserType fixes the maximum number of concurrently held loans.
type UserType string

const (
	UserStudent  UserType = "STUDENT"
	UserTeacher  UserType = "TEACHER"
	UserExternal UserType = "EXTERNAL"
)

// MaxLoans returns the concurrent-loan quota for the type.
func (t UserType) MaxLoans() int {
	switch t {
	case UserStudent:
		return 5
	case UserTeacher:
		return 10
	case UserExternal:
		return 3
	default:
		return 0
	}
}

// ParseUserType maps a stored or user-supplied string to a UserType.
func ParseUserType(s string) (UserType, error) {
	switch UserType(s) {
	case UserStudent:
		return UserStudent, nil
	case UserTeacher:
		return UserTeacher, nil
	case UserExternal:
		return UserExternal, nil
	default:
		return "", fmt.Errorf("%w: unknown user type %q", ErrInvalidParams, s)
	}
}

// User represents a registered borrower.
// CurrentLoans holds the ids of documents the user currently has out; its
// length never exceeds Type.MaxLoans(). A nil slice means no loans held.
type User struct {
	ID               string
	Name             string
	Email            string
	Phone            string
	RegistrationDate time.Time
	Type             UserType
	CurrentLoans     []string
}

// CanBorrow reports whether the user is below their quota.
func (u User) CanBorrow() bool {
	return len(u.CurrentLoans) < u.Type.MaxLoans()
}

func (u User) String() string {
	return fmt.Sprintf("User[id=%s, name=%s, type=%s, loans=%d/%d]",
		u.ID, u.Name, u.Type, len(u.CurrentLoans), u.Type.MaxLoans())
}

// withoutLoan returns CurrentLoans minus the first occurrence of documentID,
// normalizing an emptied slice to nil so reload equality holds.
func (u User) withoutLoan(documentID string) []string {
	var out []string
	removed := false
	for _, id := range u.CurrentLoans {
		if !removed && id == documentID {
			removed = true
			continue
		}
		out = append(out, id)
	}
	return out
}
