package core

import "errors"

// Engine error kinds. All are recoverable at the service boundary and are
// matched with errors.Is; call sites wrap them with entity ids for context.
var (
	// ErrDuplicateID reports an id collision on create.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrNotFound reports a referenced document, user, or loan that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrReferentialIntegrity reports a mutation that would break a
	// cross-registry invariant, such as removing a document that is on loan.
	ErrReferentialIntegrity = errors.New("referential integrity violation")

	// ErrQuotaExceeded reports a user at their concurrent-loan limit.
	ErrQuotaExceeded = errors.New("loan quota exceeded")

	// ErrUnavailable reports a document that is already on loan.
	ErrUnavailable = errors.New("document unavailable")

	// ErrAlreadyReturned reports a second return of the same loan.
	ErrAlreadyReturned = errors.New("loan already returned")

	// ErrInvalidParams reports malformed or missing construction fields.
	ErrInvalidParams = errors.New("invalid creation parameters")

	// ErrPersistence reports a failed snapshot write. The in-memory mutation
	// that triggered the write is not rolled back: state changed, durability
	// unconfirmed.
	ErrPersistence = errors.New("persistence failure")
)

// Message maps an engine error to the stable text shown to users. Technical
// causes stay in the logs.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDuplicateID):
		return "An entry with this id already exists."
	case errors.Is(err, ErrNotFound):
		return "No entry with this id was found."
	case errors.Is(err, ErrReferentialIntegrity):
		return "This entry is still referenced and cannot be removed."
	case errors.Is(err, ErrQuotaExceeded):
		return "This user has reached their loan limit."
	case errors.Is(err, ErrUnavailable):
		return "This document is currently on loan."
	case errors.Is(err, ErrAlreadyReturned):
		return "This loan has already been returned."
	case errors.Is(err, ErrInvalidParams):
		return "Some of the provided fields are missing or invalid."
	case errors.Is(err, ErrPersistence):
		return "The change was applied but could not be saved to disk."
	default:
		return "An unexpected error occurred."
	}
}
