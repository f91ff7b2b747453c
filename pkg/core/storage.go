package core

import "context"

// RecordDelimiter separates fields in persisted records. Validation rejects
// entity fields containing it so every accepted entity can round-trip.
const RecordDelimiter = "|"

// Snapshot is the full content of the three registries at one point in time.
// Stores persist snapshots whole; there is no delta or append log.
type Snapshot struct {
	Documents []Document
	Users     []User
	Loans     []Loan
}

// Store is the persistence contract the service depends on. Adhering to this
// interface keeps the core independent of the storage mechanism (flat files,
// memory, anything that can hold a snapshot).
type Store interface {
	// Initialize ensures the underlying storage is ready (e.g. create the
	// data directory).
	Initialize(ctx context.Context) error

	// Load reads the persisted snapshot. A missing backing file yields an
	// empty registry, not an error; corrupt records are skipped, not fatal.
	Load(ctx context.Context) (Snapshot, error)

	// Save replaces the persisted state with the given snapshot.
	Save(ctx context.Context, snap Snapshot) error
}

// Watchable is implemented by stores that can report out-of-process changes
// to their backing files.
type Watchable interface {
	Watch(ctx context.Context) (<-chan ChangeEvent, error)
}
