// Package biblio is a lending coordination engine for a document catalog.
//
// It tracks documents, borrowers, and loans in three in-memory registries,
// enforces the invariants binding them (availability, quotas, one live loan
// per document), and synchronizes every successful mutation to flat
// pipe-delimited snapshot files. Loan lifecycle events fan out to pluggable
// observers on a best-effort basis.
//
// The usual entry point is New, which wires the flat-file store under a data
// directory and returns a hydrated *core.Service:
//
//	svc, err := biblio.New(ctx, "data")
//	if err != nil { ... }
//	loan, err := svc.CreateLoan(ctx, "U001", "B001")
//
// Subpackages: pkg/core holds the domain and the coordination service,
// pkg/adapters/fs the flat-file persistence, pkg/notify the observer hub.
package biblio
