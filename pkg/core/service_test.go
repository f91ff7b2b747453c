package core_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biblio/pkg/core"
)

// memStore is an in-memory core.Store for service tests. It records every
// saved snapshot and can be told to fail writes.
type memStore struct {
	mu        sync.Mutex
	loadSnap  core.Snapshot
	saved     []core.Snapshot
	failSaves bool
}

func (m *memStore) Initialize(ctx context.Context) error { return nil }

func (m *memStore) Load(ctx context.Context) (core.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadSnap, nil
}

func (m *memStore) Save(ctx context.Context, snap core.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaves {
		return errors.New("disk full")
	}
	m.saved = append(m.saved, snap)
	return nil
}

func (m *memStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

// recorder collects broadcast events.
type recorder struct {
	mu     sync.Mutex
	events []core.Event
}

func (r *recorder) Broadcast(e core.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) kinds() []core.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.EventKind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

func date(s string) time.Time {
	t, err := time.Parse(core.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func bookParams(id string) core.BookParams {
	return core.BookParams{
		ID:              id,
		Title:           "Title of " + id,
		Author:          "Some Author",
		PublicationDate: date("1999-05-01"),
		ISBN:            "978-0-00-000000-0",
		Pages:           300,
		Genre:           "Fiction",
	}
}

func newService(t *testing.T, store *memStore, opts ...core.ServiceOption) *core.Service {
	t.Helper()
	svc := core.NewService(store, opts...)
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

func TestAddDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("Adds And Persists", func(t *testing.T) {
		store := &memStore{}
		svc := newService(t, store)

		doc, err := svc.AddDocument(ctx, bookParams("B001"))
		require.NoError(t, err)
		assert.Equal(t, "B001", doc.ID)
		assert.True(t, doc.Available)
		assert.Equal(t, core.KindBook, doc.Kind)
		require.NotNil(t, doc.Book)
		assert.Equal(t, 300, doc.Book.Pages)
		assert.Equal(t, 1, store.saveCount())
	})

	t.Run("Rejects Duplicate Id", func(t *testing.T) {
		store := &memStore{}
		svc := newService(t, store)

		_, err := svc.AddDocument(ctx, bookParams("B001"))
		require.NoError(t, err)

		_, err = svc.AddDocument(ctx, bookParams("B001"))
		assert.ErrorIs(t, err, core.ErrDuplicateID)
		assert.Equal(t, 1, store.saveCount(), "failed add must not persist")
	})

	t.Run("Rejects Invalid Params", func(t *testing.T) {
		svc := newService(t, &memStore{})

		p := bookParams("B002")
		p.Pages = 0
		_, err := svc.AddDocument(ctx, p)
		assert.ErrorIs(t, err, core.ErrInvalidParams)

		m := core.MagazineParams{
			ID:              "M001",
			Title:           "Science Weekly",
			Author:          "Editorial Board",
			PublicationDate: date("2024-01-01"),
			IssueNumber:     -4,
			Publisher:       "SciPress",
			Frequency:       "weekly",
		}
		_, err = svc.AddDocument(ctx, m)
		assert.ErrorIs(t, err, core.ErrInvalidParams)

		_, err = svc.AddDocument(ctx, nil)
		assert.ErrorIs(t, err, core.ErrInvalidParams)
	})
}

func TestRemoveDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing Document", func(t *testing.T) {
		svc := newService(t, &memStore{})
		err := svc.RemoveDocument(ctx, "nope")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("On Loan Cannot Be Removed", func(t *testing.T) {
		svc := newService(t, &memStore{})
		_, err := svc.AddDocument(ctx, bookParams("B001"))
		require.NoError(t, err)
		_, err = svc.RegisterUser(ctx, student("U001"))
		require.NoError(t, err)
		_, err = svc.CreateLoan(ctx, "U001", "B001")
		require.NoError(t, err)

		err = svc.RemoveDocument(ctx, "B001")
		assert.ErrorIs(t, err, core.ErrReferentialIntegrity)

		_, err = svc.FindDocument("B001")
		assert.NoError(t, err, "document must survive the failed removal")
	})

	t.Run("Removes Available Document", func(t *testing.T) {
		svc := newService(t, &memStore{})
		_, err := svc.AddDocument(ctx, bookParams("B001"))
		require.NoError(t, err)

		require.NoError(t, svc.RemoveDocument(ctx, "B001"))
		_, err = svc.FindDocument("B001")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}

func student(id string) core.User {
	return core.User{
		ID:    id,
		Name:  "Ada Lovelace",
		Email: id + "@example.edu",
		Phone: "555-0101",
		Type:  core.UserStudent,
	}
}

func TestRegisterUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Stamps Registration Date", func(t *testing.T) {
		now := date("2026-03-10")
		svc := newService(t, &memStore{}, core.WithClock(func() time.Time { return now }))

		u, err := svc.RegisterUser(ctx, student("U001"))
		require.NoError(t, err)
		assert.Equal(t, now, u.RegistrationDate)
		assert.Empty(t, u.CurrentLoans)
	})

	t.Run("Rejects Duplicate", func(t *testing.T) {
		svc := newService(t, &memStore{})
		_, err := svc.RegisterUser(ctx, student("U001"))
		require.NoError(t, err)
		_, err = svc.RegisterUser(ctx, student("U001"))
		assert.ErrorIs(t, err, core.ErrDuplicateID)
	})

	t.Run("Rejects Unknown Type", func(t *testing.T) {
		svc := newService(t, &memStore{})
		u := student("U002")
		u.Type = core.UserType("ROBOT")
		_, err := svc.RegisterUser(ctx, u)
		assert.ErrorIs(t, err, core.ErrInvalidParams)
	})

	t.Run("Rejects Delimiter In Fields", func(t *testing.T) {
		store := &memStore{}
		svc := newService(t, store)
		u := student("U003")
		u.Name = "Ada|Lovelace"
		_, err := svc.RegisterUser(ctx, u)
		assert.ErrorIs(t, err, core.ErrInvalidParams)
		assert.Equal(t, 0, store.saveCount(), "rejected user must not persist")
	})
}

// TestBorrowScenario walks the full lending scenario: quota enforcement,
// availability flips, and re-borrowing after a return.
func TestBorrowScenario(t *testing.T) {
	ctx := context.Background()
	now := date("2026-03-10")
	store := &memStore{}
	rec := &recorder{}
	svc := newService(t, store,
		core.WithClock(func() time.Time { return now }),
		core.WithBroadcaster(rec),
	)

	_, err := svc.RegisterUser(ctx, student("U001"))
	require.NoError(t, err)

	for i := 1; i <= 6; i++ {
		_, err := svc.AddDocument(ctx, bookParams(fmt.Sprintf("B%03d", i)))
		require.NoError(t, err)
	}

	// First loan.
	loan, err := svc.CreateLoan(ctx, "U001", "B001")
	require.NoError(t, err)
	assert.Equal(t, "L0001", loan.ID)
	assert.Equal(t, core.LoanActive, loan.Status)
	assert.Equal(t, now, loan.LoanDate)
	assert.Equal(t, now.AddDate(0, 0, 14), loan.DueDate)

	doc, err := svc.FindDocument("B001")
	require.NoError(t, err)
	assert.False(t, doc.Available)

	// Same document again.
	_, err = svc.CreateLoan(ctx, "U001", "B001")
	assert.ErrorIs(t, err, core.ErrUnavailable)

	// Fill the quota (student quota is 5, one already held).
	for i := 2; i <= 5; i++ {
		_, err := svc.CreateLoan(ctx, "U001", fmt.Sprintf("B%03d", i))
		require.NoError(t, err)
	}

	// Sixth distinct document.
	_, err = svc.CreateLoan(ctx, "U001", "B006")
	assert.ErrorIs(t, err, core.ErrQuotaExceeded)

	u, err := svc.FindUser("U001")
	require.NoError(t, err)
	assert.Len(t, u.CurrentLoans, 5)

	// Return the first loan and borrow the same book again.
	_, err = svc.ReturnLoan(ctx, "L0001")
	require.NoError(t, err)

	doc, err = svc.FindDocument("B001")
	require.NoError(t, err)
	assert.True(t, doc.Available)

	again, err := svc.CreateLoan(ctx, "U001", "B001")
	require.NoError(t, err)
	assert.Equal(t, "L0006", again.ID, "failed attempts must not consume sequence numbers")

	assert.Equal(t, []core.EventKind{
		core.EventLoanCreated, core.EventLoanCreated, core.EventLoanCreated,
		core.EventLoanCreated, core.EventLoanCreated,
		core.EventLoanReturned,
		core.EventLoanCreated,
	}, rec.kinds())
}

func TestCreateLoanMissingEntities(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, &memStore{})
	_, err := svc.AddDocument(ctx, bookParams("B001"))
	require.NoError(t, err)

	_, err = svc.CreateLoan(ctx, "ghost", "B001")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = svc.RegisterUser(ctx, student("U001"))
	require.NoError(t, err)
	_, err = svc.CreateLoan(ctx, "U001", "ghost")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestReturnLoan(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing Loan", func(t *testing.T) {
		svc := newService(t, &memStore{})
		_, err := svc.ReturnLoan(ctx, "L9999")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("Second Return Fails And Changes Nothing", func(t *testing.T) {
		now := date("2026-03-10")
		svc := newService(t, &memStore{}, core.WithClock(func() time.Time { return now }))
		_, err := svc.AddDocument(ctx, bookParams("B001"))
		require.NoError(t, err)
		_, err = svc.RegisterUser(ctx, student("U001"))
		require.NoError(t, err)
		loan, err := svc.CreateLoan(ctx, "U001", "B001")
		require.NoError(t, err)

		returned, err := svc.ReturnLoan(ctx, loan.ID)
		require.NoError(t, err)
		assert.Equal(t, core.LoanReturned, returned.Status)
		require.NotNil(t, returned.ReturnDate)
		assert.Equal(t, now, *returned.ReturnDate)

		_, err = svc.ReturnLoan(ctx, loan.ID)
		assert.ErrorIs(t, err, core.ErrAlreadyReturned)

		doc, err := svc.FindDocument("B001")
		require.NoError(t, err)
		assert.True(t, doc.Available, "failed second return must not flip availability")

		loans := svc.LoansForUser("U001")
		require.Len(t, loans, 1)
		assert.Equal(t, core.LoanReturned, loans[0].Status)
	})
}

func TestLoanIDsContinueAfterReload(t *testing.T) {
	ctx := context.Background()
	loaded := core.Snapshot{
		Documents: []core.Document{
			bookParamsDoc("B001", true),
			bookParamsDoc("B002", true),
		},
		Users: []core.User{student("U001")},
		Loans: []core.Loan{
			{ID: "L0007", UserID: "U001", DocumentID: "B009", LoanDate: date("2026-01-01"), DueDate: date("2026-01-15"), Status: core.LoanReturned, ReturnDate: ptr(date("2026-01-10"))},
			{ID: "L0003", UserID: "U001", DocumentID: "B008", LoanDate: date("2026-01-01"), DueDate: date("2026-01-15"), Status: core.LoanReturned, ReturnDate: ptr(date("2026-01-10"))},
			{ID: "legacy-42", UserID: "U001", DocumentID: "B007", LoanDate: date("2026-01-01"), DueDate: date("2026-01-15"), Status: core.LoanReturned, ReturnDate: ptr(date("2026-01-10"))},
		},
	}
	store := &memStore{loadSnap: loaded}
	svc := newService(t, store)

	loan, err := svc.CreateLoan(ctx, "U001", "B001")
	require.NoError(t, err)
	assert.Equal(t, "L0008", loan.ID, "sequence continues past the highest loaded id")

	loan, err = svc.CreateLoan(ctx, "U001", "B002")
	require.NoError(t, err)
	assert.Equal(t, "L0009", loan.ID)
}

func TestOverdueDerivedFromDueDate(t *testing.T) {
	ctx := context.Background()
	now := date("2026-03-10")
	rec := &recorder{}
	store := &memStore{loadSnap: core.Snapshot{
		Documents: []core.Document{bookParamsDoc("B001", false)},
		Users:     []core.User{withLoans(student("U001"), "B001")},
		Loans: []core.Loan{{
			ID:         "L0001",
			UserID:     "U001",
			DocumentID: "B001",
			LoanDate:   date("2026-02-01"),
			DueDate:    date("2026-02-15"),
			Status:     core.LoanActive, // never rewritten to OVERDUE on disk
		}},
	}}
	svc := newService(t, store,
		core.WithClock(func() time.Time { return now }),
		core.WithBroadcaster(rec),
	)

	overdue := svc.OverdueLoans()
	require.Len(t, overdue, 1)
	assert.Equal(t, "L0001", overdue[0].ID)
	assert.Equal(t, core.LoanOverdue, overdue[0].Status, "listing promotes the stored status")

	assert.Empty(t, svc.ActiveLoans(), "an overdue loan is not active")

	stats := svc.Statistics()
	assert.Equal(t, 1, stats.OverdueLoans)
	assert.Equal(t, 0, stats.ActiveLoans)

	n := svc.NotifyOverdue(ctx)
	assert.Equal(t, 1, n)
	kinds := rec.kinds()
	require.Len(t, kinds, 1)
	assert.Equal(t, core.EventLoanOverdue, kinds[0])
	assert.Equal(t, 23, rec.events[0].DaysOverdue)

	// The promotion alone is never persisted by the query.
	assert.Equal(t, 0, store.saveCount())
}

func TestPersistenceFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	rec := &recorder{}
	svc := newService(t, store, core.WithBroadcaster(rec))

	_, err := svc.AddDocument(ctx, bookParams("B001"))
	require.NoError(t, err)
	_, err = svc.RegisterUser(ctx, student("U001"))
	require.NoError(t, err)

	store.mu.Lock()
	store.failSaves = true
	store.mu.Unlock()

	_, err = svc.CreateLoan(ctx, "U001", "B001")
	assert.ErrorIs(t, err, core.ErrPersistence)

	// State changed, durability unconfirmed.
	doc, err := svc.FindDocument("B001")
	require.NoError(t, err)
	assert.False(t, doc.Available)

	u, err := svc.FindUser("U001")
	require.NoError(t, err)
	assert.Equal(t, []string{"B001"}, u.CurrentLoans)

	assert.Empty(t, rec.kinds(), "no notification when the snapshot write fails")
}

func TestSearchDocuments(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, &memStore{})

	p := bookParams("B001")
	p.Title = "Dune"
	p.Author = "Frank Herbert"
	_, err := svc.AddDocument(ctx, p)
	require.NoError(t, err)

	p = bookParams("B002")
	p.Title = "Dune Messiah"
	p.Author = "Frank Herbert"
	_, err = svc.AddDocument(ctx, p)
	require.NoError(t, err)

	p = bookParams("B003")
	p.Title = "Hyperion"
	p.Author = "Dan Simmons"
	_, err = svc.AddDocument(ctx, p)
	require.NoError(t, err)

	t.Run("Trims And Ignores Case", func(t *testing.T) {
		got := svc.SearchDocuments(core.TitleMatcher{}, "  DUNE ")
		require.Len(t, got, 2)
		assert.Equal(t, "B001", got[0].ID)
		assert.Equal(t, "B002", got[1].ID)
	})

	t.Run("Blank Query Matches Nothing", func(t *testing.T) {
		assert.Empty(t, svc.SearchDocuments(core.TitleMatcher{}, "   "))
		assert.Empty(t, svc.SearchDocuments(core.AnyMatcher{}, ""))
	})

	t.Run("Nil Matcher Defaults To Title", func(t *testing.T) {
		got := svc.SearchDocuments(nil, "hyperion")
		require.Len(t, got, 1)
		assert.Equal(t, "B003", got[0].ID)
	})

	t.Run("Glob Strategy", func(t *testing.T) {
		got := svc.SearchDocuments(core.GlobMatcher{}, "dune*")
		require.Len(t, got, 2)

		got = svc.SearchDocuments(core.GlobMatcher{}, "*simmons")
		require.Len(t, got, 1)
		assert.Equal(t, "B003", got[0].ID)
	})
}

func TestStatistics(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, &memStore{})

	_, err := svc.AddDocument(ctx, bookParams("B001"))
	require.NoError(t, err)
	_, err = svc.AddDocument(ctx, bookParams("B002"))
	require.NoError(t, err)
	_, err = svc.RegisterUser(ctx, student("U001"))
	require.NoError(t, err)
	_, err = svc.CreateLoan(ctx, "U001", "B001")
	require.NoError(t, err)

	stats := svc.Statistics()
	assert.Equal(t, core.Statistics{
		TotalDocuments:     2,
		AvailableDocuments: 1,
		TotalUsers:         1,
		ActiveLoans:        1,
		OverdueLoans:       0,
	}, stats)
}

// ---- helpers ----

func bookParamsDoc(id string, available bool) core.Document {
	return core.Document{
		ID:              id,
		Title:           "Title of " + id,
		Author:          "Some Author",
		PublicationDate: date("1999-05-01"),
		Available:       available,
		Kind:            core.KindBook,
		Book:            &core.BookDetails{ISBN: "978-0-00-000000-0", Pages: 300, Genre: "Fiction"},
	}
}

func withLoans(u core.User, docIDs ...string) core.User {
	u.RegistrationDate = date("2026-01-01")
	u.CurrentLoans = docIDs
	return u
}

func ptr(t time.Time) *time.Time { return &t }
