package core

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// Service is the coordination engine: the sole owner and mutator of the
// document, user, and loan registries. Every mutating operation runs as one
// critical section covering the invariant checks, the registry updates, and
// the snapshot write, so concurrent readers never observe a half-applied
// transition.
type Service struct {
	mu    sync.RWMutex
	store Store

	documents *registry[Document]
	users     *registry[User]
	loans     *registry[Loan]

	// nextLoanSeq is one more than the highest sequence ever seen, including
	// loans loaded from disk. Loan ids stay unique across restarts.
	nextLoanSeq int

	logger      *slog.Logger
	broadcaster Broadcaster
	now         func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBroadcaster sets the observer fan-out notified after loan transitions.
func WithBroadcaster(b Broadcaster) ServiceOption {
	return func(s *Service) { s.broadcaster = b }
}

// WithClock overrides the time source. Tests use this to steer due dates.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a Service over the given store. Call Load before first
// use to hydrate the registries from persisted state.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:       store,
		documents:   newRegistry[Document]("document"),
		users:       newRegistry[User]("user"),
		loans:       newRegistry[Loan]("loan"),
		nextLoanSeq: 1,
		logger:      slog.New(slog.DiscardHandler),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory registries with the persisted snapshot and
// recomputes the loan id sequence as max seen + 1.
func (s *Service) Load(ctx context.Context) error {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents = newRegistry[Document]("document")
	s.users = newRegistry[User]("user")
	s.loans = newRegistry[Loan]("loan")
	s.nextLoanSeq = 1

	for _, d := range snap.Documents {
		s.documents.put(d.ID, d)
	}
	for _, u := range snap.Users {
		s.users.put(u.ID, u)
	}
	for _, l := range snap.Loans {
		s.loans.put(l.ID, l)
		if seq, ok := loanSequence(l.ID); ok && seq >= s.nextLoanSeq {
			s.nextLoanSeq = seq + 1
		}
	}

	s.logger.Info("registries loaded",
		"documents", s.documents.size(),
		"users", s.users.size(),
		"loans", s.loans.size(),
		"next_loan_seq", s.nextLoanSeq,
	)
	return nil
}

// ---- Document operations ----

// AddDocument validates the per-kind parameters, inserts the document, and
// persists the snapshot.
func (s *Service) AddDocument(ctx context.Context, params DocumentParams) (Document, error) {
	if params == nil {
		return Document{}, fmt.Errorf("%w: no parameters", ErrInvalidParams)
	}
	if err := params.Validate(); err != nil {
		return Document{}, err
	}
	doc := params.build()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.documents.insert(doc.ID, doc); err != nil {
		return Document{}, err
	}
	if err := s.persistLocked(ctx, "add document"); err != nil {
		return doc, err
	}

	s.logger.Info("document added", "id", doc.ID, "kind", string(doc.Kind))
	return doc, nil
}

// RemoveDocument deletes a document from the catalog. A document that is on
// loan is still referenced by a live loan and cannot be removed.
func (s *Service) RemoveDocument(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents.lookup(id)
	if !ok {
		return fmt.Errorf("%w: document %s", ErrNotFound, id)
	}
	if !doc.Available {
		return fmt.Errorf("%w: document %s is on loan", ErrReferentialIntegrity, id)
	}

	s.documents.remove(id)
	if err := s.persistLocked(ctx, "remove document"); err != nil {
		return err
	}

	s.logger.Info("document removed", "id", id)
	return nil
}

// FindDocument returns the document with the given id.
func (s *Service) FindDocument(id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents.lookup(id)
	if !ok {
		return Document{}, fmt.Errorf("%w: document %s", ErrNotFound, id)
	}
	return doc, nil
}

// Documents lists the whole catalog, sorted by id.
func (s *Service) Documents() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedDocuments(s.documents.values())
}

// AvailableDocuments lists documents not currently on loan, sorted by id.
func (s *Service) AvailableDocuments() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Document
	for _, d := range s.documents.values() {
		if d.Available {
			out = append(out, d)
		}
	}
	return sortedDocuments(out)
}

// SearchDocuments applies the given strategy to the full catalog. The query
// is trimmed and lower-cased first; a blank query matches nothing rather
// than everything. A nil matcher searches titles.
func (s *Service) SearchDocuments(matcher Matcher, query string) []Document {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	if matcher == nil {
		matcher = TitleMatcher{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Document
	for _, d := range s.documents.values() {
		if matcher.Match(d, query) {
			out = append(out, d)
		}
	}
	return sortedDocuments(out)
}

// ---- User operations ----

// RegisterUser adds a borrower. A zero registration date is stamped with the
// current date; CurrentLoans always starts empty.
func (s *Service) RegisterUser(ctx context.Context, u User) (User, error) {
	if err := validateUser(u); err != nil {
		return User{}, err
	}
	if u.RegistrationDate.IsZero() {
		u.RegistrationDate = DateOnly(s.now())
	} else {
		u.RegistrationDate = DateOnly(u.RegistrationDate)
	}
	u.CurrentLoans = nil

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.users.insert(u.ID, u); err != nil {
		return User{}, err
	}
	if err := s.persistLocked(ctx, "register user"); err != nil {
		return u, err
	}

	s.logger.Info("user registered", "id", u.ID, "type", string(u.Type))
	return u, nil
}

// FindUser returns the user with the given id.
func (s *Service) FindUser(id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users.lookup(id)
	if !ok {
		return User{}, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	return u, nil
}

// Users lists all registered users, sorted by id.
func (s *Service) Users() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.users.values()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ---- Loan operations ----

// CreateLoan lends a document to a user. On success the document flips to
// unavailable, the user's held set grows, the loan starts ACTIVE with a due
// date two weeks out, the snapshot is persisted, and observers are notified.
func (s *Service) CreateLoan(ctx context.Context, userID, documentID string) (Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users.lookup(userID)
	if !ok {
		return Loan{}, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	doc, ok := s.documents.lookup(documentID)
	if !ok {
		return Loan{}, fmt.Errorf("%w: document %s", ErrNotFound, documentID)
	}
	if !user.CanBorrow() {
		return Loan{}, fmt.Errorf("%w: user %s holds %d of %d",
			ErrQuotaExceeded, userID, len(user.CurrentLoans), user.Type.MaxLoans())
	}
	if !doc.Available {
		return Loan{}, fmt.Errorf("%w: document %s", ErrUnavailable, documentID)
	}

	loanDate := DateOnly(s.now())
	loan := Loan{
		ID:         FormatLoanID(s.nextLoanSeq),
		UserID:     userID,
		DocumentID: documentID,
		LoanDate:   loanDate,
		DueDate:    loanDate.AddDate(0, 0, LoanPeriodDays),
		Status:     LoanActive,
	}
	s.nextLoanSeq++

	doc.Available = false
	user.CurrentLoans = append(user.CurrentLoans, documentID)

	s.documents.put(doc.ID, doc)
	s.users.put(user.ID, user)
	s.loans.put(loan.ID, loan)

	if err := s.persistLocked(ctx, "create loan"); err != nil {
		return loan, err
	}

	s.logger.Info("loan created", "id", loan.ID, "user", userID, "document", documentID, "due", loan.DueDate.Format(DateLayout))
	s.broadcast(Event{
		Kind:       EventLoanCreated,
		LoanID:     loan.ID,
		UserID:     userID,
		DocumentID: documentID,
		At:         s.now(),
	})
	return loan, nil
}

// ReturnLoan closes a loan. The transition to RETURNED is terminal: a second
// return fails and leaves the document and loan untouched.
func (s *Service) ReturnLoan(ctx context.Context, loanID string) (Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loan, ok := s.loans.lookup(loanID)
	if !ok {
		return Loan{}, fmt.Errorf("%w: loan %s", ErrNotFound, loanID)
	}
	if loan.Status == LoanReturned {
		return Loan{}, fmt.Errorf("%w: loan %s", ErrAlreadyReturned, loanID)
	}

	returned := DateOnly(s.now())
	loan.ReturnDate = &returned
	loan.Status = LoanReturned
	s.loans.put(loan.ID, loan)

	if doc, ok := s.documents.lookup(loan.DocumentID); ok {
		doc.Available = true
		s.documents.put(doc.ID, doc)
	}
	if user, ok := s.users.lookup(loan.UserID); ok {
		user.CurrentLoans = user.withoutLoan(loan.DocumentID)
		s.users.put(user.ID, user)
	}

	if err := s.persistLocked(ctx, "return loan"); err != nil {
		return loan, err
	}

	s.logger.Info("loan returned", "id", loan.ID, "user", loan.UserID, "document", loan.DocumentID)
	s.broadcast(Event{
		Kind:       EventLoanReturned,
		LoanID:     loan.ID,
		UserID:     loan.UserID,
		DocumentID: loan.DocumentID,
		At:         s.now(),
	})
	return loan, nil
}

// ActiveLoans lists loans that are out and not yet past due, sorted by id.
func (s *Service) ActiveLoans() []Loan {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	var out []Loan
	for _, l := range s.loans.values() {
		if l.Status != LoanReturned && !l.OverdueAt(now) {
			out = append(out, l)
		}
	}
	return sortedLoans(out)
}

// OverdueLoans lists loans past their due date, sorted by id. Overdue-ness is
// derived from the live date comparison; as a side effect the stored status
// of qualifying loans is promoted to OVERDUE so listings stay consistent.
// The promotion is not persisted here; the next mutating operation's
// snapshot write carries it to disk.
func (s *Service) OverdueLoans() []Loan {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var out []Loan
	for _, l := range s.loans.values() {
		if !l.OverdueAt(now) {
			continue
		}
		if l.Status == LoanActive {
			l.Status = LoanOverdue
			s.loans.put(l.ID, l)
		}
		out = append(out, l)
	}
	return sortedLoans(out)
}

// LoansForUser lists every loan, in any status, naming the given user.
func (s *Service) LoansForUser(userID string) []Loan {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Loan
	for _, l := range s.loans.values() {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return sortedLoans(out)
}

// NotifyOverdue broadcasts one overdue event per overdue loan and returns how
// many were sent. Promotion follows OverdueLoans semantics.
func (s *Service) NotifyOverdue(ctx context.Context) int {
	overdue := s.OverdueLoans()
	now := s.now()
	for _, l := range overdue {
		s.broadcast(Event{
			Kind:        EventLoanOverdue,
			LoanID:      l.ID,
			UserID:      l.UserID,
			DocumentID:  l.DocumentID,
			DaysOverdue: l.DaysOverdue(now),
			At:          now,
		})
	}
	return len(overdue)
}

// ---- Statistics ----

// Statistics are registry counts at one instant, always recomputed.
type Statistics struct {
	TotalDocuments     int
	AvailableDocuments int
	TotalUsers         int
	ActiveLoans        int
	OverdueLoans       int
}

// Statistics recomputes counts from current registry contents.
func (s *Service) Statistics() Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Statistics{
		TotalDocuments: s.documents.size(),
		TotalUsers:     s.users.size(),
	}
	for _, d := range s.documents.values() {
		if d.Available {
			stats.AvailableDocuments++
		}
	}
	now := s.now()
	for _, l := range s.loans.values() {
		switch {
		case l.Status == LoanReturned:
		case l.OverdueAt(now):
			stats.OverdueLoans++
		default:
			stats.ActiveLoans++
		}
	}
	return stats
}

// ---- internals ----

// persistLocked snapshots all three registries and hands them to the store.
// Callers hold the write lock. On failure the in-memory mutation stands;
// there is no two-phase commit, the caller gets ErrPersistence and must treat
// the state as changed but durability unconfirmed.
func (s *Service) persistLocked(ctx context.Context, op string) error {
	snap := Snapshot{
		Documents: s.documents.values(),
		Users:     s.users.values(),
		Loans:     s.loans.values(),
	}
	if err := s.store.Save(ctx, snap); err != nil {
		s.logger.Error("snapshot write failed", "op", op, "error", err)
		return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
	}
	return nil
}

func (s *Service) broadcast(e Event) {
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(e)
	}
}

func validateUser(u User) error {
	if strings.TrimSpace(u.ID) == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidParams)
	}
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("%w: user name is required", ErrInvalidParams)
	}
	if _, err := ParseUserType(string(u.Type)); err != nil {
		return err
	}
	return fieldsFitRecord(map[string]string{
		"user id": u.ID,
		"name":    u.Name,
		"email":   u.Email,
		"phone":   u.Phone,
	})
}

func sortedDocuments(docs []Document) []Document {
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs
}

func sortedLoans(loans []Loan) []Loan {
	sort.Slice(loans, func(i, j int) bool { return loans[i].ID < loans[j].ID })
	return loans
}
