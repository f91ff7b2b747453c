// Package fs persists registry snapshots as flat delimited text files, one
// record per line, one file per registry.
package fs

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"biblio/pkg/core"
)

const (
	documentsFile = "documents.txt"
	usersFile     = "users.txt"
	loansFile     = "loans.txt"

	fileMode = 0644
)

// Config holds the configuration for the flat-file store.
type Config struct {
	// Dir is the data directory holding the three registry files.
	Dir string

	// Logger receives load warnings and write errors. Nil disables logging.
	Logger *slog.Logger
}

// Store implements core.Store on a directory of flat files. Every Save is a
// full-snapshot overwrite via an atomic rename; a partially corrupt file
// degrades a Load instead of failing it.
type Store struct {
	config Config

	mu            sync.RWMutex
	skippedLines  int
	watcherActive bool
}

// NewStore creates a flat-file store rooted at cfg.Dir.
func NewStore(cfg Config) *Store {
	return &Store{config: cfg}
}

var _ core.Store = (*Store)(nil)
var _ core.Watchable = (*Store)(nil)

// Initialize ensures the data directory exists.
func (s *Store) Initialize(ctx context.Context) error {
	if err := os.MkdirAll(s.config.Dir, 0755); err != nil {
		return fmt.Errorf("create data directory %s: %w", s.config.Dir, err)
	}
	return nil
}

// Load reads all three registry files. Missing files yield empty registries.
// A line that fails to parse is skipped with a logged warning and counted;
// it never aborts the load.
func (s *Store) Load(ctx context.Context) (core.Snapshot, error) {
	s.mu.Lock()
	s.skippedLines = 0
	s.mu.Unlock()

	var snap core.Snapshot

	docLines, err := s.readLines(documentsFile)
	if err != nil {
		return core.Snapshot{}, err
	}
	for _, line := range docLines {
		doc, err := parseDocument(line)
		if err != nil {
			s.skipLine(documentsFile, line, err)
			continue
		}
		snap.Documents = append(snap.Documents, doc)
	}

	userLines, err := s.readLines(usersFile)
	if err != nil {
		return core.Snapshot{}, err
	}
	for _, line := range userLines {
		u, err := parseUser(line)
		if err != nil {
			s.skipLine(usersFile, line, err)
			continue
		}
		snap.Users = append(snap.Users, u)
	}

	loanLines, err := s.readLines(loansFile)
	if err != nil {
		return core.Snapshot{}, err
	}
	for _, line := range loanLines {
		l, err := parseLoan(line)
		if err != nil {
			s.skipLine(loansFile, line, err)
			continue
		}
		snap.Loans = append(snap.Loans, l)
	}

	if s.config.Logger != nil {
		s.config.Logger.Debug("snapshot loaded",
			"documents", len(snap.Documents),
			"users", len(snap.Users),
			"loans", len(snap.Loans),
			"skipped_lines", s.SkippedLines(),
		)
	}
	return snap, nil
}

// Save replaces all three registry files with the snapshot contents.
func (s *Store) Save(ctx context.Context, snap core.Snapshot) error {
	docLines := make([]string, 0, len(snap.Documents))
	for _, d := range snap.Documents {
		docLines = append(docLines, encodeDocument(d))
	}
	if err := s.writeLines(documentsFile, docLines); err != nil {
		return err
	}

	userLines := make([]string, 0, len(snap.Users))
	for _, u := range snap.Users {
		userLines = append(userLines, encodeUser(u))
	}
	if err := s.writeLines(usersFile, userLines); err != nil {
		return err
	}

	loanLines := make([]string, 0, len(snap.Loans))
	for _, l := range snap.Loans {
		loanLines = append(loanLines, encodeLoan(l))
	}
	return s.writeLines(loansFile, loanLines)
}

// SkippedLines reports how many records the last Load dropped as malformed.
func (s *Store) SkippedLines() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.skippedLines
}

func (s *Store) readLines(name string) ([]string, error) {
	path := filepath.Join(s.config.Dir, name)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return lines, nil
}

func (s *Store) writeLines(name string, lines []string) error {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	path := filepath.Join(s.config.Dir, name)
	if err := writeFileAtomic(path, []byte(b.String()), fileMode); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (s *Store) skipLine(file, line string, err error) {
	s.mu.Lock()
	s.skippedLines++
	s.mu.Unlock()

	if s.config.Logger != nil {
		s.config.Logger.Warn("skipping malformed record", "file", file, "line", line, "error", err)
	}
}

func (s *Store) setWatcherActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watcherActive = active
}
