package notify

import (
	"fmt"
	"os"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"biblio/pkg/core"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JournalObserver appends each event as one JSON line to a file, giving an
// audit trail of loan activity independent of the registry snapshots.
type JournalObserver struct {
	mu   sync.Mutex
	path string
}

// NewJournalObserver creates a journal writing to path. The file is created
// on first delivery.
func NewJournalObserver(path string) *JournalObserver {
	return &JournalObserver{path: path}
}

func (o *JournalObserver) Name() string {
	return "journal:" + o.path
}

func (o *JournalObserver) Notify(e core.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	f, err := os.OpenFile(o.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}
	return nil
}
