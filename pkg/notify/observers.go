package notify

import (
	"fmt"
	"io"
	"log/slog"

	"biblio/pkg/core"
)

// ConsoleObserver prints notifications to a writer, typically stdout.
type ConsoleObserver struct {
	label string
	w     io.Writer
}

// NewConsoleObserver creates a console observer with a display label.
func NewConsoleObserver(label string, w io.Writer) *ConsoleObserver {
	return &ConsoleObserver{label: label, w: w}
}

func (o *ConsoleObserver) Name() string {
	return "console:" + o.label
}

func (o *ConsoleObserver) Notify(e core.Event) error {
	_, err := fmt.Fprintf(o.w, "[NOTIFICATION - %s] %s\n", o.label, e.Message())
	return err
}

// EmailObserver simulates an email delivery by logging the message that would
// be sent. There is no real mail transport behind it.
type EmailObserver struct {
	email  string
	logger *slog.Logger
}

// NewEmailObserver creates a simulated email observer. A nil logger disables it.
func NewEmailObserver(email string, logger *slog.Logger) *EmailObserver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &EmailObserver{email: email, logger: logger}
}

func (o *EmailObserver) Name() string {
	return "email:" + o.email
}

func (o *EmailObserver) Notify(e core.Event) error {
	o.logger.Info("email notification sent",
		"to", o.email,
		"subject", "Library Notification",
		"body", e.Message(),
	)
	return nil
}
