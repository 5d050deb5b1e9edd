package notifier

import (
	"context"
	"log"
)

// LogNotifier writes reports to the log, used when Telegram is not configured.
type LogNotifier struct{}

func (LogNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	log.Printf("[INFO] report:\n%s", text)
	return nil
}
