package client

import "log"

// Notification kinds surfaced to the host UI.
const (
	NotifySuccess = "success"
	NotifyWarning = "warning"
	NotifyError   = "error"
)

// LogNotifier writes notifications to the process log. The real UI sink is
// out of scope; the workflow only needs something fire-and-forget.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Notify(kind, message string) {
	log.Printf("[%s] %s", kind, message)
}
