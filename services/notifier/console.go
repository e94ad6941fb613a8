package notifsvc

import (
	"log"

	"github.com/kymanga/vifaa/core"
)

// consoleNotifier prints notifications to a standard library logger. It
// stands in for the presentation layer's toast stack outside a UI (CLI, dev).
type consoleNotifier struct {
	std *log.Logger
}

var _ core.Notifier = (*consoleNotifier)(nil)

func NewConsoleNotifier(std *log.Logger) core.Notifier {
	return &consoleNotifier{std: std}
}

func (n consoleNotifier) Notify(level core.NotificationLevel, message string) {
	n.std.Printf("[%s] %s", level, message)
}
