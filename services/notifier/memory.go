package notifsvc

import (
	"sync"

	"github.com/kymanga/vifaa/core"
)

// Memory records notifications instead of displaying them. Used by tests to
// assert exactly what the user would have seen.
type Memory struct {
	mu            sync.Mutex
	notifications []core.Notification
}

var _ core.Notifier = (*Memory)(nil)

func NewMemoryNotifier() *Memory {
	return &Memory{}
}

func (n *Memory) Notify(level core.NotificationLevel, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, core.Notification{Level: level, Message: message})
}

func (n *Memory) Notifications() []core.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]core.Notification(nil), n.notifications...)
}

func (n *Memory) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = nil
}
