package core

type NotificationLevel string

const (
	NotifyInfo    NotificationLevel = "info"
	NotifySuccess NotificationLevel = "success"
	NotifyError   NotificationLevel = "error"
)

type Notification struct {
	Level   NotificationLevel
	Message string
}

// Notifier is any sink that can surface short user-facing messages
// (the presentation layer typically renders them as toasts).
type Notifier interface {
	Notify(level NotificationLevel, message string)
}
