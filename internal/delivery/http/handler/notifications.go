package handler

import (
	"sync"

	"github.com/lisiobuddy/lisiobuddy-backend/internal/usecase/directory"
)

// Notification is a user-visible message raised while serving a request.
type Notification struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Severity string `json:"severity"`
}

// notificationCollector gathers the directory's notifications so they can be
// returned in the response body.
type notificationCollector struct {
	mu    sync.Mutex
	items []Notification
}

func newNotificationCollector() *notificationCollector {
	return &notificationCollector{items: []Notification{}}
}

func (n *notificationCollector) Notify(title, body string, severity directory.Severity) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, Notification{
		Title:    title,
		Body:     body,
		Severity: string(severity),
	})
}

func (n *notificationCollector) All() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification{}, n.items...)
}
