// Package notify defines the notification sink collaborator. Delivery and
// display are external; the core only hands messages over.
package notify

import (
	"sync"
	"time"

	"auction-system/internal/models"
	"auction-system/utils"
)

// Sink receives best-effort notifications for an account.
type Sink interface {
	Notify(accountID string, kind models.NotificationKind, text string)
}

// Memory records notifications in memory and logs them. It backs the HTTP
// layer in development and the tests.
type Memory struct {
	mu        sync.Mutex
	byAccount map[string][]models.Notification
}

// NewMemory creates an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{byAccount: make(map[string][]models.Notification)}
}

// Notify records the notification.
func (m *Memory) Notify(accountID string, kind models.NotificationKind, text string) {
	m.mu.Lock()
	m.byAccount[accountID] = append(m.byAccount[accountID], models.Notification{
		AccountID: accountID,
		Kind:      kind,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	})
	m.mu.Unlock()
	utils.Info("notification", map[string]any{
		"account_id": accountID,
		"kind":       string(kind),
		"text":       text,
	})
}

// ForAccount returns the notifications recorded for an account, oldest first.
func (m *Memory) ForAccount(accountID string) []models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Notification(nil), m.byAccount[accountID]...)
}
