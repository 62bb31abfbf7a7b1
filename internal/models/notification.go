package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	// StatusPending marks a notification that has not been dispatched yet.
	StatusPending = "pending"
	// StatusSent marks a notification acknowledged by the push provider.
	StatusSent = "sent"
	// StatusFailed marks an unrecoverable dispatch failure.
	StatusFailed = "failed"
)

// Notification is the dispatch work record written by the app when a chat
// message is sent. The dispatcher reads it once, sends at most one push and
// moves it to a terminal status.
type Notification struct {
	ID             string     `gorm:"primaryKey" json:"id"`
	RecipientID    string     `json:"recipientId"`
	RecipientToken string     `json:"recipientToken"`
	Title          string     `json:"title"`
	Body           string     `json:"body"`
	ImageURL       string     `json:"imageUrl,omitempty"`
	Data           DataMap    `gorm:"type:jsonb" json:"data,omitempty"`
	Status         string     `json:"status"`
	MessageID      string     `json:"messageId,omitempty"`
	ErrorDetail    string     `json:"error,omitempty"`
	SentAt         *time.Time `json:"sentAt,omitempty"`
	FailedAt       *time.Time `json:"failedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Terminal reports whether the notification already reached sent or failed.
func (n *Notification) Terminal() bool {
	return n.Status == StatusSent || n.Status == StatusFailed
}

// DataMap is a string-to-string payload stored as a JSON column and carried
// through to the receiving client unmodified.
type DataMap map[string]string

func (m DataMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *DataMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported type %T for DataMap", value)
	}
}
