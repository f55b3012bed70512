package amqp

import (
	"encoding/json"
	"time"
)

// ReminderMessage notifies that a calendar event's reminder came due. It
// carries enough to render the notification without a database round trip.
type ReminderMessage struct {
	EventID   string    `json:"event_id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	DueAt     time.Time `json:"due_at"`
	Timestamp time.Time `json:"timestamp"`
}

func NewReminderMessage(eventID, ownerID, title string, dueAt time.Time) *ReminderMessage {
	return &ReminderMessage{
		EventID:   eventID,
		OwnerID:   ownerID,
		Title:     title,
		DueAt:     dueAt,
		Timestamp: time.Now(),
	}
}

func (m *ReminderMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReminderMessageFromJSON(data []byte) (*ReminderMessage, error) {
	var msg ReminderMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
