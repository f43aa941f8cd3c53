package amqp

import (
	"encoding/json"
	"time"

	"github.com/theirongolddev/footprint/internal/model"
)

// SnapshotMessage is the body published for each daemon event.
type SnapshotMessage struct {
	EventID     int64          `json:"event_id"`
	Type        string         `json:"type"`
	Source      string         `json:"source"`
	PublishedAt time.Time      `json:"published_at"`
	Snapshot    model.Snapshot `json:"snapshot"`
}

// NewSnapshotMessage creates a message stamped with the current time.
func NewSnapshotMessage(eventID int64, eventType, source string, snap model.Snapshot) *SnapshotMessage {
	return &SnapshotMessage{
		EventID:     eventID,
		Type:        eventType,
		Source:      source,
		PublishedAt: time.Now().UTC(),
		Snapshot:    snap,
	}
}

// ToJSON serializes the message.
func (m *SnapshotMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotMessageFromJSON decodes a message body.
func SnapshotMessageFromJSON(data []byte) (*SnapshotMessage, error) {
	var m SnapshotMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
