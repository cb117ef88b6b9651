package amqp

import (
	"encoding/json"
	"time"
)

// StoreChangedMessage announces that the blob under Key was persisted.
// Revision is the save time in unix nanoseconds; consumers re-read the
// store and use it to drop stale deliveries.
type StoreChangedMessage struct {
	Key       string    `json:"key"`
	Revision  int64     `json:"revision"`
	Timestamp time.Time `json:"timestamp"`
}

func NewStoreChangedMessage(key string, revision int64) *StoreChangedMessage {
	return &StoreChangedMessage{
		Key:       key,
		Revision:  revision,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *StoreChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func StoreChangedMessageFromJSON(data []byte) (*StoreChangedMessage, error) {
	var msg StoreChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
