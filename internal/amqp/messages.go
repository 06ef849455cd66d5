package amqp

import (
	"encoding/json"
	"time"
)

const (
	KindUpsert MessageKind = "upsert"
	KindDelete MessageKind = "delete"
)

// MessageKind discriminates what the sync worker should do with a
// transaction reference.
type MessageKind string

// TransactionSyncMessage is the lightweight export queue payload. It
// carries only the ID and version; the worker fetches the row itself, so a
// stale message after a rapid edit still exports the latest state.
type TransactionSyncMessage struct {
	Kind      MessageKind `json:"kind"`
	ID        string      `json:"id"`
	Version   int64       `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
}

func NewUpsertMessage(id string, version int64) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		Kind:      KindUpsert,
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func NewDeleteMessage(id string) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		Kind:      KindDelete,
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *TransactionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MessageFromJSON(data []byte) (*TransactionSyncMessage, error) {
	var msg TransactionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
