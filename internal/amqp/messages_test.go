package amqp

import (
	"testing"
	"time"
)

func TestMessageRoundTrip(t *testing.T) {
	msg := NewUpsertMessage("tx-123", 4)
	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	back, err := MessageFromJSON(data)
	if err != nil {
		t.Fatalf("MessageFromJSON: %v", err)
	}
	if back.Kind != KindUpsert || back.ID != "tx-123" || back.Version != 4 {
		t.Errorf("round trip mismatch: %+v", back)
	}
	if back.Timestamp.IsZero() || time.Since(back.Timestamp) > time.Minute {
		t.Errorf("timestamp not carried: %v", back.Timestamp)
	}
}

func TestDeleteMessage(t *testing.T) {
	msg := NewDeleteMessage("tx-9")
	if msg.Kind != KindDelete || msg.ID != "tx-9" || msg.Version != 0 {
		t.Errorf("unexpected delete message: %+v", msg)
	}
}

func TestMessageFromJSONMalformed(t *testing.T) {
	if _, err := MessageFromJSON([]byte("{not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}
