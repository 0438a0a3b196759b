package amqp

import (
	"testing"
	"time"
)

func TestLedgerChangedMessageRoundTrip(t *testing.T) {
	msg := NewLedgerChangedMessage("alice")
	if msg.OwnerID != "alice" {
		t.Fatalf("owner = %q", msg.OwnerID)
	}
	if time.Since(msg.Timestamp) > time.Minute {
		t.Fatalf("timestamp not set: %v", msg.Timestamp)
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := LedgerChangedMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.OwnerID != msg.OwnerID {
		t.Fatalf("owner after round trip = %q", got.OwnerID)
	}
}

func TestLedgerChangedMessageRejectsGarbage(t *testing.T) {
	if _, err := LedgerChangedMessageFromJSON([]byte("not json")); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}
