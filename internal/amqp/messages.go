package amqp

import (
	"encoding/json"
	"time"
)

// LedgerChangedMessage tells other processes that an owner's ledger changed.
// It carries no record data; consumers re-query the store for the owner.
type LedgerChangedMessage struct {
	OwnerID   string    `json:"ownerId"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerChangedMessage(ownerID string) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		OwnerID:   ownerID,
		Timestamp: time.Now(),
	}
}

func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
