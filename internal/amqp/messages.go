package amqp

import (
	"encoding/json"
	"time"

	"caixa/internal/core"
)

// EntryRecordedMessage carries one accepted ledger entry to the mirror
// worker. It is self-contained: the worker never reads the snapshot store.
type EntryRecordedMessage struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	AmountCents int64     `json:"amount_cents"`
	Category    string    `json:"category"`
	RecordedAt  time.Time `json:"recorded_at"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewEntryRecordedMessage(e core.Entry) *EntryRecordedMessage {
	return &EntryRecordedMessage{
		ID:          e.ID,
		Kind:        string(e.Kind),
		AmountCents: e.Amount.Cents,
		Category:    e.Category,
		RecordedAt:  e.RecordedAt,
		Timestamp:   time.Now(),
	}
}

// Entry reconstructs the ledger entry the message describes.
func (m *EntryRecordedMessage) Entry() core.Entry {
	return core.Entry{
		ID:         m.ID,
		Kind:       core.Kind(m.Kind),
		Amount:     core.Money{Cents: m.AmountCents},
		Category:   m.Category,
		RecordedAt: m.RecordedAt,
	}
}

func (m *EntryRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EntryRecordedMessageFromJSON(data []byte) (*EntryRecordedMessage, error) {
	var msg EntryRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
