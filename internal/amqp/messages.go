package amqp

import (
	"encoding/json"
	"time"
)

const (
	EventBalanceChanged = "balance_changed"
	EventCreditSettled  = "credit_settled"
)

const (
	EntityCreditCard = "credit_card"
	EntityDebitCard  = "debit_card"
	EntityCredit     = "credit"
)

// LedgerEvent tells the worker that a balance moved. It carries the resulting
// balance so the audit trail can be built without re-reading the row.
type LedgerEvent struct {
	Type         string    `json:"type"`
	EntityKind   string    `json:"entity_kind"`
	EntityID     string    `json:"entity_id"`
	BalanceCents int64     `json:"balance_cents"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewLedgerEvent(eventType, entityKind, entityID string, balanceCents int64) *LedgerEvent {
	return &LedgerEvent{
		Type:         eventType,
		EntityKind:   entityKind,
		EntityID:     entityID,
		BalanceCents: balanceCents,
		Timestamp:    time.Now(),
	}
}

func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
