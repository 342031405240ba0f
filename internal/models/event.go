package models

import "time"

// ContractEvent is the storage shape of an event emitted by a factory or the
// master.
type ContractEvent struct {
	ID         string `json:"id"`
	ContractID string `json:"contract_id"` // emitting contract
	Family     string `json:"family"`
	EventType  string `json:"event_type"`

	Actor  string `json:"actor,omitempty"`
	Target string `json:"target,omitempty"`

	LedgerSeq uint32                 `json:"ledger_seq"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// EventFilter provides criteria for filtering events
type EventFilter struct {
	ContractID string
	EventType  string
	Limit      int
	Offset     int
}
