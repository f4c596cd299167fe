package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventRecord is the envelope persisted to the event log and streamed to sinks.
type EventRecord struct {
	Seq     uint64          `json:"seq"`
	Kind    string          `json:"kind"`
	Pool    Pubkey          `json:"pool"`
	At      int64           `json:"at"`
	Payload json.RawMessage `json:"payload"`
}

// NewEventRecord marshals payload into an envelope. Seq is assigned by the store.
func NewEventRecord(kind string, pool Pubkey, at time.Time, payload interface{}) (EventRecord, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return EventRecord{}, fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	return EventRecord{
		Kind:    kind,
		Pool:    pool,
		At:      at.Unix(),
		Payload: raw,
	}, nil
}

// MarshalJSON ensures EventRecord is encoded with stable field names.
func (er EventRecord) MarshalJSON() ([]byte, error) {
	type Alias EventRecord
	return json.Marshal(Alias(er))
}

// UnmarshalJSON decodes an EventRecord from JSON.
func (er *EventRecord) UnmarshalJSON(data []byte) error {
	type Alias EventRecord
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if a.Kind == "" {
		return fmt.Errorf("event record missing kind")
	}
	*er = EventRecord(a)
	return nil
}

// Decode unmarshals the payload into out.
func (er EventRecord) Decode(out interface{}) error {
	if err := json.Unmarshal(er.Payload, out); err != nil {
		return fmt.Errorf("decode %s payload: %w", er.Kind, err)
	}
	return nil
}
