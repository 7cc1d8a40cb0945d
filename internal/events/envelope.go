package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const envelopeVersion = 1

// EventEnvelope wraps every storefront event. Events of one shopper session
// carry a gap-free sequence so consumers can order them per session.
type EventEnvelope struct {
	EventID       string          `json:"eventId"`
	EventName     string          `json:"eventName"`
	EventVersion  int             `json:"eventVersion"`
	Schema        string          `json:"schema"`
	Producer      string          `json:"producer"`
	SessionID     string          `json:"sessionId"`
	Sequence      int64           `json:"sequence"`
	CorrelationID string          `json:"correlationId,omitempty"`
	OccurredAt    time.Time       `json:"occurredAt"`
	Payload       json.RawMessage `json:"payload"`
}

func newEnvelope(meta EventMeta, seq int64, producer, name, schema string, payload any, occurredAt time.Time) (EventEnvelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return EventEnvelope{}, fmt.Errorf("marshal %s: %w", name, err)
	}
	return EventEnvelope{
		EventID:       uuid.NewString(),
		EventName:     name,
		EventVersion:  envelopeVersion,
		Schema:        schema,
		Producer:      producer,
		SessionID:     meta.SessionID,
		Sequence:      seq,
		CorrelationID: meta.CorrelationID,
		OccurredAt:    occurredAt,
		Payload:       raw,
	}, nil
}

// Validate checks an envelope read back from the broker.
func (e EventEnvelope) Validate(expectedName string, expectedVersion int) error {
	switch {
	case e.EventName != expectedName:
		return fmt.Errorf("unexpected eventName %q", e.EventName)
	case e.EventVersion != expectedVersion:
		return fmt.Errorf("unexpected eventVersion %d", e.EventVersion)
	case e.EventID == "":
		return errors.New("missing eventId")
	case e.SessionID == "":
		return errors.New("missing sessionId")
	case e.Sequence < 1:
		return fmt.Errorf("sequence %d out of range", e.Sequence)
	}
	return nil
}
