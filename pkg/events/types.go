package events

import "encoding/json"

// Event name constants
const (
	EngineChanged = "engine.changed"
)

// Event is a generic daemon event.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// EngineChangedEvent is published whenever the daemon swaps its engine,
// either after a config reload or after a setting was changed over HTTP.
// Clients should recalculate what they display.
type EngineChangedEvent struct {
	Reason       string  `json:"reason"`
	DefaultAngle float64 `json:"defaultAngle"`
	Trace        bool    `json:"trace"`
	Ts           int64   `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified generic type T.
// If Data is empty, it returns the zero value of T with a nil error.
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
