package models

import "time"

// Event types recorded in the device log.
const (
	EventConnect    = "CONNECT"
	EventDisconnect = "DISCONNECT"
	EventStart      = "START"
	EventPause      = "PAUSE"
	EventResume     = "RESUME"
	EventStepChange = "STEP_CHANGE"
	EventFinish     = "FINISH"
	EventStop       = "STOP"
	EventError      = "ERROR"
)

// DeviceEvent is a single log entry.
type DeviceEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // CONNECT | DISCONNECT | START | PAUSE | RESUME | STEP_CHANGE | FINISH | STOP | ERROR
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
