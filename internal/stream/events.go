// Package stream implements SSE streaming of release pipeline progress.
package stream

import "time"

// EventType identifies a stream event.
type EventType string

const (
	EventRunStarted    EventType = "RUN_STARTED"
	EventRunFinished   EventType = "RUN_FINISHED"
	EventRunError      EventType = "RUN_ERROR"
	EventStageStarted  EventType = "STAGE_STARTED"
	EventStageFinished EventType = "STAGE_FINISHED"
	EventStateSnapshot EventType = "STATE_SNAPSHOT"
	EventStateDelta    EventType = "STATE_DELTA"
)

// Event is a single SSE event emitted to the client.
type Event struct {
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	PipelineID string    `json:"pipeline_id"`
	Data       any       `json:"data,omitempty"`
}

// StateSnapshotData carries the full pipeline state in a STATE_SNAPSHOT event.
type StateSnapshotData struct {
	Stage string `json:"stage"`
	State any    `json:"state"`
}

// StateDeltaData carries field-level deltas in a STATE_DELTA event.
type StateDeltaData struct {
	Stage   string  `json:"stage"`
	Patches []Patch `json:"patches"`
}

// Patch is an RFC 6902-style JSON Patch operation.
type Patch struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}

// StageData carries stage transition info.
type StageData struct {
	Stage string `json:"stage"`
}

// ErrorData carries error info for RUN_ERROR events.
type ErrorData struct {
	Message string `json:"message"`
}
