package framework

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"
)

// EventType categorizes telemetry events.
type EventType string

const (
	EventPipelineStart  EventType = "pipeline_start"
	EventPipelineFinish EventType = "pipeline_finish"
	EventStageStart     EventType = "stage_start"
	EventStageFinish    EventType = "stage_finish"
	EventStageError     EventType = "stage_error"
	EventEscalation     EventType = "manual_escalation"
)

// Event captures structured telemetry data.
type Event struct {
	Type      EventType      `json:"type"`
	Stage     string         `json:"stage,omitempty"`
	RunID     string         `json:"run_id,omitempty"`
	Message   string         `json:"message,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Telemetry captures execution traces emitted by the pipeline. Tests swap in
// lightweight recorders; the CLI wires a logger or an NDJSON file.
type Telemetry interface {
	Emit(event Event)
}

// MultiplexTelemetry broadcasts events to multiple sinks.
type MultiplexTelemetry struct {
	Sinks []Telemetry
}

// Emit forwards the event to all registered sinks.
func (m MultiplexTelemetry) Emit(event Event) {
	for _, s := range m.Sinks {
		s.Emit(event)
	}
}

// LoggerTelemetry emits events via the standard logger. Every stage
// transition becomes visible without extra tooling.
type LoggerTelemetry struct {
	Logger *log.Logger
}

// Emit logs the event.
func (t LoggerTelemetry) Emit(event Event) {
	logger := t.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("[%s] stage=%s run=%s meta=%v msg=%s\n", event.Type, event.Stage, event.RunID, event.Metadata, event.Message)
}

// JSONFileTelemetry writes events as newline-delimited JSON to a file so
// external tools can tail the stream.
type JSONFileTelemetry struct {
	path string
	file *os.File
	enc  *json.Encoder
	mu   sync.Mutex
}

// NewJSONFileTelemetry opens (or creates) the log file.
func NewJSONFileTelemetry(path string) (*JSONFileTelemetry, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONFileTelemetry{path: path, file: f, enc: json.NewEncoder(f)}, nil
}

// Emit writes the JSON record.
func (j *JSONFileTelemetry) Emit(event Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.enc != nil {
		_ = j.enc.Encode(event)
	}
}

// Close releases the file handle.
func (j *JSONFileTelemetry) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file != nil {
		return j.file.Close()
	}
	return nil
}
