package emitter

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// Message types on the output stream
const (
	TypeSchema = "SCHEMA"
	TypeRecord = "RECORD"
	TypeState  = "STATE"
)

// Emitter serializes schema, record and state messages as JSON lines on a
// single writer. Records for a stream must be preceded by that stream's
// schema; the caller owns that ordering.
type Emitter struct {
	mu  sync.Mutex
	out io.Writer
}

// New creates an emitter writing to out
func New(out io.Writer) *Emitter {
	return &Emitter{out: out}
}

type schemaMessage struct {
	Type          string                 `json:"type"`
	Stream        string                 `json:"stream"`
	Schema        map[string]interface{} `json:"schema"`
	KeyProperties []string               `json:"key_properties"`
}

type recordMessage struct {
	Type   string      `json:"type"`
	Stream string      `json:"stream"`
	Record interface{} `json:"record"`
}

type stateMessage struct {
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

// WriteSchema announces a stream's shape and key properties
func (e *Emitter) WriteSchema(stream string, schema map[string]interface{}, keyProperties []string) error {
	return e.write(schemaMessage{
		Type:          TypeSchema,
		Stream:        stream,
		Schema:        schema,
		KeyProperties: keyProperties,
	})
}

// WriteRecord emits one record for a previously announced stream
func (e *Emitter) WriteRecord(stream string, record interface{}) error {
	return e.write(recordMessage{
		Type:   TypeRecord,
		Stream: stream,
		Record: record,
	})
}

// WriteState emits a resumable state snapshot
func (e *Emitter) WriteState(value interface{}) error {
	return e.write(stateMessage{
		Type:  TypeState,
		Value: value,
	})
}

func (e *Emitter) write(msg interface{}) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.out.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}
