package graph

import (
	"encoding/json"
	"errors"
	"time"
)

// ShapeGraphMessage is the message published for each compiled shape graph.
type ShapeGraphMessage struct {
	ID          string    `json:"id"`
	RunID       string    `json:"run_id"`
	Source      string    `json:"source"`
	Mode        string    `json:"mode"`
	Format      string    `json:"format"`
	MIMEType    string    `json:"mime_type"`
	Modules     []string  `json:"modules"`
	ShapeCount  int       `json:"shape_count"`
	Body        string    `json:"body"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Validate checks the message carries an ID and a body.
func (m *ShapeGraphMessage) Validate() error {
	if m.ID == "" {
		return errors.New("message ID is required")
	}
	if m.Body == "" {
		return errors.New("message body is required")
	}
	return nil
}

// Marshal encodes the message as JSON.
func (m *ShapeGraphMessage) Marshal() ([]byte, error) {
	return json.Marshal(m)
}
