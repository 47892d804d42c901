// Package broadcast fans LiveState snapshots out to every screen of a workshop.
//
// Delivery is best effort and at most once. Every message carries a full
// snapshot, so a receiver that misses one simply waits for the next or
// re-derives from the server.
package broadcast

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/liveworkshop/go/internal/models"
)

// MessageType distinguishes why a snapshot was sent.
type MessageType string

const (
	// MessageStateSync carries slide or display-mode changes and cold snapshots.
	MessageStateSync MessageType = "STATE_SYNC"
	// MessageTimerUpdate carries the result of a timer command.
	MessageTimerUpdate MessageType = "TIMER_UPDATE"
)

// Message is the envelope put on the wire.
type Message struct {
	Type    MessageType       `json:"type"`
	Payload *models.LiveState `json:"payload"`
}

// Topic returns the per-workshop topic name.
func Topic(workshopID uuid.UUID) string {
	return "workshop:" + workshopID.String()
}

// Encode marshals an envelope.
func Encode(msgType MessageType, state *models.LiveState) ([]byte, error) {
	if state == nil {
		return nil, errors.New("broadcast: nil payload")
	}
	return json.Marshal(Message{Type: msgType, Payload: state})
}

// Decode parses an envelope and rejects unknown types or missing payloads.
func Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("decode broadcast message: %w", err)
	}
	switch msg.Type {
	case MessageStateSync, MessageTimerUpdate:
	default:
		return Message{}, fmt.Errorf("decode broadcast message: unknown type %q", msg.Type)
	}
	if msg.Payload == nil {
		return Message{}, errors.New("decode broadcast message: missing payload")
	}
	return msg, nil
}
