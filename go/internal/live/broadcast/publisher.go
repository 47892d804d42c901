package broadcast

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/liveworkshop/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Role is the capability a client was assigned for a workshop.
type Role string

const (
	RoleController Role = "controller"
	RoleViewer     Role = "viewer"
)

// ErrNotController is returned when a non-controller asks to publish.
var ErrNotController = errors.New("broadcast: only the controller may publish")

// Publisher puts snapshots on a workshop topic. Only the controller holds one.
type Publisher struct {
	transport Transport
}

// NewPublisher creates a Publisher for role, refusing every role but controller.
func NewPublisher(transport Transport, role Role) (*Publisher, error) {
	if role != RoleController {
		return nil, fmt.Errorf("%w: role %q", ErrNotController, role)
	}
	return &Publisher{transport: transport}, nil
}

// Publish sends state to its workshop's topic.
func (p *Publisher) Publish(ctx context.Context, msgType MessageType, state *models.LiveState) error {
	data, err := Encode(msgType, state)
	if err != nil {
		return err
	}
	if err := p.transport.Publish(ctx, Topic(state.WorkshopID), data); err != nil {
		return fmt.Errorf("publish %s for workshop %s: %w", msgType, state.WorkshopID, err)
	}
	return nil
}

// Subscriber receives decoded snapshots for workshops.
type Subscriber struct {
	transport Transport
}

// NewSubscriber creates a Subscriber over transport.
func NewSubscriber(transport Transport) *Subscriber {
	return &Subscriber{transport: transport}
}

// Subscribe calls fn with every valid message for the workshop. Messages that
// fail to decode are dropped.
func (s *Subscriber) Subscribe(workshopID uuid.UUID, fn func(Message)) (func(), error) {
	topic := Topic(workshopID)
	return s.transport.Subscribe(topic, func(data []byte) {
		msg, err := Decode(data)
		if err != nil {
			log.Warn().Err(err).Str("topic", topic).Msg("dropping undecodable broadcast")
			return
		}
		fn(msg)
	})
}
