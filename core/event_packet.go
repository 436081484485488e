package core

import "github.com/google/uuid"

// EventPacket wraps an event for delivery to the live listener. Every packet
// carries the id of the turn that produced it so the transport can route
// fragments into the right message bubble.
type EventPacket struct {
	Event   IEvent
	TurnID  string // Identifier of the turn this event belongs to.
	Uid     string // Unique identifier for tracking the event packet.
	Relayer string // Identifier of the stage that emitted the event.
}

func NewEventPacket(event IEvent, turnID string, relayer string) *EventPacket {
	return &EventPacket{
		Event:   event,
		TurnID:  turnID,
		Uid:     uuid.New().String(),
		Relayer: relayer,
	}
}
