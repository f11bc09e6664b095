package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSolicitudCreated EventType = "solicitud_created"
	EventSolicitudClaimed EventType = "solicitud_claimed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	SolicitudID string      `json:"solicitud_id"`
	ActorID     *string     `json:"actor_id,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// SolicitudCreatedPayload payload.
type SolicitudCreatedPayload struct {
	Title         string `json:"title"`
	RequesterName string `json:"requester_name"`
	ScheduledDate string `json:"scheduled_date"`
}

// SolicitudClaimedPayload payload.
type SolicitudClaimedPayload struct {
	ClaimedBy string `json:"claimed_by"`
	Title     string `json:"title"`
}
