package domain

import "time"

// SolicitudStatus enumerates lifecycle states for solicitudes.
type SolicitudStatus string

const (
	SolicitudStatusPending SolicitudStatus = "PENDING"
	SolicitudStatusClaimed SolicitudStatus = "CLAIMED"
)

// Solicitud is the aggregate for help requests. The only legal transition is
// PENDING to CLAIMED, exactly once; ClaimedBy and ClaimedAt are set at the
// same instant as the transition and never afterwards.
type Solicitud struct {
	ID            string
	Title         string
	Description   string
	RequesterName string
	ScheduledDate time.Time
	Status        SolicitudStatus
	ClaimedBy     *string
	ClaimedAt     *time.Time
	CreatedAt     time.Time
}
