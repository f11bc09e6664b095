package dto

import (
	"time"

	"github.com/spec-kit/solicitud-service/internal/domain"
)

// DateLayout is the wire format for scheduled dates.
const DateLayout = "2006-01-02"

// CreateSolicitudRequest payload.
type CreateSolicitudRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	RequesterName string `json:"requesterName"`
	Date          string `json:"date"`
}

// SolicitudResponse is the outward solicitud representation.
type SolicitudResponse struct {
	ID            string                 `json:"id"`
	Title         string                 `json:"title"`
	Description   string                 `json:"description"`
	RequesterName string                 `json:"requesterName"`
	Date          string                 `json:"date"`
	Status        domain.SolicitudStatus `json:"status"`
	ClaimedBy     *string                `json:"claimedBy,omitempty"`
	ClaimedAt     *time.Time             `json:"claimedAt,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
}

// NewSolicitudResponse maps the domain solicitud.
func NewSolicitudResponse(solicitud *domain.Solicitud) SolicitudResponse {
	return SolicitudResponse{
		ID:            solicitud.ID,
		Title:         solicitud.Title,
		Description:   solicitud.Description,
		RequesterName: solicitud.RequesterName,
		Date:          solicitud.ScheduledDate.Format(DateLayout),
		Status:        solicitud.Status,
		ClaimedBy:     solicitud.ClaimedBy,
		ClaimedAt:     solicitud.ClaimedAt,
		CreatedAt:     solicitud.CreatedAt,
	}
}

// NewSolicitudResponses maps a list.
func NewSolicitudResponses(solicitudes []domain.Solicitud) []SolicitudResponse {
	items := make([]SolicitudResponse, 0, len(solicitudes))
	for i := range solicitudes {
		items = append(items, NewSolicitudResponse(&solicitudes[i]))
	}
	return items
}
