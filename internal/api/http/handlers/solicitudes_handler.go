package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/solicitud-service/internal/api/dto"
	"github.com/spec-kit/solicitud-service/internal/auth"
	"github.com/spec-kit/solicitud-service/internal/service"
	apperrors "github.com/spec-kit/solicitud-service/pkg/util"
)

// SolicitudesHandler manages solicitud endpoints.
type SolicitudesHandler struct {
	service *service.SolicitudService
}

// NewSolicitudesHandler constructs handler.
func NewSolicitudesHandler(solicitudService *service.SolicitudService) *SolicitudesHandler {
	return &SolicitudesHandler{service: solicitudService}
}

// Create handles POST /api/solicitudes.
func (h *SolicitudesHandler) Create(c *fiber.Ctx) error {
	if _, ok := auth.IdentityFromContext(c); !ok {
		return apperrors.NewUnauthorized("missing token")
	}

	var req dto.CreateSolicitudRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}

	var scheduledDate time.Time
	if req.Date != "" {
		parsed, err := time.Parse(dto.DateLayout, req.Date)
		if err != nil {
			return apperrors.NewValidationError("date must be formatted as YYYY-MM-DD")
		}
		scheduledDate = parsed
	}

	solicitud, err := h.service.Create(c.Context(), service.SolicitudCreateInput{
		Title:         req.Title,
		Description:   req.Description,
		RequesterName: req.RequesterName,
		ScheduledDate: scheduledDate,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"solicitud": dto.NewSolicitudResponse(solicitud)})
}

// ListPending handles GET /api/solicitudes/pendientes.
func (h *SolicitudesHandler) ListPending(c *fiber.Ctx) error {
	if _, ok := auth.IdentityFromContext(c); !ok {
		return apperrors.NewUnauthorized("missing token")
	}

	solicitudes, err := h.service.ListPending(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"solicitudes": dto.NewSolicitudResponses(solicitudes)})
}

// Claim handles POST /api/solicitudes/:id/aceptar.
func (h *SolicitudesHandler) Claim(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("missing token")
	}

	solicitud, err := h.service.Claim(c.Context(), c.Params("id"), *identity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"solicitud": dto.NewSolicitudResponse(solicitud)})
}

// ListClaimed handles GET /api/solicitudes/aceptadas.
func (h *SolicitudesHandler) ListClaimed(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("missing token")
	}

	solicitudes, err := h.service.ListClaimedBy(c.Context(), identity.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"solicitudes": dto.NewSolicitudResponses(solicitudes)})
}
