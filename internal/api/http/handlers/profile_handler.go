package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/solicitud-service/internal/api/dto"
	"github.com/spec-kit/solicitud-service/internal/auth"
	"github.com/spec-kit/solicitud-service/internal/service"
	apperrors "github.com/spec-kit/solicitud-service/pkg/util"
)

// ProfileHandler exposes the authenticated user's profile.
type ProfileHandler struct {
	auth *service.AuthService
}

// NewProfileHandler constructs handler.
func NewProfileHandler(authService *service.AuthService) *ProfileHandler {
	return &ProfileHandler{auth: authService}
}

// Get handles GET /api/profile.
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("missing token")
	}

	user, err := h.auth.Profile(c.Context(), identity.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": dto.NewUserResponse(user)})
}

// Update handles PUT /api/profile.
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("missing token")
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}

	user, err := h.auth.UpdateProfile(c.Context(), identity.ID, req.Name, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": dto.NewUserResponse(user)})
}
