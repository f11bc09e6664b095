package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/spec-kit/solicitud-service/internal/domain"
	"github.com/spec-kit/solicitud-service/internal/events"
	"github.com/spec-kit/solicitud-service/internal/repository"
	apperrors "github.com/spec-kit/solicitud-service/pkg/util"
)

// PendingCache caches the pending list. Implementations must be advisory:
// a miss or failure only means falling back to the repository.
type PendingCache interface {
	Get(ctx context.Context) ([]domain.Solicitud, bool)
	Set(ctx context.Context, list []domain.Solicitud) error
	Invalidate(ctx context.Context) error
}

// SolicitudCreateInput carries caller-provided fields for a new solicitud.
type SolicitudCreateInput struct {
	Title         string
	Description   string
	RequesterName string
	ScheduledDate time.Time
}

// SolicitudService owns the solicitud ledger and the claim transition.
type SolicitudService struct {
	solicitudes repository.SolicitudRepository
	cache       PendingCache
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// SolicitudDependencies bundles collaborator requirements.
type SolicitudDependencies struct {
	SolicitudRepo repository.SolicitudRepository
	Cache         PendingCache
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
}

// NewSolicitudService creates the service.
func NewSolicitudService(deps SolicitudDependencies) *SolicitudService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SolicitudService{
		solicitudes: deps.SolicitudRepo,
		cache:       deps.Cache,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
	}
}

// Create records a new PENDING solicitud.
func (s *SolicitudService) Create(ctx context.Context, input SolicitudCreateInput) (*domain.Solicitud, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.RequesterName = strings.TrimSpace(input.RequesterName)
	if input.Title == "" || input.RequesterName == "" {
		return nil, apperrors.NewValidationError("title and requesterName are required")
	}
	if input.ScheduledDate.IsZero() {
		return nil, apperrors.NewValidationError("a valid date is required")
	}

	solicitud := &domain.Solicitud{
		Title:         input.Title,
		Description:   input.Description,
		RequesterName: input.RequesterName,
		ScheduledDate: input.ScheduledDate,
		Status:        domain.SolicitudStatusPending,
	}
	if err := s.solicitudes.Create(ctx, solicitud); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx)
	s.publishEvent(ctx, events.EventSolicitudCreated, solicitud.ID, nil, events.SolicitudCreatedPayload{
		Title:         solicitud.Title,
		RequesterName: solicitud.RequesterName,
		ScheduledDate: solicitud.ScheduledDate.Format("2006-01-02"),
	})
	return solicitud, nil
}

// ListPending returns all PENDING solicitudes ordered by scheduled date.
func (s *SolicitudService) ListPending(ctx context.Context) ([]domain.Solicitud, error) {
	if s.cache != nil {
		if list, ok := s.cache.Get(ctx); ok {
			return list, nil
		}
	}

	list, err := s.solicitudes.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, list); err != nil {
			s.logger.Debug("pending cache set failed", zap.Error(err))
		}
	}
	return list, nil
}

// ListClaimedBy returns the solicitudes claimed by the given user, most
// recently claimed first.
func (s *SolicitudService) ListClaimedBy(ctx context.Context, userID string) ([]domain.Solicitud, error) {
	return s.solicitudes.ListClaimedBy(ctx, userID)
}

// Claim transitions a solicitud from PENDING to CLAIMED on behalf of the
// verified identity. The test and the set are one conditional write at the
// store; a losing caller gets a terminal conflict, never a retry. The error
// deliberately does not distinguish "already claimed" from "does not exist":
// zero affected rows is ambiguous by construction.
func (s *SolicitudService) Claim(ctx context.Context, solicitudID string, claimant domain.Identity) (*domain.Solicitud, error) {
	solicitud, err := s.solicitudes.Claim(ctx, solicitudID, claimant.ID)
	if err != nil {
		// A syntactically invalid id fails the UUID cast before the
		// conditional write runs; it names no row, so it gets the same
		// conflict as an unknown or already-claimed id.
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, apperrors.NewConflict("already claimed or does not exist")
		}
		return nil, err
	}

	s.invalidateCache(ctx)
	s.publishEvent(ctx, events.EventSolicitudClaimed, solicitud.ID, &claimant.ID, events.SolicitudClaimedPayload{
		ClaimedBy: claimant.ID,
		Title:     solicitud.Title,
	})
	return solicitud, nil
}

// isInvalidID reports the Postgres invalid_text_representation error (22P02)
// raised when a non-UUID string is compared against the id column.
func isInvalidID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

func (s *SolicitudService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Debug("pending cache invalidate failed", zap.Error(err))
	}
}

func (s *SolicitudService) publishEvent(ctx context.Context, eventType events.EventType, solicitudID string, actorID *string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		SolicitudID: solicitudID,
		ActorID:     actorID,
		Timestamp:   time.Now(),
		Payload:     payload,
	}
	_ = s.dispatcher.Publish(ctx, event)
}
