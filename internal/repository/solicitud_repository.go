package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/solicitud-service/internal/domain"
)

// SolicitudRepository encapsulates solicitud persistence.
type SolicitudRepository interface {
	Create(ctx context.Context, solicitud *domain.Solicitud) error
	GetByID(ctx context.Context, id string) (*domain.Solicitud, error)
	ListPending(ctx context.Context) ([]domain.Solicitud, error)
	ListClaimedBy(ctx context.Context, userID string) ([]domain.Solicitud, error)
	Claim(ctx context.Context, id, userID string) (*domain.Solicitud, error)
}

type solicitudRepository struct {
	pool *pgxpool.Pool
}

// NewSolicitudRepository instantiates repository.
func NewSolicitudRepository(pool *pgxpool.Pool) SolicitudRepository {
	return &solicitudRepository{pool: pool}
}

const solicitudColumns = `id, title, description, requester_name, scheduled_date,
               status, claimed_by, claimed_at, created_at`

func (r *solicitudRepository) Create(ctx context.Context, solicitud *domain.Solicitud) error {
	const query = `
        INSERT INTO solicitudes (title, description, requester_name, scheduled_date, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		solicitud.Title,
		solicitud.Description,
		solicitud.RequesterName,
		solicitud.ScheduledDate,
		solicitud.Status,
	).Scan(&solicitud.ID, &solicitud.CreatedAt)
}

func (r *solicitudRepository) GetByID(ctx context.Context, id string) (*domain.Solicitud, error) {
	const query = `
        SELECT ` + solicitudColumns + `
        FROM solicitudes WHERE id=$1`

	var solicitud domain.Solicitud
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&solicitud.ID,
		&solicitud.Title,
		&solicitud.Description,
		&solicitud.RequesterName,
		&solicitud.ScheduledDate,
		&solicitud.Status,
		&solicitud.ClaimedBy,
		&solicitud.ClaimedAt,
		&solicitud.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &solicitud, nil
}

func (r *solicitudRepository) ListPending(ctx context.Context) ([]domain.Solicitud, error) {
	const query = `
        SELECT ` + solicitudColumns + `
        FROM solicitudes
        WHERE status='PENDING'
        ORDER BY scheduled_date ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSolicitudes(rows)
}

func (r *solicitudRepository) ListClaimedBy(ctx context.Context, userID string) ([]domain.Solicitud, error) {
	const query = `
        SELECT ` + solicitudColumns + `
        FROM solicitudes
        WHERE status='CLAIMED' AND claimed_by=$1
        ORDER BY claimed_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSolicitudes(rows)
}

// Claim performs the conditional pending-to-claimed transition as a single
// store-side write. The WHERE clause carries both the id and the PENDING
// condition; under concurrent callers the store serializes the conflicting
// writes and exactly one affects a row. Zero rows comes back as
// pgx.ErrNoRows, covering both "already claimed" and "does not exist".
func (r *solicitudRepository) Claim(ctx context.Context, id, userID string) (*domain.Solicitud, error) {
	const query = `
        UPDATE solicitudes
        SET status='CLAIMED', claimed_by=$1, claimed_at=NOW()
        WHERE id=$2 AND status='PENDING'
        RETURNING ` + solicitudColumns

	var solicitud domain.Solicitud
	if err := r.pool.QueryRow(ctx, query, userID, id).Scan(
		&solicitud.ID,
		&solicitud.Title,
		&solicitud.Description,
		&solicitud.RequesterName,
		&solicitud.ScheduledDate,
		&solicitud.Status,
		&solicitud.ClaimedBy,
		&solicitud.ClaimedAt,
		&solicitud.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &solicitud, nil
}

func scanSolicitudes(rows pgx.Rows) ([]domain.Solicitud, error) {
	var result []domain.Solicitud
	for rows.Next() {
		var solicitud domain.Solicitud
		if err := rows.Scan(
			&solicitud.ID,
			&solicitud.Title,
			&solicitud.Description,
			&solicitud.RequesterName,
			&solicitud.ScheduledDate,
			&solicitud.Status,
			&solicitud.ClaimedBy,
			&solicitud.ClaimedAt,
			&solicitud.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, solicitud)
	}
	return result, rows.Err()
}
