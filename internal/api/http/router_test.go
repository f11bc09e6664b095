package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/solicitud-service/internal/api/http/handlers"
	"github.com/spec-kit/solicitud-service/internal/auth"
	"github.com/spec-kit/solicitud-service/internal/config"
	"github.com/spec-kit/solicitud-service/internal/domain"
	"github.com/spec-kit/solicitud-service/internal/observability"
	"github.com/spec-kit/solicitud-service/internal/service"
)

// In-memory repositories backing the full HTTP stack. Claim keeps the
// test-and-set under one lock, matching the store's conditional-write
// contract.

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func (m *memUserRepo) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *memUserRepo) Update(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type memSolicitudRepo struct {
	mu          sync.Mutex
	solicitudes map[string]*domain.Solicitud
}

func (m *memSolicitudRepo) Create(ctx context.Context, solicitud *domain.Solicitud) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	solicitud.ID = uuid.NewString()
	solicitud.CreatedAt = time.Now()
	stored := *solicitud
	m.solicitudes[solicitud.ID] = &stored
	return nil
}

func (m *memSolicitudRepo) GetByID(ctx context.Context, id string) (*domain.Solicitud, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	solicitud, ok := m.solicitudes[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *solicitud
	return &copied, nil
}

func (m *memSolicitudRepo) ListPending(ctx context.Context) ([]domain.Solicitud, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.Solicitud
	for _, solicitud := range m.solicitudes {
		if solicitud.Status == domain.SolicitudStatusPending {
			result = append(result, *solicitud)
		}
	}
	return result, nil
}

func (m *memSolicitudRepo) ListClaimedBy(ctx context.Context, userID string) ([]domain.Solicitud, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.Solicitud
	for _, solicitud := range m.solicitudes {
		if solicitud.Status == domain.SolicitudStatusClaimed && solicitud.ClaimedBy != nil && *solicitud.ClaimedBy == userID {
			result = append(result, *solicitud)
		}
	}
	return result, nil
}

func (m *memSolicitudRepo) Claim(ctx context.Context, id, userID string) (*domain.Solicitud, error) {
	// a non-UUID id fails the cast before the row lookup, as in Postgres
	if _, err := uuid.Parse(id); err != nil {
		return nil, &pgconn.PgError{Code: "22P02"}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	solicitud, ok := m.solicitudes[id]
	if !ok || solicitud.Status != domain.SolicitudStatusPending {
		return nil, pgx.ErrNoRows
	}
	now := time.Now()
	solicitud.Status = domain.SolicitudStatusClaimed
	solicitud.ClaimedBy = &userID
	solicitud.ClaimedAt = &now
	copied := *solicitud
	return &copied, nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret",
			TokenTTLMinutes: 60,
			BcryptCost:      4,
		},
	}
	authService := service.NewAuthService(cfg, &memUserRepo{users: make(map[string]*domain.User)})
	solicitudService := service.NewSolicitudService(service.SolicitudDependencies{
		SolicitudRepo: &memSolicitudRepo{solicitudes: make(map[string]*domain.Solicitud)},
	})

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:      handlers.NewHealthHandler("solicitud-service-test", "test", nil, nil),
		Auth:        handlers.NewAuthHandler(authService),
		Profile:     handlers.NewProfileHandler(authService),
		Solicitudes: handlers.NewSolicitudesHandler(solicitudService),
		SessionGate: auth.NewSessionGate(authService.TokenManager()),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp.StatusCode, decoded
}

func register(t *testing.T, app *fiber.App, name, email, password string) string {
	t.Helper()
	status, body := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, status)
	token, ok := body["token"].(string)
	require.True(t, ok, "register response must carry a token")
	return token
}

func TestRegisterLoginFlow(t *testing.T) {
	app := newTestApp(t)

	token := register(t, app, "Ana", "ana@x.com", "secret123")
	require.NotEmpty(t, token)

	status, body := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ana@x.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusOK, status)
	loginToken, _ := body["token"].(string)
	assert.NotEmpty(t, loginToken)

	// both tokens open the profile endpoint
	for _, tk := range []string{token, loginToken} {
		status, body := doJSON(t, app, http.MethodGet, "/api/profile", tk, nil)
		assert.Equal(t, http.StatusOK, status)
		user, _ := body["user"].(map[string]any)
		assert.Equal(t, "ana@x.com", user["email"])
	}
}

func TestRegisterRejectsMissingFieldsAndDuplicates(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "", "email": "ana@x.com", "password": "pw",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, body["error"])

	register(t, app, "Ana", "ana@x.com", "secret123")
	status, body = doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Otra", "email": "ana@x.com", "password": "pw",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, body["error"])
}

func TestLoginFailureShapeIsUniform(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "Ana", "ana@x.com", "secret123")

	statusUnknown, bodyUnknown := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "nouser@x.com", "password": "pw",
	})
	statusWrong, bodyWrong := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ana@x.com", "password": "wrongpw",
	})

	assert.Equal(t, statusUnknown, statusWrong)
	assert.Equal(t, bodyUnknown["error"], bodyWrong["error"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)

	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/profile"},
		{http.MethodPost, "/api/solicitudes"},
		{http.MethodGet, "/api/solicitudes/pendientes"},
		{http.MethodPost, "/api/solicitudes/some-id/aceptar"},
		{http.MethodGet, "/api/solicitudes/aceptadas"},
	}
	for _, p := range paths {
		status, body := doJSON(t, app, p.method, p.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, "%s %s", p.method, p.path)
		assert.NotEmpty(t, body["error"])
	}
}

func TestUnknownRouteKeepsRouterStatus(t *testing.T) {
	app := newTestApp(t)

	// fiber reports unmatched paths as *fiber.Error; the error middleware
	// must keep that status instead of collapsing it to 500
	for _, p := range []struct{ method, path string }{
		{http.MethodGet, "/api/nope"},
		{http.MethodDelete, "/api/auth/login"},
	} {
		status, body := doJSON(t, app, p.method, p.path, "", nil)
		assert.Equal(t, http.StatusNotFound, status, "%s %s", p.method, p.path)
		assert.NotEmpty(t, body["error"])
	}
}

func TestSolicitudLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)
	anaToken := register(t, app, "Ana", "ana@x.com", "secret123")
	beaToken := register(t, app, "Bea", "bea@x.com", "secret123")

	status, body := doJSON(t, app, http.MethodPost, "/api/solicitudes", anaToken, map[string]string{
		"title": "Math tutoring", "description": "Algebra", "requesterName": "Juan", "date": "2026-09-15",
	})
	require.Equal(t, http.StatusCreated, status)
	created, _ := body["solicitud"].(map[string]any)
	require.NotNil(t, created)
	assert.Equal(t, "PENDING", created["status"])
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)

	status, body = doJSON(t, app, http.MethodGet, "/api/solicitudes/pendientes", beaToken, nil)
	require.Equal(t, http.StatusOK, status)
	pending, _ := body["solicitudes"].([]any)
	require.Len(t, pending, 1)

	// two concurrent claims: exactly one 200, one 400
	var wg sync.WaitGroup
	statuses := make([]int, 2)
	tokens := []string{anaToken, beaToken}
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func(i int) {
			defer wg.Done()
			statuses[i], _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/solicitudes/%s/aceptar", id), tokens[i], nil)
		}(i)
	}
	wg.Wait()

	winners, losers := 0, 0
	for _, s := range statuses {
		switch s {
		case http.StatusOK:
			winners++
		case http.StatusBadRequest:
			losers++
		}
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, losers)

	// claiming again stays a conflict
	status, body = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/solicitudes/%s/aceptar", id), anaToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "already claimed or does not exist", body["error"])

	// the winner sees the solicitud in their claimed list
	claimedLists := 0
	for _, tk := range tokens {
		status, body = doJSON(t, app, http.MethodGet, "/api/solicitudes/aceptadas", tk, nil)
		require.Equal(t, http.StatusOK, status)
		list, _ := body["solicitudes"].([]any)
		claimedLists += len(list)
	}
	assert.Equal(t, 1, claimedLists)

	status, body = doJSON(t, app, http.MethodGet, "/api/solicitudes/pendientes", anaToken, nil)
	require.Equal(t, http.StatusOK, status)
	pending, _ = body["solicitudes"].([]any)
	assert.Empty(t, pending)
}

func TestClaimUnknownIDOverHTTP(t *testing.T) {
	app := newTestApp(t)
	token := register(t, app, "Ana", "ana@x.com", "secret123")

	// malformed and well-formed-but-unknown ids fail with the same shape
	for _, id := range []string{"nonexistent-id", uuid.NewString()} {
		status, body := doJSON(t, app, http.MethodPost, "/api/solicitudes/"+id+"/aceptar", token, nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "already claimed or does not exist", body["error"])
	}
}

func TestCreateSolicitudValidationOverHTTP(t *testing.T) {
	app := newTestApp(t)
	token := register(t, app, "Ana", "ana@x.com", "secret123")

	cases := []map[string]string{
		{"title": "", "requesterName": "Juan", "date": "2026-09-15"},
		{"title": "Math tutoring", "requesterName": "", "date": "2026-09-15"},
		{"title": "Math tutoring", "requesterName": "Juan", "date": "15/09/2026"},
	}
	for _, payload := range cases {
		status, body := doJSON(t, app, http.MethodPost, "/api/solicitudes", token, payload)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.NotEmpty(t, body["error"])
	}
}

func TestUpdateProfileOverHTTP(t *testing.T) {
	app := newTestApp(t)
	token := register(t, app, "Ana", "ana@x.com", "secret123")

	status, body := doJSON(t, app, http.MethodPut, "/api/profile", token, map[string]string{
		"name": "Ana Maria", "email": "ana.maria@x.com",
	})
	require.Equal(t, http.StatusOK, status)
	user, _ := body["user"].(map[string]any)
	assert.Equal(t, "Ana Maria", user["name"])
	assert.Equal(t, "ana.maria@x.com", user["email"])

	status, body = doJSON(t, app, http.MethodPut, "/api/profile", token, map[string]string{
		"name": "", "email": "ana.maria@x.com",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, body["error"])
}
