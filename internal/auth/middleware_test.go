package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/solicitud-service/pkg/util"
)

// newGateApp builds a minimal app with the session gate in front of a probe
// handler, mapping domain errors to their HTTP status like the real error
// middleware does.
func newGateApp(t *testing.T, tm *TokenManager) *fiber.App {
	t.Helper()
	gate := NewSessionGate(tm)
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": domainErr.Message})
		},
	})
	app.Get("/protected", gate.Handle, func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		require.True(t, ok, "identity should be in locals")
		return c.JSON(fiber.Map{"id": identity.ID, "email": identity.Email})
	})
	return app
}

func TestSessionGateAllowsValidToken(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	app := newGateApp(t, tm)

	token, _, err := tm.GenerateToken("user-123", "ana@x.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSessionGateRejectsBadHeaders(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	app := newGateApp(t, tm)

	cases := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "no scheme", header: "sometoken"},
		{name: "wrong scheme", header: "Basic abc"},
		{name: "empty token", header: "Bearer "},
		{name: "garbage token", header: "Bearer not-a-jwt"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestSessionGateRejectsTokenFromOtherSecret(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	other := NewTokenManager("other-secret", 60)
	app := newGateApp(t, tm)

	token, _, err := other.GenerateToken("user-123", "ana@x.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
