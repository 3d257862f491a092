package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/swipehire/interview-api/internal/middleware"
)

const testSecret = "test-secret"

func newProtectedApp(t *testing.T) *fiber.App {
	t.Helper()

	app := fiber.New()
	app.Get("/protected", middleware.JWTProtected(testSecret), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestJWTProtectedAcceptsValidToken(t *testing.T) {
	app := newProtectedApp(t)

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "reviewer-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJWTProtectedRejections(t *testing.T) {
	app := newProtectedApp(t)

	expired := signToken(t, testSecret, jwt.MapClaims{
		"sub": "reviewer-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	wrongKey := signToken(t, "other-secret", jwt.MapClaims{"sub": "reviewer-1"})

	cases := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not bearer", header: "Basic abc"},
		{name: "empty token", header: "Bearer "},
		{name: "garbage token", header: "Bearer not.a.token"},
		{name: "expired", header: "Bearer " + expired},
		{name: "wrong key", header: "Bearer " + wrongKey},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}
