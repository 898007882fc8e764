package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type stubRevocations struct {
	revoked map[string]bool
}

func (s stubRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return s.revoked[tokenID], nil
}

func signToken(t *testing.T, subject, id string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ID:        id,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newJWTApp(handler fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Get("/", handler, func(c *fiber.Ctx) error {
		id, _ := c.Locals(LocalUserID).(uint)
		tokenID, _ := TokenFromContext(c)
		return c.JSON(fiber.Map{"user_id": id, "token_id": tokenID})
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, authorization string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestJWTProtectedAcceptsValidToken(t *testing.T) {
	app := newJWTApp(JWTProtected(testSecret, nil))
	token := signToken(t, "42", "jti-1", time.Now().Add(time.Hour))

	resp := doRequest(t, app, "Bearer "+token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJWTProtectedRejectsMissingExpiredAndForeignTokens(t *testing.T) {
	app := newJWTApp(JWTProtected(testSecret, nil))

	require.Equal(t, fiber.StatusUnauthorized, doRequest(t, app, "").StatusCode)
	require.Equal(t, fiber.StatusUnauthorized, doRequest(t, app, "Token abc").StatusCode)

	expired := signToken(t, "42", "jti-1", time.Now().Add(-time.Minute))
	require.Equal(t, fiber.StatusUnauthorized, doRequest(t, app, "Bearer "+expired).StatusCode)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := foreign.SignedString([]byte("another-secret"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, doRequest(t, app, "Bearer "+signed).StatusCode)

	noSubject := signToken(t, "", "jti-2", time.Now().Add(time.Hour))
	require.Equal(t, fiber.StatusUnauthorized, doRequest(t, app, "Bearer "+noSubject).StatusCode)
}

func TestJWTProtectedRejectsRevokedToken(t *testing.T) {
	app := newJWTApp(JWTProtected(testSecret, stubRevocations{revoked: map[string]bool{"gone": true}}))

	revoked := signToken(t, "42", "gone", time.Now().Add(time.Hour))
	require.Equal(t, fiber.StatusUnauthorized, doRequest(t, app, "Bearer "+revoked).StatusCode)

	active := signToken(t, "42", "kept", time.Now().Add(time.Hour))
	require.Equal(t, fiber.StatusOK, doRequest(t, app, "bearer "+active).StatusCode)
}

func TestJWTOptionalLetsAnonymousRequestsThrough(t *testing.T) {
	var seen []interface{}
	app := fiber.New()
	app.Get("/", JWTOptional(testSecret, nil), func(c *fiber.Ctx) error {
		seen = append(seen, c.Locals(LocalUserID))
		return c.SendStatus(fiber.StatusNoContent)
	})

	require.Equal(t, fiber.StatusNoContent, doRequest(t, app, "").StatusCode)
	require.Equal(t, fiber.StatusNoContent, doRequest(t, app, "Bearer garbage").StatusCode)

	token := signToken(t, "7", "jti", time.Now().Add(time.Hour))
	require.Equal(t, fiber.StatusNoContent, doRequest(t, app, "Bearer "+token).StatusCode)

	require.Len(t, seen, 3)
	require.Nil(t, seen[0])
	require.Nil(t, seen[1])
	require.Equal(t, uint(7), seen[2])
}
