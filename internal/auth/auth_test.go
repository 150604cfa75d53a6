package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestGenerateAndParseToken(t *testing.T) {
	tok, err := GenerateToken(testSecret, "ops", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)

	_, err = ParseToken("another-secret", tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := GenerateToken(testSecret, "ops", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(testSecret, expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = GenerateToken("", "ops", time.Hour)
	assert.Error(t, err)
}

func newApp(secret string) *fiber.App {
	app := fiber.New()
	app.Delete("/x", AdminMiddleware(secret), func(c *fiber.Ctx) error {
		return c.SendString(Actor(c))
	})
	return app
}

func TestAdminMiddleware(t *testing.T) {
	app := newApp(testSecret)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/x", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("DELETE", "/x", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	tok, err := GenerateToken(testSecret, "ops", time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest("DELETE", "/x", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAdminMiddlewareDisabled(t *testing.T) {
	resp, err := newApp("").Test(httptest.NewRequest("DELETE", "/x", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
