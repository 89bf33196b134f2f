package handlers_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/helpdeskpro/helpdesk-service/internal/api/http"
	"github.com/helpdeskpro/helpdesk-service/internal/api/http/handlers"
)

func newSweepApp(secret string) *fiber.App {
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), nil, 0)
	handler := handlers.NewRemindersHandler(nil, secret)
	app.Get("/cron/reminders", handler.Sweep)
	return app
}

func TestSweepRejectsMissingSecret(t *testing.T) {
	app := newSweepApp("s3cret")

	resp, err := app.Test(httptest.NewRequest("GET", "/cron/reminders", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSweepRejectsWrongSecret(t *testing.T) {
	app := newSweepApp("s3cret")

	req := httptest.NewRequest("GET", "/cron/reminders", nil)
	req.Header.Set("Authorization", "Bearer nope")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/cron/reminders?key=nope", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSweepRejectsWhenSecretUnconfigured(t *testing.T) {
	app := newSweepApp("")

	resp, err := app.Test(httptest.NewRequest("GET", "/cron/reminders?key=", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
