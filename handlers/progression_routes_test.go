package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"quest-progression-system/models"
	"quest-progression-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newProfileApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, models.MigrateTable(db))

	app := fiber.New()
	SetupProgressionRoutes(app, services.NewProfileService(db))
	return app, db
}

func TestProfileEndpoint(t *testing.T) {
	app, _ := newProfileApp(t)

	req := httptest.NewRequest("GET", "/user/profile", nil)
	req.Header.Set("X-User-ID", "user1")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		XP         int64 `json:"xp"`
		Level      int   `json:"level"`
		BadgeCount int64 `json:"badge_count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, int64(0), body.XP)
	require.Equal(t, 1, body.Level)
	require.Equal(t, int64(0), body.BadgeCount)
}

func TestProfileEndpointRequiresUserContext(t *testing.T) {
	app, _ := newProfileApp(t)

	req := httptest.NewRequest("GET", "/user/profile", nil)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestProfileEndpointSurfacesCountFailure(t *testing.T) {
	app, db := newProfileApp(t)
	require.NoError(t, db.Migrator().DropTable(&models.UserBadge{}))

	req := httptest.NewRequest("GET", "/user/profile", nil)
	req.Header.Set("X-User-ID", "user1")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
