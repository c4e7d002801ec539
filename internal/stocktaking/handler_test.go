package stocktaking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"almacen-backend/internal/auth"
	"almacen-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countApp(t *testing.T, svc *Service, user *models.User) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, user.ID)
		c.Locals(auth.CtxUserRoleKey, user.Role)
		return c.Next()
	})
	app.Post("/api/inventario/sesiones/:id/conteos", RecordCountHandler(svc))
	return app
}

func postCount(t *testing.T, app *fiber.App, sessionID uint, code, cantidad string) map[string]interface{} {
	t.Helper()
	raw, err := json.Marshal(fiber.Map{"product_code": code, "cantidad": cantidad})
	require.NoError(t, err)
	req := httptest.NewRequest("POST", fmt.Sprintf("/api/inventario/sesiones/%d/conteos", sessionID), bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestRecordCountHandlerCantidad(t *testing.T) {
	svc := newTestService(t)
	user := seedUser(t, "almacenista", models.RoleAlmacen)
	seedProduct(t, "A1", "Harina de trigo", 10)

	session, _, err := svc.Start(user.ID, "")
	require.NoError(t, err)

	app := countApp(t, svc, user)

	// La cantidad llega como texto del escaner; los espacios no la invalidan
	body := postCount(t, app, session.ID, "A1", " 7 ")
	assert.Equal(t, true, body["success"])
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 7, data["cantidad_contada"])
	assert.EqualValues(t, -3, data["diferencia"])

	body = postCount(t, app, session.ID, "A1", "siete")
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "La cantidad debe ser un numero entero", body["error"])

	body = postCount(t, app, session.ID, "NO-EXISTE", "3")
	assert.Equal(t, false, body["success"])
}
