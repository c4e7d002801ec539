package movements

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"almacen-backend/internal/auth"
	"almacen-backend/internal/database"
	"almacen-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entradaApp(t *testing.T, svc *Service, user *models.User) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, user.ID)
		c.Locals(auth.CtxUserRoleKey, user.Role)
		return c.Next()
	})
	app.Post("/api/entradas", CreateEntradaHandler(svc))
	return app
}

func postEntrada(t *testing.T, app *fiber.App, providerID uint, code string, quantity int) map[string]interface{} {
	t.Helper()
	raw, err := json.Marshal(fiber.Map{
		"product_code": code,
		"provider_id":  providerID,
		"quantity":     quantity,
		"total_cost":   "10.00",
	})
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/api/entradas", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestCreateEntradaMensajesDeAlerta(t *testing.T) {
	svc := newTestService(t)
	user := seedUser(t, "comprador", models.RoleCompras)
	provider := seedProvider(t, "J-12345678-9", models.StatusActive)

	enAlerta := seedProduct(t, "A1", models.StatusActive, 2)
	require.NoError(t, database.DB.Model(enAlerta).Update("min_stock", 10).Error)

	app := entradaApp(t, svc, user)

	// 2 + 3 = 5, sigue bajo el minimo de 10
	body := postEntrada(t, app, provider.ID, "A1", 3)
	mensaje, _ := body["message"].(string)
	assert.True(t, strings.Contains(mensaje, "sigue en alerta de stock bajo"), mensaje)

	// 5 + 20 = 25, la entrada saca al producto de la alerta
	body = postEntrada(t, app, provider.ID, "A1", 20)
	mensaje, _ = body["message"].(string)
	assert.True(t, strings.Contains(mensaje, "ya no esta en alerta de stock bajo"), mensaje)

	// 25 + 5 = 30, nunca estuvo en alerta: sin sufijo
	body = postEntrada(t, app, provider.ID, "A1", 5)
	mensaje, _ = body["message"].(string)
	assert.False(t, strings.Contains(mensaje, "alerta"), mensaje)
}
