package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"almacen-backend/internal/config"
	"almacen-backend/internal/database"
	"almacen-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testApp(t *testing.T) (*fiber.App, *config.Config) {
	t.Helper()
	database.InitTest()

	cfg := &config.Config{JWTSecret: "clave-de-prueba-suficientemente-larga"}

	app := fiber.New()
	app.Post("/api/auth/register-admin", RegisterAdminHandler(cfg))
	app.Post("/api/auth/login", LoginHandler(cfg))

	protected := app.Group("/api", JWTMiddleware(cfg))
	protected.Get("/auth/me", MeHandler())
	protected.Get("/solo-admin", RequireRole(models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app, cfg
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func seedUserWithPassword(t *testing.T, username, password string, role models.UserRole, status string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Username:     username,
		FirstName:    "Test",
		PasswordHash: string(hash),
		Role:         role,
		Status:       status,
	}
	require.NoError(t, database.DB.Create(user).Error)
	return user
}

func TestRegisterAdminSoloUnaVez(t *testing.T) {
	app, _ := testApp(t)

	resp, err := app.Test(jsonRequest(t, "POST", "/api/auth/register-admin", fiber.Map{
		"username":   "Admin",
		"first_name": "Ana",
		"password":   "secreto123",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "admin", body["username"]) // se guarda en minusculas
	assert.Equal(t, "admin", body["role"])

	// Con un administrador existente el bootstrap queda bloqueado
	resp, err = app.Test(jsonRequest(t, "POST", "/api/auth/register-admin", fiber.Map{
		"username":   "otro",
		"first_name": "Otro",
		"password":   "secreto123",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRegisterAdminValidaciones(t *testing.T) {
	app, _ := testApp(t)

	resp, err := app.Test(jsonRequest(t, "POST", "/api/auth/register-admin", fiber.Map{
		"username": "admin",
		"password": "secreto123",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, "POST", "/api/auth/register-admin", fiber.Map{
		"username":   "admin",
		"first_name": "Ana",
		"password":   "corta",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	app, _ := testApp(t)
	seedUserWithPassword(t, "almacenista", "secreto123", models.RoleAlmacen, models.StatusActive)
	seedUserWithPassword(t, "inactivo", "secreto123", models.RoleVentas, models.StatusInactive)

	// Credenciales correctas; el username no distingue mayusculas
	resp, err := app.Test(jsonRequest(t, "POST", "/api/auth/login", fiber.Map{
		"username": "ALMACENISTA",
		"password": "secreto123",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["token"])
	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "almacenista", user["username"])
	assert.Equal(t, "almacen", user["role"])

	resp, err = app.Test(jsonRequest(t, "POST", "/api/auth/login", fiber.Map{
		"username": "almacenista",
		"password": "incorrecta",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, "POST", "/api/auth/login", fiber.Map{
		"username": "fantasma",
		"password": "secreto123",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, "POST", "/api/auth/login", fiber.Map{
		"username": "inactivo",
		"password": "secreto123",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestJWTMiddlewareYRoles(t *testing.T) {
	app, cfg := testApp(t)
	almacenista := seedUserWithPassword(t, "almacenista", "secreto123", models.RoleAlmacen, models.StatusActive)
	admin := seedUserWithPassword(t, "admin", "secreto123", models.RoleAdmin, models.StatusActive)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/auth/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer token-basura")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	token, err := GenerateToken(cfg.JWTSecret, almacenista)
	require.NoError(t, err)

	req = httptest.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "almacenista", body["username"])

	// El rol almacen no pasa el guard de administrador
	req = httptest.NewRequest("GET", "/api/solo-admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	adminToken, err := GenerateToken(cfg.JWTSecret, admin)
	require.NoError(t, err)
	req = httptest.NewRequest("GET", "/api/solo-admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
