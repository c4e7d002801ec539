package dashboard

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"almacen-backend/internal/database"
	"almacen-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEntrada(t *testing.T, productID, providerID, userID uint, createdAt time.Time) {
	t.Helper()
	entrada := &models.Entrada{
		ProductID:  productID,
		ProviderID: providerID,
		UserID:     userID,
		Quantity:   5,
		CreatedAt:  createdAt,
	}
	require.NoError(t, database.DB.Create(entrada).Error)
}

func TestSummary(t *testing.T) {
	database.InitTest()

	app := fiber.New()
	app.Get("/api/dashboard", SummaryHandler())

	user := &models.User{Username: "almacenista", FirstName: "Test", PasswordHash: "x", Role: models.RoleAlmacen, Status: models.StatusActive}
	require.NoError(t, database.DB.Create(user).Error)
	category := &models.Category{Name: "Viveres", Status: models.StatusActive}
	require.NoError(t, database.DB.Create(category).Error)
	provider := &models.Provider{Name: "Distribuidora", RIF: "J-12345678-9", Status: models.StatusActive}
	require.NoError(t, database.DB.Create(provider).Error)

	bajo := &models.Product{Code: "A1", Name: "Harina de trigo", Unit: "kg", MinStock: 10, StockActual: 3, CategoryID: category.ID, Status: models.StatusActive}
	require.NoError(t, database.DB.Create(bajo).Error)
	normal := &models.Product{Code: "B2", Name: "Azucar", Unit: "kg", MinStock: 5, StockActual: 20, CategoryID: category.ID, Status: models.StatusActive}
	require.NoError(t, database.DB.Create(normal).Error)

	// Una entrada de hoy y una de ayer: el contador del dia cuenta desde la
	// medianoche local, no la de UTC.
	ahora := time.Now()
	hoy := time.Date(ahora.Year(), ahora.Month(), ahora.Day(), 0, 0, 0, 0, ahora.Location())
	seedEntrada(t, normal.ID, provider.ID, user.ID, hoy.Add(time.Minute))
	seedEntrada(t, normal.ID, provider.ID, user.ID, hoy.Add(-time.Hour))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/dashboard", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.EqualValues(t, 1, body["entradas_hoy"])
	assert.EqualValues(t, 2, body["total_productos"])
	assert.EqualValues(t, 1, body["total_proveedores"])

	alertas, ok := body["alertas"].([]interface{})
	require.True(t, ok)
	require.Len(t, alertas, 1)
	alerta := alertas[0].(map[string]interface{})
	assert.Equal(t, "A1", alerta["code"])

	ultimas, ok := body["ultimas_entradas"].([]interface{})
	require.True(t, ok)
	assert.Len(t, ultimas, 2)
}
