package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"almacen-backend/internal/database"
	"almacen-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApp(t *testing.T) *fiber.App {
	t.Helper()
	database.InitTest()

	app := fiber.New()
	app.Get("/api/productos", ListProductsHandler())
	app.Get("/api/productos/buscar", SearchProductHandler())
	app.Get("/api/productos/autocomplete", AutocompleteProductsHandler())
	app.Post("/api/admin/productos", CreateProductHandler())
	app.Put("/api/admin/productos/:id", UpdateProductHandler())
	app.Delete("/api/admin/productos/:id", DeleteProductHandler())
	return app
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func seedCategory(t *testing.T, name string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, Status: models.StatusActive}
	require.NoError(t, database.DB.Create(category).Error)
	return category
}

func seedProduct(t *testing.T, categoryID uint, code, name string, stock, minStock int) *models.Product {
	t.Helper()
	product := &models.Product{
		Code:        code,
		Name:        name,
		Unit:        "unidad",
		MinStock:    minStock,
		StockActual: stock,
		CategoryID:  categoryID,
		Status:      models.StatusActive,
	}
	require.NoError(t, database.DB.Create(product).Error)
	return product
}

func TestCreateProduct(t *testing.T) {
	app := testApp(t)
	category := seedCategory(t, "Viveres")

	resp, err := app.Test(jsonRequest(t, "POST", "/api/admin/productos", fiber.Map{
		"code":        "A1",
		"name":        "Harina de trigo",
		"unit":        "kg",
		"min_stock":   5,
		"category_id": category.ID,
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created ProductResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "A1", created.Code)
	assert.Equal(t, "Viveres", created.Category)
	// El stock inicial siempre es 0, aunque el cliente mandara otro valor
	assert.Equal(t, 0, created.StockActual)

	// El codigo es unico sin distinguir mayusculas
	resp, err = app.Test(jsonRequest(t, "POST", "/api/admin/productos", fiber.Map{
		"code":        "a1",
		"name":        "Otro producto",
		"unit":        "kg",
		"category_id": category.ID,
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Categoria inexistente
	resp, err = app.Test(jsonRequest(t, "POST", "/api/admin/productos", fiber.Map{
		"code":        "B2",
		"name":        "Azucar",
		"unit":        "kg",
		"category_id": 999,
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Campos requeridos
	resp, err = app.Test(jsonRequest(t, "POST", "/api/admin/productos", fiber.Map{
		"code":        "",
		"name":        "Sin codigo",
		"unit":        "kg",
		"category_id": category.ID,
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUpdateProductNoTocaStock(t *testing.T) {
	app := testApp(t)
	category := seedCategory(t, "Viveres")
	product := seedProduct(t, category.ID, "A1", "Harina de trigo", 25, 5)

	resp, err := app.Test(jsonRequest(t, "PUT", fmt.Sprintf("/api/admin/productos/%d", product.ID), fiber.Map{
		"code":        "A1",
		"name":        "Harina de trigo integral",
		"unit":        "kg",
		"min_stock":   8,
		"category_id": category.ID,
		"status":      models.StatusActive,
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var refreshed models.Product
	require.NoError(t, database.DB.First(&refreshed, product.ID).Error)
	assert.Equal(t, "Harina de trigo integral", refreshed.Name)
	assert.Equal(t, 8, refreshed.MinStock)
	// La edicion nunca modifica el contador de stock
	assert.Equal(t, 25, refreshed.StockActual)

	resp, err = app.Test(jsonRequest(t, "PUT", "/api/admin/productos/999", fiber.Map{
		"code":        "X9",
		"name":        "No existe",
		"unit":        "kg",
		"category_id": category.ID,
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeleteProductBloqueadoConMovimientos(t *testing.T) {
	app := testApp(t)
	category := seedCategory(t, "Viveres")
	conMovimientos := seedProduct(t, category.ID, "A1", "Harina de trigo", 10, 5)
	libre := seedProduct(t, category.ID, "B2", "Azucar", 0, 5)

	user := &models.User{Username: "almacenista", FirstName: "Test", PasswordHash: "x", Role: models.RoleAlmacen, Status: models.StatusActive}
	require.NoError(t, database.DB.Create(user).Error)
	provider := &models.Provider{Name: "Distribuidora", RIF: "J-12345678-9", Status: models.StatusActive}
	require.NoError(t, database.DB.Create(provider).Error)
	entrada := &models.Entrada{ProductID: conMovimientos.ID, ProviderID: provider.ID, UserID: user.ID, Quantity: 10}
	require.NoError(t, database.DB.Create(entrada).Error)

	resp, err := app.Test(httptest.NewRequest("DELETE", fmt.Sprintf("/api/admin/productos/%d", conMovimientos.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var count int64
	require.NoError(t, database.DB.Model(&models.Product{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	resp, err = app.Test(httptest.NewRequest("DELETE", fmt.Sprintf("/api/admin/productos/%d", libre.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, database.DB.Model(&models.Product{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var remaining models.Product
	require.NoError(t, database.DB.First(&remaining).Error)
	assert.Equal(t, conMovimientos.ID, remaining.ID)
}

func TestSearchProduct(t *testing.T) {
	app := testApp(t)
	category := seedCategory(t, "Viveres")
	seedProduct(t, category.ID, "A1", "Harina de trigo", 3, 5)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/productos/buscar?code=a1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, true, body["found"])

	product, ok := body["product"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "A1", product["code"])
	// Stock 3 con minimo 5: alerta
	assert.Equal(t, "danger", product["stock_status"])
	assert.Equal(t, "No especificada", product["location"])

	resp, err = app.Test(httptest.NewRequest("GET", "/api/productos/buscar?code=NO-EXISTE", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["found"])

	resp, err = app.Test(httptest.NewRequest("GET", "/api/productos/buscar", nil))
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["found"])
}

func TestAutocompleteProducts(t *testing.T) {
	app := testApp(t)
	category := seedCategory(t, "Viveres")
	seedProduct(t, category.ID, "A1", "Harina de trigo", 10, 5)
	seedProduct(t, category.ID, "B2", "Harina de maiz", 10, 5)
	inactivo := seedProduct(t, category.ID, "C3", "Harina inactiva", 10, 5)
	require.NoError(t, database.DB.Model(inactivo).Update("status", models.StatusInactive).Error)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/productos/autocomplete?term=harina", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var results []AutocompleteResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&results))
	// Solo los activos, ordenados por nombre
	require.Len(t, results, 2)
	assert.Equal(t, "B2", results[0].Code)
	assert.Equal(t, "A1", results[1].Code)
	assert.Equal(t, "A1 - Harina de trigo", results[1].Label)

	// Termino muy corto: lista vacia sin consultar
	resp, err = app.Test(httptest.NewRequest("GET", "/api/productos/autocomplete?term=h", nil))
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&results))
	assert.Empty(t, results)
}
