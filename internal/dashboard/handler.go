package dashboard

import (
	"time"

	"almacen-backend/internal/database"
	"almacen-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type AlertProduct struct {
	ID          uint   `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Unit        string `json:"unit"`
	StockActual int    `json:"stock_actual"`
	MinStock    int    `json:"min_stock"`
}

type LastEntrada struct {
	ID           uint   `json:"id"`
	ProductName  string `json:"product_name"`
	ProviderName string `json:"provider_name"`
	Quantity     int    `json:"quantity"`
	CreatedAt    string `json:"created_at"`
}

// GET /api/dashboard
// Resumen para la pantalla principal: alertas de stock, totales y las
// ultimas entradas del dia.
func SummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var alertas []models.Product
		if err := database.DB.Where("stock_actual < min_stock").Find(&alertas).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el resumen")
		}

		var totalProductos int64
		database.DB.Model(&models.Product{}).
			Where("status = ?", models.StatusActive).
			Count(&totalProductos)

		var totalProveedores int64
		database.DB.Model(&models.Provider{}).
			Where("status = ?", models.StatusActive).
			Count(&totalProveedores)

		// Medianoche local, no UTC: el dia del almacen es el del servidor
		ahora := time.Now()
		hoy := time.Date(ahora.Year(), ahora.Month(), ahora.Day(), 0, 0, 0, 0, ahora.Location())
		var entradasHoy int64
		database.DB.Model(&models.Entrada{}).
			Where("created_at >= ?", hoy).
			Count(&entradasHoy)

		var ultimas []models.Entrada
		database.DB.Preload("Product").Preload("Provider").
			Order("created_at desc").
			Limit(5).
			Find(&ultimas)

		alertasRes := make([]AlertProduct, 0, len(alertas))
		for i := range alertas {
			p := &alertas[i]
			alertasRes = append(alertasRes, AlertProduct{
				ID:          p.ID,
				Code:        p.Code,
				Name:        p.Name,
				Unit:        p.Unit,
				StockActual: p.StockActual,
				MinStock:    p.MinStock,
			})
		}

		ultimasRes := make([]LastEntrada, 0, len(ultimas))
		for i := range ultimas {
			e := &ultimas[i]
			ultimasRes = append(ultimasRes, LastEntrada{
				ID:           e.ID,
				ProductName:  e.Product.Name,
				ProviderName: e.Provider.Name,
				Quantity:     e.Quantity,
				CreatedAt:    e.CreatedAt.Format(time.RFC3339),
			})
		}

		return c.JSON(fiber.Map{
			"alertas":           alertasRes,
			"total_productos":   totalProductos,
			"total_proveedores": totalProveedores,
			"entradas_hoy":      entradasHoy,
			"ultimas_entradas":  ultimasRes,
		})
	}
}
