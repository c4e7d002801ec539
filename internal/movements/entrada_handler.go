package movements

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"almacen-backend/internal/auth"
	"almacen-backend/internal/database"
	"almacen-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CreateEntradaRequest struct {
	ProductCode string `json:"product_code"`
	ProviderID  uint   `json:"provider_id"`
	Quantity    int    `json:"quantity"`
	TotalCost   string `json:"total_cost"` // decimal como string, ej "1250.50"
}

type EntradaResponse struct {
	ID           uint   `json:"id"`
	ProductID    uint   `json:"product_id"`
	ProductCode  string `json:"product_code"`
	ProductName  string `json:"product_name"`
	Unit         string `json:"unit"`
	ProviderID   uint   `json:"provider_id"`
	ProviderName string `json:"provider_name"`
	UserName     string `json:"user_name"`
	Quantity     int    `json:"quantity"`
	TotalCost    string `json:"total_cost"`
	CreatedAt    string `json:"created_at"`
}

func toEntradaResponse(e *models.Entrada) EntradaResponse {
	return EntradaResponse{
		ID:           e.ID,
		ProductID:    e.ProductID,
		ProductCode:  e.Product.Code,
		ProductName:  e.Product.Name,
		Unit:         e.Product.Unit,
		ProviderID:   e.ProviderID,
		ProviderName: e.Provider.Name,
		UserName:     e.User.FullName(),
		Quantity:     e.Quantity,
		TotalCost:    e.TotalCost.StringFixed(2),
		CreatedAt:    e.CreatedAt.Format(time.RFC3339),
	}
}

func movementErrorStatus(err error) int {
	switch {
	case errors.Is(err, ErrProductNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrProductInactive),
		errors.Is(err, ErrProviderNotFound),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrNegativeTotalCost),
		errors.Is(err, ErrMissingReceptor),
		errors.Is(err, ErrMissingMotivo),
		errors.Is(err, ErrMissingProductCode),
		errors.Is(err, ErrInsufficientStock):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// POST /api/entradas
func CreateEntradaHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body CreateEntradaRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la peticion invalido")
		}

		totalCost := decimal.Zero
		if strings.TrimSpace(body.TotalCost) != "" {
			totalCost, err = decimal.NewFromString(strings.TrimSpace(body.TotalCost))
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "El costo total debe ser un numero valido")
			}
		}

		entrada, err := svc.RegisterEntrada(userID, body.ProductCode, body.ProviderID, body.Quantity, totalCost)
		if err != nil {
			return fiber.NewError(movementErrorStatus(err), capitalizeError(err))
		}

		product := entrada.Product
		stockMsg := ""
		switch {
		case product.LowStock():
			stockMsg = fmt.Sprintf(" Atencion: el producto sigue en alerta de stock bajo (%d/%d).", product.StockActual, product.MinStock)
		case product.StockActual-entrada.Quantity <= product.MinStock:
			// Estaba en alerta antes de esta entrada
			stockMsg = " El producto ya no esta en alerta de stock bajo."
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": fmt.Sprintf("Entrada registrada exitosamente. Se agregaron %d %s de \"%s\".%s",
				entrada.Quantity, product.Unit, product.Name, stockMsg),
			"entrada": toEntradaResponse(entrada),
		})
	}
}

// GET /api/entradas?fecha_desde=&fecha_hasta=&producto=&proveedor=
func ListEntradasHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Entrada{}).
			Preload("Product").Preload("Provider").Preload("User").
			Order("entradas.created_at desc")

		dbq = applyEntradaFilters(dbq, c)

		var entradas []models.Entrada
		if err := dbq.Find(&entradas).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar las entradas")
		}

		res := make([]EntradaResponse, 0, len(entradas))
		for i := range entradas {
			res = append(res, toEntradaResponse(&entradas[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/entradas/:id
func GetEntradaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var entrada models.Entrada
		err := database.DB.Preload("Product").Preload("Provider").Preload("User").
			First(&entrada, "id = ?", id).Error
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Entrada no encontrada")
		}

		return c.JSON(toEntradaResponse(&entrada))
	}
}
