package movements

import (
	"fmt"
	"time"

	"almacen-backend/internal/auth"
	"almacen-backend/internal/database"
	"almacen-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateSalidaRequest struct {
	ProductCode string `json:"product_code"`
	Receptor    string `json:"receptor"`
	Quantity    int    `json:"quantity"`
	Motivo      string `json:"motivo"`
}

type SalidaResponse struct {
	ID          uint   `json:"id"`
	ProductID   uint   `json:"product_id"`
	ProductCode string `json:"product_code"`
	ProductName string `json:"product_name"`
	Unit        string `json:"unit"`
	UserName    string `json:"user_name"`
	Receptor    string `json:"receptor"`
	Quantity    int    `json:"quantity"`
	Motivo      string `json:"motivo"`
	CreatedAt   string `json:"created_at"`
}

func toSalidaResponse(s *models.Salida) SalidaResponse {
	return SalidaResponse{
		ID:          s.ID,
		ProductID:   s.ProductID,
		ProductCode: s.Product.Code,
		ProductName: s.Product.Name,
		Unit:        s.Product.Unit,
		UserName:    s.User.FullName(),
		Receptor:    s.Receptor,
		Quantity:    s.Quantity,
		Motivo:      s.Motivo,
		CreatedAt:   s.CreatedAt.Format(time.RFC3339),
	}
}

// POST /api/salidas
func CreateSalidaHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body CreateSalidaRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la peticion invalido")
		}

		salida, err := svc.RegisterSalida(userID, body.ProductCode, body.Receptor, body.Quantity, body.Motivo)
		if err != nil {
			return fiber.NewError(movementErrorStatus(err), capitalizeError(err))
		}

		product := salida.Product
		stockMsg := ""
		if product.LowStock() {
			stockMsg = fmt.Sprintf(" ALERTA: el stock esta en nivel minimo o por debajo (%d/%d).", product.StockActual, product.MinStock)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": fmt.Sprintf("Salida registrada exitosamente. Se retiraron %d %s de \"%s\". Stock restante: %d.%s",
				salida.Quantity, product.Unit, product.Name, product.StockActual, stockMsg),
			"salida": toSalidaResponse(salida),
		})
	}
}

// GET /api/salidas?fecha_desde=&fecha_hasta=&producto=&receptor=
func ListSalidasHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		salidas, err := FilteredSalidas(c)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar las salidas")
		}

		res := make([]SalidaResponse, 0, len(salidas))
		for i := range salidas {
			res = append(res, toSalidaResponse(&salidas[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/salidas/:id
func GetSalidaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var salida models.Salida
		err := database.DB.Preload("Product").Preload("User").
			First(&salida, "id = ?", id).Error
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Salida no encontrada")
		}

		return c.JSON(toSalidaResponse(&salida))
	}
}
