package catalog

import (
	"fmt"
	"strings"

	"almacen-backend/internal/database"
	"almacen-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ProviderResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	RIF         string `json:"rif"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	ContactName string `json:"contact_name"`
	Status      string `json:"status"`
}

type ProviderRequest struct {
	Name        string `json:"name"`
	RIF         string `json:"rif"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	ContactName string `json:"contact_name"`
	Status      string `json:"status"`
}

func toProviderResponse(p *models.Provider) ProviderResponse {
	return ProviderResponse{
		ID:          p.ID,
		Name:        p.Name,
		RIF:         p.RIF,
		Phone:       p.Phone,
		Email:       p.Email,
		ContactName: p.ContactName,
		Status:      p.Status,
	}
}

func validateProvider(body *ProviderRequest) error {
	body.Name = strings.TrimSpace(body.Name)
	body.RIF = strings.TrimSpace(body.RIF)
	body.Phone = strings.TrimSpace(body.Phone)
	body.Email = strings.TrimSpace(body.Email)
	body.ContactName = strings.TrimSpace(body.ContactName)

	if body.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "El nombre del proveedor es requerido")
	}
	if len(body.Name) > 50 {
		return fiber.NewError(fiber.StatusBadRequest, "El nombre no puede exceder 50 caracteres")
	}
	if body.RIF == "" {
		return fiber.NewError(fiber.StatusBadRequest, "El RIF del proveedor es requerido")
	}
	if len(body.RIF) > 12 {
		return fiber.NewError(fiber.StatusBadRequest, "El RIF no puede exceder 12 caracteres")
	}
	if len(body.Phone) > 12 {
		return fiber.NewError(fiber.StatusBadRequest, "El telefono no puede exceder 12 caracteres")
	}
	if len(body.ContactName) > 50 {
		return fiber.NewError(fiber.StatusBadRequest, "El nombre de contacto no puede exceder 50 caracteres")
	}
	if body.Status == "" {
		body.Status = models.StatusActive
	}
	return nil
}

// GET /api/proveedores
func ListProvidersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var providers []models.Provider
		if err := database.DB.Order("name asc").Find(&providers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los proveedores")
		}

		res := make([]ProviderResponse, 0, len(providers))
		for i := range providers {
			res = append(res, toProviderResponse(&providers[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/admin/proveedores
func CreateProviderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ProviderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la peticion invalido")
		}
		if err := validateProvider(&body); err != nil {
			return err
		}

		var count int64
		database.DB.Model(&models.Provider{}).
			Where("LOWER(rif) = ?", strings.ToLower(body.RIF)).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Ya existe un proveedor con ese RIF")
		}

		p := models.Provider{
			Name:        body.Name,
			RIF:         body.RIF,
			Phone:       body.Phone,
			Email:       body.Email,
			ContactName: body.ContactName,
			Status:      body.Status,
		}

		if err := database.DB.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo crear el proveedor")
		}

		return c.Status(fiber.StatusCreated).JSON(toProviderResponse(&p))
	}
}

// PUT /api/admin/proveedores/:id
func UpdateProviderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Provider
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Proveedor no encontrado")
		}

		var body ProviderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la peticion invalido")
		}
		if err := validateProvider(&body); err != nil {
			return err
		}

		var count int64
		database.DB.Model(&models.Provider{}).
			Where("LOWER(rif) = ? AND id <> ?", strings.ToLower(body.RIF), p.ID).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Ya existe otro proveedor con ese RIF")
		}

		p.Name = body.Name
		p.RIF = body.RIF
		p.Phone = body.Phone
		p.Email = body.Email
		p.ContactName = body.ContactName
		p.Status = body.Status

		if err := database.DB.Save(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el proveedor")
		}

		return c.JSON(toProviderResponse(&p))
	}
}

// DELETE /api/admin/proveedores/:id
// Bloqueado mientras existan entradas u ordenes de compra asociadas.
func DeleteProviderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Provider
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Proveedor no encontrado")
		}

		var entradaCount int64
		database.DB.Model(&models.Entrada{}).
			Where("provider_id = ?", p.ID).
			Count(&entradaCount)
		if entradaCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf(
				"No se puede eliminar el proveedor \"%s\" porque tiene %d entrada(s) asociada(s)", p.Name, entradaCount))
		}

		var orderCount int64
		database.DB.Model(&models.PurchaseOrder{}).
			Where("provider_id = ?", p.ID).
			Count(&orderCount)
		if orderCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf(
				"No se puede eliminar el proveedor \"%s\" porque tiene %d orden(es) de compra asociada(s)", p.Name, orderCount))
		}

		if err := database.DB.Delete(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar el proveedor")
		}

		return c.JSON(fiber.Map{"message": fmt.Sprintf("Proveedor \"%s\" eliminado exitosamente", p.Name)})
	}
}
