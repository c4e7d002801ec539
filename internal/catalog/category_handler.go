package catalog

import (
	"fmt"
	"strings"

	"almacen-backend/internal/database"
	"almacen-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CategoryResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

func toCategoryResponse(cat *models.Category) CategoryResponse {
	return CategoryResponse{
		ID:          cat.ID,
		Name:        cat.Name,
		Description: cat.Description,
		Status:      cat.Status,
	}
}

func validateCategory(body *CategoryRequest) error {
	body.Name = strings.TrimSpace(body.Name)
	body.Description = strings.TrimSpace(body.Description)

	if body.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "El nombre de la categoria es requerido")
	}
	if len(body.Name) > 100 {
		return fiber.NewError(fiber.StatusBadRequest, "El nombre no puede exceder 100 caracteres")
	}
	if body.Status == "" {
		body.Status = models.StatusActive
	}
	return nil
}

// GET /api/categorias
func ListCategoriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var categories []models.Category
		if err := database.DB.Order("name asc").Find(&categories).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar las categorias")
		}

		res := make([]CategoryResponse, 0, len(categories))
		for i := range categories {
			res = append(res, toCategoryResponse(&categories[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/admin/categorias
func CreateCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la peticion invalido")
		}
		if err := validateCategory(&body); err != nil {
			return err
		}

		var count int64
		database.DB.Model(&models.Category{}).
			Where("LOWER(name) = ?", strings.ToLower(body.Name)).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Ya existe una categoria con ese nombre")
		}

		cat := models.Category{
			Name:        body.Name,
			Description: body.Description,
			Status:      body.Status,
		}

		if err := database.DB.Create(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo crear la categoria")
		}

		return c.Status(fiber.StatusCreated).JSON(toCategoryResponse(&cat))
	}
}

// PUT /api/admin/categorias/:id
func UpdateCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var cat models.Category
		if err := database.DB.First(&cat, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Categoria no encontrada")
		}

		var body CategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la peticion invalido")
		}
		if err := validateCategory(&body); err != nil {
			return err
		}

		var count int64
		database.DB.Model(&models.Category{}).
			Where("LOWER(name) = ? AND id <> ?", strings.ToLower(body.Name), cat.ID).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Ya existe otra categoria con ese nombre")
		}

		cat.Name = body.Name
		cat.Description = body.Description
		cat.Status = body.Status

		if err := database.DB.Save(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar la categoria")
		}

		return c.JSON(toCategoryResponse(&cat))
	}
}

// DELETE /api/admin/categorias/:id
// Bloqueado mientras existan productos que la referencien.
func DeleteCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var cat models.Category
		if err := database.DB.First(&cat, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Categoria no encontrada")
		}

		var productCount int64
		database.DB.Model(&models.Product{}).
			Where("category_id = ?", cat.ID).
			Count(&productCount)
		if productCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf(
				"No se puede eliminar la categoria \"%s\" porque tiene %d producto(s) asociado(s)", cat.Name, productCount))
		}

		if err := database.DB.Delete(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar la categoria")
		}

		return c.JSON(fiber.Map{"message": fmt.Sprintf("Categoria \"%s\" eliminada exitosamente", cat.Name)})
	}
}
