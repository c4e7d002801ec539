package catalog

import (
	"fmt"
	"strings"

	"almacen-backend/internal/database"
	"almacen-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ProductResponse struct {
	ID          uint   `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Unit        string `json:"unit"`
	MinStock    int    `json:"min_stock"`
	StockActual int    `json:"stock_actual"`
	CategoryID  uint   `json:"category_id"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	Status      string `json:"status"`
}

type ProductRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Unit        string `json:"unit"`
	MinStock    int    `json:"min_stock"`
	CategoryID  uint   `json:"category_id"`
	Location    string `json:"location"`
	Status      string `json:"status"`
}

func toProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		Unit:        p.Unit,
		MinStock:    p.MinStock,
		StockActual: p.StockActual,
		CategoryID:  p.CategoryID,
		Category:    p.Category.Name,
		Location:    p.Location,
		Status:      p.Status,
	}
}

func validateProduct(body *ProductRequest) error {
	body.Code = strings.TrimSpace(body.Code)
	body.Name = strings.TrimSpace(body.Name)
	body.Description = strings.TrimSpace(body.Description)
	body.Unit = strings.TrimSpace(body.Unit)
	body.Location = strings.TrimSpace(body.Location)

	if body.Code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "El codigo del producto es requerido")
	}
	if len(body.Code) > 50 {
		return fiber.NewError(fiber.StatusBadRequest, "El codigo no puede exceder 50 caracteres")
	}
	if body.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "El nombre del producto es requerido")
	}
	if len(body.Name) > 200 {
		return fiber.NewError(fiber.StatusBadRequest, "El nombre no puede exceder 200 caracteres")
	}
	if body.Unit == "" {
		return fiber.NewError(fiber.StatusBadRequest, "La unidad de medida es requerida")
	}
	if len(body.Unit) > 20 {
		return fiber.NewError(fiber.StatusBadRequest, "La unidad no puede exceder 20 caracteres")
	}
	if body.CategoryID == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "La categoria es requerida")
	}
	if len(body.Location) > 100 {
		return fiber.NewError(fiber.StatusBadRequest, "La ubicacion no puede exceder 100 caracteres")
	}
	if body.MinStock < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "El stock minimo no puede ser negativo")
	}
	if body.Status == "" {
		body.Status = models.StatusActive
	}
	return nil
}

// FindProductByCode: busqueda por codigo sin distinguir mayusculas
func FindProductByCode(code string) (*models.Product, error) {
	var product models.Product
	err := database.DB.Preload("Category").
		Where("LOWER(code) = ?", strings.ToLower(strings.TrimSpace(code))).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GET /api/productos
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var products []models.Product
		if err := database.DB.Preload("Category").Order("name asc").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los productos")
		}

		res := make([]ProductResponse, 0, len(products))
		for i := range products {
			res = append(res, toProductResponse(&products[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/admin/productos
// El stock inicial siempre es 0; solo los movimientos y la conciliacion lo
// modifican.
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la peticion invalido")
		}
		if err := validateProduct(&body); err != nil {
			return err
		}

		var count int64
		database.DB.Model(&models.Product{}).
			Where("LOWER(code) = ?", strings.ToLower(body.Code)).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Ya existe un producto con ese codigo")
		}

		var category models.Category
		if err := database.DB.First(&category, "id = ?", body.CategoryID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "La categoria seleccionada no es valida")
		}

		p := models.Product{
			Code:        body.Code,
			Name:        body.Name,
			Description: body.Description,
			Unit:        body.Unit,
			MinStock:    body.MinStock,
			StockActual: 0,
			CategoryID:  category.ID,
			Category:    category,
			Location:    body.Location,
			Status:      models.StatusActive,
		}

		if err := database.DB.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo crear el producto")
		}

		return c.Status(fiber.StatusCreated).JSON(toProductResponse(&p))
	}
}

// PUT /api/admin/productos/:id
// StockActual no aparece en el request; la edicion nunca toca el contador.
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Product
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Producto no encontrado")
		}

		var body ProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la peticion invalido")
		}
		if err := validateProduct(&body); err != nil {
			return err
		}

		var count int64
		database.DB.Model(&models.Product{}).
			Where("LOWER(code) = ? AND id <> ?", strings.ToLower(body.Code), p.ID).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Ya existe otro producto con ese codigo")
		}

		var category models.Category
		if err := database.DB.First(&category, "id = ?", body.CategoryID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "La categoria seleccionada no es valida")
		}

		p.Code = body.Code
		p.Name = body.Name
		p.Description = body.Description
		p.Unit = body.Unit
		p.MinStock = body.MinStock
		p.CategoryID = category.ID
		p.Category = category
		p.Location = body.Location
		p.Status = body.Status

		if err := database.DB.Save(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el producto")
		}

		return c.JSON(toProductResponse(&p))
	}
}

// DELETE /api/admin/productos/:id
// Bloqueado mientras existan entradas o ajustes de inventario asociados.
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Product
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Producto no encontrado")
		}

		var entradaCount int64
		database.DB.Model(&models.Entrada{}).
			Where("product_id = ?", p.ID).
			Count(&entradaCount)
		if entradaCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf(
				"No se puede eliminar el producto \"%s\" porque tiene %d entrada(s) asociada(s)", p.Name, entradaCount))
		}

		var ajusteCount int64
		database.DB.Model(&models.InventoryAdjustment{}).
			Where("product_id = ?", p.ID).
			Count(&ajusteCount)
		if ajusteCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf(
				"No se puede eliminar el producto \"%s\" porque tiene %d ajuste(s) de inventario asociado(s)", p.Name, ajusteCount))
		}

		if err := database.DB.Delete(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar el producto")
		}

		return c.JSON(fiber.Map{"message": fmt.Sprintf("Producto \"%s\" eliminado exitosamente", p.Name)})
	}
}

// GET /api/productos/buscar?code=...
func SearchProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		code := strings.TrimSpace(c.Query("code"))
		if code == "" {
			return c.JSON(fiber.Map{"found": false, "error": "Codigo no proporcionado"})
		}

		product, err := FindProductByCode(code)
		if err != nil {
			return c.JSON(fiber.Map{
				"found": false,
				"error": fmt.Sprintf("No existe producto con codigo \"%s\"", code),
			})
		}

		stockStatus := "success"
		stockMessage := "Stock normal"
		if product.LowStock() {
			stockStatus = "danger"
			stockMessage = fmt.Sprintf("ALERTA: Stock bajo el minimo (%d)", product.MinStock)
		}

		location := product.Location
		if location == "" {
			location = "No especificada"
		}

		return c.JSON(fiber.Map{
			"found": true,
			"product": fiber.Map{
				"id":            product.ID,
				"code":          product.Code,
				"name":          product.Name,
				"unit":          product.Unit,
				"category":      product.Category.Name,
				"stock_actual":  product.StockActual,
				"min_stock":     product.MinStock,
				"location":      location,
				"status":        product.Status,
				"stock_status":  stockStatus,
				"stock_message": stockMessage,
			},
		})
	}
}

type AutocompleteResult struct {
	ID          uint   `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Label       string `json:"label"`
	Value       string `json:"value"`
	Category    string `json:"category"`
	Unit        string `json:"unit"`
	StockActual int    `json:"stock_actual"`
	MinStock    int    `json:"min_stock"`
	Location    string `json:"location"`
}

// GET /api/productos/autocomplete?term=...
// Busqueda incremental por codigo o nombre, solo productos activos.
func AutocompleteProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		term := strings.TrimSpace(c.Query("term"))
		if len(term) < 2 {
			return c.JSON([]AutocompleteResult{})
		}

		like := "%" + strings.ToLower(term) + "%"

		var products []models.Product
		err := database.DB.Preload("Category").
			Where("status = ? AND (LOWER(code) LIKE ? OR LOWER(name) LIKE ?)", models.StatusActive, like, like).
			Order("name asc").
			Limit(15).
			Find(&products).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo realizar la busqueda")
		}

		res := make([]AutocompleteResult, 0, len(products))
		for i := range products {
			p := &products[i]
			location := p.Location
			if location == "" {
				location = "No especificada"
			}
			res = append(res, AutocompleteResult{
				ID:          p.ID,
				Code:        p.Code,
				Name:        p.Name,
				Label:       fmt.Sprintf("%s - %s", p.Code, p.Name),
				Value:       p.Code,
				Category:    p.Category.Name,
				Unit:        p.Unit,
				StockActual: p.StockActual,
				MinStock:    p.MinStock,
				Location:    location,
			})
		}
		return c.JSON(res)
	}
}
