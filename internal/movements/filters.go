package movements

import (
	"errors"
	"strings"
	"time"

	"almacen-backend/internal/database"
	"almacen-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// dateRangeFor filtra por fecha de creacion con los parametros
// fecha_desde / fecha_hasta en formato YYYY-MM-DD. Fechas malformadas se
// ignoran, igual que en el historial original.
func dateRangeFor(table string, dbq *gorm.DB, c *fiber.Ctx) *gorm.DB {
	if desde := strings.TrimSpace(c.Query("fecha_desde")); desde != "" {
		if d, err := time.Parse("2006-01-02", desde); err == nil {
			dbq = dbq.Where(table+".created_at >= ?", d)
		}
	}
	if hasta := strings.TrimSpace(c.Query("fecha_hasta")); hasta != "" {
		if d, err := time.Parse("2006-01-02", hasta); err == nil {
			dbq = dbq.Where(table+".created_at < ?", d.AddDate(0, 0, 1))
		}
	}
	return dbq
}

func applyEntradaFilters(dbq *gorm.DB, c *fiber.Ctx) *gorm.DB {
	dbq = dateRangeFor("entradas", dbq, c)

	if producto := strings.TrimSpace(c.Query("producto")); producto != "" {
		like := "%" + strings.ToLower(producto) + "%"
		dbq = dbq.Joins("JOIN products ON products.id = entradas.product_id").
			Where("LOWER(products.code) LIKE ? OR LOWER(products.name) LIKE ?", like, like)
	}

	if proveedor := strings.TrimSpace(c.Query("proveedor")); proveedor != "" {
		dbq = dbq.Where("entradas.provider_id = ?", proveedor)
	}

	return dbq
}

func applySalidaFilters(dbq *gorm.DB, c *fiber.Ctx) *gorm.DB {
	dbq = dateRangeFor("salidas", dbq, c)

	if producto := strings.TrimSpace(c.Query("producto")); producto != "" {
		like := "%" + strings.ToLower(producto) + "%"
		dbq = dbq.Joins("JOIN products ON products.id = salidas.product_id").
			Where("LOWER(products.code) LIKE ? OR LOWER(products.name) LIKE ?", like, like)
	}

	if receptor := strings.TrimSpace(c.Query("receptor")); receptor != "" {
		dbq = dbq.Where("LOWER(salidas.receptor) LIKE ?", "%"+strings.ToLower(receptor)+"%")
	}

	return dbq
}

// FilteredSalidas aplica los filtros del historial y devuelve las salidas
// ordenadas de la mas reciente a la mas antigua. Lo comparten el listado y
// el reporte en Excel.
func FilteredSalidas(c *fiber.Ctx) ([]models.Salida, error) {
	dbq := database.DB.Model(&models.Salida{}).
		Preload("Product").Preload("User").
		Order("salidas.created_at desc")

	dbq = applySalidaFilters(dbq, c)

	var salidas []models.Salida
	if err := dbq.Find(&salidas).Error; err != nil {
		return nil, err
	}
	return salidas, nil
}

// capitalizeError convierte el error del servicio en el mensaje que ve el
// usuario, con la primera letra en mayuscula.
func capitalizeError(err error) string {
	msg := err.Error()
	switch {
	case errors.Is(err, ErrProductNotFound):
		msg = "No existe un producto con ese codigo"
	case errors.Is(err, ErrInsufficientStock):
		msg = "Stock insuficiente. " + strings.TrimPrefix(msg, ErrInsufficientStock.Error()+": ")
	}
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
