package report

import (
	"strings"

	"almacen-backend/internal/database"
	"almacen-backend/internal/models"
	"almacen-backend/internal/movements"

	"github.com/gofiber/fiber/v2"
)

// GET /api/salidas/reporte
// Exporta el historial de salidas a Excel respetando los mismos filtros que
// el listado.
func SalidasReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		salidas, err := movements.FilteredSalidas(c)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el reporte")
		}

		w, err := newSheetWriter("Reporte de Salidas")
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el reporte")
		}

		var filtros []string
		if v := strings.TrimSpace(c.Query("fecha_desde")); v != "" {
			filtros = append(filtros, "Desde: "+v)
		}
		if v := strings.TrimSpace(c.Query("fecha_hasta")); v != "" {
			filtros = append(filtros, "Hasta: "+v)
		}
		if v := strings.TrimSpace(c.Query("producto")); v != "" {
			filtros = append(filtros, "Producto: "+v)
		}
		if v := strings.TrimSpace(c.Query("receptor")); v != "" {
			filtros = append(filtros, "Receptor: "+v)
		}

		if err := w.writeTitle("REPORTE DE SALIDAS DE PRODUCTOS", 8, filtros); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el reporte")
		}
		if err := w.writeHeaders([]string{"Fecha", "Codigo", "Producto", "Cantidad", "Unidad", "Receptor", "Registrado por", "Motivo"}); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el reporte")
		}

		for i := range salidas {
			s := &salidas[i]
			err := w.writeRow([]interface{}{
				s.CreatedAt.Format("02/01/2006 15:04"),
				s.Product.Code,
				s.Product.Name,
				s.Quantity,
				s.Product.Unit,
				s.Receptor,
				s.User.FullName(),
				s.Motivo,
			})
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el reporte")
			}
		}

		if err := w.setWidths([]float64{18, 15, 35, 12, 12, 30, 25, 40}); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el reporte")
		}

		return w.send(c, "reporte_salidas")
	}
}

// GET /api/reportes/inventario-actual
// Foto del inventario actual, solo lectura sobre la tabla de productos.
func CurrentInventoryReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var productos []models.Product
		err := database.DB.Preload("Category").Order("name asc").Find(&productos).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el reporte")
		}

		w, err := newSheetWriter("Inventario Actual")
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el reporte")
		}

		if err := w.writeTitle("REPORTE DE INVENTARIO ACTUAL", 8, nil); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el reporte")
		}
		if err := w.writeHeaders([]string{"Codigo", "Producto", "Categoria", "Unidad", "Stock actual", "Stock minimo", "Ubicacion", "Estado"}); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el reporte")
		}

		for i := range productos {
			p := &productos[i]
			err := w.writeRow([]interface{}{
				p.Code,
				p.Name,
				p.Category.Name,
				p.Unit,
				p.StockActual,
				p.MinStock,
				p.Location,
				p.Status,
			})
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el reporte")
			}
		}

		if err := w.setWidths([]float64{15, 35, 20, 12, 14, 14, 25, 12}); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el reporte")
		}

		return w.send(c, "inventario_actual")
	}
}

// GET /api/reportes/ajustes
// Auditoria de ajustes aplicados por las conciliaciones de inventario.
func AdjustmentsReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var ajustes []models.InventoryAdjustment
		err := database.DB.Preload("Product").Preload("User").
			Order("created_at desc").
			Find(&ajustes).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el reporte")
		}

		w, err := newSheetWriter("Ajustes de Inventario")
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el reporte")
		}

		if err := w.writeTitle("REPORTE DE AJUSTES DE INVENTARIO", 7, nil); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el reporte")
		}
		if err := w.writeHeaders([]string{"Fecha", "Codigo", "Producto", "Stock sistema", "Stock fisico", "Diferencia", "Registrado por"}); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el reporte")
		}

		for i := range ajustes {
			a := &ajustes[i]
			err := w.writeRow([]interface{}{
				a.CreatedAt.Format("02/01/2006 15:04"),
				a.Product.Code,
				a.Product.Name,
				a.SystemQty,
				a.PhysicalQty,
				a.Difference,
				a.User.FullName(),
			})
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el reporte")
			}
		}

		if err := w.setWidths([]float64{18, 15, 35, 14, 14, 12, 25}); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el reporte")
		}

		return w.send(c, "reporte_ajustes")
	}
}
