package report

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// sheetWriter arma las hojas de reporte con el mismo formato que los
// reportes originales: titulo, fecha de generacion, linea de filtros,
// encabezados con fondo azul y bordes finos.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int

	headerStyle int
	titleStyle  int
	centerStyle int
	borderStyle int
}

func newSheetWriter(sheetName string) (*sheetWriter, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	border := []excelize.Border{
		{Type: "left", Style: 1},
		{Type: "right", Style: 1},
		{Type: "top", Style: 1},
		{Type: "bottom", Style: 1},
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Size: 12},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"0066CC"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return nil, err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	centerStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	borderStyle, err := f.NewStyle(&excelize.Style{Border: border})
	if err != nil {
		return nil, err
	}

	return &sheetWriter{
		f:           f,
		sheet:       sheetName,
		row:         1,
		headerStyle: headerStyle,
		titleStyle:  titleStyle,
		centerStyle: centerStyle,
		borderStyle: borderStyle,
	}, nil
}

func (w *sheetWriter) cell(col int) string {
	name, _ := excelize.CoordinatesToCellName(col, w.row)
	return name
}

// title escribe una fila combinada de ancho cols con el estilo dado
func (w *sheetWriter) mergedRow(cols int, value string, style int) error {
	start := w.cell(1)
	end, _ := excelize.CoordinatesToCellName(cols, w.row)
	if err := w.f.MergeCell(w.sheet, start, end); err != nil {
		return err
	}
	if err := w.f.SetCellValue(w.sheet, start, value); err != nil {
		return err
	}
	if err := w.f.SetCellStyle(w.sheet, start, end, style); err != nil {
		return err
	}
	w.row++
	return nil
}

func (w *sheetWriter) writeTitle(title string, cols int, filtros []string) error {
	if err := w.mergedRow(cols, title, w.titleStyle); err != nil {
		return err
	}
	generated := fmt.Sprintf("Generado: %s", time.Now().Format("02/01/2006 15:04"))
	if err := w.mergedRow(cols, generated, w.centerStyle); err != nil {
		return err
	}
	if len(filtros) > 0 {
		line := "Filtros: " + joinFilters(filtros)
		if err := w.mergedRow(cols, line, w.centerStyle); err != nil {
			return err
		}
	}
	w.row++ // fila en blanco antes de los encabezados
	return nil
}

func joinFilters(filtros []string) string {
	out := ""
	for i, f := range filtros {
		if i > 0 {
			out += " | "
		}
		out += f
	}
	return out
}

func (w *sheetWriter) writeHeaders(headers []string) error {
	for i, h := range headers {
		cell := w.cell(i + 1)
		if err := w.f.SetCellValue(w.sheet, cell, h); err != nil {
			return err
		}
		if err := w.f.SetCellStyle(w.sheet, cell, cell, w.headerStyle); err != nil {
			return err
		}
	}
	w.row++
	return nil
}

func (w *sheetWriter) writeRow(values []interface{}) error {
	for i, v := range values {
		cell := w.cell(i + 1)
		if err := w.f.SetCellValue(w.sheet, cell, v); err != nil {
			return err
		}
		if err := w.f.SetCellStyle(w.sheet, cell, cell, w.borderStyle); err != nil {
			return err
		}
	}
	w.row++
	return nil
}

func (w *sheetWriter) setWidths(widths []float64) error {
	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := w.f.SetColWidth(w.sheet, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

// send serializa el libro y lo entrega como descarga adjunta
func (w *sheetWriter) send(c *fiber.Ctx, filenamePrefix string) error {
	buf, err := w.f.WriteToBuffer()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el reporte")
	}

	filename := fmt.Sprintf("%s_%s.xlsx", filenamePrefix, time.Now().Format("20060102_150405"))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(buf.Bytes())
}
