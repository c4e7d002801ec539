package stocktaking

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"almacen-backend/internal/auth"
	"almacen-backend/internal/database"
	"almacen-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type StartSessionRequest struct {
	Notas string `json:"notas"`
}

type RecordCountRequest struct {
	ProductCode string `json:"product_code"`
	Cantidad    string `json:"cantidad"` // llega como texto del formulario de escaneo
}

type SessionResponse struct {
	ID                     uint                 `json:"id"`
	UserID                 uint                 `json:"user_id"`
	UserName               string               `json:"user_name"`
	Status                 models.SessionStatus `json:"status"`
	Notas                  string               `json:"notas"`
	TotalProductos         int                  `json:"total_productos"`
	ProductosConDiferencia int                  `json:"productos_con_diferencia"`
	CreatedAt              string               `json:"created_at"`
	FinishedAt             *string              `json:"finished_at"`
	ConciliatedAt          *string              `json:"conciliated_at"`
}

type CountDetailResponse struct {
	ID              uint   `json:"id"`
	ProductID       uint   `json:"product_id"`
	ProductCode     string `json:"product_code"`
	ProductName     string `json:"product_name"`
	Unit            string `json:"unit"`
	StockSistema    int    `json:"stock_sistema"`
	CantidadContada int    `json:"cantidad_contada"`
	Diferencia      int    `json:"diferencia"`
	CreatedAt       string `json:"created_at"`
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func toSessionResponse(s *models.InventorySession) SessionResponse {
	return SessionResponse{
		ID:                     s.ID,
		UserID:                 s.UserID,
		UserName:               s.User.FullName(),
		Status:                 s.Status,
		Notas:                  s.Notas,
		TotalProductos:         s.TotalProductos,
		ProductosConDiferencia: s.ProductosConDiferencia,
		CreatedAt:              s.CreatedAt.Format(time.RFC3339),
		FinishedAt:             formatTimePtr(s.FinishedAt),
		ConciliatedAt:          formatTimePtr(s.ConciliatedAt),
	}
}

func toCountDetailResponse(d *models.CountDetail) CountDetailResponse {
	return CountDetailResponse{
		ID:              d.ID,
		ProductID:       d.ProductID,
		ProductCode:     d.Product.Code,
		ProductName:     d.Product.Name,
		Unit:            d.Product.Unit,
		StockSistema:    d.StockSistema,
		CantidadContada: d.CantidadContada,
		Diferencia:      d.Diferencia,
		CreatedAt:       d.CreatedAt.Format(time.RFC3339),
	}
}

func sessionErrorStatus(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrCountNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrSessionNotOwned):
		return fiber.StatusForbidden
	case errors.Is(err, ErrSessionNotOpen),
		errors.Is(err, ErrSessionNotDone),
		errors.Is(err, ErrSessionNotOpenNorDone):
		return fiber.StatusConflict
	case errors.Is(err, ErrNoCounts), errors.Is(err, ErrNegativeQuantity):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrProductNotFound):
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

// GET /api/inventario/sesiones
func ListSessionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var sessions []models.InventorySession
		err := database.DB.Preload("User").Order("created_at desc").Find(&sessions).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar las sesiones")
		}

		res := make([]SessionResponse, 0, len(sessions))
		for i := range sessions {
			res = append(res, toSessionResponse(&sessions[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/inventario/sesiones
// Si el usuario ya tiene una sesion en proceso se devuelve esa, con 200; la
// creacion real responde 201.
func StartSessionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body StartSessionRequest
		if err := c.BodyParser(&body); err != nil && len(c.Body()) > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la peticion invalido")
		}

		session, created, err := svc.Start(userID, body.Notas)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo iniciar la sesion")
		}

		if !created {
			return c.JSON(fiber.Map{
				"message":    "Ya tiene una sesion de inventario en proceso",
				"session_id": session.ID,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":    fmt.Sprintf("Sesion de inventario #%d iniciada. Puede comenzar a escanear productos", session.ID),
			"session_id": session.ID,
		})
	}
}

// GET /api/inventario/sesiones/:id
func GetSessionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID, err := parseID(c, "id")
		if err != nil {
			return err
		}

		session, err := svc.Get(sessionID)
		if err != nil {
			return fiber.NewError(sessionErrorStatus(err), capitalize(err.Error()))
		}

		var detalles []models.CountDetail
		err = database.DB.Preload("Product").
			Where("session_id = ?", session.ID).
			Order("created_at desc").
			Find(&detalles).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los conteos")
		}

		conteos := make([]CountDetailResponse, 0, len(detalles))
		for i := range detalles {
			conteos = append(conteos, toCountDetailResponse(&detalles[i]))
		}

		return c.JSON(fiber.Map{
			"session": toSessionResponse(session),
			"conteos": conteos,
		})
	}
}

// POST /api/inventario/sesiones/:id/conteos
func RecordCountHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID, err := parseID(c, "id")
		if err != nil {
			return err
		}
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}
		role, err := auth.CurrentUserRole(c)
		if err != nil {
			return err
		}

		var body RecordCountRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la peticion invalido")
		}

		// Codigo inexistente y cantidad invalida son rechazos distintos
		cantidad, convErr := strconv.Atoi(strings.TrimSpace(body.Cantidad))
		if convErr != nil {
			return c.JSON(fiber.Map{
				"success": false,
				"error":   "La cantidad debe ser un numero entero",
			})
		}

		result, err := svc.RecordCount(sessionID, userID, role, body.ProductCode, cantidad)
		if err != nil {
			switch {
			case errors.Is(err, ErrProductNotFound):
				return c.JSON(fiber.Map{
					"success": false,
					"error":   fmt.Sprintf("No existe producto con codigo \"%s\"", body.ProductCode),
				})
			case errors.Is(err, ErrNegativeQuantity):
				return c.JSON(fiber.Map{
					"success": false,
					"error":   "La cantidad no puede ser negativa",
				})
			}
			return fiber.NewError(sessionErrorStatus(err), capitalize(err.Error()))
		}

		mensaje := fmt.Sprintf("Conteo registrado para \"%s\"", result.ProductName)
		if result.Updated {
			mensaje = fmt.Sprintf("Conteo actualizado para \"%s\"", result.ProductName)
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": mensaje,
			"data":    result,
		})
	}
}

// DELETE /api/inventario/sesiones/:id/conteos/:conteoId
func DeleteCountHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID, err := parseID(c, "id")
		if err != nil {
			return err
		}
		countID, err := parseID(c, "conteoId")
		if err != nil {
			return err
		}
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}
		role, err := auth.CurrentUserRole(c)
		if err != nil {
			return err
		}

		productName, err := svc.DeleteCount(sessionID, countID, userID, role)
		if err != nil {
			if errors.Is(err, ErrSessionNotOpen) {
				return c.JSON(fiber.Map{
					"success": false,
					"error":   "No se pueden eliminar conteos de sesiones finalizadas",
				})
			}
			return fiber.NewError(sessionErrorStatus(err), capitalize(err.Error()))
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": fmt.Sprintf("Conteo de \"%s\" eliminado", productName),
		})
	}
}

// POST /api/inventario/sesiones/:id/finalizar
func FinalizeSessionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID, err := parseID(c, "id")
		if err != nil {
			return err
		}
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}
		role, err := auth.CurrentUserRole(c)
		if err != nil {
			return err
		}

		session, err := svc.Finalize(sessionID, userID, role)
		if err != nil {
			return fiber.NewError(sessionErrorStatus(err), capitalize(err.Error()))
		}

		mensaje := "Sesion finalizada. El inventario fisico coincide con el sistema"
		if session.ProductosConDiferencia > 0 {
			mensaje = fmt.Sprintf("Sesion finalizada. Se encontraron %d producto(s) con diferencias", session.ProductosConDiferencia)
		}

		return c.JSON(fiber.Map{
			"message": mensaje,
			"session": toSessionResponse(session),
		})
	}
}

// POST /api/inventario/sesiones/:id/conciliar
// Solo administradores (enrutado con RequireRole); la conciliacion toca el
// stock de todos los productos con diferencia.
func ReconcileSessionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID, err := parseID(c, "id")
		if err != nil {
			return err
		}
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		ajustes, err := svc.Reconcile(sessionID, userID)
		if err != nil {
			return fiber.NewError(sessionErrorStatus(err), capitalize(err.Error()))
		}

		return c.JSON(fiber.Map{
			"message": fmt.Sprintf("Inventario conciliado exitosamente. Se ajustaron %d producto(s)", ajustes),
			"ajustes": ajustes,
		})
	}
}

// POST /api/inventario/sesiones/:id/cancelar
func CancelSessionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID, err := parseID(c, "id")
		if err != nil {
			return err
		}
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}
		role, err := auth.CurrentUserRole(c)
		if err != nil {
			return err
		}

		if err := svc.Cancel(sessionID, userID, role); err != nil {
			return fiber.NewError(sessionErrorStatus(err), capitalize(err.Error()))
		}

		return c.JSON(fiber.Map{
			"message": fmt.Sprintf("Sesion #%d cancelada", sessionID),
		})
	}
}

// GET /api/inventario/sesiones/:id/resultados
// Solo para sesiones que ya no estan en proceso; separa los conteos con y
// sin diferencia como la pantalla de resultados original.
func SessionResultsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID, err := parseID(c, "id")
		if err != nil {
			return err
		}

		session, err := svc.Get(sessionID)
		if err != nil {
			return fiber.NewError(sessionErrorStatus(err), capitalize(err.Error()))
		}
		if session.Status == models.SessionEnProceso {
			return fiber.NewError(fiber.StatusConflict, "La sesion todavia esta en proceso")
		}

		var detalles []models.CountDetail
		err = database.DB.Preload("Product").
			Joins("JOIN products ON products.id = count_details.product_id").
			Where("count_details.session_id = ?", session.ID).
			Order("products.name asc").
			Find(&detalles).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los conteos")
		}

		conDiferencia := make([]CountDetailResponse, 0)
		correctos := make([]CountDetailResponse, 0)
		for i := range detalles {
			r := toCountDetailResponse(&detalles[i])
			if r.Diferencia != 0 {
				conDiferencia = append(conDiferencia, r)
			} else {
				correctos = append(correctos, r)
			}
		}

		return c.JSON(fiber.Map{
			"session":                toSessionResponse(session),
			"conteos_con_diferencia": conDiferencia,
			"conteos_correctos":      correctos,
		})
	}
}

func parseID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Identificador invalido")
	}
	return uint(id), nil
}

func capitalize(msg string) string {
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
