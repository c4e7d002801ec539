package stocktaking

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"almacen-backend/internal/database"
	"almacen-backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrSessionNotFound       = errors.New("sesion no encontrada")
	ErrSessionNotOwned       = errors.New("no tiene permiso para acceder a esta sesion")
	ErrSessionNotOpen        = errors.New("la sesion no esta en proceso")
	ErrSessionNotDone        = errors.New("solo se pueden conciliar sesiones finalizadas")
	ErrSessionNotOpenNorDone = errors.New("no se puede cancelar esta sesion")
	ErrNoCounts              = errors.New("no puede finalizar una sesion sin conteos")
	ErrProductNotFound       = errors.New("no existe producto con ese codigo")
	ErrNegativeQuantity      = errors.New("la cantidad no puede ser negativa")
	ErrCountNotFound         = errors.New("conteo no encontrado")
)

// CountResult: payload estructurado que devuelve cada conteo registrado.
type CountResult struct {
	ProductName     string `json:"product_name"`
	ProductCode     string `json:"product_code"`
	StockSistema    int    `json:"stock_sistema"`
	CantidadContada int    `json:"cantidad_contada"`
	Diferencia      int    `json:"diferencia"`
	Unit            string `json:"unit"`
	Updated         bool   `json:"updated"` // true si sobrescribio un conteo previo
}

// Service implementa el ciclo de vida de las sesiones de inventario fisico:
// en_proceso -> finalizado -> conciliado, o cancelado.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Start devuelve la sesion en proceso del usuario si ya existe una; solo
// crea una nueva cuando no la hay. created indica cual de los dos casos fue.
func (s *Service) Start(userID uint, notas string) (session *models.InventorySession, created bool, err error) {
	var existing models.InventorySession
	err = s.db.Where("user_id = ? AND status = ?", userID, models.SessionEnProceso).
		First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	session = &models.InventorySession{
		UserID: userID,
		Status: models.SessionEnProceso,
		Notas:  strings.TrimSpace(notas),
	}
	if err := s.db.Create(session).Error; err != nil {
		return nil, false, fmt.Errorf("no se pudo crear la sesion: %w", err)
	}
	return session, true, nil
}

func (s *Service) Get(sessionID uint) (*models.InventorySession, error) {
	var session models.InventorySession
	err := s.db.Preload("User").First(&session, "id = ?", sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// canTouch: solo el dueno de la sesion o un administrador registran o
// eliminan conteos.
func canTouch(session *models.InventorySession, userID uint, role models.UserRole) bool {
	return session.UserID == userID || role == models.RoleAdmin
}

// RecordCount registra (o sobrescribe) el conteo de un producto. La
// diferencia se calcula contra el stock del momento: una foto, no una
// referencia viva. Tras cada registro el total de la sesion se recalcula
// como el numero de filas, no se incrementa.
func (s *Service) RecordCount(sessionID, userID uint, role models.UserRole, productCode string, cantidad int) (*CountResult, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if !canTouch(session, userID, role) {
		return nil, ErrSessionNotOwned
	}
	if session.Status != models.SessionEnProceso {
		return nil, ErrSessionNotOpen
	}
	if cantidad < 0 {
		return nil, ErrNegativeQuantity
	}

	var result CountResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		err := tx.Where("LOWER(code) = ?", strings.ToLower(strings.TrimSpace(productCode))).
			First(&product).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %q", ErrProductNotFound, productCode)
			}
			return err
		}

		stockSistema := product.StockActual
		diferencia := cantidad - stockSistema

		var existing models.CountDetail
		err = tx.Where("session_id = ? AND product_id = ?", session.ID, product.ID).
			First(&existing).Error
		switch {
		case err == nil:
			// Mismo producto contado dos veces: gana el ultimo, sin historial
			existing.CantidadContada = cantidad
			existing.Diferencia = diferencia
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			result.Updated = true
		case errors.Is(err, gorm.ErrRecordNotFound):
			detail := models.CountDetail{
				SessionID:       session.ID,
				ProductID:       product.ID,
				StockSistema:    stockSistema,
				CantidadContada: cantidad,
				Diferencia:      diferencia,
			}
			if err := tx.Create(&detail).Error; err != nil {
				return err
			}
		default:
			return err
		}

		if err := recountSession(tx, session.ID); err != nil {
			return err
		}

		result.ProductName = product.Name
		result.ProductCode = product.Code
		result.StockSistema = stockSistema
		result.CantidadContada = cantidad
		result.Diferencia = diferencia
		result.Unit = product.Unit
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// recountSession deja total_productos igual al numero de filas de conteo.
func recountSession(tx *gorm.DB, sessionID uint) error {
	var total int64
	if err := tx.Model(&models.CountDetail{}).
		Where("session_id = ?", sessionID).
		Count(&total).Error; err != nil {
		return err
	}
	return tx.Model(&models.InventorySession{}).
		Where("id = ?", sessionID).
		Update("total_productos", total).Error
}

// DeleteCount elimina un conteo; solo mientras la sesion este en proceso.
func (s *Service) DeleteCount(sessionID, countID, userID uint, role models.UserRole) (productName string, err error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return "", err
	}
	if !canTouch(session, userID, role) {
		return "", ErrSessionNotOwned
	}
	if session.Status != models.SessionEnProceso {
		return "", ErrSessionNotOpen
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var detail models.CountDetail
		err := tx.Preload("Product").
			Where("id = ? AND session_id = ?", countID, session.ID).
			First(&detail).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCountNotFound
			}
			return err
		}
		productName = detail.Product.Name

		if err := tx.Delete(&detail).Error; err != nil {
			return err
		}
		return recountSession(tx, session.ID)
	})
	if err != nil {
		return "", err
	}
	return productName, nil
}

// Finalize cierra la sesion: requiere al menos un conteo, estampa la hora y
// cuenta los productos con diferencia. Despues de esto los conteos son
// inmutables.
func (s *Service) Finalize(sessionID, userID uint, role models.UserRole) (*models.InventorySession, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if !canTouch(session, userID, role) {
		return nil, ErrSessionNotOwned
	}
	if session.Status != models.SessionEnProceso {
		return nil, ErrSessionNotOpen
	}

	var total int64
	if err := s.db.Model(&models.CountDetail{}).
		Where("session_id = ?", session.ID).
		Count(&total).Error; err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, ErrNoCounts
	}

	var conDiferencia int64
	if err := s.db.Model(&models.CountDetail{}).
		Where("session_id = ? AND diferencia <> 0", session.ID).
		Count(&conDiferencia).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	session.Status = models.SessionFinalizado
	session.FinishedAt = &now
	session.ProductosConDiferencia = int(conDiferencia)
	session.TotalProductos = int(total)

	if err := s.db.Save(session).Error; err != nil {
		return nil, fmt.Errorf("no se pudo finalizar la sesion: %w", err)
	}
	return session, nil
}

// Reconcile aplica la conciliacion en una sola transaccion: por cada conteo
// con diferencia crea un ajuste de auditoria y sobrescribe el stock del
// producto con la cantidad contada. Si algo falla no se aplica ningun
// ajuste y la sesion queda finalizada.
func (s *Service) Reconcile(sessionID, userID uint) (ajustes int, err error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return 0, err
	}
	if session.Status != models.SessionFinalizado {
		return 0, ErrSessionNotDone
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// El estado se relee con la fila bloqueada: dos conciliaciones
		// simultaneas no deben duplicar los ajustes.
		var current models.InventorySession
		if err := database.LockForUpdate(tx).
			First(&current, "id = ?", session.ID).Error; err != nil {
			return err
		}
		if current.Status != models.SessionFinalizado {
			return ErrSessionNotDone
		}

		var discrepantes []models.CountDetail
		if err := tx.Where("session_id = ? AND diferencia <> 0", session.ID).
			Find(&discrepantes).Error; err != nil {
			return err
		}

		for i := range discrepantes {
			conteo := &discrepantes[i]

			var product models.Product
			if err := database.LockForUpdate(tx).
				First(&product, "id = ?", conteo.ProductID).Error; err != nil {
				return err
			}

			ajuste := models.InventoryAdjustment{
				ProductID:   conteo.ProductID,
				UserID:      userID,
				SystemQty:   conteo.StockSistema,
				PhysicalQty: conteo.CantidadContada,
				Difference:  conteo.Diferencia,
			}
			if err := tx.Create(&ajuste).Error; err != nil {
				return err
			}

			if err := tx.Model(&models.Product{}).Where("id = ?", product.ID).
				Update("stock_actual", conteo.CantidadContada).Error; err != nil {
				return err
			}

			ajustes++
		}

		now := time.Now()
		res := tx.Model(&models.InventorySession{}).
			Where("id = ? AND status = ?", session.ID, models.SessionFinalizado).
			Updates(map[string]interface{}{
				"status":         models.SessionConciliado,
				"conciliated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSessionNotDone
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return ajustes, nil
}

// Cancel: solo desde en_proceso o finalizado; conciliado y cancelado son
// estados terminales.
func (s *Service) Cancel(sessionID, userID uint, role models.UserRole) error {
	session, err := s.Get(sessionID)
	if err != nil {
		return err
	}
	if !canTouch(session, userID, role) {
		return ErrSessionNotOwned
	}
	if session.Status != models.SessionEnProceso && session.Status != models.SessionFinalizado {
		return ErrSessionNotOpenNorDone
	}

	return s.db.Model(&models.InventorySession{}).
		Where("id = ?", session.ID).
		Update("status", models.SessionCancelado).Error
}
