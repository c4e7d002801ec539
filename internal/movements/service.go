package movements

import (
	"errors"
	"fmt"
	"strings"

	"almacen-backend/internal/database"
	"almacen-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound    = errors.New("producto no encontrado")
	ErrProductInactive    = errors.New("el producto no esta activo")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrProviderNotFound   = errors.New("proveedor no valido")
	ErrInvalidQuantity    = errors.New("la cantidad debe ser mayor a cero")
	ErrNegativeTotalCost  = errors.New("el costo total no puede ser negativo")
	ErrMissingReceptor    = errors.New("el receptor es requerido")
	ErrMissingMotivo      = errors.New("el motivo es requerido")
	ErrMissingProductCode = errors.New("el codigo del producto es requerido")
)

// Service aplica los movimientos de stock. Cada operacion es una transaccion
// que bloquea la fila del producto (SELECT ... FOR UPDATE) para que dos
// movimientos concurrentes sobre el mismo producto no se pierdan.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func lockProductByCode(tx *gorm.DB, code string) (*models.Product, error) {
	var product models.Product
	err := database.LockForUpdate(tx).
		Where("LOWER(code) = ?", strings.ToLower(strings.TrimSpace(code))).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// RegisterEntrada crea la entrada y suma la cantidad al stock del producto
// como una sola unidad: o pasan las dos cosas o ninguna.
func (s *Service) RegisterEntrada(userID uint, productCode string, providerID uint, quantity int, totalCost decimal.Decimal) (*models.Entrada, error) {
	if strings.TrimSpace(productCode) == "" {
		return nil, ErrMissingProductCode
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if totalCost.IsNegative() {
		return nil, ErrNegativeTotalCost
	}

	var entrada *models.Entrada
	err := s.db.Transaction(func(tx *gorm.DB) error {
		product, err := lockProductByCode(tx, productCode)
		if err != nil {
			return err
		}
		if product.Status != models.StatusActive {
			return ErrProductInactive
		}

		var provider models.Provider
		if err := tx.Where("id = ? AND status = ?", providerID, models.StatusActive).First(&provider).Error; err != nil {
			return ErrProviderNotFound
		}

		entrada = &models.Entrada{
			ProductID:  product.ID,
			ProviderID: provider.ID,
			UserID:     userID,
			Quantity:   quantity,
			TotalCost:  totalCost,
		}
		if err := tx.Create(entrada).Error; err != nil {
			return fmt.Errorf("no se pudo crear la entrada: %w", err)
		}

		product.StockActual += quantity
		if err := tx.Model(&models.Product{}).Where("id = ?", product.ID).
			Update("stock_actual", product.StockActual).Error; err != nil {
			return fmt.Errorf("no se pudo actualizar el stock: %w", err)
		}

		entrada.Product = *product
		entrada.Provider = provider
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entrada, nil
}

// RegisterSalida crea el despacho y resta la cantidad del stock. El stock se
// verifica dentro de la transaccion, con la fila bloqueada, para que el
// contador nunca quede negativo.
func (s *Service) RegisterSalida(userID uint, productCode, receptor string, quantity int, motivo string) (*models.Salida, error) {
	if strings.TrimSpace(productCode) == "" {
		return nil, ErrMissingProductCode
	}
	if strings.TrimSpace(receptor) == "" {
		return nil, ErrMissingReceptor
	}
	if strings.TrimSpace(motivo) == "" {
		return nil, ErrMissingMotivo
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var salida *models.Salida
	err := s.db.Transaction(func(tx *gorm.DB) error {
		product, err := lockProductByCode(tx, productCode)
		if err != nil {
			return err
		}
		if product.Status != models.StatusActive {
			return ErrProductInactive
		}
		if product.StockActual < quantity {
			return fmt.Errorf("%w: stock actual %d %s", ErrInsufficientStock, product.StockActual, product.Unit)
		}

		salida = &models.Salida{
			ProductID: product.ID,
			UserID:    userID,
			Receptor:  strings.TrimSpace(receptor),
			Quantity:  quantity,
			Motivo:    strings.TrimSpace(motivo),
		}
		if err := tx.Create(salida).Error; err != nil {
			return fmt.Errorf("no se pudo crear la salida: %w", err)
		}

		product.StockActual -= quantity
		if err := tx.Model(&models.Product{}).Where("id = ?", product.ID).
			Update("stock_actual", product.StockActual).Error; err != nil {
			return fmt.Errorf("no se pudo actualizar el stock: %w", err)
		}

		salida.Product = *product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return salida, nil
}
