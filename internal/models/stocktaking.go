package models

import "time"

type SessionStatus string

const (
	SessionEnProceso  SessionStatus = "en_proceso"
	SessionFinalizado SessionStatus = "finalizado"
	SessionConciliado SessionStatus = "conciliado"
	SessionCancelado  SessionStatus = "cancelado"
)

// InventorySession: una sesion de conteo fisico.
// en_proceso -> finalizado -> conciliado, o cancelado desde los dos primeros.
type InventorySession struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"index;not null"`
	User   User
	Status SessionStatus `gorm:"size:20;not null;default:en_proceso"`
	Notas  string        `gorm:"type:text"`
	// TotalProductos se recalcula como count(detalles) tras cada alta o baja
	// de conteo, nunca se incrementa.
	TotalProductos         int `gorm:"not null;default:0"`
	ProductosConDiferencia int `gorm:"not null;default:0"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
	FinishedAt             *time.Time
	ConciliatedAt          *time.Time
	Detalles               []CountDetail `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

// CountDetail: comparacion sistema vs fisico de un producto dentro de una
// sesion. Unico por (sesion, producto); contar dos veces sobrescribe.
type CountDetail struct {
	ID        uint `gorm:"primaryKey"`
	SessionID uint `gorm:"index;not null;uniqueIndex:idx_sesion_producto"`
	ProductID uint `gorm:"index;not null;uniqueIndex:idx_sesion_producto"`
	Product   Product
	// StockSistema es una foto del stock al momento de contar; movimientos
	// posteriores no la actualizan.
	StockSistema    int `gorm:"not null"`
	CantidadContada int `gorm:"not null"`
	Diferencia      int `gorm:"not null"` // contada - sistema
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// InventoryAdjustment: registro de auditoria de cada correccion de stock
// aplicada al conciliar. Solo se insertan filas, nunca se editan.
type InventoryAdjustment struct {
	ID          uint `gorm:"primaryKey"`
	ProductID   uint `gorm:"index;not null"`
	Product     Product
	UserID      uint `gorm:"index;not null"`
	User        User
	SystemQty   int `gorm:"not null"`
	PhysicalQty int `gorm:"not null"`
	Difference  int `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
