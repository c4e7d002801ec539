package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entrada: recepcion de mercancia. Al crearla se suma Quantity al stock
// del producto dentro de la misma transaccion (movements.Service).
type Entrada struct {
	ID         uint `gorm:"primaryKey"`
	ProductID  uint `gorm:"index;not null"`
	Product    Product
	ProviderID uint `gorm:"index;not null"`
	Provider   Provider
	UserID     uint `gorm:"index;not null"`
	User       User
	Quantity   int             `gorm:"not null"`
	TotalCost  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Salida: despacho de mercancia. Resta stock solo al crearse, nunca en
// ediciones posteriores.
type Salida struct {
	ID        uint `gorm:"primaryKey"`
	ProductID uint `gorm:"index;not null"`
	Product   Product
	UserID    uint `gorm:"index;not null"`
	User      User
	Receptor  string `gorm:"size:200;not null"` // persona o area que recibe
	Quantity  int    `gorm:"not null"`
	Motivo    string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PurchaseOrder existe para los reportes y la verificacion de integridad al
// eliminar proveedores; no hay flujo de ordenes en los endpoints.
type PurchaseOrder struct {
	ID          uint   `gorm:"primaryKey"`
	OrderNumber string `gorm:"size:50;uniqueIndex;not null"`
	ProviderID  uint   `gorm:"index;not null"`
	Provider    Provider
	UserID      uint `gorm:"index;not null"`
	User        User
	Status      string          `gorm:"size:20;not null;default:pendiente"`
	TotalCost   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
