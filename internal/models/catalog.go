package models

import "time"

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Category struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;not null"`
	Description string `gorm:"type:text"`
	Status      string `gorm:"size:20;not null;default:active"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Provider struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:50;not null"`
	RIF         string `gorm:"size:12;uniqueIndex;not null"` // registro fiscal del proveedor
	Phone       string `gorm:"size:12"`
	Email       string `gorm:"size:100"`
	ContactName string `gorm:"size:50"`
	Status      string `gorm:"size:20;not null;default:active"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Product struct {
	ID          uint   `gorm:"primaryKey"`
	Code        string `gorm:"size:50;uniqueIndex;not null"`
	Name        string `gorm:"size:200;not null"`
	Description string `gorm:"type:text"`
	Unit        string `gorm:"size:20;not null"` // kg, unidad, caja, etc.
	MinStock    int    `gorm:"not null;default:0"`
	// StockActual solo lo mutan los movimientos y la conciliacion de
	// inventario, nunca el formulario de edicion del producto.
	StockActual int  `gorm:"not null;default:0"`
	CategoryID  uint `gorm:"index;not null"`
	Category    Category
	Location    string `gorm:"size:100"`
	Status      string `gorm:"size:20;not null;default:active"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LowStock: el producto esta en o por debajo del minimo
func (p *Product) LowStock() bool {
	return p.StockActual <= p.MinStock
}
