package database

import (
	"log"

	"almacen-backend/internal/config"
	"almacen-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("No se pudo conectar a la base de datos: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("Error en AutoMigrate: %v", err)
	}

	log.Println("Conexion a la base de datos establecida. Migracion completada.")
}

// LockForUpdate bloquea las filas seleccionadas hasta el commit de la
// transaccion. sqlite (solo tests) no acepta FOR UPDATE; alli la base ya
// serializa las escrituras.
func LockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Provider{},
		&models.Product{},
		&models.PurchaseOrder{},
		&models.Entrada{},
		&models.Salida{},
		&models.InventorySession{},
		&models.CountDetail{},
		&models.InventoryAdjustment{},
	)
}
