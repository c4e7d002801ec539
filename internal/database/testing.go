package database

import (
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitTest abre una base sqlite en memoria y la deja en DB. Solo para tests;
// cada llamada entrega un esquema limpio.
func InitTest() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=private"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("No se pudo abrir sqlite en memoria: %v", err)
	}
	// Cada conexion del pool veria su propia base :memory:; una sola
	// conexion mantiene el esquema y serializa las transacciones.
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("No se pudo obtener la conexion de test: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := Migrate(db); err != nil {
		log.Fatalf("Error en AutoMigrate de test: %v", err)
	}
	DB = db
}
