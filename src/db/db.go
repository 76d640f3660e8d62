package db

import (
	"log"
	"tembea/src/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

func GetDb() *gorm.DB {
	if db != nil {
		return db
	}
	_db, err := gorm.Open(postgres.Open(config.GetDSN()))
	if err != nil {
		log.Printf("Error connecting to database: %s\n", err.Error())
		panic(err)
	}
	sqlDB, err := _db.DB()
	if err != nil {
		log.Fatalf("Error establishing connection to database: %s\n", err.Error())
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	db = _db
	return _db
}

// NewDB replaces the ambient handle; used by tests to inject a mock.
func NewDB(newdb *gorm.DB) {
	db = newdb
}

// Close releases the underlying pool on shutdown.
func Close() {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error retrieving sql pool: %s\n", err.Error())
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database: %s\n", err.Error())
	}
}
