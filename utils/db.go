package utils

import (
	"sync"

	"gorm.io/gorm"
)

var (
	db   *gorm.DB
	once sync.Once
)

// InitDB menyimpan koneksi database untuk dipakai lintas package.
// Hanya pemanggilan pertama yang berlaku.
func InitDB(database *gorm.DB) {
	once.Do(func() {
		db = database
	})
}

// GetDB mengembalikan koneksi database yang tersimpan.
func GetDB() *gorm.DB {
	return db
}
