package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InitDB membuka koneksi database berdasarkan environment.
// DB_DRIVER=mysql memakai DSN dari variabel DB_*, selain itu jatuh ke
// sqlite lokal untuk development.
func InitDB() (*gorm.DB, error) {
	driver := os.Getenv("DB_DRIVER")

	if driver == "mysql" {
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			getEnv("DB_HOST", "127.0.0.1"),
			getEnv("DB_PORT", "3306"),
			os.Getenv("DB_NAME"),
		)
		return gorm.Open(mysql.Open(dsn), &gorm.Config{})
	}

	path := getEnv("DB_PATH", "projectdesk.db")
	return gorm.Open(sqlite.Open(path), &gorm.Config{})
}

// AggregationWindow -> jeda antara pembuatan notifikasi dan pengiriman
// mail langsung, dalam menit. Nol berarti mail dikirim begitu stage
// send due.
func AggregationWindow() time.Duration {
	minutes, err := strconv.Atoi(os.Getenv("JOURNAL_AGGREGATION_MINUTES"))
	if err != nil || minutes < 0 {
		minutes = 5
	}
	return time.Duration(minutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
