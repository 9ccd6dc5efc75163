package config

import (
	"fmt"
	"os"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InitDB membuka koneksi database berdasarkan environment.
// DB_DRIVER=sqlite dipakai untuk development lokal, default-nya MySQL.
func InitDB() (*gorm.DB, error) {
	driver := os.Getenv("DB_DRIVER")

	if driver == "sqlite" {
		path := os.Getenv("DB_PATH")
		if path == "" {
			path = "evenza.db"
		}
		return gorm.Open(sqlite.Open(path), &gorm.Config{})
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		getEnv("DB_USER", "root"),
		os.Getenv("DB_PASSWORD"),
		getEnv("DB_HOST", "127.0.0.1"),
		getEnv("DB_PORT", "3306"),
		getEnv("DB_NAME", "evenza"),
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// SweepInterval membaca interval scheduler announcement dari env (detik).
// Default 60 detik sesuai perilaku scheduler lama.
func SweepInterval() time.Duration {
	raw := os.Getenv("ANNOUNCEMENT_SWEEP_INTERVAL")
	if raw == "" {
		return 60 * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
