// internal/db/db.go
package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq"
)

var DB *sql.DB

// Init opens the outreach database shared by the server, scheduler and
// worker. DATABASE_URL wins when set; otherwise the DSN is assembled from the
// GUESTLANE_DB_* variables.
func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=disable",
			envOr("GUESTLANE_DB_USER", "guestlane"),
			os.Getenv("GUESTLANE_DB_PASSWORD"),
			envOr("GUESTLANE_DB_HOST", "localhost"),
			envOr("GUESTLANE_DB_PORT", "5432"),
			envOr("GUESTLANE_DB_NAME", "guestlane"),
		)
	}

	var err error
	DB, err = sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to open outreach db: %v", err)
	}

	// three processes share this database; keep each one's footprint small
	DB.SetMaxOpenConns(10)
	DB.SetMaxIdleConns(5)
	DB.SetConnMaxIdleTime(5 * time.Minute)

	if err = DB.Ping(); err != nil {
		log.Fatalf("failed to reach outreach db: %v", err)
	}

	log.Println("✅ Outreach database connected")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
