// Command seed applies the schema and loads demo data.  It retries the
// database connection so it can run as an init container before the
// server comes up.
package main

import (
	"database/sql"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/showtix/concert-reservation/internal/config"
	"github.com/showtix/concert-reservation/internal/database"
	"github.com/showtix/concert-reservation/internal/model"
	"github.com/showtix/concert-reservation/internal/utils"
)

const migrationFile = "migrations/001_init.sql"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := waitForDatabase(cfg)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	defer db.Close()

	if err := applyMigration(db); err != nil {
		log.Fatalf("seed: migrate: %v", err)
	}
	if err := seedUsers(db, cfg.BcryptCost); err != nil {
		log.Fatalf("seed: users: %v", err)
	}
	if err := seedConcerts(db); err != nil {
		log.Fatalf("seed: concerts: %v", err)
	}
	log.Println("seed: done")
}

func waitForDatabase(cfg config.Config) (*sql.DB, error) {
	var lastErr error
	for attempt := 1; attempt <= 30; attempt++ {
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err == nil {
			return db, nil
		}
		lastErr = err
		log.Printf("seed: waiting for database (attempt %d): %v", attempt, err)
		time.Sleep(2 * time.Second)
	}
	return nil, lastErr
}

func applyMigration(db *sql.DB) error {
	raw, err := os.ReadFile(migrationFile)
	if err != nil {
		return err
	}
	// database/sql sends one statement per Exec, so split on the
	// terminating semicolons.
	for _, stmt := range strings.Split(string(raw), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// seedUsers inserts the demo accounts unless users already exist.
func seedUsers(db *sql.DB, bcryptCost int) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		log.Println("seed: users already present, skipping")
		return nil
	}

	accounts := []struct {
		username, email, password, role string
	}{
		{"admin", "admin@example.com", "admin123", model.RoleAdmin},
		{"user", "user@example.com", "user123", model.RoleUser},
	}
	for _, a := range accounts {
		hash, err := utils.HashPassword(a.password, bcryptCost)
		if err != nil {
			return err
		}
		_, err = db.Exec(
			`INSERT INTO users (username, email, password_hash, role) VALUES (?, ?, ?, ?)`,
			a.username, a.email, hash, a.role,
		)
		if err != nil {
			return err
		}
		log.Printf("seed: created %s account %q", a.role, a.username)
	}
	return nil
}

// seedConcerts inserts a few upcoming shows unless concerts already exist.
func seedConcerts(db *sql.DB) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM concerts`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		log.Println("seed: concerts already present, skipping")
		return nil
	}

	now := time.Now().UTC()
	concerts := []struct {
		name, description string
		seat              uint32
		date              time.Time
	}{
		{"Midnight Echoes", "Indie rock night at the riverside arena.", 120, now.AddDate(0, 0, 14)},
		{"Symphony No. 40", "Classical evening with the city orchestra.", 300, now.AddDate(0, 1, 0)},
		{"Bassline Carnival", "Open-air electronic festival, one stage, ten hours.", 2000, now.AddDate(0, 2, 7)},
	}
	for _, c := range concerts {
		_, err := db.Exec(
			`INSERT INTO concerts (name, description, seat, remain_seat, date) VALUES (?, ?, ?, ?, ?)`,
			c.name, c.description, c.seat, c.seat, c.date,
		)
		if err != nil {
			return err
		}
		log.Printf("seed: created concert %q (%d seats)", c.name, c.seat)
	}
	return nil
}
