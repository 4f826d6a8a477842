package migration

import (
	"database/sql"
	"fmt"
	"log"
	"os"
)

func RunMigrations(db *sql.DB) error {
	content, err := os.ReadFile("internal/repository/migration/init.sql")
	if err != nil {
		log.Printf("Warning: could not read migration file: %v", err)
		return nil
	}

	if _, err := db.Exec(string(content)); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	log.Println("Migrations completed")
	return nil
}
