// Seeds test users with referral balances so the withdraw flow and the admin
// review queue can be exercised against a fresh database.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"refpay/internal/config"
	"refpay/internal/repository/migration"
)

func main() {
	referrerID := flag.Int64("referrer-id", 0, "user id of the referrer to credit")
	count := flag.Int("count", 3, "number of referred test users to create")
	bonus := flag.Float64("bonus", 300.0, "referral bonus credited per referred user")
	flag.Parse()

	if *referrerID <= 0 {
		log.Fatal("--referrer-id is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration:", err)
	}

	db, err := sql.Open("postgres", cfg.DB.DatabaseURL)
	if err != nil {
		log.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := migration.RunMigrations(db); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	if err := seed(db, *referrerID, *count, decimal.NewFromFloat(*bonus)); err != nil {
		log.Fatalf("seed error: %v", err)
	}
}

func seed(db *sql.DB, referrerID int64, count int, bonus decimal.Decimal) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.Exec(`INSERT INTO users (id, username, first_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING`,
		referrerID, fmt.Sprintf("referrer_%d", referrerID), "Referrer")
	if err != nil {
		return fmt.Errorf("create referrer: %w", err)
	}

	seedStamp := time.Now().Unix() % 1_000_000_000
	for i := 0; i < count; i++ {
		// Telegram-like positive bigint, unique per run.
		newUserID := seedStamp*100 + int64(90_000_000_000) + int64(i)
		_, err = tx.Exec(`INSERT INTO users (id, username, first_name)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO NOTHING`,
			newUserID, fmt.Sprintf("test_ref_%d", newUserID), fmt.Sprintf("TestRef%d", i+1))
		if err != nil {
			return fmt.Errorf("create referred user: %w", err)
		}
	}

	total := bonus.Mul(decimal.NewFromInt(int64(count)))
	var balance decimal.Decimal
	err = tx.QueryRow(`UPDATE users
		SET referral_balance = referral_balance + $1
		WHERE id = $2
		RETURNING referral_balance`, total, referrerID).Scan(&balance)
	if err != nil {
		return fmt.Errorf("credit referrer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Printf("created %d referred users, credited %s to referrer %d (balance now %s)",
		count, total, referrerID, balance)
	return nil
}
