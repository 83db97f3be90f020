package main

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spinhall/clubhouse/internal/database"
)

var seedNames = []string{
	"Seeder Player A",
	"Seeder Player B",
	"Seeder Player C",
	"Seeder Player D",
}

// Simplified config loading for the script; only the database settings are
// needed here.
func loadConfig() (dbName, primaryURL, authToken string) {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}
	dbName, ok := os.LookupEnv("DB_NAME")
	if !ok {
		log.Fatalf("Error: Required environment variable DB_NAME is not set.")
	}
	return dbName, os.Getenv("TURSO_PRIMARY_URL"), os.Getenv("TURSO_AUTH_TOKEN")
}

func main() {
	log.Info("Starting database seeder...")
	dbName, primaryURL, authToken := loadConfig()

	db, teardown, err := database.InitDB(dbName, primaryURL, authToken, "./migrations")
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	principals := make([]string, len(seedNames))
	for i, name := range seedNames {
		principals[i] = fmt.Sprintf("seed-player-%d", i+1)
		_, err := db.Exec(
			"INSERT OR IGNORE INTO members (principal, name, rating, created_at) VALUES (?, ?, ?, ?)",
			principals[i], name, 1200, time.Now().Unix(),
		)
		if err != nil {
			log.Fatalf("Failed to insert seed member %s: %s", name, err)
		}
	}
	log.Info("Ensured seed members exist.")

	const batchSize = 100 // Insert 100 matches at a time
	const numMatches = 10000

	log.Info("Preparing to insert approved matches...", "total", numMatches, "batch_size", batchSize)
	startTime := time.Now()

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("Failed to begin transaction: %s", err)
	}

	valueStrings := make([]string, 0, batchSize)
	valueArgs := make([]any, 0, batchSize*7)

	for i := 0; i < numMatches; i++ {
		submittedAt := time.Now().Add(-time.Duration(rand.Intn(365*24)) * time.Hour)
		a := rand.Intn(len(principals))
		b := (a + 1 + rand.Intn(len(principals)-1)) % len(principals)
		scoreA, scoreB := 3, rand.Intn(3)
		if rand.Intn(2) == 0 {
			scoreA, scoreB = scoreB, scoreA
		}

		valueStrings = append(valueStrings, "(?, ?, ?, ?, ?, ?, ?)")
		valueArgs = append(valueArgs,
			uuid.NewString(),
			principals[a],
			principals[b],
			scoreA,
			scoreB,
			"approved",
			submittedAt.Unix(),
		)

		if (i+1)%batchSize == 0 || (i+1) == numMatches {
			stmt := fmt.Sprintf(`
				INSERT INTO matches (id, player_a, player_b, score_a, score_b, status, submitted_at)
				VALUES %s;`, strings.Join(valueStrings, ","))

			_, err := tx.Exec(stmt, valueArgs...)
			if err != nil {
				tx.Rollback()
				log.Fatalf("Failed to execute batch insert: %s", err)
			}

			// Reset for the next batch
			valueStrings = make([]string, 0, batchSize)
			valueArgs = make([]any, 0, batchSize*7)
			log.Info("Inserted batch", "completed", i+1, "total", numMatches)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("Failed to commit transaction: %s", err)
	}

	duration := time.Since(startTime)
	log.Info("Successfully inserted all approved matches.", "duration", duration)
}
