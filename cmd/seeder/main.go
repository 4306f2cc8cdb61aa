package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/club"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/database"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/rating"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{
		"DB_NAME":        "ratings.db",
		"MIGRATIONS_DIR": "migrations",
	}
	for key := range config {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		}
	}
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], "", "", cfg["MIGRATIONS_DIR"])
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	store := club.New(db)

	players := []club.PlayerInfo{
		{ID: "player-1", Name: "Seeder Player A"},
		{ID: "player-2", Name: "Seeder Player B"},
		{ID: "player-3", Name: "Seeder Player C"},
		{ID: "player-4", Name: "Seeder Player D"},
		{ID: "player-5", Name: "Seeder Player E"},
		{ID: "player-6", Name: "Seeder Player F"},
	}
	if err := store.UpsertPlayers(players); err != nil {
		log.Fatalf("Failed to insert dummy players: %s", err)
	}
	log.Info("Ensured dummy players exist.")

	const numSessions = 4
	const roundsPerSession = 3

	startTime := time.Now()
	for s := 0; s < numSessions; s++ {
		playedAt := time.Now().AddDate(0, 0, -7*(numSessions-s)).Unix()
		session := club.Session{
			ID:       uuid.NewString(),
			Name:     fmt.Sprintf("Club night %d", s+1),
			PlayedAt: playedAt,
			Status:   club.SessionCompleted,
		}
		if err := store.UpsertSession(session); err != nil {
			log.Fatalf("Failed to insert session %s: %s", session.Name, err)
		}

		for round := 0; round < roundsPerSession; round++ {
			// One singles match and one doubles match per round.
			perm := rand.Perm(len(players))
			singles := &club.Match{
				ID:        uuid.NewString(),
				SessionID: session.ID,
				Round:     round,
				Slot:      0,
				Mode:      rating.ModeSingles,
				SideA:     []string{players[perm[0]].ID},
				SideB:     []string{players[perm[1]].ID},
				ScoreA:    2,
				ScoreB:    rand.Intn(2),
				Status:    club.MatchCompleted,
			}
			doubles := &club.Match{
				ID:        uuid.NewString(),
				SessionID: session.ID,
				Round:     round,
				Slot:      1,
				Mode:      rating.ModeDoubles,
				SideA:     []string{players[perm[2]].ID, players[perm[3]].ID},
				SideB:     []string{players[perm[4]].ID, players[perm[5]].ID},
				ScoreA:    rand.Intn(2),
				ScoreB:    2,
				Status:    club.MatchCompleted,
			}
			for _, m := range []*club.Match{singles, doubles} {
				if err := store.UpsertMatch(m); err != nil {
					log.Fatalf("Failed to insert match %s: %s", m.ID, err)
				}
			}
		}
		log.Info("Inserted session", "session", session.Name, "matches", roundsPerSession*2)
	}

	duration := time.Since(startTime)
	log.Info("Successfully inserted all dummy data.", "duration", duration)
}
