//go:build integration
// +build integration

package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tiuub/RailwayHistoryTelegramBot/internal/adapters/postgres"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/domain"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/pkg/config"
)

// These tests need a migrated database; point RAILBOT_DATABASE_* at it
// and run with -tags integration.

func setupTestDB(t *testing.T) *postgres.DB {
	t.Helper()

	cfg, err := config.Load("railbot")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	return db
}

func TestStationRepoGetOrCreateConcurrent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()
	ctx := context.Background()

	repo := postgres.NewStationRepo(db)
	eva := fmt.Sprintf("itest-eva-%d", time.Now().UnixNano())
	t.Cleanup(func() {
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM stations WHERE eva = $1`, eva)
	})

	const writers = 8
	ids := make(chan int64, writers)
	errs := make(chan error, writers)

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st, err := repo.GetOrCreate(ctx, &domain.Station{
				EVA:       eva,
				Name:      "Teststadt Hbf",
				Latitude:  51.0,
				Longitude: 10.0,
			})
			if err != nil {
				errs <- err
				return
			}
			ids <- st.ID
		}()
	}
	wg.Wait()
	close(ids)
	close(errs)

	for err := range errs {
		t.Errorf("concurrent GetOrCreate failed: %v", err)
	}

	var first int64
	for id := range ids {
		if first == 0 {
			first = id
			continue
		}
		if id != first {
			t.Errorf("writers observed different rows: %d and %d", first, id)
		}
	}

	var count int
	if err := db.Pool.QueryRow(ctx, `
		SELECT count(*) FROM stations WHERE eva = $1
	`, eva).Scan(&count); err != nil {
		t.Fatalf("count stations: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly one row for the EVA, got %d", count)
	}
}

func TestStationRepoGetOrCreateKeepsOriginalDefaults(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()
	ctx := context.Background()

	repo := postgres.NewStationRepo(db)
	eva := fmt.Sprintf("itest-eva-%d", time.Now().UnixNano())
	t.Cleanup(func() {
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM stations WHERE eva = $1`, eva)
	})

	first, err := repo.GetOrCreate(ctx, &domain.Station{EVA: eva, Name: "Erststadt"})
	if err != nil {
		t.Fatalf("first GetOrCreate: %v", err)
	}

	second, err := repo.GetOrCreate(ctx, &domain.Station{EVA: eva, Name: "Zweitstadt"})
	if err != nil {
		t.Fatalf("second GetOrCreate: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second call created a new row: %d vs %d", second.ID, first.ID)
	}
	if second.Name != "Erststadt" {
		t.Errorf("creation defaults overwrote the stored row: %q", second.Name)
	}
}

func TestUserRepoGetOrCreateConflictUnresolved(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()
	ctx := context.Background()

	// A row under a different external id already holds the username
	// the insert would claim. GetOrCreate misses on user_id, the insert
	// trips the username uniqueness instead, and the single re-select
	// by user_id still finds nothing.
	nano := time.Now().UnixNano()
	holderID := fmt.Sprintf("itest-holder-%d", nano)
	claimed := fmt.Sprintf("itest-claimed-%d", nano)
	if _, err := db.Pool.Exec(ctx, `
		INSERT INTO users (user_id, username) VALUES ($1, $2)
	`, holderID, claimed); err != nil {
		t.Fatalf("seed holder: %v", err)
	}
	t.Cleanup(func() {
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM users WHERE user_id = $1`, holderID)
	})

	repo := postgres.NewUserRepo(db)
	_, err := repo.GetOrCreate(ctx, claimed)
	if !errors.Is(err, domain.ErrConflictUnresolved) {
		t.Fatalf("expected ErrConflictUnresolved, got %v", err)
	}
}

func TestUserJourneyRepoGetOrCreateReturnsOriginal(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()
	ctx := context.Background()

	nano := time.Now().UnixNano()
	userID := fmt.Sprintf("itest-user-%d", nano)
	journeyKey := fmt.Sprintf("itest-journey-%d", nano)

	user, err := postgres.NewUserRepo(db).GetOrCreate(ctx, userID)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	journey, err := postgres.NewJourneyRepo(db).GetOrCreate(ctx, &domain.Journey{JourneyID: journeyKey})
	if err != nil {
		t.Fatalf("seed journey: %v", err)
	}
	t.Cleanup(func() {
		cctx := context.Background()
		_, _ = db.Pool.Exec(cctx, `DELETE FROM user_journeys WHERE user_id = $1`, user.ID)
		_, _ = db.Pool.Exec(cctx, `DELETE FROM journeys WHERE id = $1`, journey.ID)
		_, _ = db.Pool.Exec(cctx, `DELETE FROM users WHERE id = $1`, user.ID)
	})

	repo := postgres.NewUserJourneyRepo(db)
	first, err := repo.GetOrCreate(ctx, &domain.UserJourney{
		UserID: user.ID, JourneyID: journey.ID, MessageID: 100, Text: "first paste",
	})
	if err != nil {
		t.Fatalf("first GetOrCreate: %v", err)
	}

	second, err := repo.GetOrCreate(ctx, &domain.UserJourney{
		UserID: user.ID, JourneyID: journey.ID, MessageID: 200, Text: "second paste",
	})
	if err != nil {
		t.Fatalf("second GetOrCreate: %v", err)
	}
	if second.MessageID != first.MessageID {
		t.Errorf("expected original message id %d, got %d", first.MessageID, second.MessageID)
	}

	var count int
	if err := db.Pool.QueryRow(ctx, `
		SELECT count(*) FROM user_journeys WHERE user_id = $1 AND journey_id = $2
	`, user.ID, journey.ID).Scan(&count); err != nil {
		t.Fatalf("count bindings: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly one binding, got %d", count)
	}
}
