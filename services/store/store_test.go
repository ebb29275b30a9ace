package store_test

import (
	"PlayFinder/models"
	"PlayFinder/services/store"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.GameInvite{}, &models.JoinRequest{}))
	return db
}

type backend struct {
	name    string
	invites func(t *testing.T) store.Collection[models.GameInvite]
}

func backends() []backend {
	return []backend{
		{"memory", func(t *testing.T) store.Collection[models.GameInvite] {
			return store.NewMemory[models.GameInvite]("game_invites")
		}},
		{"gorm", func(t *testing.T) store.Collection[models.GameInvite] {
			return store.NewGorm[models.GameInvite](openSQLite(t))
		}},
	}
}

func invite(id string) models.GameInvite {
	return models.GameInvite{
		ID:           id,
		CreatorID:    "creator",
		Title:        "Treino",
		GameType:     "duplas",
		ClassMin:     1,
		ClassMax:     6,
		Date:         "2030-01-01",
		Time:         "10:00",
		Participants: []string{"creator"},
		Status:       models.INVITE_STATUS_OPEN,
	}
}

func TestCollectionBasics(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			c := b.invites(t)
			assert.Equal(t, "game_invites", c.Name())

			_, err := c.Get(ctx, "g1")
			assert.ErrorIs(t, err, store.ErrNotFound)

			created, err := c.Create(ctx, invite("g1"))
			require.NoError(t, err)
			assert.Equal(t, int64(1), created.Version)

			_, err = c.Create(ctx, invite("g1"))
			assert.ErrorIs(t, err, store.ErrDuplicate)

			updated := invite("g1")
			updated.Title = "Jogo"
			put, err := c.Put(ctx, updated)
			require.NoError(t, err)
			assert.Equal(t, int64(2), put.Version)

			_, err = c.Put(ctx, invite("g2"))
			require.NoError(t, err)

			got, err := c.Get(ctx, "g1")
			require.NoError(t, err)
			assert.Equal(t, "Jogo", got.Title)
			assert.Equal(t, []string{"creator"}, got.Participants)

			all, err := c.List(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 2)

			matched, err := c.Query(ctx, func(g models.GameInvite) bool { return g.Title == "Jogo" })
			require.NoError(t, err)
			require.Len(t, matched, 1)
			assert.Equal(t, "g1", matched[0].ID)

			require.NoError(t, c.Remove(ctx, "g1"))
			require.NoError(t, c.Remove(ctx, "g1"))
			_, err = c.Get(ctx, "g1")
			assert.ErrorIs(t, err, store.ErrNotFound)
		})
	}
}

func TestUpdateFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			c := b.invites(t)
			_, err := c.Create(ctx, invite("g1"))
			require.NoError(t, err)

			_, err = c.Update(ctx, "g1", func(g models.GameInvite) (models.GameInvite, error) {
				g.Title = "changed"
				return g, boom
			})
			assert.ErrorIs(t, err, boom)

			got, err := c.Get(ctx, "g1")
			require.NoError(t, err)
			assert.Equal(t, "Treino", got.Title)
			assert.Equal(t, int64(1), got.Version)

			_, err = c.Update(ctx, "missing", func(g models.GameInvite) (models.GameInvite, error) { return g, nil })
			assert.ErrorIs(t, err, store.ErrNotFound)
		})
	}
}

func TestConcurrentUpdatesAreNotLost(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			c := b.invites(t)
			_, err := c.Create(ctx, invite("g1"))
			require.NoError(t, err)

			var wg sync.WaitGroup
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, err := c.Update(ctx, "g1", func(g models.GameInvite) (models.GameInvite, error) {
						g.Participants = append(append([]string{}, g.Participants...), fmt.Sprintf("p%d", i))
						return g, nil
					})
					assert.NoError(t, err)
				}(i)
			}
			wg.Wait()

			got, err := c.Get(ctx, "g1")
			require.NoError(t, err)
			assert.Len(t, got.Participants, 11)
			assert.Equal(t, int64(11), got.Version)
		})
	}
}

func TestMemoryDoesNotShareState(t *testing.T) {
	ctx := context.Background()
	c := store.NewMemory[models.GameInvite]("game_invites")
	g := invite("g1")
	_, err := c.Create(ctx, g)
	require.NoError(t, err)

	g.Participants[0] = "someone else"
	got, err := c.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, []string{"creator"}, got.Participants)
}

func TestQueryByColumn(t *testing.T) {
	ctx := context.Background()
	collections := map[string]store.Collection[models.JoinRequest]{
		"memory": store.NewMemory[models.JoinRequest]("join_requests"),
		"gorm":   store.NewGorm[models.JoinRequest](openSQLite(t)),
	}
	for name, reqs := range collections {
		t.Run(name, func(t *testing.T) {
			for i, gameID := range []string{"g1", "g1", "g2"} {
				_, err := reqs.Create(ctx, models.JoinRequest{
					ID:     fmt.Sprintf("r%d", i),
					GameID: gameID,
					UserID: fmt.Sprintf("u%d", i),
					Status: models.REQUEST_STATUS_PENDING,
				})
				require.NoError(t, err)
			}

			got, err := store.QueryBy(ctx, reqs, "game_id", "g1", func(r models.JoinRequest) bool {
				return r.GameID == "g1" && r.UserID != "u1"
			})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "r0", got[0].ID)
		})
	}
}

func TestGormQueryByFiltersInTheDatabase(t *testing.T) {
	db, mock := mockedPostgres(t)
	mock.ExpectQuery(`SELECT \* FROM "join_requests" WHERE "game_id" = \$1`).
		WithArgs("g1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "game_id", "user_id", "status"}).
			AddRow("r1", "g1", "u1", models.REQUEST_STATUS_PENDING))

	got, err := store.QueryBy(context.Background(), store.Collection[models.JoinRequest](store.NewGorm[models.JoinRequest](db)),
		"game_id", "g1", func(r models.JoinRequest) bool { return r.GameID == "g1" })
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "u1", got[0].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
