package games_test

import (
	pgconfig "PlayFinder/config/postgres"
	"PlayFinder/models"
	"PlayFinder/services/games"
	"PlayFinder/services/membership"
	"PlayFinder/services/notify"
	redis_service "PlayFinder/services/redis"
	"PlayFinder/services/store"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

var brt = time.FixedZone("BRT", -3*60*60)

type fixture struct {
	svc    *games.Service
	stores *store.Set
	events *notify.Recorder
	clock  *time.Time
}

func newFixture(t *testing.T, stores *store.Set) *fixture {
	t.Helper()
	now := time.Date(2025, 6, 10, 10, 0, 0, 0, brt)
	f := &fixture{stores: stores, events: notify.NewRecorder(0), clock: &now}

	engine := membership.NewEngine(brt)
	engine.Now = func() time.Time { return *f.clock }
	logger, _ := test.NewNullLogger()
	f.svc = games.NewService(stores, engine, f.events, logger)
	return f
}

func memoryFixture(t *testing.T) *fixture {
	return newFixture(t, store.NewMemorySet())
}

func sqliteFixture(t *testing.T) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := pgconfig.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), false)
	require.NoError(t, err)
	require.NoError(t, pgconfig.MigrateDatabase(db))
	sqlDB, _ := db.DB()
	t.Cleanup(func() { sqlDB.Close() })
	return newFixture(t, store.NewGormSet(db))
}

func redisFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rc, err := redis_service.InitRedis(context.Background(), "redis://"+mr.Addr(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { redis_service.CloseRedis(rc) })
	return newFixture(t, redis_service.NewSet(rc))
}

var (
	carla = models.UserRef{ID: "carla", Name: "Carla"}
	ana   = models.UserRef{ID: "ana", Name: "Ana"}
	bia   = models.UserRef{ID: "bia", Name: "Bia"}
	caio  = models.UserRef{ID: "caio", Name: "Caio"}
)

func (f *fixture) createInvite(t *testing.T, gameType string) models.GameInvite {
	t.Helper()
	g, err := f.svc.CreateInvite(context.Background(), carla, models.InviteCreation{
		Title:        "Jogo no Batel",
		GameType:     gameType,
		ClassMin:     3,
		ClassMax:     5,
		City:         "Curitiba",
		Neighborhood: "Batel",
		Date:         "2025-06-12",
		Time:         "18:00",
	})
	require.NoError(t, err)
	return g
}

func (f *fixture) eventsFor(user string) []string {
	list, _ := f.events.List(context.Background(), user)
	var kinds []string
	for i := len(list) - 1; i >= 0; i-- {
		kinds = append(kinds, list[i].Kind)
	}
	return kinds
}

func TestSinglesLifecycle(t *testing.T) {
	ctx := context.Background()
	f := memoryFixture(t)
	g := f.createInvite(t, "simples")

	reqA, err := f.svc.RequestJoin(ctx, g.ID, ana, "posso?")
	require.NoError(t, err)
	assert.Equal(t, models.REQUEST_STATUS_PENDING, reqA.Status)
	assert.Equal(t, []string{"request_created"}, f.eventsFor("carla"))

	accepted, g, err := f.svc.AcceptRequest(ctx, reqA.ID, "carla")
	require.NoError(t, err)
	assert.Equal(t, models.REQUEST_STATUS_ACCEPTED, accepted.Status)
	assert.Equal(t, []string{"carla", "ana"}, g.Participants)
	assert.Equal(t, []string{"request_accepted"}, f.eventsFor("ana"))

	// full now, new requests are refused
	_, err = f.svc.RequestJoin(ctx, g.ID, bia, "")
	assert.ErrorIs(t, err, membership.ErrGameFull)

	detail, err := f.svc.GetInvite(ctx, g.ID, "ana")
	require.NoError(t, err)
	assert.Equal(t, models.INVITE_STATUS_FULL, detail.Status)
	assert.Equal(t, membership.StatusAccepted, detail.UserStatus)
	assert.Empty(t, detail.Requests)

	detail, err = f.svc.GetInvite(ctx, g.ID, "carla")
	require.NoError(t, err)
	assert.Equal(t, membership.StatusCreator, detail.UserStatus)
	assert.Len(t, detail.Requests, 1)
	assert.Equal(t, "3ª a 5ª classe", detail.ClassLabel)
}

func TestAcceptWhenFullKeepsRequestPending(t *testing.T) {
	ctx := context.Background()
	f := memoryFixture(t)
	g := f.createInvite(t, "simples")

	reqA, err := f.svc.RequestJoin(ctx, g.ID, ana, "")
	require.NoError(t, err)
	reqB, err := f.svc.RequestJoin(ctx, g.ID, bia, "")
	require.NoError(t, err)

	_, _, err = f.svc.AcceptRequest(ctx, reqA.ID, "carla")
	require.NoError(t, err)
	_, _, err = f.svc.AcceptRequest(ctx, reqB.ID, "carla")
	assert.ErrorIs(t, err, membership.ErrGameFull)

	got, err := f.stores.Requests.Get(ctx, reqB.ID)
	require.NoError(t, err)
	assert.Equal(t, models.REQUEST_STATUS_PENDING, got.Status)
	assert.Empty(t, f.eventsFor("bia"))
}

func TestConcurrentAcceptsOnlyOneWins(t *testing.T) {
	backends := map[string]func(t *testing.T) *fixture{
		"memory": memoryFixture,
		"sqlite": sqliteFixture,
		"redis":  redisFixture,
	}
	for name, mk := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			f := mk(t)
			g := f.createInvite(t, "simples")

			reqA, err := f.svc.RequestJoin(ctx, g.ID, ana, "")
			require.NoError(t, err)
			reqB, err := f.svc.RequestJoin(ctx, g.ID, bia, "")
			require.NoError(t, err)

			var wg sync.WaitGroup
			errs := make([]error, 2)
			for i, id := range []string{reqA.ID, reqB.ID} {
				wg.Add(1)
				go func(i int, id string) {
					defer wg.Done()
					_, _, errs[i] = f.svc.AcceptRequest(ctx, id, "carla")
				}(i, id)
			}
			wg.Wait()

			wins := 0
			for _, err := range errs {
				if err == nil {
					wins++
				} else {
					assert.ErrorIs(t, err, membership.ErrGameFull)
				}
			}
			assert.Equal(t, 1, wins)

			got, err := f.stores.Invites.Get(ctx, g.ID)
			require.NoError(t, err)
			assert.Len(t, got.Participants, 2)
		})
	}
}

// answeredAfterRead runs after the next query, as if another caller answered
// a request right after the snapshot was taken
type answeredAfterRead struct {
	store.Collection[models.JoinRequest]
	after func()
}

func (a *answeredAfterRead) Query(ctx context.Context, match func(models.JoinRequest) bool) ([]models.JoinRequest, error) {
	recs, err := a.Collection.Query(ctx, match)
	if after := a.after; after != nil {
		a.after = nil
		after()
	}
	return recs, err
}

func TestAcceptAfterRejectTakesNoPlace(t *testing.T) {
	ctx := context.Background()
	stores := store.NewMemorySet()
	hooked := &answeredAfterRead{Collection: stores.Requests}
	stores.Requests = hooked
	f := newFixture(t, stores)
	g := f.createInvite(t, "simples")

	req, err := f.svc.RequestJoin(ctx, g.ID, bia, "")
	require.NoError(t, err)
	before, err := stores.Invites.Get(ctx, g.ID)
	require.NoError(t, err)

	hooked.after = func() {
		_, err := f.svc.RejectRequest(ctx, req.ID, "carla")
		require.NoError(t, err)
	}
	_, _, err = f.svc.AcceptRequest(ctx, req.ID, "carla")
	assert.ErrorIs(t, err, membership.ErrRequestNotPending)

	after, err := stores.Invites.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Version, after.Version, "the invite was never written")
	assert.Equal(t, []string{"carla"}, after.Participants)

	// the place is still there for someone else
	other, err := f.svc.RequestJoin(ctx, g.ID, caio, "")
	require.NoError(t, err)
	_, accepted, err := f.svc.AcceptRequest(ctx, other.ID, "carla")
	require.NoError(t, err)
	assert.Equal(t, []string{"carla", "caio"}, accepted.Participants)
}

func TestConcurrentRequestsBySameUser(t *testing.T) {
	ctx := context.Background()
	f := memoryFixture(t)
	g := f.createInvite(t, "duplas")

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.RequestJoin(ctx, g.ID, ana, "")
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, membership.ErrAlreadyRequested)
		}
	}
	assert.Equal(t, 1, ok)

	mine, err := f.svc.ListRequestsBy(ctx, "ana")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestRequestIDsFitTheColumn(t *testing.T) {
	ctx := context.Background()
	sch, err := schema.Parse(&models.JoinRequest{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)
	size := sch.LookUpField("ID").Size
	require.Positive(t, size)

	f := sqliteFixture(t)
	creator := models.UserRef{ID: uuid.NewString(), Name: "Carla"}
	player := models.UserRef{ID: uuid.NewString(), Name: "Ana"}
	g, err := f.svc.CreateInvite(ctx, creator, models.InviteCreation{
		Title:        "Jogo no Batel",
		GameType:     "simples",
		ClassMin:     3,
		ClassMax:     5,
		City:         "Curitiba",
		Neighborhood: "Batel",
		Date:         "2025-06-12",
		Time:         "18:00",
	})
	require.NoError(t, err)

	first, err := f.svc.RequestJoin(ctx, g.ID, player, "")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(first.ID), size)

	_, err = f.svc.RejectRequest(ctx, first.ID, creator.ID)
	require.NoError(t, err)
	second, err := f.svc.RequestJoin(ctx, g.ID, player, "")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(second.ID), size)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestRejectThenRequestAgain(t *testing.T) {
	ctx := context.Background()
	f := memoryFixture(t)
	g := f.createInvite(t, "duplas")

	req, err := f.svc.RequestJoin(ctx, g.ID, ana, "")
	require.NoError(t, err)

	_, err = f.svc.RejectRequest(ctx, req.ID, "ana")
	assert.ErrorIs(t, err, membership.ErrNotAuthorized)

	rejected, err := f.svc.RejectRequest(ctx, req.ID, "carla")
	require.NoError(t, err)
	assert.Equal(t, models.REQUEST_STATUS_REJECTED, rejected.Status)
	assert.Equal(t, []string{"request_rejected"}, f.eventsFor("ana"))

	_, err = f.svc.RejectRequest(ctx, req.ID, "carla")
	assert.ErrorIs(t, err, membership.ErrRequestNotPending)

	*f.clock = f.clock.Add(time.Minute)
	again, err := f.svc.RequestJoin(ctx, g.ID, ana, "segunda chance")
	require.NoError(t, err)
	assert.NotEqual(t, req.ID, again.ID)

	detail, err := f.svc.GetInvite(ctx, g.ID, "ana")
	require.NoError(t, err)
	assert.Equal(t, membership.StatusPending, detail.UserStatus)
}

func TestLeaveGame(t *testing.T) {
	ctx := context.Background()
	f := memoryFixture(t)
	g := f.createInvite(t, "duplas")

	req, err := f.svc.RequestJoin(ctx, g.ID, ana, "")
	require.NoError(t, err)
	_, _, err = f.svc.AcceptRequest(ctx, req.ID, "carla")
	require.NoError(t, err)

	_, err = f.svc.LeaveGame(ctx, g.ID, "carla")
	assert.ErrorIs(t, err, membership.ErrNotAuthorized)

	left, err := f.svc.LeaveGame(ctx, g.ID, "ana")
	require.NoError(t, err)
	assert.Equal(t, []string{"carla"}, left.Participants)

	detail, err := f.svc.GetInvite(ctx, g.ID, "ana")
	require.NoError(t, err)
	assert.Equal(t, membership.StatusNotRequested, detail.UserStatus)

	_, err = f.svc.RequestJoin(ctx, g.ID, ana, "voltei")
	assert.NoError(t, err)
}

func TestDeleteInviteCascades(t *testing.T) {
	ctx := context.Background()
	f := memoryFixture(t)
	g := f.createInvite(t, "duplas")

	reqA, err := f.svc.RequestJoin(ctx, g.ID, ana, "")
	require.NoError(t, err)
	_, _, err = f.svc.AcceptRequest(ctx, reqA.ID, "carla")
	require.NoError(t, err)
	_, err = f.svc.RequestJoin(ctx, g.ID, bia, "")
	require.NoError(t, err)
	_, err = f.svc.RequestJoin(ctx, g.ID, caio, "")
	require.NoError(t, err)

	_, err = f.svc.DeleteInvite(ctx, g.ID, "ana")
	assert.ErrorIs(t, err, membership.ErrNotAuthorized)

	cancelled, err := f.svc.DeleteInvite(ctx, g.ID, "carla")
	require.NoError(t, err)
	assert.Equal(t, models.INVITE_STATUS_CANCELLED, cancelled.Status)

	reqs, err := f.stores.Requests.Query(ctx, func(r models.JoinRequest) bool { return r.GameID == g.ID })
	require.NoError(t, err)
	for _, r := range reqs {
		assert.NotEqual(t, models.REQUEST_STATUS_PENDING, r.Status, r.ID)
	}

	for _, u := range []string{"ana", "bia", "caio"} {
		assert.Contains(t, f.eventsFor(u), "invite_deleted", u)
	}
	assert.NotContains(t, f.eventsFor("carla"), "invite_deleted")

	_, err = f.svc.RequestJoin(ctx, g.ID, models.UserRef{ID: "dani"}, "")
	assert.ErrorIs(t, err, membership.ErrInviteCancelled)

	available, err := f.svc.ListAvailable(ctx, membership.Filter{})
	require.NoError(t, err)
	assert.Empty(t, available)
}

// flakyRequests fails the next n updates as if the database went away
type flakyRequests struct {
	store.Collection[models.JoinRequest]
	n int
}

func (f *flakyRequests) Update(ctx context.Context, id string, fn func(models.JoinRequest) (models.JoinRequest, error)) (models.JoinRequest, error) {
	if f.n > 0 {
		f.n--
		return models.JoinRequest{}, store.Unavailable("join_requests", "update", errors.New("connection reset by peer"))
	}
	return f.Collection.Update(ctx, id, fn)
}

func TestDeleteInviteRetryFinishesCascade(t *testing.T) {
	ctx := context.Background()
	stores := store.NewMemorySet()
	flaky := &flakyRequests{Collection: stores.Requests}
	stores.Requests = flaky
	f := newFixture(t, stores)
	g := f.createInvite(t, "duplas")

	for _, u := range []models.UserRef{bia, caio} {
		_, err := f.svc.RequestJoin(ctx, g.ID, u, "")
		require.NoError(t, err)
	}
	pending := func() int {
		reqs, err := stores.Requests.Query(ctx, func(r models.JoinRequest) bool {
			return r.GameID == g.ID && r.Status == models.REQUEST_STATUS_PENDING
		})
		require.NoError(t, err)
		return len(reqs)
	}

	flaky.n = 1
	_, err := f.svc.DeleteInvite(ctx, g.ID, "carla")
	require.ErrorIs(t, err, store.ErrStoreUnavailable)
	stored, err := stores.Invites.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.INVITE_STATUS_CANCELLED, stored.Status)
	assert.Equal(t, 2, pending())

	_, err = f.svc.DeleteInvite(ctx, g.ID, "ana")
	assert.ErrorIs(t, err, membership.ErrNotAuthorized)

	cancelled, err := f.svc.DeleteInvite(ctx, g.ID, "carla")
	require.NoError(t, err)
	assert.Equal(t, models.INVITE_STATUS_CANCELLED, cancelled.Status)
	assert.Zero(t, pending())
	assert.Equal(t, []string{"invite_deleted"}, f.eventsFor("bia"))
	assert.Equal(t, []string{"invite_deleted"}, f.eventsFor("caio"))

	// nothing left to do, nobody is told twice
	_, err = f.svc.DeleteInvite(ctx, g.ID, "carla")
	require.NoError(t, err)
	assert.Equal(t, []string{"invite_deleted"}, f.eventsFor("bia"))
}

func TestListings(t *testing.T) {
	ctx := context.Background()
	f := memoryFixture(t)
	g := f.createInvite(t, "duplas")

	other, err := f.svc.CreateInvite(ctx, ana, models.InviteCreation{
		Title: "Manhã", GameType: "simples", ClassMin: 1, ClassMax: 2,
		Location: "Clube", Date: "2025-06-11", TimeSlot: "manha",
	})
	require.NoError(t, err)

	req, err := f.svc.RequestJoin(ctx, g.ID, bia, "")
	require.NoError(t, err)
	_, err = f.svc.RequestJoin(ctx, other.ID, carla, "")
	require.NoError(t, err)

	inbox, err := f.svc.CreatorInbox(ctx, "carla")
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, req.ID, inbox[0].ID)

	_, _, err = f.svc.AcceptRequest(ctx, req.ID, "carla")
	require.NoError(t, err)

	created, err := f.svc.ListCreatedBy(ctx, "carla")
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, g.ID, created[0].ID)

	joined, err := f.svc.ListParticipating(ctx, "bia")
	require.NoError(t, err)
	require.Len(t, joined, 1)

	available, err := f.svc.ListAvailable(ctx, membership.Filter{})
	require.NoError(t, err)
	require.Len(t, available, 2)
	assert.Equal(t, other.ID, available[0].ID)

	byClass, err := f.svc.ListAvailable(ctx, membership.Filter{Class: 4})
	require.NoError(t, err)
	require.Len(t, byClass, 1)
	assert.Equal(t, g.ID, byClass[0].ID)
}

func TestNormalizeLegacy(t *testing.T) {
	ctx := context.Background()
	f := memoryFixture(t)
	_, err := f.stores.Invites.Put(ctx, models.GameInvite{
		ID: "legacy", CreatorID: "carla", Sport: "Tênis", MaxPlayers: 4, DesiredLevel: 3,
		City: "Curitiba", Neighborhood: "Batel", Date: "2025-06-20", TimeSlot: "noite", Status: "matched",
	})
	require.NoError(t, err)

	n, err := f.svc.NormalizeLegacy(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := f.stores.Invites.Get(ctx, "legacy")
	require.NoError(t, err)
	assert.Equal(t, "duplas", got.GameType)
	assert.Equal(t, 2, got.ClassMin)
	assert.Equal(t, 4, got.ClassMax)
	assert.Equal(t, models.INVITE_STATUS_OPEN, got.Status)
	assert.Equal(t, []string{"carla"}, got.Participants)

	n, err = f.svc.NormalizeLegacy(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestUpdateInvite(t *testing.T) {
	ctx := context.Background()
	f := memoryFixture(t)
	g := f.createInvite(t, "duplas")

	title := "Novo título"
	edited, err := f.svc.UpdateInvite(ctx, g.ID, "carla", models.InviteChanges{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, edited.Title)

	_, err = f.svc.UpdateInvite(ctx, "missing", "carla", models.InviteChanges{Title: &title})
	assert.ErrorIs(t, err, membership.ErrInviteNotFound)
}
