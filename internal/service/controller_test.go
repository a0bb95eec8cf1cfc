package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shower_intake/internal/bans"
	"shower_intake/internal/models"
	"shower_intake/internal/queue"
	"shower_intake/internal/showers"
	"shower_intake/internal/storage"
	"shower_intake/internal/tasks"
	"shower_intake/internal/timeutil"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Publish(topic, eventType string, data any) {
	m.Called(topic, eventType, data)
}

var start = time.Date(2024, 6, 3, 17, 0, 0, 0, time.UTC) // 10:00 in Los Angeles

// keyFailKV fails every write to one key.
type keyFailKV struct {
	*storage.MemoryKV
	failKey string
}

func (k *keyFailKV) Set(ctx context.Context, key, value string) error {
	if key == k.failKey {
		return errors.New("disk full")
	}
	return k.MemoryKV.Set(ctx, key, value)
}

func newFailingController(t *testing.T) (*Controller, *keyFailKV) {
	t.Helper()
	kv := &keyFailKV{MemoryKV: storage.NewMemoryKV()}
	ctl := New(storage.NewRepository(kv), timeutil.NewManualClock(start), nil, zap.NewNop(), Options{ShowerCount: 1})
	require.NoError(t, ctl.Load(context.Background()))
	return ctl, kv
}

func reload(t *testing.T, kv storage.KV) *Controller {
	t.Helper()
	ctl := New(storage.NewRepository(kv), timeutil.NewManualClock(start), nil, zap.NewNop(), Options{ShowerCount: 1})
	require.NoError(t, ctl.Load(context.Background()))
	return ctl
}

type fixture struct {
	ctl   *Controller
	clock *timeutil.ManualClock
	kv    *storage.MemoryKV
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	kv := storage.NewMemoryKV()
	clock := timeutil.NewManualClock(start)
	ctl := New(storage.NewRepository(kv), clock, nil, zap.NewNop(), Options{
		Durations:       models.DefaultDurations(),
		ShowerCount:     2,
		DefaultSettings: models.Settings{Timezone: "America/Los_Angeles"},
	})
	require.NoError(t, ctl.Load(context.Background()))
	return fixture{ctl: ctl, clock: clock, kv: kv}
}

func (f fixture) intake(t *testing.T, first, last string) models.Guest {
	t.Helper()
	g, err := f.ctl.Intake(context.Background(), IntakeRequest{FirstName: first, LastName: last, Shower: true})
	require.NoError(t, err)
	return g
}

func TestLoadSeedsShowers(t *testing.T) {
	f := newFixture(t)
	views := f.ctl.Showers()
	require.Len(t, views, 2)
	assert.Equal(t, "Shower 1", views[0].Name)
	assert.Equal(t, models.ShowerReady, views[0].Status)
	assert.Equal(t, "00:00", views[0].Countdown)

	_, err := f.kv.Get(context.Background(), storage.KeyShowers)
	assert.NoError(t, err, "seeded showers are persisted")
	assert.Equal(t, "America/Los_Angeles", f.ctl.Settings().Timezone)
}

func TestIntakeNumbersAndEstimates(t *testing.T) {
	f := newFixture(t)
	a := f.intake(t, " Ann ", "Lee")
	assert.Equal(t, "Ann", a.FirstName)
	assert.Equal(t, 1, a.Number)
	assert.Equal(t, start, *a.CheckinAt)
	assert.Equal(t, start, *a.ExpectedStartTimeAt)
	assert.Equal(t, start.Add(20*time.Minute), *a.ExpectedEndTimeAt)

	f.clock.Advance(time.Minute)
	b := f.intake(t, "Bo", "Kim")
	assert.Equal(t, 2, b.Number)
	assert.Equal(t, start.Add(26*time.Minute), *b.ExpectedStartTimeAt)

	// next local day restarts at 1
	f.clock.Advance(24 * time.Hour)
	c := f.intake(t, "Cy", "Ng")
	assert.Equal(t, 1, c.Number)
}

func TestIntakeRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ctl.Intake(ctx, IntakeRequest{FirstName: "  "})
	var verr *queue.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"first_name", "last_name"}, verr.Fields)

	_, err = f.ctl.AddBan(ctx, models.BannedEntry{FirstName: "John", LastName: "Doe", IsPermanentlyBanned: true})
	require.NoError(t, err)

	_, err = f.ctl.Intake(ctx, IntakeRequest{FirstName: "JOHN", LastName: "doe"})
	var berr *bans.BannedError
	require.True(t, errors.As(err, &berr))
	assert.True(t, berr.Entry.IsPermanentlyBanned)
	assert.Empty(t, f.ctl.TodayQueue(""))
}

func TestShowerCycleStampsGuest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.intake(t, "Ann", "Lee")

	v, err := f.ctl.Assign(ctx, "1", g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ShowerInUse, v.Status)
	assert.Equal(t, "20:00", v.Countdown)
	assert.Equal(t, "Ann Lee", v.GuestName)

	got, err := f.ctl.Guest(g.ID)
	require.NoError(t, err)
	assert.Equal(t, start, *got.ShowerStartedAt)
	assert.Equal(t, "Shower 1", got.ShowerName)
	assert.Empty(t, f.ctl.AvailableGuests())

	f.clock.Advance(20 * time.Minute)
	require.NoError(t, f.ctl.Tick(ctx))
	assert.Equal(t, models.ShowerCleaning, f.ctl.Showers()[0].Status)
	got, _ = f.ctl.Guest(g.ID)
	assert.Equal(t, start.Add(20*time.Minute), *got.ShowerEndedAt)
	assert.Equal(t, models.StatusShowered, queue.DeriveStatus(got))

	f.clock.Advance(5 * time.Minute)
	require.NoError(t, f.ctl.Tick(ctx))
	assert.Equal(t, models.ShowerReady, f.ctl.Showers()[0].Status)

	// persisted state survives a reload
	again := New(storage.NewRepository(f.kv), f.clock, nil, zap.NewNop(), Options{ShowerCount: 2})
	require.NoError(t, again.Load(ctx))
	got, err = again.Guest(g.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.ShowerEndedAt)
}

func TestAssignGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.intake(t, "Ann", "Lee")
	b := f.intake(t, "Bo", "Kim")

	_, err := f.ctl.Assign(ctx, "1", "missing")
	assert.ErrorIs(t, err, showers.ErrInvalidTransition)

	_, err = f.ctl.Assign(ctx, "9", a.ID)
	assert.ErrorIs(t, err, showers.ErrInvalidTransition, "unknown shower")
	var terr *showers.TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "9", terr.ShowerID)

	_, err = f.ctl.Assign(ctx, "1", a.ID)
	require.NoError(t, err)
	_, err = f.ctl.Assign(ctx, "1", b.ID)
	assert.ErrorIs(t, err, showers.ErrInvalidTransition, "shower busy")
	_, err = f.ctl.Assign(ctx, "2", a.ID)
	assert.ErrorIs(t, err, showers.ErrInvalidTransition, "guest already showering")

	_, err = f.ctl.SetAction(ctx, b.ID, models.ActionStandby)
	require.NoError(t, err)
	_, err = f.ctl.Assign(ctx, "2", b.ID)
	assert.ErrorIs(t, err, showers.ErrInvalidTransition, "standby is not assignable")
}

func TestStartCleaningEarlyEndsVisit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.intake(t, "Ann", "Lee")
	_, err := f.ctl.Assign(ctx, "2", g.ID)
	require.NoError(t, err)

	f.clock.Advance(7 * time.Minute)
	v, err := f.ctl.StartCleaning(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, models.ShowerCleaning, v.Status)
	assert.Equal(t, "05:00", v.Countdown)

	got, _ := f.ctl.Guest(g.ID)
	assert.Equal(t, start.Add(7*time.Minute), *got.ShowerEndedAt)

	_, err = f.ctl.StartMaintenance(ctx, "2")
	require.NoError(t, err)
	f.clock.Advance(time.Hour)
	require.NoError(t, f.ctl.Tick(ctx))
	assert.Equal(t, models.ShowerWaitingForMaintenance, f.ctl.Showers()[1].Status)

	_, err = f.ctl.MarkReady(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, models.ShowerReady, f.ctl.Showers()[1].Status)
}

func TestQueueOrderAndSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.intake(t, "Ann", "Lee")
	f.clock.Advance(time.Minute)
	b := f.intake(t, "Bo", "Kim")
	f.clock.Advance(time.Minute)
	c := f.intake(t, "Cy", "Lee")

	_, err := f.ctl.SetAction(ctx, c.ID, models.ActionMoveToNext)
	require.NoError(t, err)
	_, err = f.ctl.Assign(ctx, "1", b.ID)
	require.NoError(t, err)

	q := f.ctl.TodayQueue("")
	require.Len(t, q, 3)
	assert.Equal(t, b.ID, q[0].ID)
	assert.Equal(t, models.StatusShowering, q[0].Status)
	assert.Equal(t, a.ID, q[1].ID)
	assert.Equal(t, models.StatusQueued, q[1].Status)
	assert.Equal(t, c.ID, q[2].ID)
	assert.Equal(t, models.StatusNextUp, q[2].Status)

	lee := f.ctl.TodayQueue("lee")
	assert.Len(t, lee, 2)

	avail := f.ctl.AvailableGuests()
	require.Len(t, avail, 2)
	assert.Equal(t, a.ID, avail[0].ID)

	_, err = f.ctl.SetAction(ctx, a.ID, models.Action("bogus"))
	assert.ErrorIs(t, err, queue.ErrValidationFailed)
}

func TestLeftAndReturned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.intake(t, "Ann", "Lee")

	_, err := f.ctl.MarkReturned(ctx, g.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	left, err := f.ctl.MarkLeft(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusLeft, queue.DeriveStatus(left))

	f.clock.Advance(time.Minute)
	again, err := f.ctl.MarkLeft(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, start, *again.LeftAt, "left_at is kept from the first call")

	back, err := f.ctl.MarkReturned(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, start, *back.LeftAt, "left_at is never cleared")
	assert.Equal(t, start.Add(time.Minute), *back.ReturnedAt)
	assert.Equal(t, models.StatusQueued, queue.DeriveStatus(back))

	_, err = f.ctl.MarkReturned(ctx, g.ID)
	assert.ErrorIs(t, err, ErrInvalidState, "already back in the queue")

	f.clock.Advance(time.Minute)
	gone, err := f.ctl.MarkLeft(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, start, *gone.LeftAt)
	assert.Equal(t, models.ActionGuestLeft, gone.Action)
	assert.Equal(t, models.StatusLeft, queue.DeriveStatus(gone))

	f.clock.Advance(time.Minute)
	back, err = f.ctl.MarkReturned(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, start.Add(time.Minute), *back.ReturnedAt, "returned_at keeps the first return")
	assert.Equal(t, models.StatusQueued, queue.DeriveStatus(back))

	_, err = f.ctl.MarkLeft(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBanGuestFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.intake(t, "Ann", "Lee")

	got, entry, err := f.ctl.BanGuest(ctx, g.ID, BanRequest{BannedUntilDate: "2024-07-01"})
	require.NoError(t, err)
	assert.True(t, got.Banned)
	assert.Equal(t, models.ActionGuestBanned, got.Action)
	assert.Equal(t, "2024-07-01", entry.BannedUntilDate)
	assert.Equal(t, models.StatusBanned, queue.DeriveStatus(got))

	list := f.ctl.ListBans()
	require.Len(t, list, 1)
	assert.False(t, list[0].Expired)

	_, err = f.ctl.Intake(ctx, IntakeRequest{FirstName: "ann", LastName: "LEE"})
	assert.ErrorIs(t, err, bans.ErrGuestBanned)

	require.NoError(t, f.ctl.RemoveBanAt(ctx, 0))
	assert.ErrorIs(t, f.ctl.RemoveBanAt(ctx, 0), ErrNotFound)
	f.intake(t, "Ann", "Lee")

	xy, err := f.ctl.AddBan(ctx, models.BannedEntry{FirstName: "X", LastName: "Y", IsPermanentlyBanned: true})
	require.NoError(t, err)
	assert.ErrorIs(t, f.ctl.RemoveBan(ctx, "missing"), ErrNotFound)
	require.NoError(t, f.ctl.RemoveBan(ctx, xy.ID))
	assert.Empty(t, f.ctl.ListBans())

	_, err = f.ctl.AddBan(ctx, models.BannedEntry{FirstName: "X", LastName: "Y", IsPermanentlyBanned: true})
	require.NoError(t, err)
	require.NoError(t, f.ctl.ClearBans(ctx))
	assert.Empty(t, f.ctl.ListBans())
}

func TestBanGuestRestoresRegistryWhenGuestWriteFails(t *testing.T) {
	ctl, kv := newFailingController(t)
	ctx := context.Background()
	g, err := ctl.Intake(ctx, IntakeRequest{FirstName: "Ann", LastName: "Lee"})
	require.NoError(t, err)

	kv.failKey = storage.KeyGuests
	_, _, err = ctl.BanGuest(ctx, g.ID, BanRequest{IsPermanentlyBanned: true})
	require.Error(t, err)
	assert.Empty(t, ctl.ListBans())
	got, err := ctl.Guest(g.ID)
	require.NoError(t, err)
	assert.False(t, got.Banned)

	stored, err := storage.NewRepository(kv).Bans(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored, "registry write is rolled back")

	kv.failKey = ""
	_, err = ctl.Intake(ctx, IntakeRequest{FirstName: "Ann", LastName: "Lee"})
	assert.NoError(t, err, "name is not blocked")
}

func TestAssignShowerWriteFailureLeavesGuestAssignable(t *testing.T) {
	ctl, kv := newFailingController(t)
	ctx := context.Background()
	g, err := ctl.Intake(ctx, IntakeRequest{FirstName: "Ann", LastName: "Lee"})
	require.NoError(t, err)

	kv.failKey = storage.KeyShowers
	_, err = ctl.Assign(ctx, "1", g.ID)
	require.Error(t, err)

	again := reload(t, kv)
	stored, err := again.Guest(g.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ShowerStartedAt)
	assert.Equal(t, models.ShowerReady, again.Showers()[0].Status)

	kv.failKey = ""
	_, err = ctl.Assign(ctx, "1", g.ID)
	assert.NoError(t, err)
}

func TestAssignGuestWriteFailureRestoresShowers(t *testing.T) {
	ctl, kv := newFailingController(t)
	ctx := context.Background()
	g, err := ctl.Intake(ctx, IntakeRequest{FirstName: "Ann", LastName: "Lee"})
	require.NoError(t, err)

	kv.failKey = storage.KeyGuests
	_, err = ctl.Assign(ctx, "1", g.ID)
	require.Error(t, err)
	assert.Equal(t, models.ShowerReady, ctl.Showers()[0].Status)

	again := reload(t, kv)
	assert.Equal(t, models.ShowerReady, again.Showers()[0].Status)
	assert.Empty(t, again.Showers()[0].CurrentGuestID)
	stored, err := again.Guest(g.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ShowerStartedAt)
}

func TestTodayLogAndMetrics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.intake(t, "Ann", "Lee")
	b := f.intake(t, "Bo", "Kim")
	_, err := f.ctl.Assign(ctx, "1", a.ID)
	require.NoError(t, err)
	_, err = f.ctl.Assign(ctx, "2", b.ID)
	require.NoError(t, err)

	f.clock.Advance(10 * time.Minute)
	_, err = f.ctl.StartCleaning(ctx, "2")
	require.NoError(t, err)
	f.clock.Advance(10 * time.Minute)
	require.NoError(t, f.ctl.Tick(ctx))

	rows := f.ctl.TodayLog(LogQuery{})
	require.Len(t, rows, 2)
	assert.Equal(t, a.ID, rows[0].ID, "latest end first")
	assert.Equal(t, 20, rows[0].DurationMinutes)
	assert.Equal(t, "10:00 AM", rows[0].StartTime)

	rows = f.ctl.TodayLog(LogQuery{Search: "kim"})
	require.Len(t, rows, 1)
	assert.Equal(t, b.ID, rows[0].ID)

	m := f.ctl.Metrics("7d")
	assert.Equal(t, 2, m.Summary.TotalShowers)
	assert.Equal(t, 30, m.Summary.TotalMinutes)
	assert.Equal(t, 15, m.Summary.AverageMinutes)
	assert.Equal(t, 2, m.Hourly[10].Count, "hour in the site zone")

	var buf bytes.Buffer
	require.NoError(t, f.ctl.Export(&buf, "30d"))
	assert.NotZero(t, buf.Len())
}

func TestSettingsAndClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s, err := f.ctl.UpdateSettings(ctx, models.Settings{Timezone: "Not/AZone", Location: "Downtown"})
	require.NoError(t, err)
	assert.Equal(t, "Not/AZone", s.Timezone)
	assert.Equal(t, time.Local, f.ctl.Location())

	_, err = f.ctl.UpdateSettings(ctx, models.Settings{Timezone: "America/Los_Angeles"})
	require.NoError(t, err)

	g := f.intake(t, "Ann", "Lee")
	_, err = f.ctl.Assign(ctx, "1", g.ID)
	require.NoError(t, err)
	_, err = f.ctl.AddBan(ctx, models.BannedEntry{FirstName: "X", LastName: "Y"})
	require.NoError(t, err)

	require.NoError(t, f.ctl.ClearAllData(ctx))
	assert.Empty(t, f.ctl.TodayQueue(""))
	assert.Equal(t, models.ShowerReady, f.ctl.Showers()[0].Status)
	assert.Len(t, f.ctl.ListBans(), 1, "bans survive a data clear")
}

func TestPurgeBeforeKeepsOccupants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	old := f.intake(t, "Old", "Timer")
	busy := f.intake(t, "Still", "Here")
	_, err := f.ctl.Assign(ctx, "1", busy.ID)
	require.NoError(t, err)

	f.clock.Advance(48 * time.Hour)
	fresh := f.intake(t, "New", "Face")

	n, err := f.ctl.PurgeBefore(ctx, f.clock.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = f.ctl.Guest(old.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.ctl.Guest(busy.ID)
	assert.NoError(t, err)
	_, err = f.ctl.Guest(fresh.ID)
	assert.NoError(t, err)
}

func TestRetentionJobUsesControllerClock(t *testing.T) {
	f := newFixture(t)
	old := f.intake(t, "Old", "Timer")
	f.clock.Advance(40 * 24 * time.Hour)
	fresh := f.intake(t, "New", "Face")

	tasks.RetentionJob(context.Background(), f.ctl, 30, zap.NewNop())()

	_, err := f.ctl.Guest(old.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.ctl.Guest(fresh.ID)
	assert.NoError(t, err)
}

func TestNotifierReceivesEvents(t *testing.T) {
	kv := storage.NewMemoryKV()
	n := new(mockNotifier)
	n.On("Publish", TopicQueue, EventGuestAdded, mock.Anything).Once()
	n.On("Publish", TopicShowers, EventShowerChanged, mock.Anything).Once()
	n.On("Publish", TopicQueue, EventGuestUpdated, mock.Anything).Once()

	ctl := New(storage.NewRepository(kv), timeutil.NewManualClock(start), n, zap.NewNop(), Options{ShowerCount: 1})
	require.NoError(t, ctl.Load(context.Background()))

	g, err := ctl.Intake(context.Background(), IntakeRequest{FirstName: "Ann", LastName: "Lee"})
	require.NoError(t, err)
	_, err = ctl.Assign(context.Background(), "1", g.ID)
	require.NoError(t, err)

	n.AssertExpectations(t)
}
