package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/shareit-backend/pkg/db/dbtest"
	"github.com/angelmondragon/shareit-backend/pkg/db/models"
	"github.com/angelmondragon/shareit-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shareit-backend/pkg/errors"
	"github.com/angelmondragon/shareit-backend/pkg/pagination"
	"github.com/angelmondragon/shareit-backend/pkg/types"
)

var fixedNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

type fakeRecorder struct {
	created   int
	decisions map[enums.BookingStatus]int
}

func (f *fakeRecorder) IncCreated() { f.created++ }

func (f *fakeRecorder) IncDecision(status enums.BookingStatus) {
	if f.decisions == nil {
		f.decisions = map[enums.BookingStatus]int{}
	}
	f.decisions[status]++
}

type fixture struct {
	conn     *gorm.DB
	svc      Service
	recorder *fakeRecorder
	owner    models.User
	booker   models.User
	stranger models.User
	item     models.Item
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := dbtest.Open(t)
	recorder := &fakeRecorder{}
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(client.DB()),
		Tx:       client,
		Recorder: recorder,
		Now:      func() time.Time { return fixedNow },
	})
	require.NoError(t, err)

	f := &fixture{conn: client.DB(), svc: svc, recorder: recorder}
	f.owner = f.user(t, "Owner")
	f.booker = f.user(t, "Booker")
	f.stranger = f.user(t, "Stranger")
	f.item = f.newItem(t, f.owner.ID, true)
	return f
}

func (f *fixture) user(t *testing.T, name string) models.User {
	t.Helper()
	u := models.User{Name: name, Email: name + "@example.com"}
	require.NoError(t, f.conn.Create(&u).Error)
	return u
}

func (f *fixture) newItem(t *testing.T, ownerID int64, available bool) models.Item {
	t.Helper()
	item := models.Item{Name: "Drill", Description: "cordless drill", Available: available, OwnerID: ownerID}
	require.NoError(t, f.conn.Create(&item).Error)
	return item
}

func window(offsetStart, offsetEnd time.Duration) CreateBookingInput {
	start := types.NewTimestamp(fixedNow.Add(offsetStart))
	end := types.NewTimestamp(fixedNow.Add(offsetEnd))
	return CreateBookingInput{Start: &start, End: &end}
}

func (f *fixture) create(t *testing.T, offsetStart, offsetEnd time.Duration) *BookingDTO {
	t.Helper()
	in := window(offsetStart, offsetEnd)
	in.ItemID = f.item.ID
	dto, err := f.svc.Create(context.Background(), f.booker.ID, in)
	require.NoError(t, err)
	return dto
}

func allPages() pagination.Params {
	return pagination.Params{From: 0, Size: 100}
}

func TestCreateBookingRejectsInvalidRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	equal := window(time.Hour, time.Hour)
	equal.ItemID = f.item.ID
	_, err := f.svc.Create(ctx, f.booker.ID, equal)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidRange))

	inverted := window(2*time.Hour, time.Hour)
	inverted.ItemID = f.item.ID
	_, err = f.svc.Create(ctx, f.booker.ID, inverted)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidRange))

	_, err = f.svc.Create(ctx, f.booker.ID, CreateBookingInput{ItemID: f.item.ID})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidRange))

	// range is checked before the item lookup
	missingItem := window(2*time.Hour, time.Hour)
	missingItem.ItemID = 9999
	_, err = f.svc.Create(ctx, f.booker.ID, missingItem)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidRange))
}

func TestCreateBookingCheckOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := window(time.Hour, 2*time.Hour)
	in.ItemID = 9999
	_, err := f.svc.Create(ctx, 8888, in)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeItemNotFound))

	unavailable := f.newItem(t, f.owner.ID, false)
	in.ItemID = unavailable.ID
	_, err = f.svc.Create(ctx, 8888, in)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUserNotFound))

	_, err = f.svc.Create(ctx, f.owner.ID, in)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeItemNotAvailable))

	in.ItemID = f.item.ID
	_, err = f.svc.Create(ctx, f.owner.ID, in)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeSelfBooking))
	assert.Equal(t, 0, f.recorder.created)
}

func TestCreateBookingReturnsWaitingView(t *testing.T) {
	f := newFixture(t)
	dto := f.create(t, time.Hour, 2*time.Hour)

	assert.NotZero(t, dto.ID)
	assert.Equal(t, enums.BookingStatusWaiting, dto.Status)
	assert.Equal(t, ItemRef{ID: f.item.ID, Name: "Drill"}, dto.Item)
	assert.Equal(t, UserRef{ID: f.booker.ID, Name: "Booker"}, dto.Booker)
	assert.True(t, dto.Start.Equal(fixedNow.Add(time.Hour)))
	assert.Equal(t, 1, f.recorder.created)
}

func TestDecideIsOneShotAndOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	booking := f.create(t, time.Hour, 2*time.Hour)

	_, err := f.svc.Decide(ctx, booking.ID, f.booker.ID, true)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotItemOwner))

	_, err = f.svc.Decide(ctx, booking.ID, 9999, true)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUserNotFound))

	_, err = f.svc.Decide(ctx, 9999, f.owner.ID, true)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeBookingNotFound))

	approved, err := f.svc.Decide(ctx, booking.ID, f.owner.ID, true)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusApproved, approved.Status)
	assert.Equal(t, "Booker", approved.Booker.Name)

	_, err = f.svc.Decide(ctx, booking.ID, f.owner.ID, true)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStatusAlreadyFinal))
	_, err = f.svc.Decide(ctx, booking.ID, f.owner.ID, false)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStatusAlreadyFinal))

	got, err := f.svc.Get(ctx, booking.ID, f.booker.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusApproved, got.Status)
	assert.Equal(t, 1, f.recorder.decisions[enums.BookingStatusApproved])
}

func TestDecideReject(t *testing.T) {
	f := newFixture(t)
	booking := f.create(t, time.Hour, 2*time.Hour)

	rejected, err := f.svc.Decide(context.Background(), booking.ID, f.owner.ID, false)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusRejected, rejected.Status)
	assert.Equal(t, 1, f.recorder.decisions[enums.BookingStatusRejected])
}

func TestGuardedStatusUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	booking := f.create(t, time.Hour, 2*time.Hour)
	repo := NewRepository(f.conn)

	ok, err := repo.UpdateStatusIfWaiting(ctx, booking.ID, enums.BookingStatusApproved)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UpdateStatusIfWaiting(ctx, booking.ID, enums.BookingStatusRejected)
	require.NoError(t, err)
	assert.False(t, ok, "second decision must not win")

	row, err := repo.FindByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusApproved, row.Status)
	assert.Equal(t, f.owner.ID, row.OwnerID)
}

func TestGetBookingVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	booking := f.create(t, time.Hour, 2*time.Hour)

	_, err := f.svc.Get(ctx, booking.ID, f.owner.ID)
	require.NoError(t, err)
	_, err = f.svc.Get(ctx, booking.ID, f.booker.ID)
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, booking.ID, f.stranger.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeAccessDenied))

	_, err = f.svc.Get(ctx, 9999, f.owner.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeBookingNotFound))
}

// panicRepo fails the test on any persistence access.
type panicRepo struct {
	Repository
}

func TestUnknownStateBeforePersistence(t *testing.T) {
	svc, err := NewService(ServiceParams{Repo: panicRepo{}, Tx: dbtest.Open(t)})
	require.NoError(t, err)

	_, err = svc.ListForBooker(context.Background(), 1, "APPROVED", allPages())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnknownState))
	_, err = svc.ListForOwner(context.Background(), 1, "all", allPages())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnknownState))
}

func TestListRequiresExistingUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ListForBooker(context.Background(), 9999, "ALL", allPages())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUserNotFound))
	_, err = f.svc.ListForOwner(context.Background(), 9999, "ALL", allPages())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUserNotFound))
}

func ids(list []BookingDTO) []int64 {
	out := make([]int64, 0, len(list))
	for _, b := range list {
		out = append(out, b.ID)
	}
	return out
}

func TestListFiltersByState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	past := f.create(t, -72*time.Hour, -48*time.Hour)
	current := f.create(t, -time.Hour, time.Hour)
	future := f.create(t, 24*time.Hour, 48*time.Hour)
	rejected := f.create(t, 72*time.Hour, 96*time.Hour)

	_, err := f.svc.Decide(ctx, past.ID, f.owner.ID, true)
	require.NoError(t, err)
	_, err = f.svc.Decide(ctx, rejected.ID, f.owner.ID, false)
	require.NoError(t, err)

	cases := map[string][]int64{
		"ALL":      {rejected.ID, future.ID, current.ID, past.ID},
		"CURRENT":  {current.ID},
		"PAST":     {past.ID},
		"FUTURE":   {rejected.ID, future.ID},
		"WAITING":  {future.ID, current.ID},
		"REJECTED": {rejected.ID},
	}
	for state, want := range cases {
		t.Run(state, func(t *testing.T) {
			byBooker, err := f.svc.ListForBooker(ctx, f.booker.ID, state, allPages())
			require.NoError(t, err)
			assert.Equal(t, want, ids(byBooker))

			byOwner, err := f.svc.ListForOwner(ctx, f.owner.ID, state, allPages())
			require.NoError(t, err)
			assert.Equal(t, want, ids(byOwner))
		})
	}

	none, err := f.svc.ListForOwner(ctx, f.booker.ID, "ALL", allPages())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListCurrentIncludesBoundaries(t *testing.T) {
	f := newFixture(t)
	startsNow := f.create(t, 0, time.Hour)
	endsNow := f.create(t, -time.Hour, 0)

	list, err := f.svc.ListForBooker(context.Background(), f.booker.ID, "CURRENT", allPages())
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{startsNow.ID, endsNow.ID}, ids(list))
}

func TestOwnerListPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, time.Hour, 2*time.Hour)
	latest := f.create(t, 10*time.Hour, 11*time.Hour)
	middle := f.create(t, 5*time.Hour, 6*time.Hour)

	first, err := f.svc.ListForOwner(ctx, f.owner.ID, "ALL", pagination.Params{From: 0, Size: 1})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, latest.ID, first[0].ID)

	second, err := f.svc.ListForOwner(ctx, f.owner.ID, "ALL", pagination.Params{From: 1, Size: 1})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, middle.ID, second[0].ID)
}

func TestApprovedLookupsScopedToOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := NewRepository(f.conn)

	older := f.create(t, -96*time.Hour, -72*time.Hour)
	recent := f.create(t, -48*time.Hour, -24*time.Hour)
	soon := f.create(t, 24*time.Hour, 48*time.Hour)
	later := f.create(t, 72*time.Hour, 96*time.Hour)
	f.create(t, 100*time.Hour, 120*time.Hour) // stays WAITING
	for _, b := range []*BookingDTO{older, recent, soon, later} {
		_, err := f.svc.Decide(ctx, b.ID, f.owner.ID, true)
		require.NoError(t, err)
	}

	last, err := repo.ListLastApproved(ctx, []int64{f.item.ID}, f.owner.ID, fixedNow)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, recent.ID, last[0].ID)

	next, err := repo.ListNextApproved(ctx, []int64{f.item.ID}, f.owner.ID, fixedNow)
	require.NoError(t, err)
	require.Len(t, next, 2)
	assert.Equal(t, later.ID, next[0].ID)
	assert.Equal(t, soon.ID, next[1].ID)

	hidden, err := repo.ListLastApproved(ctx, []int64{f.item.ID}, f.booker.ID, fixedNow)
	require.NoError(t, err)
	assert.Empty(t, hidden)
}

func TestCreateApproveReapproveScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking := f.create(t, time.Hour, 2*time.Hour)
	assert.Equal(t, enums.BookingStatusWaiting, booking.Status)

	approved, err := f.svc.Decide(ctx, booking.ID, f.owner.ID, true)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusApproved, approved.Status)

	_, err = f.svc.Decide(ctx, booking.ID, f.owner.ID, true)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStatusAlreadyFinal))
}
