package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/venuebook/internal/profile"
	"github.com/hrygo/venuebook/store"
	"github.com/hrygo/venuebook/store/db/sqlite"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	p := &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "venuebook_test.db"),
	}
	driver, err := sqlite.NewDB(p)
	require.NoError(t, err)
	s := store.New(driver, p)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	require.NoError(t, s.Migrate(ctx))
	// Second run is a no-op.
	require.NoError(t, s.Migrate(ctx))
	s.Load(ctx)
	require.False(t, s.IsDegraded())
	return s
}

func TestSQLite_BookingLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.CreateBooking(ctx, &store.Booking{
		ID:              "b1",
		VenueID:         "room-201",
		VenueName:       "201室",
		StartTs:         1751090400,
		EndTs:           1751097600,
		Purpose:         "數學補課",
		ContactInfo:     "陳老師",
		Status:          store.BookingConfirmed,
		Recurring:       true,
		RecurrenceKind:  "weekly",
		OccurrenceIndex: 2,
		SeriesID:        "series-1",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.CreatedTs)

	seriesID := "series-1"
	list, err := s.ListBookings(ctx, &store.FindBooking{SeriesID: &seriesID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	got := list[0]
	assert.True(t, got.Recurring)
	assert.Equal(t, 2, got.OccurrenceIndex)
	assert.Equal(t, store.BookingConfirmed, got.Status)
	assert.Equal(t, "數學補課", got.Purpose)

	cancelled := store.BookingCancelled
	updated, err := s.UpdateBooking(ctx, &store.UpdateBooking{ID: "b1", Status: &cancelled})
	require.NoError(t, err)
	assert.Equal(t, store.BookingCancelled, updated.Status)

	_, err = s.UpdateBooking(ctx, &store.UpdateBooking{ID: "nope", Status: &cancelled})
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.DeleteBooking(ctx, &store.DeleteBooking{ID: "b1"}))
	assert.ErrorIs(t, s.DeleteBooking(ctx, &store.DeleteBooking{ID: "b1"}), store.ErrNotFound)
}

func TestSQLite_OverlapQuery(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, b := range []*store.Booking{
		{ID: "a", VenueID: "playground", StartTs: 100, EndTs: 200, Status: store.BookingConfirmed},
		{ID: "b", VenueID: "playground", StartTs: 200, EndTs: 300, Status: store.BookingConfirmed},
		{ID: "c", VenueID: "playground", StartTs: 250, EndTs: 400, Status: store.BookingConfirmed},
	} {
		_, err := s.CreateBooking(ctx, b)
		require.NoError(t, err)
	}

	venueID := "playground"
	start, end := int64(200), int64(260)
	list, err := s.ListBookings(ctx, &store.FindBooking{VenueID: &venueID, OverlapStartTs: &start, OverlapEndTs: &end})
	require.NoError(t, err)
	ids := []string{}
	for _, b := range list {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"b", "c"}, ids)
}

func TestSQLite_Upsert(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	driver := s.GetDriver()

	b := &store.Booking{ID: "u1", VenueID: "music-room", StartTs: 10, EndTs: 20, Status: store.BookingConfirmed, CreatedTs: 1, UpdatedTs: 1}
	require.NoError(t, driver.UpsertBooking(ctx, b))
	b.Purpose = "合唱練習"
	b.UpdatedTs = 2
	require.NoError(t, driver.UpsertBooking(ctx, b))

	list, err := driver.ListBookings(ctx, &store.FindBooking{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "合唱練習", list[0].Purpose)
	assert.Equal(t, int64(2), list[0].UpdatedTs)
}
