package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/venuebook/internal/profile"
	"github.com/hrygo/venuebook/store"
	"github.com/hrygo/venuebook/store/db/postgres"
)

func TestPostgres_BookingLifecycle(t *testing.T) {
	dsn := os.Getenv("VENUEBOOK_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("VENUEBOOK_TEST_POSTGRES_DSN not set")
	}

	p := &profile.Profile{Mode: "dev", Driver: "postgres", DSN: dsn}
	driver, err := postgres.NewDB(p)
	require.NoError(t, err)
	s := store.New(driver, p)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, s.Migrate(ctx))

	id := uuid.NewString()
	_, err = s.CreateBooking(ctx, &store.Booking{
		ID:      id,
		VenueID: "auditorium",
		StartTs: 1000,
		EndTs:   2000,
		Status:  store.BookingConfirmed,
	})
	require.NoError(t, err)
	defer func() { _ = s.DeleteBooking(context.Background(), &store.DeleteBooking{ID: id}) }()

	got, err := s.GetBooking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "auditorium", got.VenueID)
	assert.False(t, got.Recurring)

	purpose := "畢業典禮"
	updated, err := s.UpdateBooking(ctx, &store.UpdateBooking{ID: id, Purpose: &purpose})
	require.NoError(t, err)
	assert.Equal(t, purpose, updated.Purpose)
}
