package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedule(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	late := createMusicRoom(t, svc, at(2025, 6, 29, 16, 0), at(2025, 6, 29, 18, 0))
	early := createMusicRoom(t, svc, at(2025, 6, 29, 9, 0), at(2025, 6, 29, 10, 0))
	createMusicRoom(t, svc, at(2025, 6, 30, 9, 0), at(2025, 6, 30, 10, 0))
	cancelled := createMusicRoom(t, svc, at(2025, 6, 29, 12, 0), at(2025, 6, 29, 13, 0))
	_, err := svc.Cancel(ctx, cancelled.ID)
	require.NoError(t, err)
	_, err = svc.Create(ctx, &CreateRequest{VenueID: "room-101", Start: at(2025, 6, 29, 9, 0), End: at(2025, 6, 29, 10, 0), ContactInfo: "x"})
	require.NoError(t, err)

	day, err := svc.Schedule(ctx, at(2025, 6, 29, 0, 0), "music-room")
	require.NoError(t, err)
	require.Len(t, day, 2)
	assert.Equal(t, early.ID, day[0].ID)
	assert.Equal(t, late.ID, day[1].ID)

	all, err := svc.Schedule(ctx, at(2025, 6, 29, 0, 0), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = svc.Schedule(ctx, at(2025, 6, 29, 0, 0), "pool")
	assert.Error(t, err)
}

func TestUsageReport(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	createMusicRoom(t, svc, at(2025, 6, 29, 14, 0), at(2025, 6, 29, 16, 0))
	createMusicRoom(t, svc, at(2025, 7, 2, 14, 0), at(2025, 7, 2, 15, 30))
	_, err := svc.Create(ctx, &CreateRequest{VenueID: "room-101", Start: at(2025, 7, 3, 9, 0), End: at(2025, 7, 3, 12, 0), ContactInfo: "x"})
	require.NoError(t, err)
	// Straddles the end of the window by one hour.
	_, err = svc.Create(ctx, &CreateRequest{VenueID: "auditorium", Start: at(2025, 7, 31, 23, 0), End: at(2025, 8, 1, 1, 0), ContactInfo: "x"})
	require.NoError(t, err)

	report, err := svc.UsageReport(ctx, at(2025, 6, 1, 0, 0), at(2025, 8, 1, 0, 0))
	require.NoError(t, err)

	assert.Equal(t, 4, report.TotalBookings)
	assert.InDelta(t, 7.5, report.TotalHours, 1e-9)

	require.Len(t, report.Venues, 3)
	assert.Equal(t, "room-101", report.Venues[0].VenueID)
	assert.Equal(t, "music-room", report.Venues[1].VenueID)
	assert.Equal(t, 2, report.Venues[1].Bookings)
	assert.InDelta(t, 3.5, report.Venues[1].Hours, 1e-9)
	assert.Equal(t, "auditorium", report.Venues[2].VenueID)
	assert.InDelta(t, 1.0, report.Venues[2].Hours, 1e-9)

	require.Len(t, report.Months, 2)
	assert.Equal(t, "2025-06", report.Months[0].Month)
	assert.Equal(t, 1, report.Months[0].Bookings)
	assert.Equal(t, "2025-07", report.Months[1].Month)
	assert.Equal(t, 3, report.Months[1].Bookings)

	_, err = svc.UsageReport(ctx, at(2025, 8, 1, 0, 0), at(2025, 6, 1, 0, 0))
	assert.Error(t, err)
}

func TestDashboard(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	// The service clock reads Saturday 2025-06-28 10:00.
	past := createMusicRoom(t, svc, at(2025, 6, 28, 8, 0), at(2025, 6, 28, 9, 0))
	later := createMusicRoom(t, svc, at(2025, 6, 28, 14, 0), at(2025, 6, 28, 15, 0))
	createMusicRoom(t, svc, at(2025, 7, 5, 14, 0), at(2025, 7, 5, 15, 0))
	dropped := createMusicRoom(t, svc, at(2025, 7, 9, 14, 0), at(2025, 7, 9, 15, 0))
	_, err := svc.Cancel(ctx, dropped.ID)
	require.NoError(t, err)
	_, err = svc.Create(ctx, &CreateRequest{VenueID: "room-101", Start: at(2025, 6, 20, 9, 0), End: at(2025, 6, 20, 10, 0), ContactInfo: "x"})
	require.NoError(t, err)

	d, err := svc.Dashboard(ctx)
	require.NoError(t, err)

	assert.Equal(t, DashboardStats{Total: 5, Confirmed: 4, Cancelled: 1, Today: 2, Upcoming: 2}, d.Stats)
	require.Len(t, d.Today, 2)
	assert.Equal(t, past.ID, d.Today[0].ID)
	assert.Equal(t, later.ID, d.Today[1].ID)

	byID := map[string]VenueActivity{}
	for _, v := range d.Venues {
		byID[v.VenueID] = v
	}
	assert.Len(t, d.Venues, len(svc.catalog.List()))
	assert.Equal(t, 3, byID["music-room"].Bookings)
	assert.Equal(t, "2025-07-05", byID["music-room"].LastUsed)
	assert.Equal(t, "2025-06-20", byID["room-101"].LastUsed)
	assert.Equal(t, 0, byID["auditorium"].Bookings)
	assert.Empty(t, byID["auditorium"].LastUsed)
}
