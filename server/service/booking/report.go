package booking

import (
	"context"
	"sort"
	"time"

	bookingerrors "github.com/hrygo/venuebook/server/internal/errors"
	"github.com/hrygo/venuebook/server/timezone"
	"github.com/hrygo/venuebook/store"
)

// VenueUsage is the booked time of one venue.
type VenueUsage struct {
	VenueID   string  `json:"venueId"`
	VenueName string  `json:"venueName"`
	Bookings  int     `json:"bookings"`
	Hours     float64 `json:"hours"`
}

// MonthUsage is the booked time of one calendar month.
type MonthUsage struct {
	Month    string  `json:"month"`
	Bookings int     `json:"bookings"`
	Hours    float64 `json:"hours"`
}

// UsageReport summarizes confirmed bookings in a window.
type UsageReport struct {
	From          time.Time    `json:"from"`
	To            time.Time    `json:"to"`
	TotalBookings int          `json:"totalBookings"`
	TotalHours    float64      `json:"totalHours"`
	Venues        []VenueUsage `json:"venues"`
	Months        []MonthUsage `json:"months"`
}

// Schedule returns the confirmed bookings on the civil date of day, optionally
// for one venue, ordered by start time.
func (s *Service) Schedule(ctx context.Context, day time.Time, venueID string) ([]*store.Booking, error) {
	if venueID != "" {
		if _, ok := s.catalog.FindByID(venueID); !ok {
			return nil, bookingerrors.InvalidArgument("unknown venue: " + venueID)
		}
	}
	return s.List(ctx, ListFilter{
		VenueID: venueID,
		From:    timezone.StartOfDay(day, s.location),
		To:      timezone.EndOfDay(day, s.location),
	})
}

// UsageReport counts confirmed bookings and booked hours per venue and per
// month. Bookings straddling the window only contribute their inside part.
func (s *Service) UsageReport(ctx context.Context, from, to time.Time) (*UsageReport, error) {
	if !from.Before(to) {
		return nil, bookingerrors.InvalidArgument("from must be before to")
	}
	list, err := s.List(ctx, ListFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}

	report := &UsageReport{From: from, To: to, Venues: []VenueUsage{}, Months: []MonthUsage{}}
	byVenue := map[string]*VenueUsage{}
	byMonth := map[string]*MonthUsage{}
	for _, b := range list {
		start, end := b.Start(), b.End()
		if start.Before(from) {
			start = from
		}
		if end.After(to) {
			end = to
		}
		hours := end.Sub(start).Hours()

		vu, ok := byVenue[b.VenueID]
		if !ok {
			vu = &VenueUsage{VenueID: b.VenueID, VenueName: b.VenueName}
			byVenue[b.VenueID] = vu
		}
		vu.Bookings++
		vu.Hours += hours

		key := timezone.MonthKey(start, s.location)
		mu, ok := byMonth[key]
		if !ok {
			mu = &MonthUsage{Month: key}
			byMonth[key] = mu
		}
		mu.Bookings++
		mu.Hours += hours

		report.TotalBookings++
		report.TotalHours += hours
	}

	// Catalog order first, then venues no longer in the catalog.
	for _, v := range s.catalog.List() {
		if vu, ok := byVenue[v.ID]; ok {
			report.Venues = append(report.Venues, *vu)
			delete(byVenue, v.ID)
		}
	}
	rest := make([]string, 0, len(byVenue))
	for id := range byVenue {
		rest = append(rest, id)
	}
	sort.Strings(rest)
	for _, id := range rest {
		report.Venues = append(report.Venues, *byVenue[id])
	}

	for _, mu := range byMonth {
		report.Months = append(report.Months, *mu)
	}
	sort.Slice(report.Months, func(i, j int) bool { return report.Months[i].Month < report.Months[j].Month })
	return report, nil
}

// DashboardStats counts every stored booking.
type DashboardStats struct {
	Total     int `json:"totalBookings"`
	Confirmed int `json:"confirmedBookings"`
	Cancelled int `json:"cancelledBookings"`
	Today     int `json:"todayBookings"`
	Upcoming  int `json:"upcomingBookings"`
}

// VenueActivity is the confirmed booking count of one catalog venue and the
// civil date of its latest confirmed booking. LastUsed is empty for a venue
// never booked.
type VenueActivity struct {
	VenueID   string `json:"venueId"`
	VenueName string `json:"venueName"`
	Bookings  int    `json:"bookings"`
	LastUsed  string `json:"lastUsed,omitempty"`
}

// Dashboard is the admin overview.
type Dashboard struct {
	GeneratedAt time.Time        `json:"generatedAt"`
	Stats       DashboardStats   `json:"stats"`
	Venues      []VenueActivity  `json:"venueUsage"`
	Today       []*store.Booking `json:"todayBookings"`
}

// Dashboard summarizes all bookings as of now. Today counts bookings of
// either status starting on the current civil date; Upcoming counts confirmed
// bookings not yet started.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	list, err := s.List(ctx, ListFilter{IncludeCancelled: true})
	if err != nil {
		return nil, err
	}

	now := s.Now()
	dayStart, dayEnd := timezone.StartOfDay(now, s.location), timezone.EndOfDay(now, s.location)
	d := &Dashboard{GeneratedAt: now, Venues: []VenueActivity{}, Today: []*store.Booking{}}

	latest := map[string]int64{}
	counts := map[string]int{}
	for _, b := range list {
		d.Stats.Total++
		start := b.Start()
		if !start.Before(dayStart) && start.Before(dayEnd) {
			d.Stats.Today++
			d.Today = append(d.Today, b)
		}
		if b.Status != store.BookingConfirmed {
			d.Stats.Cancelled++
			continue
		}
		d.Stats.Confirmed++
		if start.After(now) {
			d.Stats.Upcoming++
		}
		counts[b.VenueID]++
		if ts, ok := latest[b.VenueID]; !ok || b.StartTs > ts {
			latest[b.VenueID] = b.StartTs
		}
	}
	store.SortBookings(d.Today)

	for _, v := range s.catalog.List() {
		activity := VenueActivity{VenueID: v.ID, VenueName: v.Name, Bookings: counts[v.ID]}
		if ts, ok := latest[v.ID]; ok {
			activity.LastUsed = timezone.FormatDate(time.Unix(ts, 0), s.location)
		}
		d.Venues = append(d.Venues, activity)
	}
	return d, nil
}
