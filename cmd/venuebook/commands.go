package main

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hrygo/venuebook/internal/venue"
	"github.com/hrygo/venuebook/server"
	"github.com/hrygo/venuebook/server/service/booking"
	"github.com/hrygo/venuebook/server/timezone"
)

func newVenuesCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "venues",
		Short: "List bookable venues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog := venue.Default()
			if category != "" {
				return printJSON(cmd.OutOrStdout(), catalog.ListByCategory(venue.Category(category)))
			}
			return printJSON(cmd.OutOrStdout(), catalog.List())
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "filter by category (classroom, special, outdoor, large, sport)")
	return cmd
}

func (a *app) newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <text>",
		Short: "Resolve a booking request without writing anything",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, s *server.Server) error {
				return printJSON(cmd.OutOrStdout(), s.Assistant.Parse(ctx, strings.Join(args, " ")))
			})
		},
	}
}

func (a *app) newBookCmd() *cobra.Command {
	var contact string
	cmd := &cobra.Command{
		Use:   "book <text>",
		Short: "Resolve a booking request and create the booking(s)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, s *server.Server) error {
				result, err := s.Assistant.Book(ctx, strings.Join(args, " "), contact)
				if result != nil {
					if perr := printJSON(cmd.OutOrStdout(), result); perr != nil {
						return perr
					}
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&contact, "contact", "", "contact information of the booker")
	_ = cmd.MarkFlagRequired("contact")
	return cmd
}

func (a *app) newListCmd() *cobra.Command {
	var (
		venueID, seriesID, from, to string
		all                         bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bookings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context, s *server.Server) error {
				loc := s.Bookings.Location()
				filter := booking.ListFilter{VenueID: venueID, SeriesID: seriesID, IncludeCancelled: all}
				if from != "" {
					t, err := timezone.ParseDate(from, loc)
					if err != nil {
						return err
					}
					filter.From = t
				}
				if to != "" {
					t, err := timezone.ParseDate(to, loc)
					if err != nil {
						return err
					}
					filter.To = timezone.EndOfDay(t, loc)
				}
				bookings, err := s.Bookings.List(ctx, filter)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), bookings)
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&venueID, "venue", "", "venue id")
	flags.StringVar(&seriesID, "series", "", "recurring series id")
	flags.StringVar(&from, "from", "", "first day (YYYY-MM-DD)")
	flags.StringVar(&to, "to", "", "last day, inclusive (YYYY-MM-DD)")
	flags.BoolVar(&all, "all", false, "include cancelled bookings")
	return cmd
}

func (a *app) newScheduleCmd() *cobra.Command {
	var venueID string
	cmd := &cobra.Command{
		Use:   "schedule [date]",
		Short: "Show the confirmed bookings of one day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, s *server.Server) error {
				day := s.Bookings.Now()
				if len(args) == 1 {
					t, err := timezone.ParseDate(args[0], s.Bookings.Location())
					if err != nil {
						return err
					}
					day = t
				}
				bookings, err := s.Bookings.Schedule(ctx, day, venueID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), bookings)
			})
		},
	}
	cmd.Flags().StringVar(&venueID, "venue", "", "venue id")
	return cmd
}

func (a *app) newReportCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarise venue usage over a date window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context, s *server.Server) error {
				loc := s.Bookings.Location()
				start, end, err := reportWindow(s.Bookings.Now(), from, to, loc)
				if err != nil {
					return err
				}
				report, err := s.Bookings.UsageReport(ctx, start, end)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), report)
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day (default: first day of the current month)")
	cmd.Flags().StringVar(&to, "to", "", "last day, inclusive (default: last day of the current month)")
	return cmd
}

func (a *app) newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show booking totals, today's bookings and when each venue was last used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context, s *server.Server) error {
				dashboard, err := s.Bookings.Dashboard(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), dashboard)
			})
		},
	}
}

// reportWindow defaults to the calendar month containing now.
func reportWindow(now time.Time, from, to string, loc *time.Location) (time.Time, time.Time, error) {
	y, m, _ := now.In(loc).Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0)
	if from != "" {
		t, err := timezone.ParseDate(from, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = t
	}
	if to != "" {
		t, err := timezone.ParseDate(to, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = timezone.EndOfDay(t, loc)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, errors.Errorf("empty report window %s..%s", from, to)
	}
	return start, end, nil
}

func (a *app) newUpdateCmd() *cobra.Command {
	var venueID, start, end, purpose, contact string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Move or edit a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, s *server.Server) error {
				loc := s.Bookings.Location()
				req := &booking.UpdateRequest{ID: args[0]}
				flags := cmd.Flags()
				if flags.Changed("venue") {
					req.VenueID = &venueID
				}
				if flags.Changed("purpose") {
					req.Purpose = &purpose
				}
				if flags.Changed("contact") {
					req.ContactInfo = &contact
				}
				if start != "" {
					t, err := timezone.ParseDateTime(start, loc)
					if err != nil {
						return err
					}
					req.Start = &t
				}
				if end != "" {
					t, err := timezone.ParseDateTime(end, loc)
					if err != nil {
						return err
					}
					req.End = &t
				}
				updated, err := s.Bookings.Update(ctx, req)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), updated)
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&venueID, "venue", "", "new venue id")
	flags.StringVar(&start, "start", "", "new start (YYYY-MM-DD HH:MM)")
	flags.StringVar(&end, "end", "", "new end (YYYY-MM-DD HH:MM)")
	flags.StringVar(&purpose, "purpose", "", "new purpose")
	flags.StringVar(&contact, "contact", "", "new contact information")
	return cmd
}

func (a *app) newCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a booking, keeping its record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, s *server.Server) error {
				cancelled, err := s.Bookings.Cancel(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), cancelled)
			})
		},
	}
}

func (a *app) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a booking permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, s *server.Server) error {
				if err := s.Bookings.Delete(ctx, args[0]); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]string{"deleted": args[0]})
			})
		},
	}
}

func (a *app) newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Report store, lock and AI health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context, s *server.Server) error {
				return printJSON(cmd.OutOrStdout(), s.Health(ctx))
			})
		},
	}
}
