package postgres

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/venuebook/store"
)

const bookingColumns = `id, venue_id, venue_name, start_ts, end_ts, purpose, contact_info, status,
	created_ts, updated_ts, recurring, recurrence_kind, occurrence_index, series_id`

func (d *DB) CreateBooking(ctx context.Context, create *store.Booking) (*store.Booking, error) {
	fields := []string{
		"id", "venue_id", "venue_name", "start_ts", "end_ts", "purpose", "contact_info", "status",
		"recurring", "recurrence_kind", "occurrence_index", "series_id",
	}
	args := []any{
		create.ID, create.VenueID, create.VenueName, create.StartTs, create.EndTs, create.Purpose, create.ContactInfo, string(create.Status),
		create.Recurring, create.RecurrenceKind, create.OccurrenceIndex, create.SeriesID,
	}
	if create.CreatedTs != 0 {
		fields, args = append(fields, "created_ts"), append(args, create.CreatedTs)
	}
	if create.UpdatedTs != 0 {
		fields, args = append(fields, "updated_ts"), append(args, create.UpdatedTs)
	}

	stmt := `INSERT INTO booking (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING created_ts, updated_ts`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.CreatedTs, &create.UpdatedTs); err != nil {
		return nil, errors.Wrap(err, "failed to create booking")
	}
	return create, nil
}

func (d *DB) ListBookings(ctx context.Context, find *store.FindBooking) ([]*store.Booking, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find != nil {
		if v := find.ID; v != nil {
			where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *v)
		}
		if v := find.VenueID; v != nil {
			where, args = append(where, "venue_id = "+placeholder(len(args)+1)), append(args, *v)
		}
		if v := find.SeriesID; v != nil {
			where, args = append(where, "series_id = "+placeholder(len(args)+1)), append(args, *v)
		}
		if v := find.Status; v != nil {
			where, args = append(where, "status = "+placeholder(len(args)+1)), append(args, string(*v))
		}
		if v := find.OverlapStartTs; v != nil {
			where, args = append(where, "end_ts > "+placeholder(len(args)+1)), append(args, *v)
		}
		if v := find.OverlapEndTs; v != nil {
			where, args = append(where, "start_ts < "+placeholder(len(args)+1)), append(args, *v)
		}
	}

	query := `SELECT ` + bookingColumns + ` FROM booking
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY start_ts ASC, id ASC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list bookings")
	}
	defer rows.Close()

	list := make([]*store.Booking, 0)
	for rows.Next() {
		var b store.Booking
		var status string
		if err := rows.Scan(
			&b.ID, &b.VenueID, &b.VenueName, &b.StartTs, &b.EndTs, &b.Purpose, &b.ContactInfo, &status,
			&b.CreatedTs, &b.UpdatedTs, &b.Recurring, &b.RecurrenceKind, &b.OccurrenceIndex, &b.SeriesID,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan booking")
		}
		b.Status = store.BookingStatus(status)
		list = append(list, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) UpdateBooking(ctx context.Context, update *store.UpdateBooking) (*store.Booking, error) {
	set, args := []string{}, []any{}
	if v := update.VenueID; v != nil {
		set, args = append(set, "venue_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.VenueName; v != nil {
		set, args = append(set, "venue_name = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.StartTs; v != nil {
		set, args = append(set, "start_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.EndTs; v != nil {
		set, args = append(set, "end_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Purpose; v != nil {
		set, args = append(set, "purpose = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.ContactInfo; v != nil {
		set, args = append(set, "contact_info = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Status; v != nil {
		set, args = append(set, "status = "+placeholder(len(args)+1)), append(args, string(*v))
	}
	if v := update.UpdatedTs; v != nil {
		set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, *v)
	}

	if len(set) > 0 {
		args = append(args, update.ID)
		stmt := `UPDATE booking SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
		result, err := d.db.ExecContext(ctx, stmt, args...)
		if err != nil {
			return nil, errors.Wrap(err, "failed to update booking")
		}
		if n, err := result.RowsAffected(); err == nil && n == 0 {
			return nil, store.ErrNotFound
		}
	}

	list, err := d.ListBookings(ctx, &store.FindBooking{ID: &update.ID})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, store.ErrNotFound
	}
	return list[0], nil
}

func (d *DB) DeleteBooking(ctx context.Context, delete *store.DeleteBooking) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM booking WHERE id = `+placeholder(1), delete.ID)
	if err != nil {
		return errors.Wrap(err, "failed to delete booking")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (d *DB) UpsertBooking(ctx context.Context, b *store.Booking) error {
	stmt := `INSERT INTO booking (` + bookingColumns + `)
		VALUES (` + placeholders(14) + `)
		ON CONFLICT(id) DO UPDATE SET
			venue_id = excluded.venue_id,
			venue_name = excluded.venue_name,
			start_ts = excluded.start_ts,
			end_ts = excluded.end_ts,
			purpose = excluded.purpose,
			contact_info = excluded.contact_info,
			status = excluded.status,
			updated_ts = excluded.updated_ts,
			recurring = excluded.recurring,
			recurrence_kind = excluded.recurrence_kind,
			occurrence_index = excluded.occurrence_index,
			series_id = excluded.series_id`
	if _, err := d.db.ExecContext(ctx, stmt,
		b.ID, b.VenueID, b.VenueName, b.StartTs, b.EndTs, b.Purpose, b.ContactInfo, string(b.Status),
		b.CreatedTs, b.UpdatedTs, b.Recurring, b.RecurrenceKind, b.OccurrenceIndex, b.SeriesID,
	); err != nil {
		return errors.Wrapf(err, "failed to upsert booking %s", b.ID)
	}
	return nil
}
