package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/hotel-room-booking/internal/model"
)

// dateLayout is the wire format for the DATE column.  Dates are always
// compared as whole calendar days in UTC.
const dateLayout = "2006-01-02"

// BookingRepo provides persistence for bookings.  One row represents
// one room reserved for one calendar date; multi-date reservations are
// stored as one row per date.  All timestamp fields are stored in UTC.
//
// The repo implements the booking store contract consumed by the
// availability engine, including the capacity-gated inserts that close
// the check-then-act race at the database.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions
// spanning multiple repositories.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// BookingUpdate carries the partial fields of a booking update.  Nil
// pointers mean "leave unchanged".
type BookingUpdate struct {
	RoomID *string
	Date   *time.Time
	Price  *float64
	Note   *string
	Status *string
}

// BookingFilter restricts FindFiltered.  Zero values mean "no filter".
type BookingFilter struct {
	UserID  string
	HotelID string
	RoomID  string
	Status  string
	Date    *time.Time
}

const bookingColumns = `id, user_id, hotel_id, room_id, booking_date, price, note, status, created_at, updated_at`

// scanBooking reads one bookings row from the given scanner.
func scanBooking(row interface{ Scan(...any) error }) (*model.Booking, error) {
	var b model.Booking
	var note sql.NullString
	if err := row.Scan(
		&b.ID, &b.UserID, &b.HotelID, &b.RoomID, &b.Date,
		&b.Price, &note, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if note.Valid {
		n := note.String
		b.Note = &n
	}
	b.Date = model.DateOnly(b.Date)
	return &b, nil
}

// CountActive returns the number of active bookings for the room on the
// given calendar date.  When excludeID is non-empty, that booking is
// omitted from the count so an update does not block on its own row.
func (r *BookingRepo) CountActive(ctx context.Context, roomID string, date time.Time, excludeID string) (int, error) {
	q := `SELECT COUNT(*) FROM bookings WHERE room_id = ? AND booking_date = ? AND status = ?`
	args := []any{roomID, date.Format(dateLayout), model.BookingStatusActive}
	if excludeID != "" {
		q += ` AND id <> ?`
		args = append(args, excludeID)
	}
	var n int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// countActiveForUpdateTx is the transactional variant of CountActive.
// FOR UPDATE locks the scanned records of the (room_id, booking_date,
// status) index, including the gap, so a concurrent insert for the same
// room and date blocks until this transaction commits or rolls back.
func (r *BookingRepo) countActiveForUpdateTx(ctx context.Context, tx *sql.Tx, roomID string, date time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM bookings WHERE room_id = ? AND booking_date = ? AND status = ? FOR UPDATE`
	var n int
	if err := tx.QueryRowContext(ctx, q, roomID, date.Format(dateLayout), model.BookingStatusActive).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// insertTx inserts a single booking row within the given transaction
// and queries it back so timestamps populated by the database are
// returned to the caller.  A fresh UUID is assigned when the record has
// no ID yet.
func (r *BookingRepo) insertTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	const ins = `INSERT INTO bookings (id, user_id, hotel_id, room_id, booking_date, price, note, status)
	             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	var note any
	if b.Note != nil {
		note = *b.Note
	}
	if _, err := tx.ExecContext(ctx, ins,
		b.ID, b.UserID, b.HotelID, b.RoomID, b.Date.Format(dateLayout),
		b.Price, note, b.Status,
	); err != nil {
		return err
	}
	const sel = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	got, err := scanBooking(tx.QueryRowContext(ctx, sel, b.ID))
	if err != nil {
		return err
	}
	*b = *got
	return nil
}

// InsertIfAvailable atomically inserts a booking only while the active
// count for its (room, date) pair is still below capacity.  The count
// and the insert run in one transaction with the counted rows locked,
// so two racing creates serialize and the loser observes the winner's
// row and receives ErrCapacityExceeded.
func (r *BookingRepo) InsertIfAvailable(ctx context.Context, b *model.Booking, capacity int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	count, err := r.countActiveForUpdateTx(ctx, tx, b.RoomID, b.Date)
	if err != nil {
		return err
	}
	if count >= capacity {
		return ErrCapacityExceeded
	}
	if err := r.insertTx(ctx, tx, b); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// InsertManyIfAvailable inserts a batch of bookings in one transaction,
// re-gating every record against capacity with the rows locked.  If any
// date has filled up since the caller's validation pass, the whole
// transaction rolls back and zero rows are written, preserving the
// all-or-nothing guarantee of multi-date bookings.
func (r *BookingRepo) InsertManyIfAvailable(ctx context.Context, bs []*model.Booking, capacity int) error {
	if len(bs) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	for _, b := range bs {
		count, err := r.countActiveForUpdateTx(ctx, tx, b.RoomID, b.Date)
		if err != nil {
			return err
		}
		if count >= capacity {
			return ErrCapacityExceeded
		}
		if err := r.insertTx(ctx, tx, b); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// UpdateFields applies a partial update and returns the refreshed row.
// Passing an update with no set fields only bumps updated_at.  Returns
// ErrBookingNotFound when the ID does not resolve.
func (r *BookingRepo) UpdateFields(ctx context.Context, id string, f BookingUpdate) (*model.Booking, error) {
	set := []string{"updated_at = NOW()"}
	args := []any{}
	if f.RoomID != nil {
		set = append(set, "room_id = ?")
		args = append(args, *f.RoomID)
	}
	if f.Date != nil {
		set = append(set, "booking_date = ?")
		args = append(args, f.Date.Format(dateLayout))
	}
	if f.Price != nil {
		set = append(set, "price = ?")
		args = append(args, *f.Price)
	}
	if f.Note != nil {
		set = append(set, "note = ?")
		args = append(args, *f.Note)
	}
	if f.Status != nil {
		set = append(set, "status = ?")
		args = append(args, *f.Status)
	}
	q := `UPDATE bookings SET ` + strings.Join(set, ", ") + ` WHERE id = ?`
	args = append(args, id)
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// Delete hard-deletes a booking and returns the removed record.
// Returns ErrBookingNotFound when the ID does not resolve.
func (r *BookingRepo) Delete(ctx context.Context, id string) (*model.Booking, error) {
	b, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return b, nil
}

// FindByID loads one booking.  Returns ErrBookingNotFound when absent.
func (r *BookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// FindFiltered returns a page of bookings matching the filter, newest
// first, along with the total match count for pagination.
func (r *BookingRepo) FindFiltered(ctx context.Context, f BookingFilter, page, limit int) ([]model.Booking, int64, error) {
	where := []string{}
	args := []any{}
	if f.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.HotelID != "" {
		where = append(where, "hotel_id = ?")
		args = append(args, f.HotelID)
	}
	if f.RoomID != "" {
		where = append(where, "room_id = ?")
		args = append(args, f.RoomID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.Date != nil {
		where = append(where, "booking_date = ?")
		args = append(args, f.Date.Format(dateLayout))
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	countSQL := `SELECT COUNT(*) FROM bookings WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + cond + `
	            ORDER BY created_at DESC
	            LIMIT ? OFFSET ?`
	argsData := append(append([]any{}, args...), limit, (page-1)*limit)
	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Booking, 0, limit)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// FindByDateRange returns a page of bookings whose date falls inside
// [start, end], ordered by booking date ascending, with the total match
// count for pagination.
func (r *BookingRepo) FindByDateRange(ctx context.Context, start, end time.Time, page, limit int) ([]model.Booking, int64, error) {
	var total int64
	const countSQL = `SELECT COUNT(*) FROM bookings WHERE booking_date BETWEEN ? AND ?`
	if err := r.db.QueryRowContext(ctx, countSQL, start.Format(dateLayout), end.Format(dateLayout)).Scan(&total); err != nil {
		return nil, 0, err
	}
	const dataSQL = `SELECT ` + bookingColumns + ` FROM bookings
	                 WHERE booking_date BETWEEN ? AND ?
	                 ORDER BY booking_date ASC, created_at ASC
	                 LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, dataSQL, start.Format(dateLayout), end.Format(dateLayout), limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Booking, 0, limit)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
