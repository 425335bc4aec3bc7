package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/hotel-room-booking/internal/model"
)

// RoomRepo provides CRUD operations for rooms and the capacity lookup
// consumed by the availability engine.  A room row describes a room
// type; total_rooms is its inventory per calendar date.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a new RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

const roomColumns = `id, hotel_id, name, description, total_rooms, price_per_night, is_active, created_at, updated_at`

func scanRoom(row interface{ Scan(...any) error }) (*model.Room, error) {
	var rm model.Room
	var desc sql.NullString
	if err := row.Scan(
		&rm.ID, &rm.HotelID, &rm.Name, &desc, &rm.TotalRooms,
		&rm.PricePerNight, &rm.IsActive, &rm.CreatedAt, &rm.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if desc.Valid {
		d := desc.String
		rm.Description = &d
	}
	return &rm, nil
}

// Create inserts a room and queries it back to populate timestamps.
// A fresh UUID is assigned when the record has no ID yet.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	if rm.ID == "" {
		rm.ID = uuid.NewString()
	}
	const ins = `INSERT INTO rooms (id, hotel_id, name, description, total_rooms, price_per_night, is_active)
	             VALUES (?, ?, ?, ?, ?, ?, ?)`
	var desc any
	if rm.Description != nil {
		desc = *rm.Description
	}
	if _, err := r.db.ExecContext(ctx, ins,
		rm.ID, rm.HotelID, rm.Name, desc, rm.TotalRooms, rm.PricePerNight, rm.IsActive,
	); err != nil {
		return err
	}
	const sel = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	got, err := scanRoom(r.db.QueryRowContext(ctx, sel, rm.ID))
	if err != nil {
		return err
	}
	*rm = *got
	return nil
}

// GetByID loads one room.  Returns ErrRoomNotFound when absent.
func (r *RoomRepo) GetByID(ctx context.Context, id string) (*model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	rm, err := scanRoom(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return rm, nil
}

// GetRoomCapacity returns just the inventory slice of a room.  The
// availability engine calls this on every check; keeping the query to a
// single column avoids dragging catalog fields through the hot path.
// Returns ErrRoomNotFound when the ID does not resolve.  A zero
// total_rooms is returned as-is; interpreting it is the engine's job.
func (r *RoomRepo) GetRoomCapacity(ctx context.Context, roomID string) (model.RoomCapacity, error) {
	const q = `SELECT total_rooms FROM rooms WHERE id = ?`
	inv := model.RoomCapacity{RoomID: roomID}
	err := r.db.QueryRowContext(ctx, q, roomID).Scan(&inv.TotalRooms)
	if err == sql.ErrNoRows {
		return model.RoomCapacity{}, ErrRoomNotFound
	}
	if err != nil {
		return model.RoomCapacity{}, err
	}
	return inv, nil
}

// UpdateInventory changes a room's total_rooms value.  Shrinking the
// inventory does not touch existing bookings; future availability
// checks simply count against the new capacity.
func (r *RoomRepo) UpdateInventory(ctx context.Context, roomID string, totalRooms int) (*model.Room, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET total_rooms = ?, updated_at = NOW() WHERE id = ?`,
		totalRooms, roomID)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Distinguish "no such room" from "same value" before failing.
		if _, err2 := r.GetByID(ctx, roomID); err2 != nil {
			return nil, err2
		}
	}
	return r.GetByID(ctx, roomID)
}

// ListByHotel returns all rooms of a hotel ordered by name.  The active
// flag can be used to restrict to bookable rooms only.
func (r *RoomRepo) ListByHotel(ctx context.Context, hotelID string, activeOnly bool) ([]model.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms WHERE hotel_id = ?`
	if activeOnly {
		q += ` AND is_active = 1`
	}
	q += ` ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, q, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Room, 0)
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
