package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/hotel-room-booking/internal/model"
)

// HotelRepo provides CRUD and search operations for hotels.
type HotelRepo struct {
	db *sql.DB
}

// NewHotelRepo returns a new HotelRepo bound to the given database.
func NewHotelRepo(db *sql.DB) *HotelRepo { return &HotelRepo{db: db} }

const hotelColumns = `id, name, city, country, address, stars, is_active, created_at, updated_at`

func scanHotel(row interface{ Scan(...any) error }) (*model.Hotel, error) {
	var h model.Hotel
	var addr sql.NullString
	var stars sql.NullInt16
	if err := row.Scan(
		&h.ID, &h.Name, &h.City, &h.Country, &addr, &stars,
		&h.IsActive, &h.CreatedAt, &h.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if addr.Valid {
		a := addr.String
		h.Address = &a
	}
	if stars.Valid {
		s := uint8(stars.Int16)
		h.Stars = &s
	}
	return &h, nil
}

// Create inserts a hotel and queries it back to populate timestamps.
func (r *HotelRepo) Create(ctx context.Context, h *model.Hotel) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	const ins = `INSERT INTO hotels (id, name, city, country, address, stars, is_active)
	             VALUES (?, ?, ?, ?, ?, ?, ?)`
	var addr, stars any
	if h.Address != nil {
		addr = *h.Address
	}
	if h.Stars != nil {
		stars = *h.Stars
	}
	if _, err := r.db.ExecContext(ctx, ins,
		h.ID, h.Name, h.City, h.Country, addr, stars, h.IsActive,
	); err != nil {
		return err
	}
	const sel = `SELECT ` + hotelColumns + ` FROM hotels WHERE id = ?`
	got, err := scanHotel(r.db.QueryRowContext(ctx, sel, h.ID))
	if err != nil {
		return err
	}
	*h = *got
	return nil
}

// GetByID loads one hotel.  Returns ErrHotelNotFound when absent.
func (r *HotelRepo) GetByID(ctx context.Context, id string) (*model.Hotel, error) {
	const q = `SELECT ` + hotelColumns + ` FROM hotels WHERE id = ?`
	h, err := scanHotel(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrHotelNotFound
	}
	if err != nil {
		return nil, err
	}
	return h, nil
}

// HotelSearchQuery defines filters & pagination for searching hotels.
type HotelSearchQuery struct {
	Name    string
	City    string
	Country string
	Page    int
	Limit   int
}

// Search returns a page of active hotels matching the query along with
// the total match count.  Name, city and country filters are
// case-insensitive substring matches.
func (r *HotelRepo) Search(ctx context.Context, q HotelSearchQuery) ([]model.Hotel, int64, error) {
	where := []string{"is_active = 1"}
	args := []any{}
	if q.Name != "" {
		where = append(where, "LOWER(name) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Name)+"%")
	}
	if q.City != "" {
		where = append(where, "LOWER(city) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.City)+"%")
	}
	if q.Country != "" {
		where = append(where, "LOWER(country) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Country)+"%")
	}
	cond := strings.Join(where, " AND ")

	var total int64
	countSQL := `SELECT COUNT(*) FROM hotels WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := `SELECT ` + hotelColumns + ` FROM hotels WHERE ` + cond + `
	            ORDER BY name ASC
	            LIMIT ? OFFSET ?`
	argsData := append(append([]any{}, args...), q.Limit, (q.Page-1)*q.Limit)
	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Hotel, 0, q.Limit)
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
