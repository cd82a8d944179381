package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const officeLocationNameKey = "office_locations_name_key"

const officeLocationColumns = `
	id, name, ip_address, ip_range_start, ip_range_end,
	latitude, longitude, radius_meters, is_active, created_at, updated_at`

type officeLocationRepository struct {
	db *database.DB
}

func NewOfficeLocationRepository(db *database.DB) location.OfficeLocationRepository {
	return &officeLocationRepository{db: db}
}

func scanOfficeLocation(row rowScanner) (location.OfficeLocation, error) {
	var loc location.OfficeLocation
	err := row.Scan(
		&loc.ID, &loc.Name, &loc.IPAddress, &loc.IPRangeStart, &loc.IPRangeEnd,
		&loc.Latitude, &loc.Longitude, &loc.RadiusMeters, &loc.IsActive, &loc.CreatedAt, &loc.UpdatedAt,
	)
	return loc, err
}

func (r *officeLocationRepository) query(ctx context.Context, sql string, args ...any) ([]location.OfficeLocation, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query office locations: %w", err)
	}
	defer rows.Close()

	locations := make([]location.OfficeLocation, 0)
	for rows.Next() {
		loc, err := scanOfficeLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan office location: %w", err)
		}
		locations = append(locations, loc)
	}

	return locations, rows.Err()
}

// ListActive implements location.OfficeLocationRepository.
func (r *officeLocationRepository) ListActive(ctx context.Context) ([]location.OfficeLocation, error) {
	return r.query(ctx, "SELECT "+officeLocationColumns+" FROM office_locations WHERE is_active ORDER BY created_at, id")
}

// List implements location.OfficeLocationRepository.
func (r *officeLocationRepository) List(ctx context.Context, filter location.OfficeLocationFilter) ([]location.OfficeLocation, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := "TRUE"
	args := []interface{}{}
	if filter.IsActive != nil {
		where = "is_active = $1"
		args = append(args, *filter.IsActive)
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM office_locations WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count office locations: %w", err)
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := max(filter.Page, 1)

	sql := fmt.Sprintf("SELECT %s FROM office_locations WHERE %s ORDER BY created_at, id LIMIT $%d OFFSET $%d",
		officeLocationColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, (page-1)*limit)

	locations, err := r.query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}

	return locations, total, nil
}

// GetByID implements location.OfficeLocationRepository.
func (r *officeLocationRepository) GetByID(ctx context.Context, id string) (location.OfficeLocation, error) {
	q := GetQuerier(ctx, r.db)

	loc, err := scanOfficeLocation(q.QueryRow(ctx, "SELECT "+officeLocationColumns+" FROM office_locations WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return location.OfficeLocation{}, location.ErrLocationNotFound
		}
		return location.OfficeLocation{}, fmt.Errorf("failed to get office location by ID: %w", err)
	}

	return loc, nil
}

// Create implements location.OfficeLocationRepository.
func (r *officeLocationRepository) Create(ctx context.Context, loc location.OfficeLocation) (location.OfficeLocation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO office_locations (
			name, ip_address, ip_range_start, ip_range_end,
			latitude, longitude, radius_meters, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		loc.Name, loc.IPAddress, loc.IPRangeStart, loc.IPRangeEnd,
		loc.Latitude, loc.Longitude, loc.RadiusMeters, loc.IsActive,
	).Scan(&loc.ID, &loc.CreatedAt, &loc.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, officeLocationNameKey) {
			return location.OfficeLocation{}, location.ErrLocationNameExists
		}
		return location.OfficeLocation{}, fmt.Errorf("failed to create office location: %w", err)
	}

	return loc, nil
}

// Update implements location.OfficeLocationRepository.
func (r *officeLocationRepository) Update(ctx context.Context, id string, req location.UpdateOfficeLocationRequest) error {
	q := GetQuerier(ctx, r.db)

	updates := []string{}
	args := []interface{}{}
	argIdx := 1

	set := func(column string, value any) {
		updates = append(updates, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if req.Name != nil {
		set("name", strings.TrimSpace(*req.Name))
	}
	if req.IPAddress != nil {
		set("ip_address", nullIfEmpty(*req.IPAddress))
	}
	if req.IPRangeStart != nil {
		set("ip_range_start", nullIfEmpty(*req.IPRangeStart))
	}
	if req.IPRangeEnd != nil {
		set("ip_range_end", nullIfEmpty(*req.IPRangeEnd))
	}
	if req.Latitude != nil {
		set("latitude", *req.Latitude)
	}
	if req.Longitude != nil {
		set("longitude", *req.Longitude)
	}
	if req.RadiusMeters != nil {
		set("radius_meters", *req.RadiusMeters)
	}
	if req.IsActive != nil {
		set("is_active", *req.IsActive)
	}

	if len(updates) == 0 {
		return nil
	}

	updates = append(updates, "updated_at = NOW()")
	args = append(args, id)
	query := fmt.Sprintf("UPDATE office_locations SET %s WHERE id = $%d", strings.Join(updates, ", "), argIdx)

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err, officeLocationNameKey) {
			return location.ErrLocationNameExists
		}
		return fmt.Errorf("failed to update office location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return location.ErrLocationNotFound
	}

	return nil
}

// Delete implements location.OfficeLocationRepository.
func (r *officeLocationRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, "DELETE FROM office_locations WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete office location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return location.ErrLocationNotFound
	}

	return nil
}

// ExistsByName implements location.OfficeLocationRepository.
func (r *officeLocationRepository) ExistsByName(ctx context.Context, name string, excludeID *string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT EXISTS (SELECT 1 FROM office_locations WHERE name = $1 AND ($2::uuid IS NULL OR id <> $2::uuid))"

	var exists bool
	if err := q.QueryRow(ctx, query, name, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check office location name: %w", err)
	}

	return exists, nil
}

func nullIfEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
