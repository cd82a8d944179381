package location

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/location"
	"github.com/google/uuid"
)

// fakeLocationRepository keeps rows in insertion order, matching the
// created_at ordering of the real repository.
type fakeLocationRepository struct {
	rows    []location.OfficeLocation
	listErr error
	panics  bool
}

func (f *fakeLocationRepository) ListActive(ctx context.Context) ([]location.OfficeLocation, error) {
	if f.panics {
		panic("corrupted row")
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []location.OfficeLocation
	for _, r := range f.rows {
		if r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeLocationRepository) List(ctx context.Context, filter location.OfficeLocationFilter) ([]location.OfficeLocation, int64, error) {
	var out []location.OfficeLocation
	for _, r := range f.rows {
		if filter.IsActive == nil || *filter.IsActive == r.IsActive {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeLocationRepository) GetByID(ctx context.Context, id string) (location.OfficeLocation, error) {
	for _, r := range f.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return location.OfficeLocation{}, location.ErrLocationNotFound
}

func (f *fakeLocationRepository) Create(ctx context.Context, loc location.OfficeLocation) (location.OfficeLocation, error) {
	loc.ID = uuid.NewString()
	loc.CreatedAt = time.Now()
	loc.UpdatedAt = loc.CreatedAt
	f.rows = append(f.rows, loc)
	return loc, nil
}

func (f *fakeLocationRepository) Update(ctx context.Context, id string, req location.UpdateOfficeLocationRequest) error {
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i] = req.Apply(f.rows[i])
			return nil
		}
	}
	return location.ErrLocationNotFound
}

func (f *fakeLocationRepository) Delete(ctx context.Context, id string) error {
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return location.ErrLocationNotFound
}

func (f *fakeLocationRepository) ExistsByName(ctx context.Context, name string, excludeID *string) (bool, error) {
	for _, r := range f.rows {
		if r.Name == name && (excludeID == nil || r.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLocationRepository) add(loc location.OfficeLocation) location.OfficeLocation {
	if loc.RadiusMeters == 0 {
		loc.RadiusMeters = location.DefaultRadiusMeters
	}
	loc.IsActive = true
	created, _ := f.Create(context.Background(), loc)
	return created
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }
func boolPtr(b bool) *bool        { return &b }
