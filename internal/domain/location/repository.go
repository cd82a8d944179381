package location

import "context"

// OfficeLocationRepository defines data access methods for office locations.
type OfficeLocationRepository interface {
	// ListActive returns active locations ordered by creation time, then ID
	ListActive(ctx context.Context) ([]OfficeLocation, error)

	// List returns all locations, optionally filtered by active flag
	List(ctx context.Context, filter OfficeLocationFilter) ([]OfficeLocation, int64, error)

	GetByID(ctx context.Context, id string) (OfficeLocation, error)
	Create(ctx context.Context, loc OfficeLocation) (OfficeLocation, error)
	Update(ctx context.Context, id string, req UpdateOfficeLocationRequest) error
	Delete(ctx context.Context, id string) error

	// ExistsByName checks for an exact, case-sensitive name match among active
	// and inactive rows. excludeID skips the row being updated.
	ExistsByName(ctx context.Context, name string, excludeID *string) (bool, error)
}
