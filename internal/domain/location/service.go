package location

import "context"

// OfficeLocationService manages the office location registry.
type OfficeLocationService interface {
	Create(ctx context.Context, req CreateOfficeLocationRequest) (OfficeLocationResponse, error)
	Update(ctx context.Context, req UpdateOfficeLocationRequest) (OfficeLocationResponse, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (OfficeLocationResponse, error)
	List(ctx context.Context, filter OfficeLocationFilter) (ListOfficeLocationResponse, error)
}

// Resolver classifies an attendance attempt as ONSITE or OFFSITE.
// It never returns an error; failures resolve to OFFSITE with MethodError.
type Resolver interface {
	Resolve(ctx context.Context, clientIP string, latitude, longitude *float64) Resolution
}
