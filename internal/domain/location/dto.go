package location

import (
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/geo"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

type CreateOfficeLocationRequest struct {
	Name         string   `json:"name"`
	IPAddress    *string  `json:"ip_address,omitempty"`
	IPRangeStart *string  `json:"ip_range_start,omitempty"`
	IPRangeEnd   *string  `json:"ip_range_end,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	RadiusMeters *int     `json:"radius_meters,omitempty"`
	IsActive     *bool    `json:"is_active,omitempty"`
}

func (r *CreateOfficeLocationRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}

	errs = append(errs, validateDetectionFields(r.IPAddress, r.IPRangeStart, r.IPRangeEnd, r.Latitude, r.Longitude, r.RadiusMeters)...)
	if len(errs) == 0 {
		errs = validateDetectionPairs(r.IPRangeStart, r.IPRangeEnd, r.Latitude, r.Longitude)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateOfficeLocationRequest struct {
	ID           string   `json:"-"`
	Name         *string  `json:"name,omitempty"`
	IPAddress    *string  `json:"ip_address,omitempty"`
	IPRangeStart *string  `json:"ip_range_start,omitempty"`
	IPRangeEnd   *string  `json:"ip_range_end,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	RadiusMeters *int     `json:"radius_meters,omitempty"`
	IsActive     *bool    `json:"is_active,omitempty"`
}

// Validate checks the fields present in the request. Range and coordinate
// pairs may be completed by the stored row, see ValidateMerged.
func (r *UpdateOfficeLocationRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name cannot be empty",
		})
	}

	errs = append(errs, validateDetectionFields(r.IPAddress, r.IPRangeStart, r.IPRangeEnd, r.Latitude, r.Longitude, r.RadiusMeters)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Apply returns loc with the request's fields written over it. Empty IP
// strings clear the stored value.
func (r UpdateOfficeLocationRequest) Apply(loc OfficeLocation) OfficeLocation {
	if r.Name != nil {
		loc.Name = strings.TrimSpace(*r.Name)
	}
	if r.IPAddress != nil {
		loc.IPAddress = trimmedOrNil(*r.IPAddress)
	}
	if r.IPRangeStart != nil {
		loc.IPRangeStart = trimmedOrNil(*r.IPRangeStart)
	}
	if r.IPRangeEnd != nil {
		loc.IPRangeEnd = trimmedOrNil(*r.IPRangeEnd)
	}
	if r.Latitude != nil {
		loc.Latitude = r.Latitude
	}
	if r.Longitude != nil {
		loc.Longitude = r.Longitude
	}
	if r.RadiusMeters != nil {
		loc.RadiusMeters = *r.RadiusMeters
	}
	if r.IsActive != nil {
		loc.IsActive = *r.IsActive
	}
	return loc
}

// ValidateMerged checks the range and coordinate pairs of the row an update
// would produce.
func ValidateMerged(loc OfficeLocation) error {
	if errs := validateDetectionPairs(loc.IPRangeStart, loc.IPRangeEnd, loc.Latitude, loc.Longitude); len(errs) > 0 {
		return errs
	}
	return nil
}

func trimmedOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// validateDetectionFields checks the format of each field on its own. Whether
// at least one detection method remains is decided by the service.
func validateDetectionFields(ip, rangeStart, rangeEnd *string, lat, lon *float64, radius *int) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if ip != nil && *ip != "" && !geo.IsValidIPv4(*ip) {
		errs = append(errs, validator.ValidationError{
			Field:   "ip_address",
			Message: "ip_address must be a valid IPv4 address",
		})
	}
	if rangeStart != nil && *rangeStart != "" && !geo.IsValidIPv4(*rangeStart) {
		errs = append(errs, validator.ValidationError{
			Field:   "ip_range_start",
			Message: "ip_range_start must be a valid IPv4 address",
		})
	}
	if rangeEnd != nil && *rangeEnd != "" && !geo.IsValidIPv4(*rangeEnd) {
		errs = append(errs, validator.ValidationError{
			Field:   "ip_range_end",
			Message: "ip_range_end must be a valid IPv4 address",
		})
	}

	errs = append(errs, validator.ValidateCoordinates("", lat, lon)...)

	if radius != nil && *radius <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "radius_meters",
			Message: "radius_meters must be greater than 0",
		})
	}

	return errs
}

// validateDetectionPairs requires both ends of the IP range and both
// coordinates, and an ascending range.
func validateDetectionPairs(rangeStart, rangeEnd *string, lat, lon *float64) validator.ValidationErrors {
	var errs validator.ValidationErrors

	hasStart := rangeStart != nil && *rangeStart != ""
	hasEnd := rangeEnd != nil && *rangeEnd != ""
	switch {
	case hasStart != hasEnd:
		errs = append(errs, validator.ValidationError{
			Field:   "ip_range_start",
			Message: "ip_range_start and ip_range_end must be provided together",
		})
	case hasStart:
		start, okStart := geo.IPv4ToUint32(*rangeStart)
		end, okEnd := geo.IPv4ToUint32(*rangeEnd)
		if okStart && okEnd && start > end {
			errs = append(errs, validator.ValidationError{
				Field:   "ip_range_end",
				Message: ErrInvalidIPRange.Error(),
			})
		}
	}

	if (lat == nil) != (lon == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude and longitude must be provided together",
		})
	}

	return errs
}

type OfficeLocationResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	IPAddress    *string  `json:"ip_address,omitempty"`
	IPRangeStart *string  `json:"ip_range_start,omitempty"`
	IPRangeEnd   *string  `json:"ip_range_end,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	RadiusMeters int      `json:"radius_meters"`
	IsActive     bool     `json:"is_active"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

type OfficeLocationFilter struct {
	IsActive *bool `json:"is_active,omitempty"`
	Page     int   `json:"page"`
	Limit    int   `json:"limit"`
}

func (f *OfficeLocationFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListOfficeLocationResponse struct {
	TotalCount int64                    `json:"total_count"`
	Page       int                      `json:"page"`
	Limit      int                      `json:"limit"`
	TotalPages int                      `json:"total_pages"`
	Locations  []OfficeLocationResponse `json:"locations"`
}

// ResolveRequest previews how an attempt from the given signals would be classified.
// An empty IPAddress falls back to the caller's own address.
type ResolveRequest struct {
	IPAddress string   `json:"ip_address,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

func (r *ResolveRequest) Validate() error {
	errs := validator.ValidateCoordinates("", r.Latitude, r.Longitude)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ResolutionResponse struct {
	IsOnsite       bool     `json:"is_onsite"`
	WorkType       string   `json:"work_type"`
	Method         Method   `json:"method"`
	Reason         string   `json:"reason"`
	LocationID     *string  `json:"location_id,omitempty"`
	LocationName   *string  `json:"location_name,omitempty"`
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
}

func NewResolutionResponse(r Resolution) ResolutionResponse {
	resp := ResolutionResponse{
		IsOnsite:       r.IsOnsite,
		WorkType:       r.WorkType(),
		Method:         r.Method,
		Reason:         r.Reason,
		LocationID:     r.LocationID(),
		DistanceMeters: r.DistanceMeters,
	}
	if r.Location != nil {
		name := r.Location.Name
		resp.LocationName = &name
	}
	return resp
}
