package location

import "time"

type OfficeLocation struct {
	ID           string
	Name         string
	IPAddress    *string
	IPRangeStart *string
	IPRangeEnd   *string
	Latitude     *float64
	Longitude    *float64
	RadiusMeters int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DefaultRadiusMeters applies when a location is created without a radius.
const DefaultRadiusMeters = 100

// HasIPDetection reports whether the location can match by single IP or by range.
func (l OfficeLocation) HasIPDetection() bool {
	return l.hasIPAddress() || l.hasIPRange()
}

// HasGPSDetection reports whether the location can match by GPS radius.
func (l OfficeLocation) HasGPSDetection() bool {
	return l.Latitude != nil && l.Longitude != nil && l.RadiusMeters > 0
}

func (l OfficeLocation) hasIPAddress() bool {
	return l.IPAddress != nil && *l.IPAddress != ""
}

func (l OfficeLocation) hasIPRange() bool {
	return l.IPRangeStart != nil && *l.IPRangeStart != "" && l.IPRangeEnd != nil && *l.IPRangeEnd != ""
}

// Method names how an attendance attempt was classified.
type Method string

const (
	MethodIPDirect  Method = "ip_direct"
	MethodIPRange   Method = "ip_range"
	MethodGPSRadius Method = "gps_radius"
	MethodOffsite   Method = "offsite"
	MethodError     Method = "error"
)

// Work types recorded on attendance check-in and check-out.
const (
	WorkTypeOnsite  = "onsite"
	WorkTypeOffsite = "offsite"
)

// Resolution is the ONSITE/OFFSITE decision for one attempt.
type Resolution struct {
	IsOnsite       bool
	Reason         string
	Location       *OfficeLocation
	DistanceMeters *float64
	Method         Method
}

// WorkType maps the decision to the stored work type.
func (r Resolution) WorkType() string {
	if r.IsOnsite {
		return WorkTypeOnsite
	}
	return WorkTypeOffsite
}

// LocationID returns the matched location's ID, if any.
func (r Resolution) LocationID() *string {
	if r.Location == nil {
		return nil
	}
	id := r.Location.ID
	return &id
}
