package location

import "errors"

// Office location domain errors
var (
	ErrLocationNotFound   = errors.New("office location not found")
	ErrLocationNameExists = errors.New("office location name already exists")
	ErrNoDetectionMethod  = errors.New("office location needs an IP address, an IP range, or GPS coordinates")
	ErrInvalidIPRange     = errors.New("ip_range_start must not be after ip_range_end")
)
