package location

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/geo"
)

const (
	reasonOffsite = "Not connected to an office network and not within the radius of any office location"
	reasonError   = "Location could not be verified, so the attempt is treated as offsite"
)

type ResolverImpl struct {
	locationRepository location.OfficeLocationRepository
}

func NewResolver(locationRepository location.OfficeLocationRepository) location.Resolver {
	return &ResolverImpl{locationRepository: locationRepository}
}

// Resolve implements location.Resolver. IP evidence from any active location
// wins over GPS; GPS is only consulted when both coordinates are present.
func (r *ResolverImpl) Resolve(ctx context.Context, clientIP string, latitude, longitude *float64) (res location.Resolution) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("Location resolution panicked, treating as offsite", "client_ip", clientIP, "panic", rec)
			res = errorResolution()
		}
	}()

	locations, err := r.locationRepository.ListActive(ctx)
	if err != nil {
		slog.Error("Failed to load office locations, treating as offsite", "client_ip", clientIP, "error", err)
		return errorResolution()
	}

	ip := strings.TrimSpace(clientIP)

	if ip != "" {
		for i := range locations {
			loc := locations[i]

			if loc.IPAddress != nil && strings.TrimSpace(*loc.IPAddress) == ip {
				return location.Resolution{
					IsOnsite: true,
					Reason:   fmt.Sprintf("Connected from the %s network (%s)", loc.Name, ip),
					Location: &loc,
					Method:   location.MethodIPDirect,
				}
			}

			if loc.IPRangeStart != nil && loc.IPRangeEnd != nil && geo.IPInRange(ip, *loc.IPRangeStart, *loc.IPRangeEnd) {
				return location.Resolution{
					IsOnsite: true,
					Reason: fmt.Sprintf("IP %s is within the %s network range %s - %s",
						ip, loc.Name, *loc.IPRangeStart, *loc.IPRangeEnd),
					Location: &loc,
					Method:   location.MethodIPRange,
				}
			}
		}
	}

	if latitude != nil && longitude != nil {
		for i := range locations {
			loc := locations[i]
			if !loc.HasGPSDetection() {
				continue
			}

			distance := geo.DistanceMeters(*latitude, *longitude, *loc.Latitude, *loc.Longitude)
			if distance <= float64(loc.RadiusMeters) {
				return location.Resolution{
					IsOnsite: true,
					Reason: fmt.Sprintf("Within %.0f m of %s (allowed radius %d m)",
						distance, loc.Name, loc.RadiusMeters),
					Location:       &loc,
					DistanceMeters: &distance,
					Method:         location.MethodGPSRadius,
				}
			}
		}
	}

	return location.Resolution{
		IsOnsite: false,
		Reason:   reasonOffsite,
		Method:   location.MethodOffsite,
	}
}

func errorResolution() location.Resolution {
	return location.Resolution{
		IsOnsite: false,
		Reason:   reasonError,
		Method:   location.MethodError,
	}
}
