package geo

import (
	"math"
	"net/netip"
	"strings"
)

const earthRadiusMeters = 6371000

// DistanceMeters returns the haversine distance between two coordinates in meters.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)

	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	// Rounding can push a just above 1 for antipodal points.
	a = math.Min(1, math.Max(0, a))

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// IPv4ToUint32 converts a dotted-quad address to its big-endian integer form.
// ok is false for empty, malformed or IPv6 input.
func IPv4ToUint32(ip string) (value uint32, ok bool) {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return 0, false
	}

	addr, err := netip.ParseAddr(ip)
	if err != nil || !addr.Is4() {
		return 0, false
	}

	b := addr.As4()
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), true
}

// IPInRange reports whether ip lies in the inclusive range [rangeStart, rangeEnd].
// Any absent or malformed input yields false.
func IPInRange(ip, rangeStart, rangeEnd string) bool {
	v, ok := IPv4ToUint32(ip)
	if !ok {
		return false
	}
	start, ok := IPv4ToUint32(rangeStart)
	if !ok {
		return false
	}
	end, ok := IPv4ToUint32(rangeEnd)
	if !ok {
		return false
	}

	return start <= v && v <= end
}

// IsValidIPv4 reports whether s is a dotted-quad IPv4 address.
func IsValidIPv4(s string) bool {
	_, ok := IPv4ToUint32(s)
	return ok
}

// NormalizeClientIP strips a port and unmaps IPv4-mapped IPv6 addresses
// ("::ffff:10.0.0.5" -> "10.0.0.5"). Unparseable input is returned trimmed.
func NormalizeClientIP(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if ap, err := netip.ParseAddrPort(raw); err == nil {
		return ap.Addr().Unmap().String()
	}
	if addr, err := netip.ParseAddr(strings.Trim(raw, "[]")); err == nil {
		return addr.Unmap().String()
	}
	return raw
}
