package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// metersNorth returns the latitude reached by moving m meters due north of lat.
func metersNorth(lat, m float64) float64 {
	return lat + (m/earthRadiusMeters)*(180.0/math.Pi)
}

func TestDistanceMeters_SamePointIsZero(t *testing.T) {
	points := [][2]float64{
		{0, 0},
		{-6.2088, 106.8456},
		{89.9999, -179.9999},
		{-90, 180},
	}
	for _, p := range points {
		assert.InDelta(t, 0, DistanceMeters(p[0], p[1], p[0], p[1]), 1e-9)
	}
}

func TestDistanceMeters_Symmetric(t *testing.T) {
	pairs := [][4]float64{
		{-6.2088, 106.8456, -6.9175, 107.6191},
		{51.5074, -0.1278, 40.7128, -74.0060},
		{0, 0, 0, 180},
		{-33.8688, 151.2093, 35.6762, 139.6503},
	}
	for _, p := range pairs {
		ab := DistanceMeters(p[0], p[1], p[2], p[3])
		ba := DistanceMeters(p[2], p[3], p[0], p[1])
		assert.InDelta(t, ab, ba, 1e-6)
	}
}

func TestDistanceMeters_KnownDistances(t *testing.T) {
	// Jakarta Monas -> Bandung Gedung Sate, roughly 118 km.
	d := DistanceMeters(-6.1754, 106.8272, -6.9025, 107.6188)
	assert.InDelta(t, 118_000, d, 3_000)

	lat := metersNorth(-6.2, 99)
	assert.InDelta(t, 99, DistanceMeters(-6.2, 106.8, lat, 106.8), 1e-6)
}

func TestIPInRange(t *testing.T) {
	cases := []struct {
		name       string
		ip         string
		start, end string
		want       bool
	}{
		{"inside", "192.168.1.50", "192.168.1.1", "192.168.1.254", true},
		{"lower bound", "192.168.1.1", "192.168.1.1", "192.168.1.254", true},
		{"upper bound", "192.168.1.254", "192.168.1.1", "192.168.1.254", true},
		{"below", "192.168.0.255", "192.168.1.0", "192.168.1.255", false},
		{"above", "192.168.2.0", "192.168.1.0", "192.168.1.255", false},
		{"octet order matters", "10.0.1.0", "10.0.0.200", "10.0.0.255", false},
		{"crosses octet", "10.0.1.5", "10.0.0.200", "10.0.2.0", true},
		{"empty ip", "", "10.0.0.1", "10.0.0.9", false},
		{"empty start", "10.0.0.5", "", "10.0.0.9", false},
		{"empty end", "10.0.0.5", "10.0.0.1", "", false},
		{"three octets", "10.0.5", "10.0.0.1", "10.0.0.9", false},
		{"five octets", "10.0.0.5.1", "10.0.0.1", "10.0.0.9", false},
		{"octet overflow", "10.0.0.256", "10.0.0.1", "10.0.0.9", false},
		{"garbage", "not-an-ip", "10.0.0.1", "10.0.0.9", false},
		{"ipv6", "::1", "10.0.0.1", "10.0.0.9", false},
		{"malformed ipv6", "fe80:::zz", "10.0.0.1", "10.0.0.9", false},
		{"ipv6 bounds", "10.0.0.5", "::1", "::ffff", false},
		{"inverted range", "10.0.0.5", "10.0.0.9", "10.0.0.1", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, IPInRange(c.ip, c.start, c.end))
		})
	}
}

func TestIPInRange_SingleAddressRange(t *testing.T) {
	ips := []string{"0.0.0.0", "10.0.0.5", "127.0.0.1", "192.168.100.200", "255.255.255.255"}
	for _, ip := range ips {
		assert.True(t, IPInRange(ip, ip, ip), ip)
	}
}

func TestIPv4ToUint32(t *testing.T) {
	v, ok := IPv4ToUint32("1.2.3.4")
	assert.True(t, ok)
	assert.Equal(t, uint32(0x01020304), v)

	v, ok = IPv4ToUint32("255.255.255.255")
	assert.True(t, ok)
	assert.Equal(t, uint32(math.MaxUint32), v)

	_, ok = IPv4ToUint32("2001:db8::1")
	assert.False(t, ok)
}

func TestNormalizeClientIP(t *testing.T) {
	cases := map[string]string{
		"10.0.0.5":              "10.0.0.5",
		" 10.0.0.5 ":            "10.0.0.5",
		"10.0.0.5:54321":        "10.0.0.5",
		"::ffff:10.0.0.5":       "10.0.0.5",
		"[::ffff:10.0.0.5]:443": "10.0.0.5",
		"[::1]:8080":            "::1",
		"":                      "",
		"unknown":               "unknown",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeClientIP(in), in)
	}
}
