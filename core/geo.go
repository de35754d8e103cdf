package core

import "context"

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p Point) IsZero() bool { return p.Lat == 0 && p.Lng == 0 }

// Geocoder resolves coordinates into human-readable addresses.
// Implementations live in services/geocoder.
type Geocoder interface {
	// Reverse returns the display address for a coordinate. A lookup failure
	// on the upstream service returns an empty string and a non-nil error;
	// callers decide whether the address is required.
	Reverse(ctx context.Context, pt Point) (string, error)
}
