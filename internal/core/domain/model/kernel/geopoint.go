package kernel

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	// LatitudeMin is the minimum valid latitude in degrees.
	LatitudeMin = -90.0
	// LatitudeMax is the maximum valid latitude in degrees.
	LatitudeMax = 90.0
	// LongitudeMin is the minimum valid longitude in degrees.
	LongitudeMin = -180.0
	// LongitudeMax is the maximum valid longitude in degrees.
	LongitudeMax = 180.0

	// earthRadiusMeters is the mean Earth radius used for great-circle distance.
	earthRadiusMeters = 6371000.0

	// kmPerDegreeLat approximates the surface distance of one degree of latitude.
	kmPerDegreeLat = 111.0
)

// ErrGeoPointIsNotConstructed is returned when attempting to use an improperly
// initialized GeoPoint. GeoPoints must be created via NewGeoPoint or
// RandomGeoPointNear.
var ErrGeoPointIsNotConstructed = errs.NewValueIsRequiredError(
	"geo point must be created via NewGeoPoint or RandomGeoPointNear constructors")

// GeoPoint represents a WGS84 coordinate pair with validated bounds.
// GeoPoint is an immutable value object; the zero value is invalid and fails
// validation, so instances must be created through a constructor.
//
// Example:
//
//	depot, err := kernel.NewGeoPoint(12.9093, 77.6483)
//	if err != nil {
//	    // Handle validation error
//	}
//	fmt.Println(depot) // Output: GeoPoint(12.909300,77.648300)
type GeoPoint struct { //nolint:recvcheck //using for validation
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewGeoPoint creates a GeoPoint from latitude and longitude in degrees.
// Latitude must be within [-90, 90] and longitude within [-180, 180];
// out-of-range values produce a validation error.
func NewGeoPoint(lat float64, lng float64) (GeoPoint, error) {
	point := GeoPoint{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(point.setLat(lat), point.setLng(lng)); err != nil {
		return GeoPoint{}, err
	}

	return point, nil
}

// RandomGeoPointNear creates a GeoPoint uniformly offset from center by at
// most radiusKm in each axis. Longitude offsets are scaled by the latitude
// so the sampled box stays roughly square on the ground. Coordinates are
// rounded to six decimal places, about 0.1 m of precision.
func RandomGeoPointNear(center GeoPoint, radiusKm float64) (GeoPoint, error) {
	if err := center.Validate(); err != nil {
		return GeoPoint{}, err
	}
	if radiusKm <= 0 {
		return GeoPoint{}, errs.NewValueIsInvalidErrorWithCause(
			"radiusKm", fmt.Errorf("%f is not greater than 0", radiusKm))
	}

	latSpan := radiusKm / kmPerDegreeLat
	lngSpan := radiusKm / (kmPerDegreeLat * math.Abs(math.Cos(center.lat*math.Pi/180)))

	lat := round6(center.lat + uniform(-latSpan, latSpan))
	lng := round6(center.lng + uniform(-lngSpan, lngSpan))
	return NewGeoPoint(lat, lng)
}

// Validate checks that the GeoPoint was created through a constructor.
// The zero value fails with ErrGeoPointIsNotConstructed.
func (p GeoPoint) Validate() error {
	return p.guard.Validate(ErrGeoPointIsNotConstructed)
}

// Lat returns the latitude in degrees.
func (p GeoPoint) Lat() float64 {
	return p.lat
}

// Lng returns the longitude in degrees.
func (p GeoPoint) Lng() float64 {
	return p.lng
}

// String implements fmt.Stringer in the form "GeoPoint(lat,lng)".
func (p GeoPoint) String() string {
	return fmt.Sprintf("GeoPoint(%.6f,%.6f)", p.lat, p.lng)
}

// IsEqual compares two points for exact coordinate equality.
// Both points must be properly constructed.
func (p GeoPoint) IsEqual(other GeoPoint) (bool, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return p.lat == other.lat && p.lng == other.lng, nil
}

// DistanceMeters calculates the great-circle distance to another point
// using the haversine formula over a mean Earth radius. Both points must
// be properly constructed.
func (p GeoPoint) DistanceMeters(other GeoPoint) (float64, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	lat1 := p.lat * math.Pi / 180
	lat2 := other.lat * math.Pi / 180
	dLat := (other.lat - p.lat) * math.Pi / 180
	dLng := (other.lng - p.lng) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	a := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c, nil
}

// setLat sets the latitude with validation.
// Pointer receiver is intentional: private setters mutate during construction only.
func (p *GeoPoint) setLat(lat float64) error {
	if lat < LatitudeMin || lat > LatitudeMax {
		return errs.NewValueIsOutOfRangeError("lat", lat, LatitudeMin, LatitudeMax)
	}

	p.lat = lat
	return nil
}

// setLng sets the longitude with validation.
// Pointer receiver is intentional: private setters mutate during construction only.
func (p *GeoPoint) setLng(lng float64) error {
	if lng < LongitudeMin || lng > LongitudeMax {
		return errs.NewValueIsOutOfRangeError("lng", lng, LongitudeMin, LongitudeMax)
	}

	p.lng = lng
	return nil
}

func uniform(low, high float64) float64 {
	return low + rand.Float64()*(high-low)
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
