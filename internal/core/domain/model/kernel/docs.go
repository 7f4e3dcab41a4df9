// Package kernel provides core domain primitives for the dispatch engine.
//
// The package includes:
//   - GeoPoint: a validated WGS84 coordinate value object with great-circle
//     distance and random-point generation near a center
//
// These primitives enforce domain invariants at construction time and are
// immutable, making them safe for concurrent use.
package kernel
