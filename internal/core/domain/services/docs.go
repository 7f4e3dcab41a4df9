// Package services contains stateless domain services that implement
// dispatch decisions spanning multiple aggregates.
//
// BatchPlanner decides whether the two oldest pending orders share one
// trip, based on the great-circle distance between their destinations.
package services
