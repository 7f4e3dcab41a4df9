// Package guard provides a defensive-construction primitive shared by
// domain value objects and commands.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific
// validation error is supplied for an object that was not constructed.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard distinguishes objects created through their designated
// constructor from zero values. Embedding a guard in a struct lets Validate
// reject instances that bypassed construction-time validation.
//
// Example usage:
//
//	type Radius struct {
//	    meters float64
//	    guard  ConstructorGuard
//	}
//
//	func NewRadius(meters float64) (Radius, error) {
//	    if meters <= 0 {
//	        return Radius{}, errors.New("radius must be positive")
//	    }
//	    return Radius{meters: meters, guard: NewConstructorGuard()}, nil
//	}
//
//	func (r Radius) Validate() error {
//	    return r.guard.Validate(ErrRadiusNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard marks an object as properly constructed.
// Call it inside the object's constructor only.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns nil for constructed objects. For zero-value guards it
// returns validationError, or ErrDefaultConstructorGuard when
// validationError is nil.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
