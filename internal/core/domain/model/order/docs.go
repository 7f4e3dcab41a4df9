// Package order contains the Order aggregate and its lifecycle state machine.
//
// Orders are created externally by the order source in unassigned state and
// mutated exclusively by the dispatch engine afterwards: assignment moves
// them to in_transit (binding partner, ETAs and the delivery window in one
// step), and status advancement moves them to delivered once the window has
// been reached. Delivered is terminal; orders are never deleted.
package order
