package risk

import "time"

const (
	DefaultExpiryBoundary = time.Minute
	DefaultSafeZone       = 15 * time.Second
)

// NextBoundary returns the first grid boundary strictly after t.
// Boundaries are shared with the chart candles, so the grid is aligned to wall-clock time.
func NextBoundary(t time.Time, grid time.Duration) time.Time {
	if grid <= 0 {
		grid = DefaultExpiryBoundary
	}
	return t.Truncate(grid).Add(grid)
}

// ExpiryFor snaps an order of the given length to the candle grid:
// the order settles length-grid after the next boundary.
func ExpiryFor(now time.Time, length, grid time.Duration) time.Time {
	if grid <= 0 {
		grid = DefaultExpiryBoundary
	}
	next := NextBoundary(now, grid)
	if length <= grid {
		return next
	}
	return next.Add(length - grid)
}

// InSafeZone reports whether now falls in the trailing window before the next boundary
// during which no new order may be placed.
func InSafeZone(now time.Time, grid, safeZone time.Duration) bool {
	if safeZone <= 0 {
		return false
	}
	return NextBoundary(now, grid).Sub(now) < safeZone
}
