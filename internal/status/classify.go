package status

import "time"

// Status codes returned to the client.
const (
	OnTime      = "on_time"
	Late        = "late"
	Early       = "early"
	MissingTrip = "missing_trip"
	NoService   = "no_service"
)

// Classify turns a resolved arrival into a status code. Rules apply in
// order: no resolvable arrival at all, then a reconciled-missing trip,
// then timeliness by reported delay. A missing delay counts as on time.
func Classify(hasArrival, missing bool, delaySeconds *int, acceptable time.Duration) string {
	acceptableSec := int(acceptable / time.Second)

	switch {
	case !hasArrival:
		return NoService
	case missing:
		return MissingTrip
	case delaySeconds != nil && *delaySeconds > acceptableSec:
		return Late
	case delaySeconds != nil && *delaySeconds < -acceptableSec:
		return Early
	default:
		return OnTime
	}
}

// ShouldReveal decides whether the reward payload may be attached: the
// caller must be within the acceptance radius AND the estimated arrival
// must be within the reveal window of now. Independent of whether the
// vehicle is early, late or on time.
func ShouldReveal(nearEnough bool, estimated, now time.Time, window time.Duration) bool {
	if !nearEnough {
		return false
	}
	diff := now.Sub(estimated)
	if diff < 0 {
		diff = -diff
	}
	return diff <= window
}
