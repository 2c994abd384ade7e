package fusion

import "math"

// Hysteresis decides when a drifting value has moved far enough from the
// last published value to be published again.
type Hysteresis struct {
	band   float64
	sent   float64
	strict bool
}

// Bands used for the published measurements (cm).
const (
	DistanceBand = 2.0
	PositionBand = 1.0
)

// NewHysteresis returns a tracker whose last published value is zero.
// A change of exactly band is published.
func NewHysteresis(band float64) *Hysteresis {
	return &Hysteresis{band: band}
}

// NewStrictHysteresis is like NewHysteresis but only publishes changes of
// more than band.
func NewStrictHysteresis(band float64) *Hysteresis {
	return &Hysteresis{band: band, strict: true}
}

// Check reports whether v has moved band away from the last published
// value. When it has, v becomes the new reference.
func (h *Hysteresis) Check(v float64) bool {
	d := math.Abs(v - h.sent)
	if d < h.band || (h.strict && d == h.band) {
		return false
	}
	h.sent = v
	return true
}

// Sent returns the last published value.
func (h *Hysteresis) Sent() float64 {
	return h.sent
}
