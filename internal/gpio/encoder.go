package gpio

// quadTable maps a transition (prev<<2 | cur) of the 2-bit encoder state
// (A<<1 | B) to a count step. Forward is 00 -> 01 -> 11 -> 10.
// Transitions that skip a state are dropped.
var quadTable = [16]int{
	0, +1, -1, 0,
	-1, 0, 0, +1,
	+1, 0, 0, -1,
	0, -1, +1, 0,
}

// quadDelta returns the count step between two encoder states.
func quadDelta(prev, cur uint8) int {
	return quadTable[(prev&3)<<2|(cur&3)]
}

// Decoder turns quadrature line levels into spool rotations.
type Decoder struct {
	state        uint8
	countsPerRev int
}

// NewDecoder creates a decoder starting at the given line levels.
// countsPerRev is the number of quadrature counts (four per slot) in one
// spool rotation; values below 1 are treated as 1.
func NewDecoder(a, b int, countsPerRev int) *Decoder {
	if countsPerRev < 1 {
		countsPerRev = 1
	}
	return &Decoder{state: levels(a, b), countsPerRev: countsPerRev}
}

// Update records new line levels and returns the rotation since the last
// update, in spool turns.
func (d *Decoder) Update(a, b int) float64 {
	cur := levels(a, b)
	delta := quadDelta(d.state, cur)
	d.state = cur
	return float64(delta) / float64(d.countsPerRev)
}

// Levels returns the last recorded A and B levels.
func (d *Decoder) Levels() (a, b int) {
	return int(d.state >> 1), int(d.state & 1)
}

func levels(a, b int) uint8 {
	var s uint8
	if a != 0 {
		s |= 2
	}
	if b != 0 {
		s |= 1
	}
	return s
}
