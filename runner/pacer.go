package runner

// maxCatchUp caps the steps a single Advance may return after a stall.
const maxCatchUp = 64

// Pacer converts elapsed wall time into a whole number of steps at a
// fixed rate, carrying the remainder to the next call.
type Pacer struct {
	Rate  float64 // steps per second; <= 0 stops stepping
	accum float64
}

// Advance adds dt seconds and returns how many steps are now due.
func (p *Pacer) Advance(dt float64) int {
	if p.Rate <= 0 || dt <= 0 {
		return 0
	}
	p.accum += dt * p.Rate
	n := int(p.accum)
	p.accum -= float64(n)
	if n > maxCatchUp {
		n = maxCatchUp
		p.accum = 0
	}
	return n
}

// Reset drops any carried fraction.
func (p *Pacer) Reset() {
	p.accum = 0
}
