package spanfax

/*------------------------------------------------------------------
 *
 * Purpose:	Shared fast-modem receive chain (C9): a fractionally
 *		spaced complex LMS equalizer, a carrier phase/frequency
 *		tracker, and the constellation slicers used by V.27ter,
 *		V.29, and V.17. Godard's timing error detector (godard.go)
 *		drives the fractional interpolation; this file owns
 *		everything downstream of that: equalize, derotate, slice.
 *
 *---------------------------------------------------------------*/

import "math"

// equalizerConfig sizes the adaptive equalizer and its adaptation rate.
type equalizerConfig struct {
	Taps     int
	StepSize float64
}

// equalizer is a fractionally spaced, complex-valued LMS adaptive
// equalizer: a complexFIR whose taps are nudged after every decision by
// the slicer error, per the standard decision-directed LMS update rule.
type equalizer struct {
	cfg  equalizerConfig
	taps []complexF
	buf  []complexF
	pos  int
}

func newEqualizer(cfg equalizerConfig) *equalizer {
	taps := make([]complexF, cfg.Taps)
	// Centre tap starts at unity so the equalizer begins as a pass-through
	// and adapts away from there, rather than from all-zero (which would
	// null the signal entirely until convergence).
	taps[cfg.Taps/2] = complexF{re: 1}
	return &equalizer{
		cfg:  cfg,
		taps: taps,
		buf:  make([]complexF, cfg.Taps),
	}
}

// push shifts in one new fractionally spaced sample and returns the
// current equalized output (the same circular-convolution shape as
// complexFIR.push, but with complex taps instead of real ones).
func (e *equalizer) push(sample complexF) complexF {
	e.buf[e.pos] = sample
	var acc complexF
	n := len(e.taps)
	for i, tap := range e.taps {
		acc = acc.add(e.buf[(e.pos+n-i)%n].mul(tap))
	}
	e.pos = (e.pos + 1) % n
	return acc
}

// adapt applies the decision-directed LMS update: err is the slicer error
// (equalizer output minus sliced decision, as constellation.slice returns
// it) for the symbol just produced by push.
func (e *equalizer) adapt(err complexF) {
	n := len(e.taps)
	mu := e.cfg.StepSize
	for i := range e.taps {
		// The sample push multiplied by tap i; push has since advanced pos.
		s := e.buf[(e.pos+n-1-i)%n]
		// tap -= mu * err * conj(sample)
		conj := complexF{re: s.re, im: -s.im}
		e.taps[i] = e.taps[i].add(err.mul(conj).scale(-mu))
	}
}

// carrierTracker derotates the equalized signal by the residual carrier
// phase/frequency offset left over after coarse carrier recovery,
// closing a second-order phase-locked loop driven by the slicer's phase
// error each symbol.
type carrierTracker struct {
	phase     float64
	freq      float64
	alpha     float64 // proportional gain
	beta      float64 // integral gain
}

func newCarrierTracker(alpha, beta float64) *carrierTracker {
	return &carrierTracker{alpha: alpha, beta: beta}
}

// derotate multiplies sample by e^(-j*phase), i.e. undoes the tracked
// carrier phase, and returns the corrected symbol.
func (c *carrierTracker) derotate(sample complexF) complexF {
	rot := complexF{re: math.Cos(-c.phase), im: math.Sin(-c.phase)}
	return sample.mul(rot)
}

// track feeds the phase error between the derotated symbol and its sliced
// decision (err = angle(derotated) - angle(decision)) into the loop
// filter and advances phase for the next symbol.
func (c *carrierTracker) track(phaseErr float64) {
	c.freq += c.beta * phaseErr
	c.phase += c.freq + c.alpha*phaseErr
	for c.phase > math.Pi {
		c.phase -= 2 * math.Pi
	}
	for c.phase < -math.Pi {
		c.phase += 2 * math.Pi
	}
}

// constellation is an ordered list of ideal symbol points for one
// modulation/bit-rate combination, e.g. V.29's 16-point QAM at 9600bps.
// Points are indexed in increasing phase-angle order; there is no
// Gray-coded bit-to-symbol mapping. Per-modem tables live in
// v27ter.go/v29.go/v17.go.
type constellation []complexF

// slice finds the closest ideal point to observed and returns its index
// plus the slicing error (observed - ideal), which downstream adaptation
// and carrier tracking both consume.
func (c constellation) slice(observed complexF) (int, complexF) {
	best := 0
	bestDist := math.MaxFloat64
	for i, pt := range c {
		d := observed.add(pt.scale(-1))
		dist := d.re*d.re + d.im*d.im
		if dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	err := observed.add(c[best].scale(-1))
	return best, err
}

// rxChain bundles the pieces every fast-modem receiver wires together in
// the same order: Godard timing recovery feeding a fractional
// interpolator, into the equalizer, into carrier derotation, into the
// slicer.
type rxChain struct {
	ted      *godardTED
	rxFilter *complexFIR
	eq       *equalizer
	carrier  *carrierTracker
	points   constellation
}

func newRxChain(ted *godardTED, rxFilter *complexFIR, eq *equalizer, carrier *carrierTracker, points constellation) *rxChain {
	return &rxChain{ted: ted, rxFilter: rxFilter, eq: eq, carrier: carrier, points: points}
}

// symbol runs one already-matched-filtered baseband sample through
// equalization, derotation, and slicing, adapting both the equalizer and
// the carrier tracker from the resulting decision error. It returns the
// decided constellation index.
func (r *rxChain) symbol(sample complexF) int {
	eqOut := r.eq.push(sample)
	derotated := r.carrier.derotate(eqOut)

	idx, err := r.points.slice(derotated)

	phaseErr := math.Atan2(derotated.im, derotated.re) - math.Atan2(r.points[idx].im, r.points[idx].re)
	r.carrier.track(phaseErr)
	r.eq.adapt(err)

	return idx
}
