package spanfax

/*------------------------------------------------------------------
 *
 * Purpose:	Direct digital synthesis (carrier generation) and the
 *		root-raised-cosine pulse-shaping filter shared by all
 *		fast modems (C4). The phase accumulator follows the
 *		fixed sine-table-plus-uint32-phase approach the teacher
 *		uses for tone generation; the RRC taps are derived once,
 *		at init, from the closed-form RRC formula rather than a
 *		shipped table, since the offline coefficient generators
 *		are explicitly out of scope (spec.md §9).
 *
 *---------------------------------------------------------------*/

import (
	"math"
	"sync"
)

// ddsTicksPerCycle mirrors the teacher's 32-bit phase accumulator: the
// top bits of the phase index a 256-entry sine table.
const ddsTicksPerCycle = 256.0 * 256.0 * 256.0 * 256.0

var sineTableOnce sync.Once
var sineTable [256]float64

func initSineTable() {
	for i := range sineTable {
		sineTable[i] = math.Sin(2.0 * math.Pi * float64(i) / 256.0)
	}
}

// dds is a carrier oscillator: a running phase accumulator plus a
// per-sample phase increment derived from the carrier frequency.
type dds struct {
	phase          uint32
	changePerSample uint32
}

func newDDS(sampleRate, freq float64) *dds {
	sineTableOnce.Do(initSineTable)
	return &dds{
		changePerSample: uint32(freq*ddsTicksPerCycle/sampleRate + 0.5),
	}
}

// next advances the oscillator by one sample and returns cos+j*sin of the
// current phase, i.e. one complex carrier sample.
func (d *dds) next() complexF {
	idx := d.phase >> 24
	cosIdx := (idx + 64) & 0xff // cos(x) = sin(x + 90deg), 64/256 turns
	s := sineTable[idx]
	c := sineTable[cosIdx]
	d.phase += d.changePerSample
	return complexF{re: c, im: s}
}

// advancePhase jumps the oscillator's phase by a fraction of a full turn
// (0..1); the ANSam tone generator uses it for its 180-degree phase
// reversals.
func (d *dds) advancePhase(turns float64) {
	d.phase += uint32(turns * ddsTicksPerCycle)
}

// setFreq reprograms the oscillator's per-sample phase increment.
// Nothing in the package calls it.
func (d *dds) setFreq(sampleRate, freq float64) {
	d.changePerSample = uint32(freq*ddsTicksPerCycle/sampleRate + 0.5)
}

// complexF is a minimal complex-float pair, used instead of the built-in
// complex128 so the fixed-point/floating-point duality named in spec.md
// §9 could later be satisfied by swapping this one type.
type complexF struct {
	re, im float64
}

func (c complexF) add(o complexF) complexF { return complexF{c.re + o.re, c.im + o.im} }
func (c complexF) mul(o complexF) complexF {
	return complexF{c.re*o.re - c.im*o.im, c.re*o.im + c.im*o.re}
}
func (c complexF) scale(k float64) complexF { return complexF{c.re * k, c.im * k} }
func (c complexF) abs() float64             { return math.Hypot(c.re, c.im) }

// rrcTaps generates a root-raised-cosine FIR kernel for the given
// roll-off and symbol rate, sampled at sampleRate, truncated to length
// taps (spec.md §4.4: truncated to V*_RX_FILTER_STEPS taps). taps must be
// odd so the kernel has a well-defined centre tap.
func rrcTaps(sampleRate, baudRate, rolloff float64, taps int) []float64 {
	out := make([]float64, taps)
	center := taps / 2
	t := 1.0 / baudRate
	for i := range out {
		n := float64(i-center) / sampleRate
		out[i] = rrcImpulse(n, t, rolloff)
	}
	// Normalise to unit DC gain.
	sum := 0.0
	for _, v := range out {
		sum += v
	}
	if sum != 0 {
		for i := range out {
			out[i] /= sum
		}
	}
	return out
}

func rrcImpulse(t, symbolPeriod, beta float64) float64 {
	if t == 0 {
		return (1.0 / symbolPeriod) * (1.0 + beta*(4.0/math.Pi-1.0))
	}
	denom := 1.0 - math.Pow(4.0*beta*t/symbolPeriod, 2)
	if math.Abs(denom) < 1e-9 {
		// limit at t = +/- symbolPeriod/(4 beta)
		return (beta / (symbolPeriod * math.Sqrt2)) *
			((1.0+2.0/math.Pi)*math.Sin(math.Pi/(4.0*beta)) + (1.0-2.0/math.Pi)*math.Cos(math.Pi/(4.0*beta)))
	}
	num := math.Sin(math.Pi*t*(1.0-beta)/symbolPeriod) +
		4.0*beta*t/symbolPeriod*math.Cos(math.Pi*t*(1.0+beta)/symbolPeriod)
	return (1.0 / symbolPeriod) * num / (math.Pi * t / symbolPeriod * denom)
}

// complexFIR is the shared matched/pulse-shaping filter: a circular
// buffer of the last len(taps) complex samples, convolved against a
// fixed coefficient set.
type complexFIR struct {
	taps []float64
	buf  []complexF
	pos  int
}

func newComplexFIR(taps []float64) *complexFIR {
	return &complexFIR{taps: taps, buf: make([]complexF, len(taps))}
}

// push feeds one new sample and returns the filtered output.
func (f *complexFIR) push(sample complexF) complexF {
	f.buf[f.pos] = sample
	var acc complexF
	n := len(f.taps)
	for i, coeff := range f.taps {
		acc = acc.add(f.buf[(f.pos+n-i)%n].scale(coeff))
	}
	f.pos = (f.pos + 1) % n
	return acc
}
