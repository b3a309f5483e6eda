package spanfax

/*------------------------------------------------------------------
 *
 * Purpose:	V.27ter modem, tx and rx (C6): 1600-baud differential
 *		PSK at 2400 bps (4 points, 2 bits/symbol) and 4800 bps
 *		(8 points, 3 bits/symbol).
 *
 *---------------------------------------------------------------*/

import "math"

const v27terBaudRate = 1600.0
const v27terCarrierFreq = 1800.0

// v27terPoints4 and v27terPoints8 are the differentially encoded phase
// constellations for 2400 and 4800 bps, indexed by increasing phase
// (index i is a phase step of offset + i*2*pi/n); the index is not
// Gray-coded.
var v27terPoints4 = dpskPoints(4, math.Pi/4)
var v27terPoints8 = dpskPoints(8, 0)

func dpskPoints(n int, offset float64) constellation {
	pts := make(constellation, n)
	for i := range pts {
		theta := offset + 2*math.Pi*float64(i)/float64(n)
		pts[i] = complexF{re: math.Cos(theta), im: math.Sin(theta)}
	}
	return pts
}

// v27terBitRate selects the constellation and bits/symbol for a V.27ter
// rate in bps, per spec.md §4.5/GLOSSARY; only 2400 and 4800 are valid.
func v27terBitRate(bps int) (constellation, int, error) {
	switch bps {
	case 2400:
		return v27terPoints4, 2, nil
	case 4800:
		return v27terPoints8, 3, nil
	default:
		return nil, 0, ErrUnsupportedModem
	}
}

// v27terTx is the differential PSK transmitter: each symbol's phase is
// the previous symbol's phase plus the phase step for the current
// dibit/tribit, so the line carries phase *changes*, not absolute phase.
type v27terTx struct {
	osc        *dds
	points     constellation
	bitsPerSym int
	lastPhase  float64
}

func newV27terTx(bps int) (*v27terTx, error) {
	points, bits, err := v27terBitRate(bps)
	if err != nil {
		return nil, err
	}
	return &v27terTx{
		osc:        newDDS(SampleRate, v27terCarrierFreq),
		points:     points,
		bitsPerSym: bits,
	}, nil
}

// txSymbol differentially encodes one symbol (value 0..len(points)-1,
// packed bitsPerSym bits) and returns the resulting unit-magnitude symbol
// at the new absolute phase (one value per baud, not oversampled); pulse
// shaping and carrier mixing are left to the caller.
func (t *v27terTx) txSymbol(value int) complexF {
	step := t.points[value%len(t.points)]
	stepPhase := math.Atan2(step.im, step.re)
	t.lastPhase += stepPhase
	return complexF{re: math.Cos(t.lastPhase), im: math.Sin(t.lastPhase)}
}

// v27terRx wires the shared fast-modem receive chain (C9) to V.27ter's
// differential decoding: the slicer resolves the *change* in phase
// between consecutive symbols, not absolute phase, so rx keeps the
// previous decided index around.
type v27terRx struct {
	chain      *rxChain
	bitsPerSym int
	lastIndex  int
}

func newV27terRx(bps int, eqTaps int, eqStep float64) (*v27terRx, error) {
	points, bits, err := v27terBitRate(bps)
	if err != nil {
		return nil, err
	}
	desc := newGodardDescriptor(SampleRate, v27terBaudRate, v27terCarrierFreq, 0.99, 0.1, 0.02, 2, 1)
	ted := newGodardTED(desc)
	rxFilter := newComplexFIR(rrcTaps(SampleRate, v27terBaudRate, 0.5, 63))
	eq := newEqualizer(equalizerConfig{Taps: eqTaps, StepSize: eqStep})
	carrier := newCarrierTracker(0.02, 0.0005)
	chain := newRxChain(ted, rxFilter, eq, carrier, points)
	return &v27terRx{chain: chain, bitsPerSym: bits}, nil
}

// rxSample runs one baseband sample through matched filtering and the
// shared chain and treats it as one symbol: every call makes a decision
// and returns the differentially decoded dibit/tribit value and true.
// No decimation to the baud rate is done here.
func (r *v27terRx) rxSample(sample complexF) (int, bool) {
	r.chain.ted.rx(sample.re)
	filtered := r.chain.rxFilter.push(sample)
	idx := r.chain.symbol(filtered)

	n := len(r.chain.points)
	diff := (idx - r.lastIndex + n) % n
	r.lastIndex = idx
	return diff, true
}
