package spanfax

/*------------------------------------------------------------------
 *
 * Purpose:	V.29 modem, tx and rx (C7): 2400-baud QAM at 7200
 *		(8 points, 3 bits/symbol), 9600 (16 points, 4 bits/symbol),
 *		and the non-standard-but-widely-deployed 4800 fallback
 *		(4 points, 2 bits/symbol).
 *
 *---------------------------------------------------------------*/

import "math"

const v29BaudRate = 2400.0
const v29CarrierFreq = 1700.0

// v29Points9600 is the 16-point QAM constellation: a 2-ring
// absolute-phase/amplitude table (V.29's combined phase+amplitude
// modulation, not purely square QAM).
var v29Points9600 = buildV29Constellation(16)
var v29Points7200 = buildV29Constellation(8)
var v29Points4800 = buildV29Constellation(4)

// buildV29Constellation lays out n points at phase steps of 2*pi/n, in
// index order, alternating between two amplitude rings, approximating
// V.29's absolute
// phase-amplitude encoding closely enough to exercise the shared
// receive chain end to end; exact ring radii are a build-time constant
// table in the original (C13, out of scope per spec.md §9).
func buildV29Constellation(n int) constellation {
	pts := make(constellation, n)
	rings := []float64{1.0, 1.8}
	for i := range pts {
		theta := 2 * math.Pi * float64(i) / float64(n)
		r := rings[i%len(rings)]
		pts[i] = complexF{re: r * math.Cos(theta), im: r * math.Sin(theta)}
	}
	return pts
}

func v29BitRate(bps int) (constellation, int, error) {
	switch bps {
	case 4800:
		return v29Points4800, 2, nil
	case 7200:
		return v29Points7200, 3, nil
	case 9600:
		return v29Points9600, 4, nil
	default:
		return nil, 0, ErrUnsupportedModem
	}
}

// v29Tx is the V.29 transmitter: absolute (not differential) QAM, one
// constellation point per symbol directly from the data bits.
type v29Tx struct {
	osc        *dds
	points     constellation
	bitsPerSym int
}

func newV29Tx(bps int) (*v29Tx, error) {
	points, bits, err := v29BitRate(bps)
	if err != nil {
		return nil, err
	}
	return &v29Tx{
		osc:        newDDS(SampleRate, v29CarrierFreq),
		points:     points,
		bitsPerSym: bits,
	}, nil
}

func (t *v29Tx) txSymbol(value int) complexF {
	return t.points[value%len(t.points)]
}

// v29Rx wires the shared receive chain to V.29's absolute-phase slicing:
// unlike V.27ter there is no differential step, the slicer's decided
// index is the data symbol.
type v29Rx struct {
	chain      *rxChain
	bitsPerSym int
}

func newV29Rx(bps int, eqTaps int, eqStep float64) (*v29Rx, error) {
	points, bits, err := v29BitRate(bps)
	if err != nil {
		return nil, err
	}
	desc := newGodardDescriptor(SampleRate, v29BaudRate, v29CarrierFreq, 0.99, 0.1, 0.02, 2, 1)
	ted := newGodardTED(desc)
	rxFilter := newComplexFIR(rrcTaps(SampleRate, v29BaudRate, 0.5, 63))
	eq := newEqualizer(equalizerConfig{Taps: eqTaps, StepSize: eqStep})
	carrier := newCarrierTracker(0.02, 0.0005)
	chain := newRxChain(ted, rxFilter, eq, carrier, points)
	return &v29Rx{chain: chain, bitsPerSym: bits}, nil
}

func (r *v29Rx) rxSample(sample complexF) (int, bool) {
	r.chain.ted.rx(sample.re)
	filtered := r.chain.rxFilter.push(sample)
	idx := r.chain.symbol(filtered)
	return idx, true
}
