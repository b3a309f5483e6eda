package spanfax

/*------------------------------------------------------------------
 *
 * Purpose:	Godard band-edge symbol timing error detector (C2),
 *		after Dominique Godard, "Passband Timing Recovery in an
 *		All-Digital Modem Receiver", IEEE Trans. Comm., May 1978.
 *
 *---------------------------------------------------------------*/

import "math"

// godardDescriptor holds the band-edge filter coefficients for one
// combination of sample rate, baud rate, and carrier frequency. It is
// computed once per modem/rate pair and shared by every session using
// that rate (immutable after construction, per spec.md §5).
type godardDescriptor struct {
	lowBandEdgeCoeff  [3]float64
	highBandEdgeCoeff [3]float64
	mixedBandEdges3   float64

	coarseTrigger float64
	fineTrigger   float64
	coarseStep    int
	fineStep      int
}

// newGodardDescriptor derives the two second-order band-edge filters
// tuned to carrier +/- baud/2, with a single pole at radius alpha.
func newGodardDescriptor(sampleRate, baudRate, carrierFreq, alpha, coarseTrigger, fineTrigger float64, coarseStep, fineStep int) *godardDescriptor {
	lowEdge := 2.0 * math.Pi * (carrierFreq - baudRate/2.0) / sampleRate
	highEdge := 2.0 * math.Pi * (carrierFreq + baudRate/2.0) / sampleRate

	d := &godardDescriptor{
		coarseTrigger: coarseTrigger,
		fineTrigger:   fineTrigger,
		coarseStep:    coarseStep,
		fineStep:      fineStep,
	}
	d.lowBandEdgeCoeff[0] = 2.0 * alpha * math.Cos(lowEdge)
	d.lowBandEdgeCoeff[1] = -alpha * alpha
	d.lowBandEdgeCoeff[2] = -alpha * math.Sin(lowEdge)
	d.highBandEdgeCoeff[0] = 2.0 * alpha * math.Cos(highEdge)
	d.highBandEdgeCoeff[1] = -alpha * alpha
	d.highBandEdgeCoeff[2] = -alpha * math.Sin(highEdge)
	d.mixedBandEdges3 = -alpha * alpha * (math.Sin(highEdge)*math.Cos(lowEdge) - math.Sin(lowEdge)*math.Cos(highEdge))
	return d
}

// godardTED is the per-receiver running state of the timing error
// detector: two second-order IIR band-edge filters, a DC-blocking
// high-pass on the cross-correlation, and the running baud-phase
// integrator.
type godardTED struct {
	desc *godardDescriptor

	lowBandEdge  [2]float64
	highBandEdge [2]float64
	dcFilter     [2]float64

	baudPhase               float64
	totalBaudTimingCorrection int
}

func newGodardTED(desc *godardDescriptor) *godardTED {
	return &godardTED{desc: desc}
}

// rx runs the two band-edge filters for one incoming sample. Called once
// per sample, at the modem's oversampled rate (typically 2 samples/baud).
func (t *godardTED) rx(sample float64) {
	d := t.desc

	low := t.lowBandEdge[0]*d.lowBandEdgeCoeff[0] + t.lowBandEdge[1]*d.lowBandEdgeCoeff[1] + sample
	t.lowBandEdge[1] = t.lowBandEdge[0]
	t.lowBandEdge[0] = low

	high := t.highBandEdge[0]*d.highBandEdgeCoeff[0] + t.highBandEdge[1]*d.highBandEdgeCoeff[1] + sample
	t.highBandEdge[1] = t.highBandEdge[0]
	t.highBandEdge[0] = high
}

// perBaud computes the cross-correlated, DC-blocked, integrated timing
// error once per baud and returns the fractional-sample correction to
// apply to the receive interpolator: 0 if the integrator is inside both
// triggers, +-fineStep if past fineTrigger, +-coarseStep if past
// coarseTrigger, signed by the integrator's sign.
func (t *godardTED) perBaud() int {
	d := t.desc

	v := t.lowBandEdge[1]*t.highBandEdge[0]*d.lowBandEdgeCoeff[2] -
		t.lowBandEdge[0]*t.highBandEdge[1]*d.highBandEdgeCoeff[2] +
		t.lowBandEdge[1]*t.highBandEdge[1]*d.mixedBandEdges3

	p := v - t.dcFilter[1]
	t.dcFilter[1] = t.dcFilter[0]
	t.dcFilter[0] = v

	t.baudPhase -= p
	mag := math.Abs(t.baudPhase)

	correction := 0
	if mag > d.fineTrigger {
		step := d.fineStep
		if mag > d.coarseTrigger {
			step = d.coarseStep
		}
		if t.baudPhase < 0 {
			step = -step
		}
		correction = step
		t.totalBaudTimingCorrection += step
	}
	return correction
}

// correction returns the accumulated timing correction applied so far.
func (t *godardTED) correction() int {
	return t.totalBaudTimingCorrection
}
