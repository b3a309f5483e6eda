package spanfax

/*------------------------------------------------------------------
 *
 * Purpose:	Supervisory tone generation and detection (C3): CED,
 *		CNG, ANSam, and the V.21 FSK channel used for HDLC
 *		signalling. Detection uses a block Goertzel power
 *		estimator (reset after each block), the standard technique the original DTMF/
 *		super-tone receiver is built on.
 *
 *---------------------------------------------------------------*/

import "math"

// Nominal supervisory tone parameters (spec.md GLOSSARY, §4.9).
const (
	cedFreq         = 2100.0
	cedDuration     = 3.0 * SampleRate
	cngFreq         = 1100.0
	cngOnDuration   = 0.5 * SampleRate
	cngOffDuration  = 3.0 * SampleRate
	ansamModFreq    = 15.0
	ansamPhaseFlip  = 0.45 * SampleRate // 450ms phase reversal interval
	v21MarkFreq     = 1850.0
	v21SpaceFreq    = 1650.0
	v21ChanBaudRate = 300.0
)

// toneGenerator produces one supervisory tone (CED, CNG, or the
// modulation-free part of ANSam) as a stream of float64 PCM samples.
type toneGenerator struct {
	osc      *dds
	level    float64
	ansam    bool
	modPhase float64
	modStep  float64
	flipped  bool
	sample   int
}

func newCEDGenerator(level float64) *toneGenerator {
	return &toneGenerator{osc: newDDS(SampleRate, cedFreq), level: level}
}

func newCNGGenerator(level float64) *toneGenerator {
	return &toneGenerator{osc: newDDS(SampleRate, cngFreq), level: level}
}

func newANSamGenerator(level float64) *toneGenerator {
	return &toneGenerator{
		osc:     newDDS(SampleRate, cedFreq),
		level:   level,
		ansam:   true,
		modStep: 2.0 * math.Pi * ansamModFreq / SampleRate,
	}
}

// next produces the next PCM sample of the tone.
func (g *toneGenerator) next() float64 {
	c := g.osc.next()
	out := c.re * g.level

	if g.ansam {
		mod := 1.0 + 0.25*math.Sin(g.modPhase) // about +1.9/-2.5dB AM envelope
		g.modPhase += g.modStep
		out *= mod

		g.sample++
		if g.sample >= ansamPhaseFlip {
			g.sample = 0
			g.flipped = !g.flipped
			g.osc.advancePhase(0.5) // 180 degree phase reversal
		}
	}
	return out
}

// goertzel is a single-bin block power estimator, reset after each
// block of blockSize samples, used for tone
// detection (CED/CNG/ANSam recognition and V.21 channel-seize energy).
type goertzel struct {
	coeff   float64
	q1, q2  float64
	samples int
	block   int
}

// newGoertzel builds a detector tuned to freq, evaluated over a block of
// blockSize samples.
func newGoertzel(freq float64, blockSize int) *goertzel {
	k := 0.5 + float64(blockSize)*freq/SampleRate
	omega := 2.0 * math.Pi * math.Floor(k) / float64(blockSize)
	return &goertzel{coeff: 2.0 * math.Cos(omega), block: blockSize}
}

// feed adds one sample; once blockSize samples have been accumulated it
// returns (power, true); otherwise (0, false).
func (g *goertzel) feed(sample float64) (float64, bool) {
	q0 := g.coeff*g.q1 - g.q2 + sample
	g.q2 = g.q1
	g.q1 = q0
	g.samples++
	if g.samples < g.block {
		return 0, false
	}
	power := g.q1*g.q1 + g.q2*g.q2 - g.coeff*g.q1*g.q2
	g.q1, g.q2, g.samples = 0, 0, 0
	return power, true
}

// toneDetector wraps a goertzel bin with the same on/off persistence
// debouncing used by the AGC (spec.md §4.1's pattern, reused here per
// spec.md §4.9).
type toneDetector struct {
	g                *goertzel
	threshold        float64
	onPersistence    int
	offPersistence   int
	onCount          int
	offCount         int
	present          bool
}

func newToneDetector(freq, threshold float64, blockSize, onPersistence, offPersistence int) *toneDetector {
	return &toneDetector{
		g:              newGoertzel(freq, blockSize),
		threshold:      threshold,
		onPersistence:  onPersistence,
		offPersistence: offPersistence,
	}
}

// rx feeds one sample and returns the debounced present/absent state.
func (d *toneDetector) rx(sample float64) bool {
	power, ready := d.g.feed(sample)
	if !ready {
		return d.present
	}
	if power >= d.threshold {
		d.offCount = 0
		if d.onCount < d.onPersistence {
			d.onCount++
			if d.onCount == d.onPersistence {
				d.present = true
			}
		}
	} else {
		d.onCount = 0
		if d.offCount < d.offPersistence {
			d.offCount++
			if d.offCount == d.offPersistence {
				d.present = false
			}
		}
	}
	return d.present
}
