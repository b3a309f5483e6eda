package spanfax

/*------------------------------------------------------------------
 *
 * Purpose:	DC blocker + AGC (component C1) and a diagnostic power
 *		meter (component C14). Ported from the chunked-energy
 *		persistence-counter scheme of the one-pole DC blocker
 *		feeding an on/off debounced gain control.
 *
 *---------------------------------------------------------------*/

import (
	"math"

	"github.com/eclesh/welford"
)

// dcBlockCoeff is 1 - 2^-7, the one-pole IIR coefficient of spec.md §4.1.
const dcBlockCoeff = 1.0 - 1.0/128.0

// agcSamplesPerChunk is 40 samples (5ms at 8kHz), the energy measurement
// window of spec.md §4.1.
const agcSamplesPerChunk = 40

// AGCConfig is the rejectable descriptor of spec.md §4.1. All power
// thresholds are expressed as energy-per-chunk (already converted from
// dBm0 by the caller), matching the original agcf_descriptor_t.
type AGCConfig struct {
	SignalTargetPower    float64
	SignalOnPowerThresh  float64
	SignalOffPowerThresh float64
	SignalOnPersistence  int
	SignalOffPersistence int
}

// validate enforces the one failure mode named in spec.md §4.1: an
// on-threshold below the off-threshold makes debouncing impossible.
func (c AGCConfig) validate() error {
	if c.SignalOnPowerThresh < c.SignalOffPowerThresh {
		return newConfigError("SignalOnPowerThresh", ErrOnBelowOffThresh, c.SignalOnPowerThresh)
	}
	return nil
}

// agc implements the DC blocker + automatic gain control pipeline stage
// shared by every receive-direction modem.
type agc struct {
	cfg AGCConfig

	dcBlockX float64
	dcBlockY float64

	currentEnergy  float64
	currentSamples int

	onPersistence  int
	offPersistence int

	signalPresent bool
	gain          float64

	adapt  bool
	detect bool

	lastPower float64

	meter *welford.Stats
}

func newAGC(cfg AGCConfig, adapt bool) (*agc, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &agc{
		cfg:    cfg,
		gain:   1.0,
		adapt:  adapt,
		detect: true,
		meter:  welford.New(),
	}, nil
}

// rx runs the DC blocker + energy accumulation over a block of samples
// and, when out is not nil, writes each input sample times the current
// gain to out; in is not modified. It returns whether a signal is currently declared
// present, matching the bool return of agcf_rx in the original.
func (a *agc) rx(out, in []float64) bool {
	for i, sample := range in {
		sampleNoDC := sample - a.dcBlockX + dcBlockCoeff*a.dcBlockY
		a.dcBlockX = sample
		a.dcBlockY = sampleNoDC

		a.currentEnergy += sampleNoDC * sampleNoDC
		a.currentSamples++

		if a.currentSamples >= agcSamplesPerChunk {
			a.lastPower = a.currentEnergy
			a.meter.Add(a.lastPower)
			a.debounce()
			a.currentEnergy = 0
			a.currentSamples = 0
		}

		if out != nil {
			out[i] = sample * a.gain
		}
	}
	return a.signalPresent
}

func (a *agc) debounce() {
	if a.lastPower >= a.cfg.SignalOnPowerThresh {
		a.offPersistence = 0
		if a.onPersistence < a.cfg.SignalOnPersistence {
			a.onPersistence++
			if a.onPersistence == a.cfg.SignalOnPersistence {
				a.signalPresent = true
			}
		}
	} else {
		a.onPersistence = 0
		if a.lastPower <= a.cfg.SignalOffPowerThresh {
			if a.offPersistence < a.cfg.SignalOffPersistence {
				a.offPersistence++
				if a.offPersistence == a.cfg.SignalOffPersistence {
					a.signalPresent = false
				}
			}
		} else {
			a.offPersistence = 0
		}
	}

	if a.signalPresent && a.adapt {
		if a.lastPower != 0 {
			a.gain = math.Sqrt(a.cfg.SignalTargetPower / a.lastPower)
		} else {
			a.gain = 1.0
		}
	}
}

// meanPower reports the running mean chunk energy tracked by welford, a
// cheap diagnostic separate from the debounced on/off decision above.
func (a *agc) meanPower() float64 {
	return a.meter.Mean()
}
