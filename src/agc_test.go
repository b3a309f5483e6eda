package spanfax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_AGCConfig_validate_rejectsInvertedThresholds(t *testing.T) {
	cfg := AGCConfig{SignalOnPowerThresh: 0.1, SignalOffPowerThresh: 0.2}
	_, err := newAGC(cfg, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOnBelowOffThresh)
}

func Test_agc_debouncesOnAndOff(t *testing.T) {
	cfg := AGCConfig{
		SignalTargetPower:    1.0,
		SignalOnPowerThresh:  0.5,
		SignalOffPowerThresh: 0.1,
		SignalOnPersistence:  2,
		SignalOffPersistence: 2,
	}
	a, err := newAGC(cfg, false)
	require.NoError(t, err)

	// Alternating +-1 rather than constant DC, so the one-pole DC blocker
	// doesn't filter the "signal" down to nothing before energy is measured.
	loud := make([]float64, agcSamplesPerChunk*3)
	for i := range loud {
		if i%2 == 0 {
			loud[i] = 1.0
		} else {
			loud[i] = -1.0
		}
	}
	present := a.rx(nil, loud)
	assert.True(t, present, "loud signal sustained past on-persistence should be declared present")

	quiet := make([]float64, agcSamplesPerChunk*3)
	present = a.rx(nil, quiet)
	assert.False(t, present, "silence sustained past off-persistence should clear presence")
}

func Test_agc_rxIsIdempotentOnSilence(t *testing.T) {
	cfg := AGCConfig{
		SignalTargetPower:    1.0,
		SignalOnPowerThresh:  0.5,
		SignalOffPowerThresh: 0.1,
		SignalOnPersistence:  1,
		SignalOffPersistence: 1,
	}
	a, err := newAGC(cfg, true)
	require.NoError(t, err)

	silence := make([]float64, agcSamplesPerChunk)
	out := make([]float64, agcSamplesPerChunk)
	a.rx(out, silence)
	for _, v := range out {
		assert.Zero(t, v)
	}
}
