package spanfax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_godardTED_silenceNeverTriggersCorrection(t *testing.T) {
	desc := newGodardDescriptor(SampleRate, v29BaudRate, v29CarrierFreq, 0.99, 10.0, 5.0, 2, 1)
	ted := newGodardTED(desc)

	for i := 0; i < 2000; i++ {
		ted.rx(0)
		if i%4 == 0 {
			c := ted.perBaud()
			assert.Zero(t, c, "an all-zero input carries no timing information and must never trigger a correction")
		}
	}
	assert.Equal(t, 0, ted.correction())
}

func Test_complexFIR_passesThroughIdentityKernel(t *testing.T) {
	taps := make([]float64, 5)
	taps[2] = 1.0 // centre tap = 1, all others 0: identity with 2-sample delay
	fir := newComplexFIR(taps)

	input := []complexF{{re: 1}, {re: 2}, {re: 3}, {re: 4}, {re: 5}}
	var output []complexF
	for _, s := range input {
		output = append(output, fir.push(s))
	}

	assert.InDelta(t, 1.0, output[2].re, 1e-9)
	assert.InDelta(t, 2.0, output[3].re, 1e-9)
	assert.InDelta(t, 3.0, output[4].re, 1e-9)
}

func Test_dds_producesUnitMagnitudeSamples(t *testing.T) {
	d := newDDS(SampleRate, 1800.0)
	for range 100 {
		c := d.next()
		mag := c.abs()
		assert.InDelta(t, 1.0, mag, 0.02)
	}
}
