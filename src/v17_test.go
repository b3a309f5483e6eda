package spanfax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_v17ConvEncoder_isDeterministic(t *testing.T) {
	inputs := []int{0, 1, 2, 3, 1, 0, 2, 3}

	enc1 := &v17ConvEncoder{}
	enc2 := &v17ConvEncoder{}

	for _, in := range inputs {
		out1 := enc1.encode(in)
		out2 := enc2.encode(in)
		assert.Equal(t, out1, out2, "two fresh encoders fed the same input must produce the same coded output")
		assert.Equal(t, enc1.state, enc2.state)
	}
}

// Test_v17Viterbi_zeroMetricOnCleanSignal feeds the encoder's own output
// (no noise) into the Viterbi decoder and checks that, once the trellis
// has had time to converge, the surviving best-state path carries zero
// accumulated metric -- i.e. some path perfectly explains every received
// symbol, which is the property a noiseless trellis must have.
func Test_v17Viterbi_zeroMetricOnCleanSignal(t *testing.T) {
	points, _, err := v17Points(7200)
	require.NoError(t, err)

	enc := &v17ConvEncoder{}
	dec := newV17Viterbi(points)

	for range v17TraceBackDepth * 2 {
		coded := enc.encode(0)
		symbol := points[coded%len(points)]
		dec.step(symbol)
	}

	best := dec.states[0].metric
	for _, s := range dec.states {
		if s.metric < best {
			best = s.metric
		}
	}
	assert.InDelta(t, 0.0, best, 1e-9, "a noiseless, all-zero-input trellis must have a zero-metric survivor")
}

func Test_v17Viterbi_emitsAfterTraceBackDepth(t *testing.T) {
	points, _, err := v17Points(9600)
	require.NoError(t, err)

	enc := &v17ConvEncoder{}
	dec := newV17Viterbi(points)

	emitted := 0
	for range v17TraceBackDepth + 4 {
		coded := enc.encode(0)
		symbol := points[coded%len(points)]
		if _, ok := dec.step(symbol); ok {
			emitted++
		}
	}
	assert.Greater(t, emitted, 0, "decoder must start emitting once the trace-back buffer fills")
}
