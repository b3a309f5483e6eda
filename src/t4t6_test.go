package spanfax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func randomRow(t *rapid.T, widthBytes int) []byte {
	return rapid.SliceOfN(rapid.Byte(), widthBytes, widthBytes).Draw(t, "row")
}

func Test_encode1DRow_decode1DRow_roundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		widthBytes := rapid.IntRange(1, 8).Draw(t, "widthBytes")
		width := widthBytes * 8
		row := randomRow(t, widthBytes)

		w := &bitWriter{}
		encode1DRow(w, row, width)
		// No EOL is appended: decode1DRow stops once width pixels are
		// accounted for.
		encoded := w.flush()

		r := newBitReader(encoded)
		got, err := decode1DRow(r, width)
		require.NoError(t, err)
		assert.Equal(t, row, got)
	})
}

func Test_encode2DRow_decode2DRow_allWhiteRoundTrip(t *testing.T) {
	width := 64
	widthBytes := width / 8
	blank := make([]byte, widthBytes)

	w := &bitWriter{}
	encode2DRow(w, blank, blank, width)
	encoded := w.flush()

	r := newBitReader(encoded)
	got, err := decode2DRow(r, blank, width)
	require.NoError(t, err)
	assert.Equal(t, blank, got)
}

func Test_decodeRun_handlesMakeUpPlusTerminating(t *testing.T) {
	// 1728 (a make-up code) followed by a 0 terminating code, the
	// standard way to express a 1728-pixel white run.
	w := &bitWriter{}
	put1DSpan(w, 1728, t4WhiteCodes)
	encoded := w.flush()

	r := newBitReader(encoded)
	run, err := decodeRun(r, getWhiteIndex())
	require.NoError(t, err)
	assert.Equal(t, 1728, run)
}
