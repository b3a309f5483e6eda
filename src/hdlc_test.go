package spanfax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func Test_fcsCalc_roundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		body := rapid.SliceOfN(rapid.Byte(), 1, 64).Draw(t, "body")
		framed := hdlcFrameWithFCS(body)
		assert.True(t, hdlcCheckFCS(framed), "a freshly FCS'd frame must check out")
	})
}

func Test_fcsCalc_detectsCorruption(t *testing.T) {
	body := []byte{0x01, 0x02, 0x03, 0x04}
	framed := hdlcFrameWithFCS(body)
	framed[1] ^= 0xff
	assert.False(t, hdlcCheckFCS(framed), "a corrupted frame must not check out")
}

func Test_hdlcBuildFrame_destuffsCleanly(t *testing.T) {
	body := hdlcFrameWithFCS([]byte{0xaa, 0xff, 0xff, 0xff, 0x00})
	bits := hdlcBuildFrame(body, 4, 1)

	var got [][]byte
	var gotOK []bool
	rx := newHDLCReceiver(func(frame []byte, crcOK bool) {
		got = append(got, frame)
		gotOK = append(gotOK, crcOK)
	})
	for _, b := range bits {
		rx.rxBit(b)
	}

	require.Len(t, got, 1)
	assert.Equal(t, []byte{0xaa, 0xff, 0xff, 0xff, 0x00}, got[0])
	assert.True(t, gotOK[0])
}

func Test_hdlcPreambleFlags_v21IsFixed(t *testing.T) {
	assert.Equal(t, 32, hdlcPreambleFlags(modemV21, 300))
}
