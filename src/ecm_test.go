package spanfax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ecmBlock_pprBitmapMarksOnlyMissingFrames(t *testing.T) {
	b := newECMBlock()
	require.NoError(t, b.storeFrame(0, []byte{0x01}))
	require.NoError(t, b.storeFrame(2, []byte{0x02}))

	bitmap := b.pprBitmap(4)
	assert.Equal(t, byte(0), bitmap[0]&(1<<0), "frame 0 was received, must not be marked missing")
	assert.NotZero(t, bitmap[0]&(1<<1), "frame 1 was never stored, must be marked missing")
	assert.Equal(t, byte(0), bitmap[0]&(1<<2), "frame 2 was received, must not be marked missing")
	assert.NotZero(t, bitmap[0]&(1<<3), "frame 3 was never stored, must be marked missing")
}

func Test_ecmBlock_completeRequiresAllFrames(t *testing.T) {
	b := newECMBlock()
	require.NoError(t, b.storeFrame(0, []byte{0x01}))
	assert.False(t, b.complete(2))
	require.NoError(t, b.storeFrame(1, []byte{0x02}))
	assert.True(t, b.complete(2))
}

func Test_ecmBlock_recordPPR_exceedsLimit(t *testing.T) {
	b := newECMBlock()
	for range 4 {
		require.NoError(t, b.recordPPR(4))
	}
	err := b.recordPPR(4)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPPRCountExceeded)
}

func Test_ecmTxQueue_framesToResendFiltersByBitmap(t *testing.T) {
	q := newECMTxQueue()
	require.NoError(t, q.push([]byte{0}))
	require.NoError(t, q.push([]byte{1}))
	require.NoError(t, q.push([]byte{2}))

	var bitmap [ECMBitmapBytes]byte
	bitmap[0] = 1 << 1 // only frame 1 missing

	resend := q.framesToResend(bitmap)
	require.Len(t, resend, 1)
	assert.Equal(t, []byte{1}, resend[0])
}

func Test_ecmBlock_storeFrameRejectsOutOfRange(t *testing.T) {
	b := newECMBlock()
	err := b.storeFrame(ECMFramesPerBlock, []byte{0})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadParameter)
}
