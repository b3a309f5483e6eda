package spanfax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_timerBank_armAndExpire(t *testing.T) {
	bank := newTimerBank()
	bank.armFor(timerT2, 100)
	assert.True(t, bank.running(timerT2))

	expired := bank.tick(99)
	assert.Empty(t, expired)
	assert.True(t, bank.running(timerT2))

	expired = bank.tick(1)
	assert.Equal(t, []timerID{timerT2}, expired)
	assert.False(t, bank.running(timerT2))
}

func Test_timerBank_stopPreventsExpiry(t *testing.T) {
	bank := newTimerBank()
	bank.arm(timerT1)
	bank.stop(timerT1)
	expired := bank.tick(durationT1 + 1)
	assert.Empty(t, expired)
}

func Test_timerBank_monotonic(t *testing.T) {
	bank := newTimerBank()
	bank.armFor(timerT4, 1000)
	prevRemaining := bank.remaining[timerT4]
	for range 10 {
		bank.tick(10)
		assert.Less(t, bank.remaining[timerT4], prevRemaining+1)
		prevRemaining = bank.remaining[timerT4]
	}
}
