package spanfax

/*------------------------------------------------------------------
 *
 * Purpose:	T0-T5 countdown timers, expressed in audio-sample units
 *		(1 unit = 125us at 8kHz). Decremented by the sample count
 *		passed to Rx/Tx; on underflow the owning timer fires once.
 *
 *---------------------------------------------------------------*/

// timerID names the six timers T0-T5 this core uses; T6-T8 are not
// represented.
type timerID int

const (
	timerT0 timerID = iota // answer/ident patience, ~35s
	timerT1                // first-frame patience in phase B, ~35s
	timerT2                // command-response HDLC wait, ~6s
	timerT3                // procedural interrupt ack, ~10s
	timerT4                // inter-retry wait, ~3s
	timerT5                // ECM overall patience, ~60s
	numTimers
)

// Nominal durations in samples at SampleRate = 8000Hz. The ± tolerances
// named in spec.md §4.6/§3 are the sender/receiver's own jitter budget,
// not something this core needs to model explicitly: we arm each timer at
// its nominal value and let the FSM's own retry counters absorb the
// tolerance.
const (
	durationT0 = 35 * SampleRate
	durationT1 = 35 * SampleRate
	durationT2 = 6 * SampleRate
	durationT3 = 10 * SampleRate
	durationT4 = 3 * SampleRate
	durationT5 = 60 * SampleRate
)

var timerNominal = [numTimers]int{
	timerT0: durationT0,
	timerT1: durationT1,
	timerT2: durationT2,
	timerT3: durationT3,
	timerT4: durationT4,
	timerT5: durationT5,
}

// timerBank owns the six countdown counters for one session. Only
// counters whose armed flag is set decrement; a timer is stopped when
// its armed flag is clear, whatever its remaining count.
type timerBank struct {
	remaining [numTimers]int
	armed     [numTimers]bool
}

func newTimerBank() *timerBank {
	return &timerBank{}
}

// arm starts (or restarts) a timer at its nominal duration.
func (t *timerBank) arm(id timerID) {
	t.remaining[id] = timerNominal[id]
	t.armed[id] = true
}

// armFor starts a timer at an explicit duration, used for T2/T4 "B"
// variants that run shorter after the first retry.
func (t *timerBank) armFor(id timerID, samples int) {
	t.remaining[id] = samples
	t.armed[id] = true
}

// stop disarms a timer without it having fired.
func (t *timerBank) stop(id timerID) {
	t.armed[id] = false
}

// tick decrements every armed timer by n samples and returns the set of
// timers that underflowed this call. Each timer fires at most once per
// tick even if n is large enough to underflow it multiple "times over" -
// that distinction is meaningless for a countdown, so we just disarm it.
func (t *timerBank) tick(n int) []timerID {
	var expired []timerID
	for id := timerID(0); id < numTimers; id++ {
		if !t.armed[id] {
			continue
		}
		t.remaining[id] -= n
		if t.remaining[id] <= 0 {
			t.armed[id] = false
			expired = append(expired, id)
		}
	}
	return expired
}

// running reports whether the given timer is currently armed.
func (t *timerBank) running(id timerID) bool {
	return t.armed[id]
}
