package spanfax

/*------------------------------------------------------------------
 *
 * Purpose:	Modem orchestration (C12): selects and arms the correct
 *		tx/rx modem pair for the FSM's current state, enforces the
 *		half-duplex invariant (never transmit and expect to
 *		receive on the same call leg at once), the pre-carrier
 *		silence gap, and preamble-flag counts. sendStepComplete
 *		returns the line to idle once a frame has gone fully out;
 *		it does not notify the FSM.
 *
 *---------------------------------------------------------------*/

// silenceGapSamples is the 75ms minimum silence spec.md §4.3 requires
// before a new transmission begins.
const silenceGapSamples = 75 * SampleRate / 1000

// txDirection is which half of the duplex pair currently owns the line,
// enforcing spec.md §5's half-duplex invariant: the orchestrator never
// arms both a transmitter and an expectation of receive data at once.
type txDirection int

const (
	dirIdle txDirection = iota
	dirTransmitting
	dirReceiving
)

// modemHandlerSet bundles one modem's tx and rx halves behind a uniform
// interface so the orchestrator can swap modems purely by looking at
// the FSM's pendingModem field.
type modemHandlerSet struct {
	modem modemType

	v21Tx *dds // V.21 is FSK: just a two-tone oscillator, mark/space
	v21Rx *toneDetector

	v27Tx *v27terTx
	v27Rx *v27terRx
	v29Tx *v29Tx
	v29Rx *v29Rx
	v17Tx *v17Tx
	v17Rx *v17Rx
}

// orchestrator drives one Session's modem selection across phases,
// built around the tagged-variant modemHandlerSet rather than a shared
// Modem interface: spec.md §9's design notes call for matching over a
// small closed set of named modulations instead of dynamic dispatch.
type orchestrator struct {
	fsm       *t30FSM
	hdlcRx    *hdlcReceiver
	direction txDirection

	silenceRemaining int
	preambleFlagsLeft int

	active modemHandlerSet
}

func newOrchestrator(fsm *t30FSM, hdlcRx *hdlcReceiver) *orchestrator {
	return &orchestrator{fsm: fsm, hdlcRx: hdlcRx}
}

// armModem (re)builds the active modem handler set for modem/bitRate,
// called whenever the FSM's pendingModem changes.
func (o *orchestrator) armModem(modem modemType, bitRate int) error {
	o.active = modemHandlerSet{modem: modem}
	switch modem {
	case modemV21:
		o.active.v21Tx = newDDS(SampleRate, v21MarkFreq)
		o.active.v21Rx = newToneDetector(v21MarkFreq, 0.01, 8, 2, 2)
	case modemV27ter:
		tx, err := newV27terTx(bitRate)
		if err != nil {
			return err
		}
		rx, err := newV27terRx(bitRate, 16, 0.01)
		if err != nil {
			return err
		}
		o.active.v27Tx, o.active.v27Rx = tx, rx
	case modemV29:
		tx, err := newV29Tx(bitRate)
		if err != nil {
			return err
		}
		rx, err := newV29Rx(bitRate, 16, 0.01)
		if err != nil {
			return err
		}
		o.active.v29Tx, o.active.v29Rx = tx, rx
	case modemV17:
		tx, err := newV17Tx(bitRate)
		if err != nil {
			return err
		}
		rx, err := newV17Rx(bitRate, 32, 0.01)
		if err != nil {
			return err
		}
		o.active.v17Tx, o.active.v17Rx = tx, rx
	}
	o.preambleFlagsLeft = hdlcPreambleFlags(modem, bitRate)
	return nil
}

// beginTransmit arms the silence gap and switches the direction flag;
// the caller must not feed Rx-chain samples until the gap plus preamble
// have elapsed, matching the half-duplex invariant.
func (o *orchestrator) beginTransmit() {
	o.direction = dirTransmitting
	o.silenceRemaining = silenceGapSamples
}

// beginReceive switches the direction flag the other way, for the side
// waiting on a response.
func (o *orchestrator) beginReceive() {
	o.direction = dirReceiving
}

// feedRxBit is called once per recovered data bit (from whichever
// active modem's receiver is producing bits) and forwards it to the
// HDLC deframer, which in turn drives the FSM via its onFrame callback.
func (o *orchestrator) feedRxBit(bit bool) {
	o.hdlcRx.rxBit(bit)
}

// sendFrame appends the FCS to one HDLC frame body, bit-stuffs it, and
// returns the full bitstream to play out, preamble and closing flag
// included. It hands nothing to a transmitter; the caller is
// responsible for pacing the bits out at the modem's baud rate.
func (o *orchestrator) sendFrame(body []byte) []bool {
	withFCS := hdlcFrameWithFCS(body)
	return hdlcBuildFrame(withFCS, o.preambleFlagsLeft, 1)
}

// sendStepComplete is called once the line has gone fully idle after a
// transmission (all bits played out plus the trailing silence). It only
// sets the direction back to idle; the FSM is not called.
func (o *orchestrator) sendStepComplete() {
	o.direction = dirIdle
}
