package spanfax

/*------------------------------------------------------------------
 *
 * Purpose:	The T.30 protocol state machine (C11): phases A through
 *		E, DIS/DCS negotiation, TCF, the post-page handshake
 *		(MPS/EOM/EOP/PPS variants, MCF/RTN/RTP/PPR/PIP/PIN),
 *		retries, and ECM block/frame accounting. This is the
 *		orchestrating brain; actual modem/tone work is delegated
 *		to the orchestrator (orchestrator.go) via callbacks.
 *
 *---------------------------------------------------------------*/

// t30Phase names the five gross phases of a T.30 call, per spec.md §3.
type t30Phase int

const (
	phaseA t30Phase = iota // call setup: CNG/CED, silence before signalling
	phaseB                 // capability negotiation: DIS/DCS/TCF
	phaseC                 // in-page image transfer
	phaseD                 // post-page / post-document handshake
	phaseE                 // call release
)

// t30State enumerates the protocol states the FSM cycles through. Naming
// follows the original's state identifiers, translated to Go constants.
type t30State int

const (
	stateIdle t30State = iota
	stateAnsweringCED
	stateCallingCNG
	stateWaitDIS
	stateSendDIS
	stateSendDCS
	stateWaitDCSResponse
	stateSendTCF
	stateWaitTCFResult
	stateRecvTCF
	stateSendCFR
	stateSendFTT
	stateInPageTX
	stateInPageRX
	stateWaitPostPageResponse
	stateSendPostPageResponse
	stateSendDCN
	stateWaitDCN
	stateReleased
)

const maxTrainingRetries = 3
const maxPPRRetries = 4

// t30Config is the per-session descriptor controlling negotiation and
// identification, the subset of config.go's session descriptor the FSM
// itself consumes directly.
type t30Config struct {
	Role       Role
	LocalIdent string
	Local      disFrame
	ECMEnabled bool
}

// t30FSM is the protocol state machine. It owns no modem or audio state
// directly: the orchestrator drives it by calling frame-received/
// timer-fired/training-result methods, and reads back what to do next
// (which modem to arm, what frame to send) via its pendingTx/pendingModem/
// pendingBitRate fields after each call.
type t30FSM struct {
	cfg      t30Config
	timers   *timerBank
	callbacks PhaseCallbacks

	phase t30Phase
	state t30State

	remote   disFrame
	dcs      dcsFrame
	remoteID string

	trainingAttempt int
	fallbackIdx     int

	ecmRx    *ecmBlock
	ecmTx    *ecmTxQueue
	pageNum  int
	lastDocEvent DocumentEvent

	status Status

	// pendingTx, when non-nil, is the next HDLC frame the orchestrator
	// should transmit; the FSM clears it once handed off.
	pendingTx []byte
	// pendingModem/pendingBitRate tell the orchestrator which
	// transmitter/receiver to arm next.
	pendingModem   modemType
	pendingBitRate int
	done           bool
}

// fallbackOrder lists modem/rate pairs from fastest to slowest, used when
// training repeatedly fails (spec.md's literal scenario 4).
var fallbackOrder = []struct {
	modem modemType
	rate  int
}{
	{modemV17, 14400},
	{modemV29, 9600},
	{modemV27ter, 4800},
	{modemV27ter, 2400},
}

func newT30FSM(cfg t30Config, callbacks PhaseCallbacks) *t30FSM {
	f := &t30FSM{
		cfg:       cfg,
		timers:    newTimerBank(),
		callbacks: callbacks,
		ecmRx:     newECMBlock(),
		ecmTx:     newECMTxQueue(),
	}
	if cfg.Role == RoleCalling {
		f.state = stateCallingCNG
		f.timers.arm(timerT0)
	} else {
		f.state = stateAnsweringCED
		f.timers.arm(timerT0)
	}
	return f
}

// tick advances the FSM's timers by n samples (the orchestrator calls
// this once per Rx/Tx buffer) and handles any that expired.
func (f *t30FSM) tick(n int) {
	for _, id := range f.timers.tick(n) {
		f.onTimerExpired(id)
	}
}

func (f *t30FSM) onTimerExpired(id timerID) {
	switch id {
	case timerT0:
		f.release(StatusT0Timeout)
	case timerT1:
		f.release(StatusT1Timeout)
	case timerT2:
		f.release(StatusT2Timeout)
	case timerT3:
		f.release(StatusT3Timeout)
	case timerT4:
		f.retryTraining()
	case timerT5:
		f.release(StatusT5Timeout)
	}
}

// frameReceived delivers one destuffed, FCS-checked HDLC frame to the
// FSM. crcOK false frames are only meaningful to ECM page-data counting;
// everything else treats a bad frame as "nothing received" and leaves
// the relevant timer running for the sender to retry.
func (f *t30FSM) frameReceived(frame []byte, crcOK bool) {
	if f.callbacks.RealTimeFrame != nil {
		other := RoleAnswering
		if f.cfg.Role == RoleAnswering {
			other = RoleCalling
		}
		f.callbacks.RealTimeFrame(other, frame)
	}
	if !crcOK || len(frame) == 0 {
		return
	}

	switch f.state {
	case stateWaitDIS, stateCallingCNG:
		f.handleDIS(frame)
	case stateWaitDCSResponse:
		f.handlePhaseBResponse(frame)
	case stateWaitPostPageResponse:
		f.handlePostPageResponse(frame)
	case stateWaitDCN:
		if fcf(frame[0]) == fcfDCN {
			f.release(StatusOK)
		}
	}
}

func (f *t30FSM) handleDIS(frame []byte) {
	dis, err := decodeDIS(frame[1:])
	if err != nil {
		f.release(StatusBadParameter)
		return
	}
	f.remote = dis
	f.timers.stop(timerT0)
	f.timers.stop(timerT1)

	dcs, err := negotiateDCS(f.cfg.Local, dis)
	if err != nil {
		f.status = StatusUnsupportedModems
		if f.callbacks.PhaseB != nil {
			f.callbacks.PhaseB(f.status)
		}
		f.release(f.status)
		return
	}
	dcs.ECM = dcs.ECM && f.cfg.ECMEnabled
	f.dcs = dcs
	if f.callbacks.PhaseB != nil {
		f.callbacks.PhaseB(StatusOK)
	}

	f.pendingTx = encodeDCS(dcs)
	f.state = stateSendDCS
	f.pendingModem = modemV21
}

// dcsSent is called by the orchestrator once the DCS frame has gone out;
// the FSM moves into TCF training.
func (f *t30FSM) dcsSent() {
	f.state = stateSendTCF
	f.pendingModem = f.dcs.Modem
	f.pendingBitRate = f.dcs.BitRate
	f.timers.arm(timerT4)
}

// trainingResult is called by the orchestrator once TCF has been sent
// and the receiver's CFR/FTT response (or timeout) is known locally in
// a loopback test, or once a TCF block has actually been received.
func (f *t30FSM) trainingResult(ok bool) {
	f.timers.stop(timerT4)
	if ok {
		f.pendingTx = []byte{byte(fcfCFR)}
		f.state = stateSendCFR
		return
	}
	f.retryTraining()
}

func (f *t30FSM) retryTraining() {
	f.trainingAttempt++
	if f.trainingAttempt > maxTrainingRetries {
		f.release(StatusFailedToTrain)
		return
	}
	f.fallbackIdx++
	if f.fallbackIdx >= len(fallbackOrder) {
		f.release(StatusFailedToTrain)
		return
	}
	choice := fallbackOrder[f.fallbackIdx]
	f.dcs.Modem = choice.modem
	f.dcs.BitRate = choice.rate
	f.pendingTx = encodeDCS(f.dcs)
	f.state = stateSendDCS
}

func (f *t30FSM) handlePhaseBResponse(frame []byte) {
	switch fcf(frame[0]) {
	case fcfCFR:
		f.state = stateInPageTX
		f.pendingModem = f.dcs.Modem
		f.pendingBitRate = f.dcs.BitRate
		f.timers.stop(timerT2)
	case fcfFTT:
		f.retryTraining()
	default:
		f.release(StatusUnexpectedFrame)
	}
}

// pageComplete is called by the orchestrator once a full page has been
// encoded and transmitted (or received and decoded); it drives the post-
// page handshake.
func (f *t30FSM) pageComplete(lastPage bool) {
	code := IfThenElse(lastPage, fcfEOP, fcfMPS)
	if f.dcs.ECM {
		code = fcfPPS
	}
	f.pendingTx = []byte{byte(code)}
	f.pendingModem = modemV21
	f.state = stateWaitPostPageResponse
	f.timers.arm(timerT2)
	if f.callbacks.Document != nil {
		f.callbacks.Document(DocumentPageEnded)
	}
}

func (f *t30FSM) handlePostPageResponse(frame []byte) {
	f.timers.stop(timerT2)
	result := fcf(frame[0])
	switch result {
	case fcfMCF:
		f.status = StatusOK
	case fcfRTN, fcfPIN:
		f.status = StatusCarrierLostDuringPage
	case fcfRTP, fcfPIP:
		f.status = StatusOK
	case fcfPPR:
		if err := f.ecmRx.recordPPR(maxPPRRetries); err != nil {
			f.release(StatusRetryCountExceeded)
			return
		}
		f.status = StatusOK
	default:
		f.status = StatusUnexpectedFrame
	}
	if f.callbacks.PhaseD != nil {
		f.callbacks.PhaseD(f.status)
	}

	f.pendingTx = []byte{byte(fcfDCN)}
	f.pendingModem = modemV21
	f.state = stateSendDCN
}

// dcnSent is called by the orchestrator once the final DCN frame has
// gone out. DCN is unacknowledged: the FSM enters stateWaitDCN and then
// ends the call at once through allDone, with no waiting period.
func (f *t30FSM) dcnSent() {
	f.state = stateWaitDCN
	f.allDone(f.status)
}

// allDone is called by the orchestrator once DCN has been sent (caller)
// or received (answerer), ending the call in phase E.
func (f *t30FSM) allDone(finalStatus Status) {
	if f.callbacks.Document != nil {
		f.callbacks.Document(DocumentAllDone)
	}
	f.release(finalStatus)
}

func (f *t30FSM) release(status Status) {
	if f.done {
		return
	}
	f.status = status
	f.state = stateReleased
	f.done = true
	for id := timerID(0); id < numTimers; id++ {
		f.timers.stop(id)
	}
	if f.callbacks.PhaseE != nil {
		f.callbacks.PhaseE(status)
	}
}

// Done reports whether the call has reached phase E.
func (f *t30FSM) Done() bool { return f.done }

// FinalStatus returns the terminal status once Done() is true.
func (f *t30FSM) FinalStatus() Status { return f.status }
