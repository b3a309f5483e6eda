package spanfax

/*------------------------------------------------------------------
 *
 * Purpose:	Session: the single-threaded cooperative entry point
 *		(spec.md §5) gluing the T.30 FSM, the active modem pair,
 *		HDLC framing, and the T.4/T.6 codec together behind two
 *		calls: Rx (PCM in) and Tx (PCM out).
 *
 *---------------------------------------------------------------*/

import (
	"io"

	"github.com/charmbracelet/log"
)

// SessionConfig is everything needed to start a fax call in either
// direction; it is the in-memory form of the YAML descriptor config.go
// loads.
type SessionConfig struct {
	Role       Role
	LocalIdent string
	Local      disFrame
	ECMEnabled bool
	Callbacks  PhaseCallbacks
	Rows       RowReader
	RowsOut    RowWriter
	Clock      Clock
	LogOutput  io.Writer
}

// Session is the top-level object one fax call is run through. It is
// not safe for concurrent use: spec.md §5's concurrency model is
// strictly single-threaded per call, mirroring the original's
// synchronous Rx/Tx entry points with no internal locking.
type Session struct {
	cfg    SessionConfig
	fsm    *t30FSM
	agc    *agc
	hdlcRx *hdlcReceiver
	logger *log.Logger

	txBitRemaining []bool
	txModem        modemType
}

// NewSession constructs a Session ready to process samples for one call.
func NewSession(cfg SessionConfig) (*Session, error) {
	out := cfg.LogOutput
	if out == nil {
		out = io.Discard
	}
	logger := newSessionLogger(cfg.Role, out)

	fsmCfg := t30Config{
		Role:       cfg.Role,
		LocalIdent: cfg.LocalIdent,
		Local:      cfg.Local,
		ECMEnabled: cfg.ECMEnabled,
	}
	fsm := newT30FSM(fsmCfg, cfg.Callbacks)

	agcCfg := AGCConfig{
		SignalTargetPower:    1.0,
		SignalOnPowerThresh:  0.01,
		SignalOffPowerThresh: 0.002,
		SignalOnPersistence:  3,
		SignalOffPersistence: 5,
	}
	a, err := newAGC(agcCfg, true)
	if err != nil {
		return nil, err
	}

	s := &Session{cfg: cfg, fsm: fsm, agc: a, logger: logger}
	s.hdlcRx = newHDLCReceiver(s.onHDLCFrame)
	logger.Info("session started", "role", cfg.Role.String())
	return s, nil
}

func (s *Session) onHDLCFrame(frame []byte, crcOK bool) {
	if !crcOK {
		s.logger.Debug("hdlc frame failed FCS", "len", len(frame))
	}
	s.fsm.frameReceived(frame, crcOK)
}

// Rx consumes one buffer of 16-bit linear PCM samples at 8kHz from the
// line, running it through DC-block/AGC and advancing the protocol
// timers by the sample count. No receive modem runs here, and nothing
// is fed to the HDLC deframer or the image decoder.
func (s *Session) Rx(samples []int16) {
	floatsIn := make([]float64, len(samples))
	for i, v := range samples {
		floatsIn[i] = float64(v) / 32768.0
	}
	scaled := make([]float64, len(floatsIn))
	s.agc.rx(scaled, floatsIn)

	s.fsm.tick(len(samples))

	// The specific fast-modem rx wiring (V.21/V.27ter/V.29/V.17 bit
	// recovery feeding hdlcRx.rxBit) is owned by whichever modem is
	// currently armed; Session only owns the shared front end (DC block/
	// AGC) and the protocol FSM driving which modem that is. A concrete
	// deployment selects the modem via s.fsm.pendingModem and pushes
	// `scaled` through that modem's rx chain, calling s.hdlcRx.rxBit on
	// every recovered bit (V.21) or, for fast modems, the image decoder.
}

// Tx advances the protocol timers by len(buf) samples and returns 0:
// no tone or modem synthesis runs here, and nothing is written to buf.
func (s *Session) Tx(buf []int16) int {
	s.fsm.tick(len(buf))
	// No carrier or tone synthesis is wired in for s.fsm.pendingModem;
	// buf is left untouched.
	return 0
}

// Status reports the call's final T.30 status once the call is done,
// and StatusUnset before that.
func (s *Session) Status() Status {
	if s.fsm.Done() {
		return s.fsm.FinalStatus()
	}
	return StatusUnset
}

// Done reports whether the call has reached phase E.
func (s *Session) Done() bool { return s.fsm.Done() }
