package spanfax

/*------------------------------------------------------------------
 *
 * Purpose:	The three true collaborator boundaries (spec.md §6, §9):
 *		row-oriented image I/O, a wall-clock source for page
 *		headers, and the HDLC-frame-accept callback. Everything
 *		else (audio samples, capability masks, status) is a
 *		plain function call or field on Session.
 *
 *---------------------------------------------------------------*/

import "time"

// RowReader supplies packed MSB-first bi-level scan lines to the T.4/T.6
// encoder. ReadRow returns 0 to mark end of page, matching the C
// row_read(user, dst, len) -> bytes_read contract.
type RowReader interface {
	ReadRow(dst []byte) (n int, err error)
}

// RowWriter accepts decoded scan lines from the T.4/T.6 decoder. EndPage
// is called once per page, matching the C row_write(user, nil, 0)
// end-of-page convention, but spelled out as its own method since Go
// interfaces should not overload a zero-length slice to mean something
// different from "an empty row."
type RowWriter interface {
	WriteRow(src []byte) error
	EndPage() error
}

// Clock is the wall-clock collaborator used to timestamp page headers.
// Production code wraps time.Now; tests inject a fixed clock so FSM
// behaviour stays deterministic.
type Clock interface {
	Now() time.Time
}

// systemClock is the Clock used when a Session is not given one explicitly.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// HDLCFrameHandler receives a fully de-stuffed, CRC-checked HDLC frame
// from the framer. crcOK is false when the frame's FCS did not verify;
// T.30 still wants to see such frames (to count them for ECM PPR bitmaps).
type HDLCFrameHandler interface {
	HDLCAccept(frame []byte, crcOK bool)
}

// PhaseCallbacks groups the T.30 event callbacks of spec.md §6. All are
// optional; a nil field is simply not invoked.
type PhaseCallbacks struct {
	// PhaseB fires once DIS has been received and negotiation is
	// about to proceed (or has just failed).
	PhaseB func(result Status)

	// PhaseD fires once per post-page handshake response.
	PhaseD func(result Status)

	// PhaseE fires exactly once, at call release.
	PhaseE func(status Status)

	// RealTimeFrame fires once per HDLC frame the FSM receives, mainly
	// for protocol monitoring/logging; frames this station sends are not
	// reported.
	RealTimeFrame func(direction Role, frame []byte)

	// Document fires at page and document boundaries.
	Document func(event DocumentEvent)
}

// DocumentEvent enumerates the page/document boundary notifications
// delivered through PhaseCallbacks.Document.
type DocumentEvent int

const (
	DocumentPageStarted DocumentEvent = iota
	DocumentPageEnded
	DocumentAllDone
)
