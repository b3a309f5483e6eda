package spanfax

/*------------------------------------------------------------------
 *
 * Purpose:	Completion-status taxonomy surfaced to the phase-E
 *		callback (spec.md §6), and to phase-B/D callbacks that
 *		report a partial result.
 *
 *---------------------------------------------------------------*/

// Status is a flat completion code, mirroring the ~50-code taxonomy of
// the original t30_api.h. The FSM mutates the session's current status
// only from within its own transition handlers (the "set_status"
// discipline of spec.md §7); callbacks only ever read it.
type Status int

const (
	// StatusUnset is the zero value: no call has completed yet.
	StatusUnset Status = iota

	// Phase E success.
	StatusOK

	// Phase A / link failures.
	StatusT0Timeout // no response detected at all (no carrier ever seen)
	StatusT1Timeout // no command/response within T1 of phase B starting
	StatusCallDropped

	// Phase B negotiation failures.
	StatusUnsupportedModems
	StatusUnsupportedCompressions
	StatusUnsupportedResolutions
	StatusUnsupportedImageSize
	StatusIncompatibleFeatures

	// Training / phase C failures.
	StatusFailedToTrain
	StatusTrainingTestFailed
	StatusRetrainNegotiationFailed
	StatusCarrierLostDuringPage

	// Phase D / post-page failures.
	StatusT2Timeout
	StatusT3Timeout
	StatusT4Timeout
	StatusT5Timeout
	StatusRetryCountExceeded
	StatusRXNotReadyLimitReached

	// Data integrity.
	StatusBadCRCRun
	StatusECMFrameMismatch
	StatusPageQualityBad

	// Remote abort / release.
	StatusDCNReceived
	StatusUnexpectedFrame

	// Configuration / API misuse (spec.md §7 kind 4).
	StatusBadParameter
)

var statusNames = map[Status]string{
	StatusUnset:                    "unset",
	StatusOK:                       "ok",
	StatusT0Timeout:                "T0 timeout: no answer tone detected",
	StatusT1Timeout:                "T1 timeout: no response in phase B",
	StatusCallDropped:              "call dropped",
	StatusUnsupportedModems:        "no common modem in capability exchange",
	StatusUnsupportedCompressions:  "no common compression in capability exchange",
	StatusUnsupportedResolutions:   "no common resolution in capability exchange",
	StatusUnsupportedImageSize:     "no common image size in capability exchange",
	StatusIncompatibleFeatures:     "incompatible optional features requested",
	StatusFailedToTrain:            "failed to train at any negotiated rate",
	StatusTrainingTestFailed:       "TCF training test failed",
	StatusRetrainNegotiationFailed: "retrain fallback exhausted",
	StatusCarrierLostDuringPage:    "carrier lost during page transfer",
	StatusT2Timeout:                "T2 timeout: no HDLC response to command",
	StatusT3Timeout:                "T3 timeout: procedural interrupt not acknowledged",
	StatusT4Timeout:                "T4 timeout: no response to retried command",
	StatusT5Timeout:                "T5 timeout: ECM overall patience exceeded",
	StatusRetryCountExceeded:       "command retry count exceeded",
	StatusRXNotReadyLimitReached:   "receiver-not-ready retry limit reached",
	StatusBadCRCRun:                "too many consecutive bad-CRC rows",
	StatusECMFrameMismatch:         "ECM frame count mismatch",
	StatusPageQualityBad:           "page marked poor quality",
	StatusDCNReceived:              "remote station disconnected",
	StatusUnexpectedFrame:          "unexpected HDLC frame received",
	StatusBadParameter:             "bad parameter",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown status"
}

// IsFailure reports whether the status represents anything other than a
// clean, fully-successful completion.
func (s Status) IsFailure() bool {
	return s != StatusOK && s != StatusUnset
}
