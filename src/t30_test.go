package spanfax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test_t30FSM_v29NegotiationSucceeds exercises spec.md's literal
// scenario 1: answerer offers T.4 1D + V.27ter + V.29 only, caller
// offers the same plus V.17; the fastest common modem (V.29) should be
// selected and phase B should report StatusOK.
func Test_t30FSM_v29NegotiationSucceeds(t *testing.T) {
	var phaseBStatus Status
	cfg := t30Config{
		Role:       RoleCalling,
		LocalIdent: "CALLER",
		Local: disFrame{
			Modems:       ModemV27ter | ModemV29 | ModemV17,
			Compressions: CompressionT4_1D,
		},
	}
	fsm := newT30FSM(cfg, PhaseCallbacks{
		PhaseB: func(s Status) { phaseBStatus = s },
	})

	dis := encodeDIS(fcfDIS, disFrame{
		Modems:       ModemV27ter | ModemV29,
		Compressions: CompressionT4_1D,
	})
	fsm.frameReceived(dis, true)

	assert.Equal(t, StatusOK, phaseBStatus)
	assert.Equal(t, modemV29, fsm.dcs.Modem)
	assert.Equal(t, 9600, fsm.dcs.BitRate)
	assert.Equal(t, stateSendDCS, fsm.state)
}

// Test_t30FSM_fallsBackToV27ter covers scenario 2: the answerer's DIS
// omits V.29, so DCS must select V.27ter 4800.
func Test_t30FSM_fallsBackToV27ter(t *testing.T) {
	cfg := t30Config{
		Role: RoleCalling,
		Local: disFrame{
			Modems:       ModemV27ter | ModemV29 | ModemV17,
			Compressions: CompressionT4_1D,
		},
	}
	fsm := newT30FSM(cfg, PhaseCallbacks{})
	dis := encodeDIS(fcfDIS, disFrame{Modems: ModemV27ter, Compressions: CompressionT4_1D})
	fsm.frameReceived(dis, true)

	assert.Equal(t, modemV27ter, fsm.dcs.Modem)
	assert.Equal(t, 4800, fsm.dcs.BitRate)
}

// Test_t30FSM_trainingFailureFallsBackThenReleases covers scenario 4:
// TCF fails repeatedly, so the FSM should fall back through the modem
// list and, once exhausted, release with StatusFailedToTrain.
func Test_t30FSM_trainingFailureFallsBackThenReleases(t *testing.T) {
	var finalStatus Status
	cfg := t30Config{
		Role: RoleCalling,
		Local: disFrame{
			Modems:       ModemV27ter | ModemV29 | ModemV17,
			Compressions: CompressionT4_1D,
		},
	}
	fsm := newT30FSM(cfg, PhaseCallbacks{
		PhaseE: func(s Status) { finalStatus = s },
	})
	dis := encodeDIS(fcfDIS, disFrame{
		Modems:       ModemV27ter | ModemV29 | ModemV17,
		Compressions: CompressionT4_1D,
	})
	fsm.frameReceived(dis, true)
	require.Equal(t, stateSendDCS, fsm.state)
	fsm.dcsSent()

	for !fsm.Done() {
		fsm.trainingResult(false)
	}

	assert.Equal(t, StatusFailedToTrain, finalStatus)
	assert.True(t, fsm.Done())
}

// Test_t30FSM_postPageMCFCompletesCall exercises the EOP->MCF->DCN tail
// of a successful single-page transfer (scenario 1's second half); the
// page is the last one, so pageComplete sends EOP rather than MPS.
func Test_t30FSM_postPageMCFCompletesCall(t *testing.T) {
	var finalStatus Status
	cfg := t30Config{
		Role: RoleCalling,
		Local: disFrame{
			Modems:       ModemV29,
			Compressions: CompressionT4_1D,
		},
	}
	fsm := newT30FSM(cfg, PhaseCallbacks{
		PhaseE: func(s Status) { finalStatus = s },
	})
	dis := encodeDIS(fcfDIS, disFrame{Modems: ModemV29, Compressions: CompressionT4_1D})
	fsm.frameReceived(dis, true)
	fsm.dcsSent()
	fsm.trainingResult(true)
	require.Equal(t, stateSendCFR, fsm.state)

	fsm.pageComplete(true)
	require.Equal(t, stateWaitPostPageResponse, fsm.state)

	fsm.frameReceived([]byte{byte(fcfMCF)}, true)
	require.Equal(t, stateSendDCN, fsm.state)

	fsm.dcnSent()
	assert.True(t, fsm.Done())
	assert.Equal(t, StatusOK, finalStatus)
}

func Test_t30FSM_t0TimeoutReleases(t *testing.T) {
	var finalStatus Status
	cfg := t30Config{Role: RoleCalling}
	fsm := newT30FSM(cfg, PhaseCallbacks{
		PhaseE: func(s Status) { finalStatus = s },
	})
	fsm.tick(durationT0 + 1)
	assert.True(t, fsm.Done())
	assert.Equal(t, StatusT0Timeout, finalStatus)
}
