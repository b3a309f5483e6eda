package spanfax

/*------------------------------------------------------------------
 *
 * Purpose:	Optional V.8 negotiation (C13, SPEC_FULL.md §4.8, new
 *		relative to spec.md): the CM/JM/CJ handshake that lets two
 *		V.34-capable stations agree on a higher-rate fallback
 *		before T.30 phase B begins. Out of scope per spec.md §9's
 *		Open Question (a), V.34 itself is never selected; V.8 here
 *		only ever negotiates down to the existing V.17/V.29/
 *		V.27ter set, so it is a pure probe-then-fallback step
 *		rather than a second protocol surface to maintain.
 *
 *---------------------------------------------------------------*/

// v8CallFunction is the single supported CM/JM call function: "fax",
// since this core never brings up a modem-only V.8 data call.
const v8CallFunction byte = 0x01

// v8Menu is the decoded content of a CM or JM signal: the modulation
// modes the sending station is willing to use.
type v8Menu struct {
	CallFunction byte
	Modems       ModemMask
}

func encodeV8CM(local disFrame) []byte {
	return []byte{v8CallFunction, byte(local.Modems), byte(local.Modems >> 8)}
}

func decodeV8Menu(frame []byte) (v8Menu, error) {
	if len(frame) < 3 {
		return v8Menu{}, ErrBadParameter
	}
	return v8Menu{
		CallFunction: frame[0],
		Modems:       ModemMask(frame[1]) | ModemMask(frame[2])<<8,
	}, nil
}

// v8Negotiator holds the state of a CM -> JM exchange; there is no CJ
// step. The modems it agrees on are exactly the set negotiateDCS
// already intersects, so it never changes the DIS/DCS outcome. Nothing
// else in the package uses it: phase A does not run V.8, and the V.21
// DIS path is never skipped.
type v8Negotiator struct {
	local    disFrame
	agreed   ModemMask
	complete bool
}

func newV8Negotiator(local disFrame) *v8Negotiator {
	return &v8Negotiator{local: local}
}

// receiveCM processes the calling station's CM menu (seen by the
// answerer) and returns the JM response to send back.
func (n *v8Negotiator) receiveCM(cm []byte) ([]byte, error) {
	menu, err := decodeV8Menu(cm)
	if err != nil {
		return nil, err
	}
	n.agreed = n.local.Modems & menu.Modems
	if n.agreed == 0 {
		return nil, ErrNoCapabilityOffered
	}
	return encodeV8CM(disFrame{Modems: n.agreed}), nil
}

// receiveJM processes the answerer's JM response (seen by the caller)
// and finalises the agreed modem set.
func (n *v8Negotiator) receiveJM(jm []byte) error {
	menu, err := decodeV8Menu(jm)
	if err != nil {
		return err
	}
	n.agreed = n.local.Modems & menu.Modems
	if n.agreed == 0 {
		return ErrNoCapabilityOffered
	}
	n.complete = true
	return nil
}

// AgreedModems reports the modem set both ends confirmed support for,
// once negotiation has completed.
func (n *v8Negotiator) AgreedModems() ModemMask { return n.agreed }
