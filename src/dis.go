package spanfax

/*------------------------------------------------------------------
 *
 * Purpose:	DIS/DSS/DCS capability-frame construction and parsing:
 *		the fixed-layout facsimile control field (FCF) frames
 *		that carry each side's modem/compression/resolution/
 *		feature bitmasks during phase B negotiation.
 *
 *---------------------------------------------------------------*/

// HDLC facsimile control field values relevant to capability exchange
// and the post-page handshake (spec.md §4.2/GLOSSARY). Only a working
// subset of T.30's full FCF set is named here; others are handled by
// the T.30 state machine directly from the HDLC frame's first octet.
type fcf byte

const (
	fcfDIS fcf = 0x01
	fcfCSI fcf = 0x02
	fcfNSF fcf = 0x04
	fcfDTC fcf = 0x81
	fcfDCS fcf = 0x41
	fcfTSI fcf = 0x42
	fcfCFR fcf = 0x21
	fcfFTT fcf = 0x22
	fcfMPS fcf = 0x0d
	fcfEOM fcf = 0x0e
	fcfMCF fcf = 0x31
	fcfRTP fcf = 0x33
	fcfRTN fcf = 0x32
	fcfPPR fcf = 0x34
	fcfPPS fcf = 0x35
	fcfEOP fcf = 0x0f
	fcfPIP fcf = 0x36
	fcfPIN fcf = 0x37
	fcfDCN fcf = 0x5f
	fcfCRP fcf = 0x38
	fcfEOR fcf = 0x39
	fcfERR fcf = 0x3a
)

// disFrame is the decoded form of a DIS/DTC frame: the answerer's (or
// caller's, for DTC) advertised capability set, as five bitmasks
// (modems, compressions, resolutions, image sizes, features) that
// encodeDIS packs into seven octets after the FCF.
type disFrame struct {
	Modems        ModemMask
	Compressions  CompressionMask
	Resolutions   ResolutionMask
	ImageSizes    ImageSizeMask
	Features      FeatureMask
}

// encodeDIS packs a disFrame into the FCF byte plus the standard T.30
// capability octets. The layout used here keeps the bitmask constants
// defined in const.go directly as the wire octets, rather than
// replicating T.30's exact non-contiguous bit assignment, since nothing
// in spec.md requires interop with the literal ITU bit numbering
// (spec.md treats the 23-octet frame as an opaque capability exchange,
// externalizing exact bit placement to the out-of-scope AT-command/wire
// layer).
func encodeDIS(f fcf, d disFrame) []byte {
	return []byte{
		byte(f),
		byte(d.Modems),
		byte(d.Modems >> 8),
		byte(d.Compressions),
		byte(d.Resolutions),
		byte(d.ImageSizes),
		byte(d.Features),
		byte(d.Features >> 8),
	}
}

// decodeDIS parses a received DIS/DTC/DCS frame body (FCF already
// consumed by the caller) back into a disFrame.
func decodeDIS(body []byte) (disFrame, error) {
	if len(body) < 7 {
		return disFrame{}, ErrBadParameter
	}
	return disFrame{
		Modems:       ModemMask(body[0]) | ModemMask(body[1])<<8,
		Compressions: CompressionMask(body[2]),
		Resolutions:  ResolutionMask(body[3]),
		ImageSizes:   ImageSizeMask(body[4]),
		Features:     FeatureMask(body[5]) | FeatureMask(body[6])<<8,
	}, nil
}

// dcsFrame is one fully negotiated session: the single modem rate and
// compression both ends agreed on, the shared resolution and image-size
// masks (which may hold more than one bit), and the ECM flag, derived
// from intersecting a disFrame with the caller's own capabilities
// (negotiateDCS, called from t30.go).
type dcsFrame struct {
	Modem       modemType
	BitRate     int
	Compression CompressionMask
	Resolution  ResolutionMask
	ImageSize   ImageSizeMask
	ECM         bool
}

func encodeDCS(d dcsFrame) []byte {
	var features FeatureMask
	if d.ECM {
		features |= FeatureECM
	}
	return []byte{
		byte(fcfDCS),
		byte(d.Modem),
		byte(d.BitRate >> 8),
		byte(d.BitRate),
		byte(d.Compression),
		byte(d.Resolution),
		byte(d.ImageSize),
		byte(features),
	}
}

func decodeDCS(body []byte) (dcsFrame, error) {
	if len(body) < 7 {
		return dcsFrame{}, ErrBadParameter
	}
	return dcsFrame{
		Modem:       modemType(body[0]),
		BitRate:     int(body[1])<<8 | int(body[2]),
		Compression: CompressionMask(body[3]),
		Resolution:  ResolutionMask(body[4]),
		ImageSize:   ImageSizeMask(body[5]),
		ECM:         FeatureMask(body[6])&FeatureECM != 0,
	}, nil
}

// negotiateDCS picks the fastest modem both DIS bitmasks share, falling
// back modem-by-modem from fastest to slowest, and the first shared
// compression in the order T.4 1D, T.4 2D, T.6. Resolution and image
// size are the shared masks, defaulting to standard resolution and A4
// when nothing is shared.
func negotiateDCS(local, remote disFrame) (dcsFrame, error) {
	modems := local.Modems & remote.Modems
	type candidate struct {
		mask modemType
		bit  ModemMask
		rate int
	}
	candidates := []candidate{
		{modemV17, ModemV17, 14400},
		{modemV29, ModemV29, 9600},
		{modemV27ter, ModemV27ter, 4800},
	}
	var chosen *candidate
	for i := range candidates {
		if modems&candidates[i].bit != 0 {
			chosen = &candidates[i]
			break
		}
	}
	if chosen == nil {
		return dcsFrame{}, ErrNoCapabilityOffered
	}

	compressions := local.Compressions & remote.Compressions
	if compressions == 0 {
		return dcsFrame{}, ErrNoCapabilityOffered
	}
	resolutions := local.Resolutions & remote.Resolutions
	if resolutions == 0 {
		resolutions = ResolutionStandard
	}
	imageSizes := local.ImageSizes & remote.ImageSizes
	if imageSizes == 0 {
		imageSizes = ImageSizeA4
	}
	ecm := local.Features&remote.Features&FeatureECM != 0

	return dcsFrame{
		Modem:       chosen.mask,
		BitRate:     chosen.rate,
		Compression: lowestSetCompression(compressions),
		Resolution:  resolutions,
		ImageSize:   imageSizes,
		ECM:         ecm,
	}, nil
}

func lowestSetCompression(mask CompressionMask) CompressionMask {
	for _, bit := range []CompressionMask{CompressionT4_1D, CompressionT4_2D, CompressionT6} {
		if mask&bit != 0 {
			return bit
		}
	}
	return mask
}
