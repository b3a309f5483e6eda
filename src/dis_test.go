package spanfax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_negotiateDCS_prefersFastestCommonModem(t *testing.T) {
	local := disFrame{
		Modems:       ModemV27ter | ModemV29 | ModemV17,
		Compressions: CompressionT4_1D | CompressionT6,
		Features:     FeatureECM,
	}
	remote := disFrame{
		Modems:       ModemV27ter | ModemV29,
		Compressions: CompressionT4_1D,
		Features:     FeatureECM,
	}

	dcs, err := negotiateDCS(local, remote)
	require.NoError(t, err)
	assert.Equal(t, modemV29, dcs.Modem)
	assert.Equal(t, 9600, dcs.BitRate)
	assert.Equal(t, CompressionT4_1D, dcs.Compression)
	assert.True(t, dcs.ECM)
}

func Test_negotiateDCS_fallsBackWhenFastModemMissing(t *testing.T) {
	local := disFrame{Modems: ModemV27ter | ModemV29 | ModemV17, Compressions: CompressionT4_1D}
	remote := disFrame{Modems: ModemV27ter, Compressions: CompressionT4_1D}

	dcs, err := negotiateDCS(local, remote)
	require.NoError(t, err)
	assert.Equal(t, modemV27ter, dcs.Modem)
	assert.Equal(t, 4800, dcs.BitRate)
}

func Test_negotiateDCS_noCommonModemFails(t *testing.T) {
	local := disFrame{Modems: ModemV17, Compressions: CompressionT4_1D}
	remote := disFrame{Modems: ModemV27ter, Compressions: CompressionT4_1D}

	_, err := negotiateDCS(local, remote)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoCapabilityOffered)
}

func Test_encodeDIS_decodeDIS_roundTrip(t *testing.T) {
	d := disFrame{
		Modems:       ModemV27ter | ModemV17,
		Compressions: CompressionT6,
		Resolutions:  ResolutionFine,
		ImageSizes:   ImageSizeA4,
		Features:     FeatureECM,
	}
	body := encodeDIS(fcfDIS, d)
	got, err := decodeDIS(body[1:])
	require.NoError(t, err)
	assert.Equal(t, d, got)
}
