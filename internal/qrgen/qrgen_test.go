package qrgen

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPNGEncoderProducesDataURL(t *testing.T) {
	encoder := PNGEncoder{}

	dataURL, err := encoder.Encode("https://menu.example/t3")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(dataURL, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, "data:image/png;base64,"))
	require.NoError(t, err)
	// PNG magic bytes.
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, raw[:4])
}

func TestPNGEncoderDeterministic(t *testing.T) {
	encoder := PNGEncoder{PixelWidth: 128}

	first, err := encoder.Encode("payload")
	require.NoError(t, err)
	second, err := encoder.Encode("payload")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPNGEncoderRejectsOversizedPayload(t *testing.T) {
	encoder := PNGEncoder{}

	_, err := encoder.Encode(strings.Repeat("x", 5000))
	require.Error(t, err)
}
