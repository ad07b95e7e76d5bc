package codec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wardrobeapi/models"
)

func pngBytes(t *testing.T) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestRoundTripKeepsBytesAndMime(t *testing.T) {
	blobs := []models.Blob{
		{MimeType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff, 0x00, 0x01, 0x02}},
		{MimeType: "image/webp", Data: []byte("RIFF....WEBP")},
		{MimeType: "image/png", Data: pngBytes(t)},
		{MimeType: "application/octet-stream", Data: []byte{0, 1, 2, 3, 254, 255}},
	}
	for _, b := range blobs {
		decoded, err := Decode(Encode(b))
		require.NoError(t, err)
		assert.Equal(t, b.Data, decoded.Data)
		assert.Equal(t, b.MimeType, decoded.MimeType)
	}
}

func TestEncodeSniffsMimeWhenMissing(t *testing.T) {
	token := Encode(models.Blob{Data: pngBytes(t)})
	assert.Contains(t, token, "data:image/png;base64,")

	decoded, err := Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "image/png", decoded.MimeType)
}

func TestDecodeWithoutMarkerDefaultsToPng(t *testing.T) {
	raw := []byte("hello wardrobe")
	decoded, err := Decode(base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, DefaultMimeType, decoded.MimeType)
	assert.Equal(t, raw, decoded.Data)

	decoded, err = Decode("data:;base64," + base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, DefaultMimeType, decoded.MimeType)
}

func TestDecodeMalformedBody(t *testing.T) {
	_, err := Decode("data:image/png;base64,@@not-base64@@")
	require.Error(t, err)
	var codecErr *CodecError
	require.True(t, errors.As(err, &codecErr))

	_, err = Decode("data:image/png;base64")
	assert.True(t, errors.As(err, &codecErr))
}

func TestEmptyBlobEncodesEmpty(t *testing.T) {
	assert.Equal(t, "", Encode(models.Blob{}))
	b, err := Decode("")
	require.NoError(t, err)
	assert.True(t, b.IsEmpty())
}
