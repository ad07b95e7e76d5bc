package services

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wardrobeapi/models"
)

func testImage(t *testing.T, w, h int, encode func(*bytes.Buffer, image.Image) error) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, encode(&buf, img))
	return buf.Bytes()
}

func pngEncode(buf *bytes.Buffer, img image.Image) error {
	return png.Encode(buf, img)
}

func jpegEncode(buf *bytes.Buffer, img image.Image) error {
	return jpeg.Encode(buf, img, nil)
}

func dimensions(t *testing.T, data []byte) (int, int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestResizeToFitScalesDown(t *testing.T) {
	src := models.Blob{MimeType: "image/png", Data: testImage(t, 2000, 1000, pngEncode)}

	out, err := ResizeToFit(src, MaxImageSide)
	require.NoError(t, err)
	assert.Equal(t, "image/png", out.MimeType)
	w, h := dimensions(t, out.Data)
	assert.Equal(t, 1024, w)
	assert.Equal(t, 512, h)
}

func TestResizeToFitKeepsSmallImages(t *testing.T) {
	src := models.Blob{MimeType: "image/jpeg", Data: testImage(t, 300, 400, jpegEncode)}

	out, err := ResizeToFit(src, MaxImageSide)
	require.NoError(t, err)
	assert.Equal(t, src.Data, out.Data)
}

func TestResizeToFitRejectsGarbage(t *testing.T) {
	_, err := ResizeToFit(models.Blob{Data: []byte("nope")}, MaxImageSide)
	assert.Error(t, err)
}

func TestPrepareClothingImagesDerivesThumbnail(t *testing.T) {
	src := models.Blob{MimeType: "image/jpeg", Data: testImage(t, 800, 1600, jpegEncode)}

	img, thumb, err := PrepareClothingImages(src, models.Blob{})
	require.NoError(t, err)
	w, h := dimensions(t, img.Data)
	assert.Equal(t, 512, w)
	assert.Equal(t, 1024, h)
	assert.Equal(t, "image/jpeg", thumb.MimeType)
	w, h = dimensions(t, thumb.Data)
	assert.Equal(t, 128, w)
	assert.Equal(t, 256, h)

	given := models.Blob{MimeType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}
	_, thumb, err = PrepareClothingImages(src, given)
	require.NoError(t, err)
	assert.Equal(t, given, thumb)
}
