package services

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	_ "image/gif"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"wardrobeapi/models"
)

const (
	MaxImageSide     = 1024
	MaxThumbnailSide = 256
	jpegQuality      = 85
)

// ResizeToFit scales the image down so its longer side is at most maxSide.
// Images that already fit are returned unchanged. Scaled images are encoded
// as PNG when the source was PNG and as JPEG otherwise.
func ResizeToFit(b models.Blob, maxSide int) (models.Blob, error) {
	img, format, err := image.Decode(bytes.NewReader(b.Data))
	if err != nil {
		return models.Blob{}, fmt.Errorf("failed to decode image: %w", err)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxSide && h <= maxSide {
		return b, nil
	}

	scale := float64(maxSide) / float64(max(w, h))
	dw, dh := max(1, int(float64(w)*scale)), max(1, int(float64(h)*scale))
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if format == "png" {
		if err := png.Encode(&buf, dst); err != nil {
			return models.Blob{}, fmt.Errorf("failed to encode image to png: %w", err)
		}
		return models.Blob{MimeType: "image/png", Data: buf.Bytes()}, nil
	}
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return models.Blob{}, fmt.Errorf("failed to encode image to jpeg: %w", err)
	}
	return models.Blob{MimeType: "image/jpeg", Data: buf.Bytes()}, nil
}

// PrepareClothingImages bounds an uploaded garment photo and derives the
// thumbnail when none was supplied.
func PrepareClothingImages(img, thumb models.Blob) (models.Blob, models.Blob, error) {
	resized, err := ResizeToFit(img, MaxImageSide)
	if err != nil {
		return models.Blob{}, models.Blob{}, err
	}
	if !thumb.IsEmpty() {
		return resized, thumb, nil
	}
	thumb, err = ResizeToFit(resized, MaxThumbnailSide)
	if err != nil {
		return models.Blob{}, models.Blob{}, err
	}
	return resized, thumb, nil
}
