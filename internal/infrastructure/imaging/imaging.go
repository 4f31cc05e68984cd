package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"net/http"

	"golang.org/x/image/draw"

	"github.com/huson-app/huson/internal/core/domain"
)

// MaxDimension is the maximum width or height sent for classification.
const MaxDimension = 1024

// JPEGQuality is the compression quality for re-encoded payloads.
const JPEGQuality = 85

// MaxPixels bounds width*height of an image accepted for decoding.
const MaxPixels = 40_000_000

// acceptedMIME lists sniffed types treated as image content. Only the
// re-encodable ones are decoded and downscaled.
var acceptedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var reencodable = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

type Processor struct {
	maxDimension int
}

func NewProcessor() *Processor {
	return &Processor{maxDimension: MaxDimension}
}

// Detect sniffs the bytes, never trusting client headers.
func (p *Processor) Detect(data []byte) (string, error) {
	if len(data) == 0 {
		return "", domain.WrapError(domain.ErrInvalidInput, "detect image", errors.New("empty payload"))
	}
	detected := http.DetectContentType(data)
	if !acceptedMIME[detected] {
		return "", domain.WrapError(domain.ErrInvalidInput, "detect image", fmt.Errorf("unsupported image format: %s", detected))
	}
	return detected, nil
}

// PrepareForClassification returns the payload sent to the classifier.
// JPEG and PNG are downscaled to MaxDimension and re-encoded as JPEG; other
// accepted formats pass through unchanged.
func (p *Processor) PrepareForClassification(data []byte) ([]byte, string, error) {
	detected, err := p.Detect(data)
	if err != nil {
		return nil, "", err
	}
	if !reencodable[detected] {
		return data, detected, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", domain.WrapError(domain.ErrInvalidInput, "decode image", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, "", domain.WrapError(domain.ErrInvalidInput, "decode image",
			fmt.Errorf("image is %dx%d, above the %d pixel limit", cfg.Width, cfg.Height, MaxPixels))
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", domain.WrapError(domain.ErrInvalidInput, "decode image", err)
	}
	img = downscale(img, p.maxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, "", fmt.Errorf("encoding JPEG: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}

// downscale resizes the image so neither dimension exceeds maxDim, keeping
// the aspect ratio. Smaller images are returned as is.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := w, h
	if w > h {
		newW = maxDim
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newH = maxDim
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}
	newW = max(newW, 1)
	newH = max(newH, 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
