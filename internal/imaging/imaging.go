package imaging

import (
	"bytes"
	"image"
	"image/color"
	stddraw "image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"math"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	apperrors "github.com/spec-kit/staff-console/pkg/util/errorutil"
)

const (
	// MaxDimension bounds the longer side of a processed image.
	MaxDimension = 1024
	// Quality is the JPEG quality of processed images.
	Quality = 70
	// ContentType of processed images.
	ContentType = "image/jpeg"

	// MaxPixels bounds width x height of an accepted upload, checked before decoding.
	MaxPixels = 50_000_000

	maxInputBytes = 32 << 20
)

// Blob is a processed image ready to attach to a submission.
type Blob struct {
	Name        string
	ContentType string
	Data        []byte
	Width       int
	Height      int
}

// Process decodes an uploaded image, scales it so that its longer side is at
// most MaxDimension, and re-encodes it as JPEG. Smaller images are not enlarged.
// Transparent areas are flattened onto white.
func Process(r io.Reader, filename string) (*Blob, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxInputBytes+1))
	if err != nil {
		return nil, apperrors.NewProcessingError("unable to read image", err)
	}
	if len(raw) > maxInputBytes {
		return nil, apperrors.NewProcessingError("image is too large", nil)
	}

	if w, h, ok := dimensions(raw); ok && w*h > MaxPixels {
		return nil, apperrors.NewProcessingError("image dimensions too large", nil)
	}

	img, err := decode(raw)
	if err != nil {
		return nil, apperrors.NewProcessingError("unable to process image: unsupported or corrupt file", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, apperrors.NewProcessingError("invalid image dimensions", nil)
	}

	width, height := Fit(bounds.Dx(), bounds.Dy(), MaxDimension)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	stddraw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, stddraw.Src)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: Quality}); err != nil {
		return nil, apperrors.NewProcessingError("unable to encode image", err)
	}

	return &Blob{
		Name:        OutputName(filename),
		ContentType: ContentType,
		Data:        out.Bytes(),
		Width:       width,
		Height:      height,
	}, nil
}

// Fit scales width x height so the longer side is at most limit, keeping the aspect ratio.
func Fit(width, height, limit int) (int, int) {
	longer := width
	if height > longer {
		longer = height
	}
	if longer <= limit {
		return width, height
	}
	scale := float64(limit) / float64(longer)
	w := int(math.Round(float64(width) * scale))
	h := int(math.Round(float64(height) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// OutputName swaps the extension of filename for .jpg.
func OutputName(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	if base == "." || base == "/" {
		base = ""
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if strings.TrimSpace(base) == "" {
		base = "image"
	}
	return base + ".jpg"
}

// dimensions reads the header only. ok is false when the format is not
// recognised; decode then reports the failure.
func dimensions(raw []byte) (int, int, bool) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		if cfg, err = webp.DecodeConfig(bytes.NewReader(raw)); err != nil {
			return 0, 0, false
		}
	}
	return cfg.Width, cfg.Height, true
}

func decode(raw []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err == nil {
		return img, nil
	}
	if decoded, webpErr := webp.Decode(bytes.NewReader(raw)); webpErr == nil {
		return decoded, nil
	}
	return nil, err
}
