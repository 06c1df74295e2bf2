package convert

import (
	"image"
	"time"

	"golang.org/x/image/draw"

	"github.com/user/screenrec/pkg/ports"
)

// FromImage copies img into a tightly packed BGRA capture image.
func FromImage(img image.Image, capturedAt time.Time) ports.CapturedImage {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != b.Dx()*4 || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}

	pix := make([]byte, len(rgba.Pix))
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i+0] = rgba.Pix[i+2]
		pix[i+1] = rgba.Pix[i+1]
		pix[i+2] = rgba.Pix[i+0]
		pix[i+3] = 255
	}

	return ports.CapturedImage{
		Width:      uint32(b.Dx()),
		Height:     uint32(b.Dy()),
		Pixels:     pix,
		CapturedAt: capturedAt,
	}
}
