package convert

import (
	"bytes"
	"errors"
	"testing"

	"golang.org/x/image/draw"

	"github.com/user/screenrec/pkg/pipeline"
)

// solidFrame returns a frame filled with one BGRA colour.
func solidFrame(w, h int, b, g, r byte) pipeline.Frame {
	raw := make([]byte, w*h*4)
	for i := 0; i < len(raw); i += 4 {
		raw[i], raw[i+1], raw[i+2], raw[i+3] = b, g, r, 255
	}
	return pipeline.Frame{Width: uint32(w), Height: uint32(h), Raw: raw}
}

func TestConvertSolidColours(t *testing.T) {
	tests := []struct {
		name      string
		b, g, r   byte
		y, cb, cr uint8
	}{
		{"black", 0, 0, 0, 16, 128, 128},
		{"white", 255, 255, 255, 235, 128, 128},
		{"red", 0, 0, 255, 82, 90, 240},
		{"blue", 255, 0, 0, 41, 240, 110},
	}

	c := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := c.Convert(solidFrame(4, 4, tt.b, tt.g, tt.r), 4, 4)
			if err != nil {
				t.Fatalf("Convert failed: %v", err)
			}
			if img.Y[0] != tt.y || img.Cb[0] != tt.cb || img.Cr[0] != tt.cr {
				t.Errorf("got Y=%d Cb=%d Cr=%d, want Y=%d Cb=%d Cr=%d",
					img.Y[0], img.Cb[0], img.Cr[0], tt.y, tt.cb, tt.cr)
			}
		})
	}
}

func TestConvertPlaneSizes(t *testing.T) {
	img, err := New().Convert(solidFrame(640, 480, 10, 20, 30), 640, 480)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if len(img.Y) != 640*480 {
		t.Errorf("Y plane = %d bytes", len(img.Y))
	}
	if len(img.Cb) != 320*240 || len(img.Cr) != 320*240 {
		t.Errorf("chroma planes = %d/%d bytes", len(img.Cb), len(img.Cr))
	}
}

func TestConvertResizes(t *testing.T) {
	img, err := New().Convert(solidFrame(64, 48, 255, 255, 255), 32, 24)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if img.Rect.Dx() != 32 || img.Rect.Dy() != 24 {
		t.Fatalf("got %v", img.Rect)
	}
	// Bilinear resampling of a solid image stays solid.
	for i, v := range img.Y {
		if v != 235 {
			t.Fatalf("Y[%d] = %d, want 235", i, v)
		}
	}
}

func TestConvertDeterministic(t *testing.T) {
	f := solidFrame(16, 16, 0, 0, 0)
	for i := range f.Raw {
		f.Raw[i] = byte(i * 7)
	}

	c := &Converter{Kernel: draw.CatmullRom}
	a, err := c.Convert(f, 8, 8)
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Convert(f, 8, 8)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Y, b.Y) || !bytes.Equal(a.Cb, b.Cb) || !bytes.Equal(a.Cr, b.Cr) {
		t.Error("identical inputs produced different output")
	}
}

func TestConvertRejectsBadInput(t *testing.T) {
	c := New()

	bad := solidFrame(4, 4, 0, 0, 0)
	bad.Raw = bad.Raw[:len(bad.Raw)-1]
	if _, err := c.Convert(bad, 4, 4); !errors.Is(err, pipeline.ErrFrameSizeMismatch) {
		t.Errorf("expected ErrFrameSizeMismatch, got %v", err)
	}

	if _, err := c.Convert(solidFrame(4, 4, 0, 0, 0), 5, 4); !errors.Is(err, ErrOddDimensions) {
		t.Errorf("expected ErrOddDimensions, got %v", err)
	}
	if _, err := c.Convert(solidFrame(4, 4, 0, 0, 0), 0, 4); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}
}

func TestToRGBASwapsChannels(t *testing.T) {
	img := ToRGBA(solidFrame(2, 2, 1, 2, 3))
	if img.Pix[0] != 3 || img.Pix[1] != 2 || img.Pix[2] != 1 || img.Pix[3] != 255 {
		t.Errorf("got %v", img.Pix[:4])
	}
}

func BenchmarkConvert1080p(b *testing.B) {
	f := solidFrame(1920, 1080, 40, 80, 120)
	c := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Convert(f, 1920, 1080); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkConvertScale1080pTo720p(b *testing.B) {
	f := solidFrame(1920, 1080, 40, 80, 120)
	c := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Convert(f, 1280, 720); err != nil {
			b.Fatal(err)
		}
	}
}
