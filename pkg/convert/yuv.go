package convert

import "image"

// layout gives the byte offsets of the red and blue channels in a 4-byte pixel.
type layout struct {
	r, b int
}

var (
	bgraLayout = layout{r: 2, b: 0}
	rgbaLayout = layout{r: 0, b: 2}
)

// toYCbCr fills a 4:2:0 image from packed 32-bit pixels. Each chroma sample
// is computed from the average colour of its 2x2 luma block.
func toYCbCr(dst *image.YCbCr, pix []byte, stride int, l layout) {
	w, h := dst.Rect.Dx(), dst.Rect.Dy()

	for y := 0; y < h; y += 2 {
		row0 := pix[y*stride:]
		row1 := pix[(y+1)*stride:]
		yRow0 := dst.Y[y*dst.YStride:]
		yRow1 := dst.Y[(y+1)*dst.YStride:]
		cOff := (y / 2) * dst.CStride

		for x := 0; x < w; x += 2 {
			var sr, sg, sb int
			for dx := 0; dx < 2; dx++ {
				p := (x + dx) * 4

				r, g, b := int(row0[p+l.r]), int(row0[p+1]), int(row0[p+l.b])
				yRow0[x+dx] = luma(r, g, b)
				sr, sg, sb = sr+r, sg+g, sb+b

				r, g, b = int(row1[p+l.r]), int(row1[p+1]), int(row1[p+l.b])
				yRow1[x+dx] = luma(r, g, b)
				sr, sg, sb = sr+r, sg+g, sb+b
			}
			r, g, b := (sr+2)/4, (sg+2)/4, (sb+2)/4
			dst.Cb[cOff+x/2] = chromaB(r, g, b)
			dst.Cr[cOff+x/2] = chromaR(r, g, b)
		}
	}
}

// BT.601 limited range: Y in [16, 235], Cb/Cr in [16, 240].

func luma(r, g, b int) uint8 {
	return uint8(((66*r + 129*g + 25*b + 128) >> 8) + 16)
}

func chromaB(r, g, b int) uint8 {
	return uint8(((-38*r - 74*g + 112*b + 128) >> 8) + 128)
}

func chromaR(r, g, b int) uint8 {
	return uint8(((112*r - 94*g - 18*b + 128) >> 8) + 128)
}
