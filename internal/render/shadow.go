// Package render provides compositing helpers for the annotation window.
package render

import (
	"image"
	"image/color"
	"image/draw"
)

// ShadowOptions configures the drop shadow painted under the image page.
type ShadowOptions struct {
	Radius  int
	Offset  image.Point
	Opacity float64
}

// DefaultShadowOptions returns a conservative drop shadow configuration
// that reads well on the checkerboard backdrop.
func DefaultShadowOptions() ShadowOptions {
	return ShadowOptions{
		Radius:  12,
		Offset:  image.Pt(6, 6),
		Opacity: 0.45,
	}
}

// DrawPageShadow paints a blurred drop shadow for the page occupying rect
// onto dst. The shadow is clipped to dst's bounds; the page itself is not
// drawn. Callers draw the image over the shadow afterwards.
func DrawPageShadow(dst *image.RGBA, rect image.Rectangle, opts ShadowOptions) {
	if dst == nil || rect.Empty() || opts.Opacity <= 0 {
		return
	}
	opacity := opts.Opacity
	if opacity > 1 {
		opacity = 1
	}
	radius := opts.Radius
	if radius < 0 {
		radius = 0
	}

	padded := rect
	if radius > 0 {
		padded = padded.Inset(-radius)
	}
	mask := image.NewGray(padded.Sub(padded.Min))
	inner := rect.Sub(padded.Min)
	for y := inner.Min.Y; y < inner.Max.Y; y++ {
		for x := inner.Min.X; x < inner.Max.X; x++ {
			mask.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	blurred := blurGray(mask, radius)

	shadowAlpha := uint8(opacity*255 + 0.5)
	if shadowAlpha == 0 {
		return
	}
	origin := padded.Min.Add(opts.Offset)
	draw.DrawMask(dst, blurred.Bounds().Add(origin),
		image.NewUniform(color.RGBA{0, 0, 0, shadowAlpha}), image.Point{},
		blurred, blurred.Bounds().Min, draw.Over)
}

// blurGray applies a separable box blur with the given radius. It uses
// prefix sums per row and column so the cost is independent of radius.
func blurGray(src *image.Gray, radius int) *image.Gray {
	if radius <= 0 {
		out := image.NewGray(src.Bounds())
		copy(out.Pix, src.Pix)
		return out
	}
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	tmp := image.NewGray(bounds)
	dst := image.NewGray(bounds)

	for y := 0; y < h; y++ {
		rowStart := y * src.Stride
		tmpStart := y * tmp.Stride
		prefix := make([]int, w+1)
		for x := 0; x < w; x++ {
			prefix[x+1] = prefix[x] + int(src.Pix[rowStart+x])
		}
		for x := 0; x < w; x++ {
			x0 := x - radius
			if x0 < 0 {
				x0 = 0
			}
			x1 := x + radius
			if x1 >= w {
				x1 = w - 1
			}
			sum := prefix[x1+1] - prefix[x0]
			count := x1 - x0 + 1
			tmp.Pix[tmpStart+x] = uint8(sum / count)
		}
	}

	for x := 0; x < w; x++ {
		prefix := make([]int, h+1)
		for y := 0; y < h; y++ {
			prefix[y+1] = prefix[y] + int(tmp.Pix[y*tmp.Stride+x])
		}
		for y := 0; y < h; y++ {
			y0 := y - radius
			if y0 < 0 {
				y0 = 0
			}
			y1 := y + radius
			if y1 >= h {
				y1 = h - 1
			}
			sum := prefix[y1+1] - prefix[y0]
			count := y1 - y0 + 1
			dst.Pix[y*dst.Stride+x] = uint8(sum / count)
		}
	}

	return dst
}
