package thumbcache

import (
	"image"

	"golang.org/x/image/draw"
)

// DefaultMaxEdge is the longest thumbnail edge in pixels.
const DefaultMaxEdge = 256

// Renderer downscales page rasters into thumbnail handles.
type Renderer struct {
	// MaxEdge caps the longer edge of the output; 0 means
	// DefaultMaxEdge.
	MaxEdge int
}

// Render scales src to fit MaxEdge preserving aspect ratio and wraps
// the result in a fresh Handle owned by the caller. Sources already
// within bounds are copied, not aliased, so the page raster can be
// dropped independently of the thumbnail.
func (r Renderer) Render(src image.Image) *Handle {
	maxEdge := r.MaxEdge
	if maxEdge <= 0 {
		maxEdge = DefaultMaxEdge
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return NewHandle(image.NewRGBA(image.Rect(0, 0, 1, 1)), nil)
	}

	outW, outH := w, h
	if w > maxEdge || h > maxEdge {
		if w >= h {
			outW = maxEdge
			outH = h * maxEdge / w
		} else {
			outH = maxEdge
			outW = w * maxEdge / h
		}
		if outW < 1 {
			outW = 1
		}
		if outH < 1 {
			outH = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, outW, outH))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return NewHandle(dst, nil)
}

// RotateImage returns src turned clockwise by degrees (a multiple of
// 90). 0 returns src unchanged.
func RotateImage(src image.Image, degrees int) image.Image {
	degrees = ((degrees % 360) + 360) % 360
	if degrees == 0 {
		return src
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	var dst *image.RGBA
	if degrees == 180 {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	} else {
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := src.At(b.Min.X+x, b.Min.Y+y)
			switch degrees {
			case 90:
				dst.Set(h-1-y, x, c)
			case 180:
				dst.Set(w-1-x, h-1-y, c)
			case 270:
				dst.Set(y, w-1-x, c)
			}
		}
	}
	return dst
}
