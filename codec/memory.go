package codec

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/goccy/go-json"
)

type memPage struct {
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation int     `json:"rotation"`
	Shade    uint8   `json:"shade"`
}

// MemoryDocument is a rasterless document held entirely in memory.
// Each page renders as a flat tint derived from its stored shade, so
// pages stay distinguishable without carrying image payloads.
type MemoryDocument struct {
	pages []memPage
}

// PageCount implements Document.
func (d *MemoryDocument) PageCount() int { return len(d.pages) }

// PageDimensions implements Document.
func (d *MemoryDocument) PageDimensions(index int) (Dims, error) {
	if index < 0 || index >= len(d.pages) {
		return Dims{}, fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, index, len(d.pages))
	}
	p := d.pages[index]
	return Dims{Width: p.Width, Height: p.Height}, nil
}

// PageRotation returns the stored rotation of a page.
func (d *MemoryDocument) PageRotation(index int) (int, error) {
	if index < 0 || index >= len(d.pages) {
		return 0, fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, index, len(d.pages))
	}
	return d.pages[index].Rotation, nil
}

// RenderPage implements Document by synthesizing a flat raster at a
// fixed small size.
func (d *MemoryDocument) RenderPage(index int) (image.Image, error) {
	if index < 0 || index >= len(d.pages) {
		return nil, fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, index, len(d.pages))
	}
	p := d.pages[index]
	img := image.NewRGBA(image.Rect(0, 0, 32, 44))
	for y := 0; y < 44; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{p.Shade, p.Shade, 255, 255})
		}
	}
	return img, nil
}

// Memory implements Codec without any container framing: documents
// serialize as a bare JSON page list. It backs tests and demos that do
// not need the deck format's compression or rasters.
type Memory struct{}

// NewMemory returns the in-memory codec.
func NewMemory() Memory { return Memory{} }

// Name implements Codec.
func (Memory) Name() string { return "mem" }

// Load implements Codec.
func (Memory) Load(ctx context.Context, data []byte) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var pages []memPage
	if err := json.Unmarshal(data, &pages); err != nil {
		return nil, fmt.Errorf("%w: page list: %w", ErrCorrupt, err)
	}
	if len(pages) == 0 {
		return nil, ErrEmptyDocument
	}
	return &MemoryDocument{pages: pages}, nil
}

// CopyPages implements Codec. Foreign documents are copied by
// dimensions only; their rasters do not survive the trip.
func (Memory) CopyPages(ctx context.Context, src Document, indices []int) (Document, error) {
	if len(indices) == 0 {
		return nil, ErrEmptyDocument
	}
	out := &MemoryDocument{pages: make([]memPage, 0, len(indices))}

	mem, native := src.(*MemoryDocument)
	for _, idx := range indices {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if idx < 0 || idx >= src.PageCount() {
			return nil, fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, idx, src.PageCount())
		}
		if native {
			out.pages = append(out.pages, mem.pages[idx])
			continue
		}
		dims, err := src.PageDimensions(idx)
		if err != nil {
			return nil, err
		}
		out.pages = append(out.pages, memPage{Width: dims.Width, Height: dims.Height})
	}
	return out, nil
}

// SetPageRotation implements Codec.
func (Memory) SetPageRotation(doc Document, index, degrees int) error {
	d, ok := doc.(*MemoryDocument)
	if !ok {
		return ErrForeignDocument
	}
	if index < 0 || index >= len(d.pages) {
		return fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, index, len(d.pages))
	}
	switch degrees {
	case 0, 90, 180, 270:
	default:
		return fmt.Errorf("invalid rotation %d", degrees)
	}
	d.pages[index].Rotation = degrees
	return nil
}

// Save implements Codec.
func (Memory) Save(ctx context.Context, doc Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d, ok := doc.(*MemoryDocument)
	if !ok {
		return nil, ErrForeignDocument
	}
	out, err := json.Marshal(d.pages)
	if err != nil {
		return nil, fmt.Errorf("page list: %w", err)
	}
	return out, nil
}

// NewMemoryDocument builds an n-page in-memory document, every page at
// the given size, shades varying with the index.
func NewMemoryDocument(n int, dims Dims) *MemoryDocument {
	d := &MemoryDocument{pages: make([]memPage, 0, n)}
	for i := 0; i < n; i++ {
		d.pages = append(d.pages, memPage{
			Width:  dims.Width,
			Height: dims.Height,
			Shade:  uint8(255 - (i*29)%200),
		})
	}
	return d
}
