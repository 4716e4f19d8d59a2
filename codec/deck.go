// Deck is a minimal single-file document container used by the tests
// and the CLI: a magic header, then a Zstd-compressed JSON manifest
// carrying per-page dimensions, rotation, and a PNG raster.
package codec

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
)

// deckMagic prefixes every serialized deck container.
var deckMagic = []byte("DECK1\n")

// Shared encoder/decoder, allocated once: zstd encoder construction is
// expensive relative to compressing a small manifest. Both are safe for
// concurrent use.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	zstdDecoder, _ = zstd.NewReader(nil)
)

type deckPage struct {
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation int     `json:"rotation"`
	PNG      []byte  `json:"png,omitempty"`
}

type deckManifest struct {
	Version int        `json:"version"`
	Pages   []deckPage `json:"pages"`
}

// DeckDocument is a deck container held in memory.
type DeckDocument struct {
	pages []deckPage
}

// PageCount implements Document.
func (d *DeckDocument) PageCount() int { return len(d.pages) }

// PageDimensions implements Document.
func (d *DeckDocument) PageDimensions(index int) (Dims, error) {
	if index < 0 || index >= len(d.pages) {
		return Dims{}, fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, index, len(d.pages))
	}
	p := d.pages[index]
	return Dims{Width: p.Width, Height: p.Height}, nil
}

// PageRotation returns the stored rotation of a page.
func (d *DeckDocument) PageRotation(index int) (int, error) {
	if index < 0 || index >= len(d.pages) {
		return 0, fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, index, len(d.pages))
	}
	return d.pages[index].Rotation, nil
}

// RenderPage implements Document by decoding the stored PNG raster.
// Pages without a raster render as a blank white rectangle.
func (d *DeckDocument) RenderPage(index int) (image.Image, error) {
	if index < 0 || index >= len(d.pages) {
		return nil, fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, index, len(d.pages))
	}
	p := d.pages[index]
	if len(p.PNG) == 0 {
		blank := image.NewRGBA(image.Rect(0, 0, int(p.Width), int(p.Height)))
		for i := range blank.Pix {
			blank.Pix[i] = 0xff
		}
		return blank, nil
	}
	img, err := png.Decode(bytes.NewReader(p.PNG))
	if err != nil {
		return nil, fmt.Errorf("%w: page %d raster: %w", ErrCorrupt, index, err)
	}
	return img, nil
}

// Deck implements Codec for the deck container format.
type Deck struct{}

// NewDeck returns the deck codec.
func NewDeck() Deck { return Deck{} }

// Name implements Codec.
func (Deck) Name() string { return "deck" }

// Load implements Codec.
func (Deck) Load(ctx context.Context, data []byte) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(data, deckMagic) {
		return nil, fmt.Errorf("%w: missing deck header", ErrCorrupt)
	}
	body, err := zstdDecoder.DecodeAll(data[len(deckMagic):], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %w", ErrCorrupt, err)
	}
	var m deckManifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("%w: manifest: %w", ErrCorrupt, err)
	}
	if len(m.Pages) == 0 {
		return nil, ErrEmptyDocument
	}
	return &DeckDocument{pages: m.Pages}, nil
}

// CopyPages implements Codec. Copying from another DeckDocument reuses
// the stored rasters; copying from a foreign Document re-encodes each
// page via RenderPage.
func (Deck) CopyPages(ctx context.Context, src Document, indices []int) (Document, error) {
	if len(indices) == 0 {
		return nil, ErrEmptyDocument
	}
	out := &DeckDocument{pages: make([]deckPage, 0, len(indices))}

	deck, native := src.(*DeckDocument)
	for _, idx := range indices {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if idx < 0 || idx >= src.PageCount() {
			return nil, fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, idx, src.PageCount())
		}
		if native {
			out.pages = append(out.pages, deck.pages[idx])
			continue
		}
		dims, err := src.PageDimensions(idx)
		if err != nil {
			return nil, err
		}
		img, err := src.RenderPage(idx)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encoding page %d: %w", idx, err)
		}
		out.pages = append(out.pages, deckPage{
			Width:  dims.Width,
			Height: dims.Height,
			PNG:    buf.Bytes(),
		})
	}
	return out, nil
}

// SetPageRotation implements Codec.
func (Deck) SetPageRotation(doc Document, index, degrees int) error {
	d, ok := doc.(*DeckDocument)
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
func (Deck) Save(ctx context.Context, doc Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d, ok := doc.(*DeckDocument)
	if !ok {
		return nil, ErrForeignDocument
	}
	body, err := json.Marshal(deckManifest{Version: 1, Pages: d.pages})
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	out := make([]byte, len(deckMagic), len(deckMagic)+len(body)/2)
	copy(out, deckMagic)
	return zstdEncoder.EncodeAll(body, out), nil
}

// GeneratePages builds a deck document of n pages for demos and tests.
// Each page carries a small raster whose shade varies with its index so
// pages remain distinguishable after reordering.
func GeneratePages(n int, dims Dims) *DeckDocument {
	d := &DeckDocument{pages: make([]deckPage, 0, n)}
	for i := 0; i < n; i++ {
		img := image.NewRGBA(image.Rect(0, 0, 32, 44))
		shade := uint8(255 - (i*29)%200)
		for y := 0; y < 44; y++ {
			for x := 0; x < 32; x++ {
				img.Set(x, y, color.RGBA{shade, shade, 255, 255})
			}
		}
		var buf bytes.Buffer
		_ = png.Encode(&buf, img)
		d.pages = append(d.pages, deckPage{
			Width:  dims.Width,
			Height: dims.Height,
			PNG:    buf.Bytes(),
		})
	}
	return d
}
