// Package codec defines the boundary to the byte-level document
// backend: loading raw bytes into an ordered page collection, copying
// pages into a new document, rotating pages, and saving back to bytes.
// The page editor treats every implementation as a black box; the
// bundled deck container is enough for tests and the CLI, while real
// formats plug in behind the same interface.
package codec

import (
	"context"
	"errors"
	"image"
)

// Sentinel errors for programmatic handling.
var (
	ErrCorrupt         = errors.New("corrupt document")
	ErrPageOutOfRange  = errors.New("page index out of range")
	ErrUnsupported     = errors.New("operation unsupported by this codec")
	ErrEmptyDocument   = errors.New("document has no pages")
	ErrForeignDocument = errors.New("document belongs to another codec")
)

// Dims is a page size in points.
type Dims struct {
	Width  float64
	Height float64
}

// Document is a loaded document: an ordered, immutable collection of
// pages.
type Document interface {
	// PageCount returns the number of pages.
	PageCount() int
	// PageDimensions returns the size of page index (0-based).
	PageDimensions(index int) (Dims, error)
	// RenderPage rasterizes page index for preview purposes.
	RenderPage(index int) (image.Image, error)
}

// Codec loads, assembles, and saves documents of one format.
type Codec interface {
	// Name identifies the format, e.g. "deck".
	Name() string
	// Load parses raw bytes into a Document.
	Load(ctx context.Context, data []byte) (Document, error)
	// CopyPages builds a new document from the listed 0-based pages of
	// src, in the given order. Indices may repeat.
	CopyPages(ctx context.Context, src Document, indices []int) (Document, error)
	// SetPageRotation sets the stored rotation of a page in a document
	// produced by CopyPages. degrees must be 0, 90, 180 or 270.
	SetPageRotation(doc Document, index, degrees int) error
	// Save serializes a document back to bytes.
	Save(ctx context.Context, doc Document) ([]byte, error)
}
