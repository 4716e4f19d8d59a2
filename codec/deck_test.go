package codec

import (
	"context"
	"errors"
	"image"
	"testing"
)

func TestDeckRoundTrip(t *testing.T) {
	ctx := context.Background()
	deck := NewDeck()
	doc := GeneratePages(5, Dims{Width: 595, Height: 842})

	data, err := deck.Save(ctx, doc)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := deck.Load(ctx, data)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.PageCount() != 5 {
		t.Fatalf("expected 5 pages, got %d", loaded.PageCount())
	}
	dims, err := loaded.PageDimensions(3)
	if err != nil {
		t.Fatalf("dimensions failed: %v", err)
	}
	if dims.Width != 595 || dims.Height != 842 {
		t.Errorf("unexpected dims %+v", dims)
	}
	img, err := loaded.RenderPage(0)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if img.Bounds().Empty() {
		t.Errorf("rendered page is empty")
	}
}

func TestDeckLoadRejectsGarbage(t *testing.T) {
	deck := NewDeck()
	for _, data := range [][]byte{nil, []byte("not a deck"), []byte("DECK1\ncorrupt tail")} {
		_, err := deck.Load(context.Background(), data)
		if !errors.Is(err, ErrCorrupt) {
			t.Errorf("input %q: expected ErrCorrupt, got %v", data, err)
		}
	}
}

func TestDeckCopyPages(t *testing.T) {
	ctx := context.Background()
	deck := NewDeck()
	src := GeneratePages(6, Dims{Width: 595, Height: 842})

	out, err := deck.CopyPages(ctx, src, []int{4, 0, 2})
	if err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	if out.PageCount() != 3 {
		t.Fatalf("expected 3 pages, got %d", out.PageCount())
	}

	srcImg, _ := src.RenderPage(4)
	outImg, _ := out.RenderPage(0)
	if !samePixels(srcImg, outImg) {
		t.Errorf("copied page 0 should match source page 4")
	}
}

func samePixels(a, b image.Image) bool {
	if a.Bounds() != b.Bounds() {
		return false
	}
	for y := a.Bounds().Min.Y; y < a.Bounds().Max.Y; y++ {
		for x := a.Bounds().Min.X; x < a.Bounds().Max.X; x++ {
			ar, ag, ab, aa := a.At(x, y).RGBA()
			br, bg, bb, ba := b.At(x, y).RGBA()
			if ar != br || ag != bg || ab != bb || aa != ba {
				return false
			}
		}
	}
	return true
}

func TestDeckCopyPagesOutOfRange(t *testing.T) {
	deck := NewDeck()
	src := GeneratePages(3, Dims{Width: 100, Height: 100})
	_, err := deck.CopyPages(context.Background(), src, []int{0, 7})
	if !errors.Is(err, ErrPageOutOfRange) {
		t.Fatalf("expected ErrPageOutOfRange, got %v", err)
	}
	_, err = deck.CopyPages(context.Background(), src, nil)
	if !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestDeckSetPageRotation(t *testing.T) {
	deck := NewDeck()
	doc := GeneratePages(2, Dims{Width: 100, Height: 100})

	if err := deck.SetPageRotation(doc, 1, 270); err != nil {
		t.Fatalf("rotation failed: %v", err)
	}
	got, err := doc.PageRotation(1)
	if err != nil || got != 270 {
		t.Fatalf("expected rotation 270, got %d (%v)", got, err)
	}

	if err := deck.SetPageRotation(doc, 1, 45); err == nil {
		t.Errorf("expected error for rotation 45")
	}
	if err := deck.SetPageRotation(doc, 9, 90); !errors.Is(err, ErrPageOutOfRange) {
		t.Errorf("expected ErrPageOutOfRange, got %v", err)
	}
}

func TestDeckRotationSurvivesRoundTrip(t *testing.T) {
	ctx := context.Background()
	deck := NewDeck()
	doc := GeneratePages(2, Dims{Width: 100, Height: 100})
	_ = deck.SetPageRotation(doc, 0, 90)

	data, err := deck.Save(ctx, doc)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := deck.Load(ctx, data)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	got, err := loaded.(*DeckDocument).PageRotation(0)
	if err != nil || got != 90 {
		t.Fatalf("expected rotation 90 after round trip, got %d (%v)", got, err)
	}
}

func TestDeckLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDeck().Load(ctx, []byte("DECK1\n"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
