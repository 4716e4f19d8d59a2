package thumbcache

import (
	"fmt"
	"image"
	"image/color"
	"testing"
	"time"
)

func testHandle(freed *int) *Handle {
	return NewHandle(image.NewRGBA(image.Rect(0, 0, 4, 4)), func() { *freed++ })
}

func TestCacheGetSet(t *testing.T) {
	c := New(Config{Capacity: 4})
	var freed int
	c.Set(Key(1), testHandle(&freed))

	h, ok := c.Get(Key(1))
	if !ok || h == nil {
		t.Fatalf("expected hit")
	}
	if _, ok := c.Get(Key(2)); ok {
		t.Fatalf("expected miss for absent key")
	}
	if freed != 0 {
		t.Fatalf("handle freed while cached")
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	now := time.Unix(0, 0)
	c := New(Config{Capacity: 4, TTL: time.Minute, Now: func() time.Time { return now }})

	var freed int
	c.Set(Key(1), testHandle(&freed))

	now = now.Add(59 * time.Second)
	if _, ok := c.Get(Key(1)); !ok {
		t.Fatalf("entry expired early")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get(Key(1)); ok {
		t.Fatalf("expected expired entry to miss")
	}
	if freed != 1 {
		t.Fatalf("expired handle should be released exactly once, got %d", freed)
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry still present")
	}
}

func TestCacheHitResetsTTL(t *testing.T) {
	now := time.Unix(0, 0)
	c := New(Config{Capacity: 4, TTL: time.Minute, Now: func() time.Time { return now }})

	var freed int
	c.Set(Key(1), testHandle(&freed))

	for i := 0; i < 5; i++ {
		now = now.Add(45 * time.Second)
		if _, ok := c.Get(Key(1)); !ok {
			t.Fatalf("access %d: entry expired despite regular reads", i)
		}
	}
}

func TestCacheEvictionPolicy(t *testing.T) {
	now := time.Unix(0, 0)
	c := New(Config{Capacity: 50, TTL: time.Hour, Now: func() time.Time { return now }})

	frees := make(map[int]*int)
	for i := 0; i < 50; i++ {
		var n int
		frees[i] = &n
		c.Set(Key(i), testHandle(&n))
		now = now.Add(time.Second)
	}

	// Touch everything except keys 7 and 13; 7 is older, so it ties at
	// access count zero with 13 and loses on age.
	for i := 0; i < 50; i++ {
		if i == 7 || i == 13 {
			continue
		}
		c.Get(Key(i))
	}

	var n int
	c.Set(Key(99), testHandle(&n))

	if c.Len() != 50 {
		t.Fatalf("expected capacity held at 50, got %d", c.Len())
	}
	if *frees[7] != 1 {
		t.Fatalf("expected key 7 evicted and released once, got %d", *frees[7])
	}
	if c.Contains(Key(7)) {
		t.Fatalf("victim still present")
	}
	if !c.Contains(Key(13)) {
		t.Fatalf("younger tie should survive")
	}
	total := 0
	for _, f := range frees {
		total += *f
	}
	if total != 1 {
		t.Fatalf("exactly one entry should be evicted, got %d releases", total)
	}
}

func TestCacheReplaceReleasesOld(t *testing.T) {
	c := New(Config{Capacity: 4})
	var freedA, freedB int
	c.Set(Key(1), testHandle(&freedA))
	c.Set(Key(1), testHandle(&freedB))

	if freedA != 1 {
		t.Fatalf("replaced handle should be released, got %d", freedA)
	}
	if freedB != 0 {
		t.Fatalf("new handle released prematurely")
	}
	if c.Len() != 1 {
		t.Fatalf("replacement should not grow the cache")
	}
}

func TestCacheClear(t *testing.T) {
	c := New(Config{Capacity: 10})
	var freed int
	for i := 0; i < 5; i++ {
		c.Set(Key(i), testHandle(&freed))
	}
	c.Clear()
	if freed != 5 {
		t.Fatalf("expected all 5 handles released, got %d", freed)
	}
	if c.Len() != 0 {
		t.Fatalf("cache not empty after clear")
	}
}

func TestHandleRefCounting(t *testing.T) {
	var freed int
	h := NewHandle(image.NewRGBA(image.Rect(0, 0, 2, 2)), func() { freed++ })

	h.Retain()
	h.Release()
	if freed != 0 || h.Freed() {
		t.Fatalf("handle freed while a reference remains")
	}
	h.Release()
	if freed != 1 || !h.Freed() {
		t.Fatalf("expected exactly one free, got %d", freed)
	}
	if h.Image() != nil {
		t.Fatalf("pixels should be dropped on final release")
	}
}

func TestHandleDoubleReleasePanics(t *testing.T) {
	h := NewHandle(image.NewRGBA(image.Rect(0, 0, 2, 2)), nil)
	h.Release()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on double release")
		}
	}()
	h.Release()
}

func TestFingerprinterKeys(t *testing.T) {
	doc := []byte("document bytes")
	f := NewFingerprinter(doc, 0)

	k1 := f.PageKey(0, 0)
	k2 := f.PageKey(1, 0)
	k3 := f.PageKey(0, 90)
	if k1 == k2 || k1 == k3 || k2 == k3 {
		t.Fatalf("page/rotation variants should produce distinct keys: %v %v %v", k1, k2, k3)
	}
	if f.PageKey(0, 0) != k1 {
		t.Fatalf("fingerprint not deterministic")
	}

	other := NewFingerprinter([]byte("other bytes"), 0)
	if other.PageKey(0, 0) == k1 {
		t.Fatalf("different documents should produce different keys")
	}
}

func TestFingerprinterBlake2b(t *testing.T) {
	doc := []byte("document bytes")
	a := NewFingerprinter(doc, AlgXXHash3).PageKey(3, 0)
	b := NewFingerprinter(doc, AlgBlake2b).PageKey(3, 0)
	if a == b {
		t.Fatalf("algorithms should disagree on key values")
	}
	if NewFingerprinter(doc, AlgBlake2b).PageKey(3, 0) != b {
		t.Fatalf("blake2b fingerprint not deterministic")
	}
}

func TestRendererScalesDown(t *testing.T) {
	r := Renderer{MaxEdge: 64}
	h := r.Render(image.NewRGBA(image.Rect(0, 0, 640, 480)))
	defer h.Release()

	b := h.Image().Bounds()
	if b.Dx() != 64 || b.Dy() != 48 {
		t.Fatalf("expected 64x48 thumbnail, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestRendererKeepsSmallImages(t *testing.T) {
	r := Renderer{MaxEdge: 256}
	src := image.NewRGBA(image.Rect(0, 0, 100, 40))
	h := r.Render(src)
	defer h.Release()

	b := h.Image().Bounds()
	if b.Dx() != 100 || b.Dy() != 40 {
		t.Fatalf("small source should keep its size, got %dx%d", b.Dx(), b.Dy())
	}
	if h.Image() == src {
		t.Fatalf("thumbnail must not alias the source raster")
	}
}

func TestRendererPortrait(t *testing.T) {
	r := Renderer{MaxEdge: 100}
	h := r.Render(image.NewRGBA(image.Rect(0, 0, 300, 600)))
	defer h.Release()

	b := h.Image().Bounds()
	if b.Dy() != 100 || b.Dx() != 50 {
		t.Fatalf("expected 50x100 thumbnail, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestRotateImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.RGBA{255, 0, 0, 255}) // red left
	src.Set(1, 0, color.RGBA{0, 0, 255, 255}) // blue right

	if got := RotateImage(src, 0); got != src {
		t.Fatalf("0 degrees should return the source unchanged")
	}

	r90 := RotateImage(src, 90)
	if b := r90.Bounds(); b.Dx() != 1 || b.Dy() != 2 {
		t.Fatalf("90 degrees: expected 1x2, got %dx%d", b.Dx(), b.Dy())
	}
	// Clockwise: the left (red) pixel ends up at the top.
	if r, _, _, _ := r90.At(0, 0).RGBA(); r != 0xffff {
		t.Errorf("90 degrees: expected red at top")
	}

	r180 := RotateImage(src, 180)
	if r, _, _, _ := r180.At(0, 0).RGBA(); r != 0 {
		t.Errorf("180 degrees: expected blue at left")
	}

	r270 := RotateImage(src, 270)
	if b := r270.Bounds(); b.Dx() != 1 || b.Dy() != 2 {
		t.Fatalf("270 degrees: expected 1x2, got %dx%d", b.Dx(), b.Dy())
	}
	if r, _, _, _ := r270.At(0, 1).RGBA(); r != 0xffff {
		t.Errorf("270 degrees: expected red at bottom")
	}

	if got := RotateImage(src, 450); got.Bounds().Dx() != 1 {
		t.Errorf("rotation should normalize beyond 360")
	}
}

func ExampleCache() {
	c := New(Config{Capacity: 2})
	c.Set(Key(1), NewHandle(image.NewRGBA(image.Rect(0, 0, 4, 4)), nil))
	_, hit := c.Get(Key(1))
	fmt.Println(hit)
	// Output: true
}
