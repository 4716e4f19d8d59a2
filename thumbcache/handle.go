package thumbcache

import "image"

// Handle is a reference-counted preview resource. The cache, the live
// page descriptors, and history snapshots each hold their own reference;
// the underlying pixels are freed exactly once, when the last reference
// is released.
//
// Handles are not safe for concurrent use. All mutation happens on the
// editor's event loop.
type Handle struct {
	img    image.Image
	onFree func()
	refs   int
}

// NewHandle wraps a rendered thumbnail with an initial reference count
// of one. onFree, if non-nil, runs when the final reference is released.
func NewHandle(img image.Image, onFree func()) *Handle {
	return &Handle{img: img, onFree: onFree, refs: 1}
}

// Retain adds a reference and returns the handle for chaining.
func (h *Handle) Retain() *Handle {
	if h.refs <= 0 {
		panic("thumbcache: retain of freed handle")
	}
	h.refs++
	return h
}

// Release drops one reference. The final release frees the pixels and
// runs the onFree hook. Releasing a freed handle panics: both sides of
// an ownership transfer releasing the same reference is a bug, not a
// recoverable condition.
func (h *Handle) Release() {
	if h.refs <= 0 {
		panic("thumbcache: release of freed handle")
	}
	h.refs--
	if h.refs == 0 {
		h.img = nil
		if h.onFree != nil {
			h.onFree()
		}
	}
}

// Image returns the thumbnail pixels, or nil after the final release.
func (h *Handle) Image() image.Image { return h.img }

// Freed reports whether the final reference has been released.
func (h *Handle) Freed() bool { return h.refs <= 0 }

// Refs returns the current reference count.
func (h *Handle) Refs() int { return h.refs }
