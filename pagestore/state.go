package pagestore

import (
	"github.com/pagedeck/pagedeck/codec"
	"github.com/pagedeck/pagedeck/thumbcache"
)

// PageID is a stable identity for one logical page. IDs are minted once
// at load from a monotonic counter, survive rotate and reorder, and are
// permanently retired by delete: an undo restores the prior descriptor
// by value, it never re-mints.
type PageID uint64

// PageDescriptor records one page of the live document.
type PageDescriptor struct {
	ID            PageID
	SourceIndex   int // position in the original document, immutable
	DisplayNumber int // position+1 in the live ordering, recomputed on reorder
	Rotation      int // 0, 90, 180 or 270
	Thumb         *thumbcache.Handle
	Dims          *codec.Dims
}

// DocumentState is the ordered page sequence at one point in time.
// Structural mutations produce a new state value; snapshots taken for
// history are independent deep copies. Each state owns one thumbnail
// reference per non-nil Thumb.
type DocumentState struct {
	pages []PageDescriptor
}

// Len returns the number of pages.
func (st DocumentState) Len() int { return len(st.pages) }

// Pages returns a copy of the descriptor sequence. Thumb handles in the
// copy are borrowed, not owned.
func (st DocumentState) Pages() []PageDescriptor {
	out := make([]PageDescriptor, len(st.pages))
	copy(out, st.pages)
	return out
}

// Page returns the descriptor with the given id.
func (st DocumentState) Page(id PageID) (PageDescriptor, bool) {
	i := st.index(id)
	if i < 0 {
		return PageDescriptor{}, false
	}
	return st.pages[i], true
}

func (st DocumentState) index(id PageID) int {
	for i := range st.pages {
		if st.pages[i].ID == id {
			return i
		}
	}
	return -1
}

// clone deep-copies the state, retaining a reference on every
// thumbnail, so the copy's lifetime is independent of the original.
func (st DocumentState) clone() DocumentState {
	pages := make([]PageDescriptor, len(st.pages))
	copy(pages, st.pages)
	for i := range pages {
		if pages[i].Thumb != nil {
			pages[i].Thumb.Retain()
		}
	}
	return DocumentState{pages: pages}
}

// release drops this state's thumbnail references. The state must not
// be used afterwards.
func (st *DocumentState) release() {
	for i := range st.pages {
		if st.pages[i].Thumb != nil {
			st.pages[i].Thumb.Release()
			st.pages[i].Thumb = nil
		}
	}
	st.pages = nil
}

// renumber recomputes DisplayNumber as position+1 across the sequence.
func (st *DocumentState) renumber() {
	for i := range st.pages {
		st.pages[i].DisplayNumber = i + 1
	}
}

// normalizeRotation maps any multiple of 90 into {0, 90, 180, 270}.
func normalizeRotation(deg int) int {
	return ((deg % 360) + 360) % 360
}
