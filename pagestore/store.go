// Package pagestore holds the live, editable page sequence of one
// document: an ordered list of page descriptors, an ephemeral selection
// set, and a bounded undo/redo history of full-state snapshots.
//
// Structural mutations (delete, rotate, reorder) each produce a new
// immutable DocumentState and record a snapshot; selection changes
// never touch history. Thumbnail handles are reference-counted and
// shared between the live state, history snapshots, and the thumbnail
// cache, so evicting any one owner can never invalidate the others.
package pagestore

import (
	"context"
	"fmt"

	"github.com/pagedeck/pagedeck/codec"
	"github.com/pagedeck/pagedeck/observability"
	"github.com/pagedeck/pagedeck/progress"
	"github.com/pagedeck/pagedeck/thumbcache"
)

// Config configures a Store. The zero value is usable.
type Config struct {
	// MaxHistory bounds the undo depth; 0 means MaxHistory (20).
	MaxHistory int
	// Cache holds rendered thumbnails. A private cache with default
	// bounds is created when nil.
	Cache *thumbcache.Cache
	// Renderer produces thumbnails from page rasters.
	Renderer thumbcache.Renderer
	// HashAlgorithm selects the fingerprint hash (thumbcache.AlgXXHash3
	// when 0).
	HashAlgorithm int
	Logger        observability.Logger
}

// Store is the page-editing engine for one loaded document. It is not
// safe for concurrent use; all operations run on the editor's event
// loop.
type Store struct {
	cfg      Config
	logger   observability.Logger
	codec    codec.Codec
	cache    *thumbcache.Cache
	renderer thumbcache.Renderer

	doc       codec.Document
	fp        thumbcache.Fingerprinter
	state     DocumentState
	selection map[PageID]struct{}
	history   *History
	nextID    PageID
}

// New builds a Store that loads documents through c.
func New(c codec.Codec, cfg Config) *Store {
	if cfg.Logger == nil {
		cfg.Logger = observability.NopLogger{}
	}
	cache := cfg.Cache
	if cache == nil {
		cache = thumbcache.New(thumbcache.Config{Logger: cfg.Logger})
	}
	return &Store{
		cfg:       cfg,
		logger:    cfg.Logger,
		codec:     c,
		cache:     cache,
		renderer:  cfg.Renderer,
		selection: make(map[PageID]struct{}),
		history:   NewHistory(cfg.MaxHistory, cfg.Logger),
	}
}

// Load parses data and replaces the store's contents with the new
// document: fresh descriptors, empty selection, history reset to the
// loaded state. On failure or cancellation the store keeps its previous
// contents untouched. rep may be nil.
func (s *Store) Load(ctx context.Context, data []byte, rep *progress.Reporter) error {
	if rep == nil {
		rep = progress.NewReporter(nil, s.logger)
	}
	rep.Loading("opening document")

	doc, err := s.codec.Load(ctx, data)
	if err != nil {
		if ctx.Err() != nil {
			// Cancellation is not a failure; no event, no state change.
			return ctx.Err()
		}
		rep.Failed(err.Error())
		return fmt.Errorf("load: %w", err)
	}

	total := doc.PageCount()
	pages := make([]PageDescriptor, 0, total)
	nextID := s.nextID
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			// Cancelled: nothing built so far owns resources yet, the
			// previous state stays live.
			return err
		}
		dims, err := doc.PageDimensions(i)
		if err != nil {
			rep.Failed(err.Error())
			return fmt.Errorf("load: page %d: %w", i, err)
		}
		d := dims
		nextID++
		pages = append(pages, PageDescriptor{
			ID:            nextID,
			SourceIndex:   i,
			DisplayNumber: i + 1,
			Dims:          &d,
		})
		rep.Processing(i+1, total, fmt.Sprintf("page %d of %d", i+1, total))
	}
	rep.Finalizing("preparing editor")

	// Commit point: from here on the previous document is gone.
	s.state.release()
	s.history.Clear()
	s.cache.Clear()
	s.selection = make(map[PageID]struct{})

	s.doc = doc
	s.fp = thumbcache.NewFingerprinter(data, s.cfg.HashAlgorithm)
	s.state = DocumentState{pages: pages}
	s.nextID = nextID
	s.history.Push(s.state.clone(), "load")

	rep.Completed(fmt.Sprintf("%d pages", total))
	s.logger.Info("document loaded",
		observability.Int("pages", total),
		observability.Int64("bytes", int64(len(data))))
	return nil
}

// Loaded reports whether a document is loaded.
func (s *Store) Loaded() bool { return s.doc != nil }

// Doc returns the loaded source document, or nil.
func (s *Store) Doc() codec.Document { return s.doc }

// State returns the live document state. Descriptors and handles in it
// are borrowed views.
func (s *Store) State() DocumentState { return s.state }

// Pages returns a copy of the live descriptor sequence.
func (s *Store) Pages() []PageDescriptor { return s.state.Pages() }

// commit installs next as the live state and records a history
// snapshot.
func (s *Store) commit(next DocumentState, label string) {
	old := s.state
	s.state = next
	old.release()
	s.history.Push(next.clone(), label)
	s.logger.Debug("mutation committed",
		observability.String("label", label),
		observability.Int("history", s.history.Len()))
}

// Rotate turns one page 90 degrees in the given direction. Rotating a
// missing page is a no-op returning false. Four same-direction
// rotations are the identity.
func (s *Store) Rotate(id PageID, clockwise bool) bool {
	i := s.state.index(id)
	if i < 0 {
		return false
	}
	next := s.state.clone()
	rotatePage(&next.pages[i], clockwise)

	dir := "counter-clockwise"
	if clockwise {
		dir = "clockwise"
	}
	s.commit(next, fmt.Sprintf("rotate page %d %s", s.state.pages[i].DisplayNumber, dir))
	return true
}

// RotateSelected rotates every selected page, recording a single
// history entry for the batch. It returns the number of pages rotated;
// an empty selection is a no-op.
func (s *Store) RotateSelected(clockwise bool) int {
	if len(s.selection) == 0 {
		return 0
	}
	next := s.state.clone()
	n := 0
	for i := range next.pages {
		if _, ok := s.selection[next.pages[i].ID]; ok {
			rotatePage(&next.pages[i], clockwise)
			n++
		}
	}
	dir := "counter-clockwise"
	if clockwise {
		dir = "clockwise"
	}
	s.commit(next, fmt.Sprintf("rotate %d pages %s", n, dir))
	return n
}

// rotatePage applies a quarter turn and drops the now-stale thumbnail
// reference; the rotated thumbnail re-renders lazily.
func rotatePage(d *PageDescriptor, clockwise bool) {
	step := 90
	if !clockwise {
		step = -90
	}
	d.Rotation = normalizeRotation(d.Rotation + step)
	if d.Thumb != nil {
		d.Thumb.Release()
		d.Thumb = nil
	}
}

// Delete removes one page. The live copy's thumbnail reference is
// released immediately; snapshots in history keep their own. Deleting
// a missing page is a no-op returning false.
func (s *Store) Delete(id PageID) bool {
	i := s.state.index(id)
	if i < 0 {
		return false
	}
	display := s.state.pages[i].DisplayNumber

	next := s.state.clone()
	if next.pages[i].Thumb != nil {
		next.pages[i].Thumb.Release()
	}
	next.pages = append(next.pages[:i], next.pages[i+1:]...)
	next.renumber()

	delete(s.selection, id)
	s.commit(next, fmt.Sprintf("delete page %d", display))
	return true
}

// DeleteSelected removes every selected page in one history entry and
// returns the number removed. An empty selection is a no-op.
func (s *Store) DeleteSelected() int {
	if len(s.selection) == 0 {
		return 0
	}
	next := s.state.clone()
	kept := next.pages[:0]
	n := 0
	for i := range next.pages {
		if _, ok := s.selection[next.pages[i].ID]; ok {
			if next.pages[i].Thumb != nil {
				next.pages[i].Thumb.Release()
			}
			n++
			continue
		}
		kept = append(kept, next.pages[i])
	}
	next.pages = kept
	next.renumber()

	s.selection = make(map[PageID]struct{})
	s.commit(next, fmt.Sprintf("delete %d pages", n))
	return n
}

// Reorder moves the page at fromIndex to toIndex, preserving the
// relative order of all other pages. Equal or out-of-bounds indices are
// a no-op returning false, with no history entry.
func (s *Store) Reorder(fromIndex, toIndex int) bool {
	n := len(s.state.pages)
	if fromIndex == toIndex || fromIndex < 0 || fromIndex >= n || toIndex < 0 || toIndex >= n {
		return false
	}
	next := s.state.clone()
	moved := next.pages[fromIndex]
	next.pages = append(next.pages[:fromIndex], next.pages[fromIndex+1:]...)

	rest := next.pages
	next.pages = make([]PageDescriptor, 0, n)
	next.pages = append(next.pages, rest[:toIndex]...)
	next.pages = append(next.pages, moved)
	next.pages = append(next.pages, rest[toIndex:]...)
	next.renumber()

	s.commit(next, fmt.Sprintf("move page %d to position %d", fromIndex+1, toIndex+1))
	return true
}

// ToggleSelect flips one page's membership in the selection set and
// returns the new membership. Selection never touches history.
func (s *Store) ToggleSelect(id PageID) bool {
	if s.state.index(id) < 0 {
		return false
	}
	if _, ok := s.selection[id]; ok {
		delete(s.selection, id)
		return false
	}
	s.selection[id] = struct{}{}
	return true
}

// SelectAll selects every live page.
func (s *Store) SelectAll() {
	for i := range s.state.pages {
		s.selection[s.state.pages[i].ID] = struct{}{}
	}
}

// ClearSelection empties the selection set.
func (s *Store) ClearSelection() {
	s.selection = make(map[PageID]struct{})
}

// IsSelected reports selection membership.
func (s *Store) IsSelected(id PageID) bool {
	_, ok := s.selection[id]
	return ok
}

// Selected returns the selected ids in display order.
func (s *Store) Selected() []PageID {
	ids := make([]PageID, 0, len(s.selection))
	for i := range s.state.pages {
		if _, ok := s.selection[s.state.pages[i].ID]; ok {
			ids = append(ids, s.state.pages[i].ID)
		}
	}
	return ids
}

// SelectionCount returns the number of selected pages.
func (s *Store) SelectionCount() int { return len(s.selection) }

// CanUndo reports whether Undo would change state.
func (s *Store) CanUndo() bool { return s.history.CanUndo() }

// CanRedo reports whether Redo would change state.
func (s *Store) CanRedo() bool { return s.history.CanRedo() }

// Undo restores the previous snapshot. The restore is a deep copy, so
// later edits cannot corrupt history. Selection entries for pages
// absent from the restored state are dropped. Returns false with no
// effect when there is nothing to undo.
func (s *Store) Undo() bool {
	st, ok := s.history.Undo()
	if !ok {
		return false
	}
	old := s.state
	s.state = st
	old.release()
	s.pruneSelection()
	return true
}

// Redo restores the next snapshot, symmetric to Undo.
func (s *Store) Redo() bool {
	st, ok := s.history.Redo()
	if !ok {
		return false
	}
	old := s.state
	s.state = st
	old.release()
	s.pruneSelection()
	return true
}

func (s *Store) pruneSelection() {
	for id := range s.selection {
		if s.state.index(id) < 0 {
			delete(s.selection, id)
		}
	}
}

// History exposes the undo stack for inspection.
func (s *Store) History() *History { return s.history }

// Thumbnail returns a borrowed preview handle for one page, rendering
// and caching it on first use. The handle stays valid until the page is
// deleted, rotated, or the document unloaded; callers keeping it longer
// must Retain their own reference.
func (s *Store) Thumbnail(id PageID) (*thumbcache.Handle, error) {
	i := s.state.index(id)
	if i < 0 {
		return nil, fmt.Errorf("page %d not found", id)
	}
	d := &s.state.pages[i]
	if d.Thumb != nil {
		return d.Thumb, nil
	}

	key := s.fp.PageKey(d.SourceIndex, d.Rotation)
	if h, ok := s.cache.Get(key); ok {
		d.Thumb = h.Retain()
		return d.Thumb, nil
	}

	img, err := s.doc.RenderPage(d.SourceIndex)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", d.DisplayNumber, err)
	}
	h := s.renderer.Render(thumbcache.RotateImage(img, d.Rotation))
	s.cache.Set(key, h.Retain())
	d.Thumb = h
	return h, nil
}

// Cache exposes the thumbnail cache.
func (s *Store) Cache() *thumbcache.Cache { return s.cache }

// Clear unloads the document, releasing the live state, every history
// snapshot, and the thumbnail cache.
func (s *Store) Clear() {
	s.state.release()
	s.history.Clear()
	s.cache.Clear()
	s.selection = make(map[PageID]struct{})
	s.doc = nil
}
