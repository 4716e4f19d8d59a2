// Package exporter turns the live page arrangement into output
// documents: a full export of the edited document, an extract of
// selected ranges, or a multi-part split. Pages stream through the
// codec while progress is reported per page; cancellation aborts
// cleanly, discarding partial output and leaving the store untouched.
package exporter

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pagedeck/pagedeck/codec"
	"github.com/pagedeck/pagedeck/observability"
	"github.com/pagedeck/pagedeck/pagestore"
	"github.com/pagedeck/pagedeck/progress"
	"github.com/pagedeck/pagedeck/splitplan"
)

// Artifact is one produced output document plus its metadata.
type Artifact struct {
	Filename       string `json:"filename"`
	PageRangeLabel string `json:"pageRangeLabel"`
	SizeBytes      int64  `json:"sizeBytes"`
	PageCount      int    `json:"pageCount"`
	Data           []byte `json:"-"`
}

// ValidationError carries the per-segment problems that made an export
// request unusable. It is a user input problem, not an operational
// failure.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid export request: " + strings.Join(e.Problems, "; ")
}

// Exporter runs export and split operations against one codec. At most
// one run is in flight at a time: starting a new run cancels the
// previous one and waits for it to wind down before touching anything.
type Exporter struct {
	codec  codec.Codec
	logger observability.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New builds an Exporter. logger may be nil.
func New(c codec.Codec, logger observability.Logger) *Exporter {
	if logger == nil {
		logger = observability.NopLogger{}
	}
	return &Exporter{codec: c, logger: logger}
}

// begin enforces the single-flight rule and returns the run context
// plus its completion func.
func (e *Exporter) begin(ctx context.Context) (context.Context, func()) {
	e.mu.Lock()
	for e.cancel != nil {
		cancel, done := e.cancel, e.done
		e.mu.Unlock()
		cancel()
		<-done
		e.mu.Lock()
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	e.cancel, e.done = cancel, done
	e.mu.Unlock()

	return runCtx, func() {
		e.mu.Lock()
		if e.done == done {
			e.cancel, e.done = nil, nil
		}
		e.mu.Unlock()
		cancel()
		close(done)
	}
}

// pageSpec is one output page: where it comes from and how it is
// turned.
type pageSpec struct {
	sourceIndex int
	rotation    int
}

// ExportCurrent saves the store's live arrangement (current order,
// deletions applied, rotations baked in) as a single artifact named
// baseName. emit may be nil.
func (e *Exporter) ExportCurrent(ctx context.Context, store *pagestore.Store, baseName string, emit progress.Func) (Artifact, error) {
	if !store.Loaded() {
		return Artifact{}, fmt.Errorf("no document loaded")
	}
	pages := store.Pages()
	specs := make([]pageSpec, len(pages))
	for i, p := range pages {
		specs[i] = pageSpec{sourceIndex: p.SourceIndex, rotation: p.Rotation}
	}

	ctx, end := e.begin(ctx)
	defer end()

	rep := progress.NewReporter(emit, e.logger)
	rep.Loading("preparing export")
	art, err := e.assemble(ctx, store.Doc(), specs, baseName, "", rep, 0, len(specs))
	if err != nil {
		return Artifact{}, err
	}
	rep.Finalizing("encoding")
	rep.Completed(art.Filename)
	return art, nil
}

// ExportRanges extracts the pages matched by expr (1-based positions in
// the current display order) into a single artifact. Rotations of the
// live pages are preserved. Invalid expressions return a
// *ValidationError.
func (e *Exporter) ExportRanges(ctx context.Context, store *pagestore.Store, expr, baseName string, emit progress.Func) (Artifact, error) {
	if !store.Loaded() {
		return Artifact{}, fmt.Errorf("no document loaded")
	}
	pages := store.Pages()
	plan := splitplan.Plan(splitplan.ByRanges, len(pages), splitplan.Params{Ranges: expr})
	if !plan.Valid {
		return Artifact{}, &ValidationError{Problems: plan.Errors}
	}

	var specs []pageSpec
	var labels []string
	for _, g := range plan.Groups {
		labels = append(labels, g.Label)
		for _, idx := range g.PageIndices {
			specs = append(specs, pageSpec{sourceIndex: pages[idx].SourceIndex, rotation: pages[idx].Rotation})
		}
	}

	ctx, end := e.begin(ctx)
	defer end()

	rep := progress.NewReporter(emit, e.logger)
	rep.Loading("preparing extract")
	art, err := e.assemble(ctx, store.Doc(), specs, baseName, strings.Join(labels, ","), rep, 0, len(specs))
	if err != nil {
		return Artifact{}, err
	}
	rep.Finalizing("encoding")
	rep.Completed(art.Filename)
	return art, nil
}

// Split produces one artifact per plan group. Group page indices are
// 1-based-display-order positions mapped through the live arrangement,
// so splitting after deletes and reorders sees the edited document.
// Invalid plans return a *ValidationError.
func (e *Exporter) Split(ctx context.Context, store *pagestore.Store, method splitplan.Method, params splitplan.Params, baseName string, emit progress.Func) ([]Artifact, error) {
	if !store.Loaded() {
		return nil, fmt.Errorf("no document loaded")
	}
	pages := store.Pages()
	plan := splitplan.Plan(method, len(pages), params)
	if !plan.Valid {
		return nil, &ValidationError{Problems: plan.Errors}
	}

	ctx, end := e.begin(ctx)
	defer end()

	rep := progress.NewReporter(emit, e.logger)
	rep.Loading(fmt.Sprintf("splitting into %d parts", len(plan.Groups)))

	total := 0
	for _, g := range plan.Groups {
		total += len(g.PageIndices)
	}

	artifacts := make([]Artifact, 0, len(plan.Groups))
	pagesDone := 0
	for _, g := range plan.Groups {
		specs := make([]pageSpec, len(g.PageIndices))
		for i, idx := range g.PageIndices {
			specs[i] = pageSpec{sourceIndex: pages[idx].SourceIndex, rotation: pages[idx].Rotation}
		}
		name := fmt.Sprintf("%s_%s", baseName, g.Label)
		art, err := e.assemble(ctx, store.Doc(), specs, name, g.Label, rep, pagesDone, total)
		if err != nil {
			// Partial results are discarded; the caller sees either the
			// whole split or nothing.
			return nil, err
		}
		artifacts = append(artifacts, art)
		pagesDone += len(specs)
	}

	rep.Finalizing("encoding")
	rep.Completed(fmt.Sprintf("%d parts", len(artifacts)))
	e.logger.Info("split finished",
		observability.Int("parts", len(artifacts)),
		observability.Int("pages", total))
	return artifacts, nil
}

// Cancel aborts any in-flight run and waits for it to finish.
func (e *Exporter) Cancel() {
	e.mu.Lock()
	cancel, done := e.cancel, e.done
	e.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
}

// assemble copies the given pages into a new document, applies their
// rotations, and saves it. done/total position the per-page progress
// inside a possibly larger run.
func (e *Exporter) assemble(ctx context.Context, src codec.Document, specs []pageSpec, baseName, label string, rep *progress.Reporter, done, total int) (Artifact, error) {
	indices := make([]int, len(specs))
	for i, sp := range specs {
		if err := ctx.Err(); err != nil {
			return Artifact{}, err
		}
		indices[i] = sp.sourceIndex
		rep.Processing(done+i+1, total, fmt.Sprintf("page %d of %d", done+i+1, total))
	}

	out, err := e.codec.CopyPages(ctx, src, indices)
	if err != nil {
		if ctx.Err() == nil {
			rep.Failed(err.Error())
		}
		return Artifact{}, fmt.Errorf("copying pages: %w", err)
	}
	for i, sp := range specs {
		if sp.rotation == 0 {
			continue
		}
		if err := e.codec.SetPageRotation(out, i, sp.rotation); err != nil {
			rep.Failed(err.Error())
			return Artifact{}, fmt.Errorf("rotating page %d: %w", i, err)
		}
	}

	data, err := e.codec.Save(ctx, out)
	if err != nil {
		if ctx.Err() == nil {
			rep.Failed(err.Error())
		}
		return Artifact{}, fmt.Errorf("saving: %w", err)
	}

	return Artifact{
		Filename:       fmt.Sprintf("%s.%s", baseName, e.codec.Name()),
		PageRangeLabel: label,
		SizeBytes:      int64(len(data)),
		PageCount:      len(specs),
		Data:           data,
	}, nil
}
