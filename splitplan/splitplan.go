// Package splitplan computes deterministic page groupings for splitting a
// document. Three methods are supported: explicit page ranges, N roughly
// equal parts, and fixed-size chunks of K pages. Planning is pure:
// identical inputs always produce identical groups in identical order.
package splitplan

import (
	"fmt"

	"github.com/pagedeck/pagedeck/pagerange"
)

// Method selects the grouping strategy.
type Method int

const (
	// ByRanges groups pages according to an explicit range expression.
	ByRanges Method = iota
	// EqualParts divides the document into N contiguous parts of equal
	// size, the last part truncated to the remainder.
	EqualParts
	// EveryN chunks the document into groups of exactly K pages, the
	// last group truncated.
	EveryN
)

func (m Method) String() string {
	switch m {
	case ByRanges:
		return "ranges"
	case EqualParts:
		return "equal-parts"
	case EveryN:
		return "every-n"
	}
	return fmt.Sprintf("method(%d)", int(m))
}

// Params carries the method-specific input. Ranges is consulted by
// ByRanges, Parts by EqualParts, PagesPerGroup by EveryN.
type Params struct {
	Ranges        string
	Parts         int
	PagesPerGroup int
}

// Group is one output document of a split: the 0-based source page
// indices it contains, in order, and the label used to name it.
type Group struct {
	PageIndices []int
	Label       string
}

// Result reports either a usable plan or the validation problems that
// prevented one. Problems are data, not errors: a UI shows them before
// any split is attempted.
type Result struct {
	Valid  bool
	Groups []Group
	Errors []string
}

// Plan computes the page grouping for the given method. totalPages must
// be positive; parameter violations are reported in the Result rather
// than returned as an error.
func Plan(method Method, totalPages int, params Params) Result {
	if totalPages < 1 {
		return invalid("document has no pages")
	}
	switch method {
	case ByRanges:
		return planRanges(totalPages, params.Ranges)
	case EqualParts:
		return planEqualParts(totalPages, params.Parts)
	case EveryN:
		return planEveryN(totalPages, params.PagesPerGroup)
	}
	return invalid(fmt.Sprintf("unknown split method %d", int(method)))
}

func invalid(msgs ...string) Result {
	return Result{Errors: msgs}
}

func planRanges(totalPages int, expr string) Result {
	parsed := pagerange.Parse(expr, totalPages)
	if !parsed.Valid {
		res := Result{}
		for _, e := range parsed.Errors {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %s", e.Segment, e.Message))
		}
		if len(res.Errors) == 0 {
			res.Errors = append(res.Errors, "no page ranges specified")
		}
		return res
	}
	if len(parsed.Ranges) == 0 {
		return invalid("no page ranges specified")
	}

	groups := make([]Group, 0, len(parsed.Ranges))
	for _, r := range parsed.Ranges {
		indices := make([]int, 0, r.Pages())
		for p := r.Start; p <= r.End; p++ {
			indices = append(indices, p-1)
		}
		groups = append(groups, Group{PageIndices: indices, Label: r.Label()})
	}
	return Result{Valid: true, Groups: groups}
}

func planEqualParts(totalPages, parts int) Result {
	if parts < 2 || parts > totalPages {
		return invalid(fmt.Sprintf("part count must be between 2 and %d", totalPages))
	}

	perPart := (totalPages + parts - 1) / parts
	var groups []Group
	for start, k := 0, 1; start < totalPages; start, k = start+perPart, k+1 {
		end := start + perPart
		if end > totalPages {
			end = totalPages
		}
		indices := make([]int, 0, end-start)
		for i := start; i < end; i++ {
			indices = append(indices, i)
		}
		groups = append(groups, Group{PageIndices: indices, Label: fmt.Sprintf("part%d", k)})
	}
	return Result{Valid: true, Groups: groups}
}

func planEveryN(totalPages, per int) Result {
	if per < 1 || per > totalPages {
		return invalid(fmt.Sprintf("pages per group must be between 1 and %d", totalPages))
	}

	var groups []Group
	for start := 0; start < totalPages; start += per {
		end := start + per
		if end > totalPages {
			end = totalPages
		}
		indices := make([]int, 0, end-start)
		for i := start; i < end; i++ {
			indices = append(indices, i)
		}
		label := pagerange.Range{Start: start + 1, End: end}.Label()
		groups = append(groups, Group{PageIndices: indices, Label: label})
	}
	return Result{Valid: true, Groups: groups}
}
