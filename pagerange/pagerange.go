// Package pagerange parses textual page-range expressions such as
// "1-3,5,8~10" against a known page count. Parsing never fails with an
// error: every malformed or out-of-range segment is reported in the
// Result so a UI can surface all problems at once.
package pagerange

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Range is a 1-based inclusive page range. Start <= End always holds for
// ranges produced by Parse.
type Range struct {
	Start int
	End   int
}

// Pages returns the number of pages covered by the range.
func (r Range) Pages() int { return r.End - r.Start + 1 }

// Label renders the range the way split outputs are named: "5" for a
// single page, "5-8" otherwise.
func (r Range) Label() string {
	if r.Start == r.End {
		return strconv.Itoa(r.Start)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// SegmentError reports one rejected segment of the input expression.
type SegmentError struct {
	Segment string
	Message string
}

// Result is the outcome of parsing a range expression.
// Ranges holds the accepted ranges sorted by start with overlapping and
// adjacent ranges merged. TotalSelected is the page count covered by the
// merged ranges. Valid is true only when the input was non-empty and
// every segment was accepted.
type Result struct {
	Valid         bool
	Ranges        []Range
	Errors        []SegmentError
	TotalSelected int
}

var segmentPattern = regexp.MustCompile(`^\d+([-~]\d+)?$`)

// Parse splits input on commas and validates each segment against
// totalPages. A single number selects one page; "a-b" and "a~b" select an
// inclusive range. Empty or whitespace-only input yields an invalid
// Result with no errors, distinct from a malformed expression.
func Parse(input string, totalPages int) Result {
	var res Result

	segments := 0
	for _, seg := range strings.Split(input, ",") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		segments++

		if !segmentPattern.MatchString(seg) {
			res.Errors = append(res.Errors, SegmentError{seg, "invalid format"})
			continue
		}

		r, err := parseSegment(seg)
		if err != "" {
			res.Errors = append(res.Errors, SegmentError{seg, err})
			continue
		}
		if r.Start < 1 {
			res.Errors = append(res.Errors, SegmentError{seg, "page numbers start at 1"})
			continue
		}
		if r.End < r.Start {
			res.Errors = append(res.Errors, SegmentError{seg, fmt.Sprintf("end page %d precedes start page %d", r.End, r.Start)})
			continue
		}
		if r.Start > totalPages || r.End > totalPages {
			res.Errors = append(res.Errors, SegmentError{seg, fmt.Sprintf("page out of range (document has %d pages)", totalPages)})
			continue
		}
		res.Ranges = append(res.Ranges, r)
	}

	res.Ranges = merge(res.Ranges)
	for _, r := range res.Ranges {
		res.TotalSelected += r.Pages()
	}
	res.Valid = segments > 0 && len(res.Errors) == 0
	return res
}

func parseSegment(seg string) (Range, string) {
	sep := strings.IndexAny(seg, "-~")
	if sep < 0 {
		n, err := strconv.Atoi(seg)
		if err != nil {
			return Range{}, "page number too large"
		}
		return Range{n, n}, ""
	}
	start, err := strconv.Atoi(seg[:sep])
	if err != nil {
		return Range{}, "page number too large"
	}
	end, err := strconv.Atoi(seg[sep+1:])
	if err != nil {
		return Range{}, "page number too large"
	}
	return Range{start, end}, ""
}

// merge sorts ranges by start and coalesces overlapping and adjacent
// ranges. "1-5,3-8" and "1-3,4-6" both collapse to a single range.
func merge(ranges []Range) []Range {
	if len(ranges) == 0 {
		return nil
	}
	slices.SortFunc(ranges, func(a, b Range) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.End, b.End)
	})

	merged := ranges[:1]
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End+1 {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}
