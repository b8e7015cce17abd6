package core

import (
	"encoding/json"
	"strconv"
)

const DefaultWindowSize = 5

// PageLabel is one entry of a pagination control: a page number or an
// ellipsis.
type PageLabel struct {
	Number   int
	Ellipsis bool
}

func pageNum(n int) PageLabel { return PageLabel{Number: n} }

var ellipsis = PageLabel{Ellipsis: true}

func (l PageLabel) String() string {
	if l.Ellipsis {
		return "..."
	}
	return strconv.Itoa(l.Number)
}

// MarshalJSON renders a number, or the string "..." for an ellipsis.
func (l PageLabel) MarshalJSON() ([]byte, error) {
	if l.Ellipsis {
		return json.Marshal("...")
	}
	return json.Marshal(l.Number)
}

// Window returns the page labels to show for current out of total pages,
// with a contiguous block of size pages centered on current. The block is
// shifted, not shrunk, at the edges. Pages 1 and total are always shown,
// separated from the block by an ellipsis when more than one page is
// skipped.
func Window(current, total, size int) []PageLabel {
	if total <= 1 {
		return nil
	}
	if size < 1 {
		size = 1
	}
	if total <= size {
		out := make([]PageLabel, 0, total)
		for i := 1; i <= total; i++ {
			out = append(out, pageNum(i))
		}
		return out
	}

	half := size / 2
	start := clamp(current-half, 1, total-size+1)
	end := start + size - 1

	out := make([]PageLabel, 0, size+4)
	if start > 1 {
		out = append(out, pageNum(1))
		if start > 2 {
			out = append(out, ellipsis)
		}
	}
	for i := start; i <= end; i++ {
		out = append(out, pageNum(i))
	}
	if end < total {
		if end < total-1 {
			out = append(out, ellipsis)
		}
		out = append(out, pageNum(total))
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
