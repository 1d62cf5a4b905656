package query

import "github.com/starcat-io/starfov/internal/catalog"

// stream is one box cursor with its position counters. The merge owns at
// most one in-flight row per stream, held in the heap.
type stream struct {
	cur     catalog.Cursor
	box     int
	ordinal int
	closed  bool
}

func (s *stream) next() (catalog.Row, bool, error) {
	row, ok, err := s.cur.Next()
	if ok {
		s.ordinal++
	}
	return row, ok, err
}

func (s *stream) close() {
	if s.closed {
		return
	}
	s.closed = true
	_ = s.cur.Close()
}

type entry struct {
	row     catalog.Row
	src     *stream
	ordinal int
}

// starHeap orders pending rows by (magnitude, box index, row ordinal), so
// equal magnitudes resolve to the earlier box and then the earlier row.
type starHeap struct {
	items []entry
}

func (h starHeap) Len() int { return len(h.items) }
func (h starHeap) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if a.row.Mag != b.row.Mag {
		return a.row.Mag < b.row.Mag
	}
	if a.src.box != b.src.box {
		return a.src.box < b.src.box
	}
	return a.ordinal < b.ordinal
}
func (h starHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *starHeap) Push(x any)   { h.items = append(h.items, x.(entry)) }
func (h *starHeap) Pop() any {
	n := len(h.items)
	x := h.items[n-1]
	h.items = h.items[:n-1]
	return x
}
