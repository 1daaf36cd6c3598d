package filelist

// Record remembers one deletion.
type Record struct {
	Entry     Entry
	TrashPath string
	Pos       int
}

// History is a fixed-size ring of deletions; the oldest records are
// overwritten once it is full.
type History struct {
	records []Record
	used    []bool
	idx     int
}

// NewHistory returns a ring holding up to size records.
func NewHistory(size int) *History {
	return &History{
		records: make([]Record, size),
		used:    make([]bool, size),
	}
}

// Push stores r in the next slot.
func (h *History) Push(r Record) {
	h.records[h.idx] = r
	h.used[h.idx] = true
	h.idx = (h.idx + 1) % len(h.records)
}

// Pop removes and returns the most recent record.
func (h *History) Pop() (Record, bool) {
	prev := (h.idx - 1 + len(h.records)) % len(h.records)
	if !h.used[prev] {
		return Record{}, false
	}
	r := h.records[prev]
	h.records[prev] = Record{}
	h.used[prev] = false
	h.idx = prev
	return r, true
}
