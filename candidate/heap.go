package candidate

import "github.com/grailbio/kmareassign/kmerindex"

// Heap is a binary max-heap over candidate template ids, keyed by the
// referenced template's length (after stripping any strand sign via
// kmerindex.Norm). It holds its own backing slice so Build can reorder
// scanner.Scan's output in place.
type Heap struct {
	ids     []int32
	lengths []int32
}

// Build arranges ids into a max-heap in place and returns it. lengths is
// indexed by kmerindex.Norm(id); it is typically kmerindex.Index.TemplateLengths.
func Build(ids []int32, lengths []int32) *Heap {
	h := &Heap{ids: ids, lengths: lengths}
	for i := len(h.ids)/2 - 1; i >= 0; i-- {
		h.siftDown(i)
	}
	return h
}

// Len reports how many candidates remain.
func (h *Heap) Len() int {
	return len(h.ids)
}

// Pop removes and returns the candidate whose template is currently
// longest, restoring the heap property. ok is false once the heap is
// empty.
func (h *Heap) Pop() (id int32, ok bool) {
	if len(h.ids) == 0 {
		return 0, false
	}
	top := h.ids[0]
	last := len(h.ids) - 1
	h.ids[0] = h.ids[last]
	h.ids = h.ids[:last]
	h.siftDown(0)
	return top, true
}

func (h *Heap) lengthOf(id int32) int32 {
	return h.lengths[kmerindex.Norm(id)]
}

// siftDown restores the max-heap property of the subtree rooted at
// index, mirroring reassign_heapify's iterative-but-recursive descent.
func (h *Heap) siftDown(index int) {
	n := len(h.ids)
	root := index
	left := 2*index + 1
	if left < n && h.lengthOf(h.ids[root]) < h.lengthOf(h.ids[left]) {
		root = left
	}
	right := left + 1
	if right < n && h.lengthOf(h.ids[root]) < h.lengthOf(h.ids[right]) {
		root = right
	}
	if root == index {
		return
	}
	h.ids[index], h.ids[root] = h.ids[root], h.ids[index]
	h.siftDown(root)
}
