package assembly

// Node is one column of the assembly matrix: the per-base depth counts
// observed at (or inserted at) a template position, plus the index of
// the next column (live or insertion) in the matrix's linked column
// list. Counts is indexed by base: A, C, G, T, N, gap ("-").
type Node struct {
	Counts [6]uint16
	Next   uint32
}

// NilNext marks the end of the column chain ("next == 0 terminates
// the list" — node 0 is never a real column, it is the always-present
// sentinel root of Matrix.Nodes).
const NilNext = 0

// Bases maps a Node.Counts index (and the consensus "N" pseudo-base, and
// the alignment gap) to its ASCII letter, matching printconsensus.c's
// local `bases` table.
var Bases = [6]byte{'A', 'C', 'G', 'T', 'N', '-'}

// Root is the index of the first live column of a freshly built Matrix
// (index 0 is always the NilNext sentinel, never real data).
const Root = 1

// Matrix is the arena-backed base-count matrix: Nodes[1:Len] are the
// live columns (one per template position plus any
// insertion columns chained onto them via Next); Nodes[0] is an unused
// sentinel so that 0 can serve as a "no next" value. Growing the arena
// (rewriter.Reanchor's reanchoring onto a new template frame) appends
// new zero-valued columns and advances Len; it never shrinks it.
type Matrix struct {
	Nodes []Node
	Len   int
}

// NewMatrix allocates a Matrix with capacity for size live columns plus
// the sentinel at index 0.
func NewMatrix(size int) *Matrix {
	m := &Matrix{Nodes: make([]Node, size+1)}
	m.Len = 1
	return m
}

// EnsureCapacity grows Nodes so that index upTo is valid, preserving all
// existing contents. It does not touch Len.
func (m *Matrix) EnsureCapacity(upTo int) {
	if upTo < len(m.Nodes) {
		return
	}
	grown := make([]Node, upTo+1)
	copy(grown, m.Nodes)
	m.Nodes = grown
}

// Alloc appends n fresh zero-valued columns to the arena and returns the
// index of the first one, growing Len. The new columns are not linked
// into any Next chain; the caller chains them.
func (m *Matrix) Alloc(n int) int {
	m.EnsureCapacity(m.Len + n)
	first := m.Len
	m.Len += n
	return first
}

// At returns the column at index i. i must be in [0, Len).
func (m *Matrix) At(i int) *Node {
	return &m.Nodes[i]
}

// Reset zeroes every live column and resets Len to 1 (just the
// sentinel), without releasing the underlying array — used between
// independent reassignment runs sharing one Core's scratch matrix.
func (m *Matrix) Reset() {
	for i := range m.Nodes {
		m.Nodes[i] = Node{}
	}
	m.Len = 1
}

// Total returns the sum of all six base counts at column i: the
// coverage depth at this position.
func (n *Node) Total() int {
	total := 0
	for _, c := range n.Counts {
		total += int(c)
	}
	return total
}

// Best returns the index (0..5) of the most-observed base at this
// column and its count, breaking ties toward the lowest index exactly as
// the source's linear max scan does.
func (n *Node) Best() (base int, count uint16) {
	for i, c := range n.Counts {
		if c > count {
			base, count = i, c
		}
	}
	return base, count
}
