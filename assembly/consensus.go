package assembly

import (
	"bytes"
	"fmt"
	"io"
)

// Consensus holds the three parallel byte streams the assembler produces
// for one reassigned template — template base (T), match marker (S,
// '|' on a match, ' ' otherwise), and query/consensus base (Q) — plus
// the aggregate statistics tracked alongside them. All three streams
// share Len and are always kept in lock-step: index i in T, S and Q
// describes the same alignment column.
type Consensus struct {
	T, S, Q []byte
	Len     int

	Score            uint64
	AlnLen           int
	Cover            float64
	Depth            uint64
	DepthVar         uint64
	Var              float64
	NucHighVar       uint32
	MaxDepth         uint32
	SNPSum           uint64
	InsertSum        uint64
	DeletionSum      uint64
	ReadCountAln     uint32
	FragmentCountAln uint32
}

// Render mode names, matching the ref_fsa switch in printconsensus.c.
const (
	ModeTrimmed   = "trimmed"
	ModeRefAligned = "ref-aligned"
)

// Trim drops every alignment column where both the template and the
// query carry a gap, compacting T, S and Q in place. This mirrors
// printConsensus's first pass over aligned_assem, which exists because
// reanchoring (rewriter.Reanchor) can leave behind insertion columns
// that neither side ever used.
func (c *Consensus) Trim() {
	w := 0
	for i := 0; i < c.Len; i++ {
		if c.T[i] == '-' && c.Q[i] == '-' {
			continue
		}
		c.T[w] = c.T[i]
		c.S[w] = c.S[i]
		c.Q[w] = c.Q[i]
		w++
	}
	c.Len = w
	c.T = c.T[:w]
	c.S = c.S[:w]
	c.Q = c.Q[:w]
}

// consensusQuery returns the query stream to print for the given mode,
// and its length, without mutating c. mode "trimmed" drops every
// remaining gap ('-') from the query, as printConsensus does when
// ref_fsa == 0; mode "ref-aligned" keeps the template's coordinate frame
// and rewrites gaps to lowercase 'n', as it does when ref_fsa == 1.
func (c *Consensus) consensusQuery(mode string) []byte {
	switch mode {
	case ModeTrimmed:
		out := make([]byte, 0, c.Len)
		for _, b := range c.Q[:c.Len] {
			if b != '-' {
				out = append(out, b)
			}
		}
		return out
	case ModeRefAligned:
		out := make([]byte, c.Len)
		copy(out, c.Q[:c.Len])
		for i, b := range out {
			if b == '-' {
				out[i] = 'n'
			}
		}
		return out
	default:
		panic(fmt.Sprintf("assembly: unknown render mode %q", mode))
	}
}

// Render produces the FASTA-formatted consensus sequence for header,
// line-wrapped at 60 columns as printConsensus does.
func (c *Consensus) Render(header, mode string) []byte {
	query := c.consensusQuery(mode)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, ">%s\n", header)
	for i := 0; i < len(query); i += 60 {
		end := i + 60
		if end > len(query) {
			end = len(query)
		}
		buf.Write(query[i:end])
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// WriteAlignment writes the three-row, 60-column-wrapped template/match/
// query alignment block printConsensus writes to its alignment_out file,
// preceded by a "# header" comment line.
func (c *Consensus) WriteAlignment(w io.Writer, header string) error {
	if _, err := fmt.Fprintf(w, "# %s\n", header); err != nil {
		return err
	}
	for i := 0; i < c.Len; i += 60 {
		end := i + 60
		if end > c.Len {
			end = c.Len
		}
		if _, err := fmt.Fprintf(w, "%-10s\t%s\n", "template:", c.T[i:end]); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%-10s\t%s\n", "", c.S[i:end]); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%-10s\t%s\n\n", "query:", c.Q[i:end]); err != nil {
			return err
		}
	}
	return nil
}
