package reassign

import (
	"bufio"
	"fmt"
	"io"

	"github.com/grailbio/kmareassign/assembly"
)

// FeaturesMetadata holds the run-level "## key value" header lines that
// precede the extended features column table.
type FeaturesMetadata struct {
	Method        string
	Version       string
	Database      string
	FragmentCount uint64
	Date          string
	Command       string
}

// FeatureRow is one line of the extended features table: everything
// assembly.Consensus already tracks (Score, Cover, Var, NucHighVar,
// MaxDepth, SNPSum, InsertSum, DeletionSum, ReadCountAln,
// FragmentCountAln), plus the handful of per-template totals that
// belong to the out-of-scope primary mapper (ReadCount, FragmentCount,
// RefConsensusSum, BPTotal) and so are supplied by the caller rather
// than read off Consensus.
type FeatureRow struct {
	RefSequence     string
	ReadCount       uint64
	FragmentCount   uint64
	RefConsensusSum uint64
	BPTotal         uint64
	Consensus       *assembly.Consensus
}

// WriteExtendedFeatures writes the tab-separated extended features
// table, preceded by the metadata comment lines
// initExtendedFeatures/printExtendedFeatures emit in the original C
// implementation this format is drawn from. It is pure post-processing:
// it does not read or write consensus/matrix state, only format
// already-computed Consensus fields.
func WriteExtendedFeatures(w io.Writer, meta FeaturesMetadata, rows []FeatureRow) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "## method\t%s\n", meta.Method); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(bw, "## version\t%s\n", meta.Version); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(bw, "## database\t%s\n", meta.Database); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(bw, "## fragmentCount\t%d\n", meta.FragmentCount); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(bw, "## date\t%s\n", meta.Date); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(bw, "## command\t%s\n", meta.Command); err != nil {
		return err
	}

	header := []string{
		"refSequence", "readCount", "fragmentCount", "mapScoreSum",
		"refCoveredPositions", "refConsensusSum", "bpTotal", "depthVariance",
		"nucHighDepthVariance", "depthMax", "snpSum", "insertSum",
		"deletionSum", "readCountAln", "fragmentCountAln",
	}
	for i, col := range header {
		if i > 0 {
			if _, err := bw.WriteString("\t"); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString(col); err != nil {
			return err
		}
	}
	if _, err := bw.WriteString("\n"); err != nil {
		return err
	}

	for _, r := range rows {
		c := r.Consensus
		_, err := fmt.Fprintf(bw, "%s\t%d\t%d\t%d\t%.2f\t%d\t%d\t%.4f\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
			r.RefSequence, r.ReadCount, r.FragmentCount, c.Score,
			c.Cover, r.RefConsensusSum, r.BPTotal, c.Var,
			c.NucHighVar, c.MaxDepth, c.SNPSum, c.InsertSum,
			c.DeletionSum, c.ReadCountAln, c.FragmentCountAln)
		if err != nil {
			return err
		}
	}

	return bw.Flush()
}
