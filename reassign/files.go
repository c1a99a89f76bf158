package reassign

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"io/ioutil"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/grailbio/kmareassign/kmerindex"
	"github.com/grailbio/kmareassign/packedseq"
)

// Files abstracts open handles onto the on-disk <base>.seq.b and
// <base>.name files a KmerIndex's SeqOffsets/NameOffsets index into.
// Implementations must save and restore their underlying cursor around
// every read, so callers see no visible cursor change, since both files
// are shared, read-only handles that may be in concurrent use by the
// caller's other pipeline stages between reassignment calls.
type Files interface {
	// LoadSeq reads the nLen-base packed sequence of template id,
	// starting at byte offset seqOffset in the <base>.seq.b file.
	LoadSeq(ctx context.Context, seqOffset int64, nLen int) (*packedseq.Seq, error)
	// LoadName reads the newline-terminated name of a template starting
	// at byte offset nameOffset in the <base>.name file.
	LoadName(ctx context.Context, nameOffset int64) (string, error)
}

// DiskFiles is the production Files implementation, reading through
// github.com/grailbio/base/file the way pileup.LoadFa opens its
// reference FASTA, so the reassignment core shares the same ambient
// file-access layer (local disk, S3, etc.) as the rest of the pipeline
// instead of going around it with raw os.Open calls.
type DiskFiles struct {
	seq  file.File
	name file.File

	// nameData holds the fully decompressed contents of a gzip-compressed
	// *.name file (NameOffsets then index directly into it rather than
	// seeking through d.name, since a gzip.Reader cannot seek). nil for
	// plain, uncompressed name files, which use d.name's seekable Reader
	// as normal.
	nameData []byte
}

// OpenDiskFiles opens the packed-sequence and name files of a database
// with base path base (i.e. base+".seq.b" and base+".name"). Both
// handles are held open read-only for the lifetime of the returned
// DiskFiles; callers must Close it when done.
//
// A gzip-compressed *.name file (detected the way pileup.LoadFa detects
// a gzipped *.fa, via fileio.DetermineType) is decompressed once, in
// full, into memory: template names are small relative to the packed
// sequence database, and a gzip.Reader cannot seek, which LoadName's
// save/restore-offset contract otherwise requires.
func OpenDiskFiles(ctx context.Context, base string) (*DiskFiles, error) {
	seq, err := file.Open(ctx, base+".seq.b")
	if err != nil {
		return nil, errors.Wrap(err, "reassign: opening *.seq.b")
	}
	namePath := base + ".name"
	name, err := file.Open(ctx, namePath)
	if err != nil {
		seq.Close(ctx) // nolint: errcheck
		return nil, errors.Wrap(err, "reassign: opening *.name")
	}
	df := &DiskFiles{seq: seq, name: name}
	if fileio.DetermineType(namePath) == fileio.Gzip {
		gz, err := gzip.NewReader(name.Reader(ctx))
		if err != nil {
			seq.Close(ctx)  // nolint: errcheck
			name.Close(ctx) // nolint: errcheck
			return nil, errors.Wrap(err, "reassign: opening gzip *.name")
		}
		data, err := ioutil.ReadAll(gz)
		if err != nil {
			seq.Close(ctx)  // nolint: errcheck
			name.Close(ctx) // nolint: errcheck
			return nil, errors.Wrap(err, "reassign: decompressing *.name")
		}
		df.nameData = data
	}
	return df, nil
}

// Close releases both underlying file handles.
func (d *DiskFiles) Close(ctx context.Context) error {
	errSeq := d.seq.Close(ctx)
	errName := d.name.Close(ctx)
	if errSeq != nil {
		return errSeq
	}
	return errName
}

// seekingReader returns f's reader as an io.ReadSeeker, the way a local
// or cloud-backed file.File opened for read supports seeking within
// itself; it is the hook the save/restore-offset behavior below is
// built on.
func seekingReader(ctx context.Context, f file.File) (io.ReadSeeker, error) {
	rs, ok := f.Reader(ctx).(io.ReadSeeker)
	if !ok {
		return nil, errors.New("reassign: underlying file.File reader is not seekable")
	}
	return rs, nil
}

// readAt saves rs's current offset, reads len(buf) bytes starting at
// offset, and restores the saved offset before returning, so callers
// never see a visible cursor change — seq/name handles are shared
// read-only across the whole pipeline, not owned exclusively by this
// call.
func readAt(rs io.ReadSeeker, offset int64, buf []byte) error {
	saved, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return errors.Wrap(err, "reassign: save file offset")
	}
	if _, err := rs.Seek(offset, io.SeekStart); err != nil {
		return errors.Wrap(err, "reassign: seek file")
	}
	_, err = io.ReadFull(rs, buf)
	if _, serr := rs.Seek(saved, io.SeekStart); serr != nil && err == nil {
		err = errors.Wrap(serr, "reassign: restore file offset")
	}
	if err != nil {
		// A short read or seek failure here means *.seq.b / *.name is
		// corrupted; that is fatal, not recoverable.
		return errors.Wrap(err, "reassign: corrupted database file (short read)")
	}
	return nil
}

// LoadSeq implements Files.
func (d *DiskFiles) LoadSeq(ctx context.Context, seqOffset int64, nLen int) (*packedseq.Seq, error) {
	rs, err := seekingReader(ctx, d.seq)
	if err != nil {
		return nil, err
	}
	words := (nLen / packedseq.BasesPerWord) + 1
	buf := make([]byte, words*8)
	if err := readAt(rs, seqOffset, buf); err != nil {
		return nil, err
	}
	seq := bytesToPackedSeq(buf, nLen)
	return &seq, nil
}

// LoadName implements Files.
func (d *DiskFiles) LoadName(ctx context.Context, nameOffset int64) (string, error) {
	if d.nameData != nil {
		if nameOffset < 0 || nameOffset > int64(len(d.nameData)) {
			return "", errors.New("reassign: corrupted *.name (offset out of range)")
		}
		rest := d.nameData[nameOffset:]
		if i := bytes.IndexByte(rest, '\n'); i >= 0 {
			return gunsafe.BytesToString(rest[:i]), nil
		}
		return gunsafe.BytesToString(rest), nil
	}
	rs, err := seekingReader(ctx, d.name)
	if err != nil {
		return "", err
	}
	saved, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return "", errors.Wrap(err, "reassign: save name file offset")
	}
	if _, err := rs.Seek(nameOffset, io.SeekStart); err != nil {
		return "", errors.Wrap(err, "reassign: seek name file")
	}
	br := bufio.NewReader(rs)
	line, err := br.ReadString('\n')
	if _, serr := rs.Seek(saved, io.SeekStart); serr != nil && err == nil {
		err = serr
	}
	if err != nil && err != io.EOF {
		return "", errors.Wrap(err, "reassign: corrupted *.name (short read)")
	}
	return trimNewline(line), nil
}

func trimNewline(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		return s[:n-1]
	}
	return s
}

// bytesToPackedSeq wraps nLen*2-bit-packed bytes already in the
// on-disk wire format (concatenated two-bit template sequences, no N
// side-table since templates are by construction ambiguity-free) into a
// packedseq.Seq with an empty N list.
func bytesToPackedSeq(buf []byte, nLen int) packedseq.Seq {
	words := make([]uint64, len(buf)/8)
	for i := range words {
		words[i] = beUint64(buf[i*8:])
	}
	return packedseq.Seq{Words: words, SeqLen: nLen, N: []int32{0}}
}

func beUint64(b []byte) uint64 {
	_ = b[7]
	return uint64(b[0])<<56 | uint64(b[1])<<48 | uint64(b[2])<<40 | uint64(b[3])<<32 |
		uint64(b[4])<<24 | uint64(b[5])<<16 | uint64(b[6])<<8 | uint64(b[7])
}

// seqOffsetFor and nameOffsetFor centralize the required NORM(id)
// indexing, so Core.Reassign never indexes SeqOffsets/NameOffsets with a
// signed, strand-encoded id directly.
func seqOffsetFor(db *kmerindex.Index, id int32) int64 {
	return db.SeqOffsets[kmerindex.Norm(id)]
}

func nameOffsetFor(db *kmerindex.Index, id int32) int64 {
	return db.NameOffsets[kmerindex.Norm(id)]
}
