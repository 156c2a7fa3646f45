// Package sortx implements a two-phase external merge sorter: bounded
// memory, mmap-backed run generation on write, loser-tree k-way merge on
// read. See Sorter for the write/end_write/begin_read/read contract.
package sortx

import (
	"github.com/latticedb/lattice/internal/logger"
)

// Sorter sorts an arbitrarily large stream of fixed-width records using
// bounded memory. It is not safe for concurrent use: one writer phase
// followed by one reader phase, by one goroutine.
type Sorter struct {
	recordsPerPage int
	recordsPerFile int
	recordSize     int
	cmp            Comparator
	arg            any
	tempDir        string
	log            *logger.Logger

	runs []string // completed run file paths, in creation order

	cur    *runWriter
	index  int // records written into cur
	ended  bool
	begun  bool

	rd *mergeReader
}

// New constructs a Sorter. recordsPerPage controls the read-phase buffer
// size per run (records_per_page * record_size bytes); recordsPerFile
// bounds how many records accumulate in memory (mmap'd) before a run is
// flushed; recordSize is the fixed width of one record in bytes. tempDir
// is the directory run files are created in ("" uses os.TempDir). log may
// be nil, in which case run-file lifecycle events are not logged.
func New(recordsPerPage, recordsPerFile, recordSize int, cmp Comparator, arg any, tempDir string, log *logger.Logger) *Sorter {
	if log == nil {
		log = logger.NewNop()
	}
	return &Sorter{
		recordsPerPage: recordsPerPage,
		recordsPerFile: recordsPerFile,
		recordSize:     recordSize,
		cmp:            cmp,
		arg:            arg,
		tempDir:        tempDir,
		log:            log,
	}
}

// Write appends one record, recordSize bytes, to the sort. Internally the
// sorter accumulates records into a memory-mapped run file; when the
// current run fills, it is sorted in place and unmapped before the next
// run is opened.
func (s *Sorter) Write(record []byte) error {
	if s.ended {
		return ErrWriteAfterEndWrite
	}
	if s.cur == nil {
		if err := s.openRun(); err != nil {
			return err
		}
	}
	off := s.index * s.recordSize
	copy(s.cur.data[off:off+s.recordSize], record)
	s.index++
	if s.index == s.recordsPerFile {
		if err := s.flushRun(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sorter) openRun() error {
	rw, err := createRunFile(s.tempDir, s.recordsPerFile*s.recordSize)
	if err != nil {
		return err
	}
	s.cur = rw
	s.index = 0
	s.log.Debug("sortx: run file created", "path", rw.path, "capacity", s.recordsPerFile)
	return nil
}

// flushRun sorts the full current run, closes its mapping, and records its
// path for the read phase.
func (s *Sorter) flushRun() error {
	sortRecords(s.cur.data, s.index, s.recordSize, s.cmp, s.arg)
	if err := s.cur.close(s.index, s.recordSize); err != nil {
		return err
	}
	s.runs = append(s.runs, s.cur.path)
	s.log.Debug("sortx: run file spilled", "path", s.cur.path, "records", s.index)
	s.cur = nil
	s.index = 0
	return nil
}

// EndWrite flushes the partially filled final run, sorting its prefix of
// length index and truncating the file to that many records. If no
// records were written, the sorter is left in an empty but valid state.
func (s *Sorter) EndWrite() error {
	if s.ended {
		return nil
	}
	s.ended = true
	if s.cur == nil {
		return nil
	}
	return s.flushRun()
}

// BeginRead transitions the sorter from the write phase to the read phase:
// it opens every run file with a buffered sequential reader sized
// records_per_page * record_size, reads each run's first record, and
// builds the loser tree over all k runs.
func (s *Sorter) BeginRead() error {
	if s.begun {
		return ErrBeginReadTwice
	}
	if !s.ended {
		if err := s.EndWrite(); err != nil {
			return err
		}
	}
	s.begun = true
	rd, err := newMergeReader(s.runs, s.recordsPerPage, s.recordSize, s.cmp, s.arg, s.log)
	if err != nil {
		return err
	}
	s.log.Debug("sortx: begin_read", "runs", len(s.runs))
	s.rd = rd
	return nil
}

// Read copies the next record, in sorted order, into out and advances the
// merge tree. Once every record has been read it returns
// ErrReadExhausted.
func (s *Sorter) Read(out []byte) error {
	if !s.begun {
		return ErrReadBeforeBeginRead
	}
	return s.rd.read(out)
}

// Discard unlinks every remaining run file without reading them — the
// unlinked-on-destruction cleanup contract for abnormal exit mid-write or
// mid-read.
func (s *Sorter) Discard() {
	if s.cur != nil {
		s.cur.discard()
		s.cur = nil
	}
	if s.rd != nil {
		s.rd.discardRemaining()
		s.rd = nil
		return
	}
	for _, path := range s.runs {
		discardPath(path)
	}
	s.runs = nil
}
