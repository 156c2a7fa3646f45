package sortx

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/latticedb/lattice/internal/logger"
)

// runReader is one open run file during the read phase: a buffered
// sequential reader plus the run's current front record.
type runReader struct {
	path   string
	f      *os.File
	br     *bufio.Reader
	front  []byte
	eof    bool
	closed bool
}

func openRunReader(path string, bufSize, recordSize int) (*runReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rr := &runReader{
		path:  path,
		f:     f,
		br:    bufio.NewReaderSize(f, bufSize),
		front: make([]byte, recordSize),
	}
	rr.refill()
	return rr, nil
}

// refill reads the next record into front. On EOF it sets eof and leaves
// front's contents unspecified — callers must check eof before use.
func (rr *runReader) refill() {
	_, err := io.ReadFull(rr.br, rr.front)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		rr.eof = true
	}
}

// close unlinks the run file — a run is removed the instant its last
// record is consumed, not deferred to the end of the sort session.
func (rr *runReader) close() {
	if rr.closed {
		return
	}
	rr.closed = true
	rr.f.Close()
	os.Remove(rr.path)
}

// mergeReader holds the loser tree over all open runs: heap[i] is the
// loser of the match at internal node i; heap[0] is the overall winner.
// Dummy leaves (value -1) pad a non-power-of-two run count and always lose.
type mergeReader struct {
	recordSize int
	cmp        Comparator
	arg        any
	readers    []*runReader
	heap       []int64
	height     int
	k          int
	log        *logger.Logger
}

func newMergeReader(runs []string, recordsPerPage, recordSize int, cmp Comparator, arg any, log *logger.Logger) (*mergeReader, error) {
	k := len(runs)
	readers := make([]*runReader, 0, k)
	for _, path := range runs {
		rr, err := openRunReader(path, recordsPerPage*recordSize, recordSize)
		if err != nil {
			for _, opened := range readers {
				opened.close()
			}
			return nil, fmt.Errorf("sortx: open run file %s: %w", path, err)
		}
		readers = append(readers, rr)
	}

	mr := &mergeReader{recordSize: recordSize, cmp: cmp, arg: arg, readers: readers, k: k, log: log}
	if k == 0 {
		return mr, nil
	}

	height := ceilLog2(k)
	mr.height = height
	base := int64(1) << uint(height)
	size := int(base) << 1

	heap := make([]int64, size)
	winners := make([]int64, size)
	for i := 0; i < k; i++ {
		winners[base+int64(i)] = int64(i)
	}
	for i := k; i < int(base); i++ {
		winners[base+int64(i)] = -1
	}
	for i := base - 1; i >= 1; i-- {
		left := i << 1
		right := (i << 1) ^ 1
		lw, rw := winners[left], winners[right]
		if lw != -1 && (rw == -1 || mr.wins(lw, rw)) {
			winners[i] = lw
			heap[i] = rw
		} else {
			winners[i] = rw
			heap[i] = lw
		}
	}
	heap[0] = winners[1]
	mr.heap = heap
	return mr, nil
}

// wins reports whether run i's front record beats run j's under the
// sorter's comparator, with ties resolved in favor of i (leftmost leaf
// wins a tie, matching the spec's stability rule within construction).
func (mr *mergeReader) wins(i, j int64) bool {
	return mr.cmp(mr.readers[i].front, mr.readers[j].front, mr.arg) <= 0
}

// read copies the current winner's front record into out and advances the
// tree. Undefined (returns ErrReadExhausted) once every run is exhausted.
func (mr *mergeReader) read(out []byte) error {
	if mr.k == 0 {
		return ErrReadExhausted
	}
	winner := mr.heap[0]
	if winner == -1 {
		return ErrReadExhausted
	}
	copy(out, mr.readers[winner].front)
	mr.adjust(winner)
	return nil
}

// adjust refills the consumed winner's run and replays it up the tree,
// one comparison per level, against the losers recorded on the way down.
func (mr *mergeReader) adjust(fileIndex int64) {
	rr := mr.readers[fileIndex]
	rr.refill()

	base := int64(1) << uint(mr.height)
	cur := fileIndex + base
	winner := fileIndex
	if rr.eof {
		mr.heap[cur] = -1
		winner = -1
		rr.close()
		mr.log.Debug("sortx: run file unlinked", "path", rr.path)
	}

	for cur != 1 {
		parent := cur >> 1
		if winner != -1 && (mr.heap[parent] == -1 || mr.wins(winner, mr.heap[parent])) {
			cur = parent
		} else {
			mr.heap[parent], winner = winner, mr.heap[parent]
			cur = parent
		}
	}
	mr.heap[0] = winner
}

// discardRemaining closes and unlinks every run still open — the
// cleanup path for early destruction mid-read.
func (mr *mergeReader) discardRemaining() {
	for _, rr := range mr.readers {
		rr.close()
	}
}

// ceilLog2 returns the smallest n such that 2^n >= k, for k >= 1.
func ceilLog2(k int) int {
	if k <= 1 {
		return 0
	}
	n := 0
	v := 1
	for v < k {
		v <<= 1
		n++
	}
	return n
}
