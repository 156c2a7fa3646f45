package sortx

import "sort"

// recordSlice adapts a flat byte buffer of fixed-width records to
// sort.Interface so the mmap'd run region can be sorted in place. The
// original calls qsort_r directly on the mapped pages; sort.Sort's
// introsort is the idiomatic Go equivalent — no reusable third-party
// fixed-width record sorter exists in the pack (matrixorigin-matrixone's
// pkg/sort is hard-wired to its own vector/types container and cannot sort
// an opaque byte buffer), so this one component is grounded on the
// standard library by necessity rather than by default.
type recordSlice struct {
	data       []byte
	recordSize int
	cmp        Comparator
	arg        any
	tmp        []byte
}

func (s *recordSlice) Len() int {
	return len(s.data) / s.recordSize
}

func (s *recordSlice) record(i int) []byte {
	off := i * s.recordSize
	return s.data[off : off+s.recordSize]
}

func (s *recordSlice) Less(i, j int) bool {
	return s.cmp(s.record(i), s.record(j), s.arg) < 0
}

func (s *recordSlice) Swap(i, j int) {
	if s.tmp == nil {
		s.tmp = make([]byte, s.recordSize)
	}
	ri, rj := s.record(i), s.record(j)
	copy(s.tmp, ri)
	copy(ri, rj)
	copy(rj, s.tmp)
}

// sortRecords sorts the first n records of data in place.
func sortRecords(data []byte, n, recordSize int, cmp Comparator, arg any) {
	sort.Sort(&recordSlice{data: data[:n*recordSize], recordSize: recordSize, cmp: cmp, arg: arg})
}
