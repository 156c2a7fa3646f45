package sortx

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

const testRecordSize = 4

func encodeKey(v int32) []byte {
	b := make([]byte, testRecordSize)
	binary.BigEndian.PutUint32(b, uint32(v))
	return b
}

func decodeKey(b []byte) int32 {
	return int32(binary.BigEndian.Uint32(b))
}

func keyComparator(a, b []byte, _ any) int {
	return bytes.Compare(a, b)
}

func sortAll(t *testing.T, recordsPerPage, recordsPerFile int, dir string, values []int32) []int32 {
	t.Helper()
	s := New(recordsPerPage, recordsPerFile, testRecordSize, keyComparator, nil, dir, nil)
	for _, v := range values {
		if err := s.Write(encodeKey(v)); err != nil {
			t.Fatalf("Write(%d): %v", v, err)
		}
	}
	if err := s.EndWrite(); err != nil {
		t.Fatalf("EndWrite: %v", err)
	}
	if err := s.BeginRead(); err != nil {
		t.Fatalf("BeginRead: %v", err)
	}
	out := make([]int32, 0, len(values))
	buf := make([]byte, testRecordSize)
	for range values {
		if err := s.Read(buf); err != nil {
			t.Fatalf("Read: %v", err)
		}
		out = append(out, decodeKey(buf))
	}
	return out
}

// S1 — single-run sort.
func TestSingleRunSort(t *testing.T) {
	got := sortAll(t, 4, 4, t.TempDir(), []int32{3, 1, 4, 1})
	want := []int32{1, 1, 3, 4}
	if !equalInt32(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

// S2 — three-way merge.
func TestThreeWayMerge(t *testing.T) {
	got := sortAll(t, 2, 2, t.TempDir(), []int32{5, 2, 9, 1, 7, 3})
	want := []int32{1, 2, 3, 5, 7, 9}
	if !equalInt32(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSortCorrectnessAcrossSizes(t *testing.T) {
	const recordsPerFile = 8
	sizes := []int{0, 1, recordsPerFile - 1, recordsPerFile, recordsPerFile + 1, 10 * recordsPerFile}
	for _, n := range sizes {
		values := make([]int32, n)
		// Deterministic, non-sorted input: reverse-ish permutation.
		for i := range values {
			values[i] = int32((i*7 + 3) % (n + 1))
		}
		got := sortAll(t, 4, recordsPerFile, t.TempDir(), values)
		if len(got) != n {
			t.Fatalf("n=%d: got %d records, want %d", n, len(got), n)
		}
		for i := 1; i < len(got); i++ {
			if got[i-1] > got[i] {
				t.Fatalf("n=%d: output not sorted at index %d: %v", n, i, got)
			}
		}
		if !isPermutation(values, got) {
			t.Fatalf("n=%d: output is not a permutation of input", n)
		}
	}
}

func TestTempFileHygiene(t *testing.T) {
	dir := t.TempDir()
	sortAll(t, 2, 3, dir, []int32{9, 8, 7, 6, 5, 4, 3, 2, 1})

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if matched, _ := filepath.Match("auxiliary_sort_file*", e.Name()); matched {
			t.Errorf("run file %s still present after read→exhaust cycle", e.Name())
		}
	}
}

func TestWriteAfterEndWrite(t *testing.T) {
	s := New(4, 4, testRecordSize, keyComparator, nil, t.TempDir(), nil)
	if err := s.EndWrite(); err != nil {
		t.Fatalf("EndWrite: %v", err)
	}
	if err := s.Write(encodeKey(1)); err != ErrWriteAfterEndWrite {
		t.Errorf("got %v, want ErrWriteAfterEndWrite", err)
	}
}

func TestReadBeforeBeginRead(t *testing.T) {
	s := New(4, 4, testRecordSize, keyComparator, nil, t.TempDir(), nil)
	buf := make([]byte, testRecordSize)
	if err := s.Read(buf); err != ErrReadBeforeBeginRead {
		t.Errorf("got %v, want ErrReadBeforeBeginRead", err)
	}
}

func equalInt32(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isPermutation(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[int32]int)
	for _, v := range a {
		counts[v]++
	}
	for _, v := range b {
		counts[v]--
	}
	for _, c := range counts {
		if c != 0 {
			return false
		}
	}
	return true
}
