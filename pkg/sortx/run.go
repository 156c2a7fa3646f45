package sortx

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// runWriter owns one run file's mmap'd write region. It mirrors the
// original's mkstemp + ftruncate + mmap sequence: the file descriptor is
// closed immediately after mapping (the mapping keeps the pages alive on
// Linux independent of the fd), matching matrixorigin-matrixone's
// buffer.go mmap/munmap pairing, adapted here to a file-backed MAP_SHARED
// region instead of an anonymous one.
type runWriter struct {
	path string
	data []byte
}

// createRunFile allocates a new temp file of exactly size bytes and maps it
// MAP_SHARED so writes land directly in the backing file on unmap.
func createRunFile(dir string, size int) (*runWriter, error) {
	f, err := os.CreateTemp(dir, "auxiliary_sort_file*")
	if err != nil {
		return nil, fmt.Errorf("sortx: create run file: %w", err)
	}
	path := f.Name()
	defer f.Close()

	if size > 0 {
		if err := f.Truncate(int64(size)); err != nil {
			os.Remove(path)
			return nil, fmt.Errorf("sortx: truncate run file: %w", err)
		}
		data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
		if err != nil {
			os.Remove(path)
			return nil, fmt.Errorf("sortx: mmap run file: %w", err)
		}
		return &runWriter{path: path, data: data}, nil
	}
	return &runWriter{path: path}, nil
}

// close unmaps the write region, then truncates the backing file down to
// usedRecords * recordSize — the file may have been allocated at full
// records_per_file capacity but only partially filled (the final run).
func (rw *runWriter) close(usedRecords, recordSize int) error {
	if rw.data != nil {
		if err := unix.Munmap(rw.data); err != nil {
			return fmt.Errorf("sortx: munmap run file: %w", err)
		}
		rw.data = nil
	}
	f, err := os.OpenFile(rw.path, os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("sortx: reopen run file for truncate: %w", err)
	}
	defer f.Close()
	if err := f.Truncate(int64(usedRecords * recordSize)); err != nil {
		return fmt.Errorf("sortx: truncate run file to used size: %w", err)
	}
	return nil
}

// discard unmaps (if still mapped) and unlinks the run file without
// preserving its contents — used when destroying a sorter mid-write or
// mid-read, per the unlinked-on-destruction cleanup contract.
func (rw *runWriter) discard() {
	if rw.data != nil {
		unix.Munmap(rw.data)
		rw.data = nil
	}
	os.Remove(rw.path)
}

// discardPath unlinks a run file by path, ignoring a missing file.
func discardPath(path string) {
	os.Remove(path)
}
