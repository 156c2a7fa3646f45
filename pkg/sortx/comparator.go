package sortx

// Comparator is a total-order function over two fixed-width records of
// RecordSize bytes, parameterized by an opaque argument threaded through
// unchanged from the Sorter's construction — the Go analog of qsort_r's
// extra arg pointer. Implementations must return <0, 0, or >0 exactly like
// bytes.Compare, and must be a stable total order over the bytes they
// inspect: the sorter never breaks ties itself.
type Comparator func(a, b []byte, arg any) int
