package sortx

import "errors"

// ErrWriteAfterEndWrite is returned by Write once EndWrite has been called.
var ErrWriteAfterEndWrite = errors.New("sortx: write called after end_write")

// ErrReadBeforeBeginRead is returned by Read if BeginRead was never called.
var ErrReadBeforeBeginRead = errors.New("sortx: read called before begin_read")

// ErrReadExhausted is returned by Read once every run has been consumed.
// The spec leaves this case undefined at the protocol level ("caller must
// track count"); returning an error here is the defensive Go rendition of
// that contract rather than an out-of-bounds slice access or a panic.
var ErrReadExhausted = errors.New("sortx: read called with no records remaining")

// ErrBeginReadTwice is returned by BeginRead if the sorter already
// transitioned to the read phase.
var ErrBeginReadTwice = errors.New("sortx: begin_read called twice")
