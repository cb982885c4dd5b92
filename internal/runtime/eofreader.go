package runtime

import (
	"io"
	"sync"
)

// An [io.Reader] that reports when its source is exhausted.
//
// Exec streams stdin through a FIFO held open on both ends by the
// containerd shim, so the process never sees EOF on its own; the eof
// channel gives the caller a hook to close the container's stdin at the
// right moment. The channel closes exactly once, on the first [io.EOF]
// from the source. Non-EOF errors pass through without firing it.
type eofReader struct {
	src  io.Reader
	once sync.Once
	eof  chan struct{}
}

func newEOFReader(src io.Reader) *eofReader {
	return &eofReader{src: src, eof: make(chan struct{})}
}

func (r *eofReader) Read(p []byte) (int, error) {
	n, err := r.src.Read(p)
	if err == io.EOF {
		r.once.Do(func() { close(r.eof) })
	}
	return n, err
}
