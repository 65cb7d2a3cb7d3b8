package bodyio

import "io"

// BufferSource is a Source wrapping an in-memory byte slice. It is
// single-use: once exhausted, further Read calls return finished=true,
// n=0.
type BufferSource struct {
	data []byte
	pos  int
}

// NewBufferSource returns a Source that yields the bytes of data, in
// order, until exhausted.
func NewBufferSource(data []byte) *BufferSource {
	return &BufferSource{data: data}
}

func (s *BufferSource) Read(dst []byte) (n int, finished bool, err error) {
	n = copy(dst, s.data[s.pos:])
	s.pos += n
	return n, s.pos >= len(s.data), nil
}

// DiscardSink is a Sink that accepts and drops every byte written to it,
// tracking only the total count — useful for draining a body the
// application does not care about.
type DiscardSink struct {
	Total int64
}

func (d *DiscardSink) Write(src []byte, more bool) (int, error) {
	d.Total += int64(len(src))
	return len(src), nil
}

// WriterSink adapts an io.Writer to the Sink interface, e.g. to stream a
// parsed body straight to stdout.
type WriterSink struct {
	W io.Writer
}

func (w *WriterSink) Write(src []byte, more bool) (int, error) {
	return w.W.Write(src)
}

// ChainFilter composes two filters so that First's output becomes Second's
// input, needed when inline decompression (spec §4.2.7) must sit in front
// of a user-supplied filter.
type ChainFilter struct {
	First, Second Filter
	mid           []byte
}

// NewChainFilter returns a Filter running src through first then second.
// scratch sizes the intermediate buffer and should come from the owning
// Workspace.
func NewChainFilter(first, second Filter, scratch []byte) *ChainFilter {
	return &ChainFilter{First: first, Second: second, mid: scratch}
}

func (c *ChainFilter) Process(dst, src []byte, more bool) (inBytes, outBytes int, finished bool, err error) {
	in, midN, firstDone, err := c.First.Process(c.mid, src, more)
	if err != nil {
		return in, 0, false, err
	}
	_, out, secondDone, err := c.Second.Process(dst, c.mid[:midN], more || !firstDone)
	if err != nil {
		return in, out, false, err
	}
	return in, out, firstDone && secondDone, nil
}
