// Package workspace implements the bump-style arena shared by the parser
// and the serializer (spec §4.5, §9 "Arena/workspace"). A Workspace owns one
// contiguous buffer divided into two growth fronts:
//
//	| front (reserved) | free | acquired (scoped) |
//
// Front-up reservations are long-lived for the life of the workspace (codec
// filter state); bump-down emplacements are scoped and rolled back in LIFO
// order by Clear, mirroring the source's intrusive destructor list threaded
// through emplaced object headers.
package workspace

import (
	"unsafe"

	"github.com/shapestone/wirehttp/errors"
	"github.com/valyala/bytebufferpool"
)

// defaultPool backs every Workspace's buffer. Grounded on
// shockwave/pkg/shockwave/buffer_pool.go's sized sync.Pool-of-[]byte idiom,
// generalized to bytebufferpool since the workspace buffer's size varies
// per caller rather than falling into fixed size classes.
var defaultPool bytebufferpool.Pool

// Workspace is a contiguous buffer with two cursors. It is not safe for
// concurrent use; a Workspace is owned by exactly one Parser or Serializer.
type Workspace struct {
	buf    *bytebufferpool.ByteBuffer
	data   []byte // the full backing array, len==cap==requested size
	front  int    // bytes reserved from the front, grows upward
	back   int    // bytes acquired from the back, grows downward (data[len-back:])
	undo   []func()
}

// New allocates a Workspace backed by a buffer of at least n bytes.
func New(n int) *Workspace {
	bb := defaultPool.Get()
	if cap(bb.B) < n {
		bb.B = make([]byte, n)
	} else {
		bb.B = bb.B[:n]
	}
	return &Workspace{buf: bb, data: bb.B}
}

// Size returns the number of unused bytes between the two fronts.
func (w *Workspace) Size() int {
	return len(w.data) - w.front - w.back
}

// Capacity returns the total backing buffer size.
func (w *Workspace) Capacity() int { return len(w.data) }

// Reserve converts n bytes of unused storage into front-reserved storage and
// returns a slice over it. Reservations live until the Workspace is
// Released (they survive Clear), matching the spec's "retains the front
// reservations" wording.
func (w *Workspace) Reserve(n int) ([]byte, error) {
	if n > w.Size() {
		return nil, errors.New(errors.KindLengthError, "workspace.Reserve", 0)
	}
	start := w.front
	w.front += n
	return w.data[start : start+n : start+n], nil
}

// maxAlign mirrors alignof(std::max_align_t): the alignment large enough
// for any type this module emplaces (codec filter structs, header tables).
const maxAlign = unsafe.Sizeof(uintptr(0)) * 2

// Emplace bump-allocates space for one T from the back of the workspace,
// copies v into it, and returns a pointer into the workspace's own memory.
// If T implements `Close() error` or `Close()`, that finalizer is queued and
// run (in LIFO order across all emplacements) the next time Clear is
// called, matching the source's "linked in reverse order" destructor list.
func Emplace[T any](w *Workspace, v T) (*T, error) {
	size := int(unsafe.Sizeof(v))
	align := int(unsafe.Alignof(v))
	if align < 1 {
		align = 1
	}
	// Compute the next back-offset that leaves room for alignment padding.
	needed := size + align - 1
	if needed > w.Size() {
		return nil, errors.New(errors.KindLengthError, "workspace.Emplace", 0)
	}
	w.back += needed
	end := len(w.data) - w.back + needed
	start := end - needed
	// Align start upward within the padded region.
	if rem := start % align; rem != 0 {
		start += align - rem
	}
	dst := w.data[start : start+size : start+size]
	copy(dst, unsafe.Slice((*byte)(unsafe.Pointer(&v)), size))
	p := (*T)(unsafe.Pointer(&dst[0]))
	if c, ok := any(p).(interface{ Close() error }); ok {
		w.undo = append(w.undo, func() { _ = c.Close() })
	} else if c, ok := any(p).(interface{ Close() }); ok {
		w.undo = append(w.undo, c.Close)
	}
	return p, nil
}

// Clear rolls back every bump-down emplacement (running queued finalizers
// LIFO) and resets the back cursor. Front reservations are retained, per
// spec §4.5 ("clear() rolls back all bump-down emplacements but retains the
// front reservations and the underlying buffer").
func (w *Workspace) Clear() {
	for i := len(w.undo) - 1; i >= 0; i-- {
		w.undo[i]()
	}
	w.undo = w.undo[:0]
	w.back = 0
}

// Release returns the backing buffer to the shared pool. The Workspace must
// not be used afterward. Release also runs any pending finalizers, since
// the buffer they point into is about to be recycled.
func (w *Workspace) Release() {
	w.Clear()
	w.front = 0
	if w.buf != nil {
		defaultPool.Put(w.buf)
		w.buf = nil
		w.data = nil
	}
}
