// Package bodyio defines the Filter, Source, and Sink abstractions used to
// express streaming body transforms (spec §4.4): byte-in/byte-out codecs
// (Filter), finite pull producers (Source), and finite push consumers
// (Sink). All three are invoked synchronously and non-blocking — there is
// no goroutine, channel, or suspension point anywhere in this package,
// matching spec §5's single-threaded cooperative scheduling model.
package bodyio

import "github.com/shapestone/wirehttp/workspace"

// Source produces a finite byte stream. Implementations are single-use:
// once Read reports finished=true, it must not be called again.
type Source interface {
	// Read fills dst (which may be any size the caller chooses) and
	// reports how many bytes were written, whether the source is
	// exhausted, and any error. Read must fill dst in order; partial
	// fills are allowed (and expected) when the source has less data
	// ready than len(dst).
	Read(dst []byte) (n int, finished bool, err error)
}

// Sink consumes a finite byte stream. If the sink cannot accept all of src
// and more is true, that is treated as a failure by the caller (spec §4.4:
// "If the sink cannot accept all input and more==true, that is a
// failure").
type Sink interface {
	Write(src []byte, more bool) (n int, err error)
}

// Filter is both a Sink and a Source: process consumes input bytes and
// produces output bytes, signaling finished=true once it has emitted all
// pending output and any trailing bytes its encoding requires (e.g. a
// gzip/deflate footer).
type Filter interface {
	// Process writes decoded/encoded bytes into dst from src, returning
	// how many bytes of src were consumed, how many bytes of dst were
	// produced, whether the filter is done, and any error. more indicates
	// whether additional input may follow; a filter may hold back output
	// pending more input unless more is false (end of body).
	Process(dst, src []byte, more bool) (inBytes, outBytes int, finished bool, err error)
}

// BufferedBase gives Source/Sink/Filter implementations a one-time
// allocation hook bound to the owning Parser/Serializer's Workspace,
// matching spec §4.4 ("Subclasses may allocate from it at init only").
// Embed BufferedBase and call Init from your constructor.
type BufferedBase struct {
	ws *workspace.Workspace
}

// Init binds ws for the lifetime of the embedding value. It must be called
// exactly once, before the first Read/Write/Process call.
func (b *BufferedBase) Init(ws *workspace.Workspace) {
	b.ws = ws
}

// Allocate reserves n bytes of workspace storage for this object's working
// memory. It must only be called during Init (spec §4.4).
func (b *BufferedBase) Allocate(n int) ([]byte, error) {
	return b.ws.Reserve(n)
}

// Initer is implemented by Filter/Source/Sink values that embed
// BufferedBase and need their one-time workspace binding before first use.
type Initer interface {
	Init(ws *workspace.Workspace)
}

// BindWorkspace calls Init(ws) on v if it implements Initer, and is a
// no-op otherwise. Parser and Serializer call this immediately after
// installing a Filter so BufferedBase.Allocate has a workspace to draw
// from (spec §4.4/§4.2.7/§4.3.2).
func BindWorkspace(v any, ws *workspace.Workspace) {
	if ib, ok := v.(Initer); ok {
		ib.Init(ws)
	}
}
