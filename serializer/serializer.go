// Package serializer implements the incremental HTTP/1.x message
// serializer (spec §4.3): given a header.Store and a body representation,
// it produces wire bytes through a Prepare/Consume cycle symmetric with
// the parser's Prepare/Commit.
package serializer

import (
	"strconv"

	"github.com/shapestone/wirehttp/bodyio"
	"github.com/shapestone/wirehttp/codec"
	"github.com/shapestone/wirehttp/errors"
	"github.com/shapestone/wirehttp/header"
	"github.com/shapestone/wirehttp/workspace"
)

// BodyKind selects how a Serializer's body is produced (spec §4.3.2).
type BodyKind int

const (
	BodyNone BodyKind = iota
	BodyBuffer
	BodySource
	BodyStream
)

type state int

const (
	stateHeaders state = iota
	statePaused
	stateBody
	stateDone
)

// Serializer is an incremental request or response serializer. It is not
// safe for concurrent use.
type Serializer struct {
	cfg Config
	ws  *workspace.Workspace

	store *header.Store
	st    state

	headerBuf []byte
	headerPos int

	bodyKind  BodyKind
	constBody []byte
	constPos  int
	bodyBufferEmitted bool
	source    bodyio.Source
	sourceDone bool
	streamFinished bool

	useChunked bool
	filter     bodyio.Filter
	filterScratch []byte

	pending    []byte
	pendingPos int

	resumeRequested bool
}

// NewSerializer returns a Serializer with its own private Workspace sized
// per cfg.
func NewSerializer(cfg Config) *Serializer {
	return &Serializer{cfg: cfg, ws: workspace.New(cfg.MinWorkspaceSize)}
}

// Reset returns the Serializer to its pre-Start state, ready for a new
// message, keeping the underlying workspace (spec §4.3.1 "reset").
func (sr *Serializer) Reset() {
	sr.store = nil
	sr.st = stateHeaders
	sr.headerBuf = nil
	sr.headerPos = 0
	sr.bodyKind = BodyNone
	sr.constBody = nil
	sr.constPos = 0
	sr.bodyBufferEmitted = false
	sr.source = nil
	sr.sourceDone = false
	sr.streamFinished = false
	sr.useChunked = false
	sr.filter = nil
	sr.pending = nil
	sr.pendingPos = 0
	sr.resumeRequested = false
	sr.ws.Clear()
}

func (sr *Serializer) start(store *header.Store, kind BodyKind, body []byte, src bodyio.Source) error {
	if sr.ws.Size() < sr.cfg.MinWorkspaceSize {
		return errors.New(errors.KindLengthError, "serializer.Start", 0)
	}
	sr.Reset()
	sr.store = store
	sr.headerBuf = store.Buffer()
	sr.bodyKind = kind
	sr.constBody = body
	sr.source = src
	sr.useChunked = store.Metadata().Payload.Kind == header.PayloadChunked
	sr.st = stateHeaders
	return nil
}

// StartEmpty begins serializing store with no body (spec: a message whose
// payload is None — a GET request, a HEAD/1xx/204/304 response).
func (sr *Serializer) StartEmpty(store *header.Store) error {
	return sr.start(store, BodyNone, nil, nil)
}

// StartBuffer begins serializing store with body as a single in-memory
// buffer (spec §4.3.2 "const buffer").
func (sr *Serializer) StartBuffer(store *header.Store, body []byte) error {
	return sr.start(store, BodyBuffer, body, nil)
}

// StartSource begins serializing store with body pulled from src on
// demand (spec §4.3.2 "source-backed body").
func (sr *Serializer) StartSource(store *header.Store, src bodyio.Source) error {
	return sr.start(store, BodySource, nil, src)
}

// StartStream begins serializing store with body pushed by the caller via
// WriteBody (spec §4.3.2 "interactive stream").
func (sr *Serializer) StartStream(store *header.Store) error {
	return sr.start(store, BodyStream, nil, nil)
}

// UseFilter installs an encoding Filter (e.g. a codec.NewGzipEncodeFilter)
// to run over body bytes before chunk framing (spec §4.3.2).
func (sr *Serializer) UseFilter(f bodyio.Filter) {
	sr.filter = f
	bodyio.BindWorkspace(f, sr.ws)
}

// UseContentEncoding installs the matching codec encode filter for enc if
// cfg enables it, mirroring the parser's inline-decompression toggles
// (spec §4.3.2).
func (sr *Serializer) UseContentEncoding(enc header.Encoding) {
	switch {
	case enc == header.EncodingGzip && sr.cfg.ApplyGzipEncoder:
		sr.filter = codec.NewGzipEncodeFilter()
	case enc == header.EncodingDeflate && sr.cfg.ApplyDeflateEncoder:
		sr.filter = codec.NewDeflateEncodeFilter()
	}
	bodyio.BindWorkspace(sr.filter, sr.ws)
}

// IsDone reports whether the message has been fully serialized and
// consumed.
func (sr *Serializer) IsDone() bool { return sr.st == stateDone }

// WriteBody feeds the next piece of an interactive-stream body (valid
// only after StartStream, once headers have been sent and any
// Expect:100-continue pause has been resumed). more=false marks the last
// chunk.
func (sr *Serializer) WriteBody(data []byte, more bool) error {
	if sr.bodyKind == BodyStream && sr.st == stateHeaders && sr.headerPos >= len(sr.headerBuf) &&
		!(sr.store.Metadata().Expect.Is100Continue && !sr.resumeRequested) {
		sr.st = stateBody
	}
	if sr.bodyKind != BodyStream || sr.st != stateBody {
		return errors.New(errors.KindIncomplete, "serializer.WriteBody", 0)
	}
	out, err := sr.frameBody(data, more)
	if err != nil {
		return err
	}
	sr.pending = append(sr.pending, out...)
	if !more {
		sr.streamFinished = true
	}
	return nil
}

// Resume answers a pause caused by Expect: 100-continue (spec §4.3.4):
// proceed=true sends the body as originally started; proceed=false
// abandons the message (Prepare subsequently reports end-of-message with
// no body ever produced).
func (sr *Serializer) Resume(proceed bool) error {
	if sr.st != statePaused {
		return errors.New(errors.KindIncomplete, "serializer.Resume", 0)
	}
	sr.resumeRequested = true
	if !proceed {
		sr.st = stateDone
		return nil
	}
	sr.st = stateBody
	return nil
}

// Prepare returns the next span of wire bytes ready to be written. The
// caller must Consume what it actually writes before calling Prepare
// again. It returns errors.KindExpect100Continue while paused,
// errors.KindNeedData when an interactive stream has no pending output,
// and errors.KindEndOfMessage once the whole message has been consumed.
func (sr *Serializer) Prepare() ([]byte, error) {
	for {
		switch sr.st {
		case stateHeaders:
			if sr.headerPos < len(sr.headerBuf) {
				return sr.headerBuf[sr.headerPos:], nil
			}
			if sr.store.Metadata().Expect.Is100Continue && !sr.resumeRequested {
				sr.st = statePaused
				return nil, errors.New(errors.KindExpect100Continue, "serializer.Prepare", 0)
			}
			sr.st = stateBody
			continue

		case statePaused:
			return nil, errors.New(errors.KindExpect100Continue, "serializer.Prepare", 0)

		case stateBody:
			if sr.pendingPos < len(sr.pending) {
				return sr.pending[sr.pendingPos:], nil
			}
			produced, done, err := sr.produceBody()
			if err != nil {
				return nil, err
			}
			sr.pending = produced
			sr.pendingPos = 0
			if len(sr.pending) == 0 {
				if done {
					sr.st = stateDone
					return nil, errors.New(errors.KindEndOfMessage, "serializer.Prepare", 0)
				}
				return nil, errors.New(errors.KindNeedData, "serializer.Prepare", 0)
			}
			return sr.pending, nil

		case stateDone:
			return nil, errors.New(errors.KindEndOfMessage, "serializer.Prepare", 0)

		default:
			return nil, errors.New(errors.KindIncomplete, "serializer.Prepare", 0)
		}
	}
}

// Consume advances past n bytes of the slice last returned by Prepare.
func (sr *Serializer) Consume(n int) error {
	if n < 0 {
		return errors.New(errors.KindBufferOverflow, "serializer.Consume", int64(n))
	}
	switch sr.st {
	case stateHeaders:
		if sr.headerPos+n > len(sr.headerBuf) {
			return errors.New(errors.KindBufferOverflow, "serializer.Consume", int64(n))
		}
		sr.headerPos += n
	case stateBody, stateDone:
		if sr.pendingPos+n > len(sr.pending) {
			return errors.New(errors.KindBufferOverflow, "serializer.Consume", int64(n))
		}
		sr.pendingPos += n
		if sr.pendingPos > 0 {
			sr.pending = sr.pending[sr.pendingPos:]
			sr.pendingPos = 0
		}
	default:
		if n != 0 {
			return errors.New(errors.KindIncomplete, "serializer.Consume", int64(n))
		}
	}
	return nil
}

// produceBody generates the next span of framed (chunk-enveloped and/or
// filtered) body wire bytes, per bodyKind.
func (sr *Serializer) produceBody() (produced []byte, done bool, err error) {
	switch sr.bodyKind {
	case BodyNone:
		return nil, true, nil

	case BodyBuffer:
		if sr.bodyBufferEmitted {
			return nil, true, nil
		}
		chunk := sr.constBody[sr.constPos:]
		sr.constPos = len(sr.constBody)
		sr.bodyBufferEmitted = true
		out, ferr := sr.frameBody(chunk, false)
		return out, true, ferr

	case BodySource:
		if sr.sourceDone {
			return nil, true, nil
		}
		buf := make([]byte, 8192)
		n, finished, rerr := sr.source.Read(buf)
		if rerr != nil {
			return nil, false, rerr
		}
		sr.sourceDone = finished
		out, ferr := sr.frameBody(buf[:n], !finished)
		return out, finished && len(out) == 0, ferr

	case BodyStream:
		if sr.streamFinished {
			return nil, true, nil
		}
		return nil, false, nil

	default:
		return nil, true, nil
	}
}

// frameBody runs data through any installed encode Filter and, if the
// message uses chunked transfer-coding, wraps the result in a chunk
// envelope, appending the terminating "0\r\n\r\n" once more==false (spec
// §4.3.3).
func (sr *Serializer) frameBody(data []byte, more bool) ([]byte, error) {
	encoded := data
	var err error
	if sr.filter != nil {
		encoded, err = sr.runFilter(data, more)
		if err != nil {
			return nil, err
		}
	}
	if !sr.useChunked {
		return encoded, nil
	}
	var out []byte
	out = appendChunk(out, encoded)
	if !more {
		out = append(out, "0\r\n\r\n"...)
	}
	return out, nil
}

func appendChunk(dst, data []byte) []byte {
	if len(data) == 0 {
		return dst
	}
	dst = append(dst, strconv.FormatUint(uint64(len(data)), 16)...)
	dst = append(dst, '\r', '\n')
	dst = append(dst, data...)
	dst = append(dst, '\r', '\n')
	return dst
}

// runFilter pushes src through sr.filter, growing out until the filter
// has consumed everything offered (and, when more==false, until it
// reports finished) — mirrors parser.Parser.runFilter for the encode
// direction.
func (sr *Serializer) runFilter(src []byte, more bool) ([]byte, error) {
	if sr.filterScratch == nil {
		sr.filterScratch = make([]byte, 8192)
	}
	var out []byte
	in := src
	for {
		inN, outN, finished, err := sr.filter.Process(sr.filterScratch, in, more)
		if err != nil {
			return nil, err
		}
		out = append(out, sr.filterScratch[:outN]...)
		in = in[inN:]
		if finished {
			break
		}
		if len(in) == 0 {
			if more || outN == 0 {
				break
			}
		}
	}
	return out, nil
}
