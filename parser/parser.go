// Package parser implements the incremental HTTP/1.x message parser
// (spec §4.2): a single-buffer state machine that turns a byte stream into
// a header.Store plus a framed, optionally decompressed body, without
// requiring the whole message to be resident at once.
package parser

import (
	"github.com/shapestone/wirehttp/bodyio"
	"github.com/shapestone/wirehttp/codec"
	"github.com/shapestone/wirehttp/errors"
	"github.com/shapestone/wirehttp/header"
	"github.com/shapestone/wirehttp/workspace"
)

// Parser is an incremental request or response parser. It is not safe for
// concurrent use. Create one with NewParser, feed it bytes through
// Prepare/Commit (and CommitEOF at end of stream), and drive it with Parse.
type Parser struct {
	cfg        Config
	isResponse bool
	ws         *workspace.Workspace
	store      *header.Store
	state      State

	raw      []byte
	writable int
	parsePos int
	headerEnd int
	eof      bool

	pendingHeadResponse bool

	payload      header.Payload
	bodyMode     bodyMode
	bodyLimit    uint64
	bodyDelivered uint64
	bodyFramed    uint64
	bodyFramingDone bool

	elasticBuf *[]byte
	sink       bodyio.Sink
	userFilter bodyio.Filter
	activeFilter bodyio.Filter
	chainScratch []byte
	filterOutScratch []byte

	bodyBuf []byte

	chunk chunkState

	completeAcked bool
}

// NewParser returns a Parser configured for requests (isResponse=false) or
// responses (isResponse=true), with its own private Workspace sized per
// cfg.
func NewParser(cfg Config, isResponse bool) *Parser {
	p := &Parser{
		cfg:        cfg,
		isResponse: isResponse,
		ws:         workspace.New(cfg.MinBuffer + cfg.MaxTypeErase),
	}
	p.Reset()
	return p
}

// Reset returns the Parser to StateStart, ready for a new message, keeping
// the underlying workspace and raw buffer capacity (spec §4.2.2 "reset").
func (p *Parser) Reset() {
	if p.isResponse {
		p.store = header.NewResponse()
	} else {
		p.store = header.NewRequest()
	}
	p.state = StateStart
	p.writable = 0
	p.parsePos = 0
	p.headerEnd = 0
	p.eof = false
	p.pendingHeadResponse = false
	p.payload = header.Payload{}
	p.bodyMode = bodyModeInPlace
	p.bodyLimit = p.cfg.BodyLimit
	p.bodyDelivered = 0
	p.bodyFramed = 0
	p.bodyFramingDone = false
	p.elasticBuf = nil
	p.sink = nil
	p.userFilter = nil
	p.activeFilter = nil
	p.bodyBuf = nil
	p.chunk = chunkState{}
	p.completeAcked = false
	p.ws.Clear()
}

// Store returns the header.Store being populated by this Parser.
func (p *Parser) Store() *header.Store { return p.store }

// State returns the Parser's current position in the state machine.
func (p *Parser) State() State { return p.state }

// SetBodyLimit overrides cfg.BodyLimit for the message currently being
// parsed (spec §4.2.1 "body_limit is settable per-message").
func (p *Parser) SetBodyLimit(n uint64) { p.bodyLimit = n }

// StartHeadResponse tells a response Parser that the upcoming response
// answers a HEAD request, forcing Payload to None once headers complete
// (spec §4.2.3 rule 1). It has no effect on a request Parser and must be
// called before the response's headers finish parsing.
func (p *Parser) StartHeadResponse() { p.pendingHeadResponse = true }

// UseInPlaceBody selects the default in-place body delivery mode: body
// bytes accumulate in an internally owned buffer that the caller drains
// with BodyData/ConsumeBody. Call before Parse advances past
// StateHeaderDone.
func (p *Parser) UseInPlaceBody() { p.bodyMode = bodyModeInPlace }

// UseElasticBody selects elastic delivery: every decoded body byte is
// appended to *buf as soon as it is available.
func (p *Parser) UseElasticBody(buf *[]byte) {
	p.bodyMode = bodyModeElastic
	p.elasticBuf = buf
}

// UseSink selects sink delivery: every decoded body byte is pushed to sink
// as soon as it is available.
func (p *Parser) UseSink(sink bodyio.Sink) {
	p.bodyMode = bodyModeSink
	p.sink = sink
}

// UseFilter installs a caller-supplied Filter to run on body bytes after
// any inline decompression (spec §4.2.7, §4.4).
func (p *Parser) UseFilter(f bodyio.Filter) { p.userFilter = f }

// Prepare returns a writable slice of at least n bytes (cfg.MinBuffer if
// n<=0, cfg.MaxPrepare at most if configured) for the caller to fill from
// its transport, growing the internal buffer as needed.
func (p *Parser) Prepare(n int) ([]byte, error) {
	if n <= 0 {
		n = p.cfg.MinBuffer
	}
	if p.cfg.MaxPrepare > 0 && n > p.cfg.MaxPrepare {
		n = p.cfg.MaxPrepare
	}
	need := p.writable + n
	if need > len(p.raw) {
		grown := make([]byte, need)
		copy(grown, p.raw[:p.writable])
		p.raw = grown
	}
	return p.raw[p.writable:need], nil
}

// Commit records that n bytes of a slice previously returned by Prepare
// were filled with input.
func (p *Parser) Commit(n int) error {
	if n < 0 || p.writable+n > len(p.raw) {
		return errors.New(errors.KindBufferOverflow, "parser.Commit", int64(n))
	}
	p.writable += n
	return nil
}

// CommitEOF records that no further input will ever arrive.
func (p *Parser) CommitEOF() { p.eof = true }

// ReleaseBufferedData compacts the internal buffer, discarding bytes
// already consumed by parsing (spec §4.5 "release buffered data"). Safe to
// call at any time; it never discards unconsumed input.
func (p *Parser) ReleaseBufferedData() {
	if p.parsePos == 0 {
		return
	}
	n := copy(p.raw, p.raw[p.parsePos:p.writable])
	p.raw = p.raw[:n]
	p.writable = n
	p.parsePos = 0
}

// IsComplete reports whether the current message has been fully parsed.
func (p *Parser) IsComplete() bool {
	return p.state == StateComplete || p.state == StateEndOfStream
}

// BodyData returns the currently available, not-yet-consumed in-place body
// bytes. Valid only in bodyModeInPlace.
func (p *Parser) BodyData() []byte { return p.bodyBuf }

// ConsumeBody advances past n bytes of BodyData, which the caller must
// have already read.
func (p *Parser) ConsumeBody(n int) error {
	if n < 0 || n > len(p.bodyBuf) {
		return errors.New(errors.KindBufferOverflow, "parser.ConsumeBody", int64(n))
	}
	p.bodyBuf = p.bodyBuf[n:]
	if len(p.bodyBuf) == 0 && p.state == StateCompleteInPlace {
		if p.bodyFramingDone {
			p.state = StateComplete
		} else {
			p.state = StateBody
		}
	}
	return nil
}

// Parse advances the state machine as far as currently buffered input
// allows, stopping at StateHeaderDone (so the caller can pick a body
// delivery mode), StateCompleteInPlace (so the caller can drain BodyData),
// or StateComplete/StateEndOfStream. It returns a KindNeedData error when
// it cannot make further progress without more input from Prepare/Commit.
func (p *Parser) Parse() error {
	for {
		switch p.state {
		case StateStart, StateHeader:
			res, err := scanHeaderSection(p.raw[p.parsePos:p.writable], p.cfg)
			if err != nil {
				return err
			}
			if !res.complete {
				if p.eof {
					return errors.New(errors.KindIncomplete, "parser.Parse", int64(p.parsePos))
				}
				p.state = StateHeader
				return errors.New(errors.KindNeedData, "parser.Parse", int64(p.parsePos))
			}
			if err := p.installHeaders(res); err != nil {
				return err
			}
			p.parsePos += res.consumed
			p.headerEnd = p.parsePos
			if p.isResponse && p.pendingHeadResponse {
				p.store.MarkHeadResponse(true)
			}
			p.state = StateHeaderDone
			return nil

		case StateHeaderDone:
			if err := p.beginBody(); err != nil {
				return err
			}
			continue

		case StateBody, StateSetBody:
			done, err := p.advanceBody()
			if err != nil {
				return err
			}
			if done {
				continue
			}
			if p.state == StateCompleteInPlace {
				return nil
			}
			return errors.New(errors.KindNeedData, "parser.Parse", int64(p.parsePos))

		case StateCompleteInPlace:
			return nil

		case StateComplete:
			if !p.completeAcked {
				p.completeAcked = true
				return nil
			}
			return errors.New(errors.KindEndOfMessage, "parser.Parse", 0)

		case StateEndOfStream:
			return errors.New(errors.KindEndOfStream, "parser.Parse", 0)

		default:
			return errors.New(errors.KindIncomplete, "parser.Parse", 0)
		}
	}
}

func (p *Parser) installHeaders(res headerScanResult) error {
	var err error
	if p.isResponse {
		err = parseStatusLine(p.store, res.startLine)
	} else {
		err = parseRequestLine(p.store, res.startLine)
	}
	if err != nil {
		return err
	}
	for _, fl := range res.fields {
		installField(p.store, fl.name, fl.value)
	}
	return nil
}

// beginBody computes the framing outcome, installs any inline
// decompression filter, and transitions into StateBody (or straight to
// StateComplete for payload kinds with no body).
func (p *Parser) beginBody() error {
	meta := p.store.Metadata()
	p.payload = meta.Payload

	switch p.payload.Kind {
	case header.PayloadError:
		for _, e := range []error{
			meta.Connection.ParseError,
			meta.ContentLength.ParseError,
			meta.Expect.ParseError,
			meta.TransferEncoding.ParseError,
			meta.Upgrade.ParseError,
		} {
			if e != nil {
				return e
			}
		}
		return errors.New(errors.KindBadPayload, "parser.beginBody", int64(p.parsePos))
	case header.PayloadNone:
		p.state = StateComplete
		return nil
	}

	var decompress bodyio.Filter
	switch {
	case meta.TransferEncoding.Encoding == header.EncodingGzip && p.cfg.ApplyGzipDecoder:
		decompress = codec.NewGzipDecodeFilter()
	case meta.TransferEncoding.Encoding == header.EncodingDeflate && p.cfg.ApplyDeflateDecoder:
		decompress = codec.NewDeflateDecodeFilter()
	}
	if decompress != nil {
		bodyio.BindWorkspace(decompress, p.ws)
	}

	switch {
	case decompress != nil && p.userFilter != nil:
		if p.chainScratch == nil {
			s, err := p.ws.Reserve(p.cfg.MaxTypeErase)
			if err != nil {
				return err
			}
			p.chainScratch = s
		}
		p.activeFilter = bodyio.NewChainFilter(decompress, p.userFilter, p.chainScratch)
	case decompress != nil:
		p.activeFilter = decompress
	case p.userFilter != nil:
		p.activeFilter = p.userFilter
	default:
		p.activeFilter = nil
	}

	p.state = StateBody
	return nil
}

// frameNext returns the next span of framing-decoded (but not yet
// filtered) body bytes currently available, without copying, plus whether
// framing has fully completed and whether more raw input is required to
// make further progress.
func (p *Parser) frameNext() (produced []byte, done bool, needMore bool, err error) {
	switch p.payload.Kind {
	case header.PayloadChunked:
		return p.advanceChunked(nil)

	case header.PayloadKnownSize:
		avail := p.writable - p.parsePos
		remaining := p.payload.Size - p.bodyFramed
		n := avail
		if uint64(n) > remaining {
			n = int(remaining)
		}
		produced = p.raw[p.parsePos : p.parsePos+n]
		p.parsePos += n
		p.bodyFramed += uint64(n)
		done = p.bodyFramed >= p.payload.Size
		needMore = !done && n == 0
		return produced, done, needMore, nil

	case header.PayloadToEOF:
		n := p.writable - p.parsePos
		produced = p.raw[p.parsePos : p.parsePos+n]
		p.parsePos += n
		p.bodyFramed += uint64(n)
		if p.eof {
			done = true
		} else if n == 0 {
			needMore = true
		}
		return produced, done, needMore, nil

	default:
		return nil, true, false, nil
	}
}

// advanceBody drains whatever framing-decoded body bytes are currently
// available, runs them through any installed filter, delivers the result
// per bodyMode, and reports whether the body is now fully delivered.
func (p *Parser) advanceBody() (done bool, err error) {
	produced, framingDone, needMore, err := p.frameNext()
	if err != nil {
		return false, err
	}

	if len(produced) > 0 {
		out := produced
		if p.activeFilter != nil {
			out, err = p.runFilter(produced, !framingDone)
			if err != nil {
				return false, err
			}
		}
		if len(out) > 0 {
			p.bodyDelivered += uint64(len(out))
			if p.bodyLimit > 0 && p.bodyDelivered > p.bodyLimit {
				return false, errors.New(errors.KindBodyTooLarge, "parser.advanceBody", int64(p.bodyDelivered))
			}
			if derr := p.deliver(out); derr != nil {
				return false, derr
			}
		}
	}

	if framingDone {
		p.bodyFramingDone = true
		if p.bodyMode == bodyModeInPlace && len(p.bodyBuf) > 0 {
			p.state = StateCompleteInPlace
		} else {
			p.state = StateComplete
		}
		return true, nil
	}
	if needMore {
		return false, errors.New(errors.KindNeedData, "parser.advanceBody", int64(p.parsePos))
	}
	return false, nil
}

// deliver routes newly produced (post-filter) body bytes to the
// configured destination for bodyMode.
func (p *Parser) deliver(out []byte) error {
	switch p.bodyMode {
	case bodyModeInPlace:
		p.bodyBuf = append(p.bodyBuf, out...)
		if len(p.bodyBuf) > 0 {
			p.state = StateCompleteInPlace
		}
		return nil
	case bodyModeElastic:
		*p.elasticBuf = append(*p.elasticBuf, out...)
		return nil
	case bodyModeSink:
		n, err := p.sink.Write(out, !p.bodyFramingDone)
		if err != nil {
			return errors.Wrap(errors.KindBadPayload, "parser.deliver", 0, err)
		}
		if n != len(out) {
			return errors.New(errors.KindBufferOverflow, "parser.deliver", 0)
		}
		return nil
	default:
		return nil
	}
}

// runFilter pushes src through p.activeFilter, growing out until the
// filter has consumed everything offered (and, when more==false, until it
// reports finished).
func (p *Parser) runFilter(src []byte, more bool) ([]byte, error) {
	if p.filterOutScratch == nil {
		p.filterOutScratch = make([]byte, 8192)
	}
	var out []byte
	in := src
	for {
		inN, outN, finished, err := p.activeFilter.Process(p.filterOutScratch, in, more)
		if err != nil {
			return nil, err
		}
		out = append(out, p.filterOutScratch[:outN]...)
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
