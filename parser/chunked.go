package parser

import (
	"bytes"
	"strconv"

	"github.com/shapestone/wirehttp/errors"
)

// chunkPhase is the sub-state of the chunked transfer-coding decoder
// (spec §4.2.6).
type chunkPhase int

const (
	chunkPhaseSize chunkPhase = iota
	chunkPhaseData
	chunkPhaseDataCRLF
	chunkPhaseTrailer
	chunkPhaseDone
)

// chunkState tracks the decoder's position across repeated advanceChunked
// calls, since a chunk's size line, data, or trailer may straddle several
// Commit calls.
type chunkState struct {
	phase     chunkPhase
	remaining uint64
}

// advanceChunked consumes as much chunked-encoded wire data as is currently
// buffered starting at p.parsePos, appending decoded body bytes to out, and
// installing any trailer fields directly into p.store. It stops when it
// runs out of buffered input (returning needMore=true, unless p.eof, which
// is a truncation error) or when the terminating trailer section completes
// (done=true).
func (p *Parser) advanceChunked(out []byte) (result []byte, done bool, needMore bool, err error) {
	result = out
	for {
		switch p.chunk.phase {
		case chunkPhaseSize:
			cStart, cEnd := findCRLF(p.raw[:p.writable], p.parsePos)
			if cStart < 0 {
				if p.parsePos+maxChunkSizeLine < p.writable {
					return result, false, false, errors.New(errors.KindBadNumber, "parser.advanceChunked", int64(p.parsePos))
				}
				if p.eof {
					return result, false, false, errors.New(errors.KindIncomplete, "parser.advanceChunked", int64(p.parsePos))
				}
				return result, false, true, nil
			}
			line := p.raw[p.parsePos:cStart]
			if semi := bytes.IndexByte(line, ';'); semi >= 0 {
				line = line[:semi]
			}
			line = trimOWS(line)
			if len(line) == 0 || len(line) > 16 {
				return result, false, false, errors.New(errors.KindBadNumber, "parser.advanceChunked", int64(p.parsePos))
			}
			n, perr := strconv.ParseUint(string(line), 16, 64)
			if perr != nil {
				return result, false, false, errors.New(errors.KindNumericOverflow, "parser.advanceChunked", int64(p.parsePos))
			}
			p.parsePos = cEnd
			p.chunk.remaining = n
			if n == 0 {
				p.chunk.phase = chunkPhaseTrailer
			} else {
				p.chunk.phase = chunkPhaseData
			}

		case chunkPhaseData:
			avail := p.writable - p.parsePos
			if avail == 0 {
				if p.eof {
					return result, false, false, errors.New(errors.KindIncomplete, "parser.advanceChunked", int64(p.parsePos))
				}
				return result, false, true, nil
			}
			n := avail
			if uint64(n) > p.chunk.remaining {
				n = int(p.chunk.remaining)
			}
			result = append(result, p.raw[p.parsePos:p.parsePos+n]...)
			p.parsePos += n
			p.chunk.remaining -= uint64(n)
			if p.chunk.remaining == 0 {
				p.chunk.phase = chunkPhaseDataCRLF
			} else {
				if p.eof {
					return result, false, false, errors.New(errors.KindIncomplete, "parser.advanceChunked", int64(p.parsePos))
				}
				return result, false, true, nil
			}

		case chunkPhaseDataCRLF:
			cStart, cEnd := findCRLF(p.raw[:p.writable], p.parsePos)
			if cStart < 0 || cStart != p.parsePos {
				if p.writable-p.parsePos < 2 {
					if p.eof {
						return result, false, false, errors.New(errors.KindIncomplete, "parser.advanceChunked", int64(p.parsePos))
					}
					return result, false, true, nil
				}
				return result, false, false, errors.New(errors.KindBadLineEnding, "parser.advanceChunked", int64(p.parsePos))
			}
			p.parsePos = cEnd
			p.chunk.phase = chunkPhaseSize

		case chunkPhaseTrailer:
			pos, fields, complete, serr := scanFieldSection(p.raw[:p.writable], p.parsePos, p.cfg.HeadersMaxField, p.cfg.HeadersMaxFields)
			if serr != nil {
				return result, false, false, serr
			}
			if !complete {
				if p.eof {
					return result, false, false, errors.New(errors.KindIncomplete, "parser.advanceChunked", int64(p.parsePos))
				}
				return result, false, true, nil
			}
			for _, fl := range fields {
				installField(p.store, fl.name, fl.value)
			}
			p.parsePos = pos
			p.chunk.phase = chunkPhaseDone
			return result, true, false, nil

		case chunkPhaseDone:
			return result, true, false, nil
		}
	}
}

// maxChunkSizeLine bounds how far ahead advanceChunked will scan for a
// chunk-size line's terminator before concluding the line itself (not just
// the buffer) is malformed, protecting against unbounded "need more data"
// loops on a hostile chunk-size line that never terminates.
const maxChunkSizeLine = 64
