package header

import (
	"strconv"
	"strings"

	"github.com/shapestone/wirehttp/errors"
)

// Encoding is the effective content-coding applied to a message body,
// derived from Transfer-Encoding's non-chunked codings (spec §3.2).
type Encoding int

const (
	EncodingIdentity Encoding = iota
	EncodingDeflate
	EncodingGzip
)

// PayloadKind classifies how a message's body length is determined
// (spec §3.2 "payload").
type PayloadKind int

const (
	PayloadNone PayloadKind = iota
	PayloadError
	PayloadKnownSize
	PayloadChunked
	PayloadToEOF
)

// Payload describes the framing outcome computed at header_done
// (spec §4.2.3). Size is meaningful only when Kind == PayloadKnownSize.
type Payload struct {
	Kind PayloadKind
	Size uint64
}

// ConnectionMeta mirrors metadata::connection_t.
type ConnectionMeta struct {
	Count      int
	Close      bool
	KeepAlive  bool
	Upgrade    bool
	ParseError error
}

// ContentLengthMeta mirrors metadata::content_length_t.
type ContentLengthMeta struct {
	Count      int
	Value      uint64
	ParseError error
}

// ExpectMeta mirrors metadata::expect_t.
type ExpectMeta struct {
	Count         int
	Is100Continue bool
	ParseError    error
}

// TransferEncodingMeta mirrors metadata::transfer_encoding_t.
type TransferEncodingMeta struct {
	Count       int
	Codings     int
	IsChunked   bool
	Encoding    Encoding
	ParseError  error
}

// UpgradeMeta mirrors metadata::upgrade_t.
type UpgradeMeta struct {
	Count             int
	ContainsWebSocket bool
	ParseError        error
}

// Metadata accompanies a Store and is recomputed on every field
// insert/erase (spec §3.2, §4.1 "Metadata updates") by recomputeFraming,
// which rescans every entry rather than updating only the changed field.
type Metadata struct {
	Connection       ConnectionMeta
	ContentLength    ContentLengthMeta
	Expect           ExpectMeta
	TransferEncoding TransferEncodingMeta
	Upgrade          UpgradeMeta
	Payload          Payload
}

// recomputeConnection re-parses every Connection field's comma list.
func recomputeConnection(values []string) ConnectionMeta {
	m := ConnectionMeta{Count: len(values)}
	for _, v := range values {
		for _, tok := range splitList(v) {
			switch strings.ToLower(tok) {
			case "close":
				m.Close = true
			case "keep-alive":
				m.KeepAlive = true
			case "upgrade":
				m.Upgrade = true
			case "":
				m.ParseError = errors.New(errors.KindBadConnection, "header.recomputeConnection", 0)
			}
		}
	}
	return m
}

// recomputeContentLength enforces "multiple Content-Length fields with
// differing values is a fatal framing error" while accepting duplicates
// that agree (spec §8 boundary: "Two Content-Length: 5 headers are
// accepted").
func recomputeContentLength(values []string) ContentLengthMeta {
	m := ContentLengthMeta{Count: len(values)}
	seen := false
	for _, v := range values {
		v = trimOWS(v)
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil || v == "" || !isAllDigits(v) {
			m.ParseError = errors.New(errors.KindBadContentLength, "header.recomputeContentLength", 0)
			continue
		}
		if seen && n != m.Value {
			m.ParseError = errors.New(errors.KindMultipleContentLength, "header.recomputeContentLength", 0)
			continue
		}
		m.Value = n
		seen = true
	}
	return m
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// recomputeExpect allows at most one Expect field (spec §3.2: "More than
// one Expect header is an error").
func recomputeExpect(values []string) ExpectMeta {
	m := ExpectMeta{Count: len(values)}
	if len(values) > 1 {
		m.ParseError = errors.New(errors.KindBadExpect, "header.recomputeExpect", 0)
		return m
	}
	if len(values) == 1 {
		m.Is100Continue = strings.EqualFold(trimOWS(values[0]), "100-continue")
	}
	return m
}

// recomputeTransferEncoding re-parses the comma-separated coding list and
// determines is_chunked / effective_body_encoding (spec §3.2, §4.1).
func recomputeTransferEncoding(values []string) TransferEncodingMeta {
	m := TransferEncodingMeta{Count: len(values), Encoding: EncodingIdentity}
	var codings []string
	for _, v := range values {
		codings = append(codings, splitList(v)...)
	}
	m.Codings = len(codings)
	if len(codings) == 0 {
		return m
	}
	last := strings.ToLower(codings[len(codings)-1])
	m.IsChunked = last == "chunked"
	nonChunked := codings
	if m.IsChunked {
		nonChunked = codings[:len(codings)-1]
	}
	enc := EncodingIdentity
	for _, c := range nonChunked {
		switch strings.ToLower(c) {
		case "identity":
			// no-op
		case "deflate":
			enc = EncodingDeflate
		case "gzip", "x-gzip":
			enc = EncodingGzip
		case "chunked":
			// chunked anywhere but last is a framing error
			m.ParseError = errors.New(errors.KindBadTransferEncoding, "header.recomputeTransferEncoding", 0)
		default:
			m.ParseError = errors.New(errors.KindBadTransferEncoding, "header.recomputeTransferEncoding", 0)
		}
	}
	m.Encoding = enc
	return m
}

// recomputeUpgrade scans the comma list for a "websocket" token.
func recomputeUpgrade(values []string) UpgradeMeta {
	m := UpgradeMeta{Count: len(values)}
	for _, v := range values {
		for _, tok := range splitList(v) {
			if strings.EqualFold(strings.TrimSpace(tok), "websocket") {
				m.ContainsWebSocket = true
			}
		}
	}
	return m
}

// splitList splits a comma-separated field-value into trimmed tokens,
// matching the #list grammar used by Connection/Transfer-Encoding/Upgrade.
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
