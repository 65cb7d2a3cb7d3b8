// Package header implements the header container (spec §3.1, §3.2, §4.1):
// a canonical byte buffer for one HTTP header section (request, response,
// or bare fields) together with an ordered field table and the framing
// metadata derived from it. Both the parser and the serializer produce and
// consume a Store.
package header

import (
	"strconv"

	"github.com/shapestone/wirehttp/errors"
	"github.com/shapestone/wirehttp/field"
)

// Kind distinguishes the three header-section flavors a Store can hold
// (spec §9: "single struct + kind tag" in place of the source's CRTP
// inheritance layering).
type Kind int

const (
	KindFields Kind = iota
	KindRequest
	KindResponse
)

// Entry is one name/value pair in the field table (spec §3.1 invariant 4).
// The reverse-grown-table memory layout of the C++ source is a storage
// detail of that implementation's offset arithmetic; this port preserves
// the CONTRACT (stable per-field identity addressable by index, insertion
// order iteration, O(1) append) using a plain Go slice instead — see the
// "Simplification" note in DESIGN.md's `header` section for the rationale.
type Entry struct {
	Name  string
	Value string
	ID    field.ID
}

const defaultMaxCapacity = 1<<32 - 1 // offsets fit in a 32-bit offset_type (spec §6.5)

// Store is exactly one parsed or constructed HTTP header section.
type Store struct {
	kind Kind

	// Request start-line.
	method       Method
	methodRaw    string // original bytes when method == MethodUnknown
	target       string
	reqVersion   version

	// Response start-line.
	statusCode   int
	reason       string
	respVersion  version
	headResponse bool // true if this response is known to answer a HEAD request

	entries []Entry
	meta    Metadata

	maxCapacity int
	bufDirty    bool
	buf         []byte
}

type version struct {
	major, minor int
}

func (v version) String() string {
	if v.major == 0 && v.minor == 0 {
		return ""
	}
	return "HTTP/" + strconv.Itoa(v.major) + "." + strconv.Itoa(v.minor)
}

// NewFields returns an empty bare-fields Store (default buffer "\r\n").
func NewFields() *Store {
	return &Store{kind: KindFields, maxCapacity: defaultMaxCapacity, bufDirty: true}
}

// NewRequest returns a default "GET / HTTP/1.1" Store with no fields.
func NewRequest() *Store {
	return &Store{
		kind:        KindRequest,
		method:      MethodGet,
		target:      "/",
		reqVersion:  version{1, 1},
		maxCapacity: defaultMaxCapacity,
		bufDirty:    true,
	}
}

// NewResponse returns a default "HTTP/1.1 200 OK" Store with no fields.
func NewResponse() *Store {
	return &Store{
		kind:        KindResponse,
		statusCode:  200,
		reason:      ReasonPhrase(200),
		respVersion: version{1, 1},
		maxCapacity: defaultMaxCapacity,
		bufDirty:    true,
	}
}

// Kind returns whether this is a bare-fields, request, or response store.
func (s *Store) Kind() Kind { return s.kind }

// SetMaxCapacity bounds total buffer growth (spec §4.1 "Growth policy").
// Reserve returns a KindLengthError for a request that would exceed it;
// Append, Set and the other mutators do not check it.
func (s *Store) SetMaxCapacity(n int) { s.maxCapacity = n }

// MarkHeadResponse tells a response Store that it answers a HEAD request,
// which forces Payload to None regardless of Content-Length/Transfer-
// Encoding (spec §4.2.3 rule 1). The parser calls this before header_done
// when the request method was HEAD.
func (s *Store) MarkHeadResponse(v bool) {
	s.headResponse = v
	s.recomputeFraming()
}

// ---- Request start-line accessors ----

// Method returns the recognized method, or MethodUnknown for a verb not in
// the table (use MethodString for the raw text in that case).
func (s *Store) Method() Method { return s.method }

// MethodString returns the wire text of the method.
func (s *Store) MethodString() string {
	if s.method == MethodUnknown && s.methodRaw != "" {
		return s.methodRaw
	}
	return s.method.String()
}

// SetMethod sets the request method from a verb string, recognized or not.
func (s *Store) SetMethod(m string) error {
	if !IsToken(m) {
		return errors.New(errors.KindBadMethod, "header.SetMethod", 0)
	}
	id := ParseMethod(m)
	s.method = id
	if id == MethodUnknown {
		s.methodRaw = m
	} else {
		s.methodRaw = ""
	}
	s.bufDirty = true
	return nil
}

// Target returns the raw request-target byte span (spec: "accepting a
// request-target byte span", no URL parsing performed).
func (s *Store) Target() string { return s.target }

// SetTarget sets the request-target.
func (s *Store) SetTarget(t string) error {
	if t == "" {
		return errors.New(errors.KindBadRequestTarget, "header.SetTarget", 0)
	}
	for i := 0; i < len(t); i++ {
		if t[i] <= 0x20 || t[i] == 0x7f {
			return errors.New(errors.KindBadRequestTarget, "header.SetTarget", 0)
		}
	}
	s.target = t
	s.bufDirty = true
	return nil
}

// ---- Response start-line accessors ----

// StatusCode returns the response status code.
func (s *Store) StatusCode() int { return s.statusCode }

// SetStatusCode sets the response status code; it must be in [100, 999]
// (spec §6.3). The standard reason phrase for code is adopted, replacing
// any reason previously set with SetReason.
func (s *Store) SetStatusCode(code int) error {
	if code < 100 || code > 999 {
		return errors.New(errors.KindBadStatusCode, "header.SetStatusCode", 0)
	}
	s.statusCode = code
	s.reason = ReasonPhrase(code)
	s.bufDirty = true
	s.recomputeFraming()
	return nil
}

// Reason returns the response reason-phrase.
func (s *Store) Reason() string { return s.reason }

// SetReason overrides the reason-phrase text independent of status code.
func (s *Store) SetReason(reason string) error {
	for i := 0; i < len(reason); i++ {
		c := reason[i]
		if c == '\r' || c == '\n' {
			return errors.New(errors.KindBadReason, "header.SetReason", 0)
		}
	}
	s.reason = reason
	s.bufDirty = true
	return nil
}

// ---- Version (shared) ----

// Version returns the HTTP version string, e.g. "HTTP/1.1".
func (s *Store) Version() string {
	if s.kind == KindResponse {
		return s.respVersion.String()
	}
	return s.reqVersion.String()
}

// SetVersion sets the HTTP version from major/minor digits (spec §6.1).
func (s *Store) SetVersion(major, minor int) error {
	if major < 0 || major > 9 || minor < 0 || minor > 9 {
		return errors.New(errors.KindBadVersion, "header.SetVersion", 0)
	}
	v := version{major, minor}
	if s.kind == KindResponse {
		s.respVersion = v
	} else {
		s.reqVersion = v
	}
	s.bufDirty = true
	s.recomputeFraming()
	return nil
}

// IsHTTP10 reports whether the message is HTTP/1.0, relevant to
// SetKeepAlive's polarity (spec §4.1).
func (s *Store) IsHTTP10() bool {
	v := s.reqVersion
	if s.kind == KindResponse {
		v = s.respVersion
	}
	return v.major == 1 && v.minor == 0
}

// Metadata returns the framing metadata derived from the current fields.
func (s *Store) Metadata() Metadata { return s.meta }

// recomputeFraming recomputes every per-field metadata record from the
// current entries, then Payload from that metadata (spec §4.2.3). It runs
// in O(field count) — proportional to the number of fields, not the buffer
// size — every time fields, status code, version, or head-response state
// changes.
func (s *Store) recomputeFraming() {
	var conn, cl, exp, te, up []string
	for _, e := range s.entries {
		switch e.ID {
		case field.Connection:
			conn = append(conn, e.Value)
		case field.ContentLength:
			cl = append(cl, e.Value)
		case field.Expect:
			exp = append(exp, e.Value)
		case field.TransferEncoding:
			te = append(te, e.Value)
		case field.Upgrade:
			up = append(up, e.Value)
		}
	}
	s.meta.Connection = recomputeConnection(conn)
	s.meta.ContentLength = recomputeContentLength(cl)
	s.meta.Expect = recomputeExpect(exp)
	s.meta.TransferEncoding = recomputeTransferEncoding(te)
	s.meta.Upgrade = recomputeUpgrade(up)

	if s.meta.TransferEncoding.Count > 0 && s.meta.ContentLength.Count > 0 && s.IsHTTP10() {
		s.meta.TransferEncoding.ParseError = errors.New(errors.KindBadTransferEncoding, "header.recomputeFraming", 0)
	}

	switch {
	case s.meta.Connection.ParseError != nil,
		s.meta.ContentLength.ParseError != nil,
		s.meta.Expect.ParseError != nil,
		s.meta.TransferEncoding.ParseError != nil,
		s.meta.Upgrade.ParseError != nil:
		s.meta.Payload = Payload{Kind: PayloadError}
	case s.kind == KindResponse && (s.headResponse || is1xxOr204Or304(s.statusCode)):
		s.meta.Payload = Payload{Kind: PayloadNone}
	case s.meta.TransferEncoding.IsChunked:
		s.meta.Payload = Payload{Kind: PayloadChunked}
	case s.meta.ContentLength.Count > 0:
		s.meta.Payload = Payload{Kind: PayloadKnownSize, Size: s.meta.ContentLength.Value}
	case s.kind == KindRequest:
		s.meta.Payload = Payload{Kind: PayloadNone}
	case s.kind == KindResponse:
		s.meta.Payload = Payload{Kind: PayloadToEOF}
	default:
		s.meta.Payload = Payload{Kind: PayloadNone}
	}
}

func is1xxOr204Or304(code int) bool {
	return (code >= 100 && code < 200) || code == 204 || code == 304
}

// ---- Growth policy (spec §4.1) ----

// Reserve ensures the Store can append n more header bytes without a
// reallocation, doubling capacity as needed up to maxCapacity.
func (s *Store) Reserve(n int) error {
	need := len(s.buf) + n
	if need > s.maxCapacity {
		return errors.New(errors.KindLengthError, "header.Reserve", 0)
	}
	if cap(s.buf) >= need {
		return nil
	}
	newCap := cap(s.buf)
	if newCap == 0 {
		newCap = 256
	}
	for newCap < need {
		newCap *= 2
	}
	if newCap > s.maxCapacity {
		newCap = s.maxCapacity
	}
	nb := make([]byte, len(s.buf), newCap)
	copy(nb, s.buf)
	s.buf = nb
	return nil
}

// ShrinkToFit releases unused buffer capacity.
func (s *Store) ShrinkToFit() {
	if len(s.buf) == cap(s.buf) {
		return
	}
	nb := make([]byte, len(s.buf))
	copy(nb, s.buf)
	s.buf = nb
}

// Clear discards all fields and start-line customization, retaining
// capacity (spec §3.1 "Lifecycle").
func (s *Store) Clear() {
	s.entries = s.entries[:0]
	s.meta = Metadata{}
	s.headResponse = false
	switch s.kind {
	case KindRequest:
		s.method, s.methodRaw, s.target, s.reqVersion = MethodGet, "", "/", version{1, 1}
	case KindResponse:
		s.statusCode, s.reason, s.respVersion = 200, ReasonPhrase(200), version{1, 1}
	}
	s.bufDirty = true
	s.recomputeFraming()
}
