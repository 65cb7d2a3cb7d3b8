package header

import (
	"strconv"
	"strings"

	"github.com/shapestone/wirehttp/field"
)

// transferCodings returns the current Transfer-Encoding codings, in order,
// collected across every Transfer-Encoding field (they are logically one
// comma list per spec §4.1's metadata recomputation).
func (s *Store) transferCodings() []string {
	var codings []string
	for _, e := range s.entries {
		if e.ID == field.TransferEncoding {
			codings = append(codings, splitList(e.Value)...)
		}
	}
	return codings
}

// setTransferCodings rewrites the Transfer-Encoding field to exactly the
// given coding list, removing the field entirely if codings is empty.
func (s *Store) setTransferCodings(codings []string) {
	s.EraseName("Transfer-Encoding")
	if len(codings) == 0 {
		return
	}
	_ = s.Set("Transfer-Encoding", strings.Join(codings, ", "))
}

// SetPayloadSize sets Content-Length: n and disables chunked framing,
// preserving any non-chunked Transfer-Encoding codings (spec §4.1
// "set_payload_size(n)").
func (s *Store) SetPayloadSize(n uint64) error {
	codings := s.transferCodings()
	if len(codings) > 0 && strings.EqualFold(codings[len(codings)-1], "chunked") {
		codings = codings[:len(codings)-1]
	}
	s.setTransferCodings(codings)
	return s.Set("Content-Length", strconv.FormatUint(n, 10))
}

// SetChunked adds or removes the terminal "chunked" transfer-coding,
// preserving any other codings present (spec §4.1 "set_chunked(bool)").
func (s *Store) SetChunked(on bool) error {
	codings := s.transferCodings()
	isChunked := len(codings) > 0 && strings.EqualFold(codings[len(codings)-1], "chunked")
	switch {
	case on && !isChunked:
		codings = append(codings, "chunked")
		s.EraseName("Content-Length")
	case !on && isChunked:
		codings = codings[:len(codings)-1]
	default:
		return nil
	}
	s.setTransferCodings(codings)
	s.recomputeFraming()
	return nil
}

// connectionTokens returns the current Connection field's comma list.
func (s *Store) connectionTokens() []string {
	var toks []string
	for _, e := range s.entries {
		if e.ID == field.Connection {
			toks = append(toks, splitList(e.Value)...)
		}
	}
	return toks
}

func (s *Store) setConnectionTokens(toks []string) {
	s.EraseName("Connection")
	if len(toks) == 0 {
		return
	}
	_ = s.Set("Connection", strings.Join(toks, ", "))
}

// SetKeepAlive maintains the Connection header consistently with the HTTP
// version (spec §4.1 "set_keep_alive(bool)"): under HTTP/1.1, disabling
// keep-alive adds "close"; under HTTP/1.0, enabling it adds "keep-alive".
// The opposite token is always removed first.
func (s *Store) SetKeepAlive(on bool) error {
	toks := s.connectionTokens()
	filtered := toks[:0]
	for _, t := range toks {
		if !strings.EqualFold(t, "close") && !strings.EqualFold(t, "keep-alive") {
			filtered = append(filtered, t)
		}
	}
	toks = filtered
	switch {
	case s.IsHTTP10():
		if on {
			toks = append(toks, "keep-alive")
		}
	default:
		if !on {
			toks = append(toks, "close")
		}
	}
	s.setConnectionTokens(toks)
	return nil
}

// SetExpect100Continue adds or removes an Expect: 100-continue field
// (spec §4.1 "set_expect_100_continue(bool)").
func (s *Store) SetExpect100Continue(on bool) error {
	if !on {
		s.EraseName("Expect")
		return nil
	}
	return s.Set("Expect", "100-continue")
}
