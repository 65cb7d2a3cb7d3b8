package parser

import (
	"bytes"
	"strconv"

	"github.com/shapestone/wirehttp/errors"
	"github.com/shapestone/wirehttp/field"
	"github.com/shapestone/wirehttp/header"
)

// findCRLF returns the index of the CR in the first CRLF found at or after
// from, or -1. A bare LF is also accepted as a line terminator (spec §6.1
// grammar requires CRLF, but lenient acceptance of bare LF matches the
// teacher's readLine behavior and common HTTP/1.x leniency).
func findCRLF(b []byte, from int) (crlfStart, lineEnd int) {
	for i := from; i < len(b); i++ {
		if b[i] == '\n' {
			if i > from && b[i-1] == '\r' {
				return i - 1, i + 1
			}
			return i, i + 1
		}
	}
	return -1, -1
}

// parseVersion parses "HTTP/" DIGIT "." DIGIT from s.
func parseVersion(s []byte) (major, minor int, err error) {
	if len(s) != 8 || !bytes.HasPrefix(s, []byte("HTTP/")) || s[6] != '.' {
		return 0, 0, errors.New(errors.KindBadVersion, "parser.parseVersion", 0)
	}
	if s[5] < '0' || s[5] > '9' || s[7] < '0' || s[7] > '9' {
		return 0, 0, errors.New(errors.KindBadVersion, "parser.parseVersion", 0)
	}
	return int(s[5] - '0'), int(s[7] - '0'), nil
}

// parseRequestLine parses "METHOD SP target SP HTTP-version" from line
// (without the trailing CRLF) and installs it into store.
func parseRequestLine(store *header.Store, line []byte) error {
	sp1 := bytes.IndexByte(line, ' ')
	if sp1 <= 0 {
		return errors.New(errors.KindBadMethod, "parser.parseRequestLine", 0)
	}
	method := line[:sp1]
	if !header.IsToken(string(method)) {
		return errors.New(errors.KindBadMethod, "parser.parseRequestLine", 0)
	}
	rest := line[sp1+1:]
	sp2 := bytes.LastIndexByte(rest, ' ')
	if sp2 <= 0 {
		return errors.New(errors.KindBadRequestTarget, "parser.parseRequestLine", 0)
	}
	target := rest[:sp2]
	versionBytes := rest[sp2+1:]

	for _, c := range target {
		if c <= 0x20 || c == 0x7f {
			return errors.New(errors.KindBadRequestTarget, "parser.parseRequestLine", 0)
		}
	}

	major, minor, err := parseVersion(versionBytes)
	if err != nil {
		return err
	}

	if err := store.SetMethod(string(method)); err != nil {
		return err
	}
	if err := store.SetTarget(string(target)); err != nil {
		return err
	}
	return store.SetVersion(major, minor)
}

// parseStatusLine parses "HTTP-version SP status-code SP reason-phrase"
// from line and installs it into store.
func parseStatusLine(store *header.Store, line []byte) error {
	sp1 := bytes.IndexByte(line, ' ')
	if sp1 <= 0 {
		return errors.New(errors.KindBadStatusLine, "parser.parseStatusLine", 0)
	}
	major, minor, err := parseVersion(line[:sp1])
	if err != nil {
		return err
	}
	rest := line[sp1+1:]
	var codeBytes, reason []byte
	if sp2 := bytes.IndexByte(rest, ' '); sp2 >= 0 {
		codeBytes = rest[:sp2]
		reason = rest[sp2+1:]
	} else {
		codeBytes = rest
	}
	if len(codeBytes) != 3 {
		return errors.New(errors.KindBadStatusCode, "parser.parseStatusLine", 0)
	}
	code, convErr := strconv.Atoi(string(codeBytes))
	if convErr != nil || code < 100 || code > 999 {
		return errors.New(errors.KindBadStatusCode, "parser.parseStatusLine", 0)
	}
	for _, c := range reason {
		if c == '\r' || c == '\n' {
			return errors.New(errors.KindBadReason, "parser.parseStatusLine", 0)
		}
	}

	if err := store.SetVersion(major, minor); err != nil {
		return err
	}
	if err := store.SetStatusCode(code); err != nil {
		return err
	}
	if len(reason) > 0 {
		return store.SetReason(string(reason))
	}
	return nil
}

// fieldLine is one parsed (and obs-fold-normalized) header or trailer line.
type fieldLine struct {
	name  string
	value string
}

// parseFieldLine splits "name ':' OWS value OWS" (obs-fold already merged
// into line by the caller) into a name/value pair, validating both.
func parseFieldLine(line []byte) (fieldLine, error) {
	colon := bytes.IndexByte(line, ':')
	if colon <= 0 {
		return fieldLine{}, errors.New(errors.KindBadFieldName, "parser.parseFieldLine", 0)
	}
	name := line[:colon]
	if colon > 0 && (line[colon-1] == ' ' || line[colon-1] == '\t') {
		return fieldLine{}, errors.New(errors.KindBadFieldName, "parser.parseFieldLine", 0)
	}
	if !header.IsToken(string(name)) {
		return fieldLine{}, errors.New(errors.KindBadFieldName, "parser.parseFieldLine", 0)
	}
	value := trimOWS(line[colon+1:])
	for _, c := range value {
		if c == '\r' || c == '\n' {
			return fieldLine{}, errors.New(errors.KindBadFieldSmuggle, "parser.parseFieldLine", 0)
		}
	}
	return fieldLine{name: string(name), value: string(value)}, nil
}

func trimOWS(b []byte) []byte {
	start, end := 0, len(b)
	for start < end && (b[start] == ' ' || b[start] == '\t') {
		start++
	}
	for end > start && (b[end-1] == ' ' || b[end-1] == '\t') {
		end--
	}
	return b[start:end]
}

// installField appends name/value to store using the field package's
// well-known-ID lookup, matching the AppendRaw fast path documented on
// header.Store.
func installField(store *header.Store, name, value string) {
	store.AppendRaw(name, value, field.LookupString(name))
}
