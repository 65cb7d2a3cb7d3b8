package parser

import "github.com/shapestone/wirehttp/errors"

// headerScanResult is the structural result of scanning a (possibly
// incomplete) header section out of a byte buffer, before any of it is
// installed into a header.Store.
type headerScanResult struct {
	complete  bool
	consumed  int // valid only if complete
	startLine []byte
	fields    []fieldLine
}

// scanHeaderSection scans data for a complete request-line/status-line
// plus field section terminated by CRLF CRLF, applying the configured
// limits (spec §4.2.1, §4.2.4). It never mutates data's backing array.
func scanHeaderSection(data []byte, cfg Config) (headerScanResult, error) {
	var res headerScanResult

	crlfStart, lineEnd := findCRLF(data, 0)
	if crlfStart < 0 {
		if len(data) > cfg.HeadersMaxStartLine {
			return res, errors.New(errors.KindStartLineLimit, "parser.scanHeaderSection", int64(len(data)))
		}
		return res, nil // need more data
	}
	if crlfStart > cfg.HeadersMaxStartLine {
		return res, errors.New(errors.KindStartLineLimit, "parser.scanHeaderSection", int64(crlfStart))
	}
	res.startLine = data[:crlfStart]

	pos, fields, complete, err := scanFieldSection(data, lineEnd, cfg.HeadersMaxField, cfg.HeadersMaxFields)
	if err != nil {
		return res, err
	}
	if !complete {
		if len(data) > cfg.HeadersMaxSize {
			return res, errors.New(errors.KindHeadersLimit, "parser.scanHeaderSection", int64(len(data)))
		}
		return res, nil
	}
	if pos > cfg.HeadersMaxSize {
		return res, errors.New(errors.KindHeadersLimit, "parser.scanHeaderSection", int64(pos))
	}
	res.complete = true
	res.consumed = pos
	res.fields = fields
	return res, nil
}

// scanFieldSection scans zero or more obs-fold-merged field lines starting
// at data[from:], stopping at the first blank line (CRLF or LF alone),
// which it consumes. It is shared by header-section scanning and chunked
// trailer-section scanning (spec §4.2.6).
func scanFieldSection(data []byte, from, maxField, maxFields int) (pos int, fields []fieldLine, complete bool, err error) {
	pos = from
	for {
		if pos < len(data) {
			if data[pos] == '\r' && pos+1 < len(data) && data[pos+1] == '\n' {
				return pos + 2, fields, true, nil
			}
			if data[pos] == '\n' {
				return pos + 1, fields, true, nil
			}
		}

		fStart := pos
		cStart, cEnd := findCRLF(data, pos)
		if cStart < 0 {
			return from, fields[:0], false, nil
		}
		line := append([]byte(nil), data[fStart:cStart]...)
		pos = cEnd

		for pos < len(data) && (data[pos] == ' ' || data[pos] == '\t') {
			cStart2, cEnd2 := findCRLF(data, pos)
			if cStart2 < 0 {
				return from, fields[:0], false, nil
			}
			line = append(line, ' ')
			line = append(line, data[pos:cStart2]...)
			pos = cEnd2
		}

		if len(line) > maxField {
			return pos, nil, false, errors.New(errors.KindFieldSizeLimit, "parser.scanFieldSection", int64(len(line)))
		}
		if len(fields)+1 > maxFields {
			return pos, nil, false, errors.New(errors.KindFieldsLimit, "parser.scanFieldSection", int64(len(fields)+1))
		}
		fl, ferr := parseFieldLine(line)
		if ferr != nil {
			return pos, nil, false, ferr
		}
		fields = append(fields, fl)
	}
}
