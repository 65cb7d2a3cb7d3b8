package header

// Buffer returns the canonical wire form of the header section, always
// terminated by CRLF CRLF (bare fields: CRLF only), rebuilding it lazily
// since the last mutation (spec §3.1 invariant 1).
func (s *Store) Buffer() []byte {
	if !s.bufDirty && s.buf != nil {
		return s.buf
	}
	var out []byte
	switch s.kind {
	case KindRequest:
		out = append(out, s.MethodString()...)
		out = append(out, ' ')
		out = append(out, s.target...)
		out = append(out, ' ')
		v := s.reqVersion
		if v.major == 0 && v.minor == 0 {
			v = version{1, 1}
		}
		out = append(out, v.String()...)
		out = append(out, '\r', '\n')
	case KindResponse:
		v := s.respVersion
		if v.major == 0 && v.minor == 0 {
			v = version{1, 1}
		}
		out = append(out, v.String()...)
		out = append(out, ' ')
		out = appendIntTo(out, s.statusCode)
		out = append(out, ' ')
		out = append(out, s.reason...)
		out = append(out, '\r', '\n')
	}
	for _, e := range s.entries {
		out = append(out, e.Name...)
		out = append(out, ':', ' ')
		out = append(out, e.Value...)
		out = append(out, '\r', '\n')
	}
	out = append(out, '\r', '\n')
	s.buf = out
	s.bufDirty = false
	return s.buf
}

func appendIntTo(buf []byte, n int) []byte {
	if n == 0 {
		return append(buf, '0')
	}
	neg := n < 0
	if neg {
		n = -n
	}
	start := len(buf)
	for n > 0 {
		buf = append(buf, byte('0'+n%10))
		n /= 10
	}
	if neg {
		buf = append(buf, '-')
	}
	// reverse the appended digits in place
	end := len(buf) - 1
	for i, j := start, end; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return buf
}

// Size returns the byte length of Buffer() without forcing unrelated
// recomputation if already clean.
func (s *Store) Size() int { return len(s.Buffer()) }
