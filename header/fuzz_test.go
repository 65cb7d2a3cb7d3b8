package header

import "testing"

// FuzzHeaderStore exercises Append/Set against arbitrary name/value
// pairs. The invariant is the teacher's: never panic, and Buffer() must
// always end in CRLF, regardless of what was appended (spec §3.1
// invariant 1).
func FuzzHeaderStore(f *testing.F) {
	f.Add("Host", "example.com")
	f.Add("Content-Length", "5")
	f.Add("X-Empty", "")
	f.Add("", "")
	f.Add("Bad Name", "v")
	f.Add("X-Foo", "v\r\nSmuggled: true")
	f.Add("Transfer-Encoding", "chunked")

	f.Fuzz(func(t *testing.T, name, value string) {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("Store panicked on name=%q value=%q: %v", name, value, r)
			}
		}()
		s := NewFields()
		_ = s.Append(name, value)
		_ = s.Set(name, value+"x")
		buf := s.Buffer()
		if len(buf) < 2 || string(buf[len(buf)-2:]) != "\r\n" {
			t.Errorf("Buffer() did not end in CRLF: %q", buf)
		}
		_ = s.Metadata()
	})
}
