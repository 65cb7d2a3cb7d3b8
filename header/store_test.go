package header

import "testing"

func TestStoreAppendAndFind(t *testing.T) {
	s := NewFields()
	if err := s.Append("Host", "example.com"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append("Host", "other.example.com"); err != nil {
		t.Fatalf("Append (second): %v", err)
	}
	if got := s.Count(); got != 2 {
		t.Fatalf("Count = %d, want 2", got)
	}
	if got := s.ValueOr("Host", ""); got != "example.com" {
		t.Fatalf("ValueOr = %q, want first value", got)
	}
	if got := s.CountName("Host"); got != 2 {
		t.Fatalf("CountName = %d, want 2", got)
	}
}

func TestStoreSetReplacesAllMatches(t *testing.T) {
	s := NewFields()
	_ = s.Append("X-Foo", "a")
	_ = s.Append("X-Foo", "b")
	if err := s.Set("X-Foo", "c"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := s.Count(); got != 1 {
		t.Fatalf("Count after Set = %d, want 1", got)
	}
	if got := s.ValueOr("X-Foo", ""); got != "c" {
		t.Fatalf("ValueOr = %q, want c", got)
	}
}

func TestStoreEraseName(t *testing.T) {
	s := NewFields()
	_ = s.Append("A", "1")
	_ = s.Append("B", "2")
	_ = s.Append("A", "3")
	if n := s.EraseName("A"); n != 2 {
		t.Fatalf("EraseName removed %d, want 2", n)
	}
	if s.Exists("A") {
		t.Fatal("A should no longer exist")
	}
	if got := s.ValueOr("B", ""); got != "2" {
		t.Fatalf("B = %q, want 2", got)
	}
}

func TestStoreRejectsBadFieldName(t *testing.T) {
	s := NewFields()
	if err := s.Append("Bad Name", "v"); err == nil {
		t.Fatal("expected error for a name containing a space")
	}
}

func TestStoreRejectsSmuggledFieldValue(t *testing.T) {
	s := NewFields()
	if err := s.Append("X-Foo", "v\r\nSmuggled: true"); err == nil {
		t.Fatal("expected a field-smuggling error for an embedded CRLF")
	}
}

func TestStoreBufferRoundTripsRequest(t *testing.T) {
	s := NewRequest()
	if err := s.SetMethod("GET"); err != nil {
		t.Fatalf("SetMethod: %v", err)
	}
	if err := s.SetTarget("/index.html"); err != nil {
		t.Fatalf("SetTarget: %v", err)
	}
	if err := s.SetVersion(1, 1); err != nil {
		t.Fatalf("SetVersion: %v", err)
	}
	if err := s.Append("Host", "example.com"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	want := "GET /index.html HTTP/1.1\r\nHost: example.com\r\n\r\n"
	if got := string(s.Buffer()); got != want {
		t.Fatalf("Buffer = %q, want %q", got, want)
	}
}

func TestStoreBufferRoundTripsResponse(t *testing.T) {
	s := NewResponse()
	if err := s.SetVersion(1, 1); err != nil {
		t.Fatalf("SetVersion: %v", err)
	}
	if err := s.SetStatusCode(200); err != nil {
		t.Fatalf("SetStatusCode: %v", err)
	}
	if err := s.SetReason("OK"); err != nil {
		t.Fatalf("SetReason: %v", err)
	}
	want := "HTTP/1.1 200 OK\r\n\r\n"
	if got := string(s.Buffer()); got != want {
		t.Fatalf("Buffer = %q, want %q", got, want)
	}
}

func TestFramingSetPayloadSizeThenChunkedAreExclusive(t *testing.T) {
	s := NewRequest()
	_ = s.SetMethod("POST")
	_ = s.SetTarget("/")
	_ = s.SetVersion(1, 1)

	if err := s.SetPayloadSize(10); err != nil {
		t.Fatalf("SetPayloadSize: %v", err)
	}
	if s.Metadata().Payload.Kind != PayloadKnownSize || s.Metadata().Payload.Size != 10 {
		t.Fatalf("metadata = %+v, want known-size 10", s.Metadata().Payload)
	}

	if err := s.SetChunked(true); err != nil {
		t.Fatalf("SetChunked: %v", err)
	}
	if s.Exists("Content-Length") {
		t.Fatal("Content-Length should be removed once chunked is set")
	}
	if s.Metadata().Payload.Kind != PayloadChunked {
		t.Fatalf("metadata = %+v, want chunked", s.Metadata().Payload)
	}
}

func TestFramingMultipleDifferingContentLengthIsAnError(t *testing.T) {
	s := NewRequest()
	_ = s.Append("Content-Length", "5")
	_ = s.Append("Content-Length", "6")
	if s.Metadata().Payload.Kind != PayloadError {
		t.Fatalf("metadata = %+v, want error", s.Metadata().Payload)
	}
}

// TestFramingTransferEncodingWithContentLengthOnHTTP10IsAnError covers
// spec §4.2.3's HTTP/1.0 conflict rule, which applies to both requests
// and responses, not just requests.
func TestFramingTransferEncodingWithContentLengthOnHTTP10IsAnError(t *testing.T) {
	for _, kind := range []string{"request", "response"} {
		s := NewRequest()
		if kind == "response" {
			s = NewResponse()
			_ = s.SetStatusCode(200)
		} else {
			_ = s.SetMethod("POST")
			_ = s.SetTarget("/")
		}
		_ = s.SetVersion(1, 0)
		_ = s.Append("Transfer-Encoding", "chunked")
		_ = s.Append("Content-Length", "5")

		if s.Metadata().Payload.Kind != PayloadError {
			t.Fatalf("%s: metadata = %+v, want error", kind, s.Metadata().Payload)
		}
	}
}
