package serializer

import (
	"testing"

	"github.com/shapestone/wirehttp/bodyio"
	"github.com/shapestone/wirehttp/errors"
	"github.com/shapestone/wirehttp/header"
	"github.com/shapestone/wirehttp/workspace"
)

// drain runs Prepare/Consume to completion, returning the full wire bytes.
func drain(t *testing.T, sr *Serializer) []byte {
	t.Helper()
	var out []byte
	for {
		buf, err := sr.Prepare()
		if err != nil {
			k, ok := errors.KindOf(err)
			if ok && k == errors.KindEndOfMessage {
				return out
			}
			t.Fatalf("Prepare: %v", err)
		}
		out = append(out, buf...)
		if err := sr.Consume(len(buf)); err != nil {
			t.Fatalf("Consume: %v", err)
		}
	}
}

func newRequestStore(t *testing.T, method, target string) *header.Store {
	t.Helper()
	s := header.NewRequest()
	if err := s.SetMethod(method); err != nil {
		t.Fatalf("SetMethod: %v", err)
	}
	if err := s.SetTarget(target); err != nil {
		t.Fatalf("SetTarget: %v", err)
	}
	if err := s.SetVersion(1, 1); err != nil {
		t.Fatalf("SetVersion: %v", err)
	}
	return s
}

func TestSerializeEmptyBody(t *testing.T) {
	s := newRequestStore(t, "GET", "/")
	if err := s.Append("Host", "example.com"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	sr := NewSerializer(DefaultConfig())
	if err := sr.StartEmpty(s); err != nil {
		t.Fatalf("StartEmpty: %v", err)
	}
	out := drain(t, sr)
	want := "GET / HTTP/1.1\r\nHost: example.com\r\n\r\n"
	if string(out) != want {
		t.Fatalf("got %q, want %q", out, want)
	}
	if !sr.IsDone() {
		t.Fatal("expected IsDone after drain")
	}
}

func TestSerializeBufferWithContentLength(t *testing.T) {
	s := newRequestStore(t, "POST", "/submit")
	body := []byte("hello")
	if err := s.SetPayloadSize(uint64(len(body))); err != nil {
		t.Fatalf("SetPayloadSize: %v", err)
	}
	sr := NewSerializer(DefaultConfig())
	if err := sr.StartBuffer(s, body); err != nil {
		t.Fatalf("StartBuffer: %v", err)
	}
	out := drain(t, sr)
	want := "POST /submit HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello"
	if string(out) != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestSerializeBufferChunked(t *testing.T) {
	s := newRequestStore(t, "POST", "/submit")
	if err := s.SetChunked(true); err != nil {
		t.Fatalf("SetChunked: %v", err)
	}
	body := []byte("Wikipedia")
	sr := NewSerializer(DefaultConfig())
	if err := sr.StartBuffer(s, body); err != nil {
		t.Fatalf("StartBuffer: %v", err)
	}
	out := drain(t, sr)
	want := "POST /submit HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n" +
		"9\r\nWikipedia\r\n0\r\n\r\n"
	if string(out) != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestSerializeSourceBody(t *testing.T) {
	s := newRequestStore(t, "POST", "/upload")
	if err := s.SetChunked(true); err != nil {
		t.Fatalf("SetChunked: %v", err)
	}
	src := bodyio.NewBufferSource([]byte("abc"))
	sr := NewSerializer(DefaultConfig())
	if err := sr.StartSource(s, src); err != nil {
		t.Fatalf("StartSource: %v", err)
	}
	out := drain(t, sr)
	want := "POST /upload HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n" +
		"3\r\nabc\r\n0\r\n\r\n"
	if string(out) != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestSerializeStreamBody(t *testing.T) {
	s := newRequestStore(t, "POST", "/stream")
	if err := s.SetChunked(true); err != nil {
		t.Fatalf("SetChunked: %v", err)
	}
	sr := NewSerializer(DefaultConfig())
	if err := sr.StartStream(s); err != nil {
		t.Fatalf("StartStream: %v", err)
	}

	// drain headers first
	buf, err := sr.Prepare()
	if err != nil {
		t.Fatalf("Prepare (headers): %v", err)
	}
	headerBytes := append([]byte(nil), buf...)
	if err := sr.Consume(len(buf)); err != nil {
		t.Fatalf("Consume (headers): %v", err)
	}

	if err := sr.WriteBody([]byte("foo"), true); err != nil {
		t.Fatalf("WriteBody 1: %v", err)
	}
	if err := sr.WriteBody([]byte("bar"), false); err != nil {
		t.Fatalf("WriteBody 2: %v", err)
	}

	out := drain(t, sr)
	want := "3\r\nfoo\r\n3\r\nbar\r\n0\r\n\r\n"
	if string(out) != want {
		t.Fatalf("body = %q, want %q", out, want)
	}
	wantHeaders := "POST /stream HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n"
	if string(headerBytes) != wantHeaders {
		t.Fatalf("headers = %q, want %q", headerBytes, wantHeaders)
	}
}

func TestSerializeExpect100ContinueResume(t *testing.T) {
	s := newRequestStore(t, "POST", "/upload")
	if err := s.SetPayloadSize(3); err != nil {
		t.Fatalf("SetPayloadSize: %v", err)
	}
	if err := s.SetExpect100Continue(true); err != nil {
		t.Fatalf("SetExpect100Continue: %v", err)
	}
	sr := NewSerializer(DefaultConfig())
	if err := sr.StartBuffer(s, []byte("abc")); err != nil {
		t.Fatalf("StartBuffer: %v", err)
	}

	buf, err := sr.Prepare()
	if err != nil {
		t.Fatalf("Prepare (headers): %v", err)
	}
	if err := sr.Consume(len(buf)); err != nil {
		t.Fatalf("Consume (headers): %v", err)
	}

	_, err = sr.Prepare()
	if k, ok := errors.KindOf(err); !ok || k != errors.KindExpect100Continue {
		t.Fatalf("err = %v, want expect_100_continue", err)
	}

	if err := sr.Resume(true); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	out := drain(t, sr)
	if string(out) != "abc" {
		t.Fatalf("body = %q, want abc", out)
	}
}

func TestSerializeExpect100ContinueAbort(t *testing.T) {
	s := newRequestStore(t, "POST", "/upload")
	if err := s.SetPayloadSize(3); err != nil {
		t.Fatalf("SetPayloadSize: %v", err)
	}
	if err := s.SetExpect100Continue(true); err != nil {
		t.Fatalf("SetExpect100Continue: %v", err)
	}
	sr := NewSerializer(DefaultConfig())
	if err := sr.StartBuffer(s, []byte("abc")); err != nil {
		t.Fatalf("StartBuffer: %v", err)
	}
	buf, err := sr.Prepare()
	if err != nil {
		t.Fatalf("Prepare (headers): %v", err)
	}
	if err := sr.Consume(len(buf)); err != nil {
		t.Fatalf("Consume (headers): %v", err)
	}
	if _, err := sr.Prepare(); err == nil {
		t.Fatal("expected pause before abort")
	}
	if err := sr.Resume(false); err != nil {
		t.Fatalf("Resume(false): %v", err)
	}
	if !sr.IsDone() {
		t.Fatal("expected IsDone after aborted resume")
	}
	if _, err := sr.Prepare(); err == nil {
		t.Fatal("expected end_of_message after abort")
	} else if k, _ := errors.KindOf(err); k != errors.KindEndOfMessage {
		t.Fatalf("err = %v, want end_of_message", err)
	}
}

func TestSerializeWorkspaceTooSmall(t *testing.T) {
	// Construct a Serializer whose workspace is smaller than cfg requires,
	// as would occur if a caller shares an undersized Workspace across a
	// connection's serializers.
	sr := &Serializer{cfg: Config{MinWorkspaceSize: 4096}, ws: workspace.New(16)}
	s := newRequestStore(t, "GET", "/")
	err := sr.StartEmpty(s)
	if k, ok := errors.KindOf(err); !ok || k != errors.KindLengthError {
		t.Fatalf("err = %v, want length_error", err)
	}
}

func TestSerializeReset(t *testing.T) {
	s1 := newRequestStore(t, "GET", "/a")
	sr := NewSerializer(DefaultConfig())
	if err := sr.StartEmpty(s1); err != nil {
		t.Fatalf("StartEmpty: %v", err)
	}
	_ = drain(t, sr)

	s2 := newRequestStore(t, "GET", "/b")
	if err := sr.StartEmpty(s2); err != nil {
		t.Fatalf("StartEmpty (reuse): %v", err)
	}
	out := drain(t, sr)
	want := "GET /b HTTP/1.1\r\n\r\n"
	if string(out) != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}
