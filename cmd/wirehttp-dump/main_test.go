package main

import (
	"bytes"
	"io"
	"testing"

	"github.com/shapestone/wirehttp/wirelog"
)

func testLogger(t *testing.T) *wirelog.Logger {
	t.Helper()
	return wirelog.New(io.Discard)
}

func TestRunRoundTripsSimpleRequest(t *testing.T) {
	msg := "GET /index.html HTTP/1.1\r\nHost: example.com\r\n\r\n"
	var out bytes.Buffer
	cfg := &cliConfig{}
	if err := run(cfg, bytes.NewBufferString(msg), &out, testLogger(t)); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.String() != msg {
		t.Fatalf("got %q, want %q", out.String(), msg)
	}
}

func TestRunRoundTripsRequestWithBody(t *testing.T) {
	msg := "POST /submit HTTP/1.1\r\nHost: h\r\nContent-Length: 5\r\n\r\nhello"
	var out bytes.Buffer
	cfg := &cliConfig{}
	if err := run(cfg, bytes.NewBufferString(msg), &out, testLogger(t)); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.String() != msg {
		t.Fatalf("got %q, want %q", out.String(), msg)
	}
}

func TestRunRoundTripsResponse(t *testing.T) {
	msg := "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nok"
	var out bytes.Buffer
	cfg := &cliConfig{response: true}
	if err := run(cfg, bytes.NewBufferString(msg), &out, testLogger(t)); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.String() != msg {
		t.Fatalf("got %q, want %q", out.String(), msg)
	}
}
