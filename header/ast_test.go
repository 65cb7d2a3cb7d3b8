package header

import (
	"testing"

	"github.com/shapestone/shape-core/pkg/ast"
)

func TestToASTRequest(t *testing.T) {
	s := NewRequest()
	_ = s.SetMethod("GET")
	_ = s.SetTarget("/api/users")
	_ = s.SetVersion(1, 1)
	_ = s.Append("Host", "example.com")

	node := s.ToAST(nil)
	obj, ok := node.(*ast.ObjectNode)
	if !ok {
		t.Fatalf("expected ObjectNode, got %T", node)
	}
	props := obj.Properties()

	if lit, ok := props["type"].(*ast.LiteralNode); !ok || lit.Value() != "request" {
		t.Errorf("type = %v, want request", props["type"])
	}
	if lit, ok := props["method"].(*ast.LiteralNode); !ok || lit.Value() != "GET" {
		t.Errorf("method = %v, want GET", props["method"])
	}
	if lit, ok := props["path"].(*ast.LiteralNode); !ok || lit.Value() != "/api/users" {
		t.Errorf("path = %v, want /api/users", props["path"])
	}
	headers, ok := props["headers"].(*ast.ArrayDataNode)
	if !ok || len(headers.Elements()) != 1 {
		t.Fatalf("headers = %v, want 1 element", props["headers"])
	}
}

func TestToASTResponseWithBody(t *testing.T) {
	s := NewResponse()
	_ = s.SetVersion(1, 1)
	_ = s.SetStatusCode(200)
	_ = s.Append("Content-Length", "5")

	node := s.ToAST([]byte("hello"))
	obj := node.(*ast.ObjectNode)
	props := obj.Properties()

	if lit, ok := props["statusCode"].(*ast.LiteralNode); !ok || lit.Value() != int64(200) {
		t.Errorf("statusCode = %v, want 200", props["statusCode"])
	}
	if lit, ok := props["reason"].(*ast.LiteralNode); !ok || lit.Value() != "OK" {
		t.Errorf("reason = %v, want OK", props["reason"])
	}
	if lit, ok := props["body"].(*ast.LiteralNode); !ok || lit.Value() != "hello" {
		t.Errorf("body = %v, want hello", props["body"])
	}
}

func TestFromASTRoundTripsRequest(t *testing.T) {
	orig := NewRequest()
	_ = orig.SetMethod("POST")
	_ = orig.SetTarget("/submit")
	_ = orig.SetVersion(1, 1)
	_ = orig.Append("Host", "example.com")
	_ = orig.Append("Content-Length", "5")

	node := orig.ToAST([]byte("hello"))
	rebuilt, body, err := FromAST(node)
	if err != nil {
		t.Fatalf("FromAST: %v", err)
	}
	if rebuilt.MethodString() != "POST" || rebuilt.Target() != "/submit" {
		t.Fatalf("got method=%s target=%s", rebuilt.MethodString(), rebuilt.Target())
	}
	if rebuilt.Version() != "HTTP/1.1" {
		t.Fatalf("version = %q", rebuilt.Version())
	}
	if rebuilt.ValueOr("Host", "") != "example.com" {
		t.Fatalf("Host = %q", rebuilt.ValueOr("Host", ""))
	}
	if string(body) != "hello" {
		t.Fatalf("body = %q", body)
	}
}

func TestFromASTRoundTripsResponse(t *testing.T) {
	orig := NewResponse()
	_ = orig.SetVersion(1, 1)
	_ = orig.SetStatusCode(404)

	node := orig.ToAST(nil)
	rebuilt, body, err := FromAST(node)
	if err != nil {
		t.Fatalf("FromAST: %v", err)
	}
	if rebuilt.StatusCode() != 404 {
		t.Fatalf("StatusCode = %d, want 404", rebuilt.StatusCode())
	}
	if rebuilt.Reason() != "Not Found" {
		t.Fatalf("Reason = %q, want Not Found", rebuilt.Reason())
	}
	if body != nil {
		t.Fatalf("body = %q, want nil", body)
	}
}
