package header

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shapestone/shape-core/pkg/ast"
)

// ToAST and FromAST bridge a Store (plus its body, which the Store itself
// does not carry) to the shape-core AST shape the teacher's AST-based
// parser produced, kept as an escape hatch for callers that want to
// inspect or transform a parsed message as a generic document tree
// instead of through the Store's typed accessors.
//
// Request:
//
//	{ "type": "request", "method": "POST", "path": "/api",
//	  "version": "HTTP/1.1",
//	  "headers": [{"key": "Host", "value": "example.com"}, ...],
//	  "body": "..." }
//
// Response:
//
//	{ "type": "response", "version": "HTTP/1.1", "statusCode": 200,
//	  "reason": "OK",
//	  "headers": [{"key": "Content-Type", "value": "text/plain"}, ...],
//	  "body": "..." }
var zeroPos = ast.Position{}

// ToAST converts s (and its already-delivered body, if any) to an AST
// ObjectNode in the shape above.
func (s *Store) ToAST(body []byte) ast.SchemaNode {
	if s.kind == KindResponse {
		return s.responseToNode(body)
	}
	return s.requestToNode(body)
}

func (s *Store) requestToNode(body []byte) ast.SchemaNode {
	props := map[string]ast.SchemaNode{
		"type":    ast.NewLiteralNode("request", zeroPos),
		"method":  ast.NewLiteralNode(s.MethodString(), zeroPos),
		"path":    ast.NewLiteralNode(s.Target(), zeroPos),
		"version": ast.NewLiteralNode(s.Version(), zeroPos),
		"headers": headersToNode(s.All()),
	}
	if body != nil {
		props["body"] = ast.NewLiteralNode(string(body), zeroPos)
	}
	return ast.NewObjectNode(props, zeroPos)
}

func (s *Store) responseToNode(body []byte) ast.SchemaNode {
	props := map[string]ast.SchemaNode{
		"type":       ast.NewLiteralNode("response", zeroPos),
		"version":    ast.NewLiteralNode(s.Version(), zeroPos),
		"statusCode": ast.NewLiteralNode(int64(s.StatusCode()), zeroPos),
		"reason":     ast.NewLiteralNode(s.Reason(), zeroPos),
		"headers":    headersToNode(s.All()),
	}
	if body != nil {
		props["body"] = ast.NewLiteralNode(string(body), zeroPos)
	}
	return ast.NewObjectNode(props, zeroPos)
}

func headersToNode(entries []Entry) ast.SchemaNode {
	elements := make([]ast.SchemaNode, len(entries))
	for i, e := range entries {
		elements[i] = ast.NewObjectNode(map[string]ast.SchemaNode{
			"key":   ast.NewLiteralNode(e.Name, zeroPos),
			"value": ast.NewLiteralNode(e.Value, zeroPos),
		}, zeroPos)
	}
	return ast.NewArrayDataNode(elements, zeroPos)
}

// FromAST rebuilds a Store (plus body) from an AST node produced by
// ToAST (or hand-assembled in the same shape).
func FromAST(node ast.SchemaNode) (store *Store, body []byte, err error) {
	obj, ok := node.(*ast.ObjectNode)
	if !ok {
		return nil, nil, fmt.Errorf("header.FromAST: expected ObjectNode, got %T", node)
	}
	props := obj.Properties()

	typ, _ := literalString(props["type"])
	switch typ {
	case "response":
		store = NewResponse()
		if code, ok := props["statusCode"]; ok {
			if lit, ok := code.(*ast.LiteralNode); ok {
				if err := store.SetStatusCode(literalInt(lit)); err != nil {
					return nil, nil, err
				}
			}
		}
		if reason, ok := literalString(props["reason"]); ok {
			if err := store.SetReason(reason); err != nil {
				return nil, nil, err
			}
		}
	default:
		store = NewRequest()
		if method, ok := literalString(props["method"]); ok {
			if err := store.SetMethod(method); err != nil {
				return nil, nil, err
			}
		}
		if path, ok := literalString(props["path"]); ok {
			if err := store.SetTarget(path); err != nil {
				return nil, nil, err
			}
		}
	}

	if v, ok := literalString(props["version"]); ok {
		major, minor, verr := parseVersionString(v)
		if verr != nil {
			return nil, nil, verr
		}
		if err := store.SetVersion(major, minor); err != nil {
			return nil, nil, err
		}
	}

	if h, ok := props["headers"]; ok {
		if err := appendHeadersFromNode(store, h); err != nil {
			return nil, nil, err
		}
	}

	if b, ok := literalString(props["body"]); ok {
		body = []byte(b)
	}

	return store, body, nil
}

func appendHeadersFromNode(store *Store, node ast.SchemaNode) error {
	arr, ok := node.(*ast.ArrayDataNode)
	if !ok {
		return fmt.Errorf("header.FromAST: expected ArrayDataNode for headers, got %T", node)
	}
	for _, elem := range arr.Elements() {
		obj, ok := elem.(*ast.ObjectNode)
		if !ok {
			continue
		}
		props := obj.Properties()
		key, _ := literalString(props["key"])
		value, _ := literalString(props["value"])
		if key == "" {
			continue
		}
		if err := store.Append(key, value); err != nil {
			return err
		}
	}
	return nil
}

func literalString(node ast.SchemaNode) (string, bool) {
	lit, ok := node.(*ast.LiteralNode)
	if !ok {
		return "", false
	}
	s, ok := lit.Value().(string)
	return s, ok
}

func literalInt(lit *ast.LiteralNode) int {
	switch v := lit.Value().(type) {
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}

// parseVersionString parses "HTTP/1.1" into (1, 1).
func parseVersionString(v string) (major, minor int, err error) {
	v = strings.TrimPrefix(v, "HTTP/")
	parts := strings.SplitN(v, ".", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("header.FromAST: bad version %q", v)
	}
	major, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return major, minor, nil
}
