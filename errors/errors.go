// Package errors defines the error taxonomy shared by the parser, the
// serializer, and the header store: a closed set of error kinds (§7 of the
// wire-protocol specification) plus a condition grouping used to test for
// recoverable "need more input" situations without enumerating every kind
// that can produce one.
package errors

import "fmt"

// Kind identifies one of the fixed error conditions an operation in this
// module can report. Kind values are comparable; read one with KindOf or
// Error.Kind, or match with errors.Is against an *Error built by New.
type Kind int

const (
	// Partial success / control signals.

	KindNeedData Kind = iota + 1
	KindEndOfMessage
	KindEndOfStream
	KindInPlaceOverflow
	KindExpect100Continue

	// Syntax errors (unrecoverable for the current message).

	KindBadConnection
	KindBadContentEncoding
	KindBadContentLength
	KindBadExpect
	KindBadFieldName
	KindBadFieldSmuggle
	KindBadFieldValue
	KindBadLineEnding
	KindBadList
	KindBadMethod
	KindBadNumber
	KindBadPayload
	KindBadVersion
	KindBadReason
	KindBadRequestTarget
	KindBadStatusCode
	KindBadStatusLine
	KindBadTransferEncoding
	KindBadUpgrade

	// Limit errors.

	KindBodyTooLarge
	KindHeadersLimit
	KindStartLineLimit
	KindFieldSizeLimit
	KindFieldsLimit
	KindIncomplete

	// Semantic errors.

	KindNumericOverflow
	KindMultipleContentLength

	// Overflow.

	KindBufferOverflow

	// Other.

	KindLengthError
	KindNotFound
)

var kindNames = map[Kind]string{
	KindNeedData:              "need_data",
	KindEndOfMessage:          "end_of_message",
	KindEndOfStream:           "end_of_stream",
	KindInPlaceOverflow:       "in_place_overflow",
	KindExpect100Continue:     "expect_100_continue",
	KindBadConnection:         "bad_connection",
	KindBadContentEncoding:    "bad_content_encoding",
	KindBadContentLength:      "bad_content_length",
	KindBadExpect:             "bad_expect",
	KindBadFieldName:          "bad_field_name",
	KindBadFieldSmuggle:       "bad_field_smuggle",
	KindBadFieldValue:         "bad_field_value",
	KindBadLineEnding:         "bad_line_ending",
	KindBadList:               "bad_list",
	KindBadMethod:             "bad_method",
	KindBadNumber:             "bad_number",
	KindBadPayload:            "bad_payload",
	KindBadVersion:            "bad_version",
	KindBadReason:             "bad_reason",
	KindBadRequestTarget:      "bad_request_target",
	KindBadStatusCode:         "bad_status_code",
	KindBadStatusLine:         "bad_status_line",
	KindBadTransferEncoding:   "bad_transfer_encoding",
	KindBadUpgrade:            "bad_upgrade",
	KindBodyTooLarge:          "body_too_large",
	KindHeadersLimit:          "headers_limit",
	KindStartLineLimit:        "start_line_limit",
	KindFieldSizeLimit:        "field_size_limit",
	KindFieldsLimit:           "fields_limit",
	KindIncomplete:            "incomplete",
	KindNumericOverflow:       "numeric_overflow",
	KindMultipleContentLength: "multiple_content_length",
	KindBufferOverflow:        "buffer_overflow",
	KindLengthError:           "length_error",
	KindNotFound:              "not_found",
}

// String returns the wire-protocol name for the kind, e.g. "need_data".
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown_error"
}

// Error is the concrete error type returned by every fallible operation in
// this module. It always carries a Kind and the operation that produced it;
// Pos is a best-effort byte offset into the input being parsed or the
// output being serialized, 0 when not applicable.
type Error struct {
	Kind  Kind
	Op    string // e.g. "header.Append", "parser.Parse"
	Pos   int64  // byte offset, 0 if unknown
	Cause error  // wrapped cause, nil if none
}

func (e *Error) Error() string {
	if e.Pos > 0 {
		return fmt.Sprintf("%s: %s (at byte %d)", e.Op, e.Kind, e.Pos)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Kind, so that
// standard-library errors.Is(err, errors.New(KindNeedData, "", 0)) style
// comparisons work without exposing Kind sentinels directly.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New constructs an *Error with no wrapped cause.
func New(kind Kind, op string, pos int64) *Error {
	return &Error{Kind: kind, Op: op, Pos: pos}
}

// Wrap constructs an *Error that wraps cause.
func Wrap(kind Kind, op string, pos int64, cause error) *Error {
	return &Error{Kind: kind, Op: op, Pos: pos, Cause: cause}
}

// KindOf extracts the Kind from err if it is (or wraps) an *Error produced
// by this package, returning ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if as(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// as is a tiny local errors.As to avoid importing the standard "errors"
// package name alongside this package's own name in call sites.
func as(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// IsNeedMoreInput is the "condition" category from §6.6: it groups every
// kind that means "the operation made no (or partial) progress purely
// because more input is required", matching both the parser's need_data
// and any lower-level grammar need-more signal that maps onto it.
func IsNeedMoreInput(err error) bool {
	k, ok := KindOf(err)
	if !ok {
		return false
	}
	return k == KindNeedData
}

// IsTerminal reports whether err represents a terminal parse/serialize
// failure that requires the owning Parser/Serializer to be reset before
// further progress can be made, per spec §7's "Policy" paragraph.
func IsTerminal(err error) bool {
	k, ok := KindOf(err)
	if !ok {
		return false
	}
	switch k {
	case KindNeedData, KindEndOfMessage, KindEndOfStream,
		KindInPlaceOverflow, KindExpect100Continue:
		return false
	default:
		return true
	}
}
