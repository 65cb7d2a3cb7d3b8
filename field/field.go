// Package field implements the well-known HTTP field name table (spec
// §6.4): a case-insensitive lookup from field name to a small integer ID,
// used throughout header.Store so that framing-relevant fields (Connection,
// Content-Length, Transfer-Encoding, Expect, Upgrade, ...) can be matched
// without repeated string comparisons.
package field

import "strings"

// ID identifies a well-known HTTP field name, or Unknown for anything not
// in the table below. Unknown fields are still stored and compared by
// name; ID only accelerates the framing-relevant lookups the parser and
// header.Store perform on every insertion.
type ID int

const (
	Unknown ID = iota
	Accept
	AcceptCharset
	AcceptEncoding
	AcceptLanguage
	AcceptRanges
	Age
	Allow
	Authorization
	CacheControl
	Connection
	ContentDisposition
	ContentEncoding
	ContentLanguage
	ContentLength
	ContentLocation
	ContentRange
	ContentType
	Cookie
	Date
	ETag
	Expect
	Expires
	Forwarded
	From
	Host
	IfMatch
	IfModifiedSince
	IfNoneMatch
	IfRange
	IfUnmodifiedSince
	LastModified
	Link
	Location
	MaxForwards
	Origin
	Pragma
	ProxyAuthenticate
	ProxyAuthorization
	Range
	Referer
	RetryAfter
	SecWebSocketAccept
	SecWebSocketExtensions
	SecWebSocketKey
	SecWebSocketProtocol
	SecWebSocketVersion
	Server
	SetCookie
	TE
	Trailer
	TransferEncoding
	Upgrade
	UserAgent
	Vary
	Via
	WWWAuthenticate
	Warning
	XForwardedFor
	XForwardedHost
	XForwardedProto
)

var names = map[ID]string{
	Accept:                 "Accept",
	AcceptCharset:          "Accept-Charset",
	AcceptEncoding:         "Accept-Encoding",
	AcceptLanguage:         "Accept-Language",
	AcceptRanges:           "Accept-Ranges",
	Age:                    "Age",
	Allow:                  "Allow",
	Authorization:          "Authorization",
	CacheControl:           "Cache-Control",
	Connection:             "Connection",
	ContentDisposition:     "Content-Disposition",
	ContentEncoding:        "Content-Encoding",
	ContentLanguage:        "Content-Language",
	ContentLength:          "Content-Length",
	ContentLocation:        "Content-Location",
	ContentRange:           "Content-Range",
	ContentType:            "Content-Type",
	Cookie:                 "Cookie",
	Date:                   "Date",
	ETag:                   "ETag",
	Expect:                 "Expect",
	Expires:                "Expires",
	Forwarded:              "Forwarded",
	From:                   "From",
	Host:                   "Host",
	IfMatch:                "If-Match",
	IfModifiedSince:        "If-Modified-Since",
	IfNoneMatch:            "If-None-Match",
	IfRange:                "If-Range",
	IfUnmodifiedSince:      "If-Unmodified-Since",
	LastModified:           "Last-Modified",
	Link:                   "Link",
	Location:               "Location",
	MaxForwards:            "Max-Forwards",
	Origin:                 "Origin",
	Pragma:                 "Pragma",
	ProxyAuthenticate:      "Proxy-Authenticate",
	ProxyAuthorization:     "Proxy-Authorization",
	Range:                  "Range",
	Referer:                "Referer",
	RetryAfter:             "Retry-After",
	SecWebSocketAccept:     "Sec-WebSocket-Accept",
	SecWebSocketExtensions: "Sec-WebSocket-Extensions",
	SecWebSocketKey:        "Sec-WebSocket-Key",
	SecWebSocketProtocol:   "Sec-WebSocket-Protocol",
	SecWebSocketVersion:    "Sec-WebSocket-Version",
	Server:                 "Server",
	SetCookie:              "Set-Cookie",
	TE:                     "TE",
	Trailer:                "Trailer",
	TransferEncoding:       "Transfer-Encoding",
	Upgrade:                "Upgrade",
	UserAgent:              "User-Agent",
	Vary:                   "Vary",
	Via:                    "Via",
	WWWAuthenticate:        "WWW-Authenticate",
	Warning:                "Warning",
	XForwardedFor:          "X-Forwarded-For",
	XForwardedHost:         "X-Forwarded-Host",
	XForwardedProto:        "X-Forwarded-Proto",
}

// byLowerName is built once at init from names, keyed by the FNV-1a hash of
// the lower-cased name (spec §9: "use FNV-1a over tolower(byte) for
// cross-architecture consistency"). A hash-collision bucket holds the
// lower-cased name alongside the ID so Lookup can disambiguate without
// ever comparing against the original (possibly differently-cased) bytes.
type bucket struct {
	lower string
	id    ID
}

var byLowerName = map[uint64][]bucket{}

func init() {
	for id, name := range names {
		h := fnv1aLower(name)
		lower := strings.ToLower(name)
		byLowerName[h] = append(byLowerName[h], bucket{lower: lower, id: id})
	}
}

// fnv1aLower computes the 64-bit FNV-1a hash of s with every byte folded to
// lowercase first, so "Content-Length" and "content-length" hash equal
// without an intermediate allocation.
func fnv1aLower(s string) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		h ^= uint64(c)
		h *= prime64
	}
	return h
}

// FNV1aLower exposes the hash function used for case-insensitive field
// name comparison, for callers (e.g. header.Store) that need to pre-hash a
// name once and compare against it repeatedly.
func FNV1aLower(s []byte) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for _, c := range s {
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		h ^= uint64(c)
		h *= prime64
	}
	return h
}

// Lookup returns the well-known ID for name (case-insensitive), or Unknown
// if name is not one of the standard fields in the table.
func Lookup(name []byte) ID {
	h := FNV1aLower(name)
	for _, b := range byLowerName[h] {
		if equalFoldBytes(b.lower, name) {
			return b.id
		}
	}
	return Unknown
}

// LookupString is Lookup for a string, avoiding a []byte conversion at call
// sites that already hold a string.
func LookupString(name string) ID {
	return Lookup([]byte(name))
}

// Name returns the canonical casing for id, or "" for Unknown.
func Name(id ID) string {
	return names[id]
}

// equalFoldBytes reports whether lower (already lowercased) equals b when b
// is folded to lowercase byte by byte.
func equalFoldBytes(lower string, b []byte) bool {
	if len(lower) != len(b) {
		return false
	}
	for i := 0; i < len(lower); i++ {
		c := b[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if lower[i] != c {
			return false
		}
	}
	return true
}
