package header

import "strings"

// Method identifies a recognized HTTP request method (spec §6.2). Unknown
// methods are preserved verbatim via Request.MethodString and carry the
// MethodUnknown tag here, mirroring the source's method enum.
type Method int

const (
	MethodUnknown Method = iota
	MethodDelete
	MethodGet
	MethodHead
	MethodPost
	MethodPut
	MethodConnect
	MethodOptions
	MethodTrace

	// WebDAV / CalDAV / UPnP / Subversion extensions (spec §6.2).
	MethodACL
	MethodBind
	MethodCheckout
	MethodCopy
	MethodLink
	MethodLock
	MethodMerge
	MethodMkactivity
	MethodMkcalendar
	MethodMkcol
	MethodMove
	MethodMSearch
	MethodNotify
	MethodPatch
	MethodPropfind
	MethodProppatch
	MethodPurge
	MethodRebind
	MethodReport
	MethodSearch
	MethodSubscribe
	MethodUnbind
	MethodUnlink
	MethodUnlock
	MethodUnsubscribe
)

var methodNames = map[Method]string{
	MethodDelete:      "DELETE",
	MethodGet:         "GET",
	MethodHead:        "HEAD",
	MethodPost:        "POST",
	MethodPut:         "PUT",
	MethodConnect:     "CONNECT",
	MethodOptions:     "OPTIONS",
	MethodTrace:       "TRACE",
	MethodACL:         "ACL",
	MethodBind:        "BIND",
	MethodCheckout:    "CHECKOUT",
	MethodCopy:        "COPY",
	MethodLink:        "LINK",
	MethodLock:        "LOCK",
	MethodMerge:       "MERGE",
	MethodMkactivity:  "MKACTIVITY",
	MethodMkcalendar:  "MKCALENDAR",
	MethodMkcol:       "MKCOL",
	MethodMove:        "MOVE",
	MethodMSearch:     "M-SEARCH",
	MethodNotify:      "NOTIFY",
	MethodPatch:       "PATCH",
	MethodPropfind:    "PROPFIND",
	MethodProppatch:   "PROPPATCH",
	MethodPurge:       "PURGE",
	MethodRebind:      "REBIND",
	MethodReport:      "REPORT",
	MethodSearch:      "SEARCH",
	MethodSubscribe:   "SUBSCRIBE",
	MethodUnbind:      "UNBIND",
	MethodUnlink:      "UNLINK",
	MethodUnlock:      "UNLOCK",
	MethodUnsubscribe: "UNSUBSCRIBE",
}

var methodByName map[string]Method

func init() {
	methodByName = make(map[string]Method, len(methodNames))
	for m, name := range methodNames {
		methodByName[name] = m
	}
}

// String returns the canonical verb text for m, or "" for MethodUnknown.
func (m Method) String() string { return methodNames[m] }

// ParseMethod returns the Method matching s exactly (methods are case
// sensitive per RFC 7230), or MethodUnknown if s is not one of the
// recognized verbs.
func ParseMethod(s string) Method {
	if m, ok := methodByName[s]; ok {
		return m
	}
	return MethodUnknown
}

// IsToken reports whether s consists only of RFC 7230 tchar bytes, the
// character class methods and field names are restricted to.
func IsToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isTchar(s[i]) {
			return false
		}
	}
	return true
}

func isTchar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}

// isFieldVchar reports whether c is a valid header field-value byte
// (printable US-ASCII, SP, HTAB, or an obs-text byte 0x80-0xFF; spec §4.1
// "Character constraints").
func isFieldVchar(c byte) bool {
	return c == ' ' || c == '\t' || (c >= 0x21 && c <= 0x7E) || c >= 0x80
}

// isValidFieldValue reports whether v contains only field-vchar/SP/HTAB
// bytes and no embedded CR or LF (which would be bad_field_smuggle).
func isValidFieldValue(v string) (ok bool, smuggle bool) {
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c == '\r' || c == '\n' {
			return false, true
		}
		if !isFieldVchar(c) {
			return false, false
		}
	}
	return true, false
}

// trimOWS trims leading/trailing optional whitespace (SP/HTAB) per RFC 7230
// field-value OWS handling.
func trimOWS(s string) string {
	return strings.Trim(s, " \t")
}
