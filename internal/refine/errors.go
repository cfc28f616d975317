package refine

import "errors"

// Kind classifies a refinement failure by pipeline stage.
type Kind int

const (
	// KindStyle means the requested style is not one of the supported set.
	KindStyle Kind = iota + 1
	// KindEncoding means the audio could not be prepared for transport.
	KindEncoding
	// KindTransport means the remote call failed: network, non-2xx status, quota or auth.
	KindTransport
	// KindParse means the response body was empty or not valid JSON.
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindStyle:
		return "style"
	case KindEncoding:
		return "encoding"
	case KindTransport:
		return "transport"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by Client.Refine. Message is
// suitable for showing to the user as is.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

var errMissingMIME = errors.New("missing audio content type")
