package protocol

import (
	"errors"
	"fmt"
)

// ErrorCode is a protocol-level error code carried in ResponseError.Code.
// The set is open: new negative codes may be added without breaking
// existing consumers.
type ErrorCode int32

// Defined by JSON-RPC:
const (
	ParseError     ErrorCode = -32700
	InvalidRequest ErrorCode = -32600
	MethodNotFound ErrorCode = -32601
	InvalidParams  ErrorCode = -32602
	InternalError  ErrorCode = -32603

	// Reserved range for implementation-defined server errors.
	ServerErrorStart ErrorCode = -32099
	ServerErrorEnd   ErrorCode = -32000

	// ServerNotInitialized means the server received a notification or
	// request before it received the initialize request.
	ServerNotInitialized ErrorCode = -32002
	UnknownErrorCode     ErrorCode = -32001
)

// Defined by the protocol:
const (
	// RequestCanceled means the client canceled a request and the server
	// detected the cancel.
	RequestCanceled ErrorCode = -32800

	// ContentModified means the server detected that the content of a
	// document got modified outside normal conditions.
	ContentModified ErrorCode = -32801

	// ServerCancelled means the server cancelled the request. Only used
	// for requests that explicitly support being server cancellable.
	ServerCancelled ErrorCode = -32802

	// RequestFailed means a request failed but was syntactically correct;
	// the error message carries the human readable cause.
	RequestFailed ErrorCode = -32803
)

// ErrMethodMismatch is returned by Extract when the message's method
// differs from the expected one. The message is left untouched, so a
// dispatcher can retry extraction against another method.
var ErrMethodMismatch = errors.New("method mismatch")

// ExtractError reports that a message's payload did not decode into the
// shape expected for its method. Recoverable at the dispatch layer,
// typically converted into an InvalidParams response.
type ExtractError struct {
	Method string
	Err    error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("invalid params for %q: %v", e.Method, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}
