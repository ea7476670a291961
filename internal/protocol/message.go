// Package protocol defines the message model for an LSP-style JSON-RPC
// stream: requests, responses and notifications with a dual-typed
// request id, structurally discriminated on decode. The jsonrpc version
// field is an envelope-only artifact handled by the wire layer; it never
// appears on these types.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Request is a call that expects a Response with the same id.
type Request struct {
	ID     RequestID `json:"id"`
	Method string    `json:"method"`
	Params Params    `json:"params"`
}

// Response answers a Request. A well-formed Response carries exactly one
// of Result/Error; NewResponse and NewErrorResponse are the supported
// ways to build one.
type Response struct {
	ID     RequestID       `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *ResponseError  `json:"error,omitempty"`
}

// ResponseError is the error member of a failed Response.
type ResponseError struct {
	Code    ErrorCode       `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

// Notification is a call without an id; it never receives a Response.
type Notification struct {
	Method string `json:"method"`
	Params Params `json:"params"`
}

// Message is a union of exactly one of Request, Response, Notification.
// The variant is picked structurally at decode time; there is no tag
// field on the wire.
type Message struct {
	Request      *Request
	Response     *Response
	Notification *Notification
}

// UnmarshalJSON tries the variants in a fixed priority order and accepts
// the first one whose required fields all deserialize: a Request needs
// id, method and params; a Response needs id plus result or error; a
// Notification needs method and params and no id.
func (m *Message) UnmarshalJSON(data []byte) error {
	if hasFields(data, "id", "method", "params") {
		var req Request
		if err := json.Unmarshal(data, &req); err == nil {
			*m = Message{Request: &req}
			return nil
		}
	}
	if hasFields(data, "id") && (hasFields(data, "result") || hasFields(data, "error")) {
		var resp Response
		if err := json.Unmarshal(data, &resp); err == nil {
			*m = Message{Response: &resp}
			return nil
		}
	}
	if !hasFields(data, "id") && hasFields(data, "method", "params") {
		var note Notification
		if err := json.Unmarshal(data, &note); err == nil {
			*m = Message{Notification: &note}
			return nil
		}
	}
	return fmt.Errorf("protocol: data did not match any message variant: %s", data)
}

// MarshalJSON writes the variant that is set, without the jsonrpc
// envelope field.
func (m Message) MarshalJSON() ([]byte, error) {
	switch {
	case m.Request != nil:
		return json.Marshal(m.Request)
	case m.Response != nil:
		return json.Marshal(m.Response)
	case m.Notification != nil:
		return json.Marshal(m.Notification)
	}
	return nil, fmt.Errorf("protocol: empty message")
}

// NewRequest builds a Request wrapping params as the inner payload. The
// uri/context side channels start unset.
func NewRequest(id RequestID, method string, params interface{}) (*Request, error) {
	inner, err := marshalPayload(params)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to marshal params for %q: %w", method, err)
	}
	return &Request{ID: id, Method: method, Params: Params{Params: inner}}, nil
}

// NewNotification builds a Notification wrapping params as the inner
// payload.
func NewNotification(method string, params interface{}) (*Notification, error) {
	inner, err := marshalPayload(params)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to marshal params for %q: %w", method, err)
	}
	return &Notification{Method: method, Params: Params{Params: inner}}, nil
}

// NewResponse builds a successful Response. It fails only when result
// itself is not serializable, which is a programming error in the
// caller.
func NewResponse(id RequestID, result interface{}) (*Response, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to marshal result for id %s: %w", id, err)
	}
	return &Response{ID: id, Result: raw}, nil
}

// NewErrorResponse builds a failed Response with the given code and
// message and no extra data.
func NewErrorResponse(id RequestID, code ErrorCode, message string) *Response {
	return &Response{
		ID:    id,
		Error: &ResponseError{Code: code, Message: message},
	}
}

func marshalPayload(params interface{}) (json.RawMessage, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	if isNullPayload(raw) {
		return nil, nil
	}
	return raw, nil
}

// Extract decodes the inner payload into out after checking the method
// name. On a method mismatch the request is left untouched and the error
// matches ErrMethodMismatch, so a dispatcher can retry against another
// method. A payload that does not fit out yields an *ExtractError.
func (r *Request) Extract(method string, out interface{}) (RequestID, error) {
	if r.Method != method {
		return RequestID{}, fmt.Errorf("%w: expected %q, got %q", ErrMethodMismatch, method, r.Method)
	}
	if err := unmarshalPayload(r.Params.Params, out); err != nil {
		return RequestID{}, &ExtractError{Method: r.Method, Err: err}
	}
	return r.ID, nil
}

// Extract decodes the inner payload into out after checking the method
// name. Error semantics match Request.Extract.
func (n *Notification) Extract(method string, out interface{}) error {
	if n.Method != method {
		return fmt.Errorf("%w: expected %q, got %q", ErrMethodMismatch, method, n.Method)
	}
	if err := unmarshalPayload(n.Params.Params, out); err != nil {
		return &ExtractError{Method: n.Method, Err: err}
	}
	return nil
}

func unmarshalPayload(raw json.RawMessage, out interface{}) error {
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	return json.Unmarshal(raw, out)
}

// URI returns the uri side channel, when set.
func (r *Request) URI() (string, bool) {
	if r.Params.URI == nil {
		return "", false
	}
	return *r.Params.URI, true
}

// URI returns the uri side channel, when set.
func (n *Notification) URI() (string, bool) {
	if n.Params.URI == nil {
		return "", false
	}
	return *n.Params.URI, true
}

// IsInitialize reports whether the request is the initialize lifecycle
// call.
func (r *Request) IsInitialize() bool {
	return r.Method == "initialize"
}

// IsShutdown reports whether the request is the shutdown lifecycle call.
func (r *Request) IsShutdown() bool {
	return r.Method == "shutdown"
}

// IsInitialize reports whether the notification is the initialize
// lifecycle call.
func (n *Notification) IsInitialize() bool {
	return n.Method == "initialize"
}

// IsExit reports whether the notification is the exit lifecycle call.
func (n *Notification) IsExit() bool {
	return n.Method == "exit"
}
