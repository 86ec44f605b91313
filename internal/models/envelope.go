package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// UnknownID is used when a request carries no usable id.
const UnknownID = "unknown"

// ErrRequestNotObject is returned by ParseRequest for valid JSON that is not an object.
var ErrRequestNotObject = errors.New("request_must_be_object")

// Request is a single adapter invocation
type Request struct {
	ID     string         `json:"id" jsonschema:"description=Caller correlation id; defaults to unknown"`
	Method string         `json:"method" jsonschema:"required,minLength=1"`
	Params map[string]any `json:"params,omitempty"`
}

// Response is the uniform envelope written back to the caller
type Response struct {
	ID     string     `json:"id"`
	OK     bool       `json:"ok"`
	Result any        `json:"result,omitempty"`
	Error  *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo represents an error in a response
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// NewRequest creates a request, filling in the defaults
func NewRequest(id, method string, params map[string]any) *Request {
	if id == "" {
		id = UnknownID
	}
	if params == nil {
		params = map[string]any{}
	}
	return &Request{ID: id, Method: strings.TrimSpace(method), Params: params}
}

// ParseRequest decodes a raw request object. Missing ids become UnknownID and a
// params value that is not an object is replaced by an empty map. The method is
// trimmed but not validated here.
func ParseRequest(raw []byte) (*Request, error) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	obj, ok := decoded.(map[string]any)
	if !ok {
		return nil, ErrRequestNotObject
	}

	req := &Request{
		ID:     IDOf(obj),
		Params: map[string]any{},
	}
	if m, ok := obj["method"]; ok && m != nil {
		req.Method = strings.TrimSpace(cast.ToString(m))
	}
	if p, ok := obj["params"].(map[string]any); ok {
		req.Params = p
	}
	return req, nil
}

// IDOf extracts the id of a decoded request object as a string.
func IDOf(obj map[string]any) string {
	v, ok := obj["id"]
	if !ok || v == nil {
		return UnknownID
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return UnknownID
	}
	return string(data)
}

// NewResult creates a success response
func NewResult(id string, result any) *Response {
	return &Response{ID: id, OK: true, Result: result}
}

// NewError creates a failure response. details may be nil.
func NewError(id, code, message string, details any) *Response {
	return &Response{
		ID: id,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// IsError returns true if the response contains an error
func (r *Response) IsError() bool {
	return r.Error != nil
}

// GetError returns the error message if present
func (r *Response) GetError() string {
	if r.Error != nil {
		return r.Error.Message
	}
	return ""
}

// MarshalJSON always emits ok and exactly one of result or error. A successful
// response with a nil result still carries "result": null.
func (r *Response) MarshalJSON() ([]byte, error) {
	if r.Error != nil {
		return marshalRaw(&struct {
			ID    string     `json:"id"`
			OK    bool       `json:"ok"`
			Error *ErrorInfo `json:"error"`
		}{ID: r.ID, OK: false, Error: r.Error})
	}
	return marshalRaw(&struct {
		ID     string `json:"id"`
		OK     bool   `json:"ok"`
		Result any    `json:"result"`
	}{ID: r.ID, OK: true, Result: r.Result})
}

func marshalRaw(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Encode serializes the response as a single UTF-8 line without HTML escaping.
func (r *Response) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return buf.Bytes(), nil
}
