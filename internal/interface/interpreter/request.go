// Package interpreter turns decoded message payloads into depth chart
// operations and writes human-readable results to an output sink.
package interpreter

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/depthchart-hub/depth-chart-hub/internal/domain/shared"
)

// Message types carried in the "type" field of a payload.
const (
	TypeAddPlayer = "add_player"
	TypeAdd       = "add"
	TypeRemove    = "remove"
	TypeGetFull   = "get_full"
	TypeGetUnder  = "get_under"
)

// Payload field names. Matching is case-sensitive.
const (
	fieldType     = "type"
	fieldName     = "name"
	fieldPosition = "position"
	fieldDepth    = "depth"
	fieldPlayerID = "playerId"
)

// Request is one decoded command. The set of implementations is closed; see
// Interpreter.dispatch for the exhaustive switch.
type Request interface {
	Type() string
	isRequest()
}

// AddPlayerRequest registers a player.
type AddPlayerRequest struct {
	Name     string
	PlayerID *int
}

// AddRequest places a player at a position.
type AddRequest struct {
	Name     string
	Position string
	Depth    *int
}

// RemoveRequest removes a player from a position.
type RemoveRequest struct {
	Name     string
	Position string
}

// GetFullRequest asks for the whole chart.
type GetFullRequest struct{}

// GetUnderRequest asks for the players below Name at Position.
type GetUnderRequest struct {
	Name     string
	Position string
}

func (AddPlayerRequest) Type() string { return TypeAddPlayer }
func (AddRequest) Type() string       { return TypeAdd }
func (RemoveRequest) Type() string    { return TypeRemove }
func (GetFullRequest) Type() string   { return TypeGetFull }
func (GetUnderRequest) Type() string  { return TypeGetUnder }

func (AddPlayerRequest) isRequest() {}
func (AddRequest) isRequest()       {}
func (RemoveRequest) isRequest()    {}
func (GetFullRequest) isRequest()   {}
func (GetUnderRequest) isRequest()  {}

// Decode parses a payload into a Request.
//
// A payload without a "type" field, or with a type that is not a known
// string, decodes to (nil, nil): it is ignored rather than reported.
// Anything that is not a JSON object, or whose fields have the wrong JSON
// types, fails with shared.ErrMalformedPayload. Missing required fields fail
// with shared.ErrMissingField.
func Decode(payload []byte) (Request, error) {
	fields, err := decodeObject(payload)
	if err != nil {
		return nil, err
	}

	rawType, ok := fields[fieldType]
	if !ok {
		return nil, nil
	}
	var kind string
	if err := json.Unmarshal(rawType, &kind); err != nil {
		// null, numbers, objects: not a recognized discriminator.
		return nil, nil
	}

	d := fieldDecoder{fields: fields}
	switch kind {
	case TypeAddPlayer:
		req := AddPlayerRequest{
			Name:     d.requiredString(fieldName),
			PlayerID: d.optionalInt(fieldPlayerID),
		}
		return d.finish(req)
	case TypeAdd:
		req := AddRequest{
			Name:     d.requiredString(fieldName),
			Position: d.requiredString(fieldPosition),
			Depth:    d.optionalInt(fieldDepth),
		}
		return d.finish(req)
	case TypeRemove:
		req := RemoveRequest{
			Name:     d.requiredString(fieldName),
			Position: d.requiredString(fieldPosition),
		}
		return d.finish(req)
	case TypeGetFull:
		return GetFullRequest{}, nil
	case TypeGetUnder:
		req := GetUnderRequest{
			Name:     d.requiredString(fieldName),
			Position: d.requiredString(fieldPosition),
		}
		return d.finish(req)
	default:
		return nil, nil
	}
}

func decodeObject(payload []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, shared.Detail(shared.ErrMalformedPayload, "payload is not a JSON object")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, shared.DetailWrap(shared.ErrMalformedPayload, "invalid JSON", err)
	}
	return fields, nil
}

// fieldDecoder reads typed values out of a raw object and keeps the first
// error it hits, so callers can decode a whole request before checking.
type fieldDecoder struct {
	fields map[string]json.RawMessage
	err    error
}

func (d *fieldDecoder) finish(req Request) (Request, error) {
	if d.err != nil {
		return nil, d.err
	}
	return req, nil
}

func (d *fieldDecoder) present(key string) (json.RawMessage, bool) {
	raw, ok := d.fields[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	return raw, true
}

func (d *fieldDecoder) requiredString(key string) string {
	if d.err != nil {
		return ""
	}
	raw, ok := d.present(key)
	if !ok {
		d.err = shared.Detail(shared.ErrMissingField, fmt.Sprintf("field '%s' is required", key))
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		d.err = shared.DetailWrap(shared.ErrMalformedPayload, fmt.Sprintf("field '%s' must be a string", key), err)
		return ""
	}
	if s == "" {
		d.err = shared.Detail(shared.ErrMissingField, fmt.Sprintf("field '%s' is required", key))
	}
	return s
}

func (d *fieldDecoder) optionalInt(key string) *int {
	if d.err != nil {
		return nil
	}
	raw, ok := d.present(key)
	if !ok {
		return nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		d.err = shared.DetailWrap(shared.ErrMalformedPayload, fmt.Sprintf("field '%s' must be an integer", key), err)
		return nil
	}
	return &n
}
