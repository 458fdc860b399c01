package bind

import (
	"encoding/json"
	stderrors "errors"
	"reflect"

	"github.com/vango-dev/pulse/internal/errors"
	"github.com/vango-dev/pulse/pkg/reactive"
)

// FrameType identifies a WebSocket frame.
type FrameType string

const (
	FrameValue  FrameType = "value"
	FrameError  FrameType = "error"
	FrameSet    FrameType = "set"
	FrameAction FrameType = "action"
)

// Frame is one WebSocket message in either direction.
type Frame struct {
	Type    FrameType       `json:"type"`
	Cell    string          `json:"cell,omitempty"`
	Action  string          `json:"action,omitempty"`
	Value   json.RawMessage `json:"value,omitempty"`
	Code    string          `json:"code,omitempty"`
	Message string          `json:"message,omitempty"`

	// Error is the full error object on error frames.
	Error json.RawMessage `json:"error,omitempty"`
}

// valueFrame encodes a value frame for cell.
func valueFrame(cell string, value any) ([]byte, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Type: FrameValue, Cell: cell, Value: raw})
}

// errorFrame encodes err as an error frame. Coded errors keep their code;
// others are reported as E104.
func errorFrame(cell string, err error) []byte {
	perr := coded(err)
	f := Frame{
		Type:    FrameError,
		Cell:    cell,
		Code:    perr.Code,
		Message: perr.FormatCompact(),
		Error:   json.RawMessage(perr.FormatJSON()),
	}
	data, _ := json.Marshal(f)
	return data
}

// coded returns the *errors.Error in err's chain, or err wrapped as an
// internal error.
func coded(err error) *errors.Error {
	var perr *errors.Error
	if stderrors.As(err, &perr) {
		return perr
	}
	return errors.FromError(err, "E104")
}

// parseFrame decodes a client frame.
func parseFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, errors.New("E121").Wrap(err)
	}

	switch f.Type {
	case FrameSet:
		if f.Cell == "" {
			return f, errors.New("E121").WithDetail("set frame without a cell name")
		}
	case FrameAction:
		if f.Action == "" {
			return f, errors.New("E121").WithDetail("action frame without an action name")
		}
	default:
		return f, errors.New("E121").WithDetail("unsupported frame type " + string(f.Type))
	}
	return f, nil
}

// decodeValue decodes raw JSON into a value of cell's type.
func decodeValue(cell reactive.Dynamic, raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, errors.New("E121").WithDetail("missing value")
	}
	ptr := reflect.New(cell.Type())
	if err := json.Unmarshal(raw, ptr.Interface()); err != nil {
		return nil, errors.New("E121").
			WithDetail("value does not decode as " + cell.Type().String()).
			Wrap(err)
	}
	return ptr.Elem().Interface(), nil
}
