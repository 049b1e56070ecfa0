package mux

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// ErrTrailingData is returned by BindJSON when the body holds more than one
// JSON value.
var ErrTrailingData = errors.New("mux: unexpected trailing data after JSON value")

// BindJSON decodes the request body as JSON into v.
// By default the decoder rejects unknown fields that do not map to exported
// struct fields. Pass true to allow them.
func BindJSON(r *http.Request, v any, allowUnknownFields ...bool) error {
	dec := json.NewDecoder(r.Body)

	if len(allowUnknownFields) == 0 || !allowUnknownFields[0] {
		dec.DisallowUnknownFields()
	}

	if err := dec.Decode(v); err != nil {
		return err
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return ErrTrailingData
	}

	return nil
}
