package openapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/vitalvas/strela/mux"
)

// ErrUnknownFormat is returned by Marshal for an unsupported format.
var ErrUnknownFormat = errors.New("openapi: unknown format")

// Format selects the document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func (f Format) contentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// Marshal encodes doc in the given format.
func Marshal(doc *Document, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatYAML:
		return yaml.Marshal(doc)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Handler serves the document describing r. The document is built and
// encoded on the first request, once the routing table is complete, and
// cached afterwards.
func Handler(r *mux.Router, info Info, format Format) http.Handler {
	var (
		once sync.Once
		data []byte
		err  error
	)

	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		once.Do(func() {
			var doc *Document
			if doc, err = Build(r, info); err == nil {
				data, err = Marshal(doc, format)
			}
		})

		if err != nil {
			mux.ResponseError(w, http.StatusInternalServerError, "failed to build the OpenAPI document")
			return
		}

		w.Header().Set("Content-Type", format.contentType())
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	})
}

// Handle registers GET <base>.json and GET <base>.yaml on r:
//
//	openapi.Handle(r, "/openapi", openapi.Info{Title: "Products", Version: "1.0.0"})
//	// /openapi.json  -> JSON document
//	// /openapi.yaml  -> YAML document
func Handle(r *mux.Router, base string, info Info) {
	base = strings.TrimRight(base, "/")

	r.Handle(base+".json", Handler(r, info, FormatJSON)).Methods(http.MethodGet)
	r.Handle(base+".yaml", Handler(r, info, FormatYAML)).Methods(http.MethodGet)
}
