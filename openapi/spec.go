package openapi

import (
	"net/http"
	"strings"

	"github.com/vitalvas/strela/constraint"
	"github.com/vitalvas/strela/mux"
)

// Build walks r and describes every route that has both a path and a method
// set. Path variables become required path parameters whose schema follows
// the variable's constraints. A route ending in optional variables is listed
// once per accepted path length, and only its longest form carries the route
// name as operation ID.
func Build(r *mux.Router, info Info) (*Document, error) {
	doc := &Document{
		OpenAPI: Version,
		Info:    info,
		Paths:   make(map[string]*PathItem),
	}

	reg := r.Constraints()

	err := r.Walk(func(route *mux.Route, _ *mux.Router) error {
		segs, err := route.GetSegments()
		if err != nil {
			return nil
		}

		methods, err := route.GetMethods()
		if err != nil {
			return nil
		}

		required := 0
		for _, seg := range segs {
			if !seg.Optional {
				required++
			}
		}

		for n := len(segs); n >= required; n-- {
			path, params := pathOf(segs[:n], reg)

			item, ok := doc.Paths[path]
			if !ok {
				item = &PathItem{}
				doc.Paths[path] = item
			}

			for _, method := range methods {
				op := newOperation(route, method, params)
				if n != len(segs) {
					op.OperationID = ""
				}
				assignOperation(item, method, op)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// pathOf renders segs as an OpenAPI path and collects its parameters.
func pathOf(segs []mux.Segment, reg *constraint.Registry) (string, []*Parameter) {
	var (
		b      strings.Builder
		params []*Parameter
	)

	for _, seg := range segs {
		b.WriteByte('/')

		if !seg.IsVar() {
			b.WriteString(seg.Literal)
			continue
		}

		b.WriteString("{" + seg.Name + "}")

		p := &Parameter{
			Name:     seg.Name,
			In:       "path",
			Required: true,
			Schema:   constraintSchema(seg.Constraints, reg),
		}
		if seg.CatchAll {
			p.Description = "remaining path, may contain slashes"
		}

		params = append(params, p)
	}

	if b.Len() == 0 {
		return "/", params
	}

	return b.String(), params
}

func newOperation(route *mux.Route, method string, params []*Parameter) *Operation {
	op := &Operation{
		OperationID: route.GetName(),
		Summary:     route.String(),
		Parameters:  params,
		Responses: map[string]*Response{
			"default": {Description: "Response"},
		},
	}

	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		op.RequestBody = &RequestBody{
			Content: map[string]*MediaType{
				"application/json": {Schema: &Schema{}},
			},
		}
	}

	return op
}

// assignOperation stores op under method on item. Methods without a fixed
// field go to additionalOperations. The first route registered for a path
// and method wins.
func assignOperation(item *PathItem, method string, op *Operation) {
	var slot **Operation

	switch method {
	case http.MethodGet:
		slot = &item.Get
	case http.MethodPut:
		slot = &item.Put
	case http.MethodPost:
		slot = &item.Post
	case http.MethodDelete:
		slot = &item.Delete
	case http.MethodOptions:
		slot = &item.Options
	case http.MethodHead:
		slot = &item.Head
	case http.MethodPatch:
		slot = &item.Patch
	case http.MethodTrace:
		slot = &item.Trace
	default:
		if item.AdditionalOperations == nil {
			item.AdditionalOperations = make(map[string]*Operation)
		}
		if _, ok := item.AdditionalOperations[method]; !ok {
			item.AdditionalOperations[method] = op
		}
		return
	}

	if *slot == nil {
		*slot = op
	}
}
