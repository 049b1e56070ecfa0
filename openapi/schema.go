package openapi

import (
	"strconv"
	"strings"

	"github.com/vitalvas/strela/constraint"
)

// namedSchemas maps argument-free built-in constraints to their schema.
var namedSchemas = map[string]Schema{
	"int":      {Type: "integer", Format: "int32"},
	"long":     {Type: "integer", Format: "int64"},
	"bool":     {Type: "boolean"},
	"decimal":  {Type: "number"},
	"double":   {Type: "number", Format: "double"},
	"float":    {Type: "number", Format: "float"},
	"datetime": {Type: "string", Format: "date-time"},
	"guid":     {Type: "string", Format: "uuid"},
	"uuid":     {Type: "string", Format: "uuid"},
	"alpha":    {Type: "string", Pattern: "^[a-zA-Z]+$"},
	"alphanum": {Type: "string", Pattern: "^[a-zA-Z0-9]+$"},
	"slug":     {Type: "string", Pattern: "^[a-zA-Z0-9]+(?:-[a-zA-Z0-9]+)*$"},
	"hex":      {Type: "string", Pattern: "^[0-9a-fA-F]+$"},
	"date":     {Type: "string", Format: "date"},
	"domain":   {Type: "string", Format: "hostname"},
	"base64":   {Type: "string", Format: "byte"},
}

// memberLister is implemented by enum matchers.
type memberLister interface {
	Members() []string
}

// constraintSchema translates a raw constraint list such as
// "int:range(1000,3000)" into a schema. References the schema cannot
// express are listed in the description; reg resolves custom constraints.
func constraintSchema(spec string, reg *constraint.Registry) *Schema {
	s := &Schema{}
	if spec == "" {
		s.Type = "string"
		return s
	}

	refs, err := constraint.ParseRefs(spec)
	if err != nil {
		s.Type = "string"
		s.Description = "constraint " + spec
		return s
	}

	var opaque []string
	for _, ref := range refs {
		if !applyRef(s, ref, reg) {
			opaque = append(opaque, ref.String())
		}
	}

	if s.Type == "" {
		s.Type = "string"
	}

	if len(opaque) > 0 {
		s.Description = "constraint " + strings.Join(opaque, ":")
	}

	return s
}

// applyRef narrows s by one reference and reports whether it could.
func applyRef(s *Schema, ref constraint.Ref, reg *constraint.Registry) bool {
	name := strings.ToLower(ref.Name)

	if named, ok := namedSchemas[name]; ok && !ref.HasArgs {
		s.Type = named.Type
		if named.Format != "" {
			s.Format = named.Format
		}
		if named.Pattern != "" {
			s.Pattern = named.Pattern
		}
		return true
	}

	args := splitArgs(ref.Args)

	switch name {
	case "min", "max", "range":
		bounds, ok := parseInts(args)
		if !ok {
			return false
		}

		switch {
		case name == "min" && len(bounds) == 1:
			s.Minimum = &bounds[0]
		case name == "max" && len(bounds) == 1:
			s.Maximum = &bounds[0]
		case name == "range" && len(bounds) == 2:
			s.Minimum, s.Maximum = &bounds[0], &bounds[1]
		default:
			return false
		}

		if s.Type != "number" {
			s.Type = "integer"
		}
		return true
	case "length", "minlength", "maxlength":
		bounds, ok := parseInts(args)
		if !ok {
			return false
		}

		lengths := make([]int, len(bounds))
		for i, b := range bounds {
			lengths[i] = int(b)
		}

		switch {
		case name == "length" && len(lengths) == 1:
			s.MinLength, s.MaxLength = &lengths[0], &lengths[0]
		case name == "length" && len(lengths) == 2:
			s.MinLength, s.MaxLength = &lengths[0], &lengths[1]
		case name == "minlength" && len(lengths) == 1:
			s.MinLength = &lengths[0]
		case name == "maxlength" && len(lengths) == 1:
			s.MaxLength = &lengths[0]
		default:
			return false
		}
		return true
	case "regex":
		if ref.Args == "" {
			return false
		}
		s.Pattern = "^(?:" + ref.Args + ")$"
		return true
	case "enum":
		if len(args) == 0 {
			return false
		}
		s.Type = "string"
		s.Enum = args
		return true
	}

	if reg == nil {
		return false
	}

	m, err := reg.Build(ref)
	if err != nil {
		return false
	}

	if l, ok := m.(memberLister); ok {
		s.Type = "string"
		s.Enum = l.Members()
		return true
	}

	return false
}

func splitArgs(args string) []string {
	if strings.TrimSpace(args) == "" {
		return nil
	}

	parts := strings.Split(args, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}

	return parts
}

func parseInts(args []string) ([]int64, bool) {
	if len(args) == 0 {
		return nil, false
	}

	out := make([]int64, len(args))
	for i, a := range args {
		n, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, false
		}
		out[i] = n
	}

	return out, true
}
