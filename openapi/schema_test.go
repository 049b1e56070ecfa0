package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vitalvas/strela/constraint"
)

func i64(n int64) *int64 { return &n }
func intp(n int) *int    { return &n }

func TestConstraintSchema(t *testing.T) {
	reg := constraint.NewRegistry()
	reg.MustRegister("widget", constraint.Enum("Bolt", "Screw"))
	reg.MustRegister("even", func(string) (constraint.Matcher, error) {
		return constraint.Func("even", func(s string) bool { return len(s)%2 == 0 }), nil
	})

	tests := []struct {
		name string
		spec string
		want *Schema
	}{
		{"unconstrained", "", &Schema{Type: "string"}},
		{"int", "int", &Schema{Type: "integer", Format: "int32"}},
		{"int range", "int:range(1000,3000)", &Schema{Type: "integer", Format: "int32", Minimum: i64(1000), Maximum: i64(3000)}},
		{"min alone", "min(5)", &Schema{Type: "integer", Minimum: i64(5)}},
		{"double max", "double:max(9)", &Schema{Type: "number", Format: "double", Maximum: i64(9)}},
		{"exact length", "length(8)", &Schema{Type: "string", MinLength: intp(8), MaxLength: intp(8)}},
		{"length bounds", "length(2,4)", &Schema{Type: "string", MinLength: intp(2), MaxLength: intp(4)}},
		{"maxlength", "alpha:maxlength(3)", &Schema{Type: "string", Pattern: "^[a-zA-Z]+$", MaxLength: intp(3)}},
		{"regex", `regex(^(?:status1|status2)$)`, &Schema{Type: "string", Pattern: "^(?:^(?:status1|status2)$)$"}},
		{"inline enum", "enum(a, b)", &Schema{Type: "string", Enum: []string{"a", "b"}}},
		{"named enum", "widget", &Schema{Type: "string", Enum: []string{"Bolt", "Screw"}}},
		{"named enum any case", "WIDGET", &Schema{Type: "string", Enum: []string{"Bolt", "Screw"}}},
		{"guid", "guid", &Schema{Type: "string", Format: "uuid"}},
		{"opaque custom", "even", &Schema{Type: "string", Description: "constraint even"}},
		{"unknown", "nope", &Schema{Type: "string", Description: "constraint nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, constraintSchema(tt.spec, reg))
		})
	}
}

func TestConstraintSchemaNilRegistry(t *testing.T) {
	assert.Equal(t, &Schema{Type: "string", Description: "constraint widget"}, constraintSchema("widget", nil))
}
