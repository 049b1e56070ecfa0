package constraint

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSyntax is returned when a constraint reference list is malformed.
var ErrSyntax = errors.New("constraint: syntax error")

// Ref is a parsed constraint reference: a name and its raw argument string.
type Ref struct {
	Name    string
	Args    string
	HasArgs bool
}

// String returns the reference in template form.
func (r Ref) String() string {
	if r.HasArgs {
		return r.Name + "(" + r.Args + ")"
	}

	return r.Name
}

// ParseRefs splits a colon-separated reference list such as
// "int:range(1000,3000)" into its references. Colons inside parentheses
// belong to the argument, and a backslash escapes the next character, so
// regular expressions like "regex(^(?:a|b)\(x$)" parse as a single reference.
func ParseRefs(s string) ([]Ref, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty constraint list", ErrSyntax)
	}

	var (
		refs  []Ref
		depth int
		start int
	)

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: unbalanced parentheses in %q", ErrSyntax, s)
			}
		case ':':
			if depth == 0 {
				ref, err := parseRef(s[start:i], s)
				if err != nil {
					return nil, err
				}

				refs = append(refs, ref)
				start = i + 1
			}
		}
	}

	if depth != 0 {
		return nil, fmt.Errorf("%w: unbalanced parentheses in %q", ErrSyntax, s)
	}

	ref, err := parseRef(s[start:], s)
	if err != nil {
		return nil, err
	}

	return append(refs, ref), nil
}

func parseRef(part, full string) (Ref, error) {
	if part == "" {
		return Ref{}, fmt.Errorf("%w: empty constraint in %q", ErrSyntax, full)
	}

	open := strings.IndexByte(part, '(')
	if open == -1 {
		if !validName(part) {
			return Ref{}, fmt.Errorf("%w: %q in %q", ErrInvalidName, part, full)
		}

		return Ref{Name: part}, nil
	}

	if part[len(part)-1] != ')' {
		return Ref{}, fmt.Errorf("%w: trailing text after arguments in %q", ErrSyntax, part)
	}

	name := part[:open]
	if !validName(name) {
		return Ref{}, fmt.Errorf("%w: %q in %q", ErrInvalidName, name, full)
	}

	return Ref{
		Name:    name,
		Args:    part[open+1 : len(part)-1],
		HasArgs: true,
	}, nil
}

// splitArgs splits a comma-separated argument string and trims each entry.
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
