package constraint

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// funcMatcher adapts a predicate and a description to Matcher.
type funcMatcher struct {
	desc string
	fn   func(string) bool
}

func (m funcMatcher) Match(s string) bool { return m.fn(s) }

func (m funcMatcher) String() string { return m.desc }

// Func returns a Matcher backed by fn. desc is used in error messages and
// route introspection.
func Func(desc string, fn func(string) bool) Matcher {
	return funcMatcher{desc: desc, fn: fn}
}

// regexpMatcher matches an anchored regexp with an optional maximum length.
type regexpMatcher struct {
	re     *regexp.Regexp
	maxLen int
}

func (m *regexpMatcher) Match(s string) bool {
	if m.maxLen > 0 && len(s) > m.maxLen {
		return false
	}

	return m.re.MatchString(s)
}

func (m *regexpMatcher) String() string {
	return m.re.String()
}

// noArgs wraps a fixed matcher in a factory that rejects arguments.
func noArgs(m Matcher) Factory {
	return func(args string) (Matcher, error) {
		if args != "" {
			return nil, fmt.Errorf("%w: %s takes no arguments, got %q", ErrInvalidArgs, m, args)
		}

		return m, nil
	}
}

// mustPattern compiles a built-in pattern anchored on both ends.
func mustPattern(name, pattern string, maxLen int) Factory {
	re := regexp.MustCompile("^(?:" + pattern + ")$")
	return noArgs(&namedMatcher{name: name, Matcher: &regexpMatcher{re: re, maxLen: maxLen}})
}

// namedMatcher overrides the description of an inner matcher.
type namedMatcher struct {
	Matcher
	name string
}

func (m *namedMatcher) String() string { return m.name }

// builtins maps the names available in every NewRegistry.
var builtins = map[string]Factory{
	"int":      noArgs(Func("int", intOfSize(32))),
	"long":     noArgs(Func("long", intOfSize(64))),
	"bool":     noArgs(Func("bool", isBool)),
	"decimal":  mustPattern("decimal", `[+-]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)`, 0),
	"double":   noArgs(Func("double", floatOfSize(64))),
	"float":    noArgs(Func("float", floatOfSize(32))),
	"datetime": noArgs(Func("datetime", isDateTime)),
	"guid":     noArgs(Func("guid", isUUID)),
	"uuid":     noArgs(Func("uuid", isUUID)),
	"alpha":    mustPattern("alpha", `[a-zA-Z]+`, 0),
	"alphanum": mustPattern("alphanum", `[a-zA-Z0-9]+`, 0),
	"slug":     mustPattern("slug", `[a-zA-Z0-9]+(?:-[a-zA-Z0-9]+)*`, 0),
	"hex":      mustPattern("hex", `[0-9a-fA-F]+`, 0),
	"date":     mustPattern("date", `[0-9]{4}-[0-9]{2}-[0-9]{2}`, 0),
	// RFC 1035/1123: labels 1-63 chars, total up to 253 chars.
	"domain":    mustPattern("domain", `(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?`, 253),
	"base64":    noArgs(Func("base64", isBase64)),
	"min":       newMin,
	"max":       newMax,
	"range":     newRange,
	"length":    newLength,
	"minlength": newMinLength,
	"maxlength": newMaxLength,
	"regex":     newRegex,
	"enum":      newEnum,
}

func intOfSize(bits int) func(string) bool {
	return func(s string) bool {
		_, err := strconv.ParseInt(s, 10, bits)
		return err == nil
	}
}

func floatOfSize(bits int) func(string) bool {
	return func(s string) bool {
		f, err := strconv.ParseFloat(s, bits)
		return err == nil && !math.IsInf(f, 0) && !math.IsNaN(f)
	}
}

func isBool(s string) bool {
	return strings.EqualFold(s, "true") || strings.EqualFold(s, "false")
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

func isDateTime(s string) bool {
	for _, layout := range dateTimeLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}

	return false
}

func isUUID(s string) bool {
	return uuid.Validate(s) == nil
}

// isBase64 checks the shape only: standard or URL-safe alphabet characters
// followed by at most two '=' padding characters. The value need not decode.
func isBase64(s string) bool {
	body := strings.TrimRight(s, "=")
	if body == "" || len(s)-len(body) > 2 {
		return false
	}

	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '+', c == '/', c == '-', c == '_':
		default:
			return false
		}
	}

	return true
}

func parseInt64(arg string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidArgs, arg)
	}

	return n, nil
}

func parseLength(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q is not a non-negative integer", ErrInvalidArgs, arg)
	}

	return n, nil
}

// intBetween returns a matcher accepting integers in [lo, hi].
func intBetween(desc string, lo, hi int64) Matcher {
	return Func(desc, func(s string) bool {
		n, err := strconv.ParseInt(s, 10, 64)
		return err == nil && n >= lo && n <= hi
	})
}

func newMin(args string) (Matcher, error) {
	lo, err := parseInt64(args)
	if err != nil {
		return nil, err
	}

	return intBetween(fmt.Sprintf("min(%d)", lo), lo, math.MaxInt64), nil
}

func newMax(args string) (Matcher, error) {
	hi, err := parseInt64(args)
	if err != nil {
		return nil, err
	}

	return intBetween(fmt.Sprintf("max(%d)", hi), math.MinInt64, hi), nil
}

func newRange(args string) (Matcher, error) {
	parts := splitArgs(args)
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: range expects min,max, got %q", ErrInvalidArgs, args)
	}

	lo, err := parseInt64(parts[0])
	if err != nil {
		return nil, err
	}

	hi, err := parseInt64(parts[1])
	if err != nil {
		return nil, err
	}

	if lo > hi {
		return nil, fmt.Errorf("%w: range min %d is greater than max %d", ErrInvalidArgs, lo, hi)
	}

	return intBetween(fmt.Sprintf("range(%d,%d)", lo, hi), lo, hi), nil
}

// lengthBetween returns a matcher accepting strings of [lo, hi] characters.
func lengthBetween(desc string, lo, hi int) Matcher {
	return Func(desc, func(s string) bool {
		n := utf8.RuneCountInString(s)
		return n >= lo && n <= hi
	})
}

func newLength(args string) (Matcher, error) {
	parts := splitArgs(args)

	switch len(parts) {
	case 1:
		n, err := parseLength(parts[0])
		if err != nil {
			return nil, err
		}

		return lengthBetween(fmt.Sprintf("length(%d)", n), n, n), nil
	case 2:
		lo, err := parseLength(parts[0])
		if err != nil {
			return nil, err
		}

		hi, err := parseLength(parts[1])
		if err != nil {
			return nil, err
		}

		if lo > hi {
			return nil, fmt.Errorf("%w: length min %d is greater than max %d", ErrInvalidArgs, lo, hi)
		}

		return lengthBetween(fmt.Sprintf("length(%d,%d)", lo, hi), lo, hi), nil
	}

	return nil, fmt.Errorf("%w: length expects n or min,max, got %q", ErrInvalidArgs, args)
}

func newMinLength(args string) (Matcher, error) {
	n, err := parseLength(args)
	if err != nil {
		return nil, err
	}

	return lengthBetween(fmt.Sprintf("minlength(%d)", n), n, math.MaxInt), nil
}

func newMaxLength(args string) (Matcher, error) {
	n, err := parseLength(args)
	if err != nil {
		return nil, err
	}

	return lengthBetween(fmt.Sprintf("maxlength(%d)", n), 0, n), nil
}

// newRegex anchors the pattern so it must match the whole segment.
// Patterns that already carry ^ and $ are accepted unchanged in meaning.
func newRegex(args string) (Matcher, error) {
	if args == "" {
		return nil, fmt.Errorf("%w: regex expects a pattern", ErrInvalidArgs)
	}

	re, err := compileRegexp("^(?:" + args + ")$")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}

	return &regexpMatcher{re: re}, nil
}

func newEnum(args string) (Matcher, error) {
	return EnumMatcher(splitArgs(args)...)
}

// enumMatcher accepts values equal to one of its members ignoring case.
type enumMatcher struct {
	members []string
}

func (m *enumMatcher) Match(s string) bool {
	for _, member := range m.members {
		if strings.EqualFold(member, s) {
			return true
		}
	}

	return false
}

// Members returns a copy of the accepted members in declaration order.
func (m *enumMatcher) Members() []string {
	return append([]string(nil), m.members...)
}

func (m *enumMatcher) String() string {
	return "enum(" + strings.Join(m.members, ",") + ")"
}

// EnumMatcher returns a Matcher accepting any of members, compared
// case-insensitively. Members must be non-empty and unique.
func EnumMatcher(members ...string) (Matcher, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: enum expects at least one member", ErrInvalidArgs)
	}

	seen := make(map[string]struct{}, len(members))
	list := make([]string, 0, len(members))

	for _, member := range members {
		member = strings.TrimSpace(member)
		if member == "" {
			return nil, fmt.Errorf("%w: empty enum member", ErrInvalidArgs)
		}

		key := strings.ToLower(member)
		if _, ok := seen[key]; ok {
			return nil, fmt.Errorf("%w: duplicate enum member %q", ErrInvalidArgs, member)
		}

		seen[key] = struct{}{}
		list = append(list, member)
	}

	return &enumMatcher{members: list}, nil
}

// Enum returns a factory for a fixed, named set of members. The resulting
// constraint takes no arguments:
//
//	reg.Register("widget", constraint.Enum("Bolt", "Screw", "Nut", "Motor"))
//	r.HandleFunc("/products/widget/{widget:widget}", handler)
func Enum(members ...string) Factory {
	m, err := EnumMatcher(members...)

	return func(args string) (Matcher, error) {
		if err != nil {
			return nil, err
		}

		if args != "" {
			return nil, fmt.Errorf("%w: named enum takes no arguments, got %q", ErrInvalidArgs, args)
		}

		return m, nil
	}
}

// Regexp returns a factory for a fixed pattern, anchored like regex(p).
func Regexp(pattern string) Factory {
	return func(args string) (Matcher, error) {
		if args != "" {
			return nil, fmt.Errorf("%w: named pattern takes no arguments, got %q", ErrInvalidArgs, args)
		}

		return newRegex(pattern)
	}
}
