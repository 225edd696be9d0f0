package insights

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	pkgerrors "netgraph-backend/pkg/errors"
)

// segment is one parsed piece of a template string: either a literal or a
// variable token with an optional format directive.
type segment struct {
	literal   string
	variable  string
	format    string
	formatArg string
	isVar     bool
}

// Interpolator renders "{{variable}}" tokens against a variable resolver.
// Templates are parsed once into an ordered segment list and reused for
// every render. Supported directives:
//
//	{{name}}           default numeric/string formatting
//	{{name|number}}    thousands separators
//	{{name|ordinal}}   1st, 2nd, 3rd, ...
//	{{name|percent}}   value with a % suffix
//	{{name|plural:noun}}  noun pluralized by the value of name
type Interpolator struct {
	parsed map[string][]segment
}

// NewInterpolator creates an empty interpolator.
func NewInterpolator() *Interpolator {
	return &Interpolator{parsed: make(map[string][]segment)}
}

// parse splits a template string into literal and variable segments.
func parse(template string) ([]segment, error) {
	var segments []segment
	rest := template
	for {
		open := strings.Index(rest, "{{")
		if open < 0 {
			break
		}
		closing := strings.Index(rest[open:], "}}")
		if closing < 0 {
			return nil, pkgerrors.NewValidationError("unterminated token in template")
		}
		closing += open
		if open > 0 {
			segments = append(segments, segment{literal: rest[:open]})
		}
		token := strings.TrimSpace(rest[open+2 : closing])
		seg := segment{isVar: true, variable: token}
		if pipe := strings.Index(token, "|"); pipe >= 0 {
			seg.variable = strings.TrimSpace(token[:pipe])
			directive := strings.TrimSpace(token[pipe+1:])
			if colon := strings.Index(directive, ":"); colon >= 0 {
				seg.format = directive[:colon]
				seg.formatArg = directive[colon+1:]
			} else {
				seg.format = directive
			}
		}
		if seg.variable == "" {
			return nil, pkgerrors.NewValidationError("empty token in template")
		}
		segments = append(segments, seg)
		rest = rest[closing+2:]
	}
	if rest != "" {
		segments = append(segments, segment{literal: rest})
	}
	return segments, nil
}

// segmentsFor returns the cached parse of a template string.
func (ip *Interpolator) segmentsFor(template string) ([]segment, error) {
	if segs, ok := ip.parsed[template]; ok {
		return segs, nil
	}
	segs, err := parse(template)
	if err != nil {
		return nil, err
	}
	ip.parsed[template] = segs
	return segs, nil
}

// Variables lists the variable names a template references.
func (ip *Interpolator) Variables(template string) ([]string, error) {
	segs, err := ip.segmentsFor(template)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, s := range segs {
		if s.isVar {
			names = append(names, s.variable)
		}
	}
	return names, nil
}

// Render substitutes every token. The boolean is false when any variable
// cannot be resolved; callers skip the template rather than emit a broken
// string.
func (ip *Interpolator) Render(template string, resolve func(string) (interface{}, bool)) (string, bool, error) {
	segs, err := ip.segmentsFor(template)
	if err != nil {
		return "", false, err
	}
	var b strings.Builder
	for _, s := range segs {
		if !s.isVar {
			b.WriteString(s.literal)
			continue
		}
		val, ok := resolve(s.variable)
		if !ok {
			return "", false, nil
		}
		b.WriteString(formatValue(val, s.format, s.formatArg))
	}
	return b.String(), true, nil
}

func formatValue(val interface{}, format, arg string) string {
	switch format {
	case "ordinal":
		if f, ok := asFloat(val); ok {
			return ordinal(int(math.Round(f)))
		}
	case "percent":
		if f, ok := asFloat(val); ok {
			return formatNumber(f) + "%"
		}
	case "number":
		if f, ok := asFloat(val); ok {
			return formatNumber(f)
		}
	case "plural":
		if f, ok := asFloat(val); ok {
			return pluralize(arg, f)
		}
		return arg
	}
	if s, ok := val.(string); ok {
		return s
	}
	if f, ok := asFloat(val); ok {
		return formatNumber(f)
	}
	return fmt.Sprintf("%v", val)
}

// formatNumber renders whole values as integers with thousands separators
// and fractional values with one decimal place.
func formatNumber(f float64) string {
	rounded := math.Round(f)
	if math.Abs(f-rounded) < 1e-9 {
		return addThousands(strconv.FormatInt(int64(rounded), 10))
	}
	return strconv.FormatFloat(f, 'f', 1, 64)
}

func addThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return addThousands(strconv.Itoa(n)) + suffix
}

func pluralize(noun string, count float64) string {
	if math.Abs(count-1) < 1e-9 {
		return noun
	}
	switch {
	case strings.HasSuffix(noun, "y") && !strings.HasSuffix(noun, "ay") &&
		!strings.HasSuffix(noun, "ey") && !strings.HasSuffix(noun, "oy"):
		return noun[:len(noun)-1] + "ies"
	case strings.HasSuffix(noun, "s") || strings.HasSuffix(noun, "x") ||
		strings.HasSuffix(noun, "ch") || strings.HasSuffix(noun, "sh"):
		return noun + "es"
	default:
		return noun + "s"
	}
}
