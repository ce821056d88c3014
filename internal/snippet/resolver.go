package snippet

import (
	"regexp"
	"strconv"
	"strings"
)

// Shortcut is a named replacement template registered once and substituted
// during resolution. The replacement may itself contain function snippets.
type Shortcut struct {
	Name        string
	Replacement string
}

// Builtin shortcuts, applied in declaration order.
var builtinShortcuts = []Shortcut{
	{Name: "iid", Replacement: "{{input.id}}:{{stream.index}}"},
	{Name: "oid", Replacement: "{{outputStream.index}}"},
	{Name: "fn", Replacement: "{{input.path.filename}}"},
	{Name: "lng", Replacement: "{{ stream.tags && stream.tags.language ? stream.tags.language : 'und' }}"},
	{Name: "label", Replacement: "{{ (stream.disposition && stream.disposition.forced===1) || (stream.tags && stream.tags.title && stream.tags.title.match(/forced/i)) ? 'forced' : (stream.disposition && stream.disposition.hearing_impaired===1) || (stream.tags && stream.tags.title && stream.tags.title.match(/hi|sdh/i)) ? 'sdh' : '' }}"},
}

var (
	boolLiteralRe   = regexp.MustCompile(`\{(true|false)\}`)
	numberLiteralRe = regexp.MustCompile(`\{(\d+(?:\.\d+)?)\}`)
	functionRe      = regexp.MustCompile(`\{\{(.+?)\}\}`)
	residualRe      = regexp.MustCompile(`\{[^{}]+\}`)
	intRe           = regexp.MustCompile(`^\d+$`)
	floatRe         = regexp.MustCompile(`^\d+\.\d+$`)
)

// Resolver substitutes literals, shortcuts, and function snippets in profile
// strings. A Resolver is immutable and safe for concurrent use.
type Resolver struct {
	shortcuts []compiledShortcut
}

type compiledShortcut struct {
	re          *regexp.Regexp
	replacement string
}

// NewResolver builds a resolver over the built-in shortcut table plus any
// extra shortcuts, applied after the built-ins in declaration order.
func NewResolver(extra ...Shortcut) *Resolver {
	all := make([]Shortcut, 0, len(builtinShortcuts)+len(extra))
	all = append(all, builtinShortcuts...)
	all = append(all, extra...)

	r := &Resolver{shortcuts: make([]compiledShortcut, 0, len(all))}
	for _, shortcut := range all {
		// Leading or trailing separator is captured and carried over to
		// the replacement, so {.lng} becomes .<lang>.
		re := regexp.MustCompile(`(?i)\{([-._ ]?)` + regexp.QuoteMeta(shortcut.Name) + `([-._ ]?)\}`)
		r.shortcuts = append(r.shortcuts, compiledShortcut{re: re, replacement: shortcut.Replacement})
	}
	return r
}

// Resolve runs the full substitution pipeline over a snippet and returns the
// final value: the resolved string, cast to bool/int/float64 when the whole
// result is such a literal.
func (r *Resolver) Resolve(snippet string, ctx Context) (any, error) {
	text, err := r.resolveText(snippet, ctx)
	if err != nil {
		return nil, err
	}
	return cast(text), nil
}

// ResolveSeq joins a snippet sequence with single spaces and resolves the
// result, so a sequence and its joined form are interchangeable.
func (r *Resolver) ResolveSeq(snippets []string, ctx Context) (any, error) {
	return r.Resolve(strings.Join(snippets, " "), ctx)
}

// ResolveString resolves a snippet and renders the result as a string.
func (r *Resolver) ResolveString(snippet string, ctx Context) (string, error) {
	value, err := r.Resolve(snippet, ctx)
	if err != nil {
		return "", err
	}
	return Stringify(value), nil
}

func (r *Resolver) resolveText(snippet string, ctx Context) (string, error) {
	text := boolLiteralRe.ReplaceAllString(snippet, "$1")
	text = numberLiteralRe.ReplaceAllString(text, "$1")

	var firstErr error
	for _, shortcut := range r.shortcuts {
		text = shortcut.re.ReplaceAllStringFunc(text, func(match string) string {
			groups := shortcut.re.FindStringSubmatch(match)
			replaced, err := resolveFunctions(shortcut.replacement, ctx)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return match
			}
			if replaced == "" {
				// Empty expansion swallows its separators.
				return ""
			}
			return groups[1] + replaced + groups[2]
		})
		if firstErr != nil {
			return "", firstErr
		}
	}

	text, err := resolveFunctions(text, ctx)
	if err != nil {
		return "", err
	}

	if residuals := residualRe.FindAllString(text, -1); len(residuals) > 0 {
		return "", &UnresolvedError{Snippet: snippet, Residuals: residuals}
	}
	return text, nil
}

func resolveFunctions(text string, ctx Context) (string, error) {
	var firstErr error
	result := functionRe.ReplaceAllStringFunc(text, func(match string) string {
		expr := match[2 : len(match)-2]
		value, err := Evaluate(expr, ctx)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return match
		}
		if isNullish(value) {
			if firstErr == nil {
				firstErr = evalErrorf(expr, "expression yielded no value")
			}
			return match
		}
		return Stringify(value)
	})
	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

func cast(text string) any {
	switch {
	case text == "true":
		return true
	case text == "false":
		return false
	case intRe.MatchString(text):
		if parsed, err := strconv.Atoi(text); err == nil {
			return parsed
		}
		return text
	case floatRe.MatchString(text):
		if parsed, err := strconv.ParseFloat(text, 64); err == nil {
			return parsed
		}
		return text
	default:
		return text
	}
}
