package snippet

import "strings"

// Predicate decides whether a mapping or option applies to a context.
type Predicate func(Context) (bool, error)

// CompilePredicate builds a predicate from a when-clause. A missing clause is
// the constant true; a sequence is the AND of its elements; empty strings are
// discarded.
//
// Each element is either a bare expression ("input.format.duration > 3600")
// or a snippet containing template braces; both reduce to the truthiness of
// their result. A bare expression yielding undefined is simply false, so
// guard-style clauses need no explicit default.
func (r *Resolver) CompilePredicate(when []string) Predicate {
	var elements []string
	for _, element := range when {
		if strings.TrimSpace(element) == "" {
			continue
		}
		elements = append(elements, element)
	}
	if len(elements) == 0 {
		return func(Context) (bool, error) { return true, nil }
	}

	return func(ctx Context) (bool, error) {
		for _, element := range elements {
			ok, err := r.evalPredicateElement(element, ctx)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	}
}

func (r *Resolver) evalPredicateElement(element string, ctx Context) (bool, error) {
	trimmed := strings.TrimSpace(element)

	// A pure function snippet or a bare expression evaluates directly, so a
	// nullish result reads as false instead of raising.
	if strings.HasPrefix(trimmed, "{{") && strings.HasSuffix(trimmed, "}}") && !strings.Contains(trimmed[2:len(trimmed)-2], "{{") {
		value, err := Evaluate(trimmed[2:len(trimmed)-2], ctx)
		if err != nil {
			return false, err
		}
		return Truthy(value), nil
	}
	if !strings.Contains(trimmed, "{") {
		value, err := Evaluate(trimmed, ctx)
		if err != nil {
			return false, err
		}
		return Truthy(value), nil
	}

	value, err := r.Resolve(element, ctx)
	if err != nil {
		return false, err
	}
	return Truthy(value), nil
}
