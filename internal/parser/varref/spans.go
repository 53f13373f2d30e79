package varref

import "strings"

// Span locates one var() expression inside a larger value
type Span struct {
	Start int // index of the "v" in var(
	End   int // index just past the closing parenthesis
}

// FindAll returns the outermost var() expressions embedded in value, in order.
// Expressions nested inside another var() are part of the outer span.
// Unbalanced expressions are skipped.
func FindAll(value string) []Span {
	var spans []Span
	lower := strings.ToLower(value)

	for i := 0; i < len(value); {
		idx := strings.Index(lower[i:], functionName)
		if idx < 0 {
			break
		}
		start := i + idx

		// Skip identifiers that merely end in "var", e.g. myvar(
		if start > 0 && isIdentByte(value[start-1]) {
			i = start + len(functionName)
			continue
		}

		_, closing, reason := scanArguments(value[start:])
		if reason != "" {
			i = start + len(functionName)
			continue
		}

		end := start + closing + 1
		spans = append(spans, Span{Start: start, End: end})
		i = end
	}

	return spans
}

// Names returns every custom property name referenced anywhere in value,
// including names that only appear in fallbacks, in order of appearance
func Names(value string) []string {
	var names []string
	for _, span := range FindAll(value) {
		names = appendNames(names, value[span.Start:span.End])
	}
	return names
}

func appendNames(names []string, expr string) []string {
	ref := Parse(expr)
	if ref == nil {
		return names
	}
	names = append(names, ref.Name)
	if ref.Fallback != nil {
		for _, span := range FindAll(*ref.Fallback) {
			names = appendNames(names, (*ref.Fallback)[span.Start:span.End])
		}
	}
	return names
}

func isIdentByte(c byte) bool {
	return c == '-' || c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// Contains reports whether value embeds at least one well-formed var()
// expression
func Contains(value string) bool {
	return len(FindAll(value)) > 0
}
