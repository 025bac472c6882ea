package completion

import (
	"regexp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

var (
	// fieldRe matches a header field being filled in, e.g. "attribute: 一".
	fieldRe = regexp.MustCompile(`^\s*([\p{L}\p{N}_]+)\s*:\s*([\p{L}\p{N}_]*)$`)

	// conditionRe matches the condition of a control statement.
	conditionRe = regexp.MustCompile(`^(if|elif|while)\s+(.*)$`)
)

// fold maps fullwidth ASCII (as typed with a Japanese IME) to its halfwidth
// form, so that "ａｔｔｒｉｂｕｔｅ：" reads as "attribute:".
func fold(s string) string {
	return width.Fold.String(s)
}

// splitIndent splits a line prefix into its leading whitespace and the rest.
func splitIndent(prefix string) (indent, rest string) {
	rest = strings.TrimLeftFunc(prefix, unicode.IsSpace)
	return prefix[:len(prefix)-len(rest)], rest
}

// isWord reports whether s is empty or consists only of identifier
// characters.
func isWord(s string) bool {
	for _, r := range s {
		if !isIdentRune(r) {
			return false
		}
	}
	return true
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// fieldValue returns the key of a "key: value" header line and reports
// whether the cursor is on its value.
func fieldValue(prefix string) (key string, ok bool) {
	m := fieldRe.FindStringSubmatch(fold(prefix))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// callFrame is an open call in a line prefix.
type callFrame struct {
	name     string
	argIndex int
	argStart int
}

// enclosingCall finds the innermost unclosed call "name(" in prefix and the
// zero-based index of the argument the cursor is in. Parentheses and commas
// inside "..." or 「...」 strings are ignored. It reports false when the
// cursor is inside a string or outside any call.
func enclosingCall(prefix string) (name string, argIndex int, arg string, ok bool) {
	var (
		stack       []callFrame
		inQuote     bool
		bracketDeep int
	)
	for i, r := range prefix {
		switch {
		case inQuote:
			if r == '"' {
				inQuote = false
			}
		case bracketDeep > 0:
			switch r {
			case '「':
				bracketDeep++
			case '」':
				bracketDeep--
			}
		case r == '"':
			inQuote = true
		case r == '「':
			bracketDeep++
		case r == '(':
			stack = append(stack, callFrame{
				name:     identBefore(prefix[:i]),
				argStart: i + 1,
			})
		case r == ',':
			if len(stack) > 0 {
				top := &stack[len(stack)-1]
				top.argIndex++
				top.argStart = i + 1
			}
		case r == ')':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	if inQuote || bracketDeep > 0 || len(stack) == 0 {
		return "", 0, "", false
	}
	top := stack[len(stack)-1]
	if top.name == "" {
		return "", 0, "", false
	}
	return top.name, top.argIndex, strings.TrimSpace(prefix[top.argStart:]), true
}

// identBefore returns the identifier that ends at the end of s.
func identBefore(s string) string {
	runes := []rune(s)
	i := len(runes)
	for i > 0 && isIdentRune(runes[i-1]) {
		i--
	}
	return string(runes[i:])
}

// conditionReady reports whether the prefix is a condition line whose last
// token is an operand followed by a space, i.e. an operator may come next.
func conditionReady(prefix string, operators []string) bool {
	_, body := splitIndent(fold(prefix))
	m := conditionRe.FindStringSubmatch(body)
	if m == nil {
		return false
	}
	cond := m[2]
	if strings.TrimSpace(cond) == "" || !strings.HasSuffix(cond, " ") {
		return false
	}
	fields := strings.Fields(cond)
	last := fields[len(fields)-1]
	return !slices.Contains(operators, last)
}
