package syntax

import (
	"fmt"
	"strings"

	"github.com/kavrelis/preflight/internal/check"
)

type opener struct {
	char rune
	line int
	col  int
}

// Scan runs the lexical checks for script-like sources: the bracket-balance
// scan with string and comment masking, then per-line quote parity. All
// findings are returned, not just the first.
func Scan(code string) []check.Diagnostic {
	diags := scanBrackets(code)
	for i, line := range strings.Split(code, "\n") {
		diags = append(diags, scanLineQuotes(line, i+1)...)
	}
	return diags
}

// scanBrackets walks the source one character at a time keeping a stack of
// open brackets. Three mutually exclusive modes mask bracket characters:
// inside a string (the opening quote character is remembered, backslash
// escapes within), inside a line comment (reset at each newline), and
// inside a block comment (persists across lines).
func scanBrackets(code string) []check.Diagnostic {
	var diags []check.Diagnostic
	var stack []opener

	var (
		inString       bool
		quote          rune
		escaped        bool
		inLineComment  bool
		inBlockComment bool
	)

	runes := []rune(code)
	line, col := 1, 0
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c == '\n' {
			line++
			col = 0
			inLineComment = false
			escaped = false
			continue
		}
		col++

		switch {
		case inLineComment:
			// masked until end of line
		case inBlockComment:
			if c == '*' && i+1 < len(runes) && runes[i+1] == '/' {
				inBlockComment = false
				i++
				col++
			}
		case inString:
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				inString = false
			}
		default:
			switch c {
			case '\'', '"', '`':
				inString = true
				quote = c
			case '/':
				if i+1 < len(runes) {
					switch runes[i+1] {
					case '/':
						inLineComment = true
					case '*':
						inBlockComment = true
						i++
						col++
					}
				}
			case '(', '[', '{':
				stack = append(stack, opener{char: c, line: line, col: col})
			case ')', ']', '}':
				stack, diags = closeBracket(stack, diags, c, line, col)
			}
		}
	}

	for _, o := range stack {
		diags = append(diags, check.Diagnostic{
			Line:    o.line,
			Column:  o.col,
			Message: fmt.Sprintf("unclosed bracket %q", o.char),
		})
	}
	return diags
}

// closeBracket resolves a closing bracket against the opener stack. The
// nearest matching opener wins; openers stacked above it were never closed
// and are reported at their own recorded positions. A closer with no
// matching opener anywhere in the stack is reported at the closer's
// position.
func closeBracket(stack []opener, diags []check.Diagnostic, c rune, line, col int) ([]opener, []check.Diagnostic) {
	want := matchingOpener(c)
	match := -1
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].char == want {
			match = i
			break
		}
	}
	if match == -1 {
		diags = append(diags, check.Diagnostic{
			Line:    line,
			Column:  col,
			Message: fmt.Sprintf("unmatched closing bracket %q", c),
		})
		return stack, diags
	}
	for i := match + 1; i < len(stack); i++ {
		o := stack[i]
		diags = append(diags, check.Diagnostic{
			Line:    o.line,
			Column:  o.col,
			Message: fmt.Sprintf("unclosed bracket %q", o.char),
		})
	}
	return stack[:match], diags
}

func matchingOpener(closer rune) rune {
	switch closer {
	case ')':
		return '('
	case ']':
		return '['
	case '}':
		return '{'
	}
	return 0
}

// scanLineQuotes counts unescaped occurrences of each quote character on
// one physical line. An odd count is a likely unterminated string; the
// diagnostic points at the last occurrence.
func scanLineQuotes(line string, lineNo int) []check.Diagnostic {
	var diags []check.Diagnostic
	for _, q := range []rune{'\'', '"', '`'} {
		count, last := 0, 0
		escaped := false
		col := 0
		for _, c := range line {
			col++
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == q:
				count++
				last = col
			}
		}
		if count%2 == 1 {
			msg := "possible unclosed string"
			if q == '`' {
				msg = "possible unclosed template literal"
			}
			diags = append(diags, check.Diagnostic{Line: lineNo, Column: last, Message: msg})
		}
	}
	return diags
}
