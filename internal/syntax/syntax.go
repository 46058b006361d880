// Package syntax performs best-effort lexical validation of proposed file
// content. It is deliberately not a parser: script-like languages get a
// bracket/quote/comment-aware scan, structured data gets a strict parse,
// and everything else is skipped explicitly rather than judged wrongly.
package syntax

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kavrelis/preflight/internal/check"
)

var scriptLike = map[string]bool{
	"javascript": true,
	"typescript": true,
	"js":         true,
	"ts":         true,
	"jsx":        true,
	"tsx":        true,
}

// Check validates code in the declared language. path is used in messages
// only and may be empty.
func Check(code, language, path string) check.Result {
	if path == "" {
		path = "content"
	}
	lang := strings.ToLower(strings.TrimSpace(language))
	switch {
	case scriptLike[lang]:
		return checkScript(code, path)
	case lang == "json":
		return checkJSON(code, path)
	default:
		return check.Pass(check.KindSyntaxValidity,
			fmt.Sprintf("syntax scan skipped for %s: language %q is not scanned", path, language))
	}
}

func checkScript(code, path string) check.Result {
	diags := Scan(code)
	if len(diags) == 0 {
		return check.Pass(check.KindSyntaxValidity, fmt.Sprintf("%s passed lexical scan", path))
	}
	msg := fmt.Sprintf("%s failed lexical scan: %s (line %d, col %d)",
		path, diags[0].Message, diags[0].Line, diags[0].Column)
	if len(diags) > 1 {
		msg += fmt.Sprintf(" and %d more", len(diags)-1)
	}
	return check.Block(check.KindSyntaxValidity, msg).
		WithDetails(&check.Details{Diagnostics: diags})
}

func checkJSON(code, path string) check.Result {
	var v any
	err := json.Unmarshal([]byte(code), &v)
	if err == nil {
		return check.Pass(check.KindSyntaxValidity, fmt.Sprintf("%s is valid JSON", path))
	}

	line, col := 1, 1
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col = offsetPosition(code, syntaxErr.Offset)
	}
	diag := check.Diagnostic{Line: line, Column: col, Message: err.Error()}
	return check.Block(check.KindSyntaxValidity,
		fmt.Sprintf("%s is not valid JSON: %s (line %d, col %d)", path, err.Error(), line, col)).
		WithDetails(&check.Details{Diagnostics: []check.Diagnostic{diag}})
}

// offsetPosition converts a byte offset from the JSON decoder into a
// 1-based line and column by counting newlines before the offending byte.
func offsetPosition(code string, offset int64) (int, int) {
	idx := int(offset) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > len(code) {
		idx = len(code)
	}
	line := 1 + strings.Count(code[:idx], "\n")
	lastNL := strings.LastIndexByte(code[:idx], '\n')
	return line, idx - lastNL
}
