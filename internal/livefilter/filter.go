// Package livefilter evaluates optional per-subscriber CEL expressions over
// broadcast payloads.
//
// Variables available to an expression:
//
//	json    decoded payload (map/list/values), null if not JSON
//	text    payload as a string
//	size    payload length in bytes
//	now_ms  current time in Unix milliseconds
package livefilter

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/cel-go/cel"
)

// Filter wraps a compiled CEL program. The zero value matches everything.
type Filter struct {
	prog cel.Program
	expr string
}

// Compile parses and type-checks expr. A blank expr yields a match-all filter.
func Compile(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Filter{}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("json", cel.DynType),
		cel.Variable("text", cel.StringType),
		cel.Variable("size", cel.IntType),
		cel.Variable("now_ms", cel.IntType),
	)
	if err != nil {
		return Filter{}, err
	}
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return Filter{}, fmt.Errorf("filter: %w", iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) && !ast.OutputType().IsExactType(cel.DynType) {
		return Filter{}, fmt.Errorf("filter: expression must be boolean, got %s", ast.OutputType())
	}
	prog, err := env.Program(ast)
	if err != nil {
		return Filter{}, err
	}
	return Filter{prog: prog, expr: expr}, nil
}

// Enabled reports whether the filter has an expression.
func (f Filter) Enabled() bool { return f.prog != nil }

func (f Filter) String() string { return f.expr }

// Match evaluates the expression against payload. Evaluation errors and
// non-boolean results count as no match.
func (f Filter) Match(payload []byte) bool {
	if f.prog == nil {
		return true
	}
	var obj any
	_ = json.Unmarshal(payload, &obj)
	out, _, err := f.prog.Eval(map[string]any{
		"json":   obj,
		"text":   string(payload),
		"size":   int64(len(payload)),
		"now_ms": time.Now().UnixMilli(),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
