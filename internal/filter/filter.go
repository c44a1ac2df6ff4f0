// Package filter evaluates expr-lang expressions against fetched items. Items
// are exposed to an expression by their JSON field names, so
// `status == "pending" && total > 100` works on an Order. The helpers
// hasText, hasPrefix and hasSuffix match case-insensitively; the built-in
// contains, startsWith and endsWith operators do not.
package filter

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// CompilationError indicates a filter expression could not be compiled.
type CompilationError struct {
	Expression string
	Reason     string
	Err        error
}

func (e *CompilationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("compilation error in '%s': %s: %v", e.Expression, e.Reason, e.Err)
	}

	return fmt.Sprintf("compilation error in '%s': %s", e.Expression, e.Reason)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

// EvaluationError indicates a filter could not be evaluated against an item.
type EvaluationError struct {
	Expression string
	Reason     string
	Err        error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation error for '%s': %s: %v", e.Expression, e.Reason, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// Filter is a compiled boolean expression. It is safe for concurrent use.
type Filter struct {
	expression string
	program    *vm.Program
}

// Compile compiles expression. Unknown identifiers are allowed and evaluate
// to nil, since item fields are only known at run time.
func Compile(expression string) (*Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{Expression: expression, Reason: "empty expression"}
	}

	program, err := expr.Compile(expression,
		expr.Env(helperFunctions()),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	return &Filter{expression: expression, program: program}, nil
}

// Expression returns the original expression.
func (f *Filter) Expression() string {
	return f.expression
}

// Match evaluates the filter against item.
func (f *Filter) Match(item any) (bool, error) {
	env, err := environment(item)
	if err != nil {
		return false, &EvaluationError{Expression: f.expression, Reason: "item is not an object", Err: err}
	}

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false, &EvaluationError{Expression: f.expression, Reason: "run failed", Err: err}
	}

	matched, _ := result.(bool)

	return matched, nil
}

// Apply returns the items the filter matches, in order.
func Apply[T any](f *Filter, items []T) ([]T, error) {
	matched := make([]T, 0, len(items))

	for _, item := range items {
		ok, err := f.Match(item)
		if err != nil {
			return nil, err
		}

		if ok {
			matched = append(matched, item)
		}
	}

	return matched, nil
}

func environment(item any) (map[string]any, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("encoding item: %w", err)
	}

	env := helperFunctions()

	var fields map[string]any

	err = json.Unmarshal(data, &fields)
	if err != nil {
		return nil, fmt.Errorf("decoding item: %w", err)
	}

	for key, value := range fields {
		env[key] = value
	}

	return env, nil
}

func helperFunctions() map[string]any {
	return map[string]any{
		"hasText": func(str, substr string) bool {
			return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
		},
		"hasPrefix": func(str, prefix string) bool {
			return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
		},
		"hasSuffix": func(str, suffix string) bool {
			return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
		},
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
		"daysSince": func(timestamp string) int {
			t, err := time.Parse(time.RFC3339, timestamp)
			if err != nil {
				return -1
			}

			return int(time.Since(t).Hours() / 24)
		},
		"before": func(timestamp, date string) bool {
			return compareDate(timestamp, date) < 0
		},
		"after": func(timestamp, date string) bool {
			return compareDate(timestamp, date) > 0
		},
	}
}

// compareDate compares an RFC 3339 timestamp with a YYYY-MM-DD date. Values
// that do not parse compare equal.
func compareDate(timestamp, date string) int {
	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return 0
	}

	d, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return 0
	}

	return t.Compare(d)
}
