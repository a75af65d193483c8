// In file: internal/calculator/evaluate.go
package calculator

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
)

// ErrorKind classifies why an expression could not be evaluated.
type ErrorKind string

const (
	KindEmpty             ErrorKind = "empty"
	KindSyntax            ErrorKind = "syntax"
	KindUnknownIdentifier ErrorKind = "unknown_identifier"
	KindDivisionByZero    ErrorKind = "division_by_zero"
	KindDomain            ErrorKind = "domain"
	KindNonNumeric        ErrorKind = "non_numeric"
)

// resultPrecision is the number of significant digits in a formatted result.
// Float noise past it (0.49999999999999994, 12.000000000000002) is rounded away.
const resultPrecision = 15

var errDomain = errors.New("math domain error")

// EvaluationError is returned by Evaluate for any expression it cannot reduce to a number.
type EvaluationError struct {
	Kind ErrorKind
	Expr string
	Err  error
}

func (e *EvaluationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("cannot evaluate %q: %s", e.Expr, e.Kind)
	}
	return fmt.Sprintf("cannot evaluate %q: %v", e.Expr, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// functions are the only callables an expression may use. log takes an optional base.
var functions = map[string]govaluate.ExpressionFunction{
	"sqrt": unary("sqrt", func(x float64) (float64, error) {
		if x < 0 {
			return 0, fmt.Errorf("%w: sqrt of negative number %g", errDomain, x)
		}
		return math.Sqrt(x), nil
	}),
	"sin": unary("sin", func(x float64) (float64, error) { return math.Sin(x), nil }),
	"cos": unary("cos", func(x float64) (float64, error) { return math.Cos(x), nil }),
	"tan": unary("tan", func(x float64) (float64, error) { return math.Tan(x), nil }),
	"log": logarithm,
}

// constants are the named values an expression may reference.
var constants = map[string]interface{}{
	"pi": math.Pi,
}

// Evaluate computes a normalized expression and returns its numeric value as text,
// e.g. "360", "0.5", "2.23606797749979".
func Evaluate(expr string) (string, error) {
	value, err := EvaluateFloat(expr)
	if err != nil {
		return "", err
	}
	return FormatResult(value), nil
}

// EvaluateFloat is Evaluate without the formatting step.
func EvaluateFloat(expr string) (float64, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, &EvaluationError{Kind: KindEmpty, Expr: expr, Err: errors.New("empty expression")}
	}

	parsed, err := govaluate.NewEvaluableExpressionWithFunctions(expr, functions)
	if err != nil {
		return 0, &EvaluationError{Kind: KindSyntax, Expr: expr, Err: err}
	}
	raw, err := parsed.Evaluate(constants)
	if err != nil {
		kind := KindSyntax
		switch {
		case errors.Is(err, errDomain), strings.Contains(err.Error(), errDomain.Error()):
			kind = KindDomain
		case strings.Contains(err.Error(), "No parameter"):
			kind = KindUnknownIdentifier
		}
		return 0, &EvaluationError{Kind: kind, Expr: expr, Err: err}
	}

	value, ok := raw.(float64)
	if !ok {
		return 0, &EvaluationError{Kind: KindNonNumeric, Expr: expr, Err: fmt.Errorf("result %v is not a number", raw)}
	}
	switch {
	case math.IsInf(value, 0):
		return 0, &EvaluationError{Kind: KindDivisionByZero, Expr: expr, Err: errors.New("division by zero")}
	case math.IsNaN(value):
		return 0, &EvaluationError{Kind: KindDomain, Expr: expr, Err: fmt.Errorf("%w: result is undefined", errDomain)}
	}
	return value, nil
}

// FormatResult renders a value with up to 15 significant digits and no trailing zeros.
func FormatResult(value float64) string {
	if value == 0 {
		// Avoid "-0".
		return "0"
	}
	return strconv.FormatFloat(value, 'g', resultPrecision, 64)
}

func unary(name string, fn func(float64) (float64, error)) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%s expects 1 argument, got %d", name, len(args))
		}
		x, err := toFloat(name, args[0])
		if err != nil {
			return nil, err
		}
		return fn(x)
	}
}

func logarithm(args ...interface{}) (interface{}, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, fmt.Errorf("log expects 1 or 2 arguments, got %d", len(args))
	}
	x, err := toFloat("log", args[0])
	if err != nil {
		return nil, err
	}
	if x <= 0 {
		return nil, fmt.Errorf("%w: log of non-positive number %g", errDomain, x)
	}
	if len(args) == 1 {
		return math.Log(x), nil
	}

	base, err := toFloat("log", args[1])
	if err != nil {
		return nil, err
	}
	switch {
	case base == 10:
		return math.Log10(x), nil
	case base == 2:
		return math.Log2(x), nil
	case base <= 0 || base == 1:
		return nil, fmt.Errorf("%w: invalid log base %g", errDomain, base)
	}
	return math.Log(x) / math.Log(base), nil
}

func toFloat(name string, arg interface{}) (float64, error) {
	x, ok := arg.(float64)
	if !ok {
		return 0, fmt.Errorf("%s expects a number, got %T", name, arg)
	}
	return x, nil
}
