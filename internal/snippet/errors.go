package snippet

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnresolved marks snippet text that still contains {…} after every
// resolution pass.
var ErrUnresolved = errors.New("UnresolvedSnippet")

// ErrEval marks expressions that fail to evaluate or yield no value.
var ErrEval = errors.New("SnippetEvalError")

// EvalError describes a failed function-snippet evaluation.
type EvalError struct {
	Expr   string
	Reason string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("SnippetEvalError: %s in %q", e.Reason, strings.TrimSpace(e.Expr))
}

func (e *EvalError) Unwrap() error { return ErrEval }

func evalErrorf(expr, format string, args ...any) error {
	return &EvalError{Expr: expr, Reason: fmt.Sprintf(format, args...)}
}

// UnresolvedError lists the residual template tokens left in a snippet.
type UnresolvedError struct {
	Snippet   string
	Residuals []string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("UnresolvedSnippet: %s in %q", strings.Join(e.Residuals, ", "), e.Snippet)
}

func (e *UnresolvedError) Unwrap() error { return ErrUnresolved }
