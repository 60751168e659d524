// Package parser turns SLIP source text into a raw tree, per the
// two-stage parser -> typed-AST pipeline (§4.1). The core depends only
// on the Grammar interface; defaultGrammar is the one concrete,
// hand-written lexer + recursive-descent implementation shipped with
// the module — a host may supply its own Grammar (e.g. backed by a
// Koine-compatible runtime) without touching the rest of the core.
package parser

import (
	"fmt"

	"slipinterp/internal/lexer"
	"slipinterp/internal/value"
)

// Span is a source location, carried by SyntaxError.
type Span struct {
	Line int
	Col  int
}

// RawNode is the raw tagged tree node the Grammar interface produces.
// defaultGrammar's implementation is parsed directly into typed
// value.Code — collapsing most of the raw-tree/typed-AST distinction
// into one pass, since this grammar is invented for SLIP rather than
// translated from an external Koine file (§1 names the concrete
// grammar as an out-of-scope external collaborator). Transformer still
// performs a real second pass: validating sig rules and path-segment
// placement that the grammar alone does not enforce (§4.2).
type RawNode struct {
	Code value.Code
	Span Span
}

// Grammar produces a raw tree from source text.
type Grammar interface {
	Parse(source string) (*RawNode, error)
}

// SyntaxError is raised for any parse failure, tagged for the host
// with a 400-class status (§4.1, §6).
type SyntaxError struct {
	Message string
	Span    Span
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: syntax error: %s", e.Span.Line, e.Span.Col, e.Message)
}

func (e *SyntaxError) Status() int { return 400 }

// defaultGrammar is the module's shipped Grammar implementation.
type defaultGrammar struct{}

// NewDefaultGrammar returns the shipped Grammar implementation.
func NewDefaultGrammar() Grammar { return defaultGrammar{} }

func (defaultGrammar) Parse(source string) (*RawNode, error) {
	toks, err := lexer.Tokenize(source)
	if err != nil {
		if le, ok := err.(*lexer.Error); ok {
			return nil, &SyntaxError{Message: le.Message, Span: Span{Line: le.Line, Col: le.Col}}
		}
		return nil, &SyntaxError{Message: err.Error()}
	}

	p := newParser(toks)
	exprs, err := p.parseProgram()
	if err != nil {
		return nil, err
	}
	return &RawNode{Code: value.Code{Exprs: exprs}}, nil
}
