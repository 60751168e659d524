package parser

import (
	"slipinterp/internal/lexer"
	"slipinterp/internal/logging"
	"slipinterp/internal/value"
)

type parser struct {
	toks []lexer.Token
	pos  int
}

func newParser(toks []lexer.Token) *parser {
	return &parser{toks: toks}
}

func (p *parser) cur() lexer.Token  { return p.toks[p.pos] }
func (p *parser) atEnd() bool       { return p.cur().Kind == lexer.EOF }
func (p *parser) save() int         { return p.pos }
func (p *parser) restore(mark int)  { p.pos = mark }

func (p *parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) skipNewlines() {
	for p.cur().Kind == lexer.Newline {
		p.advance()
	}
}

func (p *parser) errAt(t lexer.Token, msg string) error {
	logging.ParserDebug("syntax error at %d:%d: %s (token %q)", t.Line, t.Col, msg, t.Text)
	return &SyntaxError{Message: msg, Span: Span{Line: t.Line, Col: t.Col}}
}

// parseProgram parses a whole source file: a sequence of expressions
// separated by newlines.
func (p *parser) parseProgram() ([]value.Expr, error) {
	var exprs []value.Expr
	p.skipNewlines()
	for !p.atEnd() {
		e, err := p.parseExpr(closeNone)
		if err != nil {
			return nil, err
		}
		if len(e) > 0 {
			exprs = append(exprs, e)
		}
		p.skipNewlines()
	}
	return exprs, nil
}

// closeKind tells parseExpr/parseBlock which token(s) terminate the
// current expression besides Newline/EOF.
type closeKind int

const (
	closeNone closeKind = iota
	closeBracket
	closeParen
	closeBrace
)

func (p *parser) isCloser(k closeKind) bool {
	switch k {
	case closeBracket:
		return p.cur().Kind == lexer.RBracket
	case closeParen:
		return p.cur().Kind == lexer.RParen
	case closeBrace:
		return p.cur().Kind == lexer.RBrace
	}
	return false
}

// parseExpr parses one expression: a sequence of terms up to a
// Newline, EOF, comma, or the active closer.
func (p *parser) parseExpr(closer closeKind) (value.Expr, error) {
	var terms value.Expr
	for {
		k := p.cur().Kind
		if k == lexer.EOF || k == lexer.Newline || k == lexer.Comma || p.isCloser(closer) {
			break
		}
		t, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, nil
}

// parseBlockExprs parses expressions separated by newlines or commas
// until the active closer token, NOT consuming the closer.
func (p *parser) parseBlockExprs(closer closeKind) ([]value.Expr, error) {
	var exprs []value.Expr
	p.skipNewlines()
	for !p.atEnd() && !p.isCloser(closer) {
		e, err := p.parseExpr(closer)
		if err != nil {
			return nil, err
		}
		if len(e) > 0 {
			exprs = append(exprs, e)
		}
		for p.cur().Kind == lexer.Newline || p.cur().Kind == lexer.Comma {
			p.advance()
			p.skipNewlines()
		}
	}
	return exprs, nil
}

var symbolToBuiltin = map[string]string{
	"+": "add", "-": "sub", "*": "mul", "/": "div",
	"=": "eq", "==": "eq", "!=": "neq",
	"<": "lt", "<=": "lte", ">": "gt", ">=": "gte",
	"and": "logical-and", "or": "logical-or",
}

func builtinGetPath(name string) value.GetPath {
	return value.GetPath{PathSpec: value.PathSpec{Segments: []value.Segment{{Kind: value.SegName, Name: name}}}}
}

// bytesElemNames are the element-type tags a `u8#[...]`..`b1#[...]`
// byte-stream literal may be prefixed with (§4.1).
var bytesElemNames = map[string]bool{
	"u8": true, "u16": true, "u32": true, "u64": true,
	"i8": true, "i16": true, "i32": true, "i64": true,
	"f32": true, "f64": true, "b1": true,
}

// parseBytesLit parses `<elem>#[ expr, ... ]` into a get-path wrapping
// an eagerly-evaluated group that calls the matching `bytes-<elem>`
// builtin over the element list — reusing the Group construct (rather
// than inventing a dedicated AST node) so the element expressions are
// evaluated, and the bytes serialized, at the point the literal is
// reached (§4.1's "evaluate each expression and serialize").
func (p *parser) parseBytesLit() (value.Value, error) {
	elem := p.advance().Text
	listTerm, err := p.parseListLit()
	if err != nil {
		return nil, err
	}
	call := value.Expr{builtinGetPath("bytes-" + elem), listTerm}
	group := value.Code{Exprs: []value.Expr{call}}
	return value.GetPath{PathSpec: value.PathSpec{Segments: []value.Segment{{Kind: value.SegGroup, Group: group}}}}, nil
}

// parseTerm parses a single term: a literal, a path, a piped-alias,
// a list/dict/config literal, or a parenthesized group.
func (p *parser) parseTerm() (value.Value, error) {
	t := p.cur()

	if t.Kind == lexer.Name && bytesElemNames[t.Text] && p.pos+1 < len(p.toks) {
		nxt := p.toks[p.pos+1]
		if nxt.Kind == lexer.HashBracket && !nxt.SpaceBefore {
			return p.parseBytesLit()
		}
	}

	switch t.Kind {
	case lexer.Int:
		p.advance()
		return value.Int(t.IntVal), nil
	case lexer.Float:
		p.advance()
		return value.Float(t.FltVal), nil
	case lexer.String:
		p.advance()
		return value.Str{Text: t.Text, Interp: false}, nil
	case lexer.IString:
		p.advance()
		return value.Str{Text: t.Text, Interp: true}, nil
	case lexer.Symbol:
		p.advance()
		name, ok := symbolToBuiltin[t.Text]
		if !ok {
			return nil, p.errAt(t, "unknown operator symbol "+t.Text)
		}
		return value.PipedPath{Target: builtinGetPath(name)}, nil
	case lexer.Pipe:
		p.advance()
		if p.cur().Kind != lexer.Name {
			return nil, p.errAt(p.cur(), "expected name after '|'")
		}
		name := p.advance().Text
		return value.PipedPath{Target: builtinGetPath(name)}, nil
	case lexer.HashBracket:
		return p.parseListLit()
	case lexer.HashBrace:
		return p.parseDictLit()
	case lexer.LBrace:
		return p.parseSigLit()
	case lexer.LBracket:
		return p.parseCodeLit()
	case lexer.Tilde, lexer.Slash, lexer.ParentOp, lexer.Name, lexer.LParen:
		return p.parsePathOrGroup()
	default:
		return nil, p.errAt(t, "unexpected token "+t.Text)
	}
}

// parseCodeLit parses `[ expr (nl|,) expr ... ]` into a value.Code.
func (p *parser) parseCodeLit() (value.Value, error) {
	p.advance() // '['
	exprs, err := p.parseBlockExprs(closeBracket)
	if err != nil {
		return nil, err
	}
	if p.cur().Kind != lexer.RBracket {
		return nil, p.errAt(p.cur(), "expected ']'")
	}
	p.advance()
	return value.Code{Exprs: exprs}, nil
}

// parseListLit parses `#[ elem, elem ... ]`. Each element is itself an
// expression; elements are stored as single-expression value.Code so
// the evaluator can evaluate each at the moment the literal list is
// produced (§4.3 list/dict literal evaluation). An element shaped like
// `(splice X)` is still stored this way — term.go recognizes the shape
// at evaluation time and flattens X's items into the surrounding list
// instead of treating it as one ordinary element (§4.9).
func (p *parser) parseListLit() (value.Value, error) {
	p.advance() // '#['
	exprs, err := p.parseBlockExprs(closeBracket)
	if err != nil {
		return nil, err
	}
	if p.cur().Kind != lexer.RBracket {
		return nil, p.errAt(p.cur(), "expected ']'")
	}
	p.advance()

	items := make([]value.Value, len(exprs))
	for i, e := range exprs {
		items[i] = value.Code{Exprs: []value.Expr{e}}
	}
	return value.NewList(items), nil
}

// parseDictLit parses `#{ name: expr, ... }`.
func (p *parser) parseDictLit() (value.Value, error) {
	p.advance() // '#{'
	d, err := p.parseDictBody(closeBrace)
	if err != nil {
		return nil, err
	}
	if p.cur().Kind != lexer.RBrace {
		return nil, p.errAt(p.cur(), "expected '}'")
	}
	p.advance()
	return d, nil
}

// parseConfigDict parses `#( name: expr, ... )`.
func (p *parser) parseConfigDict() (*value.Dict, error) {
	p.advance() // '#('
	d, err := p.parseDictBody(closeParen)
	if err != nil {
		return nil, err
	}
	if p.cur().Kind != lexer.RParen {
		return nil, p.errAt(p.cur(), "expected ')'")
	}
	p.advance()
	return d, nil
}

func (p *parser) parseDictBody(closer closeKind) (*value.Dict, error) {
	d := value.NewDict()
	p.skipNewlines()
	for !p.atEnd() && !p.isCloser(closer) {
		if p.cur().Kind != lexer.Name && p.cur().Kind != lexer.String {
			return nil, p.errAt(p.cur(), "expected key name")
		}
		key := p.advance().Text
		if p.cur().Kind != lexer.Colon {
			return nil, p.errAt(p.cur(), "expected ':' after key "+key)
		}
		p.advance()
		e, err := p.parseExpr(closer)
		if err != nil {
			return nil, err
		}
		d.Set(key, value.Code{Exprs: []value.Expr{e}})
		for p.cur().Kind == lexer.Newline || p.cur().Kind == lexer.Comma {
			p.advance()
			p.skipNewlines()
		}
	}
	return d, nil
}

// parseSigLit parses a brace block used both as a `fn {...}` signature
// and as an `|example {...}` literal — same shape, different
// downstream interpretation (§4.6, §4.8): `{ name (: annotation-or-
// value)?, ..., rest..., -> return }`.
func (p *parser) parseSigLit() (value.Value, error) {
	p.advance() // '{'
	sig := value.Sig{}
	p.skipNewlines()

	for p.cur().Kind != lexer.RBrace && !p.atEnd() {
		if p.cur().Kind == lexer.Ellipsis {
			return nil, p.errAt(p.cur(), "'...' must follow a parameter name")
		}
		if p.cur().Kind != lexer.Name {
			return nil, p.errAt(p.cur(), "expected parameter name")
		}
		name := p.advance().Text

		if p.cur().Kind == lexer.Ellipsis {
			p.advance()
			sig.Rest = name
			sig.HasRest = true
		} else if p.cur().Kind == lexer.Colon {
			p.advance()
			annots, err := p.parseAnnotations()
			if err != nil {
				return nil, err
			}
			sig.Positional = append(sig.Positional, value.Param{Name: name, Typed: true, Annotations: annots})
		} else {
			sig.Positional = append(sig.Positional, value.Param{Name: name, Typed: false})
		}

		for p.cur().Kind == lexer.Comma || p.cur().Kind == lexer.Newline {
			p.advance()
		}
	}

	if p.cur().Kind != lexer.RBrace {
		return nil, p.errAt(p.cur(), "expected '}'")
	}
	p.advance()

	if p.cur().Kind == lexer.Arrow {
		p.advance()
		e, err := p.parseExpr(closeNone)
		if err != nil {
			return nil, err
		}
		sig.Return = value.Code{Exprs: []value.Expr{e}}
		sig.HasReturn = true
	}

	return sig, nil
}

// parseAnnotations parses either a single GetPath/literal term or a
// `{A, B}` union of alternatives, returning one Code per alternative.
func (p *parser) parseAnnotations() ([]value.Code, error) {
	if p.cur().Kind == lexer.LBrace {
		p.advance()
		var alts []value.Code
		for p.cur().Kind != lexer.RBrace && !p.atEnd() {
			term, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			alts = append(alts, value.Code{Exprs: []value.Expr{{term}}})
			for p.cur().Kind == lexer.Comma {
				p.advance()
			}
		}
		if p.cur().Kind != lexer.RBrace {
			return nil, p.errAt(p.cur(), "expected '}' closing union annotation")
		}
		p.advance()
		return alts, nil
	}

	// Single annotation/value: parse one term (covers bare names like
	// `Player`/`int` and literal example values like `2`/`"x"`).
	term, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	return []value.Code{{Exprs: []value.Expr{{term}}}}, nil
}

// parsePathOrGroup parses a Path (Get/Set/Del/Post/MultiSet) or a bare
// parenthesized group expression.
func (p *parser) parsePathOrGroup() (value.Value, error) {
	isDel := false
	if p.cur().Kind == lexer.Tilde {
		isDel = true
		p.advance()
	}

	// Speculative MultiSetPath: `(a, b): value`.
	if !isDel && p.cur().Kind == lexer.LParen {
		if ms, ok, err := p.tryParseMultiSet(); err != nil {
			return nil, err
		} else if ok {
			return ms, nil
		}
	}

	var segs []value.Segment

	if p.cur().Kind == lexer.Slash {
		p.advance()
		segs = append(segs, value.Segment{Kind: value.SegRoot})
	}
	for p.cur().Kind == lexer.ParentOp {
		p.advance()
		segs = append(segs, value.Segment{Kind: value.SegParent})
	}

	first := true
	for {
		switch p.cur().Kind {
		case lexer.Name:
			name := p.advance().Text
			segs = append(segs, value.Segment{Kind: value.SegName, Name: name})
		case lexer.LParen:
			grp, err := p.parseGroupSegment()
			if err != nil {
				return nil, err
			}
			segs = append(segs, grp)
		default:
			if first && len(segs) == 0 {
				return nil, p.errAt(p.cur(), "expected path segment")
			}
		}
		first = false

		if p.cur().Kind == lexer.Dot {
			p.advance()
			continue
		}
		if p.cur().Kind == lexer.LBracket && !p.cur().SpaceBefore {
			q, err := p.parseQuerySegment()
			if err != nil {
				return nil, err
			}
			segs = append(segs, value.Segment{Kind: value.SegQuery, Query: q})
			continue
		}
		if p.cur().Kind == lexer.LParen && !p.cur().SpaceBefore {
			grp, err := p.parseGroupSegment()
			if err != nil {
				return nil, err
			}
			segs = append(segs, grp)
			continue
		}
		break
	}

	var cfg *value.Dict
	if p.cur().Kind == lexer.HashParen && !p.cur().SpaceBefore {
		d, err := p.parseConfigDict()
		if err != nil {
			return nil, err
		}
		cfg = d
	}

	spec := value.PathSpec{Segments: segs, Config: cfg}

	switch {
	case isDel:
		return value.DelPath{PathSpec: spec}, nil
	case p.cur().Kind == lexer.Colon && !p.cur().SpaceBefore:
		p.advance()
		return value.SetPath{PathSpec: spec}, nil
	case p.cur().Kind == lexer.Bang && !p.cur().SpaceBefore:
		p.advance()
		return value.PostPath{PathSpec: spec}, nil
	default:
		return value.GetPath{PathSpec: spec}, nil
	}
}

// parseGroupSegment parses `(expr)` as a SegGroup segment.
func (p *parser) parseGroupSegment() (value.Segment, error) {
	p.advance() // '('
	e, err := p.parseExpr(closeParen)
	if err != nil {
		return value.Segment{}, err
	}
	if p.cur().Kind != lexer.RParen {
		return value.Segment{}, p.errAt(p.cur(), "expected ')'")
	}
	p.advance()
	return value.Segment{Kind: value.SegGroup, Group: value.Code{Exprs: []value.Expr{e}}}, nil
}

// parseQuerySegment parses one `[...]` query bracket: slice > filter >
// simple, in that precedence (§4.1).
func (p *parser) parseQuerySegment() (*value.QueryNode, error) {
	p.advance() // '['

	if isFilterOpStart(p.cur()) {
		op := p.advance().Text
		rhsExpr, err := p.parseExpr(closeBracket)
		if err != nil {
			return nil, err
		}
		if p.cur().Kind != lexer.RBracket {
			return nil, p.errAt(p.cur(), "expected ']'")
		}
		p.advance()
		return &value.QueryNode{Kind: value.QueryFilter, Op: op, RHS: value.Code{Exprs: []value.Expr{rhsExpr}}}, nil
	}

	mark := p.save()
	first, hasFirst, err := p.parseOptionalExpr(closeBracket)
	if err != nil {
		return nil, err
	}

	if p.cur().Kind == lexer.Colon {
		p.advance()
		second, hasSecond, err := p.parseOptionalExpr(closeBracket)
		if err != nil {
			return nil, err
		}
		if p.cur().Kind != lexer.RBracket {
			return nil, p.errAt(p.cur(), "expected ']'")
		}
		p.advance()
		node := &value.QueryNode{Kind: value.QuerySlice}
		if hasFirst {
			node.Start = value.Code{Exprs: []value.Expr{first}}
		}
		if hasSecond {
			node.End = value.Code{Exprs: []value.Expr{second}}
		}
		return node, nil
	}

	if !hasFirst {
		p.restore(mark)
		return nil, p.errAt(p.cur(), "empty query segment")
	}
	if p.cur().Kind != lexer.RBracket {
		return nil, p.errAt(p.cur(), "expected ']'")
	}
	p.advance()
	return &value.QueryNode{Kind: value.QuerySimple, Index: value.Code{Exprs: []value.Expr{first}}}, nil
}

func (p *parser) parseOptionalExpr(closer closeKind) (value.Expr, bool, error) {
	if p.cur().Kind == lexer.Colon || p.isCloser(closer) {
		return nil, false, nil
	}
	e, err := p.parseExpr(closer)
	if err != nil {
		return nil, false, err
	}
	return e, len(e) > 0, nil
}

func isFilterOpStart(t lexer.Token) bool {
	if t.Kind != lexer.Symbol {
		return false
	}
	switch t.Text {
	case "=", "==", "!=", "<", "<=", ">", ">=", "and", "or":
		return true
	}
	return false
}

// tryParseMultiSet speculatively parses `(name, name, ...):` as a
// MultiSetPath, restoring parser position and reporting ok=false if
// the shape doesn't match (falling back to ordinary group parsing).
func (p *parser) tryParseMultiSet() (value.Value, bool, error) {
	mark := p.save()
	p.advance() // '('

	var names []string
	for p.cur().Kind == lexer.Name {
		names = append(names, p.advance().Text)
		if p.cur().Kind == lexer.Comma {
			p.advance()
			continue
		}
		break
	}

	if len(names) < 2 || p.cur().Kind != lexer.RParen {
		p.restore(mark)
		return nil, false, nil
	}
	p.advance() // ')'

	if p.cur().Kind != lexer.Colon || p.cur().SpaceBefore {
		p.restore(mark)
		return nil, false, nil
	}
	p.advance() // ':'

	targets := make([]value.SetPath, len(names))
	for i, n := range names {
		targets[i] = value.SetPath{PathSpec: value.PathSpec{
			Segments: []value.Segment{{Kind: value.SegName, Name: n}},
		}}
	}
	return value.MultiSetPath{Targets: targets}, true, nil
}
