package model

import (
	"fmt"
	"strconv"
	"unicode"

	"github.com/pkg/errors"
)

// ContentMatch represents a node type's compiled content expression, and can
// be used to find out whether a sequence of children is valid content for
// that node.
type ContentMatch struct {
	expr *exprType
}

// EmptyContentMatch is the match of an empty content expression: it only
// accepts empty content.
var EmptyContentMatch = &ContentMatch{}

// ParseContentMatch compiles a content expression like "paragraph block*" or
// "(table_cell | table_header)+" against the given node types.
func ParseContentMatch(str string, nodeTypes map[string]*NodeType) (*ContentMatch, error) {
	stream := newTokenStream(str, nodeTypes)
	if stream.next() == nil {
		return EmptyContentMatch, nil
	}
	expr, err := parseExpr(stream)
	if err != nil {
		return nil, err
	}
	if stream.next() != nil {
		return nil, stream.err("Unexpected trailing text")
	}
	return &ContentMatch{expr: expr}, nil
}

// MatchTypes tells whether the given sequence of node types is accepted by
// the expression.
func (cm *ContentMatch) MatchTypes(types []*NodeType) bool {
	if cm.expr == nil {
		return len(types) == 0
	}
	return cm.expr.match(types, 0, func(pos int) bool { return pos == len(types) })
}

// Matches tells whether the children of the fragment are accepted by the
// expression.
func (cm *ContentMatch) Matches(frag *Fragment) bool {
	types := make([]*NodeType, len(frag.Content))
	for i, child := range frag.Content {
		types[i] = child.Type
	}
	return cm.MatchTypes(types)
}

// DefaultType returns the first node type named by the expression that can
// be created without attributes, or nil.
func (cm *ContentMatch) DefaultType() *NodeType {
	if cm.expr == nil {
		return nil
	}
	var found *NodeType
	cm.expr.walk(func(e *exprType) bool {
		if e.Type == "name" && !e.Value.IsText() && e.Value.DefaultAttrs != nil {
			found = e.Value
			return false
		}
		return true
	})
	return found
}

// Allows tells whether the expression names the given node type anywhere.
func (cm *ContentMatch) Allows(nt *NodeType) bool {
	if cm.expr == nil {
		return false
	}
	found := false
	cm.expr.walk(func(e *exprType) bool {
		if e.Type == "name" && e.Value == nt {
			found = true
			return false
		}
		return true
	})
	return found
}

func (cm *ContentMatch) inlineContent() bool {
	if cm.expr == nil {
		return false
	}
	inline := false
	cm.expr.walk(func(e *exprType) bool {
		if e.Type == "name" {
			inline = e.Value.IsInline()
			return false
		}
		return true
	})
	return inline
}

type tokenStream struct {
	str       string
	nodeTypes map[string]*NodeType
	inline    *bool
	pos       int
	tokens    []string
}

func newTokenStream(str string, nodeTypes map[string]*NodeType) *tokenStream {
	return &tokenStream{
		str:       str,
		nodeTypes: nodeTypes,
		tokens:    tokenize(str),
	}
}

// tokenize splits a content expression into words and single punctuation
// characters, dropping whitespace.
func tokenize(str string) []string {
	var tokens []string
	word := []rune{}
	flush := func() {
		if len(word) > 0 {
			tokens = append(tokens, string(word))
			word = word[:0]
		}
	}
	for _, r := range str {
		switch {
		case unicode.IsSpace(r):
			flush()
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			word = append(word, r)
		default:
			flush()
			tokens = append(tokens, string(r))
		}
	}
	flush()
	return tokens
}

func (ts *tokenStream) next() *string {
	if ts.pos >= len(ts.tokens) {
		return nil
	}
	return &ts.tokens[ts.pos]
}

func (ts *tokenStream) eat(tok string) bool {
	if s := ts.next(); s != nil && *s == tok {
		ts.pos++
		return true
	}
	return false
}

func (ts *tokenStream) err(format string, args ...interface{}) error {
	str := fmt.Sprintf(format, args...)
	return errors.Errorf("%s (in content expression %q)", str, ts.str)
}

type exprType struct {
	Type  string
	Exprs []*exprType
	Expr  *exprType
	Min   int
	Max   int
	Value *NodeType
}

// match calls k with every position at which the expression can end when
// started at pos, stopping at the first continuation that succeeds.
func (e *exprType) match(types []*NodeType, pos int, k func(int) bool) bool {
	switch e.Type {
	case "name":
		return pos < len(types) && types[pos] == e.Value && k(pos+1)
	case "choice":
		for _, sub := range e.Exprs {
			if sub.match(types, pos, k) {
				return true
			}
		}
		return false
	case "seq":
		var step func(i, p int) bool
		step = func(i, p int) bool {
			if i == len(e.Exprs) {
				return k(p)
			}
			return e.Exprs[i].match(types, p, func(next int) bool { return step(i+1, next) })
		}
		return step(0, pos)
	case "star":
		return e.repeat(types, pos, 0, 0, -1, k)
	case "plus":
		return e.repeat(types, pos, 0, 1, -1, k)
	case "opt":
		return e.repeat(types, pos, 0, 0, 1, k)
	case "range":
		return e.repeat(types, pos, 0, e.Min, e.Max, k)
	}
	return false
}

// repeat greedily matches e.Expr between min and max times (max < 0 means
// unbounded).
func (e *exprType) repeat(types []*NodeType, pos, count, min, max int, k func(int) bool) bool {
	if max < 0 || count < max {
		matched := e.Expr.match(types, pos, func(next int) bool {
			if next == pos {
				return false
			}
			return e.repeat(types, next, count+1, min, max, k)
		})
		if matched {
			return true
		}
	}
	return count >= min && k(pos)
}

func (e *exprType) walk(fn func(*exprType) bool) bool {
	if !fn(e) {
		return false
	}
	if e.Expr != nil && !e.Expr.walk(fn) {
		return false
	}
	for _, sub := range e.Exprs {
		if !sub.walk(fn) {
			return false
		}
	}
	return true
}

func parseExpr(stream *tokenStream) (*exprType, error) {
	exprs := []*exprType{}
	for {
		seq, err := parseExprSeq(stream)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, seq)
		if !stream.eat("|") {
			break
		}
	}
	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return &exprType{Type: "choice", Exprs: exprs}, nil
}

func parseExprSeq(stream *tokenStream) (*exprType, error) {
	exprs := []*exprType{}
	for {
		sub, err := parseExprSubscript(stream)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, sub)
		s := stream.next()
		if s == nil || *s == ")" || *s == "|" {
			break
		}
	}
	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return &exprType{Type: "seq", Exprs: exprs}, nil
}

func parseExprSubscript(stream *tokenStream) (*exprType, error) {
	expr, err := parseExprAtom(stream)
	if err != nil {
		return nil, err
	}
	for {
		if stream.eat("+") {
			expr = &exprType{Type: "plus", Expr: expr}
		} else if stream.eat("*") {
			expr = &exprType{Type: "star", Expr: expr}
		} else if stream.eat("?") {
			expr = &exprType{Type: "opt", Expr: expr}
		} else if stream.eat("{") {
			expr, err = parseExprRange(stream, expr)
			if err != nil {
				return nil, err
			}
		} else {
			break
		}
	}
	return expr, nil
}

func parseNum(stream *tokenStream) (int, error) {
	s := stream.next()
	if s == nil {
		return 0, stream.err("Expected number, got nil")
	}
	result, err := strconv.Atoi(*s)
	if err != nil {
		return 0, stream.err("Expected number, got %q", *s)
	}
	stream.pos++
	return result, nil
}

func parseExprRange(stream *tokenStream, expr *exprType) (*exprType, error) {
	min, err := parseNum(stream)
	if err != nil {
		return nil, err
	}
	max := min
	if stream.eat(",") {
		if s := stream.next(); s != nil && *s != "}" {
			max, err = parseNum(stream)
			if err != nil {
				return nil, err
			}
		} else {
			max = -1
		}
	}
	if !stream.eat("}") {
		return nil, stream.err("Unclosed braced range")
	}
	return &exprType{Type: "range", Min: min, Max: max, Expr: expr}, nil
}

func resolveName(stream *tokenStream, name string) ([]*NodeType, error) {
	types := stream.nodeTypes
	if typ, ok := types[name]; ok {
		return []*NodeType{typ}, nil
	}
	var result []*NodeType
	for _, typ := range types {
		if typ.InGroup(name) {
			result = append(result, typ)
		}
	}
	if len(result) == 0 {
		return nil, stream.err("No node type or group %q found", name)
	}
	// Map iteration order is random; keep choices stable.
	sortNodeTypes(result)
	return result, nil
}

func sortNodeTypes(types []*NodeType) {
	for i := 1; i < len(types); i++ {
		for j := i; j > 0 && types[j].Name < types[j-1].Name; j-- {
			types[j], types[j-1] = types[j-1], types[j]
		}
	}
}

func isWordCharacters(str string) bool {
	for _, c := range str {
		if c != '_' && !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			return false
		}
	}
	return true
}

func parseExprAtom(stream *tokenStream) (*exprType, error) {
	if stream.eat("(") {
		expr, err := parseExpr(stream)
		if err != nil {
			return nil, err
		}
		if !stream.eat(")") {
			return nil, stream.err("Missing closing paren")
		}
		return expr, nil
	}

	s := stream.next()
	if s != nil && isWordCharacters(*s) {
		var exprs []*exprType
		types, err := resolveName(stream, *s)
		if err != nil {
			return nil, err
		}
		for _, typ := range types {
			inline := typ.IsInline()
			if stream.inline == nil {
				stream.inline = &inline
			} else if *stream.inline != inline {
				return nil, stream.err("Mixing inline and block content")
			}
			exprs = append(exprs, &exprType{Type: "name", Value: typ})
		}
		stream.pos++
		if len(exprs) == 1 {
			return exprs[0], nil
		}
		return &exprType{Type: "choice", Exprs: exprs}, nil
	}

	if s != nil {
		return nil, stream.err("Unexpected token %q", *s)
	}
	return nil, stream.err("Unexpected end of expression")
}
