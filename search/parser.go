package search

import (
	"strings"

	ftserr "github.com/emberfts/ember/errors"
)

// ParseQueryString parses a minimal Boolean query-string grammar:
//
//	expr   := or
//	or     := and (OR and)*
//	and    := not (AND? not)*    -- AND is implicit between adjacent terms
//	not    := NOT not | term
//	term   := '(' expr ')' | field ':' value | value
//
// defaultField is used for bare terms with no "field:" prefix.
func ParseQueryString(defaultField, input string) (Query, error) {
	toks := tokenize(input)
	p := &parser{tokens: toks, defaultField: defaultField}
	q, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.tokens) {
		return nil, ftserr.New(ftserr.ParseError, "unexpected trailing input in query string")
	}
	return q, nil
}

type tokenKind int

const (
	tokWord tokenKind = iota
	tokLParen
	tokRParen
	tokAnd
	tokOr
	tokNot
)

type token struct {
	kind tokenKind
	text string
}

func tokenize(input string) []token {
	var toks []token
	var buf strings.Builder
	flush := func() {
		if buf.Len() == 0 {
			return
		}
		word := buf.String()
		buf.Reset()
		switch strings.ToUpper(word) {
		case "AND":
			toks = append(toks, token{kind: tokAnd})
		case "OR":
			toks = append(toks, token{kind: tokOr})
		case "NOT":
			toks = append(toks, token{kind: tokNot})
		default:
			toks = append(toks, token{kind: tokWord, text: word})
		}
	}
	inQuote := false
	for _, r := range input {
		switch {
		case r == '"':
			inQuote = !inQuote
			buf.WriteRune(r)
		case inQuote:
			buf.WriteRune(r)
		case r == '(':
			flush()
			toks = append(toks, token{kind: tokLParen})
		case r == ')':
			flush()
			toks = append(toks, token{kind: tokRParen})
		case r == ' ' || r == '\t' || r == '\n':
			flush()
		default:
			buf.WriteRune(r)
		}
	}
	flush()
	return toks
}

type parser struct {
	tokens       []token
	pos          int
	defaultField string
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) parseOr() (Query, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	clauses := []BooleanClause{{Query: left, Occur: Should}}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokOr {
			break
		}
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, BooleanClause{Query: right, Occur: Should})
	}
	if len(clauses) == 1 {
		return left, nil
	}
	return BooleanQuery{Clauses: clauses, MinShouldMatch: 1}, nil
}

func (p *parser) parseAnd() (Query, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	var clauses []BooleanClause
	clauses = append(clauses, left)
	for {
		tok, ok := p.peek()
		if !ok || tok.kind == tokOr || tok.kind == tokRParen {
			break
		}
		if tok.kind == tokAnd {
			p.pos++
		}
		if _, ok := p.peek(); !ok {
			return nil, ftserr.New(ftserr.ParseError, "dangling AND in query string")
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, right)
	}
	if len(clauses) == 1 {
		return clauses[0].Query, nil
	}
	return BooleanQuery{Clauses: clauses}, nil
}

func (p *parser) parseNot() (BooleanClause, error) {
	tok, ok := p.peek()
	if ok && tok.kind == tokNot {
		p.pos++
		inner, err := p.parseNot()
		if err != nil {
			return BooleanClause{}, err
		}
		return BooleanClause{Query: inner.Query, Occur: MustNot}, nil
	}
	q, err := p.parseTerm()
	if err != nil {
		return BooleanClause{}, err
	}
	return BooleanClause{Query: q, Occur: Must}, nil
}

func (p *parser) parseTerm() (Query, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, ftserr.New(ftserr.ParseError, "unexpected end of query string")
	}
	if tok.kind == tokLParen {
		p.pos++
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		closing, ok := p.peek()
		if !ok || closing.kind != tokRParen {
			return nil, ftserr.New(ftserr.ParseError, "unmatched '(' in query string")
		}
		p.pos++
		return inner, nil
	}
	if tok.kind != tokWord {
		return nil, ftserr.New(ftserr.ParseError, "expected a term in query string")
	}
	p.pos++
	field, value := splitFieldValue(tok.text, p.defaultField)
	return NewTermQuery(field, []byte(value)), nil
}

func splitFieldValue(word, defaultField string) (string, string) {
	if idx := strings.Index(word, ":"); idx > 0 {
		value := word[idx+1:]
		return word[:idx], strings.Trim(value, `"`)
	}
	return defaultField, strings.Trim(word, `"`)
}
