package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSyntax indicates a query string the parser cannot understand.
var ErrSyntax = errors.New("syntax error")

// SelectItem is one output column of a query.
type SelectItem struct {
	Column string
	Alias  string
}

// Name returns the output column name.
func (s SelectItem) Name() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Column
}

// Query is a parsed statement. An empty Select list means `*`.
type Query struct {
	Select   []SelectItem
	Distinct bool
	From     string
	Where    []Condition
	OrderBy  string
	OrderAsc bool
	Limit    int
}

// Parse parses one SELECT statement.
//
// Grammar:
//
//	SELECT ( * | item [, item]* ) FROM view
//	    [WHERE cond [AND cond]*]
//	    [ORDER BY column [ASC|DESC]] [LIMIT n]
//	item: column [AS alias] | DISTINCT(column) [AS alias]
//	cond: column (= | != | < | <= | > | >=) literal | column IS [NOT] NULL
func Parse(q string) (*Query, error) {
	tokens, err := tokenize(q)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	query := &Query{OrderAsc: true, Limit: -1}

	if err := p.expectKeyword("SELECT"); err != nil {
		return nil, err
	}
	if err := p.parseSelectList(query); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	from, err := p.identifier()
	if err != nil {
		return nil, err
	}
	query.From = from

	if p.acceptKeyword("WHERE") {
		if err := p.parseWhere(query); err != nil {
			return nil, err
		}
	}
	if p.acceptKeyword("ORDER") {
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		col, err := p.identifier()
		if err != nil {
			return nil, err
		}
		query.OrderBy = col
		if p.acceptKeyword("DESC") {
			query.OrderAsc = false
		} else {
			p.acceptKeyword("ASC")
		}
	}
	if p.acceptKeyword("LIMIT") {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(tok.text)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: bad LIMIT %q", ErrSyntax, tok.text)
		}
		query.Limit = n
	}

	if !p.done() {
		tok, _ := p.next()
		return nil, fmt.Errorf("%w: unexpected %q", ErrSyntax, tok.text)
	}
	return query, nil
}

func (p *parser) parseSelectList(query *Query) error {
	if p.accept("*") {
		return nil
	}

	for {
		item := SelectItem{}
		if p.acceptKeyword("DISTINCT") {
			query.Distinct = true
			if !p.accept("(") {
				return fmt.Errorf("%w: DISTINCT needs a parenthesized column", ErrSyntax)
			}
			col, err := p.identifier()
			if err != nil {
				return err
			}
			if !p.accept(")") {
				return fmt.Errorf("%w: missing ) after DISTINCT column", ErrSyntax)
			}
			item.Column = col
		} else {
			col, err := p.identifier()
			if err != nil {
				return err
			}
			item.Column = col
		}

		if p.acceptKeyword("AS") {
			alias, err := p.identifier()
			if err != nil {
				return err
			}
			item.Alias = alias
		}
		query.Select = append(query.Select, item)

		if !p.accept(",") {
			break
		}
	}

	if query.Distinct && len(query.Select) != 1 {
		return fmt.Errorf("%w: DISTINCT takes exactly one column", ErrSyntax)
	}
	return nil
}

func (p *parser) parseWhere(query *Query) error {
	for {
		col, err := p.identifier()
		if err != nil {
			return err
		}

		if p.acceptKeyword("IS") {
			op := CondIsNull
			if p.acceptKeyword("NOT") {
				op = CondIsNotNull
			}
			if err := p.expectKeyword("NULL"); err != nil {
				return err
			}
			query.Where = append(query.Where, Condition{Column: col, Op: op})
		} else {
			tok, err := p.next()
			if err != nil {
				return err
			}
			op, ok := compareOps[tok.text]
			if !ok {
				return fmt.Errorf("%w: bad operator %q", ErrSyntax, tok.text)
			}
			value, err := p.literal()
			if err != nil {
				return err
			}
			query.Where = append(query.Where, Condition{Column: col, Op: op, Value: value})
		}

		if !p.acceptKeyword("AND") {
			break
		}
	}
	return nil
}

var compareOps = map[string]ConditionOp{
	"=":  CondEq,
	"!=": CondNotEq,
	"<>": CondNotEq,
	"<":  CondLt,
	"<=": CondLte,
	">":  CondGt,
	">=": CondGte,
}

// tokenKind distinguishes quoted strings from bare words and symbols.
type tokenKind int

const (
	tokWord tokenKind = iota
	tokString
	tokSymbol
)

type token struct {
	kind tokenKind
	text string
}

// tokenize splits a statement into words, quoted strings, and symbols.
func tokenize(q string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(q) {
		c := q[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '\'':
			j := strings.IndexByte(q[i+1:], '\'')
			if j < 0 {
				return nil, fmt.Errorf("%w: unterminated string literal", ErrSyntax)
			}
			tokens = append(tokens, token{kind: tokString, text: q[i+1 : i+1+j]})
			i += j + 2
		case c == ',' || c == '(' || c == ')' || c == '*':
			tokens = append(tokens, token{kind: tokSymbol, text: string(c)})
			i++
		case c == '=' || c == '<' || c == '>' || c == '!':
			op := string(c)
			if i+1 < len(q) && (q[i+1] == '=' || (c == '<' && q[i+1] == '>')) {
				op += string(q[i+1])
			}
			if _, ok := compareOps[op]; !ok {
				return nil, fmt.Errorf("%w: bad operator %q", ErrSyntax, op)
			}
			tokens = append(tokens, token{kind: tokSymbol, text: op})
			i += len(op)
		default:
			j := i
			for j < len(q) && isWordByte(q[j]) {
				j++
			}
			if j == i {
				return nil, fmt.Errorf("%w: unexpected character %q", ErrSyntax, string(c))
			}
			tokens = append(tokens, token{kind: tokWord, text: q[i:j]})
			i = j
		}
	}
	return tokens, nil
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '_' || c == '.' || c == '-' || c == '/'
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) done() bool {
	return p.pos >= len(p.tokens)
}

func (p *parser) next() (token, error) {
	if p.done() {
		return token{}, fmt.Errorf("%w: unexpected end of statement", ErrSyntax)
	}
	tok := p.tokens[p.pos]
	p.pos++
	return tok, nil
}

// accept consumes the next token if it is the given symbol.
func (p *parser) accept(symbol string) bool {
	if p.done() {
		return false
	}
	tok := p.tokens[p.pos]
	if tok.kind == tokSymbol && tok.text == symbol {
		p.pos++
		return true
	}
	return false
}

// acceptKeyword consumes the next token if it is the given keyword,
// case-insensitively.
func (p *parser) acceptKeyword(kw string) bool {
	if p.done() {
		return false
	}
	tok := p.tokens[p.pos]
	if tok.kind == tokWord && strings.EqualFold(tok.text, kw) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expectKeyword(kw string) error {
	if !p.acceptKeyword(kw) {
		if p.done() {
			return fmt.Errorf("%w: expected %s at end of statement", ErrSyntax, kw)
		}
		return fmt.Errorf("%w: expected %s, got %q", ErrSyntax, kw, p.tokens[p.pos].text)
	}
	return nil
}

// identifier consumes a bare word.
func (p *parser) identifier() (string, error) {
	tok, err := p.next()
	if err != nil {
		return "", err
	}
	if tok.kind != tokWord {
		return "", fmt.Errorf("%w: expected identifier, got %q", ErrSyntax, tok.text)
	}
	return tok.text, nil
}

// literal consumes a string, numeric, or boolean literal.
func (p *parser) literal() (any, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}

	if tok.kind == tokString {
		return tok.text, nil
	}
	if tok.kind != tokWord {
		return nil, fmt.Errorf("%w: expected literal, got %q", ErrSyntax, tok.text)
	}

	switch strings.ToLower(tok.text) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	if strings.Contains(tok.text, ".") {
		f, err := strconv.ParseFloat(tok.text, 64)
		if err == nil {
			return f, nil
		}
	} else if n, err := strconv.ParseInt(tok.text, 10, 64); err == nil {
		return n, nil
	}
	return nil, fmt.Errorf("%w: bad literal %q", ErrSyntax, tok.text)
}
