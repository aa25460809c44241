// Package parser reads the field declarations of a query document:
//
//	[alias:] name [(arg: value, ...)] [@directive[(arg: value, ...)] ...]
//
// Values are numbers, quoted strings, true, false, null, bare identifiers
// (read as strings), lists and objects. Argument order is preserved.
package parser

import (
	"strconv"

	"github.com/jacoelho/resultshape/internal/ast"
)

type parserState struct {
	tokens []token
	pos    int
}

// ParseField parses one field declaration.
func ParseField(input string) (*ast.Node, error) {
	tokens, err := lex(input)
	if err != nil {
		return nil, err
	}

	state := parserState{tokens: tokens}
	if state.current().typ == tokenEOF {
		return nil, syntaxError("declaration is empty")
	}

	node, err := state.parseField()
	if err != nil {
		return nil, err
	}

	if tok := state.current(); tok.typ != tokenEOF {
		return nil, syntaxError("unexpected token at position %d", tok.pos)
	}

	return node, nil
}

func (p *parserState) parseField() (*ast.Node, error) {
	name, err := p.expectIdentifier("field name")
	if err != nil {
		return nil, err
	}

	node := &ast.Node{Name: name}
	if p.current().typ == tokenColon {
		p.advance()
		node.Alias = name
		if node.Name, err = p.expectIdentifier("field name after alias"); err != nil {
			return nil, err
		}
	}

	if node.Arguments, err = p.parseArguments(); err != nil {
		return nil, err
	}

	for p.current().typ == tokenAt {
		p.advance()
		directiveName, err := p.expectIdentifier("directive name")
		if err != nil {
			return nil, err
		}
		args, err := p.parseArguments()
		if err != nil {
			return nil, err
		}
		node.Directives = append(node.Directives, ast.Directive{Name: directiveName, Arguments: args})
	}

	return node, nil
}

// parseArguments reads an optional parenthesised argument list. Commas
// between arguments are optional.
func (p *parserState) parseArguments() (ast.Arguments, error) {
	if p.current().typ != tokenLParen {
		return nil, nil
	}
	p.advance()

	args := ast.Arguments{}
	for p.current().typ != tokenRParen {
		name, err := p.expectIdentifier("argument name")
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokenColon, "':' after argument "+name); err != nil {
			return nil, err
		}
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		args = append(args, ast.Argument{Name: name, Value: value})

		if p.current().typ == tokenComma {
			p.advance()
		}
	}
	p.advance()

	return args, nil
}

func (p *parserState) parseValue() (any, error) {
	tok := p.current()
	switch tok.typ {
	case tokenIdentifier, tokenString:
		p.advance()
		return tok.literal, nil
	case tokenNumber:
		p.advance()
		value, err := strconv.ParseFloat(tok.literal, 64)
		if err != nil {
			return nil, syntaxError("invalid number literal %q at position %d", tok.literal, tok.pos)
		}
		return value, nil
	case tokenTrue:
		p.advance()
		return true, nil
	case tokenFalse:
		p.advance()
		return false, nil
	case tokenNull:
		p.advance()
		return nil, nil
	case tokenLBracket:
		p.advance()
		list := []any{}
		for p.current().typ != tokenRBracket {
			value, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			list = append(list, value)
			if p.current().typ == tokenComma {
				p.advance()
			}
		}
		p.advance()
		return list, nil
	case tokenLBrace:
		p.advance()
		object := map[string]any{}
		for p.current().typ != tokenRBrace {
			key := p.current()
			if key.typ != tokenIdentifier && key.typ != tokenString {
				return nil, syntaxError("expected object key at position %d", key.pos)
			}
			p.advance()
			if err := p.expect(tokenColon, "':' after object key "+key.literal); err != nil {
				return nil, err
			}
			value, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			object[key.literal] = value
			if p.current().typ == tokenComma {
				p.advance()
			}
		}
		p.advance()
		return object, nil
	case tokenEOF:
		return nil, syntaxError("unexpected end of declaration")
	default:
		return nil, syntaxError("unexpected token at position %d", tok.pos)
	}
}

func (p *parserState) expectIdentifier(what string) (string, error) {
	tok := p.current()
	if tok.typ != tokenIdentifier {
		return "", syntaxError("expected %s at position %d", what, tok.pos)
	}
	p.advance()
	return tok.literal, nil
}

func (p *parserState) expect(typ tokenType, what string) error {
	tok := p.current()
	if tok.typ != typ {
		return syntaxError("expected %s at position %d", what, tok.pos)
	}
	p.advance()
	return nil
}

func (p *parserState) current() token {
	if p.pos >= len(p.tokens) {
		return token{typ: tokenEOF, pos: len(p.tokens)}
	}
	return p.tokens[p.pos]
}

func (p *parserState) advance() token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}
