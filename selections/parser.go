package selections

import (
	"strconv"
	"strings"

	chem "github.com/AspirinCode/chemfiles"
)

// parser turns a token stream into a boolExpr tree by recursive descent.
// arity bounds which tuple slots (#1..#arity) are legal to reference.
type parser struct {
	toks  []token
	pos   int
	arity int
}

func newParser(toks []token, arity int) *parser {
	return &parser{toks: toks, arity: arity}
}

func (p *parser) peek() token { return p.toks[p.pos] }
func (p *parser) previous() token {
	return p.toks[p.pos-1]
}
func (p *parser) advance() token {
	t := p.toks[p.pos]
	if t.kind != tokEnd {
		p.pos++
	}
	return t
}
func (p *parser) check(k tokenKind) bool { return p.peek().kind == k }
func (p *parser) match(k tokenKind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}
func (p *parser) finished() bool { return p.check(tokEnd) }

func (p *parser) errf(at token, format string, args ...interface{}) error {
	return chem.SelectionError("at byte %d: "+format, append([]interface{}{at.offset}, args...)...)
}

// parseSelection parses a whole selection string and checks that every
// token was consumed.
func (p *parser) parseSelection() (boolExpr, error) {
	ast, err := p.expression()
	if err != nil {
		return nil, err
	}
	if !p.finished() {
		extra := p.peek()
		var rest []string
		for !p.finished() {
			rest = append(rest, p.advance().String())
		}
		return nil, p.errf(extra, "additional data after the end of the selection: %s", strings.Join(rest, " "))
	}
	return ast, nil
}

func (p *parser) expression() (boolExpr, error) {
	ast, err := p.selector()
	if err != nil {
		return nil, err
	}
	for {
		if p.match(tokAnd) {
			rhs, err := p.selector()
			if err != nil {
				return nil, err
			}
			ast = andExpr{ast, rhs}
		} else if p.match(tokOr) {
			rhs, err := p.selector()
			if err != nil {
				return nil, err
			}
			ast = orExpr{ast, rhs}
		} else {
			break
		}
	}
	return ast, nil
}

func (p *parser) selector() (boolExpr, error) {
	if p.match(tokLParen) {
		ast, err := p.expression()
		if err != nil {
			return nil, err
		}
		if !p.match(tokRParen) {
			return nil, p.errf(p.peek(), "mismatched parenthesis")
		}
		return ast, nil
	}
	if p.match(tokNot) {
		ast, err := p.expression()
		if err != nil {
			return nil, err
		}
		return notExpr{ast}, nil
	}
	if p.check(tokIdent) {
		switch p.peek().ident {
		case "all":
			p.advance()
			return allExpr{}, nil
		case "none":
			p.advance()
			return noneExpr{}, nil
		case "is_bonded", "is_angle", "is_dihedral", "is_improper":
			return p.topologyPredicate()
		}
		if _, ok := stringProperties[p.peek().ident]; ok {
			return p.stringSelector()
		}
	}
	return p.mathSelector()
}

func (p *parser) variable() (int, error) {
	if !p.match(tokLParen) {
		return 0, nil
	}
	if !p.check(tokVariable) {
		return 0, p.errf(p.peek(), "expected a variable (e.g. #1) in parenthesis, found %s", p.peek())
	}
	v := p.advance().vari
	if v >= p.arity {
		return 0, p.errf(p.previous(), "variable #%d is out of range for an arity-%d selection", v+1, p.arity)
	}
	if !p.match(tokRParen) {
		return 0, p.errf(p.peek(), "expected closing parenthesis after variable, found %s", p.peek())
	}
	return v, nil
}

func (p *parser) stringSelector() (boolExpr, error) {
	name := p.advance().ident
	field := stringProperties[name]
	slot, err := p.variable()
	if err != nil {
		return nil, err
	}
	if p.check(tokIdent) || p.check(tokNumber) {
		ast, err := p.stringValue(field, slot, true)
		if err != nil {
			return nil, err
		}
		for p.check(tokIdent) || p.check(tokNumber) {
			rhs, err := p.stringValue(field, slot, true)
			if err != nil {
				return nil, err
			}
			ast = orExpr{ast, rhs}
		}
		return ast, nil
	}
	if p.match(tokEqual) {
		if p.check(tokIdent) || p.check(tokNumber) {
			return p.stringValue(field, slot, true)
		}
		return nil, p.errf(p.peek(), "expected a value after '%s ==', found %s", name, p.peek())
	}
	if p.match(tokNotEqual) {
		if p.check(tokIdent) || p.check(tokNumber) {
			return p.stringValue(field, slot, false)
		}
		return nil, p.errf(p.peek(), "expected a value after '%s !=', found %s", name, p.peek())
	}
	return nil, p.errf(p.peek(), "expected one of '==', '!=' or a value after %s, found %s", name, p.peek())
}

func (p *parser) stringValue(field stringField, slot int, equals bool) (boolExpr, error) {
	t := p.advance()
	var val string
	if t.kind == tokIdent {
		val = t.ident
	} else {
		val = strconv.FormatFloat(t.number, 'g', -1, 64)
	}
	return stringPredicate{field: field, slot: slot, value: val, equals: equals}, nil
}

func (p *parser) topologyPredicate() (boolExpr, error) {
	name := p.advance().ident
	if !p.match(tokLParen) {
		return nil, p.errf(p.peek(), "expected '(' after %s", name)
	}
	want := map[string]int{"is_bonded": 2, "is_angle": 3, "is_dihedral": 4, "is_improper": 4}[name]
	args := make([]indexExpr, 0, want)
	for {
		arg, err := p.indexArgument()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.match(tokComma) {
			continue
		}
		break
	}
	if !p.match(tokRParen) {
		return nil, p.errf(p.peek(), "missing closing parenthesis in %s call", name)
	}
	if len(args) != want {
		return nil, p.errf(p.previous(), "%s takes %d arguments, got %d", name, want, len(args))
	}
	switch name {
	case "is_bonded":
		return isBondedExpr{args[0], args[1]}, nil
	case "is_angle":
		return isAngleExpr{args[0], args[1], args[2]}, nil
	case "is_dihedral":
		return isDihedralExpr{args[0], args[1], args[2], args[3]}, nil
	default:
		return isImproperExpr{args[0], args[1], args[2], args[3]}, nil
	}
}

func (p *parser) indexArgument() (indexExpr, error) {
	if p.check(tokVariable) {
		v := p.advance().vari
		if v >= p.arity {
			return indexExpr{}, p.errf(p.previous(), "variable #%d is out of range for an arity-%d selection", v+1, p.arity)
		}
		return indexExpr{literal: false, slot: v}, nil
	}
	if p.check(tokNumber) {
		n := p.advance()
		return indexExpr{literal: true, value: int(n.number)}, nil
	}
	return indexExpr{}, p.errf(p.peek(), "expected an atom index or a variable, found %s", p.peek())
}

func (p *parser) mathSelector() (boolExpr, error) {
	save := p.pos
	if _, isNumProp := numericProperties[p.peek().ident]; p.check(tokIdent) && isNumProp {
		name := p.advance().ident
		slot, err := p.variable()
		if err == nil && p.check(tokNumber) {
			mk := func(v float64) boolExpr {
				return relExpr{op: relEQ, lhs: propertyExpr{prop: numericProperties[name], slot: slot}, rhs: numberLit(v)}
			}
			ast := mk(p.advance().number)
			for p.check(tokNumber) {
				ast = orExpr{ast, mk(p.advance().number)}
			}
			return ast, nil
		}
		p.pos = save
	}

	lhs, err := p.mathSum()
	if err != nil {
		return nil, err
	}
	var op relOp
	switch {
	case p.match(tokEqual):
		op = relEQ
	case p.match(tokNotEqual):
		op = relNE
	case p.match(tokLess):
		op = relLT
	case p.match(tokLessEqual):
		op = relLE
	case p.match(tokGreater):
		op = relGT
	case p.match(tokGreaterEqual):
		op = relGE
	default:
		return nil, p.errf(p.peek(), "expected a comparison operator (==, !=, <, <=, >, >=), found %s", p.peek())
	}
	rhs, err := p.mathSum()
	if err != nil {
		return nil, err
	}
	return relExpr{op: op, lhs: lhs, rhs: rhs}, nil
}

func (p *parser) mathSum() (numExpr, error) {
	ast, err := p.mathProduct()
	if err != nil {
		return nil, err
	}
	for {
		if p.match(tokPlus) {
			rhs, err := p.mathProduct()
			if err != nil {
				return nil, err
			}
			ast = binNumExpr{addOp, ast, rhs}
		} else if p.match(tokMinus) {
			rhs, err := p.mathProduct()
			if err != nil {
				return nil, err
			}
			ast = binNumExpr{subOp, ast, rhs}
		} else {
			break
		}
	}
	return ast, nil
}

func (p *parser) mathProduct() (numExpr, error) {
	ast, err := p.mathPower()
	if err != nil {
		return nil, err
	}
	for {
		if p.match(tokStar) {
			rhs, err := p.mathPower()
			if err != nil {
				return nil, err
			}
			ast = binNumExpr{mulOp, ast, rhs}
		} else if p.match(tokSlash) {
			rhs, err := p.mathPower()
			if err != nil {
				return nil, err
			}
			ast = binNumExpr{divOp, ast, rhs}
		} else {
			break
		}
	}
	return ast, nil
}

func (p *parser) mathPower() (numExpr, error) {
	lhs, err := p.mathValue()
	if err != nil {
		return nil, err
	}
	if p.match(tokHat) {
		rhs, err := p.mathPower()
		if err != nil {
			return nil, err
		}
		return binNumExpr{powOp, lhs, rhs}, nil
	}
	return lhs, nil
}

func (p *parser) mathValue() (numExpr, error) {
	if p.check(tokIdent) {
		name := p.peek().ident
		if fn, ok := numericFunctions[name]; ok {
			p.advance()
			if !p.match(tokLParen) {
				return nil, p.errf(p.peek(), "missing parenthesis after %s", name)
			}
			inner, err := p.mathSum()
			if err != nil {
				return nil, err
			}
			if !p.match(tokRParen) {
				return nil, p.errf(p.peek(), "missing closing parenthesis in %s call", name)
			}
			return funcExpr{fn, inner}, nil
		}
		if prop, ok := numericProperties[name]; ok {
			p.advance()
			slot, err := p.variable()
			if err != nil {
				return nil, err
			}
			return propertyExpr{prop: prop, slot: slot}, nil
		}
		return nil, p.errf(p.peek(), "unknown identifier '%s'", name)
	}
	if p.match(tokLParen) {
		ast, err := p.mathSum()
		if err != nil {
			return nil, err
		}
		if !p.match(tokRParen) {
			return nil, p.errf(p.peek(), "mismatched parenthesis")
		}
		return ast, nil
	}
	if p.check(tokNumber) {
		return numberLit(p.advance().number), nil
	}
	if p.match(tokPlus) {
		return p.mathValue()
	}
	if p.match(tokMinus) {
		inner, err := p.mathValue()
		if err != nil {
			return nil, err
		}
		return negExpr{inner}, nil
	}
	if p.finished() {
		return nil, p.errf(p.peek(), "expected content after %s", p.previous())
	}
	return nil, p.errf(p.peek(), "I don't know what to do with %s", p.peek())
}
