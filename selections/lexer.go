package selections

import (
	"strconv"

	chem "github.com/AspirinCode/chemfiles"
)

type tokenKind int

const (
	tokEnd tokenKind = iota
	tokLParen
	tokRParen
	tokComma
	tokVariable
	tokEqual
	tokNotEqual
	tokLess
	tokLessEqual
	tokGreater
	tokGreaterEqual
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokHat
	tokNot
	tokAnd
	tokOr
	tokIdent
	tokNumber
)

// token is one lexical unit of a selection string, tagged with the byte
// offset of its first character so parse errors can point back into the
// original query.
type token struct {
	kind   tokenKind
	ident  string
	number float64
	vari   int // 0-based variable slot for tokVariable ("#1" -> 0)
	offset int
}

func (t token) String() string {
	switch t.kind {
	case tokEnd:
		return "<end of selection>"
	case tokLParen:
		return "("
	case tokRParen:
		return ")"
	case tokComma:
		return ","
	case tokVariable:
		return "#" + strconv.Itoa(t.vari+1)
	case tokEqual:
		return "=="
	case tokNotEqual:
		return "!="
	case tokLess:
		return "<"
	case tokLessEqual:
		return "<="
	case tokGreater:
		return ">"
	case tokGreaterEqual:
		return ">="
	case tokPlus:
		return "+"
	case tokMinus:
		return "-"
	case tokStar:
		return "*"
	case tokSlash:
		return "/"
	case tokHat:
		return "^"
	case tokNot:
		return "not"
	case tokAnd:
		return "and"
	case tokOr:
		return "or"
	case tokIdent:
		return t.ident
	case tokNumber:
		return strconv.FormatFloat(t.number, 'g', -1, 64)
	}
	return "?"
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func lexErr(offset int, format string, args ...interface{}) error {
	return chem.SelectionError("at byte %d: "+format, append([]interface{}{offset}, args...)...)
}

// tokenize scans a selection string into a token stream, terminated by a
// single tokEnd. Every token carries the byte offset it started at, so the
// parser can surface precise error locations.
func tokenize(input string) ([]token, error) {
	var toks []token
	i, n := 0, len(input)
	for i < n {
		c := input[i]
		switch {
		case isSpace(c):
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, offset: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, offset: i})
			i++
		case c == ',':
			toks = append(toks, token{kind: tokComma, offset: i})
			i++
		case c == '#':
			start := i
			i++
			j := i
			for j < n && isDigit(input[j]) {
				j++
			}
			if j == i {
				return nil, lexErr(start, "expected a number after '#'")
			}
			v, err := strconv.Atoi(input[i:j])
			if err != nil || v < 1 || v > 255 {
				return nil, lexErr(start, "variable index #%s is out of range", input[i:j])
			}
			toks = append(toks, token{kind: tokVariable, vari: v - 1, offset: start})
			i = j
		case c == '=' && i+1 < n && input[i+1] == '=':
			toks = append(toks, token{kind: tokEqual, offset: i})
			i += 2
		case c == '!' && i+1 < n && input[i+1] == '=':
			toks = append(toks, token{kind: tokNotEqual, offset: i})
			i += 2
		case c == '<' && i+1 < n && input[i+1] == '=':
			toks = append(toks, token{kind: tokLessEqual, offset: i})
			i += 2
		case c == '<':
			toks = append(toks, token{kind: tokLess, offset: i})
			i++
		case c == '>' && i+1 < n && input[i+1] == '=':
			toks = append(toks, token{kind: tokGreaterEqual, offset: i})
			i += 2
		case c == '>':
			toks = append(toks, token{kind: tokGreater, offset: i})
			i++
		case c == '+':
			toks = append(toks, token{kind: tokPlus, offset: i})
			i++
		case c == '-':
			toks = append(toks, token{kind: tokMinus, offset: i})
			i++
		case c == '*':
			toks = append(toks, token{kind: tokStar, offset: i})
			i++
		case c == '/':
			toks = append(toks, token{kind: tokSlash, offset: i})
			i++
		case c == '^':
			toks = append(toks, token{kind: tokHat, offset: i})
			i++
		case isAlpha(c):
			start := i
			j := i + 1
			for j < n && (isAlpha(input[j]) || isDigit(input[j]) || input[j] == '_') {
				j++
			}
			word := input[start:j]
			switch word {
			case "and":
				toks = append(toks, token{kind: tokAnd, offset: start})
			case "or":
				toks = append(toks, token{kind: tokOr, offset: start})
			case "not":
				toks = append(toks, token{kind: tokNot, offset: start})
			default:
				toks = append(toks, token{kind: tokIdent, ident: word, offset: start})
			}
			i = j
		case isDigit(c) || c == '.':
			start := i
			j := i + 1
			for j < n && (isDigit(input[j]) || input[j] == '.') {
				j++
			}
			if j < n && (input[j] == 'e' || input[j] == 'E') {
				j++
				if j < n && (input[j] == '+' || input[j] == '-') {
					j++
				}
				for j < n && isDigit(input[j]) {
					j++
				}
			}
			word := input[start:j]
			v, err := strconv.ParseFloat(word, 64)
			if err != nil {
				return nil, lexErr(start, "could not parse number %q", word)
			}
			toks = append(toks, token{kind: tokNumber, number: v, offset: start})
			i = j
		default:
			return nil, lexErr(i, "unexpected character %q", c)
		}
	}
	toks = append(toks, token{kind: tokEnd, offset: n})
	return toks, nil
}
