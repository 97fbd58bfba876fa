package lib

import (
	"fmt"
	"strconv"
)

const nullKeyword = "NULL"

// Parse turns one source line into a statement. Blank and comment-only lines
// parse to EmptyStatement.
func Parse(line string) (Statement, error) {
	buffer, err := lexLine(line)
	if err != nil {
		return nil, err
	}
	p := parser{reader: buffer}
	return p.scan()
}

// ParseExpression parses a bare expression such as "2 + 3 * 4". A trailing
// ';' is allowed.
func ParseExpression(src string) (Expression, error) {
	buffer, err := lexLine(src)
	if err != nil {
		return nil, err
	}
	p := parser{reader: buffer}
	expr, err := p.scanExpr()
	if err != nil {
		return nil, err
	}
	p.checkToken(tokenTypeSemicolon)
	if next, found := p.peekAny(); found {
		return nil, compileErrorf(ErrExpectedOperator, next.location.col,
			"expected operator but got <%s>", tokenString(next))
	}
	return expr, nil
}

func lexLine(line string) (*tokenBuffer, error) {
	buffer := newTokenBuffer()
	err := lex(line, buffer.Write)
	buffer.Done()
	if err != nil {
		return nil, err
	}
	return buffer, nil
}

type parser struct {
	reader tokenReader
}

func (p *parser) scan() (Statement, error) {
	tok, done, err := p.reader.Next()
	if err != nil {
		return nil, err
	}
	if done {
		return EmptyStatement{}, nil
	}

	// *p = ...; **pp = ...;
	if tok.tokType == tokenTypeAsterisk {
		return p.scanDereferenceAssignment()
	}

	if tok.tokType != tokenTypeWord {
		return nil, syntaxErrorf(tok, "invalid first token <%s>", tokenString(tok))
	}

	// int a; char* c = ...;
	if isTypeKeyword(string(tok.value)) {
		return p.scanDeclaration(tok)
	}

	// A word followed by a word or '*' has the shape of a declaration even
	// when the type is not one we know. The memory model rejects it.
	if next, found := p.peekAny(); found &&
		(next.tokType == tokenTypeWord || next.tokType == tokenTypeAsterisk) {
		return p.scanDeclaration(tok)
	}

	// a = ...;
	return p.scanAssignment(tok)
}

// Reads after the type word.
func (p *parser) scanDeclaration(typeTok token) (Statement, error) {
	typ := Type(typeTok.value)
	for {
		if _, found := p.checkToken(tokenTypeAsterisk); !found {
			break
		}
		typ = typ.PointerTo()
	}

	nameTok, err := p.requireStatementWord("identifier")
	if err != nil {
		return nil, err
	}

	next, err := p.requireAny("'=' or ';'")
	if err != nil {
		return nil, err
	}

	switch next.tokType {
	case tokenTypeSemicolon:
		if err := p.requireEnd(); err != nil {
			return nil, err
		}
		return Declaration{Type: typ, Name: string(nameTok.value)}, nil
	case tokenTypeEqual:
		init, err := p.scanStatementExpr()
		if err != nil {
			return nil, err
		}
		return Declaration{Type: typ, Name: string(nameTok.value), Init: init}, nil
	default:
		return nil, syntaxErrorf(next, "expected '=' or ';' but got <%s>", tokenString(next))
	}
}

// Reads after the identifier.
func (p *parser) scanAssignment(nameTok token) (Statement, error) {
	if string(nameTok.value) == nullKeyword {
		return nil, syntaxErrorf(nameTok, "cannot assign to NULL")
	}

	equal, err := p.requireAny("'='")
	if err != nil {
		return nil, err
	}
	if equal.tokType != tokenTypeEqual {
		return nil, syntaxErrorf(equal, "expected '=' but got <%s>", tokenString(equal))
	}

	value, err := p.scanStatementExpr()
	if err != nil {
		return nil, err
	}
	return Assignment{Name: string(nameTok.value), Value: value}, nil
}

// Reads after the first '*'.
func (p *parser) scanDereferenceAssignment() (Statement, error) {
	depth := 1
	for {
		if _, found := p.checkToken(tokenTypeAsterisk); !found {
			break
		}
		depth++
	}

	nameTok, err := p.requireStatementWord("identifier")
	if err != nil {
		return nil, err
	}

	equal, err := p.requireAny("'='")
	if err != nil {
		return nil, err
	}
	if equal.tokType != tokenTypeEqual {
		return nil, syntaxErrorf(equal, "expected '=' but got <%s>", tokenString(equal))
	}

	value, err := p.scanStatementExpr()
	if err != nil {
		return nil, err
	}
	return DereferenceAssignment{Name: string(nameTok.value), Depth: depth, Value: value}, nil
}

// Reads "EXPR ;" and makes sure nothing follows the semicolon.
func (p *parser) scanStatementExpr() (Expression, error) {
	expr, err := p.scanExpr()
	if err != nil {
		return nil, err
	}

	semicolon, done, err := p.reader.Next()
	if err != nil {
		return nil, err
	}
	if done {
		return nil, compileErrorf(ErrUnexpectedEOL, 0, "unexpected end of line, forgot ';'?")
	}
	if semicolon.tokType != tokenTypeSemicolon {
		return nil, compileErrorf(ErrExpectedOperator, semicolon.location.col,
			"expected ';' but got <%s>", tokenString(semicolon))
	}

	if err := p.requireEnd(); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *parser) requireEnd() error {
	if next, found := p.peekAny(); found {
		return syntaxErrorf(next, "unexpected <%s> after ';'", tokenString(next))
	}
	return nil
}

// Statement level words (declared names, assignment targets) are a matter of
// statement shape, so a wrong token is a syntax error.
func (p *parser) requireStatementWord(what string) (token, error) {
	tok, err := p.requireAny(what)
	if err != nil {
		return token{}, err
	}
	if tok.tokType != tokenTypeWord {
		return token{}, syntaxErrorf(tok, "expected %s but got <%s>", what, tokenString(tok))
	}
	if isTypeKeyword(string(tok.value)) || string(tok.value) == nullKeyword {
		return token{}, syntaxErrorf(tok, "'%s' is reserved", string(tok.value))
	}
	return tok, nil
}

// Returns the next token or a compile error when the line ended early.
func (p *parser) requireAny(what string) (token, error) {
	next, done, err := p.reader.Next()
	if err != nil {
		return token{}, err
	}
	if done {
		return token{}, compileErrorf(ErrUnexpectedEOL, 0, "expected %s but got end of line", what)
	}
	return next, nil
}

func (p *parser) peekAny() (token, bool) {
	next, done, err := p.reader.Peek()
	if err != nil || done {
		return token{}, false
	}
	return next, true
}

func (p *parser) peekToken(tokType tokenType) (token, bool) {
	next, found := p.peekAny()
	if !found || next.tokType != tokType {
		return token{}, false
	}
	return next, true
}

func (p *parser) checkToken(tokType tokenType) (token, bool) {
	tok, found := p.peekToken(tokType)
	if found {
		_, _, _ = p.reader.Next()
	}
	return tok, found
}

func (p *parser) reachedEnd() bool {
	next, found := p.peekAny()
	return !found || next.tokType == tokenTypeSemicolon
}

/*
 ______                              _
|  ____|                            (_)
| |__  __  ___ __  _ __ ___  ___ ___ _  ___  _ __  ___
|  __| \ \/ / '_ \| '__/ _ \/ __/ __| |/ _ \| '_ \/ __|
| |____ >  <| |_) | | |  __/\__ \__ \ | (_) | | | \__ \
|______/_/\_\ .__/|_|  \___||___/___/_|\___/|_| |_|___/
            | |
            |_|
*/

// Entry point for statement expressions. A stray ')' left at the end of the
// expression is swallowed once.
func (p *parser) scanExpr() (Expression, error) {
	if p.reachedEnd() {
		next, found := p.peekAny()
		if found {
			return nil, compileErrorf(ErrUnexpectedToken, next.location.col,
				"expected expression but got <%s>", tokenString(next))
		}
		return nil, compileErrorf(ErrUnexpectedEOL, 0, "expected expression but got end of line")
	}

	expr, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	p.checkToken(tokenTypeRParen)
	return expr, nil
}

// Precedence climbing: parse a prefix, then keep folding in operators that
// bind tighter than bp.
func (p *parser) parseExpr(bp int) (Expression, error) {
	left, err := p.scanPrefix()
	if err != nil {
		return nil, err
	}

	for {
		if p.reachedEnd() {
			break
		}
		if _, found := p.peekToken(tokenTypeRParen); found {
			break
		}

		opTok, _ := p.peekAny()
		op, isOp := getExprBinaryOpType(opTok)
		if !isOp {
			return nil, compileErrorf(ErrExpectedOperator, opTok.location.col,
				"expected operator but got <%s>", tokenString(opTok))
		}
		power := getBindingPower(op)
		if power <= bp {
			break
		}

		_, _, _ = p.reader.Next()
		if _, found := p.peekAny(); !found {
			return nil, compileErrorf(ErrUnexpectedEOL, 0,
				"unexpected end of line after '%s'", op)
		}

		right, err := p.parseExpr(power)
		if err != nil {
			return nil, err
		}
		left = BinaryExpression{Left: left, Right: right, Op: op}
	}

	return left, nil
}

func (p *parser) scanPrefix() (Expression, error) {
	tok, err := p.requireAny("expression")
	if err != nil {
		return nil, err
	}

	switch tok.tokType {
	// Parentheticals
	case tokenTypeLParen:
		if _, found := p.peekAny(); !found {
			return nil, compileErrorf(ErrUnexpectedEOL, 0, "unexpected end of line after '('")
		}
		expr, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		p.checkToken(tokenTypeRParen)
		return expr, nil

	// Negative numbers, eg: -5
	case tokenTypeMinus:
		numTok, err := p.requireAny("number after '-'")
		if err != nil {
			return nil, err
		}
		if numTok.tokType != tokenTypeNumber {
			return nil, compileErrorf(ErrUnexpectedToken, numTok.location.col,
				"expected number after '-' but got <%s>", tokenString(numTok))
		}
		return parseNumber(numTok, true)

	// Address of a variable, eg: &a
	case tokenTypeAmpersand:
		nameTok, err := p.requireExprIdentifier("&")
		if err != nil {
			return nil, err
		}
		return AddressOf{Name: string(nameTok.value)}, nil

	// Dereference, eg: **pp
	case tokenTypeAsterisk:
		depth := 1
		for {
			if _, found := p.checkToken(tokenTypeAsterisk); !found {
				break
			}
			depth++
		}
		nameTok, err := p.requireExprIdentifier("*")
		if err != nil {
			return nil, err
		}
		return Dereference{Name: string(nameTok.value), Depth: depth}, nil

	// Char literals, eg: 'x'
	case tokenTypeSingleQuote:
		return p.scanCharLiteral()

	case tokenTypeNumber:
		return parseNumber(tok, false)

	case tokenTypeWord:
		if string(tok.value) == nullKeyword {
			return NullPointer{}, nil
		}
		return Identifier{Name: string(tok.value)}, nil
	}

	return nil, compileErrorf(ErrUnexpectedToken, tok.location.col,
		"unexpected <%s>", tokenString(tok))
}

// Reads after the opening quote.
func (p *parser) scanCharLiteral() (Expression, error) {
	payload, err := p.requireAny("character")
	if err != nil {
		return nil, err
	}
	if payload.tokType == tokenTypeSingleQuote {
		return nil, compileErrorf(ErrInvalidCharLiteral, payload.location.col, "empty char literal")
	}

	closing, err := p.requireAny("closing quote")
	if err != nil {
		return nil, err
	}
	if closing.tokType != tokenTypeSingleQuote {
		return nil, compileErrorf(ErrInvalidCharLiteral, closing.location.col,
			"expected closing quote but got <%s>", tokenString(closing))
	}

	if len(payload.value) != 1 {
		return nil, compileErrorf(ErrInvalidCharLiteral, payload.location.col,
			"char literal must hold exactly one character, got '%s'", string(payload.value))
	}
	return CharLiteral{Code: int(payload.value[0])}, nil
}

func (p *parser) requireExprIdentifier(after string) (token, error) {
	tok, err := p.requireAny("identifier after '" + after + "'")
	if err != nil {
		return token{}, err
	}
	if tok.tokType != tokenTypeWord || string(tok.value) == nullKeyword {
		return token{}, compileErrorf(ErrUnexpectedToken, tok.location.col,
			"expected identifier after '%s' but got <%s>", after, tokenString(tok))
	}
	return tok, nil
}

func parseNumber(tok token, negative bool) (Expression, error) {
	limit := intMax
	if negative {
		limit = -intMin
	}
	n, err := strconv.Atoi(string(tok.value))
	if err != nil || n > limit {
		return nil, compileErrorf(ErrIntegerRange, tok.location.col,
			"integer literal %s does not fit in an int", string(tok.value))
	}
	if negative {
		n = -n
	}
	return NumberLiteral{Value: n}, nil
}

func tokenString(tok token) string {
	switch tok.tokType {
	case tokenTypeWord:
		return fmt.Sprintf("word: %s", string(tok.value))
	case tokenTypeNumber:
		return fmt.Sprintf("number: %s", string(tok.value))
	case tokenTypeLParen:
		return "("
	case tokenTypeRParen:
		return ")"
	case tokenTypeSemicolon:
		return ";"
	case tokenTypeSingleQuote:
		return "'"
	case tokenTypePlus:
		return "+"
	case tokenTypeMinus:
		return "-"
	case tokenTypeSlash:
		return "/"
	case tokenTypeAsterisk:
		return "*"
	case tokenTypeEqual:
		return "="
	case tokenTypeAmpersand:
		return "&"
	default:
		return "?"
	}
}

func getExprBinaryOpType(tok token) (binaryExprOpType, bool) {
	switch tok.tokType {
	case tokenTypePlus:
		return BinaryExprOpAdd, true
	case tokenTypeMinus:
		return BinaryExprOpSubtract, true
	case tokenTypeAsterisk:
		return BinaryExprOpMultiply, true
	case tokenTypeSlash:
		return BinaryExprOpDivide, true
	}

	return 0, false
}

func getBindingPower(op binaryExprOpType) int {
	switch op {
	case BinaryExprOpAdd, BinaryExprOpSubtract:
		return 10
	case BinaryExprOpMultiply, BinaryExprOpDivide:
		return 20
	default:
		return 0
	}
}
