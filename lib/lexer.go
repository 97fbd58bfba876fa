package lib

import (
	"fmt"
)

type charInfo struct {
	ch       rune
	location charLocation
}

func lex(line string, emit func(token)) error {
	l := newLexer(line, emit)
	return l.scan()
}

type lexer struct {
	src              []rune
	length           int
	currentCharIndex int
	currentLocation  charLocation
	emitCallback     func(token)
}

func newLexer(line string, emit func(token)) *lexer {
	src := []rune(line)
	return &lexer{
		src:              src,
		length:           len(src),
		currentCharIndex: 0,
		currentLocation:  charLocation{col: 1},
		emitCallback:     emit,
	}
}

func (l *lexer) peek(offset int) (charInfo, bool) {
	i := l.currentCharIndex + offset
	if i >= l.length {
		return charInfo{}, false
	}
	loc := l.currentLocation
	loc.col += offset
	return charInfo{ch: l.src[i], location: loc}, true
}

func (l *lexer) advance() (charInfo, bool) {
	info, ok := l.peek(0)
	if ok {
		l.currentCharIndex++
		l.currentLocation.col++
	}
	return info, ok
}

func (l *lexer) scan() error {
	for {
		more, err := l.next()
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}
	return nil
}

func (l *lexer) emitSymbol(tokType tokenType, info charInfo) {
	l.emitCallback(token{tokType: tokType, value: []rune{info.ch}, location: info.location})
}

func (l *lexer) next() (bool, error) {
	chInfo, ok := l.advance()
	if !ok {
		return false, nil
	}
	ch := chInfo.ch

	switch ch {
	case '/':
		ahead, ok := l.peek(0)
		if ok && ahead.ch == '/' {
			// comment runs to the end of the line
			l.currentCharIndex = l.length
			return false, nil
		}
		l.emitSymbol(tokenTypeSlash, chInfo)
	case '+':
		l.emitSymbol(tokenTypePlus, chInfo)
	case '-':
		l.emitSymbol(tokenTypeMinus, chInfo)
	case '*':
		l.emitSymbol(tokenTypeAsterisk, chInfo)
	case '=':
		l.emitSymbol(tokenTypeEqual, chInfo)
	case '&':
		l.emitSymbol(tokenTypeAmpersand, chInfo)
	case '(':
		l.emitSymbol(tokenTypeLParen, chInfo)
	case ')':
		l.emitSymbol(tokenTypeRParen, chInfo)
	case ';':
		l.emitSymbol(tokenTypeSemicolon, chInfo)
	case '\'':
		l.emitSymbol(tokenTypeSingleQuote, chInfo)
	case ' ', '\t', '\r':
	default:
		if isDigit(ch) {
			l.scanWhile(tokenTypeNumber, chInfo, isDigit)
		} else if isWordStart(ch) {
			l.scanWhile(tokenTypeWord, chInfo, isWordChar)
		} else {
			return false, l.errorf(chInfo, "unknown char '%c'", ch)
		}
	}

	return true, nil
}

// Consumes the rest of a word or number whose first char has already been
// read.
func (l *lexer) scanWhile(tokType tokenType, first charInfo, accept func(rune) bool) {
	start := l.currentCharIndex - 1
	for {
		next, ok := l.peek(0)
		if !ok || !accept(next.ch) {
			break
		}
		_, _ = l.advance()
	}
	substr := l.src[start:l.currentCharIndex]
	l.emitCallback(token{tokType: tokType, value: substr, location: first.location})
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isWordStart(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isWordChar(ch rune) bool {
	return isWordStart(ch) || isDigit(ch)
}

func (l *lexer) errorf(at charInfo, msg string, args ...interface{}) error {
	return &Error{
		Category: CategoryLex,
		Kind:     ErrUnknownCharacter,
		Msg:      fmt.Sprintf(msg, args...),
		Col:      at.location.col,
	}
}

// Tokenize lexes one line and describes each token with its column, for
// tooling that wants to show what the parser sees.
func Tokenize(line string) ([]string, error) {
	descriptions := []string{}
	err := lex(line, func(t token) {
		descriptions = append(descriptions, fmt.Sprintf("%d: %s %s", t.location.col, t.kind(), string(t.value)))
	})
	if err != nil {
		return nil, err
	}
	return descriptions, nil
}
