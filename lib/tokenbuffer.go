package lib

// tokenBuffer holds the tokens of one line. The lexer fills it through Write
// and the parser drains it through Next and Peek. Once a token is read it is
// gone; a fresh buffer is made for every line.
type tokenBuffer struct {
	tokens []token
	pos    int
	closed bool
}

func newTokenBuffer() *tokenBuffer {
	return &tokenBuffer{
		tokens: []token{},
		pos:    0,
		closed: false,
	}
}

func (tb *tokenBuffer) Next() (tok token, done bool, err error) {
	tok, done, err = tb.Peek()
	if !done && err == nil {
		tb.pos++
	}
	return tok, done, err
}

func (tb *tokenBuffer) Peek() (token, bool, error) {
	if tb.pos >= len(tb.tokens) {
		if !tb.closed {
			return token{}, false, errBufferOpen
		}
		return token{}, true, nil
	}
	return tb.tokens[tb.pos], false, nil
}

func (tb *tokenBuffer) Write(tok token) {
	tb.tokens = append(tb.tokens, tok)
}

func (tb *tokenBuffer) Done() {
	tb.closed = true
}

