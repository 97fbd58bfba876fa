package lib

import "errors"

var errBufferOpen = errors.New("token buffer read before the lexer finished")

type tokenReader interface {
	Next() (tok token, done bool, err error)
	Peek() (tok token, done bool, err error)
}
