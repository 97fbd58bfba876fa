package lib

type tokenType int

const (
	tokenTypeWord tokenType = iota
	tokenTypeNumber
	tokenTypeLParen
	tokenTypeRParen
	tokenTypeSemicolon
	tokenTypeSingleQuote
	tokenTypePlus
	tokenTypeMinus
	tokenTypeSlash
	tokenTypeAsterisk
	tokenTypeEqual
	tokenTypeAmpersand
)

type charLocation struct {
	col int
}

type token struct {
	tokType  tokenType
	value    []rune
	location charLocation
}

func (t token) isOperator() bool {
	switch t.tokType {
	case tokenTypePlus, tokenTypeMinus, tokenTypeSlash, tokenTypeAsterisk,
		tokenTypeEqual, tokenTypeAmpersand:
		return true
	default:
		return false
	}
}

func (t token) isBracket() bool {
	return t.tokType == tokenTypeLParen || t.tokType == tokenTypeRParen
}

// kind is the coarse token class: word, number, operator, bracket,
// semicolon or single-quote.
func (t token) kind() string {
	switch {
	case t.isOperator():
		return "operator"
	case t.isBracket():
		return "bracket"
	case t.tokType == tokenTypeWord:
		return "word"
	case t.tokType == tokenTypeNumber:
		return "number"
	case t.tokType == tokenTypeSemicolon:
		return "semicolon"
	default:
		return "single-quote"
	}
}
