package lib

type binaryExprOpType int

const (
	BinaryExprOpAdd binaryExprOpType = iota
	BinaryExprOpSubtract
	BinaryExprOpMultiply
	BinaryExprOpDivide
)

func (op binaryExprOpType) String() string {
	switch op {
	case BinaryExprOpAdd:
		return "+"
	case BinaryExprOpSubtract:
		return "-"
	case BinaryExprOpMultiply:
		return "*"
	case BinaryExprOpDivide:
		return "/"
	default:
		return "?"
	}
}

type Statement interface {
	isStatement()
}

func (d Declaration) isStatement()           {}
func (a Assignment) isStatement()            {}
func (d DereferenceAssignment) isStatement() {}
func (e EmptyStatement) isStatement()        {}

type Expression interface {
	isExpression()
}

func (n NumberLiteral) isExpression()    {}
func (c CharLiteral) isExpression()      {}
func (i Identifier) isExpression()       {}
func (n NullPointer) isExpression()      {}
func (a AddressOf) isExpression()        {}
func (d Dereference) isExpression()      {}
func (b BinaryExpression) isExpression() {}

type NumberLiteral struct {
	Value int
}

// CharLiteral holds the character code of a quoted character.
type CharLiteral struct {
	Code int
}

type Identifier struct {
	Name string
}

type NullPointer struct{}

// AddressOf is &Name.
type AddressOf struct {
	Name string
}

// Dereference is Name prefixed by Depth stars.
type Dereference struct {
	Name  string
	Depth int
}

type BinaryExpression struct {
	Left  Expression
	Right Expression
	Op    binaryExprOpType
}

// Declaration is "TYPE NAME;" or "TYPE NAME = INIT;". Init is nil for the
// bare form.
type Declaration struct {
	Type Type
	Name string
	Init Expression
}

type Assignment struct {
	Name  string
	Value Expression
}

// DereferenceAssignment is "*...*NAME = VALUE;" with Depth stars.
type DereferenceAssignment struct {
	Name  string
	Depth int
	Value Expression
}

// EmptyStatement is a blank or comment-only line.
type EmptyStatement struct{}
