package lib

import (
	"strings"
)

// Type is a SimpC type name: a base type followed by zero or more '*'.
type Type string

const (
	TypeInt  Type = "int"
	TypeChar Type = "char"

	// TypeNullPointer is the type of the NULL literal until the context it
	// is stored into gives it a real pointer type.
	TypeNullPointer Type = "null-pointer"
)

const (
	intSize     = 2
	charSize    = 1
	pointerSize = 1

	intMin = -(1 << (8*intSize - 1))
	intMax = (1 << (8*intSize - 1)) - 1
)

var baseTypeSizes = map[Type]int{
	TypeInt:  intSize,
	TypeChar: charSize,
}

func isTypeKeyword(word string) bool {
	_, ok := baseTypeSizes[Type(word)]
	return ok
}

func (t Type) IsPointer() bool {
	return strings.HasSuffix(string(t), "*")
}

// Depth is the number of trailing '*' markers.
func (t Type) Depth() int {
	return len(t) - len(strings.TrimRight(string(t), "*"))
}

func (t Type) Base() Type {
	return Type(strings.TrimRight(string(t), "*"))
}

func (t Type) PointerTo() Type {
	return t + "*"
}

// Elem strips one pointer level.
func (t Type) Elem() (Type, bool) {
	if !t.IsPointer() {
		return "", false
	}
	return t[:len(t)-1], true
}

// Deref strips n pointer levels.
func (t Type) Deref(n int) (Type, bool) {
	if t.Depth() < n {
		return "", false
	}
	return t[:len(t)-n], true
}

// Size returns the number of arena bytes a value of type t occupies.
func (t Type) Size() (int, bool) {
	if t.IsPointer() {
		_, ok := baseTypeSizes[t.Base()]
		return pointerSize, ok
	}
	size, ok := baseTypeSizes[t]
	return size, ok
}

func (t Type) String() string {
	return string(t)
}

// TypedValue is a value tagged with its type. Chars hold their character
// code and pointers the target address, 0 meaning NULL.
type TypedValue struct {
	Type  Type
	Value int
}

func (tv TypedValue) IsNull() bool {
	return tv.Type == TypeNullPointer || (tv.Type.IsPointer() && tv.Value == 0)
}

// retypeNull gives a NULL literal the pointer type of its destination.
// Anything else is returned unchanged.
func retypeNull(tv TypedValue, dest Type) TypedValue {
	if tv.Type == TypeNullPointer && dest.IsPointer() {
		return TypedValue{Type: dest, Value: 0}
	}
	return tv
}

func wrapInt(v int) int {
	return int(int16(v))
}
