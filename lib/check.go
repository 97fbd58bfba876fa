package lib

import (
	"fmt"
	"strings"
)

// TypeEnv is the static view of a program: declared names and their types,
// plus a bump pointer that grows the same way the real arena would.
type TypeEnv struct {
	Types    map[string]Type
	capacity int
	bump     int
}

type TypeEnvBuilder struct {
	env TypeEnv
}

func NewTypeEnvBuilder(config Config) *TypeEnvBuilder {
	return &TypeEnvBuilder{
		env: TypeEnv{
			Types:    map[string]Type{},
			capacity: config.Capacity(),
			bump:     1,
		},
	}
}

// CheckProgram type-checks every line of source without running it. Each
// failing line produces one error annotated with its line number; checking
// continues with the next line.
func CheckProgram(config Config, source string) []error {
	builder := NewTypeEnvBuilder(config)
	errs := []error{}
	for i, line := range strings.Split(source, "\n") {
		stmt, err := Parse(strings.TrimSpace(line))
		if err == nil {
			err = builder.handleStmt(stmt)
		}
		if err != nil {
			errs = append(errs, withLine(err, i+1, strings.TrimSpace(line)))
		}
	}
	return errs
}

func (b *TypeEnvBuilder) Env() TypeEnv {
	return b.env
}

func (b *TypeEnvBuilder) handleStmt(stmt Statement) error {
	switch s := stmt.(type) {
	case Declaration:
		return b.handleDeclaration(s)
	case Assignment:
		return b.handleAssignment(s)
	case DereferenceAssignment:
		return b.handleDereferenceAssignment(s)
	default:
		// Ignore blank lines
		return nil
	}
}

func (b *TypeEnvBuilder) handleDeclaration(d Declaration) error {
	size, ok := d.Type.Size()
	if !ok {
		return compileErrorf(ErrUnknownType, 0, "unknown type %s", d.Type)
	}
	if _, exists := b.env.Types[d.Name]; exists {
		return compileErrorf(ErrDuplicateDeclaration, 0, "%s already declared", d.Name)
	}

	if d.Init != nil {
		typ, err := b.typeOf(d.Init)
		if err != nil {
			return err
		}
		if err := requireAssignable(d.Name, d.Type, typ); err != nil {
			return err
		}
	}

	if b.env.bump+size > b.env.capacity+1 {
		return runtimeErrorf(ErrOutOfMemory,
			"out of memory, %s needs %d bytes but only %d are left",
			d.Name, size, b.env.capacity+1-b.env.bump)
	}

	b.env.Types[d.Name] = d.Type
	b.env.bump += size
	return nil
}

func (b *TypeEnvBuilder) handleAssignment(a Assignment) error {
	declared, ok := b.env.Types[a.Name]
	if !ok {
		return runtimeErrorf(ErrUnknownVariable, "unknown variable %s", a.Name)
	}
	typ, err := b.typeOf(a.Value)
	if err != nil {
		return err
	}
	return requireAssignable(a.Name, declared, typ)
}

func (b *TypeEnvBuilder) handleDereferenceAssignment(d DereferenceAssignment) error {
	typ, err := b.typeOf(d.Value)
	if err != nil {
		return err
	}
	target, err := b.derefType(d.Name, d.Depth)
	if err != nil {
		return err
	}
	return requireAssignable(derefString(d.Name, d.Depth), target, typ)
}

func (b *TypeEnvBuilder) typeOf(expr Expression) (Type, error) {
	switch e := expr.(type) {
	case NumberLiteral:
		return TypeInt, nil
	case CharLiteral:
		return TypeChar, nil
	case NullPointer:
		return TypeNullPointer, nil
	case Identifier:
		return b.lookup(e.Name)
	case AddressOf:
		typ, err := b.lookup(e.Name)
		if err != nil {
			return "", err
		}
		return typ.PointerTo(), nil
	case Dereference:
		return b.derefType(e.Name, e.Depth)
	case BinaryExpression:
		left, err := b.typeOf(e.Left)
		if err != nil {
			return "", err
		}
		right, err := b.typeOf(e.Right)
		if err != nil {
			return "", err
		}
		if left != right {
			return "", runtimeErrorf(ErrTypeMismatch,
				"mismatching types for '%s': %s and %s", e.Op, left, right)
		}
		if left != TypeInt {
			return "", runtimeErrorf(ErrOperatorNotImplemented,
				"operator '%s' not implemented for '%s'", e.Op, left)
		}
		return TypeInt, nil
	default:
		return "", fmt.Errorf("expression %T not supported", expr)
	}
}

func (b *TypeEnvBuilder) lookup(name string) (Type, error) {
	typ, ok := b.env.Types[name]
	if !ok {
		return "", runtimeErrorf(ErrUnknownVariable, "unknown variable %s", name)
	}
	return typ, nil
}

func (b *TypeEnvBuilder) derefType(name string, depth int) (Type, error) {
	typ, err := b.lookup(name)
	if err != nil {
		return "", err
	}
	target, ok := typ.Deref(depth)
	if !ok {
		return "", runtimeErrorf(ErrNotAPointer,
			"cannot dereference %s %d times, its type is %s", name, depth, typ)
	}
	return target, nil
}

func requireAssignable(target string, want Type, got Type) error {
	if got == TypeNullPointer && want.IsPointer() {
		return nil
	}
	if got != want {
		return mismatch(target, want, TypedValue{Type: got})
	}
	return nil
}
