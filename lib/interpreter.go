package lib

import (
	"fmt"
	"strings"
)

type Result int

const (
	ResultOK Result = iota
	// ResultNoop is a blank or comment-only line. Steppers skip it.
	ResultNoop
	ResultFailed
)

func (r Result) String() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultNoop:
		return "no statement"
	default:
		return "failed"
	}
}

// Exec parses and runs one line. A failing statement leaves memory as it was
// before the line started.
func Exec(line string, mem *Memory) (Result, error) {
	stmt, err := Parse(strings.TrimSpace(line))
	if err != nil {
		return ResultFailed, err
	}
	return ExecStatement(stmt, mem)
}

func ExecStatement(stmt Statement, mem *Memory) (Result, error) {
	var err error
	switch s := stmt.(type) {
	case EmptyStatement:
		return ResultNoop, nil
	case Declaration:
		err = execDeclaration(s, mem)
	case Assignment:
		err = execAssignment(s, mem)
	case DereferenceAssignment:
		err = execDereferenceAssignment(s, mem)
	default:
		err = fmt.Errorf("statement %T not supported", stmt)
	}

	if err != nil {
		return ResultFailed, err
	}
	return ResultOK, nil
}

func execDeclaration(d Declaration, mem *Memory) error {
	if d.Init == nil {
		return mem.Declare(d.Name, d.Type)
	}

	tv, err := Evaluate(d.Init, mem)
	if err != nil {
		return err
	}
	return mem.Initialize(d.Name, d.Type, retypeNull(tv, d.Type))
}

func execAssignment(a Assignment, mem *Memory) error {
	if !mem.HasIdentifier(a.Name) {
		return runtimeErrorf(ErrUnknownVariable, "unknown variable %s", a.Name)
	}

	tv, err := Evaluate(a.Value, mem)
	if err != nil {
		return err
	}
	old, err := mem.GetTypedValue(a.Name)
	if err != nil {
		return err
	}
	return mem.SetTypedValue(a.Name, retypeNull(tv, old.Type))
}

func execDereferenceAssignment(d DereferenceAssignment, mem *Memory) error {
	if !mem.HasIdentifier(d.Name) {
		return runtimeErrorf(ErrUnknownVariable, "unknown variable %s", d.Name)
	}

	tv, err := Evaluate(d.Value, mem)
	if err != nil {
		return err
	}
	root, err := mem.GetTypedValue(d.Name)
	if err != nil {
		return err
	}
	if target, ok := root.Type.Deref(d.Depth); ok {
		tv = retypeNull(tv, target)
	}
	return mem.SetTypedValueDereference(d.Name, d.Depth, tv)
}
