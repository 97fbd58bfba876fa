package lib

// Evaluate computes the typed value of expr. It only reads memory.
func Evaluate(expr Expression, mem MemoryReader) (TypedValue, error) {
	switch e := expr.(type) {
	case NumberLiteral:
		return TypedValue{Type: TypeInt, Value: e.Value}, nil
	case CharLiteral:
		return TypedValue{Type: TypeChar, Value: e.Code}, nil
	case NullPointer:
		return TypedValue{Type: TypeNullPointer, Value: 0}, nil
	case Identifier:
		if !mem.HasIdentifier(e.Name) {
			return TypedValue{}, runtimeErrorf(ErrUnknownVariable, "unknown variable %s", e.Name)
		}
		return mem.GetTypedValue(e.Name)
	case AddressOf:
		if !mem.HasIdentifier(e.Name) {
			return TypedValue{}, runtimeErrorf(ErrUnknownVariable, "unknown variable %s", e.Name)
		}
		return mem.GetTypedPointerTo(e.Name)
	case Dereference:
		if !mem.HasIdentifier(e.Name) {
			return TypedValue{}, runtimeErrorf(ErrUnknownVariable, "unknown variable %s", e.Name)
		}
		return mem.GetDereferencedTypedValue(e.Name, e.Depth)
	case BinaryExpression:
		return evalBinary(e, mem)
	default:
		return TypedValue{}, runtimeErrorf(ErrOperatorNotImplemented, "cannot evaluate %T", expr)
	}
}

func evalBinary(e BinaryExpression, mem MemoryReader) (TypedValue, error) {
	left, err := Evaluate(e.Left, mem)
	if err != nil {
		return TypedValue{}, err
	}
	right, err := Evaluate(e.Right, mem)
	if err != nil {
		return TypedValue{}, err
	}

	if left.Type != right.Type {
		return TypedValue{}, runtimeErrorf(ErrTypeMismatch,
			"mismatching types for '%s': %s and %s", e.Op, left.Type, right.Type)
	}
	if left.Type != TypeInt {
		return TypedValue{}, runtimeErrorf(ErrOperatorNotImplemented,
			"operator '%s' not implemented for '%s'", e.Op, left.Type)
	}

	var v int
	switch e.Op {
	case BinaryExprOpAdd:
		v = left.Value + right.Value
	case BinaryExprOpSubtract:
		v = left.Value - right.Value
	case BinaryExprOpMultiply:
		v = left.Value * right.Value
	case BinaryExprOpDivide:
		if right.Value == 0 {
			return TypedValue{}, runtimeErrorf(ErrDivisionByZero, "division by zero")
		}
		// Go's integer division truncates toward zero, as C does.
		v = left.Value / right.Value
	default:
		return TypedValue{}, runtimeErrorf(ErrOperatorNotImplemented, "unknown operator '%s'", e.Op)
	}

	return TypedValue{Type: TypeInt, Value: wrapInt(v)}, nil
}
