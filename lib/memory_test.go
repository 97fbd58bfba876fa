package lib

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestMemory(t *testing.T) *Memory {
	config := DefaultConfig()
	config.Seed = 42
	mem, err := NewMemory(config)
	require.NoError(t, err)
	return mem
}

type recordingObserver struct {
	events  []SlotEvent
	cleared int
}

func (r *recordingObserver) SlotChanged(ev SlotEvent) {
	r.events = append(r.events, ev)
}

func (r *recordingObserver) MemoryCleared() {
	r.cleared++
}

func requireKind(t *testing.T, err error, category ErrorCategory, kind error) {
	require.Error(t, err)
	require.True(t, errors.Is(err, kind), "got %v", err)
	actual, ok := CategoryOf(err)
	require.True(t, ok)
	require.Equal(t, category, actual)
}

func TestMemoryInitialize(t *testing.T) {
	mem := newTestMemory(t)

	err := mem.Initialize("a", TypeInt, TypedValue{Type: TypeInt, Value: 5})
	require.NoError(t, err)
	require.True(t, mem.HasIdentifier("a"))

	tv, err := mem.GetTypedValue("a")
	require.NoError(t, err)
	require.Equal(t, TypedValue{Type: TypeInt, Value: 5}, tv)
	require.Equal(t, 3, mem.BumpPointer())
}

func TestMemoryBumpAllocation(t *testing.T) {
	mem := newTestMemory(t)

	require.NoError(t, mem.Declare("a", TypeInt))
	require.NoError(t, mem.Declare("c", TypeChar))
	require.NoError(t, mem.Declare("p", Type("int*")))
	require.NoError(t, mem.Declare("b", TypeInt))

	slots := mem.Slots()
	require.Len(t, slots, 4)
	require.Equal(t, Slot{Identifier: "a", Type: TypeInt, Address: 1}, slots[0])
	require.Equal(t, Slot{Identifier: "c", Type: TypeChar, Address: 3}, slots[1])
	require.Equal(t, Slot{Identifier: "p", Type: "int*", Address: 4}, slots[2])
	require.Equal(t, Slot{Identifier: "b", Type: TypeInt, Address: 5}, slots[3])
	require.Equal(t, 7, mem.BumpPointer())

	slot, ok := mem.SlotAt(4)
	require.True(t, ok)
	require.Equal(t, "p", slot.Identifier)

	_, ok = mem.SlotAt(2)
	require.False(t, ok)
	_, ok = mem.SlotAt(0)
	require.False(t, ok)
}

func TestMemoryDeclarePlaceholderInRange(t *testing.T) {
	mem := newTestMemory(t)

	require.NoError(t, mem.Declare("c", TypeChar))
	tv, err := mem.GetTypedValue("c")
	require.NoError(t, err)
	require.Equal(t, TypeChar, tv.Type)
	require.GreaterOrEqual(t, tv.Value, int(' '))
	require.LessOrEqual(t, tv.Value, int('~'))

	require.NoError(t, mem.Declare("a", TypeInt))
	tv, err = mem.GetTypedValue("a")
	require.NoError(t, err)
	require.GreaterOrEqual(t, tv.Value, -32768)
	require.LessOrEqual(t, tv.Value, 32767)

	require.NoError(t, mem.Declare("p", "char**"))
	tv, err = mem.GetTypedValue("p")
	require.NoError(t, err)
	require.Equal(t, Type("char**"), tv.Type)
	require.GreaterOrEqual(t, tv.Value, 0)
	require.LessOrEqual(t, tv.Value, 255)
}

func TestMemoryDuplicateDeclaration(t *testing.T) {
	mem := newTestMemory(t)

	require.NoError(t, mem.Declare("a", TypeInt))
	requireKind(t, mem.Declare("a", TypeChar), CategoryCompile, ErrDuplicateDeclaration)
	requireKind(t, mem.Initialize("a", TypeInt, TypedValue{Type: TypeInt, Value: 1}),
		CategoryCompile, ErrDuplicateDeclaration)
	require.Equal(t, 3, mem.BumpPointer())
}

func TestMemoryUnknownType(t *testing.T) {
	mem := newTestMemory(t)

	requireKind(t, mem.Declare("f", "float"), CategoryCompile, ErrUnknownType)
	requireKind(t, mem.Declare("p", "float*"), CategoryCompile, ErrUnknownType)
	requireKind(t, mem.Declare("n", TypeNullPointer), CategoryCompile, ErrUnknownType)
	require.False(t, mem.HasIdentifier("f"))
}

func TestMemoryInitializeTypeMismatch(t *testing.T) {
	mem := newTestMemory(t)

	err := mem.Initialize("a", TypeInt, TypedValue{Type: TypeChar, Value: 'x'})
	requireKind(t, err, CategoryRuntime, ErrTypeMismatch)
	require.False(t, mem.HasIdentifier("a"))
	require.Equal(t, 1, mem.BumpPointer())
}

func TestMemoryFillExactlyThenOverflow(t *testing.T) {
	config := Config{Rows: 2, BytesPerRow: 4, Seed: 1}
	mem, err := NewMemory(config)
	require.NoError(t, err)

	// 8 bytes: 3 ints and 2 chars
	require.NoError(t, mem.Declare("a", TypeInt))
	require.NoError(t, mem.Declare("b", TypeInt))
	require.NoError(t, mem.Declare("c", TypeInt))
	require.NoError(t, mem.Declare("d", TypeChar))
	require.NoError(t, mem.Declare("e", TypeChar))
	require.Equal(t, mem.Capacity()+1, mem.BumpPointer())

	requireKind(t, mem.Declare("f", TypeChar), CategoryRuntime, ErrOutOfMemory)
	require.False(t, mem.HasIdentifier("f"))
	require.Equal(t, mem.Capacity()+1, mem.BumpPointer())
}

func TestMemoryIntNeedsTwoBytes(t *testing.T) {
	config := Config{Rows: 1, BytesPerRow: 3, Seed: 1}
	mem, err := NewMemory(config)
	require.NoError(t, err)

	require.NoError(t, mem.Declare("a", TypeInt))
	requireKind(t, mem.Declare("b", TypeInt), CategoryRuntime, ErrOutOfMemory)
	require.NoError(t, mem.Declare("c", TypeChar))
}

func TestMemorySetTypedValue(t *testing.T) {
	mem := newTestMemory(t)
	require.NoError(t, mem.Declare("a", TypeInt))

	require.NoError(t, mem.SetTypedValue("a", TypedValue{Type: TypeInt, Value: -7}))
	tv, err := mem.GetTypedValue("a")
	require.NoError(t, err)
	require.Equal(t, -7, tv.Value)

	requireKind(t, mem.SetTypedValue("a", TypedValue{Type: TypeChar, Value: 'x'}),
		CategoryRuntime, ErrTypeMismatch)
	requireKind(t, mem.SetTypedValue("zz", TypedValue{Type: TypeInt, Value: 1}),
		CategoryRuntime, ErrUnknownVariable)

	tv, err = mem.GetTypedValue("a")
	require.NoError(t, err)
	require.Equal(t, -7, tv.Value)
}

func TestMemoryPointerRoundTrip(t *testing.T) {
	mem := newTestMemory(t)
	require.NoError(t, mem.Initialize("a", TypeInt, TypedValue{Type: TypeInt, Value: 1}))

	ptr, err := mem.GetTypedPointerTo("a")
	require.NoError(t, err)
	require.Equal(t, TypedValue{Type: "int*", Value: 1}, ptr)
	require.NoError(t, mem.Initialize("p", "int*", ptr))

	require.NoError(t, mem.SetTypedValueDereference("p", 1, TypedValue{Type: TypeInt, Value: 5}))
	tv, err := mem.GetTypedValue("a")
	require.NoError(t, err)
	require.Equal(t, 5, tv.Value)

	tv, err = mem.GetDereferencedTypedValue("p", 1)
	require.NoError(t, err)
	require.Equal(t, TypedValue{Type: TypeInt, Value: 5}, tv)
}

func TestMemoryDoublePointerChase(t *testing.T) {
	mem := newTestMemory(t)
	require.NoError(t, mem.Initialize("a", TypeInt, TypedValue{Type: TypeInt, Value: 1}))
	require.NoError(t, mem.Initialize("p", "int*", TypedValue{Type: "int*", Value: 1}))
	require.NoError(t, mem.Initialize("pp", "int**", TypedValue{Type: "int**", Value: 3}))

	require.NoError(t, mem.SetTypedValueDereference("pp", 2, TypedValue{Type: TypeInt, Value: 7}))
	tv, err := mem.GetTypedValue("a")
	require.NoError(t, err)
	require.Equal(t, 7, tv.Value)

	tv, err = mem.GetDereferencedTypedValue("pp", 1)
	require.NoError(t, err)
	require.Equal(t, TypedValue{Type: "int*", Value: 1}, tv)
}

func TestMemoryDereferenceErrors(t *testing.T) {
	mem := newTestMemory(t)
	require.NoError(t, mem.Initialize("a", TypeInt, TypedValue{Type: TypeInt, Value: 1}))
	require.NoError(t, mem.Initialize("n", "int*", TypedValue{Type: "int*", Value: 0}))
	// address 2 is the second byte of a
	require.NoError(t, mem.Initialize("bad", "int*", TypedValue{Type: "int*", Value: 2}))

	_, err := mem.GetDereferencedTypedValue("a", 1)
	requireKind(t, err, CategoryRuntime, ErrNotAPointer)

	_, err = mem.GetDereferencedTypedValue("n", 1)
	requireKind(t, err, CategoryRuntime, ErrNullDereference)

	_, err = mem.GetDereferencedTypedValue("bad", 1)
	requireKind(t, err, CategoryRuntime, ErrInvalidAddress)

	_, err = mem.GetDereferencedTypedValue("nope", 1)
	requireKind(t, err, CategoryRuntime, ErrUnknownVariable)

	err = mem.SetTypedValueDereference("n", 1, TypedValue{Type: TypeInt, Value: 3})
	requireKind(t, err, CategoryRuntime, ErrNullDereference)
}

func TestMemoryDereferenceChecksEveryHop(t *testing.T) {
	mem := newTestMemory(t)
	require.NoError(t, mem.Initialize("a", TypeInt, TypedValue{Type: TypeInt, Value: 1}))
	// A garbage pointer that happens to land on a slot of the wrong type.
	require.NoError(t, mem.Initialize("cp", "char*", TypedValue{Type: "char*", Value: 1}))

	_, err := mem.GetDereferencedTypedValue("cp", 1)
	requireKind(t, err, CategoryRuntime, ErrTypeMismatch)

	err = mem.SetTypedValueDereference("cp", 1, TypedValue{Type: TypeChar, Value: 'x'})
	requireKind(t, err, CategoryRuntime, ErrTypeMismatch)

	tv, err := mem.GetTypedValue("a")
	require.NoError(t, err)
	require.Equal(t, 1, tv.Value)
}

func TestMemoryDereferenceAssignIntermediateDepthMismatch(t *testing.T) {
	mem := newTestMemory(t)
	require.NoError(t, mem.Initialize("a", TypeInt, TypedValue{Type: TypeInt, Value: 1}))
	require.NoError(t, mem.Initialize("c", TypeChar, TypedValue{Type: TypeChar, Value: 'c'}))
	require.NoError(t, mem.Initialize("cp", "char*", TypedValue{Type: "char*", Value: 3}))
	require.NoError(t, mem.Initialize("cpp", "char**", TypedValue{Type: "char**", Value: 4}))

	// *cpp is a char*, so an int cannot go there
	err := mem.SetTypedValueDereference("cpp", 1, TypedValue{Type: TypeInt, Value: 9})
	requireKind(t, err, CategoryRuntime, ErrTypeMismatch)

	// nor an int* (it would need char*)
	err = mem.SetTypedValueDereference("cpp", 1, TypedValue{Type: "int*", Value: 1})
	requireKind(t, err, CategoryRuntime, ErrTypeMismatch)

	// three hops is deeper than char** allows
	err = mem.SetTypedValueDereference("cpp", 3, TypedValue{Type: TypeChar, Value: 'z'})
	requireKind(t, err, CategoryRuntime, ErrNotAPointer)

	require.NoError(t, mem.SetTypedValueDereference("cpp", 2, TypedValue{Type: TypeChar, Value: 'z'}))
	tv, err := mem.GetTypedValue("c")
	require.NoError(t, err)
	require.Equal(t, TypedValue{Type: TypeChar, Value: 'z'}, tv)
}

func TestMemoryTwosComplementEncoding(t *testing.T) {
	mem := newTestMemory(t)
	require.NoError(t, mem.Initialize("a", TypeInt, TypedValue{Type: TypeInt, Value: -2}))
	require.NoError(t, mem.Initialize("b", TypeInt, TypedValue{Type: TypeInt, Value: 258}))
	require.NoError(t, mem.Initialize("c", TypeChar, TypedValue{Type: TypeChar, Value: 'A'}))
	require.NoError(t, mem.Initialize("p", "int*", TypedValue{Type: "int*", Value: 3}))

	slots := mem.Slots()
	require.Equal(t, []string{"11111111", "11111110"}, Bits(mem.Bytes(slots[0])))
	require.Equal(t, []string{"00000001", "00000010"}, Bits(mem.Bytes(slots[1])))
	require.Equal(t, []string{"01000001"}, Bits(mem.Bytes(slots[2])))
	require.Equal(t, []string{"00000011"}, Bits(mem.Bytes(slots[3])))
}

func TestMemoryClear(t *testing.T) {
	mem := newTestMemory(t)
	obs := &recordingObserver{}
	mem.Observe(obs)

	require.NoError(t, mem.Declare("a", TypeInt))
	require.NoError(t, mem.Declare("b", TypeChar))
	mem.Clear()

	require.False(t, mem.HasIdentifier("a"))
	require.False(t, mem.HasIdentifier("b"))
	require.Len(t, mem.Slots(), 0)
	require.Equal(t, 1, mem.BumpPointer())
	require.Equal(t, 1, obs.cleared)

	require.NoError(t, mem.Declare("c", TypeChar))
	slot, ok := mem.SlotAt(1)
	require.True(t, ok)
	require.Equal(t, "c", slot.Identifier)
}

func TestMemoryNotifiesObservers(t *testing.T) {
	mem := newTestMemory(t)
	obs := &recordingObserver{}
	mem.Observe(obs)

	require.NoError(t, mem.Initialize("a", TypeInt, TypedValue{Type: TypeInt, Value: 1}))
	require.NoError(t, mem.Initialize("p", "int*", TypedValue{Type: "int*", Value: 1}))
	require.NoError(t, mem.SetTypedValue("a", TypedValue{Type: TypeInt, Value: 2}))
	require.NoError(t, mem.SetTypedValueDereference("p", 1, TypedValue{Type: TypeInt, Value: 3}))

	// failures do not notify
	require.Error(t, mem.SetTypedValue("a", TypedValue{Type: TypeChar, Value: 1}))

	require.Equal(t, []SlotEvent{
		{Identifier: "a", Value: TypedValue{Type: TypeInt, Value: 1}, Address: 1},
		{Identifier: "p", Value: TypedValue{Type: "int*", Value: 1}, Address: 3},
		{Identifier: "a", Value: TypedValue{Type: TypeInt, Value: 2}, Address: 1},
		{Identifier: "a", Value: TypedValue{Type: TypeInt, Value: 3}, Address: 1},
	}, obs.events)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	require.Equal(t, 40, DefaultConfig().Capacity())
	require.NoError(t, Config{Rows: 51, BytesPerRow: 5}.Validate())
	require.Error(t, Config{Rows: 64, BytesPerRow: 4}.Validate())
	require.Error(t, Config{Rows: 0, BytesPerRow: 4}.Validate())
	require.Error(t, Config{Rows: 4, BytesPerRow: -1}.Validate())

	_, err := NewMemory(Config{Rows: 100, BytesPerRow: 100})
	require.Error(t, err)
}
