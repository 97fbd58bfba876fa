package lib

import (
	"math/rand"
	"sort"
)

// Slot is a named, typed region of the arena.
type Slot struct {
	Identifier string
	Type       Type
	Address    int
}

// SlotEvent is sent to observers after every write to a slot.
type SlotEvent struct {
	Identifier string
	Value      TypedValue
	Address    int
}

// Observer lets a renderer redraw only what changed.
type Observer interface {
	SlotChanged(ev SlotEvent)
	MemoryCleared()
}

// MemoryReader is what expression evaluation needs from memory.
type MemoryReader interface {
	HasIdentifier(identifier string) bool
	GetTypedValue(identifier string) (TypedValue, error)
	GetDereferencedTypedValue(identifier string, depth int) (TypedValue, error)
	GetTypedPointerTo(identifier string) (TypedValue, error)
}

// Memory is a simulated stack: a flat byte arena with a bump allocator and a
// symbol table from address to identifier. Address 0 is NULL and never
// belongs to a slot. Nothing is freed until Clear.
type Memory struct {
	config    Config
	arena     []byte
	slots     map[string]*Slot
	symbols   map[int]string
	bump      int
	rng       *rand.Rand
	observers []Observer
}

func NewMemory(config Config) (*Memory, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Memory{
		config:  config,
		arena:   make([]byte, config.Capacity()+1),
		slots:   map[string]*Slot{},
		symbols: map[int]string{},
		bump:    1,
		rng:     rand.New(rand.NewSource(config.seed())),
	}, nil
}

func (m *Memory) Config() Config {
	return m.config
}

func (m *Memory) Capacity() int {
	return m.config.Capacity()
}

// BumpPointer is the next free address.
func (m *Memory) BumpPointer() int {
	return m.bump
}

func (m *Memory) Observe(o Observer) {
	m.observers = append(m.observers, o)
}

func (m *Memory) HasIdentifier(identifier string) bool {
	_, ok := m.slots[identifier]
	return ok
}

// Declare allocates a slot holding a random value, the way an uninitialized
// C local holds whatever was on the stack.
func (m *Memory) Declare(identifier string, typ Type) error {
	if err := m.checkAllocation(identifier, typ); err != nil {
		return err
	}
	return m.allocate(identifier, typ, m.placeholder(typ))
}

func (m *Memory) Initialize(identifier string, typ Type, tv TypedValue) error {
	if err := m.checkAllocation(identifier, typ); err != nil {
		return err
	}
	if tv.Type != typ {
		return mismatch(identifier, typ, tv)
	}
	return m.allocate(identifier, typ, tv)
}

func (m *Memory) SetTypedValue(identifier string, tv TypedValue) error {
	slot, err := m.slot(identifier)
	if err != nil {
		return err
	}
	if tv.Type != slot.Type {
		return mismatch(identifier, slot.Type, tv)
	}
	return m.write(slot, tv)
}

// SetTypedValueDereference follows depth pointers starting at identifier and
// stores tv in the slot it lands on. The declared type must reach tv's type
// after depth levels, and every hop is checked again against the slot it
// actually reaches.
func (m *Memory) SetTypedValueDereference(identifier string, depth int, tv TypedValue) error {
	root, err := m.slot(identifier)
	if err != nil {
		return err
	}
	want, ok := root.Type.Deref(depth)
	if !ok {
		return runtimeErrorf(ErrNotAPointer,
			"cannot dereference %s %d times, its type is %s", identifier, depth, root.Type)
	}
	if tv.Type != want {
		return mismatch(derefString(identifier, depth), want, tv)
	}

	target, err := m.chase(root, depth)
	if err != nil {
		return err
	}
	return m.write(target, tv)
}

func (m *Memory) GetTypedValue(identifier string) (TypedValue, error) {
	slot, err := m.slot(identifier)
	if err != nil {
		return TypedValue{}, err
	}
	return m.read(slot), nil
}

func (m *Memory) GetDereferencedTypedValue(identifier string, depth int) (TypedValue, error) {
	root, err := m.slot(identifier)
	if err != nil {
		return TypedValue{}, err
	}
	target, err := m.chase(root, depth)
	if err != nil {
		return TypedValue{}, err
	}
	return m.read(target), nil
}

func (m *Memory) GetTypedPointerTo(identifier string) (TypedValue, error) {
	slot, err := m.slot(identifier)
	if err != nil {
		return TypedValue{}, err
	}
	return TypedValue{Type: slot.Type.PointerTo(), Value: slot.Address}, nil
}

// Slots returns every slot ordered by address.
func (m *Memory) Slots() []Slot {
	result := make([]Slot, 0, len(m.slots))
	for _, s := range m.slots {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Address < result[j].Address
	})
	return result
}

// SlotAt returns the slot starting at address.
func (m *Memory) SlotAt(address int) (Slot, bool) {
	name, ok := m.symbols[address]
	if !ok {
		return Slot{}, false
	}
	return *m.slots[name], true
}

// Bytes returns a copy of the arena bytes owned by the slot.
func (m *Memory) Bytes(slot Slot) []byte {
	size, _ := slot.Type.Size()
	b := make([]byte, size)
	copy(b, m.arena[slot.Address:slot.Address+size])
	return b
}

// Clear drops every slot and rewinds the bump pointer to 1.
func (m *Memory) Clear() {
	for i := range m.arena {
		m.arena[i] = 0
	}
	m.slots = map[string]*Slot{}
	m.symbols = map[int]string{}
	m.bump = 1
	for _, o := range m.observers {
		o.MemoryCleared()
	}
}

func (m *Memory) slot(identifier string) (*Slot, error) {
	slot, ok := m.slots[identifier]
	if !ok {
		return nil, runtimeErrorf(ErrUnknownVariable, "unknown variable %s", identifier)
	}
	return slot, nil
}

func (m *Memory) checkAllocation(identifier string, typ Type) error {
	size, ok := typ.Size()
	if !ok {
		return compileErrorf(ErrUnknownType, 0, "unknown type %s", typ)
	}
	if m.HasIdentifier(identifier) {
		return compileErrorf(ErrDuplicateDeclaration, 0, "%s already declared", identifier)
	}
	if m.bump+size > m.Capacity()+1 {
		return runtimeErrorf(ErrOutOfMemory,
			"out of memory, %s needs %d bytes but only %d are left",
			identifier, size, m.Capacity()+1-m.bump)
	}
	return nil
}

// Callers run checkAllocation first.
func (m *Memory) allocate(identifier string, typ Type, tv TypedValue) error {
	size, _ := typ.Size()
	slot := &Slot{
		Identifier: identifier,
		Type:       typ,
		Address:    m.bump,
	}
	encoded, err := encode(tv)
	if err != nil {
		return runtimeErrorf(ErrTypeMismatch, "%s: %s", identifier, err.Error())
	}

	m.slots[identifier] = slot
	m.symbols[slot.Address] = identifier
	m.bump += size
	copy(m.arena[slot.Address:], encoded)
	m.notify(slot)
	return nil
}

func (m *Memory) write(slot *Slot, tv TypedValue) error {
	encoded, err := encode(tv)
	if err != nil {
		return runtimeErrorf(ErrTypeMismatch, "%s: %s", slot.Identifier, err.Error())
	}
	copy(m.arena[slot.Address:], encoded)
	m.notify(slot)
	return nil
}

func (m *Memory) read(slot *Slot) TypedValue {
	size, _ := slot.Type.Size()
	return decode(slot.Type, m.arena[slot.Address:slot.Address+size])
}

// Follows depth pointer hops from slot. Each hop must start at a pointer,
// must not be NULL, must land on the first byte of a slot, and that slot
// must have exactly the pointee type.
func (m *Memory) chase(slot *Slot, depth int) (*Slot, error) {
	path := slot.Identifier
	for i := 0; i < depth; i++ {
		elem, ok := slot.Type.Elem()
		if !ok {
			return nil, runtimeErrorf(ErrNotAPointer,
				"cannot dereference %s, its type %s is not a pointer", path, slot.Type)
		}
		address := m.read(slot).Value
		if address == 0 {
			return nil, runtimeErrorf(ErrNullDereference, "%s is NULL", path)
		}
		name, ok := m.symbols[address]
		if !ok {
			return nil, runtimeErrorf(ErrInvalidAddress,
				"%s points to 0x%02x where no variable starts", path, address)
		}
		target := m.slots[name]
		if target.Type != elem {
			return nil, runtimeErrorf(ErrTypeMismatch,
				"%s has type %s but points to %s of type %s", path, slot.Type, name, target.Type)
		}
		slot = target
		path = "*" + path
	}
	return slot, nil
}

func (m *Memory) placeholder(typ Type) TypedValue {
	switch {
	case typ.IsPointer():
		return TypedValue{Type: typ, Value: m.rng.Intn(maxCapacity + 1)}
	case typ == TypeChar:
		return TypedValue{Type: typ, Value: ' ' + m.rng.Intn('~'-' '+1)}
	default:
		return TypedValue{Type: typ, Value: intMin + m.rng.Intn(intMax-intMin+1)}
	}
}

func (m *Memory) notify(slot *Slot) {
	if len(m.observers) == 0 {
		return
	}
	ev := SlotEvent{
		Identifier: slot.Identifier,
		Value:      m.read(slot),
		Address:    slot.Address,
	}
	for _, o := range m.observers {
		o.SlotChanged(ev)
	}
}

func mismatch(target string, want Type, got TypedValue) error {
	if got.Type == TypeNullPointer {
		return runtimeErrorf(ErrTypeMismatch, "cannot store NULL in %s of type %s", target, want)
	}
	return runtimeErrorf(ErrTypeMismatch,
		"mismatching type: %s is %s, expression is %s", target, want, got.Type)
}

func derefString(identifier string, depth int) string {
	s := identifier
	for i := 0; i < depth; i++ {
		s = "*" + s
	}
	return s
}
