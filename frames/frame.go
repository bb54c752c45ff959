/*
 * jacovm - A Java virtual machine core
 * Package frames is the runtime counterpart of the verifier's frame: a
 * per-invocation locals array, operand stack, and program counter (here,
 * an index into a pre-decoded opcodes.Instruction list rather than a
 * byte offset). Every interpreter instruction handler in package jvm
 * operates on a *Frame.
 */
package frames

import (
	"container/list"

	"jacovm/classloader"
	"jacovm/excNames"
	"jacovm/object"
	"jacovm/opcodes"
)

// Category2Placeholder occupies the stack/local slot immediately after
// a Long or Double value, mirroring the verifier's two-slot accounting
// for category-2 types (JVMS §2.6.2: pushing or popping a category-2
// value uses two slots).
type Category2Placeholder struct{}

// Frame is one method invocation's execution state.
type Frame struct {
	ClName         string
	MethName       string
	MethType       string // descriptor
	CP             *classloader.ConstantPool
	Instructions   []opcodes.Instruction
	OffsetIndex    map[int]int // bytecode offset -> Instructions index
	ExceptionTable []classloader.ExceptionTableEntry
	MaxLocals      int
	MaxStack       int

	Locals  []interface{}
	OpStack []interface{} // grows at the end; TOS is the last element
	PC      int           // index into Instructions

	// Thread identifies the logical thread of execution this frame
	// belongs to; each thread owns its frame stack exclusively.
	Thread int
}

// New allocates a zeroed Frame sized for maxLocals/maxStack, with the
// given pre-decoded instruction stream installed.
func New(clName, methName, methType string, cp *classloader.ConstantPool,
	instrs []opcodes.Instruction, offsetIndex map[int]int,
	excTable []classloader.ExceptionTableEntry, maxLocals, maxStack int) *Frame {
	return &Frame{
		ClName:         clName,
		MethName:       methName,
		MethType:       methType,
		CP:             cp,
		Instructions:   instrs,
		OffsetIndex:    offsetIndex,
		ExceptionTable: excTable,
		MaxLocals:      maxLocals,
		MaxStack:       maxStack,
		Locals:         make([]interface{}, maxLocals),
		OpStack:        make([]interface{}, 0, maxStack),
	}
}

// InvalidOperandError is the fatal, never-Java-catchable signal that the
// operand stack held a value of an unexpected shape: under verified
// code this must not occur, so it surfaces as an internal error rather
// than attempting recovery.
type InvalidOperandError struct {
	Expected string
	Actual   interface{}
}

func (e *InvalidOperandError) Error() string {
	return excNames.InvalidOperand
}

func invalidOperand(expected string, actual interface{}) error {
	return &InvalidOperandError{Expected: expected, Actual: actual}
}

// --- operand stack ---

// PushInt/PushFloat push a category-1 value.
func (f *Frame) PushInt(v int32)     { f.OpStack = append(f.OpStack, v) }
func (f *Frame) PushFloat(v float32) { f.OpStack = append(f.OpStack, v) }

// PushRef pushes a reference; a nil *object.Object represents Java null.
func (f *Frame) PushRef(v *object.Object) { f.OpStack = append(f.OpStack, v) }

// PushLong/PushDouble push a category-2 value, consuming two stack slots:
// the value itself, then a Category2Placeholder.
func (f *Frame) PushLong(v int64) {
	f.OpStack = append(f.OpStack, v, Category2Placeholder{})
}
func (f *Frame) PushDouble(v float64) {
	f.OpStack = append(f.OpStack, v, Category2Placeholder{})
}

func (f *Frame) popRaw() (interface{}, error) {
	n := len(f.OpStack)
	if n == 0 {
		return nil, invalidOperand("any", nil)
	}
	v := f.OpStack[n-1]
	f.OpStack = f.OpStack[:n-1]
	return v, nil
}

// PopInt pops a category-1 int32.
func (f *Frame) PopInt() (int32, error) {
	v, err := f.popRaw()
	if err != nil {
		return 0, err
	}
	i, ok := v.(int32)
	if !ok {
		return 0, invalidOperand("int32", v)
	}
	return i, nil
}

// PopFloat pops a category-1 float32.
func (f *Frame) PopFloat() (float32, error) {
	v, err := f.popRaw()
	if err != nil {
		return 0, err
	}
	fl, ok := v.(float32)
	if !ok {
		return 0, invalidOperand("float32", v)
	}
	return fl, nil
}

// PopRef pops a reference slot (nil means Java null).
func (f *Frame) PopRef() (*object.Object, error) {
	v, err := f.popRaw()
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	r, ok := v.(*object.Object)
	if !ok {
		return nil, invalidOperand("*object.Object", v)
	}
	return r, nil
}

// PopLong pops a category-2 int64, consuming both slots.
func (f *Frame) PopLong() (int64, error) {
	if _, err := f.popPlaceholder(); err != nil {
		return 0, err
	}
	v, err := f.popRaw()
	if err != nil {
		return 0, err
	}
	l, ok := v.(int64)
	if !ok {
		return 0, invalidOperand("int64", v)
	}
	return l, nil
}

// PopDouble pops a category-2 float64, consuming both slots.
func (f *Frame) PopDouble() (float64, error) {
	if _, err := f.popPlaceholder(); err != nil {
		return 0, err
	}
	v, err := f.popRaw()
	if err != nil {
		return 0, err
	}
	d, ok := v.(float64)
	if !ok {
		return 0, invalidOperand("float64", v)
	}
	return d, nil
}

func (f *Frame) popPlaceholder() (interface{}, error) {
	v, err := f.popRaw()
	if err != nil {
		return nil, err
	}
	if _, ok := v.(Category2Placeholder); !ok {
		return nil, invalidOperand("Category2Placeholder", v)
	}
	return v, nil
}

// PopSlot removes and returns a single raw stack slot without
// type-checking it, used by the stack-shuffling instructions (dup*,
// swap, pop/pop2) which operate on opaque slot values.
func (f *Frame) PopSlot() (interface{}, error) { return f.popRaw() }

// PushSlot pushes a single raw stack slot.
func (f *Frame) PushSlot(v interface{}) { f.OpStack = append(f.OpStack, v) }

// PeekSlot returns the n-th slot from the top (0 = TOS) without popping.
func (f *Frame) PeekSlot(n int) (interface{}, error) {
	idx := len(f.OpStack) - 1 - n
	if idx < 0 {
		return nil, invalidOperand("any", nil)
	}
	return f.OpStack[idx], nil
}

// StackDepth returns the current slot count (category-2 values count as
// two), the quantity max_stack bounds.
func (f *Frame) StackDepth() int { return len(f.OpStack) }

// --- locals ---

func (f *Frame) SetLocalInt(i int, v int32)         { f.Locals[i] = v }
func (f *Frame) SetLocalFloat(i int, v float32)     { f.Locals[i] = v }
func (f *Frame) SetLocalRef(i int, v *object.Object) { f.Locals[i] = v }
func (f *Frame) SetLocalLong(i int, v int64) {
	f.Locals[i] = v
	f.Locals[i+1] = Category2Placeholder{}
}
func (f *Frame) SetLocalDouble(i int, v float64) {
	f.Locals[i] = v
	f.Locals[i+1] = Category2Placeholder{}
}

func (f *Frame) GetLocalInt(i int) (int32, error) {
	v, ok := f.Locals[i].(int32)
	if !ok {
		return 0, invalidOperand("int32", f.Locals[i])
	}
	return v, nil
}

func (f *Frame) GetLocalFloat(i int) (float32, error) {
	v, ok := f.Locals[i].(float32)
	if !ok {
		return 0, invalidOperand("float32", f.Locals[i])
	}
	return v, nil
}

func (f *Frame) GetLocalLong(i int) (int64, error) {
	v, ok := f.Locals[i].(int64)
	if !ok {
		return 0, invalidOperand("int64", f.Locals[i])
	}
	return v, nil
}

func (f *Frame) GetLocalDouble(i int) (float64, error) {
	v, ok := f.Locals[i].(float64)
	if !ok {
		return 0, invalidOperand("float64", f.Locals[i])
	}
	return v, nil
}

func (f *Frame) GetLocalRef(i int) (*object.Object, error) {
	if f.Locals[i] == nil {
		return nil, nil
	}
	v, ok := f.Locals[i].(*object.Object)
	if !ok {
		return nil, invalidOperand("*object.Object", f.Locals[i])
	}
	return v, nil
}

// --- program counter ---

// Current returns the instruction at the current PC, or false if PC has
// run off the end, which under verified code indicates a verifier bug
// or corrupt bytecode.
func (f *Frame) Current() (opcodes.Instruction, bool) {
	if f.PC < 0 || f.PC >= len(f.Instructions) {
		return opcodes.Instruction{}, false
	}
	return f.Instructions[f.PC], true
}

// JumpToOffset repositions PC at the instruction starting at the given
// absolute bytecode offset.
func (f *Frame) JumpToOffset(offset int) (int, bool) {
	idx, ok := f.OffsetIndex[offset]
	return idx, ok
}

// FrameStack is the per-thread stack of active Frames (each thread owns
// its frame stack exclusively), implemented the same way
// static-initializer execution threads one through, over container/list
// so callers can push/pop without index bookkeeping.
type FrameStack = list.List

// NewFrameStack returns an empty per-thread frame stack.
func NewFrameStack() *FrameStack { return list.New() }

// PushFrame pushes f onto the front of stack (the most recent call is
// always at the front, mirroring a call stack growing downward).
func PushFrame(stack *FrameStack, f *Frame) { stack.PushFront(f) }

// PopFrame removes and returns the top frame, or nil if the stack is empty.
func PopFrame(stack *FrameStack) *Frame {
	e := stack.Front()
	if e == nil {
		return nil
	}
	stack.Remove(e)
	return e.Value.(*Frame)
}

// TopFrame returns the top frame without removing it, or nil.
func TopFrame(stack *FrameStack) *Frame {
	e := stack.Front()
	if e == nil {
		return nil
	}
	return e.Value.(*Frame)
}
