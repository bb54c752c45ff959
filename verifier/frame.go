package verifier

import "jacovm/vtype"

// Frame is the verifier's view of a method's state at one program
// point: a fixed-capacity locals vector and a bounded operand stack,
// both over vtype.VerificationType. A category-2 local/stack slot is
// represented as its value followed by an implicit vtype.Top{} in the
// next slot, per JVMS §4.10.1.2.
type Frame struct {
	Locals   []vtype.VerificationType
	Stack    []vtype.VerificationType
	MaxStack int
}

// NewFrame allocates a frame with maxLocals locals (all vtype.Top{})
// and an empty stack bounded by maxStack.
func NewFrame(maxLocals, maxStack int) *Frame {
	locals := make([]vtype.VerificationType, maxLocals)
	for i := range locals {
		locals[i] = vtype.Top{}
	}
	return &Frame{Locals: locals, Stack: make([]vtype.VerificationType, 0, maxStack*2), MaxStack: maxStack}
}

// Clone deep-copies f so it can be advanced independently (snapshotting
// at branch points, worklist dataflow, etc).
func (f *Frame) Clone() *Frame {
	c := &Frame{
		Locals:   make([]vtype.VerificationType, len(f.Locals)),
		Stack:    make([]vtype.VerificationType, len(f.Stack)),
		MaxStack: f.MaxStack,
	}
	copy(c.Locals, f.Locals)
	copy(c.Stack, f.Stack)
	return c
}

// slotDepth is the number of slots currently occupied on the stack
// (category-2 values count twice), the quantity max_stack bounds.
func (f *Frame) slotDepth() int { return len(f.Stack) }

// Push pushes v, occupying two slots if it is category-2.
func (f *Frame) Push(v vtype.VerificationType) error {
	n := 1
	if vtype.IsCategory2(v) {
		n = 2
	}
	if f.slotDepth()+n > f.MaxStack {
		return VFE("operand stack overflow: max_stack=%d", f.MaxStack)
	}
	f.Stack = append(f.Stack, v)
	if n == 2 {
		f.Stack = append(f.Stack, vtype.Top{})
	}
	return nil
}

// PopCategory1 pops and returns a one-slot value.
func (f *Frame) PopCategory1() (vtype.VerificationType, error) {
	n := len(f.Stack)
	if n == 0 {
		return nil, VFE("operand stack underflow")
	}
	v := f.Stack[n-1]
	if vtype.IsCategory2(v) {
		return nil, VFE("expected category-1 value on stack, found category-2 placeholder")
	}
	f.Stack = f.Stack[:n-1]
	return v, nil
}

// PopCategory2 pops and returns a two-slot value (the implicit Top
// placeholder, then the value itself).
func (f *Frame) PopCategory2() (vtype.VerificationType, error) {
	n := len(f.Stack)
	if n < 2 {
		return nil, VFE("operand stack underflow popping category-2 value")
	}
	if _, ok := f.Stack[n-1].(vtype.Top); !ok {
		return nil, VFE("expected category-2 placeholder on stack")
	}
	v := f.Stack[n-2]
	if !vtype.IsCategory2(v) {
		return nil, VFE("expected category-2 value on stack, found %s", v.String())
	}
	f.Stack = f.Stack[:n-2]
	return v, nil
}

// PopAny pops whatever occupies the top slot, returning both the
// logical value and the number of slots it consumed (1 or 2); used by
// instructions (dup family, pop/pop2) that operate on raw slots rather
// than a known type.
func (f *Frame) PopAny() (vtype.VerificationType, int, error) {
	n := len(f.Stack)
	if n == 0 {
		return nil, 0, VFE("operand stack underflow")
	}
	if _, ok := f.Stack[n-1].(vtype.Top); ok && n >= 2 && vtype.IsCategory2(f.Stack[n-2]) {
		v := f.Stack[n-2]
		f.Stack = f.Stack[:n-2]
		return v, 2, nil
	}
	v := f.Stack[n-1]
	f.Stack = f.Stack[:n-1]
	return v, 1, nil
}

// PeekCategory1 returns the top-of-stack without popping, failing if it
// is a category-2 placeholder.
func (f *Frame) PeekCategory1() (vtype.VerificationType, error) {
	n := len(f.Stack)
	if n == 0 {
		return nil, VFE("operand stack underflow")
	}
	if vtype.IsCategory2(f.Stack[n-1]) {
		return nil, VFE("expected category-1 value on stack")
	}
	return f.Stack[n-1], nil
}

// SetLocal stores v at slot i, occupying slot i+1 with Top{} if v is
// category-2.
func (f *Frame) SetLocal(i int, v vtype.VerificationType) error {
	if i < 0 || i >= len(f.Locals) {
		return VFE("local variable index %d out of range (max_locals=%d)", i, len(f.Locals))
	}
	f.Locals[i] = v
	if vtype.IsCategory2(v) {
		if i+1 >= len(f.Locals) {
			return VFE("category-2 local at index %d overruns max_locals=%d", i, len(f.Locals))
		}
		f.Locals[i+1] = vtype.Top{}
	}
	return nil
}

// GetLocal1 reads a category-1 local.
func (f *Frame) GetLocal1(i int) (vtype.VerificationType, error) {
	if i < 0 || i >= len(f.Locals) {
		return nil, VFE("local variable index %d out of range", i)
	}
	v := f.Locals[i]
	if vtype.IsCategory2(v) {
		return nil, VFE("local %d holds a category-2 value", i)
	}
	return v, nil
}

// GetLocal2 reads a category-2 local, checking the following slot holds
// the implicit Top.
func (f *Frame) GetLocal2(i int) (vtype.VerificationType, error) {
	if i < 0 || i+1 >= len(f.Locals) {
		return nil, VFE("local variable index %d out of range for category-2 read", i)
	}
	v := f.Locals[i]
	if !vtype.IsCategory2(v) {
		return nil, VFE("local %d does not hold a category-2 value", i)
	}
	if _, ok := f.Locals[i+1].(vtype.Top); !ok {
		return nil, VFE("local %d's category-2 companion slot is not Top", i)
	}
	return v, nil
}

// IsAssignableFrame reports whether every local and stack slot of f is
// assignable to the corresponding slot of anchor -- the check performed
// at every branch target/exception handler against its recorded
// stack-map anchor.
func IsAssignableFrame(f, anchor *Frame, ctx vtype.HierarchyContext) bool {
	if len(f.Stack) != len(anchor.Stack) {
		return false
	}
	for i := range f.Stack {
		if !vtype.IsAssignableTo(f.Stack[i], anchor.Stack[i], ctx) {
			return false
		}
	}
	n := len(anchor.Locals)
	if len(f.Locals) < n {
		return false
	}
	for i := 0; i < n; i++ {
		if !vtype.IsAssignableTo(f.Locals[i], anchor.Locals[i], ctx) {
			return false
		}
	}
	return true
}

// MergeFrames computes the slot-wise least-upper-bound of a and b, used
// by the inference verifier at control-flow join points.
func MergeFrames(a, b *Frame, ctx vtype.HierarchyContext) *Frame {
	out := &Frame{MaxStack: a.MaxStack}
	n := len(a.Locals)
	if len(b.Locals) < n {
		n = len(b.Locals)
	}
	out.Locals = make([]vtype.VerificationType, n)
	for i := 0; i < n; i++ {
		out.Locals[i] = vtype.Merge(a.Locals[i], b.Locals[i], ctx)
	}

	sn := len(a.Stack)
	if len(b.Stack) < sn {
		sn = len(b.Stack)
	}
	out.Stack = make([]vtype.VerificationType, sn)
	for i := 0; i < sn; i++ {
		out.Stack[i] = vtype.Merge(a.Stack[i], b.Stack[i], ctx)
	}
	return out
}

// Equal reports whether two frames have identical locals/stack
// sequences (used by the worklist loop to detect a no-op merge).
func (f *Frame) Equal(o *Frame) bool {
	if len(f.Locals) != len(o.Locals) || len(f.Stack) != len(o.Stack) {
		return false
	}
	for i := range f.Locals {
		if f.Locals[i] != o.Locals[i] {
			return false
		}
	}
	for i := range f.Stack {
		if f.Stack[i] != o.Stack[i] {
			return false
		}
	}
	return true
}
