/*
 * jacovm - A Java virtual machine core
 * Arithmetic, shift, bitwise, conversion, and comparison instruction
 * handlers, grounded on verifier/dispatch.go's opcode grouping
 * (stepBinary/stepShiftLong/stepConvert/stepCompareCategory1/2) but
 * operating on real values instead of the vtype lattice. Division and
 * remainder by zero raise ArithmeticException for both integer and
 * floating-point operands -- a deliberate, documented deviation from
 * IEEE-754 (which would otherwise produce +/-Inf or NaN).
 */
package jvm

import (
	"math"

	"jacovm/excNames"
	"jacovm/frames"
)

func stepIntBinary(op int, f *frames.Frame) error {
	b, err := f.PopInt()
	if err != nil {
		return err
	}
	a, err := f.PopInt()
	if err != nil {
		return err
	}
	var r int32
	switch op {
	case opAdd:
		r = a + b
	case opSub:
		r = a - b
	case opMul:
		r = a * b
	case opDiv:
		if b == 0 {
			return Throw(excNames.ArithmeticException, "/ by zero")
		}
		r = a / b
	case opRem:
		if b == 0 {
			return Throw(excNames.ArithmeticException, "/ by zero")
		}
		r = a % b
	case opAnd:
		r = a & b
	case opOr:
		r = a | b
	case opXor:
		r = a ^ b
	}
	f.PushInt(r)
	return nil
}

func stepLongBinary(op int, f *frames.Frame) error {
	b, err := f.PopLong()
	if err != nil {
		return err
	}
	a, err := f.PopLong()
	if err != nil {
		return err
	}
	var r int64
	switch op {
	case opAdd:
		r = a + b
	case opSub:
		r = a - b
	case opMul:
		r = a * b
	case opDiv:
		if b == 0 {
			return Throw(excNames.ArithmeticException, "/ by zero")
		}
		r = a / b
	case opRem:
		if b == 0 {
			return Throw(excNames.ArithmeticException, "/ by zero")
		}
		r = a % b
	case opAnd:
		r = a & b
	case opOr:
		r = a | b
	case opXor:
		r = a ^ b
	}
	f.PushLong(r)
	return nil
}

func stepFloatBinary(op int, f *frames.Frame) error {
	b, err := f.PopFloat()
	if err != nil {
		return err
	}
	a, err := f.PopFloat()
	if err != nil {
		return err
	}
	var r float32
	switch op {
	case opAdd:
		r = a + b
	case opSub:
		r = a - b
	case opMul:
		r = a * b
	case opDiv:
		if b == 0 {
			return Throw(excNames.ArithmeticException, "/ by zero")
		}
		r = a / b
	case opRem:
		if b == 0 {
			return Throw(excNames.ArithmeticException, "/ by zero")
		}
		r = float32(math.Mod(float64(a), float64(b)))
	}
	f.PushFloat(r)
	return nil
}

func stepDoubleBinary(op int, f *frames.Frame) error {
	b, err := f.PopDouble()
	if err != nil {
		return err
	}
	a, err := f.PopDouble()
	if err != nil {
		return err
	}
	var r float64
	switch op {
	case opAdd:
		r = a + b
	case opSub:
		r = a - b
	case opMul:
		r = a * b
	case opDiv:
		if b == 0 {
			return Throw(excNames.ArithmeticException, "/ by zero")
		}
		r = a / b
	case opRem:
		if b == 0 {
			return Throw(excNames.ArithmeticException, "/ by zero")
		}
		r = math.Mod(a, b)
	}
	f.PushDouble(r)
	return nil
}

// op* are this file's own small vocabulary distinguishing the eight
// operation kinds a binary handler dispatches on; they are not
// opcodes.* values since one handler serves several opcodes (Iadd and
// Isub share stepIntBinary, distinguished only by this tag).
const (
	opAdd = iota
	opSub
	opMul
	opDiv
	opRem
	opAnd
	opOr
	opXor
)

func stepIneg(f *frames.Frame) error {
	v, err := f.PopInt()
	if err != nil {
		return err
	}
	f.PushInt(-v)
	return nil
}

func stepLneg(f *frames.Frame) error {
	v, err := f.PopLong()
	if err != nil {
		return err
	}
	f.PushLong(-v)
	return nil
}

func stepFneg(f *frames.Frame) error {
	v, err := f.PopFloat()
	if err != nil {
		return err
	}
	f.PushFloat(-v)
	return nil
}

func stepDneg(f *frames.Frame) error {
	v, err := f.PopDouble()
	if err != nil {
		return err
	}
	f.PushDouble(-v)
	return nil
}

func stepIshift(op int, f *frames.Frame) error {
	shift, err := f.PopInt()
	if err != nil {
		return err
	}
	v, err := f.PopInt()
	if err != nil {
		return err
	}
	s := uint(shift) & 0x1F
	switch op {
	case opShl:
		f.PushInt(v << s)
	case opShr:
		f.PushInt(v >> s)
	case opUshr:
		f.PushInt(int32(uint32(v) >> s))
	}
	return nil
}

func stepLshift(op int, f *frames.Frame) error {
	shift, err := f.PopInt()
	if err != nil {
		return err
	}
	v, err := f.PopLong()
	if err != nil {
		return err
	}
	s := uint(shift) & 0x3F
	switch op {
	case opShl:
		f.PushLong(v << s)
	case opShr:
		f.PushLong(v >> s)
	case opUshr:
		f.PushLong(int64(uint64(v) >> s))
	}
	return nil
}

const (
	opShl = iota
	opShr
	opUshr
)

func stepIinc(idx int, constVal int32, f *frames.Frame) error {
	v, err := f.GetLocalInt(idx)
	if err != nil {
		return err
	}
	f.SetLocalInt(idx, v+constVal)
	return nil
}

func stepI2l(f *frames.Frame) error {
	v, err := f.PopInt()
	if err != nil {
		return err
	}
	f.PushLong(int64(v))
	return nil
}

func stepI2f(f *frames.Frame) error {
	v, err := f.PopInt()
	if err != nil {
		return err
	}
	f.PushFloat(float32(v))
	return nil
}

func stepI2d(f *frames.Frame) error {
	v, err := f.PopInt()
	if err != nil {
		return err
	}
	f.PushDouble(float64(v))
	return nil
}

func stepL2i(f *frames.Frame) error {
	v, err := f.PopLong()
	if err != nil {
		return err
	}
	f.PushInt(int32(v))
	return nil
}

func stepL2f(f *frames.Frame) error {
	v, err := f.PopLong()
	if err != nil {
		return err
	}
	f.PushFloat(float32(v))
	return nil
}

func stepL2d(f *frames.Frame) error {
	v, err := f.PopLong()
	if err != nil {
		return err
	}
	f.PushDouble(float64(v))
	return nil
}

func stepF2i(f *frames.Frame) error {
	v, err := f.PopFloat()
	if err != nil {
		return err
	}
	f.PushInt(float64ToInt32(float64(v)))
	return nil
}

func stepF2l(f *frames.Frame) error {
	v, err := f.PopFloat()
	if err != nil {
		return err
	}
	f.PushLong(float64ToInt64(float64(v)))
	return nil
}

func stepF2d(f *frames.Frame) error {
	v, err := f.PopFloat()
	if err != nil {
		return err
	}
	f.PushDouble(float64(v))
	return nil
}

func stepD2i(f *frames.Frame) error {
	v, err := f.PopDouble()
	if err != nil {
		return err
	}
	f.PushInt(float64ToInt32(v))
	return nil
}

func stepD2l(f *frames.Frame) error {
	v, err := f.PopDouble()
	if err != nil {
		return err
	}
	f.PushLong(float64ToInt64(v))
	return nil
}

func stepD2f(f *frames.Frame) error {
	v, err := f.PopDouble()
	if err != nil {
		return err
	}
	f.PushFloat(float32(v))
	return nil
}

// float64ToInt32/64 implement JVMS §2.8.3's narrowing conversion rules:
// NaN becomes 0, and values outside the target range saturate to its
// min/max rather than wrapping (unlike Go's own float-to-int casts).
func float64ToInt32(v float64) int32 {
	if math.IsNaN(v) {
		return 0
	}
	if v >= math.MaxInt32 {
		return math.MaxInt32
	}
	if v <= math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}

func float64ToInt64(v float64) int64 {
	if math.IsNaN(v) {
		return 0
	}
	if v >= math.MaxInt64 {
		return math.MaxInt64
	}
	if v <= math.MinInt64 {
		return math.MinInt64
	}
	return int64(v)
}

func stepI2b(f *frames.Frame) error {
	v, err := f.PopInt()
	if err != nil {
		return err
	}
	f.PushInt(int32(int8(v)))
	return nil
}

func stepI2c(f *frames.Frame) error {
	v, err := f.PopInt()
	if err != nil {
		return err
	}
	f.PushInt(int32(uint16(v)))
	return nil
}

func stepI2s(f *frames.Frame) error {
	v, err := f.PopInt()
	if err != nil {
		return err
	}
	f.PushInt(int32(int16(v)))
	return nil
}

func stepLcmp(f *frames.Frame) error {
	b, err := f.PopLong()
	if err != nil {
		return err
	}
	a, err := f.PopLong()
	if err != nil {
		return err
	}
	f.PushInt(cmp3(a, b))
	return nil
}

func cmp3[T int64 | float64](a, b T) int32 {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}

// stepFcmp/stepDcmp implement fcmp<l|g>/dcmp<l|g>: nanResult is the
// value pushed when either operand is NaN (-1 for the 'l' forms, +1 for
// the 'g' forms, JVMS §6.5 fcmp<op>).
func stepFcmp(f *frames.Frame, nanResult int32) error {
	b, err := f.PopFloat()
	if err != nil {
		return err
	}
	a, err := f.PopFloat()
	if err != nil {
		return err
	}
	if math.IsNaN(float64(a)) || math.IsNaN(float64(b)) {
		f.PushInt(nanResult)
		return nil
	}
	f.PushInt(cmp3(float64(a), float64(b)))
	return nil
}

func stepDcmp(f *frames.Frame, nanResult int32) error {
	b, err := f.PopDouble()
	if err != nil {
		return err
	}
	a, err := f.PopDouble()
	if err != nil {
		return err
	}
	if math.IsNaN(a) || math.IsNaN(b) {
		f.PushInt(nanResult)
		return nil
	}
	f.PushInt(cmp3(a, b))
	return nil
}
