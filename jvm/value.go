/*
 * jacovm - A Java virtual machine core
 * Descriptor-driven typed push/pop, the runtime counterpart of
 * vtype.FromDescriptor: every caller that only knows a field or
 * parameter's descriptor character (getfield/putfield, the invocation
 * bridge's argument marshaling) goes through these instead of picking
 * the right Frame.Push-star/Pop-star call by hand.
 */
package jvm

import (
	"jacovm/frames"
	"jacovm/object"
)

func pushByDescriptor(f *frames.Frame, descriptor string, v interface{}) {
	switch descriptor[0] {
	case 'J':
		f.PushLong(toInt64(v))
	case 'D':
		f.PushDouble(toFloat64(v))
	case 'F':
		f.PushFloat(toFloat32(v))
	case 'L', '[':
		if v == nil {
			f.PushRef(nil)
			return
		}
		f.PushRef(toObject(v))
	default: // B, C, I, S, Z
		f.PushInt(toInt32(v))
	}
}

func popByDescriptor(f *frames.Frame, descriptor string) (interface{}, error) {
	switch descriptor[0] {
	case 'J':
		return f.PopLong()
	case 'D':
		return f.PopDouble()
	case 'F':
		return f.PopFloat()
	case 'L', '[':
		return f.PopRef()
	default: // B, C, I, S, Z
		return f.PopInt()
	}
}

// The to* converters accept both widths of their numeric kind:
// interpreter handlers produce int32/float32 for category-1 values, but
// gfunction intrinsics follow the registry-wide convention of returning
// int64 for every Java integral type and float64 for every float.
func toInt32(v interface{}) int32 {
	switch i := v.(type) {
	case int32:
		return i
	case int64:
		return int32(i)
	case int:
		return int32(i)
	}
	return 0
}

func toInt64(v interface{}) int64 {
	switch i := v.(type) {
	case int64:
		return i
	case int32:
		return int64(i)
	case int:
		return int64(i)
	}
	return 0
}

func toFloat32(v interface{}) float32 {
	switch fl := v.(type) {
	case float32:
		return fl
	case float64:
		return float32(fl)
	}
	return 0
}

func toFloat64(v interface{}) float64 {
	switch d := v.(type) {
	case float64:
		return d
	case float32:
		return float64(d)
	}
	return 0
}

func toObject(v interface{}) *object.Object {
	o, _ := v.(*object.Object)
	return o
}
