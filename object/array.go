/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by  the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)  Consult jacobin.org.
 */

package object

import (
	"fmt"

	"jacovm/stringPool"
	"jacovm/types"
)

// NewArray allocates a new array object of componentDescriptor (a
// field-descriptor string: a primitive type character, "Lclassname;",
// or another array descriptor for an array-of-arrays) and length,
// zero-filling every element the same way JVMS §2.5.3 mandates for
// newarray/anewarray (0/0.0/false/null per component type). Klass is
// the array's own descriptor, "[" + componentDescriptor, matching the
// internal-name convention classloader.ClassEntry already uses for
// array class names.
func NewArray(componentDescriptor string, length int) *Object {
	klass := types.Array + componentDescriptor
	arr := &Object{
		Klass:      &klass,
		KlassName:  stringPool.Intern(klass),
		Mark:       MarkWord{Hash: nextHash()},
		Fields:     make([]Field, length),
		FieldTable: make(map[string]*Field),
	}
	zero := zeroValueFor(componentDescriptor)
	for i := range arr.Fields {
		arr.Fields[i] = Field{Ftype: componentDescriptor, Fvalue: zero}
	}
	return arr
}

// NewMultiArray allocates a multianewarray result: dims gives the
// length of each dimension, outermost first. A single-dimension
// request is just NewArray; deeper requests eagerly allocate every
// nested array, matching JVMS §6.5 multianewarray (no dimension is
// left as a deferred/lazy allocation).
func NewMultiArray(componentDescriptor string, dims []int) *Object {
	if len(dims) == 1 {
		return NewArray(componentDescriptor, dims[0])
	}
	elementDescriptor := types.Array + componentDescriptor
	arr := NewArray(elementDescriptor, dims[0])
	for i := range arr.Fields {
		arr.Fields[i].Fvalue = NewMultiArray(componentDescriptor, dims[1:])
	}
	return arr
}

// IsArray reports whether obj is an array (its class descriptor
// begins with the "[" array-type prefix).
func IsArray(obj *Object) bool {
	return obj != nil && obj.Klass != nil && len(*obj.Klass) > 0 && (*obj.Klass)[0] == '['
}

// ArrayComponentDescriptor returns obj's element descriptor, i.e. its
// class descriptor with the leading "[" stripped.
func ArrayComponentDescriptor(obj *Object) string {
	if !IsArray(obj) {
		return ""
	}
	return (*obj.Klass)[1:]
}

// ArrayLength returns the number of elements in obj.
func ArrayLength(obj *Object) int {
	if obj == nil {
		return 0
	}
	return len(obj.Fields)
}

// ArrayGet returns the value stored at index, bounds-checked the way
// the interpreter's aaload/iaload/etc. family needs in order to raise
// ArrayIndexOutOfBoundsException instead of panicking.
func ArrayGet(obj *Object, index int) (interface{}, error) {
	if obj == nil {
		return nil, fmt.Errorf("object: ArrayGet on nil array")
	}
	if index < 0 || index >= len(obj.Fields) {
		return nil, fmt.Errorf("array index out of bounds: index %d, length %d", index, len(obj.Fields))
	}
	return obj.Fields[index].Fvalue, nil
}

// ArraySet stores value at index, bounds-checked the same way as
// ArrayGet.
func ArraySet(obj *Object, index int, value interface{}) error {
	if obj == nil {
		return fmt.Errorf("object: ArraySet on nil array")
	}
	if index < 0 || index >= len(obj.Fields) {
		return fmt.Errorf("array index out of bounds: index %d, length %d", index, len(obj.Fields))
	}
	obj.Fields[index].Fvalue = value
	return nil
}

// zeroValueFor returns the default element value for a newly allocated
// array slot of the given component descriptor (JVMS §2.5.3 default
// values).
func zeroValueFor(componentDescriptor string) interface{} {
	switch componentDescriptor {
	case types.Byte, types.Char, types.Int, types.Short, types.Boolean:
		return int32(0)
	case types.Long:
		return int64(0)
	case types.Float:
		return float32(0)
	case types.Double:
		return float64(0)
	default:
		// Reference or nested-array component: default value is null.
		return nil
	}
}
