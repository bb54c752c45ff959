/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by  the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)  Consult jacobin.org.
 */

// Package object is the runtime representation of a Java object: a class
// pointer, an identity hash, and the field storage the interpreter and
// gfunction handlers read and write. Strings are represented as ordinary
// objects whose "value" field holds the backing byte array, the same
// scheme the frame interpreter uses for every other reference type.
package object

import (
	"fmt"
	"strings"
	"sync/atomic"

	"jacovm/stringPool"
	"jacovm/types"
)

// Field is one slot of an object's field storage: its descriptor-derived
// type tag (a types.* constant, e.g. types.Int or types.ByteArray) and
// its boxed Go value.
type Field struct {
	Ftype  string
	Fvalue interface{}
}

// MarkWord carries the per-instance bookkeeping a JVM stores in an
// object header. Only the identity hash is modeled; jacovm has no
// moving GC, so there is no lock/age state to track.
type MarkWord struct {
	Hash uint32
}

// Object is a reference-type instance: an array, a boxed string, or an
// ordinary class instance. Fields is used for objects whose field
// layout is positional (array elements, anonymous instances built by
// the interpreter); FieldTable is used wherever a field is addressed by
// name (named instance fields, the well-known "value" field of
// strings). Both may be populated on the same Object.
type Object struct {
	Klass      *string
	KlassName  uint32
	Mark       MarkWord
	Fields     []Field
	FieldTable map[string]*Field
}

var hashSeq uint32

func nextHash() uint32 {
	return atomic.AddUint32(&hashSeq, 1)
}

// MakeEmptyObject returns a new instance of java/lang/Object with no
// fields set.
func MakeEmptyObject() *Object {
	name := types.ObjectClassName
	return &Object{
		Klass:      &name,
		KlassName:  stringPool.Intern(name),
		Mark:       MarkWord{Hash: nextHash()},
		FieldTable: make(map[string]*Field),
	}
}

// NewObject returns a new instance of the named class with no fields
// set.
func NewObject(className string) *Object {
	obj := MakeEmptyObject()
	name := className
	obj.Klass = &name
	obj.KlassName = stringPool.Intern(className)
	return obj
}

// NewStringObject returns a new, empty java/lang/String instance: a
// String object's characters live in its "value" field as a byte
// array, following the compact-string layout the rest of this package
// assumes.
func NewStringObject() *Object {
	obj := NewObject(types.StringClassName)
	obj.FieldTable["value"] = &Field{Ftype: types.ByteArray, Fvalue: []byte{}}
	return obj
}

// StringObjectFromGoString wraps s in a new java/lang/String instance.
func StringObjectFromGoString(s string) *Object {
	obj := NewStringObject()
	obj.FieldTable["value"] = &Field{Ftype: types.ByteArray, Fvalue: []byte(s)}
	return obj
}

// CreateCompactStringFromGoString is an alias for StringObjectFromGoString
// kept for call sites that construct a string from an already-addressed
// Go string literal.
func CreateCompactStringFromGoString(s *string) *Object {
	return StringObjectFromGoString(*s)
}

// UpdateStringObjectFromBytes replaces obj's backing byte array in
// place, leaving its identity (and any other fields) untouched.
func UpdateStringObjectFromBytes(obj *Object, bytes []byte) {
	obj.FieldTable["value"] = &Field{Ftype: types.ByteArray, Fvalue: bytes}
}

// GoStringFromStringObject extracts obj's backing characters as a Go
// string. Returns "" for a nil object or one with no "value" field.
func GoStringFromStringObject(obj *Object) string {
	if obj == nil {
		return ""
	}
	fld, ok := obj.FieldTable["value"]
	if !ok || fld == nil {
		return ""
	}
	switch v := fld.Fvalue.(type) {
	case []byte:
		return string(v)
	case []types.JavaByte:
		return GoStringFromJavaByteArray(v)
	case string:
		return v
	default:
		return ""
	}
}

// ByteArrayFromStringObject extracts obj's backing bytes directly,
// without a string copy.
func ByteArrayFromStringObject(obj *Object) []byte {
	if obj == nil {
		return nil
	}
	fld, ok := obj.FieldTable["value"]
	if !ok || fld == nil {
		return nil
	}
	switch v := fld.Fvalue.(type) {
	case []byte:
		return v
	case []types.JavaByte:
		return GoByteArrayFromJavaByteArray(v)
	case string:
		return []byte(v)
	default:
		return nil
	}
}

// ToString renders obj for diagnostic output: class name followed by
// its named and positional fields. This is not java/lang/Object.toString;
// that is a gfunction intrinsic that calls through to this for its
// default, hashcode-based formatting.
func (o *Object) ToString() string {
	var sb strings.Builder
	className := "<unknown>"
	if o.Klass != nil {
		className = *o.Klass
	}
	fmt.Fprintf(&sb, "class: %s\n", className)
	for name, f := range o.FieldTable {
		if f == nil {
			continue
		}
		fmt.Fprintf(&sb, "  %s (%s): %s\n", name, f.Ftype, formatFieldValue(f))
	}
	for i := range o.Fields {
		f := &o.Fields[i]
		fmt.Fprintf(&sb, "  [%d] (%s): %s\n", i, f.Ftype, formatFieldValue(f))
	}
	return sb.String()
}

// FormatField renders a single field value for use in string
// conversions such as String.valueOf(Object); prefix lets callers
// label the value (e.g. with the field name) or pass "" for the bare
// value.
func (o *Object) FormatField(prefix string) string {
	if o.Klass != nil && *o.Klass == types.StringClassName {
		return prefix + GoStringFromStringObject(o)
	}
	return fmt.Sprintf("%s%s@%08x", prefix, className(o), o.Mark.Hash)
}

func className(o *Object) string {
	if o.Klass == nil {
		return types.ObjectClassName
	}
	return *o.Klass
}

func formatFieldValue(f *Field) string {
	switch f.Ftype {
	case types.ByteArray:
		switch v := f.Fvalue.(type) {
		case []byte:
			return string(v)
		case []types.JavaByte:
			return GoStringFromJavaByteArray(v)
		}
	}
	return fmt.Sprintf("%v", f.Fvalue)
}
