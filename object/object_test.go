/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2023 by  the Jacobin authors. Consult jacobin.org.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0) All rights reserved.
 */

package object

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectToString1(t *testing.T) {
	obj := MakeEmptyObject()
	klassType := filepath.FromSlash("java/lang/madeUpClass")
	obj.Klass = &klassType

	obj.FieldTable["myFloat"] = &Field{Ftype: "F", Fvalue: 1.0}
	obj.FieldTable["myDouble"] = &Field{Ftype: "D", Fvalue: 2.0}
	obj.FieldTable["myInt"] = &Field{Ftype: "I", Fvalue: 42}
	obj.FieldTable["myLong"] = &Field{Ftype: "J", Fvalue: 42}
	obj.FieldTable["myShort"] = &Field{Ftype: "S", Fvalue: 42}
	obj.FieldTable["myByte"] = &Field{Ftype: "B", Fvalue: 0x61}
	obj.FieldTable["myStaticTrue"] = &Field{Ftype: "XZ", Fvalue: true}
	obj.FieldTable["myFalse"] = &Field{Ftype: "Z", Fvalue: false}
	obj.FieldTable["myChar"] = &Field{Ftype: "C", Fvalue: 'C'}
	obj.FieldTable["myString"] = &Field{Ftype: "Ljava/lang/String;", Fvalue: "Hello, Unka Andoo !"}

	str := obj.ToString()
	assert.NotEmpty(t, str)
}

func TestObjectToString2(t *testing.T) {
	literal := "This is a compact string from a Go string"
	csObj := CreateCompactStringFromGoString(&literal)
	assert.NotEmpty(t, csObj.ToString())

	obj := MakeEmptyObject()
	klassType := filepath.FromSlash("java/lang/madeUpClass")
	obj.Klass = &klassType

	csObj.Klass = &klassType
	assert.NotEmpty(t, csObj.ToString())

	fields := []Field{
		{Ftype: "F", Fvalue: 1.0},
		{Ftype: "D", Fvalue: 2.0},
		{Ftype: "I", Fvalue: 42},
		{Ftype: "J", Fvalue: 42},
		{Ftype: "S", Fvalue: 42},
		{Ftype: "B", Fvalue: 0x61},
		{Ftype: "XZ", Fvalue: true},
		{Ftype: "Z", Fvalue: false},
		{Ftype: "C", Fvalue: 'C'},
	}
	obj.Fields = append(obj.Fields, fields[0])
	for _, f := range fields {
		obj.Fields[0] = f
		assert.NotEmpty(t, obj.ToString())
	}
}

func TestGoStringRoundTrip(t *testing.T) {
	s := StringObjectFromGoString("round trip")
	assert.Equal(t, "round trip", GoStringFromStringObject(s))
	assert.Equal(t, []byte("round trip"), ByteArrayFromStringObject(s))
}

func TestJavaByteArrayRoundTrip(t *testing.T) {
	jb := JavaByteArrayFromGoString("hiss")
	assert.Equal(t, "hiss", GoStringFromJavaByteArray(jb))

	s := StringObjectFromJavaByteArray(jb)
	assert.Equal(t, jb, JavaByteArrayFromStringObject(s))
	assert.True(t, JavaByteArrayEquals(jb, JavaByteArrayFromGoString("hiss")))
	assert.True(t, JavaByteArrayEqualsIgnoreCase(jb, JavaByteArrayFromGoString("HISS")))
	assert.False(t, JavaByteArrayEquals(jb, JavaByteArrayFromGoString("hisss")))
}
