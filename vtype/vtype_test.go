/*
 * jacovm - A Java virtual machine core
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */
package vtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jacovm/util"
)

func TestFromDescriptorPrimitives(t *testing.T) {
	cases := map[string]VerificationType{
		"B": Integer{}, "C": Integer{}, "Z": Integer{}, "S": Integer{}, "I": Integer{},
		"J": Long{}, "D": Double{}, "F": Float{},
	}
	for desc, want := range cases {
		got := FromDescriptor(util.FieldType{Descriptor: desc})
		assert.Equal(t, want, got, "descriptor %q", desc)
	}
}

func TestFromDescriptorObject(t *testing.T) {
	ft := util.FieldType{Descriptor: "Ljava/lang/String;", ClassName: "java/lang/String"}
	assert.Equal(t, Object{ClassName: "java/lang/String"}, FromDescriptor(ft))
}

func TestFromDescriptorArray(t *testing.T) {
	ft := util.FieldType{Descriptor: "I", Dimensions: 2}
	want := Array{Component: Array{Component: Integer{}}}
	assert.Equal(t, want, FromDescriptor(ft))
}

func TestFromDescriptorObjectArray(t *testing.T) {
	ft := util.FieldType{Descriptor: "Ljava/lang/String;", ClassName: "java/lang/String", Dimensions: 1}
	want := Array{Component: Object{ClassName: "java/lang/String"}}
	assert.Equal(t, want, FromDescriptor(ft))
}

func TestFromArrayTypeCode(t *testing.T) {
	cases := map[uint8]VerificationType{
		TBoolean: Integer{}, TChar: Integer{}, TByte: Integer{}, TShort: Integer{}, TInt: Integer{},
		TFloat: Float{}, TDouble: Double{}, TLong: Long{},
	}
	for code, want := range cases {
		got, err := FromArrayTypeCode(code)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestFromArrayTypeCodeInvalid(t *testing.T) {
	_, err := FromArrayTypeCode(0)
	require.Error(t, err)
	_, err = FromArrayTypeCode(12)
	require.Error(t, err)
}

func TestCategoryWidths(t *testing.T) {
	assert.True(t, IsCategory2(Long{}))
	assert.True(t, IsCategory2(Double{}))
	assert.False(t, IsCategory2(Integer{}))
	assert.False(t, IsCategory2(Object{ClassName: "X"}))

	assert.True(t, IsCategory1(Integer{}))
	assert.False(t, IsCategory1(Long{}))
}

func TestIsReference(t *testing.T) {
	assert.True(t, IsReference(Null{}))
	assert.True(t, IsReference(Object{ClassName: "X"}))
	assert.True(t, IsReference(Array{Component: Integer{}}))
	assert.True(t, IsReference(UninitializedThis{}))
	assert.True(t, IsReference(Uninitialized{Offset: 1}))
	assert.False(t, IsReference(Integer{}))
	assert.False(t, IsReference(Top{}))
}

func TestArrayDimensionsAndElementType(t *testing.T) {
	arr := Array{Component: Array{Component: Object{ClassName: "Dog"}}}
	assert.Equal(t, 2, ArrayDimensions(arr))
	assert.Equal(t, Object{ClassName: "Dog"}, ElementType(arr))
	assert.Equal(t, 0, ArrayDimensions(Integer{}))
	assert.Equal(t, Integer{}, ElementType(Integer{}))
}

func TestComponentType(t *testing.T) {
	arr := Array{Component: Long{}}
	c, ok := ComponentType(arr)
	require.True(t, ok)
	assert.Equal(t, Long{}, c)

	_, ok = ComponentType(Integer{})
	assert.False(t, ok)
}

func TestUninitializedDistinctOffsetsAreDifferentValues(t *testing.T) {
	a := Uninitialized{Offset: 5}
	b := Uninitialized{Offset: 7}
	assert.NotEqual(t, a, b)
	var av, bv VerificationType = a, Object{ClassName: "Foo"}
	assert.NotEqual(t, av, bv)
}
