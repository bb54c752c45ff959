/*
 * jacovm - A Java virtual machine core
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */
package vtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// mockHierarchy is a tiny fixed class graph used to exercise the lattice
// without touching the classloader:
//
//	Object
//	  Animal
//	    Dog
//	    Cat
//	  Plant
type mockHierarchy struct{}

var parentOf = map[string]string{
	"Animal": ClassObject,
	"Dog":    "Animal",
	"Cat":    "Animal",
	"Plant":  ClassObject,
}

func ancestors(c string) []string {
	chain := []string{c}
	for {
		p, ok := parentOf[c]
		if !ok {
			if c != ClassObject {
				chain = append(chain, ClassObject)
			}
			return chain
		}
		chain = append(chain, p)
		c = p
	}
}

func (mockHierarchy) IsAssignable(target, source string) bool {
	if target == source {
		return true
	}
	for _, a := range ancestors(source) {
		if a == target {
			return true
		}
	}
	return false
}

func (h mockHierarchy) CommonSuperclass(a, b string) string {
	bAncestors := ancestors(b)
	seen := make(map[string]bool, len(bAncestors))
	for _, x := range bAncestors {
		seen[x] = true
	}
	for _, x := range ancestors(a) {
		if seen[x] {
			return x
		}
	}
	return ClassObject
}

var ctx = mockHierarchy{}

func sampleTypes() []VerificationType {
	return []VerificationType{
		Top{}, Integer{}, Float{}, Long{}, Double{}, Null{},
		Object{ClassName: "Dog"}, Object{ClassName: "Cat"}, Object{ClassName: "Plant"},
		Array{Component: Integer{}}, Array{Component: Object{ClassName: "Dog"}},
		UninitializedThis{}, Uninitialized{Offset: 3}, Uninitialized{Offset: 9},
	}
}

// Reflexivity: every type is assignable to itself.
func TestLatticeLawReflexivity(t *testing.T) {
	for _, v := range sampleTypes() {
		assert.True(t, IsAssignableTo(v, v, ctx), "%v should be assignable to itself", v)
	}
}

// merge(a, a) == a.
func TestLatticeLawMergeIdempotent(t *testing.T) {
	for _, v := range sampleTypes() {
		assert.Equal(t, v, Merge(v, v, ctx), "merge(%v, %v) should equal %v", v, v, v)
	}
}

// a and b are both assignable to merge(a, b).
func TestLatticeLawMergeIsUpperBound(t *testing.T) {
	samples := sampleTypes()
	for _, a := range samples {
		for _, b := range samples {
			m := Merge(a, b, ctx)
			assert.True(t, IsAssignableTo(a, m, ctx), "merge(%v, %v) = %v must accept %v", a, b, m, a)
			assert.True(t, IsAssignableTo(b, m, ctx), "merge(%v, %v) = %v must accept %v", a, b, m, b)
		}
	}
}

// merge(a, Top) == Top for any a.
func TestLatticeLawMergeWithTop(t *testing.T) {
	for _, v := range sampleTypes() {
		assert.Equal(t, Top{}, Merge(v, Top{}, ctx))
		assert.Equal(t, Top{}, Merge(Top{}, v, ctx))
	}
}

// merge(Null, R) == R for any initialized reference R.
func TestLatticeLawMergeNullWithReference(t *testing.T) {
	refs := []VerificationType{
		Object{ClassName: "Dog"},
		Array{Component: Integer{}},
		Array{Component: Object{ClassName: "Cat"}},
	}
	for _, r := range refs {
		assert.Equal(t, r, Merge(Null{}, r, ctx))
		assert.Equal(t, r, Merge(r, Null{}, ctx))
	}
}

func TestMergeDistinctPrimitivesIsTop(t *testing.T) {
	assert.Equal(t, Top{}, Merge(Integer{}, Float{}, ctx))
	assert.Equal(t, Top{}, Merge(Long{}, Double{}, ctx))
}

func TestMergeDistinctUninitializedIsTop(t *testing.T) {
	assert.Equal(t, Top{}, Merge(Uninitialized{Offset: 3}, Uninitialized{Offset: 9}, ctx))
}

func TestMergeObjectsUsesCommonSuperclass(t *testing.T) {
	assert.Equal(t, Object{ClassName: "Animal"}, Merge(Object{ClassName: "Dog"}, Object{ClassName: "Cat"}, ctx))
	assert.Equal(t, Object{ClassName: ClassObject}, Merge(Object{ClassName: "Dog"}, Object{ClassName: "Plant"}, ctx))
}

func TestArrayAssignableToObjectCloneableSerializable(t *testing.T) {
	arr := Array{Component: Object{ClassName: "Dog"}}
	assert.True(t, IsAssignableTo(arr, Object{ClassName: ClassObject}, ctx))
	assert.True(t, IsAssignableTo(arr, Object{ClassName: ClassCloneable}, ctx))
	assert.True(t, IsAssignableTo(arr, Object{ClassName: ClassSerializable}, ctx))
	assert.False(t, IsAssignableTo(arr, Object{ClassName: "Dog"}, ctx))
}

func TestArrayComponentCovarianceForReferences(t *testing.T) {
	dogArr := Array{Component: Object{ClassName: "Dog"}}
	animalArr := Array{Component: Object{ClassName: "Animal"}}
	assert.True(t, IsAssignableTo(dogArr, animalArr, ctx))
	assert.False(t, IsAssignableTo(animalArr, dogArr, ctx))
}

func TestArrayComponentInvarianceForPrimitives(t *testing.T) {
	intArr := Array{Component: Integer{}}
	floatArr := Array{Component: Float{}}
	assert.False(t, IsAssignableTo(intArr, floatArr, ctx))
	assert.True(t, IsAssignableTo(intArr, intArr, ctx))
}

func TestUninitializedNotAssignableToObject(t *testing.T) {
	assert.False(t, IsAssignableTo(Uninitialized{Offset: 4}, Object{ClassName: "Dog"}, ctx))
	assert.False(t, IsAssignableTo(UninitializedThis{}, Object{ClassName: "Dog"}, ctx))
}

func TestNullAssignableToAnyInitializedReference(t *testing.T) {
	assert.True(t, IsAssignableTo(Null{}, Object{ClassName: "Dog"}, ctx))
	assert.True(t, IsAssignableTo(Null{}, Array{Component: Integer{}}, ctx))
	assert.False(t, IsAssignableTo(Null{}, UninitializedThis{}, ctx))
}
