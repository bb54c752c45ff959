/*
 * jacovm - A Java virtual machine core
 * Registry lookup contract plus the bootstrap handlers' behavior over
 * the compact-string object model.
 */
package gfunction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jacovm/object"
	"jacovm/types"
)

func TestGetUsesOwnerNameDescriptorKey(t *testing.T) {
	LoadIntrinsics()

	_, ok := Get("java/lang/Object", "hashCode", "()I")
	assert.True(t, ok)
	_, ok = Get("java/lang/Object", "hashCode", "()J")
	assert.False(t, ok, "descriptor is part of the key")
	_, ok = Get("java/lang/Object", "noSuchMethod", "()V")
	assert.False(t, ok)
}

func TestObjectIdentityHandlers(t *testing.T) {
	LoadIntrinsics()

	a := object.NewObject("java/lang/Object")
	b := object.NewObject("java/lang/Object")

	hash, _ := Get("java/lang/Object", "hashCode", "()I")
	assert.Equal(t, int64(int32(a.Mark.Hash)), hash.GFunction([]interface{}{a}))

	eq, _ := Get("java/lang/Object", "equals", "(Ljava/lang/Object;)Z")
	assert.Equal(t, types.JavaBoolTrue, eq.GFunction([]interface{}{a, a}))
	assert.Equal(t, types.JavaBoolFalse, eq.GFunction([]interface{}{a, b}))

	clone, _ := Get("java/lang/Object", "clone", "()Ljava/lang/Object;")
	_, isErr := clone.GFunction([]interface{}{a}).(*GErrBlk)
	assert.True(t, isErr, "clone is recognized but unimplemented")
}

func TestStringHandlers(t *testing.T) {
	LoadIntrinsics()

	s := object.StringObjectFromGoString("jacovm")

	length, _ := Get("java/lang/String", "length", "()I")
	assert.Equal(t, int64(6), length.GFunction([]interface{}{s}))

	charAt, _ := Get("java/lang/String", "charAt", "(I)C")
	assert.Equal(t, int64('j'), charAt.GFunction([]interface{}{s, int32(0)}))

	oob := charAt.GFunction([]interface{}{s, int32(9)})
	errBlk, isErr := oob.(*GErrBlk)
	require.True(t, isErr)
	assert.Contains(t, errBlk.ErrMsg, "index 9")

	// the published 31-based hash: "ab" -> 31*'a' + 'b'
	hash, _ := Get("java/lang/String", "hashCode", "()I")
	ab := object.StringObjectFromGoString("ab")
	assert.Equal(t, int64(31*int32('a')+int32('b')), hash.GFunction([]interface{}{ab}))

	empty, _ := Get("java/lang/String", "isEmpty", "()Z")
	assert.Equal(t, types.JavaBoolFalse, empty.GFunction([]interface{}{s}))
	assert.Equal(t, types.JavaBoolTrue, empty.GFunction([]interface{}{object.StringObjectFromGoString("")}))
}

func TestStringEqualsAndIntern(t *testing.T) {
	LoadIntrinsics()

	a := object.StringObjectFromGoString("pool")
	b := object.StringObjectFromGoString("pool")
	c := object.StringObjectFromGoString("other")

	eq, _ := Get("java/lang/String", "equals", "(Ljava/lang/Object;)Z")
	assert.Equal(t, types.JavaBoolTrue, eq.GFunction([]interface{}{a, b}))
	assert.Equal(t, types.JavaBoolFalse, eq.GFunction([]interface{}{a, c}))
	assert.Equal(t, types.JavaBoolFalse, eq.GFunction([]interface{}{a, object.NewObject("java/lang/Object")}))

	intern, _ := Get("java/lang/String", "intern", "()Ljava/lang/String;")
	ia := intern.GFunction([]interface{}{a}).(*object.Object)
	ib := intern.GFunction([]interface{}{b}).(*object.Object)
	assert.Equal(t, object.GoStringFromStringObject(ia), object.GoStringFromStringObject(ib))
}
