/*
 * jacovm - A Java virtual machine core
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */
package classloader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Code/StackMapTable/LineNumberTable attribute codec round trips (all seven
// StackFrame variants), plus the exact byte sequences worked out for
// SameFrame and FullFrame.

func TestCodeAttributeRoundTrip(t *testing.T) {
	cp := NewConstantPool()
	codeAttrName := cp.Append(Utf8Entry{Value: "Code"})
	_ = codeAttrName

	code := CodeAttribute{
		MaxStack:  2,
		MaxLocals: 1,
		Code:      []byte{0x2A, 0xB1}, // ALOAD_0, RETURN
		ExceptionTbl: []ExceptionTableEntry{
			{StartPC: 0, EndPC: 1, HandlerPC: 1, CatchType: 0},
		},
	}

	w := &byteWriter{}
	require.NoError(t, encodeOneAttribute(w, cp, code))

	r := newByteReader(w.b)
	decoded, err := decodeOneAttribute(r, cp)
	require.NoError(t, err)

	got, ok := decoded.(CodeAttribute)
	require.True(t, ok)
	assert.Equal(t, code.MaxStack, got.MaxStack)
	assert.Equal(t, code.MaxLocals, got.MaxLocals)
	assert.Equal(t, code.Code, got.Code)
	assert.Equal(t, code.ExceptionTbl, got.ExceptionTbl)
}

func TestLineNumberTableRoundTrip(t *testing.T) {
	cp := NewConstantPool()
	cp.Append(Utf8Entry{Value: "LineNumberTable"})

	lnt := LineNumberTableAttribute{Entries: []LineNumberEntry{
		{StartPC: 0, LineNumber: 10},
		{StartPC: 4, LineNumber: 11},
	}}

	w := &byteWriter{}
	require.NoError(t, encodeOneAttribute(w, cp, lnt))

	r := newByteReader(w.b)
	decoded, err := decodeOneAttribute(r, cp)
	require.NoError(t, err)
	assert.Equal(t, lnt, decoded)
}

func TestRawAttributePreservedBitForBit(t *testing.T) {
	cp := NewConstantPool()
	cp.Append(Utf8Entry{Value: "Signature"})

	raw := RawAttribute{Name: "Signature", Info: []byte{0, 7}}

	w := &byteWriter{}
	require.NoError(t, encodeOneAttribute(w, cp, raw))

	r := newByteReader(w.b)
	decoded, err := decodeOneAttribute(r, cp)
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)
}

// SameFrame{42} must encode to exactly [42].
func TestSameFrameExactBytes(t *testing.T) {
	w := &byteWriter{}
	require.NoError(t, encodeStackFrame(w, SameFrame{Type: 42}))
	assert.Equal(t, []byte{42}, w.b)

	r := newByteReader(w.b)
	f, err := decodeStackFrame(r)
	require.NoError(t, err)
	assert.Equal(t, SameFrame{Type: 42}, f)
}

// FullFrame{255, delta=42, locals=[Null], stack=[Integer]} must encode to
// exactly [255, 0,42, 0,1, 5, 0,1, 1].
func TestFullFrameExactBytes(t *testing.T) {
	frame := FullFrame{
		Type:         255,
		OffsetDeltaV: 42,
		Locals:       []VerificationTypeInfo{{Tag: VNull}},
		Stack:        []VerificationTypeInfo{{Tag: VInteger}},
	}
	w := &byteWriter{}
	require.NoError(t, encodeStackFrame(w, frame))
	assert.Equal(t, []byte{255, 0, 42, 0, 1, 5, 0, 1, 1}, w.b)

	r := newByteReader(w.b)
	decoded, err := decodeStackFrame(r)
	require.NoError(t, err)
	assert.Equal(t, frame, decoded)
}

func TestStackMapTableRoundTripAllVariants(t *testing.T) {
	table := &StackMapTable{Entries: []StackFrame{
		SameFrame{Type: 10},
		SameLocals1StackItemFrame{Type: 70, Stack: VerificationTypeInfo{Tag: VInteger}},
		SameLocals1StackItemFrameExtended{Type: 247, OffsetDeltaV: 300, Stack: VerificationTypeInfo{Tag: VObject, CPoolIndex: 5}},
		ChopFrame{Type: 249, OffsetDeltaV: 12},
		SameFrameExtended{Type: 251, OffsetDeltaV: 7},
		AppendFrame{Type: 253, OffsetDeltaV: 3, Locals: []VerificationTypeInfo{{Tag: VInteger}, {Tag: VFloat}}},
		FullFrame{Type: 255, OffsetDeltaV: 1, Locals: []VerificationTypeInfo{{Tag: VLong}}, Stack: nil},
	}}

	b, err := encodeStackMapTable(table)
	require.NoError(t, err)

	r := newByteReader(b)
	decoded, err := decodeStackMapTable(r)
	require.NoError(t, err)
	assert.Equal(t, table, decoded)

	anchors := decoded.Anchors()
	require.Len(t, anchors, 7)
	assert.Equal(t, 10, anchors[0])
	assert.Equal(t, 10+6+1, anchors[1]) // 70-64=6
}

func TestInvalidVerificationTypeTag(t *testing.T) {
	r := newByteReader([]byte{99})
	_, err := decodeVerificationTypeInfo(r)
	require.Error(t, err)
}

func TestInvalidFrameType(t *testing.T) {
	// frame_type values 128-246 are reserved/unused.
	r := newByteReader([]byte{200})
	_, err := decodeStackFrame(r)
	require.Error(t, err)
}
