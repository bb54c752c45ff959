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

// ---- constant pool round trip ----
// every CP entry kind round trips		TestConstantPoolRoundTrip
// Long/Double occupy two slots		TestConstantPoolWideSlots
// invalid constant pool tag			TestInvalidConstantPoolTag
// truncated constant pool				TestTruncatedConstantPool
//
// ---- class file structure ----
// bad magic number						TestInvalidMagic
// minimal class file round trips		TestMinimalClassFileRoundTrip
// trailing bytes after class file		TestTrailingBytes
//
// ---- module descriptor parsing ----
// missing Module attribute			TestModuleDescriptorMissingAttribute
// full descriptor parses correctly	TestModuleDescriptorFullParse

func buildMinimalClassFile() *ClassFile {
	cp := NewConstantPool()
	utf8Object := cp.Append(Utf8Entry{Value: "java/lang/Object"})
	classObject := cp.Append(ClassEntry{NameIndex: utf8Object})
	utf8This := cp.Append(Utf8Entry{Value: "Minimal"})
	classThis := cp.Append(ClassEntry{NameIndex: utf8This})

	return &ClassFile{
		MinorVersion: 0,
		MajorVersion: 61,
		ConstantPool: cp,
		AccessFlags:  AccPublic | AccSuper,
		ThisClass:    classThis,
		SuperClass:   classObject,
	}
}

func TestConstantPoolRoundTrip(t *testing.T) {
	cp := NewConstantPool()
	cp.Append(Utf8Entry{Value: "hello"})
	cp.Append(IntegerEntry{Value: -7})
	cp.Append(FloatEntry{Value: 3.5})
	longIdx := cp.Append(LongEntry{Value: 1234567890123})
	cp.Append(DoubleEntry{Value: 2.71828})
	nameIdx := cp.Append(Utf8Entry{Value: "java/lang/String"})
	classIdx := cp.Append(ClassEntry{NameIndex: nameIdx})
	cp.Append(StringEntry{StringIndex: nameIdx})
	ntNameIdx := cp.Append(Utf8Entry{Value: "length"})
	ntDescIdx := cp.Append(Utf8Entry{Value: "()I"})
	ntIdx := cp.Append(NameAndTypeEntry{NameIndex: ntNameIdx, DescriptorIndex: ntDescIdx})
	mhTarget := cp.Append(MethodrefEntry{ClassIndex: classIdx, NameAndTypeIndex: ntIdx})
	cp.Append(FieldrefEntry{ClassIndex: classIdx, NameAndTypeIndex: ntIdx})
	cp.Append(InterfaceMethodrefEntry{ClassIndex: classIdx, NameAndTypeIndex: ntIdx})
	cp.Append(MethodHandleEntry{ReferenceKind: 6, ReferenceIndex: mhTarget})
	mtDescIdx := cp.Append(Utf8Entry{Value: "()V"})
	cp.Append(MethodTypeEntry{DescriptorIndex: mtDescIdx})
	cp.Append(DynamicEntry{BootstrapMethodAttrIndex: 0, NameAndTypeIndex: ntIdx})
	cp.Append(InvokeDynamicEntry{BootstrapMethodAttrIndex: 0, NameAndTypeIndex: ntIdx})
	modNameIdx := cp.Append(Utf8Entry{Value: "java.base"})
	cp.Append(ModuleEntry{NameIndex: modNameIdx})
	pkgNameIdx := cp.Append(Utf8Entry{Value: "java/lang"})
	cp.Append(PackageEntry{NameIndex: pkgNameIdx})

	w := &byteWriter{}
	encodeConstantPool(w, cp)
	r := newByteReader(w.b)
	decoded, err := decodeConstantPool(r)
	require.NoError(t, err)
	assert.Equal(t, cp, decoded)

	// Long at longIdx occupies a second, unusable slot (JVMS §4.4.5).
	assert.IsType(t, UnusableSlot{}, decoded.Entries[longIdx+1])
}

func TestConstantPoolWideSlots(t *testing.T) {
	cp := NewConstantPool()
	idx := cp.Append(LongEntry{Value: 42})
	next := cp.Append(Utf8Entry{Value: "after-long"})
	assert.Equal(t, idx+2, next, "inserting a wide constant must advance the next free slot by two")
}

func TestInvalidConstantPoolTag(t *testing.T) {
	r := newByteReader([]byte{})
	_, err := decodeOneEntry(r, 99)
	require.Error(t, err)
	assert.True(t, IsClassFormatError(err))
}

func TestTruncatedConstantPool(t *testing.T) {
	r := newByteReader([]byte{0, 2, TagInteger, 0, 0}) // declares 1 entry, but Integer needs 4 bytes
	_, err := decodeConstantPool(r)
	require.Error(t, err)
}

func TestInvalidMagic(t *testing.T) {
	b := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0, 0, 0, 61, 0, 1}
	_, err := Decode(b)
	require.Error(t, err)
	assert.True(t, IsClassFormatError(err))
}

func TestMinimalClassFileRoundTrip(t *testing.T) {
	cf := buildMinimalClassFile()
	b, err := Encode(cf)
	require.NoError(t, err)

	decoded, err := Decode(b)
	require.NoError(t, err)

	reencoded, err := Encode(decoded)
	require.NoError(t, err)
	assert.Equal(t, b, reencoded, "encode(decode(b)) must equal b for a well-formed class file")

	thisName, err := decoded.ThisClassName()
	require.NoError(t, err)
	assert.Equal(t, "Minimal", thisName)
}

func TestClassFileWithFieldsAndMethodsRoundTrip(t *testing.T) {
	cp := NewConstantPool()
	cp.Append(Utf8Entry{Value: "Code"})
	utf8Object := cp.Append(Utf8Entry{Value: "java/lang/Object"})
	classObject := cp.Append(ClassEntry{NameIndex: utf8Object})
	utf8This := cp.Append(Utf8Entry{Value: "Counter"})
	classThis := cp.Append(ClassEntry{NameIndex: utf8This})
	utf8Count := cp.Append(Utf8Entry{Value: "count"})
	utf8IntDesc := cp.Append(Utf8Entry{Value: "I"})
	utf8Name := cp.Append(Utf8Entry{Value: "name"})
	utf8StrDesc := cp.Append(Utf8Entry{Value: "Ljava/lang/String;"})
	utf8Get := cp.Append(Utf8Entry{Value: "get"})
	utf8GetDesc := cp.Append(Utf8Entry{Value: "()I"})

	cf := &ClassFile{
		MinorVersion: 0,
		MajorVersion: 61,
		ConstantPool: cp,
		AccessFlags:  AccPublic | AccSuper,
		ThisClass:    classThis,
		SuperClass:   classObject,
		Fields: []FieldInfo{
			{AccessFlags: AccPrivate, NameIndex: utf8Count, DescIndex: utf8IntDesc},
			{AccessFlags: AccPrivate | AccStatic, NameIndex: utf8Name, DescIndex: utf8StrDesc},
		},
		Methods: []MethodInfo{{
			AccessFlags: AccPublic,
			NameIndex:   utf8Get,
			DescIndex:   utf8GetDesc,
			Attributes: []Attribute{CodeAttribute{
				MaxStack:  1,
				MaxLocals: 1,
				Code:      []byte{0x03, 0xAC}, // iconst_0; ireturn
			}},
		}},
	}

	b, err := Encode(cf)
	require.NoError(t, err)

	decoded, err := Decode(b)
	require.NoError(t, err)
	require.Len(t, decoded.Fields, 2)
	for i, want := range cf.Fields {
		assert.Equal(t, want.AccessFlags, decoded.Fields[i].AccessFlags)
		assert.Equal(t, want.NameIndex, decoded.Fields[i].NameIndex)
		assert.Equal(t, want.DescIndex, decoded.Fields[i].DescIndex)
	}

	name, err := decoded.ConstantPool.Utf8(decoded.Fields[0].NameIndex)
	require.NoError(t, err)
	assert.Equal(t, "count", name)

	reencoded, err := Encode(decoded)
	require.NoError(t, err)
	assert.Equal(t, b, reencoded)
}

func TestTrailingBytes(t *testing.T) {
	cf := buildMinimalClassFile()
	b, err := Encode(cf)
	require.NoError(t, err)
	b = append(b, 0xFF)
	_, err = Decode(b)
	require.Error(t, err)
}

func buildModuleInfoClassFile() *ClassFile {
	cp := NewConstantPool()
	utf8This := cp.Append(Utf8Entry{Value: "module-info"})
	classThis := cp.Append(ClassEntry{NameIndex: utf8This})

	alphaNameIdx := cp.Append(Utf8Entry{Value: "alpha"})
	alphaModule := cp.Append(ModuleEntry{NameIndex: alphaNameIdx})
	baseNameIdx := cp.Append(Utf8Entry{Value: "java.base"})
	baseModule := cp.Append(ModuleEntry{NameIndex: baseNameIdx})
	pkgNameIdx := cp.Append(Utf8Entry{Value: "alpha/api"})
	pkgEntry := cp.Append(PackageEntry{NameIndex: pkgNameIdx})
	gammaNameIdx := cp.Append(Utf8Entry{Value: "gamma"})
	gammaModule := cp.Append(ModuleEntry{NameIndex: gammaNameIdx})

	return &ClassFile{
		MinorVersion: 0,
		MajorVersion: 53,
		ConstantPool: cp,
		AccessFlags:  AccModule,
		ThisClass:    classThis,
		SuperClass:   0,
		Attributes: []Attribute{
			ModuleAttribute{
				ModuleNameIndex: alphaModule,
				ModuleFlags:     0,
				Requires: []RequiresEntry{
					{Index: baseModule, Flags: 0},
				},
				Exports: []ExportsEntry{
					{Index: pkgEntry, Flags: 0, ToIndexes: []uint16{gammaModule}},
				},
			},
		},
	}
}

func TestModuleDescriptorMissingAttribute(t *testing.T) {
	cf := buildMinimalClassFile()
	_, err := ParseModuleDescriptor(cf)
	require.Error(t, err)
}

func TestModuleDescriptorFullParse(t *testing.T) {
	cf := buildModuleInfoClassFile()
	desc, err := ParseModuleDescriptor(cf)
	require.NoError(t, err)
	assert.Equal(t, "alpha", desc.Name)
	require.Len(t, desc.Requires, 1)
	assert.Equal(t, "java.base", desc.Requires[0].Name)
	require.Len(t, desc.Exports, 1)
	assert.Equal(t, "alpha/api", desc.Exports[0].Package)
	assert.Equal(t, []string{"gamma"}, desc.Exports[0].To)
}
