/*
 * jacovm - A Java virtual machine core
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 *
 * ClassFile is the full JVMS §4.1 class-file structure. Decode/Encode's
 * contract: encode(decode(b)) == b for any well-formed input.
 */
package classloader

const classFileMagic = 0xCAFEBABE

// Access-flag bits shared by classes, fields, and methods (JVMS §4.1,
// §4.5, §4.6 — only the subset the verifier/resolver/module system use).
const (
	AccPublic       = 0x0001
	AccPrivate      = 0x0002
	AccProtected    = 0x0004
	AccStatic       = 0x0008
	AccFinal        = 0x0010
	AccSuper        = 0x0020
	AccSynchronized = 0x0020
	AccBridge       = 0x0040
	AccVarargs      = 0x0080
	AccNative       = 0x0100
	AccInterface    = 0x0200
	AccAbstract     = 0x0400
	AccStrict       = 0x0800
	AccSynthetic    = 0x1000
	AccAnnotation   = 0x2000
	AccEnum         = 0x4000
	AccModule       = 0x8000
)

type FieldInfo struct {
	AccessFlags uint16
	NameIndex   uint16
	DescIndex   uint16
	Attributes  []Attribute
}

type MethodInfo struct {
	AccessFlags uint16
	NameIndex   uint16
	DescIndex   uint16
	Attributes  []Attribute
}

// Code returns the method's Code attribute, or nil for abstract/native
// methods which declare none.
func (m *MethodInfo) Code() *CodeAttribute {
	for _, a := range m.Attributes {
		if c, ok := a.(CodeAttribute); ok {
			return &c
		}
	}
	return nil
}

// ClassFile is the full decoded class-file record.
type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool *ConstantPool
	AccessFlags  uint16
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []FieldInfo
	Methods      []MethodInfo
	Attributes   []Attribute
}

// ThisClassName resolves the This-class constant-pool entry to a name.
func (c *ClassFile) ThisClassName() (string, error) { return c.ConstantPool.ClassName(c.ThisClass) }

// SuperClassName resolves the Super-class entry; empty for java/lang/Object.
func (c *ClassFile) SuperClassName() (string, error) {
	if c.SuperClass == 0 {
		return "", nil
	}
	return c.ConstantPool.ClassName(c.SuperClass)
}

func (c *ClassFile) IsInterface() bool { return c.AccessFlags&AccInterface != 0 }

// Decode parses a class file's bytes into a ClassFile, or fails with a
// *ClassFormatError (JVMS §4.1).
func Decode(b []byte) (*ClassFile, error) {
	r := newByteReader(b)

	magic, err := r.u4()
	if err != nil {
		return nil, err
	}
	if magic != classFileMagic {
		return nil, CFE("invalid magic number 0x%08X", magic)
	}

	minor, err := r.u2()
	if err != nil {
		return nil, err
	}
	major, err := r.u2()
	if err != nil {
		return nil, err
	}

	cp, err := decodeConstantPool(r)
	if err != nil {
		return nil, err
	}

	accessFlags, err := r.u2()
	if err != nil {
		return nil, err
	}
	thisClass, err := r.u2()
	if err != nil {
		return nil, err
	}
	superClass, err := r.u2()
	if err != nil {
		return nil, err
	}

	ifaceCount, err := r.u2()
	if err != nil {
		return nil, err
	}
	interfaces := make([]uint16, ifaceCount)
	for i := range interfaces {
		interfaces[i], err = r.u2()
		if err != nil {
			return nil, err
		}
	}

	fields, err := decodeFields(r, cp)
	if err != nil {
		return nil, err
	}
	methods, err := decodeMethods(r, cp)
	if err != nil {
		return nil, err
	}
	attrs, err := decodeAttributes(r, cp)
	if err != nil {
		return nil, err
	}

	if r.remaining() != 0 {
		return nil, CFE("%d trailing bytes after class file end", r.remaining())
	}

	return &ClassFile{
		MinorVersion: minor,
		MajorVersion: major,
		ConstantPool: cp,
		AccessFlags:  accessFlags,
		ThisClass:    thisClass,
		SuperClass:   superClass,
		Interfaces:   interfaces,
		Fields:       fields,
		Methods:      methods,
		Attributes:   attrs,
	}, nil
}

// decodeMemberInfo reads one field_info/method_info record (the two
// share a byte layout, JVMS §4.5/§4.6).
func decodeMemberInfo(r *byteReader, cp *ConstantPool) (flags, nameIdx, descIdx uint16, attrs []Attribute, err error) {
	if flags, err = r.u2(); err != nil {
		return
	}
	if nameIdx, err = r.u2(); err != nil {
		return
	}
	if descIdx, err = r.u2(); err != nil {
		return
	}
	attrs, err = decodeAttributes(r, cp)
	return
}

func decodeFields(r *byteReader, cp *ConstantPool) ([]FieldInfo, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	out := make([]FieldInfo, count)
	for i := range out {
		flags, nameIdx, descIdx, attrs, err := decodeMemberInfo(r, cp)
		if err != nil {
			return nil, err
		}
		out[i] = FieldInfo{AccessFlags: flags, NameIndex: nameIdx, DescIndex: descIdx, Attributes: attrs}
	}
	return out, nil
}

func decodeMethods(r *byteReader, cp *ConstantPool) ([]MethodInfo, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	out := make([]MethodInfo, count)
	for i := range out {
		flags, nameIdx, descIdx, attrs, err := decodeMemberInfo(r, cp)
		if err != nil {
			return nil, err
		}
		out[i] = MethodInfo{AccessFlags: flags, NameIndex: nameIdx, DescIndex: descIdx, Attributes: attrs}
	}
	return out, nil
}

// Encode serializes c back to bytes. For any b decoded successfully by
// Decode, Encode(Decode(b)) == b.
func Encode(c *ClassFile) ([]byte, error) {
	w := &byteWriter{}
	w.u4(classFileMagic)
	w.u2(c.MinorVersion)
	w.u2(c.MajorVersion)
	encodeConstantPool(w, c.ConstantPool)
	w.u2(c.AccessFlags)
	w.u2(c.ThisClass)
	w.u2(c.SuperClass)
	w.u2(uint16(len(c.Interfaces)))
	for _, i := range c.Interfaces {
		w.u2(i)
	}

	w.u2(uint16(len(c.Fields)))
	for _, f := range c.Fields {
		w.u2(f.AccessFlags)
		w.u2(f.NameIndex)
		w.u2(f.DescIndex)
		if err := encodeAttributes(w, c.ConstantPool, f.Attributes); err != nil {
			return nil, err
		}
	}

	w.u2(uint16(len(c.Methods)))
	for _, m := range c.Methods {
		w.u2(m.AccessFlags)
		w.u2(m.NameIndex)
		w.u2(m.DescIndex)
		if err := encodeAttributes(w, c.ConstantPool, m.Attributes); err != nil {
			return nil, err
		}
	}

	if err := encodeAttributes(w, c.ConstantPool, c.Attributes); err != nil {
		return nil, err
	}
	return w.b, nil
}
