/*
 * jacovm - A Java virtual machine core
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 *
 * This file models the constant pool: a 1-based sparse sequence of typed
 * entries. Long and Double occupy two adjacent slots; the second slot is
 * an UnusableSlot placeholder so that index arithmetic elsewhere never
 * has to special-case category-2 widths.
 */
package classloader

// CP entry tag values, JVMS §4.4.
const (
	TagUtf8               = 1
	TagInteger            = 3
	TagFloat              = 4
	TagLong               = 5
	TagDouble             = 6
	TagClass              = 7
	TagString             = 8
	TagFieldref           = 9
	TagMethodref          = 10
	TagInterfaceMethodref = 11
	TagNameAndType        = 12
	TagMethodHandle       = 15
	TagMethodType         = 16
	TagDynamic            = 17
	TagInvokeDynamic      = 18
	TagModule             = 19
	TagPackage            = 20
)

// CPEntry is the common interface satisfied by every constant-pool entry
// kind. Tag identifies which concrete type the entry holds.
type CPEntry interface {
	Tag() uint8
}

// UnusableSlot occupies the slot immediately after a Long or Double entry;
// JVMS §4.4.5 forbids indexing it directly.
type UnusableSlot struct{}

func (UnusableSlot) Tag() uint8 { return 0 }

type Utf8Entry struct{ Value string }

func (Utf8Entry) Tag() uint8 { return TagUtf8 }

type IntegerEntry struct{ Value int32 }

func (IntegerEntry) Tag() uint8 { return TagInteger }

type FloatEntry struct{ Value float32 }

func (FloatEntry) Tag() uint8 { return TagFloat }

type LongEntry struct{ Value int64 }

func (LongEntry) Tag() uint8 { return TagLong }

type DoubleEntry struct{ Value float64 }

func (DoubleEntry) Tag() uint8 { return TagDouble }

// ClassEntry points at a Utf8 entry holding the class's internal name.
type ClassEntry struct{ NameIndex uint16 }

func (ClassEntry) Tag() uint8 { return TagClass }

// StringEntry points at a Utf8 entry; the entry represents a String
// literal's contents.
type StringEntry struct{ StringIndex uint16 }

func (StringEntry) Tag() uint8 { return TagString }

type FieldrefEntry struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (FieldrefEntry) Tag() uint8 { return TagFieldref }

type MethodrefEntry struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (MethodrefEntry) Tag() uint8 { return TagMethodref }

type InterfaceMethodrefEntry struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (InterfaceMethodrefEntry) Tag() uint8 { return TagInterfaceMethodref }

type NameAndTypeEntry struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

func (NameAndTypeEntry) Tag() uint8 { return TagNameAndType }

// MethodHandleEntry, JVMS §4.4.8. ReferenceKind ranges 1-9.
type MethodHandleEntry struct {
	ReferenceKind  uint8
	ReferenceIndex uint16
}

func (MethodHandleEntry) Tag() uint8 { return TagMethodHandle }

type MethodTypeEntry struct{ DescriptorIndex uint16 }

func (MethodTypeEntry) Tag() uint8 { return TagMethodType }

// DynamicEntry backs a condy (constant dynamic) constant, JVMS §4.4.10.
type DynamicEntry struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (DynamicEntry) Tag() uint8 { return TagDynamic }

type InvokeDynamicEntry struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (InvokeDynamicEntry) Tag() uint8 { return TagInvokeDynamic }

// ModuleEntry points at a Utf8 entry holding the module's name.
type ModuleEntry struct{ NameIndex uint16 }

func (ModuleEntry) Tag() uint8 { return TagModule }

// PackageEntry points at a Utf8 entry holding a binary package name.
type PackageEntry struct{ NameIndex uint16 }

func (PackageEntry) Tag() uint8 { return TagPackage }

// ConstantPool is 1-indexed; Entries[0] is always nil (there is no CP
// entry #0). Inserting a Long/Double via Append advances the next free
// slot by two, leaving an UnusableSlot in between (JVMS §4.4.5).
type ConstantPool struct {
	Entries []CPEntry
}

// NewConstantPool returns an empty pool with the reserved index-0 slot.
func NewConstantPool() *ConstantPool {
	return &ConstantPool{Entries: []CPEntry{nil}}
}

// Count is the constant_pool_count field: one more than the highest valid
// index, mirroring JVMS's off-by-one convention (it counts the unused
// slot 0 too).
func (cp *ConstantPool) Count() int { return len(cp.Entries) }

// Append adds an entry and returns its 1-based index. Long/Double entries
// consume the following slot as well.
func (cp *ConstantPool) Append(e CPEntry) uint16 {
	idx := uint16(len(cp.Entries))
	cp.Entries = append(cp.Entries, e)
	if e.Tag() == TagLong || e.Tag() == TagDouble {
		cp.Entries = append(cp.Entries, UnusableSlot{})
	}
	return idx
}

// At returns the entry at index, or nil if the index is out of range.
func (cp *ConstantPool) At(index uint16) CPEntry {
	if int(index) <= 0 || int(index) >= len(cp.Entries) {
		return nil
	}
	return cp.Entries[index]
}

// Utf8 resolves a Utf8 entry by index, failing if the index doesn't name
// one: every index must refer to a live constant-pool entry of the
// expected kind.
func (cp *ConstantPool) Utf8(index uint16) (string, error) {
	e := cp.At(index)
	u, ok := e.(Utf8Entry)
	if !ok {
		return "", CFE("constant pool index %d is not a Utf8 entry", index)
	}
	return u.Value, nil
}

// ClassName resolves a Class entry by index to its (Utf8) name string.
func (cp *ConstantPool) ClassName(index uint16) (string, error) {
	e := cp.At(index)
	c, ok := e.(ClassEntry)
	if !ok {
		return "", CFE("constant pool index %d is not a Class entry", index)
	}
	return cp.Utf8(c.NameIndex)
}

// FieldRef resolves a Fieldref entry to its owning class's internal name
// plus the field's name and descriptor.
func (cp *ConstantPool) FieldRef(index uint16) (class, name, descriptor string, err error) {
	e := cp.At(index)
	fr, ok := e.(FieldrefEntry)
	if !ok {
		return "", "", "", CFE("constant pool index %d is not a Fieldref entry", index)
	}
	class, err = cp.ClassName(fr.ClassIndex)
	if err != nil {
		return "", "", "", err
	}
	name, descriptor, err = cp.NameAndType(fr.NameAndTypeIndex)
	return class, name, descriptor, err
}

// MethodRef resolves a Methodref or InterfaceMethodref entry to its
// owning class's internal name, the method's name and descriptor, and
// whether the entry was an InterfaceMethodref.
func (cp *ConstantPool) MethodRef(index uint16) (class, name, descriptor string, isInterface bool, err error) {
	e := cp.At(index)
	switch mr := e.(type) {
	case MethodrefEntry:
		class, err = cp.ClassName(mr.ClassIndex)
		if err != nil {
			return "", "", "", false, err
		}
		name, descriptor, err = cp.NameAndType(mr.NameAndTypeIndex)
		return class, name, descriptor, false, err
	case InterfaceMethodrefEntry:
		class, err = cp.ClassName(mr.ClassIndex)
		if err != nil {
			return "", "", "", true, err
		}
		name, descriptor, err = cp.NameAndType(mr.NameAndTypeIndex)
		return class, name, descriptor, true, err
	default:
		return "", "", "", false, CFE("constant pool index %d is not a Methodref/InterfaceMethodref entry", index)
	}
}

// InvokeDynamicNameAndType resolves an InvokeDynamic entry's call-site
// name and descriptor (the bootstrap-method-attr index is a separate
// concern the resolver doesn't need for arity computation).
func (cp *ConstantPool) InvokeDynamicNameAndType(index uint16) (name, descriptor string, err error) {
	e := cp.At(index)
	id, ok := e.(InvokeDynamicEntry)
	if !ok {
		return "", "", CFE("constant pool index %d is not an InvokeDynamic entry", index)
	}
	return cp.NameAndType(id.NameAndTypeIndex)
}

// NameAndType resolves a NameAndType entry's two Utf8 strings.
func (cp *ConstantPool) NameAndType(index uint16) (name, descriptor string, err error) {
	e := cp.At(index)
	nt, ok := e.(NameAndTypeEntry)
	if !ok {
		return "", "", CFE("constant pool index %d is not a NameAndType entry", index)
	}
	name, err = cp.Utf8(nt.NameIndex)
	if err != nil {
		return "", "", err
	}
	descriptor, err = cp.Utf8(nt.DescriptorIndex)
	return name, descriptor, err
}
