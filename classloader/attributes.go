/*
 * jacovm - A Java virtual machine core
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 *
 * Attribute is the tagged union of class-file attribute kinds. The hard
 * cases (Code, StackMapTable, Module/ModulePackages/ModuleMainClass,
 * LineNumberTable) are fully modeled; anything else is kept as a
 * RawAttribute so "encode(decode(b)) == b" holds for every well-formed
 * input regardless of which attributes it carries.
 */
package classloader

// Attribute is satisfied by every attribute_info variant this codec
// understands structurally, plus RawAttribute for everything else.
type Attribute interface {
	AttributeName() string
}

// RawAttribute preserves an attribute this codec doesn't interpret,
// bit-for-bit, by name and raw info bytes.
type RawAttribute struct {
	Name string
	Info []byte
}

func (a RawAttribute) AttributeName() string { return a.Name }

// ExceptionTableEntry is one row of a Code attribute's exception table
// at interpretation time.
type ExceptionTableEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16 // 0 means "matches any throwable"
}

// CodeAttribute is JVMS §4.7.3: bytecode plus the operand-stack/locals
// sizing the verifier and interpreter both depend on.
type CodeAttribute struct {
	MaxStack     uint16
	MaxLocals    uint16
	Code         []byte
	ExceptionTbl []ExceptionTableEntry
	Attributes   []Attribute // sub-attributes, e.g. StackMapTable, LineNumberTable
}

func (CodeAttribute) AttributeName() string { return "Code" }

// StackMapTableAttribute carries the parsed frame sequence (classloader.StackMapTable).
type StackMapTableAttribute struct {
	Table *StackMapTable
}

func (StackMapTableAttribute) AttributeName() string { return "StackMapTable" }

type LineNumberEntry struct {
	StartPC    uint16
	LineNumber uint16
}

type LineNumberTableAttribute struct {
	Entries []LineNumberEntry
}

func (LineNumberTableAttribute) AttributeName() string { return "LineNumberTable" }

// --- module-system attributes (JVMS §4.7.25-27) ---

type RequiresEntry struct {
	Index        uint16 // Module CP entry
	Flags        uint16
	VersionIndex uint16
}

type ExportsEntry struct {
	Index       uint16 // Package CP entry
	Flags       uint16
	ToIndexes   []uint16 // Module CP entries; empty means unqualified (exported to all)
}

type OpensEntry struct {
	Index     uint16 // Package CP entry
	Flags     uint16
	ToIndexes []uint16
}

type ProvidesEntry struct {
	Index        uint16 // service Class CP entry
	WithIndexes  []uint16 // implementation Class CP entries
}

// ModuleAttribute is the Module attribute, the primary input to module
// descriptor parsing.
type ModuleAttribute struct {
	ModuleNameIndex uint16
	ModuleFlags     uint16
	VersionIndex    uint16 // 0 if absent
	Requires        []RequiresEntry
	Exports         []ExportsEntry
	Opens           []OpensEntry
	UsesIndexes     []uint16 // service Class CP entries
	Provides        []ProvidesEntry
}

func (ModuleAttribute) AttributeName() string { return "Module" }

type ModulePackagesAttribute struct {
	PackageIndexes []uint16
}

func (ModulePackagesAttribute) AttributeName() string { return "ModulePackages" }

type ModuleMainClassAttribute struct {
	MainClassIndex uint16
}

func (ModuleMainClassAttribute) AttributeName() string { return "ModuleMainClass" }

func decodeAttributes(r *byteReader, cp *ConstantPool) ([]Attribute, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	attrs := make([]Attribute, count)
	for i := range attrs {
		attrs[i], err = decodeOneAttribute(r, cp)
		if err != nil {
			return nil, err
		}
	}
	return attrs, nil
}

func decodeOneAttribute(r *byteReader, cp *ConstantPool) (Attribute, error) {
	nameIndex, err := r.u2()
	if err != nil {
		return nil, err
	}
	name, err := cp.Utf8(nameIndex)
	if err != nil {
		return nil, err
	}
	length, err := r.u4()
	if err != nil {
		return nil, err
	}
	info, err := r.bytes(int(length))
	if err != nil {
		return nil, err
	}

	sub := newByteReader(info)
	switch name {
	case "Code":
		return decodeCodeAttribute(sub, cp)
	case "StackMapTable":
		table, err := decodeStackMapTable(sub)
		if err != nil {
			return nil, err
		}
		return StackMapTableAttribute{Table: table}, nil
	case "LineNumberTable":
		return decodeLineNumberTable(sub)
	case "Module":
		return decodeModuleAttribute(sub)
	case "ModulePackages":
		return decodeModulePackages(sub)
	case "ModuleMainClass":
		idx, err := sub.u2()
		if err != nil {
			return nil, err
		}
		return ModuleMainClassAttribute{MainClassIndex: idx}, nil
	default:
		return RawAttribute{Name: name, Info: info}, nil
	}
}

func decodeCodeAttribute(r *byteReader, cp *ConstantPool) (Attribute, error) {
	maxStack, err := r.u2()
	if err != nil {
		return nil, err
	}
	maxLocals, err := r.u2()
	if err != nil {
		return nil, err
	}
	codeLen, err := r.u4()
	if err != nil {
		return nil, err
	}
	code, err := r.bytes(int(codeLen))
	if err != nil {
		return nil, err
	}
	excCount, err := r.u2()
	if err != nil {
		return nil, err
	}
	excTbl := make([]ExceptionTableEntry, excCount)
	for i := range excTbl {
		start, err := r.u2()
		if err != nil {
			return nil, err
		}
		end, err := r.u2()
		if err != nil {
			return nil, err
		}
		handler, err := r.u2()
		if err != nil {
			return nil, err
		}
		catch, err := r.u2()
		if err != nil {
			return nil, err
		}
		excTbl[i] = ExceptionTableEntry{StartPC: start, EndPC: end, HandlerPC: handler, CatchType: catch}
	}
	subAttrs, err := decodeAttributes(r, cp)
	if err != nil {
		return nil, err
	}
	return CodeAttribute{
		MaxStack:     maxStack,
		MaxLocals:    maxLocals,
		Code:         code,
		ExceptionTbl: excTbl,
		Attributes:   subAttrs,
	}, nil
}

func decodeLineNumberTable(r *byteReader) (Attribute, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	entries := make([]LineNumberEntry, count)
	for i := range entries {
		pc, err := r.u2()
		if err != nil {
			return nil, err
		}
		line, err := r.u2()
		if err != nil {
			return nil, err
		}
		entries[i] = LineNumberEntry{StartPC: pc, LineNumber: line}
	}
	return LineNumberTableAttribute{Entries: entries}, nil
}

func decodeU16Slice(r *byteReader) ([]uint16, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	out := make([]uint16, count)
	for i := range out {
		out[i], err = r.u2()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func decodeModuleAttribute(r *byteReader) (Attribute, error) {
	nameIdx, err := r.u2()
	if err != nil {
		return nil, err
	}
	flags, err := r.u2()
	if err != nil {
		return nil, err
	}
	versionIdx, err := r.u2()
	if err != nil {
		return nil, err
	}

	reqCount, err := r.u2()
	if err != nil {
		return nil, err
	}
	requires := make([]RequiresEntry, reqCount)
	for i := range requires {
		idx, err := r.u2()
		if err != nil {
			return nil, err
		}
		rflags, err := r.u2()
		if err != nil {
			return nil, err
		}
		rver, err := r.u2()
		if err != nil {
			return nil, err
		}
		requires[i] = RequiresEntry{Index: idx, Flags: rflags, VersionIndex: rver}
	}

	expCount, err := r.u2()
	if err != nil {
		return nil, err
	}
	exports := make([]ExportsEntry, expCount)
	for i := range exports {
		idx, err := r.u2()
		if err != nil {
			return nil, err
		}
		eflags, err := r.u2()
		if err != nil {
			return nil, err
		}
		to, err := decodeU16Slice(r)
		if err != nil {
			return nil, err
		}
		exports[i] = ExportsEntry{Index: idx, Flags: eflags, ToIndexes: to}
	}

	openCount, err := r.u2()
	if err != nil {
		return nil, err
	}
	opens := make([]OpensEntry, openCount)
	for i := range opens {
		idx, err := r.u2()
		if err != nil {
			return nil, err
		}
		oflags, err := r.u2()
		if err != nil {
			return nil, err
		}
		to, err := decodeU16Slice(r)
		if err != nil {
			return nil, err
		}
		opens[i] = OpensEntry{Index: idx, Flags: oflags, ToIndexes: to}
	}

	uses, err := decodeU16Slice(r)
	if err != nil {
		return nil, err
	}

	provCount, err := r.u2()
	if err != nil {
		return nil, err
	}
	provides := make([]ProvidesEntry, provCount)
	for i := range provides {
		idx, err := r.u2()
		if err != nil {
			return nil, err
		}
		with, err := decodeU16Slice(r)
		if err != nil {
			return nil, err
		}
		provides[i] = ProvidesEntry{Index: idx, WithIndexes: with}
	}

	return ModuleAttribute{
		ModuleNameIndex: nameIdx,
		ModuleFlags:     flags,
		VersionIndex:    versionIdx,
		Requires:        requires,
		Exports:         exports,
		Opens:           opens,
		UsesIndexes:     uses,
		Provides:        provides,
	}, nil
}

func decodeModulePackages(r *byteReader) (Attribute, error) {
	pkgs, err := decodeU16Slice(r)
	if err != nil {
		return nil, err
	}
	return ModulePackagesAttribute{PackageIndexes: pkgs}, nil
}

// --- encoding ---

func encodeAttributes(w *byteWriter, cp *ConstantPool, attrs []Attribute) error {
	w.u2(uint16(len(attrs)))
	for _, a := range attrs {
		if err := encodeOneAttribute(w, cp, a); err != nil {
			return err
		}
	}
	return nil
}

func encodeOneAttribute(w *byteWriter, cp *ConstantPool, a Attribute) error {
	nameIdx, err := internedUtf8Index(cp, a.AttributeName())
	if err != nil {
		return err
	}

	inner := &byteWriter{}
	switch at := a.(type) {
	case RawAttribute:
		inner.write(at.Info)
	case CodeAttribute:
		inner.u2(at.MaxStack)
		inner.u2(at.MaxLocals)
		inner.u4(uint32(len(at.Code)))
		inner.write(at.Code)
		inner.u2(uint16(len(at.ExceptionTbl)))
		for _, e := range at.ExceptionTbl {
			inner.u2(e.StartPC)
			inner.u2(e.EndPC)
			inner.u2(e.HandlerPC)
			inner.u2(e.CatchType)
		}
		if err := encodeAttributes(inner, cp, at.Attributes); err != nil {
			return err
		}
	case StackMapTableAttribute:
		b, err := encodeStackMapTable(at.Table)
		if err != nil {
			return err
		}
		inner.write(b)
	case LineNumberTableAttribute:
		inner.u2(uint16(len(at.Entries)))
		for _, e := range at.Entries {
			inner.u2(e.StartPC)
			inner.u2(e.LineNumber)
		}
	case ModuleAttribute:
		inner.u2(at.ModuleNameIndex)
		inner.u2(at.ModuleFlags)
		inner.u2(at.VersionIndex)
		inner.u2(uint16(len(at.Requires)))
		for _, rq := range at.Requires {
			inner.u2(rq.Index)
			inner.u2(rq.Flags)
			inner.u2(rq.VersionIndex)
		}
		inner.u2(uint16(len(at.Exports)))
		for _, ex := range at.Exports {
			inner.u2(ex.Index)
			inner.u2(ex.Flags)
			inner.u2(uint16(len(ex.ToIndexes)))
			for _, t := range ex.ToIndexes {
				inner.u2(t)
			}
		}
		inner.u2(uint16(len(at.Opens)))
		for _, op := range at.Opens {
			inner.u2(op.Index)
			inner.u2(op.Flags)
			inner.u2(uint16(len(op.ToIndexes)))
			for _, t := range op.ToIndexes {
				inner.u2(t)
			}
		}
		inner.u2(uint16(len(at.UsesIndexes)))
		for _, u := range at.UsesIndexes {
			inner.u2(u)
		}
		inner.u2(uint16(len(at.Provides)))
		for _, pr := range at.Provides {
			inner.u2(pr.Index)
			inner.u2(uint16(len(pr.WithIndexes)))
			for _, wi := range pr.WithIndexes {
				inner.u2(wi)
			}
		}
	case ModulePackagesAttribute:
		inner.u2(uint16(len(at.PackageIndexes)))
		for _, p := range at.PackageIndexes {
			inner.u2(p)
		}
	case ModuleMainClassAttribute:
		inner.u2(at.MainClassIndex)
	default:
		return CFE("unknown attribute implementation for %q", a.AttributeName())
	}

	w.u2(nameIdx)
	w.u4(uint32(len(inner.b)))
	w.write(inner.b)
	return nil
}

// internedUtf8Index finds an existing Utf8 entry equal to s, so re-encoding
// a decoded class file never grows the constant pool (required for
// encode(decode(b)) == b).
func internedUtf8Index(cp *ConstantPool, s string) (uint16, error) {
	for i := 1; i < len(cp.Entries); i++ {
		if u, ok := cp.Entries[i].(Utf8Entry); ok && u.Value == s {
			return uint16(i), nil
		}
	}
	return 0, CFE("no Utf8 constant pool entry for attribute name %q", s)
}
