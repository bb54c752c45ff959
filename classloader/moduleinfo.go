/*
 * jacovm - A Java virtual machine core
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 *
 * Translates the Module/ModulePackages/ModuleMainClass attributes of a
 * decoded module-info.class into modsys's in-memory data model. Every
 * resolved index must name a constant of the expected kind, or parsing
 * fails with DescriptorParseError.
 */
package classloader

import (
	"jacovm/modsys"
)

// DescriptorParseError is the named failure mode for module-info parsing.
type DescriptorParseError struct{ Reason string }

func (e *DescriptorParseError) Error() string { return "DescriptorParseError: " + e.Reason }

func dpe(format string, args ...any) error {
	return &DescriptorParseError{Reason: CFE(format, args...).Error()}
}

// ParseModuleDescriptor reads a decoded module-info ClassFile's Module
// attribute (plus ModulePackages/ModuleMainClass, if present) into a
// *modsys.Descriptor.
func ParseModuleDescriptor(cf *ClassFile) (*modsys.Descriptor, error) {
	var modAttr *ModuleAttribute
	var pkgsAttr *ModulePackagesAttribute
	var mainAttr *ModuleMainClassAttribute

	for _, a := range cf.Attributes {
		switch at := a.(type) {
		case ModuleAttribute:
			m := at
			modAttr = &m
		case ModulePackagesAttribute:
			p := at
			pkgsAttr = &p
		case ModuleMainClassAttribute:
			mc := at
			mainAttr = &mc
		}
	}
	if modAttr == nil {
		return nil, dpe("module-info class carries no Module attribute")
	}

	cp := cf.ConstantPool
	name, err := moduleNameOf(cp, modAttr.ModuleNameIndex)
	if err != nil {
		return nil, err
	}

	desc := &modsys.Descriptor{
		Name:     name,
		Flags:    int(modAttr.ModuleFlags),
		Packages: map[string]bool{},
	}
	if modAttr.VersionIndex != 0 {
		v, err := cp.Utf8(modAttr.VersionIndex)
		if err != nil {
			return nil, dpe("invalid module version index: %v", err)
		}
		desc.Version = v
	}

	for _, rq := range modAttr.Requires {
		rn, err := moduleNameOf(cp, rq.Index)
		if err != nil {
			return nil, err
		}
		version := ""
		if rq.VersionIndex != 0 {
			version, err = cp.Utf8(rq.VersionIndex)
			if err != nil {
				return nil, dpe("invalid requires version index: %v", err)
			}
		}
		desc.Requires = append(desc.Requires, modsys.Requires{Name: rn, Flags: int(rq.Flags), Version: version})
	}

	for _, ex := range modAttr.Exports {
		pkg, err := packageNameOf(cp, ex.Index)
		if err != nil {
			return nil, err
		}
		var to []string
		for _, ti := range ex.ToIndexes {
			tn, err := moduleNameOf(cp, ti)
			if err != nil {
				return nil, err
			}
			to = append(to, tn)
		}
		desc.Exports = append(desc.Exports, modsys.Qualified{Package: pkg, Flags: int(ex.Flags), To: to})
	}

	for _, op := range modAttr.Opens {
		pkg, err := packageNameOf(cp, op.Index)
		if err != nil {
			return nil, err
		}
		var to []string
		for _, ti := range op.ToIndexes {
			tn, err := moduleNameOf(cp, ti)
			if err != nil {
				return nil, err
			}
			to = append(to, tn)
		}
		desc.Opens = append(desc.Opens, modsys.Qualified{Package: pkg, Flags: int(op.Flags), To: to})
	}

	for _, ui := range modAttr.UsesIndexes {
		cn, err := cp.ClassName(ui)
		if err != nil {
			return nil, dpe("invalid uses class index: %v", err)
		}
		desc.Uses = append(desc.Uses, cn)
	}

	for _, pr := range modAttr.Provides {
		service, err := cp.ClassName(pr.Index)
		if err != nil {
			return nil, dpe("invalid provides service index: %v", err)
		}
		var with []string
		for _, wi := range pr.WithIndexes {
			impl, err := cp.ClassName(wi)
			if err != nil {
				return nil, dpe("invalid provides-with index: %v", err)
			}
			with = append(with, impl)
		}
		desc.Provides = append(desc.Provides, modsys.Provides{Service: service, With: with})
	}

	if pkgsAttr != nil {
		for _, pi := range pkgsAttr.PackageIndexes {
			pkg, err := packageNameOf(cp, pi)
			if err != nil {
				return nil, err
			}
			desc.Packages[pkg] = true
		}
	}

	if mainAttr != nil {
		mc, err := cp.ClassName(mainAttr.MainClassIndex)
		if err != nil {
			return nil, dpe("invalid ModuleMainClass index: %v", err)
		}
		desc.MainClass = mc
	}

	return desc, nil
}

func moduleNameOf(cp *ConstantPool, index uint16) (string, error) {
	e := cp.At(index)
	m, ok := e.(ModuleEntry)
	if !ok {
		return "", dpe("constant pool index %d is not a Module entry", index)
	}
	return cp.Utf8(m.NameIndex)
}

func packageNameOf(cp *ConstantPool, index uint16) (string, error) {
	e := cp.At(index)
	p, ok := e.(PackageEntry)
	if !ok {
		return "", dpe("constant pool index %d is not a Package entry", index)
	}
	return cp.Utf8(p.NameIndex)
}
