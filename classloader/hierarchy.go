/*
 * jacovm - A Java virtual machine core
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 *
 * This file adapts the loaded-class registry into a vtype.HierarchyContext,
 * the injected capability both the verifier's assignability checks and the
 * resolver's method lookup need: "is source a subtype of target" and "what
 * class do a and b have in common".
 */
package classloader

import "jacovm/vtype"

// Resolve returns the class named name from the registry, loading it from
// the application classpath first if it isn't already present. Callers
// that only want an already-loaded class (never triggering I/O) should use
// GetClass directly.
func Resolve(name string) (*Class, error) {
	if c := GetClass(name); c != nil {
		return c, nil
	}
	if err := LoadClassFromNameOnly(&AppCL, name); err != nil {
		return nil, err
	}
	c := GetClass(name)
	if c == nil {
		return nil, CFE("class %s could not be resolved after loading", name)
	}
	return c, nil
}

// SuperclassName returns c's direct superclass's internal name, or "" for
// java/lang/Object (which has none).
func (c *Class) SuperclassName() (string, error) {
	if c.Data == nil {
		return "", nil
	}
	return c.Data.SuperClassName()
}

// InterfaceNames returns the internal names of the interfaces c directly
// implements (or extends, if c is itself an interface).
func (c *Class) InterfaceNames() ([]string, error) {
	if c.Data == nil || len(c.Data.Interfaces) == 0 {
		return nil, nil
	}
	names := make([]string, len(c.Data.Interfaces))
	for i, idx := range c.Data.Interfaces {
		n, err := c.Data.ConstantPool.ClassName(idx)
		if err != nil {
			return nil, err
		}
		names[i] = n
	}
	return names, nil
}

// IsInterface reports whether c's class file declares the interface
// access flag.
func (c *Class) IsInterface() bool {
	return c.Data != nil && c.Data.IsInterface()
}

// FindMethod searches c's own Methods table for a method with the given
// name and descriptor, without walking the hierarchy.
func (c *Class) FindMethod(name, descriptor string) (*MethodInfo, bool) {
	if c.Data == nil {
		return nil, false
	}
	for i := range c.Data.Methods {
		m := &c.Data.Methods[i]
		n, err := c.Data.ConstantPool.Utf8(m.NameIndex)
		if err != nil || n != name {
			continue
		}
		d, err := c.Data.ConstantPool.Utf8(m.DescIndex)
		if err != nil || d != descriptor {
			continue
		}
		return m, true
	}
	return nil, false
}

// DefaultHierarchy is the vtype.HierarchyContext backed by the classes
// registered with the running classloaders, loading classes on demand
// from the application classpath the same way Resolve does. It is the
// concrete capability the verifier's MethodContext.Hierarchy and the
// resolver wire in (the lattice's merge/assignability rules are defined
// abstractly over this interface so that the verifier never imports
// classloader directly).
type DefaultHierarchy struct{}

// IsAssignable reports whether an object of type source can be used
// wherever target is expected: target is java/lang/Object, target ==
// source, or target is somewhere in source's superclass chain or the
// transitive closure of interfaces it or its ancestors implement.
func (DefaultHierarchy) IsAssignable(target, source string) bool {
	if target == source || target == ObjectClassNameConst {
		return true
	}
	return ancestryContains(source, target, map[string]bool{})
}

// CommonSuperclass walks a's superclass chain (itself first) and returns
// the first ancestor that source b is also assignable to; it falls back
// to java/lang/Object, which is always a common ancestor of any two
// reference types. This considers only the superclass chain (not
// interfaces), matching JVMS's verification-type merge rule.
func (DefaultHierarchy) CommonSuperclass(a, b string) string {
	for _, anc := range superclassChain(a) {
		if anc == b || ancestryContains(b, anc, map[string]bool{}) {
			return anc
		}
	}
	return ObjectClassNameConst
}

// ObjectClassNameConst avoids an import cycle with package types (which
// classloader already depends on transitively); kept local and identical
// in value to types.ObjectClassName.
const ObjectClassNameConst = "java/lang/Object"

// superclassChain returns name and every ancestor up to and including
// java/lang/Object, stopping early (without error) if a class along the
// way cannot be resolved.
func superclassChain(name string) []string {
	chain := []string{name}
	cur := name
	for {
		c, err := Resolve(cur)
		if err != nil || c == nil {
			return chain
		}
		super, serr := c.SuperclassName()
		if serr != nil || super == "" {
			return chain
		}
		chain = append(chain, super)
		cur = super
	}
}

// ancestryContains reports whether target appears in source's superclass
// chain or in the transitive closure of interfaces implemented anywhere
// along that chain.
func ancestryContains(source, target string, visited map[string]bool) bool {
	if visited[source] {
		return false
	}
	visited[source] = true

	c, err := Resolve(source)
	if err != nil || c == nil {
		return false
	}

	ifaces, _ := c.InterfaceNames()
	for _, ifn := range ifaces {
		if ifn == target {
			return true
		}
		if ancestryContains(ifn, target, visited) {
			return true
		}
	}

	super, serr := c.SuperclassName()
	if serr != nil || super == "" {
		return false
	}
	if super == target {
		return true
	}
	return ancestryContains(super, target, visited)
}

var _ vtype.HierarchyContext = DefaultHierarchy{}
