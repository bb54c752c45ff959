/*
 * jacovm - A Java virtual machine core
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 *
 * Assignability and merge (least-upper-bound) over the verification
 * type lattice. Both operations take a HierarchyContext: the lattice
 * never walks the class graph itself, so it stays usable from the fast
 * and inference verifiers alike and testable in isolation with a mock
 * context.
 */
package vtype

// object/array names with hard-coded lattice behavior: every array type
// is assignable to each of these three, regardless of component type.
const (
	ClassObject       = "java/lang/Object"
	ClassCloneable    = "java/lang/Cloneable"
	ClassSerializable = "java/io/Serializable"
)

// HierarchyContext is the injected class-hierarchy capability the
// lattice delegates to instead of inspecting loaded classes directly.
type HierarchyContext interface {
	// IsAssignable reports whether an instance of source may be used
	// wherever target is expected (source is target, or a subclass of
	// target, or target is an interface source implements).
	IsAssignable(target, source string) bool
	// CommonSuperclass returns the most specific class both a and b
	// extend or implement; always resolves at worst to "java/lang/Object".
	CommonSuperclass(a, b string) string
}

// IsAssignableTo reports whether a value of type v may be used wherever
// a value of type target is expected.
func IsAssignableTo(v, target VerificationType, ctx HierarchyContext) bool {
	if _, ok := target.(Top); ok {
		return true
	}
	if v == target {
		return true
	}

	switch s := v.(type) {
	case Null:
		return isInitializedReference(target)
	case Object:
		t, ok := target.(Object)
		if !ok {
			return false
		}
		return ctx.IsAssignable(t.ClassName, s.ClassName)
	case Array:
		if t, ok := target.(Object); ok {
			return t.ClassName == ClassObject || t.ClassName == ClassCloneable || t.ClassName == ClassSerializable
		}
		t, ok := target.(Array)
		if !ok {
			return false
		}
		if IsReference(s.Component) && IsReference(t.Component) {
			return IsAssignableTo(s.Component, t.Component, ctx)
		}
		return s.Component == t.Component
	default:
		// Integer, Float, Long, Double, UninitializedThis, Uninitialized:
		// only assignable to themselves (already checked above) or Top.
		return false
	}
}

func isInitializedReference(v VerificationType) bool {
	switch v.(type) {
	case Object, Array:
		return true
	default:
		return false
	}
}

// Merge computes the least upper bound of a and b: at a control-flow
// join point, the type that both incoming values are assignable to,
// and the least such type the lattice can express.
func Merge(a, b VerificationType, ctx HierarchyContext) VerificationType {
	if a == b {
		return a
	}
	if _, ok := a.(Top); ok {
		return Top{}
	}
	if _, ok := b.(Top); ok {
		return Top{}
	}

	aRef, bRef := IsReference(a), IsReference(b)
	if aRef != bRef {
		return Top{} // primitive merged with reference, or vice versa
	}
	if !aRef {
		return Top{} // distinct primitives never merge to anything but Top
	}
	return mergeReferences(a, b, ctx)
}

func mergeReferences(a, b VerificationType, ctx HierarchyContext) VerificationType {
	if _, ok := a.(Null); ok {
		if isInitializedReference(b) {
			return b
		}
		return Top{}
	}
	if _, ok := b.(Null); ok {
		if isInitializedReference(a) {
			return a
		}
		return Top{}
	}

	switch av := a.(type) {
	case Object:
		switch bv := b.(type) {
		case Object:
			return Object{ClassName: ctx.CommonSuperclass(av.ClassName, bv.ClassName)}
		case Array:
			return mergeObjectAndArray(av, bv)
		}
	case Array:
		switch bv := b.(type) {
		case Object:
			return mergeObjectAndArray(bv, av)
		case Array:
			return mergeArrays(av, bv, ctx)
		}
	}
	// UninitializedThis/Uninitialized never merge with anything else
	// (including each other at distinct offsets) to anything but Top.
	return Top{}
}

func mergeObjectAndArray(o Object, _ Array) VerificationType {
	switch o.ClassName {
	case ClassObject, ClassCloneable, ClassSerializable:
		return o
	default:
		return Object{ClassName: ClassObject}
	}
}

func mergeArrays(a, b Array, ctx HierarchyContext) VerificationType {
	if IsReference(a.Component) && IsReference(b.Component) {
		return Array{Component: Merge(a.Component, b.Component, ctx)}
	}
	if a.Component == b.Component {
		return Array{Component: a.Component}
	}
	// Invariant primitive-component arrays of different element type, or
	// a primitive-component array merged with a reference-component one:
	// their only common supertype is Object (also true of Cloneable and
	// Serializable, but Object is the canonical choice).
	return Object{ClassName: ClassObject}
}
