/*
 * jacovm - A Java virtual machine core
 * This file wires the interpreter to the rest of the core: the method
 * resolver, the module graph, and the classloader's loaded-class
 * registry, the same
 * seam globals.FuncThrowException documents for breaking the
 * classloader<->jvm import cycle.
 */
package jvm

import (
	"jacovm/classloader"
	"jacovm/frames"
	"jacovm/globals"
	"jacovm/modsys"
	"jacovm/resolver"
	"jacovm/verifier"
)

// VM bundles the shared, process-wide services a running frame
// interpreter needs: the method reference resolver and the module
// graph it is built over. A single VM is meant to be shared by every
// Thread (each thread owns its frame stack exclusively,
// but the method area and the resolver's cache are process-wide).
type VM struct {
	Resolver *resolver.Resolver
	Graph    *modsys.Graph

	// Verify gates bytecode verification on first execution-path load
	// of each class (the -noverify knob); on by default.
	Verify bool
}

// NewVM returns a VM wired against graph, resolving classes through
// classloader.Resolve (which loads from the application classpath on
// demand), and registers a FuncThrowException hook that discards its
// arguments: class loading failures deep in package classloader reach
// callers as Go errors.
func NewVM(graph *modsys.Graph) *VM {
	vm := &VM{
		Resolver: resolver.New(graph, classloader.Resolve),
		Graph:    graph,
		Verify:   true,
	}
	// Without a JDK image on the classpath, java/lang/Object must still
	// terminate every superclass chain; register it synthetically so
	// hierarchy walks and <clinit> ordering never fail on it.
	classloader.RegisterSynthetic("java/lang/Object")
	globals.GetGlobalRef().FuncThrowException = func(excClassName, msg string) {
		// classloader cannot hold on to the resulting *Thrown (it has no
		// frame to propagate it through); this hook exists so future
		// classloading call sites have somewhere to report into. jvm's own
		// entry points (InstantiateClass, EnsureInitialized, RunFrame) build
		// and propagate a *Thrown directly instead of going through here.
		_ = excClassName
		_ = msg
	}
	return vm
}

// LoadClass fetches (or loads) the named class through the resolver's
// injected loader, the same classloader.Resolve path every other
// package uses, and verifies it on first touch: decoded classes
// become loadable only after verification passes.
func (vm *VM) LoadClass(name string) (*classloader.Class, error) {
	class, err := classloader.Resolve(name)
	if err != nil {
		return nil, err
	}
	if vm.Verify && class.Status == classloader.StatusFormatted {
		if err := verifier.VerifyClass(class, classloader.DefaultHierarchy{}); err != nil {
			return nil, err
		}
	}
	return class, nil
}

// Thread is one logical thread of execution: an ID plus its own frame
// stack. jacovm does not schedule real OS threads; Thread is the unit
// RunFrame and the invocation bridge operate against.
type Thread struct {
	ID         int
	FrameStack *frames.FrameStack
}

// NewThread returns a Thread with an empty frame stack.
func NewThread(id int) *Thread {
	return &Thread{ID: id, FrameStack: frames.NewFrameStack()}
}
