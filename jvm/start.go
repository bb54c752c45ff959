/*
 * jacovm - A Java virtual machine core
 * VM entry: locate and run a loaded class's main method, the path
 * cmd/jacovm takes after parsing its command line. Unhandled Java
 * exceptions surface here as a *Thrown whose frame stack has already
 * fully unwound; fatal VM errors surface as-is.
 */
package jvm

import (
	"jacovm/object"
	"jacovm/resolver"
)

const mainDescriptor = "([Ljava/lang/String;)V"

// RunMain executes className.main(String[] args) on thread. The class
// is initialized first (JVMS §5.2: the main class's <clinit> runs
// before main).
func (vm *VM) RunMain(thread *Thread, className string, appArgs []string) error {
	class, err := vm.LoadClass(className)
	if err != nil {
		return err
	}
	if err := vm.EnsureInitialized(thread, className); err != nil {
		return err
	}
	method, ok := class.FindMethod("main", mainDescriptor)
	if !ok {
		return resolver.NSME("%s.main%s", className, mainDescriptor)
	}

	f, err := vm.buildFrame(class, method)
	if err != nil {
		return err
	}
	f.SetLocalRef(0, argsArray(appArgs))
	_, err = vm.RunFrame(thread, f)
	return err
}

// argsArray boxes the command line's trailing arguments as the
// String[] main receives.
func argsArray(appArgs []string) *object.Object {
	arr := object.NewArray("Ljava/lang/String;", len(appArgs))
	for i, s := range appArgs {
		_ = object.ArraySet(arr, i, object.StringObjectFromGoString(s))
	}
	return arr
}
