/*
 * jacovm - A Java virtual machine core
 * Static initialization: ensures a class's <clinit> (and every
 * not-yet-run ancestor's) has executed before the class is used, per
 * JVMS §5.5. The recursion runs ancestors first (superclass before
 * self), so initializers fire from java/lang/Object's immediate
 * subclass down to the requested class; classloader.Class.ClInit
 * tracks not-run/running/run so re-entrant triggers are no-ops.
 */
package jvm

import (
	"sync"

	"jacovm/gfunction"
	"jacovm/log"
	"jacovm/types"
)

var clinitMu sync.Mutex

// EnsureInitialized runs className's <clinit> (and those of any
// ancestor that hasn't run yet) if it has not already run or started.
func (vm *VM) EnsureInitialized(thread *Thread, className string) error {
	return vm.ensureInitialized(thread, className)
}

func (vm *VM) ensureInitialized(thread *Thread, className string) error {
	class, err := vm.LoadClass(className)
	if err != nil {
		return err
	}

	clinitMu.Lock()
	switch class.ClInit {
	case types.ClInitRun, types.NoClinit, types.ClInitRunning:
		clinitMu.Unlock()
		return nil
	}
	class.ClInit = types.ClInitRunning
	clinitMu.Unlock()

	if super, _ := class.SuperclassName(); super != "" {
		if err := vm.ensureInitialized(thread, super); err != nil {
			return err
		}
	}

	if err := vm.runClinit(thread, class.Name); err != nil {
		return err
	}

	clinitMu.Lock()
	class.ClInit = types.ClInitRun
	clinitMu.Unlock()
	return nil
}

func (vm *VM) runClinit(thread *Thread, className string) error {
	class, err := vm.LoadClass(className)
	if err != nil {
		return err
	}
	method, ok := class.FindMethod("<clinit>", "()V")
	if !ok {
		return nil
	}
	log.Log("running "+className+".<clinit>", log.FINE)

	if g, ok := gfunction.Get(className, "<clinit>", "()V"); ok {
		result := g.GFunction(nil)
		if errBlk, ok := result.(*gfunction.GErrBlk); ok {
			return &Thrown{Obj: NewThrowable(errBlk.ExceptionType, errBlk.ErrMsg)}
		}
		return nil
	}

	f, err := vm.buildFrame(class, method)
	if err != nil {
		return err
	}
	_, err = vm.RunFrame(thread, f)
	return err
}
