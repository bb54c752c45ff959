/*
 * jacovm - A Java virtual machine core
 * Registry population and lookup. The handler set jacovm itself ships
 * is deliberately small: the structural java/lang/Object and
 * java/lang/String methods the core cannot run without when no JDK
 * image is on the classpath. A host embedding this VM registers its
 * own Load_* functions for everything else.
 */
package gfunction

import "sync"

var loadOnce sync.Once

// LoadIntrinsics populates MethodSignatures with the bootstrap handler
// set, one Load_* call per JDK class. Safe to call more than once; only
// the first call does work.
func LoadIntrinsics() {
	loadOnce.Do(func() {
		Load_Lang_Object()
		Load_Lang_String()
	})
}

// Get looks up the intrinsic registered for owner.name(descriptor), the
// same key format the resolver uses for every other bound method
// reference, so it can fall back to the bytecode interpreter when no
// intrinsic is registered.
func Get(owner, name, descriptor string) (GMeth, bool) {
	g, ok := MethodSignatures[owner+"."+name+descriptor]
	return g, ok
}
