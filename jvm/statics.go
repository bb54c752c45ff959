/*
 * jacovm - A Java virtual machine core
 * Static field storage. classloader.Class is deliberately immutable
 * once loaded (the method area's class records are treated as
 * read-only after verification); a class's static fields are mutable
 * VM state layered on top of it, analogous to how package resolver
 * layers a mutable method-reference cache over the same immutable
 * class model rather than writing back into classloader.Class itself.
 */
package jvm

import (
	"sync"

	"jacovm/object"
)

var (
	staticsMu sync.RWMutex
	statics   = map[string]*object.Field{}
)

func staticKey(className, fieldName string) string {
	return className + "#" + fieldName
}

// getStatic returns className's fieldName static field, creating it
// (zero-valued per descriptor) on first access.
func getStatic(className, fieldName, descriptor string) *object.Field {
	key := staticKey(className, fieldName)

	staticsMu.RLock()
	f, ok := statics[key]
	staticsMu.RUnlock()
	if ok {
		return f
	}

	staticsMu.Lock()
	defer staticsMu.Unlock()
	if f, ok := statics[key]; ok {
		return f
	}
	f = &object.Field{Ftype: descriptor, Fvalue: zeroValueForDescriptor(descriptor)}
	statics[key] = f
	return f
}

func putStatic(className, fieldName, descriptor string, value interface{}) {
	key := staticKey(className, fieldName)
	staticsMu.Lock()
	defer staticsMu.Unlock()
	statics[key] = &object.Field{Ftype: descriptor, Fvalue: value}
}

// resetStatics clears all static field state; used between test runs,
// mirroring classloader.Reset/stringPool.Reset.
func resetStatics() {
	staticsMu.Lock()
	defer staticsMu.Unlock()
	statics = map[string]*object.Field{}
}

// zeroValueForDescriptor returns the JVMS §2.5.3 default value for a
// freshly allocated field/local slot of the given field descriptor.
func zeroValueForDescriptor(descriptor string) interface{} {
	switch descriptor {
	case "B", "C", "I", "S", "Z":
		return int32(0)
	case "J":
		return int64(0)
	case "F":
		return float32(0)
	case "D":
		return float64(0)
	default:
		return nil
	}
}
