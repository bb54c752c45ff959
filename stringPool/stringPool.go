/*
 * jacovm - A Java virtual machine core
 * Package stringPool interns every class/package/UTF-8 name the VM ever
 * sees into a single growable table, so the rest of the VM can pass a
 * cheap uint32 index around instead of copying strings. The classloader
 * assumes this API: stringPool.GetStringPointer, stringPool.GetStringPoolSize.
 */
package stringPool

import "sync"

type pool struct {
	mu      sync.RWMutex
	strings []string
	index   map[string]uint32
}

var p = newPool()

func newPool() *pool {
	pl := &pool{index: make(map[string]uint32)}
	// index 0 is reserved/unused so that 0 can mean "no entry" without
	// colliding with a real interned string.
	pl.strings = append(pl.strings, "")
	return pl
}

// Reset clears the pool; used by tests that need a clean slate.
func Reset() {
	p = newPool()
}

// Intern adds s if not already present and returns its stable index.
func Intern(s string) uint32 {
	p.mu.RLock()
	if idx, ok := p.index[s]; ok {
		p.mu.RUnlock()
		return idx
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if idx, ok := p.index[s]; ok {
		return idx
	}
	idx := uint32(len(p.strings))
	p.strings = append(p.strings, s)
	p.index[s] = idx
	return idx
}

// GetStringPointer returns a pointer to the interned string at index, or
// a pointer to "" if index is out of range.
func GetStringPointer(index uint32) *string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if index == 0 || int(index) >= len(p.strings) {
		empty := ""
		return &empty
	}
	s := p.strings[index]
	return &s
}

// GetStringPoolSize returns the number of live entries, including the
// reserved zero slot.
func GetStringPoolSize() uint32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return uint32(len(p.strings))
}
