package resolver

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"jacovm/classloader"
	"jacovm/gfunction"
	"jacovm/modsys"
	"jacovm/util"
)

// InvokeKind distinguishes the four invoke* bytecodes at the point a
// constant-pool method reference is resolved.
type InvokeKind int

const (
	Static InvokeKind = iota
	Virtual
	Special
	Interface
)

func (k InvokeKind) String() string {
	switch k {
	case Static:
		return "static"
	case Virtual:
		return "virtual"
	case Special:
		return "special"
	case Interface:
		return "interface"
	default:
		return "unknown"
	}
}

// ResolvedMethodRef is the outcome of resolving one constant-pool method
// reference, cached for the lifetime of the Resolver.
type ResolvedMethodRef struct {
	DeclaringClass string
	Method         *classloader.MethodInfo // nil for an intrinsic/holder-synthesized method
	MethodName     string
	MethodDescriptor string
	IsStatic       bool
	IsNative       bool // served by the gfunction intrinsic registry rather than bytecode

	// IsPolymorphic marks a signature-polymorphic call
	// (MethodHandle/VarHandle), whose ParamCount/HasReturnType below are
	// taken from this call site's own constant-pool descriptor rather
	// than the method's generic declared descriptor.
	IsPolymorphic bool

	ParamCountForCallSite    int
	HasReturnTypeForCallSite bool
}

type cacheKey struct {
	callerClass string
	cpIndex     uint16
}

type cacheEntry struct {
	ref *ResolvedMethodRef
	err error
}

// ClassLoaderFunc loads (or fetches an already-loaded) class by internal
// name, exactly as classloader.Resolve does; injected so the resolver
// never hard-codes which Classloader instance is in play.
type ClassLoaderFunc func(name string) (*classloader.Class, error)

// Resolver resolves constant-pool method references. A single Resolver
// instance is meant to be shared by every thread executing bytecode
// (the cache is process-wide and write-once per key), so its own state
// is guarded by a mutex and cache population is deduplicated with
// singleflight, the usual shape of a concurrent memoizing cache.
type Resolver struct {
	Graph     *modsys.Graph
	LoadClass ClassLoaderFunc

	mu    sync.RWMutex
	cache map[cacheKey]cacheEntry
	group singleflight.Group
}

// New returns a Resolver backed by graph for JPMS access checks and
// loadClass for fetching constant-pool-referenced classes.
func New(graph *modsys.Graph, loadClass ClassLoaderFunc) *Resolver {
	return &Resolver{
		Graph:     graph,
		LoadClass: loadClass,
		cache:     make(map[cacheKey]cacheEntry),
	}
}

// Resolve looks up (and caches) the method reference named by cpIndex in
// callerClass's constant pool, in the JVMS §5.4.3.3 spirit: cache
// check, CP entry validation against kind, target class load, JPMS
// gate, hierarchy-aware method lookup (falling back to the intrinsic
// registry for holder classes), kind-vs-method consistency, cache.
func (r *Resolver) Resolve(callerClass string, cpIndex uint16, cp *classloader.ConstantPool, kind InvokeKind) (*ResolvedMethodRef, error) {
	key := cacheKey{callerClass, cpIndex}

	if entry, ok := r.lookup(key); ok {
		return entry.ref, entry.err
	}

	groupKey := fmt.Sprintf("%s#%d", callerClass, cpIndex)
	v, _, _ := r.group.Do(groupKey, func() (interface{}, error) {
		if entry, ok := r.lookup(key); ok {
			return entry, nil
		}
		ref, err := r.resolveUncached(callerClass, cpIndex, cp, kind)
		entry := cacheEntry{ref: ref, err: err}
		r.store(key, entry)
		return entry, nil
	})
	entry := v.(cacheEntry)
	return entry.ref, entry.err
}

func (r *Resolver) lookup(key cacheKey) (cacheEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.cache[key]
	return e, ok
}

// store writes entry for key, but never overwrites a value another
// goroutine already wrote for the same key: the cache is write-once, so
// resolving the same (caller, index) pair twice returns the same result
// without repeating the algorithm.
func (r *Resolver) store(key cacheKey, entry cacheEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, already := r.cache[key]; !already {
		r.cache[key] = entry
	}
}

func (r *Resolver) resolveUncached(callerClass string, cpIndex uint16, cp *classloader.ConstantPool, kind InvokeKind) (*ResolvedMethodRef, error) {
	ownerClass, name, descriptor, isInterfaceEntry, err := cp.MethodRef(cpIndex)
	if err != nil {
		return nil, err
	}
	if kind == Interface && !isInterfaceEntry {
		return nil, ICCE("invokeinterface at %s constant pool index %d requires an InterfaceMethodref entry", callerClass, cpIndex)
	}
	if kind != Interface && isInterfaceEntry && kind != Static {
		return nil, ICCE("invoke%s at %s constant pool index %d may not reference an InterfaceMethodref entry", kind, callerClass, cpIndex)
	}

	target, err := r.LoadClass(ownerClass)
	if err != nil {
		return nil, err
	}
	if target.Data != nil {
		if isInterfaceEntry && !target.IsInterface() {
			return nil, ICCE("method reference for %s names an InterfaceMethodref but %s is not an interface", name, ownerClass)
		}
		if !isInterfaceEntry && target.IsInterface() && kind != Static {
			return nil, ICCE("method reference for %s names a Methodref but %s is an interface", name, ownerClass)
		}
	}

	if err := r.checkModuleAccess(callerClass, target); err != nil {
		return nil, err
	}

	var method *classloader.MethodInfo
	var declClass string
	var isNative bool
	if kind == Interface {
		method, declClass, err = r.lookupInterfaceMethod(target, name, descriptor)
	} else {
		method, declClass, err = r.lookupClassMethod(target, name, descriptor)
	}
	isPoly := isPolymorphicSignature(ownerClass, name)
	if err != nil {
		if _, ok := gfunction.Get(ownerClass, name, descriptor); ok || isPoly {
			declClass = ownerClass
			isNative = true
		} else {
			return nil, NSME("%s.%s%s", ownerClass, name, descriptor)
		}
	}

	isStaticMethod := method != nil && method.AccessFlags&classloader.AccStatic != 0
	if kind == Static && method != nil && !isStaticMethod {
		return nil, ICCE("invokestatic target %s.%s%s is not static", ownerClass, name, descriptor)
	}
	if kind != Static && isStaticMethod {
		return nil, ICCE("invoke%s target %s.%s%s is static", kind, ownerClass, name, descriptor)
	}

	paramCount, hasReturn := callSiteArity(descriptor)

	return &ResolvedMethodRef{
		DeclaringClass:           declClass,
		Method:                   method,
		MethodName:               name,
		MethodDescriptor:         descriptor,
		IsStatic:                 isStaticMethod || kind == Static,
		IsNative:                 isNative,
		IsPolymorphic:            isPoly,
		ParamCountForCallSite:    paramCount,
		HasReturnTypeForCallSite: hasReturn,
	}, nil
}

// checkModuleAccess applies the JPMS gate: access
// within the same class or the same module is always allowed; otherwise
// the caller's module must read the target's module and the target's
// package must be exported (or opened, for reflective access the
// interpreter doesn't perform) to the caller.
func (r *Resolver) checkModuleAccess(callerClass string, target *classloader.Class) error {
	if callerClass == target.Name {
		return nil
	}
	caller, err := r.LoadClass(callerClass)
	if err != nil {
		return err
	}
	if caller.Module == target.Module {
		return nil
	}
	pkg := packageOf(target.Name)
	result := r.Graph.CheckAccess(caller.Module, target.Module, pkg)
	if result != modsys.Allowed {
		return IAE("%s", modsys.IllegalAccessError(caller.Module, target.Module, target.Name, result))
	}
	return nil
}

func packageOf(internalName string) string {
	i := strings.LastIndex(internalName, "/")
	if i < 0 {
		return ""
	}
	return internalName[:i]
}

// lookupClassMethod implements the ordinary (non-interface) method
// lookup order: the class itself, then its superclass chain, then the
// full super-interface closure reachable from that chain.
func (r *Resolver) lookupClassMethod(start *classloader.Class, name, descriptor string) (*classloader.MethodInfo, string, error) {
	visited := map[string]bool{}
	var chain []*classloader.Class
	cur := start
	for cur != nil {
		if m, ok := cur.FindMethod(name, descriptor); ok {
			return m, cur.Name, nil
		}
		visited[cur.Name] = true
		chain = append(chain, cur)
		super, serr := cur.SuperclassName()
		if serr != nil || super == "" {
			break
		}
		next, lerr := r.LoadClass(super)
		if lerr != nil {
			return nil, "", lerr
		}
		cur = next
	}
	for _, c := range chain {
		if m, decl, err := r.searchInterfaces(c, name, descriptor, visited); err == nil {
			return m, decl, nil
		}
	}
	return nil, "", errNotFound
}

func (r *Resolver) searchInterfaces(c *classloader.Class, name, descriptor string, visited map[string]bool) (*classloader.MethodInfo, string, error) {
	ifaces, _ := c.InterfaceNames()
	for _, ifn := range ifaces {
		if visited[ifn] {
			continue
		}
		visited[ifn] = true
		ic, lerr := r.LoadClass(ifn)
		if lerr != nil {
			continue
		}
		if m, ok := ic.FindMethod(name, descriptor); ok {
			return m, ic.Name, nil
		}
		if m, decl, err := r.searchInterfaces(ic, name, descriptor, visited); err == nil {
			return m, decl, nil
		}
	}
	return nil, "", errNotFound
}

// lookupInterfaceMethod implements invokeinterface's lookup order: a
// breadth-first search of the target interface and its super-interfaces,
// falling back to java/lang/Object's public methods (every interface
// implicitly inherits those).
func (r *Resolver) lookupInterfaceMethod(start *classloader.Class, name, descriptor string) (*classloader.MethodInfo, string, error) {
	visited := map[string]bool{start.Name: true}
	queue := []*classloader.Class{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if m, ok := cur.FindMethod(name, descriptor); ok {
			return m, cur.Name, nil
		}
		ifaces, _ := cur.InterfaceNames()
		for _, ifn := range ifaces {
			if visited[ifn] {
				continue
			}
			visited[ifn] = true
			ic, lerr := r.LoadClass(ifn)
			if lerr != nil {
				continue
			}
			queue = append(queue, ic)
		}
	}
	obj, lerr := r.LoadClass(classloader.ObjectClassNameConst)
	if lerr == nil {
		if m, ok := obj.FindMethod(name, descriptor); ok && m.AccessFlags&classloader.AccPublic != 0 {
			return m, obj.Name, nil
		}
	}
	return nil, "", errNotFound
}

// polymorphicOwners are the two JDK classes whose invoke-family and
// accessor methods are signature-polymorphic (JVMS §2.9.3): each
// call site carries its own descriptor in the constant pool rather than
// matching the method's single declared descriptor.
var polymorphicOwners = map[string]bool{
	"java/lang/invoke/MethodHandle": true,
	"java/lang/invoke/VarHandle":    true,
}

func isPolymorphicSignature(owner, name string) bool {
	if !polymorphicOwners[owner] {
		return false
	}
	switch name {
	case "invoke", "invokeExact", "invokeBasic":
		return true
	}
	for _, prefix := range []string{"get", "set", "compareAndSet", "compareAndExchange",
		"weakCompareAndSet", "getAndSet", "getAndAdd", "getAndBitwise"} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// callSiteArity computes the parameter slot count and whether the return
// type is non-void directly from descriptor, the constant pool's own
// NameAndType for this call site -- the quantity invoke's interpreter
// bridge needs to know how many operand-stack slots to pop, independent
// of whether the resolved method is ordinary or signature-polymorphic.
func callSiteArity(descriptor string) (paramCount int, hasReturn bool) {
	params, ret, ok := util.ParseMethodDescriptor(descriptor)
	if !ok {
		return 0, false
	}
	return util.ParameterSlotCount(params), ret.Descriptor != "" && ret.Descriptor != "V"
}

// SelectOnReceiver performs the dynamic-dispatch half of invokevirtual/
// invokeinterface: starting from the receiver's actual class, find the
// method that overrides (or implements) the resolved reference, using
// the same lookup order as resolution itself. If the receiver's
// hierarchy has no concrete override -- the resolved method is the one
// that runs -- the original ref is returned unchanged, so callers can
// always invoke the result directly.
func (r *Resolver) SelectOnReceiver(receiverClass string, ref *ResolvedMethodRef) (*ResolvedMethodRef, error) {
	if receiverClass == ref.DeclaringClass {
		return ref, nil
	}
	start, err := r.LoadClass(receiverClass)
	if err != nil {
		return nil, err
	}
	method, declClass, err := r.lookupClassMethod(start, ref.MethodName, ref.MethodDescriptor)
	if err != nil || declClass == ref.DeclaringClass {
		return ref, nil
	}
	selected := *ref
	selected.Method = method
	selected.DeclaringClass = declClass
	selected.IsNative = false
	return &selected, nil
}
