package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jacovm/classloader"
	"jacovm/modsys"
)

// registerClass installs a fully-formed *classloader.Class directly into
// the shared registry, bypassing file/jar loading -- the same shortcut
// classloader's own format-check tests take for building fixtures.
func registerClass(t *testing.T, name, module string, cf *classloader.ClassFile) *classloader.Class {
	t.Helper()
	c := &classloader.Class{Name: name, Module: module, Status: classloader.StatusVerified, Data: cf}
	classloader.Classes[name] = c
	t.Cleanup(func() { classloader.Reset() })
	return c
}

func methodClassFile(t *testing.T, thisName, superName, methodName, descriptor string, accessFlags uint16) *classloader.ClassFile {
	t.Helper()
	cp := classloader.NewConstantPool()
	utf8Super := cp.Append(classloader.Utf8Entry{Value: superName})
	classSuper := cp.Append(classloader.ClassEntry{NameIndex: utf8Super})
	utf8This := cp.Append(classloader.Utf8Entry{Value: thisName})
	classThis := cp.Append(classloader.ClassEntry{NameIndex: utf8This})
	nameIdx := cp.Append(classloader.Utf8Entry{Value: methodName})
	descIdx := cp.Append(classloader.Utf8Entry{Value: descriptor})

	return &classloader.ClassFile{
		MinorVersion: 0,
		MajorVersion: 61,
		ConstantPool: cp,
		AccessFlags:  classloader.AccPublic | classloader.AccSuper,
		ThisClass:    classThis,
		SuperClass:   classSuper,
		Methods: []classloader.MethodInfo{
			{AccessFlags: accessFlags, NameIndex: nameIdx, DescIndex: descIdx},
		},
	}
}

func callerClassFile(t *testing.T, thisName, targetClass, methodName, descriptor string, isInterface bool) (*classloader.ClassFile, uint16) {
	t.Helper()
	cp := classloader.NewConstantPool()
	utf8Object := cp.Append(classloader.Utf8Entry{Value: "java/lang/Object"})
	classObject := cp.Append(classloader.ClassEntry{NameIndex: utf8Object})
	utf8This := cp.Append(classloader.Utf8Entry{Value: thisName})
	classThis := cp.Append(classloader.ClassEntry{NameIndex: utf8This})

	utf8Target := cp.Append(classloader.Utf8Entry{Value: targetClass})
	classTarget := cp.Append(classloader.ClassEntry{NameIndex: utf8Target})
	nameIdx := cp.Append(classloader.Utf8Entry{Value: methodName})
	descIdx := cp.Append(classloader.Utf8Entry{Value: descriptor})
	ntIdx := cp.Append(classloader.NameAndTypeEntry{NameIndex: nameIdx, DescriptorIndex: descIdx})

	var methodRefIdx uint16
	if isInterface {
		methodRefIdx = cp.Append(classloader.InterfaceMethodrefEntry{ClassIndex: classTarget, NameAndTypeIndex: ntIdx})
	} else {
		methodRefIdx = cp.Append(classloader.MethodrefEntry{ClassIndex: classTarget, NameAndTypeIndex: ntIdx})
	}

	return &classloader.ClassFile{
		MinorVersion: 0,
		MajorVersion: 61,
		ConstantPool: cp,
		AccessFlags:  classloader.AccPublic | classloader.AccSuper,
		ThisClass:    classThis,
		SuperClass:   classObject,
	}, methodRefIdx
}

func testLoadClass(name string) (*classloader.Class, error) {
	return classloader.Resolve(name)
}

func TestResolveVirtualMethod(t *testing.T) {
	classloader.Reset()
	targetCF := methodClassFile(t, "Target", "java/lang/Object", "greet", "()I", 0)
	registerClass(t, "Target", "", targetCF)

	callerCF, idx := callerClassFile(t, "Caller", "Target", "greet", "()I", false)
	caller := registerClass(t, "Caller", "", callerCF)

	r := New(modsys.NewGraph(), testLoadClass)
	ref, err := r.Resolve(caller.Name, idx, callerCF.ConstantPool, Virtual)
	require.NoError(t, err)
	assert.Equal(t, "Target", ref.DeclaringClass)
	assert.Equal(t, "greet", ref.MethodName)
	assert.False(t, ref.IsStatic)
	assert.False(t, ref.IsPolymorphic)
}

func TestResolveIsCachedAndIdempotent(t *testing.T) {
	classloader.Reset()
	targetCF := methodClassFile(t, "Target", "java/lang/Object", "greet", "()I", 0)
	registerClass(t, "Target", "", targetCF)
	callerCF, idx := callerClassFile(t, "Caller", "Target", "greet", "()I", false)
	caller := registerClass(t, "Caller", "", callerCF)

	r := New(modsys.NewGraph(), testLoadClass)
	first, err := r.Resolve(caller.Name, idx, callerCF.ConstantPool, Virtual)
	require.NoError(t, err)
	second, err := r.Resolve(caller.Name, idx, callerCF.ConstantPool, Virtual)
	require.NoError(t, err)
	assert.Same(t, first, second, "resolving the same (caller, cp index) pair twice must not redo the algorithm")
}

func TestResolveInheritedMethod(t *testing.T) {
	classloader.Reset()
	baseCF := methodClassFile(t, "Base", "java/lang/Object", "greet", "()I", 0)
	registerClass(t, "Base", "", baseCF)
	derivedCF := methodClassFile(t, "Derived", "Base", "unrelated", "()V", 0)
	derived := registerClass(t, "Derived", "", derivedCF)

	callerCF, idx := callerClassFile(t, "Caller", "Derived", "greet", "()I", false)
	caller := registerClass(t, "Caller", "", callerCF)
	_ = derived

	r := New(modsys.NewGraph(), testLoadClass)
	ref, err := r.Resolve(caller.Name, idx, callerCF.ConstantPool, Virtual)
	require.NoError(t, err)
	assert.Equal(t, "Base", ref.DeclaringClass, "virtual lookup must walk the superclass chain")
}

func TestResolveStaticMismatchIsIncompatibleClassChange(t *testing.T) {
	classloader.Reset()
	targetCF := methodClassFile(t, "Target", "java/lang/Object", "greet", "()I", classloader.AccStatic)
	registerClass(t, "Target", "", targetCF)
	callerCF, idx := callerClassFile(t, "Caller", "Target", "greet", "()I", false)
	caller := registerClass(t, "Caller", "", callerCF)

	r := New(modsys.NewGraph(), testLoadClass)
	_, err := r.Resolve(caller.Name, idx, callerCF.ConstantPool, Virtual)
	require.Error(t, err)
	assert.True(t, IsIncompatibleClassChangeError(err))
}

func TestResolveMissingMethodIsNoSuchMethod(t *testing.T) {
	classloader.Reset()
	targetCF := methodClassFile(t, "Target", "java/lang/Object", "other", "()I", 0)
	registerClass(t, "Target", "", targetCF)
	callerCF, idx := callerClassFile(t, "Caller", "Target", "greet", "()I", false)
	caller := registerClass(t, "Caller", "", callerCF)

	r := New(modsys.NewGraph(), testLoadClass)
	_, err := r.Resolve(caller.Name, idx, callerCF.ConstantPool, Virtual)
	require.Error(t, err)
	assert.True(t, IsNoSuchMethodError(err))
}

func TestResolveDeniedByModuleGraph(t *testing.T) {
	classloader.Reset()
	targetCF := methodClassFile(t, "pkg/Target", "java/lang/Object", "greet", "()I", 0)
	registerClass(t, "pkg/Target", "modB", targetCF)
	callerCF, idx := callerClassFile(t, "Caller", "pkg/Target", "greet", "()I", false)
	caller := registerClass(t, "Caller", "modA", callerCF)

	graph := modsys.NewGraph()
	graph.AddModule(&modsys.Descriptor{Name: "modA", Packages: map[string]bool{}})
	graph.AddModule(&modsys.Descriptor{Name: "modB", Packages: map[string]bool{"pkg": true}})

	r := New(graph, testLoadClass)
	_, err := r.Resolve(caller.Name, idx, callerCF.ConstantPool, Virtual)
	require.Error(t, err)
	assert.True(t, IsIllegalAccessError(err))
}

func TestResolveInterfaceMethodBreadthFirst(t *testing.T) {
	classloader.Reset()
	superIfaceCF := methodClassFile(t, "SuperIface", "java/lang/Object", "greet", "()I", classloader.AccInterface|classloader.AccAbstract)
	registerClass(t, "SuperIface", "", superIfaceCF)

	subIfaceCF := &classloader.ClassFile{
		MinorVersion: 0,
		MajorVersion: 61,
		ConstantPool: classloader.NewConstantPool(),
		AccessFlags:  classloader.AccInterface | classloader.AccAbstract,
	}
	// Build SubIface implementing SuperIface.
	cp := subIfaceCF.ConstantPool
	utf8Object := cp.Append(classloader.Utf8Entry{Value: "java/lang/Object"})
	classObject := cp.Append(classloader.ClassEntry{NameIndex: utf8Object})
	utf8This := cp.Append(classloader.Utf8Entry{Value: "SubIface"})
	classThis := cp.Append(classloader.ClassEntry{NameIndex: utf8This})
	utf8Super := cp.Append(classloader.Utf8Entry{Value: "SuperIface"})
	classSuperIface := cp.Append(classloader.ClassEntry{NameIndex: utf8Super})
	subIfaceCF.ThisClass = classThis
	subIfaceCF.SuperClass = classObject
	subIfaceCF.Interfaces = []uint16{classSuperIface}
	registerClass(t, "SubIface", "", subIfaceCF)

	callerCF, idx := callerClassFile(t, "Caller", "SubIface", "greet", "()I", true)
	caller := registerClass(t, "Caller", "", callerCF)

	r := New(modsys.NewGraph(), testLoadClass)
	ref, err := r.Resolve(caller.Name, idx, callerCF.ConstantPool, Interface)
	require.NoError(t, err)
	assert.Equal(t, "SuperIface", ref.DeclaringClass)
}

func TestPolymorphicSignatureMethod(t *testing.T) {
	classloader.Reset()
	mhCF := methodClassFile(t, "java/lang/invoke/MethodHandle", "java/lang/Object",
		"invoke", "([Ljava/lang/Object;)Ljava/lang/Object;", 0)
	registerClass(t, "java/lang/invoke/MethodHandle", "", mhCF)

	callSiteDescriptor := "(Ljava/lang/String;I)Ljava/lang/String;"
	callerCF, idx := callerClassFile(t, "Caller", "java/lang/invoke/MethodHandle", "invoke", callSiteDescriptor, false)
	caller := registerClass(t, "Caller", "", callerCF)

	r := New(modsys.NewGraph(), testLoadClass)
	ref, err := r.Resolve(caller.Name, idx, callerCF.ConstantPool, Virtual)
	require.NoError(t, err)
	assert.True(t, ref.IsPolymorphic)
	assert.Equal(t, 2, ref.ParamCountForCallSite, "arity must come from the call-site descriptor, not MethodHandle.invoke's own")
	assert.True(t, ref.HasReturnTypeForCallSite)
}
