/*
 * jacovm - A Java virtual machine core
 * Instance creation: build a new object and zero-initialize its
 * declared instance fields by descriptor character, walking the
 * classloader.Class/ClassFile/ConstantPool shapes and letting
 * object.NewObject assign the identity hash (object owns a monotonic
 * counter for that).
 */
package jvm

import (
	"jacovm/classloader"
	"jacovm/object"
)

// InstantiateClass allocates a new instance of className, ensuring the
// class itself is initialized first (JVMS §5.5: "new" triggers
// initialization of the class it names) and giving every declared,
// non-static instance field its default value.
func (vm *VM) InstantiateClass(thread *Thread, className string) (*object.Object, error) {
	class, err := vm.LoadClass(className)
	if err != nil {
		return nil, err
	}
	if err := vm.EnsureInitialized(thread, className); err != nil {
		return nil, err
	}

	obj := object.NewObject(className)
	if class.Data == nil {
		return obj, nil
	}
	cp := class.Data.ConstantPool
	for _, fld := range class.Data.Fields {
		if fld.AccessFlags&classloader.AccStatic != 0 {
			continue
		}
		name, err := cp.Utf8(fld.NameIndex)
		if err != nil {
			return nil, err
		}
		descriptor, err := cp.Utf8(fld.DescIndex)
		if err != nil {
			return nil, err
		}
		obj.FieldTable[name] = &object.Field{Ftype: descriptor, Fvalue: zeroValueForDescriptor(descriptor)}
	}
	return obj, nil
}
