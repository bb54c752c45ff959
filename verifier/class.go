/*
 * jacovm - A Java virtual machine core
 * Class-level verification driver: picks the right tier for each
 * bytecode method and marks the class verified when every method
 * passes; a decoded class becomes loadable only after it does.
 */
package verifier

import (
	"jacovm/classloader"
	"jacovm/log"
	"jacovm/opcodes"
	"jacovm/vtype"
)

// stackMapMajorVersion is the class-file major version (Java 6) that
// introduced the StackMapTable attribute; older classes carry no
// anchors for the fast verifier to trust and go straight to inference.
const stackMapMajorVersion = 50

// FallbackOnFailure controls whether a method the fast verifier
// rejects gets a second chance under the inference verifier. The two
// tiers agree on every well-formed method; the fallback only matters
// for classes whose StackMapTable is stale or absent at an anchor the
// fast pass needed.
var FallbackOnFailure = true

// VerifyClass verifies every bytecode method of class, leaving its
// Status at StatusVerified on success. Abstract and native methods
// have no Code attribute and are skipped.
func VerifyClass(class *classloader.Class, ctx vtype.HierarchyContext) error {
	cf := class.Data
	if cf == nil {
		return nil
	}
	for i := range cf.Methods {
		m := &cf.Methods[i]
		name, err := cf.ConstantPool.Utf8(m.NameIndex)
		if err != nil {
			return err
		}
		descriptor, err := cf.ConstantPool.Utf8(m.DescIndex)
		if err != nil {
			return err
		}
		code := m.Code()
		if code == nil {
			continue
		}
		if err := verifyMethod(class, name, descriptor, m, code, ctx); err != nil {
			return err
		}
	}
	class.Status = classloader.StatusVerified
	log.Log("verification of "+class.Name+" passed", log.FINE)
	return nil
}

func verifyMethod(class *classloader.Class, name, descriptor string,
	m *classloader.MethodInfo, code *classloader.CodeAttribute, ctx vtype.HierarchyContext) error {

	cf := class.Data
	instructions, offsetIndex, err := opcodes.Decode(code.Code)
	if err != nil {
		return VFE("%s.%s%s: %v", class.Name, name, descriptor, err)
	}
	mt := MethodTarget{
		ClassName:     class.Name,
		MethodName:    name,
		Descriptor:    descriptor,
		IsStatic:      m.AccessFlags&classloader.AccStatic != 0,
		IsConstructor: name == "<init>",
		MajorVersion:  int(cf.MajorVersion),
	}

	if cf.MajorVersion < stackMapMajorVersion {
		return VerifyInference(mt, cf.ConstantPool, code, instructions, offsetIndex, ctx)
	}

	fastErr := VerifyFast(mt, cf.ConstantPool, code, instructions, offsetIndex, ctx)
	if fastErr == nil {
		return nil
	}
	if FallbackOnFailure {
		if err := VerifyInference(mt, cf.ConstantPool, code, instructions, offsetIndex, ctx); err == nil {
			return nil
		}
	}
	return fastErr
}
