/*
 * jacovm - A Java virtual machine core
 * Builds a runtime *frames.Frame from a loaded class's MethodInfo,
 * pre-decoding its Code attribute's raw bytes through opcodes.Decode
 * the same way both verifier tiers do before walking an instruction
 * stream.
 */
package jvm

import (
	"jacovm/classloader"
	"jacovm/frames"
	"jacovm/opcodes"
)

func (vm *VM) buildFrame(class *classloader.Class, method *classloader.MethodInfo) (*frames.Frame, error) {
	if class.Data == nil {
		return nil, FE("%s has no decoded class data", class.Name)
	}
	cp := class.Data.ConstantPool
	name, err := cp.Utf8(method.NameIndex)
	if err != nil {
		return nil, err
	}
	descriptor, err := cp.Utf8(method.DescIndex)
	if err != nil {
		return nil, err
	}
	code := method.Code()
	if code == nil {
		return nil, FE("%s.%s%s has no Code attribute (abstract or native method reached the interpreter)", class.Name, name, descriptor)
	}

	instrs, offsetIndex, err := opcodes.Decode(code.Code)
	if err != nil {
		return nil, err
	}
	return frames.New(class.Name, name, descriptor, cp, instrs, offsetIndex, code.ExceptionTbl, int(code.MaxLocals), int(code.MaxStack)), nil
}
