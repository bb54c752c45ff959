/*
 * jacovm - A Java virtual machine core
 * Both verifier tiers against hand-assembled methods: acceptance of
 * well-typed code, rejection of stack underflow / wrong return types /
 * jsr on modern class files / missing anchors, and the tier-equivalence
 * property (anything the fast pass accepts, inference accepts too).
 */
package verifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jacovm/classloader"
	"jacovm/opcodes"
)

// flatHierarchy is a minimal vtype.HierarchyContext: only
// java/lang/Object sits above anything.
type flatHierarchy struct{}

func (flatHierarchy) IsAssignable(target, source string) bool {
	return target == source || target == "java/lang/Object"
}
func (flatHierarchy) CommonSuperclass(a, b string) string {
	if a == b {
		return a
	}
	return "java/lang/Object"
}

func target(name, descriptor string, static bool) MethodTarget {
	return MethodTarget{
		ClassName:    "test/T",
		MethodName:   name,
		Descriptor:   descriptor,
		IsStatic:     static,
		MajorVersion: 61,
	}
}

func decode(t *testing.T, code []byte) ([]opcodes.Instruction, map[int]int) {
	t.Helper()
	instrs, offsetIndex, err := opcodes.Decode(code)
	require.NoError(t, err)
	return instrs, offsetIndex
}

func verifyBoth(t *testing.T, mt MethodTarget, code *classloader.CodeAttribute) (fastErr, inferErr error) {
	t.Helper()
	cp := classloader.NewConstantPool()
	instrs, offsetIndex := decode(t, code.Code)
	fastErr = VerifyFast(mt, cp, code, instrs, offsetIndex, flatHierarchy{})
	inferErr = VerifyInference(mt, cp, code, instrs, offsetIndex, flatHierarchy{})
	return fastErr, inferErr
}

func TestBothTiersAcceptAddMethod(t *testing.T) {
	code := &classloader.CodeAttribute{
		MaxStack:  2,
		MaxLocals: 2,
		Code:      []byte{0x1a, 0x1b, 0x60, 0xac}, // iload_0; iload_1; iadd; ireturn
	}
	fastErr, inferErr := verifyBoth(t, target("add", "(II)I", true), code)
	assert.NoError(t, fastErr)
	assert.NoError(t, inferErr)
}

func TestBothTiersAcceptCategory2Method(t *testing.T) {
	code := &classloader.CodeAttribute{
		MaxStack:  4,
		MaxLocals: 4,
		Code:      []byte{0x1e, 0x20, 0x65, 0xad}, // lload_0; lload_2; lsub; lreturn
	}
	fastErr, inferErr := verifyBoth(t, target("sub", "(JJ)J", true), code)
	assert.NoError(t, fastErr)
	assert.NoError(t, inferErr)
}

func TestBothTiersRejectStackUnderflow(t *testing.T) {
	code := &classloader.CodeAttribute{
		MaxStack:  2,
		MaxLocals: 0,
		Code:      []byte{0x60, 0xac}, // iadd on an empty stack
	}
	fastErr, inferErr := verifyBoth(t, target("bad", "()I", true), code)
	assert.True(t, IsVerifyError(fastErr))
	assert.True(t, IsVerifyError(inferErr))
}

func TestBothTiersRejectWrongReturnType(t *testing.T) {
	code := &classloader.CodeAttribute{
		MaxStack:  1,
		MaxLocals: 1,
		Code:      []byte{0x22, 0xac}, // fload_0; ireturn in a (F)F method
	}
	fastErr, inferErr := verifyBoth(t, target("bad", "(F)F", true), code)
	assert.True(t, IsVerifyError(fastErr))
	assert.True(t, IsVerifyError(inferErr))
}

func TestJsrRejectedOnModernClassfile(t *testing.T) {
	code := &classloader.CodeAttribute{
		MaxStack:  1,
		MaxLocals: 1,
		Code:      []byte{0xa8, 0x00, 0x03, 0xb1}, // jsr +3; return
	}
	fastErr, _ := verifyBoth(t, target("sub", "()V", true), code)
	require.True(t, IsVerifyError(fastErr))
	assert.Contains(t, fastErr.Error(), "jsr")
}

func TestFastRequiresAnchorAtBranchTarget(t *testing.T) {
	// iload_0; ifeq -> 4; 4: return -- the branch target carries no
	// stack map entry, which the single-pass tier must reject.
	code := &classloader.CodeAttribute{
		MaxStack:  1,
		MaxLocals: 1,
		Code:      []byte{0x1a, 0x99, 0x00, 0x03, 0xb1},
	}
	cp := classloader.NewConstantPool()
	instrs, offsetIndex := decode(t, code.Code)
	err := VerifyFast(target("b", "(I)V", true), cp, code, instrs, offsetIndex, flatHierarchy{})
	require.True(t, IsVerifyError(err))
	assert.Contains(t, err.Error(), "stack map")
}

// branchCode is `return x != 0 ? 1 : 0` as bytecode:
//
//	0: iload_0
//	1: ifeq 8
//	4: iconst_1
//	5: goto 9
//	8: iconst_0
//	9: ireturn
func branchCode() []byte {
	return []byte{0x1a, 0x99, 0x00, 0x07, 0x04, 0xa7, 0x00, 0x04, 0x03, 0xac}
}

func TestFastAcceptsBranchWithStackMapAnchors(t *testing.T) {
	code := &classloader.CodeAttribute{
		MaxStack:  1,
		MaxLocals: 1,
		Code:      branchCode(),
		Attributes: []classloader.Attribute{classloader.StackMapTableAttribute{
			Table: &classloader.StackMapTable{Entries: []classloader.StackFrame{
				classloader.SameFrame{Type: 8}, // anchor at 8, locals [int], empty stack
				classloader.SameLocals1StackItemFrame{ // anchor at 9, one int on the stack
					Type:  64,
					Stack: classloader.VerificationTypeInfo{Tag: classloader.VInteger},
				},
			}},
		}},
	}
	cp := classloader.NewConstantPool()
	instrs, offsetIndex := decode(t, code.Code)
	err := VerifyFast(target("sel", "(I)I", true), cp, code, instrs, offsetIndex, flatHierarchy{})
	assert.NoError(t, err)
}

func TestInferenceAcceptsBranchWithoutStackMap(t *testing.T) {
	code := &classloader.CodeAttribute{
		MaxStack:  1,
		MaxLocals: 1,
		Code:      branchCode(),
	}
	cp := classloader.NewConstantPool()
	instrs, offsetIndex := decode(t, code.Code)
	err := VerifyInference(target("sel", "(I)I", true), cp, code, instrs, offsetIndex, flatHierarchy{})
	assert.NoError(t, err)
}

func TestInferenceAcceptsLoop(t *testing.T) {
	// acc = 0; for (i = 0; i < 4; i++) acc += i; return acc;
	code := &classloader.CodeAttribute{
		MaxStack:  2,
		MaxLocals: 3,
		Code: []byte{
			0x03, 0x3c, // iconst_0; istore_1
			0x03, 0x3d, // iconst_0; istore_2
			0x1c, 0x07, // 4: iload_2; iconst_4
			0xa2, 0x00, 0x0c, // if_icmpge -> 18
			0x1b, 0x1c, 0x60, 0x3c, // iload_1; iload_2; iadd; istore_1
			0x84, 0x02, 0x01, // iinc 2, 1
			0xa7, 0xff, 0xf4, // goto -> 4
			0x1b, 0xac, // 18: iload_1; ireturn
		},
	}
	cp := classloader.NewConstantPool()
	instrs, offsetIndex := decode(t, code.Code)
	err := VerifyInference(target("sum", "(I)I", true), cp, code, instrs, offsetIndex, flatHierarchy{})
	assert.NoError(t, err)
}

func TestInferenceHandlesExceptionHandlerEntry(t *testing.T) {
	// try { return 1/0; } catch (any) { pop; return 2; }
	code := &classloader.CodeAttribute{
		MaxStack:  2,
		MaxLocals: 1,
		Code:      []byte{0x04, 0x03, 0x6c, 0xac, 0x57, 0x05, 0xac},
		ExceptionTbl: []classloader.ExceptionTableEntry{
			{StartPC: 0, EndPC: 4, HandlerPC: 4, CatchType: 0},
		},
	}
	cp := classloader.NewConstantPool()
	instrs, offsetIndex := decode(t, code.Code)
	err := VerifyInference(target("div", "()I", true), cp, code, instrs, offsetIndex, flatHierarchy{})
	assert.NoError(t, err)
}

// Anything the fast verifier accepts, the inference verifier accepts
// with an end state assignable to the anchors; spot-checked over this
// file's accepted methods.
func TestTierEquivalenceOnAcceptedMethods(t *testing.T) {
	for _, tc := range []struct {
		name       string
		descriptor string
		code       *classloader.CodeAttribute
	}{
		{"add", "(II)I", &classloader.CodeAttribute{MaxStack: 2, MaxLocals: 2, Code: []byte{0x1a, 0x1b, 0x60, 0xac}}},
		{"neg", "(I)I", &classloader.CodeAttribute{MaxStack: 1, MaxLocals: 1, Code: []byte{0x1a, 0x74, 0xac}}},
		{"pass", "(D)D", &classloader.CodeAttribute{MaxStack: 2, MaxLocals: 2, Code: []byte{0x26, 0xaf}}},
	} {
		cp := classloader.NewConstantPool()
		instrs, offsetIndex := decode(t, tc.code.Code)
		mt := target(tc.name, tc.descriptor, true)
		if err := VerifyFast(mt, cp, tc.code, instrs, offsetIndex, flatHierarchy{}); err != nil {
			continue // equivalence only binds methods the fast tier accepts
		}
		assert.NoError(t, VerifyInference(mt, cp, tc.code, instrs, offsetIndex, flatHierarchy{}), tc.name)
	}
}
