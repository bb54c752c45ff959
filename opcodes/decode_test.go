/*
 * jacovm - A Java virtual machine core
 * Pre-decoder coverage: offset/index mapping, branch targets resolved
 * to absolute offsets, switch padding, and wide-prefix folding.
 */
package opcodes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSimpleSequence(t *testing.T) {
	instrs, offsetIndex, err := Decode([]byte{0x1a, 0x1b, 0x60, 0xac})
	require.NoError(t, err)
	require.Len(t, instrs, 4)
	assert.Equal(t, Iload0, instrs[0].Op)
	assert.Equal(t, Iload1, instrs[1].Op)
	assert.Equal(t, Iadd, instrs[2].Op)
	assert.Equal(t, Ireturn, instrs[3].Op)
	for i, instr := range instrs {
		assert.Equal(t, i, offsetIndex[instr.Offset])
	}
}

func TestDecodeBranchTargetsAreAbsolute(t *testing.T) {
	// 0: iload_0; 1: ifeq +7 (-> 8); 4: iconst_1; 5: goto +4 (-> 9);
	// 8: iconst_0; 9: ireturn
	instrs, offsetIndex, err := Decode([]byte{
		0x1a, 0x99, 0x00, 0x07, 0x04, 0xa7, 0x00, 0x04, 0x03, 0xac,
	})
	require.NoError(t, err)
	require.Len(t, instrs, 6)
	assert.Equal(t, int32(8), instrs[1].Operands[0])
	assert.Equal(t, int32(9), instrs[3].Operands[0])
	assert.Equal(t, 4, offsetIndex[8])
	assert.Equal(t, 5, offsetIndex[9])
}

func TestDecodeNegativeBranchOffset(t *testing.T) {
	// 0: nop; 1: goto -1 (-> 0)
	instrs, _, err := Decode([]byte{0x00, 0xa7, 0xff, 0xff})
	require.NoError(t, err)
	assert.Equal(t, int32(0), instrs[1].Operands[0])
}

func TestDecodeWidePrefixFolds(t *testing.T) {
	// wide iload 0x0105; wide iinc 0x0002 by -3; ireturn
	instrs, _, err := Decode([]byte{
		0xc4, 0x15, 0x01, 0x05,
		0xc4, 0x84, 0x00, 0x02, 0xff, 0xfd,
		0xac,
	})
	require.NoError(t, err)
	require.Len(t, instrs, 3)
	assert.Equal(t, IloadW, instrs[0].Op)
	assert.Equal(t, int32(0x0105), instrs[0].Operands[0])
	assert.Equal(t, IincW, instrs[1].Op)
	assert.Equal(t, int32(2), instrs[1].Operands[0])
	assert.Equal(t, int32(-3), instrs[1].Operands[1])
	assert.Equal(t, "iload_w", Mnemonic(instrs[0].Op))
}

func TestDecodeTableswitch(t *testing.T) {
	// 0: iconst_0
	// 1: tableswitch (pad to 4) default->28 low=1 high=2 targets 26, 27
	code := []byte{
		0x03,
		0xaa, 0x00, 0x00, // opcode at 1, pad to offset 4
		0x00, 0x00, 0x00, 0x1b, // default +27 -> 28
		0x00, 0x00, 0x00, 0x01, // low
		0x00, 0x00, 0x00, 0x02, // high
		0x00, 0x00, 0x00, 0x19, // match 1 -> +25 -> 26
		0x00, 0x00, 0x00, 0x1a, // match 2 -> +26 -> 27
		0x00, 0x00, // filler so the targets exist
		0xb1, 0xb1, 0xb1, // 26, 27, 28: return
	}
	instrs, offsetIndex, err := Decode(code)
	require.NoError(t, err)
	sw := instrs[1]
	require.Equal(t, Tableswitch, sw.Op)
	assert.Equal(t, int32(28), sw.Default)
	assert.Equal(t, int32(1), sw.Low)
	assert.Equal(t, int32(2), sw.High)
	assert.Equal(t, []int32{26, 27}, sw.Targets)
	assert.Contains(t, offsetIndex, 26)
	assert.Contains(t, offsetIndex, 27)
	assert.Contains(t, offsetIndex, 28)
}

func TestDecodeLookupswitch(t *testing.T) {
	// 0: iconst_0
	// 1: lookupswitch (pad to 4) default->24, npairs=1, {42 -> 25}
	code := []byte{
		0x03,
		0xab, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x17, // default +23 -> 24
		0x00, 0x00, 0x00, 0x01, // npairs
		0x00, 0x00, 0x00, 0x2a, // match 42
		0x00, 0x00, 0x00, 0x18, // +24 -> 25
		0x00, 0x00, 0x00, 0x00, // filler
		0xb1, 0xb1, // 24, 25
	}
	instrs, _, err := Decode(code)
	require.NoError(t, err)
	sw := instrs[1]
	require.Equal(t, Lookupswitch, sw.Op)
	assert.Equal(t, int32(24), sw.Default)
	require.Len(t, sw.Pairs, 1)
	assert.Equal(t, int32(42), sw.Pairs[0].Match)
	assert.Equal(t, int32(25), sw.Pairs[0].Offset)
}

func TestDecodeTruncatedOperandFails(t *testing.T) {
	_, _, err := Decode([]byte{0x10}) // bipush missing its byte
	assert.Error(t, err)
	_, _, err = Decode([]byte{0xc4}) // bare wide prefix
	assert.Error(t, err)
}
