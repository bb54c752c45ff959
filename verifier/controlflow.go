package verifier

import "jacovm/opcodes"

// Successors computes the set of instruction indices control may
// transfer to after instr executes, given offsetIndex (the bytecode
// offset -> instruction-index map opcodes.Decode produced) and the
// index of instr itself within the instruction list. fallsThrough
// additionally reports whether falling off the end of instr onto the
// next instruction is one of those transfers (true for everything
// except goto/*switch/return/athrow/ret, which leave fallsThrough
// false since they never reach the textually-next instruction through
// normal fall-through; goto/switch instead report their targets
// explicitly below).
func Successors(instr opcodes.Instruction, selfIndex int, offsetIndex map[int]int) (targets []int, fallsThrough bool, err error) {
	switch instr.Op {
	case opcodes.Goto, opcodes.GotoW:
		idx, ok := offsetIndex[int(instr.Operands[0])]
		if !ok {
			return nil, false, VFE("goto target offset %d is not an instruction boundary", instr.Operands[0])
		}
		return []int{idx}, false, nil

	case opcodes.Jsr, opcodes.JsrW:
		idx, ok := offsetIndex[int(instr.Operands[0])]
		if !ok {
			return nil, false, VFE("jsr target offset %d is not an instruction boundary", instr.Operands[0])
		}
		return []int{idx}, false, nil

	case opcodes.Ret, opcodes.RetW:
		return nil, false, VFE("ret is not supported as a control-flow successor in this verifier")

	case opcodes.Ireturn, opcodes.Lreturn, opcodes.Freturn, opcodes.Dreturn,
		opcodes.Areturn, opcodes.Return, opcodes.Athrow:
		return nil, false, nil

	case opcodes.Ifeq, opcodes.Ifne, opcodes.Iflt, opcodes.Ifge, opcodes.Ifgt, opcodes.Ifle,
		opcodes.IfIcmpeq, opcodes.IfIcmpne, opcodes.IfIcmplt, opcodes.IfIcmpge,
		opcodes.IfIcmpgt, opcodes.IfIcmple, opcodes.IfAcmpeq, opcodes.IfAcmpne,
		opcodes.Ifnull, opcodes.Ifnonnull:
		idx, ok := offsetIndex[int(instr.Operands[0])]
		if !ok {
			return nil, false, VFE("conditional branch target offset %d is not an instruction boundary", instr.Operands[0])
		}
		return []int{idx}, true, nil

	case opcodes.Tableswitch:
		targets = make([]int, 0, len(instr.Targets)+1)
		for _, off := range instr.Targets {
			idx, ok := offsetIndex[int(off)]
			if !ok {
				return nil, false, VFE("tableswitch target offset %d is not an instruction boundary", off)
			}
			targets = append(targets, idx)
		}
		defIdx, ok := offsetIndex[int(instr.Default)]
		if !ok {
			return nil, false, VFE("tableswitch default offset %d is not an instruction boundary", instr.Default)
		}
		return append(targets, defIdx), false, nil

	case opcodes.Lookupswitch:
		targets = make([]int, 0, len(instr.Pairs)+1)
		for _, p := range instr.Pairs {
			idx, ok := offsetIndex[int(p.Offset)]
			if !ok {
				return nil, false, VFE("lookupswitch target offset %d is not an instruction boundary", p.Offset)
			}
			targets = append(targets, idx)
		}
		defIdx, ok := offsetIndex[int(instr.Default)]
		if !ok {
			return nil, false, VFE("lookupswitch default offset %d is not an instruction boundary", instr.Default)
		}
		return append(targets, defIdx), false, nil

	default:
		return nil, true, nil
	}
}
