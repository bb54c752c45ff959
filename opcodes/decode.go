package opcodes

import "fmt"

// Decode pre-decodes a method's raw Code bytes into a flat Instruction
// list plus a map from absolute bytecode offset to that instruction's
// index in the list (branch/switch targets and exception-table/stack-map
// positions are all expressed as byte offsets; the interpreter and both
// verifier tiers resolve them through this map once, up front, so their
// per-instruction "advance pc" is plain index arithmetic).
//
// `wide`-prefixed forms are folded into a single synthetic instruction
// (op+0x100) carrying the widened operand, so downstream dispatchers
// never observe the prefix byte itself.
func Decode(code []byte) ([]Instruction, map[int]int, error) {
	var out []Instruction
	offsetToIndex := make(map[int]int)
	i := 0
	for i < len(code) {
		start := i
		op := int(code[i])
		i++

		var operands []int32
		var err error
		wide := false
		if op == Wide {
			if i >= len(code) {
				return nil, nil, fmt.Errorf("opcodes: truncated wide prefix at offset %d", start)
			}
			op = int(code[i])
			i++
			wide = true
		}

		instr := Instruction{Offset: start}

		switch op {
		case Tableswitch:
			i = pad4(i)
			var def, low, high int32
			def, i, err = readI32(code, i)
			if err == nil {
				low, i, err = readI32(code, i)
			}
			if err == nil {
				high, i, err = readI32(code, i)
			}
			if err != nil {
				return nil, nil, err
			}
			instr.Default, instr.Low, instr.High = int32(start)+def, low, high
			n := int(high) - int(low) + 1
			if n < 0 {
				return nil, nil, fmt.Errorf("opcodes: invalid tableswitch range at offset %d", start)
			}
			instr.Targets = make([]int32, n)
			for j := 0; j < n; j++ {
				instr.Targets[j], i, err = readI32(code, i)
				if err != nil {
					return nil, nil, err
				}
				instr.Targets[j] += int32(start)
			}
		case Lookupswitch:
			i = pad4(i)
			var def int32
			def, i, err = readI32(code, i)
			if err != nil {
				return nil, nil, err
			}
			instr.Default = int32(start) + def
			var npairs int32
			npairs, i, err = readI32(code, i)
			if err != nil {
				return nil, nil, err
			}
			instr.Pairs = make([]SwitchPair, npairs)
			for j := int32(0); j < npairs; j++ {
				var match, off int32
				match, i, err = readI32(code, i)
				if err == nil {
					off, i, err = readI32(code, i)
				}
				if err != nil {
					return nil, nil, err
				}
				instr.Pairs[j] = SwitchPair{Match: match, Offset: int32(start) + off}
			}
		case Iinc:
			width := 1
			if wide {
				width = 2
			}
			idx, n1, e1 := readUint(code, i, width)
			if e1 != nil {
				return nil, nil, e1
			}
			cst, n2, e2 := readIntN(code, n1, width)
			if e2 != nil {
				return nil, nil, e2
			}
			operands = []int32{int32(idx), cst}
			i = n2
		default:
			operands, i, err = decodeOperands(op, wide, code, i, start)
			if err != nil {
				return nil, nil, err
			}
		}

		instr.Operands = operands
		finalOp := op
		if wide {
			finalOp = 0x100 + op
		}
		instr.Op = finalOp

		offsetToIndex[start] = len(out)
		out = append(out, instr)
	}
	return out, offsetToIndex, nil
}

// pad4 advances i past the 0-3 zero bytes following a tableswitch or
// lookupswitch opcode, up to the next multiple of 4 (JVMS §6.5, measured
// from the start of the method).
func pad4(i int) int {
	for i%4 != 0 {
		i++
	}
	return i
}

func readI32(code []byte, i int) (int32, int, error) {
	if i+4 > len(code) {
		return 0, i, fmt.Errorf("opcodes: truncated operand at offset %d", i)
	}
	v := int32(code[i])<<24 | int32(code[i+1])<<16 | int32(code[i+2])<<8 | int32(code[i+3])
	return v, i + 4, nil
}

func readUint(code []byte, i, width int) (uint32, int, error) {
	if i+width > len(code) {
		return 0, i, fmt.Errorf("opcodes: truncated operand at offset %d", i)
	}
	var v uint32
	for k := 0; k < width; k++ {
		v = v<<8 | uint32(code[i+k])
	}
	return v, i + width, nil
}

func readIntN(code []byte, i, width int) (int32, int, error) {
	v, n, err := readUint(code, i, width)
	if err != nil {
		return 0, n, err
	}
	switch width {
	case 1:
		return int32(int8(v)), n, nil
	case 2:
		return int32(int16(v)), n, nil
	default:
		return int32(v), n, nil
	}
}

// decodeOperands returns the fixed-width operand(s) for every opcode
// that isn't a switch or iinc (handled separately above). The local-slot
// index width doubles under a wide prefix (JVMS §6.5 wide); everything
// else's width is unaffected by it.
func decodeOperands(op int, wide bool, code []byte, i, start int) ([]int32, int, error) {
	idxWidth := 1
	if wide {
		idxWidth = 2
	}
	switch op {
	case Iload, Lload, Fload, Dload, Aload,
		Istore, Lstore, Fstore, Dstore, Astore, Ret:
		v, n, err := readUint(code, i, idxWidth)
		return []int32{int32(v)}, n, err
	case Bipush:
		v, n, err := readIntN(code, i, 1)
		return []int32{v}, n, err
	case Sipush:
		v, n, err := readIntN(code, i, 2)
		return []int32{v}, n, err
	case Ldc:
		v, n, err := readUint(code, i, 1)
		return []int32{int32(v)}, n, err
	case LdcW, Ldc2W, Getstatic, Putstatic, Getfield, Putfield,
		Invokevirtual, Invokespecial, Invokestatic, New, Anewarray,
		Checkcast, Instanceof:
		v, n, err := readUint(code, i, 2)
		return []int32{int32(v)}, n, err
	case Invokeinterface:
		cpIdx, n, err := readUint(code, i, 2)
		if err != nil {
			return nil, n, err
		}
		count, n2, err := readUint(code, n, 1)
		if err != nil {
			return nil, n2, err
		}
		_, n3, err := readUint(code, n2, 1) // reserved zero byte
		if err != nil {
			return nil, n3, err
		}
		return []int32{int32(cpIdx), int32(count)}, n3, nil
	case Invokedynamic:
		cpIdx, n, err := readUint(code, i, 2)
		if err != nil {
			return nil, n, err
		}
		_, n2, err := readUint(code, n, 2) // reserved zero bytes
		return []int32{int32(cpIdx)}, n2, err
	case Multianewarray:
		cpIdx, n, err := readUint(code, i, 2)
		if err != nil {
			return nil, n, err
		}
		dims, n2, err := readUint(code, n, 1)
		return []int32{int32(cpIdx), int32(dims)}, n2, err
	case Newarray:
		v, n, err := readUint(code, i, 1)
		return []int32{int32(v)}, n, err
	case Ifeq, Ifne, Iflt, Ifge, Ifgt, Ifle,
		IfIcmpeq, IfIcmpne, IfIcmplt, IfIcmpge, IfIcmpgt, IfIcmple,
		IfAcmpeq, IfAcmpne, Goto, Jsr, Ifnull, Ifnonnull:
		v, n, err := readIntN(code, i, 2)
		if err != nil {
			return nil, n, err
		}
		return []int32{int32(start) + v}, n, nil
	case GotoW, JsrW:
		v, n, err := readI32(code, i)
		if err != nil {
			return nil, n, err
		}
		return []int32{int32(start) + v}, n, nil
	default:
		// zero-operand instruction (nop, arithmetic, stack shuffles,
		// loads/stores with folded index forms, returns, etc).
		return nil, i, nil
	}
}
