/*
 * jacovm - A Java virtual machine core
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 *
 * Bit-exact codec for the StackMapTable attribute (JVMS §4.7.4). Each
 * frame variant is modeled as its own struct behind the StackFrame
 * interface, the same tagged-union-via-interface idiom used throughout
 * this codec.
 */
package classloader

// Verification-type-info tag bytes, JVMS §4.7.4.
const (
	VTop               = 0
	VInteger           = 1
	VFloat             = 2
	VDouble            = 3
	VLong              = 4
	VNull              = 5
	VUninitializedThis = 6
	VObject            = 7
	VUninitialized     = 8
)

// VerificationTypeInfo is the raw, codec-level encoding of one locals or
// stack slot inside a StackMapTable frame. CPoolIndex is meaningful only
// when Tag == VObject; Offset only when Tag == VUninitialized. Translating
// this into the semantic lattice type (vtype.VerificationType) is the
// verifier's job, not the codec's.
type VerificationTypeInfo struct {
	Tag        uint8
	CPoolIndex uint16
	Offset     uint16
}

func decodeVerificationTypeInfo(r *byteReader) (VerificationTypeInfo, error) {
	tag, err := r.u1()
	if err != nil {
		return VerificationTypeInfo{}, err
	}
	switch tag {
	case VTop, VInteger, VFloat, VDouble, VLong, VNull, VUninitializedThis:
		return VerificationTypeInfo{Tag: tag}, nil
	case VObject:
		idx, err := r.u2()
		if err != nil {
			return VerificationTypeInfo{}, err
		}
		return VerificationTypeInfo{Tag: tag, CPoolIndex: idx}, nil
	case VUninitialized:
		off, err := r.u2()
		if err != nil {
			return VerificationTypeInfo{}, err
		}
		return VerificationTypeInfo{Tag: tag, Offset: off}, nil
	default:
		return VerificationTypeInfo{}, CFE("invalid verification_type_info tag %d", tag)
	}
}

func encodeVerificationTypeInfo(w *byteWriter, v VerificationTypeInfo) {
	w.u1(v.Tag)
	switch v.Tag {
	case VObject:
		w.u2(v.CPoolIndex)
	case VUninitialized:
		w.u2(v.Offset)
	}
}

// StackFrame is one entry of a StackMapTable, one of the seven variants
// FrameType returns the raw frame_type byte; OffsetDelta
// returns the bytecode distance from the previous frame (or from method
// start, for the first frame) as defined per-variant by JVMS §4.7.4.
type StackFrame interface {
	FrameType() uint8
	OffsetDelta() uint16
}

type SameFrame struct{ Type uint8 } // frame_type 0-63

func (f SameFrame) FrameType() uint8  { return f.Type }
func (f SameFrame) OffsetDelta() uint16 { return uint16(f.Type) }

type SameLocals1StackItemFrame struct {
	Type  uint8 // 64-127
	Stack VerificationTypeInfo
}

func (f SameLocals1StackItemFrame) FrameType() uint8    { return f.Type }
func (f SameLocals1StackItemFrame) OffsetDelta() uint16 { return uint16(f.Type) - 64 }

type SameLocals1StackItemFrameExtended struct {
	Type        uint8 // always 247
	OffsetDeltaV uint16
	Stack       VerificationTypeInfo
}

func (f SameLocals1StackItemFrameExtended) FrameType() uint8    { return f.Type }
func (f SameLocals1StackItemFrameExtended) OffsetDelta() uint16 { return f.OffsetDeltaV }

type ChopFrame struct {
	Type uint8 // 248-250
	OffsetDeltaV uint16
}

func (f ChopFrame) FrameType() uint8    { return f.Type }
func (f ChopFrame) OffsetDelta() uint16 { return f.OffsetDeltaV }

// ChopCount is how many locals from the end of the previous frame's
// locals vector are dropped: 251 - frame_type.
func (f ChopFrame) ChopCount() int { return 251 - int(f.Type) }

type SameFrameExtended struct {
	Type        uint8 // always 251
	OffsetDeltaV uint16
}

func (f SameFrameExtended) FrameType() uint8    { return f.Type }
func (f SameFrameExtended) OffsetDelta() uint16 { return f.OffsetDeltaV }

type AppendFrame struct {
	Type        uint8 // 252-254
	OffsetDeltaV uint16
	Locals      []VerificationTypeInfo
}

func (f AppendFrame) FrameType() uint8    { return f.Type }
func (f AppendFrame) OffsetDelta() uint16 { return f.OffsetDeltaV }

type FullFrame struct {
	Type        uint8 // always 255
	OffsetDeltaV uint16
	Locals      []VerificationTypeInfo
	Stack       []VerificationTypeInfo
}

func (f FullFrame) FrameType() uint8    { return f.Type }
func (f FullFrame) OffsetDelta() uint16 { return f.OffsetDeltaV }

func decodeStackFrame(r *byteReader) (StackFrame, error) {
	frameType, err := r.u1()
	if err != nil {
		return nil, err
	}
	switch {
	case frameType <= 63:
		return SameFrame{Type: frameType}, nil
	case frameType <= 127:
		stack, err := decodeVerificationTypeInfo(r)
		if err != nil {
			return nil, err
		}
		return SameLocals1StackItemFrame{Type: frameType, Stack: stack}, nil
	case frameType == 247:
		delta, err := r.u2()
		if err != nil {
			return nil, err
		}
		stack, err := decodeVerificationTypeInfo(r)
		if err != nil {
			return nil, err
		}
		return SameLocals1StackItemFrameExtended{Type: frameType, OffsetDeltaV: delta, Stack: stack}, nil
	case frameType >= 248 && frameType <= 250:
		delta, err := r.u2()
		if err != nil {
			return nil, err
		}
		return ChopFrame{Type: frameType, OffsetDeltaV: delta}, nil
	case frameType == 251:
		delta, err := r.u2()
		if err != nil {
			return nil, err
		}
		return SameFrameExtended{Type: frameType, OffsetDeltaV: delta}, nil
	case frameType >= 252 && frameType <= 254:
		delta, err := r.u2()
		if err != nil {
			return nil, err
		}
		n := int(frameType) - 251
		locals := make([]VerificationTypeInfo, n)
		for i := 0; i < n; i++ {
			locals[i], err = decodeVerificationTypeInfo(r)
			if err != nil {
				return nil, err
			}
		}
		return AppendFrame{Type: frameType, OffsetDeltaV: delta, Locals: locals}, nil
	case frameType == 255:
		delta, err := r.u2()
		if err != nil {
			return nil, err
		}
		localsCount, err := r.u2()
		if err != nil {
			return nil, err
		}
		var locals []VerificationTypeInfo
		if localsCount > 0 {
			locals = make([]VerificationTypeInfo, localsCount)
		}
		for i := range locals {
			locals[i], err = decodeVerificationTypeInfo(r)
			if err != nil {
				return nil, err
			}
		}
		stackCount, err := r.u2()
		if err != nil {
			return nil, err
		}
		var stack []VerificationTypeInfo
		if stackCount > 0 {
			stack = make([]VerificationTypeInfo, stackCount)
		}
		for i := range stack {
			stack[i], err = decodeVerificationTypeInfo(r)
			if err != nil {
				return nil, err
			}
		}
		return FullFrame{Type: frameType, OffsetDeltaV: delta, Locals: locals, Stack: stack}, nil
	default:
		return nil, CFE("invalid stack map frame_type %d", frameType)
	}
}

func encodeStackFrame(w *byteWriter, f StackFrame) error {
	switch fr := f.(type) {
	case SameFrame:
		w.u1(fr.Type)
	case SameLocals1StackItemFrame:
		w.u1(fr.Type)
		encodeVerificationTypeInfo(w, fr.Stack)
	case SameLocals1StackItemFrameExtended:
		w.u1(fr.Type)
		w.u2(fr.OffsetDeltaV)
		encodeVerificationTypeInfo(w, fr.Stack)
	case ChopFrame:
		w.u1(fr.Type)
		w.u2(fr.OffsetDeltaV)
	case SameFrameExtended:
		w.u1(fr.Type)
		w.u2(fr.OffsetDeltaV)
	case AppendFrame:
		w.u1(fr.Type)
		w.u2(fr.OffsetDeltaV)
		for _, l := range fr.Locals {
			encodeVerificationTypeInfo(w, l)
		}
	case FullFrame:
		w.u1(fr.Type)
		w.u2(fr.OffsetDeltaV)
		w.u2(uint16(len(fr.Locals)))
		for _, l := range fr.Locals {
			encodeVerificationTypeInfo(w, l)
		}
		w.u2(uint16(len(fr.Stack)))
		for _, s := range fr.Stack {
			encodeVerificationTypeInfo(w, s)
		}
	default:
		return CFE("unknown StackFrame implementation")
	}
	return nil
}

// StackMapTable is the sequence of frames in a method's StackMapTable
// attribute. Anchors (absolute bytecode offsets) are reconstructed by
// summing offset_delta+1 per frame, except the first frame which uses
// offset_delta verbatim.
type StackMapTable struct {
	Entries []StackFrame
}

// Anchors returns the absolute bytecode offset each frame anchors to.
func (t StackMapTable) Anchors() []int {
	anchors := make([]int, len(t.Entries))
	pos := -1
	for i, f := range t.Entries {
		delta := int(f.OffsetDelta())
		if i == 0 {
			pos = delta
		} else {
			pos = pos + delta + 1
		}
		anchors[i] = pos
	}
	return anchors
}

func decodeStackMapTable(r *byteReader) (*StackMapTable, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	entries := make([]StackFrame, count)
	for i := range entries {
		entries[i], err = decodeStackFrame(r)
		if err != nil {
			return nil, err
		}
	}
	return &StackMapTable{Entries: entries}, nil
}

func encodeStackMapTable(t *StackMapTable) ([]byte, error) {
	w := &byteWriter{}
	w.u2(uint16(len(t.Entries)))
	for _, f := range t.Entries {
		if err := encodeStackFrame(w, f); err != nil {
			return nil, err
		}
	}
	return w.b, nil
}
