/*
 * jacovm - A Java virtual machine core
 * The stack-shuffling family (pop/pop2/dup-star/swap), grounded on
 * verifier/dispatch.go's stepPop2/stepDup-star/stepSwap, which are written
 * against a Frame.PopAny() that hands back a value plus its category
 * count. frames.Frame has no such primitive -- category-2 values are
 * just two raw OpStack slots, the second a Category2Placeholder -- so
 * popUnit/pushUnit reconstruct the same "one JVMS computational unit"
 * view on top of PopSlot/PushSlot.
 */
package jvm

import "jacovm/frames"

// popUnit pops one computational unit (JVMS §2.6.2): a category-2 value
// occupies the top two slots (value, then its Category2Placeholder);
// a category-1 value occupies just the top slot.
func popUnit(f *frames.Frame) (interface{}, int, error) {
	top, err := f.PopSlot()
	if err != nil {
		return nil, 0, err
	}
	if _, ok := top.(frames.Category2Placeholder); ok {
		v, err := f.PopSlot()
		if err != nil {
			return nil, 0, err
		}
		return v, 2, nil
	}
	return top, 1, nil
}

func pushUnit(f *frames.Frame, v interface{}, category int) {
	f.PushSlot(v)
	if category == 2 {
		f.PushSlot(frames.Category2Placeholder{})
	}
}

func stepPop(f *frames.Frame) error {
	_, _, err := popUnit(f)
	return err
}

func stepPop2(f *frames.Frame) error {
	_, cat, err := popUnit(f)
	if err != nil {
		return err
	}
	if cat == 1 {
		if _, _, err := popUnit(f); err != nil {
			return err
		}
	}
	return nil
}

func stepDup(f *frames.Frame) error {
	v, cat, err := popUnit(f)
	if err != nil {
		return err
	}
	pushUnit(f, v, cat)
	pushUnit(f, v, cat)
	return nil
}

func stepDupX1(f *frames.Frame) error {
	v1, cat1, err := popUnit(f)
	if err != nil {
		return err
	}
	v2, cat2, err := popUnit(f)
	if err != nil {
		return err
	}
	pushUnit(f, v1, cat1)
	pushUnit(f, v2, cat2)
	pushUnit(f, v1, cat1)
	return nil
}

func stepDupX2(f *frames.Frame) error {
	v1, cat1, err := popUnit(f)
	if err != nil {
		return err
	}
	v2, cat2, err := popUnit(f)
	if err != nil {
		return err
	}
	if cat2 == 2 {
		pushUnit(f, v1, cat1)
		pushUnit(f, v2, cat2)
		pushUnit(f, v1, cat1)
		return nil
	}
	v3, cat3, err := popUnit(f)
	if err != nil {
		return err
	}
	pushUnit(f, v1, cat1)
	pushUnit(f, v3, cat3)
	pushUnit(f, v2, cat2)
	pushUnit(f, v1, cat1)
	return nil
}

func stepDup2(f *frames.Frame) error {
	v1, cat1, err := popUnit(f)
	if err != nil {
		return err
	}
	if cat1 == 2 {
		pushUnit(f, v1, cat1)
		pushUnit(f, v1, cat1)
		return nil
	}
	v2, cat2, err := popUnit(f)
	if err != nil {
		return err
	}
	pushUnit(f, v2, cat2)
	pushUnit(f, v1, cat1)
	pushUnit(f, v2, cat2)
	pushUnit(f, v1, cat1)
	return nil
}

func stepDup2X1(f *frames.Frame) error {
	v1, cat1, err := popUnit(f)
	if err != nil {
		return err
	}
	v2, cat2, err := popUnit(f)
	if err != nil {
		return err
	}
	if cat1 == 2 {
		pushUnit(f, v1, cat1)
		pushUnit(f, v2, cat2)
		pushUnit(f, v1, cat1)
		return nil
	}
	v3, cat3, err := popUnit(f)
	if err != nil {
		return err
	}
	pushUnit(f, v2, cat2)
	pushUnit(f, v1, cat1)
	pushUnit(f, v3, cat3)
	pushUnit(f, v2, cat2)
	pushUnit(f, v1, cat1)
	return nil
}

func stepDup2X2(f *frames.Frame) error {
	v1, cat1, err := popUnit(f)
	if err != nil {
		return err
	}
	v2, cat2, err := popUnit(f)
	if err != nil {
		return err
	}
	if cat1 == 2 && cat2 == 2 {
		pushUnit(f, v1, cat1)
		pushUnit(f, v2, cat2)
		pushUnit(f, v1, cat1)
		return nil
	}
	v3, cat3, err := popUnit(f)
	if err != nil {
		return err
	}
	if cat1 == 2 {
		pushUnit(f, v1, cat1)
		pushUnit(f, v3, cat3)
		pushUnit(f, v2, cat2)
		pushUnit(f, v1, cat1)
		return nil
	}
	if cat3 == 2 {
		pushUnit(f, v2, cat2)
		pushUnit(f, v1, cat1)
		pushUnit(f, v3, cat3)
		pushUnit(f, v2, cat2)
		pushUnit(f, v1, cat1)
		return nil
	}
	v4, cat4, err := popUnit(f)
	if err != nil {
		return err
	}
	pushUnit(f, v2, cat2)
	pushUnit(f, v1, cat1)
	pushUnit(f, v4, cat4)
	pushUnit(f, v3, cat3)
	pushUnit(f, v2, cat2)
	pushUnit(f, v1, cat1)
	return nil
}

func stepSwap(f *frames.Frame) error {
	v1, cat1, err := popUnit(f)
	if err != nil {
		return err
	}
	v2, cat2, err := popUnit(f)
	if err != nil {
		return err
	}
	pushUnit(f, v1, cat1)
	pushUnit(f, v2, cat2)
	return nil
}
