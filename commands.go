// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package liquidcrystal

// HD44780 instruction set. Each instruction is the opcode OR'ed with the
// flags of its category. Refer to table 6 of the datasheet.
const (
	cmdClearDisplay   byte = 0x01
	cmdReturnHome     byte = 0x02
	cmdEntryModeSet   byte = 0x04
	cmdDisplayControl byte = 0x08
	cmdShift          byte = 0x10
	cmdFunctionSet    byte = 0x20
	cmdSetCGRAMAddr   byte = 0x40
	cmdSetDDRAMAddr   byte = 0x80

	// Flags for cmdEntryModeSet.
	flagEntryLeftToRight byte = 0x02
	flagEntryAutoScroll  byte = 0x01

	// Flags for cmdDisplayControl.
	flagDisplayOn byte = 0x04
	flagCursorOn  byte = 0x02
	flagBlinkOn   byte = 0x01

	// Flags for cmdShift.
	flagShiftDisplay byte = 0x08
	flagShiftRight   byte = 0x04

	// Flags for cmdFunctionSet.
	flagBus8Bit  byte = 0x10
	flagTwoLines byte = 0x08
	flagFont5x10 byte = 0x04
)

// displayControl is the on/off state of the display, the underline cursor
// and the blinking block cursor.
type displayControl struct {
	on     bool
	cursor bool
	blink  bool
}

func (dc displayControl) encode() byte {
	b := cmdDisplayControl
	if dc.on {
		b |= flagDisplayOn
	}
	if dc.cursor {
		b |= flagCursorOn
	}
	if dc.blink {
		b |= flagBlinkOn
	}
	return b
}

// entryMode is the text direction and the automatic display shift applied
// after each data write.
type entryMode struct {
	leftToRight bool
	autoScroll  bool
}

func (em entryMode) encode() byte {
	b := cmdEntryModeSet
	if em.leftToRight {
		b |= flagEntryLeftToRight
	}
	if em.autoScroll {
		b |= flagEntryAutoScroll
	}
	return b
}

// function is the interface width, line count and character font. It is
// frozen by the final function set command of Begin().
type function struct {
	eightBit bool
	twoLines bool
	font5x10 bool
}

func (fn function) encode() byte {
	b := cmdFunctionSet
	if fn.eightBit {
		b |= flagBus8Bit
	}
	if fn.twoLines {
		b |= flagTwoLines
	}
	if fn.font5x10 {
		b |= flagFont5x10
	}
	return b
}

// encodeShift builds a cursor or display shift instruction. The shift takes
// effect once; it is not a mode.
func encodeShift(display, right bool) byte {
	b := cmdShift
	if display {
		b |= flagShiftDisplay
	}
	if right {
		b |= flagShiftRight
	}
	return b
}

// encodeCGRAMAddr returns the instruction addressing the first byte of a
// custom character slot. Slots above 7 wrap.
func encodeCGRAMAddr(slot byte) byte {
	return cmdSetCGRAMAddr | (slot&0x07)<<3
}

// encodeDDRAMAddr returns the instruction addressing a screen position.
func encodeDDRAMAddr(rowOffset, col byte) byte {
	return cmdSetDDRAMAddr | (rowOffset + col)
}
