// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sgp41

import (
	"strconv"
	"time"
)

// Command is one of the operations the sensor implements.
type Command uint8

const (
	ExecuteConditioning Command = iota
	MeasureRawSignals
	ExecuteSelfTest
	TurnHeaterOff
	GetSerialNumber
	// SoftReset is a general call reset. Every device on the bus that
	// understands it will reset.
	SoftReset
)

// Mode is the operating mode the sensor is in, as implied by the last
// command sent to it.
type Mode uint8

const (
	ModeIdle Mode = iota
	ModeConditioning
	ModeMeasuring
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeConditioning:
		return "conditioning"
	case ModeMeasuring:
		return "measuring"
	default:
		return "Mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// Structure to simplify sending commands to the device.
type command struct {
	name string
	// The 16-bit command word.
	opcode uint16
	// Time the sensor needs before the result can be read.
	delay time.Duration
	// Number of words returned, each followed by a CRC. 0, 1, 2 or 3.
	responseWords int
	// True if a successful command moves the sensor to mode.
	setsMode bool
	mode     Mode
}

var commands = [...]command{
	ExecuteConditioning: {
		name:          "ExecuteConditioning",
		opcode:        0x2612,
		delay:         50 * time.Millisecond,
		responseWords: 1,
		setsMode:      true,
		mode:          ModeConditioning,
	},
	MeasureRawSignals: {
		name:          "MeasureRawSignals",
		opcode:        0x2619,
		delay:         50 * time.Millisecond,
		responseWords: 2,
		setsMode:      true,
		mode:          ModeMeasuring,
	},
	ExecuteSelfTest: {
		name:          "ExecuteSelfTest",
		opcode:        0x280e,
		delay:         320 * time.Millisecond,
		responseWords: 1,
		setsMode:      true,
		mode:          ModeIdle,
	},
	TurnHeaterOff: {
		name:     "TurnHeaterOff",
		opcode:   0x3615,
		delay:    time.Second,
		setsMode: true,
		mode:     ModeIdle,
	},
	GetSerialNumber: {
		name:          "GetSerialNumber",
		opcode:        0x3682,
		delay:         time.Second,
		responseWords: 3,
	},
	SoftReset: {
		name:     "SoftReset",
		opcode:   0x0006,
		delay:    time.Second,
		setsMode: true,
		mode:     ModeIdle,
	},
}

// Resolve returns the command word and the duration to wait before reading
// the result. Unknown commands return 0, 0.
func (c Command) Resolve() (opcode uint16, delay time.Duration) {
	if int(c) >= len(commands) {
		return 0, 0
	}
	return commands[c].opcode, commands[c].delay
}

func (c Command) responseWords() int {
	if int(c) >= len(commands) {
		return 0
	}
	return commands[c].responseWords
}

func (c Command) String() string {
	if int(c) >= len(commands) {
		return "Command(" + strconv.Itoa(int(c)) + ")"
	}
	return commands[c].name
}
