// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sgp41

import (
	"fmt"
	"strings"

	"github.com/GermanBionicSystems/sgpdevices/common"
)

// TransportError is returned when the bus write or read of a command failed.
type TransportError struct {
	Cmd Command
	// "write" or "read".
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("sgp41: %s %s: %v", e.Cmd, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ChecksumError is returned when a word read from the sensor does not match
// its CRC byte. No part of the response is used in that case.
type ChecksumError struct {
	Cmd Command
	// Index of the word in the response.
	Word int
	Got  byte
	Want byte
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("sgp41: %s: word %d: invalid crc 0x%02x, expected 0x%02x", e.Cmd, e.Word, e.Got, e.Want)
}

// Unwrap permits errors.Is(err, common.ErrCRC).
func (e *ChecksumError) Unwrap() error {
	return common.ErrCRC
}

// RangeError is returned when a compensation value is outside of the range
// the sensor accepts. Nothing is sent to the sensor in that case.
type RangeError struct {
	Param string
	Value any
	Min   any
	Max   any
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("sgp41: %s %v out of range [%v, %v]", e.Param, e.Value, e.Min, e.Max)
}

// SelfTestError describes a self-test the sensor completed but failed.
type SelfTestError struct {
	Result SelfTestResult
}

func (e *SelfTestError) Error() string {
	var failed []string
	if e.Result&SelfTestVOCFailed != 0 {
		failed = append(failed, "VOC pixel")
	}
	if e.Result&SelfTestNOxFailed != 0 {
		failed = append(failed, "NOx pixel")
	}
	if len(failed) == 0 {
		return fmt.Sprintf("sgp41: self-test failed: undefined result 0x%x", uint8(e.Result))
	}
	return "sgp41: self-test failed: " + strings.Join(failed, " and ")
}
