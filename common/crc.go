// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common contains the checksum and word framing shared by the
// Sensirion drivers. Sensirion devices exchange 16-bit big-endian words, each
// followed by a CRC-8 of its two bytes.
package common

import (
	"errors"
	"fmt"
)

const (
	crcPolynomial byte = 0x31
	crcInit       byte = 0xff

	// WordSize is the number of bytes a word occupies on the wire, including
	// its CRC byte.
	WordSize = 3
)

// ErrCRC is wrapped by every error returned for a word whose CRC byte does not
// match its data.
var ErrCRC = errors.New("invalid crc")

// CRC8 calculates the 8-bit CRC of the byte slice parameter and returns the
// calculated value. Polynomial 0x31, initial value 0xff, no reflection and no
// final xor. CRC bytes are used in sensors from TI and Sensirion.
func CRC8(bytes []byte) byte {
	crc := crcInit
	for _, val := range bytes {
		crc ^= val
		for range 8 {
			if (crc & 0x80) == 0 {
				crc <<= 1
			} else {
				crc = (crc << 1) ^ crcPolynomial
			}
		}
	}
	return crc
}

// AppendWords appends each word to dst as two big-endian bytes followed by
// their CRC.
func AppendWords(dst []byte, words ...uint16) []byte {
	for _, w := range words {
		hi, lo := byte(w>>8), byte(w)
		dst = append(dst, hi, lo, CRC8([]byte{hi, lo}))
	}
	return dst
}

// WordError reports the index of the first word of a response whose CRC did
// not validate.
type WordError struct {
	Index int
	Got   byte
	Want  byte
}

func (e *WordError) Error() string {
	return fmt.Sprintf("word %d: %s: got 0x%02x want 0x%02x", e.Index, ErrCRC, e.Got, e.Want)
}

func (e *WordError) Unwrap() error {
	return ErrCRC
}

// DecodeWords validates the CRC of every 3 byte group in b and returns the
// data words. It stops at the first mismatch and returns no words in that
// case. len(b) must be a multiple of WordSize.
func DecodeWords(b []byte) ([]uint16, error) {
	if len(b)%WordSize != 0 {
		return nil, fmt.Errorf("response length %d is not a multiple of %d", len(b), WordSize)
	}
	words := make([]uint16, len(b)/WordSize)
	for ix := range words {
		group := b[ix*WordSize : ix*WordSize+WordSize]
		if crc := CRC8(group[:2]); crc != group[2] {
			return nil, &WordError{Index: ix, Got: group[2], Want: crc}
		}
		words[ix] = uint16(group[0])<<8 | uint16(group[1])
	}
	return words, nil
}
