// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package tickbar draws raw sensor ticks as a 1D bar on the terminal using
// ANSI color codes.
//
// Each value occupies a segment of the line. The filled part of a segment is
// proportional to value/65535 and shaded from green (low) to red (high).
package tickbar

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Opts represents the options available for the bar.
type Opts struct {
	// Width of a segment in characters. Defaults to 32.
	X       int
	Palette *ansi256.Palette
	// W defaults to a color capable stdout.
	W io.Writer

	_ struct{}
}

// Dev renders tick values to the console.
type Dev struct {
	w       io.Writer
	l       int
	palette ansi256.Palette

	buf bytes.Buffer
}

var empty = color.NRGBA{0x20, 0x20, 0x20, 255}

// New returns a Dev that displays at the console.
func New(opts *Opts) *Dev {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.W
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	l := opts.X
	if l <= 0 {
		l = 32
	}
	return &Dev{w: w, l: l, palette: *p}
}

// IsTerminal returns true if f is a terminal the bar can be drawn to.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (d *Dev) String() string {
	return "TickBar"
}

// Halt implements conn.Resource.
//
// It resets the terminal colors so the console is not corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// Draw redraws the current line with one segment per value, each followed by
// its label.
func (d *Dev) Draw(labels []string, values ...uint16) error {
	if len(labels) != len(values) {
		return errors.New("tickbar: labels and values length mismatch")
	}
	// This code is designed to minimize the amount of memory allocated per call.
	d.buf.Reset()
	_, _ = d.buf.WriteString("\r\033[0m")
	for ix, v := range values {
		filled := int(v) * d.l / 0xffff
		c := shade(v)
		for i := 0; i < d.l; i++ {
			if i < filled {
				_, _ = io.WriteString(&d.buf, d.palette.Block(c))
			} else {
				_, _ = io.WriteString(&d.buf, d.palette.Block(empty))
			}
		}
		_, _ = fmt.Fprintf(&d.buf, "\033[0m %s %5d ", labels[ix], v)
	}
	_, err := d.buf.WriteTo(d.w)
	return err
}

// shade returns green for 0 and red for 65535.
func shade(v uint16) color.NRGBA {
	hi := byte(v >> 8)
	return color.NRGBA{R: hi, G: 255 - hi, B: 0, A: 255}
}
