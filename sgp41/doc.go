// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sgp41 provides a driver for the Sensirion SGP41 VOC and NOx sensor.
//
// The driver exposes the raw signals of the two MOX pixels as ticks. It does
// not implement the Sensirion gas index algorithm; feed the ticks to it if you
// need VOC/NOx index values.
//
// # Operation
//
// After power-up or SoftReset the sensor is idle. ExecuteConditioning should
// be called once per second for the first 10 seconds (never longer) before
// switching to MeasureRaw or MeasureRawCompensated, which should also be
// called at 1 Hz. ExecuteSelfTest and TurnHeaterOff return the sensor to
// idle.
//
// Every command has a fixed settle time that must elapse between writing the
// command and reading its result. The driver always waits for it, so each
// call blocks for between 50ms and 1s.
//
// # Datasheet
//
// https://sensirion.com/media/documents/5FE8673C/61E96F50/Sensirion_Gas_Sensors_Datasheet_SGP41.pdf
package sgp41
