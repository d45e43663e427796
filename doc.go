// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sgpdevices is a container for the Sensirion SGP41 gas sensor driver
// and its supporting packages.
//
// The driver lives in sgp41, the CRC and word framing shared with other
// Sensirion devices in common, and cmd/sgp41 is a command line tool that
// reads the sensor and exports its signals to Prometheus.
package sgpdevices
