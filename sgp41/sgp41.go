// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sgp41

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/GermanBionicSystems/sgpdevices/common"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

const (
	// The device only supports this i2c address.
	SensorAddress uint16 = 0x59

	// Default compensation ticks, 50 %RH and 25°C.
	defaultHumidityTicks    uint16 = 0x8000
	defaultTemperatureTicks uint16 = 0x6666

	tickMax = 65535

	minHumidity    = 0
	maxHumidity    = 100
	minTemperature = -45
	maxTemperature = 130
	// Width of the temperature range in °C.
	temperatureSpan = maxTemperature - minTemperature
)

// Delayer blocks the caller for the settle time of a command.
type Delayer interface {
	Delay(d time.Duration)
}

// DelayFunc adapts a function to the Delayer interface.
type DelayFunc func(time.Duration)

// Delay calls f(d).
func (f DelayFunc) Delay(d time.Duration) {
	f(d)
}

// Opts holds the configuration options for the device.
type Opts struct {
	// Delay waits for the settle time of each command. Leave nil to use
	// time.Sleep.
	Delay Delayer
	// TemperatureOffset is the initial temperature offset in °C applied to
	// compensated measurements. Useful when heat sources on the PCB (battery
	// charger, motor, etc) warm the sensor.
	TemperatureOffset int8
}

// DefaultOpts holds the default configuration options for the device.
var DefaultOpts = Opts{}

// RawSignals is a measurement of both pixels in ticks.
type RawSignals struct {
	VOC uint16
	NOx uint16
}

func (r RawSignals) String() string {
	return "VOC: " + strconv.Itoa(int(r.VOC)) + " ticks NOx: " + strconv.Itoa(int(r.NOx)) + " ticks"
}

// SelfTestResult is the outcome of ExecuteSelfTest. Bit 0 is set when the VOC
// pixel failed, bit 1 when the NOx pixel failed.
type SelfTestResult uint8

const (
	SelfTestPassed    SelfTestResult = 0
	SelfTestVOCFailed SelfTestResult = 1 << 0
	SelfTestNOxFailed SelfTestResult = 1 << 1
	SelfTestAllFailed                = SelfTestVOCFailed | SelfTestNOxFailed

	selfTestMask = 0b11
)

// Passed returns true if both pixels passed the self-test.
func (r SelfTestResult) Passed() bool {
	return r == SelfTestPassed
}

// Err returns nil if the self-test passed, a *SelfTestError otherwise.
func (r SelfTestResult) Err() error {
	if r.Passed() {
		return nil
	}
	return &SelfTestError{Result: r}
}

func (r SelfTestResult) String() string {
	switch r {
	case SelfTestPassed:
		return "passed"
	case SelfTestVOCFailed:
		return "VOC pixel failed"
	case SelfTestNOxFailed:
		return "NOx pixel failed"
	case SelfTestAllFailed:
		return "VOC and NOx pixels failed"
	default:
		return "undefined (0x" + strconv.FormatUint(uint64(r), 16) + ")"
	}
}

// Dev is a handle to an SGP41 sensor.
type Dev struct {
	d     conn.Conn
	delay Delayer

	mu sync.Mutex
	// Temperature offset in °C, accumulated by SetTemperatureOffset.
	offset int16
	mode   Mode
}

// New returns a Dev communicating over c, which must already be addressed to
// the sensor. opts can be nil.
func New(c conn.Conn, opts *Opts) *Dev {
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Dev{d: c, delay: opts.Delay, offset: int16(opts.TemperatureOffset)}
	if d.delay == nil {
		d.delay = DelayFunc(time.Sleep)
	}
	return d
}

// NewI2C returns a Dev that communicates over I²C with the sensor at
// SensorAddress. No command is sent. opts can be nil.
func NewI2C(b i2c.Bus, opts *Opts) (*Dev, error) {
	if b == nil {
		return nil, errors.New("sgp41: nil bus")
	}
	return New(&i2c.Dev{Bus: b, Addr: SensorAddress}, opts), nil
}

// ExecuteConditioning starts the conditioning. The VOC pixel is operated at
// the default temperature and humidity (25°C, 50 %RH) as MeasureRaw does,
// while the NOx pixel is operated at a different temperature for
// conditioning. Only the raw VOC signal is returned.
func (d *Dev) ExecuteConditioning() (uint16, error) {
	words, err := d.sendCommand(ExecuteConditioning, defaultHumidityTicks, defaultTemperatureTicks)
	if err != nil {
		return 0, err
	}
	return words[0], nil
}

// MeasureRaw starts or continues a measurement at the default compensation
// values (25°C, 50 %RH) and returns the raw signals.
func (d *Dev) MeasureRaw() (RawSignals, error) {
	return d.measure(defaultHumidityTicks, defaultTemperatureTicks)
}

// MeasureRawCompensated is MeasureRaw using the supplied relative humidity in
// percent (0..100) and temperature in °C (-45..130) for compensation. The
// temperature offset is added to temperature.
func (d *Dev) MeasureRawCompensated(humidity uint8, temperature int16) (RawSignals, error) {
	if humidity > maxHumidity {
		return RawSignals{}, &RangeError{Param: "humidity", Value: humidity, Min: minHumidity, Max: maxHumidity}
	}
	if temperature < minTemperature || temperature > maxTemperature {
		return RawSignals{}, &RangeError{Param: "temperature", Value: temperature, Min: minTemperature, Max: maxTemperature}
	}
	return d.measure(humidityToTicks(humidity), temperatureToTicks(int(temperature), int(d.TemperatureOffset())))
}

// MeasureRawEnv is MeasureRawCompensated taking the humidity and temperature
// from e, for example from a physic.SenseEnv device. Pressure is ignored.
func (d *Dev) MeasureRawEnv(e *physic.Env) (RawSignals, error) {
	const (
		minRH = minHumidity * physic.PercentRH
		maxRH = maxHumidity * physic.PercentRH
		minT  = minTemperature*physic.Celsius + physic.ZeroCelsius
		maxT  = maxTemperature*physic.Celsius + physic.ZeroCelsius
	)
	if e.Humidity < minRH || e.Humidity > maxRH {
		return RawSignals{}, &RangeError{Param: "humidity", Value: e.Humidity, Min: minRH, Max: maxRH}
	}
	if e.Temperature < minT || e.Temperature > maxT {
		return RawSignals{}, &RangeError{Param: "temperature", Value: e.Temperature, Min: minT, Max: maxT}
	}
	rh := uint16(int64(e.Humidity) * tickMax / int64(maxRH))

	t := e.Temperature - minT + physic.Temperature(d.TemperatureOffset())*physic.Celsius
	if t < 0 {
		t = 0
	} else if t > temperatureSpan*physic.Celsius {
		t = temperatureSpan * physic.Celsius
	}
	return d.measure(rh, uint16(int64(t)*tickMax/int64(temperatureSpan*physic.Celsius)))
}

// ExecuteSelfTest runs the built-in self-test checking the integrity of both
// hotplates and the MOX material. A test that ran but failed is not an error;
// check the result, or call its Err method.
func (d *Dev) ExecuteSelfTest() (SelfTestResult, error) {
	words, err := d.sendCommand(ExecuteSelfTest)
	if err != nil {
		return SelfTestPassed, err
	}
	// Only the two least significant bits are defined.
	return SelfTestResult(words[0] & selfTestMask), nil
}

// TurnHeaterOff turns the hotplate off and stops the measurement. The sensor
// enters idle mode.
func (d *Dev) TurnHeaterOff() error {
	_, err := d.sendCommand(TurnHeaterOff)
	return err
}

// GetSerialNumber returns the 48 bit unique serial number of the device.
func (d *Dev) GetSerialNumber() (uint64, error) {
	words, err := d.sendCommand(GetSerialNumber)
	if err != nil {
		return 0, err
	}
	return uint64(words[0])<<32 | uint64(words[1])<<16 | uint64(words[2]), nil
}

// SoftReset resets the sensor, which then restarts in idle mode.
//
// This is a general call: every device on the bus that implements it resets,
// not just the SGP41.
func (d *Dev) SoftReset() error {
	_, err := d.sendCommand(SoftReset)
	return err
}

// SetTemperatureOffset adds delta °C to the temperature offset used by
// MeasureRawCompensated and MeasureRawEnv. Offsets accumulate over calls and
// are not bounded.
func (d *Dev) SetTemperatureOffset(delta int8) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.offset += int16(delta)
}

// TemperatureOffset returns the accumulated temperature offset in °C.
func (d *Dev) TemperatureOffset() int16 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.offset
}

// Mode returns the operating mode implied by the last successful command.
func (d *Dev) Mode() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

// Halt turns the heater off. Implements conn.Resource.
func (d *Dev) Halt() error {
	return d.TurnHeaterOff()
}

func (d *Dev) String() string {
	return fmt.Sprintf("sgp41: %s", d.d.String())
}

func (d *Dev) measure(humidityTicks, temperatureTicks uint16) (RawSignals, error) {
	words, err := d.sendCommand(MeasureRawSignals, humidityTicks, temperatureTicks)
	if err != nil {
		return RawSignals{}, err
	}
	return RawSignals{VOC: words[0], NOx: words[1]}, nil
}

// All commands to the sensor go through this function. The command word and
// args are written, the settle time elapses, and then the response, if any, is
// read and its CRCs verified.
func (d *Dev) sendCommand(cmd Command, args ...uint16) ([]uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	opcode, delay := cmd.Resolve()
	w := common.AppendWords([]byte{byte(opcode >> 8), byte(opcode)}, args...)
	if err := d.d.Tx(w, nil); err != nil {
		return nil, &TransportError{Cmd: cmd, Op: "write", Err: err}
	}
	d.delay.Delay(delay)

	var words []uint16
	if n := cmd.responseWords(); n > 0 {
		r := make([]byte, n*common.WordSize)
		if err := d.d.Tx(nil, r); err != nil {
			return nil, &TransportError{Cmd: cmd, Op: "read", Err: err}
		}
		var err error
		if words, err = common.DecodeWords(r); err != nil {
			var we *common.WordError
			if errors.As(err, &we) {
				return nil, &ChecksumError{Cmd: cmd, Word: we.Index, Got: we.Got, Want: we.Want}
			}
			return nil, fmt.Errorf("sgp41: %s: %w", cmd, err)
		}
	}

	if int(cmd) < len(commands) && commands[cmd].setsMode {
		d.mode = commands[cmd].mode
	}
	return words, nil
}

// humidityToTicks converts a relative humidity in percent to ticks.
func humidityToTicks(humidity uint8) uint16 {
	return uint16(int(humidity) * tickMax / maxHumidity)
}

// temperatureToTicks converts a temperature in °C plus offset to ticks. The
// sum is clamped to the range the sensor accepts.
func temperatureToTicks(temperature, offset int) uint16 {
	t := temperature - minTemperature + offset
	if t < 0 {
		t = 0
	} else if t > temperatureSpan {
		t = temperatureSpan
	}
	return uint16(t * tickMax / temperatureSpan)
}

var _ conn.Resource = &Dev{}
var _ fmt.Stringer = &Dev{}
