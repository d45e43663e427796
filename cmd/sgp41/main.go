// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// sgp41 reads the raw VOC and NOx signals of an SGP41 sensor, logs them and
// exports them to Prometheus.
//
// On start it resets the sensor, reads its serial number, runs the self-test
// and conditions the NOx pixel before polling measurements.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/sgpdevices/sgp41"
	"github.com/GermanBionicSystems/sgpdevices/tickbar"
)

// CLI args
var (
	busName      = flag.String("bus", "", "I²C bus to use, empty for the first one available")
	listenAddr   = flag.String("listen-address", ":9141", "The address to listen on for HTTP requests. Empty disables the metrics endpoint.")
	readInterval = flag.Duration("interval", time.Second, "time interval between measurements")
	conditioning = flag.Duration("conditioning", 10*time.Second, "NOx conditioning duration, at most 10s")
	humidity     = flag.Int("humidity", -1, "relative humidity in % used for compensation, -1 uses the sensor default")
	temperature  = flag.Int("temperature", 25, "temperature in °C used for compensation, ignored when -humidity is -1")
	tempOffset   = flag.Int("temperature-offset", 0, "temperature offset in °C added to -temperature")
	bar          = flag.Bool("bar", false, "draw the ticks as a bar when stdout is a terminal")
	logLevel     = flag.String("log-level", "info", "log level")
)

// metrics to expose to Prometheus
var (
	gaugeVOC   = newGauge("sgp41_voc_ticks", "Raw VOC signal (units: ticks)")
	gaugeNOx   = newGauge("sgp41_nox_ticks", "Raw NOx signal (units: ticks)")
	readErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sgp41_read_errors_total",
			Help: "Number of failed measurements",
		},
		[]string{"serial_number"},
	)
)

func newGauge(name string, help string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: help,
		},
		[]string{"serial_number"},
	)
}

func init() {
	prometheus.MustRegister(gaugeVOC)
	prometheus.MustRegister(gaugeNOx)
	prometheus.MustRegister(readErrors)

	//logging
	formatter := &log.TextFormatter{
		FullTimestamp: true,
	}
	log.SetFormatter(formatter)
}

func main() {
	flag.Parse()
	if lvl, err := log.ParseLevel(*logLevel); err == nil {
		log.SetLevel(lvl)
	} else {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *listenAddr != "" {
		go func() {
			// Expose the registered metrics via HTTP.
			http.Handle("/metrics", promhttp.HandlerFor(
				prometheus.DefaultGatherer,
				promhttp.HandlerOpts{
					// Opt into OpenMetrics to support exemplars.
					EnableOpenMetrics: true,
				},
			))
			log.Panic(http.ListenAndServe(*listenAddr, nil))
		}()
	}

	if err := mainImpl(ctx); err != nil {
		log.Fatal(err)
	}
}

func mainImpl(ctx context.Context) error {
	if _, err := host.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize host")
	}
	b, err := i2creg.Open(*busName)
	if err != nil {
		return errors.Wrap(err, "failed to open i2c bus")
	}
	defer b.Close()

	dev, err := sgp41.NewI2C(b, &sgp41.Opts{TemperatureOffset: int8(*tempOffset)})
	if err != nil {
		return err
	}
	defer func() {
		if err := dev.Halt(); err != nil {
			log.Errorf("failed to turn the heater off: %s", err)
		}
	}()

	if err := dev.SoftReset(); err != nil {
		return errors.Wrap(err, "soft reset failed")
	}
	sn, err := dev.GetSerialNumber()
	if err != nil {
		return errors.Wrap(err, "couldn't read serial number")
	}
	serialNr := strconv.FormatUint(sn, 16)
	log.Printf("Found: %s serialNr %s", dev, serialNr)

	result, err := dev.ExecuteSelfTest()
	if err != nil {
		return errors.Wrap(err, "couldn't run self-test")
	}
	if err := result.Err(); err != nil {
		return err
	}
	log.Printf("Self-test %s", result)

	var tb *tickbar.Dev
	if *bar && tickbar.IsTerminal(os.Stdout) {
		tb = tickbar.New(&tickbar.Opts{})
		defer func() { _ = tb.Halt() }()
	}

	ticker := time.NewTicker(*readInterval)
	defer ticker.Stop()

	log.Printf("Conditioning for %s", *conditioning)
	end := time.Now().Add(*conditioning)
	for time.Now().Before(end) {
		voc, err := dev.ExecuteConditioning()
		if err != nil {
			return errors.Wrap(err, "conditioning failed")
		}
		log.Debugf("Conditioning: VOC ticks %d", voc)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Second):
		}
	}

	log.Print("Start measurement")
	for {
		sig, err := measure(dev)
		if err != nil {
			readErrors.WithLabelValues(serialNr).Inc()
			log.Errorf("failed to read from sensor (serialNr %s): %s", serialNr, err)
		} else {
			gaugeVOC.WithLabelValues(serialNr).Set(float64(sig.VOC))
			gaugeNOx.WithLabelValues(serialNr).Set(float64(sig.NOx))
			if tb != nil {
				if err := tb.Draw([]string{"VOC", "NOx"}, sig.VOC, sig.NOx); err != nil {
					log.Errorf("failed to draw: %s", err)
				}
			} else {
				log.WithFields(log.Fields{"voc": sig.VOC, "nox": sig.NOx}).Info("Received")
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func measure(dev *sgp41.Dev) (sgp41.RawSignals, error) {
	if *humidity < 0 {
		return dev.MeasureRaw()
	}
	if *humidity > 100 || *temperature < -45 || *temperature > 130 {
		return sgp41.RawSignals{}, errors.Errorf("compensation values %d%%rH %d°C out of range", *humidity, *temperature)
	}
	return dev.MeasureRawCompensated(uint8(*humidity), int16(*temperature))
}
