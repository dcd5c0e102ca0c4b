package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/jd3nn1s/gp2ffb"
	"github.com/jd3nn1s/gp2ffb/config"
	"github.com/jd3nn1s/gp2ffb/forwarder"
	"github.com/jd3nn1s/gp2ffb/logring"
	"github.com/jd3nn1s/gp2ffb/sharedmem"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"io"
	"os"
	"os/signal"
	"syscall"
)

var configFile = flag.String("config", config.DefaultFileName, "configuration file")
var testMode = flag.Bool("testmode", false, "generate test telemetry instead of reading the game")
var printTelemetry = flag.Bool("print-telemetry", false, "show live telemetry on stdout")
var debug = flag.Bool("debug", false, "log every force update")

const logFileName = "log.txt"

func main() {
	flag.Parse()

	logs := logring.New(logring.DefaultCapacity)
	logFile, err := setupLogging(logs)
	if err != nil {
		fatal(err)
	}
	defer logFile.Close()

	if err := run(logs); err != nil {
		fatal(err)
	}
}

func setupLogging(logs *logring.Ring) (*os.File, error) {
	log.SetLevel(log.InfoLevel)
	if *debug {
		log.SetLevel(log.DebugLevel)
	}
	file, err := os.Create(logFileName)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create %s", logFileName)
	}
	if *printTelemetry {
		// the display owns the terminal and shows the latest line itself
		log.SetOutput(file)
	} else {
		log.SetOutput(io.MultiWriter(os.Stderr, file))
	}
	log.AddHook(logring.NewHook(logs))
	return file, nil
}

func run(logs *logring.Ring) error {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var source gp2ffb.TelemetrySource
	if *testMode {
		log.Info("test mode, generating telemetry")
		source = gp2ffb.NewTestSource()
	} else {
		reader := sharedmem.NewReader(sharedmem.DefaultName)
		defer reader.Close()
		source = reader
	}

	var actuator gp2ffb.Actuator
	switch cfg.Device {
	case config.DeviceCAN:
		wheel := gp2ffb.NewCANWheelActuator(cfg.CAN.Interface)
		go gp2ffb.RunCANWheel(ctx, wheel)
		actuator = wheel
	case config.DeviceLog:
		actuator = gp2ffb.LogActuator{}
	default:
		return errors.Errorf("unknown device %q", cfg.Device)
	}
	log.WithFields(log.Fields{
		"device": cfg.Device,
		"game":   cfg.Game,
		"limit":  cfg.Limit,
		"invert": cfg.Invert,
	}).Info("starting force feedback")

	if cfg.Metrics.Enabled {
		shutdown, err := setupMetrics(cfg.Metrics)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	ffb, err := gp2ffb.NewFFB(cfg, source, actuator)
	if err != nil {
		return err
	}

	if cfg.UDP.Enabled {
		fwder, err := forwarder.NewUDPForwarder(cfg.UDP)
		if err != nil {
			return errors.Wrap(err, "unable to load UDP forwarder")
		}
		defer fwder.Close()
		go fwder.Start(ctx)
		ffb.AddForwarder(fwder)
	}
	if cfg.Influx.Enabled {
		fwder, err := forwarder.NewInfluxForwarder(cfg.Influx)
		if err != nil {
			return errors.Wrap(err, "unable to load influx forwarder")
		}
		influxDone := make(chan struct{})
		go func() {
			_ = fwder.Start(ctx)
			close(influxDone)
		}()
		// the last batch is flushed once ctx is done
		defer func() {
			cancel()
			<-influxDone
		}()
		ffb.AddForwarder(fwder)
	}

	if *printTelemetry {
		go gp2ffb.NewDisplay(ffb, logs, os.Stdout).Run(ctx)
	}

	return ffb.Run(ctx)
}

func setupMetrics(cfg config.MetricsConfig) (func(), error) {
	file, err := os.Create(cfg.File)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create %s", cfg.File)
	}
	mp, err := gp2ffb.NewMeterProvider(file, cfg.Interval)
	if err != nil {
		file.Close()
		return nil, err
	}
	otel.SetMeterProvider(mp)
	log.WithFields(log.Fields{
		"file":     cfg.File,
		"interval": cfg.Interval,
	}).Info("writing metrics")
	return func() {
		if err := mp.Shutdown(context.Background()); err != nil {
			log.WithField("err", err).Warn("unable to flush metrics")
		}
		file.Close()
	}, nil
}

func fatal(err error) {
	log.WithField("err", err).Error("fatal error")
	fmt.Println("fatal:", err)
	os.Exit(1)
}
