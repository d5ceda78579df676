//    Copyright 2017 Ewout Prangsma
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	terminate "github.com/pulcy/go-terminate"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/binkynet/ADS1015Worker/pkg/environment"
	"github.com/binkynet/ADS1015Worker/pkg/logging"
	"github.com/binkynet/ADS1015Worker/pkg/server"
	"github.com/binkynet/ADS1015Worker/pkg/service"
	"github.com/binkynet/ADS1015Worker/pkg/service/bridge"
	"github.com/binkynet/ADS1015Worker/pkg/service/config"
)

const (
	projectName       = "BinkyNet ADS1015 Worker"
	defaultServerPort = 7130
)

var (
	projectVersion = "dev"
	projectBuild   = "dev"
	maskAny        = errors.WithStack
)

func main() {
	var levelFlag string
	var serverHost string
	var serverPort int
	var bridgeType string
	var configPath string
	var logFile string

	pflag.StringVarP(&levelFlag, "level", "l", "info", "Set log level")
	pflag.StringVarP(&bridgeType, "bridge", "b", "auto", "Type of bridge to use (auto|rpi|virtual)")
	pflag.StringVarP(&configPath, "config", "c", "ads1015.yaml", "Path of the configuration file")
	pflag.StringVar(&serverHost, "host", "0.0.0.0", "Host address the HTTP server will listen on")
	pflag.IntVar(&serverPort, "port", defaultServerPort, "Port the HTTP server will listen on")
	pflag.StringVar(&logFile, "log-file", "", "Path of an additional log file")
	pflag.Parse()

	var logOutput io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			Exitf("Failed to open log file '%s': %v\n", logFile, err)
		}
		defer f.Close()
		logOutput = logging.NewMultiWriter(logOutput, f)
	}
	logger := zerolog.New(logOutput).With().Timestamp().Logger()
	level, err := zerolog.ParseLevel(levelFlag)
	if err != nil {
		Exitf("Invalid log level '%s': %v\n", levelFlag, err)
	}
	logger = logger.Level(level)

	cfg, err := config.LoadAndPrepare(configPath)
	if err != nil {
		Exitf("Failed to load configuration: %v\n", err)
	}

	if bridgeType == "auto" {
		bridgeType = environment.AutoDetectBridgeType(logger, cfg.Bus.Location)
		logger.Info().Str("bridge", bridgeType).Msg("Detected bridge type")
	}
	br, err := newBridge(bridgeType, cfg, logger)
	if err != nil {
		Exitf("Failed to initialize bridge: %v\n", err)
	}

	svc, err := service.NewService(service.Config{
		ProgramVersion: projectVersion,
		File:           *cfg,
	}, service.Dependencies{
		Logger: logger,
		Bridge: br,
	})
	if err != nil {
		Exitf("Failed to initialize Service: %v\n", err)
	}

	httpServer, err := server.New(server.Config{
		Host:     serverHost,
		HTTPPort: serverPort,
	}, logger, svc)
	if err != nil {
		Exitf("Failed to initialize Server: %v\n", err)
	}

	// Prepare to shutdown in a controlled manor
	ctx, cancel := context.WithCancel(context.Background())
	t := terminate.NewTerminator(func(template string, args ...interface{}) {
		logger.Info().Msgf(template, args...)
	}, cancel)
	go t.ListenSignals()

	fmt.Printf("Starting %s (version %s build %s)\n", projectName, projectVersion, projectBuild)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return svc.Run(ctx) })
	g.Go(func() error { return httpServer.Run(ctx) })
	if err := g.Wait(); err != nil {
		Exitf("Service run failed: %#v", err)
	}
}

// newBridge creates the bridge of given type.
func newBridge(bridgeType string, cfg *config.Config, log zerolog.Logger) (bridge.API, error) {
	switch bridgeType {
	case "rpi":
		busCfg := bridge.BusConfig{
			Location:             cfg.Bus.Location,
			SCLPin:               -1,
			TryRecoverFromLockup: cfg.Bus.Recover,
		}
		if cfg.Bus.SCLPin != nil {
			busCfg.SCLPin = *cfg.Bus.SCLPin
		}
		br, err := bridge.NewRaspberryPiBridge(busCfg, log)
		if err != nil {
			return nil, maskAny(err)
		}
		return br, nil
	case "virtual":
		var addresses []uint8
		for _, d := range cfg.Devices {
			addr, err := config.ParseAddress(d.Address)
			if err != nil {
				return nil, maskAny(err)
			}
			addresses = append(addresses, addr)
		}
		return bridge.NewVirtualBridge(addresses...), nil
	default:
		return nil, fmt.Errorf("unknown bridge type '%s' (rpi|virtual)", bridgeType)
	}
}

// Print the given error message and exit with code 1
func Exitf(message string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, message, args...)
	os.Exit(1)
}
