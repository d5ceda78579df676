// Copyright 2020 Ewout Prangsma
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Author Ewout Prangsma
//

package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/binkynet/ADS1015Worker/pkg/service/bridge"
	"github.com/binkynet/ADS1015Worker/pkg/service/config"
	"github.com/binkynet/ADS1015Worker/pkg/service/devices"
)

type Service interface {
	// Run the worker until the given context is cancelled.
	Run(ctx context.Context) error
	// DeviceByID returns the configured device with given ID.
	DeviceByID(id string) (devices.ADC, bool)
	// Get a list of configured device IDs
	GetConfiguredDeviceIDs() []string
	// Get a list of unconfigured device IDs
	GetUnconfiguredDeviceIDs() []string
	// Probe the bus for device addresses
	DetectAddresses() []string
	// StartedAt returns the time the service was created.
	StartedAt() time.Time
}

type Config struct {
	ProgramVersion string
	// Loaded, validated & normalized configuration file
	File config.Config
}

type Dependencies struct {
	Logger zerolog.Logger
	Bridge bridge.API
}

type service struct {
	Config
	Dependencies

	startedAt time.Time
	devices   devices.Service
}

// NewService creates a Service instance and returns it.
func NewService(conf Config, deps Dependencies) (Service, error) {
	deps.Logger = deps.Logger.With().Str("component", "service").Logger()
	bus, err := deps.Bridge.I2CBus()
	if err != nil {
		return nil, errors.Wrap(err, "Failed to open I2C bus")
	}
	devService, err := devices.NewService(conf.File.Devices, deps.Bridge, bus, deps.Logger)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create devices")
	}
	return &service{
		Config:       conf,
		Dependencies: deps,
		startedAt:    time.Now(),
		devices:      devService,
	}, nil
}

// Run configures all devices, then runs the activity indicator
// and the samplers until the given context is canceled.
// On exit all devices are brought back to their default state.
func (s *service) Run(ctx context.Context) error {
	log := s.Logger
	// Closing the bridge closes the bus
	defer s.Bridge.Close()

	log.Info().Str("version", s.ProgramVersion).Int("devices", len(s.File.Devices)).Msg("Starting service")
	s.Bridge.BlinkGreenLED(time.Millisecond * 250)
	if err := s.devices.Configure(ctx); err != nil {
		// Continue with the devices that have been configured
		log.Warn().Err(err).Msg("Failed to configure all devices")
	}
	s.Bridge.SetGreenLED(true)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.devices.Run(ctx) })
	for _, c := range s.File.Devices {
		if c.Sample == nil {
			continue
		}
		dev, found := s.devices.DeviceByID(c.ID)
		if !found {
			log.Warn().Str("device-id", c.ID).Msg("Not sampling unconfigured device")
			continue
		}
		smp := newSampler(log, dev, *c.Sample)
		g.Go(func() error { return smp.Run(ctx) })
	}
	err := g.Wait()

	log.Info().Msg("Closing devices")
	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	if cerr := s.devices.Close(closeCtx); cerr != nil {
		log.Warn().Err(cerr).Msg("Failed to close all devices")
	}
	s.Bridge.SetGreenLED(false)
	return err
}

// DeviceByID returns the configured device with given ID.
func (s *service) DeviceByID(id string) (devices.ADC, bool) {
	return s.devices.DeviceByID(id)
}

// Get a list of configured device IDs
func (s *service) GetConfiguredDeviceIDs() []string {
	return s.devices.GetConfiguredDeviceIDs()
}

// Get a list of unconfigured device IDs
func (s *service) GetUnconfiguredDeviceIDs() []string {
	return s.devices.GetUnconfiguredDeviceIDs()
}

// Probe the bus for device addresses
func (s *service) DetectAddresses() []string {
	return s.devices.DetectAddresses()
}

// StartedAt returns the time the service was created.
func (s *service) StartedAt() time.Time {
	return s.startedAt
}
