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

package devices

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	aerr "github.com/ewoutp/go-aggregate-error"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/binkynet/ADS1015Worker/pkg/service/bridge"
	"github.com/binkynet/ADS1015Worker/pkg/service/config"
)

const (
	// How often the activity indicator checks for device changes
	activityCheckInterval = time.Second / 10
	// Blink period of the red led while devices are changing
	activityBlinkDelay = time.Second / 10
	// Number of quiet checks before the red led is turned off
	activityQuietChecks = 20
)

// Service contains the API that is exposed by the device service.
type Service interface {
	// DeviceByID returns the configured device with given ID.
	DeviceByID(id string) (ADC, bool)
	// Configure is called once to put all devices in the desired state.
	Configure(ctx context.Context) error
	// Run the service until the given context is canceled.
	Run(ctx context.Context) error
	// Close brings all configured devices back to their power-on state.
	Close(context.Context) error
	GetConfiguredDeviceIDs() []string
	GetUnconfiguredDeviceIDs() []string
	// DetectAddresses probes the bus for ADS1015 addresses.
	DetectAddresses() []string
}

type service struct {
	log  zerolog.Logger
	bus  bridge.I2CBus
	bAPI bridge.API
	// All devices, ordered by bus address
	devices []ADC
	changes atomic.Uint32

	mutex      sync.Mutex
	configured map[string]ADC
}

// NewService creates an ADS1015 device for every given configuration.
func NewService(configs []config.DeviceConfig, bAPI bridge.API, bus bridge.I2CBus, log zerolog.Logger) (Service, error) {
	s := &service{
		log:        log.With().Str("component", "device-service").Logger(),
		bus:        bus,
		bAPI:       bAPI,
		configured: make(map[string]ADC),
	}
	if dup := lo.FindDuplicates(lo.Map(configs, func(c config.DeviceConfig, _ int) string { return c.ID })); len(dup) > 0 {
		return nil, fmt.Errorf("duplicate device ID '%s'", dup[0])
	}
	for _, c := range configs {
		dev, err := newADS1015(s.log, c, bus, func() { s.changes.Add(1) })
		if err != nil {
			return nil, err
		}
		s.devices = append(s.devices, dev)
	}
	sort.Slice(s.devices, func(i, j int) bool { return s.devices[i].Address() < s.devices[j].Address() })
	devicesCreatedTotal.Set(float64(len(s.devices)))
	return s, nil
}

// DeviceByID returns the configured device with given ID.
func (s *service) DeviceByID(id string) (ADC, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	dev, ok := s.configured[id]
	return dev, ok
}

// Configure writes the configuration of all devices, in address order.
// Devices that fail stay unconfigured; all failures are returned together.
func (s *service) Configure(ctx context.Context) error {
	var ae aerr.AggregateError
	configured := make(map[string]ADC, len(s.devices))
	for _, d := range s.devices {
		log := s.log.With().Str("device-id", d.ID()).Uint8("address", d.Address()).Logger()
		if err := d.Configure(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to configure device")
			ae.Add(err)
			continue
		}
		configured[d.ID()] = d
		log.Debug().Msg("Configured device")
	}
	s.mutex.Lock()
	s.configured = configured
	s.mutex.Unlock()

	s.log.Info().
		Int("configured", len(configured)).
		Int("total", len(s.devices)).
		Msg("Configured devices")
	devicesConfiguredTotal.Set(float64(len(configured)))
	return ae.AsError()
}

// Run the service until the given context is canceled.
func (s *service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.indicateActivity(ctx) })
	return g.Wait()
}

// Close restores the power-on configuration of all configured devices.
func (s *service) Close(ctx context.Context) error {
	s.mutex.Lock()
	configured := lo.Values(s.configured)
	s.mutex.Unlock()

	var ae aerr.AggregateError
	for _, d := range configured {
		ae.Add(d.Close(ctx))
	}
	return ae.AsError()
}

// indicateActivity blinks the red led while device configurations change
// and turns it off after a quiet period.
func (s *service) indicateActivity(ctx context.Context) error {
	ticker := time.NewTicker(activityCheckInterval)
	defer ticker.Stop()

	ind := activityIndicator{api: s.bAPI}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			ind.update(s.changes.Load())
		}
	}
}

// activityIndicator drives the red led from a change counter.
type activityIndicator struct {
	api         bridge.API
	lastChanges uint32
	quiet       int
	blinking    bool
}

// update is called once per check with the current change count.
// Blinking starts on the first change after a quiet period and is not
// restarted while changes keep coming.
func (a *activityIndicator) update(changes uint32) {
	if changes != a.lastChanges {
		a.lastChanges = changes
		a.quiet = 0
		if !a.blinking {
			a.blinking = true
			a.api.BlinkRedLED(activityBlinkDelay)
		}
		return
	}
	if !a.blinking {
		return
	}
	if a.quiet++; a.quiet >= activityQuietChecks {
		a.blinking = false
		a.quiet = 0
		a.api.SetRedLED(false)
	}
}

// DetectAddresses probes the bus and returns all addresses that respond.
func (s *service) DetectAddresses() []string {
	result := lo.Map(s.bus.DetectSlaveAddresses(), func(addr byte, _ int) string {
		return fmt.Sprintf("0x%x", addr)
	})
	s.log.Info().Strs("addresses", result).Msg("Discovered addresses")
	return result
}

// GetConfiguredDeviceIDs returns the sorted IDs of all configured devices.
func (s *service) GetConfiguredDeviceIDs() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	result := lo.Keys(s.configured)
	sort.Strings(result)
	return result
}

// GetUnconfiguredDeviceIDs returns the sorted IDs of devices that failed to configure.
func (s *service) GetUnconfiguredDeviceIDs() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	result := lo.FilterMap(s.devices, func(d ADC, _ int) (string, bool) {
		_, found := s.configured[d.ID()]
		return d.ID(), !found
	})
	sort.Strings(result)
	return result
}
