// Copyright 2022 Ewout Prangsma
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
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/binkynet/ADS1015Worker/pkg/ads1015"
	"github.com/binkynet/ADS1015Worker/pkg/service/bridge"
	"github.com/binkynet/ADS1015Worker/pkg/service/config"
)

// ads1015Transport implements ads1015.Transport for a device at a
// fixed address on an I2C bus.
type ads1015Transport struct {
	bus     bridge.I2CBus
	address uint8
}

// ReadRegister sends the register pointer, then reads the register content.
func (t ads1015Transport) ReadRegister(ctx context.Context, reg ads1015.Register, data []byte) error {
	return t.bus.Execute(ctx, t.address, func(ctx context.Context, dev bridge.I2CDevice) error {
		if err := dev.WriteDevice([]byte{uint8(reg)}); err != nil {
			return errors.Wrap(err, "failed to write register pointer")
		}
		if err := dev.ReadDevice(data); err != nil {
			return errors.Wrap(err, "failed to read register")
		}
		return nil
	})
}

// WriteRegister sends the register pointer followed by the register content
// in a single transfer.
func (t ads1015Transport) WriteRegister(ctx context.Context, reg ads1015.Register, data []byte) error {
	buf := make([]byte, 0, len(data)+1)
	buf = append(buf, uint8(reg))
	buf = append(buf, data...)
	return t.bus.Execute(ctx, t.address, func(ctx context.Context, dev bridge.I2CDevice) error {
		return dev.WriteDevice(buf)
	})
}

type ads1015Device struct {
	mutex    sync.Mutex
	onActive func()
	log      zerolog.Logger
	config   config.DeviceConfig
	address  uint8
	dev      *ads1015.Device
}

var _ ADC = &ads1015Device{}

// newADS1015 creates an ADC instance for an ADS1015 device with given config.
func newADS1015(log zerolog.Logger, cfg config.DeviceConfig, bus bridge.I2CBus, onActive func()) (ADC, error) {
	address, err := config.ParseAddress(cfg.Address)
	if err != nil {
		return nil, err
	}
	log = log.With().
		Str("device-id", cfg.ID).
		Str("address", cfg.Address).
		Logger()
	t := ads1015Transport{bus: bus, address: address}
	return &ads1015Device{
		onActive: onActive,
		log:      log,
		config:   cfg,
		address:  address,
		dev:      ads1015.New(t, ads1015.WithLogger(log), ads1015.WithPollOptions(cfg.Poll.Options())),
	}, nil
}

// ID of the device as configured.
func (d *ads1015Device) ID() string {
	return d.config.ID
}

// Address of the device on the I2C bus.
func (d *ads1015Device) Address() uint8 {
	return d.address
}

// Configure is called once to put the device in the desired state.
func (d *ads1015Device) Configure(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.onActive()
	cfg := d.config.Config
	// Do not start a conversion yet
	cfg.Status = ads1015.StatusNoEffect
	if err := d.dev.WriteConfig(ctx, cfg); err != nil {
		return err
	}
	if t := d.config.Thresholds; t != nil {
		if t.Low != nil {
			if err := d.dev.SetLowThreshold(ctx, *t.Low); err != nil {
				return err
			}
		}
		if t.High != nil {
			if err := d.dev.SetHighThreshold(ctx, *t.High); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close brings the device back to a safe state.
func (d *ads1015Device) Close(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	// Restore all to defaults
	d.onActive()
	cfg := ads1015.DefaultConfig()
	cfg.Status = ads1015.StatusNoEffect
	return d.dev.WriteConfig(ctx, cfg)
}

// PinCount returns the number of pins of the device
func (d *ads1015Device) PinCount() uint {
	return 4
}

// Get the value of the pin at given index (1...)
func (d *ads1015Device) Get(ctx context.Context, pin int) (int, error) {
	channel, err := ads1015.SingleEndedChannel(pin)
	if err != nil {
		return 0, err
	}
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.onActive()
	cfg := d.config.Config
	cfg.Channel = channel
	code, err := d.dev.Measure(ctx, cfg)
	if err != nil {
		return 0, err
	}
	return int(code), nil
}

// Measure performs a single conversion with the given configuration.
func (d *ads1015Device) Measure(ctx context.Context, cfg ads1015.Config) (uint16, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.onActive()
	return d.dev.Measure(ctx, cfg)
}

// Config returns the configuration used for measurements.
func (d *ads1015Device) Config() ads1015.Config {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.config.Config
}

// ReadConfig reads the configuration from the device.
func (d *ads1015Device) ReadConfig(ctx context.Context) (ads1015.Config, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.dev.ReadConfig(ctx)
}

// SetField updates a single configuration field on the device.
// Except for the status, the field is also updated in the configuration
// used for subsequent measurements.
func (d *ads1015Device) SetField(ctx context.Context, field, value string) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	var err error
	cfg := d.config.Config
	switch strings.ToLower(field) {
	case "status":
		var v ads1015.Status
		if v, err = ads1015.ParseStatus(value); err == nil {
			err = d.dev.SetStatus(ctx, v)
		}
	case "channel":
		if cfg.Channel, err = ads1015.ParseChannel(value); err == nil {
			err = d.dev.SetChannel(ctx, cfg.Channel)
		}
	case "gain":
		if cfg.Gain, err = ads1015.ParseGain(value); err == nil {
			err = d.dev.SetGain(ctx, cfg.Gain)
		}
	case "mode":
		if cfg.Mode, err = ads1015.ParseMode(value); err == nil {
			err = d.dev.SetMode(ctx, cfg.Mode)
		}
	case "data_rate":
		if cfg.DataRate, err = ads1015.ParseDataRate(value); err == nil {
			err = d.dev.SetDataRate(ctx, cfg.DataRate)
		}
	case "comparator_mode":
		if cfg.ComparatorMode, err = ads1015.ParseComparatorMode(value); err == nil {
			err = d.dev.SetComparatorMode(ctx, cfg.ComparatorMode)
		}
	case "comparator_polarity":
		if cfg.ComparatorPolarity, err = ads1015.ParseComparatorPolarity(value); err == nil {
			err = d.dev.SetComparatorPolarity(ctx, cfg.ComparatorPolarity)
		}
	case "comparator_latch":
		if cfg.ComparatorLatch, err = ads1015.ParseComparatorLatch(value); err == nil {
			err = d.dev.SetComparatorLatch(ctx, cfg.ComparatorLatch)
		}
	case "comparator_queue":
		if cfg.ComparatorQueue, err = ads1015.ParseComparatorQueue(value); err == nil {
			err = d.dev.SetComparatorQueue(ctx, cfg.ComparatorQueue)
		}
	default:
		return errors.Wrapf(ads1015.ErrInvalidArgument, "unknown field '%s'", field)
	}
	if err != nil {
		return err
	}
	d.onActive()
	d.config.Config = cfg
	fieldUpdatesTotal.WithLabelValues(d.config.ID, strings.ToLower(field)).Inc()
	return nil
}

// GetThreshold reads the low or high comparator threshold.
func (d *ads1015Device) GetThreshold(ctx context.Context, which string) (int16, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	switch strings.ToLower(which) {
	case "low":
		return d.dev.GetLowThreshold(ctx)
	case "high":
		return d.dev.GetHighThreshold(ctx)
	default:
		return 0, errors.Wrapf(ads1015.ErrInvalidArgument, "unknown threshold '%s'", which)
	}
}

// SetThreshold writes the low or high comparator threshold.
func (d *ads1015Device) SetThreshold(ctx context.Context, which string, value int16) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.onActive()
	switch strings.ToLower(which) {
	case "low":
		return d.dev.SetLowThreshold(ctx, value)
	case "high":
		return d.dev.SetHighThreshold(ctx, value)
	default:
		return errors.Wrapf(ads1015.ErrInvalidArgument, "unknown threshold '%s'", which)
	}
}
