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

package bridge

import (
	"context"
	"runtime"
	"strconv"
	"sync"
	"time"

	aerr "github.com/ewoutp/go-aggregate-error"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type I2CBus interface {
	// Execute an operation on the device at the given address.
	Execute(ctx context.Context, address uint8, op func(ctx context.Context, dev I2CDevice) error) error
	// DetectSlaveAddresses probes the ADS1015 address range of the bus
	// and returns the addresses that respond.
	DetectSlaveAddresses() []byte
	// Close the bus and all devices on it
	Close() error
}

// I2CDevice communicates with a device on the I2C Bus that has a specific address.
type I2CDevice interface {
	// Read a block of data directly from the device (/dev/...)
	ReadDevice(data []byte) (err error)
	// Write a block of data directly to the device (/dev/...)
	WriteDevice(data []byte) (err error)
}

var (
	// ErrBusClosed is returned for operations on a closed bus.
	ErrBusClosed = errors.New("i2c bus closed")
)

const (
	// Addresses an ADS1015 can be strapped to
	firstProbeAddress = 0x48
	lastProbeAddress  = 0x4B
	// Number of attempts of a single operation
	executeAttempts = 2
)

type i2cBus struct {
	BusConfig
	log     zerolog.Logger
	devices map[uint8]*i2cDevice
	queue   chan func()
	stopped chan struct{}
	stop    sync.Once
}

// NewI2CBus opens the I2C bus at the configured location.
// Recovery is only possible when an SCL pin is given.
func NewI2CBus(cfg BusConfig, log zerolog.Logger) (I2CBus, error) {
	if cfg.SCLPin < 0 {
		cfg.TryRecoverFromLockup = false
	}
	b := &i2cBus{
		BusConfig: cfg,
		log:       log.With().Str("component", "i2c-bus").Str("location", cfg.Location).Logger(),
		devices:   make(map[uint8]*i2cDevice),
		queue:     make(chan func()),
		stopped:   make(chan struct{}),
	}
	go b.queueProcessor()
	if b.TryRecoverFromLockup {
		if err := b.recoverFromLockup(); err != nil {
			b.stop.Do(func() { close(b.stopped) })
			return nil, errors.Wrap(err, "failed to recover bus at startup")
		}
		time.Sleep(recoverSettleTime)
	}
	return b, nil
}

// Execute an operation on the bus.
// All operations are executed one at a time on the same OS thread.
func (b *i2cBus) Execute(ctx context.Context, address uint8, op func(context.Context, I2CDevice) error) error {
	return b.enqueue(ctx, func() error {
		return b.execute(ctx, address, op)
	})
}

// enqueue puts the given request on the queue and waits for its result.
func (b *i2cBus) enqueue(ctx context.Context, req func() error) error {
	done := make(chan error, 1)
	select {
	case b.queue <- func() { done <- req() }:
		// Request is on the queue
	case <-b.stopped:
		return ErrBusClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-done
}

// Process bus requests from the queue until the bus is closed.
func (b *i2cBus) queueProcessor() {
	// Ensure we're always using the same OS thread
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		select {
		case req := <-b.queue:
			req()
		case <-b.stopped:
			return
		}
	}
}

// execute runs an operation on the queue thread.
// A failed operation closes all open devices, recovers the bus (if configured)
// and is retried once.
func (b *i2cBus) execute(ctx context.Context, address uint8, op func(context.Context, I2CDevice) error) error {
	addrLabel := strconv.Itoa(int(address))
	i2cExecuteCounters.WithLabelValues(addrLabel).Inc()
	start := time.Now()
	defer func() {
		i2cExecuteDuration.Observe(time.Since(start).Seconds())
	}()

	var err error
	for attempt := 0; attempt < executeAttempts; attempt++ {
		var dev *i2cDevice
		if dev, err = b.openDevice(address); err != nil {
			i2cExecuteErrorCounters.WithLabelValues(addrLabel).Inc()
			return errors.Wrapf(err, "open device 0x%x failed", address)
		}
		if err = op(ctx, dev); err == nil {
			return nil
		}
		b.log.Debug().Err(err).
			Int("attempt", attempt).
			Uint8("address", address).
			Msg("Bus operation failed")

		b.closeDevices()
		if rerr := b.recoverAfterFailure(); rerr != nil {
			i2cExecuteErrorCounters.WithLabelValues(addrLabel).Inc()
			return rerr
		}
	}
	i2cExecuteErrorCounters.WithLabelValues(addrLabel).Inc()
	return errors.Wrap(err, "execute operation in i2c bus failed")
}

// Open a connection to a device at the given address.
func (b *i2cBus) openDevice(address uint8) (*i2cDevice, error) {
	if d, found := b.devices[address]; found {
		return d, nil
	}
	d, err := newI2CDevice(b.Location, address)
	if err != nil {
		return nil, err
	}
	b.devices[address] = d
	return d, nil
}

// closeDevices closes all open devices.
func (b *i2cBus) closeDevices() error {
	var ae aerr.AggregateError
	for addr, d := range b.devices {
		ae.Add(d.closeFile())
		delete(b.devices, addr)
	}
	return ae.AsError()
}

// DetectSlaveAddresses probes the ADS1015 address range of the bus
// and returns the addresses that respond.
func (b *i2cBus) DetectSlaveAddresses() []byte {
	var result []byte
	b.enqueue(context.Background(), func() error {
		for addr := uint8(firstProbeAddress); addr <= lastProbeAddress; addr++ {
			d, err := b.openDevice(addr)
			if err != nil {
				continue
			}
			if err := d.DetectDevice(); err == nil {
				result = append(result, addr)
			} else {
				b.log.Debug().Err(err).Uint8("address", addr).Msg("No device")
			}
		}
		return nil
	})
	return result
}

// Close the bus and all devices on it
func (b *i2cBus) Close() error {
	err := b.enqueue(context.Background(), b.closeDevices)
	if errors.Is(err, ErrBusClosed) {
		return nil
	}
	b.stop.Do(func() { close(b.stopped) })
	return err
}
