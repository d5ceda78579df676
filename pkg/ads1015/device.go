// Copyright 2024 Ewout Prangsma
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

package ads1015

import (
	"context"

	"github.com/rs/zerolog"
)

// Device gives typed access to the registers of an ADS1015.
//
// Device keeps no copy of the device configuration. Every accessor
// performs fresh bus transactions, so changes made by another bus master
// are observed. Device does not serialize its callers; the
// read-modify-write of the field setters is racy when a Transport is
// shared without external locking.
type Device struct {
	transport Transport
	log       zerolog.Logger
	poll      PollOptions
}

// Option customizes a Device.
type Option func(*Device)

// WithLogger sets the logger used for debug output.
func WithLogger(log zerolog.Logger) Option {
	return func(d *Device) {
		d.log = log
	}
}

// WithPollOptions sets the limits of the wait loop in Measure.
func WithPollOptions(opts PollOptions) Option {
	return func(d *Device) {
		d.poll = opts
	}
}

// New creates a Device that accesses its registers through the given transport.
func New(t Transport, options ...Option) *Device {
	d := &Device{
		transport: t,
		log:       zerolog.Nop(),
		poll:      DefaultPollOptions(),
	}
	for _, option := range options {
		option(d)
	}
	return d
}

// ReadRegister reads len(data) raw bytes from the given register.
func (d *Device) ReadRegister(ctx context.Context, reg Register, data []byte) error {
	if err := d.transport.ReadRegister(ctx, reg, data); err != nil {
		return &TransportError{Op: "read", Register: reg, Err: err}
	}
	return nil
}

// WriteRegister writes raw bytes to the given register.
func (d *Device) WriteRegister(ctx context.Context, reg Register, data []byte) error {
	if err := d.transport.WriteRegister(ctx, reg, data); err != nil {
		return &TransportError{Op: "write", Register: reg, Err: err}
	}
	return nil
}

// read a 16-bit register
func (d *Device) readWordReg(ctx context.Context, reg Register) (uint16, error) {
	var buf [registerSize]uint8
	if err := d.ReadRegister(ctx, reg, buf[:]); err != nil {
		return 0, err
	}
	// MSB first, then LSB
	return (uint16(buf[0]) << 8) | uint16(buf[1]), nil
}

// write a 16-bit register value
func (d *Device) writeWordReg(ctx context.Context, reg Register, value uint16) error {
	var buf [registerSize]uint8
	buf[0] = uint8((value >> 8) & 0xFF)
	buf[1] = uint8(value & 0xFF)
	return d.WriteRegister(ctx, reg, buf[:])
}

// ReadConfig reads and decodes the configuration register.
func (d *Device) ReadConfig(ctx context.Context) (Config, error) {
	word, err := d.readWordReg(ctx, RegisterConfig)
	if err != nil {
		return Config{}, err
	}
	return DecodeConfig(word), nil
}

// WriteConfig encodes and writes the entire configuration register.
// Note that a Status of StatusStart starts a conversion.
func (d *Device) WriteConfig(ctx context.Context, c Config) error {
	return d.writeWordReg(ctx, RegisterConfig, c.Encode())
}

// updateConfig reads the configuration, applies the given modification
// and writes it back when that changed the configuration word.
// Fields that are not modified (including the status bit) are written
// back as they were read.
func (d *Device) updateConfig(ctx context.Context, name string, modify func(*Config)) error {
	current, err := d.ReadConfig(ctx)
	if err != nil {
		return err
	}
	updated := current
	modify(&updated)
	currentWord, updatedWord := current.Encode(), updated.Encode()
	if updatedWord == currentWord {
		// Nothing changed
		return nil
	}
	d.log.Debug().
		Str("field", name).
		Uint16("current", currentWord).
		Uint16("updated", updatedWord).
		Msg("Updating config register")
	return d.writeWordReg(ctx, RegisterConfig, updatedWord)
}

// GetStatus returns the operational status bit.
func (d *Device) GetStatus(ctx context.Context) (Status, error) {
	c, err := d.ReadConfig(ctx)
	if err != nil {
		return 0, err
	}
	return c.Status, nil
}

// SetStatus sets the operational status bit.
// Setting StatusStart starts a single conversion.
func (d *Device) SetStatus(ctx context.Context, status Status) error {
	return d.updateConfig(ctx, "status", func(c *Config) { c.Status = status })
}

// GetChannel returns the input multiplexer setting.
func (d *Device) GetChannel(ctx context.Context) (Channel, error) {
	c, err := d.ReadConfig(ctx)
	if err != nil {
		return 0, err
	}
	return c.Channel, nil
}

// SetChannel sets the input multiplexer.
func (d *Device) SetChannel(ctx context.Context, channel Channel) error {
	return d.updateConfig(ctx, "channel", func(c *Config) { c.Channel = channel })
}

// GetGain returns the programmable gain amplifier setting.
func (d *Device) GetGain(ctx context.Context) (Gain, error) {
	c, err := d.ReadConfig(ctx)
	if err != nil {
		return 0, err
	}
	return c.Gain, nil
}

// SetGain sets the programmable gain amplifier.
func (d *Device) SetGain(ctx context.Context, gain Gain) error {
	return d.updateConfig(ctx, "gain", func(c *Config) { c.Gain = gain })
}

// GetMode returns the operating mode.
func (d *Device) GetMode(ctx context.Context) (Mode, error) {
	c, err := d.ReadConfig(ctx)
	if err != nil {
		return 0, err
	}
	return c.Mode, nil
}

// SetMode sets the operating mode.
func (d *Device) SetMode(ctx context.Context, mode Mode) error {
	return d.updateConfig(ctx, "mode", func(c *Config) { c.Mode = mode })
}

// GetDataRate returns the data rate setting.
func (d *Device) GetDataRate(ctx context.Context) (DataRate, error) {
	c, err := d.ReadConfig(ctx)
	if err != nil {
		return 0, err
	}
	return c.DataRate, nil
}

// SetDataRate sets the data rate.
func (d *Device) SetDataRate(ctx context.Context, rate DataRate) error {
	return d.updateConfig(ctx, "data_rate", func(c *Config) { c.DataRate = rate })
}

// GetComparatorMode returns the comparator mode.
func (d *Device) GetComparatorMode(ctx context.Context) (ComparatorMode, error) {
	c, err := d.ReadConfig(ctx)
	if err != nil {
		return 0, err
	}
	return c.ComparatorMode, nil
}

// SetComparatorMode sets the comparator mode.
func (d *Device) SetComparatorMode(ctx context.Context, mode ComparatorMode) error {
	return d.updateConfig(ctx, "comparator_mode", func(c *Config) { c.ComparatorMode = mode })
}

// GetComparatorPolarity returns the comparator polarity.
func (d *Device) GetComparatorPolarity(ctx context.Context) (ComparatorPolarity, error) {
	c, err := d.ReadConfig(ctx)
	if err != nil {
		return 0, err
	}
	return c.ComparatorPolarity, nil
}

// SetComparatorPolarity sets the comparator polarity.
func (d *Device) SetComparatorPolarity(ctx context.Context, pol ComparatorPolarity) error {
	return d.updateConfig(ctx, "comparator_polarity", func(c *Config) { c.ComparatorPolarity = pol })
}

// GetComparatorLatch returns the comparator latching setting.
func (d *Device) GetComparatorLatch(ctx context.Context) (ComparatorLatch, error) {
	c, err := d.ReadConfig(ctx)
	if err != nil {
		return 0, err
	}
	return c.ComparatorLatch, nil
}

// SetComparatorLatch sets the comparator latching setting.
func (d *Device) SetComparatorLatch(ctx context.Context, lat ComparatorLatch) error {
	return d.updateConfig(ctx, "comparator_latch", func(c *Config) { c.ComparatorLatch = lat })
}

// GetComparatorQueue returns the comparator queue setting.
func (d *Device) GetComparatorQueue(ctx context.Context) (ComparatorQueue, error) {
	c, err := d.ReadConfig(ctx)
	if err != nil {
		return 0, err
	}
	return c.ComparatorQueue, nil
}

// SetComparatorQueue sets the comparator queue setting.
func (d *Device) SetComparatorQueue(ctx context.Context, que ComparatorQueue) error {
	return d.updateConfig(ctx, "comparator_queue", func(c *Config) { c.ComparatorQueue = que })
}

// GetLowThreshold reads the low threshold register.
func (d *Device) GetLowThreshold(ctx context.Context) (int16, error) {
	word, err := d.readWordReg(ctx, RegisterLowThreshold)
	if err != nil {
		return 0, err
	}
	return DecodeThreshold(word), nil
}

// SetLowThreshold writes the low threshold register.
func (d *Device) SetLowThreshold(ctx context.Context, value int16) error {
	return d.writeWordReg(ctx, RegisterLowThreshold, EncodeThreshold(value))
}

// GetHighThreshold reads the high threshold register.
func (d *Device) GetHighThreshold(ctx context.Context) (int16, error) {
	word, err := d.readWordReg(ctx, RegisterHighThreshold)
	if err != nil {
		return 0, err
	}
	return DecodeThreshold(word), nil
}

// SetHighThreshold writes the high threshold register.
func (d *Device) SetHighThreshold(ctx context.Context, value int16) error {
	return d.writeWordReg(ctx, RegisterHighThreshold, EncodeThreshold(value))
}
