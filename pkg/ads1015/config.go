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
	aerr "github.com/ewoutp/go-aggregate-error"
	"github.com/pkg/errors"
)

// Status is the operational status bit (OS).
// Writing StatusStart starts a single conversion, reading StatusReady means
// that no conversion is in progress.
type Status uint8

const (
	// Writing
	StatusNoEffect Status = 0
	StatusStart    Status = 1
	// Reading
	StatusBusy  Status = 0
	StatusReady Status = 1
)

// Channel is the input multiplexer setting (MUX).
type Channel uint8

const (
	// Differential
	ChannelDiff01 Channel = 0 // P = AIN0, N = AIN1 (default)
	ChannelDiff03 Channel = 1 // P = AIN0, N = AIN3
	ChannelDiff13 Channel = 2 // P = AIN1, N = AIN3
	ChannelDiff23 Channel = 3 // P = AIN2, N = AIN3
	// Single ended
	ChannelAIN0 Channel = 4
	ChannelAIN1 Channel = 5
	ChannelAIN2 Channel = 6
	ChannelAIN3 Channel = 7
)

// SingleEndedChannel returns the single ended channel for the given pin (1...4).
func SingleEndedChannel(pin int) (Channel, error) {
	if pin < 1 || pin > 4 {
		return 0, errors.Wrapf(ErrInvalidArgument, "pin must be between 1 and 4, got %d", pin)
	}
	return ChannelAIN0 + Channel(pin-1), nil
}

// Gain is the programmable gain amplifier setting (PGA).
// Values 6 & 7 are encodable and behave as Gain16 on the chip.
type Gain uint8

const (
	GainTwoThirds Gain = 0 // +/-6.144V
	Gain1         Gain = 1 // +/-4.096V
	Gain2         Gain = 2 // +/-2.048V (default)
	Gain4         Gain = 3 // +/-1.024V
	Gain8         Gain = 4 // +/-0.512V
	Gain16        Gain = 5 // +/-0.256V
)

// Mode is the operating mode.
type Mode uint8

const (
	ModeContinuous Mode = 0
	ModeSingleShot Mode = 1 // (default)
)

// DataRate is the sample rate setting (DR).
// Value 7 is encodable and behaves as DataRate3300 on the chip.
type DataRate uint8

const (
	DataRate128  DataRate = 0
	DataRate250  DataRate = 1
	DataRate490  DataRate = 2
	DataRate920  DataRate = 3
	DataRate1600 DataRate = 4 // (default)
	DataRate2400 DataRate = 5
	DataRate3300 DataRate = 6
)

// ComparatorMode selects the comparator behavior (COMP_MODE).
type ComparatorMode uint8

const (
	ComparatorTraditional ComparatorMode = 0 // with hysteresis (default)
	ComparatorWindow      ComparatorMode = 1
)

// ComparatorPolarity is the active level of the ALERT/RDY pin (COMP_POL).
type ComparatorPolarity uint8

const (
	ComparatorActiveLow  ComparatorPolarity = 0 // (default)
	ComparatorActiveHigh ComparatorPolarity = 1
)

// ComparatorLatch determines if the ALERT/RDY pin latches once asserted (COMP_LAT).
type ComparatorLatch uint8

const (
	ComparatorNonLatching ComparatorLatch = 0 // (default)
	ComparatorLatching    ComparatorLatch = 1
)

// ComparatorQueue is the number of conversions before ALERT/RDY is
// asserted, or disables the comparator (COMP_QUE).
type ComparatorQueue uint8

const (
	ComparatorAssertAfter1 ComparatorQueue = 0
	ComparatorAssertAfter2 ComparatorQueue = 1
	ComparatorAssertAfter4 ComparatorQueue = 2
	ComparatorDisabled     ComparatorQueue = 3 // ALERT/RDY high impedance (default)
)

const (
	// Field offsets & masks of the configuration word.
	statusShift             = 15
	statusMask              = 0x01
	channelShift            = 12
	channelMask             = 0x07
	gainShift               = 9
	gainMask                = 0x07
	modeShift               = 8
	modeMask                = 0x01
	dataRateShift           = 5
	dataRateMask            = 0x07
	comparatorModeShift     = 4
	comparatorModeMask      = 0x01
	comparatorPolarityShift = 3
	comparatorPolarityMask  = 0x01
	comparatorLatchShift    = 2
	comparatorLatchMask     = 0x01
	comparatorQueueShift    = 0
	comparatorQueueMask     = 0x03
)

// Config holds all fields of the configuration register.
type Config struct {
	Status             Status             `json:"status" yaml:"status"`
	Channel            Channel            `json:"channel" yaml:"channel"`
	Gain               Gain               `json:"gain" yaml:"gain"`
	Mode               Mode               `json:"mode" yaml:"mode"`
	DataRate           DataRate           `json:"data_rate" yaml:"data_rate"`
	ComparatorMode     ComparatorMode     `json:"comparator_mode" yaml:"comparator_mode"`
	ComparatorPolarity ComparatorPolarity `json:"comparator_polarity" yaml:"comparator_polarity"`
	ComparatorLatch    ComparatorLatch    `json:"comparator_latch" yaml:"comparator_latch"`
	ComparatorQueue    ComparatorQueue    `json:"comparator_queue" yaml:"comparator_queue"`
}

// DefaultConfig returns the power-on reset configuration (0x8583).
func DefaultConfig() Config {
	return Config{
		Status:             StatusStart,
		Channel:            ChannelDiff01,
		Gain:               Gain2,
		Mode:               ModeSingleShot,
		DataRate:           DataRate1600,
		ComparatorMode:     ComparatorTraditional,
		ComparatorPolarity: ComparatorActiveLow,
		ComparatorLatch:    ComparatorNonLatching,
		ComparatorQueue:    ComparatorDisabled,
	}
}

// DecodeConfig splits a configuration word into its fields.
func DecodeConfig(word uint16) Config {
	return Config{
		Status:             Status(field(word, statusShift, statusMask)),
		Channel:            Channel(field(word, channelShift, channelMask)),
		Gain:               Gain(field(word, gainShift, gainMask)),
		Mode:               Mode(field(word, modeShift, modeMask)),
		DataRate:           DataRate(field(word, dataRateShift, dataRateMask)),
		ComparatorMode:     ComparatorMode(field(word, comparatorModeShift, comparatorModeMask)),
		ComparatorPolarity: ComparatorPolarity(field(word, comparatorPolarityShift, comparatorPolarityMask)),
		ComparatorLatch:    ComparatorLatch(field(word, comparatorLatchShift, comparatorLatchMask)),
		ComparatorQueue:    ComparatorQueue(field(word, comparatorQueueShift, comparatorQueueMask)),
	}
}

// Encode packs all fields into a configuration word.
// Field values are truncated to the width of their field.
func (c Config) Encode() uint16 {
	return bits(uint8(c.Status), statusShift, statusMask) |
		bits(uint8(c.Channel), channelShift, channelMask) |
		bits(uint8(c.Gain), gainShift, gainMask) |
		bits(uint8(c.Mode), modeShift, modeMask) |
		bits(uint8(c.DataRate), dataRateShift, dataRateMask) |
		bits(uint8(c.ComparatorMode), comparatorModeShift, comparatorModeMask) |
		bits(uint8(c.ComparatorPolarity), comparatorPolarityShift, comparatorPolarityMask) |
		bits(uint8(c.ComparatorLatch), comparatorLatchShift, comparatorLatchMask) |
		bits(uint8(c.ComparatorQueue), comparatorQueueShift, comparatorQueueMask)
}

// Validate checks that every field holds a value that is meaningful
// for the chip.
// The codec and the field setters never call this; they operate on
// the bit format only.
func (c Config) Validate() error {
	var ae aerr.AggregateError
	check := func(kind string, v, max uint8) {
		if v > max {
			ae.Add(errors.Wrapf(ErrInvalidArgument, "%s must be between 0 and %d, got %d", kind, max, v))
		}
	}
	check("status", uint8(c.Status), statusMask)
	check("channel", uint8(c.Channel), channelMask)
	check("gain", uint8(c.Gain), uint8(Gain16))
	check("mode", uint8(c.Mode), modeMask)
	check("data rate", uint8(c.DataRate), uint8(DataRate3300))
	check("comparator mode", uint8(c.ComparatorMode), comparatorModeMask)
	check("comparator polarity", uint8(c.ComparatorPolarity), comparatorPolarityMask)
	check("comparator latch", uint8(c.ComparatorLatch), comparatorLatchMask)
	check("comparator queue", uint8(c.ComparatorQueue), comparatorQueueMask)
	return ae.AsError()
}

// field extracts a value from the word.
func field(word uint16, shift, mask uint8) uint8 {
	return uint8((word >> shift) & uint16(mask))
}

// bits places a value at its position in the word.
func bits(v uint8, shift, mask uint8) uint16 {
	return uint16(v&mask) << shift
}
