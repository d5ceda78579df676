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

	"github.com/binkynet/ADS1015Worker/pkg/ads1015"
)

// ADC contains the API that is supported by all analog to digital converters.
type ADC interface {
	// Configure is called once to put the device in the desired state.
	Configure(ctx context.Context) error
	// Close brings the device back to its power-on state.
	Close(ctx context.Context) error
	// ID of the device as configured.
	ID() string
	// Address of the device on the I2C bus.
	Address() uint8
	// PinCount returns the number of single-ended input pins of the device
	PinCount() uint
	// Get the value of the pin at given index (1...)
	Get(ctx context.Context, pin int) (int, error)
	// Measure performs a single conversion with the given configuration.
	Measure(ctx context.Context, cfg ads1015.Config) (uint16, error)
	// Config returns the configuration used for measurements.
	Config() ads1015.Config
	// ReadConfig reads the configuration from the device.
	ReadConfig(ctx context.Context) (ads1015.Config, error)
	// SetField updates a single configuration field, by name.
	SetField(ctx context.Context, field, value string) error
	// GetThreshold reads the low or high comparator threshold.
	GetThreshold(ctx context.Context, which string) (int16, error)
	// SetThreshold writes the low or high comparator threshold.
	SetThreshold(ctx context.Context, which string, value int16) error
}
