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

package config

import (
	aerr "github.com/ewoutp/go-aggregate-error"
	"github.com/pkg/errors"

	"github.com/binkynet/ADS1015Worker/pkg/ads1015"
)

var (
	ValidationError = errors.New("validation failed")
)

// Validate checks configuration correctness.
// It does not mutate the configuration.
// All problems found are returned as a single aggregated error.
func Validate(cfg *Config) error {
	var ae aerr.AggregateError
	fail := func(format string, args ...interface{}) {
		ae.Add(errors.Wrapf(ValidationError, format, args...))
	}

	if cfg.Bus.SCLPin == nil && cfg.Bus.Recover {
		fail("bus: recover requires scl_pin")
	}

	ids := make(map[string]struct{})
	addresses := make(map[uint8]string)
	for i, d := range cfg.Devices {
		if d.ID == "" {
			fail("device #%d: id is missing", i)
		} else if _, found := ids[d.ID]; found {
			fail("device %q: duplicate id", d.ID)
		}
		ids[d.ID] = struct{}{}

		// address (empty means default)
		address := ads1015.AddressGND
		if d.Address != "" {
			var err error
			if address, err = ParseAddress(d.Address); err != nil {
				fail("device %q: %v", d.ID, err)
				continue
			}
		}
		if prev, found := addresses[address]; found {
			fail("device %q: address 0x%x already used by device %q", d.ID, address, prev)
		}
		addresses[address] = d.ID

		if err := d.Config.Validate(); err != nil {
			fail("device %q: %v", d.ID, err)
		}

		if t := d.Thresholds; t != nil {
			for _, v := range []*int16{t.Low, t.High} {
				if v != nil && (*v < ads1015.MinThreshold || *v > ads1015.MaxThreshold) {
					fail("device %q: threshold %d out of range [%d, %d]", d.ID, *v, ads1015.MinThreshold, ads1015.MaxThreshold)
				}
			}
		}

		if s := d.Sample; s != nil {
			if s.IntervalMs <= 0 {
				fail("device %q: sample interval_ms must be positive", d.ID)
			}
			if len(s.Pins) == 0 {
				fail("device %q: sample requires at least 1 pin", d.ID)
			}
			for _, pin := range s.Pins {
				if pin < 1 || pin > 4 {
					fail("device %q: pin must be between 1 and 4, got %d", d.ID, pin)
				}
			}
		}
	}
	return ae.AsError()
}

// IsValidationError returns true if the given error is caused by a validation failure.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	if ae, ok := err.(*aerr.AggregateError); ok {
		// Validate only adds validation errors
		return !ae.IsEmpty()
	}
	return errors.Cause(err) == ValidationError
}
