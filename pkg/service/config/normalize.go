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
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/binkynet/ADS1015Worker/pkg/ads1015"
)

const (
	DefaultBusLocation = "/dev/i2c-1"
	DefaultMaxPolls    = 100
	DefaultIntervalMs  = 1
)

// Normalize fills in defaults.
// It must be called only after Validate.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.Bus.Location == "" {
		cfg.Bus.Location = DefaultBusLocation
	}
	if cfg.Bus.SCLPin == nil {
		noPin := -1
		cfg.Bus.SCLPin = &noPin
	}

	for i := range cfg.Devices {
		d := &cfg.Devices[i]
		if d.Address == "" {
			d.Address = fmt.Sprintf("0x%x", ads1015.AddressGND)
		}
		if d.Poll.MaxPolls == 0 {
			d.Poll.MaxPolls = DefaultMaxPolls
		}
		if d.Poll.IntervalMs == 0 {
			d.Poll.IntervalMs = DefaultIntervalMs
		}
		if s := d.Sample; s != nil {
			s.Pins = lo.Uniq(s.Pins)
			sort.Ints(s.Pins)
		}
	}
}

// LoadAndPrepare loads, validates & normalizes the configuration file
// at the given path.
func LoadAndPrepare(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	Normalize(cfg)
	return cfg, nil
}
