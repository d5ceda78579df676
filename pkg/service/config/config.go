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
	"bytes"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/binkynet/ADS1015Worker/pkg/ads1015"
)

// Config is the content of the configuration file.
type Config struct {
	Bus     BusConfig      `yaml:"bus"`
	Devices []DeviceConfig `yaml:"devices"`
}

// ---- BUS ----

type BusConfig struct {
	// Bus device, e.g. /dev/i2c-1
	Location string `yaml:"location"`
	// GPIO pin of SCL for lock-up recovery (optional)
	SCLPin *int `yaml:"scl_pin"`
	// Clock out a stuck bus at startup & after failures
	Recover bool `yaml:"recover"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	ID string `yaml:"id"`
	// I2C address, decimal or 0x prefixed hex
	Address string `yaml:"address"`
	// Configuration written by Configure and used by measurements.
	// Fields that are not specified keep their power-on default.
	Config     ads1015.Config   `yaml:"config"`
	Thresholds *ThresholdConfig `yaml:"thresholds"`
	Poll       PollConfig       `yaml:"poll"`
	// Periodic sampling (optional, opt-in)
	Sample *SampleConfig `yaml:"sample"`
}

// UnmarshalYAML decodes a device, starting from the power-on default
// configuration.
func (d *DeviceConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain DeviceConfig
	p := plain{Config: ads1015.DefaultConfig()}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*d = DeviceConfig(p)
	return nil
}

// ---- THRESHOLDS ----

type ThresholdConfig struct {
	Low  *int16 `yaml:"low"`
	High *int16 `yaml:"high"`
}

// ---- POLL ----

type PollConfig struct {
	// Maximum status reads per conversion; 0 = default, negative = no limit
	MaxPolls int `yaml:"max_polls"`
	// Delay between status reads; 0 = default, negative = no delay
	IntervalMs int `yaml:"interval_ms"`
}

// Options converts the poll config into poll options for the device.
func (p PollConfig) Options() ads1015.PollOptions {
	var opts ads1015.PollOptions
	if p.MaxPolls > 0 {
		opts.MaxPolls = p.MaxPolls
	}
	if p.IntervalMs > 0 {
		opts.Interval = time.Duration(p.IntervalMs) * time.Millisecond
	}
	return opts
}

// ---- SAMPLE ----

type SampleConfig struct {
	IntervalMs int   `yaml:"interval_ms"`
	Pins       []int `yaml:"pins"`
}

// Interval returns the time between samples.
func (s SampleConfig) Interval() time.Duration {
	return time.Duration(s.IntervalMs) * time.Millisecond
}

// Load reads the configuration file at the given path.
// The result is neither validated nor normalized.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file '%s'", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file '%s'", path)
	}
	return cfg, nil
}

// Parse decodes a configuration from YAML.
// Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, err
	}
	return &cfg, nil
}
