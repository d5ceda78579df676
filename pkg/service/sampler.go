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

package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/binkynet/ADS1015Worker/pkg/service/config"
	"github.com/binkynet/ADS1015Worker/pkg/service/devices"
	"github.com/binkynet/ADS1015Worker/pkg/service/util"
)

const (
	// Upper bound for reading a single pin
	sampleReadTimeout = time.Second
)

// sampler periodically reads the configured pins of an ADC device.
type sampler struct {
	log        zerolog.Logger
	dev        devices.ADC
	pins       []int
	interval   time.Duration
	lastValues map[int]int
}

// newSampler creates a sampler for the given device & configuration.
func newSampler(log zerolog.Logger, dev devices.ADC, cfg config.SampleConfig) *sampler {
	return &sampler{
		log:        log.With().Str("device-id", dev.ID()).Logger(),
		dev:        dev,
		pins:       cfg.Pins,
		interval:   cfg.Interval(),
		lastValues: make(map[int]int),
	}
}

// Run the sampler until the given context is canceled.
func (s *sampler) Run(ctx context.Context) error {
	return util.UntilCanceled(ctx, s.log, fmt.Sprintf("sampling %s", s.dev.ID()), s.interval, func() error {
		if err := s.Read(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	})
}

// Read all pins once
func (s *sampler) Read(ctx context.Context) error {
	id := s.dev.ID()
	for _, pin := range s.pins {
		lctx, cancel := context.WithTimeout(ctx, sampleReadTimeout)
		value, err := s.dev.Get(lctx, pin)
		cancel()
		if err != nil {
			sampleErrorsTotal.WithLabelValues(id).Inc()
			return errors.Wrapf(err, "pin %d", pin)
		}
		samplesTotal.WithLabelValues(id).Inc()
		lastSampleValue.WithLabelValues(id, strconv.Itoa(pin)).Set(float64(value))
		// Debug log changes (if any)
		if last, found := s.lastValues[pin]; !found || last != value {
			s.log.Debug().
				Int("pin", pin).
				Int("current", value).
				Int("last", last).
				Msg("Sample value changed")
			s.lastValues[pin] = value
		}
	}
	return nil
}
