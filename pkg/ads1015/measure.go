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
	"time"
)

// PollOptions limits the wait for a conversion to complete.
type PollOptions struct {
	// Maximum number of status reads. 0 means no limit.
	MaxPolls int
	// Delay between status reads.
	Interval time.Duration
}

// DefaultPollOptions returns the poll limits used when none are given.
// A conversion at the slowest data rate (128SPS) takes less than 8ms.
func DefaultPollOptions() PollOptions {
	return PollOptions{
		MaxPolls: 100,
		Interval: time.Millisecond,
	}
}

// MeasureState is a step of the acquisition protocol.
type MeasureState uint8

const (
	StateIdle MeasureState = iota
	StateConversionRequested
	StatePolling
	StateResultReady
)

func (s MeasureState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConversionRequested:
		return "conversion-requested"
	case StatePolling:
		return "polling"
	case StateResultReady:
		return "result-ready"
	default:
		return "unknown"
	}
}

// Measure performs a single conversion with the given configuration
// and returns the 12-bit result code.
//
// The status field of cfg is ignored; it is always written as StatusStart.
// Measure then polls the configuration register until the device reports
// StatusReady and reads the conversion register.
// The first failing register access aborts the measurement.
func (d *Device) Measure(ctx context.Context, cfg Config) (uint16, error) {
	measureTotal.Inc()
	code, err := d.measure(ctx, cfg)
	if err != nil {
		if IsTimeout(err) {
			measureTimeoutTotal.Inc()
		} else if IsTransport(err) {
			measureErrorTotal.Inc()
		}
		return 0, err
	}
	return code, nil
}

func (d *Device) measure(ctx context.Context, cfg Config) (uint16, error) {
	log := d.log.With().Uint16("config", cfg.Encode()).Logger()
	state := StateIdle
	setState := func(s MeasureState) {
		log.Debug().
			Str("from", state.String()).
			Str("to", s.String()).
			Msg("Measure state change")
		state = s
	}

	// Trigger a conversion
	cfg.Status = StatusStart
	if err := d.WriteConfig(ctx, cfg); err != nil {
		return 0, err
	}
	setState(StateConversionRequested)

	// Wait until conversion ready
	setState(StatePolling)
	polls, err := d.waitForConversion(ctx)
	measurePolls.Observe(float64(polls))
	if err != nil {
		return 0, err
	}
	setState(StateResultReady)

	// Read conversion value
	word, err := d.readWordReg(ctx, RegisterConversion)
	if err != nil {
		return 0, err
	}
	code := DecodeConversion(word)
	log.Debug().
		Int("polls", polls).
		Uint16("code", code).
		Msg("Conversion completed")
	return code, nil
}

// waitForConversion reads the status bit until it reports StatusReady.
// Returns the number of status reads.
func (d *Device) waitForConversion(ctx context.Context) (int, error) {
	opts := d.poll
	polls := 0
	for {
		if err := ctx.Err(); err != nil {
			// Context canceled
			return polls, err
		}
		// Check conversion status
		c, err := d.ReadConfig(ctx)
		polls++
		if err != nil {
			return polls, err
		}
		if c.Status == StatusReady {
			// Conversion completed
			return polls, nil
		}
		if opts.MaxPolls > 0 && polls >= opts.MaxPolls {
			return polls, &TimeoutError{Polls: polls, Interval: opts.Interval}
		}
		if opts.Interval > 0 {
			select {
			case <-ctx.Done():
				// Context canceled
				return polls, ctx.Err()
			case <-time.After(opts.Interval):
				// Continue
			}
		}
	}
}
