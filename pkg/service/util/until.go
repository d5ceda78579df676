// Copyright 2021 Ewout Prangsma
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

package util

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	// Upper bound of the delay after repeated failures
	MaxRetryDelay = time.Second * 5
	// Growth of the delay after each failure
	retryDelayFactor = 1.5
)

// UntilCanceled calls the given callback every interval until the given
// context is canceled.
// After a failure the delay grows with each consecutive failure,
// up to MaxRetryDelay. A success resets it to interval.
func UntilCanceled(ctx context.Context, log zerolog.Logger, description string, interval time.Duration, cb func() error) error {
	delay := interval
	for ctx.Err() == nil {
		if err := cb(); err != nil {
			delay = nextRetryDelay(delay)
			log.Warn().Err(err).Dur("retry-in", delay).Msgf("%s failed", description)
		} else {
			delay = interval
		}
		select {
		case <-ctx.Done():
			log.Info().Msgf("Stopping %s; context canceled", description)
		case <-time.After(delay):
		}
	}
	return nil
}

// nextRetryDelay returns the delay that follows the given one after a failure.
// It never shrinks below the given delay.
func nextRetryDelay(delay time.Duration) time.Duration {
	next := time.Duration(float64(delay) * retryDelayFactor)
	if next <= delay {
		next = delay + time.Millisecond
	}
	if next > MaxRetryDelay {
		return max(delay, MaxRetryDelay)
	}
	return next
}
