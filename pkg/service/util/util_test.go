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

package util

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSpinLock(t *testing.T) {
	var l SpinLock
	assert.True(t, l.TryLock())
	assert.False(t, l.TryLock())
	l.Unlock()

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				l.Lock()
				counter++
				l.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 8000, counter)
}

func TestNextRetryDelay(t *testing.T) {
	assert.Equal(t, 15*time.Millisecond, nextRetryDelay(10*time.Millisecond))
	assert.Equal(t, time.Millisecond, nextRetryDelay(0))
	assert.Equal(t, MaxRetryDelay, nextRetryDelay(4*time.Second))
	assert.Equal(t, MaxRetryDelay, nextRetryDelay(MaxRetryDelay))
	assert.Equal(t, 10*time.Second, nextRetryDelay(10*time.Second))
}

func TestUntilCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	done := make(chan error)
	go func() {
		done <- UntilCanceled(ctx, zerolog.Nop(), "test", time.Millisecond, func() error {
			if calls.Add(1)%2 == 0 {
				return errors.New("every other call fails")
			}
			return nil
		})
	}()
	assert.Eventually(t, func() bool { return calls.Load() >= 5 }, time.Second, time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("UntilCanceled did not stop")
	}
}
