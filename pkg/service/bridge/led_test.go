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

package bridge

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePin struct {
	mutex  sync.Mutex
	writes []bool
	err    error
}

func (p *fakePin) Write(on bool) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.writes = append(p.writes, on)
	return p.err
}

func (p *fakePin) Writes() []bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return append([]bool(nil), p.writes...)
}

func TestStatusLedSet(t *testing.T) {
	pin := &fakePin{}
	l := newStatusLed("green", pin)
	require.NoError(t, l.Set(true))
	require.NoError(t, l.Set(false))
	assert.Equal(t, []bool{true, false}, pin.Writes())

	pin.err = errors.New("gpio gone")
	assert.Error(t, l.Set(true))
}

func TestStatusLedBlink(t *testing.T) {
	pin := &fakePin{}
	l := newStatusLed("red", pin)
	assert.Error(t, l.Blink(0))

	require.NoError(t, l.Blink(time.Millisecond))
	assert.Eventually(t, func() bool { return len(pin.Writes()) >= 4 }, time.Second, time.Millisecond)

	// Set stops blinking and leaves the led in the requested state
	require.NoError(t, l.Set(false))
	n := len(pin.Writes())
	time.Sleep(10 * time.Millisecond)
	writes := pin.Writes()
	assert.Len(t, writes, n)
	assert.False(t, writes[n-1])
	assert.Equal(t, []bool{true, false}, writes[:2])
}
