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
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ledPin is the part of gpio.OutputPin used by statusLed.
type ledPin interface {
	Write(bool) error
}

// statusLed drives a single led that is either steady or blinking.
type statusLed struct {
	mutex sync.Mutex
	name  string
	pin   ledPin
	stop  chan struct{}
	done  chan struct{}
}

func newStatusLed(name string, pin ledPin) *statusLed {
	return &statusLed{name: name, pin: pin}
}

// Set turns the led on/off, stopping any blinking.
func (l *statusLed) Set(on bool) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.stopBlinking()
	if err := l.pin.Write(on); err != nil {
		return errors.Wrapf(err, "set %s led failed", l.name)
	}
	return nil
}

// Blink toggles the led every delay until Set or Blink is called again.
func (l *statusLed) Blink(delay time.Duration) error {
	if delay <= 0 {
		return errors.Errorf("invalid blink delay %s", delay)
	}
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.stopBlinking()
	stop, done := make(chan struct{}), make(chan struct{})
	l.stop, l.done = stop, done
	go func() {
		defer close(done)
		ticker := time.NewTicker(delay)
		defer ticker.Stop()
		on := true
		for {
			l.pin.Write(on)
			on = !on
			select {
			case <-ticker.C:
			case <-stop:
				return
			}
		}
	}()
	return nil
}

// stopBlinking ends the blink goroutine (if any) and waits for it.
// Caller must hold the mutex.
func (l *statusLed) stopBlinking() {
	if l.stop == nil {
		return
	}
	close(l.stop)
	<-l.done
	l.stop, l.done = nil, nil
}
