//    Copyright 2017 Ewout Prangsma
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package bridge

import (
	"sync"
	"time"

	"github.com/ecc1/gpio"
	aerr "github.com/ewoutp/go-aggregate-error"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	greenLedPin = 23
	redLedPin   = 24

	// Default bus of the 40-pin header
	DefaultRaspberryPiBus = "/dev/i2c-1"
)

type piBridge struct {
	mutex    sync.Mutex
	log      zerolog.Logger
	busCfg   BusConfig
	greenLed *statusLed
	redLed   *statusLed
	bus      I2CBus
}

// NewRaspberryPiBridge implements the bridge for Raspberry PI's
func NewRaspberryPiBridge(busCfg BusConfig, log zerolog.Logger) (API, error) {
	if busCfg.Location == "" {
		busCfg.Location = DefaultRaspberryPiBus
	}
	leds := make(map[string]*statusLed, 2)
	for name, pin := range map[string]int{"green": greenLedPin, "red": redLedPin} {
		out, err := gpio.Output(pin, true, false)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open %s led (gpio %d)", name, pin)
		}
		leds[name] = newStatusLed(name, out)
	}
	return &piBridge{
		log:      log.With().Str("component", "rpi-bridge").Logger(),
		busCfg:   busCfg,
		greenLed: leds["green"],
		redLed:   leds["red"],
	}, nil
}

func (p *piBridge) SetGreenLED(on bool) error { return p.greenLed.Set(on) }
func (p *piBridge) SetRedLED(on bool) error { return p.redLed.Set(on) }
func (p *piBridge) BlinkGreenLED(delay time.Duration) error { return p.greenLed.Blink(delay) }
func (p *piBridge) BlinkRedLED(delay time.Duration) error { return p.redLed.Blink(delay) }

// Open the I2C bus
func (p *piBridge) I2CBus() (I2CBus, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.bus == nil {
		bus, err := NewI2CBus(p.busCfg, p.log)
		if err != nil {
			return nil, errors.Wrap(err, "NewI2CBus failed")
		}
		p.bus = bus
	}
	return p.bus, nil
}

// Close the bus and turn off the status leds.
func (p *piBridge) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	var ae aerr.AggregateError
	ae.Add(p.greenLed.Set(false))
	ae.Add(p.redLed.Set(false))
	if bus := p.bus; bus != nil {
		p.bus = nil
		ae.Add(bus.Close())
	}
	return ae.AsError()
}
