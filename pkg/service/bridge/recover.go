// Copyright 2020 Ewout Prangsma
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
	"os"
	"strconv"
	"time"

	"github.com/ecc1/gpio"
	"github.com/pkg/errors"
)

const (
	recoverClockPulses = 10
	recoverClockFreq   = 50000 // Hz
	recoverHalfPeriod  = time.Second / (2 * recoverClockFreq)
	recoverSettleTime  = time.Second * 2
	gpioUnexportPath   = "/sys/class/gpio/unexport"
)

// recoverAfterFailure recovers the bus after a failed operation,
// if recovery is configured.
func (b *i2cBus) recoverAfterFailure() error {
	if !b.TryRecoverFromLockup {
		i2cRecoverySkippedTotal.Inc()
		return nil
	}
	i2cRecoveryAttemptsTotal.Inc()
	if err := b.recoverFromLockup(); err != nil {
		i2cRecoveryFailedTotal.Inc()
		return errors.Wrap(err, "i2c recovery failed")
	}
	i2cRecoverySucceededTotal.Inc()
	return nil
}

// recoverFromLockup clocks out a slave that holds SDA low, by toggling
// SCL as a GPIO output.
func (b *i2cBus) recoverFromLockup() error {
	log := b.log.With().Int("scl-pin", b.SCLPin).Logger()
	log.Info().Msg("Performing i2c recovery ...")
	activeLow := true
	scl, err := gpio.Output(b.SCLPin, activeLow, true)
	if err != nil {
		return errors.Wrap(err, "failed to set scl pin to output")
	}
	for i := 0; i < recoverClockPulses; i++ {
		for _, level := range []bool{false, true} {
			time.Sleep(recoverHalfPeriod)
			if err := scl.Write(level); err != nil {
				return errors.Wrapf(err, "failed to set scl to %v during i2c recovery", level)
			}
		}
	}
	// Hand the pin back to the i2c driver
	if _, err := gpio.Input(b.SCLPin, activeLow); err != nil {
		return errors.Wrap(err, "failed to reset scl pin to input")
	}
	if err := os.WriteFile(gpioUnexportPath, []byte(strconv.Itoa(b.SCLPin)), 0644); err != nil {
		return errors.Wrap(err, "failed to unexport scl pin")
	}
	log.Info().Msg("Performed i2c recovery.")
	return nil
}
