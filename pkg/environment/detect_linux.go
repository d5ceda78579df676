//    Copyright 2018 Ewout Prangsma
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

package environment

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

// AutoDetectBridgeType detects the default bridge type based on the environment.
// ARM hosts with the given I2C bus device use the Raspberry Pi bridge,
// all others get a virtual bridge.
func AutoDetectBridgeType(log zerolog.Logger, busLocation string) string {
	var name unix.Utsname
	if err := unix.Uname(&name); err != nil {
		log.Debug().Err(err).Msg("Uname failed")
		return "virtual"
	}
	machine := strings.TrimRight(string(name.Machine[:]), "\x00")
	if !strings.HasPrefix(machine, "arm") && machine != "aarch64" {
		log.Info().Str("machine", machine).Msg("Not an ARM host, using virtual bridge")
		return "virtual"
	}
	if _, err := os.Stat(busLocation); err != nil {
		log.Warn().Err(err).Str("location", busLocation).Msg("I2C bus not found, using virtual bridge")
		return "virtual"
	}
	return "rpi"
}
