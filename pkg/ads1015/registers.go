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

// Package ads1015 implements register level access to the ADS1015 12-bit
// analog/digital converter.
//
// The ADS1015 has four 16-bit registers that are selected through its
// address pointer: the conversion result, the configuration word and the
// low & high comparator thresholds. All of them are transferred MSB first.
package ads1015

import "strconv"

// Register identifies one of the 4 registers of the device.
type Register uint8

const (
	// Registry addresses
	RegisterConversion    Register = 0x00
	RegisterConfig        Register = 0x01
	RegisterLowThreshold  Register = 0x02
	RegisterHighThreshold Register = 0x03
)

// registerSize is the number of bytes in every register.
const registerSize = 2

// String returns a human readable name of the register.
func (r Register) String() string {
	switch r {
	case RegisterConversion:
		return "conversion"
	case RegisterConfig:
		return "config"
	case RegisterLowThreshold:
		return "low-threshold"
	case RegisterHighThreshold:
		return "high-threshold"
	default:
		return "register-" + strconv.Itoa(int(r))
	}
}

const (
	// I2C addresses, selected by the ADDR pin connection.
	AddressGND uint8 = 0x48 // (default)
	AddressVDD uint8 = 0x49
	AddressSDA uint8 = 0x4A
	AddressSCL uint8 = 0x4B
)
