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

package config

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/binkynet/ADS1015Worker/pkg/ads1015"
)

// ParseAddress parses a string containing a numeric I2C address.
// Only the addresses an ADS1015 can be strapped to are accepted.
func ParseAddress(addr string) (uint8, error) {
	var result uint64
	var err error
	if strings.HasPrefix(addr, "0x") || strings.HasPrefix(addr, "0X") {
		result, err = strconv.ParseUint(addr[2:], 16, 8)
	} else {
		result, err = strconv.ParseUint(addr, 10, 8)
	}
	if err != nil {
		return 0, errors.Wrapf(ads1015.ErrInvalidArgument, "invalid address '%s'", addr)
	}
	switch uint8(result) {
	case ads1015.AddressGND, ads1015.AddressVDD, ads1015.AddressSDA, ads1015.AddressSCL:
		return uint8(result), nil
	default:
		return 0, errors.Wrapf(ads1015.ErrInvalidArgument, "address 0x%x is not an ADS1015 address", result)
	}
}
