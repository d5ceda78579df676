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
	"strconv"
)

// Transport reads & writes the registers of a single device.
// Implementations select the device themselves (bus & address).
type Transport interface {
	// ReadRegister reads len(data) bytes from the given register.
	ReadRegister(ctx context.Context, reg Register, data []byte) error
	// WriteRegister writes all of data to the given register.
	WriteRegister(ctx context.Context, reg Register, data []byte) error
}

// StatusCode is a non-zero status returned by a platform read/write routine.
type StatusCode int32

func (c StatusCode) Error() string {
	return "transport status " + strconv.Itoa(int(c))
}

// TransportFuncs adapts a pair of platform routines that report a status
// code (0 means success) into a Transport.
type TransportFuncs struct {
	Read  func(reg uint8, data []byte) int32
	Write func(reg uint8, data []byte) int32
}

// ReadRegister implements Transport.
func (t TransportFuncs) ReadRegister(ctx context.Context, reg Register, data []byte) error {
	if status := t.Read(uint8(reg), data); status != 0 {
		return StatusCode(status)
	}
	return nil
}

// WriteRegister implements Transport.
func (t TransportFuncs) WriteRegister(ctx context.Context, reg Register, data []byte) error {
	if status := t.Write(uint8(reg), data); status != 0 {
		return StatusCode(status)
	}
	return nil
}
