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

// The conversion and threshold registers hold a 12-bit value in bits 15-4.
// Bits 3-0 are ignored on read and written as 0.
const (
	codeShift = 4
	codeMask  = 0x0FFF

	// Range of a signed 12-bit value
	MinThreshold int16 = -2048
	MaxThreshold int16 = 2047
	// Largest conversion code
	MaxCode uint16 = 0x0FFF
)

// DecodeConversion returns the 12-bit code stored in a conversion register word.
func DecodeConversion(word uint16) uint16 {
	return word >> codeShift
}

// EncodeConversion places a 12-bit code in a register word.
func EncodeConversion(code uint16) uint16 {
	return (code & codeMask) << codeShift
}

// SignedCode interprets a 12-bit conversion code as two's complement.
// Differential inputs yield negative codes when N > P.
func SignedCode(code uint16) int16 {
	return int16(code<<codeShift) >> codeShift
}

// DecodeThreshold returns the signed 12-bit value stored in a threshold register word.
func DecodeThreshold(word uint16) int16 {
	return int16(word) >> codeShift
}

// EncodeThreshold places a signed 12-bit value in a threshold register word.
// Values outside [MinThreshold, MaxThreshold] are truncated to 12 bits.
func EncodeThreshold(value int16) uint16 {
	return (uint16(value) & codeMask) << codeShift
}
