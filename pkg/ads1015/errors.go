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
	"fmt"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	IsInvalidArgument  = isErrorFunc(ErrInvalidArgument)
)

// TransportError is returned when a register read or write failed.
// Err is the error reported by the Transport, unchanged.
type TransportError struct {
	Op       string
	Register Register
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s register failed: %v", e.Op, e.Register, e.Err)
}

// Unwrap gives access to the error of the Transport.
func (e *TransportError) Unwrap() error { return e.Err }

// Code returns the status code reported by the transport, or -1 when
// the transport did not report one.
func (e *TransportError) Code() int32 {
	var code StatusCode
	if errors.As(e.Err, &code) {
		return int32(code)
	}
	return -1
}

// TimeoutError is returned by Measure when the device did not report
// a completed conversion within the configured number of polls.
type TimeoutError struct {
	Polls    int
	Interval time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("conversion not ready after %d polls (interval %s)", e.Polls, e.Interval)
}

// IsTransport returns true when the given error is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsTimeout returns true when the given error is (or wraps) a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

func isErrorFunc(typeOfError error) func(err error) bool {
	return func(err error) bool {
		return err == typeOfError || errors.Cause(err) == typeOfError
	}
}
