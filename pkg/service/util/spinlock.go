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

package util

import (
	"runtime"
	"sync/atomic"
)

const maxSpinYields = 64

// SpinLock is a sync.Locker for very short critical sections,
// such as the register file of a simulated device.
// The zero value is unlocked.
type SpinLock struct {
	held atomic.Bool
}

// Lock the spinlock, yielding the processor with exponential backoff
// while it is held elsewhere.
func (l *SpinLock) Lock() {
	for yields := 1; !l.TryLock(); yields = min(yields*2, maxSpinYields) {
		for i := 0; i < yields; i++ {
			runtime.Gosched()
		}
	}
}

// TryLock returns true when the lock was acquired.
func (l *SpinLock) TryLock() bool {
	return l.held.CompareAndSwap(false, true)
}

// Unlock the spinlock.
func (l *SpinLock) Unlock() {
	l.held.Store(false)
}
