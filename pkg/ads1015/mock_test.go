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
	"fmt"
)

type mockCall struct {
	write bool
	reg   Register
	data  []byte
}

type mockRead struct {
	data []byte
	err  error
}

// mockTransport records every call.
// Reads are served from the scripted queue first, then from the
// register values. Writes update the register values.
type mockTransport struct {
	regs   map[Register]uint16
	script []mockRead
	calls  []mockCall
}

func newMockTransport(config uint16) *mockTransport {
	return &mockTransport{
		regs: map[Register]uint16{RegisterConfig: config},
	}
}

func (m *mockTransport) queue(word uint16) {
	m.script = append(m.script, mockRead{data: []byte{uint8(word >> 8), uint8(word)}})
}

func (m *mockTransport) queueError(err error) {
	m.script = append(m.script, mockRead{err: err})
}

func (m *mockTransport) ReadRegister(ctx context.Context, reg Register, data []byte) error {
	m.calls = append(m.calls, mockCall{reg: reg})
	if len(data) != 2 {
		return fmt.Errorf("unexpected length %d", len(data))
	}
	if len(m.script) > 0 {
		r := m.script[0]
		m.script = m.script[1:]
		if r.err != nil {
			return r.err
		}
		copy(data, r.data)
		return nil
	}
	v := m.regs[reg]
	data[0] = uint8(v >> 8)
	data[1] = uint8(v)
	return nil
}

func (m *mockTransport) WriteRegister(ctx context.Context, reg Register, data []byte) error {
	m.calls = append(m.calls, mockCall{write: true, reg: reg, data: append([]byte(nil), data...)})
	if len(data) != 2 {
		return fmt.Errorf("unexpected length %d", len(data))
	}
	m.regs[reg] = uint16(data[0])<<8 | uint16(data[1])
	return nil
}

func (m *mockTransport) writes() []mockCall {
	var result []mockCall
	for _, c := range m.calls {
		if c.write {
			result = append(result, c)
		}
	}
	return result
}

// failingTransport fails every call with the given error.
type failingTransport struct {
	err   error
	calls int
}

func (f *failingTransport) ReadRegister(ctx context.Context, reg Register, data []byte) error {
	f.calls++
	return f.err
}

func (f *failingTransport) WriteRegister(ctx context.Context, reg Register, data []byte) error {
	f.calls++
	return f.err
}
