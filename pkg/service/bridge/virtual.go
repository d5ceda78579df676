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
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/binkynet/ADS1015Worker/pkg/service/util"
)

// VirtualBridge is a bridge without hardware.
// Its I2C bus hosts simulated ADS1015 devices.
type VirtualBridge struct {
	mutex   sync.Mutex
	devices map[uint8]*VirtualADS1015
}

// NewVirtualBridge implements the bridge for a virtual worker with
// a simulated ADS1015 at each of the given addresses.
func NewVirtualBridge(addresses ...uint8) *VirtualBridge {
	b := &VirtualBridge{
		devices: make(map[uint8]*VirtualADS1015),
	}
	for _, addr := range addresses {
		b.devices[addr] = NewVirtualADS1015()
	}
	return b
}

// Device returns the simulated device at the given address.
func (p *VirtualBridge) Device(address uint8) (*VirtualADS1015, bool) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	d, found := p.devices[address]
	return d, found
}

// Turn Green status led on/off
func (p *VirtualBridge) SetGreenLED(on bool) error {
	return nil
}

// Turn Red status led on/off
func (p *VirtualBridge) SetRedLED(on bool) error {
	return nil
}

// Blink Green status led with given duration between on/off
func (p *VirtualBridge) BlinkGreenLED(delay time.Duration) error {
	return nil
}

// Blink Red status led with given duration between on/off
func (p *VirtualBridge) BlinkRedLED(delay time.Duration) error {
	return nil
}

// Open the I2C bus
func (p *VirtualBridge) I2CBus() (I2CBus, error) {
	return p, nil
}

func (p *VirtualBridge) Close() error {
	return nil
}

// Execute an option on the bus.
func (p *VirtualBridge) Execute(ctx context.Context, address uint8, op func(ctx context.Context, dev I2CDevice) error) error {
	dev, found := p.Device(address)
	if !found {
		return fmt.Errorf("device %0x not found", address)
	}
	return op(ctx, &virtualDeviceConn{address: address, dev: dev})
}

// DetectSlaveAddresses probes the bus to detect available addresses.
func (p *VirtualBridge) DetectSlaveAddresses() []byte {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	result := make([]byte, 0, len(p.devices))
	for addr := range p.devices {
		result = append(result, addr)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// virtualDeviceConn counts transfers per address.
type virtualDeviceConn struct {
	address uint8
	dev     *VirtualADS1015
}

func (c *virtualDeviceConn) ReadDevice(data []byte) error {
	virtualTransfersTotal.WithLabelValues(strconv.Itoa(int(c.address)), "read").Inc()
	return c.dev.ReadDevice(data)
}

func (c *virtualDeviceConn) WriteDevice(data []byte) error {
	virtualTransfersTotal.WithLabelValues(strconv.Itoa(int(c.address)), "write").Inc()
	return c.dev.WriteDevice(data)
}

const (
	virtualConfigReset = 0x8583
	virtualStatusBit   = 0x8000
	virtualMuxShift    = 12
	virtualMuxMask     = 0x07
)

// VirtualADS1015 simulates the register behavior of an ADS1015.
//
// A write to the address pointer selects the register for subsequent reads.
// Writing the config register with the status bit set starts a conversion;
// the status bit then reads 0 for ConversionPolls config reads, after which
// the conversion register holds the input code of the selected channel.
type VirtualADS1015 struct {
	lock util.SpinLock
	// Number of config reads before a conversion completes
	ConversionPolls int

	pointer   uint8
	regs      [4]uint16
	inputs    [8]uint16
	busyPolls int
	reads     int
	writes    int
}

// NewVirtualADS1015 creates a simulated device in its power-on state.
func NewVirtualADS1015() *VirtualADS1015 {
	d := &VirtualADS1015{
		ConversionPolls: 1,
	}
	d.regs[1] = virtualConfigReset
	d.regs[2] = 0x8000
	d.regs[3] = 0x7FF0
	return d
}

// SetInput sets the 12-bit code returned for the given multiplexer setting.
func (d *VirtualADS1015) SetInput(channel uint8, code uint16) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.inputs[channel&virtualMuxMask] = code & 0x0FFF
}

// Register returns the raw value of a register.
func (d *VirtualADS1015) Register(reg uint8) uint16 {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.regs[reg&0x03]
}

// Transfers returns the number of reads & writes executed on the device.
func (d *VirtualADS1015) Transfers() (reads, writes int) {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.reads, d.writes
}

// WriteDevice sets the address pointer and, when 2 more bytes
// follow, writes the selected register.
func (d *VirtualADS1015) WriteDevice(data []byte) error {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.writes++
	switch len(data) {
	case 1, 3:
	default:
		return fmt.Errorf("invalid write length %d", len(data))
	}
	d.pointer = data[0] & 0x03
	if len(data) == 1 {
		return nil
	}
	value := uint16(data[1])<<8 | uint16(data[2])
	switch d.pointer {
	case 0:
		// Conversion register is read-only
	case 1:
		start := value&virtualStatusBit != 0
		// Status bit is not stored, it reflects the conversion state
		value &^= virtualStatusBit
		if start {
			d.busyPolls = d.ConversionPolls
			mux := (value >> virtualMuxShift) & virtualMuxMask
			d.regs[0] = d.inputs[mux] << 4
		} else if d.busyPolls == 0 {
			value |= virtualStatusBit
		}
		d.regs[1] = value
	default:
		// Threshold registers ignore the padding bits
		d.regs[d.pointer] = value &^ 0x000F
	}
	return nil
}

// ReadDevice reads the register selected by the address pointer.
func (d *VirtualADS1015) ReadDevice(data []byte) error {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.reads++
	if len(data) != 2 {
		return fmt.Errorf("invalid read length %d", len(data))
	}
	value := d.regs[d.pointer]
	if d.pointer == 1 {
		if d.busyPolls > 0 {
			d.busyPolls--
			value &^= virtualStatusBit
		} else {
			value |= virtualStatusBit
		}
		d.regs[1] = value
	}
	data[0] = uint8(value >> 8)
	data[1] = uint8(value)
	return nil
}
