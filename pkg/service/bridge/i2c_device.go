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
	"sync"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Values from linux/i2c-dev.h and linux/i2c.h
const (
	ioctlSetSlave  = 0x0703
	ioctlFuncs     = 0x0705
	ioctlSMBus     = 0x0720
	smbusWrite     = 0
	smbusQuick     = 0
	funcSMBusQuick = 0x00010000
)

// smbusRequest mirrors struct i2c_smbus_ioctl_data.
type smbusRequest struct {
	readWrite byte
	command   byte
	size      uint32
	data      uintptr
}

// i2cDevice is an open /dev/i2c-N file bound to a single slave address.
type i2cDevice struct {
	address uint8
	mutex   sync.Mutex
	file    *os.File
	funcs   uint64
}

// newI2CDevice opens the bus at the given location and binds it to the given address.
func newI2CDevice(location string, address uint8) (*i2cDevice, error) {
	f, err := os.OpenFile(location, os.O_RDWR, os.ModeDevice)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s failed", location)
	}
	d := &i2cDevice{address: address, file: f}
	if err := d.ioctl(ioctlFuncs, uintptr(unsafe.Pointer(&d.funcs))); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "query adapter functionality failed")
	}
	if err := unix.IoctlSetInt(int(f.Fd()), ioctlSetSlave, int(address)); err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "set slave address 0x%02x failed", address)
	}
	return d, nil
}

func (d *i2cDevice) ioctl(request, arg uintptr) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, d.file.Fd(), request, arg); errno != 0 {
		return errno
	}
	return nil
}

func (d *i2cDevice) closeFile() error {
	return d.file.Close()
}

// DetectDevice sends an SMBus quick command to the address of this device.
func (d *i2cDevice) DetectDevice() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.funcs&funcSMBusQuick == 0 {
		return errors.New("adapter does not support SMBus quick")
	}
	req := smbusRequest{readWrite: smbusWrite, size: smbusQuick}
	if err := d.ioctl(ioctlSMBus, uintptr(unsafe.Pointer(&req))); err != nil {
		return errors.Wrapf(err, "quick[0x%02x] failed", d.address)
	}
	return nil
}

// ReadDevice reads exactly len(data) bytes from the device.
func (d *i2cDevice) ReadDevice(data []byte) error {
	return d.transfer("read", d.file.Read, data)
}

// WriteDevice writes all of data to the device.
func (d *i2cDevice) WriteDevice(data []byte) error {
	return d.transfer("write", d.file.Write, data)
}

// transfer runs a single read or write and checks that it was complete.
func (d *i2cDevice) transfer(direction string, fn func([]byte) (int, error), data []byte) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	n, err := fn(data)
	if err != nil {
		return errors.Wrapf(err, "%s[0x%02x] failed", direction, d.address)
	}
	if n != len(data) {
		return errors.Errorf("%s[0x%02x] transferred %d of %d bytes", direction, d.address, n, len(data))
	}
	return nil
}
