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

package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binkynet/ADS1015Worker/pkg/ads1015"
	"github.com/binkynet/ADS1015Worker/pkg/service/bridge"
	"github.com/binkynet/ADS1015Worker/pkg/service/config"
	"github.com/binkynet/ADS1015Worker/pkg/service/devices"
)

func newSampledDevice(t *testing.T, id string, address uint8) (devices.ADC, *bridge.VirtualADS1015) {
	b := bridge.NewVirtualBridge(address)
	cfgs := []config.DeviceConfig{{ID: id, Address: "0x4a", Config: ads1015.DefaultConfig()}}
	ds, err := devices.NewService(cfgs, b, b, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, ds.Configure(context.Background()))
	dev, found := ds.DeviceByID(id)
	require.True(t, found)
	vdev, _ := b.Device(address)
	return dev, vdev
}

func TestSamplerRead(t *testing.T) {
	dev, vdev := newSampledDevice(t, "smp-read", 0x4A)
	vdev.SetInput(uint8(ads1015.ChannelAIN0), 0x010)
	vdev.SetInput(uint8(ads1015.ChannelAIN1), 0x020)

	s := newSampler(zerolog.Nop(), dev, config.SampleConfig{IntervalMs: 1, Pins: []int{1, 2}})
	require.NoError(t, s.Read(context.Background()))
	assert.Equal(t, float64(0x010), testutil.ToFloat64(lastSampleValue.WithLabelValues("smp-read", "1")))
	assert.Equal(t, float64(0x020), testutil.ToFloat64(lastSampleValue.WithLabelValues("smp-read", "2")))
	assert.Equal(t, float64(2), testutil.ToFloat64(samplesTotal.WithLabelValues("smp-read")))
	assert.Equal(t, map[int]int{1: 0x010, 2: 0x020}, s.lastValues)
}

func TestSamplerReadInvalidPin(t *testing.T) {
	dev, _ := newSampledDevice(t, "smp-bad", 0x4A)
	s := newSampler(zerolog.Nop(), dev, config.SampleConfig{IntervalMs: 1, Pins: []int{9}})
	err := s.Read(context.Background())
	assert.True(t, ads1015.IsInvalidArgument(err))
	assert.Equal(t, float64(1), testutil.ToFloat64(sampleErrorsTotal.WithLabelValues("smp-bad")))
}
