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

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binkynet/ADS1015Worker/pkg/ads1015"
	"github.com/binkynet/ADS1015Worker/pkg/service/bridge"
	"github.com/binkynet/ADS1015Worker/pkg/service/config"
	"github.com/binkynet/ADS1015Worker/pkg/service/devices"
)

type testService struct {
	devices.Service
	startedAt time.Time
}

func (s testService) StartedAt() time.Time { return s.startedAt }

// switchableBus fails all operations while failing is set.
type switchableBus struct {
	bridge.I2CBus
	failing atomic.Bool
}

func (b *switchableBus) Execute(ctx context.Context, address uint8, op func(ctx context.Context, dev bridge.I2CDevice) error) error {
	if b.failing.Load() {
		return errors.New("bus failure")
	}
	return b.I2CBus.Execute(ctx, address, op)
}

func newTestRouter(t *testing.T) (*echo.Echo, *bridge.VirtualBridge) {
	b := bridge.NewVirtualBridge(0x48)
	configs := []config.DeviceConfig{
		{ID: "adc0", Address: "0x48", Config: ads1015.DefaultConfig(), Poll: config.PollConfig{MaxPolls: 3}},
	}
	devService, err := devices.NewService(configs, b, b, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, devService.Configure(context.Background()))
	srv, err := New(Config{}, zerolog.Nop(), testService{Service: devService, startedAt: time.Now()})
	require.NoError(t, err)
	return srv.newRouter(), b
}

func do(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	e, _ := newTestRouter(t)
	rec := do(t, e, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "OK", resp.Status)
	assert.Equal(t, 1, resp.Configured)
	assert.Equal(t, 0, resp.Unconfigured)
}

func TestListDevicesAndAddresses(t *testing.T) {
	e, _ := newTestRouter(t)
	rec := do(t, e, http.MethodGet, "/devices", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp devicesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"adc0"}, resp.Configured)

	rec = do(t, e, http.MethodGet, "/bus/addresses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["0x48"]`, rec.Body.String())
}

func TestGetConfig(t *testing.T) {
	e, _ := newTestRouter(t)
	rec := do(t, e, http.MethodGet, "/devices/adc0/config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp configResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "0x8583", resp.Word)
	assert.Equal(t, ads1015.DefaultConfig(), resp.Config)

	rec = do(t, e, http.MethodGet, "/devices/nope/config", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetConfigKeepsAliasValues(t *testing.T) {
	e, b := newTestRouter(t)
	vdev, _ := b.Device(0x48)
	// Gain 6 & data rate 7, without starting a conversion
	require.NoError(t, vdev.WriteDevice([]byte{1, 0x0D, 0xE3}))

	rec := do(t, e, http.MethodGet, "/devices/adc0/config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp configResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "0x8de3", resp.Word)
	assert.Equal(t, ads1015.Gain(6), resp.Config.Gain)
	assert.Equal(t, ads1015.DataRate(7), resp.Config.DataRate)
	assert.Equal(t, uint16(0x8DE3), resp.Config.Encode())
}

func TestPprofRoutes(t *testing.T) {
	e, _ := newTestRouter(t)
	for _, path := range []string{"/debug/pprof/", "/debug/pprof/cmdline", "/debug/pprof/symbol", "/debug/pprof/heap"} {
		rec := do(t, e, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.NotContains(t, rec.Body.String(), "Unknown profile", path)
	}
}

func TestSetField(t *testing.T) {
	e, b := newTestRouter(t)
	vdev, _ := b.Device(0x48)

	rec := do(t, e, http.MethodPut, "/devices/adc0/config/data_rate", `{"value": 3300}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, ads1015.DataRate3300, ads1015.DecodeConfig(vdev.Register(uint8(ads1015.RegisterConfig))).DataRate)

	rec = do(t, e, http.MethodPut, "/devices/adc0/config/mode", `{"value": "continuous"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, e, http.MethodPut, "/devices/adc0/config/gain", `{"value": "7.5"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, e, http.MethodPut, "/devices/adc0/config/volume", `{"value": 11}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, e, http.MethodPut, "/devices/adc0/config/gain", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeasure(t *testing.T) {
	e, b := newTestRouter(t)
	vdev, _ := b.Device(0x48)
	vdev.SetInput(uint8(ads1015.ChannelDiff01), 0xFFF)
	vdev.SetInput(uint8(ads1015.ChannelAIN3), 0x123)

	rec := do(t, e, http.MethodPost, "/devices/adc0/measure", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp measureResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint16(0xFFF), resp.Code)
	assert.Equal(t, int16(-1), resp.Signed)

	rec = do(t, e, http.MethodPost, "/devices/adc0/measure", `{"channel": "ain3"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint16(0x123), resp.Code)
	assert.Equal(t, int16(0x123), resp.Signed)
	assert.Equal(t, ads1015.ChannelAIN3, resp.Config.Channel)

	// Numbers are accepted like they are for config fields
	rec = do(t, e, http.MethodPost, "/devices/adc0/measure", `{"data_rate": 1600, "channel": 7}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint16(0x123), resp.Code)
	assert.Equal(t, ads1015.DataRate1600, resp.Config.DataRate)

	rec = do(t, e, http.MethodPost, "/devices/adc0/measure", `{"gain": "9.9"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, e, http.MethodPost, "/devices/adc0/measure", `{"data_rate": 1601}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeasureTimeout(t *testing.T) {
	e, b := newTestRouter(t)
	vdev, _ := b.Device(0x48)
	// Device is configured with at most 3 polls
	vdev.ConversionPolls = 10

	rec := do(t, e, http.MethodPost, "/devices/adc0/measure", "")
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestThresholds(t *testing.T) {
	e, b := newTestRouter(t)
	vdev, _ := b.Device(0x48)

	rec := do(t, e, http.MethodPut, "/devices/adc0/thresholds/low", `{"value": -2048}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, uint16(0x8000), vdev.Register(uint8(ads1015.RegisterLowThreshold)))

	rec = do(t, e, http.MethodPut, "/devices/adc0/thresholds/high", `{"value": 100}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, e, http.MethodGet, "/devices/adc0/thresholds/high", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"value": 100}`, rec.Body.String())

	rec = do(t, e, http.MethodPut, "/devices/adc0/thresholds/high", `{"value": 2048}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, e, http.MethodPut, "/devices/adc0/thresholds/low", `{"value": -2049}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, e, http.MethodPut, "/devices/adc0/thresholds/low", `{"value": 2047}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, uint16(0x7FF0), vdev.Register(uint8(ads1015.RegisterLowThreshold)))
	rec = do(t, e, http.MethodGet, "/devices/adc0/thresholds/middle", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransportFailureIsBadGateway(t *testing.T) {
	b := bridge.NewVirtualBridge(0x48)
	bus := &switchableBus{I2CBus: b}
	configs := []config.DeviceConfig{
		{ID: "adc0", Address: "0x48", Config: ads1015.DefaultConfig()},
	}
	devService, err := devices.NewService(configs, b, bus, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, devService.Configure(context.Background()))
	srv, err := New(Config{}, zerolog.Nop(), testService{Service: devService, startedAt: time.Now()})
	require.NoError(t, err)
	e := srv.newRouter()

	bus.failing.Store(true)
	rec := do(t, e, http.MethodGet, "/devices/adc0/config", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	rec = do(t, e, http.MethodPost, "/devices/adc0/measure", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	bus.failing.Store(false)
	rec = do(t, e, http.MethodGet, "/devices/adc0/config", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
