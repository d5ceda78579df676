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
	"fmt"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"

	"github.com/binkynet/ADS1015Worker/pkg/ads1015"
	"github.com/binkynet/ADS1015Worker/pkg/service/devices"
)

type healthResponse struct {
	Status        string  `json:"status"`
	Started       string  `json:"started"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Configured    int     `json:"configured"`
	Unconfigured  int     `json:"unconfigured"`
}

type devicesResponse struct {
	Configured   []string `json:"configured"`
	Unconfigured []string `json:"unconfigured"`
}

type configResponse struct {
	Config ads1015.Config `json:"config"`
	Word   string         `json:"word"`
}

type fieldRequest struct {
	Value interface{} `json:"value"`
}

type measureResponse struct {
	Code   uint16         `json:"code"`
	Signed int16          `json:"signed"`
	Config ads1015.Config `json:"config"`
}

type thresholdRequest struct {
	Value *int `json:"value"`
}

type thresholdResponse struct {
	Value int16 `json:"value"`
}

func (s *Server) handleHealth(c echo.Context) error {
	startedAt := s.service.StartedAt()
	return c.JSON(http.StatusOK, healthResponse{
		Status:        "OK",
		Started:       humanize.Time(startedAt),
		UptimeSeconds: time.Since(startedAt).Seconds(),
		Configured:    len(s.service.GetConfiguredDeviceIDs()),
		Unconfigured:  len(s.service.GetUnconfiguredDeviceIDs()),
	})
}

func (s *Server) handleDetectAddresses(c echo.Context) error {
	return c.JSON(http.StatusOK, s.service.DetectAddresses())
}

func (s *Server) handleListDevices(c echo.Context) error {
	return c.JSON(http.StatusOK, devicesResponse{
		Configured:   s.service.GetConfiguredDeviceIDs(),
		Unconfigured: s.service.GetUnconfiguredDeviceIDs(),
	})
}

func (s *Server) handleGetConfig(c echo.Context) error {
	dev, err := s.device(c)
	if err != nil {
		return err
	}
	cfg, err := dev.ReadConfig(c.Request().Context())
	if err != nil {
		return s.httpError(err)
	}
	return c.JSON(http.StatusOK, configResponse{
		Config: cfg,
		Word:   fmt.Sprintf("0x%04x", cfg.Encode()),
	})
}

func (s *Server) handleSetField(c echo.Context) error {
	dev, err := s.device(c)
	if err != nil {
		return err
	}
	var req fieldRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.Value == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "value is missing")
	}
	// Numbers are accepted as well as names
	value := fmt.Sprint(req.Value)
	if err := dev.SetField(c.Request().Context(), c.Param("field"), value); err != nil {
		return s.httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleMeasure(c echo.Context) error {
	dev, err := s.device(c)
	if err != nil {
		return err
	}
	// Body overrides fields of the configured measurement config
	cfg := dev.Config()
	if err := c.Bind(&cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), s.MeasureTimeout)
	defer cancel()
	code, err := dev.Measure(ctx, cfg)
	if err != nil {
		return s.httpError(err)
	}
	cfg.Status = ads1015.StatusReady
	return c.JSON(http.StatusOK, measureResponse{
		Code:   code,
		Signed: ads1015.SignedCode(code),
		Config: cfg,
	})
}

func (s *Server) handleGetThreshold(c echo.Context) error {
	dev, err := s.device(c)
	if err != nil {
		return err
	}
	v, err := dev.GetThreshold(c.Request().Context(), c.Param("which"))
	if err != nil {
		return s.httpError(err)
	}
	return c.JSON(http.StatusOK, thresholdResponse{Value: v})
}

func (s *Server) handleSetThreshold(c echo.Context) error {
	dev, err := s.device(c)
	if err != nil {
		return err
	}
	var req thresholdRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.Value == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "value is missing")
	}
	if v := *req.Value; v < int(ads1015.MinThreshold) || v > int(ads1015.MaxThreshold) {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("value must be between %d and %d", ads1015.MinThreshold, ads1015.MaxThreshold))
	}
	if err := dev.SetThreshold(c.Request().Context(), c.Param("which"), int16(*req.Value)); err != nil {
		return s.httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// device returns the configured device identified by the id path parameter.
func (s *Server) device(c echo.Context) (devices.ADC, error) {
	id := c.Param("id")
	dev, found := s.service.DeviceByID(id)
	if !found {
		return nil, echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("device '%s' not found", id))
	}
	return dev, nil
}
