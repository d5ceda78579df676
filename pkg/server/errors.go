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
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/binkynet/ADS1015Worker/pkg/ads1015"
)

// httpError converts a device error into an HTTP error.
func (s *Server) httpError(err error) error {
	code := http.StatusInternalServerError
	switch {
	case ads1015.IsInvalidArgument(err):
		code = http.StatusBadRequest
	case ads1015.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		code = http.StatusGatewayTimeout
	case ads1015.IsTransport(err):
		code = http.StatusBadGateway
	}
	if code >= http.StatusInternalServerError {
		s.log.Warn().Err(err).Int("code", code).Msg("Request failed")
	}
	return echo.NewHTTPError(code, err.Error()).SetInternal(err)
}
