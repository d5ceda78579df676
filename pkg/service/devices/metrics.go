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

package devices

import (
	"github.com/binkynet/ADS1015Worker/pkg/metrics"
)

const (
	subSystem = "devices"
)

var (
	// Number of devices created
	devicesCreatedTotal = metrics.MustRegisterGauge(subSystem,
		"created_total",
		"Number of devices created")
	// Number of devices configured
	devicesConfiguredTotal = metrics.MustRegisterGauge(subSystem,
		"configured_total",
		"Number of devices configured")
	// Number of field updates per device & field
	fieldUpdatesTotal = metrics.MustRegisterCounterVec(subSystem,
		"field_updates_total",
		"Number of configuration field updates per device & field",
		"id", "field")
)
