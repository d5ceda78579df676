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
	"github.com/binkynet/ADS1015Worker/pkg/metrics"
)

const (
	subSystem = "service"
)

var (
	// Last sampled code per device & pin
	lastSampleValue = metrics.MustRegisterGaugeVec(subSystem,
		"last_sample_value",
		"Last sampled conversion code per device & pin",
		"id", "pin")
	// Total number of samples per device
	samplesTotal = metrics.MustRegisterCounterVec(subSystem,
		"samples_total",
		"Total number of samples taken per device",
		"id")
	// Total number of failed samples per device
	sampleErrorsTotal = metrics.MustRegisterCounterVec(subSystem,
		"sample_errors_total",
		"Total number of failed samples per device",
		"id")
)
