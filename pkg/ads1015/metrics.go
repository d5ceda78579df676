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
	"github.com/prometheus/client_golang/prometheus"

	"github.com/binkynet/ADS1015Worker/pkg/metrics"
)

const (
	subSystem = "ads1015"
)

var (
	// Total number of times Measure is called
	measureTotal = metrics.MustRegisterCounter(subSystem,
		"measure_total",
		"Total number of times Measure is called")
	// Total number of times Measure failed because of a transport error
	measureErrorTotal = metrics.MustRegisterCounter(subSystem,
		"measure_error_total",
		"Total number of times Measure failed with a transport error")
	// Total number of times Measure gave up waiting for a conversion
	measureTimeoutTotal = metrics.MustRegisterCounter(subSystem,
		"measure_timeout_total",
		"Total number of times Measure gave up waiting for a conversion")
	// Number of status polls needed per conversion
	measurePolls = metrics.MustRegisterHistogram(subSystem,
		"measure_polls",
		"Number of status polls needed per conversion",
		prometheus.ExponentialBuckets(1, 2, 8))
)
