// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package harvest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeUploaded = "uploaded"
	outcomeSkipped  = "skipped"
	outcomeFailed   = "failed"
	outcomeOrphaned = "orphaned"
)

var (
	dumpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "core_dump_agent_dumps_total",
			Help: "Dump files handled by the harvester, by outcome",
		},
		[]string{"outcome"}, // uploaded, skipped, failed, orphaned
	)

	uploadedBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "core_dump_agent_uploaded_bytes_total",
			Help: "Bytes of dump content confirmed by storage",
		},
	)

	passDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "core_dump_agent_pass_duration_seconds",
			Help:    "Time taken by a single harvest pass",
			Buckets: []float64{0.01, 0.1, 1, 5, 30, 60, 300},
		},
	)

	scanErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "core_dump_agent_scan_errors_total",
			Help: "Passes abandoned because the dump directory could not be listed",
		},
	)
)
