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

// Package server exposes the agent's probe and metrics endpoints.
//
// # Endpoints
//
//   - GET /health: liveness, always 200 while the process serves requests
//   - GET /ready: 200 once kernel parameters are installed and the composer
//     is deployed, 503 before that and during shutdown
//   - GET /metrics: Prometheus exposition of the default registry
//
// # Middleware
//
// /metrics and any additional handlers run behind the same chain:
//
//   - request metrics (rate, status, duration)
//   - request ID tracking via X-Request-Id (UUID)
//   - panic recovery
//   - token bucket rate limiting (golang.org/x/time/rate)
//   - debug request logging
//
// Probes skip rate limiting so kubelet never sees a 429.
//
// # Usage
//
//	s := server.New(
//	    server.WithName("core-dump-agent"),
//	    server.WithVersion(version),
//	    server.WithPort(9090),
//	)
//	go func() { _ = s.Run(ctx) }()
//	...
//	s.SetReady(true)
//
// Run blocks until ctx is canceled and then shuts the listener down within
// Config.ShutdownTimeout.
package server
