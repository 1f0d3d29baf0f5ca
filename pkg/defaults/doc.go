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

// Package defaults provides centralized configuration constants for the agent.
//
// This package defines timeout values, on-host paths, and kernel parameter
// defaults used across the codebase.
//
// # Timeout Categories
//
//   - Sysctl timeouts: for host parameter query and set commands
//   - Harvest timeouts: for uploads and Kubernetes Events
//   - Server timeouts: for the health and metrics endpoint
//   - HTTP client timeouts: for outbound storage requests
//
// # Usage
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.UploadTimeout)
//	defer cancel()
package defaults
